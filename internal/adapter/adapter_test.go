package adapter

import (
	"context"
	"log/slog"
	"net"
	"os"
	"os/exec"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfigDefaults(t *testing.T) {
	cfg, err := loadConfig(viper.New(), t.TempDir())
	require.NoError(t, err)

	assert.Equal(t, "https://rickandmortyapi.com/api", cfg.API.BaseURL)
	assert.Equal(t, StorageBolt, cfg.Storage.Backend)
	assert.Equal(t, 400*time.Millisecond, cfg.UI.ExitDuration)
	assert.Equal(t, 4, cfg.UI.CharactersPerPage)
}

func TestLoadConfigFile(t *testing.T) {
	dir := t.TempDir()
	yaml := []byte(`
api:
  base_url: http://localhost:9999/api
  attempts: 1
storage:
  backend: memory
ui:
  exit_duration: 1s
  exit_frames: 0
`)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), yaml, 0644))

	cfg, err := loadConfig(viper.New(), dir)
	require.NoError(t, err)

	assert.Equal(t, "http://localhost:9999/api", cfg.API.BaseURL)
	assert.Equal(t, uint(1), cfg.API.Attempts)
	assert.Equal(t, StorageMemory, cfg.Storage.Backend)
	assert.Equal(t, time.Second, cfg.UI.ExitDuration)
	assert.Equal(t, 1, cfg.UI.ExitFrames)
	// Untouched keys keep defaults
	assert.Equal(t, 5, cfg.API.RateBurst)
}

func TestLoadConfigEnvOverride(t *testing.T) {
	t.Setenv("WUBBA_STORAGE_BACKEND", "file")

	cfg, err := loadConfig(viper.New(), t.TempDir())
	require.NoError(t, err)
	assert.Equal(t, StorageFile, cfg.Storage.Backend)
}

func TestLoadConfigRejectsUnknownBackend(t *testing.T) {
	t.Setenv("WUBBA_STORAGE_BACKEND", "floppy")

	_, err := loadConfig(viper.New(), t.TempDir())
	assert.Error(t, err)
}

func TestSaveConfigRoundTrip(t *testing.T) {
	dir := t.TempDir()
	cfg := DefaultConfig()
	cfg.API.BaseURL = "http://example.test/api"
	cfg.Storage.Backend = StorageFile
	cfg.API.Attempts = 5

	path, err := SaveConfigTo(cfg, dir)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "config.yaml"), path)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "attempts: 5")
	assert.NotContains(t, string(data), "retries")

	loaded, err := LoadConfigFrom(dir)
	require.NoError(t, err)
	assert.Equal(t, "http://example.test/api", loaded.API.BaseURL)
	assert.Equal(t, StorageFile, loaded.Storage.Backend)
	assert.Equal(t, uint(5), loaded.API.Attempts)
	assert.Equal(t, cfg.UI.ExitDuration, loaded.UI.ExitDuration)
}

func TestParseLogLevel(t *testing.T) {
	assert.Equal(t, slog.LevelDebug, parseLogLevel("debug"))
	assert.Equal(t, slog.LevelWarn, parseLogLevel("WARNING"))
	assert.Equal(t, slog.LevelInfo, parseLogLevel("nonsense"))
}

func TestSetupLogger(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "wubba.log")
	logger, closer, err := SetupLogger(&LoggingConfig{File: path, Level: "debug", MaxSizeMB: 1})
	require.NoError(t, err)

	logger.Info("hello", "page", 1)
	require.NoError(t, closer.Close())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"msg":"hello"`)
}

func TestDialAddressFor(t *testing.T) {
	assert.Equal(t, "rickandmortyapi.com:443", dialAddressFor("https://rickandmortyapi.com/api"))
	assert.Equal(t, "localhost:8080", dialAddressFor("http://localhost:8080/api"))
	assert.Equal(t, "example.test:80", dialAddressFor("http://example.test"))
	assert.Empty(t, dialAddressFor("not a url"))
}

func TestNetChecker(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	defer ln.Close()
	go func() {
		for {
			conn, err := ln.Accept()
			if err != nil {
				return
			}
			conn.Close()
		}
	}()

	up := NewNetChecker(ConnectivityConfig{DialAddress: ln.Addr().String(), Timeout: time.Second}, "", NullLogger())
	assert.True(t, up.IsConnected(context.Background()))

	down := NewNetChecker(ConnectivityConfig{}, "not a url", NullLogger())
	assert.False(t, down.IsConnected(context.Background()))

	assert.True(t, StaticChecker(true).IsConnected(context.Background()))
	assert.False(t, StaticChecker(false).IsConnected(context.Background()))
}

func TestLauncherConfiguredCommand(t *testing.T) {
	var started []string
	l := NewLauncher(OpenerConfig{Command: "sh", Args: []string{"-c", "true"}}, NullLogger())
	l.start = func(cmd *exec.Cmd) error {
		started = cmd.Args[1:]
		return nil
	}

	require.NoError(t, l.Open("https://rickandmortyapi.com/api/character/avatar/1.jpeg"))
	assert.Equal(t, []string{"-c", "true", "https://rickandmortyapi.com/api/character/avatar/1.jpeg"}, started)
}

func TestLauncherFailures(t *testing.T) {
	l := NewLauncher(OpenerConfig{Command: "wubba-no-such-viewer"}, NullLogger())
	assert.Error(t, l.Open("https://example.test/1.jpeg"))
	assert.Error(t, l.Open(""))
}
