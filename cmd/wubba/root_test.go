package main

import (
	"bytes"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mmcdole/wubba/internal/domain"
)

const catalogPage = `{
  "info": {"count": 2, "pages": 1, "next": null, "prev": null},
  "results": [
    {"id": 1, "name": "Pilot", "air_date": "December 2, 2013", "episode": "S01E01",
     "characters": ["https://rickandmortyapi.com/api/character/1", "https://rickandmortyapi.com/api/character/2"],
     "created": "2017-11-10T12:56:33.798Z"},
    {"id": 2, "name": "Lawnmower Dog", "air_date": "December 9, 2013", "episode": "S01E02",
     "characters": [], "created": "2017-11-10T12:56:33.916Z"}
  ]
}`

const pilotCharacters = `[
  {"id": 1, "name": "Rick Sanchez", "status": "Alive", "species": "Human"},
  {"id": 2, "name": "Morty Smith", "status": "Alive", "species": "Human"}
]`

// setupEnv points the CLI at a fake catalog with memory storage and a
// throwaway log file.
func setupEnv(t *testing.T) string {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.URL.Path == "/api/episode":
			fmt.Fprint(w, catalogPage)
		case strings.HasPrefix(r.URL.Path, "/api/character/"):
			fmt.Fprint(w, pilotCharacters)
		default:
			http.NotFound(w, r)
		}
	}))
	t.Cleanup(srv.Close)

	dir := t.TempDir()
	t.Setenv("WUBBA_API_BASE_URL", srv.URL+"/api")
	t.Setenv("WUBBA_STORAGE_BACKEND", "memory")
	t.Setenv("WUBBA_LOGGING_FILE", filepath.Join(dir, "wubba.log"))
	return dir
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	cmd := newRootCmd()
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestVersionCommand(t *testing.T) {
	out, err := execute(t, "version")
	require.NoError(t, err)
	assert.Equal(t, "wubba dev\n", out)
}

func TestEpisodesCommand(t *testing.T) {
	dir := setupEnv(t)

	t.Run("lists catalog", func(t *testing.T) {
		out, err := execute(t, "--config", dir, "episodes")
		require.NoError(t, err)
		assert.Contains(t, out, "Pilot")
		assert.Contains(t, out, "Lawnmower Dog")
	})

	t.Run("search filters", func(t *testing.T) {
		out, err := execute(t, "--config", dir, "episodes", "--search", "dog")
		require.NoError(t, err)
		assert.Contains(t, out, "Lawnmower Dog")
		assert.NotContains(t, out, "Pilot")
	})

	t.Run("no match suggests", func(t *testing.T) {
		out, err := execute(t, "--config", dir, "episodes", "--search", "pliot")
		require.NoError(t, err)
		assert.Contains(t, out, "Did you mean")
		assert.Contains(t, out, "Pilot")
	})
}

func TestCharactersCommand(t *testing.T) {
	dir := setupEnv(t)

	out, err := execute(t, "--config", dir, "characters", "1", "--filter", "morty")
	require.NoError(t, err)
	assert.Contains(t, out, "Pilot (S01E01)")
	assert.Contains(t, out, "Morty Smith")
	assert.NotContains(t, out, "Rick Sanchez")

	_, err = execute(t, "--config", dir, "characters", "99")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestFavouritesToggle(t *testing.T) {
	dir := setupEnv(t)

	out, err := execute(t, "--config", dir, "favourites", "toggle", "2")
	require.NoError(t, err)
	assert.Equal(t, "Added to favourites: episode 2\n", out)

	_, err = execute(t, "--config", dir, "favourites", "toggle", "zero")
	assert.Error(t, err)
}

func TestFavouritesAddRemove(t *testing.T) {
	dir := setupEnv(t)
	t.Setenv("WUBBA_STORAGE_BACKEND", "file")
	t.Setenv("WUBBA_STORAGE_PATH", filepath.Join(dir, "data"))

	steps := []struct {
		args []string
		want string
	}{
		{[]string{"favourites", "add", "2"}, "Added to favourites: episode 2\n"},
		{[]string{"favourites", "add", "2"}, "Already a favourite: episode 2\n"},
		{[]string{"favourites", "remove", "1"}, "Not a favourite: episode 1\n"},
	}
	for _, step := range steps {
		out, err := execute(t, append([]string{"--config", dir}, step.args...)...)
		require.NoError(t, err)
		assert.Equal(t, step.want, out)
	}

	out, err := execute(t, "--config", dir, "favourites", "list")
	require.NoError(t, err)
	assert.Contains(t, out, "1 episode\n")
	assert.Contains(t, out, "Lawnmower Dog")
	assert.NotContains(t, out, "Pilot")

	out, err = execute(t, "--config", dir, "favs", "remove", "2")
	require.NoError(t, err)
	assert.Equal(t, "Removed from favourites: episode 2\n", out)

	out, err = execute(t, "--config", dir, "favourites", "list")
	require.NoError(t, err)
	assert.Contains(t, out, "0 episodes\n")
	assert.NotContains(t, out, "Lawnmower Dog")
}

func TestConfigCommands(t *testing.T) {
	dir := setupEnv(t)

	t.Run("path", func(t *testing.T) {
		out, err := execute(t, "--config", dir, "config", "path")
		require.NoError(t, err)
		assert.Equal(t, dir+"\n", out)
	})

	t.Run("init writes defaults once", func(t *testing.T) {
		initDir := filepath.Join(dir, "fresh")
		path := filepath.Join(initDir, "config.yaml")

		out, err := execute(t, "--config", initDir, "config", "init")
		require.NoError(t, err)
		assert.Equal(t, "Wrote "+path+"\n", out)
		data, err := os.ReadFile(path)
		require.NoError(t, err)
		assert.Contains(t, string(data), "rickandmortyapi.com")

		_, err = execute(t, "--config", initDir, "config", "init")
		assert.ErrorContains(t, err, "--force")

		_, err = execute(t, "--config", initDir, "config", "init", "--force")
		assert.NoError(t, err)
	})

	t.Run("clear-data removes storage", func(t *testing.T) {
		data := filepath.Join(dir, "data")
		require.NoError(t, os.MkdirAll(data, 0755))
		require.NoError(t, os.WriteFile(filepath.Join(data, "favourite_episodes.json"), []byte("[1]"), 0644))
		t.Setenv("WUBBA_STORAGE_PATH", data)

		out, err := execute(t, "--config", dir, "config", "clear-data")
		require.NoError(t, err)
		assert.Equal(t, "Cleared "+data+"\n", out)
		assert.NoDirExists(t, data)
	})
}

func TestRefreshOffline(t *testing.T) {
	dir := setupEnv(t)

	out, err := execute(t, "--config", dir, "--offline", "refresh")
	require.NoError(t, err)
	assert.Equal(t, "No connection: Connect to the internet to refresh.\n", out)
}

func TestParseEpisodeID(t *testing.T) {
	id, err := parseEpisodeID("42")
	require.NoError(t, err)
	assert.Equal(t, 42, id)

	for _, bad := range []string{"", "-1", "0", "abc"} {
		_, err := parseEpisodeID(bad)
		assert.Error(t, err, bad)
	}
}
