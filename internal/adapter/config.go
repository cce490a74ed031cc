package adapter

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"github.com/spf13/viper"
)

var envKeyReplacer = strings.NewReplacer(".", "_")

// StorageBackend selects the durable key/value implementation
type StorageBackend string

const (
	StorageBolt   StorageBackend = "bolt"
	StorageFile   StorageBackend = "file"
	StorageMemory StorageBackend = "memory"
)

// Config holds all application configuration
type Config struct {
	API          APIConfig          `mapstructure:"api"`
	Storage      StorageConfig      `mapstructure:"storage"`
	Connectivity ConnectivityConfig `mapstructure:"connectivity"`
	UI           UIConfig           `mapstructure:"ui"`
	Opener       OpenerConfig       `mapstructure:"opener"`
	Logging      LoggingConfig      `mapstructure:"logging"`
}

// APIConfig holds catalog service configuration
type APIConfig struct {
	BaseURL   string        `mapstructure:"base_url"`
	Timeout   time.Duration `mapstructure:"timeout"`
	RateLimit float64       `mapstructure:"rate_limit"` // Requests per second
	RateBurst int           `mapstructure:"rate_burst"`
	Attempts  uint          `mapstructure:"attempts"` // Total tries per request, including the first
}

// StorageConfig holds favourites persistence configuration
type StorageConfig struct {
	Backend StorageBackend `mapstructure:"backend"` // "bolt", "file" or "memory"
	Path    string         `mapstructure:"path"`
}

// ConnectivityConfig holds the pre-refresh reachability check settings
type ConnectivityConfig struct {
	DialAddress string        `mapstructure:"dial_address"` // host:port; derived from api.base_url when empty
	Timeout      time.Duration `mapstructure:"timeout"`
}

// UIConfig holds UI configuration
type UIConfig struct {
	ExitDuration      time.Duration `mapstructure:"exit_duration"` // Favourites exit transition length
	ExitFrames        int           `mapstructure:"exit_frames"`
	CharactersPerPage int           `mapstructure:"characters_per_page"`
}

// OpenerConfig selects the program used to open character portraits
type OpenerConfig struct {
	Command string   `mapstructure:"command"` // empty for the system default
	Args    []string `mapstructure:"args"`
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	File       string `mapstructure:"file"`
	Level      string `mapstructure:"level"`
	MaxSizeMB  int    `mapstructure:"max_size_mb"`
	MaxBackups int    `mapstructure:"max_backups"`
	MaxAgeDays int    `mapstructure:"max_age_days"`
}

// DefaultConfig returns the default configuration
func DefaultConfig() *Config {
	return &Config{
		API: APIConfig{
			BaseURL:   "https://rickandmortyapi.com/api",
			Timeout:   30 * time.Second,
			RateLimit: 5,
			RateBurst: 5,
			Attempts:  3,
		},
		Storage: StorageConfig{
			Backend: StorageBolt,
			Path:    defaultDataPath(),
		},
		Connectivity: ConnectivityConfig{
			Timeout: 3 * time.Second,
		},
		UI: UIConfig{
			ExitDuration:      400 * time.Millisecond,
			ExitFrames:        8,
			CharactersPerPage: 4,
		},
		Logging: LoggingConfig{
			File:       defaultLogPath(),
			Level:      "INFO",
			MaxSizeMB:  10,
			MaxBackups: 3,
			MaxAgeDays: 28,
		},
	}
}

// defaultLogPath returns the default log file path for the current OS
func defaultLogPath() string {
	switch runtime.GOOS {
	case "windows":
		return filepath.Join(os.Getenv("APPDATA"), "wubba", "wubba.log")
	default:
		home, _ := os.UserHomeDir()
		return filepath.Join(home, ".local", "share", "wubba", "wubba.log")
	}
}

// defaultConfigPath returns the default config file path for the current OS
func defaultConfigPath() string {
	switch runtime.GOOS {
	case "windows":
		return filepath.Join(os.Getenv("APPDATA"), "wubba")
	default:
		home, _ := os.UserHomeDir()
		return filepath.Join(home, ".config", "wubba")
	}
}

// defaultDataPath returns the default data directory path for the current OS
func defaultDataPath() string {
	switch runtime.GOOS {
	case "windows":
		return filepath.Join(os.Getenv("LOCALAPPDATA"), "wubba", "data")
	default:
		home, _ := os.UserHomeDir()
		return filepath.Join(home, ".local", "share", "wubba", "data")
	}
}

// LoadConfigFrom loads configuration from dir, or the default directory
// when dir is empty
func LoadConfigFrom(dir string) (*Config, error) {
	return loadConfig(viper.New(), ConfigPath(dir))
}

func loadConfig(v *viper.Viper, configDir string) (*Config, error) {
	cfg := DefaultConfig()

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(configDir)
	v.AddConfigPath(".")

	// Environment variable overrides, e.g. WUBBA_API_BASE_URL
	v.SetEnvPrefix("WUBBA")
	v.SetEnvKeyReplacer(envKeyReplacer)
	v.AutomaticEnv()
	bindDefaults(v, cfg)

	// Read config file if it exists
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
		// Config file not found is OK, use defaults
	}

	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("error parsing config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// bindDefaults registers every key so AutomaticEnv can override keys that
// are absent from the config file.
func bindDefaults(v *viper.Viper, cfg *Config) {
	v.SetDefault("api.base_url", cfg.API.BaseURL)
	v.SetDefault("api.timeout", cfg.API.Timeout)
	v.SetDefault("api.rate_limit", cfg.API.RateLimit)
	v.SetDefault("api.rate_burst", cfg.API.RateBurst)
	v.SetDefault("api.attempts", cfg.API.Attempts)

	v.SetDefault("storage.backend", string(cfg.Storage.Backend))
	v.SetDefault("storage.path", cfg.Storage.Path)

	v.SetDefault("connectivity.dial_address", cfg.Connectivity.DialAddress)
	v.SetDefault("connectivity.timeout", cfg.Connectivity.Timeout)

	v.SetDefault("ui.exit_duration", cfg.UI.ExitDuration)
	v.SetDefault("ui.exit_frames", cfg.UI.ExitFrames)
	v.SetDefault("ui.characters_per_page", cfg.UI.CharactersPerPage)

	v.SetDefault("opener.command", cfg.Opener.Command)
	v.SetDefault("opener.args", cfg.Opener.Args)

	v.SetDefault("logging.file", cfg.Logging.File)
	v.SetDefault("logging.level", cfg.Logging.Level)
	v.SetDefault("logging.max_size_mb", cfg.Logging.MaxSizeMB)
	v.SetDefault("logging.max_backups", cfg.Logging.MaxBackups)
	v.SetDefault("logging.max_age_days", cfg.Logging.MaxAgeDays)
}

// Validate checks values that would otherwise fail later in confusing ways
func (c *Config) Validate() error {
	if c.API.BaseURL == "" {
		return fmt.Errorf("api.base_url is required")
	}
	switch c.Storage.Backend {
	case StorageBolt, StorageFile, StorageMemory:
	default:
		return fmt.Errorf("unknown storage backend: %s", c.Storage.Backend)
	}
	if c.UI.ExitFrames <= 0 {
		c.UI.ExitFrames = 1
	}
	if c.UI.CharactersPerPage <= 0 {
		c.UI.CharactersPerPage = DefaultConfig().UI.CharactersPerPage
	}
	return nil
}

// SaveConfigTo writes cfg as config.yaml in dir, or the default directory
// when dir is empty, and returns the file written
func SaveConfigTo(cfg *Config, dir string) (string, error) {
	dir = ConfigPath(dir)
	if err := saveConfig(viper.New(), cfg, dir); err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.yaml"), nil
}

func saveConfig(v *viper.Viper, cfg *Config, configPath string) error {
	// Ensure config directory exists
	if err := os.MkdirAll(configPath, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	// Set fields individually to ensure correct key names (snake_case)
	v.Set("api.base_url", cfg.API.BaseURL)
	v.Set("api.timeout", cfg.API.Timeout.String())
	v.Set("api.rate_limit", cfg.API.RateLimit)
	v.Set("api.rate_burst", cfg.API.RateBurst)
	v.Set("api.attempts", cfg.API.Attempts)

	v.Set("storage.backend", string(cfg.Storage.Backend))
	v.Set("storage.path", cfg.Storage.Path)

	v.Set("connectivity.dial_address", cfg.Connectivity.DialAddress)
	v.Set("connectivity.timeout", cfg.Connectivity.Timeout.String())

	v.Set("ui.exit_duration", cfg.UI.ExitDuration.String())
	v.Set("ui.exit_frames", cfg.UI.ExitFrames)
	v.Set("ui.characters_per_page", cfg.UI.CharactersPerPage)

	v.Set("opener.command", cfg.Opener.Command)
	v.Set("opener.args", cfg.Opener.Args)

	v.Set("logging.file", cfg.Logging.File)
	v.Set("logging.level", cfg.Logging.Level)
	v.Set("logging.max_size_mb", cfg.Logging.MaxSizeMB)
	v.Set("logging.max_backups", cfg.Logging.MaxBackups)
	v.Set("logging.max_age_days", cfg.Logging.MaxAgeDays)

	configFile := filepath.Join(configPath, "config.yaml")
	if err := v.WriteConfigAs(configFile); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// ClearData removes all persisted favourites data
func ClearData(cfg *Config) error {
	if cfg.Storage.Path == "" {
		return nil
	}
	if err := os.RemoveAll(cfg.Storage.Path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to clear data: %w", err)
	}
	return nil
}

// ConfigPath returns the config directory in use: dir, or the default
// directory when dir is empty
func ConfigPath(dir string) string {
	if dir == "" {
		return defaultConfigPath()
	}
	return dir
}
