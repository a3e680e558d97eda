package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

const (
	// FilePermissions is the default permission mode for regular files
	FilePermissions = 0644
	// DirPermissions is the default permission mode for directories
	DirPermissions = 0755
)

var (
	// ConfigDir is the global configuration directory (~/.soundbrowse)
	ConfigDir string

	// ConfigFile is the YAML settings file
	ConfigFile string

	// CachePath is the SQLite database file for the page cache and
	// username lookup history
	CachePath string

	// SessionFile persists the last-used username between runs
	SessionFile string
)

// Settings holds every tunable the application reads at startup. Retry,
// backoff and minimum-geometry values are deliberately configuration rather
// than constants; the zero value of any field falls back to its default.
type Settings struct {
	APIBaseURL   string `yaml:"api_base_url"`
	ClientID     string `yaml:"client_id"`
	ClientSecret string `yaml:"client_secret"`
	TokenURL     string `yaml:"token_url"`

	PageSize       int `yaml:"page_size"`
	MaxRetries     int `yaml:"max_retries"`
	BackoffBaseMs  int `yaml:"backoff_base_ms"`
	BackoffCapMs   int `yaml:"backoff_cap_ms"`
	MaxConcurrent  int `yaml:"max_concurrent_fetches"`
	RequestTimeout int `yaml:"request_timeout_seconds"`

	MinRows int `yaml:"min_rows"`
	MinCols int `yaml:"min_cols"`
}

// Defaults returns the documented default settings.
func Defaults() Settings {
	return Settings{
		APIBaseURL:     "https://api.soundcloud.com",
		TokenURL:       "https://secure.soundcloud.com/oauth/token",
		PageSize:       50,
		MaxRetries:     3,
		BackoffBaseMs:  250,
		BackoffCapMs:   4000,
		MaxConcurrent:  4,
		RequestTimeout: 30,
		MinRows:        10,
		MinCols:        60,
	}
}

// Initialize sets up the configuration directory and global paths.
// It creates ~/.soundbrowse/ if it doesn't exist.
func Initialize() error {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return fmt.Errorf("failed to get home directory: %w", err)
	}

	ConfigDir = filepath.Join(homeDir, ".soundbrowse")
	ConfigFile = filepath.Join(ConfigDir, "config.yaml")
	CachePath = filepath.Join(ConfigDir, "soundbrowse.db")
	SessionFile = filepath.Join(ConfigDir, ".session.json")

	if err := os.MkdirAll(ConfigDir, DirPermissions); err != nil {
		return fmt.Errorf("failed to create directory %s: %w", ConfigDir, err)
	}

	return nil
}

// Load reads the settings file and fills unset fields with defaults.
// A missing file is not an error; defaults are returned.
func Load() (Settings, error) {
	return LoadFrom(ConfigFile)
}

// LoadFrom reads settings from an explicit path.
func LoadFrom(path string) (Settings, error) {
	settings := Defaults()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return settings, nil
		}
		return settings, fmt.Errorf("failed to read config file: %w", err)
	}

	if err := yaml.Unmarshal(data, &settings); err != nil {
		return settings, fmt.Errorf("failed to parse config file: %w", err)
	}

	applyDefaults(&settings)
	return settings, nil
}

// Save writes the settings back to the config file.
func Save(settings Settings) error {
	data, err := yaml.Marshal(settings)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	if err := os.WriteFile(ConfigFile, data, FilePermissions); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

func applyDefaults(s *Settings) {
	defaults := Defaults()
	if s.APIBaseURL == "" {
		s.APIBaseURL = defaults.APIBaseURL
	}
	if s.TokenURL == "" {
		s.TokenURL = defaults.TokenURL
	}
	if s.PageSize <= 0 {
		s.PageSize = defaults.PageSize
	}
	if s.MaxRetries <= 0 {
		s.MaxRetries = defaults.MaxRetries
	}
	if s.BackoffBaseMs <= 0 {
		s.BackoffBaseMs = defaults.BackoffBaseMs
	}
	if s.BackoffCapMs <= 0 {
		s.BackoffCapMs = defaults.BackoffCapMs
	}
	if s.MaxConcurrent <= 0 {
		s.MaxConcurrent = defaults.MaxConcurrent
	}
	if s.RequestTimeout <= 0 {
		s.RequestTimeout = defaults.RequestTimeout
	}
	if s.MinRows <= 0 {
		s.MinRows = defaults.MinRows
	}
	if s.MinCols <= 0 {
		s.MinCols = defaults.MinCols
	}
}
