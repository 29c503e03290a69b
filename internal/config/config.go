// Package config loads and saves ~/.title-match/config.json.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"
)

// KnownProviders lists the catalog providers in their default search order.
var KnownProviders = []string{"tmdb", "tvdb", "tvmaze", "omdb"}

// KeyFiles names the secret files each provider reads its credential from.
// Relative paths resolve against the config directory.
type KeyFiles struct {
	TMDB          string `json:"tmdb"`
	TVDB          string `json:"tvdb"`
	OMDb          string `json:"omdb"`
	FanartProject string `json:"fanarttv_project"`
	FanartClient  string `json:"fanarttv_client"`
}

// Config holds every persistent setting. Command line flags override a
// loaded Config per invocation.
type Config struct {
	Providers []string `json:"providers"`
	Keys      KeyFiles `json:"keys"`

	Language       string `json:"language"`
	TVDBLanguage   string `json:"tvdb_language"`
	SearchLimit    int    `json:"search_limit"`
	IncludeAdult   bool   `json:"include_adult"`
	TVDBSeasonType string `json:"tvdb_season_type"`

	// OMDbAllowMissingEpisodes keeps OMDb seasons whose episode list has gaps.
	OMDbAllowMissingEpisodes bool `json:"omdb_allow_missing_episodes"`

	CacheBackend       string `json:"cache_backend"`
	CacheDays          int    `json:"cache_days"`
	CachePath          string `json:"cache_path"`
	HTTPTimeoutSeconds int    `json:"http_timeout_seconds"`

	LogLevel  string `json:"log_level"`
	LogFormat string `json:"log_format"`
	LogPath   string `json:"log_path"`

	EnableLogging    bool `json:"enable_logging"`
	LogRetentionDays int  `json:"log_retention_days"`
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		Providers: slices.Clone(KnownProviders),
		Keys: KeyFiles{
			TMDB:          "TMDB_API_KEY",
			TVDB:          "TVDB_API_KEY",
			OMDb:          "OMDB_API_KEY",
			FanartProject: "FANARTTV_PROJECT_API_KEY",
			FanartClient:  "FANARTTV_API_KEY",
		},
		Language:           "en-US",
		TVDBLanguage:       "eng",
		SearchLimit:        5,
		TVDBSeasonType:     "official",
		CacheBackend:       "bolt",
		CacheDays:          30,
		HTTPTimeoutSeconds: 30,
		LogLevel:           "warn",
		LogFormat:          "console",
		EnableLogging:      true,
		LogRetentionDays:   30,
	}
}

// Dir returns the configuration directory, ~/.title-match.
func Dir() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}
	return filepath.Join(homeDir, ".title-match"), nil
}

// ConfigPath returns the path to the config file.
func ConfigPath() (string, error) {
	dir, err := Dir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.json"), nil
}

// Load reads the configuration from disk. A missing file yields defaults.
func Load() (*Config, error) {
	path, err := ConfigPath()
	if err != nil {
		return nil, err
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return DefaultConfig(), nil
		}
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	// Unmarshalling over the defaults keeps booleans that are absent from
	// the file at their default value.
	cfg := DefaultConfig()
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}
	cfg.fillDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (cfg *Config) fillDefaults() {
	defaults := DefaultConfig()
	if len(cfg.Providers) == 0 {
		cfg.Providers = defaults.Providers
	}
	if cfg.Keys.TMDB == "" {
		cfg.Keys.TMDB = defaults.Keys.TMDB
	}
	if cfg.Keys.TVDB == "" {
		cfg.Keys.TVDB = defaults.Keys.TVDB
	}
	if cfg.Keys.OMDb == "" {
		cfg.Keys.OMDb = defaults.Keys.OMDb
	}
	if cfg.Keys.FanartProject == "" {
		cfg.Keys.FanartProject = defaults.Keys.FanartProject
	}
	if cfg.Keys.FanartClient == "" {
		cfg.Keys.FanartClient = defaults.Keys.FanartClient
	}
	if cfg.Language == "" {
		cfg.Language = defaults.Language
	}
	if cfg.TVDBLanguage == "" {
		cfg.TVDBLanguage = defaults.TVDBLanguage
	}
	if cfg.SearchLimit <= 0 {
		cfg.SearchLimit = defaults.SearchLimit
	}
	if cfg.TVDBSeasonType == "" {
		cfg.TVDBSeasonType = defaults.TVDBSeasonType
	}
	if cfg.CacheBackend == "" {
		cfg.CacheBackend = defaults.CacheBackend
	}
	if cfg.CacheDays <= 0 {
		cfg.CacheDays = defaults.CacheDays
	}
	if cfg.HTTPTimeoutSeconds <= 0 {
		cfg.HTTPTimeoutSeconds = defaults.HTTPTimeoutSeconds
	}
	if cfg.LogLevel == "" {
		cfg.LogLevel = defaults.LogLevel
	}
	if cfg.LogFormat == "" {
		cfg.LogFormat = defaults.LogFormat
	}
	if cfg.LogRetentionDays <= 0 {
		cfg.LogRetentionDays = defaults.LogRetentionDays
	}
}

// Validate rejects unknown providers and cache backends.
func (cfg *Config) Validate() error {
	seen := make(map[string]bool, len(cfg.Providers))
	for _, name := range cfg.Providers {
		if !slices.Contains(KnownProviders, name) {
			return fmt.Errorf("unknown provider %q (known: %s)", name, strings.Join(KnownProviders, ", "))
		}
		if seen[name] {
			return fmt.Errorf("provider %q listed twice", name)
		}
		seen[name] = true
	}
	switch cfg.CacheBackend {
	case "bolt", "memory", "none":
	default:
		return fmt.Errorf("unknown cache backend %q", cfg.CacheBackend)
	}
	return nil
}

// Save writes the configuration to disk.
func (cfg *Config) Save() error {
	path, err := ConfigPath()
	if err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

// Resolve returns path unchanged when absolute, else joined to the config
// directory. An empty path stays empty.
func Resolve(path string) (string, error) {
	if path == "" || filepath.IsAbs(path) {
		return path, nil
	}
	if strings.HasPrefix(path, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("failed to get home directory: %w", err)
		}
		return filepath.Join(home, path[2:]), nil
	}
	dir, err := Dir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, path), nil
}

// CacheFile returns the resolved cache location for the configured backend.
func (cfg *Config) CacheFile() (string, error) {
	path := cfg.CachePath
	if path == "" {
		switch cfg.CacheBackend {
		case "memory":
			path = "cache.gob"
		case "none":
			return "", nil
		default:
			path = "cache.db"
		}
	}
	return Resolve(path)
}

// CacheTTL returns the cache expiry.
func (cfg *Config) CacheTTL() time.Duration {
	return time.Duration(cfg.CacheDays) * 24 * time.Hour
}

// HTTPTimeout returns the per-request timeout.
func (cfg *Config) HTTPTimeout() time.Duration {
	return time.Duration(cfg.HTTPTimeoutSeconds) * time.Second
}
