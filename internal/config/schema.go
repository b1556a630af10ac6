package config

import (
	"path/filepath"
	"time"
)

// Config is the top-level readtrack configuration.
type Config struct {
	Catalog  CatalogConfig  `mapstructure:"catalog"`
	Google   GoogleConfig   `mapstructure:"google"`
	Loading  LoadingConfig  `mapstructure:"loading"`
	Defaults DefaultsConfig `mapstructure:"defaults"`
}

// CatalogConfig holds library-records service connection settings.
type CatalogConfig struct {
	APIBase string `mapstructure:"api_base"`
}

// GoogleConfig holds the optional book-search backend settings.
type GoogleConfig struct {
	APIBase string `mapstructure:"api_base"`
	KeyEnv  string `mapstructure:"key_env"`
	Key     string `mapstructure:"-"` // resolved at runtime, never written
}

// LoadingConfig tunes incremental batch loading.
type LoadingConfig struct {
	BatchSize      int `mapstructure:"batch_size"`
	PageSize       int `mapstructure:"page_size"`
	PauseMs        int `mapstructure:"pause_ms"`
	TimeoutSeconds int `mapstructure:"timeout_seconds"`
}

// DefaultsConfig holds default values for commands.
type DefaultsConfig struct {
	DataDir     string `mapstructure:"data_dir"`
	Timeframe   string `mapstructure:"timeframe"` // trending window: daily, weekly, monthly
	SearchLimit int    `mapstructure:"search_limit"`
}

// Pause returns the inter-batch delay as a duration.
func (l LoadingConfig) Pause() time.Duration {
	return time.Duration(l.PauseMs) * time.Millisecond
}

// Timeout returns the per-batch deadline as a duration.
func (l LoadingConfig) Timeout() time.Duration {
	return time.Duration(l.TimeoutSeconds) * time.Second
}

// StatePath is the shelf and progress state file under the data dir.
func (c *Config) StatePath() string {
	return filepath.Join(c.Defaults.DataDir, "state.json")
}

// CachePath is the catalog cache file under the data dir.
func (c *Config) CachePath() string {
	return filepath.Join(c.Defaults.DataDir, "cache.json")
}

// HasGoogleKey reports whether the book-search backend is usable.
func (c *Config) HasGoogleKey() bool {
	return c.Google.Key != ""
}
