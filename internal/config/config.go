package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// DefaultPath returns the default config file path.
func DefaultPath() string {
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".config", "readtrack", "config.yml")
}

// Load reads the config from disk (or env). Returns defaults if no file
// exists yet — readtrack works out of the box without one.
func Load() (*Config, error) {
	v := viper.New()

	v.SetDefault("catalog.api_base", "https://openlibrary.org")
	v.SetDefault("google.api_base", "https://www.googleapis.com/books/v1")
	v.SetDefault("google.key_env", "GOOGLE_BOOKS_API_KEY")
	v.SetDefault("loading.batch_size", 50)
	v.SetDefault("loading.page_size", 10)
	v.SetDefault("loading.pause_ms", 300)
	v.SetDefault("loading.timeout_seconds", 10)
	v.SetDefault("defaults.data_dir", defaultDataDir())
	v.SetDefault("defaults.timeframe", "daily")
	v.SetDefault("defaults.search_limit", 20)

	v.SetEnvPrefix("READTRACK")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	configPath := os.Getenv("READTRACK_CONFIG")
	if configPath == "" {
		configPath = DefaultPath()
	}
	v.SetConfigFile(configPath)

	if err := v.ReadInConfig(); err != nil {
		// Not finding the config file is fine.
		if !os.IsNotExist(err) {
			if _, isCfgNotFound := err.(viper.ConfigFileNotFoundError); !isCfgNotFound {
				return nil, fmt.Errorf("reading config: %w", err)
			}
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}

	// Resolve the key from env (never stored in the file).
	keyEnv := cfg.Google.KeyEnv
	if keyEnv == "" {
		keyEnv = "GOOGLE_BOOKS_API_KEY"
	}
	cfg.Google.Key = os.Getenv(keyEnv)
	if cfg.Google.Key == "" {
		cfg.Google.Key = os.Getenv("READTRACK_GOOGLE_KEY")
	}

	cfg.Defaults.DataDir = ExpandHome(cfg.Defaults.DataDir)

	return &cfg, nil
}

// Save writes the config to the default path.
func Save(cfg *Config) error {
	path := DefaultPath()
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	enc := yaml.NewEncoder(f)
	enc.SetIndent(2)
	return enc.Encode(cfg)
}

// ExpandHome expands a leading ~/ in a path.
func ExpandHome(path string) string {
	if strings.HasPrefix(path, "~/") {
		home, _ := os.UserHomeDir()
		return filepath.Join(home, path[2:])
	}
	return path
}

func defaultDataDir() string {
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".local", "share", "readtrack")
}
