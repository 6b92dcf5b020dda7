package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds application configuration.
type Config struct {
	Backend  BackendConfig
	Database DatabaseConfig
	Session  SessionConfig
}

// BackendConfig holds generation-service settings.
type BackendConfig struct {
	BaseURL        string
	PollIntervalMS int
}

// PollInterval returns the assets-status polling interval.
func (b BackendConfig) PollInterval() time.Duration {
	if b.PollIntervalMS <= 0 {
		return 2 * time.Second
	}
	return time.Duration(b.PollIntervalMS) * time.Millisecond
}

// DatabaseConfig holds sqlite settings.
type DatabaseConfig struct {
	Path string
}

// SessionConfig holds session defaults the TUI starts from.
type SessionConfig struct {
	DefaultBPM int
}

// Load reads configuration from file and env. Env var overrides use prefix JAMDECK_.
func Load() (Config, error) {
	v := viper.New()

	// default values
	v.SetDefault("backend.base_url", "http://localhost:8590")
	v.SetDefault("backend.poll_interval_ms", 2000)
	v.SetDefault("database.path", filepath.Join(os.Getenv("HOME"), ".local", "share", "jamdeck", "jamdeck.db"))
	v.SetDefault("session.default_bpm", 120)

	v.SetConfigType("toml")

	cfgPath := os.Getenv("JAMDECK_CONFIG")
	if cfgPath != "" {
		v.SetConfigFile(cfgPath)
	} else {
		v.AddConfigPath(filepath.Join(os.Getenv("HOME"), ".config", "jamdeck"))
		v.SetConfigName("config")
	}

	v.SetEnvPrefix("JAMDECK")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	// read config file if present
	_ = v.ReadInConfig()

	var c Config
	if err := v.Unmarshal(&c); err != nil {
		return Config{}, fmt.Errorf("unmarshal config: %w", err)
	}
	return c, nil
}

// Save writes the provided config to disk, creating the config directory if
// needed. Used by the TUI settings view.
func Save(cfg Config) error {
	path := os.Getenv("JAMDECK_CONFIG")
	if path == "" {
		path = filepath.Join(os.Getenv("HOME"), ".config", "jamdeck", "config.toml")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("mkdir config dir: %w", err)
	}

	v := viper.New()
	v.SetConfigType("toml")
	v.Set("backend.base_url", cfg.Backend.BaseURL)
	v.Set("backend.poll_interval_ms", cfg.Backend.PollIntervalMS)
	v.Set("database.path", cfg.Database.Path)
	v.Set("session.default_bpm", cfg.Session.DefaultBPM)

	if err := v.WriteConfigAs(path); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	return nil
}
