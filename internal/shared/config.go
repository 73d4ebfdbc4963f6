package shared

import (
	_ "embed"
	"fmt"
	"os"
	"time"

	"github.com/BurntSushi/toml"
)

//go:embed config.example.toml
var exampleConf []byte

// Config represents the application configuration loaded from a TOML file.
type Config struct {
	Server  ServerConfig  `toml:"server"`
	Session SessionConfig `toml:"session"`
	Sync    SyncConfig    `toml:"sync"`
	Cache   CacheConfig   `toml:"cache"`
}

// ServerConfig describes the WeiCopy server the client talks to.
type ServerConfig struct {
	BaseURL        string  `toml:"base_url"`
	TimeoutSeconds int     `toml:"timeout_seconds"`
	RateLimit      float64 `toml:"rate_limit"`
}

// SessionConfig controls where the bearer token is persisted between runs.
type SessionConfig struct {
	TokenPath string `toml:"token_path"`
}

// SyncConfig controls the polling scheduler.
type SyncConfig struct {
	PollIntervalSeconds int `toml:"poll_interval_seconds"`
}

// CacheConfig contains local snapshot cache settings. An empty path disables
// the cache.
type CacheConfig struct {
	Path         string `toml:"path"`
	MaxOpenConns int    `toml:"max_open_conns"`
	MaxIdleConns int    `toml:"max_idle_conns"`
}

// LoadConfig reads and parses a TOML configuration file from the specified path.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var config Config
	if err := toml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	return &config, nil
}

// DefaultConfig returns a Config with sensible defaults loaded from the embedded example config.
func DefaultConfig() *Config {
	var config Config
	if err := toml.Unmarshal(exampleConf, &config); err != nil {
		panic(fmt.Sprintf("failed to parse embedded default config: %v", err))
	}
	return &config
}

// CreateConfigFile creates a config.toml file at the specified path using the embedded example config.
func CreateConfigFile(path string) error {
	// Check if file already exists
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("config file already exists at %s: %w", path, err)
	}

	// Write the embedded example config to the file
	if err := os.WriteFile(path, exampleConf, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// PollInterval returns the polling interval as a [time.Duration], falling
// back to 10 seconds when unset or invalid.
func (c *Config) PollInterval() time.Duration {
	if c.Sync.PollIntervalSeconds <= 0 {
		return 10 * time.Second
	}
	return time.Duration(c.Sync.PollIntervalSeconds) * time.Second
}

// Timeout returns the HTTP client timeout, defaulting to 30 seconds.
func (c *Config) Timeout() time.Duration {
	if c.Server.TimeoutSeconds <= 0 {
		return 30 * time.Second
	}
	return time.Duration(c.Server.TimeoutSeconds) * time.Second
}

// TokenPath returns the resolved token file location.
func (c *Config) TokenPath() string {
	if c.Session.TokenPath == "" {
		return ExpandPath("~/.weicopy/token.json")
	}
	return ExpandPath(c.Session.TokenPath)
}

// CachePath returns the resolved snapshot cache location, or "" when the
// cache is disabled.
func (c *Config) CachePath() string {
	if c.Cache.Path == "" {
		return ""
	}
	return ExpandPath(c.Cache.Path)
}
