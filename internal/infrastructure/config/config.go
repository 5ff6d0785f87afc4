package config

import (
	"fmt"

	"github.com/kelseyhightower/envconfig"
)

// Config holds all application configuration.
type Config struct {
	Server    ServerConfig
	Vault     VaultConfig
	Settings  SettingsConfig
	Snapshot  SnapshotConfig
	Logging   LogConfig
	RateLimit RateLimitConfig
}

// ServerConfig holds HTTP server configuration.
type ServerConfig struct {
	Port        string   `envconfig:"PORT" default:"8000"`
	Host        string   `envconfig:"HOST" default:"127.0.0.1"`
	CORSOrigins []string `envconfig:"CORS_ORIGINS" default:"*"`
}

// VaultConfig holds the document vault configuration. An empty root
// disables the vault.
type VaultConfig struct {
	Root    string   `envconfig:"VAULT_ROOT"`
	Include []string `envconfig:"VAULT_INCLUDE" default:"**/*.md"`
	Watch   bool     `envconfig:"VAULT_WATCH" default:"true"`
}

// SettingsConfig holds the settings file location. An empty path keeps
// settings in memory.
type SettingsConfig struct {
	Path string `envconfig:"SETTINGS_PATH"`
}

// SnapshotConfig holds editing-state snapshot configuration.
type SnapshotConfig struct {
	CompressThreshold  int  `envconfig:"SNAPSHOT_COMPRESS_THRESHOLD" default:"65536"`
	AllowUnsafeHistory bool `envconfig:"SNAPSHOT_UNSAFE_HISTORY" default:"false"`
}

// LogConfig holds logging configuration.
type LogConfig struct {
	Level       string `envconfig:"LOG_LEVEL" default:"info"`
	Development bool   `envconfig:"LOG_DEV" default:"false"`
}

// RateLimitConfig holds rate limiting configuration.
type RateLimitConfig struct {
	RequestsPerSecond int  `envconfig:"RATE_LIMIT_RPS" default:"100"`
	Burst             int  `envconfig:"RATE_LIMIT_BURST" default:"200"`
	Enabled           bool `envconfig:"RATE_LIMIT_ENABLED" default:"true"`
}

// Load loads configuration from environment variables.
func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// LoadOrDefault loads configuration from environment or returns default.
func LoadOrDefault() *Config {
	cfg, err := Load()
	if err != nil {
		return Default()
	}
	return cfg
}

// Validate checks values envconfig cannot
func (c *Config) Validate() error {
	if c.Snapshot.CompressThreshold < 0 {
		return fmt.Errorf("invalid config: SNAPSHOT_COMPRESS_THRESHOLD must not be negative")
	}
	if c.RateLimit.Enabled && (c.RateLimit.RequestsPerSecond <= 0 || c.RateLimit.Burst <= 0) {
		return fmt.Errorf("invalid config: rate limit must be positive when enabled")
	}
	return nil
}

// Default returns default configuration.
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Port:        "8000",
			Host:        "127.0.0.1",
			CORSOrigins: []string{"*"},
		},
		Vault: VaultConfig{
			Include: []string{"**/*.md"},
			Watch:   true,
		},
		Snapshot: SnapshotConfig{
			CompressThreshold: 64 << 10,
		},
		Logging: LogConfig{
			Level:       "info",
			Development: false,
		},
		RateLimit: RateLimitConfig{
			RequestsPerSecond: 100,
			Burst:             200,
			Enabled:           true,
		},
	}
}
