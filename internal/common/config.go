// Package common provides shared utilities for Sectorwatch
package common

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	toml "github.com/pelletier/go-toml/v2"
)

// Config holds all configuration for Sectorwatch
type Config struct {
	Environment string              `toml:"environment"`
	Server      ServerConfig        `toml:"server"`
	Storage     StorageConfig       `toml:"storage"`
	Clients     ClientsConfig       `toml:"clients"`
	Market      MarketConfig        `toml:"market"`
	Logging     LoggingConfig       `toml:"logging"`
	Sectors     map[string][]string `toml:"sectors"`
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Host string `toml:"host"`
	Port int    `toml:"port"`
}

// StorageConfig holds SurrealDB connection configuration.
type StorageConfig struct {
	Address   string `toml:"address"`
	Username  string `toml:"username"`
	Password  string `toml:"password"`
	Namespace string `toml:"namespace"`
	Database  string `toml:"database"`
}

// ClientsConfig holds API client configurations
type ClientsConfig struct {
	Tushare TushareConfig `toml:"tushare"`
}

// TushareConfig holds Tushare Pro API configuration
type TushareConfig struct {
	BaseURL   string `toml:"base_url"`
	Token     string `toml:"token"`
	RateLimit int    `toml:"rate_limit"`
	Timeout   string `toml:"timeout"`
}

// GetTimeout parses and returns the timeout duration
func (c *TushareConfig) GetTimeout() time.Duration {
	d, err := time.ParseDuration(c.Timeout)
	if err != nil {
		return 30 * time.Second
	}
	return d
}

// MarketConfig holds pipeline tuning parameters.
type MarketConfig struct {
	WindowDays int    `toml:"window_days"` // trailing history window for metrics
	Freshness  string `toml:"freshness"`   // max snapshot age served without refresh
}

// GetFreshness parses and returns the snapshot freshness window.
func (c *MarketConfig) GetFreshness() time.Duration {
	d, err := time.ParseDuration(c.Freshness)
	if err != nil || d <= 0 {
		return FreshnessSnapshot
	}
	return d
}

// GetWindowDays returns the trailing window length with the default applied.
func (c *MarketConfig) GetWindowDays() int {
	if c.WindowDays <= 0 {
		return 120
	}
	return c.WindowDays
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level  string `toml:"level"`
	Format string `toml:"format"`
}

// NewDefaultConfig returns a Config with sensible defaults
func NewDefaultConfig() *Config {
	return &Config{
		Environment: "development",
		Server: ServerConfig{
			Host: "0.0.0.0",
			Port: 8080,
		},
		Storage: StorageConfig{
			Address:   "ws://localhost:8000",
			Username:  "root",
			Password:  "root",
			Namespace: "sectorwatch",
			Database:  "market",
		},
		Clients: ClientsConfig{
			Tushare: TushareConfig{
				BaseURL:   "https://api.tushare.pro",
				RateLimit: 5,
				Timeout:   "30s",
			},
		},
		Market: MarketConfig{
			WindowDays: 120,
			Freshness:  "30m",
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "console",
		},
	}
}

// LoadConfig loads configuration from files with environment overrides
func LoadConfig(paths ...string) (*Config, error) {
	config := NewDefaultConfig()

	// Load and merge each config file in order (later files override earlier)
	for _, path := range paths {
		if path == "" {
			continue
		}

		if _, err := os.Stat(path); os.IsNotExist(err) {
			continue // Skip missing files
		}

		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
		}

		if err := toml.Unmarshal(data, config); err != nil {
			return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
		}
	}

	applyEnvOverrides(config)

	return config, nil
}

// applyEnvOverrides applies environment variable overrides to config
func applyEnvOverrides(config *Config) {
	if env := os.Getenv("SECTORWATCH_ENV"); env != "" {
		config.Environment = env
	}

	if host := os.Getenv("SECTORWATCH_HOST"); host != "" {
		config.Server.Host = host
	}

	if port := os.Getenv("SECTORWATCH_PORT"); port != "" {
		if p, err := strconv.Atoi(port); err == nil {
			config.Server.Port = p
		}
	}

	if level := os.Getenv("SECTORWATCH_LOG_LEVEL"); level != "" {
		config.Logging.Level = level
	}

	if addr := os.Getenv("SECTORWATCH_STORAGE_ADDRESS"); addr != "" {
		config.Storage.Address = addr
	}

	// Token resolution: prefer the generic Tushare variable, then the scoped one
	for _, name := range []string{"TUSHARE_TOKEN", "SECTORWATCH_TUSHARE_TOKEN"} {
		if token := os.Getenv(name); token != "" {
			config.Clients.Tushare.Token = token
			break
		}
	}

	if window := os.Getenv("SECTORWATCH_WINDOW_DAYS"); window != "" {
		if d, err := strconv.Atoi(window); err == nil && d > 0 {
			config.Market.WindowDays = d
		}
	}
}

// GetSectors returns the configured sector universe, falling back to
// the built-in one when the config carries none.
func (c *Config) GetSectors() map[string][]string {
	if len(c.Sectors) > 0 {
		return c.Sectors
	}
	return DefaultSectors()
}

// IsProduction returns true if running in production mode
func (c *Config) IsProduction() bool {
	env := strings.ToLower(strings.TrimSpace(c.Environment))
	return env == "production" || env == "prod"
}
