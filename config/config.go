// Package config provides configuration loading and management for the
// recovery token core.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// Config represents the complete application configuration.
type Config struct {
	NATS    NATSConfig    `yaml:"nats"`
	Roster  RosterConfig  `yaml:"roster"`
	Gifts   GiftsConfig   `yaml:"gifts"`
	Metrics MetricsConfig `yaml:"metrics"`
}

// NATSConfig configures the NATS connection backing the document store.
type NATSConfig struct {
	// URL is the NATS server URL (empty = use embedded server)
	URL string `yaml:"url"`
	// Embedded indicates whether to run an embedded JetStream server
	Embedded bool `yaml:"embedded"`
	// Timeout bounds every document store call (duration string, e.g. "5s")
	Timeout string `yaml:"timeout"`
}

// GetTimeout returns the store call timeout as a duration.
func (c *NATSConfig) GetTimeout() time.Duration {
	if c.Timeout == "" {
		return 5 * time.Second
	}
	d, err := time.ParseDuration(c.Timeout)
	if err != nil {
		return 5 * time.Second
	}
	return d
}

// RosterConfig configures roster document storage.
type RosterConfig struct {
	// Bucket is the KV bucket holding roster documents
	Bucket string `yaml:"bucket"`
	// Key is the document key for this account's roster
	Key string `yaml:"key"`
}

// GiftsConfig configures the order feed used for gift attribution.
type GiftsConfig struct {
	// FeedPath is the default order feed file
	FeedPath string `yaml:"feed_path"`
	// WatchDebounce is how long to let the feed file settle before reload
	// (duration string, e.g. "500ms")
	WatchDebounce string `yaml:"watch_debounce"`
}

// GetWatchDebounce returns the feed settle delay as a duration.
func (c *GiftsConfig) GetWatchDebounce() time.Duration {
	if c.WatchDebounce == "" {
		return 500 * time.Millisecond
	}
	d, err := time.ParseDuration(c.WatchDebounce)
	if err != nil {
		return 500 * time.Millisecond
	}
	return d
}

// MetricsConfig configures the optional Prometheus listener.
type MetricsConfig struct {
	// Addr is the listen address for /metrics (empty = disabled)
	Addr string `yaml:"addr"`
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		NATS: NATSConfig{
			URL:      "",
			Embedded: true,
			Timeout:  "5s",
		},
		Roster: RosterConfig{
			Bucket: "RECOVERY_ROSTERS",
			Key:    "roster",
		},
		Gifts: GiftsConfig{
			FeedPath:      "",
			WatchDebounce: "500ms",
		},
		Metrics: MetricsConfig{
			Addr: "",
		},
	}
}

// Validate checks that the configuration is valid.
func (c *Config) Validate() error {
	if c.Roster.Bucket == "" {
		return fmt.Errorf("roster.bucket is required")
	}
	if c.Roster.Key == "" {
		return fmt.Errorf("roster.key is required")
	}
	if c.NATS.Timeout != "" {
		if _, err := time.ParseDuration(c.NATS.Timeout); err != nil {
			return fmt.Errorf("invalid nats.timeout: %w", err)
		}
	}
	if c.Gifts.WatchDebounce != "" {
		if _, err := time.ParseDuration(c.Gifts.WatchDebounce); err != nil {
			return fmt.Errorf("invalid gifts.watch_debounce: %w", err)
		}
	}
	return nil
}

// Merge merges another config into this one (other takes precedence for
// non-zero values).
func (c *Config) Merge(other *Config) {
	if other == nil {
		return
	}

	// NATS
	if other.NATS.URL != "" {
		c.NATS.URL = other.NATS.URL
		c.NATS.Embedded = false
	}
	if other.NATS.Timeout != "" {
		c.NATS.Timeout = other.NATS.Timeout
	}

	// Roster
	if other.Roster.Bucket != "" {
		c.Roster.Bucket = other.Roster.Bucket
	}
	if other.Roster.Key != "" {
		c.Roster.Key = other.Roster.Key
	}

	// Gifts
	if other.Gifts.FeedPath != "" {
		c.Gifts.FeedPath = other.Gifts.FeedPath
	}
	if other.Gifts.WatchDebounce != "" {
		c.Gifts.WatchDebounce = other.Gifts.WatchDebounce
	}

	// Metrics
	if other.Metrics.Addr != "" {
		c.Metrics.Addr = other.Metrics.Addr
	}
}

// LoadFromFile loads configuration from a YAML file.
func LoadFromFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	config := DefaultConfig()
	if err := yaml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	return config, nil
}

// SaveToFile saves configuration to a YAML file.
func (c *Config) SaveToFile(path string) error {
	// Ensure parent directory exists
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}
