// Package config provides configuration loading and validation for eve-value.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// Load loads configuration from YAML file and environment variables.
func Load(path string) (*Config, error) {
	// Validate and sanitize path
	cleanPath := filepath.Clean(path)
	absPath, err := filepath.Abs(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("invalid config path: %w", err)
	}

	// Read config file
	data, err := os.ReadFile(absPath) // #nosec G304 -- Path sanitized with filepath.Clean and filepath.Abs
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	// Expand environment variables in YAML
	expanded := os.ExpandEnv(string(data))

	// Parse YAML
	var cfg Config
	if err := yaml.Unmarshal([]byte(expanded), &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	// Apply defaults
	applyDefaults(&cfg)

	return &cfg, nil
}

// applyDefaults sets default values for optional fields.
func applyDefaults(cfg *Config) {
	// Server defaults
	if cfg.Server.HTTP.Addr == "" {
		cfg.Server.HTTP.Addr = ":8080"
	}

	// Refresh defaults
	if cfg.Refresh.Interval.ToDuration() == 0 {
		cfg.Refresh.Interval = Duration(5 * time.Minute)
	}
	if cfg.Refresh.Timeout.ToDuration() == 0 {
		cfg.Refresh.Timeout = Duration(20 * time.Second)
	}
	if cfg.Refresh.Policy == "" {
		cfg.Refresh.Policy = "median"
	}

	// Valuation defaults: one billion ISK per block
	if cfg.Valuation.BlockSize == 0 {
		cfg.Valuation.BlockSize = 1_000_000_000
	}
	if cfg.Valuation.Epsilon == 0 {
		cfg.Valuation.Epsilon = 1e-9
	}

	// Catalog defaults
	if cfg.Catalog.Timeout.ToDuration() == 0 {
		cfg.Catalog.Timeout = Duration(10 * time.Second)
	}

	// Metrics defaults
	if cfg.Metrics.Enabled && cfg.Metrics.Addr == "" {
		cfg.Metrics.Addr = ":9091"
	}
	if cfg.Metrics.Path == "" {
		cfg.Metrics.Path = "/metrics"
	}

	// Logging defaults
	if cfg.Logging.Level == "" {
		cfg.Logging.Level = "info"
	}
	if cfg.Logging.Format == "" {
		cfg.Logging.Format = "json"
	}
	if cfg.Logging.Output == "" {
		cfg.Logging.Output = "stdout"
	}
}

// GetString retrieves a string value from the feed configuration.
func (fc *FeedConfig) GetString(key, defaultValue string) string {
	if val, ok := fc.Config[key]; ok {
		if str, ok := val.(string); ok {
			return str
		}
	}
	return defaultValue
}

// GetStringSlice retrieves a string slice from feed config.
func (fc *FeedConfig) GetStringSlice(key string) []string {
	if val, ok := fc.Config[key]; ok {
		if slice, ok := val.([]interface{}); ok {
			result := make([]string, 0, len(slice))
			for _, item := range slice {
				if str, ok := item.(string); ok {
					result = append(result, str)
				}
			}
			return result
		}
	}
	return nil
}

// GetInt retrieves an integer from feed config.
func (fc *FeedConfig) GetInt(key string, defaultValue int) int {
	if val, ok := fc.Config[key]; ok {
		if i, ok := val.(int); ok {
			return i
		}
	}
	return defaultValue
}

// GetBool retrieves a boolean from feed config.
func (fc *FeedConfig) GetBool(key string, defaultValue bool) bool {
	if val, ok := fc.Config[key]; ok {
		if b, ok := val.(bool); ok {
			return b
		}
	}
	return defaultValue
}

// PlansEnabled reports whether a plans document is configured.
func (c *Config) PlansEnabled() bool {
	return c.Catalog.PlansURL != ""
}
