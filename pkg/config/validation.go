package config

import (
	"fmt"
	"os"
	"strings"
)

// Validate checks configuration for errors
func Validate(cfg *Config) error {
	if err := validateServerConfig(&cfg.Server); err != nil {
		return fmt.Errorf("server config: %w", err)
	}

	if err := validateRefreshConfig(&cfg.Refresh); err != nil {
		return fmt.Errorf("refresh config: %w", err)
	}

	if err := validateValuationConfig(&cfg.Valuation); err != nil {
		return fmt.Errorf("valuation config: %w", err)
	}

	if cfg.Catalog.OffersURL == "" {
		return ErrOffersURLRequired
	}

	// Validate feeds
	if len(cfg.Feeds) == 0 {
		return ErrNoFeedsConfigured
	}
	enabled := 0
	for i, feed := range cfg.Feeds {
		if err := validateFeedConfig(&feed); err != nil {
			return fmt.Errorf("feed %d (%s.%s): %w", i, feed.Type, feed.Name, err)
		}
		if feed.Enabled {
			enabled++
		}
	}
	if enabled == 0 {
		return ErrNoFeedsEnabled
	}

	// Validate logging config
	if err := validateLoggingConfig(&cfg.Logging); err != nil {
		return fmt.Errorf("logging config: %w", err)
	}

	return nil
}

func validateServerConfig(cfg *ServerConfig) error {
	if cfg.HTTP.TLS.Enabled {
		if cfg.HTTP.TLS.Cert == "" || cfg.HTTP.TLS.Key == "" {
			return ErrTLSConfigIncomplete
		}
		if _, err := os.Stat(cfg.HTTP.TLS.Cert); err != nil {
			return fmt.Errorf("%w: %s", ErrTLSCertNotFound, cfg.HTTP.TLS.Cert)
		}
		if _, err := os.Stat(cfg.HTTP.TLS.Key); err != nil {
			return fmt.Errorf("%w: %s", ErrTLSKeyNotFound, cfg.HTTP.TLS.Key)
		}
	}

	return nil
}

func validateRefreshConfig(cfg *RefreshConfig) error {
	policy := strings.ToLower(cfg.Policy)
	if policy != "min" && policy != "mean" && policy != "median" {
		return fmt.Errorf("%w: %s (must be 'min', 'mean', or 'median')", ErrInvalidPolicy, cfg.Policy)
	}
	if cfg.Interval.ToDuration() <= 0 {
		return ErrNonPositiveInterval
	}
	if cfg.Timeout.ToDuration() <= 0 {
		return ErrNonPositiveTimeout
	}

	return nil
}

func validateValuationConfig(cfg *ValuationConfig) error {
	if cfg.BlockSize <= 0 {
		return ErrInvalidBlockSize
	}
	if cfg.Epsilon < 0 {
		return ErrInvalidEpsilon
	}

	return nil
}

func validateFeedConfig(cfg *FeedConfig) error {
	// Validate type
	validTypes := []string{"esi", "fuzzwork"}
	typeValid := false
	for _, t := range validTypes {
		if strings.ToLower(cfg.Type) == t {
			typeValid = true
			break
		}
	}
	if !typeValid {
		return fmt.Errorf("%w: %s (must be one of: %s)", ErrInvalidFeedType, cfg.Type, strings.Join(validTypes, ", "))
	}

	// Validate name
	if cfg.Name == "" {
		return ErrFeedNameRequired
	}

	if cfg.Priority < 0 {
		return ErrNegativePriority
	}

	return nil
}

func validateLoggingConfig(cfg *LoggingConfig) error {
	// Validate level
	validLevels := []string{"debug", "info", "warn", "error"}
	levelValid := false
	for _, l := range validLevels {
		if strings.ToLower(cfg.Level) == l {
			levelValid = true
			break
		}
	}
	if !levelValid {
		return fmt.Errorf("%w: %s (must be one of: %s)", ErrInvalidLogLevel, cfg.Level, strings.Join(validLevels, ", "))
	}

	// Validate format
	formatValid := strings.ToLower(cfg.Format) == "json" || strings.ToLower(cfg.Format) == "text"
	if !formatValid {
		return fmt.Errorf("%w: %s (must be 'json' or 'text')", ErrInvalidLogFormat, cfg.Format)
	}

	return nil
}
