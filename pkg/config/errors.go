// Package config provides configuration loading and validation for eve-value.
package config

import "errors"

var (
	// ErrNoFeedsConfigured indicates that no rate feeds are configured.
	ErrNoFeedsConfigured = errors.New("at least one rate feed must be configured")
	// ErrNoFeedsEnabled indicates that no configured feed is enabled.
	ErrNoFeedsEnabled = errors.New("no rate feeds enabled")
	// ErrInvalidPolicy indicates that the aggregation policy is invalid.
	ErrInvalidPolicy = errors.New("invalid policy")
	// ErrInvalidFeedType indicates that the feed type is unknown.
	ErrInvalidFeedType = errors.New("invalid feed type")
	// ErrFeedNameRequired indicates that a feed name must be specified.
	ErrFeedNameRequired = errors.New("feed name must be specified")
	// ErrNegativePriority indicates that a feed priority must be >= 0.
	ErrNegativePriority = errors.New("priority must be >= 0")
	// ErrOffersURLRequired indicates that catalog.offers_url must be specified.
	ErrOffersURLRequired = errors.New("catalog offers_url must be specified")
	// ErrNonPositiveInterval indicates that the refresh interval must be positive.
	ErrNonPositiveInterval = errors.New("refresh interval must be positive")
	// ErrNonPositiveTimeout indicates that the refresh timeout must be positive.
	ErrNonPositiveTimeout = errors.New("refresh timeout must be positive")
	// ErrInvalidBlockSize indicates that the valuation block size must be positive.
	ErrInvalidBlockSize = errors.New("block_size must be positive")
	// ErrInvalidEpsilon indicates that the valuation epsilon must not be negative.
	ErrInvalidEpsilon = errors.New("epsilon must be >= 0")
	// ErrTLSConfigIncomplete indicates that TLS config is incomplete.
	ErrTLSConfigIncomplete = errors.New("TLS cert and key must be specified when TLS is enabled")
	// ErrTLSCertNotFound indicates that the TLS cert file was not found.
	ErrTLSCertNotFound = errors.New("TLS cert file not found")
	// ErrTLSKeyNotFound indicates that the TLS key file was not found.
	ErrTLSKeyNotFound = errors.New("TLS key file not found")
	// ErrInvalidLogLevel indicates that the log level is invalid.
	ErrInvalidLogLevel = errors.New("invalid log level")
	// ErrInvalidLogFormat indicates that the log format is invalid.
	ErrInvalidLogFormat = errors.New("invalid log format")
)
