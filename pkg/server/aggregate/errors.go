// Package aggregate reduces rate candidates to a single reference rate.
package aggregate

import "errors"

var (
	// ErrNoCandidates indicates that no usable candidates were provided.
	ErrNoCandidates = errors.New("no candidates to aggregate")
	// ErrNotPositive indicates that the rate is zero or negative.
	ErrNotPositive = errors.New("rate must be positive")
	// ErrUnknownPolicy indicates that the aggregation policy is unknown.
	ErrUnknownPolicy = errors.New("unknown aggregation policy")
)
