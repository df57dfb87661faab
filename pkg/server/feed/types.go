// Package feed provides rate feed interfaces and implementations.
package feed

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

// SourceType represents the type of rate feed
type SourceType string

const (
	SourceTypeESI      SourceType = "esi"
	SourceTypeFuzzwork SourceType = "fuzzwork"
)

// Candidate is a single observed exchange rate in ISK per unit.
// Candidates only exist inside a refresh cycle; adapters never emit
// non-positive or non-finite values.
type Candidate struct {
	Value      decimal.Decimal `json:"value"`
	Source     string          `json:"source"`
	ObservedAt time.Time       `json:"observed_at"`
}

// Source defines the interface that all rate feeds must implement.
// Feeds are passive: the refresher drives fetching, one call per cycle.
type Source interface {
	// FetchCandidates fetches the current rate candidates from the feed
	FetchCandidates(ctx context.Context) ([]Candidate, error)

	// Name returns the unique name of this feed
	Name() string

	// Type returns the type of this feed
	Type() SourceType

	// IsHealthy returns whether the last fetch succeeded
	IsHealthy() bool
}

// SourceFactory is a function that creates a new Source instance
type SourceFactory func(config map[string]interface{}) (Source, error)
