// Package aggregate reduces rate candidates to a single reference rate.
package aggregate

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/wn7ant/eve-value/pkg/server/feed"
)

// Policy selects how candidates are reduced to one rate.
type Policy string

const (
	// PolicyMin selects the lowest candidate.
	PolicyMin Policy = "min"
	// PolicyMean computes the arithmetic mean of the candidates.
	PolicyMean Policy = "mean"
	// PolicyMedian computes the median of the candidates.
	PolicyMedian Policy = "median"
	// PolicyManual labels operator-supplied rates. It is never a valid
	// aggregation input policy.
	PolicyManual Policy = "manual"
)

// ReferenceRate is the single trusted exchange rate for a refresh cycle.
// Value is always positive; construction fails otherwise.
type ReferenceRate struct {
	Value      decimal.Decimal `json:"value"`
	AsOf       time.Time       `json:"as_of"`
	Policy     Policy          `json:"policy"`
	Source     string          `json:"source"`
	SampleSize int             `json:"sample_size"`
}

// ParsePolicy converts a config string into a Policy.
func ParsePolicy(s string) (Policy, error) {
	switch strings.ToLower(s) {
	case "min":
		return PolicyMin, nil
	case "mean":
		return PolicyMean, nil
	case "median":
		return PolicyMedian, nil
	default:
		return "", fmt.Errorf("%w: %s (supported: min, mean, median)", ErrUnknownPolicy, s)
	}
}

// Aggregate reduces candidates to a reference rate using the given policy.
// Non-positive candidates are dropped before reduction regardless of what
// the adapters promised. AsOf is the latest observation time among the
// candidates that contributed.
func Aggregate(candidates []feed.Candidate, policy Policy) (*ReferenceRate, error) {
	values := make([]decimal.Decimal, 0, len(candidates))
	source := ""
	var asOf time.Time
	for _, c := range candidates {
		if !c.Value.IsPositive() {
			continue
		}
		values = append(values, c.Value)
		if source == "" {
			source = c.Source
		}
		if c.ObservedAt.After(asOf) {
			asOf = c.ObservedAt
		}
	}
	if len(values) == 0 {
		return nil, ErrNoCandidates
	}
	if asOf.IsZero() {
		asOf = time.Now()
	}

	var value decimal.Decimal
	switch policy {
	case PolicyMin:
		value = minOf(values)
	case PolicyMean:
		value = meanOf(values)
	case PolicyMedian:
		value = medianOf(values)
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnknownPolicy, policy)
	}

	if !value.IsPositive() {
		return nil, fmt.Errorf("%w: got %s", ErrNotPositive, value)
	}

	return &ReferenceRate{
		Value:      value,
		AsOf:       asOf,
		Policy:     policy,
		Source:     source,
		SampleSize: len(values),
	}, nil
}

// Manual constructs a reference rate from an operator-supplied value,
// bypassing feeds and aggregation.
func Manual(value decimal.Decimal) (*ReferenceRate, error) {
	if !value.IsPositive() {
		return nil, fmt.Errorf("%w: got %s", ErrNotPositive, value)
	}
	return &ReferenceRate{
		Value:      value,
		AsOf:       time.Now(),
		Policy:     PolicyManual,
		Source:     "manual",
		SampleSize: 1,
	}, nil
}

// minOf returns the smallest value.
func minOf(values []decimal.Decimal) decimal.Decimal {
	min := values[0]
	for _, v := range values[1:] {
		if v.LessThan(min) {
			min = v
		}
	}
	return min
}

// meanOf returns the arithmetic mean.
func meanOf(values []decimal.Decimal) decimal.Decimal {
	sum := decimal.Zero
	for _, v := range values {
		sum = sum.Add(v)
	}
	return sum.Div(decimal.NewFromInt(int64(len(values))))
}

// medianOf returns the median: the middle of the sorted values, or the
// mean of the two middle values for even counts. Input order does not
// matter; the sort happens on a copy.
func medianOf(values []decimal.Decimal) decimal.Decimal {
	sorted := make([]decimal.Decimal, len(values))
	copy(sorted, values)
	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i].LessThan(sorted[j])
	})

	n := len(sorted)
	if n%2 == 1 {
		return sorted[n/2]
	}
	return sorted[n/2-1].Add(sorted[n/2]).Div(decimal.NewFromInt(2))
}
