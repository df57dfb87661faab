// Package fuzzwork provides a rate feed backed by the Fuzzwork market
// aggregates service.
package fuzzwork

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/shopspring/decimal"
	"github.com/wn7ant/eve-value/pkg/server/feed"
)

const (
	fuzzworkBaseURL   = "https://market.fuzzwork.co.uk"
	aggregatesTimeout = 10 * time.Second

	defaultRegionID = 10000002
	defaultTypeID   = 44992
	defaultSide     = "sell"
)

// AggregatesSource reads precomputed market statistics from Fuzzwork. The
// response is a map keyed by type ID holding per-side statistics objects;
// each configured stat field that parses to a positive value becomes a
// candidate.
type AggregatesSource struct {
	*feed.BaseSource

	baseURL string
	region  int
	typeID  int
	side    string
	fields  []string
	client  *http.Client
}

// NewAggregatesSource creates a new Fuzzwork aggregates source
func NewAggregatesSource(config map[string]interface{}) (feed.Source, error) {
	logger := feed.GetLoggerFromConfig(config)

	side := feed.StringFromConfig(config, "side", defaultSide)
	if side != "sell" && side != "buy" {
		return nil, fmt.Errorf("%w: side must be 'sell' or 'buy', got %q", feed.ErrInvalidConfig, side)
	}

	fields := feed.StringsFromConfig(config, "fields")
	if len(fields) == 0 {
		fields = []string{"median"}
	}

	return &AggregatesSource{
		BaseSource: feed.NewBaseSource("fuzzwork.aggregates", feed.SourceTypeFuzzwork, logger),
		baseURL:    feed.StringFromConfig(config, "base_url", fuzzworkBaseURL),
		region:     feed.IntFromConfig(config, "region", defaultRegionID),
		typeID:     feed.IntFromConfig(config, "type_id", defaultTypeID),
		side:       side,
		fields:     fields,
		client: &http.Client{
			Timeout: aggregatesTimeout,
		},
	}, nil
}

// FetchCandidates fetches the aggregate statistics and projects the
// configured stat fields into candidates.
func (s *AggregatesSource) FetchCandidates(ctx context.Context) ([]feed.Candidate, error) {
	url := fmt.Sprintf("%s/aggregates/?region=%d&types=%d", s.baseURL, s.region, s.typeID)

	// type ID -> side -> stat name -> value. Fuzzwork serializes most
	// numbers as strings, so values stay untyped until parsed.
	var data map[string]map[string]map[string]interface{}
	if err := feed.FetchJSON(ctx, s.client, url, &data); err != nil {
		s.SetHealthy(false)
		return nil, err
	}

	entry, ok := data[strconv.Itoa(s.typeID)]
	if !ok {
		s.SetHealthy(false)
		return nil, fmt.Errorf("%w: type %d", feed.ErrTypeNotFound, s.typeID)
	}

	stats, ok := entry[s.side]
	if !ok {
		s.SetHealthy(false)
		return nil, fmt.Errorf("%w: missing %q statistics", feed.ErrInvalidResponse, s.side)
	}

	observed := time.Now()
	candidates := make([]feed.Candidate, 0, len(s.fields))
	for _, field := range s.fields {
		raw, ok := stats[field]
		if !ok {
			s.Logger().Debug("Stat field absent from response", "field", field)
			continue
		}
		value, err := parseStat(raw)
		if err != nil || !value.IsPositive() {
			s.Logger().Debug("Skipping unusable stat field",
				"field", field,
				"value", raw)
			continue
		}
		candidates = append(candidates, feed.Candidate{
			Value:      value,
			Source:     s.Name(),
			ObservedAt: observed,
		})
	}

	if len(candidates) == 0 {
		s.SetHealthy(false)
		return nil, fmt.Errorf("%w: type %d side %s", feed.ErrNoCandidates, s.typeID, s.side)
	}

	s.SetHealthy(true)
	return candidates, nil
}

// parseStat converts a raw stat value into a decimal.
func parseStat(raw interface{}) (decimal.Decimal, error) {
	switch v := raw.(type) {
	case string:
		return decimal.NewFromString(v)
	case float64:
		return decimal.NewFromFloat(v), nil
	default:
		return decimal.Decimal{}, fmt.Errorf("%w: unsupported stat type %T", feed.ErrInvalidResponse, raw)
	}
}

// Register the source in init
func init() {
	feed.Register("fuzzwork.aggregates", func(config map[string]interface{}) (feed.Source, error) {
		return NewAggregatesSource(config)
	})
}
