// Package esi provides rate feeds backed by EVE Online's ESI API.
package esi

import (
	"context"
	"fmt"
	"math"
	"net/http"
	"time"

	"github.com/shopspring/decimal"
	"github.com/wn7ant/eve-value/pkg/server/feed"
)

const (
	esiBaseURL    = "https://esi.evetech.net/latest"
	pricesTimeout = 10 * time.Second

	// defaultTypeID is PLEX
	defaultTypeID = 44992
)

// PricesSource reads the ESI global market prices endpoint. The endpoint
// returns one aggregate record per item type with several named price
// fields; the first populated positive field in the configured preference
// order becomes the single rate candidate.
type PricesSource struct {
	*feed.BaseSource

	baseURL string
	typeID  int
	fields  []string
	client  *http.Client
}

// priceRecord mirrors one entry of /markets/prices/. Pointer fields
// distinguish absent values from zero.
type priceRecord struct {
	TypeID        int      `json:"type_id"`
	AveragePrice  *float64 `json:"average_price,omitempty"`
	AdjustedPrice *float64 `json:"adjusted_price,omitempty"`
}

// NewPricesSource creates a new ESI prices source
func NewPricesSource(config map[string]interface{}) (feed.Source, error) {
	logger := feed.GetLoggerFromConfig(config)

	fields := feed.StringsFromConfig(config, "fields")
	if len(fields) == 0 {
		fields = []string{"average", "adjusted"}
	}
	for _, f := range fields {
		if f != "average" && f != "adjusted" {
			return nil, fmt.Errorf("%w: unknown price field %q", feed.ErrInvalidConfig, f)
		}
	}

	return &PricesSource{
		BaseSource: feed.NewBaseSource("esi.prices", feed.SourceTypeESI, logger),
		baseURL:    feed.StringFromConfig(config, "base_url", esiBaseURL),
		typeID:     feed.IntFromConfig(config, "type_id", defaultTypeID),
		fields:     fields,
		client: &http.Client{
			Timeout: pricesTimeout,
		},
	}, nil
}

// FetchCandidates fetches the aggregate price record and projects it into
// at most one candidate.
func (s *PricesSource) FetchCandidates(ctx context.Context) ([]feed.Candidate, error) {
	url := fmt.Sprintf("%s/markets/prices/", s.baseURL)

	var records []priceRecord
	if err := feed.FetchJSON(ctx, s.client, url, &records); err != nil {
		s.SetHealthy(false)
		return nil, err
	}

	var match *priceRecord
	for i := range records {
		if records[i].TypeID == s.typeID {
			match = &records[i]
			break
		}
	}
	if match == nil {
		s.SetHealthy(false)
		return nil, fmt.Errorf("%w: type %d", feed.ErrTypeNotFound, s.typeID)
	}

	observed := time.Now()
	for _, field := range s.fields {
		val := match.field(field)
		if val == nil {
			continue
		}
		if math.IsNaN(*val) || math.IsInf(*val, 0) || *val <= 0 {
			s.Logger().Debug("Skipping unusable price field",
				"field", field,
				"type_id", s.typeID)
			continue
		}

		s.SetHealthy(true)
		return []feed.Candidate{{
			Value:      decimal.NewFromFloat(*val),
			Source:     s.Name(),
			ObservedAt: observed,
		}}, nil
	}

	s.SetHealthy(false)
	return nil, fmt.Errorf("%w: type %d", feed.ErrNoCandidates, s.typeID)
}

// field maps a configured preference name onto the record value.
func (r *priceRecord) field(name string) *float64 {
	switch name {
	case "average":
		return r.AveragePrice
	case "adjusted":
		return r.AdjustedPrice
	default:
		return nil
	}
}

// Register the source in init
func init() {
	feed.Register("esi.prices", func(config map[string]interface{}) (feed.Source, error) {
		return NewPricesSource(config)
	})
}
