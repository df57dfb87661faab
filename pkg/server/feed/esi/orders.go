package esi

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/shopspring/decimal"
	"github.com/wn7ant/eve-value/pkg/server/feed"
	"github.com/wn7ant/eve-value/pkg/version"
)

const (
	ordersTimeout = 15 * time.Second

	// defaultRegionID is The Forge (home of the Jita trade hub)
	defaultRegionID = 10000002
	defaultMaxPages = 10
)

// OrdersSource reads live orders from an ESI regional market. The endpoint
// paginates via the X-Pages response header; every order price on every
// readable page becomes a candidate. Page one is mandatory, later pages are
// best effort: a failing or empty page ends the walk with the partial
// results kept.
type OrdersSource struct {
	*feed.BaseSource

	baseURL   string
	regionID  int
	typeID    int
	orderType string
	maxPages  int
	client    *http.Client
}

// marketOrder mirrors one entry of /markets/{region_id}/orders/.
type marketOrder struct {
	OrderID      int64   `json:"order_id"`
	TypeID       int     `json:"type_id"`
	Price        float64 `json:"price"`
	VolumeRemain int64   `json:"volume_remain"`
	IsBuyOrder   bool    `json:"is_buy_order"`
}

// NewOrdersSource creates a new ESI regional orders source
func NewOrdersSource(config map[string]interface{}) (feed.Source, error) {
	logger := feed.GetLoggerFromConfig(config)

	orderType := feed.StringFromConfig(config, "order_type", "sell")
	if orderType != "sell" && orderType != "buy" {
		return nil, fmt.Errorf("%w: order_type must be 'sell' or 'buy', got %q", feed.ErrInvalidConfig, orderType)
	}

	maxPages := feed.IntFromConfig(config, "max_pages", defaultMaxPages)
	if maxPages < 1 {
		return nil, fmt.Errorf("%w: max_pages must be >= 1", feed.ErrInvalidConfig)
	}

	return &OrdersSource{
		BaseSource: feed.NewBaseSource("esi.orders", feed.SourceTypeESI, logger),
		baseURL:    feed.StringFromConfig(config, "base_url", esiBaseURL),
		regionID:   feed.IntFromConfig(config, "region_id", defaultRegionID),
		typeID:     feed.IntFromConfig(config, "type_id", defaultTypeID),
		orderType:  orderType,
		maxPages:   maxPages,
		client: &http.Client{
			Timeout: ordersTimeout,
		},
	}, nil
}

// FetchCandidates walks the order book pages and flattens usable prices.
func (s *OrdersSource) FetchCandidates(ctx context.Context) ([]feed.Candidate, error) {
	// Page 1 failures are fatal: without it neither data nor the page
	// count exist.
	orders, totalPages, err := s.fetchPage(ctx, 1)
	if err != nil {
		s.SetHealthy(false)
		return nil, err
	}

	observed := time.Now()
	candidates := s.appendCandidates(nil, orders, observed)

	pages := totalPages
	if pages > s.maxPages {
		pages = s.maxPages
	}

	for page := 2; page <= pages; page++ {
		orders, _, err := s.fetchPage(ctx, page)
		if err != nil {
			s.Logger().Warn("Order page fetch failed, keeping partial results",
				"page", page,
				"error", err)
			break
		}
		if len(orders) == 0 {
			break
		}
		candidates = s.appendCandidates(candidates, orders, observed)
	}

	if len(candidates) == 0 {
		s.SetHealthy(false)
		return nil, fmt.Errorf("%w: type %d in region %d", feed.ErrNoCandidates, s.typeID, s.regionID)
	}

	s.SetHealthy(true)
	s.Logger().Debug("Fetched order book",
		"region", s.regionID,
		"pages", pages,
		"candidates", len(candidates))

	return candidates, nil
}

// appendCandidates converts usable orders into candidates, skipping
// malformed rows.
func (s *OrdersSource) appendCandidates(candidates []feed.Candidate, orders []marketOrder, observed time.Time) []feed.Candidate {
	for _, order := range orders {
		if order.Price <= 0 {
			continue
		}
		candidates = append(candidates, feed.Candidate{
			Value:      decimal.NewFromFloat(order.Price),
			Source:     s.Name(),
			ObservedAt: observed,
		})
	}
	return candidates
}

// fetchPage fetches one order book page and the total page count from the
// X-Pages header. A missing or unparseable header counts as a single page.
func (s *OrdersSource) fetchPage(ctx context.Context, page int) ([]marketOrder, int, error) {
	url := fmt.Sprintf("%s/markets/%d/orders/?order_type=%s&page=%d&type_id=%d",
		s.baseURL, s.regionID, s.orderType, page, s.typeID)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", version.AgentString())

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, 0, fmt.Errorf("%w: %v", feed.ErrRequestFailed, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, 0, fmt.Errorf("%w: %d", feed.ErrUnexpectedStatus, resp.StatusCode)
	}

	totalPages := 1
	if header := resp.Header.Get("X-Pages"); header != "" {
		if n, err := strconv.Atoi(header); err == nil && n > 0 {
			totalPages = n
		}
	}

	var orders []marketOrder
	if err := json.NewDecoder(resp.Body).Decode(&orders); err != nil {
		return nil, 0, fmt.Errorf("%w: %v", feed.ErrInvalidResponse, err)
	}

	return orders, totalPages, nil
}

// Register the source in init
func init() {
	feed.Register("esi.orders", func(config map[string]interface{}) (feed.Source, error) {
		return NewOrdersSource(config)
	})
}
