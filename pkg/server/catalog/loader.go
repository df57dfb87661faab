package catalog

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"

	"github.com/wn7ant/eve-value/pkg/config"
	"github.com/wn7ant/eve-value/pkg/logging"
	"github.com/wn7ant/eve-value/pkg/version"
)

// Loader fetches the offer and plan documents. Locations may be http(s)
// URLs or local file paths. Document-level failures abort the caller's
// refresh cycle; row-level problems do not, rows load as-is.
type Loader struct {
	offersURL string
	plansURL  string
	client    *http.Client
	logger    *logging.Logger
}

// NewLoader creates a loader from catalog configuration
func NewLoader(cfg config.CatalogConfig, logger *logging.Logger) *Loader {
	if logger == nil {
		logger = logging.NewNoopLogger()
	}
	return &Loader{
		offersURL: cfg.OffersURL,
		plansURL:  cfg.PlansURL,
		client: &http.Client{
			Timeout: cfg.Timeout.ToDuration(),
		},
		logger: logger,
	}
}

// Offers loads the offer document.
func (l *Loader) Offers(ctx context.Context) ([]Offer, error) {
	var offers []Offer
	if err := l.load(ctx, l.offersURL, &offers); err != nil {
		return nil, fmt.Errorf("offers: %w", err)
	}
	l.logger.Debug("Loaded offer document", "count", len(offers))
	return offers, nil
}

// Plans loads the plan document, filling missing month counts from the
// labels. Returns nil without error when no plans document is configured.
func (l *Loader) Plans(ctx context.Context) ([]Plan, error) {
	if l.plansURL == "" {
		return nil, nil
	}

	var plans []Plan
	if err := l.load(ctx, l.plansURL, &plans); err != nil {
		return nil, fmt.Errorf("plans: %w", err)
	}
	for i := range plans {
		if plans[i].Months == 0 {
			if m, ok := ParseMonths(plans[i].Label); ok {
				plans[i].Months = m
			}
		}
	}
	l.logger.Debug("Loaded plan document", "count", len(plans))
	return plans, nil
}

// load reads a JSON document from an http(s) URL or a local file path.
func (l *Loader) load(ctx context.Context, location string, out interface{}) error {
	if strings.HasPrefix(location, "http://") || strings.HasPrefix(location, "https://") {
		return l.loadHTTP(ctx, location, out)
	}
	return l.loadFile(location, out)
}

func (l *Loader) loadHTTP(ctx context.Context, url string, out interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", version.AgentString())

	resp, err := l.client.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("%w: status %d: %s", ErrUnavailable, resp.StatusCode, strings.TrimSpace(string(body)))
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("%w: %v", ErrBadDocument, err)
	}

	return nil
}

func (l *Loader) loadFile(path string, out interface{}) error {
	data, err := os.ReadFile(path) // #nosec G304 -- Path comes from validated config
	if err != nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}

	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("%w: %v", ErrBadDocument, err)
	}

	return nil
}
