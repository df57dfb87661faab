// Package refresh drives the periodic valuation cycle and owns the
// published snapshot. Exactly one cycle runs at a time; a finished cycle
// swaps the whole snapshot so readers never observe partial data.
package refresh

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/wn7ant/eve-value/pkg/logging"
	"github.com/wn7ant/eve-value/pkg/metrics"
	"github.com/wn7ant/eve-value/pkg/server/aggregate"
	"github.com/wn7ant/eve-value/pkg/server/catalog"
	"github.com/wn7ant/eve-value/pkg/server/feed"
	"github.com/wn7ant/eve-value/pkg/server/valuation"
)

// Catalog provides the offer and plan documents for a cycle.
type Catalog interface {
	Offers(ctx context.Context) ([]catalog.Offer, error)
	Plans(ctx context.Context) ([]catalog.Plan, error)
}

// RateFeed yields rate candidates from the first healthy feed.
type RateFeed interface {
	FetchFirst(ctx context.Context) ([]feed.Candidate, string, error)
}

// Config holds the collaborators and timing of a Refresher.
type Config struct {
	Feed     RateFeed
	Catalog  Catalog
	Engine   *valuation.Engine
	Policy   aggregate.Policy
	Interval time.Duration
	Timeout  time.Duration
	Logger   *logging.Logger
}

// Refresher runs refresh cycles and publishes their snapshots.
type Refresher struct {
	feed    RateFeed
	catalog Catalog
	engine  *valuation.Engine
	policy  aggregate.Policy

	interval time.Duration
	timeout  time.Duration
	logger   *logging.Logger

	current  atomic.Pointer[Snapshot]
	inFlight atomic.Bool

	mu          sync.RWMutex
	subscribers []func(*Snapshot)
}

// NewRefresher creates a refresher in the loading state.
func NewRefresher(cfg Config) *Refresher {
	logger := cfg.Logger
	if logger == nil {
		logger = logging.NewNoopLogger()
	}

	r := &Refresher{
		feed:     cfg.Feed,
		catalog:  cfg.Catalog,
		engine:   cfg.Engine,
		policy:   cfg.Policy,
		interval: cfg.Interval,
		timeout:  cfg.Timeout,
		logger:   logger,
	}
	r.current.Store(&Snapshot{
		State:     StateLoading,
		RefreshID: uuid.New(),
		StartedAt: time.Now(),
	})
	return r
}

// Current returns the latest published snapshot. The snapshot is shared
// and must not be modified.
func (r *Refresher) Current() *Snapshot {
	return r.current.Load()
}

// Subscribe registers a callback invoked with every published snapshot.
// Callbacks run on the refreshing goroutine and must not block.
func (r *Refresher) Subscribe(fn func(*Snapshot)) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.subscribers = append(r.subscribers, fn)
}

// Refresh runs one cycle and publishes its snapshot. A request that
// arrives while another cycle is running is rejected with ErrInFlight
// rather than queued.
func (r *Refresher) Refresh(ctx context.Context) (*Snapshot, error) {
	if !r.inFlight.CompareAndSwap(false, true) {
		return nil, ErrInFlight
	}
	defer r.inFlight.Store(false)

	snap := r.cycle(ctx, r.marketRate)
	r.publish(snap)
	return snap, nil
}

// SetManualRate publishes a snapshot valued against an operator-supplied
// rate. The catalog is reloaded but no feed is consulted; the manual rate
// stays until the next refresh cycle replaces it.
func (r *Refresher) SetManualRate(ctx context.Context, value decimal.Decimal) (*Snapshot, error) {
	rate, err := aggregate.Manual(value)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrBadManualRate, value)
	}

	if !r.inFlight.CompareAndSwap(false, true) {
		return nil, ErrInFlight
	}
	defer r.inFlight.Store(false)

	snap := r.cycle(ctx, func(context.Context) (*aggregate.ReferenceRate, error) {
		return rate, nil
	})
	r.publish(snap)
	return snap, nil
}

// Run refreshes once at startup and then on every interval tick until the
// context is canceled. Ticks that land while a cycle is still running are
// skipped.
func (r *Refresher) Run(ctx context.Context) error {
	if _, err := r.Refresh(ctx); err != nil && !errors.Is(err, ErrInFlight) {
		return err
	}

	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			r.logger.Info("Refresh loop stopped")
			return nil
		case <-ticker.C:
			if _, err := r.Refresh(ctx); errors.Is(err, ErrInFlight) {
				r.logger.Warn("Skipping refresh tick, previous cycle still running")
			}
		}
	}
}

// cycle gathers the inputs under the cycle deadline and values them. Any
// required input failing turns the whole cycle into an error snapshot;
// there are no partial results.
func (r *Refresher) cycle(ctx context.Context, rateFn func(context.Context) (*aggregate.ReferenceRate, error)) *Snapshot {
	started := time.Now()
	id := uuid.New()

	cctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	var (
		wg        sync.WaitGroup
		offers    []catalog.Offer
		plans     []catalog.Plan
		rate      *aggregate.ReferenceRate
		offersErr error
		plansErr  error
		rateErr   error
	)

	wg.Add(3)
	go func() {
		defer wg.Done()
		offers, offersErr = r.catalog.Offers(cctx)
	}()
	go func() {
		defer wg.Done()
		plans, plansErr = r.catalog.Plans(cctx)
	}()
	go func() {
		defer wg.Done()
		rate, rateErr = rateFn(cctx)
	}()
	wg.Wait()

	for _, err := range []error{offersErr, plansErr, rateErr} {
		if err == nil {
			continue
		}
		metrics.RecordRefresh("error", time.Since(started))
		r.logger.Error("Refresh cycle failed", "refresh_id", id.String(), "error", err.Error())
		return &Snapshot{
			State:      StateError,
			Err:        err.Error(),
			RefreshID:  id,
			StartedAt:  started,
			FinishedAt: time.Now(),
		}
	}

	result := r.engine.Valuate(offers, plans, rate)

	metrics.RecordRefresh("success", time.Since(started))
	metrics.RecordReferenceRate(rate.Value.InexactFloat64())
	metrics.RecordSnapshotRows(len(result.Offers), len(result.Plans))
	r.logger.Info("Refresh cycle complete",
		"refresh_id", id.String(),
		"rate", rate.Value.String(),
		"rate_source", rate.Source,
		"offers", len(result.Offers),
		"plans", len(result.Plans),
		"duration", time.Since(started).String())

	return &Snapshot{
		State:      StateReady,
		Rate:       rate,
		Offers:     result.Offers,
		Plans:      result.Plans,
		RefreshID:  id,
		StartedAt:  started,
		FinishedAt: time.Now(),
	}
}

// marketRate fetches candidates from the feed chain and aggregates them
// into the cycle's reference rate.
func (r *Refresher) marketRate(ctx context.Context) (*aggregate.ReferenceRate, error) {
	candidates, source, err := r.feed.FetchFirst(ctx)
	if err != nil {
		return nil, err
	}
	r.logger.Debug("Fetched rate candidates", "source", source, "count", len(candidates))
	return aggregate.Aggregate(candidates, r.policy)
}

// publish swaps the current snapshot and notifies subscribers.
func (r *Refresher) publish(snap *Snapshot) {
	r.current.Store(snap)

	r.mu.RLock()
	subs := make([]func(*Snapshot), len(r.subscribers))
	copy(subs, r.subscribers)
	r.mu.RUnlock()

	for _, fn := range subs {
		fn(snap)
	}
}
