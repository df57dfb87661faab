package feed

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/wn7ant/eve-value/pkg/config"
	"github.com/wn7ant/eve-value/pkg/logging"
	"github.com/wn7ant/eve-value/pkg/metrics"
)

// Chain tries rate sources in priority order until one yields candidates.
// There is no retry within a source; a failing source is skipped and the
// next one is consulted. The periodic refresh provides recovery over time.
type Chain struct {
	sources []Source
	logger  *logging.Logger
}

// NewChain creates a chain over the given sources, tried in slice order.
func NewChain(sources []Source, logger *logging.Logger) *Chain {
	if logger == nil {
		logger = logging.NewNoopLogger()
	}
	return &Chain{sources: sources, logger: logger}
}

// BuildChain constructs the fallback chain from feed configuration.
// Disabled feeds are skipped; the rest are ordered by ascending priority,
// ties keeping their configured order. The logger is handed to each source
// through its config map.
func BuildChain(cfgs []config.FeedConfig, logger *logging.Logger) (*Chain, error) {
	enabled := make([]config.FeedConfig, 0, len(cfgs))
	for _, fc := range cfgs {
		if fc.Enabled {
			enabled = append(enabled, fc)
		}
	}
	sort.SliceStable(enabled, func(i, j int) bool {
		return enabled[i].Priority < enabled[j].Priority
	})

	srcs := make([]Source, 0, len(enabled))
	for _, fc := range enabled {
		conf := fc.Config
		if conf == nil {
			conf = make(map[string]interface{})
		}
		conf["logger"] = logger

		src, err := Create(fc.Type, fc.Name, conf)
		if err != nil {
			return nil, fmt.Errorf("failed to create source %s.%s (registered: %v): %w", fc.Type, fc.Name, List(), err)
		}
		srcs = append(srcs, src)
	}

	return NewChain(srcs, logger), nil
}

// Sources returns the chain members in fallback order.
func (c *Chain) Sources() []Source {
	return c.sources
}

// FetchFirst returns the candidates of the first source that succeeds,
// together with that source's name. Failing sources are logged and skipped.
// When every source fails the last error is wrapped in ErrAllSourcesFailed.
func (c *Chain) FetchFirst(ctx context.Context) ([]Candidate, string, error) {
	if len(c.sources) == 0 {
		return nil, "", ErrNoSourcesEnabled
	}

	var lastErr error
	for _, src := range c.sources {
		if ctx.Err() != nil {
			if lastErr == nil {
				lastErr = ctx.Err()
			}
			break
		}

		start := time.Now()
		candidates, err := src.FetchCandidates(ctx)
		elapsed := time.Since(start)

		if err == nil && len(candidates) == 0 {
			err = ErrNoCandidates
		}
		if err != nil {
			metrics.RecordFeedRequest(src.Name(), "error", elapsed)
			metrics.RecordFeedHealth(src.Name(), false)
			c.logger.Warn("Rate source failed, trying next",
				"source", src.Name(),
				"error", err)
			lastErr = err
			continue
		}

		metrics.RecordFeedRequest(src.Name(), "success", elapsed)
		metrics.RecordFeedHealth(src.Name(), true)
		metrics.RecordFeedCandidates(src.Name(), len(candidates))
		c.logger.Debug("Rate source succeeded",
			"source", src.Name(),
			"candidates", len(candidates))

		return candidates, src.Name(), nil
	}

	return nil, "", fmt.Errorf("%w: %v", ErrAllSourcesFailed, lastErr)
}
