package feed

import (
	"sync"

	"github.com/wn7ant/eve-value/pkg/logging"
)

// BaseSource provides common functionality for all rate feeds
type BaseSource struct {
	name       string
	sourcetype SourceType
	healthy    bool
	healthMu   sync.RWMutex
	logger     *logging.Logger
}

// NewBaseSource creates a new base source
func NewBaseSource(name string, sourcetype SourceType, logger *logging.Logger) *BaseSource {
	if logger == nil {
		logger = logging.NewNoopLogger()
	}

	return &BaseSource{
		name:       name,
		sourcetype: sourcetype,
		logger:     logger,
		healthy:    false,
	}
}

// Name returns the feed name
func (b *BaseSource) Name() string {
	return b.name
}

// Type returns the feed type
func (b *BaseSource) Type() SourceType {
	return b.sourcetype
}

// IsHealthy returns the health status
func (b *BaseSource) IsHealthy() bool {
	b.healthMu.RLock()
	defer b.healthMu.RUnlock()
	return b.healthy
}

// SetHealthy sets the health status
func (b *BaseSource) SetHealthy(healthy bool) {
	b.healthMu.Lock()
	defer b.healthMu.Unlock()
	b.healthy = healthy
}

// Logger returns the logger
func (b *BaseSource) Logger() *logging.Logger {
	return b.logger
}
