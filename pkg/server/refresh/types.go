package refresh

import (
	"time"

	"github.com/google/uuid"
	"github.com/wn7ant/eve-value/pkg/server/aggregate"
	"github.com/wn7ant/eve-value/pkg/server/valuation"
)

// State describes the lifecycle of the published snapshot.
type State string

const (
	// StateLoading is the state before the first cycle has finished.
	StateLoading State = "loading"
	// StateReady means the snapshot holds a complete valuation.
	StateReady State = "ready"
	// StateError means the last cycle failed and no data is published.
	StateError State = "error"
)

// Snapshot is the immutable result of one refresh cycle. A snapshot is
// never mutated after publication; readers always see either the previous
// or the next complete snapshot.
type Snapshot struct {
	State      State                    `json:"state"`
	Err        string                   `json:"error,omitempty"`
	Rate       *aggregate.ReferenceRate `json:"rate,omitempty"`
	Offers     []valuation.OfferRow     `json:"offers"`
	Plans      []valuation.PlanRow      `json:"plans"`
	RefreshID  uuid.UUID                `json:"refresh_id"`
	StartedAt  time.Time                `json:"started_at"`
	FinishedAt time.Time                `json:"finished_at"`
}
