package cli

import (
	"bytes"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/wn7ant/eve-value/pkg/server/aggregate"
	"github.com/wn7ant/eve-value/pkg/server/catalog"
	"github.com/wn7ant/eve-value/pkg/server/refresh"
	"github.com/wn7ant/eve-value/pkg/server/valuation"
)

func renderTestSnapshot() *refresh.Snapshot {
	dec := decimal.RequireFromString
	return &refresh.Snapshot{
		State: refresh.StateReady,
		Rate: &aggregate.ReferenceRate{
			Value:      dec("5000"),
			AsOf:       time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC),
			Policy:     aggregate.PolicyMedian,
			Source:     "fuzzwork.aggregates",
			SampleSize: 1,
		},
		Offers: []valuation.OfferRow{
			{
				Offer:        catalog.Offer{Name: "500 PLEX", Price: dec("10"), Quantity: 500},
				CostPerUnit:  dec("0.02"),
				CostPerBlock: dec("4000"),
			},
			{
				Offer:        catalog.Offer{Name: "2000 PLEX", Price: dec("35"), Quantity: 2000},
				CostPerUnit:  dec("0.0175"),
				CostPerBlock: dec("3500"),
				BestPerUnit:  true,
				BestPerBlock: true,
			},
			{
				Offer:   catalog.Offer{Name: "Broken Pack", Price: dec("10")},
				Invalid: true,
				Warning: "invalid quantity 0",
			},
		},
		Plans: []valuation.PlanRow{
			{
				Plan:                 catalog.Plan{Label: "1 Month", Months: 1, Price: dec("16.99"), UnitCost: 500},
				CostPerMonth:         dec("16.99"),
				ExchangeCostPerMonth: dec("8.75"),
			},
			{
				Plan:                 catalog.Plan{Label: "3 Months", Months: 3, Price: dec("44.97"), UnitCost: 1400},
				CostPerMonth:         dec("14.99"),
				ExchangeCostPerMonth: dec("8.17"),
				BestPerMonth:         true,
				BestExchange:         true,
			},
		},
		RefreshID: uuid.New(),
	}
}

func TestRenderSnapshot(t *testing.T) {
	var buf bytes.Buffer
	renderSnapshot(&buf, renderTestSnapshot())
	out := buf.String()

	assert.Contains(t, out, "Reference rate: 5000.00 ISK/PLEX")
	assert.Contains(t, out, "median via fuzzwork.aggregates")

	// Best rows carry the asterisk, others do not.
	assert.Contains(t, out, "0.017500 *")
	assert.Contains(t, out, "3500.00 *")
	assert.NotContains(t, out, "0.020000 *")
	assert.Contains(t, out, "14.99 *")

	// Invalid rows surface their warning instead of metrics.
	assert.Contains(t, out, "(invalid quantity 0)")
}

func TestRenderSnapshot_ExchangeWaiting(t *testing.T) {
	snap := renderTestSnapshot()
	snap.Offers = nil
	for i := range snap.Plans {
		snap.Plans[i].ExchangeCostPerMonth = decimal.Zero
		snap.Plans[i].ExchangeWaiting = true
		snap.Plans[i].BestExchange = false
	}

	var buf bytes.Buffer
	renderSnapshot(&buf, snap)

	assert.Contains(t, buf.String(), "waiting")
}

func TestVersionCommand(t *testing.T) {
	var buf bytes.Buffer
	versionCmd.SetOut(&buf)
	versionCmd.Run(versionCmd, nil)

	assert.Contains(t, buf.String(), "eve-value version")
}
