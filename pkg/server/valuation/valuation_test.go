package valuation

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wn7ant/eve-value/pkg/server/aggregate"
	"github.com/wn7ant/eve-value/pkg/server/catalog"
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func testRate(value string) *aggregate.ReferenceRate {
	return &aggregate.ReferenceRate{
		Value:      dec(value),
		AsOf:       time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC),
		Policy:     aggregate.PolicyMedian,
		Source:     "esi.prices",
		SampleSize: 1,
	}
}

func testEngine() *Engine {
	return NewEngine(1_000_000_000, 1e-9, nil)
}

func assertDecimal(t *testing.T, want string, got decimal.Decimal) {
	t.Helper()
	assert.True(t, got.Equal(dec(want)), "expected %s, got %s", want, got)
}

func TestValuate_OfferMetrics(t *testing.T) {
	offers := []catalog.Offer{
		{Name: "500 PLEX", Price: dec("10"), Quantity: 500},
		{Name: "2000 PLEX", Price: dec("35"), Quantity: 2000},
	}

	result := testEngine().Valuate(offers, nil, testRate("5000"))
	require.Len(t, result.Offers, 2)

	assertDecimal(t, "0.02", result.Offers[0].CostPerUnit)
	assertDecimal(t, "4000", result.Offers[0].CostPerBlock)
	assertDecimal(t, "0.0175", result.Offers[1].CostPerUnit)
	assertDecimal(t, "3500", result.Offers[1].CostPerBlock)

	assert.False(t, result.Offers[0].BestPerUnit)
	assert.False(t, result.Offers[0].BestPerBlock)
	assert.True(t, result.Offers[1].BestPerUnit)
	assert.True(t, result.Offers[1].BestPerBlock)
}

func TestValuate_TieKeepsFirstOffer(t *testing.T) {
	offers := []catalog.Offer{
		{Name: "A", Price: dec("10"), Quantity: 500},
		{Name: "B", Price: dec("20"), Quantity: 1000},
	}

	result := testEngine().Valuate(offers, nil, testRate("5000"))

	assert.True(t, result.Offers[0].BestPerUnit)
	assert.False(t, result.Offers[1].BestPerUnit)
	assert.True(t, result.Offers[0].BestPerBlock)
	assert.False(t, result.Offers[1].BestPerBlock)
}

func TestValuate_EpsilonKeepsFirstWithinTolerance(t *testing.T) {
	engine := NewEngine(1_000_000_000, 1e-6, nil)
	offers := []catalog.Offer{
		{Name: "A", Price: dec("3.0000000001"), Quantity: 1},
		{Name: "B", Price: dec("3.0"), Quantity: 1},
	}

	result := engine.Valuate(offers, nil, nil)

	assert.True(t, result.Offers[0].BestPerUnit)
	assert.False(t, result.Offers[1].BestPerUnit)
}

func TestValuate_InvalidOfferRowsExcluded(t *testing.T) {
	offers := []catalog.Offer{
		{Name: "zero quantity", Price: dec("10"), Quantity: 0},
		{Name: "negative price", Price: dec("-5"), Quantity: 500},
		{Name: "expensive but valid", Price: dec("100"), Quantity: 500},
	}

	result := testEngine().Valuate(offers, nil, testRate("5000"))
	require.Len(t, result.Offers, 3)

	assert.True(t, result.Offers[0].Invalid)
	assert.Equal(t, "invalid quantity 0", result.Offers[0].Warning)
	assert.True(t, result.Offers[1].Invalid)
	assert.Contains(t, result.Offers[1].Warning, "invalid price")

	assert.False(t, result.Offers[2].Invalid)
	assert.True(t, result.Offers[2].BestPerUnit)
	assert.True(t, result.Offers[2].BestPerBlock)
}

func TestValuate_EmptyOffers(t *testing.T) {
	result := testEngine().Valuate(nil, nil, testRate("5000"))

	assert.Empty(t, result.Offers)
	assert.Empty(t, result.Plans)
}

func TestValuate_NilRateSkipsBlockMetric(t *testing.T) {
	offers := []catalog.Offer{
		{Name: "A", Price: dec("10"), Quantity: 500},
		{Name: "B", Price: dec("35"), Quantity: 2000},
	}

	result := testEngine().Valuate(offers, nil, nil)

	assert.True(t, result.Offers[1].BestPerUnit)
	for _, row := range result.Offers {
		assert.True(t, row.CostPerBlock.IsZero(), "expected zero block cost, got %s", row.CostPerBlock)
		assert.False(t, row.BestPerBlock)
	}
}

func TestValuate_PlanMetrics(t *testing.T) {
	offers := []catalog.Offer{
		{Name: "500 PLEX", Price: dec("10"), Quantity: 500},
		{Name: "2000 PLEX", Price: dec("35"), Quantity: 2000},
	}
	plans := []catalog.Plan{
		{Label: "1 Month", Months: 1, Price: dec("16.99"), UnitCost: 500},
		{Label: "3 Months", Months: 3, Price: dec("44.97"), UnitCost: 1400},
	}

	result := testEngine().Valuate(offers, plans, testRate("5000"))
	require.Len(t, result.Plans, 2)

	assertDecimal(t, "16.99", result.Plans[0].CostPerMonth)
	assertDecimal(t, "14.99", result.Plans[1].CostPerMonth)
	assert.False(t, result.Plans[0].BestPerMonth)
	assert.True(t, result.Plans[1].BestPerMonth)

	// Best per-unit cost is 0.0175, so the exchange equivalents are
	// 0.0175*500/1 and 0.0175*1400/3.
	assertDecimal(t, "8.75", result.Plans[0].ExchangeCostPerMonth)
	diff := result.Plans[1].ExchangeCostPerMonth.Sub(dec("8.1666666666666667")).Abs()
	assert.True(t, diff.LessThan(dec("0.0000000001")), "unexpected exchange cost %s", result.Plans[1].ExchangeCostPerMonth)
	assert.False(t, result.Plans[0].BestExchange)
	assert.True(t, result.Plans[1].BestExchange)

	for _, row := range result.Plans {
		assert.False(t, row.ExchangeWaiting)
	}
}

func TestValuate_PlansWithoutOffers(t *testing.T) {
	plans := []catalog.Plan{
		{Label: "1 Month", Months: 1, Price: dec("16.99"), UnitCost: 500},
		{Label: "12 Months", Months: 12, Price: dec("155.88"), UnitCost: 4400},
	}

	result := testEngine().Valuate(nil, plans, testRate("5000"))
	require.Len(t, result.Plans, 2)

	for _, row := range result.Plans {
		assert.True(t, row.ExchangeWaiting)
		assert.True(t, row.ExchangeCostPerMonth.IsZero())
		assert.False(t, row.BestExchange)
	}

	// The cash metric still ranks without offers.
	assertDecimal(t, "12.99", result.Plans[1].CostPerMonth)
	assert.True(t, result.Plans[1].BestPerMonth)
}

func TestValuate_InvalidPlanRowsExcluded(t *testing.T) {
	offers := []catalog.Offer{
		{Name: "500 PLEX", Price: dec("10"), Quantity: 500},
	}
	plans := []catalog.Plan{
		{Label: "broken duration", Months: 0, Price: dec("16.99"), UnitCost: 500},
		{Label: "broken price", Months: 1, Price: dec("0"), UnitCost: 500},
		{Label: "broken unit cost", Months: 1, Price: dec("16.99"), UnitCost: 0},
		{Label: "valid", Months: 1, Price: dec("19.99"), UnitCost: 500},
	}

	result := testEngine().Valuate(offers, plans, testRate("5000"))
	require.Len(t, result.Plans, 4)

	assert.True(t, result.Plans[0].Invalid)
	assert.Equal(t, "invalid duration 0 months", result.Plans[0].Warning)
	assert.True(t, result.Plans[1].Invalid)
	assert.Contains(t, result.Plans[1].Warning, "invalid price")
	assert.True(t, result.Plans[2].Invalid)
	assert.Equal(t, "invalid unit cost 0", result.Plans[2].Warning)

	assert.False(t, result.Plans[3].Invalid)
	assert.True(t, result.Plans[3].BestPerMonth)
	assert.True(t, result.Plans[3].BestExchange)
}

func TestValuate_Deterministic(t *testing.T) {
	offers := []catalog.Offer{
		{Name: "500 PLEX", Price: dec("10"), Quantity: 500},
		{Name: "2000 PLEX", Price: dec("35"), Quantity: 2000},
	}
	plans := []catalog.Plan{
		{Label: "1 Month", Months: 1, Price: dec("16.99"), UnitCost: 500},
	}
	rate := testRate("5000")
	engine := testEngine()

	first := engine.Valuate(offers, plans, rate)
	second := engine.Valuate(offers, plans, rate)

	require.Equal(t, first, second)
}
