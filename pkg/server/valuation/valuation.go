// Package valuation computes comparative value metrics over the catalog
// and marks the best rows. All arithmetic is decimal; results depend only
// on the inputs.
package valuation

import (
	"fmt"

	"github.com/shopspring/decimal"
	"github.com/wn7ant/eve-value/pkg/logging"
	"github.com/wn7ant/eve-value/pkg/server/aggregate"
	"github.com/wn7ant/eve-value/pkg/server/catalog"
)

// OfferRow is one valued offer. Rows with data errors carry Invalid and a
// Warning instead of metrics and never win a ranking; the remaining rows
// are unaffected.
type OfferRow struct {
	catalog.Offer

	CostPerUnit  decimal.Decimal `json:"cost_per_unit"`
	CostPerBlock decimal.Decimal `json:"cost_per_block"`
	BestPerUnit  bool            `json:"best_per_unit"`
	BestPerBlock bool            `json:"best_per_block"`
	Invalid      bool            `json:"invalid,omitempty"`
	Warning      string          `json:"warning,omitempty"`
}

// PlanRow is one valued subscription plan. ExchangeWaiting marks the
// exchange metric as not yet computable because no valid offer exists in
// the same cycle.
type PlanRow struct {
	catalog.Plan

	CostPerMonth         decimal.Decimal `json:"cost_per_month"`
	ExchangeCostPerMonth decimal.Decimal `json:"exchange_cost_per_month"`
	BestPerMonth         bool            `json:"best_per_month"`
	BestExchange         bool            `json:"best_exchange"`
	ExchangeWaiting      bool            `json:"exchange_waiting,omitempty"`
	Invalid              bool            `json:"invalid,omitempty"`
	Warning              string          `json:"warning,omitempty"`
}

// Result is the full valuation of one refresh cycle.
type Result struct {
	Offers []OfferRow `json:"offers"`
	Plans  []PlanRow  `json:"plans"`
}

// Engine values offers and plans against a reference rate.
type Engine struct {
	blockSize decimal.Decimal
	epsilon   decimal.Decimal
	logger    *logging.Logger
}

// NewEngine creates a valuation engine. blockSize is the ISK denomination
// of the per-block metric (one billion by default), epsilon the tolerance
// under which two metric values count as equal.
func NewEngine(blockSize int64, epsilon float64, logger *logging.Logger) *Engine {
	if logger == nil {
		logger = logging.NewNoopLogger()
	}
	return &Engine{
		blockSize: decimal.NewFromInt(blockSize),
		epsilon:   decimal.NewFromFloat(epsilon),
		logger:    logger,
	}
}

// Valuate computes all metrics and best markers for the given inputs. The
// function is pure: the same offers, plans and rate always produce the
// same result. The per-block metric requires a positive rate and is
// skipped without one.
func (e *Engine) Valuate(offers []catalog.Offer, plans []catalog.Plan, rate *aggregate.ReferenceRate) *Result {
	result := &Result{
		Offers: e.valuateOffers(offers, rate),
	}

	bestUnit, haveBestUnit := e.rankOffers(result.Offers, rate)
	result.Plans = e.valuatePlans(plans, bestUnit, haveBestUnit)
	e.rankPlans(result.Plans, haveBestUnit)

	return result
}

// valuateOffers computes per-unit and per-block costs, flagging rows with
// data errors instead of failing the batch.
func (e *Engine) valuateOffers(offers []catalog.Offer, rate *aggregate.ReferenceRate) []OfferRow {
	hasRate := rate != nil && rate.Value.IsPositive()

	rows := make([]OfferRow, 0, len(offers))
	for _, offer := range offers {
		row := OfferRow{Offer: offer}
		switch {
		case offer.Quantity <= 0:
			row.Invalid = true
			row.Warning = fmt.Sprintf("invalid quantity %d", offer.Quantity)
		case !offer.Price.IsPositive():
			row.Invalid = true
			row.Warning = fmt.Sprintf("invalid price %s", offer.Price)
		default:
			qty := decimal.NewFromInt(offer.Quantity)
			row.CostPerUnit = offer.Price.Div(qty)
			if hasRate {
				row.CostPerBlock = offer.Price.Div(qty.Mul(rate.Value)).Mul(e.blockSize)
			}
		}
		if row.Invalid {
			e.logger.Warn("Skipping invalid offer row",
				"name", offer.Name,
				"warning", row.Warning)
		}
		rows = append(rows, row)
	}
	return rows
}

// rankOffers marks the best row per metric and returns the winning
// per-unit cost for the plan exchange metric.
func (e *Engine) rankOffers(rows []OfferRow, rate *aggregate.ReferenceRate) (decimal.Decimal, bool) {
	values := make([]decimal.Decimal, 0, len(rows))
	indices := make([]int, 0, len(rows))
	for i, row := range rows {
		if row.Invalid {
			continue
		}
		values = append(values, row.CostPerUnit)
		indices = append(indices, i)
	}

	var bestUnit decimal.Decimal
	haveBestUnit := false
	if idx, ok := SelectBest(values, e.epsilon); ok {
		rows[indices[idx]].BestPerUnit = true
		bestUnit = rows[indices[idx]].CostPerUnit
		haveBestUnit = true
	}

	if rate != nil && rate.Value.IsPositive() {
		blockValues := make([]decimal.Decimal, 0, len(indices))
		for _, i := range indices {
			blockValues = append(blockValues, rows[i].CostPerBlock)
		}
		if idx, ok := SelectBest(blockValues, e.epsilon); ok {
			rows[indices[idx]].BestPerBlock = true
		}
	}

	return bestUnit, haveBestUnit
}

// valuatePlans computes the per-month metrics. The exchange metric uses
// the best per-unit cost of the same cycle; without one every valid row
// reports a waiting exchange state instead of a value.
func (e *Engine) valuatePlans(plans []catalog.Plan, bestUnit decimal.Decimal, haveBestUnit bool) []PlanRow {
	rows := make([]PlanRow, 0, len(plans))
	for _, plan := range plans {
		row := PlanRow{Plan: plan}
		switch {
		case plan.Months <= 0:
			row.Invalid = true
			row.Warning = fmt.Sprintf("invalid duration %d months", plan.Months)
		case !plan.Price.IsPositive():
			row.Invalid = true
			row.Warning = fmt.Sprintf("invalid price %s", plan.Price)
		case plan.UnitCost <= 0:
			row.Invalid = true
			row.Warning = fmt.Sprintf("invalid unit cost %d", plan.UnitCost)
		default:
			months := decimal.NewFromInt(int64(plan.Months))
			row.CostPerMonth = plan.Price.Div(months)
			if haveBestUnit {
				row.ExchangeCostPerMonth = bestUnit.Mul(decimal.NewFromInt(plan.UnitCost)).Div(months)
			} else {
				row.ExchangeWaiting = true
			}
		}
		if row.Invalid {
			e.logger.Warn("Skipping invalid plan row",
				"label", plan.Label,
				"warning", row.Warning)
		}
		rows = append(rows, row)
	}
	return rows
}

// rankPlans marks the best row per plan metric.
func (e *Engine) rankPlans(rows []PlanRow, haveBestUnit bool) {
	values := make([]decimal.Decimal, 0, len(rows))
	indices := make([]int, 0, len(rows))
	for i, row := range rows {
		if row.Invalid {
			continue
		}
		values = append(values, row.CostPerMonth)
		indices = append(indices, i)
	}

	if idx, ok := SelectBest(values, e.epsilon); ok {
		rows[indices[idx]].BestPerMonth = true
	}

	if !haveBestUnit {
		return
	}
	exchangeValues := make([]decimal.Decimal, 0, len(indices))
	for _, i := range indices {
		exchangeValues = append(exchangeValues, rows[i].ExchangeCostPerMonth)
	}
	if idx, ok := SelectBest(exchangeValues, e.epsilon); ok {
		rows[indices[idx]].BestExchange = true
	}
}
