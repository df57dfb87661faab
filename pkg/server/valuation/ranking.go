package valuation

import "github.com/shopspring/decimal"

// SelectBest returns the index of the smallest value. A candidate only
// displaces the current minimum when it is smaller by more than epsilon,
// so among near-equal values the earliest index wins. Returns false for
// empty input.
func SelectBest(values []decimal.Decimal, epsilon decimal.Decimal) (int, bool) {
	if len(values) == 0 {
		return 0, false
	}

	best := 0
	for i := 1; i < len(values); i++ {
		if values[i].LessThan(values[best].Sub(epsilon)) {
			best = i
		}
	}
	return best, true
}
