// Package catalog loads the offer and plan documents valuation runs over.
package catalog

import (
	"strconv"
	"unicode"

	"github.com/shopspring/decimal"
)

// Offer is one purchasable pack of units in the store catalog. Records load
// verbatim from the document; per-row validity is the valuation engine's
// concern.
type Offer struct {
	Name       string          `json:"name"`
	Price      decimal.Decimal `json:"price"`
	Quantity   int64           `json:"plex"`
	Discounted bool            `json:"discounted,omitempty"`
}

// Plan is one subscription plan. Months may be given explicitly or embedded
// in the label ("3 Months"); UnitCost is the plan's price in units on the
// in-game exchange.
type Plan struct {
	Label    string          `json:"label"`
	Months   int             `json:"months"`
	Price    decimal.Decimal `json:"price"`
	UnitCost int64           `json:"plex"`
}

// ParseMonths extracts the first integer from a plan label. Returns false
// when the label carries no number.
func ParseMonths(label string) (int, bool) {
	chunks := splitDigits(label)
	for _, chunk := range chunks {
		if n, err := strconv.Atoi(chunk); err == nil && n > 0 {
			return n, true
		}
	}
	return 0, false
}

// splitDigits splits a string into its runs of consecutive digits.
func splitDigits(s string) []string {
	var chunks []string
	start := -1
	for i, r := range s {
		if unicode.IsDigit(r) {
			if start < 0 {
				start = i
			}
			continue
		}
		if start >= 0 {
			chunks = append(chunks, s[start:i])
			start = -1
		}
	}
	if start >= 0 {
		chunks = append(chunks, s[start:])
	}
	return chunks
}
