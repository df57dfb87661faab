package valuation

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func decimals(t *testing.T, values ...string) []decimal.Decimal {
	t.Helper()
	out := make([]decimal.Decimal, 0, len(values))
	for _, v := range values {
		out = append(out, decimal.RequireFromString(v))
	}
	return out
}

func TestSelectBest(t *testing.T) {
	tests := []struct {
		name    string
		values  []string
		epsilon string
		wantIdx int
		wantOK  bool
	}{
		{
			name:    "strict minimum wins",
			values:  []string{"5", "3", "3", "8"},
			epsilon: "0.000000001",
			wantIdx: 1,
			wantOK:  true,
		},
		{
			name:    "empty input",
			values:  nil,
			epsilon: "0.000000001",
			wantOK:  false,
		},
		{
			name:    "single value",
			values:  []string{"4"},
			epsilon: "0.000000001",
			wantIdx: 0,
			wantOK:  true,
		},
		{
			name:    "difference below epsilon keeps first",
			values:  []string{"3.0000000001", "3.0"},
			epsilon: "0.000001",
			wantIdx: 0,
			wantOK:  true,
		},
		{
			name:    "smaller first value keeps first",
			values:  []string{"3.0", "3.0000000001"},
			epsilon: "0.000001",
			wantIdx: 0,
			wantOK:  true,
		},
		{
			name:    "difference above epsilon moves on",
			values:  []string{"3.0", "2.5"},
			epsilon: "0.000001",
			wantIdx: 1,
			wantOK:  true,
		},
		{
			name:    "all equal keeps first",
			values:  []string{"7", "7", "7"},
			epsilon: "0.000000001",
			wantIdx: 0,
			wantOK:  true,
		},
		{
			name:    "negative values",
			values:  []string{"-1", "-2", "-1.5"},
			epsilon: "0.000000001",
			wantIdx: 1,
			wantOK:  true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			idx, ok := SelectBest(decimals(t, tt.values...), decimal.RequireFromString(tt.epsilon))
			assert.Equal(t, tt.wantOK, ok)
			if tt.wantOK {
				assert.Equal(t, tt.wantIdx, idx)
			}
		})
	}
}
