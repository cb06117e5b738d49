package money

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRoundHalfUp(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"1.005", "1.01"},
		{"1.004", "1.00"},
		{"100.014", "100.01"},
		{"100.015", "100.02"},
		{"0", "0.00"},
	}
	for _, tt := range tests {
		d := decimal.RequireFromString(tt.in)
		assert.Equal(t, tt.want, RoundHalfUp(d, 2).StringFixed(2), "round %s", tt.in)
	}
}

func TestParse(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"plain", "1250.50", "1250.5"},
		{"local grouping", "1.234,56", "1234.56"},
		{"anglo grouping", "1,234.56", "1234.56"},
		{"decimal comma only", "1234,56", "1234.56"},
		{"currency sign and spaces", "$ 1.250,00", "1250"},
		{"empty is zero", "", "0"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Parse(tt.in)
			require.NoError(t, err)
			assert.True(t, got.Equal(decimal.RequireFromString(tt.want)),
				"Parse(%q) = %s, want %s", tt.in, got, tt.want)
		})
	}
}

func TestParseRejectsGarbage(t *testing.T) {
	_, err := Parse("not-a-number")
	require.Error(t, err)
}

func TestChangedBeyondTolerance(t *testing.T) {
	hundred := decimal.RequireFromString("100.00")

	assert.False(t, ChangedBeyondTolerance(decimal.RequireFromString("100.01"), hundred),
		"one cent is within tolerance")
	assert.True(t, ChangedBeyondTolerance(decimal.RequireFromString("101.00"), hundred))
	assert.True(t, ChangedBeyondTolerance(decimal.RequireFromString("99.98"), hundred))
}
