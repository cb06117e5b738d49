// Package money holds the decimal helpers shared by the rate resolver, the
// amount resolver and the sheet adapters. Amounts are decimal.Decimal
// everywhere; float64 never carries money.
package money

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// ChangeTolerance is the guard's 1-cent tolerance for rounding drift.
var ChangeTolerance = decimal.RequireFromString("0.01")

// RoundHalfUp rounds to the given number of decimal places, ties away from
// zero (1.005 -> 1.01 at two places).
func RoundHalfUp(d decimal.Decimal, places int32) decimal.Decimal {
	return d.Round(places)
}

// Parse reads an amount that may use either anglo ("1,234.56") or local
// ("1.234,56") digit grouping. Empty input parses as zero.
func Parse(text string) (decimal.Decimal, error) {
	normalized := strings.ReplaceAll(strings.TrimSpace(text), " ", "")
	if normalized == "" {
		return decimal.Zero, nil
	}
	normalized = strings.TrimPrefix(normalized, "$")
	switch {
	case strings.Contains(normalized, ",") && strings.Contains(normalized, "."):
		// Whichever separator comes last is the decimal point.
		if strings.LastIndex(normalized, ",") > strings.LastIndex(normalized, ".") {
			normalized = strings.ReplaceAll(normalized, ".", "")
			normalized = strings.Replace(normalized, ",", ".", 1)
		} else {
			normalized = strings.ReplaceAll(normalized, ",", "")
		}
	case strings.Contains(normalized, ","):
		normalized = strings.Replace(normalized, ",", ".", 1)
	}
	d, err := decimal.NewFromString(normalized)
	if err != nil {
		return decimal.Zero, fmt.Errorf("invalid amount %q: %w", text, err)
	}
	return d, nil
}

// Format renders an amount with exactly two decimal places, the fixed
// format used on ledger rows and in messages.
func Format(d decimal.Decimal) string {
	return d.StringFixed(2)
}

// ChangedBeyondTolerance reports whether two amounts differ by more than
// the 1-cent tolerance.
func ChangedBeyondTolerance(a, b decimal.Decimal) bool {
	return a.Sub(b).Abs().GreaterThan(ChangeTolerance)
}
