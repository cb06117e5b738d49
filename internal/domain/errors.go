package domain

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

// Run-scoped failures. Both abort before any external write.
var (
	// ErrGateBlocked: the date is outside the closing window and no
	// override was supplied. Safe to retry on a later day.
	ErrGateBlocked = errors.New("outside closing window")

	// ErrRateUnavailable: no override was supplied and no source produced
	// a valid rate. The run never substitutes zero or stale data.
	ErrRateUnavailable = errors.New("exchange rate unavailable")
)

// AmountChangeBlockedError blocks a single entity's steps when its computed
// amount diverges from history and the run carries no confirmation flag.
// Other entities continue.
type AmountChangeBlockedError struct {
	Entity    string
	LastKnown decimal.Decimal
	Proposed  decimal.Decimal
}

func (e *AmountChangeBlockedError) Error() string {
	return fmt.Sprintf("amount changed for %s (historical %s, proposed %s): rerun with -confirm-amount-change",
		e.Entity, e.LastKnown.StringFixed(2), e.Proposed.StringFixed(2))
}

// IsAmountChangeBlocked reports whether err is an entity change block.
func IsAmountChangeBlocked(err error) bool {
	var target *AmountChangeBlockedError
	return errors.As(err, &target)
}
