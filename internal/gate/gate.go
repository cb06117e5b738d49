// Package gate implements the business-day closing window check: a pure
// precondition evaluated before any side effect.
package gate

import (
	"fmt"
	"time"
)

// Decision is the gate verdict for one calendar date.
type Decision struct {
	Allowed bool
	Reason  string
}

// BusinessDays returns every Monday-Friday date of the given month, in
// order. No holiday calendar is applied.
func BusinessDays(year int, month time.Month) []time.Time {
	lastDay := time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
	days := make([]time.Time, 0, lastDay)
	for d := 1; d <= lastDay; d++ {
		current := time.Date(year, month, d, 0, 0, 0, 0, time.UTC)
		if wd := current.Weekday(); wd != time.Saturday && wd != time.Sunday {
			days = append(days, current)
		}
	}
	return days
}

// InClosingWindow reports whether target falls within the last window
// business days of its month. Weekend dates are never inside the window.
func InClosingWindow(target time.Time, window int) bool {
	if wd := target.Weekday(); wd == time.Saturday || wd == time.Sunday {
		return false
	}
	days := BusinessDays(target.Year(), target.Month())
	if window > len(days) {
		window = len(days)
	}
	y, m, d := target.Date()
	for _, day := range days[len(days)-window:] {
		if dy, dm, dd := day.Date(); dy == y && dm == m && dd == d {
			return true
		}
	}
	return false
}

// Evaluate decides whether a run on the given date may execute
// automatically. The caller decides whether a denial aborts or only warns.
func Evaluate(today time.Time, window int) Decision {
	if !InClosingWindow(today, window) {
		return Decision{
			Allowed: false,
			Reason:  fmt.Sprintf("outside closing window: %s is not within the last %d business days", today.Format("2006-01-02"), window),
		}
	}
	return Decision{Allowed: true, Reason: "ok"}
}
