package domain

import (
	"encoding/json"
	"fmt"
	"time"
)

// periodFormat is the wire format for periods ("2026-02").
const periodFormat = "2006-01"

// Period identifies one closing period: a (year, month) pair. It is fixed
// once a run starts; every entity in a run shares the same Period.
type Period struct {
	Year  int
	Month time.Month
}

// ParsePeriod parses a "YYYY-MM" string into a Period.
func ParsePeriod(s string) (Period, error) {
	t, err := time.Parse(periodFormat, s)
	if err != nil {
		return Period{}, fmt.Errorf("invalid period %q, want format %q: %w", s, periodFormat, err)
	}
	return Period{Year: t.Year(), Month: t.Month()}, nil
}

// PeriodOf returns the Period containing the given instant, in its location.
func PeriodOf(t time.Time) Period {
	return Period{Year: t.Year(), Month: t.Month()}
}

// Start returns midnight on the first day of the period in loc.
func (p Period) Start(loc *time.Location) time.Time {
	return time.Date(p.Year, p.Month, 1, 0, 0, 0, 0, loc)
}

// End returns midnight on the last day of the period in loc.
func (p Period) End(loc *time.Location) time.Time {
	// Day zero of the next month normalizes to the last day of this one.
	return time.Date(p.Year, p.Month+1, 0, 0, 0, 0, 0, loc)
}

// IsZero reports whether p is the zero Period.
func (p Period) IsZero() bool { return p.Year == 0 && p.Month == 0 }

func (p Period) String() string {
	return fmt.Sprintf("%04d-%02d", p.Year, int(p.Month))
}

func (p Period) MarshalJSON() ([]byte, error) {
	return json.Marshal(p.String())
}

func (p *Period) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return err
	}
	parsed, err := ParsePeriod(s)
	if err != nil {
		return err
	}
	*p = parsed
	return nil
}
