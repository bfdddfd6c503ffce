package ledger

import (
	"errors"
	"time"
)

// ErrInvalidPeriod is returned when a month/year pair is out of range.
// Callers should fail fast on it rather than compute over an empty set.
var ErrInvalidPeriod = errors.New("invalid period: month must be 1-12 and year 2000-2100")

// Period identifies one calendar month
type Period struct {
	Month int
	Year  int
}

// NewPeriod validates and builds a Period
func NewPeriod(month, year int) (Period, error) {
	p := Period{Month: month, Year: year}
	if err := p.Validate(); err != nil {
		return Period{}, err
	}
	return p, nil
}

// PeriodOf returns the period containing t
func PeriodOf(t time.Time) Period {
	return Period{Month: int(t.Month()), Year: t.Year()}
}

func (p Period) Validate() error {
	if p.Month < 1 || p.Month > 12 || p.Year < 2000 || p.Year > 2100 {
		return ErrInvalidPeriod
	}
	return nil
}

// Start returns the first instant of the month in UTC
func (p Period) Start() time.Time {
	return time.Date(p.Year, time.Month(p.Month), 1, 0, 0, 0, 0, time.UTC)
}

// End returns the last instant of the month, so [Start, End] is inclusive
func (p Period) End() time.Time {
	return p.Start().AddDate(0, 1, 0).Add(-time.Nanosecond)
}

// Contains reports whether t falls inside the month
func (p Period) Contains(t time.Time) bool {
	return t.Year() == p.Year && int(t.Month()) == p.Month
}

// AddMonths returns the period n months after p (n may be negative)
func (p Period) AddMonths(n int) Period {
	return PeriodOf(p.Start().AddDate(0, n, 0))
}

// Label renders the period as e.g. "Mar 2025"
func (p Period) Label() string {
	return p.Start().Format("Jan 2006")
}
