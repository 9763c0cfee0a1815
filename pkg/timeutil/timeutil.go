// Package timeutil provides calendar-day utilities for the submission
// ledger: day keys (YYYY-MM-DD), month windows, and report titles.
// Day partitions are identified structurally by date parse, so every
// conversion between time.Time and partition name lives here.
// No external dependencies - uses only standard library.
package timeutil

import (
	"fmt"
	"time"
)

// FormatDay is the canonical day-partition layout (ISO calendar date).
const FormatDay = "2006-01-02"

// DayKey returns the day-partition name for t in t's location.
func DayKey(t time.Time) string {
	return t.Format(FormatDay)
}

// Today returns the day-partition name for the current moment in loc.
func Today(loc *time.Location) string {
	return time.Now().In(loc).Format(FormatDay)
}

// ParseDay parses a day-partition name. A non-nil error means the name is
// not day-shaped (for example a report partition) and must be excluded
// from day enumeration.
func ParseDay(name string) (time.Time, error) {
	return time.Parse(FormatDay, name)
}

// IsDayKey reports whether name parses as a calendar date.
// This is the discriminator between day partitions and report partitions;
// never rely on naming prefixes instead.
func IsDayKey(name string) bool {
	_, err := ParseDay(name)
	return err == nil
}

// Month identifies a calendar month.
type Month struct {
	Year  int
	Month time.Month
}

// MonthOf returns the Month containing t in t's location.
func MonthOf(t time.Time) Month {
	return Month{Year: t.Year(), Month: t.Month()}
}

// CurrentMonth returns the Month containing the current moment in loc.
func CurrentMonth(loc *time.Location) Month {
	return MonthOf(time.Now().In(loc))
}

// ParseMonth parses "January-2026" or "2026-01" into a Month.
func ParseMonth(s string) (Month, error) {
	if t, err := time.Parse("January-2006", s); err == nil {
		return MonthOf(t), nil
	}
	if t, err := time.Parse("2006-01", s); err == nil {
		return MonthOf(t), nil
	}
	return Month{}, fmt.Errorf("invalid month %q: want January-2006 or 2006-01", s)
}

// Contains reports whether day t falls inside the month.
func (m Month) Contains(t time.Time) bool {
	return t.Year() == m.Year && t.Month() == m.Month
}

// ReportTitle returns the report-partition name for the month,
// e.g. "Summary-January-2026". Deliberately not day-shaped.
func (m Month) ReportTitle() string {
	return fmt.Sprintf("Summary-%s-%d", m.Month.String(), m.Year)
}

// String implements fmt.Stringer.
func (m Month) String() string {
	return fmt.Sprintf("%s %d", m.Month.String(), m.Year)
}

// NextDailyFire returns the next wall-clock occurrence of hour:minute in
// loc strictly after t. Used by the reminder schedule.
func NextDailyFire(t time.Time, hour, minute int, loc *time.Location) time.Time {
	local := t.In(loc)
	fire := time.Date(local.Year(), local.Month(), local.Day(), hour, minute, 0, 0, loc)
	if !fire.After(local) {
		fire = fire.AddDate(0, 0, 1)
	}
	return fire
}

// LoadLocation loads a timezone by name, falling back to UTC on failure.
func LoadLocation(name string) *time.Location {
	loc, err := time.LoadLocation(name)
	if err != nil {
		return time.UTC
	}
	return loc
}
