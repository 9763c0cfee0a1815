package scheduler

import (
	"fmt"
	"time"

	"github.com/solvecircle/dailyproof/pkg/timeutil"
)

// ══════════════════════════════════════════════════════════════════════════════
// SCHEDULES
// ══════════════════════════════════════════════════════════════════════════════

// DailySchedule fires once per day at a fixed wall-clock time in a
// fixed timezone.
type DailySchedule struct {
	Hour     int
	Minute   int
	Location *time.Location
}

// NewDailySchedule creates a daily schedule. A nil location means UTC.
func NewDailySchedule(hour, minute int, loc *time.Location) DailySchedule {
	if loc == nil {
		loc = time.UTC
	}
	return DailySchedule{Hour: hour, Minute: minute, Location: loc}
}

// Next returns the next firing strictly after t.
func (d DailySchedule) Next(t time.Time) time.Time {
	return timeutil.NextDailyFire(t, d.Hour, d.Minute, d.Location)
}

// String implements Schedule.
func (d DailySchedule) String() string {
	return fmt.Sprintf("daily at %02d:%02d %s", d.Hour, d.Minute, d.Location)
}

// MonthlyFirstSchedule fires on the first day of each month at a fixed
// wall-clock time.
type MonthlyFirstSchedule struct {
	Hour     int
	Minute   int
	Location *time.Location
}

// NewMonthlyFirstSchedule creates a first-of-month schedule.
func NewMonthlyFirstSchedule(hour, minute int, loc *time.Location) MonthlyFirstSchedule {
	if loc == nil {
		loc = time.UTC
	}
	return MonthlyFirstSchedule{Hour: hour, Minute: minute, Location: loc}
}

// Next returns the next first-of-month firing strictly after t.
func (m MonthlyFirstSchedule) Next(t time.Time) time.Time {
	t = t.In(m.Location)
	candidate := time.Date(t.Year(), t.Month(), 1, m.Hour, m.Minute, 0, 0, m.Location)
	for !candidate.After(t) {
		candidate = time.Date(candidate.Year(), candidate.Month()+1, 1, m.Hour, m.Minute, 0, 0, m.Location)
	}
	return candidate
}

// String implements Schedule.
func (m MonthlyFirstSchedule) String() string {
	return fmt.Sprintf("monthly on the 1st at %02d:%02d %s", m.Hour, m.Minute, m.Location)
}

// IntervalSchedule fires at a fixed interval. Used in tests and for
// ad-hoc maintenance jobs.
type IntervalSchedule struct {
	Every time.Duration
}

// Next returns t plus the interval.
func (i IntervalSchedule) Next(t time.Time) time.Time {
	return t.Add(i.Every)
}

// String implements Schedule.
func (i IntervalSchedule) String() string {
	return fmt.Sprintf("every %s", i.Every)
}
