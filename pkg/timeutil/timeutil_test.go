package timeutil

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDayKeyRoundTrip(t *testing.T) {
	day := time.Date(2024, time.January, 1, 15, 4, 5, 0, time.UTC)
	key := DayKey(day)
	assert.Equal(t, "2024-01-01", key)

	parsed, err := ParseDay(key)
	require.NoError(t, err)
	assert.Equal(t, 2024, parsed.Year())
	assert.Equal(t, time.January, parsed.Month())
	assert.Equal(t, 1, parsed.Day())
}

func TestIsDayKey(t *testing.T) {
	tests := []struct {
		name string
		want bool
	}{
		{"2024-01-01", true},
		{"2024-12-31", true},
		{"Summary-January-2024", false},
		{"Registered_Members", false},
		{"2024-13-01", false},
		{"2024-02-30", false},
		{"", false},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, IsDayKey(tt.name), "name=%q", tt.name)
	}
}

func TestParseMonth(t *testing.T) {
	m, err := ParseMonth("January-2026")
	require.NoError(t, err)
	assert.Equal(t, Month{Year: 2026, Month: time.January}, m)

	m, err = ParseMonth("2026-03")
	require.NoError(t, err)
	assert.Equal(t, Month{Year: 2026, Month: time.March}, m)

	_, err = ParseMonth("notamonth")
	assert.Error(t, err)
}

func TestMonthContains(t *testing.T) {
	m := Month{Year: 2024, Month: time.February}

	in, _ := ParseDay("2024-02-29")
	out, _ := ParseDay("2024-03-01")

	assert.True(t, m.Contains(in))
	assert.False(t, m.Contains(out))
}

func TestReportTitleIsNotDayShaped(t *testing.T) {
	title := Month{Year: 2026, Month: time.January}.ReportTitle()
	assert.Equal(t, "Summary-January-2026", title)
	assert.False(t, IsDayKey(title))
}

func TestNextDailyFire(t *testing.T) {
	loc := time.UTC

	// Before today's fire time: fires today.
	now := time.Date(2024, time.June, 10, 8, 0, 0, 0, loc)
	fire := NextDailyFire(now, 22, 0, loc)
	assert.Equal(t, time.Date(2024, time.June, 10, 22, 0, 0, 0, loc), fire)

	// Exactly at the fire time: fires tomorrow (strictly after).
	now = time.Date(2024, time.June, 10, 22, 0, 0, 0, loc)
	fire = NextDailyFire(now, 22, 0, loc)
	assert.Equal(t, time.Date(2024, time.June, 11, 22, 0, 0, 0, loc), fire)

	// After the fire time: fires tomorrow.
	now = time.Date(2024, time.June, 10, 23, 30, 0, 0, loc)
	fire = NextDailyFire(now, 22, 0, loc)
	assert.Equal(t, time.Date(2024, time.June, 11, 22, 0, 0, 0, loc), fire)
}
