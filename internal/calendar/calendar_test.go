package calendar

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rxops/checklist/internal/domain"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func newCalendar(holidays ...time.Time) *Calendar {
	hs := make([]domain.Holiday, 0, len(holidays))
	for _, h := range holidays {
		hs = append(hs, domain.Holiday{Date: h, Name: "test holiday"})
	}
	return New(Config{Holidays: hs})
}

func TestIsBusinessDay_DefaultWeek(t *testing.T) {
	cal := newCalendar()

	// Week of 2024-01-01: Monday through Saturday are working days.
	for d := 1; d <= 6; d++ {
		assert.True(t, cal.IsBusinessDay(date(2024, 1, d)), "day %d", d)
	}
	// Sunday is not.
	assert.False(t, cal.IsBusinessDay(date(2024, 1, 7)))
}

func TestIsBusinessDay_Holiday(t *testing.T) {
	cal := newCalendar(date(2024, 1, 1))

	assert.False(t, cal.IsBusinessDay(date(2024, 1, 1)))
	assert.True(t, cal.IsHoliday(date(2024, 1, 1)))
	assert.Equal(t, "test holiday", cal.HolidayName(date(2024, 1, 1)))
}

func TestNextPreviousBusinessDay(t *testing.T) {
	cal := newCalendar(date(2024, 1, 2))

	// Monday 1st: Tuesday 2nd is a holiday, so next is Wednesday 3rd.
	assert.Equal(t, date(2024, 1, 3), cal.NextBusinessDay(date(2024, 1, 1)))

	// Saturday 6th back over the holiday-free week lands on Friday 5th.
	assert.Equal(t, date(2024, 1, 5), cal.PreviousBusinessDay(date(2024, 1, 6)))

	// Monday 8th back across Sunday lands on Saturday 6th.
	assert.Equal(t, date(2024, 1, 6), cal.PreviousBusinessDay(date(2024, 1, 8)))
}

func TestShiftToBusinessDay(t *testing.T) {
	cal := newCalendar(date(2024, 1, 1))

	// A business day shifts nowhere.
	assert.Equal(t, date(2024, 1, 3), cal.ShiftForwardToBusinessDay(date(2024, 1, 3)))
	assert.Equal(t, date(2024, 1, 3), cal.ShiftBackToBusinessDay(date(2024, 1, 3)))

	// Holiday Monday shifts forward to Tuesday, back to the prior Saturday.
	assert.Equal(t, date(2024, 1, 2), cal.ShiftForwardToBusinessDay(date(2024, 1, 1)))
	assert.Equal(t, date(2023, 12, 30), cal.ShiftBackToBusinessDay(date(2024, 1, 1)))
}

func TestAddWorkdays_SkipsWeekend(t *testing.T) {
	cal := newCalendar()

	// Monday 2024-07-01 + 5 workdays crosses the weekend to the next Monday.
	assert.Equal(t, date(2024, 7, 8), cal.AddWorkdays(date(2024, 7, 1), 5))
}

func TestAddWorkdays_SkipsHolidays(t *testing.T) {
	cal := newCalendar(date(2024, 7, 3))

	// Wednesday 3rd is a holiday: 1 -> 2, 4, 5, 8, 9.
	assert.Equal(t, date(2024, 7, 9), cal.AddWorkdays(date(2024, 7, 1), 5))
}

func TestLastBusinessDayMatching(t *testing.T) {
	cal := newCalendar()
	// July 2024's last Saturday.
	assert.Equal(t, date(2024, 7, 27), cal.LastBusinessDayMatching(time.Saturday, 2024, time.July))
}

func TestLastBusinessDayMatching_HolidayShiftsEarlier(t *testing.T) {
	cal := newCalendar(date(2024, 7, 27))

	// The last Saturday is a holiday, so it moves to Friday 26th, never
	// forward into the following week.
	assert.Equal(t, date(2024, 7, 26), cal.LastBusinessDayMatching(time.Saturday, 2024, time.July))
}

func TestRemainingWorkdaysAfter(t *testing.T) {
	cal := newCalendar()
	monthEnd := MonthEnd(date(2024, 7, 1))
	require.Equal(t, date(2024, 7, 31), monthEnd)

	// After Monday 29th: Tue 30, Wed 31.
	assert.Equal(t, 2, cal.RemainingWorkdaysAfter(date(2024, 7, 29), monthEnd))
	// After Monday 22nd: 23, 24, 25, 26, 29, 30, 31.
	assert.Equal(t, 7, cal.RemainingWorkdaysAfter(date(2024, 7, 22), monthEnd))
}

func TestConfig_CustomRestDays(t *testing.T) {
	cal := New(Config{RestDays: []time.Weekday{time.Saturday, time.Sunday}})

	assert.False(t, cal.IsBusinessDay(date(2024, 1, 6))) // Saturday
	assert.False(t, cal.IsBusinessDay(date(2024, 1, 7))) // Sunday
	assert.True(t, cal.IsBusinessDay(date(2024, 1, 5)))  // Friday
}
