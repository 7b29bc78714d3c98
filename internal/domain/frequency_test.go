package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseFrequency_BareFamilies(t *testing.T) {
	for _, code := range []string{"once_off", "every_day", "once_weekly", "once_monthly", "start_of_month", "end_of_month"} {
		freq, err := ParseFrequency(code)
		require.NoError(t, err, code)
		assert.Equal(t, code, freq.Code())
	}
}

func TestParseFrequency_Weekday(t *testing.T) {
	freq, err := ParseFrequency("weekday:tuesday")
	require.NoError(t, err)
	assert.Equal(t, FamilyWeekday, freq.Family)
	assert.Equal(t, time.Tuesday, freq.Weekday)
	assert.Equal(t, "weekday:tuesday", freq.Code())
}

func TestParseFrequency_WeekdaySundayRejected(t *testing.T) {
	_, err := ParseFrequency("weekday:sunday")
	require.ErrorIs(t, err, ErrInvalidFrequency)
}

func TestParseFrequency_MonthFilter(t *testing.T) {
	freq, err := ParseFrequency("start_of_month:6")
	require.NoError(t, err)
	require.NotNil(t, freq.Month)
	assert.Equal(t, time.June, *freq.Month)
	assert.Equal(t, "start_of_month:6", freq.Code())

	freq, err = ParseFrequency("end_of_month:12")
	require.NoError(t, err)
	require.NotNil(t, freq.Month)
	assert.Equal(t, time.December, *freq.Month)
}

func TestParseFrequency_Invalid(t *testing.T) {
	for _, code := range []string{"", "daily", "weekday", "weekday:funday", "start_of_month:13", "start_of_month:0", "every_day:2"} {
		_, err := ParseFrequency(code)
		assert.ErrorIs(t, err, ErrInvalidFrequency, code)
	}
}

func TestOnWeekday_RejectsSunday(t *testing.T) {
	_, err := OnWeekday(time.Sunday)
	require.ErrorIs(t, err, ErrInvalidFrequency)

	freq, err := OnWeekday(time.Saturday)
	require.NoError(t, err)
	assert.Equal(t, "weekday:saturday", freq.Code())
}

func TestFrequency_CodeRoundTrip(t *testing.T) {
	june := time.June
	for _, freq := range []Frequency{
		OnceOff(),
		EveryDay(),
		OnceWeekly(),
		{Family: FamilyWeekday, Weekday: time.Friday},
		OnceMonthly(),
		StartOfMonth(nil),
		StartOfMonth(&june),
		EndOfMonth(&june),
	} {
		parsed, err := ParseFrequency(freq.Code())
		require.NoError(t, err, freq.Code())
		assert.Equal(t, freq.Code(), parsed.Code())
	}
}

func TestInstanceKey_Deterministic(t *testing.T) {
	date := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	a := InstanceKey("task-1", EveryDay(), date)
	b := InstanceKey("task-1", EveryDay(), date)
	assert.Equal(t, a, b)

	// The time-of-day component must not leak into identity.
	c := InstanceKey("task-1", EveryDay(), date.Add(13*time.Hour))
	assert.Equal(t, a, c)
}

func TestInstanceKey_DistinctPerDimension(t *testing.T) {
	date := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	base := InstanceKey("task-1", EveryDay(), date)

	assert.NotEqual(t, base, InstanceKey("task-2", EveryDay(), date))
	assert.NotEqual(t, base, InstanceKey("task-1", OnceWeekly(), date))
	assert.NotEqual(t, base, InstanceKey("task-1", EveryDay(), date.AddDate(0, 0, 1)))
}
