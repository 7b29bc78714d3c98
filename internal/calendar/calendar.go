// Package calendar provides the business-day calendar the recurrence and
// status engines run against. A Calendar is an immutable snapshot: build one
// from the holiday set before a pass starts and every date evaluated in that
// pass sees the same view.
package calendar

import (
	"time"

	"github.com/rxops/checklist/internal/domain"
)

// Config describes the working pattern of the pharmacy. Both weekday sets
// are explicit inputs because the portal distinguishes visibility from
// workday arithmetic: the checklist is open Monday through Saturday, but due
// dates computed "N workdays out" skip full weekends.
type Config struct {
	// RestDays are weekdays with no checklist at all. Defaults to Sunday.
	RestDays []time.Weekday

	// ArithmeticSkipDays are weekdays skipped by AddWorkdays and
	// RemainingWorkdaysAfter. Defaults to Saturday and Sunday.
	ArithmeticSkipDays []time.Weekday

	// Holidays are the public-holiday dates, in addition to RestDays.
	Holidays []domain.Holiday
}

// Calendar answers business-day questions from an immutable snapshot of the
// holiday set. All methods are pure and total for well-formed dates.
type Calendar struct {
	rest     map[time.Weekday]bool
	skip     map[time.Weekday]bool
	holidays map[time.Time]string
}

// New builds a Calendar snapshot from cfg. The input slices are copied; later
// changes to the holiday set require building a new snapshot.
func New(cfg Config) *Calendar {
	c := &Calendar{
		rest:     make(map[time.Weekday]bool),
		skip:     make(map[time.Weekday]bool),
		holidays: make(map[time.Time]string, len(cfg.Holidays)),
	}

	restDays := cfg.RestDays
	if restDays == nil {
		restDays = []time.Weekday{time.Sunday}
	}
	for _, d := range restDays {
		c.rest[d] = true
	}

	skipDays := cfg.ArithmeticSkipDays
	if skipDays == nil {
		skipDays = []time.Weekday{time.Saturday, time.Sunday}
	}
	for _, d := range skipDays {
		c.skip[d] = true
	}

	for _, h := range cfg.Holidays {
		c.holidays[domain.DateOf(h.Date)] = h.Name
	}

	return c
}

// IsHoliday reports whether date is in the holiday set.
func (c *Calendar) IsHoliday(date time.Time) bool {
	_, ok := c.holidays[domain.DateOf(date)]
	return ok
}

// HolidayName returns the holiday name for date, or "" when it is not one.
func (c *Calendar) HolidayName(date time.Time) string {
	return c.holidays[domain.DateOf(date)]
}

// IsRestDay reports whether date falls on a configured rest weekday.
func (c *Calendar) IsRestDay(date time.Time) bool {
	return c.rest[date.Weekday()]
}

// IsBusinessDay reports whether date is a working weekday that is not a
// holiday.
func (c *Calendar) IsBusinessDay(date time.Time) bool {
	return !c.rest[date.Weekday()] && !c.IsHoliday(date)
}

// NextBusinessDay returns the first business day strictly after date.
func (c *Calendar) NextBusinessDay(date time.Time) time.Time {
	d := domain.DateOf(date).AddDate(0, 0, 1)
	for !c.IsBusinessDay(d) {
		d = d.AddDate(0, 0, 1)
	}
	return d
}

// PreviousBusinessDay returns the first business day strictly before date.
func (c *Calendar) PreviousBusinessDay(date time.Time) time.Time {
	d := domain.DateOf(date).AddDate(0, 0, -1)
	for !c.IsBusinessDay(d) {
		d = d.AddDate(0, 0, -1)
	}
	return d
}

// ShiftForwardToBusinessDay returns date itself when it is a business day,
// otherwise the next business day after it.
func (c *Calendar) ShiftForwardToBusinessDay(date time.Time) time.Time {
	d := domain.DateOf(date)
	if c.IsBusinessDay(d) {
		return d
	}
	return c.NextBusinessDay(d)
}

// ShiftBackToBusinessDay returns date itself when it is a business day,
// otherwise the nearest earlier business day.
func (c *Calendar) ShiftBackToBusinessDay(date time.Time) time.Time {
	d := domain.DateOf(date)
	if c.IsBusinessDay(d) {
		return d
	}
	return c.PreviousBusinessDay(d)
}

// AddWorkdays advances date by n workdays, where a workday is any weekday
// outside the arithmetic skip set that is not a holiday. If the landing day
// is itself not a workday it keeps shifting forward until it is.
func (c *Calendar) AddWorkdays(date time.Time, n int) time.Time {
	d := domain.DateOf(date)
	for counted := 0; counted < n; {
		d = d.AddDate(0, 0, 1)
		if c.isWorkday(d) {
			counted++
		}
	}
	for !c.isWorkday(d) {
		d = d.AddDate(0, 0, 1)
	}
	return d
}

// LastBusinessDayMatching returns the last occurrence of weekday in the given
// month, shifted to the nearest earlier business day when that occurrence is
// a holiday. The result stays within the month.
func (c *Calendar) LastBusinessDayMatching(weekday time.Weekday, year int, month time.Month) time.Time {
	d := lastOfMonth(year, month)
	for d.Weekday() != weekday {
		d = d.AddDate(0, 0, -1)
	}
	first := time.Date(year, month, 1, 0, 0, 0, 0, time.UTC)
	for !c.IsBusinessDay(d) && d.After(first) {
		d = d.AddDate(0, 0, -1)
	}
	return d
}

// RemainingWorkdaysAfter counts the workdays strictly after date up to and
// including until.
func (c *Calendar) RemainingWorkdaysAfter(date, until time.Time) int {
	count := 0
	for d := domain.DateOf(date).AddDate(0, 0, 1); !d.After(domain.DateOf(until)); d = d.AddDate(0, 0, 1) {
		if c.isWorkday(d) {
			count++
		}
	}
	return count
}

func (c *Calendar) isWorkday(date time.Time) bool {
	return !c.skip[date.Weekday()] && !c.IsHoliday(date)
}

func lastOfMonth(year int, month time.Month) time.Time {
	return time.Date(year, month+1, 1, 0, 0, 0, 0, time.UTC).AddDate(0, 0, -1)
}

// MonthEnd returns the last calendar date of date's month.
func MonthEnd(date time.Time) time.Time {
	return lastOfMonth(date.Year(), date.Month())
}
