package domain

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Frequency is a single recurrence variant: a family plus the family's
// parameters. The Weekday field is only meaningful for the weekday family
// (Monday through Saturday), and Month is an optional month filter for the
// start-of-month and end-of-month families ("every month" when nil).
//
// Frequencies are constructed through the typed constructors or
// ParseFrequency so an invalid combination never reaches the evaluator.
type Frequency struct {
	Family  FrequencyFamily
	Weekday time.Weekday
	Month   *time.Month
}

// OnceOff returns the once-off frequency.
func OnceOff() Frequency {
	return Frequency{Family: FamilyOnceOff}
}

// EveryDay returns the daily frequency.
func EveryDay() Frequency {
	return Frequency{Family: FamilyEveryDay}
}

// OnceWeekly returns the once-per-week frequency.
func OnceWeekly() Frequency {
	return Frequency{Family: FamilyOnceWeekly}
}

// OnWeekday returns the fixed-weekday frequency for Monday through Saturday.
func OnWeekday(day time.Weekday) (Frequency, error) {
	if day == time.Sunday {
		return Frequency{}, fmt.Errorf("%w: weekday frequency does not run on Sunday", ErrInvalidFrequency)
	}
	return Frequency{Family: FamilyWeekday, Weekday: day}, nil
}

// OnceMonthly returns the once-per-month frequency.
func OnceMonthly() Frequency {
	return Frequency{Family: FamilyOnceMonthly}
}

// StartOfMonth returns the start-of-month frequency, optionally restricted to
// a single month of the year.
func StartOfMonth(month *time.Month) Frequency {
	return Frequency{Family: FamilyStartOfMonth, Month: month}
}

// EndOfMonth returns the end-of-month frequency, optionally restricted to a
// single month of the year.
func EndOfMonth(month *time.Month) Frequency {
	return Frequency{Family: FamilyEndOfMonth, Month: month}
}

// Code returns the canonical wire form of the frequency, e.g. "every_day",
// "weekday:tuesday", "start_of_month:6". It is stable and round-trips through
// ParseFrequency; instance keys are derived from it.
func (f Frequency) Code() string {
	switch f.Family {
	case FamilyWeekday:
		return fmt.Sprintf("%s:%s", f.Family, strings.ToLower(f.Weekday.String()))
	case FamilyStartOfMonth, FamilyEndOfMonth:
		if f.Month != nil {
			return fmt.Sprintf("%s:%d", f.Family, int(*f.Month))
		}
		return string(f.Family)
	default:
		return string(f.Family)
	}
}

// String implements fmt.Stringer.
func (f Frequency) String() string {
	return f.Code()
}

var weekdayNames = map[string]time.Weekday{
	"monday":    time.Monday,
	"tuesday":   time.Tuesday,
	"wednesday": time.Wednesday,
	"thursday":  time.Thursday,
	"friday":    time.Friday,
	"saturday":  time.Saturday,
}

// ParseFrequency parses the canonical wire form produced by Code.
// It is the fail-fast boundary for frequency strings coming from storage or
// external callers.
func ParseFrequency(code string) (Frequency, error) {
	fam, param, hasParam := strings.Cut(strings.ToLower(strings.TrimSpace(code)), ":")

	switch FrequencyFamily(fam) {
	case FamilyOnceOff, FamilyEveryDay, FamilyOnceWeekly, FamilyOnceMonthly:
		if hasParam {
			return Frequency{}, fmt.Errorf("%w: %s takes no parameter", ErrInvalidFrequency, fam)
		}
		return Frequency{Family: FrequencyFamily(fam)}, nil

	case FamilyWeekday:
		day, ok := weekdayNames[param]
		if !ok {
			return Frequency{}, fmt.Errorf("%w: unknown weekday %q", ErrInvalidFrequency, param)
		}
		return Frequency{Family: FamilyWeekday, Weekday: day}, nil

	case FamilyStartOfMonth, FamilyEndOfMonth:
		if !hasParam {
			return Frequency{Family: FrequencyFamily(fam)}, nil
		}
		n, err := strconv.Atoi(param)
		if err != nil || n < 1 || n > 12 {
			return Frequency{}, fmt.Errorf("%w: month filter %q out of range 1..12", ErrInvalidFrequency, param)
		}
		month := time.Month(n)
		return Frequency{Family: FrequencyFamily(fam), Month: &month}, nil

	default:
		return Frequency{}, fmt.Errorf("%w: unknown family %q", ErrInvalidFrequency, fam)
	}
}
