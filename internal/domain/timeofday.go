package domain

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// TimeOfDay is a validated wall-clock time within a day.
// Value object - immutable.
type TimeOfDay struct {
	hour   int
	minute int
}

// EndOfDay is the 23:59 cutoff used for automatic locking.
var EndOfDay = TimeOfDay{hour: 23, minute: 59}

// NewTimeOfDay creates a TimeOfDay, validating the range.
func NewTimeOfDay(hour, minute int) (TimeOfDay, error) {
	if hour < 0 || hour > 23 || minute < 0 || minute > 59 {
		return TimeOfDay{}, fmt.Errorf("%w: %02d:%02d", ErrInvalidTimeOfDay, hour, minute)
	}
	return TimeOfDay{hour: hour, minute: minute}, nil
}

// ParseTimeOfDay parses "HH:MM". An empty string yields EndOfDay, the
// portal's default due time.
func ParseTimeOfDay(s string) (TimeOfDay, error) {
	if s == "" {
		return EndOfDay, nil
	}

	hh, mm, ok := strings.Cut(s, ":")
	if !ok {
		return TimeOfDay{}, fmt.Errorf("%w: %q", ErrInvalidTimeOfDay, s)
	}
	hour, err := strconv.Atoi(hh)
	if err != nil {
		return TimeOfDay{}, fmt.Errorf("%w: %q", ErrInvalidTimeOfDay, s)
	}
	minute, err := strconv.Atoi(mm)
	if err != nil {
		return TimeOfDay{}, fmt.Errorf("%w: %q", ErrInvalidTimeOfDay, s)
	}
	return NewTimeOfDay(hour, minute)
}

// Hour returns the hour component.
func (t TimeOfDay) Hour() int { return t.hour }

// Minute returns the minute component.
func (t TimeOfDay) Minute() int { return t.minute }

// String returns the "HH:MM" form.
func (t TimeOfDay) String() string {
	return fmt.Sprintf("%02d:%02d", t.hour, t.minute)
}

// On anchors the time of day to a civil date in the given location,
// producing the absolute deadline instant.
func (t TimeOfDay) On(date time.Time, loc *time.Location) time.Time {
	return time.Date(date.Year(), date.Month(), date.Day(), t.hour, t.minute, 0, 0, loc)
}
