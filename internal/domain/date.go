package domain

import (
	"fmt"
	"time"
)

// DateLayout is the ISO calendar-date form used everywhere dates cross a
// boundary (storage, config, instance keys).
const DateLayout = "2006-01-02"

// DateOf truncates t to a civil date: midnight UTC of the same year, month
// and day. All engine date arithmetic operates on values in this form.
func DateOf(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// ParseDate parses an ISO calendar date. It is the fail-fast boundary for
// caller-supplied date strings.
func ParseDate(s string) (time.Time, error) {
	t, err := time.Parse(DateLayout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %q is not an ISO date", ErrInvalidDate, s)
	}
	return t, nil
}

// SameDate reports whether a and b fall on the same civil date.
func SameDate(a, b time.Time) bool {
	return DateOf(a).Equal(DateOf(b))
}
