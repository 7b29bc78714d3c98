package recurring

import (
	"fmt"
	"time"

	"github.com/rxops/checklist/internal/calendar"
	"github.com/rxops/checklist/internal/domain"
)

// The checklist week runs Monday through Saturday. Sunday belongs to the
// week that just ended, so a Sunday target never falls inside a weekly
// window.

func weekMonday(d time.Time) time.Time {
	offset := (int(d.Weekday()) + 6) % 7
	return domain.DateOf(d).AddDate(0, 0, -offset)
}

func weekSaturday(d time.Time) time.Time {
	return weekMonday(d).AddDate(0, 0, 5)
}

// firstOpenDay scans from..to (inclusive, step day) and returns the first
// business day, stepping forward or backward.
func firstOpenDay(cal *calendar.Calendar, from, to time.Time) (time.Time, bool) {
	step := 1
	if to.Before(from) {
		step = -1
	}
	for d := from; ; d = d.AddDate(0, 0, step) {
		if cal.IsBusinessDay(d) {
			return d, true
		}
		if d.Equal(to) {
			return time.Time{}, false
		}
	}
}

// weekCutoff is the shared carry/lock cutoff for weekly tasks: the week's
// Saturday, or the nearest earlier business day when Saturday is a holiday.
// It never moves before floor (the occurrence's appearance).
func weekCutoff(cal *calendar.Calendar, anyDayOfWeek, floor time.Time) time.Time {
	cut, ok := firstOpenDay(cal, weekSaturday(anyDayOfWeek), weekMonday(anyDayOfWeek))
	if !ok || cut.Before(floor) {
		return floor
	}
	return cut
}

// onceOffRule: a single occurrence, visible from publish_at (or the due date
// when unpublished), carried every day until completed. Never locks.
type onceOffRule struct{}

func (r *onceOffRule) occurrenceFor(task *domain.TaskDefinition, _ domain.Frequency, _ time.Time, _ *calendar.Calendar) (occurrence, error) {
	if task.DueDate == nil {
		return occurrence{}, fmt.Errorf("%w: once-off task %s has no due date", domain.ErrInvalidTaskDefinition, task.ID)
	}
	due := domain.DateOf(*task.DueDate)
	first := due
	if task.PublishAt != nil {
		first = domain.DateOf(*task.PublishAt)
		if first.After(due) {
			return occurrence{}, fmt.Errorf("%w: once-off task %s publishes after its due date", domain.ErrInvalidTaskDefinition, task.ID)
		}
	}
	return occurrence{appearance: first, due: due, openEnded: true}, nil
}

func (r *onceOffRule) lockCutoff(domain.Frequency, time.Time, time.Time, *calendar.Calendar) (time.Time, bool) {
	return time.Time{}, false
}

// everyDayRule: one occurrence per business day, due the same day. Rest days
// and holidays get no instance at all rather than a shifted one.
type everyDayRule struct{}

func (r *everyDayRule) occurrenceFor(_ *domain.TaskDefinition, _ domain.Frequency, target time.Time, cal *calendar.Calendar) (occurrence, error) {
	if !cal.IsBusinessDay(target) {
		return occurrence{none: true}, nil
	}
	return occurrence{appearance: target, due: target, carryEnd: target}, nil
}

func (r *everyDayRule) lockCutoff(_ domain.Frequency, _, due time.Time, _ *calendar.Calendar) (time.Time, bool) {
	return due, true
}

// onceWeeklyRule: appears Monday (shifted forward through the week on
// holidays), due Saturday (shifted to the nearest earlier business day),
// carried between the two.
type onceWeeklyRule struct{}

func (r *onceWeeklyRule) occurrenceFor(_ *domain.TaskDefinition, _ domain.Frequency, target time.Time, cal *calendar.Calendar) (occurrence, error) {
	monday := weekMonday(target)
	saturday := monday.AddDate(0, 0, 5)

	appearance, ok := firstOpenDay(cal, monday, saturday)
	if !ok {
		// Whole week is closed; nothing to show.
		return occurrence{none: true}, nil
	}

	due, ok := firstOpenDay(cal, saturday, monday)
	if !ok || due.Before(appearance) {
		due = appearance
	}

	return occurrence{appearance: appearance, due: due, carryEnd: due}, nil
}

func (r *onceWeeklyRule) lockCutoff(_ domain.Frequency, _, due time.Time, _ *calendar.Calendar) (time.Time, bool) {
	return due, true
}

// weekdayRule: appears on its scheduled weekday. On a holiday the Monday
// variant shifts forward; Tuesday through Saturday shift to the nearest
// earlier business day in the week, falling forward only when every earlier
// day is closed too. The due date stays the originally scheduled date either
// way, and the occurrence carries through the week's Saturday cutoff.
type weekdayRule struct{}

func (r *weekdayRule) occurrenceFor(_ *domain.TaskDefinition, freq domain.Frequency, target time.Time, cal *calendar.Calendar) (occurrence, error) {
	monday := weekMonday(target)
	saturday := monday.AddDate(0, 0, 5)
	scheduled := monday.AddDate(0, 0, int(freq.Weekday)-int(time.Monday))

	appearance := scheduled
	if !cal.IsBusinessDay(scheduled) {
		var ok bool
		if freq.Weekday == time.Monday {
			appearance, ok = firstOpenDay(cal, scheduled.AddDate(0, 0, 1), saturday)
		} else {
			appearance, ok = firstOpenDay(cal, scheduled.AddDate(0, 0, -1), monday)
			if !ok {
				appearance, ok = firstOpenDay(cal, scheduled.AddDate(0, 0, 1), saturday)
			}
		}
		if !ok {
			return occurrence{none: true}, nil
		}
	}

	return occurrence{
		appearance: appearance,
		due:        scheduled,
		carryEnd:   weekCutoff(cal, monday, appearance),
	}, nil
}

func (r *weekdayRule) lockCutoff(_ domain.Frequency, firstAppearance, _ time.Time, cal *calendar.Calendar) (time.Time, bool) {
	return weekCutoff(cal, firstAppearance, firstAppearance), true
}

// monthStartAppearance resolves the shared start-of-month appearance: the
// 1st, moved off a weekend to the following Monday, then forward again past
// any holiday.
func monthStartAppearance(target time.Time, cal *calendar.Calendar) time.Time {
	d := time.Date(target.Year(), target.Month(), 1, 0, 0, 0, 0, time.UTC)
	for d.Weekday() == time.Saturday || d.Weekday() == time.Sunday {
		d = d.AddDate(0, 0, 1)
	}
	return cal.ShiftForwardToBusinessDay(d)
}

// monthCarryCutoff is the month's last Saturday, shifted to the nearest
// earlier business day on a holiday.
func monthCarryCutoff(target time.Time, cal *calendar.Calendar) time.Time {
	return cal.LastBusinessDayMatching(time.Saturday, target.Year(), target.Month())
}

func monthMatches(freq domain.Frequency, target time.Time) bool {
	return freq.Month == nil || target.Month() == *freq.Month
}

// startOfMonthRule: appears at the start of the month, due five workdays
// later, carried through the month's last Saturday.
type startOfMonthRule struct{}

func (r *startOfMonthRule) occurrenceFor(_ *domain.TaskDefinition, freq domain.Frequency, target time.Time, cal *calendar.Calendar) (occurrence, error) {
	if !monthMatches(freq, target) {
		return occurrence{none: true}, nil
	}
	appearance := monthStartAppearance(target, cal)
	cutoff := monthCarryCutoff(target, cal)
	if cutoff.Before(appearance) {
		cutoff = appearance
	}
	return occurrence{
		appearance: appearance,
		due:        cal.AddWorkdays(appearance, 5),
		carryEnd:   cutoff,
	}, nil
}

func (r *startOfMonthRule) lockCutoff(_ domain.Frequency, firstAppearance, _ time.Time, cal *calendar.Calendar) (time.Time, bool) {
	cutoff := monthCarryCutoff(firstAppearance, cal)
	if cutoff.Before(firstAppearance) {
		cutoff = firstAppearance
	}
	return cutoff, true
}

// onceMonthlyRule: same appearance as start-of-month, but due on the month's
// last Saturday and closed at the due date.
type onceMonthlyRule struct{}

func (r *onceMonthlyRule) occurrenceFor(_ *domain.TaskDefinition, _ domain.Frequency, target time.Time, cal *calendar.Calendar) (occurrence, error) {
	appearance := monthStartAppearance(target, cal)
	due := monthCarryCutoff(target, cal)
	if due.Before(appearance) {
		due = appearance
	}
	return occurrence{appearance: appearance, due: due, carryEnd: due}, nil
}

func (r *onceMonthlyRule) lockCutoff(_ domain.Frequency, _, due time.Time, _ *calendar.Calendar) (time.Time, bool) {
	return due, true
}

// endOfMonthRule: appears on the latest Monday that still leaves at least
// five workdays before the month ends, due the month's last Saturday.
type endOfMonthRule struct{}

const endOfMonthLeadWorkdays = 5

func (r *endOfMonthRule) occurrenceFor(_ *domain.TaskDefinition, freq domain.Frequency, target time.Time, cal *calendar.Calendar) (occurrence, error) {
	if !monthMatches(freq, target) {
		return occurrence{none: true}, nil
	}

	appearance := cal.ShiftForwardToBusinessDay(endOfMonthMonday(target, cal))
	due := monthCarryCutoff(target, cal)
	if due.Before(appearance) {
		due = appearance
	}
	return occurrence{appearance: appearance, due: due, carryEnd: due}, nil
}

func (r *endOfMonthRule) lockCutoff(_ domain.Frequency, _, due time.Time, _ *calendar.Calendar) (time.Time, bool) {
	return due, true
}

// endOfMonthMonday picks the latest Monday in target's month with at least
// endOfMonthLeadWorkdays workdays remaining before month end. No month under
// a normal workweek lacks one, but if the calendar is degenerate enough the
// first Monday of the month is used instead.
func endOfMonthMonday(target time.Time, cal *calendar.Calendar) time.Time {
	monthEnd := calendar.MonthEnd(target)
	first := time.Date(target.Year(), target.Month(), 1, 0, 0, 0, 0, time.UTC)

	d := monthEnd
	for d.Weekday() != time.Monday {
		d = d.AddDate(0, 0, -1)
	}
	for !d.Before(first) {
		if cal.RemainingWorkdaysAfter(d, monthEnd) >= endOfMonthLeadWorkdays {
			return d
		}
		d = d.AddDate(0, 0, -7)
	}

	// Fallback for calendars where no Monday qualifies.
	d = first
	for d.Weekday() != time.Monday {
		d = d.AddDate(0, 0, 1)
	}
	return d
}
