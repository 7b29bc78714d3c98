// Package recurring decides, for any task frequency and calendar date,
// whether a task occurrence appears, carries, or is absent, and what its due
// date is. All functions are pure: every answer is re-derived from the task,
// the frequency and the calendar snapshot passed in, so a changed holiday set
// is reflected in any future-dated evaluation automatically.
package recurring

import (
	"fmt"
	"time"

	"github.com/rxops/checklist/internal/calendar"
	"github.com/rxops/checklist/internal/domain"
)

// Outcome classifies the result of evaluating one frequency on one date.
type Outcome int

const (
	// OutcomeNotApplicable means no instance is rendered for the date.
	OutcomeNotApplicable Outcome = iota
	// OutcomeNew means the date is the occurrence's first appearance.
	OutcomeNew
	// OutcomeCarry means the date re-renders an occurrence that already
	// appeared on an earlier date.
	OutcomeCarry
)

// Decision is the evaluator's answer for one (task, frequency, date) triple.
// AppearanceDate is always the occurrence's first appearance, which together
// with the task and frequency determines the occurrence identity.
type Decision struct {
	Outcome        Outcome
	AppearanceDate time.Time
	DueDate        time.Time
}

// occurrence is a family rule's description of the occurrence whose window
// contains the target date. carryEnd is the last date the occurrence is
// still rendered; openEnded occurrences (once-off) carry forever.
type occurrence struct {
	appearance time.Time
	due        time.Time
	carryEnd   time.Time
	openEnded  bool
	none       bool
}

// familyRule computes appearance and due dates for one frequency family.
type familyRule interface {
	// occurrenceFor returns the occurrence whose window could contain
	// target, or none when the family produces nothing for that period.
	occurrenceFor(task *domain.TaskDefinition, freq domain.Frequency, target time.Time, cal *calendar.Calendar) (occurrence, error)

	// lockCutoff returns the date on whose 23:59 the occurrence locks.
	// ok is false for families that never auto-lock.
	lockCutoff(freq domain.Frequency, firstAppearance, due time.Time, cal *calendar.Calendar) (cutoff time.Time, ok bool)
}

// ruleFor returns the rule for the given frequency family.
func ruleFor(family domain.FrequencyFamily) familyRule {
	switch family {
	case domain.FamilyOnceOff:
		return &onceOffRule{}
	case domain.FamilyEveryDay:
		return &everyDayRule{}
	case domain.FamilyOnceWeekly:
		return &onceWeeklyRule{}
	case domain.FamilyWeekday:
		return &weekdayRule{}
	case domain.FamilyOnceMonthly:
		return &onceMonthlyRule{}
	case domain.FamilyStartOfMonth:
		return &startOfMonthRule{}
	case domain.FamilyEndOfMonth:
		return &endOfMonthRule{}
	default:
		return nil
	}
}

// Evaluate applies the frequency's family rule to a single target date.
// A validation failure on the task (for example a once-off task without a
// due date) is returned as an error wrapping domain.ErrInvalidTaskDefinition;
// the caller treats it as a warning for that task, not a fatal condition.
func Evaluate(task *domain.TaskDefinition, freq domain.Frequency, target time.Time, cal *calendar.Calendar) (Decision, error) {
	rule := ruleFor(freq.Family)
	if rule == nil {
		return Decision{}, fmt.Errorf("%w: %s", domain.ErrInvalidFrequency, freq.Code())
	}

	day := domain.DateOf(target)
	occ, err := rule.occurrenceFor(task, freq, day, cal)
	if err != nil {
		return Decision{}, err
	}
	if occ.none || day.Before(occ.appearance) {
		return Decision{Outcome: OutcomeNotApplicable}, nil
	}
	if !occ.openEnded && day.After(occ.carryEnd) {
		return Decision{Outcome: OutcomeNotApplicable}, nil
	}

	out := OutcomeCarry
	if day.Equal(occ.appearance) {
		out = OutcomeNew
	}
	return Decision{Outcome: out, AppearanceDate: occ.appearance, DueDate: occ.due}, nil
}

// LockCutoffDate returns the date on whose end-of-day an occurrence locks if
// still uncompleted. ok is false for frequencies that never auto-lock
// (once-off). The same cutoff bounds the carry window during generation, so
// generation and status evaluation cannot disagree about when a window ends.
func LockCutoffDate(freq domain.Frequency, firstAppearance, due time.Time, cal *calendar.Calendar) (time.Time, bool) {
	rule := ruleFor(freq.Family)
	if rule == nil {
		return time.Time{}, false
	}
	return rule.lockCutoff(freq, domain.DateOf(firstAppearance), domain.DateOf(due), cal)
}
