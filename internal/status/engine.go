// Package status computes automatic status transitions for persisted task
// instances. The engine only ever moves instances toward overdue or missed;
// completion is a user action applied by the caller, and unlocking is an
// administrative action outside this module.
package status

import (
	"fmt"
	"time"

	"github.com/rxops/checklist/internal/calendar"
	"github.com/rxops/checklist/internal/domain"
	"github.com/rxops/checklist/internal/recurring"
)

// Outcome classifies the result of evaluating one instance.
type Outcome int

const (
	// OutcomeNoChange means the instance stays as it is for now.
	OutcomeNoChange Outcome = iota
	// OutcomeAlreadySettled means the instance is done or locked and will
	// never transition automatically again. Reported, not an error.
	OutcomeAlreadySettled
	// OutcomeTransition means the caller should apply the transition.
	OutcomeTransition
)

// Transition is a status change for the caller to apply and persist.
type Transition struct {
	InstanceKey string
	Old         domain.InstanceStatus
	New         domain.InstanceStatus
	Locked      bool
	Reason      string
}

// Decision is the engine's answer for one instance at one point in time.
type Decision struct {
	Outcome    Outcome
	Transition Transition
}

// Engine evaluates instances against wall-clock time in the pharmacy's
// business timezone. It is stateless; evaluations for different instances
// may run in parallel.
type Engine struct {
	loc *time.Location
}

// NewEngine creates an engine that interprets due times and lock cutoffs in
// the given business timezone.
func NewEngine(loc *time.Location) *Engine {
	if loc == nil {
		loc = time.UTC
	}
	return &Engine{loc: loc}
}

// EvaluateInstance decides the next automatic transition for inst at now.
// Evaluating a done or locked instance is a no-op reported as already
// settled. The lock cutoff comes from the same per-family rule the
// generator uses for carry windows, so the two engines cannot drift apart.
func (e *Engine) EvaluateInstance(inst *domain.TaskInstance, now time.Time, cal *calendar.Calendar) Decision {
	if inst.Status == domain.StatusDone || inst.Locked || inst.Status == domain.StatusMissed {
		return Decision{Outcome: OutcomeAlreadySettled}
	}

	cutoffDate, locks := recurring.LockCutoffDate(inst.Frequency, inst.OriginalAppearanceDate, inst.DueDate, cal)
	if locks {
		lockAt := domain.EndOfDay.On(cutoffDate, e.loc)
		if !now.Before(lockAt) {
			return Decision{
				Outcome: OutcomeTransition,
				Transition: Transition{
					InstanceKey: inst.Key,
					Old:         inst.Status,
					New:         domain.StatusMissed,
					Locked:      true,
					Reason:      fmt.Sprintf("lock cutoff %s passed without completion", lockAt.Format("2006-01-02 15:04")),
				},
			}
		}
	}

	if inst.Status == domain.StatusPending || inst.Status == domain.StatusInProgress {
		dueAt := inst.DueTime.On(inst.DueDate, e.loc)
		if !now.Before(dueAt) {
			return Decision{
				Outcome: OutcomeTransition,
				Transition: Transition{
					InstanceKey: inst.Key,
					Old:         inst.Status,
					New:         domain.StatusOverdue,
					Reason:      fmt.Sprintf("due %s passed", dueAt.Format("2006-01-02 15:04")),
				},
			}
		}
	}

	return Decision{Outcome: OutcomeNoChange}
}

// EvaluateAll evaluates a batch of instances and returns the transitions to
// apply. Settled and unchanged instances contribute nothing.
func (e *Engine) EvaluateAll(instances []*domain.TaskInstance, now time.Time, cal *calendar.Calendar) []Transition {
	var transitions []Transition
	for _, inst := range instances {
		if d := e.EvaluateInstance(inst, now, cal); d.Outcome == OutcomeTransition {
			transitions = append(transitions, d.Transition)
		}
	}
	return transitions
}
