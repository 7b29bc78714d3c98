package recurring

import (
	"context"
	"fmt"
	"time"

	"github.com/rxops/checklist/internal/calendar"
	"github.com/rxops/checklist/internal/domain"
)

// Generator enumerates a date range and materializes instance descriptors
// for every task frequency, classifying each rendered date as a new
// appearance or a carry. It holds no state: identical inputs always produce
// identical descriptors with identical keys, so callers can diff against
// already-persisted keys to insert-or-skip.
type Generator struct{}

// NewGenerator creates a new instance generator.
func NewGenerator() *Generator {
	return &Generator{}
}

// Warning reports a task frequency that could not be evaluated, typically a
// malformed definition. Generation continues for everything else.
type Warning struct {
	TaskID    string
	Frequency domain.Frequency
	Err       error
}

// Generate produces instance descriptors for every active task over the
// inclusive date range [from, to]. Cancellation is checked between tasks;
// a single task's evaluation is cheap and never blocks.
func (g *Generator) Generate(ctx context.Context, tasks []*domain.TaskDefinition, from, to time.Time, cal *calendar.Calendar) ([]domain.TaskInstance, []Warning, error) {
	var (
		instances []domain.TaskInstance
		warnings  []Warning
	)

	for _, task := range tasks {
		if err := ctx.Err(); err != nil {
			return nil, nil, fmt.Errorf("generation cancelled: %w", err)
		}
		if !task.Active {
			continue
		}

		got, warns := g.generateForTask(task, from, to, cal)
		instances = append(instances, got...)
		warnings = append(warnings, warns...)
	}

	return instances, warnings, nil
}

func (g *Generator) generateForTask(task *domain.TaskDefinition, from, to time.Time, cal *calendar.Calendar) ([]domain.TaskInstance, []Warning) {
	var (
		instances []domain.TaskInstance
		warnings  []Warning
	)

	for _, freq := range task.Frequencies {
		for day := domain.DateOf(from); !day.After(domain.DateOf(to)); day = day.AddDate(0, 0, 1) {
			if !g.withinBounds(task, day) {
				continue
			}

			dec, err := Evaluate(task, freq, day, cal)
			if err != nil {
				// One warning per frequency; a malformed definition
				// fails the same way for every date.
				warnings = append(warnings, Warning{TaskID: task.ID, Frequency: freq, Err: err})
				break
			}
			if dec.Outcome == OutcomeNotApplicable {
				continue
			}

			inst := domain.TaskInstance{
				Key:                    domain.InstanceKey(task.ID, freq, dec.AppearanceDate),
				TaskID:                 task.ID,
				Frequency:              freq,
				AppearanceDate:         dec.AppearanceDate,
				DueDate:                dec.DueDate,
				DueTime:                task.DueTime,
				Status:                 domain.StatusPending,
				OriginalAppearanceDate: dec.AppearanceDate,
			}
			if dec.Outcome == OutcomeCarry {
				// A carry re-renders the same occurrence on a later
				// date; it keeps the original's key and appearance.
				inst.IsCarry = true
				inst.AppearanceDate = day
			}
			instances = append(instances, inst)
		}
	}

	return instances, warnings
}

// withinBounds applies the task's visibility window: nothing before
// publish_at and nothing outside the start/end validity dates.
func (g *Generator) withinBounds(task *domain.TaskDefinition, day time.Time) bool {
	if task.PublishAt != nil && day.Before(domain.DateOf(*task.PublishAt)) {
		return false
	}
	if task.StartDate != nil && day.Before(domain.DateOf(*task.StartDate)) {
		return false
	}
	if task.EndDate != nil && day.After(domain.DateOf(*task.EndDate)) {
		return false
	}
	return true
}
