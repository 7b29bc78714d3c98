// Package worker drives the engine on a schedule: a generation pass that
// materializes upcoming instances and a status pass that advances overdue
// and missed transitions. The worker owns no date logic itself; it loads a
// calendar snapshot and hands everything to the pure engines.
package worker

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/rxops/checklist/internal/calendar"
	"github.com/rxops/checklist/internal/domain"
	"github.com/rxops/checklist/internal/recurring"
	"github.com/rxops/checklist/internal/status"
)

// Worker runs generation and status passes on tickers until cancelled.
type Worker struct {
	repo             Repository
	generator        *recurring.Generator
	statusEngine     *status.Engine
	loc              *time.Location
	restDays         []time.Weekday
	horizonDays      int
	generateInterval time.Duration
	statusInterval   time.Duration
	operationTimeout time.Duration // Timeout for a single pass
	wg               sync.WaitGroup
}

// Option is a functional option for configuring Worker.
type Option func(*Worker)

// WithGenerateInterval sets how often a generation pass runs.
func WithGenerateInterval(d time.Duration) Option {
	return func(w *Worker) {
		w.generateInterval = d
	}
}

// WithStatusInterval sets how often a status pass runs.
func WithStatusInterval(d time.Duration) Option {
	return func(w *Worker) {
		w.statusInterval = d
	}
}

// WithOperationTimeout sets the timeout for a single pass.
func WithOperationTimeout(d time.Duration) Option {
	return func(w *Worker) {
		w.operationTimeout = d
	}
}

// WithHorizonDays sets how many days ahead generation materializes.
func WithHorizonDays(n int) Option {
	return func(w *Worker) {
		w.horizonDays = n
	}
}

// WithLocation sets the business timezone for status evaluation and for
// deciding what "today" is during generation.
func WithLocation(loc *time.Location) Option {
	return func(w *Worker) {
		w.loc = loc
		w.statusEngine = status.NewEngine(loc)
	}
}

// WithRestDays sets the weekdays with no checklist at all.
func WithRestDays(days []time.Weekday) Option {
	return func(w *Worker) {
		w.restDays = days
	}
}

// New creates a new Worker with the given repository and options.
func New(repo Repository, opts ...Option) *Worker {
	w := &Worker{
		repo:             repo,
		generator:        recurring.NewGenerator(),
		statusEngine:     status.NewEngine(time.UTC),
		loc:              time.UTC,
		horizonDays:      14,
		generateInterval: 1 * time.Hour,
		statusInterval:   5 * time.Minute,
		operationTimeout: 30 * time.Second,
	}

	for _, opt := range opts {
		opt(w)
	}

	return w
}

// Start runs both pass loops until the context is cancelled, then waits for
// in-flight passes to finish.
func (w *Worker) Start(ctx context.Context) error {
	slog.InfoContext(ctx, "Checklist worker started",
		"generate_interval", w.generateInterval,
		"status_interval", w.statusInterval,
		"horizon_days", w.horizonDays)

	// Run both passes immediately on startup.
	w.runPass(ctx, "generation", w.RunGenerationOnce)
	w.runPass(ctx, "status", w.RunStatusOnce)

	generateTicker := time.NewTicker(w.generateInterval)
	defer generateTicker.Stop()
	statusTicker := time.NewTicker(w.statusInterval)
	defer statusTicker.Stop()

	for {
		select {
		case <-generateTicker.C:
			w.wg.Add(1)
			go func() {
				defer w.wg.Done()
				w.runPass(ctx, "generation", w.RunGenerationOnce)
			}()
		case <-statusTicker.C:
			w.wg.Add(1)
			go func() {
				defer w.wg.Done()
				w.runPass(ctx, "status", w.RunStatusOnce)
			}()
		case <-ctx.Done():
			slog.InfoContext(ctx, "Shutdown requested, waiting for in-flight passes...")
			w.wg.Wait()
			slog.InfoContext(ctx, "Checklist worker stopped gracefully")
			return nil
		}
	}
}

func (w *Worker) runPass(ctx context.Context, name string, pass func(context.Context) error) {
	opCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), w.operationTimeout)
	defer cancel()
	if err := pass(opCtx); err != nil {
		slog.ErrorContext(opCtx, "Pass failed", "pass", name, "error", err)
	}
}

// RunGenerationOnce executes a single generation pass: snapshot the
// calendar, evaluate every active task over the horizon, and upsert each
// resulting instance individually so one bad row never aborts the rest.
func (w *Worker) RunGenerationOnce(ctx context.Context) error {
	cal, err := w.loadCalendar(ctx)
	if err != nil {
		return err
	}

	tasks, err := w.repo.ListActiveTaskDefinitions(ctx)
	if err != nil {
		return fmt.Errorf("failed to list active tasks: %w", err)
	}

	from := domain.DateOf(time.Now().In(w.loc))
	to := from.AddDate(0, 0, w.horizonDays)

	instances, warnings, err := w.generator.Generate(ctx, tasks, from, to, cal)
	if err != nil {
		return err
	}
	for _, warn := range warnings {
		slog.WarnContext(ctx, "Skipped invalid task frequency",
			"task_id", warn.TaskID, "frequency", warn.Frequency.Code(), "error", warn.Err)
	}

	inserted, skipped, failed := 0, 0, 0
	for i := range instances {
		ok, err := w.repo.InsertInstanceIgnoreConflict(ctx, &instances[i])
		if err != nil {
			// Per-row isolation: log and keep going.
			failed++
			slog.ErrorContext(ctx, "Failed to persist instance",
				"instance_key", instances[i].Key, "task_id", instances[i].TaskID, "error", err)
			continue
		}
		if ok {
			inserted++
		} else {
			skipped++
		}
	}

	slog.InfoContext(ctx, "Generation pass complete",
		"from", from.Format(domain.DateLayout), "to", to.Format(domain.DateLayout),
		"tasks", len(tasks), "inserted", inserted, "skipped", skipped, "failed", failed)
	return nil
}

// RunStatusOnce executes a single status pass over all open instances.
func (w *Worker) RunStatusOnce(ctx context.Context) error {
	cal, err := w.loadCalendar(ctx)
	if err != nil {
		return err
	}

	open, err := w.repo.ListOpenInstances(ctx)
	if err != nil {
		return fmt.Errorf("failed to list open instances: %w", err)
	}

	now := time.Now().In(w.loc)
	transitions := w.statusEngine.EvaluateAll(open, now, cal)

	applied, stale := 0, 0
	for _, t := range transitions {
		ok, err := w.repo.ApplyTransition(ctx, t.InstanceKey, t.Old, t.New, t.Locked)
		if err != nil {
			slog.ErrorContext(ctx, "Failed to apply transition",
				"instance_key", t.InstanceKey, "to", t.New, "error", err)
			continue
		}
		if ok {
			applied++
			slog.InfoContext(ctx, "Instance transitioned",
				"instance_key", t.InstanceKey, "from", t.Old, "to", t.New,
				"locked", t.Locked, "reason", t.Reason)
		} else {
			// Someone completed or locked the row since we read it.
			stale++
		}
	}

	slog.InfoContext(ctx, "Status pass complete",
		"open", len(open), "applied", applied, "stale", stale)
	return nil
}

// ForceRegenerate re-materializes one task's instances over a date range.
// Only rows still pending and unlocked are replaced; completed, overdue and
// missed instances are never touched.
func (w *Worker) ForceRegenerate(ctx context.Context, taskID string, from, to time.Time) error {
	task, err := w.repo.GetTaskDefinition(ctx, taskID)
	if err != nil {
		return err
	}

	cal, err := w.loadCalendar(ctx)
	if err != nil {
		return err
	}

	deleted, err := w.repo.DeletePendingInstances(ctx, taskID, from, to)
	if err != nil {
		return err
	}

	instances, warnings, err := w.generator.Generate(ctx, []*domain.TaskDefinition{task}, from, to, cal)
	if err != nil {
		return err
	}
	for _, warn := range warnings {
		slog.WarnContext(ctx, "Skipped invalid task frequency",
			"task_id", warn.TaskID, "frequency", warn.Frequency.Code(), "error", warn.Err)
	}

	inserted := 0
	for i := range instances {
		ok, err := w.repo.InsertInstanceIgnoreConflict(ctx, &instances[i])
		if err != nil {
			slog.ErrorContext(ctx, "Failed to persist instance",
				"instance_key", instances[i].Key, "error", err)
			continue
		}
		if ok {
			inserted++
		}
	}

	slog.InfoContext(ctx, "Force regeneration complete",
		"task_id", taskID, "deleted", deleted, "inserted", inserted)
	return nil
}

func (w *Worker) loadCalendar(ctx context.Context) (*calendar.Calendar, error) {
	holidays, err := w.repo.ListHolidays(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load holidays: %w", err)
	}
	return calendar.New(calendar.Config{RestDays: w.restDays, Holidays: holidays}), nil
}
