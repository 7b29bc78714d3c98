package worker

import (
	"context"
	"time"

	"github.com/rxops/checklist/internal/domain"
)

// Repository defines the storage operations the pass runner depends on.
type Repository interface {
	// === Task definitions ===

	// ListActiveTaskDefinitions retrieves every active task template.
	ListActiveTaskDefinitions(ctx context.Context) ([]*domain.TaskDefinition, error)

	// GetTaskDefinition retrieves a single task definition by ID.
	GetTaskDefinition(ctx context.Context, id string) (*domain.TaskDefinition, error)

	// === Holidays ===

	// ListHolidays retrieves the full holiday set; each pass loads it once
	// and builds an immutable calendar snapshot from it.
	ListHolidays(ctx context.Context) ([]domain.Holiday, error)

	// === Instances ===

	// InsertInstanceIgnoreConflict persists one generated instance,
	// skipping silently when its deterministic key already exists.
	// Returns whether a row was inserted.
	InsertInstanceIgnoreConflict(ctx context.Context, inst *domain.TaskInstance) (bool, error)

	// ListOpenInstances retrieves instances that are neither done nor
	// locked, for status evaluation.
	ListOpenInstances(ctx context.Context) ([]*domain.TaskInstance, error)

	// ApplyTransition applies a status change guarded by the expected
	// current status. Returns whether the row was updated.
	ApplyTransition(ctx context.Context, key string, old, next domain.InstanceStatus, locked bool) (bool, error)

	// DeletePendingInstances removes still-pending, unlocked instances of
	// one task in a date range ahead of a forced regeneration.
	DeletePendingInstances(ctx context.Context, taskID string, from, to time.Time) (int64, error)
}
