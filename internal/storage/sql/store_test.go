package sql

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rxops/checklist/internal/domain"
	"github.com/rxops/checklist/internal/storage/sql/repository"
)

func newTestStore(t *testing.T) *repository.Store {
	t.Helper()
	store, err := NewStore(context.Background(), DBConfig{Driver: "sqlite", DSN: ":memory:"})
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func saveTask(t *testing.T, store *repository.Store, id string) {
	t.Helper()
	err := store.SaveTaskDefinition(context.Background(), &domain.TaskDefinition{
		ID:          id,
		Title:       "Fridge temperature log",
		Active:      true,
		Frequencies: []domain.Frequency{domain.EveryDay()},
		DueTime:     domain.EndOfDay,
	})
	require.NoError(t, err)
}

func instanceOn(taskID string, day time.Time, status domain.InstanceStatus, locked bool) *domain.TaskInstance {
	return &domain.TaskInstance{
		Key:                    domain.InstanceKey(taskID, domain.EveryDay(), day),
		TaskID:                 taskID,
		Frequency:              domain.EveryDay(),
		AppearanceDate:         day,
		DueDate:                day,
		DueTime:                domain.EndOfDay,
		Status:                 status,
		Locked:                 locked,
		OriginalAppearanceDate: day,
	}
}

func TestStore_TaskDefinitionRoundTrip(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	monday, err := domain.OnWeekday(time.Monday)
	require.NoError(t, err)
	dueTime, err := domain.NewTimeOfDay(17, 0)
	require.NoError(t, err)
	start := date(2024, 7, 1)

	err = store.SaveTaskDefinition(ctx, &domain.TaskDefinition{
		ID:          "task-1",
		Title:       "Controlled drugs register check",
		Active:      true,
		Frequencies: []domain.Frequency{domain.EveryDay(), monday},
		DueTime:     dueTime,
		StartDate:   &start,
	})
	require.NoError(t, err)

	got, err := store.GetTaskDefinition(ctx, "task-1")
	require.NoError(t, err)
	assert.Equal(t, "Controlled drugs register check", got.Title)
	assert.Equal(t, []domain.Frequency{domain.EveryDay(), monday}, got.Frequencies)
	assert.Equal(t, dueTime, got.DueTime)
	require.NotNil(t, got.StartDate)
	assert.True(t, got.StartDate.Equal(start))
	assert.Nil(t, got.EndDate)

	// Upsert replaces in place.
	err = store.SaveTaskDefinition(ctx, &domain.TaskDefinition{
		ID:          "task-1",
		Title:       "Controlled drugs register check",
		Active:      false,
		Frequencies: []domain.Frequency{domain.EveryDay()},
		DueTime:     dueTime,
	})
	require.NoError(t, err)

	active, err := store.ListActiveTaskDefinitions(ctx)
	require.NoError(t, err)
	assert.Empty(t, active)

	_, err = store.GetTaskDefinition(ctx, "missing")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestStore_InsertInstanceIsIdempotent(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	saveTask(t, store, "task-1")

	inst := instanceOn("task-1", date(2024, 7, 22), domain.StatusPending, false)

	inserted, err := store.InsertInstanceIgnoreConflict(ctx, inst)
	require.NoError(t, err)
	assert.True(t, inserted)

	// A later pass computing the same key must leave the existing row alone.
	dup := instanceOn("task-1", date(2024, 7, 22), domain.StatusPending, false)
	inserted, err = store.InsertInstanceIgnoreConflict(ctx, dup)
	require.NoError(t, err)
	assert.False(t, inserted)

	open, err := store.ListOpenInstances(ctx)
	require.NoError(t, err)
	require.Len(t, open, 1)
	assert.Equal(t, inst.Key, open[0].Key)
}

func TestStore_ApplyTransitionGuards(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	saveTask(t, store, "task-1")

	inst := instanceOn("task-1", date(2024, 7, 22), domain.StatusPending, false)
	_, err := store.InsertInstanceIgnoreConflict(ctx, inst)
	require.NoError(t, err)

	applied, err := store.ApplyTransition(ctx, inst.Key, domain.StatusPending, domain.StatusOverdue, false)
	require.NoError(t, err)
	assert.True(t, applied)

	// The row is no longer PENDING, so a transition computed from a stale
	// read is refused rather than applied.
	applied, err = store.ApplyTransition(ctx, inst.Key, domain.StatusPending, domain.StatusOverdue, false)
	require.NoError(t, err)
	assert.False(t, applied)

	applied, err = store.ApplyTransition(ctx, inst.Key, domain.StatusOverdue, domain.StatusMissed, true)
	require.NoError(t, err)
	assert.True(t, applied)

	// Locked rows absorb nothing, whatever status the caller expects.
	applied, err = store.ApplyTransition(ctx, inst.Key, domain.StatusMissed, domain.StatusOverdue, false)
	require.NoError(t, err)
	assert.False(t, applied)
}

func TestStore_CompleteInstance(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	saveTask(t, store, "task-1")

	inst := instanceOn("task-1", date(2024, 7, 22), domain.StatusPending, false)
	_, err := store.InsertInstanceIgnoreConflict(ctx, inst)
	require.NoError(t, err)

	done, err := store.CompleteInstance(ctx, inst.Key)
	require.NoError(t, err)
	assert.True(t, done)

	done, err = store.CompleteInstance(ctx, inst.Key)
	require.NoError(t, err)
	assert.False(t, done)

	// A missed, locked instance needs an administrative unlock first.
	locked := instanceOn("task-1", date(2024, 7, 23), domain.StatusMissed, true)
	_, err = store.InsertInstanceIgnoreConflict(ctx, locked)
	require.NoError(t, err)

	done, err = store.CompleteInstance(ctx, locked.Key)
	require.NoError(t, err)
	assert.False(t, done)
}

func TestStore_DeletePendingInstancesSparesSettledRows(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	saveTask(t, store, "task-1")

	pending := instanceOn("task-1", date(2024, 7, 22), domain.StatusPending, false)
	done := instanceOn("task-1", date(2024, 7, 23), domain.StatusDone, false)
	overdue := instanceOn("task-1", date(2024, 7, 24), domain.StatusOverdue, false)
	missed := instanceOn("task-1", date(2024, 7, 25), domain.StatusMissed, true)

	for _, inst := range []*domain.TaskInstance{pending, done, overdue, missed} {
		inserted, err := store.InsertInstanceIgnoreConflict(ctx, inst)
		require.NoError(t, err)
		require.True(t, inserted)
	}

	deleted, err := store.DeletePendingInstances(ctx, "task-1", date(2024, 7, 22), date(2024, 7, 31))
	require.NoError(t, err)
	assert.Equal(t, int64(1), deleted)

	// The pending row is gone: its key inserts again. The completed,
	// overdue and locked rows survived: their keys still conflict.
	inserted, err := store.InsertInstanceIgnoreConflict(ctx, pending)
	require.NoError(t, err)
	assert.True(t, inserted)
	for _, inst := range []*domain.TaskInstance{done, overdue, missed} {
		inserted, err := store.InsertInstanceIgnoreConflict(ctx, inst)
		require.NoError(t, err)
		assert.False(t, inserted, inst.Key)
	}
}

func TestStore_ListOpenInstancesFiltersSettled(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	saveTask(t, store, "task-1")

	pending := instanceOn("task-1", date(2024, 7, 22), domain.StatusPending, false)
	overdue := instanceOn("task-1", date(2024, 7, 23), domain.StatusOverdue, false)
	done := instanceOn("task-1", date(2024, 7, 24), domain.StatusDone, false)
	missed := instanceOn("task-1", date(2024, 7, 25), domain.StatusMissed, true)

	for _, inst := range []*domain.TaskInstance{pending, overdue, done, missed} {
		_, err := store.InsertInstanceIgnoreConflict(ctx, inst)
		require.NoError(t, err)
	}

	open, err := store.ListOpenInstances(ctx)
	require.NoError(t, err)
	require.Len(t, open, 2)
	assert.Equal(t, pending.Key, open[0].Key)
	assert.Equal(t, overdue.Key, open[1].Key)

	// Round-trip check on the scanned row.
	assert.Equal(t, domain.EveryDay(), open[0].Frequency)
	assert.True(t, open[0].AppearanceDate.Equal(date(2024, 7, 22)))
	assert.Equal(t, domain.EndOfDay, open[0].DueTime)
	assert.False(t, open[0].IsCarry)
}

func TestStore_Holidays(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	err := store.AddHoliday(ctx, domain.Holiday{Date: date(2024, 12, 25), Name: "Christmas Day"})
	require.NoError(t, err)
	err = store.AddHoliday(ctx, domain.Holiday{Date: date(2024, 1, 1), Name: "New Year"})
	require.NoError(t, err)

	// Re-adding the same date renames it.
	err = store.AddHoliday(ctx, domain.Holiday{Date: date(2024, 1, 1), Name: "New Year's Day"})
	require.NoError(t, err)

	holidays, err := store.ListHolidays(ctx)
	require.NoError(t, err)
	require.Len(t, holidays, 2)
	assert.Equal(t, "New Year's Day", holidays[0].Name)
	assert.True(t, holidays[0].Date.Equal(date(2024, 1, 1)))
	assert.Equal(t, "Christmas Day", holidays[1].Name)

	err = store.RemoveHoliday(ctx, "2024-12-25")
	require.NoError(t, err)
	holidays, err = store.ListHolidays(ctx)
	require.NoError(t, err)
	require.Len(t, holidays, 1)

	err = store.RemoveHoliday(ctx, "not-a-date")
	assert.ErrorIs(t, err, domain.ErrInvalidDate)
}
