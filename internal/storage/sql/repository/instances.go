package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/rxops/checklist/internal/domain"
)

// InsertInstanceIgnoreConflict inserts one generated instance, skipping the
// row when the deterministic key already exists. Returns whether a row was
// actually inserted. Generated instances are immutable: an existing row is
// never touched, regardless of what a later pass computed for the same key.
func (s *Store) InsertInstanceIgnoreConflict(ctx context.Context, inst *domain.TaskInstance) (bool, error) {
	now := encodeTimestamp(time.Now())
	query := s.rebind(`
		INSERT INTO task_instances
			(instance_key, task_id, frequency, appearance_date, due_date, due_time,
			 status, locked, is_carry, original_appearance_date, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (instance_key) DO NOTHING`)

	res, err := s.db.ExecContext(ctx, query,
		inst.Key, inst.TaskID, inst.Frequency.Code(),
		encodeDate(inst.AppearanceDate), encodeDate(inst.DueDate), inst.DueTime.String(),
		string(inst.Status), inst.Locked, inst.IsCarry,
		encodeDate(inst.OriginalAppearanceDate), now, now,
	)
	if err != nil {
		return false, fmt.Errorf("failed to insert instance: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to read rows affected: %w", err)
	}
	return affected > 0, nil
}

// ListOpenInstances returns every instance the status engine still needs to
// look at: not done and not locked.
func (s *Store) ListOpenInstances(ctx context.Context) ([]*domain.TaskInstance, error) {
	query := `
		SELECT instance_key, task_id, frequency, appearance_date, due_date, due_time,
		       status, locked, is_carry, original_appearance_date
		FROM task_instances
		WHERE status NOT IN ('DONE', 'MISSED') AND NOT locked
		ORDER BY appearance_date, instance_key`

	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list open instances: %w", err)
	}
	defer rows.Close()

	var instances []*domain.TaskInstance
	for rows.Next() {
		inst, err := scanInstance(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan instance: %w", err)
		}
		instances = append(instances, inst)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate instances: %w", err)
	}
	return instances, nil
}

// ApplyTransition applies one status transition, guarded so it only lands on
// an instance that is still in the expected state. A settled row silently
// absorbs nothing; returns whether the update was applied.
func (s *Store) ApplyTransition(ctx context.Context, key string, old, next domain.InstanceStatus, locked bool) (bool, error) {
	query := s.rebind(`
		UPDATE task_instances
		SET status = ?, locked = ?, updated_at = ?
		WHERE instance_key = ? AND status = ? AND NOT locked`)

	res, err := s.db.ExecContext(ctx, query,
		string(next), locked, encodeTimestamp(time.Now()), key, string(old))
	if err != nil {
		return false, fmt.Errorf("failed to apply transition: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to read rows affected: %w", err)
	}
	return affected > 0, nil
}

// CompleteInstance marks an instance done on behalf of a user action.
// Locked instances stay locked; completing one requires an administrative
// unlock first.
func (s *Store) CompleteInstance(ctx context.Context, key string) (bool, error) {
	query := s.rebind(`
		UPDATE task_instances
		SET status = 'DONE', updated_at = ?
		WHERE instance_key = ? AND NOT locked AND status != 'DONE'`)

	res, err := s.db.ExecContext(ctx, query, encodeTimestamp(time.Now()), key)
	if err != nil {
		return false, fmt.Errorf("failed to complete instance: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to read rows affected: %w", err)
	}
	return affected > 0, nil
}

// DeletePendingInstances removes a task's instances in a date range so a
// force regeneration can re-materialize them. The predicate is the
// invariant: only rows still PENDING and unlocked are ever deleted, so
// completed, overdue, and missed instances survive any regeneration.
func (s *Store) DeletePendingInstances(ctx context.Context, taskID string, from, to time.Time) (int64, error) {
	query := s.rebind(`
		DELETE FROM task_instances
		WHERE task_id = ?
		  AND appearance_date >= ? AND appearance_date <= ?
		  AND status = 'PENDING' AND NOT locked`)

	res, err := s.db.ExecContext(ctx, query, taskID, encodeDate(from), encodeDate(to))
	if err != nil {
		return 0, fmt.Errorf("failed to delete pending instances: %w", err)
	}
	return res.RowsAffected()
}

func scanInstance(row rowScanner) (*domain.TaskInstance, error) {
	var (
		inst       domain.TaskInstance
		freqCode   string
		appearance string
		due        string
		dueTime    string
		status     string
		original   string
	)

	if err := row.Scan(&inst.Key, &inst.TaskID, &freqCode, &appearance, &due, &dueTime,
		&status, &inst.Locked, &inst.IsCarry, &original); err != nil {
		return nil, err
	}

	var err error
	if inst.Frequency, err = domain.ParseFrequency(freqCode); err != nil {
		return nil, err
	}
	if inst.AppearanceDate, err = decodeDate(appearance); err != nil {
		return nil, err
	}
	if inst.DueDate, err = decodeDate(due); err != nil {
		return nil, err
	}
	if inst.DueTime, err = domain.ParseTimeOfDay(dueTime); err != nil {
		return nil, err
	}
	if inst.Status, err = domain.NewInstanceStatus(status); err != nil {
		return nil, err
	}
	if inst.OriginalAppearanceDate, err = decodeDate(original); err != nil {
		return nil, err
	}

	return &inst, nil
}
