package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rxops/checklist/internal/domain"
)

// SaveTaskDefinition inserts or updates a task definition.
func (s *Store) SaveTaskDefinition(ctx context.Context, task *domain.TaskDefinition) error {
	codes := make([]string, 0, len(task.Frequencies))
	for _, f := range task.Frequencies {
		codes = append(codes, f.Code())
	}

	now := encodeTimestamp(time.Now())
	query := s.rebind(`
		INSERT INTO task_definitions
			(id, title, active, frequencies, due_time, publish_at, due_date, start_date, end_date, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (id) DO UPDATE SET
			title = excluded.title,
			active = excluded.active,
			frequencies = excluded.frequencies,
			due_time = excluded.due_time,
			publish_at = excluded.publish_at,
			due_date = excluded.due_date,
			start_date = excluded.start_date,
			end_date = excluded.end_date,
			updated_at = excluded.updated_at`)

	_, err := s.db.ExecContext(ctx, query,
		task.ID, task.Title, task.Active, strings.Join(codes, ","), task.DueTime.String(),
		encodeNullDate(task.PublishAt), encodeNullDate(task.DueDate),
		encodeNullDate(task.StartDate), encodeNullDate(task.EndDate),
		now, now,
	)
	if err != nil {
		return fmt.Errorf("failed to save task definition: %w", err)
	}
	return nil
}

// GetTaskDefinition retrieves a task definition by ID.
func (s *Store) GetTaskDefinition(ctx context.Context, id string) (*domain.TaskDefinition, error) {
	query := s.rebind(`
		SELECT id, title, active, frequencies, due_time, publish_at, due_date, start_date, end_date
		FROM task_definitions
		WHERE id = ?`)

	task, err := scanTaskDefinition(s.db.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: task %s", domain.ErrNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get task definition: %w", err)
	}
	return task, nil
}

// ListActiveTaskDefinitions returns every active task definition.
func (s *Store) ListActiveTaskDefinitions(ctx context.Context) ([]*domain.TaskDefinition, error) {
	query := `
		SELECT id, title, active, frequencies, due_time, publish_at, due_date, start_date, end_date
		FROM task_definitions
		WHERE active
		ORDER BY id`

	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list task definitions: %w", err)
	}
	defer rows.Close()

	var tasks []*domain.TaskDefinition
	for rows.Next() {
		task, err := scanTaskDefinition(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan task definition: %w", err)
		}
		tasks = append(tasks, task)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate task definitions: %w", err)
	}
	return tasks, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanTaskDefinition(row rowScanner) (*domain.TaskDefinition, error) {
	var (
		task      domain.TaskDefinition
		codes     string
		dueTime   string
		publishAt sql.NullString
		dueDate   sql.NullString
		startDate sql.NullString
		endDate   sql.NullString
	)

	if err := row.Scan(&task.ID, &task.Title, &task.Active, &codes, &dueTime,
		&publishAt, &dueDate, &startDate, &endDate); err != nil {
		return nil, err
	}

	for _, code := range strings.Split(codes, ",") {
		if code == "" {
			continue
		}
		freq, err := domain.ParseFrequency(code)
		if err != nil {
			return nil, fmt.Errorf("task %s: %w", task.ID, err)
		}
		task.Frequencies = append(task.Frequencies, freq)
	}

	var err error
	if task.DueTime, err = domain.ParseTimeOfDay(dueTime); err != nil {
		return nil, fmt.Errorf("task %s: %w", task.ID, err)
	}
	if task.PublishAt, err = decodeNullDate(publishAt); err != nil {
		return nil, fmt.Errorf("task %s: %w", task.ID, err)
	}
	if task.DueDate, err = decodeNullDate(dueDate); err != nil {
		return nil, fmt.Errorf("task %s: %w", task.ID, err)
	}
	if task.StartDate, err = decodeNullDate(startDate); err != nil {
		return nil, fmt.Errorf("task %s: %w", task.ID, err)
	}
	if task.EndDate, err = decodeNullDate(endDate); err != nil {
		return nil, fmt.Errorf("task %s: %w", task.ID, err)
	}

	return &task, nil
}
