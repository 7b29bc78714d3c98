package repository

import (
	"context"
	"fmt"

	"github.com/rxops/checklist/internal/domain"
)

// ListHolidays returns every holiday, ordered by date. The worker loads the
// full set before each pass to build an immutable calendar snapshot.
func (s *Store) ListHolidays(ctx context.Context) ([]domain.Holiday, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT holiday_date, name FROM holidays ORDER BY holiday_date`)
	if err != nil {
		return nil, fmt.Errorf("failed to list holidays: %w", err)
	}
	defer rows.Close()

	var holidays []domain.Holiday
	for rows.Next() {
		var (
			h    domain.Holiday
			date string
		)
		if err := rows.Scan(&date, &h.Name); err != nil {
			return nil, fmt.Errorf("failed to scan holiday: %w", err)
		}
		if h.Date, err = decodeDate(date); err != nil {
			return nil, fmt.Errorf("holiday %q: %w", h.Name, err)
		}
		holidays = append(holidays, h)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate holidays: %w", err)
	}
	return holidays, nil
}

// AddHoliday inserts or renames a holiday date.
func (s *Store) AddHoliday(ctx context.Context, holiday domain.Holiday) error {
	query := s.rebind(`
		INSERT INTO holidays (holiday_date, name) VALUES (?, ?)
		ON CONFLICT (holiday_date) DO UPDATE SET name = excluded.name`)

	if _, err := s.db.ExecContext(ctx, query, encodeDate(holiday.Date), holiday.Name); err != nil {
		return fmt.Errorf("failed to add holiday: %w", err)
	}
	return nil
}

// RemoveHoliday deletes a holiday date.
func (s *Store) RemoveHoliday(ctx context.Context, date string) error {
	day, err := domain.ParseDate(date)
	if err != nil {
		return err
	}

	query := s.rebind(`DELETE FROM holidays WHERE holiday_date = ?`)
	if _, err := s.db.ExecContext(ctx, query, encodeDate(day)); err != nil {
		return fmt.Errorf("failed to remove holiday: %w", err)
	}
	return nil
}
