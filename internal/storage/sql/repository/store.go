// Package repository implements checklist persistence over database/sql.
// The SQL is written once in SQLite placeholder form and rebound for
// PostgreSQL, so the same store serves both backends.
package repository

import (
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/rxops/checklist/internal/domain"
)

// Store persists task definitions, holidays, and task instances.
type Store struct {
	db       *sql.DB
	postgres bool
}

// NewStore creates a store over an open database handle.
func NewStore(db *sql.DB, postgres bool) *Store {
	return &Store{db: db, postgres: postgres}
}

// DB returns the underlying database connection.
func (s *Store) DB() *sql.DB {
	return s.db
}

// Close closes the database connection.
// This should be called when shutting down the application.
func (s *Store) Close() error {
	return s.db.Close()
}

// rebind converts ? placeholders to $N for the PostgreSQL driver.
func (s *Store) rebind(query string) string {
	if !s.postgres {
		return query
	}
	var b strings.Builder
	n := 0
	for _, r := range query {
		if r == '?' {
			n++
			fmt.Fprintf(&b, "$%d", n)
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

// Date and timestamp columns are stored as ISO text so the schema is
// identical across both backends.

func encodeDate(t time.Time) string {
	return domain.DateOf(t).Format(domain.DateLayout)
}

func encodeNullDate(t *time.Time) sql.NullString {
	if t == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: encodeDate(*t), Valid: true}
}

func decodeDate(s string) (time.Time, error) {
	return domain.ParseDate(s)
}

func decodeNullDate(ns sql.NullString) (*time.Time, error) {
	if !ns.Valid {
		return nil, nil
	}
	t, err := domain.ParseDate(ns.String)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func encodeTimestamp(t time.Time) string {
	return t.UTC().Format(time.RFC3339)
}
