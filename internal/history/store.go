// Package history persists example runs and serves them back.
package history

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/ziadkadry99/puter-gallery/internal/db"
	"github.com/ziadkadry99/puter-gallery/internal/runner"
)

// DefaultLimit caps List when no limit is given.
const DefaultLimit = 50

// Entry is one stored run.
type Entry struct {
	ID         string         `json:"id"`
	Category   string         `json:"category"`
	Example    string         `json:"example"`
	UserID     string         `json:"user_id,omitempty"`
	Outcome    runner.Outcome `json:"outcome"`
	Output     string         `json:"output"`
	StartedAt  time.Time      `json:"started_at"`
	DurationMS int64          `json:"duration_ms"`
}

// Filter narrows List.
type Filter struct {
	Category string
	Example  string
	UserID   string
	Outcome  runner.Outcome
	Limit    int
}

// Store records runs in the runs table. It implements runner.Recorder.
type Store struct {
	db *db.DB
}

// NewStore creates a Store backed by the given database.
func NewStore(database *db.DB) *Store {
	return &Store{db: database}
}

// Record inserts a finished run.
func (s *Store) Record(ctx context.Context, run runner.Run) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO runs (id, category, example, user_id, outcome, output, started_at, duration_ms)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		uuid.NewString(),
		run.Category,
		run.Example,
		run.UserID,
		string(run.Outcome),
		run.Output,
		run.Started.UTC(),
		run.Duration.Milliseconds(),
	)
	if err != nil {
		return fmt.Errorf("inserting run: %w", err)
	}
	return nil
}

// List returns runs matching f, newest first.
func (s *Store) List(ctx context.Context, f Filter) ([]Entry, error) {
	var (
		clauses []string
		args    []any
	)
	if f.Category != "" {
		clauses = append(clauses, "category = ?")
		args = append(args, f.Category)
	}
	if f.Example != "" {
		clauses = append(clauses, "example = ?")
		args = append(args, f.Example)
	}
	if f.UserID != "" {
		clauses = append(clauses, "user_id = ?")
		args = append(args, f.UserID)
	}
	if f.Outcome != "" {
		clauses = append(clauses, "outcome = ?")
		args = append(args, string(f.Outcome))
	}

	query := "SELECT id, category, example, user_id, outcome, output, started_at, duration_ms FROM runs"
	if len(clauses) > 0 {
		query += " WHERE " + strings.Join(clauses, " AND ")
	}
	limit := f.Limit
	if limit <= 0 {
		limit = DefaultLimit
	}
	query += fmt.Sprintf(" ORDER BY started_at DESC, rowid DESC LIMIT %d", limit)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying runs: %w", err)
	}
	defer rows.Close()

	entries := []Entry{}
	for rows.Next() {
		var (
			e       Entry
			outcome string
		)
		if err := rows.Scan(&e.ID, &e.Category, &e.Example, &e.UserID, &outcome, &e.Output, &e.StartedAt, &e.DurationMS); err != nil {
			return nil, fmt.Errorf("scanning run: %w", err)
		}
		e.Outcome = runner.Outcome(outcome)
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// Stats counts runs per outcome. A non-empty userID restricts the count to
// that user's runs.
func (s *Store) Stats(ctx context.Context, userID string) (map[runner.Outcome]int, error) {
	query := "SELECT outcome, COUNT(*) FROM runs"
	var args []any
	if userID != "" {
		query += " WHERE user_id = ?"
		args = append(args, userID)
	}
	rows, err := s.db.QueryContext(ctx, query+" GROUP BY outcome", args...)
	if err != nil {
		return nil, fmt.Errorf("counting runs: %w", err)
	}
	defer rows.Close()

	stats := map[runner.Outcome]int{runner.OutcomeRan: 0, runner.OutcomeDenied: 0}
	for rows.Next() {
		var (
			outcome string
			n       int
		)
		if err := rows.Scan(&outcome, &n); err != nil {
			return nil, err
		}
		stats[runner.Outcome(outcome)] = n
	}
	return stats, rows.Err()
}

// DeleteBefore removes runs started before t and returns how many were removed.
func (s *Store) DeleteBefore(ctx context.Context, t time.Time) (int64, error) {
	res, err := s.db.ExecContext(ctx, "DELETE FROM runs WHERE started_at < ?", t.UTC())
	if err != nil {
		return 0, fmt.Errorf("deleting old runs: %w", err)
	}
	return res.RowsAffected()
}
