// Package kv implements platform.KeyValue on SQLite, scoped per user.
package kv

import (
	"context"
	"database/sql"
	"fmt"
	"strconv"
	"time"

	"github.com/ziadkadry99/puter-gallery/internal/db"
	"github.com/ziadkadry99/puter-gallery/internal/platform"
)

const (
	MaxKeyBytes   = 1024
	MaxValueBytes = 400 * 1024
)

// Store manages persistence of key-value entries.
type Store struct {
	db *db.DB
}

// NewStore creates a new key-value store.
func NewStore(database *db.DB) *Store {
	return &Store{db: database}
}

func validateKey(key string) error {
	if key == "" {
		return fmt.Errorf("key is required")
	}
	if len(key) > MaxKeyBytes {
		return fmt.Errorf("key is %d bytes, limit is %d", len(key), MaxKeyBytes)
	}
	return nil
}

// Set stores value under key, replacing any previous value.
func (s *Store) Set(ctx context.Context, key, value string) error {
	u, err := platform.UserFrom(ctx)
	if err != nil {
		return err
	}
	if err := validateKey(key); err != nil {
		return err
	}
	if len(value) > MaxValueBytes {
		return fmt.Errorf("%w: value is %d bytes, limit is %d", platform.ErrTooLarge, len(value), MaxValueBytes)
	}

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO kv_entries (user_id, key, value, updated_at) VALUES (?, ?, ?, ?)
		 ON CONFLICT(user_id, key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at`,
		u.ID, key, value, time.Now().UTC(),
	)
	if err != nil {
		return fmt.Errorf("setting key %q: %w", key, err)
	}
	return nil
}

// Get returns the value stored under key. A missing key is reported with
// found=false and a nil error.
func (s *Store) Get(ctx context.Context, key string) (string, bool, error) {
	u, err := platform.UserFrom(ctx)
	if err != nil {
		return "", false, err
	}
	if err := validateKey(key); err != nil {
		return "", false, err
	}

	var value string
	err = s.db.QueryRowContext(ctx,
		`SELECT value FROM kv_entries WHERE user_id = ? AND key = ?`, u.ID, key,
	).Scan(&value)
	if err == sql.ErrNoRows {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("getting key %q: %w", key, err)
	}
	return value, true, nil
}

// List returns every key of the caller, sorted.
func (s *Store) List(ctx context.Context) ([]string, error) {
	u, err := platform.UserFrom(ctx)
	if err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT key FROM kv_entries WHERE user_id = ? ORDER BY key`, u.ID,
	)
	if err != nil {
		return nil, fmt.Errorf("listing keys: %w", err)
	}
	defer rows.Close()

	keys := []string{}
	for rows.Next() {
		var k string
		if err := rows.Scan(&k); err != nil {
			return nil, fmt.Errorf("scanning key: %w", err)
		}
		keys = append(keys, k)
	}
	return keys, rows.Err()
}

// Incr adds delta to the integer stored under key (missing counts as 0)
// and returns the new value.
func (s *Store) Incr(ctx context.Context, key string, delta int64) (int64, error) {
	u, err := platform.UserFrom(ctx)
	if err != nil {
		return 0, err
	}
	if err := validateKey(key); err != nil {
		return 0, err
	}

	// One statement, so concurrent increments serialize on the write lock.
	// Existing values must read back unchanged as integers.
	var raw string
	err = s.db.QueryRowContext(ctx,
		`INSERT INTO kv_entries (user_id, key, value, updated_at) VALUES (?, ?, ?, ?)
		 ON CONFLICT(user_id, key) DO UPDATE
		   SET value = CAST(kv_entries.value AS INTEGER) + ?, updated_at = excluded.updated_at
		   WHERE CAST(CAST(kv_entries.value AS INTEGER) AS TEXT) = kv_entries.value
		 RETURNING value`,
		u.ID, key, strconv.FormatInt(delta, 10), time.Now().UTC(), delta,
	).Scan(&raw)
	if err == sql.ErrNoRows {
		return 0, fmt.Errorf("value of %q is not an integer", key)
	}
	if err != nil {
		return 0, fmt.Errorf("incrementing key %q: %w", key, err)
	}
	next, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("value of %q is not an integer", key)
	}
	return next, nil
}

// Delete removes key. Deleting a missing key is not an error.
func (s *Store) Delete(ctx context.Context, key string) error {
	u, err := platform.UserFrom(ctx)
	if err != nil {
		return err
	}
	if _, err := s.db.ExecContext(ctx,
		`DELETE FROM kv_entries WHERE user_id = ? AND key = ?`, u.ID, key,
	); err != nil {
		return fmt.Errorf("deleting key %q: %w", key, err)
	}
	return nil
}
