// Package settings persists process-wide values that must survive a
// restart, currently the clear threshold.
package settings

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
)

const KeyClearThreshold = "clear_threshold"

// Store is a string key/value store.
type Store interface {
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key, value string) error
}

// Settings exposes typed accessors over a Store.
type Settings struct {
	store Store
}

func New(store Store) *Settings {
	return &Settings{store: store}
}

// Threshold returns the persisted clear threshold, or fallback when none
// has been stored.
func (s *Settings) Threshold(ctx context.Context, fallback int) (int, error) {
	v, ok, err := s.store.Get(ctx, KeyClearThreshold)
	if err != nil {
		return fallback, err
	}
	if !ok {
		return fallback, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil || n <= 0 {
		return fallback, fmt.Errorf("stored %s %q is not a positive integer", KeyClearThreshold, v)
	}
	return n, nil
}

func (s *Settings) SetThreshold(ctx context.Context, n int) error {
	if n <= 0 {
		return errors.New("threshold must be positive")
	}
	return s.store.Set(ctx, KeyClearThreshold, strconv.Itoa(n))
}

// SQLStore keeps settings in the settings table.
type SQLStore struct {
	db *sql.DB
}

func NewSQLStore(db *sql.DB) *SQLStore {
	return &SQLStore{db: db}
}

func (s *SQLStore) Get(ctx context.Context, key string) (string, bool, error) {
	var v string
	err := s.db.QueryRowContext(ctx, `SELECT value FROM settings WHERE key=?`, key).Scan(&v)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return v, true, nil
}

func (s *SQLStore) Set(ctx context.Context, key, value string) error {
	_, err := s.db.ExecContext(ctx, `
        INSERT INTO settings (key, value, updated_at) VALUES (?, ?, CURRENT_TIMESTAMP)
        ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at`,
		key, value,
	)
	return err
}
