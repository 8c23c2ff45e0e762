// Package sqlite provides a ports.Store backed by a SQLite database,
// for desktop and CLI consumers that want durable progress without an
// external service.
//
// It expects an *sql.DB opened with a SQLite driver; the caller imports
// the driver, e.g.:
//
//	import _ "modernc.org/sqlite"
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/nmbl-labs/formpath/pkg/domain"
	"github.com/nmbl-labs/formpath/pkg/ports"
)

// Store implements ports.Store over a single key/value table.
type Store struct {
	db *sql.DB
}

var _ ports.Store = (*Store)(nil)

// NewStore initializes the schema in db and returns a Store.
func NewStore(db *sql.DB) (*Store, error) {
	s := &Store{db: db}
	if err := s.initSchema(); err != nil {
		return nil, fmt.Errorf("sqlite store: init schema: %w", err)
	}
	return s, nil
}

func (s *Store) initSchema() error {
	_, err := s.db.Exec(`
		CREATE TABLE IF NOT EXISTS formpath_records (
			key   TEXT PRIMARY KEY,
			value TEXT NOT NULL
		);`,
	)
	return err
}

// GetItem retrieves the value stored under key.
func (s *Store) GetItem(ctx context.Context, key string) (string, error) {
	var value string
	err := s.db.QueryRowContext(ctx,
		`SELECT value FROM formpath_records WHERE key = ?`, key).Scan(&value)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", domain.ErrRecordNotFound
		}
		return "", fmt.Errorf("sqlite get: %w", err)
	}
	return value, nil
}

// SetItem stores value under key, replacing any previous value.
func (s *Store) SetItem(ctx context.Context, key string, value string) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO formpath_records (key, value) VALUES (?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value`,
		key, value,
	)
	if err != nil {
		return fmt.Errorf("sqlite set: %w", err)
	}
	return nil
}

// RemoveItem deletes the value under key.
func (s *Store) RemoveItem(ctx context.Context, key string) error {
	_, err := s.db.ExecContext(ctx,
		`DELETE FROM formpath_records WHERE key = ?`, key)
	if err != nil {
		return fmt.Errorf("sqlite del: %w", err)
	}
	return nil
}
