package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/rpggio/statusboard/internal/repository"
)

// SessionStore is a key/value slot table partitioned by scope. It satisfies
// project.Store.
type SessionStore struct {
	db    *DB
	scope string
}

// NewSessionStore creates a store bound to one session scope.
func NewSessionStore(db *DB, scope string) *SessionStore {
	return &SessionStore{db: db, scope: scope}
}

// Get returns the stored value, or repository.ErrNotFound.
func (s *SessionStore) Get(ctx context.Context, key string) (string, error) {
	if key == "" {
		return "", repository.ErrInvalidInput
	}

	var value string
	err := s.db.QueryRowContext(ctx,
		`SELECT value FROM session_store WHERE scope = ? AND key = ?`,
		s.scope, key,
	).Scan(&value)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", repository.ErrNotFound
		}
		return "", fmt.Errorf("failed to get %s: %w", key, err)
	}

	return value, nil
}

// Set writes value under key, replacing any previous value.
func (s *SessionStore) Set(ctx context.Context, key, value string) error {
	if key == "" {
		return repository.ErrInvalidInput
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO session_store (scope, key, value, updated_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(scope, key) DO UPDATE SET
			value = excluded.value,
			updated_at = excluded.updated_at
	`, s.scope, key, value, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("failed to set %s: %w", key, err)
	}

	return nil
}

// Delete removes key. Deleting an absent key is not an error.
func (s *SessionStore) Delete(ctx context.Context, key string) error {
	_, err := s.db.ExecContext(ctx,
		`DELETE FROM session_store WHERE scope = ? AND key = ?`,
		s.scope, key,
	)
	if err != nil {
		return fmt.Errorf("failed to delete %s: %w", key, err)
	}
	return nil
}
