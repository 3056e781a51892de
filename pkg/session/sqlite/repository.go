// Package sessionsqlite keeps the counter session in a local SQLite file, one
// row per key.
package sessionsqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/superquinquin/consigne-desk/internal/serviceerr"
	"github.com/superquinquin/consigne-desk/pkg/session"
)

// shift users rows live in the same table under a prefixed key.
const shiftUsersPrefix = "shift-users:"

type Repository struct {
	db *sql.DB
}

var (
	_ = session.Repository(&Repository{})
	_ = session.ShiftUsersRepository(&Repository{})
)

func NewRepository(db *sql.DB) *Repository {
	return &Repository{db: db}
}

func (r *Repository) LoadSession(ctx context.Context, key string) (s session.Session, _ error) {
	if err := r.load(ctx, key, &s); err != nil {
		return session.Session{}, fmt.Errorf("session %s: %w", key, err)
	}

	return s, nil
}

func (r *Repository) StoreSession(ctx context.Context, key string, s session.Session) error {
	if err := r.store(ctx, key, s); err != nil {
		return fmt.Errorf("session %s: %w", key, err)
	}

	return nil
}

func (r *Repository) LoadShiftUsers(ctx context.Context, key string) (u session.ShiftUsers, _ error) {
	if err := r.load(ctx, shiftUsersPrefix+key, &u); err != nil {
		return session.ShiftUsers{}, fmt.Errorf("shift users %s: %w", key, err)
	}

	return u, nil
}

func (r *Repository) StoreShiftUsers(ctx context.Context, key string, u session.ShiftUsers) error {
	if err := r.store(ctx, shiftUsersPrefix+key, u); err != nil {
		return fmt.Errorf("shift users %s: %w", key, err)
	}

	return nil
}

func (r *Repository) load(ctx context.Context, key string, into any) error {
	var value string
	err := r.db.QueryRowContext(ctx,
		`SELECT value FROM client_state WHERE key = ?`,
		key,
	).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return serviceerr.ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("selecting value: %w", err)
	}

	if err := json.Unmarshal([]byte(value), into); err != nil {
		return fmt.Errorf("decoding value: %w", err)
	}

	return nil
}

func (r *Repository) store(ctx context.Context, key string, v any) error {
	value, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encoding value: %w", err)
	}

	_, err = r.db.ExecContext(ctx,
		`INSERT INTO client_state (key, value, updated_at) VALUES (?, ?, CURRENT_TIMESTAMP)
		 ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = CURRENT_TIMESTAMP`,
		key,
		string(value),
	)
	if err != nil {
		return fmt.Errorf("upserting value: %w", err)
	}

	return nil
}
