package sessionvalkey

import (
	"context"
	"fmt"
	"time"

	"github.com/valkey-io/valkey-go"

	"github.com/superquinquin/consigne-desk/pkg/session"
)

const (
	objectTypeSession    = "session"
	objectTypeShiftUsers = "shift_users"
)

// Repository stores sessions as JSON values under <prefix>:session:<key>, so
// several counter terminals can share one session.
type Repository struct {
	store *store
}

var (
	_ = session.Repository(&Repository{})
	_ = session.ShiftUsersRepository(&Repository{})
)

func NewRepository(valkeyClient valkey.Client, prefix string) *Repository {
	return &Repository{
		store: newStore(valkeyClient, prefix),
	}
}

func (r *Repository) LoadSession(ctx context.Context, key string) (s session.Session, _ error) {
	if err := r.store.Get(ctx, objectTypeSession, key, &s); err != nil {
		return session.Session{}, fmt.Errorf("getting session from store: %w", err)
	}

	return s, nil
}

func (r *Repository) StoreSession(ctx context.Context, key string, s session.Session) error {
	if err := r.store.Set(ctx, objectTypeSession, key, s); err != nil {
		return fmt.Errorf("setting session into storage: %w", err)
	}

	return nil
}

func (r *Repository) LoadShiftUsers(ctx context.Context, key string) (u session.ShiftUsers, _ error) {
	if err := r.store.Get(ctx, objectTypeShiftUsers, key, &u); err != nil {
		return session.ShiftUsers{}, fmt.Errorf("getting shift users from store: %w", err)
	}

	return u, nil
}

// StoreShiftUsers also sets the key expiry so stale lists do not pile up.
func (r *Repository) StoreShiftUsers(ctx context.Context, key string, u session.ShiftUsers) error {
	if err := r.store.SetUntil(ctx, objectTypeShiftUsers, key, u, time.Unix(0, u.ExpiresAt)); err != nil {
		return fmt.Errorf("setting shift users into storage: %w", err)
	}

	return nil
}
