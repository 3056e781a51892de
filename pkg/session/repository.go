package session

import (
	"context"

	"github.com/superquinquin/consigne-desk/pkg/identity"
)

// Repository is the durable side of the Store. LoadSession returns an error
// matching serviceerr.ErrNotFound when nothing was stored under key.
type Repository interface {
	LoadSession(ctx context.Context, key string) (Session, error)
	StoreSession(ctx context.Context, key string, s Session) error
}

// ShiftUsers is the members list of the current shifts as fetched by one
// run and reused by the next ones. ExpiresAt is in Unix nanoseconds.
type ShiftUsers struct {
	People    []identity.Person `json:"people"`
	ExpiresAt int64             `json:"expiresAt"`
}

// ShiftUsersRepository keeps the shift members list next to the session.
// LoadShiftUsers returns an error matching serviceerr.ErrNotFound when
// nothing was stored under key.
type ShiftUsersRepository interface {
	LoadShiftUsers(ctx context.Context, key string) (ShiftUsers, error)
	StoreShiftUsers(ctx context.Context, key string, u ShiftUsers) error
}
