package sessionmock

import (
	"context"
	"sync"

	"github.com/superquinquin/consigne-desk/internal/serviceerr"
	"github.com/superquinquin/consigne-desk/pkg/session"
)

type RepositoryOption func(*Repository)

type Repository struct {
	mu         sync.Mutex
	sessions   map[string]session.Session
	shiftUsers map[string]session.ShiftUsers
	stores     int

	loadSessionErr, storeSessionErr error
}

func WithSession(key string, s session.Session) RepositoryOption {
	return func(r *Repository) { r.sessions[key] = s }
}
func WithLoadSessionError(err error) RepositoryOption {
	return func(r *Repository) { r.loadSessionErr = err }
}
func WithStoreSessionError(err error) RepositoryOption {
	return func(r *Repository) { r.storeSessionErr = err }
}

func WithShiftUsers(key string, u session.ShiftUsers) RepositoryOption {
	return func(r *Repository) { r.shiftUsers[key] = u }
}

var (
	_ = session.Repository(&Repository{})
	_ = session.ShiftUsersRepository(&Repository{})
)

func NewInMemRepository(opts ...RepositoryOption) *Repository {
	r := &Repository{
		sessions:   make(map[string]session.Session),
		shiftUsers: make(map[string]session.ShiftUsers),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(r)
		}
	}
	return r
}

func (r *Repository) LoadSession(_ context.Context, key string) (session.Session, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.loadSessionErr != nil {
		return session.Session{}, r.loadSessionErr
	}
	if s, ok := r.sessions[key]; ok {
		return s, nil
	}
	return session.Session{}, serviceerr.ErrNotFound
}

func (r *Repository) StoreSession(_ context.Context, key string, s session.Session) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.storeSessionErr != nil {
		return r.storeSessionErr
	}
	r.sessions[key] = s
	r.stores++
	return nil
}

// Put writes s under key directly, as another process sharing the
// repository would.
func (r *Repository) Put(key string, s session.Session) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sessions[key] = s
}

// Get returns what is stored under key.
func (r *Repository) Get(key string) (session.Session, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.sessions[key]
	return s, ok
}

// SetStoreSessionError changes the error returned by StoreSession.
func (r *Repository) SetStoreSessionError(err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.storeSessionErr = err
}

// Stores counts the successful StoreSession calls.
func (r *Repository) Stores() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.stores
}

func (r *Repository) LoadShiftUsers(_ context.Context, key string) (session.ShiftUsers, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if u, ok := r.shiftUsers[key]; ok {
		return u, nil
	}
	return session.ShiftUsers{}, serviceerr.ErrNotFound
}

func (r *Repository) StoreShiftUsers(_ context.Context, key string, u session.ShiftUsers) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.shiftUsers[key] = u
	return nil
}

// ShiftUsers returns the shift users stored under key.
func (r *Repository) ShiftUsers(key string) (session.ShiftUsers, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.shiftUsers[key]
	return u, ok
}
