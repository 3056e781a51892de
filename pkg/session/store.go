package session

import (
	"context"
	"errors"
	"fmt"
	"sync"

	slogctx "github.com/veqryn/slog-context"

	"github.com/superquinquin/consigne-desk/internal/serviceerr"
)

const DefaultKey = "consigne-session"

// Store keeps an in-memory copy of the session reconciled with a durable
// Repository. The durable copy always wins: another process writing the same
// key is picked up on the next Read.
//
// The mutex only guards the memory copy. Two processes doing a
// read-modify-write at the same time can still overwrite each other.
type Store struct {
	repo Repository
	key  string

	mu     sync.Mutex
	memory Session
}

func NewStore(repo Repository, key string) *Store {
	if key == "" {
		key = DefaultKey
	}

	return &Store{
		repo: repo,
		key:  key,
	}
}

func (s *Store) Key() string {
	return s.key
}

// Read returns the current session. A missing durable entry is an empty
// session.
func (s *Store) Read(ctx context.Context) (Session, error) {
	durable, err := s.repo.LoadSession(ctx, s.key)
	if err != nil {
		if !errors.Is(err, serviceerr.ErrNotFound) {
			return Session{}, fmt.Errorf("loading session %s: %w", s.key, err)
		}

		durable = Session{}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.memory.Equal(durable) {
		return s.memory.Clone(), nil
	}

	slogctx.Debug(ctx, "Adopting the stored session", "key", s.key)
	s.memory = durable.Clone()

	return durable, nil
}

// Write persists sess and then replaces the memory copy. The memory copy is
// left alone when the durable write fails. Neither Read nor Write share
// pointers with the memory copy.
func (s *Store) Write(ctx context.Context, sess Session) error {
	if err := s.repo.StoreSession(ctx, s.key, sess); err != nil {
		return fmt.Errorf("storing session %s: %w", s.key, err)
	}

	s.mu.Lock()
	s.memory = sess.Clone()
	s.mu.Unlock()

	return nil
}

func (s *Store) Clear(ctx context.Context) error {
	return s.Write(ctx, Session{})
}
