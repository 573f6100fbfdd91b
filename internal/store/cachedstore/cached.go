package cachedstore

import (
	"context"
	"io"

	"github.com/discochess/coach/internal/store"
)

// Compile-time check that Store implements store.Store.
var _ store.Store = (*Store)(nil)

// Store wraps another Store with a profile cache.
// Game archives are not cached.
type Store struct {
	underlying store.Store
	backend    Backend
}

// New creates a new cached store wrapping the given store.
func New(underlying store.Store, backend Backend) *Store {
	return &Store{
		underlying: underlying,
		backend:    backend,
	}
}

// ReadProfile reads a profile, checking the cache first.
func (s *Store) ReadProfile(ctx context.Context, username string) ([]byte, error) {
	if data, ok := s.backend.Get(username); ok {
		return data, nil
	}

	data, err := s.underlying.ReadProfile(ctx, username)
	if err != nil {
		return nil, err
	}
	s.backend.Set(username, data)
	return data, nil
}

// WriteProfile writes to the underlying store, then refreshes the cache.
func (s *Store) WriteProfile(ctx context.Context, username string, data []byte) error {
	if err := s.underlying.WriteProfile(ctx, username, data); err != nil {
		return err
	}
	s.backend.Set(username, data)
	return nil
}

// OpenGames delegates to the underlying store.
func (s *Store) OpenGames(ctx context.Context, username string) (io.ReadCloser, error) {
	return s.underlying.OpenGames(ctx, username)
}

// Close closes the underlying store.
func (s *Store) Close() error {
	return s.underlying.Close()
}

// Stats returns cache statistics.
func (s *Store) Stats() Stats {
	return s.backend.Stats()
}
