// Package memstore provides an in-memory store implementation for testing
// and demos.
package memstore

import (
	"bytes"
	"context"
	"io"
	"sync"

	"github.com/discochess/coach/internal/store"
)

// Compile-time check that Store implements store.Store.
var _ store.Store = (*Store)(nil)

// Store is an in-memory store.
type Store struct {
	mu       sync.RWMutex
	profiles map[string][]byte
	games    map[string][]byte
	writes   int
}

// New creates a new in-memory store.
func New() *Store {
	return &Store{
		profiles: make(map[string][]byte),
		games:    make(map[string][]byte),
	}
}

// SetGames sets the PGN archive of username (for test setup).
func (s *Store) SetGames(username, pgn string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.games[username] = []byte(pgn)
}

// Writes returns the number of profile writes served.
func (s *Store) Writes() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.writes
}

// ReadProfile reads a profile from memory.
func (s *Store) ReadProfile(ctx context.Context, username string) ([]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	data, ok := s.profiles[username]
	if !ok {
		return nil, store.ErrNotFound
	}
	return bytes.Clone(data), nil
}

// WriteProfile stores a copy of data as the profile of username.
func (s *Store) WriteProfile(ctx context.Context, username string, data []byte) error {
	if err := store.ValidateUsername(username); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.profiles[username] = bytes.Clone(data)
	s.writes++
	return nil
}

// OpenGames returns a reader over the archive set with SetGames.
func (s *Store) OpenGames(ctx context.Context, username string) (io.ReadCloser, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	data, ok := s.games[username]
	if !ok {
		return nil, store.ErrNotFound
	}
	return io.NopCloser(bytes.NewReader(data)), nil
}

// Close is a no-op for the memory store.
func (s *Store) Close() error {
	return nil
}
