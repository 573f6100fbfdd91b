// Package diskstore implements a disk-based filesystem storage backend.
//
// Layout under the root directory:
//
//	profiles/<username>.json[.<ext>]
//	games/<username>_chesscom.pgn
//	games/<username>.pgn
package diskstore

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/discochess/coach/internal/codec"
	"github.com/discochess/coach/internal/store"
)

// Compile-time check that Store implements store.Store.
var _ store.Store = (*Store)(nil)

// Store is a disk-based filesystem storage backend.
type Store struct {
	root  string
	codec codec.Codec
}

// New creates a new disk store rooted at the given directory.
// The directory must exist. The codec handles compression/decompression
// of profiles; game archives are read as plain PGN.
func New(root string, codec codec.Codec) (*Store, error) {
	info, err := os.Stat(root)
	if err != nil {
		return nil, fmt.Errorf("stat root directory: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("%s is not a directory", root)
	}

	return &Store{
		root:  root,
		codec: codec,
	}, nil
}

// Root returns the data directory.
func (s *Store) Root() string {
	return s.root
}

// ReadProfile reads and decompresses the profile of username.
func (s *Store) ReadProfile(ctx context.Context, username string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := store.ValidateUsername(username); err != nil {
		return nil, err
	}

	compressed, err := os.ReadFile(s.profilePath(username))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, store.ErrNotFound
		}
		return nil, fmt.Errorf("reading profile: %w", err)
	}

	data, err := codec.Decode(s.codec, bytes.NewReader(compressed))
	if err != nil {
		return nil, fmt.Errorf("decoding profile: %w", err)
	}
	return data, nil
}

// WriteProfile compresses and stores the profile of username.
// The file is replaced atomically so readers never see a partial profile.
func (s *Store) WriteProfile(ctx context.Context, username string, data []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := store.ValidateUsername(username); err != nil {
		return err
	}

	encoded, err := codec.Encode(s.codec, data)
	if err != nil {
		return fmt.Errorf("encoding profile: %w", err)
	}

	path := s.profilePath(username)
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating profiles directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, "."+username+"-*.tmp")
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(encoded); err != nil {
		tmp.Close()
		return fmt.Errorf("writing profile: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("closing profile: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("replacing profile: %w", err)
	}
	return nil
}

// OpenGames opens the first game archive found for username.
func (s *Store) OpenGames(ctx context.Context, username string) (io.ReadCloser, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := store.ValidateUsername(username); err != nil {
		return nil, err
	}

	for _, key := range store.GameKeys(username) {
		f, err := os.Open(filepath.Join(s.root, filepath.FromSlash(key)))
		if err == nil {
			return f, nil
		}
		if !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("opening games: %w", err)
		}
	}
	return nil, store.ErrNotFound
}

// Close releases any resources held by the store.
func (s *Store) Close() error {
	return nil
}

// profilePath returns the filesystem path for a profile.
func (s *Store) profilePath(username string) string {
	return filepath.Join(s.root, filepath.FromSlash(store.ProfileKey(username, s.codec.Extension())))
}
