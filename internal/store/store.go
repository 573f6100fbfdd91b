// Package store defines the storage backend interface for persisted profiles
// and the PGN archives they are built from.
package store

import (
	"context"
	"errors"
	"io"
	"path"
	"strings"
)

// ErrNotFound is returned when a profile or game archive does not exist.
var ErrNotFound = errors.New("store: not found")

// ErrInvalidUsername is returned for usernames that cannot name an object.
var ErrInvalidUsername = errors.New("store: invalid username")

// Object layout shared by every backend.
const (
	ProfilesDir = "profiles"
	GamesDir    = "games"
)

// Store defines the interface for storage backends.
// Implementations handle path formats and storage details internally.
type Store interface {
	// ReadProfile reads the serialized profile of username.
	ReadProfile(ctx context.Context, username string) ([]byte, error)

	// WriteProfile replaces the serialized profile of username.
	WriteProfile(ctx context.Context, username string, data []byte) error

	// OpenGames opens the PGN archive of username.
	// The caller must close the returned reader.
	OpenGames(ctx context.Context, username string) (io.ReadCloser, error)

	// Close releases any resources held by the store.
	Close() error
}

// ValidateUsername rejects names that are empty or would escape the
// profile and game directories.
func ValidateUsername(username string) error {
	if username == "" || username == "." || username == ".." ||
		strings.ContainsAny(username, `/\`) || strings.ContainsRune(username, 0) {
		return ErrInvalidUsername
	}
	return nil
}

// ProfileKey returns the object key of a profile. ext is the codec
// extension, empty for uncompressed profiles.
func ProfileKey(username, ext string) string {
	name := username + ".json"
	if ext != "" {
		name += "." + ext
	}
	return path.Join(ProfilesDir, name)
}

// GameKeys returns the candidate archive keys for username, most specific
// first: an exported chess.com archive, then a plain upload.
func GameKeys(username string) []string {
	return []string{
		path.Join(GamesDir, username+"_chesscom.pgn"),
		path.Join(GamesDir, username+".pgn"),
	}
}
