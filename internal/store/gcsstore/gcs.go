// Package gcsstore implements a Google Cloud Storage backend.
package gcsstore

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"cloud.google.com/go/storage"

	"github.com/discochess/coach/internal/codec"
	"github.com/discochess/coach/internal/store"
)

// Compile-time check that Store implements store.Store.
var _ store.Store = (*Store)(nil)

// Store is a Google Cloud Storage backend.
type Store struct {
	client *storage.Client
	bucket *storage.BucketHandle
	prefix string
	codec  codec.Codec
}

// New creates a new GCS store.
// The bucket must already exist.
// The codec handles compression/decompression of profiles.
func New(ctx context.Context, bucketName string, c codec.Codec, opts ...Option) (*Store, error) {
	client, err := storage.NewClient(ctx)
	if err != nil {
		return nil, fmt.Errorf("creating GCS client: %w", err)
	}

	s := &Store{
		client: client,
		bucket: client.Bucket(bucketName),
		codec:  c,
	}

	for _, opt := range opts {
		opt(s)
	}

	return s, nil
}

// Option configures a Store.
type Option func(*Store)

// WithPrefix sets a key prefix for all operations.
func WithPrefix(prefix string) Option {
	return func(s *Store) {
		s.prefix = strings.TrimSuffix(prefix, "/")
		if s.prefix != "" {
			s.prefix += "/"
		}
	}
}

// ReadProfile reads and decompresses the profile of username.
func (s *Store) ReadProfile(ctx context.Context, username string) ([]byte, error) {
	if err := store.ValidateUsername(username); err != nil {
		return nil, err
	}

	reader, err := s.open(ctx, s.profileKey(username))
	if err != nil {
		return nil, err
	}
	defer reader.Close()

	data, err := codec.Decode(s.codec, reader)
	if err != nil {
		return nil, fmt.Errorf("decoding profile: %w", err)
	}
	return data, nil
}

// WriteProfile compresses and uploads the profile of username.
func (s *Store) WriteProfile(ctx context.Context, username string, data []byte) error {
	if err := store.ValidateUsername(username); err != nil {
		return err
	}

	encoded, err := codec.Encode(s.codec, data)
	if err != nil {
		return fmt.Errorf("encoding profile: %w", err)
	}

	w := s.bucket.Object(s.profileKey(username)).NewWriter(ctx)
	w.ContentType = "application/json"
	if _, err := w.Write(encoded); err != nil {
		w.Close()
		return fmt.Errorf("writing profile: %w", err)
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("finalizing profile upload: %w", err)
	}
	return nil
}

// OpenGames opens the first game archive found for username.
func (s *Store) OpenGames(ctx context.Context, username string) (io.ReadCloser, error) {
	if err := store.ValidateUsername(username); err != nil {
		return nil, err
	}

	for _, key := range store.GameKeys(username) {
		r, err := s.open(ctx, s.prefix+key)
		if errors.Is(err, store.ErrNotFound) {
			continue
		}
		return r, err
	}
	return nil, store.ErrNotFound
}

// Close releases resources.
func (s *Store) Close() error {
	return s.client.Close()
}

func (s *Store) open(ctx context.Context, key string) (io.ReadCloser, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	reader, err := s.bucket.Object(key).NewReader(ctx)
	if err != nil {
		if errors.Is(err, storage.ErrObjectNotExist) {
			return nil, store.ErrNotFound
		}
		return nil, fmt.Errorf("opening %s: %w", key, err)
	}
	return reader, nil
}

// profileKey returns the full object key for a profile.
func (s *Store) profileKey(username string) string {
	return s.prefix + store.ProfileKey(username, s.codec.Extension())
}
