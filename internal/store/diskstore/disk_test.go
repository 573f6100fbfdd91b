package diskstore

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/discochess/coach/internal/codec/codecs"
	"github.com/discochess/coach/internal/store"
)

func TestStore_ReadProfile(t *testing.T) {
	dir := t.TempDir()

	// Create profile file manually.
	profilesDir := filepath.Join(dir, "profiles")
	if err := os.MkdirAll(profilesDir, 0o755); err != nil {
		t.Fatalf("MkdirAll() error = %v", err)
	}
	data := []byte(`{"username":"alice"}`)
	if err := os.WriteFile(filepath.Join(profilesDir, "alice.json"), data, 0o644); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}

	s, err := New(dir, codecs.None())
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	defer s.Close()

	got, err := s.ReadProfile(context.Background(), "alice")
	if err != nil {
		t.Fatalf("ReadProfile() error = %v", err)
	}
	if string(got) != string(data) {
		t.Errorf("ReadProfile() = %q, want %q", got, data)
	}
}

func TestStore_ReadProfileNotFound(t *testing.T) {
	s, err := New(t.TempDir(), codecs.None())
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	_, err = s.ReadProfile(context.Background(), "nobody")
	if !errors.Is(err, store.ErrNotFound) {
		t.Errorf("ReadProfile() error = %v, want ErrNotFound", err)
	}
}

func TestStore_WriteThenReadCompressed(t *testing.T) {
	dir := t.TempDir()
	s, err := New(dir, codecs.Zstd())
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	ctx := context.Background()

	for _, data := range []string{`{"avg_cpl":50}`, `{"avg_cpl":25}`} {
		if err := s.WriteProfile(ctx, "bob", []byte(data)); err != nil {
			t.Fatalf("WriteProfile() error = %v", err)
		}
		got, err := s.ReadProfile(ctx, "bob")
		if err != nil {
			t.Fatalf("ReadProfile() error = %v", err)
		}
		if string(got) != data {
			t.Errorf("ReadProfile() = %q, want %q", got, data)
		}
	}

	if _, err := os.Stat(filepath.Join(dir, "profiles", "bob.json.zst")); err != nil {
		t.Errorf("compressed profile missing: %v", err)
	}
	entries, err := os.ReadDir(filepath.Join(dir, "profiles"))
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 1 {
		t.Errorf("profiles dir has %d entries, want 1 (temp files left behind?)", len(entries))
	}
}

func TestStore_RejectsPathTraversal(t *testing.T) {
	s, err := New(t.TempDir(), codecs.None())
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	ctx := context.Background()

	if err := s.WriteProfile(ctx, "../evil", []byte("x")); !errors.Is(err, store.ErrInvalidUsername) {
		t.Errorf("WriteProfile() error = %v, want ErrInvalidUsername", err)
	}
	if _, err := s.ReadProfile(ctx, "a/b"); !errors.Is(err, store.ErrInvalidUsername) {
		t.Errorf("ReadProfile() error = %v, want ErrInvalidUsername", err)
	}
	if _, err := s.OpenGames(ctx, ".."); !errors.Is(err, store.ErrInvalidUsername) {
		t.Errorf("OpenGames() error = %v, want ErrInvalidUsername", err)
	}
}

func TestStore_OpenGamesPrefersChesscomExport(t *testing.T) {
	dir := t.TempDir()
	gamesDir := filepath.Join(dir, "games")
	if err := os.MkdirAll(gamesDir, 0o755); err != nil {
		t.Fatal(err)
	}
	write := func(name, content string) {
		t.Helper()
		if err := os.WriteFile(filepath.Join(gamesDir, name), []byte(content), 0o644); err != nil {
			t.Fatal(err)
		}
	}
	write("carol.pgn", "upload")
	write("dave.pgn", "upload")
	write("dave_chesscom.pgn", "export")

	s, err := New(dir, codecs.None())
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	tests := []struct {
		username string
		want     string
	}{
		{"carol", "upload"},
		{"dave", "export"},
	}
	for _, tt := range tests {
		t.Run(tt.username, func(t *testing.T) {
			rc, err := s.OpenGames(context.Background(), tt.username)
			if err != nil {
				t.Fatalf("OpenGames() error = %v", err)
			}
			defer rc.Close()
			got, _ := io.ReadAll(rc)
			if string(got) != tt.want {
				t.Errorf("OpenGames() content = %q, want %q", got, tt.want)
			}
		})
	}

	if _, err := s.OpenGames(context.Background(), "erin"); !errors.Is(err, store.ErrNotFound) {
		t.Errorf("OpenGames(erin) error = %v, want ErrNotFound", err)
	}
}

func TestStore_CancelledContext(t *testing.T) {
	s, err := New(t.TempDir(), codecs.None())
	if err != nil {
		t.Fatal(err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := s.ReadProfile(ctx, "alice"); !errors.Is(err, context.Canceled) {
		t.Errorf("ReadProfile() error = %v, want context.Canceled", err)
	}
}

func TestNew_InvalidPath(t *testing.T) {
	_, err := New("/nonexistent/path", codecs.None())
	if err == nil {
		t.Error("New() with invalid path should return error")
	}
}

func TestNew_NotDirectory(t *testing.T) {
	f := filepath.Join(t.TempDir(), "file")
	if err := os.WriteFile(f, nil, 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := New(f, codecs.None()); err == nil {
		t.Error("New() with file path should return error")
	}
}
