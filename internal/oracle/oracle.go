// Package oracle wraps a UCI evaluation engine. It converts the engine's
// side-to-move scores to White-oriented centipawns and serializes all access
// through a single Guard.
package oracle

import (
	"context"
	"errors"
	"time"
)

// Sentinel errors for engine failures.
var (
	// ErrUnavailable indicates the engine could not be started.
	ErrUnavailable = errors.New("oracle: engine unavailable")

	// ErrNoScore indicates the engine returned no usable score.
	ErrNoScore = errors.New("oracle: no score in engine output")

	// ErrClosed indicates the guard has been closed.
	ErrClosed = errors.New("oracle: closed")
)

// Limit bounds a single engine search.
// A zero Depth with a positive MoveTime searches for a fixed time.
type Limit struct {
	Depth    int
	MoveTime time.Duration
}

// Depth returns a depth-limited search.
func Depth(n int) Limit {
	return Limit{Depth: n}
}

// MoveTime returns a time-limited search.
func MoveTime(d time.Duration) Limit {
	return Limit{MoveTime: d}
}

// Info is one analysed line as reported by the engine.
type Info struct {
	// MultiPV is the 1-based rank of the line.
	MultiPV int

	// Depth is the search depth reached.
	Depth int

	// Score is relative to the side to move.
	Score Score

	// PV is the principal variation in UCI notation.
	PV []string
}

// Engine is a chess engine that analyses positions.
// Implementations need not be safe for concurrent use; Guard serializes them.
type Engine interface {
	// Analyse searches fen and returns up to multiPV lines, best first.
	Analyse(ctx context.Context, fen string, limit Limit, multiPV int) ([]Info, error)

	// Play returns the engine's chosen move in UCI notation.
	Play(ctx context.Context, fen string, limit Limit) (string, error)

	// Close terminates the engine.
	Close() error
}
