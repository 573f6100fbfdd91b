// Package memoracle provides an in-memory engine with scripted evaluations.
// It is intended for tests and offline demos.
package memoracle

import (
	"context"
	"errors"
	"strings"
	"sync"

	"github.com/discochess/coach/internal/fen"
	"github.com/discochess/coach/internal/oracle"
	"github.com/discochess/coach/internal/rules"
)

// ErrClosed indicates the engine has been closed.
var ErrClosed = errors.New("memoracle: closed")

// Func produces the analysis for a position not scripted explicitly.
type Func func(fen string) []oracle.Info

// Engine answers analysis requests from a script.
// Positions are matched on the first four FEN fields.
// It is safe for concurrent use.
type Engine struct {
	mu       sync.Mutex
	lines    map[string][]oracle.Info
	failures map[string]error
	fallback Func
	calls    int
	closed   bool
}

// Compile-time check that Engine implements oracle.Engine.
var _ oracle.Engine = (*Engine)(nil)

// New creates an engine that falls back to fallback for unscripted positions.
// A nil fallback reports no lines, which evaluators treat as a missing score.
func New(fallback Func) *Engine {
	return &Engine{
		lines:    make(map[string][]oracle.Info),
		failures: make(map[string]error),
		fallback: fallback,
	}
}

// Set scripts the lines returned for a position, best first.
func (e *Engine) Set(fenStr string, infos ...oracle.Info) {
	e.mu.Lock()
	defer e.mu.Unlock()
	for i := range infos {
		if infos[i].MultiPV == 0 {
			infos[i].MultiPV = i + 1
		}
	}
	e.lines[key(fenStr)] = infos
}

// SetScore scripts a single line with a side-to-move centipawn score.
func (e *Engine) SetScore(fenStr string, cp int, pv ...string) {
	e.Set(fenStr, oracle.Info{MultiPV: 1, Score: oracle.CP(cp), PV: pv})
}

// Fail makes every request for a position return err.
func (e *Engine) Fail(fenStr string, err error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.failures[key(fenStr)] = err
}

// Calls returns the number of Analyse and Play requests served.
func (e *Engine) Calls() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.calls
}

// Analyse returns the scripted lines for fen, truncated to multiPV.
func (e *Engine) Analyse(ctx context.Context, fenStr string, limit oracle.Limit, multiPV int) ([]oracle.Info, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	e.mu.Lock()
	e.calls++
	closed := e.closed
	infos, ok := e.lines[key(fenStr)]
	err := e.failures[key(fenStr)]
	fallback := e.fallback
	e.mu.Unlock()

	if closed {
		return nil, ErrClosed
	}
	if err != nil {
		return nil, err
	}
	if !ok && fallback != nil {
		infos = fallback(fenStr)
	}
	if multiPV > 0 && len(infos) > multiPV {
		infos = infos[:multiPV]
	}
	return append([]oracle.Info(nil), infos...), nil
}

// Play returns the first move of the best scripted line.
func (e *Engine) Play(ctx context.Context, fenStr string, limit oracle.Limit) (string, error) {
	infos, err := e.Analyse(ctx, fenStr, limit, 1)
	if err != nil {
		return "", err
	}
	if len(infos) == 0 || len(infos[0].PV) == 0 {
		return "", nil
	}
	return infos[0].PV[0], nil
}

// Close marks the engine closed.
func (e *Engine) Close() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.closed = true
	return nil
}

// Material is a Func that scores positions by material balance from the
// side to move, with the first legal move as its principal variation.
func Material(fenStr string) []oracle.Info {
	m, err := fen.ParseMaterial(fenStr)
	if err != nil {
		return nil
	}
	white := 100*(m.WhitePawns-m.BlackPawns) +
		300*(m.WhiteKnights+m.WhiteBishops-m.BlackKnights-m.BlackBishops) +
		500*(m.WhiteRooks-m.BlackRooks) +
		900*(m.WhiteQueens-m.BlackQueens)

	side, err := fen.SideToMove(fenStr)
	if err != nil {
		return nil
	}
	score := white
	if side == "b" {
		score = -white
	}

	info := oracle.Info{MultiPV: 1, Depth: 1, Score: oracle.CP(score)}
	if pos, err := rules.ParseFEN(fenStr); err == nil {
		if moves := pos.LegalMoves(); len(moves) > 0 {
			info.PV = []string{moves[0]}
		}
	}
	return []oracle.Info{info}
}

func key(fenStr string) string {
	parts := strings.Fields(fenStr)
	if len(parts) > 4 {
		parts = parts[:4]
	}
	return strings.Join(parts, " ")
}
