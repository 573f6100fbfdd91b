package oracle

import (
	"context"
	"fmt"
	"time"

	"github.com/notnil/chess"
	"go.uber.org/zap"

	"github.com/discochess/coach/internal/fen"
	"github.com/discochess/coach/internal/stats"
)

// Line is a scored principal variation from White's point of view.
type Line struct {
	// Score is White-oriented centipawns; forced mates are ±cpl.MateSentinel.
	Score int

	// PV is the principal variation in UCI notation.
	PV []string
}

// Evaluator turns raw engine output into White-oriented evaluations.
// It is only handed out by Guard.Do and must not be retained.
type Evaluator struct {
	engine Engine
	stats  stats.Collector
	logger *zap.Logger
}

// NewEvaluator creates an Evaluator around engine.
// Callers outside tests should go through a Guard instead.
func NewEvaluator(engine Engine, opts ...Option) *Evaluator {
	cfg := defaultOptions()
	for _, opt := range opts {
		opt.apply(&cfg)
	}
	return &Evaluator{
		engine: engine,
		stats:  cfg.stats,
		logger: cfg.logger,
	}
}

// Evaluate returns the White-oriented centipawn evaluation of fen.
func (e *Evaluator) Evaluate(ctx context.Context, fenStr string, limit Limit) (int, error) {
	line, err := e.Line(ctx, fenStr, limit)
	if err != nil {
		return 0, err
	}
	return line.Score, nil
}

// Line returns the best line and its White-oriented score.
func (e *Evaluator) Line(ctx context.Context, fenStr string, limit Limit) (Line, error) {
	turn, err := turnOf(fenStr)
	if err != nil {
		return Line{}, err
	}

	infos, err := e.analyse(ctx, fenStr, limit, 1)
	if err != nil {
		return Line{}, err
	}
	if len(infos) == 0 {
		return Line{}, fmt.Errorf("%w: %s", ErrNoScore, fenStr)
	}

	score, ok := infos[0].Score.White(turn)
	if !ok {
		return Line{}, fmt.Errorf("%w: %s", ErrNoScore, fenStr)
	}
	return Line{Score: score, PV: infos[0].PV}, nil
}

// BestMove returns the first move of the best line in UCI notation.
// It returns "" when the engine reports no principal variation.
func (e *Evaluator) BestMove(ctx context.Context, fenStr string, limit Limit) (string, error) {
	infos, err := e.analyse(ctx, fenStr, limit, 1)
	if err != nil {
		return "", err
	}
	if len(infos) == 0 || len(infos[0].PV) == 0 {
		return "", nil
	}
	return infos[0].PV[0], nil
}

// TopMoves returns the first move of each of the k best lines, in rank
// order and without duplicates.
func (e *Evaluator) TopMoves(ctx context.Context, fenStr string, limit Limit, k int) ([]string, error) {
	infos, err := e.analyse(ctx, fenStr, limit, k)
	if err != nil {
		return nil, err
	}

	seen := make(map[string]struct{}, len(infos))
	moves := make([]string, 0, len(infos))
	for _, info := range infos {
		if len(info.PV) == 0 {
			continue
		}
		m := info.PV[0]
		if _, ok := seen[m]; ok {
			continue
		}
		seen[m] = struct{}{}
		moves = append(moves, m)
		if len(moves) == k {
			break
		}
	}
	return moves, nil
}

// Play asks the engine to choose a move.
func (e *Evaluator) Play(ctx context.Context, fenStr string, limit Limit) (string, error) {
	e.stats.IncCounter(stats.MetricOracleCalls, 1)
	start := time.Now()
	move, err := e.engine.Play(ctx, fenStr, limit)
	e.stats.ObserveHistogram(stats.MetricOracleSeconds, time.Since(start).Seconds())
	if err != nil {
		e.stats.IncCounter(stats.MetricOracleErrors, 1)
		return "", fmt.Errorf("playing %s: %w", fenStr, err)
	}
	return move, nil
}

func (e *Evaluator) analyse(ctx context.Context, fenStr string, limit Limit, multiPV int) ([]Info, error) {
	e.stats.IncCounter(stats.MetricOracleCalls, 1)
	start := time.Now()
	infos, err := e.engine.Analyse(ctx, fenStr, limit, multiPV)
	e.stats.ObserveHistogram(stats.MetricOracleSeconds, time.Since(start).Seconds())
	if err != nil {
		e.stats.IncCounter(stats.MetricOracleErrors, 1)
		e.logger.Debug("analysis failed", zap.String("fen", fenStr), zap.Error(err))
		return nil, fmt.Errorf("analysing %s: %w", fenStr, err)
	}
	return infos, nil
}

func turnOf(fenStr string) (chess.Color, error) {
	side, err := fen.SideToMove(fenStr)
	if err != nil {
		return chess.NoColor, fmt.Errorf("side to move: %w", err)
	}
	if side == "b" {
		return chess.Black, nil
	}
	return chess.White, nil
}
