// Package scorer measures the quality of a single move by comparing engine
// evaluations before and after it.
package scorer

import (
	"context"
	"fmt"

	"github.com/notnil/chess"

	"github.com/discochess/coach/internal/cpl"
	"github.com/discochess/coach/internal/oracle"
	"github.com/discochess/coach/internal/phase"
	"github.com/discochess/coach/internal/rules"
)

// Evaluator is the subset of oracle.Evaluator used for scoring.
type Evaluator interface {
	Evaluate(ctx context.Context, fen string, limit oracle.Limit) (int, error)
	Line(ctx context.Context, fen string, limit oracle.Limit) (oracle.Line, error)
}

// Compile-time check that oracle.Evaluator implements Evaluator.
var _ Evaluator = (*oracle.Evaluator)(nil)

// Evaluation is the verdict on one move.
type Evaluation struct {
	// Ply is the 1-based ply of the move.
	Ply int

	// CPL is the centipawn loss, in [0, cpl.MaxPerMove].
	CPL   int
	Label cpl.Label
	Phase phase.Phase

	// BeforePOV and AfterPOV are the evaluations from the mover's side.
	BeforePOV int
	AfterPOV  int
}

// Mate reports whether either evaluation is in forced-mate range.
func (e Evaluation) Mate() bool {
	return cpl.IsMate(e.BeforePOV) || cpl.IsMate(e.AfterPOV)
}

// Deep is an Evaluation with the principal variations behind it.
type Deep struct {
	Evaluation

	// BestMove is the engine's preferred move in UCI notation, or "".
	BestMove string

	// BestLine and PlayedLine are in SAN. PlayedLine starts with the
	// played move.
	BestLine   []string
	PlayedLine []string

	// EvalBest and EvalPlayed are from the mover's side.
	EvalBest   int
	EvalPlayed int
	EvalDelta  int
	Depth      int
}

// Score computes the verdict from two White-oriented evaluations.
// It does not consult the engine.
func Score(ply int, mover chess.Color, afterFEN string, beforeWhite, afterWhite int) Evaluation {
	before := cpl.POV(beforeWhite, mover)
	after := cpl.POV(afterWhite, mover)
	loss := cpl.Loss(before, after)
	return Evaluation{
		Ply:       ply,
		CPL:       loss,
		Label:     cpl.LabelFor(loss),
		Phase:     phase.Classify(afterFEN, ply),
		BeforePOV: before,
		AfterPOV:  after,
	}
}

// Shallow scores move from two plain evaluations at the given limit.
func Shallow(ctx context.Context, ev Evaluator, before *rules.Position, move *chess.Move, limit oracle.Limit) (Evaluation, error) {
	after := before.Apply(move)

	b, err := ev.Evaluate(ctx, before.FEN(), limit)
	if err != nil {
		return Evaluation{}, fmt.Errorf("evaluating before %s: %w", move, err)
	}
	a, err := ev.Evaluate(ctx, after.FEN(), limit)
	if err != nil {
		return Evaluation{}, fmt.Errorf("evaluating after %s: %w", move, err)
	}

	return Score(before.PlyIndex(), before.Turn(), after.FEN(), b, a), nil
}

// DeepScore scores move from the best line of each position and renders
// both lines in SAN, truncated to pvLen moves.
func DeepScore(ctx context.Context, ev Evaluator, before *rules.Position, move *chess.Move, limit oracle.Limit, pvLen int) (Deep, error) {
	after := before.Apply(move)

	best, err := ev.Line(ctx, before.FEN(), limit)
	if err != nil {
		return Deep{}, fmt.Errorf("best line: %w", err)
	}
	played, err := ev.Line(ctx, after.FEN(), limit)
	if err != nil {
		return Deep{}, fmt.Errorf("played line: %w", err)
	}

	eval := Score(before.PlyIndex(), before.Turn(), after.FEN(), best.Score, played.Score)

	d := Deep{
		Evaluation: eval,
		BestLine:   rules.SANLine(before, best.PV, pvLen),
		PlayedLine: rules.SANLine(before, append([]string{move.String()}, played.PV...), pvLen),
		EvalBest:   eval.BeforePOV,
		EvalPlayed: eval.AfterPOV,
		EvalDelta:  eval.BeforePOV - eval.AfterPOV,
		Depth:      limit.Depth,
	}
	if len(best.PV) > 0 {
		d.BestMove = best.PV[0]
	}
	return d, nil
}
