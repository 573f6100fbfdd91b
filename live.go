package coach

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/notnil/chess"
	"go.uber.org/zap"

	"github.com/discochess/coach/internal/feedback"
	"github.com/discochess/coach/internal/livecache"
	"github.com/discochess/coach/internal/oracle"
	"github.com/discochess/coach/internal/rules"
	"github.com/discochess/coach/internal/scorer"
	"github.com/discochess/coach/internal/stats"
	"github.com/discochess/coach/internal/store"
)

// Defaults for live analysis.
const (
	DefaultLiveDepth   = 10
	DefaultDeepDepth   = 14
	DefaultPVLen       = 8
	DefaultSuggestions = 5
	DefaultPredictTime = 350 * time.Millisecond
)

const (
	errorFeedback    = "This move worsens your position. Focus on safety, development, and solid plans."
	weaknessFeedback = " This matches your usual weakness in the "
)

// AnalyzeMove scores a single move at a shallow depth and suggests better
// moves. Results are not cached.
func (c *Client) AnalyzeMove(ctx context.Context, req MoveRequest) (*MoveAnalysis, error) {
	if err := c.checkOpen(); err != nil {
		return nil, err
	}
	before, move, err := parseRequest(req)
	if err != nil {
		return nil, err
	}
	limit := oracle.Depth(orDefault(req.Depth, DefaultLiveDepth))

	var (
		eval      scorer.Evaluation
		suggested []string
	)
	err = c.guard.Do(ctx, func(ev *oracle.Evaluator) error {
		var err error
		if eval, err = scorer.Shallow(ctx, ev, before, move, limit); err != nil {
			return err
		}
		suggested, err = ev.TopMoves(ctx, before.FEN(), limit, DefaultSuggestions)
		return err
	})
	if err != nil {
		return nil, err
	}

	res := &MoveAnalysis{
		CPL:                    eval.CPL,
		Label:                  eval.Label,
		Phase:                  eval.Phase,
		MatchesProfileWeakness: c.matchesWeakness(ctx, req.Username, eval),
		SuggestedGoodMoves:     suggested,
	}
	if eval.Label.IsError() {
		res.Feedback = errorFeedback
		if res.MatchesProfileWeakness {
			res.Feedback += weaknessFeedback + string(eval.Phase) + "."
		}
	}

	c.observe(eval)
	return res, nil
}

// AnalyzeMoveDeep scores a move from the best line of each position and
// returns both lines. Results are cached per request.
func (c *Client) AnalyzeMoveDeep(ctx context.Context, req MoveRequest) (*DeepAnalysis, error) {
	if err := c.checkOpen(); err != nil {
		return nil, err
	}
	before, move, err := parseRequest(req)
	if err != nil {
		return nil, err
	}
	depth := orDefault(req.Depth, DefaultDeepDepth)
	pvLen := orDefault(req.PVLen, DefaultPVLen)
	key := livecache.Fingerprint(req.Username, req.Move, strings.TrimSpace(req.FEN), depth, pvLen)

	res, cached, err := c.deep.GetOrCompute(ctx, key, func(ctx context.Context) (DeepAnalysis, error) {
		var d scorer.Deep
		err := c.guard.Do(ctx, func(ev *oracle.Evaluator) error {
			var err error
			d, err = scorer.DeepScore(ctx, ev, before, move, oracle.Depth(depth), pvLen)
			return err
		})
		if err != nil {
			return DeepAnalysis{}, err
		}
		c.observe(d.Evaluation)
		return deepAnalysis(d, c.matchesWeakness(ctx, req.Username, d.Evaluation)), nil
	})
	if err != nil {
		return nil, err
	}

	c.logger.Debug("deep analysis",
		zap.String("username", req.Username),
		zap.String("move", req.Move),
		zap.Bool("cached", cached),
	)
	return &res, nil
}

// ExplainMove returns a deep analysis with a natural-language explanation.
// Generated explanations are cached per request; the text is produced
// without holding the engine.
func (c *Client) ExplainMove(ctx context.Context, req MoveRequest) (*Explanation, error) {
	if err := c.checkOpen(); err != nil {
		return nil, err
	}
	if _, _, err := parseRequest(req); err != nil {
		return nil, err
	}
	depth := orDefault(req.Depth, DefaultDeepDepth)
	pvLen := orDefault(req.PVLen, DefaultPVLen)
	key := livecache.Fingerprint(req.Username, req.Move, strings.TrimSpace(req.FEN), depth, pvLen)

	res, _, err := c.explains.GetOrCompute(ctx, key, func(ctx context.Context) (Explanation, error) {
		a, err := c.AnalyzeMoveDeep(ctx, req)
		if err != nil {
			return Explanation{}, err
		}
		p, _ := c.storedProfile(ctx, req.Username)
		text := c.coach.Explain(ctx, p, feedback.Move{
			FEN:             req.FEN,
			Move:            req.Move,
			Analysis:        a.scorerDeep(),
			MatchesWeakness: a.MatchesProfileWeakness,
		})
		out := Explanation{Analysis: *a, Explanation: text}
		if text == feedback.UnavailableMessage {
			return Explanation{}, fallbackExplanation{out}
		}
		return out, nil
	})
	var fallback fallbackExplanation
	if errors.As(err, &fallback) {
		return &fallback.res, nil
	}
	if err != nil {
		return nil, err
	}
	return &res, nil
}

// fallbackExplanation carries an explanation that must not be cached
// because no text was generated.
type fallbackExplanation struct {
	res Explanation
}

func (fallbackExplanation) Error() string { return "explanation not generated" }

// BestMove returns the engine's move for fen in SAN, searching for
// movetime (DefaultPredictTime when zero).
func (c *Client) BestMove(ctx context.Context, fen string, movetime time.Duration) (*Prediction, error) {
	if err := c.checkOpen(); err != nil {
		return nil, err
	}
	pos, err := rules.ParseFEN(fen)
	if err != nil {
		return nil, err
	}
	if len(pos.LegalMoves()) == 0 {
		return &Prediction{Message: "Game over"}, nil
	}
	if movetime <= 0 {
		movetime = DefaultPredictTime
	}

	var uciMove string
	err = c.guard.Do(ctx, func(ev *oracle.Evaluator) error {
		var err error
		uciMove, err = ev.Play(ctx, pos.FEN(), oracle.MoveTime(movetime))
		return err
	})
	if err != nil {
		return nil, err
	}

	m, err := pos.ParseUCI(uciMove)
	if err != nil {
		return nil, err
	}
	return &Prediction{Move: pos.SAN(m), Message: "Engine move"}, nil
}

// matchesWeakness reports whether a mistake or blunder fell in the phase
// the player's stored profile marks as weakest.
func (c *Client) matchesWeakness(ctx context.Context, username string, e scorer.Evaluation) bool {
	if !e.Label.IsError() {
		return false
	}
	p, err := c.storedProfile(ctx, username)
	if err != nil {
		return false
	}
	return p.WeakPhase == e.Phase
}

func (c *Client) observe(e scorer.Evaluation) {
	c.stats.IncCounter(stats.MetricLiveAnalyses, 1)
	c.stats.ObserveHistogram(stats.MetricMoveCPL, float64(e.CPL))
}

// parseRequest validates a move request without touching the engine.
func parseRequest(req MoveRequest) (*rules.Position, *chess.Move, error) {
	if err := store.ValidateUsername(req.Username); err != nil {
		return nil, nil, err
	}
	pos, err := rules.ParseFEN(req.FEN)
	if err != nil {
		return nil, nil, err
	}
	move, err := pos.ParseUCI(strings.TrimSpace(req.Move))
	if err != nil {
		return nil, nil, err
	}
	return pos, move, nil
}

func deepAnalysis(d scorer.Deep, matches bool) DeepAnalysis {
	return DeepAnalysis{
		CPL:                    d.CPL,
		Label:                  d.Label,
		Phase:                  d.Phase,
		MatchesProfileWeakness: matches,
		BestMove:               d.BestMove,
		BestLine:               d.BestLine,
		PlayedLine:             d.PlayedLine,
		EvalBest:               d.EvalBest,
		EvalPlayed:             d.EvalPlayed,
		EvalDelta:              d.EvalDelta,
		Depth:                  d.Depth,
	}
}

func (a *DeepAnalysis) scorerDeep() scorer.Deep {
	return scorer.Deep{
		Evaluation: scorer.Evaluation{
			CPL:       a.CPL,
			Label:     a.Label,
			Phase:     a.Phase,
			BeforePOV: a.EvalBest,
			AfterPOV:  a.EvalPlayed,
		},
		BestMove:   a.BestMove,
		BestLine:   a.BestLine,
		PlayedLine: a.PlayedLine,
		EvalBest:   a.EvalBest,
		EvalPlayed: a.EvalPlayed,
		EvalDelta:  a.EvalDelta,
		Depth:      a.Depth,
	}
}

func orDefault(n, def int) int {
	if n <= 0 {
		return def
	}
	return n
}
