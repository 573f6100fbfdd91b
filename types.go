package coach

import (
	"context"

	"github.com/discochess/coach/internal/cpl"
	"github.com/discochess/coach/internal/history"
	"github.com/discochess/coach/internal/phase"
	"github.com/discochess/coach/internal/profile"
)

// Label classifies a move by its centipawn loss.
type Label = cpl.Label

// Move labels.
const (
	Good       = cpl.Good
	Inaccuracy = cpl.Inaccuracy
	Mistake    = cpl.Mistake
	Blunder    = cpl.Blunder
)

// Phase is the stage of the game a position belongs to.
type Phase = phase.Phase

// Game phases.
const (
	Opening    = phase.Opening
	Middlegame = phase.Middlegame
	Endgame    = phase.Endgame
)

// Profile is the persisted summary of a player.
type Profile = profile.Profile

// Proof is a costly move backing a profile.
type Proof = profile.Proof

// GameAnalysis is a reviewed game as stored in the history.
type GameAnalysis = history.Record

// ReviewedMove is one ply of a GameAnalysis.
type ReviewedMove = history.Move

// History stores whole-game analyses.
type History interface {
	Save(ctx context.Context, r *GameAnalysis) error
	Recent(ctx context.Context, limit int) ([]GameAnalysis, error)
	Close() error
}

// MoveRequest identifies a move to analyze.
type MoveRequest struct {
	Username string `json:"username"`
	FEN      string `json:"fen"`

	// Move is in UCI notation, e.g. "e2e4" or "e7e8q".
	Move string `json:"move"`

	// Depth is the search depth. Zero selects the operation's default.
	Depth int `json:"depth,omitempty"`

	// PVLen caps the lines of a deep analysis. Zero selects DefaultPVLen.
	PVLen int `json:"pv_len,omitempty"`
}

// MoveAnalysis is the result of a live move analysis.
type MoveAnalysis struct {
	CPL                    int      `json:"cpl"`
	Label                  Label    `json:"label"`
	Phase                  Phase    `json:"phase"`
	MatchesProfileWeakness bool     `json:"matches_profile_weakness"`
	SuggestedGoodMoves     []string `json:"suggested_good_moves"`

	// Feedback is set for mistakes and blunders only.
	Feedback string `json:"feedback,omitempty"`
}

// DeepAnalysis is a move analysis with the lines behind it.
// Evaluations are in centipawns from the mover's side.
type DeepAnalysis struct {
	CPL                    int      `json:"cpl"`
	Label                  Label    `json:"label"`
	Phase                  Phase    `json:"phase"`
	MatchesProfileWeakness bool     `json:"matches_profile_weakness"`
	BestMove               string   `json:"best_move,omitempty"`
	BestLine               []string `json:"best_line"`
	PlayedLine             []string `json:"played_line"`
	EvalBest               int      `json:"eval_best"`
	EvalPlayed             int      `json:"eval_played"`
	EvalDelta              int      `json:"eval_delta"`
	Depth                  int      `json:"depth"`
}

// Explanation pairs a deep analysis with coaching text.
type Explanation struct {
	Analysis    DeepAnalysis `json:"analysis"`
	Explanation string       `json:"explanation"`
}

// FeedbackItem is the coaching text for one proof position.
type FeedbackItem struct {
	MoveNumber int    `json:"move_number"`
	PlayedMove string `json:"played_move"`
	Label      Label  `json:"label"`
	Feedback   string `json:"feedback"`
}

// FeedbackReport collects feedback on every proof of a profile.
type FeedbackReport struct {
	Username string         `json:"username"`
	Feedback []FeedbackItem `json:"feedback"`
}

// Prediction is the engine's move choice for a position.
type Prediction struct {
	// Move is in SAN, or "" when the game is over.
	Move    string `json:"move"`
	Message string `json:"message"`
}
