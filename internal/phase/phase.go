// Package phase classifies a position as opening, middlegame or endgame.
package phase

import "github.com/discochess/coach/internal/fen"

// Phase is a coarse game stage.
type Phase string

// Game phases.
const (
	Opening    Phase = "opening"
	Middlegame Phase = "middlegame"
	Endgame    Phase = "endgame"
)

// All lists the phases in tie-break precedence order.
var All = []Phase{Opening, Middlegame, Endgame}

const (
	// OpeningMaxPly is the last ply that still counts as the opening.
	OpeningMaxPly = 16

	// EndgameMaxPoints is the combined non-pawn material of both sides at
	// or below which a position counts as an endgame even with queens.
	EndgameMaxPoints = 14
)

// Classify returns the phase of the position reached at the given ply.
// An unparseable position past the opening is treated as a middlegame.
func Classify(fenStr string, ply int) Phase {
	if ply <= OpeningMaxPly {
		return Opening
	}

	m, err := fen.ParseMaterial(fenStr)
	if err != nil {
		return Middlegame
	}

	if m.Queens() == 0 || m.NonPawnPoints() <= EndgameMaxPoints {
		return Endgame
	}
	return Middlegame
}
