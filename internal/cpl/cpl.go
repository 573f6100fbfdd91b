// Package cpl defines centipawn-loss scoring and the thresholds shared by
// live move analysis and profile aggregation.
package cpl

import "github.com/notnil/chess"

// Label thresholds in centipawns. A loss at or above a threshold earns the label.
const (
	InaccuracyCPL = 50
	MistakeCPL    = 100
	BlunderCPL    = 200
)

// Scoring bounds.
const (
	// MaxPerMove caps the loss charged for a single move.
	MaxPerMove = 300

	// MateScoreAbs is the magnitude at or above which an evaluation is
	// treated as a forced mate.
	MateScoreAbs = 10000

	// MateSentinel is the value a forced mate collapses to.
	MateSentinel = 100000
)

// Profile aggregation constants.
const (
	// IgnorePositionBelow excludes moves made from already lost positions.
	IgnorePositionBelow = -500

	// ProofMinCPL is the loss at which a move becomes a proof position.
	ProofMinCPL = 150

	// MaxProofs is the number of proof positions kept per profile.
	MaxProofs = 10
)

// Label classifies the quality of a single move.
type Label string

// Move labels, from best to worst.
const (
	Good       Label = "good"
	Inaccuracy Label = "inaccuracy"
	Mistake    Label = "mistake"
	Blunder    Label = "blunder"
)

// LabelFor returns the label for a centipawn loss.
func LabelFor(loss int) Label {
	switch {
	case loss >= BlunderCPL:
		return Blunder
	case loss >= MistakeCPL:
		return Mistake
	case loss >= InaccuracyCPL:
		return Inaccuracy
	default:
		return Good
	}
}

// IsError reports whether the label is a mistake or a blunder.
func (l Label) IsError() bool {
	return l == Mistake || l == Blunder
}

// POV converts a White-oriented score to the mover's point of view.
func POV(score int, mover chess.Color) int {
	if mover == chess.Black {
		return -score
	}
	return score
}

// IsMate reports whether a score is in forced-mate territory.
func IsMate(score int) bool {
	return abs(score) >= MateScoreAbs
}

// Loss returns the centipawn loss between two scores taken from the mover's
// point of view, before and after the move.
//
// Any mate-range score on either side yields MaxPerMove. Otherwise the loss
// is the score drop clamped to [0, MaxPerMove].
func Loss(beforePOV, afterPOV int) int {
	if IsMate(beforePOV) || IsMate(afterPOV) {
		return MaxPerMove
	}
	drop := beforePOV - afterPOV
	if drop < 0 {
		return 0
	}
	return min(drop, MaxPerMove)
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}
