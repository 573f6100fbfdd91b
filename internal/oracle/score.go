package oracle

import (
	"strconv"

	"github.com/notnil/chess"

	"github.com/discochess/coach/internal/cpl"
)

// Score is an engine score. At most one of Centipawns and Mate is set.
type Score struct {
	// Centipawns is the evaluation in centipawns.
	// Nil if the position has a forced mate.
	Centipawns *int

	// Mate is the number of moves until checkmate. Positive values mean
	// the side to move delivers mate.
	Mate *int
}

// CP returns a centipawn score.
func CP(n int) Score {
	return Score{Centipawns: &n}
}

// MateIn returns a mate score.
func MateIn(n int) Score {
	return Score{Mate: &n}
}

// Valid reports whether the score carries a value.
func (s Score) Valid() bool {
	return s.Centipawns != nil || s.Mate != nil
}

// IsMate returns true if the score is a forced checkmate.
func (s Score) IsMate() bool {
	return s.Mate != nil
}

// Relative returns the score in centipawns from the side to move.
// A forced mate collapses to plus or minus cpl.MateSentinel; "mate 0" means
// the side to move is already mated.
func (s Score) Relative() (int, bool) {
	switch {
	case s.Mate != nil:
		if *s.Mate > 0 {
			return cpl.MateSentinel, true
		}
		return -cpl.MateSentinel, true
	case s.Centipawns != nil:
		return *s.Centipawns, true
	default:
		return 0, false
	}
}

// White returns the score in centipawns from White's point of view, given
// the side to move of the analysed position.
func (s Score) White(turn chess.Color) (int, bool) {
	rel, ok := s.Relative()
	if !ok {
		return 0, false
	}
	return cpl.POV(rel, turn), true
}

// String returns a human-readable score.
// Examples: "+1.25", "-0.50", "#3", "#-5"
func (s Score) String() string {
	if s.Mate != nil {
		return "#" + strconv.Itoa(*s.Mate)
	}
	if s.Centipawns == nil {
		return "?"
	}
	return FormatCentipawns(*s.Centipawns)
}

// FormatCentipawns renders centipawns as signed pawns with two decimals.
// Mate-range values render as "#+" or "#-".
func FormatCentipawns(cp int) string {
	if cpl.IsMate(cp) {
		if cp > 0 {
			return "#+"
		}
		return "#-"
	}
	sign := "+"
	if cp < 0 {
		sign = "-"
		cp = -cp
	}
	whole := cp / 100
	frac := cp % 100
	if frac < 10 {
		return sign + strconv.Itoa(whole) + ".0" + strconv.Itoa(frac)
	}
	return sign + strconv.Itoa(whole) + "." + strconv.Itoa(frac)
}
