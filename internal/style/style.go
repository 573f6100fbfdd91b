// Package style derives coarse playing-style flags from a player's moves.
package style

// Thresholds tune the style flags.
type Thresholds struct {
	// EarlyQueenPly is the last ply at which a queen move counts as early.
	EarlyQueenPly int

	// LateCastlePly is the average first-castle ply above which castling
	// counts as late.
	LateCastlePly float64

	// AggressiveRatio is the share of captures and checks at or above
	// which play counts as aggressive.
	AggressiveRatio float64
}

// DefaultThresholds returns the standard thresholds.
func DefaultThresholds() Thresholds {
	return Thresholds{
		EarlyQueenPly:   20,
		LateCastlePly:   16,
		AggressiveRatio: 0.45,
	}
}

// Flags summarises a player's style.
type Flags struct {
	Aggressive   bool `json:"aggressive"`
	EarlyQueen   bool `json:"early_queen"`
	LateCastling bool `json:"late_castling"`
}

// Move is one of the tracked player's moves.
type Move struct {
	Ply     int
	Queen   bool
	Castle  bool
	Capture bool
	Check   bool
}

// Tracker accumulates style evidence across games.
// It is not safe for concurrent use.
type Tracker struct {
	thresholds Thresholds

	moves      int
	aggressive int
	earlyQueen bool
	castlePlys []int
	castled    bool
}

// NewTracker creates a Tracker with the given thresholds.
func NewTracker(t Thresholds) *Tracker {
	return &Tracker{thresholds: t}
}

// Observe records one move by the tracked player.
func (t *Tracker) Observe(m Move) {
	t.moves++
	if m.Capture || m.Check {
		t.aggressive++
	}
	if m.Queen && m.Ply <= t.thresholds.EarlyQueenPly {
		t.earlyQueen = true
	}
	if m.Castle && !t.castled {
		t.castled = true
		t.castlePlys = append(t.castlePlys, m.Ply)
	}
}

// EndGame marks a game boundary. Only the first castle of each game counts.
func (t *Tracker) EndGame() {
	t.castled = false
}

// AggressionRatio returns the share of moves that captured or gave check.
func (t *Tracker) AggressionRatio() float64 {
	if t.moves == 0 {
		return 0
	}
	return float64(t.aggressive) / float64(t.moves)
}

// AverageCastlePly returns the mean first-castle ply, and false if the
// player never castled.
func (t *Tracker) AverageCastlePly() (float64, bool) {
	if len(t.castlePlys) == 0 {
		return 0, false
	}
	var sum int
	for _, p := range t.castlePlys {
		sum += p
	}
	return float64(sum) / float64(len(t.castlePlys)), true
}

// Flags returns the style flags for everything observed so far.
// A player who never castled is flagged for late castling.
func (t *Tracker) Flags() Flags {
	avg, castled := t.AverageCastlePly()
	return Flags{
		Aggressive:   t.AggressionRatio() >= t.thresholds.AggressiveRatio,
		EarlyQueen:   t.earlyQueen,
		LateCastling: !castled || avg > t.thresholds.LateCastlePly,
	}
}
