// Package profile builds a player profile from a history of games: average
// centipawn loss, error rates, the weakest game phase, style flags, favourite
// openings and the worst moves as proof positions.
package profile

import (
	"encoding/json"
	"fmt"
	"math"
	"time"

	"github.com/discochess/coach/internal/cpl"
	"github.com/discochess/coach/internal/phase"
	"github.com/discochess/coach/internal/style"
)

// Profile is the persisted summary of a player.
type Profile struct {
	Username           string         `json:"username"`
	GamesAnalyzed      int            `json:"games_analyzed"`
	AvgCPL             float64        `json:"avg_cpl"`
	InaccuracyRate     float64        `json:"inaccuracy_rate"`
	MistakeRate        float64        `json:"mistake_rate"`
	BlunderRate        float64        `json:"blunder_rate"`
	WeakPhase          phase.Phase    `json:"weak_phase"`
	OpeningPreferences []string       `json:"opening_preferences"`
	Style              style.Flags    `json:"style"`
	PhaseBreakdown     PhaseBreakdown `json:"phase_breakdown"`
	Proofs             []Proof        `json:"profile_proofs"`

	// MovesAnalyzed counts the player's moves that contributed a CPL.
	MovesAnalyzed   int       `json:"moves_analyzed"`
	AggressionRatio float64   `json:"aggression_ratio"`
	CPLStdDev       float64   `json:"cpl_stddev"`
	CPLMedian       float64   `json:"cpl_median"`
	BuiltAt         time.Time `json:"built_at"`
}

// PhaseBreakdown holds the average CPL per phase.
type PhaseBreakdown struct {
	OpeningAvgCPL    float64     `json:"opening_avg_cpl"`
	MiddlegameAvgCPL float64     `json:"middlegame_avg_cpl"`
	EndgameAvgCPL    float64     `json:"endgame_avg_cpl"`
	WeakPhase        phase.Phase `json:"weak_phase"`
}

// Avg returns the average CPL recorded for p.
func (b PhaseBreakdown) Avg(p phase.Phase) float64 {
	switch p {
	case phase.Opening:
		return b.OpeningAvgCPL
	case phase.Endgame:
		return b.EndgameAvgCPL
	default:
		return b.MiddlegameAvgCPL
	}
}

// Proof is a concrete costly move backing the profile.
type Proof struct {
	FEN        string      `json:"fen"`
	PlayedMove string      `json:"played_move"`
	BestMove   string      `json:"best_move"`
	CPL        int         `json:"cpl"`
	Phase      phase.Phase `json:"phase"`
	Label      cpl.Label   `json:"label"`
	Opening    string      `json:"opening"`
	MoveNumber int         `json:"move_number"`
}

// Marshal encodes a profile as indented JSON.
func Marshal(p *Profile) ([]byte, error) {
	data, err := json.MarshalIndent(p, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encoding profile: %w", err)
	}
	return data, nil
}

// Unmarshal decodes a profile from JSON.
func Unmarshal(data []byte) (*Profile, error) {
	var p Profile
	if err := json.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("decoding profile: %w", err)
	}
	if p.OpeningPreferences == nil {
		p.OpeningPreferences = []string{}
	}
	if p.Proofs == nil {
		p.Proofs = []Proof{}
	}
	return &p, nil
}

// round rounds x to the given number of decimal places.
func round(x float64, places int) float64 {
	pow := math.Pow(10, float64(places))
	return math.Round(x*pow) / pow
}
