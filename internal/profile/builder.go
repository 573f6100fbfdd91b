package profile

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sort"
	"time"

	"github.com/notnil/chess"
	"go.uber.org/zap"
	"gonum.org/v1/gonum/stat"

	"github.com/discochess/coach/internal/cpl"
	"github.com/discochess/coach/internal/oracle"
	"github.com/discochess/coach/internal/phase"
	"github.com/discochess/coach/internal/rules"
	"github.com/discochess/coach/internal/scorer"
	"github.com/discochess/coach/internal/stats"
	"github.com/discochess/coach/internal/style"
)

// Defaults for a profile build.
const (
	DefaultMaxGames = 200
	DefaultMaxPlies = 120
	DefaultDepth    = 12

	maxOpenings = 5
)

// Evaluator is the subset of oracle.Evaluator used while building.
type Evaluator interface {
	Evaluate(ctx context.Context, fen string, limit oracle.Limit) (int, error)
	BestMove(ctx context.Context, fen string, limit oracle.Limit) (string, error)
}

// Compile-time check that oracle.Evaluator implements Evaluator.
var _ Evaluator = (*oracle.Evaluator)(nil)

// Builder aggregates games into a Profile.
// A Builder holds no per-build state and may be reused.
type Builder struct {
	maxGames   int
	maxPlies   int
	limit      oracle.Limit
	thresholds style.Thresholds
	progress   ProgressFunc
	stats      stats.Collector
	logger     *zap.Logger
	now        func() time.Time
}

// NewBuilder creates a Builder.
func NewBuilder(opts ...Option) *Builder {
	cfg := defaultOptions()
	for _, opt := range opts {
		opt.apply(&cfg)
	}
	return &Builder{
		maxGames:   cfg.maxGames,
		maxPlies:   cfg.maxPlies,
		limit:      oracle.Depth(cfg.depth),
		thresholds: cfg.thresholds,
		progress:   cfg.progress,
		stats:      cfg.stats,
		logger:     cfg.logger.Named("profile"),
		now:        cfg.now,
	}
}

// Build reads PGN games from r and profiles the games username played.
// The caller must hold exclusive access to ev for the whole call.
//
// Games username did not play, games that fail to parse, and games whose
// starting position cannot be evaluated are skipped. When a later position
// cannot be evaluated, the rest of that game is skipped. Context errors
// abort the build.
func (b *Builder) Build(ctx context.Context, username string, r io.Reader, ev Evaluator) (*Profile, error) {
	start := b.now()
	t := newTally(b.thresholds)
	sc := rules.NewScanner(r)

	for t.games < b.maxGames {
		g, err := sc.Next()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("reading games: %w", err)
		}

		side, ok := g.Side(username)
		if !ok {
			continue
		}

		if err := b.walk(ctx, g, side, ev, t); err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			t.skipped++
			b.stats.IncCounter(stats.MetricGamesSkipped, 1)
			b.logger.Debug("game skipped", zap.String("username", username), zap.Error(err))
		}

		b.report(Progress{
			Username:     username,
			Games:        t.games,
			MaxGames:     b.maxGames,
			Moves:        t.userMoves,
			GamesSkipped: t.skipped,
			StartTime:    start,
		})
	}

	p := t.profile(username)
	p.BuiltAt = b.now().UTC()

	b.stats.IncCounter(stats.MetricProfilesBuilt, 1)
	b.stats.IncCounter(stats.MetricProfileGames, int64(t.games))
	b.stats.ObserveHistogram(stats.MetricProfileSeconds, b.now().Sub(start).Seconds())
	b.report(Progress{
		Username:     username,
		Games:        t.games,
		MaxGames:     b.maxGames,
		Moves:        t.userMoves,
		GamesSkipped: t.skipped + sc.Skipped(),
		StartTime:    start,
		Done:         true,
	})
	b.logger.Info("profile built",
		zap.String("username", username),
		zap.Int("games", t.games),
		zap.Int("moves", t.userMoves),
		zap.Int("skipped", t.skipped+sc.Skipped()),
		zap.Float64("avgCPL", p.AvgCPL),
	)

	return p, nil
}

// walk replays one game and feeds the player's moves into t. The game is
// only counted once its starting position has been evaluated.
func (b *Builder) walk(ctx context.Context, g *rules.Game, side chess.Color, ev Evaluator, t *tally) error {
	positions := g.Positions()
	moves := g.Moves()

	prev, err := ev.Evaluate(ctx, positions[0].FEN(), b.limit)
	if err != nil {
		return fmt.Errorf("evaluating start position: %w", err)
	}

	opening := g.Opening()
	t.startGame(opening)
	defer t.style.EndGame()

	for i, move := range moves {
		ply := i + 1
		if ply > b.maxPlies {
			break
		}

		before, after := positions[i], positions[i+1]
		mine := before.Turn() == side
		if mine {
			t.userMoves++
			t.style.Observe(style.Move{
				Ply:     ply,
				Queen:   before.MovesQueen(move),
				Castle:  rules.IsCastle(move),
				Capture: rules.IsCapture(move),
				Check:   rules.GivesCheck(move),
			})
		}

		curr, err := ev.Evaluate(ctx, after.FEN(), b.limit)
		if err != nil {
			// The game still counts; only its remaining moves are lost.
			if ctx.Err() != nil {
				return err
			}
			b.logger.Debug("evaluation failed, skipping rest of game",
				zap.Int("ply", ply), zap.Error(err))
			return nil
		}

		if mine {
			eval := scorer.Score(ply, side, after.FEN(), prev, curr)
			if t.record(eval) && eval.CPL >= cpl.ProofMinCPL {
				best, err := ev.BestMove(ctx, before.FEN(), b.limit)
				if err != nil && ctx.Err() != nil {
					return err
				}
				t.proofs = append(t.proofs, Proof{
					FEN:        before.FEN(),
					PlayedMove: move.String(),
					BestMove:   best,
					CPL:        eval.CPL,
					Phase:      eval.Phase,
					Label:      eval.Label,
					Opening:    opening,
					MoveNumber: ply/2 + 1,
				})
			}
		}
		prev = curr
	}
	return nil
}

func (b *Builder) report(p Progress) {
	if b.progress != nil {
		b.progress(p)
	}
}

// tally accumulates one build.
type tally struct {
	games     int
	skipped   int
	userMoves int

	losses     []float64
	phaseSum   map[phase.Phase]int
	phaseCount map[phase.Phase]int
	labels     map[cpl.Label]int

	openings     map[string]int
	openingOrder []string
	proofs       []Proof
	style        *style.Tracker
}

func newTally(th style.Thresholds) *tally {
	return &tally{
		phaseSum:   make(map[phase.Phase]int),
		phaseCount: make(map[phase.Phase]int),
		labels:     make(map[cpl.Label]int),
		openings:   make(map[string]int),
		style:      style.NewTracker(th),
	}
}

func (t *tally) startGame(opening string) {
	t.games++
	if opening == "" {
		return
	}
	if _, ok := t.openings[opening]; !ok {
		t.openingOrder = append(t.openingOrder, opening)
	}
	t.openings[opening]++
}

// record adds a scored move to the CPL statistics. Moves touching forced
// mate, and moves from positions already lost, are left out.
func (t *tally) record(e scorer.Evaluation) bool {
	if e.Mate() || e.BeforePOV < cpl.IgnorePositionBelow {
		return false
	}
	t.losses = append(t.losses, float64(e.CPL))
	t.phaseSum[e.Phase] += e.CPL
	t.phaseCount[e.Phase]++
	t.labels[e.Label]++
	return true
}

func (t *tally) phaseAvg(p phase.Phase) float64 {
	if t.phaseCount[p] == 0 {
		return 0
	}
	return float64(t.phaseSum[p]) / float64(t.phaseCount[p])
}

func (t *tally) rate(l cpl.Label) float64 {
	if t.userMoves == 0 {
		return 0
	}
	return round(float64(t.labels[l])/float64(t.userMoves), 4)
}

// weakPhase returns the phase with the highest average CPL. Ties go to the
// earlier phase; with no games the answer is middlegame.
func (t *tally) weakPhase() phase.Phase {
	if t.games == 0 {
		return phase.Middlegame
	}
	weak := phase.All[0]
	for _, p := range phase.All[1:] {
		if t.phaseAvg(p) > t.phaseAvg(weak) {
			weak = p
		}
	}
	return weak
}

func (t *tally) topOpenings() []string {
	names := append([]string(nil), t.openingOrder...)
	sort.SliceStable(names, func(i, j int) bool {
		return t.openings[names[i]] > t.openings[names[j]]
	})
	if len(names) > maxOpenings {
		names = names[:maxOpenings]
	}
	return append([]string{}, names...)
}

func (t *tally) topProofs() []Proof {
	proofs := append([]Proof{}, t.proofs...)
	sort.SliceStable(proofs, func(i, j int) bool {
		return proofs[i].CPL > proofs[j].CPL
	})
	if len(proofs) > cpl.MaxProofs {
		proofs = proofs[:cpl.MaxProofs]
	}
	return proofs
}

func (t *tally) profile(username string) *Profile {
	weak := t.weakPhase()

	p := &Profile{
		Username:           username,
		GamesAnalyzed:      t.games,
		InaccuracyRate:     t.rate(cpl.Inaccuracy),
		MistakeRate:        t.rate(cpl.Mistake),
		BlunderRate:        t.rate(cpl.Blunder),
		WeakPhase:          weak,
		OpeningPreferences: t.topOpenings(),
		Style:              t.style.Flags(),
		PhaseBreakdown: PhaseBreakdown{
			OpeningAvgCPL:    round(t.phaseAvg(phase.Opening), 2),
			MiddlegameAvgCPL: round(t.phaseAvg(phase.Middlegame), 2),
			EndgameAvgCPL:    round(t.phaseAvg(phase.Endgame), 2),
			WeakPhase:        weak,
		},
		Proofs:          t.topProofs(),
		MovesAnalyzed:   len(t.losses),
		AggressionRatio: round(t.style.AggressionRatio(), 4),
	}

	if len(t.losses) > 0 {
		mean, std := stat.MeanStdDev(t.losses, nil)
		sorted := append([]float64(nil), t.losses...)
		sort.Float64s(sorted)
		p.AvgCPL = round(mean, 2)
		p.CPLMedian = round(stat.Quantile(0.5, stat.Empirical, sorted, nil), 2)
		if len(t.losses) > 1 {
			p.CPLStdDev = round(std, 2)
		}
	}
	return p
}
