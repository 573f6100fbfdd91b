package coach

import (
	"context"
	"fmt"
	"math"

	"github.com/discochess/coach/internal/cpl"
	"github.com/discochess/coach/internal/oracle"
	"github.com/discochess/coach/internal/rules"
)

// Defaults for whole-game analysis.
const (
	DefaultGameDepth     = 8
	DefaultRecentLimit   = 20
	MaxGameAnalysisPlies = 400
)

// AnalyzeGame reviews every move of the first game in pgn at depth
// (DefaultGameDepth when zero). source names the game in the result.
//
// Each position is searched once; its score rates the move that led to it
// and its best line names the better alternative to the next move.
func (c *Client) AnalyzeGame(ctx context.Context, source, pgn string, depth int) (*GameAnalysis, error) {
	if err := c.checkOpen(); err != nil {
		return nil, err
	}
	g, err := rules.ParseGame(pgn)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidPGN, err)
	}
	moves := g.Moves()
	if len(moves) == 0 {
		return nil, ErrInvalidPGN
	}
	if len(moves) > MaxGameAnalysisPlies {
		moves = moves[:MaxGameAnalysisPlies]
	}
	positions := g.Positions()[:len(moves)+1]
	limit := oracle.Depth(orDefault(depth, DefaultGameDepth))

	lines := make([]oracle.Line, len(positions))
	err = c.guard.Do(ctx, func(ev *oracle.Evaluator) error {
		for i, pos := range positions {
			line, err := ev.Line(ctx, pos.FEN(), limit)
			if err != nil {
				return fmt.Errorf("ply %d: %w", i, err)
			}
			lines[i] = line
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	r := &GameAnalysis{
		Source:        source,
		White:         g.Tag("White"),
		Black:         g.Tag("Black"),
		MovesAnalyzed: len(moves),
		Moves:         make([]ReviewedMove, 0, len(moves)),
	}
	total := 0
	for i, m := range moves {
		pos := positions[i]
		mover := pos.Turn()
		loss := cpl.Loss(cpl.POV(lines[i].Score, mover), cpl.POV(lines[i+1].Score, mover))
		label := cpl.LabelFor(loss)
		total += loss

		switch label {
		case cpl.Inaccuracy:
			r.Inaccuracies++
		case cpl.Mistake:
			r.Mistakes++
		case cpl.Blunder:
			r.Blunders++
		}

		best := ""
		if san := rules.SANLine(pos, lines[i].PV, 1); len(san) == 1 {
			best = san[0]
		}
		r.Moves = append(r.Moves, ReviewedMove{
			Ply:    i + 1,
			Played: pos.SAN(m),
			Best:   best,
			CPL:    loss,
			Label:  string(label),
		})
	}

	r.AvgCPL = total / len(moves)
	r.Accuracy = accuracy(r.AvgCPL)
	return r, nil
}

// AnalyzeAndStore analyzes a game and saves it to the history.
func (c *Client) AnalyzeAndStore(ctx context.Context, source, pgn string, depth int) (*GameAnalysis, error) {
	if c.history == nil {
		return nil, ErrNoHistory
	}
	r, err := c.AnalyzeGame(ctx, source, pgn, depth)
	if err != nil {
		return nil, err
	}
	if err := c.history.Save(ctx, r); err != nil {
		return nil, fmt.Errorf("saving analysis: %w", err)
	}
	return r, nil
}

// RecentAnalyses returns up to limit stored analyses, newest first
// (DefaultRecentLimit when zero).
func (c *Client) RecentAnalyses(ctx context.Context, limit int) ([]GameAnalysis, error) {
	if err := c.checkOpen(); err != nil {
		return nil, err
	}
	if c.history == nil {
		return nil, ErrNoHistory
	}
	return c.history.Recent(ctx, orDefault(limit, DefaultRecentLimit))
}

// accuracy maps an average CPL to a 0-100 score, one decimal place.
func accuracy(avgCPL int) float64 {
	a := 100 - float64(avgCPL)/10
	a = math.Max(0, math.Min(100, a))
	return math.Round(a*10) / 10
}
