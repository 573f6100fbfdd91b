package main

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/discochess/coach"
)

var profileCmd = &cobra.Command{
	Use:   "profile [username]",
	Short: "Show a player's profile, building it if needed",
	Long: `Show the stored profile of a player. When none is stored, it is built
from games/<username>_chesscom.pgn or games/<username>.pgn and saved.

The engine is held for the whole build.`,
	Args: cobra.ExactArgs(1),
	RunE: runProfile,
}

var rebuildProfile bool

func init() {
	profileCmd.Flags().BoolVar(&rebuildProfile, "rebuild", false, "rebuild from the game archive even if a profile is stored")
	rootCmd.AddCommand(profileCmd)
}

func runProfile(cmd *cobra.Command, args []string) error {
	return withClient(cmd, func(ctx context.Context, client *coach.Client) error {
		get := client.Profile
		if rebuildProfile {
			get = client.RebuildProfile
		}
		p, err := get(ctx, args[0])
		if errors.Is(err, coach.ErrNoGames) {
			return fmt.Errorf("no games for %s; add games/%s.pgn to %s", args[0], args[0], dataDir)
		}
		if err != nil {
			return fmt.Errorf("profile failed: %w", err)
		}
		if outputJSON {
			return printJSON(p)
		}

		fmt.Printf("Player:       %s\n", p.Username)
		fmt.Printf("Games:        %d (%d moves)\n", p.GamesAnalyzed, p.MovesAnalyzed)
		fmt.Printf("Avg CPL:      %.1f (median %.1f, stddev %.1f)\n", p.AvgCPL, p.CPLMedian, p.CPLStdDev)
		fmt.Printf("Error rates:  %.3f inaccuracy, %.3f mistake, %.3f blunder\n", p.InaccuracyRate, p.MistakeRate, p.BlunderRate)
		fmt.Printf("Weak phase:   %s\n", p.WeakPhase)
		fmt.Printf("Phase CPL:    opening %.1f, middlegame %.1f, endgame %.1f\n",
			p.PhaseBreakdown.OpeningAvgCPL, p.PhaseBreakdown.MiddlegameAvgCPL, p.PhaseBreakdown.EndgameAvgCPL)
		fmt.Printf("Style:        early queen %t, late castle %t, aggressive %t\n",
			p.Style.EarlyQueen, p.Style.LateCastling, p.Style.Aggressive)
		if len(p.OpeningPreferences) > 0 {
			fmt.Printf("Openings:     %s\n", strings.Join(p.OpeningPreferences, ", "))
		}
		for _, proof := range p.Proofs {
			fmt.Printf("  move %d: %s (best %s) %d cpl, %s\n", proof.MoveNumber, proof.PlayedMove, proof.BestMove, proof.CPL, proof.Label)
		}
		return nil
	})
}
