package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/discochess/coach"
)

var gameCmd = &cobra.Command{
	Use:   "game [PGN file]",
	Short: "Review every move of a game",
	Long: `Review the first game of a PGN file move by move and report the
average centipawn loss, accuracy and error counts.

Examples:
  # Review and keep the result in history.db
  coach game --store casual.pgn

  # List stored reviews
  coach game --recent 10`,
	Args: cobra.RangeArgs(0, 1),
	RunE: runGame,
}

var (
	gameDepth  int
	gameStore  bool
	gameRecent int
)

func init() {
	gameCmd.Flags().IntVar(&gameDepth, "depth", coach.DefaultGameDepth, "search depth per position")
	gameCmd.Flags().BoolVar(&gameStore, "store", false, "save the review to the analysis history")
	gameCmd.Flags().IntVar(&gameRecent, "recent", 0, "list this many stored reviews instead")
	rootCmd.AddCommand(gameCmd)
}

func runGame(cmd *cobra.Command, args []string) error {
	if gameRecent == 0 && len(args) == 0 {
		return fmt.Errorf("a PGN file or --recent is required")
	}

	return withClient(cmd, func(ctx context.Context, client *coach.Client) error {
		if gameRecent > 0 {
			recent, err := client.RecentAnalyses(ctx, gameRecent)
			if err != nil {
				return fmt.Errorf("listing analyses: %w", err)
			}
			if outputJSON {
				return printJSON(recent)
			}
			w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "CREATED\tFILE\tWHITE\tBLACK\tAVG CPL\tACCURACY")
			for _, r := range recent {
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%d\t%.1f\n", r.CreatedAt.Format("2006-01-02 15:04"), r.Source, r.White, r.Black, r.AvgCPL, r.Accuracy)
			}
			return w.Flush()
		}

		pgn, err := os.ReadFile(args[0])
		if err != nil {
			return fmt.Errorf("reading PGN: %w", err)
		}
		analyze := client.AnalyzeGame
		if gameStore {
			analyze = client.AnalyzeAndStore
		}
		r, err := analyze(ctx, filepath.Base(args[0]), string(pgn), gameDepth)
		if err != nil {
			return fmt.Errorf("analysis failed: %w", err)
		}
		if outputJSON {
			return printJSON(r)
		}

		fmt.Printf("%s vs %s\n", r.White, r.Black)
		w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "PLY\tPLAYED\tBEST\tCPL\tLABEL")
		for _, m := range r.Moves {
			fmt.Fprintf(w, "%d\t%s\t%s\t%d\t%s\n", m.Ply, m.Played, m.Best, m.CPL, m.Label)
		}
		if err := w.Flush(); err != nil {
			return err
		}
		fmt.Printf("Moves:     %d\n", r.MovesAnalyzed)
		fmt.Printf("Avg CPL:   %d\n", r.AvgCPL)
		fmt.Printf("Accuracy:  %.1f%%\n", r.Accuracy)
		fmt.Printf("Errors:    %d inaccuracies, %d mistakes, %d blunders\n", r.Inaccuracies, r.Mistakes, r.Blunders)
		if r.ID != "" {
			fmt.Printf("Saved as:  %s\n", r.ID)
		}
		return nil
	})
}
