package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/discochess/coach"
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze [username] [FEN] [move]",
	Short: "Score a move by centipawn loss",
	Long: `Score a move given in UCI notation from the position in FEN.

The result is compared against the player's stored profile: a mistake in
the phase the profile marks as weakest is flagged.

Examples:
  # Shallow analysis with suggestions
  coach analyze alice "rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR w KQkq - 0 1" g2g4

  # Deep analysis with both lines
  coach analyze --deep --depth 16 alice "rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR w KQkq - 0 1" g2g4`,
	Args: cobra.ExactArgs(3),
	RunE: runAnalyze,
}

var (
	analyzeDeep  bool
	analyzeDepth int
	analyzePV    int
)

func init() {
	analyzeCmd.Flags().BoolVar(&analyzeDeep, "deep", false, "report the best and played lines")
	analyzeCmd.Flags().IntVar(&analyzeDepth, "depth", 0, "search depth (default 10, or 14 with --deep)")
	analyzeCmd.Flags().IntVar(&analyzePV, "pv", 0, "maximum line length with --deep (default 8)")
	rootCmd.AddCommand(analyzeCmd)
}

func moveRequest(args []string) coach.MoveRequest {
	return coach.MoveRequest{
		Username: args[0],
		FEN:      args[1],
		Move:     args[2],
		Depth:    analyzeDepth,
		PVLen:    analyzePV,
	}
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	return withClient(cmd, func(ctx context.Context, client *coach.Client) error {
		req := moveRequest(args)

		if analyzeDeep {
			res, err := client.AnalyzeMoveDeep(ctx, req)
			if err != nil {
				return fmt.Errorf("analysis failed: %w", err)
			}
			if outputJSON {
				return printJSON(res)
			}
			printDeep(res)
			return nil
		}

		res, err := client.AnalyzeMove(ctx, req)
		if err != nil {
			return fmt.Errorf("analysis failed: %w", err)
		}
		if outputJSON {
			return printJSON(res)
		}
		fmt.Printf("Move:        %s\n", req.Move)
		fmt.Printf("CPL:         %d (%s)\n", res.CPL, res.Label)
		fmt.Printf("Phase:       %s\n", res.Phase)
		fmt.Printf("Weakness:    %t\n", res.MatchesProfileWeakness)
		fmt.Printf("Suggested:   %s\n", strings.Join(res.SuggestedGoodMoves, " "))
		if res.Feedback != "" {
			fmt.Printf("Feedback:    %s\n", res.Feedback)
		}
		return nil
	})
}

func printDeep(res *coach.DeepAnalysis) {
	fmt.Printf("CPL:         %d (%s)\n", res.CPL, res.Label)
	fmt.Printf("Phase:       %s\n", res.Phase)
	fmt.Printf("Weakness:    %t\n", res.MatchesProfileWeakness)
	fmt.Printf("Best move:   %s\n", res.BestMove)
	fmt.Printf("Best line:   %s (%+d)\n", strings.Join(res.BestLine, " "), res.EvalBest)
	fmt.Printf("Played line: %s (%+d)\n", strings.Join(res.PlayedLine, " "), res.EvalPlayed)
	fmt.Printf("Depth:       %d\n", res.Depth)
}
