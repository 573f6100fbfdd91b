package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/discochess/coach"
)

var explainCmd = &cobra.Command{
	Use:   "explain [username] [FEN] [move]",
	Short: "Explain a move with coaching text",
	Long: `Run a deep analysis of a move and ask Gemini to explain it.

Set GEMINI_API_KEY to enable generated explanations; without it a fixed
notice is printed instead.`,
	Args: cobra.ExactArgs(3),
	RunE: runExplain,
}

func init() {
	explainCmd.Flags().IntVar(&analyzeDepth, "depth", 0, "search depth (default 14)")
	rootCmd.AddCommand(explainCmd)
}

func runExplain(cmd *cobra.Command, args []string) error {
	return withClient(cmd, func(ctx context.Context, client *coach.Client) error {
		res, err := client.ExplainMove(ctx, moveRequest(args))
		if err != nil {
			return fmt.Errorf("explanation failed: %w", err)
		}
		if outputJSON {
			return printJSON(res)
		}
		printDeep(&res.Analysis)
		fmt.Println()
		fmt.Println(res.Explanation)
		return nil
	})
}
