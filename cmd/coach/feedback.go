package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/discochess/coach"
)

var feedbackCmd = &cobra.Command{
	Use:   "feedback [username]",
	Short: "Coach a player on the costliest moves of their profile",
	Long: `Print coaching text for each proof position of a stored profile.
This never builds a profile; run 'coach profile' first.`,
	Args: cobra.ExactArgs(1),
	RunE: runFeedback,
}

func init() {
	rootCmd.AddCommand(feedbackCmd)
}

func runFeedback(cmd *cobra.Command, args []string) error {
	return withClient(cmd, func(ctx context.Context, client *coach.Client) error {
		report, err := client.Feedback(ctx, args[0])
		if err != nil {
			return fmt.Errorf("feedback failed: %w", err)
		}
		if outputJSON {
			return printJSON(report)
		}
		for _, item := range report.Feedback {
			fmt.Printf("Move %d: %s (%s)\n", item.MoveNumber, item.PlayedMove, item.Label)
			fmt.Printf("  %s\n\n", item.Feedback)
		}
		return nil
	})
}
