package main

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/discochess/coach"
)

var predictCmd = &cobra.Command{
	Use:   "predict [FEN]",
	Short: "Print the engine's move for a position",
	Args:  cobra.ExactArgs(1),
	RunE:  runPredict,
}

var predictTime time.Duration

func init() {
	predictCmd.Flags().DurationVar(&predictTime, "movetime", coach.DefaultPredictTime, "search time")
	rootCmd.AddCommand(predictCmd)
}

func runPredict(cmd *cobra.Command, args []string) error {
	return withClient(cmd, func(ctx context.Context, client *coach.Client) error {
		pred, err := client.BestMove(ctx, args[0], predictTime)
		if err != nil {
			return fmt.Errorf("prediction failed: %w", err)
		}
		if outputJSON {
			return printJSON(pred)
		}
		if pred.Move == "" {
			fmt.Println(pred.Message)
			return nil
		}
		fmt.Println(pred.Move)
		return nil
	})
}
