package main

import (
	"context"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/spf13/cobra"

	"github.com/discochess/coach"
	"github.com/discochess/coach/internal/mcpserver"
)

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Serve the coach as MCP tools over stdio",
	Long: `Run a Model Context Protocol server on stdin/stdout exposing the
analyze_move, explain_move, get_profile and get_feedback tools.

Logs go to stderr so they do not corrupt the protocol stream.`,
	Args: cobra.NoArgs,
	RunE: runMCP,
}

func init() {
	rootCmd.AddCommand(mcpCmd)
}

func runMCP(cmd *cobra.Command, args []string) error {
	return withClient(cmd, func(ctx context.Context, client *coach.Client) error {
		if err := mcpserver.New(client).Run(ctx, &mcp.StdioTransport{}); err != nil {
			return fmt.Errorf("mcp server: %w", err)
		}
		return nil
	})
}
