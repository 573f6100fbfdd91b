// Package mcpserver exposes the coach as Model Context Protocol tools.
package mcpserver

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/discochess/coach"
)

// Version is reported to MCP clients.
const Version = "0.1.0"

// Service is the part of coach.Client exposed as tools.
type Service interface {
	AnalyzeMove(ctx context.Context, req coach.MoveRequest) (*coach.MoveAnalysis, error)
	ExplainMove(ctx context.Context, req coach.MoveRequest) (*coach.Explanation, error)
	Profile(ctx context.Context, username string) (*coach.Profile, error)
	Feedback(ctx context.Context, username string) (*coach.FeedbackReport, error)
}

// New creates an MCP server with the coach tools registered.
func New(svc Service) *mcp.Server {
	t := &tools{svc: svc}

	srv := mcp.NewServer(&mcp.Implementation{
		Name:    "coach",
		Version: Version,
	}, nil)

	mcp.AddTool(srv, &mcp.Tool{
		Name:        "analyze_move",
		Description: "Score a move by centipawn loss and suggest better moves",
	}, t.AnalyzeMove)

	mcp.AddTool(srv, &mcp.Tool{
		Name:        "explain_move",
		Description: "Explain a move with the best and played lines and coaching text",
	}, t.ExplainMove)

	mcp.AddTool(srv, &mcp.Tool{
		Name:        "get_profile",
		Description: "Get a player's profile, building it from their game archive if needed",
	}, t.GetProfile)

	mcp.AddTool(srv, &mcp.Tool{
		Name:        "get_feedback",
		Description: "Get coaching text for the costliest moves in a player's stored profile",
	}, t.GetFeedback)

	return srv
}

type tools struct {
	svc Service
}

// MoveInput identifies a move to analyze.
type MoveInput struct {
	Username string `json:"username" jsonschema:"Player whose profile the move is compared against"`
	FEN      string `json:"fen" jsonschema:"Position before the move, in FEN"`
	Move     string `json:"move" jsonschema:"Move in UCI notation, e.g. e2e4"`
	Depth    int    `json:"depth,omitempty" jsonschema:"Optional search depth"`
}

// PlayerInput names a player.
type PlayerInput struct {
	Username string `json:"username" jsonschema:"Player username"`
}

func (in MoveInput) request() coach.MoveRequest {
	return coach.MoveRequest{Username: in.Username, FEN: in.FEN, Move: in.Move, Depth: in.Depth}
}

func (t *tools) AnalyzeMove(ctx context.Context, _ *mcp.CallToolRequest, input MoveInput) (*mcp.CallToolResult, any, error) {
	res, err := t.svc.AnalyzeMove(ctx, input.request())
	if err != nil {
		return toolError("Failed to analyze move: %v", err), nil, nil
	}
	return toolJSON(res)
}

func (t *tools) ExplainMove(ctx context.Context, _ *mcp.CallToolRequest, input MoveInput) (*mcp.CallToolResult, any, error) {
	res, err := t.svc.ExplainMove(ctx, input.request())
	if err != nil {
		return toolError("Failed to explain move: %v", err), nil, nil
	}
	return toolJSON(res)
}

func (t *tools) GetProfile(ctx context.Context, _ *mcp.CallToolRequest, input PlayerInput) (*mcp.CallToolResult, any, error) {
	res, err := t.svc.Profile(ctx, input.Username)
	if err != nil {
		return toolError("Failed to get profile: %v", err), nil, nil
	}
	return toolJSON(res)
}

func (t *tools) GetFeedback(ctx context.Context, _ *mcp.CallToolRequest, input PlayerInput) (*mcp.CallToolResult, any, error) {
	res, err := t.svc.Feedback(ctx, input.Username)
	if err != nil {
		return toolError("Failed to get feedback: %v", err), nil, nil
	}
	return toolJSON(res)
}

func toolError(format string, args ...any) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{&mcp.TextContent{Text: fmt.Sprintf(format, args...)}},
		IsError: true,
	}
}

func toolJSON(v any) (*mcp.CallToolResult, any, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return toolError("Failed to marshal result: %v", err), nil, nil
	}
	return &mcp.CallToolResult{
		Content: []mcp.Content{&mcp.TextContent{Text: string(data)}},
	}, nil, nil
}
