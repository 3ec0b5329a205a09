// Package mcp exposes a dialog engine as an MCP server, letting agent
// hosts drive conversations over the Model Context Protocol.
package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/mbruna/espalier"
	"github.com/mbruna/espalier/pkg/domain"
)

// TurnResult is the structured output of the dialog_turn tool.
type TurnResult struct {
	SessionID string           `json:"session_id" jsonschema_description:"Session to pass on the next turn"`
	Response  *domain.Response `json:"response" jsonschema_description:"Rendered prompts, reprompts and directives"`
}

// Server wraps an espalier engine and exposes it as an MCP server.
type Server struct {
	engine    *espalier.Engine
	mcpServer *server.MCPServer
}

// NewServer creates a new MCP server for the engine.
func NewServer(engine *espalier.Engine) *Server {
	s := &Server{
		engine:    engine,
		mcpServer: server.NewMCPServer("espalier-mcp", strings.TrimSpace(espalier.Version)),
	}
	s.registerTools()
	return s
}

// ServeStdio starts the server on Stdin/Stdout.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcpServer)
}

func (s *Server) registerTools() {
	turnTool := mcp.NewTool("dialog_turn",
		mcp.WithDescription("Process one dialog turn. Pass a normalized intent or launch request; returns the system's prompts and the session id to continue with."),
		mcp.WithString("session_id", mcp.Description("Session to continue (omitted: a new session is started)")),
		mcp.WithString("kind", mcp.Required(), mcp.Description("Request kind: launch, intent or event")),
		mcp.WithString("intent", mcp.Description("Intent name for kind=intent")),
		mcp.WithString("slots", mcp.Description("JSON object mapping slot names to {name, value, er_match}")),
		mcp.WithOutputSchema[TurnResult](),
	)
	s.mcpServer.AddTool(turnTool, mcp.NewStructuredToolHandler(s.handleTurn))

	resetTool := mcp.NewTool("dialog_reset",
		mcp.WithDescription("Discard a session's dialog state."),
		mcp.WithString("session_id", mcp.Required(), mcp.Description("Session to reset")),
	)
	s.mcpServer.AddTool(resetTool, func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		sessionID, _ := request.GetArguments()["session_id"].(string)
		if sessionID == "" {
			return mcp.NewToolResultError("session_id is required"), nil
		}
		if err := s.engine.Reset(ctx, sessionID); err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("reset failed: %v", err)), nil
		}
		return mcp.NewToolResultText("session reset"), nil
	})
}

func (s *Server) handleTurn(ctx context.Context, request mcp.CallToolRequest, args map[string]interface{}) (TurnResult, error) {
	kind, _ := args["kind"].(string)
	in := &domain.ControlInput{Kind: domain.RequestKind(kind)}

	if intent, ok := args["intent"].(string); ok {
		in.Intent = intent
	}
	if slotsStr, ok := args["slots"].(string); ok && slotsStr != "" {
		if err := json.Unmarshal([]byte(slotsStr), &in.Slots); err != nil {
			return TurnResult{}, fmt.Errorf("invalid slots: %w", err)
		}
	}

	sessionID, _ := args["session_id"].(string)
	if sessionID == "" {
		sessionID = uuid.NewString()
	}

	resp, err := s.engine.HandleTurn(ctx, sessionID, in)
	if err != nil {
		return TurnResult{}, fmt.Errorf("turn failed: %w", err)
	}
	return TurnResult{SessionID: sessionID, Response: resp}, nil
}
