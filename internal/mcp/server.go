package mcp

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

// NewServer builds an MCP server exposing the toolkit's tools.
func NewServer(tk *Toolkit, version string) *server.MCPServer {
	s := server.NewMCPServer(
		"agentsquad",
		version,
		server.WithToolCapabilities(true),
	)
	s.AddTool(
		mcp.NewTool(ToolSendMessage,
			mcp.WithDescription("Send a message to another agent in this squad. The text is typed into that agent's terminal."),
			mcp.WithString(ParamAgentName,
				mcp.Required(),
				mcp.Description("Name of the receiving agent"),
			),
			mcp.WithString(ParamMessage,
				mcp.Required(),
				mcp.Description("Message text"),
			),
		),
		toolHandler(tk, ToolSendMessage),
	)
	return s
}

// ServeStdio serves the toolkit over stdin/stdout until the client disconnects.
func ServeStdio(tk *Toolkit, version string) error {
	return server.ServeStdio(NewServer(tk, version))
}

func toolHandler(tk *Toolkit, name string) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		res, err := tk.ExecuteTool(ctx, name, req.GetArguments())
		if err != nil {
			slog.Warn("tool call failed", "tool", name, "err", err)
			return mcp.NewToolResultError(err.Error()), nil
		}
		out, err := json.Marshal(res)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		return mcp.NewToolResultText(string(out)), nil
	}
}
