package mcpserver

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/angeloszaimis/agent-gateway/internal/dispatch"
)

const (
	serverName = "agent-gateway"

	ToolRunDialogueAgent = "run_dialogue_agent"
	ToolRunTaskAgent     = "run_task_agent"
)

type RunArgs struct {
	Task string `json:"task" jsonschema:"the free-text task to hand to an agent engine"`
}

type Server struct {
	mcpServer  *mcp.Server
	dispatcher *dispatch.Dispatcher
	logger     *slog.Logger
}

func New(dispatcher *dispatch.Dispatcher, version string, maxExtraSteps int, logger *slog.Logger) *Server {
	s := &Server{
		mcpServer:  mcp.NewServer(&mcp.Implementation{Name: serverName, Version: version}, nil),
		dispatcher: dispatcher,
		logger:     logger.With(slog.String("component", "mcp")),
	}

	s.registerTool(ToolRunDialogueAgent,
		"Runs a task on the dialogue engine, falling back to the task engine when no dialogue keyword matches",
		dispatch.DialogueRoute(maxExtraSteps))
	s.registerTool(ToolRunTaskAgent,
		"Runs a task on the task engine, falling back to the dialogue engine when a dialogue keyword matches",
		dispatch.TaskRoute(maxExtraSteps))

	return s
}

// MCP returns the underlying protocol server.
func (s *Server) MCP() *mcp.Server {
	return s.mcpServer
}

// Handler serves the tools over the streamable HTTP transport.
func (s *Server) Handler() http.Handler {
	return mcp.NewStreamableHTTPHandler(func(*http.Request) *mcp.Server {
		return s.mcpServer
	}, nil)
}

func (s *Server) registerTool(name, description string, route dispatch.Route) {
	mcp.AddTool(s.mcpServer, &mcp.Tool{
		Name:        name,
		Description: description,
	}, func(ctx context.Context, req *mcp.CallToolRequest, args RunArgs) (*mcp.CallToolResult, any, error) {
		resp, outcome, err := s.dispatcher.Run(ctx, route, args.Task)
		if errors.Is(err, dispatch.ErrNoTask) {
			return errorResult(err.Error()), nil, nil
		}
		if err != nil {
			s.logger.Error("Tool run failed", slog.String("tool", name), slog.Any("err", err))
			return errorResult(fmt.Sprintf("agent run failed: %v", err)), nil, nil
		}

		s.logger.Info("Tool run completed",
			slog.String("tool", name),
			slog.String("agent", outcome.AgentUsed),
			slog.Bool("degraded", outcome.Degraded))

		payload, err := json.Marshal(resp)
		if err != nil {
			return nil, nil, err
		}
		return textResult(string(payload)), nil, nil
	})
}

func textResult(text string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{&mcp.TextContent{Text: text}},
	}
}

func errorResult(msg string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{&mcp.TextContent{Text: msg}},
		IsError: true,
	}
}
