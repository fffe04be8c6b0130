// Package mcp exposes the action registry and stored sessions as a Model
// Context Protocol server.
package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/aretw0/parlance/internal/logging"
	"github.com/aretw0/parlance/pkg/config"
	"github.com/aretw0/parlance/pkg/domain"
	"github.com/aretw0/parlance/pkg/ports"
	"github.com/aretw0/parlance/pkg/registry"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

// StatesURI is the resource holding the configured state table.
const StatesURI = "parlance://states"

// Server wraps an action registry and exposes it over MCP.
type Server struct {
	actions   *registry.Registry
	store     ports.SessionStore
	cfg       *config.Config
	logger    *slog.Logger
	version   string
	mcpServer *server.MCPServer
}

// Option configures a Server.
type Option func(*Server)

// WithStore enables the session tools.
func WithStore(store ports.SessionStore) Option {
	return func(s *Server) { s.store = store }
}

// WithConfig enables the states resource.
func WithConfig(cfg *config.Config) Option {
	return func(s *Server) { s.cfg = cfg }
}

// WithVersion sets the version reported during initialization.
func WithVersion(v string) Option {
	return func(s *Server) { s.version = v }
}

// WithLogger sets the logger. Logs must not go to stdout when serving stdio.
func WithLogger(l *slog.Logger) Option {
	return func(s *Server) { s.logger = l }
}

// NewServer creates a new MCP Server instance.
func NewServer(actions *registry.Registry, opts ...Option) *Server {
	s := &Server{
		actions: actions,
		logger:  logging.NewNop(),
		version: "dev",
	}
	for _, opt := range opts {
		opt(s)
	}
	s.mcpServer = server.NewMCPServer("parlance-mcp", s.version)
	s.registerTools()
	if s.cfg != nil {
		s.registerResources()
	}
	return s
}

// ServeStdio starts the server on Stdin/Stdout.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcpServer)
}

// MCPServer returns the underlying server.
func (s *Server) MCPServer() *server.MCPServer { return s.mcpServer }

func (s *Server) registerTools() {
	s.mcpServer.AddTool(mcp.NewTool("dispatch_action",
		mcp.WithDescription("Run a registered action with the given parameters and return its result as text."),
		mcp.WithString("action", mcp.Required(), mcp.Description("Name of the registered action")),
		mcp.WithString("params", mcp.Description("JSON object of action parameters (optional)")),
	), s.handleDispatch)

	s.mcpServer.AddTool(mcp.NewTool("list_actions",
		mcp.WithDescription("List the names of the registered actions."),
		mcp.WithReadOnlyHintAnnotation(true),
	), s.handleListActions)

	if s.store == nil {
		return
	}

	s.mcpServer.AddTool(mcp.NewTool("list_sessions",
		mcp.WithDescription("List the IDs of the stored sessions."),
		mcp.WithReadOnlyHintAnnotation(true),
	), s.handleListSessions)

	s.mcpServer.AddTool(mcp.NewTool("get_session",
		mcp.WithDescription("Get the stored snapshot of a session: state, status, transcript and side channel."),
		mcp.WithReadOnlyHintAnnotation(true),
		mcp.WithString("session_id", mcp.Required(), mcp.Description("The session ID")),
	), s.handleGetSession)
}

func (s *Server) handleDispatch(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	name := req.GetString("action", "")
	if name == "" {
		return mcp.NewToolResultError("action is required"), nil
	}

	params, err := paramsArg(req.GetArguments()["params"])
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	res, err := s.actions.Dispatch(ctx, name, params)
	if err != nil {
		s.logger.Warn("mcp dispatch failed", "action", name, "error", err)
		return mcp.NewToolResultError(err.Error()), nil
	}
	if registry.IsEmpty(res) {
		return mcp.NewToolResultText(""), nil
	}
	return mcp.NewToolResultText(registry.FormatResult(res)), nil
}

// paramsArg accepts either a JSON string or an already decoded object.
func paramsArg(v any) (map[string]any, error) {
	switch p := v.(type) {
	case nil:
		return map[string]any{}, nil
	case map[string]any:
		return p, nil
	case string:
		if p == "" {
			return map[string]any{}, nil
		}
		params := map[string]any{}
		if err := json.Unmarshal([]byte(p), &params); err != nil {
			return nil, fmt.Errorf("params must be a JSON object: %v", err)
		}
		return params, nil
	}
	return nil, fmt.Errorf("params must be a JSON object, got %T", v)
}

func (s *Server) handleListActions(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return jsonResult(s.actions.Names())
}

func (s *Server) handleListSessions(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	ids, err := s.store.List(ctx)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("list sessions failed: %v", err)), nil
	}
	if ids == nil {
		ids = []string{}
	}
	return jsonResult(ids)
}

func (s *Server) handleGetSession(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id := req.GetString("session_id", "")
	if id == "" {
		return mcp.NewToolResultError("session_id is required"), nil
	}
	snap, err := s.store.Load(ctx, id)
	if errors.Is(err, domain.ErrSessionNotFound) {
		return mcp.NewToolResultError(fmt.Sprintf("session %q not found", id)), nil
	}
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("load session failed: %v", err)), nil
	}
	return jsonResult(snap)
}

func jsonResult(v any) (*mcp.CallToolResult, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	return mcp.NewToolResultText(string(b)), nil
}

func (s *Server) registerResources() {
	s.mcpServer.AddResource(mcp.NewResource(StatesURI, "Configured state table",
		mcp.WithResourceDescription("Initial state, terminal states and per-state prompt settings"),
		mcp.WithMIMEType("application/json"),
	), s.readStates)
}

func (s *Server) readStates(ctx context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	b, err := json.Marshal(s.cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to encode states: %w", err)
	}
	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      StatesURI,
			MIMEType: "application/json",
			Text:     string(b),
		},
	}, nil
}
