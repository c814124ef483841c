// Package mcp exposes the LNbits payment tools over the Model Context
// Protocol.
//
// This implementation uses the MCP SDK (github.com/modelcontextprotocol/go-sdk/mcp).
// Every tool accepts an optional session_id argument; with session support
// enabled each session gets an isolated runtime configuration, so one
// caller's credentials are never visible to another.
package mcp

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"go.uber.org/zap"

	"github.com/fyrsmithlabs/lnbitsd/internal/lnbits"
	"github.com/fyrsmithlabs/lnbitsd/internal/lnurl"
	"github.com/fyrsmithlabs/lnbitsd/internal/runtimeconfig"
	"github.com/fyrsmithlabs/lnbitsd/internal/session"
)

// Server is the MCP server for LNbits payment tools.
type Server struct {
	mcp      *mcp.Server
	shared   *runtimeconfig.Manager
	sessions *session.Registry
	metrics  *Metrics
	logger   *zap.Logger
}

// Config configures the MCP server.
type Config struct {
	// Name is the server implementation name (default: "lnbitsd")
	Name string

	// Version is the server version (default: "1.0.0")
	Version string

	// Logger for structured logging
	Logger *zap.Logger
}

// DefaultConfig returns sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		Name:    "lnbitsd",
		Version: "1.0.0",
		Logger:  zap.NewNop(),
	}
}

// NewServer creates the MCP server. shared is the configuration manager used
// when session support is disabled; sessions may be nil to run in
// single-tenant mode, in which case all callers share one configuration.
func NewServer(cfg *Config, shared *runtimeconfig.Manager, sessions *session.Registry) (*Server, error) {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	if shared == nil && sessions == nil {
		return nil, fmt.Errorf("a shared configuration manager or a session registry is required")
	}

	mcpServer := mcp.NewServer(
		&mcp.Implementation{
			Name:    cfg.Name,
			Version: cfg.Version,
		},
		nil,
	)

	s := &Server{
		mcp:      mcpServer,
		shared:   shared,
		sessions: sessions,
		metrics:  NewMetrics(logger),
		logger:   logger,
	}

	s.registerTools()
	return s, nil
}

// Run starts the MCP server on the stdio transport.
func (s *Server) Run(ctx context.Context) error {
	s.logger.Info("starting MCP server on stdio transport",
		zap.Bool("session_isolation", s.sessions != nil))
	transport := &mcp.StdioTransport{}
	if err := s.mcp.Run(ctx, transport); err != nil {
		return fmt.Errorf("server run failed: %w", err)
	}
	return nil
}

// HTTPHandler returns the streamable HTTP transport handler, for mounting on
// an HTTP server.
func (s *Server) HTTPHandler() http.Handler {
	return mcp.NewStreamableHTTPHandler(func(*http.Request) *mcp.Server {
		return s.mcp
	}, nil)
}

// registerTools registers all MCP tools with the server.
func (s *Server) registerTools() {
	s.registerSessionTools()
	s.registerConfigTools()
	s.registerWalletTools()
	s.registerPaymentTools()
	s.registerInvoiceTools()
	s.registerExtensionTools()
}

// manager resolves the configuration manager for a tool call. With session
// support enabled, a missing or unknown session id silently gets a fresh
// session rather than an error or cross-tenant sharing.
func (s *Server) manager(sessionID string) (*runtimeconfig.Manager, string) {
	if s.sessions == nil {
		return s.shared, ""
	}
	sess := s.sessions.GetOrCreate(sessionID)
	return sess.Config, sess.ID
}

// client resolves the rate-limited client for a tool call.
func (s *Server) client(sessionID string) (*lnbits.Client, string, error) {
	mgr, id := s.manager(sessionID)
	c, err := mgr.Client()
	if err != nil {
		return nil, id, err
	}
	return c, id, nil
}

// track begins metrics bookkeeping for one tool call; the returned func must
// be deferred with the final error.
func (s *Server) track(ctx context.Context, tool string) func(error) {
	start := time.Now()
	s.metrics.IncrementActive(ctx, tool)
	return func(err error) {
		s.metrics.DecrementActive(ctx, tool)
		s.metrics.RecordInvocation(ctx, tool, time.Since(start), err)
	}
}

// classify prefixes errors with a stable category tag so callers can branch
// on failure class without parsing free text.
func classify(err error) error {
	if err == nil {
		return nil
	}
	var (
		remote     *lnbits.RemoteError
		transport  *lnbits.TransportError
		resolution *lnurl.ResolutionError
		validation *runtimeconfig.ValidationError
	)
	switch {
	case errors.As(err, &remote):
		return fmt.Errorf("remote_error: %w", err)
	case errors.As(err, &transport):
		return fmt.Errorf("transport_error: %w", err)
	case errors.As(err, &resolution):
		return fmt.Errorf("resolution_failure: %w", err)
	case errors.As(err, &validation):
		return fmt.Errorf("validation_error: %w", err)
	default:
		return err
	}
}

// textResult builds a plain-text tool result.
func textResult(format string, args ...any) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{
			&mcp.TextContent{Text: fmt.Sprintf(format, args...)},
		},
	}
}
