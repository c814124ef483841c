package mcp

import (
	"context"
	"fmt"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// ===== SESSION TOOLS =====

type createSessionInput struct{}

type createSessionOutput struct {
	SessionID string `json:"session_id" jsonschema:"New session identifier"`
	Message   string `json:"message" jsonschema:"Usage hint for the session id"`
}

type sessionInfoInput struct {
	SessionID string `json:"session_id,omitempty" jsonschema:"Session identifier"`
}

type sessionInfoOutput struct {
	SessionID     string `json:"session_id" jsonschema:"Session identifier"`
	CreatedAt     string `json:"created_at" jsonschema:"Session creation time (RFC 3339)"`
	LastAccessed  string `json:"last_accessed" jsonschema:"Last access time (RFC 3339)"`
	TotalSessions int    `json:"total_sessions" jsonschema:"Number of active sessions"`
	IsConfigured  bool   `json:"is_configured" jsonschema:"True if the session has been configured at runtime"`
}

func (s *Server) registerSessionTools() {
	if s.sessions == nil {
		return
	}

	// create_session
	mcp.AddTool(s.mcp, &mcp.Tool{
		Name:        "create_session",
		Description: "Create a new session for credential isolation. Include the returned session_id in all subsequent tool calls.",
	}, func(ctx context.Context, req *mcp.CallToolRequest, args createSessionInput) (*mcp.CallToolResult, createSessionOutput, error) {
		done := s.track(ctx, "create_session")
		defer func() { done(nil) }()

		sess := s.sessions.Create()
		out := createSessionOutput{
			SessionID: sess.ID,
			Message: fmt.Sprintf("Created new session: %s. Include this session_id in all subsequent tool calls for credential isolation.",
				sess.ID),
		}
		return textResult("Created session %s", sess.ID), out, nil
	})

	// get_session_info
	mcp.AddTool(s.mcp, &mcp.Tool{
		Name:        "get_session_info",
		Description: "Get information about the current session",
	}, func(ctx context.Context, req *mcp.CallToolRequest, args sessionInfoInput) (*mcp.CallToolResult, sessionInfoOutput, error) {
		done := s.track(ctx, "get_session_info")
		defer func() { done(nil) }()

		sess := s.sessions.GetOrCreate(args.SessionID)
		out := sessionInfoOutput{
			SessionID:     sess.ID,
			CreatedAt:     sess.CreatedAt.UTC().Format(time.RFC3339),
			LastAccessed:  sess.LastAccessed.UTC().Format(time.RFC3339),
			TotalSessions: s.sessions.Len(),
			IsConfigured:  sess.Config.IsConfigured(),
		}
		return textResult("Session %s (%d active)", sess.ID, out.TotalSessions), out, nil
	})
}
