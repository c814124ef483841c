package mcp

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"go.uber.org/zap"

	"github.com/fyrsmithlabs/lnbitsd/internal/config"
	"github.com/fyrsmithlabs/lnbitsd/internal/runtimeconfig"
)

// ===== CONFIGURATION TOOLS =====

type configureInput struct {
	SessionID          string  `json:"session_id,omitempty" jsonschema:"Session identifier"`
	URL                *string `json:"lnbits_url,omitempty" jsonschema:"LNbits instance URL (http or https)"`
	APIKey             *string `json:"api_key,omitempty" jsonschema:"API key credential"`
	BearerToken        *string `json:"bearer_token,omitempty" jsonschema:"Bearer token credential"`
	OAuth2Token        *string `json:"oauth2_token,omitempty" jsonschema:"OAuth2 access token credential"`
	AuthMethod         *string `json:"auth_method,omitempty" jsonschema:"Authentication method: api_key_header, api_key_query, http_bearer or oauth2"`
	Timeout            *int    `json:"timeout,omitempty" jsonschema:"Request timeout in seconds (1-300)"`
	MaxRetries         *int    `json:"max_retries,omitempty" jsonschema:"Maximum retry attempts for transport failures"`
	RateLimitPerMinute *int    `json:"rate_limit_per_minute,omitempty" jsonschema:"Maximum concurrent outstanding requests (1-1000)"`
}

type configureOutput struct {
	Success   bool            `json:"success" jsonschema:"True when the update was applied"`
	SessionID string          `json:"session_id,omitempty" jsonschema:"Session the update applied to"`
	Config    config.LNbitsConfig `json:"config,omitempty" jsonschema:"Applied configuration with secrets masked"`
	Error     string          `json:"error,omitempty" jsonschema:"Validation failure detail"`
}

type configStatusInput struct {
	SessionID string `json:"session_id,omitempty" jsonschema:"Session identifier"`
}

type configStatusOutput struct {
	IsConfigured bool            `json:"is_configured" jsonschema:"True if an explicit runtime update has been applied"`
	SessionID    string          `json:"session_id,omitempty" jsonschema:"Session the status belongs to"`
	Config       config.LNbitsConfig `json:"config" jsonschema:"Current configuration with secrets masked"`
}

type testConfigInput struct {
	SessionID string `json:"session_id,omitempty" jsonschema:"Session identifier"`
}

func (s *Server) registerConfigTools() {
	// configure_lnbits
	mcp.AddTool(s.mcp, &mcp.Tool{
		Name: "configure_lnbits",
		Description: "Configure the LNbits connection at runtime. Only the fields provided " +
			"are changed; the update is atomic and rolls back entirely on validation failure.",
	}, func(ctx context.Context, req *mcp.CallToolRequest, args configureInput) (*mcp.CallToolResult, configureOutput, error) {
		done := s.track(ctx, "configure_lnbits")
		var toolErr error
		defer func() { done(toolErr) }()

		mgr, sessionID := s.manager(args.SessionID)
		applied, err := mgr.Update(runtimeconfig.UpdateRequest{
			URL:                args.URL,
			APIKey:             args.APIKey,
			BearerToken:        args.BearerToken,
			OAuth2Token:        args.OAuth2Token,
			AuthMethod:         args.AuthMethod,
			Timeout:            args.Timeout,
			MaxRetries:         args.MaxRetries,
			RateLimitPerMinute: args.RateLimitPerMinute,
		})
		if err != nil {
			toolErr = classify(err)
			return nil, configureOutput{}, toolErr
		}

		s.logger.Info("runtime configuration updated",
			zap.String("session_id", sessionID),
			zap.String("url", applied.URL))
		out := configureOutput{Success: true, SessionID: sessionID, Config: applied}
		return textResult("LNbits configuration updated (url=%s, auth=%s)", applied.URL, applied.AuthMethod), out, nil
	})

	// get_lnbits_configuration
	mcp.AddTool(s.mcp, &mcp.Tool{
		Name:        "get_lnbits_configuration",
		Description: "Get the current LNbits configuration with credentials masked",
	}, func(ctx context.Context, req *mcp.CallToolRequest, args configStatusInput) (*mcp.CallToolResult, configStatusOutput, error) {
		done := s.track(ctx, "get_lnbits_configuration")
		var toolErr error
		defer func() { done(toolErr) }()

		mgr, sessionID := s.manager(args.SessionID)
		status := mgr.Status()

		masked, err := json.Marshal(status.Config)
		if err != nil {
			toolErr = fmt.Errorf("failed to render configuration: %w", err)
			return nil, configStatusOutput{}, toolErr
		}

		out := configStatusOutput{
			IsConfigured: status.IsConfigured,
			SessionID:    sessionID,
			Config:       status.Config,
		}
		return textResult("Configuration (configured=%t): %s", status.IsConfigured, masked), out, nil
	})

	// test_lnbits_configuration
	mcp.AddTool(s.mcp, &mcp.Tool{
		Name: "test_lnbits_configuration",
		Description: "Test the current LNbits configuration by fetching wallet details. " +
			"Reports success or failure without changing any configuration.",
	}, func(ctx context.Context, req *mcp.CallToolRequest, args testConfigInput) (*mcp.CallToolResult, runtimeconfig.TestResult, error) {
		done := s.track(ctx, "test_lnbits_configuration")
		defer func() { done(nil) }()

		mgr, _ := s.manager(args.SessionID)
		result := mgr.Test(ctx)
		return textResult("%s", result.Message), result, nil
	})
}
