package mcp

import (
	"context"

	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// ===== WALLET TOOLS =====

type walletInput struct {
	SessionID string `json:"session_id,omitempty" jsonschema:"Session identifier"`
}

type walletDetailsOutput struct {
	ID      string `json:"id" jsonschema:"Wallet identifier"`
	Name    string `json:"name" jsonschema:"Wallet name"`
	Balance int64  `json:"balance" jsonschema:"Balance in millisatoshis"`
}

type walletBalanceOutput struct {
	BalanceMsat int64 `json:"balance_msat" jsonschema:"Balance in millisatoshis"`
	BalanceSats int64 `json:"balance_sats" jsonschema:"Balance in satoshis"`
}

type connectionOutput struct {
	Connected bool   `json:"connected" jsonschema:"True when the instance answered an authenticated request"`
	Message   string `json:"message" jsonschema:"Human-readable connection status"`
}

func (s *Server) registerWalletTools() {
	// get_wallet_details
	mcp.AddTool(s.mcp, &mcp.Tool{
		Name:        "get_wallet_details",
		Description: "Get wallet details including name and balance",
	}, func(ctx context.Context, req *mcp.CallToolRequest, args walletInput) (*mcp.CallToolResult, walletDetailsOutput, error) {
		done := s.track(ctx, "get_wallet_details")
		var toolErr error
		defer func() { done(toolErr) }()

		client, _, err := s.client(args.SessionID)
		if err != nil {
			toolErr = classify(err)
			return nil, walletDetailsOutput{}, toolErr
		}

		wallet, err := client.GetWallet(ctx)
		if err != nil {
			toolErr = classify(err)
			return nil, walletDetailsOutput{}, toolErr
		}

		out := walletDetailsOutput{ID: wallet.ID, Name: wallet.Name, Balance: wallet.Balance}
		return textResult("Wallet %q: %d msat", wallet.Name, wallet.Balance), out, nil
	})

	// get_wallet_balance
	mcp.AddTool(s.mcp, &mcp.Tool{
		Name:        "get_wallet_balance",
		Description: "Get the wallet balance in satoshis and millisatoshis",
	}, func(ctx context.Context, req *mcp.CallToolRequest, args walletInput) (*mcp.CallToolResult, walletBalanceOutput, error) {
		done := s.track(ctx, "get_wallet_balance")
		var toolErr error
		defer func() { done(toolErr) }()

		client, _, err := s.client(args.SessionID)
		if err != nil {
			toolErr = classify(err)
			return nil, walletBalanceOutput{}, toolErr
		}

		wallet, err := client.GetWallet(ctx)
		if err != nil {
			toolErr = classify(err)
			return nil, walletBalanceOutput{}, toolErr
		}

		out := walletBalanceOutput{
			BalanceMsat: wallet.Balance,
			BalanceSats: wallet.Balance / 1000,
		}
		return textResult("Balance: %d sats (%d msat)", out.BalanceSats, out.BalanceMsat), out, nil
	})

	// check_connection
	mcp.AddTool(s.mcp, &mcp.Tool{
		Name:        "check_connection",
		Description: "Check whether the configured LNbits instance is reachable with the current credentials",
	}, func(ctx context.Context, req *mcp.CallToolRequest, args walletInput) (*mcp.CallToolResult, connectionOutput, error) {
		done := s.track(ctx, "check_connection")
		var toolErr error
		defer func() { done(toolErr) }()

		client, _, err := s.client(args.SessionID)
		if err != nil {
			toolErr = classify(err)
			return nil, connectionOutput{}, toolErr
		}

		out := connectionOutput{Connected: client.CheckConnection(ctx)}
		if out.Connected {
			out.Message = "Connection to LNbits is healthy"
		} else {
			out.Message = "Connection to LNbits failed; check the URL and credentials"
		}
		return textResult("%s", out.Message), out, nil
	})
}
