package mcp

import (
	"context"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/fyrsmithlabs/lnbitsd/internal/lnbits"
)

// ===== LNURLP EXTENSION TOOLS =====

type createPayLinkInput struct {
	SessionID    string `json:"session_id,omitempty" jsonschema:"Session identifier"`
	Description  string `json:"description" jsonschema:"Pay link description"`
	Amount       int64  `json:"amount" jsonschema:"Amount in satoshis"`
	CommentChars int    `json:"comment_chars,omitempty" jsonschema:"Maximum comment length (default 200)"`
	SuccessText  string `json:"success_text,omitempty" jsonschema:"Message shown to payers after payment"`
}

type listPayLinksInput struct {
	SessionID string `json:"session_id,omitempty" jsonschema:"Session identifier"`
}

type listPayLinksOutput struct {
	Links []lnbits.PayLink `json:"links" jsonschema:"LNURLp pay links owned by the wallet"`
	Count int              `json:"count" jsonschema:"Number of links returned"`
}

func (s *Server) registerExtensionTools() {
	// create_lnurlp_link
	mcp.AddTool(s.mcp, &mcp.Tool{
		Name:        "create_lnurlp_link",
		Description: "Create an LNURL-pay link via the lnurlp extension (must be enabled on the instance)",
	}, func(ctx context.Context, req *mcp.CallToolRequest, args createPayLinkInput) (*mcp.CallToolResult, lnbits.PayLink, error) {
		done := s.track(ctx, "create_lnurlp_link")
		var toolErr error
		defer func() { done(toolErr) }()

		if args.Description == "" {
			toolErr = fmt.Errorf("description is required")
			return nil, lnbits.PayLink{}, toolErr
		}
		if args.Amount <= 0 {
			toolErr = fmt.Errorf("amount must be positive, got %d", args.Amount)
			return nil, lnbits.PayLink{}, toolErr
		}

		client, _, err := s.client(args.SessionID)
		if err != nil {
			toolErr = classify(err)
			return nil, lnbits.PayLink{}, toolErr
		}

		link, err := client.CreatePayLink(ctx, lnbits.CreatePayLinkParams{
			Description:  args.Description,
			Amount:       args.Amount,
			CommentChars: args.CommentChars,
			SuccessText:  args.SuccessText,
		})
		if err != nil {
			toolErr = classify(err)
			return nil, lnbits.PayLink{}, toolErr
		}

		return textResult("Created pay link %v (%s)", link.ID, link.LNURL), *link, nil
	})

	// list_lnurlp_links
	mcp.AddTool(s.mcp, &mcp.Tool{
		Name:        "list_lnurlp_links",
		Description: "List the wallet's LNURL-pay links",
	}, func(ctx context.Context, req *mcp.CallToolRequest, args listPayLinksInput) (*mcp.CallToolResult, listPayLinksOutput, error) {
		done := s.track(ctx, "list_lnurlp_links")
		var toolErr error
		defer func() { done(toolErr) }()

		client, _, err := s.client(args.SessionID)
		if err != nil {
			toolErr = classify(err)
			return nil, listPayLinksOutput{}, toolErr
		}

		links, err := client.GetPayLinks(ctx)
		if err != nil {
			toolErr = classify(err)
			return nil, listPayLinksOutput{}, toolErr
		}

		out := listPayLinksOutput{Links: links, Count: len(links)}
		return textResult("Retrieved %d pay links", len(links)), out, nil
	})
}
