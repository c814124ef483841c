package mcp

import (
	"context"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/fyrsmithlabs/lnbitsd/internal/lnbits"
)

// ===== INVOICE TOOLS =====

type createInvoiceInput struct {
	SessionID       string `json:"session_id,omitempty" jsonschema:"Session identifier"`
	Amount          int64  `json:"amount" jsonschema:"Invoice amount in satoshis"`
	Memo            string `json:"memo,omitempty" jsonschema:"Invoice memo"`
	DescriptionHash string `json:"description_hash,omitempty" jsonschema:"Optional description hash"`
	Expiry          int64  `json:"expiry,omitempty" jsonschema:"Expiry in seconds"`
	Unit            string `json:"unit,omitempty" jsonschema:"Amount unit (default sat)"`
}

type createInvoiceOutput struct {
	PaymentHash string `json:"payment_hash" jsonschema:"Payment hash of the invoice"`
	Bolt11      string `json:"bolt11" jsonschema:"Bolt11 payment request"`
	CheckingID  string `json:"checking_id,omitempty" jsonschema:"Instance-internal checking id"`
	QRCodeURL   string `json:"qr_code_url" jsonschema:"Instance URL rendering the invoice as a QR code"`
}

type qrCodeInput struct {
	SessionID string `json:"session_id,omitempty" jsonschema:"Session identifier"`
	Data      string `json:"data" jsonschema:"Data to encode, typically a bolt11 invoice"`
}

type qrCodeOutput struct {
	URL string `json:"url" jsonschema:"Instance URL rendering the data as a QR code"`
}

func (s *Server) registerInvoiceTools() {
	// create_invoice
	mcp.AddTool(s.mcp, &mcp.Tool{
		Name:        "create_invoice",
		Description: "Create a new lightning invoice for receiving payments",
	}, func(ctx context.Context, req *mcp.CallToolRequest, args createInvoiceInput) (*mcp.CallToolResult, createInvoiceOutput, error) {
		done := s.track(ctx, "create_invoice")
		var toolErr error
		defer func() { done(toolErr) }()

		if args.Amount <= 0 {
			toolErr = fmt.Errorf("amount must be positive, got %d", args.Amount)
			return nil, createInvoiceOutput{}, toolErr
		}

		client, _, err := s.client(args.SessionID)
		if err != nil {
			toolErr = classify(err)
			return nil, createInvoiceOutput{}, toolErr
		}

		invoice, err := client.CreateInvoice(ctx, lnbits.CreateInvoiceParams{
			Amount:          args.Amount,
			Memo:            args.Memo,
			DescriptionHash: args.DescriptionHash,
			Expiry:          args.Expiry,
			Unit:            args.Unit,
		})
		if err != nil {
			toolErr = classify(err)
			return nil, createInvoiceOutput{}, toolErr
		}

		out := createInvoiceOutput{
			PaymentHash: invoice.PaymentHash,
			Bolt11:      invoice.Bolt11(),
			CheckingID:  invoice.CheckingID,
			QRCodeURL:   client.QRCodeURL(invoice.Bolt11()),
		}
		return textResult("Created invoice for %d sats, hash %s", args.Amount, invoice.PaymentHash), out, nil
	})

	// generate_qr_code
	mcp.AddTool(s.mcp, &mcp.Tool{
		Name:        "generate_qr_code",
		Description: "Get a URL that renders the given data as a QR code image on the LNbits instance",
	}, func(ctx context.Context, req *mcp.CallToolRequest, args qrCodeInput) (*mcp.CallToolResult, qrCodeOutput, error) {
		done := s.track(ctx, "generate_qr_code")
		var toolErr error
		defer func() { done(toolErr) }()

		if args.Data == "" {
			toolErr = fmt.Errorf("data is required")
			return nil, qrCodeOutput{}, toolErr
		}

		client, _, err := s.client(args.SessionID)
		if err != nil {
			toolErr = classify(err)
			return nil, qrCodeOutput{}, toolErr
		}

		out := qrCodeOutput{URL: client.QRCodeURL(args.Data)}
		return textResult("%s", out.URL), out, nil
	})
}
