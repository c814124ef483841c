package mcp

import (
	"context"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/fyrsmithlabs/lnbitsd/internal/config"
	"github.com/fyrsmithlabs/lnbitsd/internal/lnbits"
)

// ===== PAYMENT TOOLS =====

const defaultPaymentsLimit = 10

type getPaymentsInput struct {
	SessionID string `json:"session_id,omitempty" jsonschema:"Session identifier"`
	Limit     int    `json:"limit,omitempty" jsonschema:"Maximum number of payments to return (1-100, default 10)"`
}

type getPaymentsOutput struct {
	Payments []lnbits.Payment `json:"payments" jsonschema:"Payment history, newest first"`
	Count    int              `json:"count" jsonschema:"Number of payments returned"`
}

type payInvoiceInput struct {
	SessionID string `json:"session_id,omitempty" jsonschema:"Session identifier"`
	Bolt11    string `json:"bolt11" jsonschema:"Bolt11 invoice to pay"`
	Amount    int64  `json:"amount,omitempty" jsonschema:"Amount in satoshis, required for zero-amount invoices"`
}

type payAddressInput struct {
	SessionID string `json:"session_id,omitempty" jsonschema:"Session identifier"`
	Address   string `json:"lightning_address" jsonschema:"Lightning address in user@domain form"`
	Amount    int64  `json:"amount_sats" jsonschema:"Amount in satoshis"`
	Comment   string `json:"comment,omitempty" jsonschema:"Optional comment forwarded to the recipient"`
}

type paymentOutput struct {
	PaymentHash string `json:"payment_hash" jsonschema:"Payment hash"`
	Status      string `json:"status,omitempty" jsonschema:"Payment status reported by the instance"`
	Fee         int64  `json:"fee" jsonschema:"Fee in millisatoshis"`
	Amount      int64  `json:"amount" jsonschema:"Amount in millisatoshis, negative for outgoing"`
	Preimage    string `json:"preimage,omitempty" jsonschema:"Payment preimage when settled"`
}

type paymentStatusInput struct {
	SessionID   string `json:"session_id,omitempty" jsonschema:"Session identifier"`
	PaymentHash string `json:"payment_hash" jsonschema:"Payment hash to look up"`
}

type paymentStatusOutput struct {
	PaymentHash string `json:"payment_hash" jsonschema:"Payment hash"`
	Paid        bool   `json:"paid" jsonschema:"True when the payment settled"`
	Pending     bool   `json:"pending" jsonschema:"True while the payment is in flight"`
	Status      string `json:"status,omitempty" jsonschema:"Payment status reported by the instance"`
	Preimage    string `json:"preimage,omitempty" jsonschema:"Payment preimage when settled"`
}

type decodeInvoiceInput struct {
	SessionID string `json:"session_id,omitempty" jsonschema:"Session identifier"`
	Bolt11    string `json:"bolt11" jsonschema:"Bolt11 invoice to decode"`
}

func (s *Server) registerPaymentTools() {
	// get_payments
	mcp.AddTool(s.mcp, &mcp.Tool{
		Name:        "get_payments",
		Description: "Get the wallet's payment history, newest first",
	}, func(ctx context.Context, req *mcp.CallToolRequest, args getPaymentsInput) (*mcp.CallToolResult, getPaymentsOutput, error) {
		done := s.track(ctx, "get_payments")
		var toolErr error
		defer func() { done(toolErr) }()

		limit := args.Limit
		if limit == 0 {
			limit = defaultPaymentsLimit
		}
		if limit < config.MinPaymentsLimit || limit > config.MaxPaymentsLimit {
			toolErr = fmt.Errorf("limit must be between %d and %d, got %d",
				config.MinPaymentsLimit, config.MaxPaymentsLimit, limit)
			return nil, getPaymentsOutput{}, toolErr
		}

		client, _, err := s.client(args.SessionID)
		if err != nil {
			toolErr = classify(err)
			return nil, getPaymentsOutput{}, toolErr
		}

		payments, err := client.GetPayments(ctx, limit)
		if err != nil {
			toolErr = classify(err)
			return nil, getPaymentsOutput{}, toolErr
		}

		out := getPaymentsOutput{Payments: payments, Count: len(payments)}
		return textResult("Retrieved %d payments", len(payments)), out, nil
	})

	// pay_invoice
	mcp.AddTool(s.mcp, &mcp.Tool{
		Name:        "pay_invoice",
		Description: "Pay a bolt11 lightning invoice. For zero-amount invoices, amount must be provided in satoshis.",
	}, func(ctx context.Context, req *mcp.CallToolRequest, args payInvoiceInput) (*mcp.CallToolResult, paymentOutput, error) {
		done := s.track(ctx, "pay_invoice")
		var toolErr error
		defer func() { done(toolErr) }()

		if args.Bolt11 == "" {
			toolErr = fmt.Errorf("bolt11 is required")
			return nil, paymentOutput{}, toolErr
		}

		client, _, err := s.client(args.SessionID)
		if err != nil {
			toolErr = classify(err)
			return nil, paymentOutput{}, toolErr
		}

		payment, err := client.PayInvoice(ctx, args.Bolt11, args.Amount)
		if err != nil {
			toolErr = classify(err)
			return nil, paymentOutput{}, toolErr
		}

		out := paymentOutput{
			PaymentHash: payment.PaymentHash,
			Status:      payment.Status,
			Fee:         payment.Fee,
			Amount:      payment.Amount,
			Preimage:    payment.Preimage,
		}
		return textResult("Payment sent, hash %s", payment.PaymentHash), out, nil
	})

	// pay_lightning_address
	mcp.AddTool(s.mcp, &mcp.Tool{
		Name: "pay_lightning_address",
		Description: "Pay a lightning address (user@domain). The address is resolved via " +
			"LNURL-pay and the resulting invoice is paid from the configured wallet.",
	}, func(ctx context.Context, req *mcp.CallToolRequest, args payAddressInput) (*mcp.CallToolResult, paymentOutput, error) {
		done := s.track(ctx, "pay_lightning_address")
		var toolErr error
		defer func() { done(toolErr) }()

		if args.Amount <= 0 {
			toolErr = fmt.Errorf("amount_sats must be positive, got %d", args.Amount)
			return nil, paymentOutput{}, toolErr
		}

		client, _, err := s.client(args.SessionID)
		if err != nil {
			toolErr = classify(err)
			return nil, paymentOutput{}, toolErr
		}

		payment, err := client.PayLightningAddress(ctx, args.Address, args.Amount, args.Comment)
		if err != nil {
			toolErr = classify(err)
			return nil, paymentOutput{}, toolErr
		}

		out := paymentOutput{
			PaymentHash: payment.PaymentHash,
			Status:      payment.Status,
			Fee:         payment.Fee,
			Amount:      payment.Amount,
			Preimage:    payment.Preimage,
		}
		return textResult("Paid %d sats to %s, hash %s", args.Amount, args.Address, payment.PaymentHash), out, nil
	})

	// get_payment_status
	mcp.AddTool(s.mcp, &mcp.Tool{
		Name:        "get_payment_status",
		Description: "Check the status of a payment by its payment hash",
	}, func(ctx context.Context, req *mcp.CallToolRequest, args paymentStatusInput) (*mcp.CallToolResult, paymentStatusOutput, error) {
		done := s.track(ctx, "get_payment_status")
		var toolErr error
		defer func() { done(toolErr) }()

		if args.PaymentHash == "" {
			toolErr = fmt.Errorf("payment_hash is required")
			return nil, paymentStatusOutput{}, toolErr
		}

		client, _, err := s.client(args.SessionID)
		if err != nil {
			toolErr = classify(err)
			return nil, paymentStatusOutput{}, toolErr
		}

		payment, err := client.GetPaymentStatus(ctx, args.PaymentHash)
		if err != nil {
			toolErr = classify(err)
			return nil, paymentStatusOutput{}, toolErr
		}

		out := paymentStatusOutput{
			PaymentHash: payment.PaymentHash,
			Paid:        payment.Paid,
			Pending:     payment.Pending,
			Status:      payment.Status,
			Preimage:    payment.Preimage,
		}
		return textResult("Payment %s: paid=%t pending=%t", payment.PaymentHash, payment.Paid, payment.Pending), out, nil
	})

	// decode_invoice
	mcp.AddTool(s.mcp, &mcp.Tool{
		Name:        "decode_invoice",
		Description: "Decode a bolt11 invoice without paying it",
	}, func(ctx context.Context, req *mcp.CallToolRequest, args decodeInvoiceInput) (*mcp.CallToolResult, lnbits.DecodedInvoice, error) {
		done := s.track(ctx, "decode_invoice")
		var toolErr error
		defer func() { done(toolErr) }()

		if args.Bolt11 == "" {
			toolErr = fmt.Errorf("bolt11 is required")
			return nil, lnbits.DecodedInvoice{}, toolErr
		}

		client, _, err := s.client(args.SessionID)
		if err != nil {
			toolErr = classify(err)
			return nil, lnbits.DecodedInvoice{}, toolErr
		}

		decoded, err := client.DecodeInvoice(ctx, args.Bolt11)
		if err != nil {
			toolErr = classify(err)
			return nil, lnbits.DecodedInvoice{}, toolErr
		}

		return textResult("Invoice for %d msat, hash %s", decoded.AmountMsat, decoded.PaymentHash), *decoded, nil
	})
}
