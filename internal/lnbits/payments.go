package lnbits

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"go.uber.org/zap"

	"github.com/fyrsmithlabs/lnbitsd/internal/logging"
)

// Payment is one entry in the wallet's payment history, also returned by
// payment submission and status lookups. Amounts are in millisatoshis;
// negative amounts are outgoing.
type Payment struct {
	CheckingID  string `json:"checking_id"`
	PaymentHash string `json:"payment_hash"`
	Bolt11      string `json:"bolt11"`
	Amount      int64  `json:"amount"`
	Fee         int64  `json:"fee"`
	Memo        string `json:"memo"`
	Time        int64  `json:"time"`
	Preimage    string `json:"preimage"`
	WalletID    string `json:"wallet_id"`
	Status      string `json:"status"`
	Pending     bool   `json:"pending"`
	Paid        bool   `json:"paid"`
}

// DecodedInvoice is the result of decoding a bolt11 invoice.
type DecodedInvoice struct {
	PaymentHash        string           `json:"payment_hash"`
	AmountMsat         int64            `json:"amount_msat"`
	Description        string           `json:"description"`
	DescriptionHash    string           `json:"description_hash"`
	Payee              string           `json:"payee"`
	Date               int64            `json:"date"`
	Expiry             int64            `json:"expiry"`
	MinFinalCLTVExpiry int64            `json:"min_final_cltv_expiry"`
	RouteHints         []any            `json:"route_hints"`
	Features           map[string]any   `json:"features"`
}

// GetPayments returns the wallet's payment history, newest first.
func (c *Client) GetPayments(ctx context.Context, limit int) ([]Payment, error) {
	query := url.Values{"limit": {strconv.Itoa(limit)}}
	var payments []Payment
	if err := c.do(ctx, http.MethodGet, "/api/v1/payments", query, nil, &payments); err != nil {
		return nil, err
	}
	return payments, nil
}

// PayInvoice pays a bolt11 invoice. amountSats overrides the invoice amount
// and is required for zero-amount invoices; pass 0 to use the invoice amount.
func (c *Client) PayInvoice(ctx context.Context, bolt11 string, amountSats int64) (*Payment, error) {
	body := map[string]any{
		"out":    true,
		"bolt11": bolt11,
	}
	if amountSats > 0 {
		body["amount"] = amountSats
	}

	var p Payment
	if err := c.do(ctx, http.MethodPost, "/api/v1/payments", nil, body, &p); err != nil {
		return nil, err
	}
	c.logger.Info("payment initiated",
		zap.String("payment_hash", p.PaymentHash),
		logging.Truncated("bolt11", bolt11, 50))
	return &p, nil
}

// GetPaymentStatus looks up a payment by its payment hash.
func (c *Client) GetPaymentStatus(ctx context.Context, paymentHash string) (*Payment, error) {
	var p Payment
	if err := c.do(ctx, http.MethodGet, "/api/v1/payments/"+paymentHash, nil, nil, &p); err != nil {
		return nil, err
	}
	return &p, nil
}

// DecodeInvoice decodes a bolt11 invoice without paying it.
func (c *Client) DecodeInvoice(ctx context.Context, bolt11 string) (*DecodedInvoice, error) {
	var d DecodedInvoice
	if err := c.do(ctx, http.MethodPost, "/api/v1/payments/decode", nil, map[string]string{"data": bolt11}, &d); err != nil {
		return nil, err
	}
	return &d, nil
}

// PayLightningAddress pays a user@domain lightning address: the address is
// resolved to an LNURL-pay callback, the callback is asked for an invoice for
// amountSats (sent in millisatoshis), and the invoice is paid through the
// authenticated pipeline. If either resolution phase fails, no payment is
// submitted.
func (c *Client) PayLightningAddress(ctx context.Context, address string, amountSats int64, comment string) (*Payment, error) {
	params, err := c.resolver.Resolve(ctx, address)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve lightning address %s: %w", address, err)
	}

	invoice, err := c.resolver.RequestInvoice(ctx, params.Callback, amountSats*1000, comment)
	if err != nil {
		return nil, fmt.Errorf("failed to get invoice for lightning address %s: %w", address, err)
	}

	return c.PayInvoice(ctx, invoice, amountSats)
}
