package lnbits

import (
	"context"
	"net/http"
	"net/url"

	"go.uber.org/zap"
)

// CreateInvoiceParams are the inputs for invoice creation. Amount is in the
// given unit (default "sat").
type CreateInvoiceParams struct {
	Amount          int64
	Memo            string
	DescriptionHash string
	Expiry          int64
	Unit            string
}

// Invoice is the record returned for a newly created invoice. LNbits versions
// differ on the field carrying the bolt11 string; Bolt11() folds them.
type Invoice struct {
	PaymentHash    string `json:"payment_hash"`
	PaymentRequest string `json:"payment_request"`
	Bolt11Field    string `json:"bolt11"`
	CheckingID     string `json:"checking_id"`
	Time           int64  `json:"time"`
}

// Bolt11 returns the invoice's bolt11 string regardless of which response
// field carried it.
func (i *Invoice) Bolt11() string {
	if i.PaymentRequest != "" {
		return i.PaymentRequest
	}
	return i.Bolt11Field
}

// CreateInvoice creates a new incoming invoice.
func (c *Client) CreateInvoice(ctx context.Context, params CreateInvoiceParams) (*Invoice, error) {
	unit := params.Unit
	if unit == "" {
		unit = "sat"
	}
	body := map[string]any{
		"out":      false,
		"amount":   params.Amount,
		"unit":     unit,
		"memo":     params.Memo,
		"internal": false,
	}
	if params.DescriptionHash != "" {
		body["description_hash"] = params.DescriptionHash
	}
	if params.Expiry > 0 {
		body["expiry"] = params.Expiry
	}

	var inv Invoice
	if err := c.do(ctx, http.MethodPost, "/api/v1/payments", nil, body, &inv); err != nil {
		return nil, err
	}
	c.logger.Info("invoice created",
		zap.String("payment_hash", inv.PaymentHash),
		zap.Int64("amount", params.Amount))
	return &inv, nil
}

// QRCodeURL returns the instance URL rendering data as a QR code image. The
// URL is constructed locally; no request is issued.
func (c *Client) QRCodeURL(data string) string {
	return c.base.JoinPath("api/v1/qrcode", url.PathEscape(data)).String()
}
