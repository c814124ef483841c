package lnbits

import (
	"context"
	"net/http"

	"go.uber.org/zap"
)

// PayLink is an LNURLp extension pay link.
type PayLink struct {
	ID           any    `json:"id"`
	LNURL        string `json:"lnurl"`
	Description  string `json:"description"`
	Amount       int64  `json:"amount"`
	CommentChars int    `json:"comment_chars"`
	SuccessText  string `json:"success_text"`
	ServedMeta   int64  `json:"served_meta"`
	ServedPR     int64  `json:"served_pr"`
	WebhookURL   string `json:"webhook_url"`
}

// CreatePayLinkParams are the inputs for LNURLp pay link creation.
type CreatePayLinkParams struct {
	Description  string
	Amount       int64
	CommentChars int
	SuccessText  string
}

// CreatePayLink creates an LNURLp pay link via the lnurlp extension.
func (c *Client) CreatePayLink(ctx context.Context, params CreatePayLinkParams) (*PayLink, error) {
	commentChars := params.CommentChars
	if commentChars == 0 {
		commentChars = 200
	}
	successText := params.SuccessText
	if successText == "" {
		successText = "Payment successful!"
	}
	body := map[string]any{
		"description":   params.Description,
		"amount":        params.Amount,
		"comment_chars": commentChars,
		"success_text":  successText,
	}

	var link PayLink
	if err := c.do(ctx, http.MethodPost, "/lnurlp/api/v1/links", nil, body, &link); err != nil {
		return nil, err
	}
	c.logger.Info("pay link created", zap.Any("id", link.ID), zap.Int64("amount", params.Amount))
	return &link, nil
}

// GetPayLinks lists the wallet's LNURLp pay links.
func (c *Client) GetPayLinks(ctx context.Context) ([]PayLink, error) {
	var links []PayLink
	if err := c.do(ctx, http.MethodGet, "/lnurlp/api/v1/links", nil, nil, &links); err != nil {
		return nil, err
	}
	return links, nil
}
