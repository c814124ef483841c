package lnbits

import (
	"context"
	"net/http"

	"go.uber.org/zap"
)

// Wallet is the LNbits wallet record. Balance is in millisatoshis.
type Wallet struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	User     string `json:"user"`
	Balance  int64  `json:"balance"`
	AdminKey string `json:"adminkey"`
	InKey    string `json:"inkey"`
}

// GetWallet fetches the wallet bound to the configured credentials.
func (c *Client) GetWallet(ctx context.Context) (*Wallet, error) {
	var w Wallet
	if err := c.do(ctx, http.MethodGet, "/api/v1/wallet", nil, nil, &w); err != nil {
		return nil, err
	}
	return &w, nil
}

// CheckConnection reports whether an authenticated wallet lookup succeeds.
func (c *Client) CheckConnection(ctx context.Context) bool {
	if _, err := c.GetWallet(ctx); err != nil {
		c.logger.Warn("connection check failed", zap.Error(err))
		return false
	}
	return true
}
