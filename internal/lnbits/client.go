// Package lnbits provides the authenticated HTTP client for the LNbits API.
//
// All calls flow through a single rate-limited request pipeline that attaches
// the configured authentication, classifies failures into RemoteError and
// TransportError, and retries transient network failures with exponential
// backoff up to the configured retry bound.
package lnbits

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"go.uber.org/zap"

	"github.com/fyrsmithlabs/lnbitsd/internal/auth"
	"github.com/fyrsmithlabs/lnbitsd/internal/config"
	"github.com/fyrsmithlabs/lnbitsd/internal/lnurl"
)

const baseBackoff = 500 * time.Millisecond

// Client is the LNbits API client. One client is bound to one immutable
// configuration; configuration updates build a new client.
type Client struct {
	cfg      config.LNbitsConfig
	creds    auth.Credentials
	base     *url.URL
	http     *http.Client
	limiter  *Limiter
	resolver *lnurl.Resolver
	logger   *zap.Logger
}

// New creates a client bound to cfg. The configuration is validated; a client
// can therefore only exist for a well-formed configuration.
func New(cfg config.LNbitsConfig, logger *zap.Logger) (*Client, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	creds, err := cfg.Credentials()
	if err != nil {
		return nil, err
	}
	base, err := url.Parse(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("invalid base URL: %w", err)
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	timeout := time.Duration(cfg.Timeout) * time.Second
	return &Client{
		cfg:      cfg,
		creds:    creds,
		base:     base,
		http:     &http.Client{Timeout: timeout},
		limiter:  NewLimiter(cfg.RateLimitPerMinute),
		resolver: lnurl.NewResolver(timeout, logger),
		logger:   logger.Named("lnbits"),
	}, nil
}

// Config returns the configuration the client is bound to.
func (c *Client) Config() config.LNbitsConfig {
	return c.cfg
}

// IsConfigured reports whether the secret required by the configured auth
// method is present.
func (c *Client) IsConfigured() bool {
	return c.creds.IsConfigured()
}

// Resolver returns the LNURL resolver sharing this client's timeout.
func (c *Client) Resolver() *lnurl.Resolver {
	return c.resolver
}

// Close releases idle connections. In-flight requests are unaffected.
func (c *Client) Close() {
	c.http.CloseIdleConnections()
}

// do issues one authenticated request through the rate limiter. Transient
// transport failures are retried with exponential backoff up to MaxRetries;
// remote errors are returned immediately. The permit is held for the whole
// attempt sequence and released on every exit path.
func (c *Client) do(ctx context.Context, method, path string, query url.Values, body, out any) error {
	if err := c.limiter.Acquire(ctx); err != nil {
		return &TransportError{Err: err}
	}
	defer c.limiter.Release()

	var lastErr error
	for attempt := 0; attempt <= c.cfg.MaxRetries; attempt++ {
		if attempt > 0 {
			backoff := baseBackoff * time.Duration(1<<(attempt-1))
			select {
			case <-time.After(backoff):
			case <-ctx.Done():
				return &TransportError{Err: ctx.Err()}
			}
		}

		err := c.roundTrip(ctx, method, path, query, body, out)
		if err == nil {
			return nil
		}
		lastErr = err

		var te *TransportError
		if !errors.As(err, &te) {
			return err
		}
	}
	return fmt.Errorf("max retries exceeded: %w", lastErr)
}

// roundTrip performs a single HTTP exchange and classifies the outcome.
func (c *Client) roundTrip(ctx context.Context, method, path string, query url.Values, body, out any) error {
	u := c.base.JoinPath(path)

	q := u.Query()
	for key, vals := range query {
		for _, v := range vals {
			q.Add(key, v)
		}
	}
	for key, v := range c.creds.QueryParams() {
		q.Set(key, v)
	}
	u.RawQuery = q.Encode()

	var reqBody io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to marshal request body: %w", err)
		}
		reqBody = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, u.String(), reqBody)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	for key, v := range c.creds.Headers() {
		req.Header.Set(key, v)
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		c.logger.Error("request error", zap.String("method", method), zap.String("path", path), zap.Error(err))
		return &TransportError{Err: err}
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return &TransportError{Err: fmt.Errorf("failed to read response: %w", err)}
	}

	c.logger.Debug("api request",
		zap.String("method", method),
		zap.String("path", path),
		zap.Int("status", resp.StatusCode),
		zap.Duration("duration", time.Since(start)))

	if resp.StatusCode >= 400 {
		detail := extractDetail(respBody)
		c.logger.Error("api error",
			zap.Int("status", resp.StatusCode),
			zap.String("path", path),
			zap.String("detail", truncate(detail, 200)))
		return &RemoteError{Status: resp.StatusCode, Detail: detail}
	}

	if out != nil && len(respBody) > 0 {
		if err := json.Unmarshal(respBody, out); err != nil {
			return fmt.Errorf("failed to parse response: %w", err)
		}
	}
	return nil
}

// extractDetail pulls the server-provided detail field from a JSON error body,
// falling back to the raw body text.
func extractDetail(body []byte) string {
	var parsed struct {
		Detail string `json:"detail"`
	}
	if err := json.Unmarshal(body, &parsed); err == nil && parsed.Detail != "" {
		return parsed.Detail
	}
	return string(body)
}

func truncate(s string, max int) string {
	if len(s) > max {
		return s[:max] + "..."
	}
	return s
}
