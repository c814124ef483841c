// Package lnurl implements the LNURL-pay resolution protocol for lightning
// addresses (user@domain).
//
// Paying an address is a two-phase exchange with the address's own domain,
// not with the configured LNbits instance, so no LNbits authentication is
// attached to these requests:
//
//  1. Discovery: GET https://{domain}/.well-known/lnurlp/{user} returns the
//     pay parameters, including the callback URL.
//  2. Invoice retrieval: GET {callback}?amount={msat}&comment={text} returns
//     a bolt11 invoice ("pr") or a counterparty-reported failure ("reason").
//
// Failures in either phase are reported as *ResolutionError so callers can
// distinguish "could not resolve" from errors of the configured service.
package lnurl

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"regexp"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"
)

// addressPattern matches local@domain where the domain contains at least one
// dot. Bare hostnames cannot serve a well-known endpoint reachable from here.
var addressPattern = regexp.MustCompile(`^[^@]+@[^@]+\.[^@]+$`)

// ResolutionError reports that the resolution protocol did not produce a
// payable invoice: a malformed address, a non-200 discovery or callback
// response, a missing protocol field, or an explicit counterparty reason.
type ResolutionError struct {
	Address string
	Reason  string
}

func (e *ResolutionError) Error() string {
	if e.Address != "" {
		return fmt.Sprintf("lightning address %s not resolved: %s", e.Address, e.Reason)
	}
	return fmt.Sprintf("lnurl-pay callback failed: %s", e.Reason)
}

// PayParams are the LNURL-pay parameters served by a discovery endpoint.
// Sendable bounds are in millisatoshis.
type PayParams struct {
	Callback     string `json:"callback"`
	MinSendable  int64  `json:"minSendable"`
	MaxSendable  int64  `json:"maxSendable"`
	Metadata     string `json:"metadata"`
	CommentChars int    `json:"commentAllowed"`
}

// Resolver resolves lightning addresses to payable invoices.
type Resolver struct {
	http   *http.Client
	logger *zap.Logger
}

// NewResolver creates a resolver. The timeout applies to each protocol phase.
func NewResolver(timeout time.Duration, logger *zap.Logger) *Resolver {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Resolver{
		http:   &http.Client{Timeout: timeout},
		logger: logger.Named("lnurl"),
	}
}

// SetTransport overrides the HTTP transport used for both protocol phases.
// Tests use it to route well-known lookups to a local server.
func (r *Resolver) SetTransport(rt http.RoundTripper) {
	r.http.Transport = rt
}

// ValidateAddress checks the address shape without touching the network.
func ValidateAddress(address string) error {
	if !addressPattern.MatchString(address) {
		return &ResolutionError{Address: address, Reason: "invalid lightning address format"}
	}
	return nil
}

// Resolve runs the discovery phase: it validates the address, queries the
// domain's well-known endpoint, and returns the pay parameters. The address
// is validated before any network call is made.
func (r *Resolver) Resolve(ctx context.Context, address string) (*PayParams, error) {
	if err := ValidateAddress(address); err != nil {
		return nil, err
	}

	user, domain, _ := strings.Cut(address, "@")
	wellKnown := fmt.Sprintf("https://%s/.well-known/lnurlp/%s", domain, user)

	body, status, err := r.get(ctx, wellKnown)
	if err != nil {
		return nil, &ResolutionError{Address: address, Reason: err.Error()}
	}
	if status != http.StatusOK {
		r.logger.Warn("discovery endpoint returned non-200",
			zap.String("address", address), zap.Int("status", status))
		return nil, &ResolutionError{Address: address, Reason: "discovery returned HTTP " + strconv.Itoa(status)}
	}

	var raw struct {
		Callback     string `json:"callback"`
		MinSendable  *int64 `json:"minSendable"`
		MaxSendable  *int64 `json:"maxSendable"`
		Metadata     string `json:"metadata"`
		CommentChars int    `json:"commentAllowed"`
	}
	if err := json.Unmarshal(body, &raw); err != nil {
		return nil, &ResolutionError{Address: address, Reason: "discovery response is not valid JSON"}
	}

	// All three fields are required by the protocol. Sendable bounds are
	// checked by key presence so a literal zero is not mistaken for absence.
	if raw.Callback == "" || raw.MinSendable == nil || raw.MaxSendable == nil {
		return nil, &ResolutionError{Address: address, Reason: "discovery response missing callback, minSendable or maxSendable"}
	}
	params := PayParams{
		Callback:     raw.Callback,
		MinSendable:  *raw.MinSendable,
		MaxSendable:  *raw.MaxSendable,
		Metadata:     raw.Metadata,
		CommentChars: raw.CommentChars,
	}

	r.logger.Info("resolved lightning address",
		zap.String("address", address),
		zap.String("callback", params.Callback),
		zap.Int64("min_sendable", params.MinSendable),
		zap.Int64("max_sendable", params.MaxSendable))
	return &params, nil
}

// RequestInvoice runs the callback phase: it asks the callback URL for an
// invoice of amountMsat millisatoshis. comment is attached only when
// non-empty. Returns the bolt11 invoice string.
func (r *Resolver) RequestInvoice(ctx context.Context, callback string, amountMsat int64, comment string) (string, error) {
	u, err := url.Parse(callback)
	if err != nil {
		return "", &ResolutionError{Reason: "invalid callback URL"}
	}
	q := u.Query()
	q.Set("amount", strconv.FormatInt(amountMsat, 10))
	if comment != "" {
		q.Set("comment", comment)
	}
	u.RawQuery = q.Encode()

	body, status, err := r.get(ctx, u.String())
	if err != nil {
		return "", &ResolutionError{Reason: err.Error()}
	}
	if status != http.StatusOK {
		return "", &ResolutionError{Reason: "callback returned HTTP " + strconv.Itoa(status)}
	}

	var resp struct {
		PR     string `json:"pr"`
		Reason string `json:"reason"`
	}
	if err := json.Unmarshal(body, &resp); err != nil {
		return "", &ResolutionError{Reason: "callback response is not valid JSON"}
	}
	if resp.Reason != "" {
		return "", &ResolutionError{Reason: resp.Reason}
	}
	if resp.PR == "" {
		return "", &ResolutionError{Reason: "callback response has no invoice"}
	}

	r.logger.Info("obtained lnurl-pay invoice",
		zap.Int64("amount_msat", amountMsat))
	return resp.PR, nil
}

// get issues one unauthenticated GET and returns the body and status.
func (r *Resolver) get(ctx context.Context, rawURL string) ([]byte, int, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, 0, err
	}
	resp, err := r.http.Do(req)
	if err != nil {
		return nil, 0, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, 0, err
	}
	return body, resp.StatusCode, nil
}
