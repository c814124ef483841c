// Package runtimeconfig manages the mutable LNbits connection configuration.
//
// A Manager owns one configuration and one lazily built client bound to it.
// Updates are atomic with rollback: the candidate configuration is validated
// before anything is replaced, so a failed update leaves both the
// configuration and the client untouched.
package runtimeconfig

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"go.uber.org/zap"

	"github.com/fyrsmithlabs/lnbitsd/internal/config"
	"github.com/fyrsmithlabs/lnbitsd/internal/lnbits"
)

// ValidationError reports a rejected configuration update. The previous
// configuration remains in effect.
type ValidationError struct {
	Err error
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid configuration: %v", e.Err)
}

func (e *ValidationError) Unwrap() error {
	return e.Err
}

// UpdateRequest carries a partial configuration update. Nil fields are left
// unchanged; a non-nil field replaces the current value, so an explicit empty
// string clears a secret.
type UpdateRequest struct {
	URL                *string
	APIKey             *string
	BearerToken        *string
	OAuth2Token        *string
	AuthMethod         *string
	Timeout            *int
	MaxRetries         *int
	RateLimitPerMinute *int
}

// Status is the masked view of the manager's state. Secret fields render as
// the redaction marker through config.Secret marshaling.
type Status struct {
	IsConfigured bool                `json:"is_configured"`
	Config       config.LNbitsConfig `json:"config"`
}

// WalletInfo is the wallet summary included in a successful test result.
type WalletInfo struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	Balance int64  `json:"balance"`
}

// TestResult reports the outcome of a configuration self-test. Soft failure
// is a value, not an error: callers must branch on Success.
type TestResult struct {
	Success bool        `json:"success"`
	Message string      `json:"message"`
	Wallet  *WalletInfo `json:"wallet_info,omitempty"`
	Error   string      `json:"error,omitempty"`
}

// Manager owns one LNbits configuration and its bound client.
//
// The lock covers only in-memory state. Callers obtain a client under the
// lock and run network calls lock-free, so an update racing an in-flight
// request sees either the old or the new client, never a partially built one.
type Manager struct {
	mu         sync.Mutex
	cfg        config.LNbitsConfig
	client     *lnbits.Client
	configured bool
	logger     *zap.Logger
}

// NewManager creates a manager starting from the given default configuration.
// The manager reports unconfigured until an explicit Update succeeds.
func NewManager(cfg config.LNbitsConfig, logger *zap.Logger) *Manager {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Manager{cfg: cfg, logger: logger.Named("runtimeconfig")}
}

// Config returns a copy of the current configuration.
func (m *Manager) Config() config.LNbitsConfig {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.cfg
}

// IsConfigured reports whether an explicit runtime update has been applied.
func (m *Manager) IsConfigured() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.configured
}

// Client returns the client bound to the current configuration, building it
// on first use. The returned client is safe to use after a concurrent update
// replaces it; it keeps its own configuration.
func (m *Manager) Client() (*lnbits.Client, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.client == nil {
		client, err := lnbits.New(m.cfg, m.logger)
		if err != nil {
			return nil, err
		}
		m.client = client
	}
	return m.client, nil
}

// Update merges the non-nil fields of req into a candidate configuration,
// validates it, and swaps it in. On validation failure the current
// configuration is untouched and a *ValidationError is returned. On success
// any cached client is discarded so the next call binds to the new
// configuration, and the new masked configuration is returned.
func (m *Manager) Update(req UpdateRequest) (config.LNbitsConfig, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	candidate := m.cfg
	if req.URL != nil {
		candidate.URL = *req.URL
	}
	if req.APIKey != nil {
		candidate.APIKey = config.Secret(*req.APIKey)
	}
	if req.BearerToken != nil {
		candidate.BearerToken = config.Secret(*req.BearerToken)
	}
	if req.OAuth2Token != nil {
		candidate.OAuth2Token = config.Secret(*req.OAuth2Token)
	}
	if req.AuthMethod != nil {
		candidate.AuthMethod = *req.AuthMethod
	}
	if req.Timeout != nil {
		candidate.Timeout = *req.Timeout
	}
	if req.MaxRetries != nil {
		candidate.MaxRetries = *req.MaxRetries
	}
	if req.RateLimitPerMinute != nil {
		candidate.RateLimitPerMinute = *req.RateLimitPerMinute
	}

	if err := candidate.Validate(); err != nil {
		m.logger.Warn("configuration update rejected", zap.Error(err))
		return config.LNbitsConfig{}, &ValidationError{Err: err}
	}

	if m.client != nil {
		m.client.Close()
		m.client = nil
	}
	m.cfg = candidate
	m.configured = true

	m.logger.Info("configuration updated", zap.String("url", candidate.URL))
	return candidate, nil
}

// Status returns the masked configuration state.
func (m *Manager) Status() Status {
	m.mu.Lock()
	defer m.mu.Unlock()
	return Status{IsConfigured: m.configured, Config: m.cfg}
}

// Test performs an authenticated wallet lookup through the pipeline and
// reports the outcome without mutating configuration. A 404 whose detail has
// wallet-not-found semantics is reported with extended guidance, since it
// almost always means the API key belongs to no wallet on the instance.
func (m *Manager) Test(ctx context.Context) TestResult {
	client, err := m.Client()
	if err != nil {
		return TestResult{
			Success: false,
			Message: fmt.Sprintf("Configuration test failed: %v", err),
			Error:   err.Error(),
		}
	}

	wallet, err := client.GetWallet(ctx)
	if err != nil {
		message := err.Error()
		if lnbits.IsNotFound(err) && strings.Contains(strings.ToLower(message), "wallet not found") {
			message = walletNotFoundGuidance
		}
		m.logger.Warn("configuration test failed", zap.Error(err))
		return TestResult{
			Success: false,
			Message: fmt.Sprintf("Configuration test failed: %s", message),
			Error:   err.Error(),
		}
	}

	return TestResult{
		Success: true,
		Message: "Configuration test successful",
		Wallet: &WalletInfo{
			ID:      wallet.ID,
			Name:    wallet.Name,
			Balance: wallet.Balance,
		},
	}
}

// Close discards the cached client. The manager remains usable; the next
// Client call rebuilds.
func (m *Manager) Close() {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.client != nil {
		m.client.Close()
		m.client = nil
	}
}

const walletNotFoundGuidance = "The API key provided is not valid or the wallet doesn't exist. " +
	"Please check:\n\n" +
	"1. Go to your LNbits instance web interface\n" +
	"2. Create a new wallet or access an existing one\n" +
	"3. Click on the wallet name to access it\n" +
	"4. Look for 'API Info' or 'API Keys' section\n" +
	"5. Copy the 'Invoice/read key' or 'Admin key' (depending on what you need)\n" +
	"6. Make sure the API key is from the correct wallet\n\n" +
	"If using demo.lnbits.com, you need to create a wallet first by visiting the website."
