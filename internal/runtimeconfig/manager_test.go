package runtimeconfig

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fyrsmithlabs/lnbitsd/internal/config"
)

func baseConfig() config.LNbitsConfig {
	return config.LNbitsConfig{
		URL:                "https://demo.lnbits.com",
		AuthMethod:         "api_key_header",
		Timeout:            30,
		MaxRetries:         3,
		RateLimitPerMinute: 60,
	}
}

func strPtr(s string) *string { return &s }
func intPtr(i int) *int       { return &i }

func TestManagerStartsUnconfigured(t *testing.T) {
	m := NewManager(baseConfig(), nil)
	assert.False(t, m.IsConfigured())
	assert.Equal(t, baseConfig(), m.Config())
}

func TestUpdateMergesOnlyProvidedFields(t *testing.T) {
	m := NewManager(baseConfig(), nil)

	applied, err := m.Update(UpdateRequest{
		APIKey:  strPtr("new-key"),
		Timeout: intPtr(60),
	})
	require.NoError(t, err)

	assert.Equal(t, "new-key", applied.APIKey.Value())
	assert.Equal(t, 60, applied.Timeout)
	// untouched fields keep their previous values
	assert.Equal(t, "https://demo.lnbits.com", applied.URL)
	assert.Equal(t, "api_key_header", applied.AuthMethod)
	assert.Equal(t, 3, applied.MaxRetries)

	assert.True(t, m.IsConfigured())
	assert.Equal(t, applied, m.Config())
}

func TestUpdateRollsBackOnValidationFailure(t *testing.T) {
	m := NewManager(baseConfig(), nil)
	before := m.Config()

	tests := []struct {
		name string
		req  UpdateRequest
	}{
		{name: "bad url", req: UpdateRequest{URL: strPtr("not a url at all ://")}},
		{name: "bad auth method", req: UpdateRequest{AuthMethod: strPtr("basic")}},
		{name: "timeout out of range", req: UpdateRequest{Timeout: intPtr(0)}},
		{name: "rate limit out of range", req: UpdateRequest{RateLimitPerMinute: intPtr(5000)}},
		{
			name: "one bad field rejects the whole update",
			req:  UpdateRequest{APIKey: strPtr("would-be-fine"), Timeout: intPtr(9999)},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, updateErr := m.Update(tt.req)
			var valErr *ValidationError
			require.ErrorAs(t, updateErr, &valErr)

			assert.Equal(t, before, m.Config())
			assert.False(t, m.IsConfigured())
		})
	}
}

func TestUpdateExplicitEmptyClearsSecret(t *testing.T) {
	cfg := baseConfig()
	cfg.APIKey = "initial"
	m := NewManager(cfg, nil)

	applied, err := m.Update(UpdateRequest{APIKey: strPtr("")})
	require.NoError(t, err)
	assert.False(t, applied.APIKey.IsSet())
}

func TestUpdateDiscardsCachedClient(t *testing.T) {
	m := NewManager(baseConfig(), nil)

	first, err := m.Client()
	require.NoError(t, err)
	again, err := m.Client()
	require.NoError(t, err)
	assert.Same(t, first, again)

	_, err = m.Update(UpdateRequest{Timeout: intPtr(45)})
	require.NoError(t, err)

	rebuilt, err := m.Client()
	require.NoError(t, err)
	assert.NotSame(t, first, rebuilt)
	assert.Equal(t, 45, rebuilt.Config().Timeout)
}

func TestStatusMasksSecrets(t *testing.T) {
	cfg := baseConfig()
	cfg.APIKey = "topsecret"
	m := NewManager(cfg, nil)

	data, err := json.Marshal(m.Status())
	require.NoError(t, err)

	assert.NotContains(t, string(data), "topsecret")
	assert.Contains(t, string(data), config.Redacted)
	assert.Contains(t, string(data), `"is_configured":false`)
}

func TestTestSuccess(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]any{
			"id":      "w1",
			"name":    "spending",
			"balance": 5000,
		})
	}))
	defer srv.Close()

	cfg := baseConfig()
	cfg.URL = srv.URL
	cfg.APIKey = "k"
	m := NewManager(cfg, nil)

	result := m.Test(context.Background())
	assert.True(t, result.Success)
	require.NotNil(t, result.Wallet)
	assert.Equal(t, "w1", result.Wallet.ID)
	assert.Equal(t, int64(5000), result.Wallet.Balance)
}

func TestTestWalletNotFoundGuidance(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		_ = json.NewEncoder(w).Encode(map[string]string{"detail": "Wallet not found."})
	}))
	defer srv.Close()

	cfg := baseConfig()
	cfg.URL = srv.URL
	cfg.MaxRetries = 0
	m := NewManager(cfg, nil)

	result := m.Test(context.Background())
	assert.False(t, result.Success)
	assert.Contains(t, result.Message, "create a wallet first")
	assert.NotEmpty(t, result.Error)
}

func TestTestRemoteFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_ = json.NewEncoder(w).Encode(map[string]string{"detail": "Invalid key"})
	}))
	defer srv.Close()

	cfg := baseConfig()
	cfg.URL = srv.URL
	cfg.MaxRetries = 0
	m := NewManager(cfg, nil)

	result := m.Test(context.Background())
	assert.False(t, result.Success)
	assert.Contains(t, result.Message, "Invalid key")
	assert.Nil(t, result.Wallet)
}
