package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "localhost", cfg.Server.Host)
	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, 10*time.Second, cfg.Server.ShutdownTimeout.Duration())
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, "json", cfg.Log.Format)
	assert.Equal(t, 60*time.Minute, cfg.Session.Timeout.Duration())
	assert.Equal(t, 5*time.Minute, cfg.Session.SweepInterval.Duration())
	assert.Equal(t, "https://demo.lnbits.com", cfg.LNbits.URL)
	assert.Equal(t, "api_key_header", cfg.LNbits.AuthMethod)
	assert.Equal(t, 30, cfg.LNbits.Timeout)
	assert.Equal(t, 3, cfg.LNbits.MaxRetries)
	assert.Equal(t, 60, cfg.LNbits.RateLimitPerMinute)
}

func TestLoadEnvOverrides(t *testing.T) {
	t.Setenv("LNBITS_URL", "https://my.lnbits.example")
	t.Setenv("LNBITS_API_KEY", "env-secret")
	t.Setenv("LNBITS_AUTH_METHOD", "api_key_query")
	t.Setenv("LNBITS_TIMEOUT", "45")

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "https://my.lnbits.example", cfg.LNbits.URL)
	assert.Equal(t, "env-secret", cfg.LNbits.APIKey.Value())
	assert.Equal(t, "api_key_query", cfg.LNbits.AuthMethod)
	assert.Equal(t, 45, cfg.LNbits.Timeout)
}

func TestLoadYAMLFile(t *testing.T) {
	content := `
server:
  port: 8081
log:
  level: debug
  format: console
lnbits:
  url: https://file.lnbits.example
  api_key: file-secret
  rate_limit_per_minute: 10
`
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 8081, cfg.Server.Port)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, "console", cfg.Log.Format)
	assert.Equal(t, "https://file.lnbits.example", cfg.LNbits.URL)
	assert.Equal(t, "file-secret", cfg.LNbits.APIKey.Value())
	assert.Equal(t, 10, cfg.LNbits.RateLimitPerMinute)
}

func TestLoadEnvBeatsFile(t *testing.T) {
	content := "lnbits:\n  url: https://file.lnbits.example\n"
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	t.Setenv("LNBITS_URL", "https://env.lnbits.example")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "https://env.lnbits.example", cfg.LNbits.URL)
}

func TestLoadZeroMaxRetriesFromEnv(t *testing.T) {
	t.Setenv("LNBITS_MAX_RETRIES", "0")

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, 0, cfg.LNbits.MaxRetries)
}

func TestLoadZeroMaxRetriesFromFile(t *testing.T) {
	content := "lnbits:\n  max_retries: 0\n"
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 0, cfg.LNbits.MaxRetries)
}

func TestLoadMissingFileIgnored(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "does-not-exist.yaml"))
	require.NoError(t, err)
	assert.Equal(t, "https://demo.lnbits.com", cfg.LNbits.URL)
}

func TestLoadInvalidConfigRejected(t *testing.T) {
	t.Setenv("LNBITS_AUTH_METHOD", "bogus")

	_, err := Load("")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "validation failed")
}
