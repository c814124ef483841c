package config

import (
	"fmt"
	"net/url"

	"github.com/fyrsmithlabs/lnbitsd/internal/auth"
)

// Bounds for runtime-configurable LNbits connection values. The same bounds
// apply to the configure tool surface, so a value that passes here is always
// accepted by the runtime configuration manager and vice versa.
const (
	MinTimeoutSeconds = 1
	MaxTimeoutSeconds = 300
	MinRateLimit      = 1
	MaxRateLimit      = 1000
	MinPaymentsLimit  = 1
	MaxPaymentsLimit  = 100
)

// Config is the top-level process configuration.
type Config struct {
	Server  ServerConfig  `koanf:"server"`
	Log     LogConfig     `koanf:"log"`
	Session SessionConfig `koanf:"session"`
	LNbits  LNbitsConfig  `koanf:"lnbits"`
}

// ServerConfig configures the HTTP transport server.
type ServerConfig struct {
	Host            string   `koanf:"host"`
	Port            int      `koanf:"port"`
	ShutdownTimeout Duration `koanf:"shutdown_timeout"`
}

// LogConfig configures structured logging output.
type LogConfig struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format"`
}

// SessionConfig configures session lifecycle management.
type SessionConfig struct {
	// Timeout is the idle duration after which a session is expired.
	Timeout Duration `koanf:"timeout"`
	// SweepInterval is how often the expiry sweep runs.
	SweepInterval Duration `koanf:"sweep_interval"`
}

// LNbitsConfig holds the default LNbits connection values, sourced from the
// environment (LNBITS_URL, LNBITS_API_KEY, ...) or config file. Sessions start
// from these values until a runtime configure call replaces them.
type LNbitsConfig struct {
	URL                string `koanf:"url" json:"lnbits_url"`
	APIKey             Secret `koanf:"api_key" json:"api_key"`
	BearerToken        Secret `koanf:"bearer_token" json:"bearer_token"`
	OAuth2Token        Secret `koanf:"oauth2_token" json:"oauth2_token"`
	AuthMethod         string `koanf:"auth_method" json:"auth_method"`
	Timeout            int    `koanf:"timeout" json:"timeout"`
	MaxRetries         int    `koanf:"max_retries" json:"max_retries"`
	RateLimitPerMinute int    `koanf:"rate_limit_per_minute" json:"rate_limit_per_minute"`
}

// Validate checks the configuration for invalid values.
func (c *Config) Validate() error {
	if c.Server.Port < 0 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port out of range: %d", c.Server.Port)
	}
	switch c.Log.Format {
	case "json", "console":
	default:
		return fmt.Errorf("log.format must be json or console, got %q", c.Log.Format)
	}
	if c.Session.Timeout <= 0 {
		return fmt.Errorf("session.timeout must be positive, got %s", c.Session.Timeout.Duration())
	}
	if c.Session.SweepInterval <= 0 {
		return fmt.Errorf("session.sweep_interval must be positive, got %s", c.Session.SweepInterval.Duration())
	}
	return c.LNbits.Validate()
}

// Validate checks the LNbits connection values. The same rules gate runtime
// configuration updates, so validation failures here and there are identical.
func (c *LNbitsConfig) Validate() error {
	u, err := url.Parse(c.URL)
	if err != nil {
		return fmt.Errorf("lnbits.url is not a valid URL: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("lnbits.url must use http or https scheme, got %q", c.URL)
	}
	if u.Host == "" {
		return fmt.Errorf("lnbits.url has no host: %q", c.URL)
	}
	if _, err := auth.ParseMethod(c.AuthMethod); err != nil {
		return err
	}
	if c.Timeout < MinTimeoutSeconds || c.Timeout > MaxTimeoutSeconds {
		return fmt.Errorf("lnbits.timeout must be between %d and %d seconds, got %d",
			MinTimeoutSeconds, MaxTimeoutSeconds, c.Timeout)
	}
	if c.MaxRetries < 0 {
		return fmt.Errorf("lnbits.max_retries cannot be negative, got %d", c.MaxRetries)
	}
	if c.RateLimitPerMinute < MinRateLimit || c.RateLimitPerMinute > MaxRateLimit {
		return fmt.Errorf("lnbits.rate_limit_per_minute must be between %d and %d, got %d",
			MinRateLimit, MaxRateLimit, c.RateLimitPerMinute)
	}
	return nil
}

// Credentials builds the auth credentials from the configured secrets.
func (c *LNbitsConfig) Credentials() (auth.Credentials, error) {
	method, err := auth.ParseMethod(c.AuthMethod)
	if err != nil {
		return auth.Credentials{}, err
	}
	return auth.Credentials{
		APIKey:      c.APIKey.Value(),
		BearerToken: c.BearerToken.Value(),
		OAuth2Token: c.OAuth2Token.Value(),
		Method:      method,
	}, nil
}
