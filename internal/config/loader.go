// Package config provides configuration loading for lnbitsd.
package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/rawbytes"
	"github.com/knadh/koanf/v2"
)

// defaults are loaded first so later sources override them key by key. An
// explicit zero in the file or environment therefore stays zero; only absent
// keys take the default.
func defaults() map[string]interface{} {
	return map[string]interface{}{
		"server.host":                  "localhost",
		"server.port":                  9090,
		"server.shutdown_timeout":      "10s",
		"log.level":                    "info",
		"log.format":                   "json",
		"session.timeout":              "60m",
		"session.sweep_interval":       "5m",
		"lnbits.url":                   "https://demo.lnbits.com",
		"lnbits.auth_method":           "api_key_header",
		"lnbits.timeout":               30,
		"lnbits.max_retries":           3,
		"lnbits.rate_limit_per_minute": 60,
	}
}

// Load loads configuration from an optional YAML file, then overrides with
// environment variables.
//
// Configuration precedence (highest to lowest):
//  1. Environment variables (LNBITS_URL, LNBITS_API_KEY, SERVER_PORT, ...)
//  2. YAML config file (configPath, skipped when empty or missing)
//  3. Defaults
//
// Environment variables use underscore separator and are uppercased. The
// transformer splits on the first underscore into section.field_name:
//
//	LNBITS_API_KEY   -> lnbits.api_key
//	SERVER_PORT      -> server.port
//	SESSION_TIMEOUT  -> session.timeout
func Load(configPath string) (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(confmap.Provider(defaults(), "."), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	if configPath != "" {
		content, err := os.ReadFile(configPath)
		if err != nil {
			if !os.IsNotExist(err) {
				return nil, fmt.Errorf("failed to read config file: %w", err)
			}
		} else {
			if err := k.Load(rawbytes.Provider(content), yaml.Parser()); err != nil {
				return nil, fmt.Errorf("failed to load config file %s: %w", configPath, err)
			}
		}
	}

	if err := k.Load(env.Provider("", ".", func(s string) string {
		lower := strings.ToLower(s)
		parts := strings.SplitN(lower, "_", 2)
		if len(parts) == 1 {
			return lower
		}
		return parts[0] + "." + parts[1]
	}), nil); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return &cfg, nil
}
