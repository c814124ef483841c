// Package auth builds request authentication for the LNbits API.
//
// LNbits instances accept several authentication schemes. Exactly one method
// is active per credential set; the switch statements below are exhaustive
// over Method so adding a scheme is a compile-visible change.
package auth

import "fmt"

// Method selects how credentials are attached to outgoing requests.
type Method string

const (
	// APIKeyHeader sends the API key in the X-API-KEY header.
	APIKeyHeader Method = "api_key_header"
	// APIKeyQuery sends the API key as the api_key query parameter.
	APIKeyQuery Method = "api_key_query"
	// HTTPBearer sends the bearer token in the Authorization header.
	HTTPBearer Method = "http_bearer"
	// OAuth2 sends the OAuth2 access token in the Authorization header.
	OAuth2 Method = "oauth2"
)

// Methods lists all supported authentication methods.
func Methods() []Method {
	return []Method{APIKeyHeader, APIKeyQuery, HTTPBearer, OAuth2}
}

// ParseMethod validates a method tag.
func ParseMethod(s string) (Method, error) {
	switch Method(s) {
	case APIKeyHeader, APIKeyQuery, HTTPBearer, OAuth2:
		return Method(s), nil
	default:
		return "", fmt.Errorf("unknown auth method %q (expected one of %v)", s, Methods())
	}
}

// Credentials holds the secrets for one LNbits connection together with the
// selected method. Only the secret required by the method is consulted; the
// struct is never serialized, so redaction is handled by the configuration
// layer.
type Credentials struct {
	APIKey      string
	BearerToken string
	OAuth2Token string
	Method      Method
}

// Headers returns the authentication headers for the selected method.
func (c Credentials) Headers() map[string]string {
	headers := make(map[string]string)
	switch c.Method {
	case APIKeyHeader:
		if c.APIKey != "" {
			headers["X-API-KEY"] = c.APIKey
		}
	case APIKeyQuery:
		// Authenticates via query parameter, no headers.
	case HTTPBearer:
		if c.BearerToken != "" {
			headers["Authorization"] = "Bearer " + c.BearerToken
		}
	case OAuth2:
		if c.OAuth2Token != "" {
			headers["Authorization"] = "Bearer " + c.OAuth2Token
		}
	}
	return headers
}

// QueryParams returns the authentication query parameters for the selected method.
func (c Credentials) QueryParams() map[string]string {
	params := make(map[string]string)
	switch c.Method {
	case APIKeyQuery:
		if c.APIKey != "" {
			params["api_key"] = c.APIKey
		}
	case APIKeyHeader, HTTPBearer, OAuth2:
		// Authenticate via headers, no query parameters.
	}
	return params
}

// IsConfigured reports whether the secret required by the selected method is
// present. It returns false rather than an error; callers decide whether an
// unauthenticated call is acceptable.
func (c Credentials) IsConfigured() bool {
	switch c.Method {
	case APIKeyHeader, APIKeyQuery:
		return c.APIKey != ""
	case HTTPBearer:
		return c.BearerToken != ""
	case OAuth2:
		return c.OAuth2Token != ""
	}
	return false
}
