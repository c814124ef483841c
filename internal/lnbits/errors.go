package lnbits

import (
	"errors"
	"fmt"
	"net/http"
)

// RemoteError is a non-2xx response from the configured LNbits instance. The
// detail text is the server-provided "detail" field when the body is JSON,
// otherwise the raw body.
type RemoteError struct {
	Status int
	Detail string
}

func (e *RemoteError) Error() string {
	if e.Detail == "" {
		return fmt.Sprintf("API request failed: %d", e.Status)
	}
	return fmt.Sprintf("API request failed: %d - %s", e.Status, e.Detail)
}

// TransportError is a network-level failure (DNS, connection refused,
// timeout). No response was received, which distinguishes it from RemoteError.
type TransportError struct {
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("request failed: %v", e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// IsNotFound reports whether err is a RemoteError with HTTP 404 status.
func IsNotFound(err error) bool {
	var re *RemoteError
	return errors.As(err, &re) && re.Status == http.StatusNotFound
}
