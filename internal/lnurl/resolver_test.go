package lnurl

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// rewriteTransport redirects every request to the test server regardless of
// the host in the URL, so the https well-known URLs resolve locally.
type rewriteTransport struct {
	host string
}

func (t rewriteTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	req.URL.Scheme = "http"
	req.URL.Host = t.host
	return http.DefaultTransport.RoundTrip(req)
}

func newTestResolver(t *testing.T, handler http.Handler) (*Resolver, *httptest.Server) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	r := NewResolver(5*time.Second, nil)
	r.SetTransport(rewriteTransport{host: srv.Listener.Addr().String()})
	return r, srv
}

func TestValidateAddress(t *testing.T) {
	tests := []struct {
		address string
		valid   bool
	}{
		{"alice@example.com", true},
		{"user@sub.domain.org", true},
		{"no-at-sign", false},
		{"two@at@signs.com", false},
		{"@example.com", false},
		{"alice@", false},
		{"alice@localhost", false},
		{"", false},
	}

	for _, tt := range tests {
		t.Run(tt.address, func(t *testing.T) {
			err := ValidateAddress(tt.address)
			if tt.valid {
				require.NoError(t, err)
				return
			}
			var resErr *ResolutionError
			require.ErrorAs(t, err, &resErr)
		})
	}
}

func TestResolve(t *testing.T) {
	var gotPath atomic.Value
	r, _ := newTestResolver(t, http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		gotPath.Store(req.URL.Path)
		_ = json.NewEncoder(w).Encode(map[string]any{
			"callback":       "https://example.com/lnurlp/cb",
			"minSendable":    1000,
			"maxSendable":    100000000,
			"metadata":       `[["text/plain","pay alice"]]`,
			"commentAllowed": 120,
		})
	}))

	params, err := r.Resolve(context.Background(), "alice@example.com")
	require.NoError(t, err)
	assert.Equal(t, "/.well-known/lnurlp/alice", gotPath.Load())
	assert.Equal(t, "https://example.com/lnurlp/cb", params.Callback)
	assert.Equal(t, int64(1000), params.MinSendable)
	assert.Equal(t, int64(100000000), params.MaxSendable)
	assert.Equal(t, 120, params.CommentChars)
}

func TestResolveMalformedAddressSkipsNetwork(t *testing.T) {
	var calls atomic.Int64
	r, _ := newTestResolver(t, http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		calls.Add(1)
	}))

	_, err := r.Resolve(context.Background(), "not-an-address")
	var resErr *ResolutionError
	require.ErrorAs(t, err, &resErr)
	assert.Equal(t, "not-an-address", resErr.Address)
	assert.Equal(t, int64(0), calls.Load())
}

func TestResolveFailures(t *testing.T) {
	tests := []struct {
		name    string
		handler http.HandlerFunc
		reason  string
	}{
		{
			name: "non-200 discovery",
			handler: func(w http.ResponseWriter, req *http.Request) {
				w.WriteHeader(http.StatusNotFound)
			},
			reason: "HTTP 404",
		},
		{
			name: "invalid JSON",
			handler: func(w http.ResponseWriter, req *http.Request) {
				_, _ = w.Write([]byte("<html>not json</html>"))
			},
			reason: "not valid JSON",
		},
		{
			name: "missing callback",
			handler: func(w http.ResponseWriter, req *http.Request) {
				_ = json.NewEncoder(w).Encode(map[string]any{
					"minSendable": 1000,
					"maxSendable": 2000,
				})
			},
			reason: "missing callback",
		},
		{
			name: "missing maxSendable",
			handler: func(w http.ResponseWriter, req *http.Request) {
				_ = json.NewEncoder(w).Encode(map[string]any{
					"callback":    "https://example.com/cb",
					"minSendable": 1000,
				})
			},
			reason: "maxSendable",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, _ := newTestResolver(t, tt.handler)
			_, err := r.Resolve(context.Background(), "alice@example.com")
			var resErr *ResolutionError
			require.ErrorAs(t, err, &resErr)
			assert.Contains(t, resErr.Reason, tt.reason)
		})
	}
}

func TestResolveZeroSendableBoundIsPresent(t *testing.T) {
	r, _ := newTestResolver(t, http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]any{
			"callback":    "https://example.com/cb",
			"minSendable": 0,
			"maxSendable": 100000000,
		})
	}))

	params, err := r.Resolve(context.Background(), "alice@example.com")
	require.NoError(t, err)
	assert.Equal(t, int64(0), params.MinSendable)
	assert.Equal(t, int64(100000000), params.MaxSendable)
}

func TestRequestInvoice(t *testing.T) {
	var gotQuery atomic.Value
	r, srv := newTestResolver(t, http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		gotQuery.Store(req.URL.Query())
		_ = json.NewEncoder(w).Encode(map[string]string{"pr": "lnbc50n1invoice"})
	}))

	pr, err := r.RequestInvoice(context.Background(), srv.URL+"/lnurlp/cb", 5000, "thanks")
	require.NoError(t, err)
	assert.Equal(t, "lnbc50n1invoice", pr)

	q := gotQuery.Load().(url.Values)
	assert.Equal(t, "5000", q.Get("amount"))
	assert.Equal(t, "thanks", q.Get("comment"))
}

func TestRequestInvoiceOmitsEmptyComment(t *testing.T) {
	var gotQuery atomic.Value
	r, srv := newTestResolver(t, http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		gotQuery.Store(req.URL.Query())
		_ = json.NewEncoder(w).Encode(map[string]string{"pr": "lnbc1"})
	}))

	_, err := r.RequestInvoice(context.Background(), srv.URL+"/cb", 1000, "")
	require.NoError(t, err)

	q := gotQuery.Load().(url.Values)
	_, hasComment := q["comment"]
	assert.False(t, hasComment)
}

func TestRequestInvoiceCounterpartyReason(t *testing.T) {
	r, srv := newTestResolver(t, http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]string{"status": "ERROR", "reason": "amount too low"})
	}))

	_, err := r.RequestInvoice(context.Background(), srv.URL+"/cb", 1, "")
	var resErr *ResolutionError
	require.ErrorAs(t, err, &resErr)
	assert.Equal(t, "amount too low", resErr.Reason)
}

func TestRequestInvoiceMissingPR(t *testing.T) {
	r, srv := newTestResolver(t, http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]string{"status": "OK"})
	}))

	_, err := r.RequestInvoice(context.Background(), srv.URL+"/cb", 1000, "")
	var resErr *ResolutionError
	require.ErrorAs(t, err, &resErr)
	assert.Contains(t, resErr.Reason, "no invoice")
}
