package consigne_test

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/superquinquin/consigne-desk/pkg/consigne"
)

type recordedRequest struct {
	Method    string
	Path      string
	Body      string
	RequestID string
}

// backend is a stub consigne API answering with canned raw bodies per path.
type backend struct {
	mu       sync.Mutex
	requests []recordedRequest
	replies  map[string]reply
}

type reply struct {
	httpStatus int
	body       string
}

func startBackend(t *testing.T, replies map[string]reply) (*backend, *httptest.Server) {
	t.Helper()

	b := &backend{replies: replies}
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)

		b.mu.Lock()
		b.requests = append(b.requests, recordedRequest{
			Method:    r.Method,
			Path:      r.URL.EscapedPath(),
			Body:      string(body),
			RequestID: r.Header.Get(consigne.RequestIDHeader),
		})
		rep, ok := b.replies[r.URL.EscapedPath()]
		b.mu.Unlock()

		if !ok {
			w.WriteHeader(http.StatusOK)
			_, _ = w.Write([]byte(`{"status": 404, "reasons": "no such route"}`))
			return
		}

		status := rep.httpStatus
		if status == 0 {
			status = http.StatusOK
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = w.Write([]byte(rep.body))
	}))
	t.Cleanup(server.Close)

	return b, server
}

func (b *backend) Requests() []recordedRequest {
	b.mu.Lock()
	defer b.mu.Unlock()

	return append([]recordedRequest(nil), b.requests...)
}

func newClient(t *testing.T, server *httptest.Server, opts ...consigne.Option) *consigne.Client {
	t.Helper()

	c, err := consigne.NewClient(server.URL+"/api", append([]consigne.Option{consigne.WithHTTPClient(server.Client())}, opts...)...)
	require.NoError(t, err)

	return c
}

func envelope(t *testing.T, status int, reasons string, data any) string {
	t.Helper()

	b, err := json.Marshal(map[string]any{"status": status, "reasons": reasons, "data": data})
	require.NoError(t, err)

	return string(b)
}
