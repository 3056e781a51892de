// Package consigne is a typed client of the consigne deposit API.
//
// Every response of the API is an Envelope whose status, not the HTTP status,
// tells whether the operation succeeded. Failing envelopes are returned as
// *serviceerr.ServiceError, requests that never got an answer as
// *serviceerr.TransportError.
package consigne

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"slices"
	"time"

	"github.com/google/uuid"
	"github.com/openkcm/common-sdk/pkg/commoncfg"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"

	slogctx "github.com/veqryn/slog-context"

	"github.com/superquinquin/consigne-desk/internal/serviceerr"
)

const (
	RequestIDHeader = "X-Request-ID"

	contentType     = "application/json;charset=UTF-8"
	maxResponseSize = 4 << 20
)

type Client struct {
	baseURL *url.URL
	http    *http.Client

	notFoundStatuses []int
	conflictStatuses []int

	tracer   trace.Tracer
	requests metric.Int64Counter
	duration metric.Int64Histogram
}

type Option func(*Client)

// WithHTTPClient sets the client used for all requests. Timeouts belong there.
func WithHTTPClient(httpClient *http.Client) Option {
	return func(c *Client) {
		if httpClient != nil {
			c.http = httpClient
		}
	}
}

// WithNotFoundStatuses sets the envelope statuses reported as serviceerr.ErrNotFound.
func WithNotFoundStatuses(statuses ...int) Option {
	return func(c *Client) {
		if len(statuses) > 0 {
			c.notFoundStatuses = statuses
		}
	}
}

// WithConflictStatuses sets the envelope statuses reported as serviceerr.ErrConflict.
func WithConflictStatuses(statuses ...int) Option {
	return func(c *Client) {
		if len(statuses) > 0 {
			c.conflictStatuses = statuses
		}
	}
}

func NewClient(baseURL string, opts ...Option) (*Client, error) {
	u, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("parsing base url: %w", err)
	}

	if u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("base url %q is not absolute", baseURL)
	}

	c := &Client{
		baseURL:          u,
		http:             http.DefaultClient,
		notFoundStatuses: []int{http.StatusNotFound},
		conflictStatuses: []int{http.StatusConflict},
	}

	for _, opt := range opts {
		if opt != nil {
			opt(c)
		}
	}

	if err := c.initTelemetry(); err != nil {
		return nil, err
	}

	return c, nil
}

// call performs one request and checks the envelope status. Data is only
// decoded for successful envelopes.
func call[T any](ctx context.Context, c *Client, op, method string, body any, segments ...string) (env Envelope[T], err error) {
	ctx, span := c.tracer.Start(ctx, op, trace.WithSpanKind(trace.SpanKindClient))
	start := time.Now()
	defer func() {
		c.observe(ctx, span, op, env.Status, err, time.Since(start))
		span.End()
	}()

	req, err := c.newRequest(ctx, method, body, segments...)
	if err != nil {
		return env, fmt.Errorf("%s: creating request: %w", op, err)
	}

	ctx = slogctx.With(ctx,
		commoncfg.AttrOperation, op,
		commoncfg.AttrRequestID, req.Header.Get(RequestIDHeader),
	)

	resp, err := c.http.Do(req)
	if err != nil {
		return env, &serviceerr.TransportError{Op: op, Err: err}
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		return env, &serviceerr.TransportError{Op: op, Err: err}
	}

	// A body that is not an envelope falls back to the HTTP status.
	var raw Envelope[json.RawMessage]
	if err := json.Unmarshal(respBody, &raw); err != nil || raw.Status == 0 {
		if resp.StatusCode < 200 || resp.StatusCode >= 300 {
			env.Status = resp.StatusCode
			return env, c.serviceError(op, resp.StatusCode, http.StatusText(resp.StatusCode))
		}

		if err == nil {
			err = errors.New("missing status")
		}

		return env, serviceerr.Malformed(op, err)
	}

	env.Status, env.Reasons = raw.Status, raw.Reasons
	slogctx.Debug(ctx, "Received a consigne envelope", "status", env.Status)

	if !env.OK() {
		return env, c.serviceError(op, env.Status, env.Reasons)
	}

	if raw.Data != nil {
		var data T
		if err := json.Unmarshal(*raw.Data, &data); err != nil {
			return env, serviceerr.Malformed(op, err)
		}

		env.Data = &data
	}

	return env, nil
}

func (c *Client) newRequest(ctx context.Context, method string, body any, segments ...string) (*http.Request, error) {
	var reader io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("encoding body: %w", err)
		}

		reader = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.endpoint(segments...), reader)
	if err != nil {
		return nil, err
	}

	req.Header.Set("Content-Type", contentType)
	req.Header.Set("Accept", "application/json")
	req.Header.Set(RequestIDHeader, uuid.NewString())
	otel.GetTextMapPropagator().Inject(ctx, propagation.HeaderCarrier(req.Header))

	return req, nil
}

func (c *Client) endpoint(segments ...string) string {
	escaped := make([]string, 0, len(segments))
	for _, s := range segments {
		escaped = append(escaped, url.PathEscape(s))
	}

	return c.baseURL.JoinPath(escaped...).String()
}

func (c *Client) serviceError(op string, status int, reasons string) error {
	err := &serviceerr.ServiceError{Op: op, Status: status, Reasons: reasons}

	switch {
	case slices.Contains(c.notFoundStatuses, status):
		err.Kind = serviceerr.ErrNotFound
	case slices.Contains(c.conflictStatuses, status):
		err.Kind = serviceerr.ErrConflict
	}

	return err
}
