// Package api is the typed Repository over the Tripwiser backend. It exposes
// one method per endpoint, shapes payloads and classifies failures, and does
// nothing else: no caching, no business logic, no implicit retries beyond
// connection establishment.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const (
	// tokenHeader is the plain header the backend reads the access token
	// from. Not a Bearer scheme.
	tokenHeader = "token"

	maxBodyBytes = 1 << 20
)

// TokenSource supplies the current access token for outbound calls. The
// session store implements it; tests use literals.
type TokenSource interface {
	// AuthToken returns the current access token, or "" when logged out.
	AuthToken() string
}

// TokenInvalidator is optionally implemented by a TokenSource that wants to
// know when the backend rejected its token, so IsLoggedIn can flip without a
// round trip.
type TokenInvalidator interface {
	MarkInvalid()
}

// StaticToken is a TokenSource for a fixed token. Empty means unauthenticated.
type StaticToken string

func (t StaticToken) AuthToken() string { return string(t) }

// Timeouts bounds every backend call. The zero value is replaced by
// DefaultTimeouts.
type Timeouts struct {
	Connect   time.Duration // TCP connection establishment
	ReadWrite time.Duration // waiting for response headers
	Overall   time.Duration // whole call, dial to last body byte
}

// DefaultTimeouts matches the recommended transport policy.
var DefaultTimeouts = Timeouts{
	Connect:   60 * time.Second,
	ReadWrite: 120 * time.Second,
	Overall:   180 * time.Second,
}

// Client is the Repository. Safe for concurrent use.
type Client struct {
	baseURL      string
	httpClient   *http.Client
	tokens       TokenSource
	metrics      *Metrics
	dialAttempts int
	logger       *slog.Logger
}

// Option customizes a Client.
type Option func(*Client)

// WithHTTPClient replaces the default transport (mainly for tests).
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// WithMetrics attaches call metrics.
func WithMetrics(m *Metrics) Option {
	return func(c *Client) { c.metrics = m }
}

// WithDialAttempts sets how many times a call may be retried after a
// connection-establishment failure. Application-level failures (any HTTP
// response, 4xx/5xx included) are never retried.
func WithDialAttempts(n int) Option {
	return func(c *Client) {
		if n > 0 {
			c.dialAttempts = n
		}
	}
}

// WithLogger sets the logger for call-level diagnostics.
func WithLogger(l *slog.Logger) Option {
	return func(c *Client) { c.logger = l }
}

// WithTimeouts builds the default transport from the given bounds.
func WithTimeouts(t Timeouts) Option {
	return func(c *Client) { c.httpClient = NewHTTPClient(t) }
}

// New creates a Repository client for the backend at baseURL. The token
// source is injected rather than looked up ambiently: every call reads it,
// nothing here writes it.
func New(baseURL string, tokens TokenSource, opts ...Option) *Client {
	c := &Client{
		baseURL:      strings.TrimRight(baseURL, "/"),
		tokens:       tokens,
		dialAttempts: 3,
		logger:       slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.httpClient == nil {
		c.httpClient = NewHTTPClient(DefaultTimeouts)
	}
	return c
}

// NewHTTPClient builds an *http.Client enforcing the given timeout policy.
func NewHTTPClient(t Timeouts) *http.Client {
	if t == (Timeouts{}) {
		t = DefaultTimeouts
	}
	return &http.Client{
		Timeout: t.Overall,
		Transport: &http.Transport{
			DialContext: (&net.Dialer{
				Timeout:   t.Connect,
				KeepAlive: 30 * time.Second,
			}).DialContext,
			ResponseHeaderTimeout: t.ReadWrite,
			MaxIdleConns:          10,
			IdleConnTimeout:       90 * time.Second,
		},
	}
}

// errorBody is the shape of backend failure payloads.
type errorBody struct {
	Message string `json:"message"`
	Error   string `json:"error"`
}

// do runs one backend call: encode, send, classify, decode. out may be nil
// for calls whose response body is ignored; otherwise an empty 2xx body is
// an EmptyResponse failure.
func (c *Client) do(ctx context.Context, method, path string, query url.Values, in, out any) error {
	var payload []byte
	if in != nil {
		var err error
		payload, err = json.Marshal(in)
		if err != nil {
			return &APIError{Kind: KindUnknown, Message: "encode request", Err: err}
		}
	}

	endpoint := path
	start := time.Now()
	err := c.doOnce(ctx, method, path, query, payload, out)
	outcome := "ok"
	if err != nil {
		var apiErr *APIError
		if errors.As(err, &apiErr) {
			outcome = string(apiErr.Kind)
		} else {
			outcome = string(KindUnknown)
		}
	}
	c.metrics.observe(endpoint, outcome, time.Since(start))
	return err
}

func (c *Client) doOnce(ctx context.Context, method, path string, query url.Values, payload []byte, out any) error {
	reqURL := c.baseURL + "/" + path
	if len(query) > 0 {
		reqURL += "?" + query.Encode()
	}

	var resp *http.Response
	for attempt := 1; ; attempt++ {
		var body io.Reader
		if payload != nil {
			body = bytes.NewReader(payload)
		}
		req, err := http.NewRequestWithContext(ctx, method, reqURL, body)
		if err != nil {
			return &APIError{Kind: KindUnknown, Message: "build request", Err: err}
		}
		if payload != nil {
			req.Header.Set("Content-Type", "application/json")
		}
		if token := c.tokens.AuthToken(); token != "" {
			req.Header.Set(tokenHeader, token)
		}

		resp, err = c.httpClient.Do(req)
		if err == nil {
			break
		}
		if isDialFailure(err) && attempt < c.dialAttempts && ctx.Err() == nil {
			c.logger.Warn("connection failed, retrying",
				"path", path, "attempt", attempt, "error", err)
			continue
		}
		return &APIError{Kind: KindNetwork, Message: "request failed", Err: err}
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return &APIError{Kind: KindNetwork, Message: "read response", Err: err}
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		var eb errorBody
		_ = json.Unmarshal(raw, &eb)
		msg := eb.Message
		if msg == "" {
			msg = eb.Error
		}
		apiErr := Classify(resp.StatusCode, msg)
		if apiErr.Kind == KindAuth {
			if inv, ok := c.tokens.(TokenInvalidator); ok {
				inv.MarkInvalid()
			}
		}
		c.logger.Debug("call failed",
			"path", path, "status", resp.StatusCode, "kind", apiErr.Kind)
		return apiErr
	}

	if out == nil {
		return nil
	}
	if len(raw) == 0 {
		return &APIError{
			Kind:       KindEmptyResponse,
			HTTPStatus: resp.StatusCode,
			Message:    fmt.Sprintf("empty body from %s", path),
		}
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return &APIError{
			Kind:       KindUnknown,
			HTTPStatus: resp.StatusCode,
			Message:    "malformed response body",
			Err:        err,
		}
	}
	return nil
}

// isDialFailure reports whether the call never got past connection
// establishment. Only these failures are safe to retry blindly.
func isDialFailure(err error) bool {
	var opErr *net.OpError
	return errors.As(err, &opErr) && opErr.Op == "dial"
}
