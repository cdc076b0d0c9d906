// Package api is the console's single HTTP client for the remote inventory
// API.
//
// Every call returns the API's response [Envelope]. Domain failures such as a
// missing record arrive inside the envelope (Status 404), not as Go errors. A
// non-nil error from a verb always means the request never produced a usable
// envelope: connectivity problems, timeouts, 5xx responses without a body the
// console can decode, or a cancelled context. Those are reported as
// [*TransportError].
//
// The bearer token is not held by the client. It is read from the
// [TokenSource] given to [New] (usually the caller's session) on every request,
// and the Authorization header is omitted when the token is empty.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// maxBodyBytes caps how much of an API response the console will read.
const maxBodyBytes = 4 << 20

// ErrNoToken is returned by endpoints that make no sense without a signed-in
// user, before any request is sent.
var ErrNoToken = errors.New("api: no auth token")

// TokenSource provides the bearer token for outgoing requests.
type TokenSource interface {
	Token() string
}

// StaticToken is a TokenSource that always returns the same token.
type StaticToken string

// Token returns t.
func (t StaticToken) Token() string { return string(t) }

// Envelope is the wrapper every API response uses.
type Envelope struct {
	Success bool            `json:"success"`
	Status  int             `json:"status,omitempty"`
	Message string          `json:"message,omitempty"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// NotFound reports whether the API flagged the request as a not-found or
// domain error. The API reports this inside a 200 response.
func (e *Envelope) NotFound() bool {
	return e != nil && e.Status == http.StatusNotFound
}

// Decode unmarshals the payload into dst. Numbers are kept as json.Number so
// identifiers like 000001 and prices survive untouched.
func (e *Envelope) Decode(dst any) error {
	if e == nil || len(e.Payload) == 0 || string(e.Payload) == "null" {
		return errors.New("api: empty payload")
	}
	dec := json.NewDecoder(bytes.NewReader(e.Payload))
	dec.UseNumber()
	if err := dec.Decode(dst); err != nil {
		return fmt.Errorf("api: decode payload: %w", err)
	}
	return nil
}

// TransportError reports a request that did not yield an envelope.
type TransportError struct {
	Method     string
	Path       string
	StatusCode int // 0 when no response was received
	Err        error
}

func (e *TransportError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("api: %s %s: status %d: %v", e.Method, e.Path, e.StatusCode, e.Err)
	}
	return fmt.Sprintf("api: %s %s: %v", e.Method, e.Path, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

// Client is safe for concurrent use by multiple goroutines.
type Client struct {
	baseURL    string
	httpClient *http.Client
	tokens     TokenSource
	logger     *slog.Logger
	metrics    *Metrics
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying *http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// WithTimeout sets the per-request timeout of the underlying *http.Client.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.httpClient.Timeout = d }
}

// WithLogger sets the logger used for upstream call logging.
func WithLogger(l *slog.Logger) Option {
	return func(c *Client) { c.logger = l }
}

// WithMetrics records every upstream call on m.
func WithMetrics(m *Metrics) Option {
	return func(c *Client) { c.metrics = m }
}

// New creates a client for the API rooted at baseURL (scheme and host plus an
// optional path prefix, no trailing slash). tokens may be nil for an
// anonymous client.
func New(baseURL string, tokens TokenSource, opts ...Option) *Client {
	c := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: 30 * time.Second},
		tokens:     tokens,
		logger:     slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// WithTokens returns a copy of c that reads its bearer token from tokens. The
// copy shares the connection pool, logger and metrics with c.
func (c *Client) WithTokens(tokens TokenSource) *Client {
	cp := *c
	cp.tokens = tokens
	return &cp
}

func (c *Client) token() string {
	if c.tokens == nil {
		return ""
	}
	return c.tokens.Token()
}

// Get issues a GET for path with the given query string.
func (c *Client) Get(ctx context.Context, path string, query url.Values) (*Envelope, error) {
	if len(query) > 0 {
		path += "?" + query.Encode()
	}
	return c.do(ctx, http.MethodGet, path, nil)
}

// Post issues a POST with body encoded as JSON.
func (c *Client) Post(ctx context.Context, path string, body any) (*Envelope, error) {
	return c.do(ctx, http.MethodPost, path, body)
}

// Patch issues a PATCH with body encoded as JSON.
func (c *Client) Patch(ctx context.Context, path string, body any) (*Envelope, error) {
	return c.do(ctx, http.MethodPatch, path, body)
}

// Put issues a PUT with body encoded as JSON.
func (c *Client) Put(ctx context.Context, path string, body any) (*Envelope, error) {
	return c.do(ctx, http.MethodPut, path, body)
}

// Delete issues a DELETE for path.
func (c *Client) Delete(ctx context.Context, path string) (*Envelope, error) {
	return c.do(ctx, http.MethodDelete, path, nil)
}

func (c *Client) do(ctx context.Context, method, path string, body any) (env *Envelope, err error) {
	route := routeLabel(path)
	start := time.Now()
	defer func() {
		c.metrics.observe(method, route, outcomeOf(env, err), time.Since(start))
		if err != nil {
			c.logger.Warn("upstream request failed", "method", method, "route", route, "error", err)
		} else {
			c.logger.Debug("upstream request", "method", method, "route", route,
				"success", env.Success, "status", env.Status, "duration", time.Since(start))
		}
	}()

	var bodyReader io.Reader
	if body != nil {
		js, err := json.Marshal(body)
		if err != nil {
			return nil, &TransportError{Method: method, Path: route, Err: fmt.Errorf("encode body: %w", err)}
		}
		bodyReader = bytes.NewReader(js)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, bodyReader)
	if err != nil {
		return nil, &TransportError{Method: method, Path: route, Err: err}
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if tok := c.token(); tok != "" {
		req.Header.Set("Authorization", "Bearer "+tok)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &TransportError{Method: method, Path: route, Err: err}
	}
	defer resp.Body.Close()

	return decodeEnvelope(method, route, resp)
}

// decodeEnvelope turns resp into an envelope. A 4xx response that carries an
// envelope is returned as one; anything else that cannot be decoded, and any
// 5xx, is a transport error.
func decodeEnvelope(method, route string, resp *http.Response) (*Envelope, error) {
	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, &TransportError{Method: method, Path: route, StatusCode: resp.StatusCode, Err: err}
	}

	if resp.StatusCode >= http.StatusInternalServerError {
		return nil, &TransportError{Method: method, Path: route, StatusCode: resp.StatusCode,
			Err: fmt.Errorf("server error: %s", strings.TrimSpace(string(raw)))}
	}

	var env Envelope
	if len(bytes.TrimSpace(raw)) == 0 {
		if resp.StatusCode >= http.StatusBadRequest {
			return nil, &TransportError{Method: method, Path: route, StatusCode: resp.StatusCode, Err: errors.New("empty response body")}
		}
		// A bare 2xx (typically 204 on delete) is a success without payload.
		env.Success = true
		env.Status = resp.StatusCode
		return &env, nil
	}
	if err := json.Unmarshal(raw, &env); err != nil {
		return nil, &TransportError{Method: method, Path: route, StatusCode: resp.StatusCode, Err: fmt.Errorf("decode envelope: %w", err)}
	}
	if env.Status == 0 {
		env.Status = resp.StatusCode
	}
	return &env, nil
}

// knownSegments are the static path words of the API. Any other segment is an
// identifier and is collapsed to :id in metric labels and logs.
var knownSegments = map[string]bool{
	"items": true, "locations": true, "supply": true, "demand": true, "atpThresholds": true,
	"all": true, "ids": true, "auth": true, "signin": true, "signup": true, "verify-email": true,
	"profile": true, "name": true, "dashboard": true, "availability": true,
	"getAvailabilityScatterData": true, "stackedBarData": true, "v1": true, "v2": true,
}

func routeLabel(path string) string {
	if i := strings.IndexByte(path, '?'); i >= 0 {
		path = path[:i]
	}
	segs := strings.Split(strings.Trim(path, "/"), "/")
	for i, s := range segs {
		if !knownSegments[s] {
			segs[i] = ":id"
		}
	}
	return "/" + strings.Join(segs, "/")
}
