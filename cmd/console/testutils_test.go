package main

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

// upstreamCall is one request received by the fake inventory API.
type upstreamCall struct {
	Method string
	Path   string
	Query  url.Values
	Auth   string
}

// fakeInventory is an httptest inventory API built on a ServeMux, recording
// every call.
type fakeInventory struct {
	mux *http.ServeMux
	srv *httptest.Server

	mu    sync.Mutex
	calls []upstreamCall
}

// newFakeInventory returns an inventory API that accepts any sign-in.
func newFakeInventory(t *testing.T) *fakeInventory {
	t.Helper()
	f := newBareInventory(t)
	f.handle("POST /auth/signin", http.StatusOK, map[string]any{"success": true, "status": 200, "payload": map[string]any{"token": "tok-1"}})
	f.handle("GET /auth/name", http.StatusOK, map[string]any{"success": true, "status": 200, "payload": "Asha"})
	return f
}

// newBareInventory returns an inventory API with no routes registered.
func newBareInventory(t *testing.T) *fakeInventory {
	t.Helper()
	f := &fakeInventory{mux: http.NewServeMux()}
	f.srv = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		f.mu.Lock()
		f.calls = append(f.calls, upstreamCall{
			Method: r.Method, Path: r.URL.Path, Query: r.URL.Query(), Auth: r.Header.Get("Authorization"),
		})
		f.mu.Unlock()
		f.mux.ServeHTTP(w, r)
	}))
	t.Cleanup(f.srv.Close)
	return f
}

// handle answers pattern with a fixed JSON body.
func (f *fakeInventory) handle(pattern string, status int, body any) {
	f.mux.HandleFunc(pattern, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		json.NewEncoder(w).Encode(body)
	})
}

// callsTo returns the recorded calls with method and path.
func (f *fakeInventory) callsTo(method, path string) []upstreamCall {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []upstreamCall
	for _, c := range f.calls {
		if c.Method == method && c.Path == path {
			out = append(out, c)
		}
	}
	return out
}

func (f *fakeInventory) reset() {
	f.mu.Lock()
	f.calls = nil
	f.mu.Unlock()
}

func listEnvelope(total int, rows ...map[string]any) map[string]any {
	if rows == nil {
		rows = []map[string]any{}
	}
	return map[string]any{"success": true, "status": 200, "payload": map[string]any{
		"content": rows, "page": map[string]any{"totalElements": total},
	}}
}

func testConfig(apiURL string) serverConfig {
	var cfg serverConfig
	cfg.port = 4000
	cfg.environment = "testing"
	cfg.api.url = apiURL
	cfg.api.timeout = 5 * time.Second
	cfg.session.store = "memory"
	cfg.session.ttl = time.Hour
	cfg.limiter.enabled = false
	return cfg
}

func newTestApplication(t *testing.T, cfg serverConfig) *applicationDependencies {
	t.Helper()
	backend, err := openSessionBackend(cfg)
	require.NoError(t, err)
	t.Cleanup(func() { backend.close() })

	app, err := newApplication(cfg, slog.New(slog.DiscardHandler), backend)
	require.NoError(t, err)
	return app
}

// browser is a cookie-keeping client that does not follow redirects.
type browser struct {
	t      *testing.T
	srv    *httptest.Server
	client *http.Client
}

func newBrowser(t *testing.T, app *applicationDependencies) *browser {
	t.Helper()
	srv := httptest.NewServer(app.routes())
	t.Cleanup(srv.Close)

	jar, err := cookiejar.New(nil)
	require.NoError(t, err)
	return &browser{t: t, srv: srv, client: &http.Client{
		Jar: jar,
		CheckRedirect: func(*http.Request, []*http.Request) error {
			return http.ErrUseLastResponse
		},
	}}
}

func (b *browser) do(req *http.Request) (*http.Response, string) {
	b.t.Helper()
	res, err := b.client.Do(req)
	require.NoError(b.t, err)
	defer res.Body.Close()
	body, err := io.ReadAll(res.Body)
	require.NoError(b.t, err)
	return res, string(body)
}

func (b *browser) get(path string) (*http.Response, string) {
	b.t.Helper()
	req, err := http.NewRequest(http.MethodGet, b.srv.URL+path, nil)
	require.NoError(b.t, err)
	return b.do(req)
}

func (b *browser) getJSON(path string, dst any) *http.Response {
	b.t.Helper()
	req, err := http.NewRequest(http.MethodGet, b.srv.URL+path, nil)
	require.NoError(b.t, err)
	req.Header.Set("Accept", "application/json")
	res, body := b.do(req)
	require.NoError(b.t, json.Unmarshal([]byte(body), dst), body)
	return res
}

func (b *browser) post(path string, form url.Values) (*http.Response, string) {
	b.t.Helper()
	req, err := http.NewRequest(http.MethodPost, b.srv.URL+path, strings.NewReader(form.Encode()))
	require.NoError(b.t, err)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return b.do(req)
}

func (b *browser) signIn() {
	b.t.Helper()
	res, _ := b.post("/login", url.Values{"email": {"asha@example.com"}, "password": {"pa55word"}})
	require.Equal(b.t, http.StatusSeeOther, res.StatusCode)
	require.Equal(b.t, "/dashboard", res.Header.Get("Location"))
}
