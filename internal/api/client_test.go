package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// mutableToken stands in for a session whose token changes between calls.
type mutableToken struct{ tok string }

func (m *mutableToken) Token() string { return m.tok }

func writeEnvelope(t *testing.T, w http.ResponseWriter, status int, env map[string]any) {
	t.Helper()
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	require.NoError(t, json.NewEncoder(w).Encode(env))
}

func TestClientAttachesBearerOnlyWhenTokenPresent(t *testing.T) {
	var got []string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = append(got, r.Header.Get("Authorization"))
		writeEnvelope(t, w, http.StatusOK, map[string]any{"success": true})
	}))
	defer srv.Close()

	tok := &mutableToken{}
	c := New(srv.URL, tok)

	_, err := c.Get(context.Background(), "/items", nil)
	require.NoError(t, err)

	tok.tok = "abc123"
	_, err = c.Get(context.Background(), "/items", nil)
	require.NoError(t, err)

	_, err = New(srv.URL, nil).Get(context.Background(), "/items", nil)
	require.NoError(t, err)

	assert.Equal(t, []string{"", "Bearer abc123", ""}, got)
}

func TestClientWithTokensDoesNotMutateOriginal(t *testing.T) {
	var got []string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = append(got, r.Header.Get("Authorization"))
		writeEnvelope(t, w, http.StatusOK, map[string]any{"success": true})
	}))
	defer srv.Close()

	base := New(srv.URL, nil)
	bound := base.WithTokens(StaticToken("s1"))

	_, err := bound.Get(context.Background(), "/items", nil)
	require.NoError(t, err)
	_, err = base.Get(context.Background(), "/items", nil)
	require.NoError(t, err)

	assert.Equal(t, []string{"Bearer s1", ""}, got)
}

func TestClientVerbsAndBodies(t *testing.T) {
	type call struct {
		method, path, query, contentType string
		body                             map[string]any
	}
	var calls []call
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		c := call{method: r.Method, path: r.URL.Path, query: r.URL.RawQuery, contentType: r.Header.Get("Content-Type")}
		if r.ContentLength > 0 {
			require.NoError(t, json.NewDecoder(r.Body).Decode(&c.body))
		}
		calls = append(calls, c)
		writeEnvelope(t, w, http.StatusOK, map[string]any{"success": true})
	}))
	defer srv.Close()

	c := New(srv.URL+"/", StaticToken("t"))
	ctx := context.Background()

	_, err := c.Get(ctx, "/items", url.Values{"page": {"0"}, "search": {""}})
	require.NoError(t, err)
	_, err = c.Post(ctx, "/items", map[string]any{"itemId": "1"})
	require.NoError(t, err)
	_, err = c.Patch(ctx, "/items/1", map[string]any{"price": 5})
	require.NoError(t, err)
	_, err = c.Put(ctx, "/auth/profile", Profile{Name: "A"})
	require.NoError(t, err)
	_, err = c.Delete(ctx, "/items/1")
	require.NoError(t, err)

	require.Len(t, calls, 5)
	assert.Equal(t, call{method: "GET", path: "/items", query: "page=0&search="}, calls[0])
	assert.Equal(t, "POST", calls[1].method)
	assert.Equal(t, "application/json", calls[1].contentType)
	assert.Equal(t, "1", calls[1].body["itemId"])
	assert.Equal(t, "PATCH", calls[2].method)
	assert.Equal(t, "/items/1", calls[2].path)
	assert.Equal(t, "PUT", calls[3].method)
	assert.Equal(t, "A", calls[3].body["name"])
	assert.Equal(t, "DELETE", calls[4].method)
}

func TestClientEnvelopeHandling(t *testing.T) {
	tests := []struct {
		name        string
		status      int
		body        string
		wantErr     bool
		wantSuccess bool
		wantStatus  int
		wantMessage string
	}{
		{"success", 200, `{"success":true,"payload":{"a":1}}`, false, true, 200, ""},
		{"not found inside 200", 200, `{"success":false,"status":404,"message":"No items found"}`, false, false, 404, "No items found"},
		{"4xx with envelope", 400, `{"success":false,"message":"Item already exists"}`, false, false, 400, "Item already exists"},
		{"204 no content", 204, ``, false, true, 204, ""},
		{"5xx", 502, `bad gateway`, true, false, 0, ""},
		{"garbage", 200, `<html>`, true, false, 0, ""},
		{"4xx without body", 401, ``, true, false, 0, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			}))
			defer srv.Close()

			env, err := New(srv.URL, nil).Get(context.Background(), "/items/42", nil)
			if tt.wantErr {
				require.Error(t, err)
				var te *TransportError
				require.True(t, errors.As(err, &te))
				assert.Equal(t, "/items/:id", te.Path)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantSuccess, env.Success)
			assert.Equal(t, tt.wantStatus, env.Status)
			assert.Equal(t, tt.wantMessage, env.Message)
			assert.Equal(t, tt.wantStatus == 404, env.NotFound())
		})
	}
}

func TestClientNetworkFailureIsTransportError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	addr := srv.URL
	srv.Close()

	_, err := New(addr, nil, WithTimeout(time.Second)).Get(context.Background(), "/items", nil)
	var te *TransportError
	require.ErrorAs(t, err, &te)
	assert.Equal(t, 0, te.StatusCode)
	assert.Equal(t, "GET", te.Method)
}

func TestClientHonoursContextCancellation(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-release
	}))
	defer srv.Close()
	defer close(release)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := New(srv.URL, nil).Get(ctx, "/items", nil)
	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestEnvelopeDecodeKeepsNumbers(t *testing.T) {
	env := &Envelope{Payload: json.RawMessage(`{"price":100.50,"itemId":"000001"}`)}
	var got map[string]any
	require.NoError(t, env.Decode(&got))
	assert.Equal(t, json.Number("100.50"), got["price"])

	assert.Error(t, (&Envelope{}).Decode(&got))
}

func TestRouteLabel(t *testing.T) {
	assert.Equal(t, "/items", routeLabel("/items?page=0"))
	assert.Equal(t, "/items/:id", routeLabel("/items/000001"))
	assert.Equal(t, "/supply/all", routeLabel("/supply/all"))
	assert.Equal(t, "/items/ids", routeLabel("/items/ids?search=a"))
	assert.Equal(t, "/availability/v2/:id/:id", routeLabel("/availability/v2/SKU1/LOC9"))
}

func TestMetricsRecordOutcomes(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/items/missing" {
			writeEnvelope(t, w, http.StatusOK, map[string]any{"success": false, "status": 404, "message": "nope"})
			return
		}
		writeEnvelope(t, w, http.StatusOK, map[string]any{"success": true})
	}))
	defer srv.Close()

	reg := prometheus.NewRegistry()
	m := NewMetrics(reg)
	c := New(srv.URL, nil, WithMetrics(m))

	_, _ = c.Get(context.Background(), "/items", nil)
	_, _ = c.Get(context.Background(), "/items", nil)
	_, _ = c.Delete(context.Background(), "/items/missing")

	assert.Equal(t, 2.0, testutil.ToFloat64(m.Requests.WithLabelValues("GET", "/items", "success")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Requests.WithLabelValues("DELETE", "/items/:id", "not_found")))
}

func TestAuthEndpoints(t *testing.T) {
	var paths []string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		paths = append(paths, r.Method+" "+r.URL.RequestURI())
		switch r.URL.Path {
		case "/auth/signin":
			writeEnvelope(t, w, http.StatusOK, map[string]any{"success": true, "payload": map[string]any{"token": "jwt-1", "name": "Asha"}})
		default:
			writeEnvelope(t, w, http.StatusOK, map[string]any{"success": true})
		}
	}))
	defer srv.Close()

	ctx := context.Background()
	anon := New(srv.URL, nil)

	env, err := anon.SignIn(ctx, SignInRequest{Email: "a@b.c", Password: "pw"})
	require.NoError(t, err)
	creds, err := DecodeCredentials(env)
	require.NoError(t, err)
	assert.Equal(t, Credentials{Token: "jwt-1", Name: "Asha"}, creds)

	_, err = anon.VerifyEmail(ctx, "tok 1")
	require.NoError(t, err)

	_, err = anon.Profile(ctx)
	assert.ErrorIs(t, err, ErrNoToken)
	_, err = anon.Name(ctx)
	assert.ErrorIs(t, err, ErrNoToken)

	authed := anon.WithTokens(StaticToken(creds.Token))
	_, err = authed.Profile(ctx)
	require.NoError(t, err)
	_, err = authed.Availability(ctx, "v2", "SKU 1", "")
	require.NoError(t, err)

	assert.Equal(t, []string{
		"POST /auth/signin",
		"GET /auth/verify-email?token=tok+1",
		"GET /auth/profile",
		"GET /availability/v2/SKU%201",
	}, paths)
}

func TestDecodeCredentialsBareString(t *testing.T) {
	creds, err := DecodeCredentials(&Envelope{Success: true, Payload: json.RawMessage(`"tok"`)})
	require.NoError(t, err)
	assert.Equal(t, "tok", creds.Token)

	_, err = DecodeCredentials(&Envelope{Success: true, Payload: json.RawMessage(`{}`)})
	assert.Error(t, err)
	_, err = DecodeCredentials(nil)
	assert.Error(t, err)
}
