package resource

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/aoideee/inventory-console/internal/api"
	"github.com/aoideee/inventory-console/internal/notify/notifytest"
)

// recorded is one request seen by fakeAPI.
type recorded struct {
	Method string
	Path   string
	Query  url.Values
	Body   map[string]any
}

// fakeAPI is an httptest stand-in for the inventory API. respond decides the
// HTTP status and JSON body for each request.
type fakeAPI struct {
	mu       sync.Mutex
	requests []recorded
}

type responder func(r recorded) (int, any)

func newFakeAPI(t *testing.T, respond responder) (*fakeAPI, *api.Client) {
	t.Helper()
	f := &fakeAPI{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rec := recorded{Method: r.Method, Path: r.URL.Path, Query: r.URL.Query()}
		if r.ContentLength > 0 {
			dec := json.NewDecoder(r.Body)
			dec.UseNumber()
			require.NoError(t, dec.Decode(&rec.Body))
		}
		f.mu.Lock()
		f.requests = append(f.requests, rec)
		f.mu.Unlock()

		status, body := respond(rec)
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		if s, ok := body.(string); ok {
			_, _ = w.Write([]byte(s))
			return
		}
		require.NoError(t, json.NewEncoder(w).Encode(body))
	}))
	t.Cleanup(srv.Close)
	return f, api.New(srv.URL, api.StaticToken("test-token"))
}

func (f *fakeAPI) Requests() []recorded {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]recorded(nil), f.requests...)
}

func (f *fakeAPI) count(method string) int {
	n := 0
	for _, r := range f.Requests() {
		if r.Method == method {
			n++
		}
	}
	return n
}

func (f *fakeAPI) reset() {
	f.mu.Lock()
	f.requests = nil
	f.mu.Unlock()
}

func okEnvelope(payload any) map[string]any {
	return map[string]any{"success": true, "status": 200, "payload": payload}
}

func notFoundEnvelope(msg string) map[string]any {
	return map[string]any{"success": false, "status": 404, "message": msg}
}

func page(total int, content ...map[string]any) map[string]any {
	if content == nil {
		content = []map[string]any{}
	}
	return okEnvelope(map[string]any{"content": content, "page": map[string]any{"totalElements": total}})
}

// shirt is the item used throughout the scenarios.
var shirt = map[string]any{
	"itemId": "000001", "itemDescription": "Shirt", "category": "Apparel", "type": "CLOTHING",
	"status": "ACTIVE", "price": 100, "pickupAllowed": true, "shippingAllowed": false, "deliveryAllowed": true,
}

// alwaysPage answers every GET with the given page and every mutation with success.
func alwaysPage(p map[string]any) responder {
	return func(r recorded) (int, any) {
		if r.Method == http.MethodGet {
			return http.StatusOK, p
		}
		return http.StatusOK, map[string]any{"success": true, "status": 200}
	}
}

// stubRequester is a hand-driven Requester for ordering tests.
type stubRequester struct {
	get func(ctx context.Context, path string, query url.Values) (*api.Envelope, error)
}

func (s *stubRequester) Get(ctx context.Context, path string, query url.Values) (*api.Envelope, error) {
	return s.get(ctx, path, query)
}

func (s *stubRequester) Post(context.Context, string, any) (*api.Envelope, error) {
	return &api.Envelope{Success: true}, nil
}

func (s *stubRequester) Patch(context.Context, string, any) (*api.Envelope, error) {
	return &api.Envelope{Success: true}, nil
}

func (s *stubRequester) Delete(context.Context, string) (*api.Envelope, error) {
	return &api.Envelope{Success: true}, nil
}

func envelopeOf(t *testing.T, v map[string]any) *api.Envelope {
	t.Helper()
	js, err := json.Marshal(v)
	require.NoError(t, err)
	var env api.Envelope
	require.NoError(t, json.Unmarshal(js, &env))
	return &env
}

func newItems(t *testing.T, respond responder) (*Controller[Row], *fakeAPI, *notifytest.Recorder) {
	t.Helper()
	f, client := newFakeAPI(t, respond)
	rec := &notifytest.Recorder{}
	return NewController(Items(), client, rec), f, rec
}
