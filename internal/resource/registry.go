package resource

import (
	"sync"
	"time"

	"github.com/aoideee/inventory-console/internal/notify"
)

type screenKey struct {
	session  string
	resource string
}

type screen struct {
	ctrl     *Controller[Row]
	lastUsed time.Time
}

// Registry keeps one controller per (session, resource) pair so that each
// user's page, search and dialogs survive between requests and are never
// shared with another user.
type Registry struct {
	schemas map[string]Schema[Row]
	order   []string
	now     func() time.Time

	mu      sync.Mutex
	screens map[screenKey]*screen
}

// NewRegistry returns a registry serving schemas.
func NewRegistry(schemas ...Schema[Row]) *Registry {
	r := &Registry{
		schemas: make(map[string]Schema[Row], len(schemas)),
		now:     time.Now,
		screens: make(map[screenKey]*screen),
	}
	for _, s := range schemas {
		r.schemas[s.Name] = s
		r.order = append(r.order, s.Name)
	}
	return r
}

// Schema returns the schema registered under name.
func (r *Registry) Schema(name string) (Schema[Row], bool) {
	s, ok := r.schemas[name]
	return s, ok
}

// Schemas returns every registered schema in registration order.
func (r *Registry) Schemas() []Schema[Row] {
	out := make([]Schema[Row], 0, len(r.order))
	for _, name := range r.order {
		out = append(out, r.schemas[name])
	}
	return out
}

// Controller returns the session's controller for resource, bound to client
// and notes for the duration of one request.
func (r *Registry) Controller(sessionID, resource string, client Requester, notes notify.Sink) (*Controller[Row], error) {
	schema, ok := r.schemas[resource]
	if !ok {
		return nil, ErrUnknownResource
	}
	key := screenKey{session: sessionID, resource: resource}

	r.mu.Lock()
	defer r.mu.Unlock()
	sc, ok := r.screens[key]
	if !ok {
		sc = &screen{ctrl: NewController(schema, client, notes)}
		r.screens[key] = sc
	}
	sc.lastUsed = r.now()
	return sc.ctrl.With(client, notes), nil
}

// Forget drops every screen of a session, e.g. on sign-out.
func (r *Registry) Forget(sessionID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for key := range r.screens {
		if key.session == sessionID {
			delete(r.screens, key)
		}
	}
}

// Sweep drops screens not used for longer than idle and returns how many
// were removed.
func (r *Registry) Sweep(idle time.Duration) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	cutoff := r.now().Add(-idle)
	for key, sc := range r.screens {
		if sc.lastUsed.Before(cutoff) {
			delete(r.screens, key)
			n++
		}
	}
	return n
}

// Len returns the number of live screens.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.screens)
}
