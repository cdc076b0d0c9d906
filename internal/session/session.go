// Package session holds the signed-in user's state between page loads: the
// API bearer token, the display name and any notifications waiting to be
// shown. Sessions are persisted in a [Store] keyed by a random id that travels
// in a cookie.
package session

import (
	"context"
	"encoding/json"
	"errors"
	"sync"

	"github.com/google/uuid"

	"github.com/aoideee/inventory-console/internal/notify"
)

// ErrNotFound is returned by stores when no live session has the given id.
var ErrNotFound = errors.New("session not found")

// Session is safe for concurrent use.
type Session struct {
	ID string

	mu        sync.Mutex
	token     string
	name      string
	stored    bool   // a copy exists in the store under ID
	dirty     bool   // token or name changed since the last save
	flashMark uint64 // Flash.Changes() at the last load or save

	// Flash collects notifications until the next render drains them.
	Flash notify.Queue
}

// New returns an empty session with a fresh random id.
func New() *Session {
	return &Session{ID: uuid.NewString()}
}

// Token returns the API bearer token, or "" when signed out. It makes
// *Session an api.TokenSource.
func (s *Session) Token() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.token
}

// SetToken stores the token issued by a successful sign-in.
func (s *Session) SetToken(token string) {
	s.mu.Lock()
	s.dirty = s.dirty || s.token != token
	s.token = token
	s.mu.Unlock()
}

// ClearToken signs the session out. The display name goes with it.
func (s *Session) ClearToken() {
	s.mu.Lock()
	s.dirty = s.dirty || s.token != "" || s.name != ""
	s.token = ""
	s.name = ""
	s.mu.Unlock()
}

// Name returns the signed-in user's display name.
func (s *Session) Name() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.name
}

// SetName stores the signed-in user's display name.
func (s *Session) SetName(name string) {
	s.mu.Lock()
	s.dirty = s.dirty || s.name != name
	s.name = name
	s.mu.Unlock()
}

// SignedIn reports whether the session holds a token.
func (s *Session) SignedIn() bool { return s.Token() != "" }

// Dirty reports whether s differs from its stored copy: the token, the name
// or the pending notifications changed since it was loaded or last saved.
func (s *Session) Dirty() bool {
	flash := s.Flash.Changes()
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.dirty || flash != s.flashMark
}

// Stored reports whether s was loaded from, or has been saved to, a store.
// Stores only update a stored session that still exists; they never
// recreate it.
func (s *Session) Stored() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.stored
}

func (s *Session) markSaved() {
	flash := s.Flash.Changes()
	s.mu.Lock()
	s.stored = true
	s.dirty = false
	s.flashMark = flash
	s.mu.Unlock()
}

// detach gives s a fresh id that no store knows yet.
func (s *Session) detach() {
	s.mu.Lock()
	s.ID = uuid.NewString()
	s.stored = false
	s.dirty = true
	s.mu.Unlock()
}

// wireSession is the persisted form of a Session.
type wireSession struct {
	Token string                `json:"token,omitempty"`
	Name  string                `json:"name,omitempty"`
	Flash []notify.Notification `json:"flash,omitempty"`
}

// MarshalJSON encodes the persisted fields. Pending notifications are copied,
// not drained.
func (s *Session) MarshalJSON() ([]byte, error) {
	s.mu.Lock()
	w := wireSession{Token: s.token, Name: s.name}
	s.mu.Unlock()
	w.Flash = s.Flash.Peek()
	return json.Marshal(w)
}

func (s *Session) requeue(n notify.Notification) {
	switch n.Level {
	case notify.LevelSuccess:
		s.Flash.Success(n.Message)
	default:
		s.Flash.Error(n.Message)
	}
}

// decode rebuilds a session from its persisted form.
func decode(id string, b []byte) (*Session, error) {
	var w wireSession
	if err := json.Unmarshal(b, &w); err != nil {
		return nil, err
	}
	s := &Session{ID: id, token: w.Token, name: w.Name}
	for _, n := range w.Flash {
		s.requeue(n)
	}
	s.markSaved()
	return s, nil
}

// Store persists sessions.
type Store interface {
	// Load returns the session with id, or ErrNotFound.
	Load(ctx context.Context, id string) (*Session, error)
	// Save writes s and resets its expiry. A session that is not Stored is
	// inserted. A Stored session is only replaced if its id is still live;
	// otherwise Save returns ErrNotFound and writes nothing.
	Save(ctx context.Context, s *Session) error
	// Touch resets the expiry of the live session with id, or returns
	// ErrNotFound.
	Touch(ctx context.Context, id string) error
	// Delete removes the session with id. Deleting a missing session is not an error.
	Delete(ctx context.Context, id string) error
}

type ctxKey struct{}

// NewContext returns a copy of ctx carrying s.
func NewContext(ctx context.Context, s *Session) context.Context {
	return context.WithValue(ctx, ctxKey{}, s)
}

// FromContext returns the session stored in ctx, or nil.
func FromContext(ctx context.Context) *Session {
	s, _ := ctx.Value(ctxKey{}).(*Session)
	return s
}
