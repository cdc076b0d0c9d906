package session

import (
	"context"
	"errors"
	"net/http"
	"time"
)

// DefaultCookieName is the cookie that carries the session id.
const DefaultCookieName = "console_session"

// Manager binds sessions to HTTP requests through a cookie.
type Manager struct {
	Store      Store
	CookieName string
	TTL        time.Duration
	Secure     bool // Set the cookie's Secure flag (HTTPS deployments)
}

// Load returns the session named by r's cookie. A missing cookie or an
// unknown or expired id yields a fresh, unsaved session; only store failures
// are errors.
func (m *Manager) Load(r *http.Request) (*Session, error) {
	c, err := r.Cookie(m.cookieName())
	if err != nil || c.Value == "" {
		return New(), nil
	}
	s, err := m.Store.Load(r.Context(), c.Value)
	if errors.Is(err, ErrNotFound) {
		return New(), nil
	}
	if err != nil {
		return nil, err
	}
	return s, nil
}

// Save writes s back if it changed, otherwise extends its life, and
// (re)issues its cookie on w. A fresh session with nothing in it is not
// stored and gets no cookie. A session deleted while the request ran, by a
// sign-out on another request, stays deleted: Save then does nothing.
func (m *Manager) Save(ctx context.Context, w http.ResponseWriter, s *Session) error {
	var err error
	switch {
	case s.Dirty():
		err = m.Store.Save(ctx, s)
	case s.Stored():
		err = m.Store.Touch(ctx, s.ID)
	default:
		return nil
	}
	if errors.Is(err, ErrNotFound) {
		return nil
	}
	if err != nil {
		return err
	}
	s.markSaved()

	http.SetCookie(w, &http.Cookie{
		Name:     m.cookieName(),
		Value:    s.ID,
		Path:     "/",
		MaxAge:   int(m.TTL.Seconds()),
		HttpOnly: true,
		Secure:   m.Secure,
		SameSite: http.SameSiteLaxMode,
	})
	return nil
}

// Renew moves s to a fresh id and deletes the stored copy under the old one,
// so a cookie captured before sign-in or sign-out no longer names a live
// session. Requests still holding the old copy cannot write it back. The
// next Save inserts s under the new id and issues its cookie. Pending
// notifications stay.
func (m *Manager) Renew(ctx context.Context, s *Session) (oldID string, err error) {
	oldID = s.ID
	if err := m.Store.Delete(ctx, oldID); err != nil {
		return oldID, err
	}
	s.detach()
	return oldID, nil
}

func (m *Manager) cookieName() string {
	if m.CookieName == "" {
		return DefaultCookieName
	}
	return m.CookieName
}
