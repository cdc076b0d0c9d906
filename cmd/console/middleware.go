// cmd/console/middleware.go
// This file contains HTTP middleware used to wrap the router.
// Middleware functions intercept every request before it reaches a handler.
package main

import (
	"fmt"
	"net"
	"net/http"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/aoideee/inventory-console/internal/guard"
	"github.com/aoideee/inventory-console/internal/session"
)

// recoverPanic catches any runtime panic that occurs in a downstream handler.
// Without this, a panic would cause the goroutine to terminate and the client's
// connection to be dropped silently. With this middleware the client receives a
// clean 500 Internal Server Error instead.
func (app *applicationDependencies) recoverPanic(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if err := recover(); err != nil {
				w.Header().Set("Connection", "close")
				app.serverErrorResponse(w, r, fmt.Errorf("%s", err))
			}
		}()
		next.ServeHTTP(w, r)
	})
}

// client holds a per-IP rate limiter and the time it was last seen.
// lastSeen lets us evict old entries so the map does not grow forever.
type client struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// clientIdle is how long an IP may stay quiet before its limiter is evicted.
const clientIdle = 3 * time.Minute

// ipLimiters is the per-IP token bucket table behind rateLimit. The sweeper
// prunes it, so building more routers never starts more goroutines.
type ipLimiters struct {
	mu      sync.Mutex
	clients map[string]*client
	now     func() time.Time
}

func newIPLimiters() *ipLimiters {
	return &ipLimiters{clients: make(map[string]*client), now: time.Now}
}

// allow takes a token from ip's bucket, creating the bucket on first sight.
func (l *ipLimiters) allow(ip string, rps float64, burst int) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	c, found := l.clients[ip]
	if !found {
		c = &client{limiter: rate.NewLimiter(rate.Limit(rps), burst)}
		l.clients[ip] = c
	}
	c.lastSeen = l.now()
	return c.limiter.Allow()
}

// prune evicts clients not seen for longer than idle and returns how many
// went.
func (l *ipLimiters) prune(idle time.Duration) int {
	l.mu.Lock()
	defer l.mu.Unlock()

	n := 0
	for ip, c := range l.clients {
		if l.now().Sub(c.lastSeen) > idle {
			delete(l.clients, ip)
			n++
		}
	}
	return n
}

func (l *ipLimiters) len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.clients)
}

// rateLimit implements per-IP token-bucket rate limiting using the
// golang.org/x/time/rate package. Rate and burst come from the -limiter-*
// flags. Type-ahead lookups go through here as well, which keeps a fast
// typist from flooding the inventory API.
func (app *applicationDependencies) rateLimit(next http.Handler) http.Handler {
	if !app.config.limiter.enabled {
		return next
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ip, _, err := net.SplitHostPort(r.RemoteAddr)
		if err != nil {
			app.serverErrorResponse(w, r, err)
			return
		}

		if !app.limiters.allow(ip, app.config.limiter.rps, app.config.limiter.burst) {
			app.rateLimitExceededResponse(w, r)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// loadSession attaches the caller's session to the request context and saves
// it back just before the response header goes out, which is the last moment
// its cookie can still be set.
func (app *applicationDependencies) loadSession(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s, err := app.sessions.Load(r)
		if err != nil {
			app.serverErrorResponse(w, r, fmt.Errorf("load session: %w", err))
			return
		}

		sw := &sessionWriter{ResponseWriter: w, app: app, r: r, s: s}
		next.ServeHTTP(sw, r.WithContext(session.NewContext(r.Context(), s)))
		sw.commit()
	})
}

// sessionWriter saves the session on the first header write.
type sessionWriter struct {
	http.ResponseWriter
	app  *applicationDependencies
	r    *http.Request
	s    *session.Session
	done bool
}

func (sw *sessionWriter) commit() {
	if sw.done {
		return
	}
	sw.done = true

	// Unchanged sessions are only touched, and visitors with nothing to
	// remember get none, so health checks and scrapes do not fill the store.
	if err := sw.app.sessions.Save(sw.r.Context(), sw.ResponseWriter, sw.s); err != nil {
		sw.app.logError(sw.r, fmt.Errorf("save session: %w", err))
	}
}

func (sw *sessionWriter) WriteHeader(code int) {
	sw.commit()
	sw.ResponseWriter.WriteHeader(code)
}

func (sw *sessionWriter) Write(b []byte) (int, error) {
	sw.commit()
	return sw.ResponseWriter.Write(b)
}

func (sw *sessionWriter) Unwrap() http.ResponseWriter { return sw.ResponseWriter }

// requireToken sends requests without an auth token back to the sign-in page.
func (app *applicationDependencies) requireToken(next http.Handler) http.Handler {
	return guard.Middleware(func(r *http.Request) string {
		return app.session(r).Token()
	}, next)
}
