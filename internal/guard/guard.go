// Package guard gates the console's protected screens on the presence of an
// auth token.
package guard

import "net/http"

// BypassPath is the one guarded route reachable without a token: the link in
// the verification e-mail is opened before the user has ever signed in.
const BypassPath = "/verify-email"

// RedirectTo is where unauthenticated requests are sent.
const RedirectTo = "/"

// State is the outcome of evaluating a request.
type State int

const (
	Allowed State = iota
	Redirected
)

func (s State) String() string {
	if s == Redirected {
		return "redirected"
	}
	return "allowed"
}

// Evaluate decides whether path may be rendered with token. Only presence is
// checked; the API is the authority on whether the token is valid.
func Evaluate(path, token string) State {
	if token == "" && path != BypassPath {
		return Redirected
	}
	return Allowed
}

// Middleware evaluates every request afresh and answers Redirected ones with
// 303 See Other to RedirectTo.
func Middleware(tokenFn func(*http.Request) string, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if Evaluate(r.URL.Path, tokenFn(r)) == Redirected {
			http.Redirect(w, r, RedirectTo, http.StatusSeeOther)
			return
		}
		next.ServeHTTP(w, r)
	})
}
