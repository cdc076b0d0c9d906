// cmd/console/helpers.go
// This file contains general-purpose helper functions for the application.
// Error-response helpers live in errors.go; only non-error utilities are here.
package main

import (
	"encoding/json"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/julienschmidt/httprouter"

	"github.com/aoideee/inventory-console/internal/api"
	"github.com/aoideee/inventory-console/internal/notify"
	"github.com/aoideee/inventory-console/internal/resource"
	"github.com/aoideee/inventory-console/internal/session"
)

// envelope is the top-level JSON wrapper used by the console's JSON routes
// (type-ahead lookups and chart data), e.g. {"ids": [...]} or {"error": "..."}.
type envelope map[string]any

// readParam returns the named httprouter URL parameter.
func (app *applicationDependencies) readParam(r *http.Request, name string) string {
	return httprouter.ParamsFromContext(r.Context()).ByName(name)
}

// readString reads a string query parameter from qs, returning defaultValue
// if the key is absent or empty.
func (app *applicationDependencies) readString(qs url.Values, key, defaultValue string) string {
	s := strings.TrimSpace(qs.Get(key))
	if s == "" {
		return defaultValue
	}
	return s
}

// readInt reads an integer query parameter from qs, returning defaultValue if
// the key is absent or cannot be parsed as an integer.
func (app *applicationDependencies) readInt(qs url.Values, key string, defaultValue int) int {
	s := qs.Get(key)
	if s == "" {
		return defaultValue
	}
	i, err := strconv.Atoi(s)
	if err != nil {
		return defaultValue
	}
	return i
}

// writeJSON marshals data to indented JSON, applies any custom headers,
// sets Content-Type to "application/json", writes the status code, and
// streams the body to the client.
func (app *applicationDependencies) writeJSON(w http.ResponseWriter, status int, data envelope, headers http.Header) error {
	js, err := json.MarshalIndent(data, "", "\t")
	if err != nil {
		return err
	}
	js = append(js, '\n')

	for key, value := range headers {
		w.Header()[key] = value
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	w.Write(js)
	return nil
}

// session returns the request's session. loadSession always sets one; the
// fallback only matters for handlers exercised outside the middleware chain.
func (app *applicationDependencies) session(r *http.Request) *session.Session {
	if s := session.FromContext(r.Context()); s != nil {
		return s
	}
	return session.New()
}

// client returns the API client bound to the request's session token.
func (app *applicationDependencies) client(r *http.Request) *api.Client {
	return app.api.WithTokens(app.session(r))
}

// notes returns the sink that flashes notifications onto the session.
func (app *applicationDependencies) notes(r *http.Request) notify.Sink {
	return notify.Logging(app.logger, &app.session(r).Flash)
}

// controller returns the session's table screen for the :resource parameter.
func (app *applicationDependencies) controller(r *http.Request) (*resource.Controller[resource.Row], error) {
	return app.screens.Controller(app.session(r).ID, app.readParam(r, "resource"), app.client(r), app.notes(r))
}

// redirect answers a POST with 303 See Other, completing post/redirect/get.
func (app *applicationDependencies) redirect(w http.ResponseWriter, r *http.Request, target string) {
	http.Redirect(w, r, target, http.StatusSeeOther)
}

// parseForm parses a submitted form, capping the body at 1 MB.
func (app *applicationDependencies) parseForm(w http.ResponseWriter, r *http.Request) error {
	r.Body = http.MaxBytesReader(w, r.Body, 1_048_576)
	return r.ParseForm()
}

// wantsJSON reports whether the request came from a script rather than a
// page load, so errors should be JSON.
func wantsJSON(r *http.Request) bool {
	return strings.HasPrefix(r.URL.Path, "/lookup/") ||
		strings.HasPrefix(r.URL.Path, "/dashboard/charts/") ||
		strings.Contains(r.Header.Get("Accept"), "application/json")
}
