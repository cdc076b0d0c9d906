// cmd/console/routes.go
package main

import (
	"net/http"

	"github.com/julienschmidt/httprouter"
)

// routes registers all HTTP endpoints and returns the configured router
// wrapped in the global middlewares.
//
// Middleware chain (outermost → innermost):
//
//	recoverPanic → rateLimit → loadSession → router → instrument → [requireToken] → handler
//
// Endpoints:
//
//	GET    /                               sign-in page
//	POST   /login                          sign in
//	GET    /signup                         sign-up page
//	POST   /signup                         sign up
//	GET    /verify-email                   verify an e-mail link (reachable without a token)
//	POST   /logout                         sign out                      (token)
//	GET    /profile                        profile page                  (token)
//	POST   /profile                        update profile                (token)
//	GET    /dashboard                      dashboard counters            (token)
//	GET    /dashboard/charts/:chart        chart JSON                    (token)
//	GET    /r/:resource                    table screen                  (token)
//	POST   /r/:resource                    add dialog submit             (token)
//	GET    /r/:resource/dialog/:kind       open a dialog                 (token)
//	POST   /r/:resource/dialog/:kind/close close a dialog                (token)
//	POST   /r/:resource/edit               edit dialog submit            (token)
//	POST   /r/:resource/delete             delete confirmation           (token)
//	GET    /lookup/:resource               type-ahead ids JSON           (token)
//	GET    /metrics                        Prometheus metrics
//	GET    /healthz                        liveness
func (app *applicationDependencies) routes() http.Handler {
	router := httprouter.New()

	router.NotFound = http.HandlerFunc(app.notFoundResponse)
	router.MethodNotAllowed = http.HandlerFunc(app.methodNotAllowedResponse)

	public := func(method, path string, h http.HandlerFunc) {
		router.Handler(method, path, app.instrument(path, h))
	}
	protected := func(method, path string, h http.HandlerFunc) {
		router.Handler(method, path, app.instrument(path, app.requireToken(h)))
	}

	// Authentication
	public(http.MethodGet, "/", app.homeHandler)
	public(http.MethodPost, "/login", app.loginHandler)
	public(http.MethodGet, "/signup", app.signupFormHandler)
	public(http.MethodPost, "/signup", app.signupHandler)
	protected(http.MethodGet, "/verify-email", app.verifyEmailHandler)
	protected(http.MethodPost, "/logout", app.logoutHandler)
	protected(http.MethodGet, "/profile", app.profileHandler)
	protected(http.MethodPost, "/profile", app.updateProfileHandler)

	// Dashboard
	protected(http.MethodGet, "/dashboard", app.dashboardHandler)
	protected(http.MethodGet, "/dashboard/charts/:chart", app.chartHandler)

	// Table screens
	protected(http.MethodGet, "/r/:resource", app.listResourceHandler)
	protected(http.MethodPost, "/r/:resource", app.createResourceHandler)
	protected(http.MethodGet, "/r/:resource/dialog/:kind", app.openDialogHandler)
	protected(http.MethodPost, "/r/:resource/dialog/:kind/close", app.closeDialogHandler)
	protected(http.MethodPost, "/r/:resource/edit", app.updateResourceHandler)
	protected(http.MethodPost, "/r/:resource/delete", app.deleteResourceHandler)
	protected(http.MethodGet, "/lookup/:resource", app.lookupHandler)

	// Operations
	public(http.MethodGet, "/metrics", app.metricsHandler().ServeHTTP)
	public(http.MethodGet, "/healthz", app.healthcheckHandler)

	return app.recoverPanic(app.rateLimit(app.loadSession(router)))
}

// healthcheckHandler handles GET /healthz.
func (app *applicationDependencies) healthcheckHandler(w http.ResponseWriter, r *http.Request) {
	err := app.writeJSON(w, http.StatusOK, envelope{
		"status":      "available",
		"environment": app.config.environment,
		"version":     appVersion,
	}, nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
	}
}
