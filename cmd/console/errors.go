// cmd/console/errors.go
// This file contains all error-response helpers for the application.
// Page loads get a rendered error page; script requests get a JSON envelope.
package main

import (
	"log/slog"
	"net/http"
)

// logError logs an internal error at ERROR level with the request method and URL for context.
func (app *applicationDependencies) logError(r *http.Request, err error) {
	app.logger.Error(err.Error(),
		slog.String("request_method", r.Method),
		slog.String("request_url", r.URL.String()),
	)
}

// errorResponse sends message with the given status code, as JSON or as the
// error page depending on who asked. It is the low-level building block used
// by all the specific error helpers below.
func (app *applicationDependencies) errorResponse(w http.ResponseWriter, r *http.Request, status int, message string) {
	if wantsJSON(r) {
		err := app.writeJSON(w, status, envelope{"error": message}, nil)
		if err != nil {
			app.logError(r, err)
			w.WriteHeader(http.StatusInternalServerError)
		}
		return
	}

	data := app.newTemplateData(r)
	data.Title = http.StatusText(status)
	data.Error = message
	app.render(w, r, status, "error", data)
}

// serverErrorResponse logs a 500-level error and sends a generic message to the client.
// Internal error details never reach the browser.
func (app *applicationDependencies) serverErrorResponse(w http.ResponseWriter, r *http.Request, err error) {
	app.logError(r, err)
	app.errorResponse(w, r, http.StatusInternalServerError, "the server encountered a problem and could not process your request")
}

// notFoundResponse sends a 404 Not Found error.
func (app *applicationDependencies) notFoundResponse(w http.ResponseWriter, r *http.Request) {
	app.errorResponse(w, r, http.StatusNotFound, "the requested resource could not be found")
}

// methodNotAllowedResponse sends a 405 Method Not Allowed error.
func (app *applicationDependencies) methodNotAllowedResponse(w http.ResponseWriter, r *http.Request) {
	message := "the " + r.Method + " method is not supported for this resource"
	app.errorResponse(w, r, http.StatusMethodNotAllowed, message)
}

// badRequestResponse sends a 400 Bad Request error with the error message from the caller.
func (app *applicationDependencies) badRequestResponse(w http.ResponseWriter, r *http.Request, err error) {
	app.errorResponse(w, r, http.StatusBadRequest, err.Error())
}

// upstreamErrorResponse sends a 502 Bad Gateway for a failed inventory API call.
// message is already safe to show.
func (app *applicationDependencies) upstreamErrorResponse(w http.ResponseWriter, r *http.Request, message string) {
	app.errorResponse(w, r, http.StatusBadGateway, message)
}

// rateLimitExceededResponse sends a 429 Too Many Requests error.
func (app *applicationDependencies) rateLimitExceededResponse(w http.ResponseWriter, r *http.Request) {
	app.errorResponse(w, r, http.StatusTooManyRequests, "rate limit exceeded")
}
