// cmd/console/handlers_auth.go
// This file contains the sign-in, sign-up, e-mail verification, sign-out and
// profile handlers. Each handler is a method on *applicationDependencies so it
// has access to the logger, the session manager and the API client.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/aoideee/inventory-console/internal/api"
	"github.com/aoideee/inventory-console/internal/notify"
	"github.com/aoideee/inventory-console/internal/resource"
	"github.com/aoideee/inventory-console/internal/validator"
)

// Messages shown by the authentication screens.
const (
	signInFailed    = "Invalid email or password."
	signedIn        = "Signed in successfully!"
	signedOut       = "Signed out successfully!"
	signUpDone      = "Sign up successful! Please check your email to verify your account."
	signUpFailed    = "Sign up failed. Please try again."
	verifyMissing   = "The verification link is invalid."
	verifyDone      = "Email verified successfully! You can now sign in."
	verifyFailed    = "Email verification failed."
	profileFailed   = "Failed to fetch profile"
	profileUpdated  = "Profile updated successfully!"
	profileNotSaved = "Failed to update profile"
)

// homeHandler handles GET /. Signed-in users go straight to the dashboard.
func (app *applicationDependencies) homeHandler(w http.ResponseWriter, r *http.Request) {
	if app.session(r).SignedIn() {
		http.Redirect(w, r, "/dashboard", http.StatusSeeOther)
		return
	}
	data := app.newTemplateData(r)
	data.Title = "Sign in"
	app.render(w, r, http.StatusOK, "login", data)
}

// loginHandler handles POST /login. On success the token is stored on a
// freshly renewed session and the user's display name is fetched once.
func (app *applicationDependencies) loginHandler(w http.ResponseWriter, r *http.Request) {
	if err := app.parseForm(w, r); err != nil {
		app.badRequestResponse(w, r, err)
		return
	}
	s := app.session(r)
	req := api.SignInRequest{Email: r.PostForm.Get("email"), Password: r.PostForm.Get("password")}

	v := validator.New()
	v.Check(req.Email != "", "email", resource.RequiredMissing)
	v.Check(req.Password != "", "password", resource.RequiredMissing)
	if !v.Valid() {
		s.Flash.Error(v.First())
		app.redirect(w, r, "/")
		return
	}

	env, err := app.api.SignIn(r.Context(), req)
	if err != nil {
		s.Flash.Error(notify.Message(err))
		app.redirect(w, r, "/")
		return
	}
	if !env.Success {
		s.Flash.Error(messageOr(env.Message, signInFailed))
		app.redirect(w, r, "/")
		return
	}
	creds, err := api.DecodeCredentials(env)
	if err != nil {
		app.logError(r, err)
		s.Flash.Error(signInFailed)
		app.redirect(w, r, "/")
		return
	}

	if _, err := app.sessions.Renew(r.Context(), s); err != nil {
		app.serverErrorResponse(w, r, err)
		return
	}
	s.SetToken(creds.Token)
	name := creds.Name
	if name == "" {
		name = app.fetchName(r.Context(), app.client(r))
	}
	s.SetName(name)

	s.Flash.Success(signedIn)
	app.redirect(w, r, "/dashboard")
}

// fetchName asks the API for the display name. A failure only costs the
// greeting, so it is logged and otherwise ignored.
func (app *applicationDependencies) fetchName(ctx context.Context, client *api.Client) string {
	env, err := client.Name(ctx)
	if err != nil || !env.Success {
		if err != nil {
			app.logger.Warn("fetch user name", "error", err)
		}
		return ""
	}
	return decodeName(env)
}

// decodeName accepts {"name": "..."} or a bare string payload.
func decodeName(env *api.Envelope) string {
	if len(env.Payload) > 0 && env.Payload[0] == '"' {
		var name string
		if json.Unmarshal(env.Payload, &name) == nil {
			return name
		}
		return ""
	}
	var p api.Profile
	if env.Decode(&p) != nil {
		return ""
	}
	return p.Name
}

// signupFormHandler handles GET /signup.
func (app *applicationDependencies) signupFormHandler(w http.ResponseWriter, r *http.Request) {
	data := app.newTemplateData(r)
	data.Title = "Sign up"
	app.render(w, r, http.StatusOK, "signup", data)
}

// signupHandler handles POST /signup.
func (app *applicationDependencies) signupHandler(w http.ResponseWriter, r *http.Request) {
	if err := app.parseForm(w, r); err != nil {
		app.badRequestResponse(w, r, err)
		return
	}
	s := app.session(r)
	req := api.SignUpRequest{
		Name:     r.PostForm.Get("name"),
		Email:    r.PostForm.Get("email"),
		Password: r.PostForm.Get("password"),
	}

	v := validator.New()
	v.Check(req.Name != "", "name", resource.RequiredMissing)
	v.Check(req.Email != "", "email", resource.RequiredMissing)
	v.Check(req.Password != "", "password", resource.RequiredMissing)
	if !v.Valid() {
		s.Flash.Error(v.First())
		app.redirect(w, r, "/signup")
		return
	}

	env, err := app.api.SignUp(r.Context(), req)
	switch {
	case err != nil:
		s.Flash.Error(signUpFailed)
		app.redirect(w, r, "/signup")
	case !env.Success:
		s.Flash.Error(messageOr(env.Message, signUpFailed))
		app.redirect(w, r, "/signup")
	default:
		s.Flash.Success(messageOr(env.Message, signUpDone))
		app.redirect(w, r, "/")
	}
}

// verifyEmailHandler handles GET /verify-email?token=. It is the one guarded
// route that renders without a token.
func (app *applicationDependencies) verifyEmailHandler(w http.ResponseWriter, r *http.Request) {
	data := app.newTemplateData(r)
	data.Title = "Email verification"

	token := app.readString(r.URL.Query(), "token", "")
	if token == "" {
		data.Message = verifyMissing
		app.render(w, r, http.StatusBadRequest, "verify", data)
		return
	}

	env, err := app.api.VerifyEmail(r.Context(), token)
	switch {
	case err != nil:
		data.Message = verifyFailed
	case !env.Success:
		data.Message = messageOr(env.Message, verifyFailed)
	default:
		data.Success = true
		data.Message = messageOr(env.Message, verifyDone)
	}
	app.render(w, r, http.StatusOK, "verify", data)
}

// logoutHandler handles POST /logout: the token is dropped, the session moves
// to a new id and its table screens are forgotten.
func (app *applicationDependencies) logoutHandler(w http.ResponseWriter, r *http.Request) {
	s := app.session(r)
	oldID, err := app.sessions.Renew(r.Context(), s)
	if err != nil {
		app.serverErrorResponse(w, r, err)
		return
	}
	app.screens.Forget(oldID)
	s.ClearToken()
	s.Flash.Success(signedOut)
	app.redirect(w, r, "/")
}

// profileHandler handles GET /profile.
func (app *applicationDependencies) profileHandler(w http.ResponseWriter, r *http.Request) {
	data := app.newTemplateData(r)
	data.Title = "Profile"
	notes := app.notes(r)

	env, err := app.client(r).Profile(r.Context())
	switch {
	case errors.Is(err, api.ErrNoToken):
		app.redirect(w, r, "/")
		return
	case err != nil:
		notes.Error(profileFailed)
	case !env.Success:
		notes.Error(messageOr(env.Message, profileFailed))
	default:
		if err := env.Decode(&data.Profile); err != nil {
			app.logError(r, err)
			notes.Error(profileFailed)
		}
	}
	app.render(w, r, http.StatusOK, "profile", data)
}

// updateProfileHandler handles POST /profile.
func (app *applicationDependencies) updateProfileHandler(w http.ResponseWriter, r *http.Request) {
	if err := app.parseForm(w, r); err != nil {
		app.badRequestResponse(w, r, err)
		return
	}
	s := app.session(r)
	p := api.Profile{
		Name:  r.PostForm.Get("name"),
		Email: r.PostForm.Get("email"),
		Phone: r.PostForm.Get("phone"),
	}

	v := validator.New()
	v.Check(p.Name != "", "name", resource.RequiredMissing)
	v.Check(p.Email != "", "email", resource.RequiredMissing)
	if !v.Valid() {
		s.Flash.Error(v.First())
		app.redirect(w, r, "/profile")
		return
	}

	env, err := app.client(r).UpdateProfile(r.Context(), p)
	switch {
	case err != nil:
		s.Flash.Error(profileNotSaved)
	case !env.Success:
		s.Flash.Error(messageOr(env.Message, profileNotSaved))
	default:
		s.SetName(p.Name)
		s.Flash.Success(profileUpdated)
	}
	app.redirect(w, r, "/profile")
}

// messageOr returns msg, or fallback when the API sent none.
func messageOr(msg, fallback string) string {
	if msg == "" {
		return fallback
	}
	return msg
}
