// cmd/console/handlers_resource.go
// This file contains the handlers shared by every table screen (items,
// locations, supply, demand and thresholds) and the type-ahead lookup.
// POST handlers follow post/redirect/get: the outcome is flashed on the
// session and the browser is sent back to the table.
package main

import (
	"errors"
	"net/http"

	"github.com/aoideee/inventory-console/internal/data"
	"github.com/aoideee/inventory-console/internal/notify"
	"github.com/aoideee/inventory-console/internal/resource"
	"github.com/aoideee/inventory-console/internal/validator"
)

// listResourceHandler handles GET /r/:resource.
//
//	?page=N[&search=S]  go to page N, keeping the current search
//	?search=S           run a new search from page 0
//	(nothing)           show the screen as it is, fetching on first visit
func (app *applicationDependencies) listResourceHandler(w http.ResponseWriter, r *http.Request) {
	ctrl, err := app.controller(r)
	if err != nil {
		app.notFoundResponse(w, r)
		return
	}

	qs := r.URL.Query()
	current := ctrl.Snapshot()
	search := qs.Get("search")

	switch {
	case qs.Has("page") && (!qs.Has("search") || search == current.Search):
		ctrl.ChangePage(r.Context(), app.readInt(qs, "page", current.Page))
	case qs.Has("search"):
		ctrl.ChangeSearch(r.Context(), search)
	case !current.Fetched:
		ctrl.Refresh(r.Context())
	}

	app.renderScreen(w, r, http.StatusOK, ctrl)
}

// openDialogHandler handles GET /r/:resource/dialog/:kind. Edit and delete
// take the row id from ?id= and only accept rows of the current page.
func (app *applicationDependencies) openDialogHandler(w http.ResponseWriter, r *http.Request) {
	ctrl, err := app.controller(r)
	if err != nil {
		app.notFoundResponse(w, r)
		return
	}
	kind, ok := resource.ParseDialogKind(app.readParam(r, "kind"))
	if !ok {
		app.notFoundResponse(w, r)
		return
	}

	schema := ctrl.Schema()
	id := app.readString(r.URL.Query(), "id", "")
	switch kind {
	case resource.DialogAdd:
		ctrl.OpenAdd()
	case resource.DialogEdit:
		err = ctrl.OpenEditByID(id)
	case resource.DialogDelete:
		err = ctrl.OpenDeleteByID(id)
	}
	if errors.Is(err, data.ErrRecordNotFound) {
		app.session(r).Flash.Error(schema.Label + " not found")
		app.redirect(w, r, "/r/"+schema.Name)
		return
	}

	app.renderScreen(w, r, http.StatusOK, ctrl)
}

// closeDialogHandler handles POST /r/:resource/dialog/:kind/close.
func (app *applicationDependencies) closeDialogHandler(w http.ResponseWriter, r *http.Request) {
	ctrl, err := app.controller(r)
	if err != nil {
		app.notFoundResponse(w, r)
		return
	}
	kind, ok := resource.ParseDialogKind(app.readParam(r, "kind"))
	if !ok {
		app.notFoundResponse(w, r)
		return
	}
	ctrl.CloseDialog(kind)
	app.redirect(w, r, "/r/"+ctrl.Schema().Name)
}

// createResourceHandler handles POST /r/:resource, the add dialog's submit.
func (app *applicationDependencies) createResourceHandler(w http.ResponseWriter, r *http.Request) {
	app.submit(w, r, func(ctrl *resource.Controller[resource.Row], draft data.Record) resource.Outcome {
		return ctrl.SubmitAdd(r.Context(), draft)
	})
}

// updateResourceHandler handles POST /r/:resource/edit.
func (app *applicationDependencies) updateResourceHandler(w http.ResponseWriter, r *http.Request) {
	app.submit(w, r, func(ctrl *resource.Controller[resource.Row], draft data.Record) resource.Outcome {
		return ctrl.SubmitEdit(r.Context(), draft)
	})
}

// deleteResourceHandler handles POST /r/:resource/delete.
func (app *applicationDependencies) deleteResourceHandler(w http.ResponseWriter, r *http.Request) {
	app.submit(w, r, func(ctrl *resource.Controller[resource.Row], _ data.Record) resource.Outcome {
		return ctrl.ConfirmDelete(r.Context())
	})
}

// submit parses a dialog form, runs action and redirects back to the table,
// where the flashed outcome and any still-open dialog are shown.
func (app *applicationDependencies) submit(w http.ResponseWriter, r *http.Request, action func(*resource.Controller[resource.Row], data.Record) resource.Outcome) {
	ctrl, err := app.controller(r)
	if err != nil {
		app.notFoundResponse(w, r)
		return
	}
	if err := app.parseForm(w, r); err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	schema := ctrl.Schema()
	out := action(ctrl, schema.DraftFromForm(r.PostForm))
	app.logger.Debug("dialog submitted", "resource", schema.Name, "path", r.URL.Path, "outcome", out.String())
	app.redirect(w, r, "/r/"+schema.Name)
}

// renderScreen renders a table screen from the controller's current state.
func (app *applicationDependencies) renderScreen(w http.ResponseWriter, r *http.Request, status int, ctrl *resource.Controller[resource.Row]) {
	view := ctrl.Snapshot()
	schema := ctrl.Schema()

	td := app.newTemplateData(r)
	td.Title = capitalize(schema.Plural)
	td.Active = schema.Name
	td.Screen = &view
	td.IDField = schema.IDField
	app.render(w, r, status, "resource", td)
}

// lookupHandler handles GET /lookup/:resource?search=, returning matching
// ids as {"ids": [...]} for the dialogs' type-ahead inputs.
func (app *applicationDependencies) lookupHandler(w http.ResponseWriter, r *http.Request) {
	schema, ok := app.screens.Schema(app.readParam(r, "resource"))
	if !ok {
		app.notFoundResponse(w, r)
		return
	}

	term := app.readString(r.URL.Query(), "search", "")
	if !validator.Matches(term, validator.SearchRX) {
		app.errorResponse(w, r, http.StatusBadRequest, resource.SearchRejected)
		return
	}

	ids, err := resource.Lookup(r.Context(), app.client(r), schema, term)
	switch {
	case errors.Is(err, resource.ErrNoLookup):
		app.notFoundResponse(w, r)
		return
	case err != nil:
		var public notify.Public
		if !errors.As(err, &public) {
			app.logger.Warn("lookup failed", "resource", schema.Name, "error", err)
		}
		app.upstreamErrorResponse(w, r, notify.Message(err))
		return
	}

	err = app.writeJSON(w, http.StatusOK, envelope{"ids": ids}, nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
	}
}
