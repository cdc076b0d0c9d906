package main

import (
	"net/http"

	"github.com/aoideee/inventory-console/internal/api"
	"github.com/aoideee/inventory-console/internal/charts"
	"github.com/aoideee/inventory-console/internal/data"
	"github.com/aoideee/inventory-console/internal/validator"
)

const (
	dashboardFailed = "Failed to fetch dashboard"
	chartFailed     = "Failed to fetch chart data"
)

// dashboardHandler handles GET /dashboard. The counters are rendered on the
// server; the charts load their data from /dashboard/charts/:chart.
func (app *applicationDependencies) dashboardHandler(w http.ResponseWriter, r *http.Request) {
	td := app.newTemplateData(r)
	td.Title = "Dashboard"
	td.Active = "dashboard"
	notes := app.notes(r)

	env, err := app.client(r).Dashboard(r.Context())
	switch {
	case err != nil:
		notes.Error(dashboardFailed)
	case !env.Success:
		notes.Error(messageOr(env.Message, dashboardFailed))
	default:
		var counts data.Record
		if err := env.Decode(&counts); err != nil {
			app.logError(r, err)
			notes.Error(dashboardFailed)
			break
		}
		td.Tiles = charts.DashboardTiles(counts)
	}
	app.render(w, r, http.StatusOK, "dashboard", td)
}

// chartHandler handles GET /dashboard/charts/:chart and answers with
// chart-ready JSON:
//
//	stacked       {"rows": [...], "series": [...]}
//	scatter       {"series": [...]}            ?locationId= optional
//	availability  {"bars": [...]}              ?item= required, ?location=, ?version=v1|v2
func (app *applicationDependencies) chartHandler(w http.ResponseWriter, r *http.Request) {
	client := app.client(r)
	qs := r.URL.Query()

	var (
		env  *api.Envelope
		err  error
		body func(*api.Envelope) (envelope, error)
	)

	switch app.readParam(r, "chart") {
	case "stacked":
		env, err = client.StackedBarData(r.Context())
		body = func(env *api.Envelope) (envelope, error) {
			var stock []charts.LocationStock
			if err := env.Decode(&stock); err != nil {
				return nil, err
			}
			return envelope{"rows": charts.StackedByLocation(stock), "series": charts.SeriesKeys(stock)}, nil
		}

	case "scatter":
		env, err = client.ScatterData(r.Context(), app.readString(qs, "locationId", ""))
		body = func(env *api.Envelope) (envelope, error) {
			var points []charts.ItemPoint
			if err := env.Decode(&points); err != nil {
				return nil, err
			}
			return envelope{"series": charts.ItemScatter(points)}, nil
		}

	case "availability":
		version := app.readString(qs, "version", "v1")
		item := app.readString(qs, "item", "")
		v := validator.New()
		v.Check(validator.In(version, "v1", "v2"), "version", "version must be v1 or v2")
		v.Check(item != "", "item", "item must be provided")
		if !v.Valid() {
			app.errorResponse(w, r, http.StatusBadRequest, v.First())
			return
		}
		env, err = client.Availability(r.Context(), version, item, app.readString(qs, "location", ""))
		body = func(env *api.Envelope) (envelope, error) {
			var payload data.Record
			if err := env.Decode(&payload); err != nil {
				return nil, err
			}
			return envelope{"bars": charts.AvailabilityBars(payload)}, nil
		}

	default:
		app.notFoundResponse(w, r)
		return
	}

	switch {
	case err != nil:
		app.logger.Warn("chart data unavailable", "chart", app.readParam(r, "chart"), "error", err)
		app.upstreamErrorResponse(w, r, chartFailed)
		return
	case env.NotFound():
		app.errorResponse(w, r, http.StatusNotFound, messageOr(env.Message, chartFailed))
		return
	case !env.Success:
		app.upstreamErrorResponse(w, r, messageOr(env.Message, chartFailed))
		return
	}

	out, err := body(env)
	if err != nil {
		app.logError(r, err)
		app.upstreamErrorResponse(w, r, chartFailed)
		return
	}
	err = app.writeJSON(w, http.StatusOK, out, nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
	}
}
