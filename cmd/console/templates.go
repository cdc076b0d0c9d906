package main

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"net/http"
	"strings"

	"github.com/aoideee/inventory-console/internal/api"
	"github.com/aoideee/inventory-console/internal/charts"
	"github.com/aoideee/inventory-console/internal/data"
	"github.com/aoideee/inventory-console/internal/notify"
	"github.com/aoideee/inventory-console/internal/resource"
)

//go:embed templates/*.html
var templateFS embed.FS

// pages are the templates rendered inside base.html.
var pages = []string{"login", "signup", "verify", "dashboard", "resource", "profile", "error"}

var templateFuncs = template.FuncMap{
	// field renders a draft value for an input's value attribute.
	"field": func(rec data.Record, name string) string { return rec.String(name) },
	"checked": func(rec data.Record, name string) bool {
		b, _ := rec[name].(bool)
		return b
	},
	"title": capitalize,
	// fieldSet pairs a dialog's fields with its draft for the "fields" block.
	"fieldSet": func(fields []resource.Field, draft data.Record) fieldSet {
		return fieldSet{Fields: fields, Draft: draft}
	},
}

type fieldSet struct {
	Fields []resource.Field
	Draft  data.Record
}

func parseTemplates() (map[string]*template.Template, error) {
	cache := make(map[string]*template.Template, len(pages))
	for _, page := range pages {
		ts, err := template.New(page).Funcs(templateFuncs).ParseFS(templateFS, "templates/base.html", "templates/"+page+".html")
		if err != nil {
			return nil, fmt.Errorf("parse template %s: %w", page, err)
		}
		cache[page] = ts
	}
	return cache, nil
}

// navLink is one entry of the resource menu.
type navLink struct {
	Name  string
	Label string
}

// templateData is everything a page may show. Pages read only the fields
// they need.
type templateData struct {
	Title         string
	SignedIn      bool
	UserName      string
	Notifications []notify.Notification
	Nav           []navLink
	Active        string

	Screen  *resource.View[resource.Row]
	IDField string
	Profile api.Profile
	Tiles   []charts.Tile
	Message string // verify-email outcome
	Success bool
	Error   string
}

func (app *applicationDependencies) newTemplateData(r *http.Request) *templateData {
	s := app.session(r)
	td := &templateData{
		SignedIn: s.SignedIn(),
		UserName: s.Name(),
	}
	for _, schema := range app.screens.Schemas() {
		td.Nav = append(td.Nav, navLink{Name: schema.Name, Label: capitalize(schema.Plural)})
	}
	return td
}

// render drains the session's pending notifications into data and writes
// the page. The page is executed into a buffer first so a template error
// never leaves a half-written response.
func (app *applicationDependencies) render(w http.ResponseWriter, r *http.Request, status int, page string, data *templateData) {
	ts, ok := app.templates[page]
	if !ok {
		app.logError(r, fmt.Errorf("template %q does not exist", page))
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	data.Notifications = append(data.Notifications, app.session(r).Flash.Drain()...)

	buf := new(bytes.Buffer)
	if err := ts.ExecuteTemplate(buf, "base", data); err != nil {
		app.logError(r, fmt.Errorf("render %s: %w", page, err))
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	buf.WriteTo(w)
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
