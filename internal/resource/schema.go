// Package resource drives the console's table screens.
//
// Items, locations, supply, demand and ATP thresholds all share one screen
// shape: a paginated, searchable table plus add, edit and delete dialogs. A
// [Schema] describes what differs between them (endpoints, identifier field,
// form fields, validation rules, row formatting) and a single generic
// [Controller] runs the fetch/page/search/mutate lifecycle for any schema.
package resource

import (
	"net/url"
	"strings"

	"github.com/aoideee/inventory-console/internal/data"
)

// FieldKind selects how a dialog field is rendered and parsed.
type FieldKind string

const (
	FieldText   FieldKind = "text"
	FieldNumber FieldKind = "number"
	FieldBool   FieldKind = "bool"
	FieldSelect FieldKind = "select"
	FieldLookup FieldKind = "lookup" // type-ahead against another resource's ids
)

// Field is one input of an add or edit dialog.
type Field struct {
	Name    string
	Label   string
	Kind    FieldKind
	Options []string // FieldSelect choices
	Lookup  string   // FieldLookup: name of the resource whose ids are offered
}

// NumericRule rejects a negative value in Field with Message.
type NumericRule struct {
	Field   string
	Message string
}

// Schema describes one resource type.
type Schema[T any] struct {
	Name       string // Route key, e.g. "items"
	Label      string // Singular display name, e.g. "Item"
	Plural     string // Lower-case plural for messages, e.g. "items"
	ListPath   string // GET list endpoint, e.g. "/supply/all"
	MutatePath string // POST/PATCH/DELETE base, e.g. "/supply"
	LookupPath string // Base of the "<path>/ids" type-ahead endpoint; "" if none
	IDField    string
	SearchBy   string

	Fields      []Field
	Required    []string
	NonNegative []NumericRule
	Columns     []string

	// Format turns one API record into a table row.
	Format func(data.Record) T
}

// ItemPath returns the endpoint of the record with id.
func (s Schema[T]) ItemPath(id string) string {
	return s.MutatePath + "/" + url.PathEscape(id)
}

// Field returns the field called name.
func (s Schema[T]) Field(name string) (Field, bool) {
	for _, f := range s.Fields {
		if f.Name == name {
			return f, true
		}
	}
	return Field{}, false
}

func (s Schema[T]) isNumeric(name string) bool {
	f, ok := s.Field(name)
	return ok && f.Kind == FieldNumber
}

func (s Schema[T]) lower() string { return strings.ToLower(s.Label) }

func (s Schema[T]) successMessage(verb string) string {
	return s.Label + " " + verb + " successfully!"
}

func (s Schema[T]) failureMessage(verb string) string {
	return "Failed to " + verb + " " + s.lower()
}

// DraftFromForm builds a dialog draft from submitted form values. Text is
// trimmed, checkboxes become booleans and numbers stay as text until
// validation parses them.
func (s Schema[T]) DraftFromForm(form url.Values) data.Record {
	draft := data.Record{}
	for _, f := range s.Fields {
		v := strings.TrimSpace(form.Get(f.Name))
		switch f.Kind {
		case FieldBool:
			draft[f.Name] = v == "on" || v == "true" || v == "1"
		default:
			draft[f.Name] = v
		}
	}
	if id := strings.TrimSpace(form.Get(s.IDField)); id != "" {
		draft[s.IDField] = id
	}
	return draft
}
