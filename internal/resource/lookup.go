package resource

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/aoideee/inventory-console/internal/data"
	"github.com/aoideee/inventory-console/internal/notify"
)

// ErrNoLookup is returned for resources that have no ids endpoint.
var ErrNoLookup = errors.New("resource has no id lookup")

// Lookup runs one type-ahead query against "<LookupPath>/ids?search=term" and
// returns the matching identifiers. A not-found envelope means no matches.
// Every keystroke may call this; there is no debounce here.
func Lookup[T any](ctx context.Context, client Requester, schema Schema[T], term string) ([]string, error) {
	if schema.LookupPath == "" {
		return nil, ErrNoLookup
	}
	env, err := client.Get(ctx, schema.LookupPath+"/ids", url.Values{"search": {term}})
	if err != nil {
		return nil, fmt.Errorf("lookup %s: %w", schema.Name, err)
	}
	if env.NotFound() {
		return []string{}, nil
	}
	if !env.Success {
		return nil, notify.Public(messageOr(env.Message, "Failed to fetch "+schema.Plural))
	}

	var raw []any
	if err := env.Decode(&raw); err != nil {
		return nil, fmt.Errorf("lookup %s: %w", schema.Name, err)
	}
	ids := make([]string, 0, len(raw))
	for _, v := range raw {
		if id := lookupID(v, schema.IDField); id != "" {
			ids = append(ids, id)
		}
	}
	return ids, nil
}

// lookupID accepts either a bare id or an object carrying idField.
func lookupID(v any, idField string) string {
	switch t := v.(type) {
	case map[string]any:
		return data.Record(t).String(idField)
	case nil:
		return ""
	default:
		return strings.TrimSpace(fmt.Sprint(t))
	}
}
