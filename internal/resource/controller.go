package resource

import (
	"context"
	"errors"
	"net/url"
	"sync"

	"github.com/aoideee/inventory-console/internal/api"
	"github.com/aoideee/inventory-console/internal/data"
	"github.com/aoideee/inventory-console/internal/notify"
	"github.com/aoideee/inventory-console/internal/validator"
)

// SearchRejected is shown when a search term fails the allow-list.
const SearchRejected = "Error: Search query contains special characters!"

// ErrUnknownResource is returned for a resource name no schema declares.
var ErrUnknownResource = errors.New("unknown resource")

// Requester is the part of the API client a controller needs.
type Requester interface {
	Get(ctx context.Context, path string, query url.Values) (*api.Envelope, error)
	Post(ctx context.Context, path string, body any) (*api.Envelope, error)
	Patch(ctx context.Context, path string, body any) (*api.Envelope, error)
	Delete(ctx context.Context, path string) (*api.Envelope, error)
}

// DialogKind names one of a screen's three dialogs.
type DialogKind string

const (
	DialogAdd    DialogKind = "add"
	DialogEdit   DialogKind = "edit"
	DialogDelete DialogKind = "delete"
)

// ParseDialogKind validates a dialog name taken from a URL.
func ParseDialogKind(s string) (DialogKind, bool) {
	if !validator.In(s, string(DialogAdd), string(DialogEdit), string(DialogDelete)) {
		return "", false
	}
	return DialogKind(s), true
}

// Dialog is a dialog's visibility and the record it is working on. Draft is
// nil whenever Open is false.
type Dialog struct {
	Open  bool
	Draft data.Record
}

// state is the part of a screen that outlives a single HTTP request.
type state[T any] struct {
	mu sync.Mutex

	page    int
	search  string
	total   int
	loading bool
	fetched bool   // a fetch has completed at least once
	seq     uint64 // id of the latest fetch; older responses are dropped

	rows    []T
	records []data.Record
	dialogs map[DialogKind]Dialog
}

// Controller owns the pagination, search and dialog state of one table
// screen and mediates between the dialogs and the API.
//
// Controller methods never return API failures. Every failure ends in a
// notification and a safe default (an empty page, a closed dialog), so the
// screen can always be rendered. Methods are safe for concurrent use; network
// calls run without holding the state lock.
type Controller[T any] struct {
	schema Schema[T]
	client Requester
	notes  notify.Sink
	st     *state[T]
}

// NewController returns a controller on page 0 with an empty search and no
// rows loaded.
func NewController[T any](schema Schema[T], client Requester, notes notify.Sink) *Controller[T] {
	return &Controller[T]{
		schema: schema,
		client: client,
		notes:  notes,
		st:     &state[T]{dialogs: make(map[DialogKind]Dialog)},
	}
}

// With returns a controller that shares c's screen state but talks to the API
// through client and notifies notes. The console calls it once per request so
// that each request uses its own session's token and flash queue.
func (c *Controller[T]) With(client Requester, notes notify.Sink) *Controller[T] {
	return &Controller[T]{schema: c.schema, client: client, notes: notes, st: c.st}
}

// Schema returns the controller's schema.
func (c *Controller[T]) Schema() Schema[T] { return c.schema }

// FetchPage loads one page of the list endpoint. On any failure the table is
// reset to an empty page. If another fetch is issued before this one returns,
// this one's result and notifications are discarded.
func (c *Controller[T]) FetchPage(ctx context.Context, page int, search string) {
	if page < 0 {
		page = 0
	}
	st := c.st
	st.mu.Lock()
	st.seq++
	seq := st.seq
	st.page = page
	st.search = search
	st.loading = true
	st.mu.Unlock()

	filters := data.Filters{Page: page, Search: search, SearchBy: c.schema.SearchBy}
	result, failure := c.load(ctx, filters)
	rows := make([]T, 0, len(result.Content))
	for _, rec := range result.Content {
		rows = append(rows, c.schema.Format(rec))
	}

	st.mu.Lock()
	if seq != st.seq {
		st.mu.Unlock()
		return
	}
	st.records = result.Content
	st.rows = rows
	st.total = result.Page.TotalElements
	st.loading = false
	st.fetched = true
	st.mu.Unlock()

	if failure != "" {
		c.notes.Error(failure)
	}
}

// load performs the list request. failure is the notification text when the
// returned page is the empty fallback.
func (c *Controller[T]) load(ctx context.Context, filters data.Filters) (page data.Page, failure string) {
	fetchFailed := "Failed to fetch " + c.schema.Plural

	env, err := c.client.Get(ctx, c.schema.ListPath, filters.Query())
	switch {
	case err != nil:
		return data.EmptyPage(), fetchFailed
	case env.NotFound(), !env.Success:
		return data.EmptyPage(), messageOr(env.Message, fetchFailed)
	}

	if err := env.Decode(&page); err != nil {
		return data.EmptyPage(), fetchFailed
	}
	if page.Content == nil {
		page.Content = []data.Record{}
	}
	return page, ""
}

func messageOr(msg, fallback string) string {
	if msg == "" {
		return fallback
	}
	return msg
}

// ChangePage moves to page n and fetches it. Changing to the page already
// shown fetches it again.
func (c *Controller[T]) ChangePage(ctx context.Context, n int) {
	c.st.mu.Lock()
	search := c.st.search
	c.st.mu.Unlock()
	c.FetchPage(ctx, n, search)
}

// ChangeSearch applies a new search term. A non-empty term that fails the
// allow-list is rejected with a notification and nothing is fetched. An
// accepted term always restarts from page 0.
func (c *Controller[T]) ChangeSearch(ctx context.Context, term string) bool {
	if term != "" && !validator.Matches(term, validator.SearchRX) {
		c.notes.Error(SearchRejected)
		return false
	}
	c.FetchPage(ctx, 0, term)
	return true
}

// Refresh re-fetches the current page with the current search term. Dialogs
// call it after every successful mutation, so the table always shows the
// server's state rather than a local guess.
func (c *Controller[T]) Refresh(ctx context.Context) {
	c.st.mu.Lock()
	page, search := c.st.page, c.st.search
	c.st.mu.Unlock()
	c.FetchPage(ctx, page, search)
}

// OpenAdd shows the add dialog with an empty draft.
func (c *Controller[T]) OpenAdd() {
	c.setDialog(DialogAdd, Dialog{Open: true, Draft: data.Record{}})
}

// OpenEdit shows the edit dialog seeded with a copy of rec.
func (c *Controller[T]) OpenEdit(rec data.Record) {
	c.setDialog(DialogEdit, Dialog{Open: true, Draft: rec.Clone()})
}

// OpenDelete shows the delete confirmation for rec.
func (c *Controller[T]) OpenDelete(rec data.Record) {
	c.setDialog(DialogDelete, Dialog{Open: true, Draft: rec.Clone()})
}

// OpenEditByID opens the edit dialog for a row of the current page.
func (c *Controller[T]) OpenEditByID(id string) error {
	rec, err := c.record(id)
	if err != nil {
		return err
	}
	c.OpenEdit(rec)
	return nil
}

// OpenDeleteByID opens the delete confirmation for a row of the current page.
func (c *Controller[T]) OpenDeleteByID(id string) error {
	rec, err := c.record(id)
	if err != nil {
		return err
	}
	c.OpenDelete(rec)
	return nil
}

// CloseDialog hides a dialog and discards its draft.
func (c *Controller[T]) CloseDialog(kind DialogKind) {
	c.setDialog(kind, Dialog{})
}

// Dialog returns a copy of a dialog's state.
func (c *Controller[T]) Dialog(kind DialogKind) Dialog {
	c.st.mu.Lock()
	defer c.st.mu.Unlock()
	d := c.st.dialogs[kind]
	d.Draft = d.Draft.Clone()
	return d
}

func (c *Controller[T]) setDialog(kind DialogKind, d Dialog) {
	if !d.Open {
		d.Draft = nil
	}
	c.st.mu.Lock()
	c.st.dialogs[kind] = d
	c.st.mu.Unlock()
}

func (c *Controller[T]) record(id string) (data.Record, error) {
	c.st.mu.Lock()
	defer c.st.mu.Unlock()
	for _, rec := range c.st.records {
		if rec.String(c.schema.IDField) == id {
			return rec.Clone(), nil
		}
	}
	return nil, data.ErrRecordNotFound
}

// View is an immutable snapshot of a screen for rendering.
type View[T any] struct {
	Resource string
	Label    string
	Columns  []string
	Fields   []Field

	Rows    []T
	Page    int
	Total   int
	Search  string
	Loading bool
	Fetched bool
	Meta    data.Metadata

	Add, Edit, Delete Dialog
}

// Snapshot returns the current state of the screen.
func (c *Controller[T]) Snapshot() View[T] {
	st := c.st
	st.mu.Lock()
	defer st.mu.Unlock()

	dialog := func(k DialogKind) Dialog {
		d := st.dialogs[k]
		d.Draft = d.Draft.Clone()
		return d
	}
	return View[T]{
		Resource: c.schema.Name,
		Label:    c.schema.Label,
		Columns:  c.schema.Columns,
		Fields:   c.schema.Fields,
		Rows:     append([]T(nil), st.rows...),
		Page:     st.page,
		Total:    st.total,
		Search:   st.search,
		Loading:  st.loading,
		Fetched:  st.fetched,
		Meta:     data.CalculateMetadata(st.total, st.page, data.PageSize),
		Add:      dialog(DialogAdd),
		Edit:     dialog(DialogEdit),
		Delete:   dialog(DialogDelete),
	}
}
