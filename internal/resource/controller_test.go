package resource

import (
	"context"
	"net/http"
	"net/url"
	"strconv"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aoideee/inventory-console/internal/api"
	"github.com/aoideee/inventory-console/internal/data"
	"github.com/aoideee/inventory-console/internal/notify/notifytest"
)

func TestFetchPageIssuesExactlyOneListRequest(t *testing.T) {
	for _, schema := range Schemas() {
		for _, p := range []int{0, 3} {
			t.Run(schema.Name+"/page"+strconv.Itoa(p), func(t *testing.T) {
				f, client := newFakeAPI(t, alwaysPage(page(0)))
				c := NewController(schema, client, &notifytest.Recorder{})

				c.FetchPage(context.Background(), p, "")

				reqs := f.Requests()
				require.Len(t, reqs, 1)
				assert.Equal(t, http.MethodGet, reqs[0].Method)
				assert.Equal(t, schema.ListPath, reqs[0].Path)
				assert.Equal(t, strconv.Itoa(p), reqs[0].Query.Get("page"))
				assert.True(t, reqs[0].Query.Has("search"))
				assert.Equal(t, "", reqs[0].Query.Get("search"))
				assert.Equal(t, schema.SearchBy, reqs[0].Query.Get("searchBy"))
			})
		}
	}
}

func TestFetchPageRendersItemRow(t *testing.T) {
	c, _, rec := newItems(t, alwaysPage(page(1, shirt)))
	require.False(t, c.Snapshot().Fetched)

	c.FetchPage(context.Background(), 0, "")

	v := c.Snapshot()
	assert.True(t, v.Fetched)
	require.Len(t, v.Rows, 1)
	assert.Equal(t, "000001", v.Rows[0].ID)
	assert.Contains(t, v.Rows[0].Cells, "Shirt")
	assert.Contains(t, v.Rows[0].Cells, "ACTIVE")
	assert.Contains(t, v.Rows[0].Cells, "₹100")
	assert.Equal(t, 1, v.Total)
	assert.False(t, v.Loading)
	assert.Empty(t, rec.All())
}

func TestFetchPageNotFoundResetsToEmptyPage(t *testing.T) {
	calls := 0
	c, _, rec := newItems(t, func(r recorded) (int, any) {
		calls++
		if calls == 1 {
			return http.StatusOK, page(1, shirt)
		}
		return http.StatusOK, notFoundEnvelope("No items found for search 'zzz'")
	})

	c.FetchPage(context.Background(), 0, "")
	require.Len(t, c.Snapshot().Rows, 1)

	c.FetchPage(context.Background(), 0, "zzz")
	v := c.Snapshot()
	assert.Empty(t, v.Rows)
	assert.Equal(t, 0, v.Total)
	assert.False(t, v.Loading)
	assert.Equal(t, []string{"No items found for search 'zzz'"}, rec.Errors())
}

func TestFetchPageTransportFailureShowsGenericMessage(t *testing.T) {
	c, _, rec := newItems(t, func(r recorded) (int, any) {
		return http.StatusBadGateway, "upstream connect error"
	})

	c.FetchPage(context.Background(), 2, "")

	v := c.Snapshot()
	assert.Empty(t, v.Rows)
	assert.Equal(t, 0, v.Total)
	assert.False(t, v.Loading)
	assert.Equal(t, []string{"Failed to fetch items"}, rec.Errors())
}

func TestFetchPageUndecodablePayload(t *testing.T) {
	c, _, rec := newItems(t, alwaysPage(okEnvelope("not a page")))

	c.FetchPage(context.Background(), 0, "")

	assert.Empty(t, c.Snapshot().Rows)
	assert.Equal(t, []string{"Failed to fetch items"}, rec.Errors())
}

func TestChangePageToSamePageRefetches(t *testing.T) {
	c, f, _ := newItems(t, alwaysPage(page(20, shirt)))
	ctx := context.Background()

	c.ChangePage(ctx, 1)
	c.ChangePage(ctx, 1)

	reqs := f.Requests()
	require.Len(t, reqs, 2)
	assert.Equal(t, reqs[0].Query, reqs[1].Query)
	assert.Equal(t, "1", reqs[1].Query.Get("page"))
	assert.Equal(t, 1, c.Snapshot().Page)
}

func TestChangePageKeepsSearch(t *testing.T) {
	c, f, _ := newItems(t, alwaysPage(page(20, shirt)))
	ctx := context.Background()

	require.True(t, c.ChangeSearch(ctx, "shirt"))
	c.ChangePage(ctx, 2)

	last := f.Requests()[1]
	assert.Equal(t, "2", last.Query.Get("page"))
	assert.Equal(t, "shirt", last.Query.Get("search"))
}

func TestChangeSearchRejectsSpecialCharacters(t *testing.T) {
	c, f, rec := newItems(t, alwaysPage(page(1, shirt)))
	ctx := context.Background()
	c.ChangePage(ctx, 2)
	f.reset()

	ok := c.ChangeSearch(ctx, "@@@")

	assert.False(t, ok)
	assert.Empty(t, f.Requests())
	assert.Equal(t, []string{SearchRejected}, rec.Errors())
	assert.Equal(t, "Error: Search query contains special characters!", SearchRejected)
	v := c.Snapshot()
	assert.Equal(t, "", v.Search)
	assert.Equal(t, 2, v.Page)
}

func TestChangeSearchResetsPageForEveryResource(t *testing.T) {
	for _, schema := range Schemas() {
		t.Run(schema.Name, func(t *testing.T) {
			f, client := newFakeAPI(t, alwaysPage(page(40)))
			c := NewController(schema, client, &notifytest.Recorder{})
			ctx := context.Background()

			c.ChangePage(ctx, 4)
			require.True(t, c.ChangeSearch(ctx, "000001"))

			reqs := f.Requests()
			require.Len(t, reqs, 2)
			assert.Equal(t, "0", reqs[1].Query.Get("page"))
			assert.Equal(t, "000001", reqs[1].Query.Get("search"))
			assert.Equal(t, 0, c.Snapshot().Page)
		})
	}
}

func TestChangeSearchEmptyTermIsAccepted(t *testing.T) {
	c, f, rec := newItems(t, alwaysPage(page(0)))
	assert.True(t, c.ChangeSearch(context.Background(), ""))
	assert.Len(t, f.Requests(), 1)
	assert.Empty(t, rec.Errors())
}

func TestSupersededFetchIsDiscarded(t *testing.T) {
	slowStarted := make(chan struct{})
	releaseSlow := make(chan struct{})
	stub := &stubRequester{get: func(ctx context.Context, path string, q url.Values) (*api.Envelope, error) {
		if q.Get("search") == "old" {
			close(slowStarted)
			<-releaseSlow
			return envelopeOf(t, page(1, map[string]any{"itemId": "OLD", "itemDescription": "Old", "price": 1})), nil
		}
		return envelopeOf(t, page(1, map[string]any{"itemId": "NEW", "itemDescription": "New", "price": 2})), nil
	}}
	rec := &notifytest.Recorder{}
	c := NewController(Items(), stub, rec)
	ctx := context.Background()

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		c.ChangeSearch(ctx, "old")
	}()
	<-slowStarted
	assert.True(t, c.Snapshot().Loading)

	c.ChangeSearch(ctx, "new")
	close(releaseSlow)
	wg.Wait()

	v := c.Snapshot()
	require.Len(t, v.Rows, 1)
	assert.Equal(t, "NEW", v.Rows[0].ID)
	assert.Equal(t, "new", v.Search)
	assert.False(t, v.Loading)
}

func TestSupersededFailureIsSilent(t *testing.T) {
	slowStarted := make(chan struct{})
	releaseSlow := make(chan struct{})
	stub := &stubRequester{get: func(ctx context.Context, path string, q url.Values) (*api.Envelope, error) {
		if q.Get("page") == "1" {
			close(slowStarted)
			<-releaseSlow
			return nil, &api.TransportError{Method: "GET", Path: path, Err: context.DeadlineExceeded}
		}
		return envelopeOf(t, page(0)), nil
	}}
	rec := &notifytest.Recorder{}
	c := NewController(Items(), stub, rec)

	done := make(chan struct{})
	go func() {
		c.ChangePage(context.Background(), 1)
		close(done)
	}()
	<-slowStarted
	c.ChangePage(context.Background(), 2)
	close(releaseSlow)

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("slow fetch never returned")
	}
	assert.Empty(t, rec.Errors())
	assert.Equal(t, 2, c.Snapshot().Page)
}

func TestDialogDraftOnlyWhileOpen(t *testing.T) {
	c, _, _ := newItems(t, alwaysPage(page(1, shirt)))
	c.FetchPage(context.Background(), 0, "")

	for _, kind := range []DialogKind{DialogAdd, DialogEdit, DialogDelete} {
		d := c.Dialog(kind)
		assert.False(t, d.Open)
		assert.Nil(t, d.Draft)
	}

	c.OpenAdd()
	assert.True(t, c.Dialog(DialogAdd).Open)
	assert.NotNil(t, c.Dialog(DialogAdd).Draft)

	require.NoError(t, c.OpenEditByID("000001"))
	edit := c.Dialog(DialogEdit)
	assert.True(t, edit.Open)
	assert.Equal(t, "Shirt", edit.Draft.String("itemDescription"))

	// The draft is a copy: mutating it does not touch the table.
	edit.Draft["itemDescription"] = "Changed"
	assert.Equal(t, "Shirt", c.Dialog(DialogEdit).Draft.String("itemDescription"))

	require.NoError(t, c.OpenDeleteByID("000001"))
	assert.ErrorIs(t, c.OpenDeleteByID("999999"), data.ErrRecordNotFound)

	for _, kind := range []DialogKind{DialogAdd, DialogEdit, DialogDelete} {
		c.CloseDialog(kind)
		d := c.Dialog(kind)
		assert.False(t, d.Open)
		assert.Nil(t, d.Draft)
	}
}

func TestWithSharesState(t *testing.T) {
	f1, client1 := newFakeAPI(t, alwaysPage(page(1, shirt)))
	_, client2 := newFakeAPI(t, alwaysPage(page(0)))
	rec1, rec2 := &notifytest.Recorder{}, &notifytest.Recorder{}

	base := NewController(Items(), client1, rec1)
	base.FetchPage(context.Background(), 0, "")
	require.Len(t, f1.Requests(), 1)

	other := base.With(client2, rec2)
	assert.Len(t, other.Snapshot().Rows, 1)
	other.OpenAdd()
	assert.True(t, base.Dialog(DialogAdd).Open)

	other.Refresh(context.Background())
	assert.Empty(t, base.Snapshot().Rows)
	assert.Len(t, f1.Requests(), 1)
}

func TestSnapshotMetadata(t *testing.T) {
	c, _, _ := newItems(t, alwaysPage(page(17, shirt)))
	c.ChangePage(context.Background(), 1)

	v := c.Snapshot()
	assert.Equal(t, "items", v.Resource)
	assert.Equal(t, 2, v.Meta.LastPage)
	assert.True(t, v.Meta.HasNext())
	assert.True(t, v.Meta.HasPrev())
}

func TestParseDialogKind(t *testing.T) {
	k, ok := ParseDialogKind("edit")
	assert.True(t, ok)
	assert.Equal(t, DialogEdit, k)
	_, ok = ParseDialogKind("view")
	assert.False(t, ok)
}
