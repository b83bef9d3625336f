package listquery_test

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/epanel-tools/epanel/pkg/listquery"
	"github.com/epanel-tools/epanel/pkg/querycache"
)

// fakePage is a minimal list response with a server-side total.
type fakePage struct {
	Items []string
	Total int
}

func (p fakePage) TotalItems() int { return p.Total }

// fakeFetcher records every call and serves canned pages. Fetches block on
// release when it is set.
type fakeFetcher struct {
	mu          sync.Mutex
	listCalls   []listquery.Params
	searchCalls []string
	total       int
	release     chan struct{}
}

func (f *fakeFetcher) List(ctx context.Context, p listquery.Params) (fakePage, error) {
	f.mu.Lock()
	f.listCalls = append(f.listCalls, p)
	release := f.release
	f.mu.Unlock()
	if release != nil {
		<-release
	}
	return fakePage{Items: []string{fmt.Sprintf("list skip=%d", p.Skip)}, Total: f.total}, nil
}

func (f *fakeFetcher) Search(ctx context.Context, query string, limit, skip int) (fakePage, error) {
	f.mu.Lock()
	f.searchCalls = append(f.searchCalls, query)
	f.mu.Unlock()
	return fakePage{Items: []string{"search " + query}, Total: f.total}, nil
}

func (f *fakeFetcher) listCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.listCalls)
}

func (f *fakeFetcher) lastList() listquery.Params {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.listCalls[len(f.listCalls)-1]
}

type staticCreds string

func (s staticCreds) Fingerprint() string { return string(s) }

func newController(t *testing.T, fetcher *fakeFetcher, optFns ...listquery.Option) *listquery.Controller[fakePage] {
	t.Helper()
	cache, err := querycache.New[fakePage]()
	require.NoError(t, err)
	return listquery.New[fakePage]("products", cache, fetcher, staticCreds("fp-1"), optFns...)
}

func TestDefaults(t *testing.T) {
	ctrl := newController(t, &fakeFetcher{total: 100})

	state := ctrl.CurrentState()
	assert.Equal(t, 1, state.Page)
	assert.Equal(t, "title", state.SortColumn)
	assert.Equal(t, listquery.OrderAsc, state.SortOrder)
	assert.Empty(t, state.RawSearch)

	key := ctrl.Key()
	assert.Equal(t, "products", key.Collection)
	assert.Equal(t, "fp-1", key.Fingerprint)
	assert.Equal(t, "title", key.SortBy, "sort columns always participate in the key")
}

func TestSetSort(t *testing.T) {
	ctrl := newController(t, &fakeFetcher{total: 100})
	ctrl.SetPage(3)

	// Same column flips the order and resets the page.
	ctrl.SetSort("title")
	state := ctrl.CurrentState()
	assert.Equal(t, listquery.OrderDesc, state.SortOrder)
	assert.Equal(t, 1, state.Page)

	ctrl.SetSort("title")
	assert.Equal(t, listquery.OrderAsc, ctrl.CurrentState().SortOrder)

	// A new column starts ascending.
	ctrl.SetPage(3)
	ctrl.SetSort("price")
	state = ctrl.CurrentState()
	assert.Equal(t, "price", state.SortColumn)
	assert.Equal(t, listquery.OrderAsc, state.SortOrder)
	assert.Equal(t, 1, state.Page)
}

func TestSetPageClamping(t *testing.T) {
	fetcher := &fakeFetcher{total: 35} // 4 pages of 10
	ctrl := newController(t, fetcher)

	ctrl.SetPage(0)
	assert.Equal(t, 1, ctrl.CurrentState().Page, "floor is page 1")

	// Before the first response lands the total is unknown, so no upper
	// clamp applies yet.
	ctrl.SetPage(9)
	assert.Equal(t, 9, ctrl.CurrentState().Page)

	res, err := ctrl.GetWait(context.Background())
	require.NoError(t, err)
	require.Equal(t, querycache.Ready, res.Status)

	state := ctrl.CurrentState()
	assert.Equal(t, 4, state.TotalPages)
	assert.Equal(t, 4, state.Page, "page clamped once the total is known")

	ctrl.SetPage(9)
	assert.Equal(t, 4, ctrl.CurrentState().Page)
}

func TestDebounce(t *testing.T) {
	mock := clock.NewMock()
	fetcher := &fakeFetcher{total: 100}
	ctrl := newController(t, fetcher, listquery.WithClock(mock))
	ctrl.SetPage(3)

	ctrl.SetSearchText("a")
	state := ctrl.CurrentState()
	assert.Equal(t, "a", state.RawSearch, "raw text visible immediately")
	assert.Empty(t, state.DebouncedSearch)

	// A second keystroke inside the quiet period reschedules the adoption.
	mock.Add(200 * time.Millisecond)
	ctrl.SetSearchText("ab")

	mock.Add(499 * time.Millisecond)
	state = ctrl.CurrentState()
	assert.Empty(t, state.DebouncedSearch, "quiet period not yet elapsed")
	assert.Equal(t, 3, state.Page)

	mock.Add(1 * time.Millisecond)
	state = ctrl.CurrentState()
	assert.Equal(t, "ab", state.DebouncedSearch, "only the final text is adopted")
	assert.Equal(t, 1, state.Page, "adoption resets the page")
	assert.Equal(t, "ab", ctrl.Key().Query)
}

func TestDebounceUnchangedTermKeepsPage(t *testing.T) {
	mock := clock.NewMock()
	ctrl := newController(t, &fakeFetcher{total: 100}, listquery.WithClock(mock), listquery.WithSearch("phone"))
	ctrl.SetPage(2)

	// Retyping the already-adopted term must not reset the page.
	ctrl.SetSearchText("phone")
	mock.Add(listquery.DebounceInterval)

	state := ctrl.CurrentState()
	assert.Equal(t, "phone", state.DebouncedSearch)
	assert.Equal(t, 2, state.Page)
}

func TestSearchPathDropsSort(t *testing.T) {
	fetcher := &fakeFetcher{total: 100}
	ctrl := newController(t, fetcher, listquery.WithSearch("laptop"))
	ctrl.SetSort("price")

	res, err := ctrl.GetWait(context.Background())
	require.NoError(t, err)
	require.Equal(t, querycache.Ready, res.Status)

	fetcher.mu.Lock()
	defer fetcher.mu.Unlock()
	assert.Empty(t, fetcher.listCalls, "active search must use the search endpoint")
	assert.Equal(t, []string{"laptop"}, fetcher.searchCalls)

	// The requested sort still lives in the key so clearing the search
	// returns to a correctly sorted list.
	key := ctrl.Key()
	assert.Equal(t, "price", key.SortBy)
}

func TestListPathSendsSortAndWindow(t *testing.T) {
	fetcher := &fakeFetcher{total: 100}
	ctrl := newController(t, fetcher)
	ctrl.SetSort("price")
	ctrl.SetSort("price") // flip to desc
	ctrl.SetPage(3)

	res, err := ctrl.GetWait(context.Background())
	require.NoError(t, err)
	require.Equal(t, querycache.Ready, res.Status)

	params := fetcher.lastList()
	assert.Equal(t, 10, params.Limit)
	assert.Equal(t, 20, params.Skip)
	assert.Equal(t, "price", params.SortBy)
	assert.Equal(t, listquery.OrderDesc, params.Order)
}

func TestPlaceholderDuringPageChange(t *testing.T) {
	fetcher := &fakeFetcher{total: 35}
	ctrl := newController(t, fetcher)

	first, err := ctrl.GetWait(context.Background())
	require.NoError(t, err)
	require.Equal(t, querycache.Ready, first.Status)

	// Block the next fetch and move to an uncached page.
	release := make(chan struct{})
	fetcher.mu.Lock()
	fetcher.release = release
	fetcher.mu.Unlock()
	ctrl.SetPage(2)

	res := ctrl.Get(context.Background())
	assert.Equal(t, querycache.Pending, res.Status)
	assert.True(t, res.HasValue, "previous page substituted while pending")
	assert.True(t, res.Stale)
	assert.Equal(t, first.Value, res.Value)

	close(release)
	settled, err := ctrl.GetWait(context.Background())
	require.NoError(t, err)
	assert.Equal(t, querycache.Ready, settled.Status)
	assert.False(t, settled.Stale)
	assert.NotEqual(t, first.Value, settled.Value)
}

func TestRunRefreshesOnInterval(t *testing.T) {
	mock := clock.NewMock()
	fetcher := &fakeFetcher{total: 100}
	ctrl := newController(t, fetcher, listquery.WithClock(mock))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go ctrl.Run(ctx, 30*time.Second)

	// Let the goroutine install its ticker before advancing time.
	time.Sleep(10 * time.Millisecond)
	mock.Add(30 * time.Second)

	require.Eventually(t, func() bool {
		return fetcher.listCount() >= 1
	}, time.Second, 5*time.Millisecond)
}
