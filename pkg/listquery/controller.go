package listquery

import (
	"context"
	"sync"
	"time"

	"github.com/benbjohnson/clock"

	"github.com/epanel-tools/epanel/pkg/querycache"
)

// DebounceInterval is the quiet period after the last keystroke before the
// search term is adopted into the query key.
const DebounceInterval = 500 * time.Millisecond

// DefaultPageSize matches the panel's fixed page length.
const DefaultPageSize = 10

// Sort directions.
const (
	OrderAsc  = "asc"
	OrderDesc = "desc"
)

// Page is a list response that knows its server-side total.
type Page interface {
	TotalItems() int
}

// Params carries the remote list parameters derived from controller state.
type Params struct {
	Limit  int
	Skip   int
	SortBy string
	Order  string
}

// Fetcher loads one page of a collection. The search variant takes no sort
// parameters: the server does not support sorting search results, and the
// controller deliberately drops the requested sort on that path.
type Fetcher[V Page] interface {
	List(ctx context.Context, p Params) (V, error)
	Search(ctx context.Context, query string, limit, skip int) (V, error)
}

// CredentialSource supplies the fingerprint bound into every query key so
// entries from different logins never alias. Implemented by session.Store.
type CredentialSource interface {
	Fingerprint() string
}

// State is a consistent view of the controller's list parameters.
type State struct {
	Page            int
	TotalPages      int
	SortColumn      string
	SortOrder       string
	RawSearch       string
	DebouncedSearch string
}

// Options configures controller construction.
type Options struct {
	PageSize   int
	SortColumn string
	SortOrder  string
	Page       int
	Search     string
	Clock      clock.Clock
}

// Option mutates Options.
type Option func(*Options)

// WithPageSize overrides the page length.
func WithPageSize(n int) Option {
	return func(opts *Options) { opts.PageSize = n }
}

// WithSort sets the initial sort column and order.
func WithSort(column, order string) Option {
	return func(opts *Options) {
		opts.SortColumn = column
		opts.SortOrder = order
	}
}

// WithPage sets the initial page.
func WithPage(n int) Option {
	return func(opts *Options) { opts.Page = n }
}

// WithSearch sets the initial search term, already adopted (no debounce).
func WithSearch(term string) Option {
	return func(opts *Options) { opts.Search = term }
}

// WithClock substitutes the time source, for tests.
func WithClock(c clock.Clock) Option {
	return func(opts *Options) { opts.Clock = c }
}

// Controller owns pagination, sort and search state for one collection and
// drives the query cache with keys derived from that state.
type Controller[V Page] struct {
	collection string
	pageSize   int
	cache      *querycache.Cache[V]
	fetcher    Fetcher[V]
	creds      CredentialSource
	clock      clock.Clock

	mu              sync.Mutex
	page            int
	totalPages      int // 0 until the first page lands
	sortColumn      string
	sortOrder       string
	rawSearch       string
	debouncedSearch string
	debounceTimer   *clock.Timer

	prev   V
	prevOK bool
}

// New creates a controller for the named collection.
func New[V Page](collection string, cache *querycache.Cache[V], fetcher Fetcher[V], creds CredentialSource, optFns ...Option) *Controller[V] {
	opts := Options{
		PageSize:   DefaultPageSize,
		SortColumn: "title",
		SortOrder:  OrderAsc,
		Page:       1,
		Clock:      clock.New(),
	}
	for _, fn := range optFns {
		fn(&opts)
	}
	if opts.Page < 1 {
		opts.Page = 1
	}

	return &Controller[V]{
		collection:      collection,
		pageSize:        opts.PageSize,
		cache:           cache,
		fetcher:         fetcher,
		creds:           creds,
		clock:           opts.Clock,
		page:            opts.Page,
		sortColumn:      opts.SortColumn,
		sortOrder:       opts.SortOrder,
		rawSearch:       opts.Search,
		debouncedSearch: opts.Search,
	}
}

// SetPage moves to page n, clamped to [1, totalPages] once the total is
// known. Setting the current page is a no-op.
func (c *Controller[V]) SetPage(n int) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if n < 1 {
		n = 1
	}
	if c.totalPages > 0 && n > c.totalPages {
		n = c.totalPages
	}
	c.page = n
}

// SetSort sorts by column. Sorting by the current column flips the order; a
// new column starts ascending. Either way the page resets to 1, because the
// previous page number no longer addresses the same rows.
func (c *Controller[V]) SetSort(column string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if column == c.sortColumn {
		if c.sortOrder == OrderAsc {
			c.sortOrder = OrderDesc
		} else {
			c.sortOrder = OrderAsc
		}
	} else {
		c.sortColumn = column
		c.sortOrder = OrderAsc
	}
	c.page = 1
}

// SetSearchText records text immediately for display and schedules its
// adoption into the query key after the quiet interval. Each call cancels
// the previously scheduled adoption, so under rapid input only the final
// value is adopted. Adoption of a changed term resets the page to 1.
func (c *Controller[V]) SetSearchText(text string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.rawSearch = text
	if c.debounceTimer != nil {
		c.debounceTimer.Stop()
	}
	c.debounceTimer = c.clock.AfterFunc(DebounceInterval, c.adoptSearch)
}

func (c *Controller[V]) adoptSearch() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.debouncedSearch == c.rawSearch {
		return
	}
	c.debouncedSearch = c.rawSearch
	c.page = 1
}

// Key composes the cache key for the current state plus the active
// credential fingerprint.
func (c *Controller[V]) Key() querycache.Key {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.keyLocked()
}

func (c *Controller[V]) keyLocked() querycache.Key {
	return querycache.Key{
		Collection:  c.collection,
		Page:        c.page,
		SortBy:      c.sortColumn,
		Order:       c.sortOrder,
		Query:       c.debouncedSearch,
		Fingerprint: c.creds.Fingerprint(),
	}
}

// Get reads the current page through the cache, issuing a fetch when there
// is no fresh entry. While a fetch is pending the previous page's value is
// substituted (marked Stale) to avoid flicker.
func (c *Controller[V]) Get(ctx context.Context) querycache.Result[V] {
	key, fetch := c.prepare()
	return c.observe(c.cache.Get(ctx, key, fetch))
}

// GetWait reads the current page through the cache, blocking until the fetch
// settles. The returned error is only ever the context's.
func (c *Controller[V]) GetWait(ctx context.Context) (querycache.Result[V], error) {
	key, fetch := c.prepare()
	res, err := c.cache.GetWait(ctx, key, fetch)
	if err != nil {
		return res, err
	}
	return c.observe(res), nil
}

// prepare snapshots the state into a key and a fetch closure. When a search
// term is active the search endpoint variant is used and the sort parameters
// are dropped.
func (c *Controller[V]) prepare() (querycache.Key, querycache.FetchFunc[V]) {
	c.mu.Lock()
	defer c.mu.Unlock()

	key := c.keyLocked()
	query := c.debouncedSearch
	limit := c.pageSize
	skip := (c.page - 1) * c.pageSize
	sortBy := c.sortColumn
	order := c.sortOrder

	fetch := func(ctx context.Context) (V, error) {
		if query != "" {
			return c.fetcher.Search(ctx, query, limit, skip)
		}
		return c.fetcher.List(ctx, Params{Limit: limit, Skip: skip, SortBy: sortBy, Order: order})
	}
	return key, fetch
}

// observe records totals and the placeholder value from a settled result.
func (c *Controller[V]) observe(res querycache.Result[V]) querycache.Result[V] {
	c.mu.Lock()
	defer c.mu.Unlock()

	switch res.Status {
	case querycache.Ready:
		c.prev = res.Value
		c.prevOK = true
		c.totalPages = (res.Value.TotalItems() + c.pageSize - 1) / c.pageSize
		if c.totalPages > 0 && c.page > c.totalPages {
			c.page = c.totalPages
		}
	case querycache.Pending:
		if !res.HasValue && c.prevOK {
			res.Value = c.prev
			res.HasValue = true
			res.Stale = true
		}
	}
	return res
}

// Run re-issues the current key's fetch on the given interval until ctx is
// done, keeping e.g. sales data fresh independent of user interaction.
// Refreshes share the de-duplication path with interactive fetches.
func (c *Controller[V]) Run(ctx context.Context, interval time.Duration) {
	ticker := c.clock.Ticker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			c.Get(ctx)
		}
	}
}

// CurrentState returns a consistent view of the list parameters.
func (c *Controller[V]) CurrentState() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return State{
		Page:            c.page,
		TotalPages:      c.totalPages,
		SortColumn:      c.sortColumn,
		SortOrder:       c.sortOrder,
		RawSearch:       c.rawSearch,
		DebouncedSearch: c.debouncedSearch,
	}
}
