package querycache

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/benbjohnson/clock"
	lru "github.com/hashicorp/golang-lru/v2"
)

// Status of a cache entry's latest fetch.
type Status int

const (
	Pending Status = iota
	Ready
	Error
)

func (s Status) String() string {
	switch s {
	case Pending:
		return "pending"
	case Ready:
		return "ready"
	case Error:
		return "error"
	}
	return "unknown"
}

// DefaultTTL is the freshness window within which a Ready entry is returned
// without re-fetching.
const DefaultTTL = 30 * time.Second

const defaultSize = 256

// FetchFunc loads the value for a key. Failures become Error entries; they
// never propagate past the cache boundary as thrown failures.
type FetchFunc[V any] func(ctx context.Context) (V, error)

// Result is a consistent snapshot of an entry. Absence of data is Pending,
// never an error. A Pending or stale Result may still carry the previously
// fetched value (HasValue) for display while the replacement fetch runs.
type Result[V any] struct {
	Status    Status
	Value     V
	HasValue  bool
	Err       error
	FetchedAt time.Time
	Stale     bool
}

type entry[V any] struct {
	generation uint64
	status     Status
	value      V
	hasValue   bool
	err        error
	fetchedAt  time.Time
	stale      bool
	settled    bool
	done       chan struct{}
}

// Options configures cache construction.
type Options struct {
	TTL   time.Duration
	Size  int
	Clock clock.Clock
}

// Option mutates Options.
type Option func(*Options)

// WithTTL overrides the freshness window.
func WithTTL(ttl time.Duration) Option {
	return func(opts *Options) { opts.TTL = ttl }
}

// WithSize bounds the number of retained entries.
func WithSize(n int) Option {
	return func(opts *Options) { opts.Size = n }
}

// WithClock substitutes the time source, for tests.
func WithClock(c clock.Clock) Option {
	return func(opts *Options) { opts.Clock = c }
}

// Cache is a keyed store of asynchronous read results with per-key status,
// staleness and in-flight de-duplication. For a given key, results apply in
// generation order: a response belonging to a superseded fetch is dropped
// even if it arrives after a newer one, so correctness does not depend on
// the transport supporting cancellation.
type Cache[V any] struct {
	mu      sync.Mutex
	clock   clock.Clock
	ttl     time.Duration
	entries *lru.Cache[Key, *entry[V]]
}

// New creates a cache with a bounded LRU entry store.
func New[V any](optFns ...Option) (*Cache[V], error) {
	opts := Options{TTL: DefaultTTL, Size: defaultSize, Clock: clock.New()}
	for _, fn := range optFns {
		fn(&opts)
	}

	entries, err := lru.New[Key, *entry[V]](opts.Size)
	if err != nil {
		return nil, fmt.Errorf("create entry store: %w", err)
	}

	return &Cache[V]{
		clock:   opts.Clock,
		ttl:     opts.TTL,
		entries: entries,
	}, nil
}

// Get returns the entry for key, issuing fetch when there is no fresh one.
// A Pending entry for the same key is returned as-is rather than issuing a
// duplicate fetch. Get never blocks; consumers read the Result status.
func (c *Cache[V]) Get(ctx context.Context, key Key, fetch FetchFunc[V]) Result[V] {
	res, _ := c.get(ctx, key, fetch)
	return res
}

// GetWait blocks until the newest fetch for key settles and returns the
// settled result. Superseded generations are waited out transparently. The
// returned error is only ever the context's; fetch failures surface as an
// Error status on the Result.
func (c *Cache[V]) GetWait(ctx context.Context, key Key, fetch FetchFunc[V]) (Result[V], error) {
	for {
		res, done := c.get(ctx, key, fetch)
		if res.Status != Pending {
			return res, nil
		}
		select {
		case <-ctx.Done():
			return res, ctx.Err()
		case <-done:
		}
	}
}

func (c *Cache[V]) get(ctx context.Context, key Key, fetch FetchFunc[V]) (Result[V], <-chan struct{}) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.entries.Get(key)
	if ok {
		if e.status == Pending && !e.stale {
			// In-flight fetch for the same key: de-duplicate.
			return c.snapshotLocked(e), e.done
		}
		if e.settled && !e.stale && c.clock.Since(e.fetchedAt) < c.ttl {
			return c.snapshotLocked(e), e.done
		}
	} else {
		e = &entry[V]{done: make(chan struct{})}
		c.entries.Add(key, e)
	}

	// (Re)issue: supersede whatever fetch may still be in flight.
	if e.settled {
		e.done = make(chan struct{})
		e.settled = false
	}
	e.generation++
	e.status = Pending
	e.err = nil
	e.stale = false

	go c.run(ctx, e, e.generation, fetch)
	return c.snapshotLocked(e), e.done
}

func (c *Cache[V]) run(ctx context.Context, e *entry[V], generation uint64, fetch FetchFunc[V]) {
	value, err := fetch(ctx)

	c.mu.Lock()
	defer c.mu.Unlock()
	if e.generation != generation {
		// Superseded by a newer fetch for the same key; drop silently.
		return
	}

	if err != nil {
		e.status = Error
		e.err = err
	} else {
		e.status = Ready
		e.value = value
		e.hasValue = true
		e.err = nil
	}
	e.fetchedAt = c.clock.Now()
	e.settled = true
	close(e.done)
}

// Invalidate marks every entry whose key satisfies pred for re-fetch on next
// access. Values are retained so consumers can keep displaying the previous
// result while the replacement fetch is pending. In-flight fetches are not
// cancelled; generation matching decides whether their responses still land.
func (c *Cache[V]) Invalidate(pred func(Key) bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, key := range c.entries.Keys() {
		if !pred(key) {
			continue
		}
		if e, ok := c.entries.Peek(key); ok {
			e.stale = true
		}
	}
}

// InvalidateCollection marks every entry for the named collection stale.
// Writes invalidate at this granularity because they may affect any
// page/sort/filter combination.
func (c *Cache[V]) InvalidateCollection(collection string) {
	c.Invalidate(func(k Key) bool { return k.Collection == collection })
}

// Peek returns the current entry for key without issuing a fetch.
func (c *Cache[V]) Peek(key Key) (Result[V], bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	e, ok := c.entries.Peek(key)
	if !ok {
		return Result[V]{}, false
	}
	return c.snapshotLocked(e), true
}

// Len reports the number of retained entries.
func (c *Cache[V]) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.entries.Len()
}

func (c *Cache[V]) snapshotLocked(e *entry[V]) Result[V] {
	return Result[V]{
		Status:    e.status,
		Value:     e.value,
		HasValue:  e.hasValue,
		Err:       e.err,
		FetchedAt: e.fetchedAt,
		Stale:     e.stale,
	}
}
