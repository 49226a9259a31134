package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"
)

// DefaultStaleTime is how long an entry is served without a refetch.
const DefaultStaleTime = 30 * time.Second

// InvalidateFunc observes invalidations. scope is the owning cache scope,
// filter the key filter passed to Invalidate, and count the number of entries
// marked stale.
type InvalidateFunc func(scope string, filter Key, count int)

// Options configures a Cache.
type Options struct {
	// StaleTime bounds how long a fresh entry is served. Zero uses DefaultStaleTime;
	// a negative value disables time-based staleness.
	StaleTime time.Duration
	Now       func() time.Time
}

// Cache is a query cache over one Store. Concurrent loads of the same key
// share a single call to the loader. A load that overlaps an invalidation of
// its key is returned to its callers but never stored, and later Fetches do
// not join it.
type Cache struct {
	scope     string
	store     Store
	staleTime time.Duration
	now       func() time.Time
	group     singleflight.Group
	observers []InvalidateFunc

	mu      sync.Mutex
	seq     uint64
	loading map[string]*inflight
	marks   []mark
}

// inflight counts the loader calls running for one key.
type inflight struct {
	key Key
	n   int
}

// mark is an invalidation recorded while loads were in flight.
type mark struct {
	seq    uint64
	filter Key
}

// New creates a Cache for scope backed by store.
func New(scope string, store Store, opts Options) *Cache {
	c := &Cache{
		scope:     scope,
		store:     store,
		staleTime: opts.StaleTime,
		now:       opts.Now,
		loading:   make(map[string]*inflight),
	}
	if c.staleTime == 0 {
		c.staleTime = DefaultStaleTime
	}
	if c.now == nil {
		c.now = time.Now
	}
	return c
}

// NewRequest creates a short-lived in-memory cache used to prefetch data for
// one request before it is dehydrated.
func NewRequest() *Cache {
	return New("request", NewMemoryStore(), Options{StaleTime: -1})
}

// Scope returns the scope this cache belongs to.
func (c *Cache) Scope() string {
	return c.scope
}

// OnInvalidate registers an observer called after every Invalidate.
func (c *Cache) OnInvalidate(fn InvalidateFunc) {
	c.observers = append(c.observers, fn)
}

// Peek returns the entry for key without loading it.
func (c *Cache) Peek(ctx context.Context, key Key) (Entry, bool, error) {
	return c.store.Get(ctx, key.String())
}

// Fresh reports whether e can be served without a refetch.
func (c *Cache) Fresh(e Entry) bool {
	if e.Stale {
		return false
	}
	if c.staleTime < 0 {
		return true
	}
	return c.now().Sub(e.UpdatedAt) < c.staleTime
}

// Fetch returns the cached value for key, loading it with fn when the entry is
// missing or stale. Load errors are returned and never cached.
func Fetch[T any](ctx context.Context, c *Cache, key Key, fn func(context.Context) (T, error)) (T, error) {
	var zero T

	data, err := c.load(ctx, key, func(ctx context.Context) (any, error) {
		return fn(ctx)
	})
	if err != nil {
		return zero, err
	}

	var v T
	if err := json.Unmarshal(data, &v); err != nil {
		return zero, fmt.Errorf("decode cached %s: %w", key, err)
	}
	return v, nil
}

// Prefetch loads key into the cache so a later Fetch is served without a
// remote call.
func Prefetch[T any](ctx context.Context, c *Cache, key Key, fn func(context.Context) (T, error)) error {
	_, err := Fetch(ctx, c, key, fn)
	return err
}

func (c *Cache) load(ctx context.Context, key Key, fn func(context.Context) (any, error)) ([]byte, error) {
	k := key.String()

	if e, ok, err := c.store.Get(ctx, k); err != nil {
		return nil, err
	} else if ok && c.Fresh(e) {
		return e.Data, nil
	}

	v, err, _ := c.group.Do(k, func() (any, error) {
		start := c.begin(key)
		value, err := fn(ctx)
		stale := c.end(key, start)
		if err != nil {
			return nil, err
		}

		data, err := json.Marshal(value)
		if err != nil {
			return nil, fmt.Errorf("encode %s: %w", k, err)
		}

		if stale {
			return data, nil
		}

		entry := Entry{Key: key, Data: data, UpdatedAt: c.now()}
		if err := c.store.Set(ctx, entry); err != nil {
			return nil, err
		}
		return data, nil
	})
	if err != nil {
		return nil, err
	}
	return v.([]byte), nil
}

// begin registers a loader call for key and returns the invalidation
// sequence it started at.
func (c *Cache) begin(key Key) uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()

	k := key.String()
	l, ok := c.loading[k]
	if !ok {
		l = &inflight{key: key}
		c.loading[k] = l
	}
	l.n++
	return c.seq
}

// end unregisters a loader call and reports whether key was invalidated
// after start.
func (c *Cache) end(key Key, start uint64) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	stale := false
	for _, m := range c.marks {
		if m.seq > start && key.Matches(m.filter) {
			stale = true
			break
		}
	}

	k := key.String()
	if l, ok := c.loading[k]; ok {
		l.n--
		if l.n <= 0 {
			delete(c.loading, k)
		}
	}
	if len(c.loading) == 0 {
		c.marks = nil
	}
	return stale
}

// recordInvalidation records an invalidation of filter against the loads in flight and
// detaches them from singleflight so later Fetches start a new load.
func (c *Cache) recordInvalidation(filter Key) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.seq++
	if len(c.loading) == 0 {
		return
	}
	c.marks = append(c.marks, mark{seq: c.seq, filter: filter})
	for k, l := range c.loading {
		if l.key.Matches(filter) {
			c.group.Forget(k)
		}
	}
}

// Invalidate marks every entry matching filter stale and notifies observers.
// Stale entries keep their data; the next Fetch refetches them.
func (c *Cache) Invalidate(ctx context.Context, filter Key) (int, error) {
	c.recordInvalidation(filter)

	entries, err := c.store.Entries(ctx)
	if err != nil {
		return 0, err
	}

	now := c.now()
	count := 0
	for _, e := range entries {
		if !e.Key.Matches(filter) || e.Stale {
			continue
		}
		e.Stale = true
		e.InvalidatedAt = now
		if err := c.store.Set(ctx, e); err != nil {
			return count, err
		}
		count++
	}

	for _, fn := range c.observers {
		fn(c.scope, filter, count)
	}
	return count, nil
}

// Dehydrate captures every fresh entry.
func (c *Cache) Dehydrate(ctx context.Context) (Snapshot, error) {
	entries, err := c.store.Entries(ctx)
	if err != nil {
		return Snapshot{}, err
	}

	snap := Snapshot{Entries: make([]Entry, 0, len(entries))}
	for _, e := range entries {
		if !e.Stale {
			snap.Entries = append(snap.Entries, e)
		}
	}
	return snap, nil
}

// Hydrate writes snapshot entries into the cache. An existing entry updated
// after the snapshot entry is kept. A snapshot entry loaded before the
// existing entry was invalidated is written but stays stale.
func (c *Cache) Hydrate(ctx context.Context, snap Snapshot) error {
	for _, incoming := range snap.Entries {
		existing, ok, err := c.store.Get(ctx, incoming.Key.String())
		if err != nil {
			return err
		}

		if ok {
			if existing.UpdatedAt.After(incoming.UpdatedAt) {
				continue
			}
			if existing.Stale && existing.InvalidatedAt.After(incoming.UpdatedAt) {
				incoming.Stale = true
				incoming.InvalidatedAt = existing.InvalidatedAt
			}
		}

		if err := c.store.Set(ctx, incoming); err != nil {
			return err
		}
	}
	return nil
}

// Clear removes every entry.
func (c *Cache) Clear(ctx context.Context) error {
	return c.store.Clear(ctx)
}
