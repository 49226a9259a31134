package cache

import (
	"context"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/JaimeStill/agent-meet/pkg/lifecycle"
)

// Provider hands out one Cache per scope, typically a session id.
type Provider interface {
	Scope(id string) *Cache
	Drop(ctx context.Context, id string) error
	OnInvalidate(fn InvalidateFunc)
	// Sweep forgets scopes unused for longer than the idle time and returns
	// how many were removed.
	Sweep() int
	Start(lc *lifecycle.Coordinator)
}

type provider struct {
	mu        sync.Mutex
	caches    map[string]*Cache
	used      map[string]time.Time
	idle      time.Duration
	newStore  func(scope string) Store
	opts      Options
	now       func() time.Time
	observers []InvalidateFunc
}

func newProvider(idle time.Duration, opts Options, newStore func(scope string) Store) *provider {
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	return &provider{
		caches:   make(map[string]*Cache),
		used:     make(map[string]time.Time),
		idle:     idle,
		newStore: newStore,
		opts:     opts,
		now:      now,
	}
}

// NewMemoryProvider keeps every scope in process memory. A scope unused for
// idle is discarded with its entries; zero keeps scopes until dropped.
func NewMemoryProvider(idle time.Duration, opts Options) Provider {
	return newProvider(idle, opts, func(string) Store { return NewMemoryStore() })
}

// NewRedisProvider stores scopes in redis under "{namespace}:cache:{scope}:".
// Entries expire after ttl; a scope unused for ttl is also forgotten locally.
func NewRedisProvider(rdb redis.Cmdable, namespace string, ttl time.Duration, opts Options) Provider {
	return newProvider(ttl, opts, func(scope string) Store {
		return NewRedisStore(rdb, namespace+":cache:"+scope+":", ttl)
	})
}

func (p *provider) Scope(id string) *Cache {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.used[id] = p.now()
	if c, ok := p.caches[id]; ok {
		return c
	}

	c := New(id, p.newStore(id), p.opts)
	for _, fn := range p.observers {
		c.OnInvalidate(fn)
	}
	p.caches[id] = c
	return c
}

// Drop clears and forgets a scope.
func (p *provider) Drop(ctx context.Context, id string) error {
	p.mu.Lock()
	c, ok := p.caches[id]
	delete(p.caches, id)
	delete(p.used, id)
	p.mu.Unlock()

	if !ok {
		c = New(id, p.newStore(id), p.opts)
	}
	return c.Clear(ctx)
}

// OnInvalidate registers fn with every current and future scope.
func (p *provider) OnInvalidate(fn InvalidateFunc) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.observers = append(p.observers, fn)
	for _, c := range p.caches {
		c.OnInvalidate(fn)
	}
}

func (p *provider) Sweep() int {
	if p.idle <= 0 {
		return 0
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	cutoff := p.now().Add(-p.idle)
	removed := 0
	for id, at := range p.used {
		if at.Before(cutoff) {
			delete(p.caches, id)
			delete(p.used, id)
			removed++
		}
	}
	return removed
}

// Start sweeps on an interval of half the idle time until shutdown.
func (p *provider) Start(lc *lifecycle.Coordinator) {
	interval := p.idle / 2
	if interval <= 0 {
		return
	}

	lc.OnShutdown(func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			select {
			case <-lc.Context().Done():
				return
			case <-ticker.C:
				p.Sweep()
			}
		}
	})
}
