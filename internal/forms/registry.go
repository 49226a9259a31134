package forms

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/JaimeStill/agent-meet/pkg/lifecycle"
)

// Form ids within a session scope.
const (
	KeyAgentNew   = "agents:new"
	KeyMeetingNew = "meetings:new"
)

func KeyAgentEdit(id string) string   { return "agents:edit:" + id }
func KeyMeetingEdit(id string) string { return "meetings:edit:" + id }

// KeyMeetingAgentDialog names the nested agent dialog of a meeting form. ctx
// is "new" or the meeting id.
func KeyMeetingAgentDialog(ctx string) string { return "meetings:" + ctx + ":agent" }

// Instance is an open form held by a Registry.
type Instance interface {
	Closed() bool
	LastActive() time.Time
}

// Registry holds the open forms of each session scope. Forms idle longer than
// the TTL and closed forms are evicted by Sweep.
type Registry struct {
	ttl    time.Duration
	now    func() time.Time
	logger *slog.Logger

	mu     sync.Mutex
	scopes map[string]map[string]Instance
}

func NewRegistry(ttl time.Duration, logger *slog.Logger) *Registry {
	return &Registry{
		ttl:    ttl,
		now:    time.Now,
		logger: logger.With("system", "forms"),
		scopes: make(map[string]map[string]Instance),
	}
}

// Open returns the open form at key in scope, creating it with create when
// absent, closed or of another type.
func Open[F Instance](r *Registry, scope, key string, create func() F) F {
	r.mu.Lock()
	defer r.mu.Unlock()

	forms := r.scopes[scope]
	if forms == nil {
		forms = make(map[string]Instance)
		r.scopes[scope] = forms
	}

	if existing, ok := forms[key].(F); ok && !existing.Closed() {
		return existing
	}

	f := create()
	forms[key] = f
	return f
}

// Lookup returns the open form at key in scope.
func Lookup[F Instance](r *Registry, scope, key string) (F, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var zero F
	f, ok := r.scopes[scope][key].(F)
	if !ok || f.Closed() {
		return zero, false
	}
	return f, true
}

// Close removes the form at key from scope.
func (r *Registry) Close(scope, key string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	delete(r.scopes[scope], key)
	if len(r.scopes[scope]) == 0 {
		delete(r.scopes, scope)
	}
}

// DropScope discards every form of a session.
func (r *Registry) DropScope(scope string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.scopes, scope)
}

// Len counts open forms across scopes.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()

	n := 0
	for _, forms := range r.scopes {
		n += len(forms)
	}
	return n
}

// Sweep evicts closed and idle forms and returns how many were removed.
func (r *Registry) Sweep() int {
	r.mu.Lock()
	defer r.mu.Unlock()

	cutoff := r.now().Add(-r.ttl)
	removed := 0
	for scope, forms := range r.scopes {
		for key, f := range forms {
			if f.Closed() || f.LastActive().Before(cutoff) {
				delete(forms, key)
				removed++
			}
		}
		if len(forms) == 0 {
			delete(r.scopes, scope)
		}
	}
	return removed
}

// Start sweeps on an interval of half the TTL until shutdown.
func (r *Registry) Start(lc *lifecycle.Coordinator) {
	interval := r.ttl / 2
	if interval <= 0 {
		return
	}

	lc.OnShutdown(func() {
		r.run(lc.Context(), interval)
	})
}

func (r *Registry) run(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := r.Sweep(); n > 0 {
				r.logger.Debug("forms evicted", "count", n)
			}
		}
	}
}
