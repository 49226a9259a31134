package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// Store persists sessions by token. Get returns nil, nil for unknown tokens.
type Store interface {
	Get(ctx context.Context, token string) (*Session, error)
	Put(ctx context.Context, s *Session, ttl time.Duration) error
	Delete(ctx context.Context, token string) error
}

type memoryStore struct {
	mu       sync.RWMutex
	sessions map[string]Session
	now      func() time.Time
}

// NewMemoryStore creates a process-local store. Expired sessions are dropped
// on read.
func NewMemoryStore() Store {
	return &memoryStore{
		sessions: make(map[string]Session),
		now:      time.Now,
	}
}

func (m *memoryStore) Get(_ context.Context, token string) (*Session, error) {
	m.mu.RLock()
	s, ok := m.sessions[token]
	m.mu.RUnlock()

	if !ok {
		return nil, nil
	}
	if s.Expired(m.now()) {
		m.mu.Lock()
		delete(m.sessions, token)
		m.mu.Unlock()
		return nil, nil
	}
	return &s, nil
}

func (m *memoryStore) Put(_ context.Context, s *Session, _ time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sessions[s.Token] = *s
	return nil
}

func (m *memoryStore) Delete(_ context.Context, token string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.sessions, token)
	return nil
}

type redisStore struct {
	rdb    redis.Cmdable
	prefix string
}

// NewRedisStore stores sessions as JSON under namespace:session:<token> with
// the session TTL as key expiry.
func NewRedisStore(rdb redis.Cmdable, namespace string) Store {
	return &redisStore{rdb: rdb, prefix: namespace + ":session:"}
}

func (r *redisStore) Get(ctx context.Context, token string) (*Session, error) {
	data, err := r.rdb.Get(ctx, r.prefix+token).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	var s Session
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("decode session: %w", err)
	}
	return &s, nil
}

func (r *redisStore) Put(ctx context.Context, s *Session, ttl time.Duration) error {
	data, err := json.Marshal(s)
	if err != nil {
		return fmt.Errorf("encode session: %w", err)
	}
	return r.rdb.Set(ctx, r.prefix+s.Token, data, ttl).Err()
}

func (r *redisStore) Delete(ctx context.Context, token string) error {
	return r.rdb.Del(ctx, r.prefix+token).Err()
}
