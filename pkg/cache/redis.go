package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// redisStore keeps each entry as a CBOR value at {prefix}entry:{key} and
// tracks live keys in the {prefix}index set. Both expire after ttl of
// inactivity.
type redisStore struct {
	rdb    redis.Cmdable
	prefix string
	ttl    time.Duration
}

// NewRedisStore creates a store whose keys live under prefix.
func NewRedisStore(rdb redis.Cmdable, prefix string, ttl time.Duration) Store {
	return &redisStore{rdb: rdb, prefix: prefix, ttl: ttl}
}

func (s *redisStore) entryKey(key string) string {
	return s.prefix + "entry:" + key
}

func (s *redisStore) indexKey() string {
	return s.prefix + "index"
}

func (s *redisStore) Get(ctx context.Context, key string) (Entry, bool, error) {
	data, err := s.rdb.Get(ctx, s.entryKey(key)).Bytes()
	if errors.Is(err, redis.Nil) {
		return Entry{}, false, nil
	}
	if err != nil {
		return Entry{}, false, fmt.Errorf("redis get %s: %w", key, err)
	}

	e, err := decodeEntry(data)
	if err != nil {
		return Entry{}, false, fmt.Errorf("decode entry %s: %w", key, err)
	}
	return e, true, nil
}

func (s *redisStore) Set(ctx context.Context, entry Entry) error {
	data, err := encodeEntry(entry)
	if err != nil {
		return fmt.Errorf("encode entry: %w", err)
	}

	key := entry.Key.String()
	pipe := s.rdb.TxPipeline()
	pipe.Set(ctx, s.entryKey(key), data, s.ttl)
	pipe.SAdd(ctx, s.indexKey(), key)
	if s.ttl > 0 {
		pipe.Expire(ctx, s.indexKey(), s.ttl)
	}

	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("redis set %s: %w", key, err)
	}
	return nil
}

func (s *redisStore) Entries(ctx context.Context) ([]Entry, error) {
	keys, err := s.rdb.SMembers(ctx, s.indexKey()).Result()
	if err != nil {
		return nil, fmt.Errorf("redis index: %w", err)
	}
	if len(keys) == 0 {
		return nil, nil
	}

	entryKeys := make([]string, len(keys))
	for i, k := range keys {
		entryKeys[i] = s.entryKey(k)
	}

	values, err := s.rdb.MGet(ctx, entryKeys...).Result()
	if err != nil {
		return nil, fmt.Errorf("redis mget: %w", err)
	}

	var (
		entries []Entry
		expired []any
	)
	for i, v := range values {
		str, ok := v.(string)
		if !ok {
			expired = append(expired, keys[i])
			continue
		}
		e, err := decodeEntry([]byte(str))
		if err != nil {
			return nil, fmt.Errorf("decode entry %s: %w", keys[i], err)
		}
		entries = append(entries, e)
	}

	if len(expired) > 0 {
		s.rdb.SRem(ctx, s.indexKey(), expired...)
	}
	return entries, nil
}

func (s *redisStore) Delete(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}

	entryKeys := make([]string, len(keys))
	members := make([]any, len(keys))
	for i, k := range keys {
		entryKeys[i] = s.entryKey(k)
		members[i] = k
	}

	pipe := s.rdb.TxPipeline()
	pipe.Del(ctx, entryKeys...)
	pipe.SRem(ctx, s.indexKey(), members...)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("redis delete: %w", err)
	}
	return nil
}

func (s *redisStore) Clear(ctx context.Context) error {
	keys, err := s.rdb.SMembers(ctx, s.indexKey()).Result()
	if err != nil {
		return fmt.Errorf("redis index: %w", err)
	}

	if err := s.Delete(ctx, keys...); err != nil {
		return err
	}
	return s.rdb.Del(ctx, s.indexKey()).Err()
}
