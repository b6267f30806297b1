package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// redisClient is the subset of redis.Cmdable the store uses.
type redisClient interface {
	Get(ctx context.Context, key string) *redis.StringCmd
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.StatusCmd
}

// RedisStore keeps the record under a single redis key.
type RedisStore struct {
	rdb redisClient
	key string
	ttl time.Duration
}

// RedisOption configures a RedisStore.
type RedisOption func(*RedisStore)

// WithKey overrides DefaultKey.
func WithKey(key string) RedisOption {
	return func(s *RedisStore) {
		if key != "" {
			s.key = key
		}
	}
}

// WithTTL expires the saved record after d. Zero keeps it forever.
func WithTTL(d time.Duration) RedisOption {
	return func(s *RedisStore) {
		s.ttl = d
	}
}

// NewRedisStore creates a store on top of an existing client.
func NewRedisStore(rdb *redis.Client, opts ...RedisOption) *RedisStore {
	return newRedisStore(rdb, opts...)
}

func newRedisStore(rdb redisClient, opts ...RedisOption) *RedisStore {
	s := &RedisStore{rdb: rdb, key: DefaultKey}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Key returns the redis key the record is stored under.
func (s *RedisStore) Key() string {
	return s.key
}

// Load fetches the record. A missing key yields ErrNotFound.
func (s *RedisStore) Load(ctx context.Context) (Record, error) {
	data, err := s.rdb.Get(ctx, s.key).Bytes()
	if errors.Is(err, redis.Nil) {
		return Record{}, ErrNotFound
	}
	if err != nil {
		return Record{}, fmt.Errorf("redis get %s: %w", s.key, err)
	}
	rec, err := UnmarshalRecord(data)
	if err != nil {
		return Record{}, fmt.Errorf("redis key %s: %w", s.key, err)
	}
	return rec, nil
}

// Save stores the record.
func (s *RedisStore) Save(ctx context.Context, rec Record) error {
	data, err := MarshalRecord(rec)
	if err != nil {
		return err
	}
	if err := s.rdb.Set(ctx, s.key, data, s.ttl).Err(); err != nil {
		return fmt.Errorf("redis set %s: %w", s.key, err)
	}
	return nil
}
