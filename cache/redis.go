// Package cache provides the response cache backends used by the public
// course endpoints.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/chenyahui/gin-cache/persist"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const keyPrefix = "course-api:cache:"

// RedisStore implements persist.CacheStore on top of go-redis v9 so
// several API instances can share cached responses.
type RedisStore struct {
	client *redis.Client
}

var _ persist.CacheStore = (*RedisStore)(nil)

func NewRedisStore(client *redis.Client) *RedisStore {
	return &RedisStore{client: client}
}

func (s *RedisStore) Set(key string, value any, expire time.Duration) error {
	b, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to encode cache entry, %w", err)
	}

	return s.client.Set(context.Background(), keyPrefix+key, b, expire).Err()
}

func (s *RedisStore) Get(key string, value any) error {
	b, err := s.client.Get(context.Background(), keyPrefix+key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return persist.ErrCacheMiss
		}

		return err
	}

	return json.Unmarshal(b, value)
}

func (s *RedisStore) Delete(key string) error {
	return s.client.Del(context.Background(), keyPrefix+key).Err()
}

// Invalidate drops every cached response. Course writes call it so the
// public listing doesn't serve stale content until the TTL runs out.
func (s *RedisStore) Invalidate(ctx context.Context) error {
	iter := s.client.Scan(ctx, 0, keyPrefix+"*", 100).Iterator()

	var keys []string
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}

	if err := iter.Err(); err != nil {
		return err
	}

	if len(keys) == 0 {
		return nil
	}

	return s.client.Del(ctx, keys...).Err()
}

// Store is a cache backend that can also be flushed
type Store interface {
	persist.CacheStore
	Invalidate(ctx context.Context) error
}

// New connects to Redis at addr. An empty addr gives an in-process
// store instead, which is fine for a single instance.
func New(ctx context.Context, addr, password string, ttl time.Duration) (Store, error) {
	if addr == "" {
		zap.L().Debug("No redis address configured, using in-memory response cache")
		return NewMemoryStore(ttl), nil
	}

	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
	})

	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to connect to redis at %v, %w", addr, err)
	}

	return NewRedisStore(client), nil
}
