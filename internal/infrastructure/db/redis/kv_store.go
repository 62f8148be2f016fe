package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/talentloop/portal/internal/core/domain"
)

const (
	keyPrefix        = "portal:"
	defaultRetention = 7 * 24 * time.Hour
)

// KVStore keeps session keys in Redis.
// Key format: portal:<namespace>:<key>
//
// Every write refreshes a retention TTL so namespaces of visitors who never
// come back are eventually dropped. Session expiry itself is decided by the
// session store, not by this TTL.
type KVStore struct {
	client    *redis.Client
	retention time.Duration
}

// NewKVStore wraps the given Redis client. A non-positive retention uses
// defaultRetention.
func NewKVStore(client *redis.Client, retention time.Duration) *KVStore {
	if retention <= 0 {
		retention = defaultRetention
	}
	return &KVStore{client: client, retention: retention}
}

func (s *KVStore) Get(ctx context.Context, key string) (string, error) {
	v, err := s.client.Get(ctx, keyPrefix+key).Result()
	if errors.Is(err, redis.Nil) {
		return "", domain.ErrKeyNotFound
	}
	if err != nil {
		return "", fmt.Errorf("redis get: %w", err)
	}
	return v, nil
}

func (s *KVStore) Set(ctx context.Context, key, value string) error {
	if err := s.client.Set(ctx, keyPrefix+key, value, s.retention).Err(); err != nil {
		return fmt.Errorf("redis set: %w", err)
	}
	return nil
}

func (s *KVStore) Delete(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	full := make([]string, len(keys))
	for i, k := range keys {
		full[i] = keyPrefix + k
	}
	if err := s.client.Del(ctx, full...).Err(); err != nil {
		return fmt.Errorf("redis del: %w", err)
	}
	return nil
}

// Ping reports whether Redis is reachable.
func (s *KVStore) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}
