package session

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisStore keeps the stage in Redis under <prefix><session-id>. Each save
// refreshes the TTL so the key expires with an idle session.
type RedisStore struct {
	client *redis.Client
	key    string
	ttl    time.Duration
}

// NewRedisStore connects to redisURL and verifies the connection.
func NewRedisStore(ctx context.Context, redisURL, prefix, id string, ttl time.Duration) (*RedisStore, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}

	client := redis.NewClient(opts)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("connect to redis: %w", err)
	}

	return NewRedisStoreWithClient(client, prefix, id, ttl), nil
}

// NewRedisStoreWithClient creates a store from an existing client.
func NewRedisStoreWithClient(client *redis.Client, prefix, id string, ttl time.Duration) *RedisStore {
	if prefix == "" {
		prefix = "vault:stage:"
	}
	return &RedisStore{client: client, key: prefix + id, ttl: ttl}
}

// Key returns the redis key holding the stage.
func (s *RedisStore) Key() string {
	return s.key
}

// LoadStage implements Store.
func (s *RedisStore) LoadStage(ctx context.Context) (int, bool, error) {
	raw, err := s.client.Get(ctx, s.key).Result()
	if errors.Is(err, redis.Nil) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, fmt.Errorf("load stage: %w", err)
	}
	n, ok := ParseStage(raw)
	return n, ok, nil
}

// SaveStage implements Store.
func (s *RedisStore) SaveStage(ctx context.Context, stage int) error {
	if err := s.client.Set(ctx, s.key, strconv.Itoa(stage), s.ttl).Err(); err != nil {
		return fmt.Errorf("save stage: %w", err)
	}
	return nil
}

// Clear implements Store.
func (s *RedisStore) Clear(ctx context.Context) error {
	if err := s.client.Del(ctx, s.key).Err(); err != nil {
		return fmt.Errorf("clear stage: %w", err)
	}
	return nil
}

// Close closes the Redis connection.
func (s *RedisStore) Close() error {
	return s.client.Close()
}

// Ping checks if Redis is reachable.
func (s *RedisStore) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}
