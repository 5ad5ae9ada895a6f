package redis

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

// KV is a Redis-backed implementation of app.KV. Useful when several client
// instances on one machine (kiosk deployments) must share the dedup set.
type KV struct {
	client *redis.Client
	ttl    time.Duration
}

// NewKV wraps an existing client. A zero ttl means keys never expire, which
// is what the dedup set wants; a positive ttl suits scratch state.
func NewKV(client *redis.Client, ttl time.Duration) *KV {
	return &KV{client: client, ttl: ttl}
}

func (s *KV) Get(ctx context.Context, key string) (string, error) {
	value, err := s.client.Get(ctx, key).Result()
	if errors.Is(err, redis.Nil) {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	return value, nil
}

func (s *KV) Set(ctx context.Context, key, value string) error {
	return s.client.Set(ctx, key, value, s.ttl).Err()
}
