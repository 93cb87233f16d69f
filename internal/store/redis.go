package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/go-redis/redis/v8"
)

// Redis keeps records as JSON strings under prefix+key.
// No TTL is set on the keys: expiry stays with the record.
type Redis[V any] struct {
	redisClient *redis.Client
	keyPrefix   string
}

func NewRedis[V any](redisClient *redis.Client, keyPrefix string) *Redis[V] {
	return &Redis[V]{
		redisClient: redisClient,
		keyPrefix:   keyPrefix,
	}
}

func (r *Redis[V]) Put(ctx context.Context, key string, value V) error {
	valueBytes, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("marshal record %s: %w", key, err)
	}

	if err := r.redisClient.Set(ctx, r.keyPrefix+key, string(valueBytes), 0).Err(); err != nil {
		return fmt.Errorf("redis set %s: %w", key, err)
	}
	return nil
}

func (r *Redis[V]) Get(ctx context.Context, key string) (V, bool, error) {
	var value V

	cmd := r.redisClient.Get(ctx, r.keyPrefix+key)
	if err := cmd.Err(); err != nil {
		if errors.Is(err, redis.Nil) {
			return value, false, nil
		}
		return value, false, fmt.Errorf("redis get %s: %w", key, err)
	}

	if err := json.Unmarshal([]byte(cmd.Val()), &value); err != nil {
		return value, false, fmt.Errorf("unmarshal record %s: %w", key, err)
	}
	return value, true, nil
}

// Take relies on GETDEL (redis >= 6.2) for atomicity.
func (r *Redis[V]) Take(ctx context.Context, key string) (V, bool, error) {
	var value V

	cmd := r.redisClient.GetDel(ctx, r.keyPrefix+key)
	if err := cmd.Err(); err != nil {
		if errors.Is(err, redis.Nil) {
			return value, false, nil
		}
		return value, false, fmt.Errorf("redis getdel %s: %w", key, err)
	}

	if err := json.Unmarshal([]byte(cmd.Val()), &value); err != nil {
		return value, false, fmt.Errorf("unmarshal taken record %s: %w", key, err)
	}
	return value, true, nil
}

func (r *Redis[V]) Delete(ctx context.Context, key string) error {
	if err := r.redisClient.Del(ctx, r.keyPrefix+key).Err(); err != nil {
		return fmt.Errorf("redis del %s: %w", key, err)
	}
	return nil
}
