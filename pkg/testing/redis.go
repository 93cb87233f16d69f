package testing

import (
	"context"
	"testing"

	"github.com/go-redis/redis/v8"
	"github.com/stretchr/testify/require"
)

// GetRedisClient connects to the redis at addr and fails the test if it
// does not answer a ping. The client is closed on test cleanup.
func GetRedisClient(ctx context.Context, t *testing.T, addr, password string) *redis.Client {
	t.Helper()

	t.Logf("using redis addr: [%s]", addr)
	rdb := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       0, // use default DB
	})
	t.Cleanup(func() {
		if err := rdb.Close(); err != nil {
			t.Logf("close redis client: %s", err)
		}
	})

	pingRes, err := rdb.Ping(ctx).Result()
	require.NoError(t, err)
	t.Logf("redis ping res: %s", pingRes)

	return rdb
}
