package events

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/redis/go-redis/v9"
)

const counterPrefix = "portal:counter:"

type redisCounterClient interface {
	Incr(ctx context.Context, key string) *redis.IntCmd
	Get(ctx context.Context, key string) *redis.StringCmd
}

// RedisCounter implements repository.Counter with INCR, so concurrent
// instances share one count.
type RedisCounter struct {
	rdb redisCounterClient
}

func NewRedisCounter(rdb *redis.Client) *RedisCounter {
	return &RedisCounter{rdb: rdb}
}

func (c *RedisCounter) Increment(ctx context.Context, name string) (int64, error) {
	n, err := c.rdb.Incr(ctx, counterPrefix+name).Result()
	if err != nil {
		return 0, fmt.Errorf("events: incrementing %s: %w", name, err)
	}
	return n, nil
}

// Get returns 0 for a key that does not exist yet.
func (c *RedisCounter) Get(ctx context.Context, name string) (int64, error) {
	raw, err := c.rdb.Get(ctx, counterPrefix+name).Result()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("events: reading %s: %w", name, err)
	}
	n, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("events: counter %s holds %q: %w", name, raw, err)
	}
	return n, nil
}
