package momo

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

const tokenKey = "momo:access_token"

// RedisTokenCache shares the provider token across instances with an
// explicit TTL, instead of holding it in package-level state.
type RedisTokenCache struct {
	rdb *redis.Client
}

func NewRedisTokenCache(rdb *redis.Client) *RedisTokenCache {
	return &RedisTokenCache{rdb: rdb}
}

func (c *RedisTokenCache) Get(ctx context.Context) (string, error) {
	v, err := c.rdb.Get(ctx, tokenKey).Result()
	if err == redis.Nil {
		return "", nil
	}
	return v, err
}

func (c *RedisTokenCache) Set(ctx context.Context, token string, ttl time.Duration) error {
	return c.rdb.Set(ctx, tokenKey, token, ttl).Err()
}
