package redisx

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

// Cache: subset operasi redis yang dipakai service (dedup, status cache,
// idempotency). Semua operasi best-effort; error redis tidak menggagalkan
// request.
type Cache interface {
	Get(ctx context.Context, key string) (string, bool)
	Set(ctx context.Context, key, value string, ttl time.Duration)
	Exists(ctx context.Context, key string) bool
}

type redisCache struct {
	rdb *redis.Client
}

func NewCache(rdb *redis.Client) Cache { return redisCache{rdb: rdb} }

func (c redisCache) Get(ctx context.Context, key string) (string, bool) {
	v, err := c.rdb.Get(ctx, key).Result()
	if err != nil {
		return "", false
	}
	return v, true
}

func (c redisCache) Set(ctx context.Context, key, value string, ttl time.Duration) {
	_ = c.rdb.Set(ctx, key, value, ttl).Err()
}

func (c redisCache) Exists(ctx context.Context, key string) bool {
	n, err := c.rdb.Exists(ctx, key).Result()
	return err == nil && n > 0
}
