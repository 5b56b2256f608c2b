package cache

import (
	"context"
	"time"

	"recipe-share-go/pkg/logger"

	"github.com/redis/go-redis/v9"
)

// Redis backs the query cache with a shared Redis instance so invalidations
// take effect across replicas. Failures degrade to cache misses; the source
// of truth is always Postgres.
type Redis struct {
	client *redis.Client
	log    logger.Logger
}

func NewRedis(addr, password string, db int, log logger.Logger) (*Redis, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, err
	}

	return &Redis{client: client, log: log}, nil
}

func (c *Redis) Get(ctx context.Context, key string) ([]byte, bool) {
	value, err := c.client.Get(ctx, key).Bytes()
	if err != nil {
		if err != redis.Nil {
			c.log.Warn("cache: redis get failed", "key", key, "err", err)
		}
		return nil, false
	}
	return value, true
}

func (c *Redis) Set(ctx context.Context, key string, value []byte, ttl time.Duration) {
	if ttl <= 0 {
		c.Delete(ctx, key)
		return
	}
	if err := c.client.Set(ctx, key, value, ttl).Err(); err != nil {
		c.log.Warn("cache: redis set failed", "key", key, "err", err)
	}
}

func (c *Redis) Delete(ctx context.Context, keys ...string) {
	if len(keys) == 0 {
		return
	}
	if err := c.client.Del(ctx, keys...).Err(); err != nil {
		c.log.Warn("cache: redis delete failed", "err", err)
	}
}

func (c *Redis) Close() error {
	return c.client.Close()
}
