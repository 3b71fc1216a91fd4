package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"photocheck-server-go/internal/domain/compliance"
)

type redisCache struct {
	client *redis.Client
	ttl    time.Duration
	prefix string
}

// NewRedis constructs a redis-backed result cache.
func NewRedis(cfg Config) (Cache, error) {
	if cfg.Redis == nil {
		return nil, fmt.Errorf("redis configuration missing")
	}
	if cfg.Redis.Addr == "" {
		return nil, fmt.Errorf("redis address required")
	}

	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Username: cfg.Redis.Username,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})

	if err := client.Ping(context.Background()).Err(); err != nil {
		return nil, fmt.Errorf("redis ping failed: %w", err)
	}

	prefix := cfg.Redis.Prefix
	if prefix == "" {
		prefix = "photocheck:result:"
	}

	ttl := cfg.TTL
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	return &redisCache{
		client: client,
		ttl:    ttl,
		prefix: prefix,
	}, nil
}

func (c *redisCache) key(k string) string {
	return c.prefix + k
}

func (c *redisCache) Get(ctx context.Context, key string) (*compliance.Result, bool, error) {
	raw, err := c.client.Get(ctx, c.key(key)).Bytes()
	if err != nil {
		if err == redis.Nil {
			return nil, false, nil
		}
		return nil, false, err
	}
	var result compliance.Result
	if err := json.Unmarshal(raw, &result); err != nil {
		return nil, false, err
	}
	return &result, true, nil
}

func (c *redisCache) Set(ctx context.Context, key string, result *compliance.Result) error {
	data, err := json.Marshal(result)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, c.key(key), data, c.ttl).Err()
}

func (c *redisCache) Stats(ctx context.Context) (map[string]any, error) {
	size, err := c.client.DBSize(ctx).Result()
	if err != nil {
		return nil, err
	}
	return map[string]any{
		"driver": DriverRedis,
		"size":   size,
		"ttl":    c.ttl.String(),
	}, nil
}

func (c *redisCache) Close(context.Context) error {
	return c.client.Close()
}
