package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"

	"contrapunto/internal/config"
)

// RedisCache wraps the Redis client with JSON marshalling.
type RedisCache struct {
	client *redis.Client
}

// NewRedisCache connects to Redis and verifies the connection.
func NewRedisCache(cfg *config.RedisConfig) (*RedisCache, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, err
	}

	return &RedisCache{client: client}, nil
}

// Set stores a JSON-marshalled value.
func (c *RedisCache) Set(ctx context.Context, key string, value any, expiration time.Duration) error {
	data, err := json.Marshal(value)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, key, data, expiration).Err()
}

// Get loads a value into dest. Returns redis.Nil if the key is absent.
func (c *RedisCache) Get(ctx context.Context, key string, dest any) error {
	data, err := c.client.Get(ctx, key).Bytes()
	if err != nil {
		return err
	}
	return json.Unmarshal(data, dest)
}

// Delete removes keys.
func (c *RedisCache) Delete(ctx context.Context, keys ...string) error {
	return c.client.Del(ctx, keys...).Err()
}

// Exists reports whether the key is present.
func (c *RedisCache) Exists(ctx context.Context, key string) (bool, error) {
	n, err := c.client.Exists(ctx, key).Result()
	return n > 0, err
}

// Close shuts down the connection.
func (c *RedisCache) Close() error {
	return c.client.Close()
}

// Client exposes the raw client.
func (c *RedisCache) Client() *redis.Client {
	return c.client
}

// IsMiss reports whether err is a cache miss.
func IsMiss(err error) bool {
	return err == redis.Nil
}

// Script cache keys. Generated news scripts are cached per search query so a
// repeated import does not hit the script backend again within the TTL.
const (
	ScriptCacheKeyPrefix = "script:"
	ScriptCacheTTL       = 30 * time.Minute
)

// ScriptCacheKey builds the cache key for a search query. The query is hashed
// because it is operator-supplied free text.
func ScriptCacheKey(query string) string {
	sum := sha256.Sum256([]byte(query))
	return ScriptCacheKeyPrefix + hex.EncodeToString(sum[:16])
}
