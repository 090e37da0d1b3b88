package mpesa

import (
	"context"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// TokenCache stores the Daraja OAuth token between requests
type TokenCache interface {
	Get(ctx context.Context) (string, bool)
	Set(ctx context.Context, token string, ttl time.Duration)
}

// RedisTokenCache shares the token across instances. Read and write failures
// degrade to a cache miss; the adapter just fetches a fresh token.
type RedisTokenCache struct {
	client *redis.Client
	key    string
}

// NewRedisTokenCache creates a Redis-backed token cache
func NewRedisTokenCache(client *redis.Client) *RedisTokenCache {
	return &RedisTokenCache{client: client, key: "mpesa:oauth_token"}
}

// Get implements TokenCache
func (c *RedisTokenCache) Get(ctx context.Context) (string, bool) {
	token, err := c.client.Get(ctx, c.key).Result()
	if err != nil || token == "" {
		return "", false
	}
	return token, true
}

// Set implements TokenCache
func (c *RedisTokenCache) Set(ctx context.Context, token string, ttl time.Duration) {
	_ = c.client.Set(ctx, c.key, token, ttl).Err()
}

// MemoryTokenCache is a process-local fallback used when Redis is not
// configured and in tests.
type MemoryTokenCache struct {
	mu        sync.Mutex
	token     string
	expiresAt time.Time
}

// NewMemoryTokenCache creates an in-process token cache
func NewMemoryTokenCache() *MemoryTokenCache {
	return &MemoryTokenCache{}
}

// Get implements TokenCache
func (c *MemoryTokenCache) Get(ctx context.Context) (string, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.token == "" || time.Now().After(c.expiresAt) {
		return "", false
	}
	return c.token, true
}

// Set implements TokenCache
func (c *MemoryTokenCache) Set(ctx context.Context, token string, ttl time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.token = token
	c.expiresAt = time.Now().Add(ttl)
}
