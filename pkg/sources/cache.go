package sources

import (
	"context"
	"crypto/sha256"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/biodata-harvester/internal/domain"
)

// Cache stores raw source payloads in Redis, keyed by a digest of the
// request identity, wrapped in a cached-at/expires-at envelope.
type Cache struct {
	redis      *redis.Client
	defaultTTL time.Duration
}

// NewCache connects to Redis and verifies the connection.
func NewCache(config domain.CacheConfig) (*Cache, error) {
	opts, err := redis.ParseURL(config.RedisURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse Redis URL: %w", err)
	}
	if config.PoolSize > 0 {
		opts.PoolSize = config.PoolSize
	}
	if config.PoolTimeout > 0 {
		opts.PoolTimeout = config.PoolTimeout
	}
	opts.MaxRetries = config.MaxRetries

	client := redis.NewClient(opts)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	ttl := config.DefaultTTL
	if ttl == 0 {
		ttl = 24 * time.Hour
	}
	return &Cache{redis: client, defaultTTL: ttl}, nil
}

type cachedPayload struct {
	Payload   *Payload  `json:"payload"`
	CachedAt  time.Time `json:"cached_at"`
	ExpiresAt time.Time `json:"expires_at"`
}

// Get retrieves a cached payload. Corrupted or expired entries are evicted
// and reported as misses.
func (c *Cache) Get(ctx context.Context, source domain.SourceName, params map[string]string) (*Payload, bool, error) {
	key := cacheKey(source, params)

	val, err := c.redis.Get(ctx, key).Result()
	if err == redis.Nil {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("failed to get cached payload: %w", err)
	}

	var cached cachedPayload
	if err := json.Unmarshal([]byte(val), &cached); err != nil {
		c.redis.Del(ctx, key)
		return nil, false, nil
	}
	if time.Now().After(cached.ExpiresAt) {
		c.redis.Del(ctx, key)
		return nil, false, nil
	}
	return cached.Payload, true, nil
}

// Set caches a payload; a zero ttl selects the default.
func (c *Cache) Set(ctx context.Context, source domain.SourceName, params map[string]string, payload *Payload, ttl time.Duration) error {
	if ttl == 0 {
		ttl = c.defaultTTL
	}

	cached := cachedPayload{
		Payload:   payload,
		CachedAt:  time.Now().UTC(),
		ExpiresAt: time.Now().UTC().Add(ttl),
	}
	data, err := json.Marshal(cached)
	if err != nil {
		return fmt.Errorf("failed to marshal cached payload: %w", err)
	}
	return c.redis.Set(ctx, cacheKey(source, params), data, ttl).Err()
}

// Invalidate removes the cached payload for one request identity.
func (c *Cache) Invalidate(ctx context.Context, source domain.SourceName, params map[string]string) error {
	return c.redis.Del(ctx, cacheKey(source, params)).Err()
}

// Close releases the Redis connection pool.
func (c *Cache) Close() error {
	return c.redis.Close()
}

// cacheKey digests the source name and sorted parameters so equivalent
// requests share one entry regardless of map iteration order.
func cacheKey(source domain.SourceName, params map[string]string) string {
	keys := make([]string, 0, len(params))
	for k := range params {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var identity strings.Builder
	identity.WriteString(string(source))
	for _, k := range keys {
		identity.WriteString("|")
		identity.WriteString(k)
		identity.WriteString("=")
		identity.WriteString(params[k])
	}

	digest := sha256.Sum256([]byte(identity.String()))
	return fmt.Sprintf("bioharvest:source:%x", digest)
}
