// Package cache provides the Redis-backed translation cache.
//
// Translations are expensive and chapter content changes rarely, so
// results are cached under a key derived from the chapter and a content
// hash. The cache is best-effort: any Redis failure is logged and
// treated as a miss, never surfaced to the request.
package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/robolearn/robolearn/internal/log"
)

// DefaultTTL is used when no TTL is configured. Translations survive a
// week; re-indexing or content edits change the key anyway.
const DefaultTTL = 7 * 24 * time.Hour

// TranslationCache stores finished translations keyed by chapter and
// content hash.
type TranslationCache struct {
	client *redis.Client
	ttl    time.Duration
	logger log.Logger
}

// NewTranslation connects to Redis at redisURL (redis:// form). A zero
// ttl selects DefaultTTL.
func NewTranslation(ctx context.Context, redisURL string, ttl time.Duration, logger log.Logger) (*TranslationCache, error) {
	if redisURL == "" {
		return nil, fmt.Errorf("redis url is required")
	}
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	if logger == nil {
		logger = log.NewNop()
	}

	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("parsing redis url: %w", err)
	}

	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("pinging redis: %w", err)
	}

	return &TranslationCache{client: client, ttl: ttl, logger: logger}, nil
}

// Key builds the cache key for a chapter's content.
func Key(chapterID, content string) string {
	sum := sha256.Sum256([]byte(content))
	return fmt.Sprintf("translation:%s:%s", chapterID, hex.EncodeToString(sum[:]))
}

// Get returns the cached translation and whether it was present.
func (c *TranslationCache) Get(ctx context.Context, chapterID, content string) (string, bool) {
	key := Key(chapterID, content)
	val, err := c.client.Get(ctx, key).Result()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			c.logger.Warn("translation cache read failed", "key", key, "error", err)
		}
		return "", false
	}
	return val, true
}

// Put stores a translation. Failures are logged and ignored.
func (c *TranslationCache) Put(ctx context.Context, chapterID, content, translated string) {
	key := Key(chapterID, content)
	if err := c.client.Set(ctx, key, translated, c.ttl).Err(); err != nil {
		c.logger.Warn("translation cache write failed", "key", key, "error", err)
	}
}

// Close releases the Redis connection.
func (c *TranslationCache) Close() error {
	return c.client.Close()
}
