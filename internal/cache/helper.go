package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"
)

const (
	tagListKey       = "tags:all"
	articleKeyPrefix = "article:%s"
	TagListTTL       = 5 * time.Minute
	ArticleTTL       = 2 * time.Minute
)

// TagListKey returns the cache key for the full tag list.
func TagListKey() string {
	return tagListKey
}

// ArticleKey returns the cache key for an article by slug.
func ArticleKey(slug string) string {
	return fmt.Sprintf(articleKeyPrefix, slug)
}

// Invalidate removes a key. Best-effort; no-op without a client.
func Invalidate(ctx context.Context, key string) {
	if client != nil {
		client.Del(ctx, key)
	}
}

// InvalidateTagList drops the cached tag list.
func InvalidateTagList(ctx context.Context) {
	Invalidate(ctx, tagListKey)
}

// InvalidateArticle drops the cached article for slug.
func InvalidateArticle(ctx context.Context, slug string) {
	Invalidate(ctx, ArticleKey(slug))
}

// GetJSON attempts to get the key from Redis and unmarshal into dest.
// Returns (true, nil) if found and unmarshaled, (false, nil) if not found.
func GetJSON(ctx context.Context, key string, dest any) (bool, error) {
	if client == nil {
		return false, nil
	}
	s, err := client.Get(ctx, key).Result()
	if err != nil {
		return false, nil // treat redis.Nil and transport errors alike: cache miss
	}
	if err := json.Unmarshal([]byte(s), dest); err != nil {
		return false, err
	}
	return true, nil
}

// SetJSON marshals v and sets the key with TTL.
func SetJSON(ctx context.Context, key string, v any, ttl time.Duration) error {
	if client == nil {
		return nil
	}
	b, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return client.Set(ctx, key, b, ttl).Err()
}

// Aside tries Redis first, on miss it calls fetch (which should populate dest),
// then stores the result in Redis with ttl. fetch must write into dest.
func Aside(ctx context.Context, key string, dest any, ttl time.Duration, fetch func() error) error {
	found, err := GetJSON(ctx, key, dest)
	if err != nil {
		return err
	}
	if found {
		return nil
	}

	if err := fetch(); err != nil {
		return err
	}

	// Store into cache (best-effort)
	_ = SetJSON(ctx, key, dest, ttl)
	return nil
}
