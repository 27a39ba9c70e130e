// Package cache holds the rendered-view cache for the global index page.
//
// The cache is a plain key→bytes store with a short TTL. There is no
// write-path invalidation: a post created while an entry is fresh stays
// invisible until the entry expires. That staleness window is the
// intended tradeoff, so Clear exists for tests and operators, not for
// the write path.
package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// IndexKey builds the cache key for one page of the global index view.
// The cached payload is viewer-agnostic, so the page number is the only
// variable part.
func IndexKey(page int) string {
	return fmt.Sprintf("views:index:p%d", page)
}

// ViewCache stores rendered page bytes in Redis with a fixed TTL.
type ViewCache struct {
	rdb *redis.Client
	ttl time.Duration
}

func NewViewCache(rdb *redis.Client, ttl time.Duration) *ViewCache {
	return &ViewCache{rdb: rdb, ttl: ttl}
}

// Get returns the cached bytes for key and whether the entry was fresh.
// Redis failures degrade to a miss; the caller recomputes.
func (c *ViewCache) Get(ctx context.Context, key string) ([]byte, bool) {
	data, err := c.rdb.Get(ctx, key).Bytes()
	if err != nil {
		return nil, false
	}
	return data, true
}

// Set stores val under key for the configured TTL. Concurrent setters
// may overwrite each other; last writer wins and either value is a
// valid snapshot.
func (c *ViewCache) Set(ctx context.Context, key string, val []byte) {
	_ = c.rdb.Set(ctx, key, val, c.ttl).Err()
}

// Clear drops every cached index page.
func (c *ViewCache) Clear(ctx context.Context) error {
	iter := c.rdb.Scan(ctx, 0, "views:index:*", 0).Iterator()
	for iter.Next(ctx) {
		if err := c.rdb.Del(ctx, iter.Val()).Err(); err != nil {
			return err
		}
	}
	return iter.Err()
}

// TTL reports the configured freshness window.
func (c *ViewCache) TTL() time.Duration { return c.ttl }
