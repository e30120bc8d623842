// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// content.go provides a Valkey-backed cache for public content listings.
// Every listing request otherwise loads the whole content document from
// the remote repository, so even a short TTL removes most of that
// round-trip traffic. Mutations invalidate the whole prefix; writes
// always load fresh, so the cache never participates in the
// read-modify-write cycle.
package cache

import (
	"context"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	// listKeyPrefix namespaces listing keys in Valkey.
	listKeyPrefix = "content:"

	// DefaultListTTL is how long a cached listing stays valid.
	DefaultListTTL = 1 * time.Minute
)

// ContentCache caches serialized listing responses in Valkey.
type ContentCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewContentCache creates a listing cache backed by the given Valkey client.
func NewContentCache(client *redis.Client, ttl time.Duration) *ContentCache {
	if ttl == 0 {
		ttl = DefaultListTTL
	}
	return &ContentCache{client: client, ttl: ttl}
}

// ListKey builds the cache key for a listing query.
func ListKey(section, status string) string {
	return section + ":" + status
}

// Get retrieves a cached listing payload. Returns false on miss.
func (cc *ContentCache) Get(ctx context.Context, key string) ([]byte, bool) {
	val, err := cc.client.Get(ctx, listKeyPrefix+key).Bytes()
	if err == redis.Nil {
		return nil, false
	}
	if err != nil {
		slog.Warn("content cache get error", "key", key, "error", err)
		return nil, false
	}
	return val, true
}

// Set stores a listing payload with the configured TTL.
func (cc *ContentCache) Set(ctx context.Context, key string, payload []byte) {
	if err := cc.client.Set(ctx, listKeyPrefix+key, payload, cc.ttl).Err(); err != nil {
		slog.Warn("content cache set error", "key", key, "error", err)
	}
}

// InvalidateAll removes every cached listing by scanning for the prefix.
// Called after any content mutation, since an item can appear in several
// aggregated listings at once.
func (cc *ContentCache) InvalidateAll(ctx context.Context) {
	var cursor uint64
	var deleted int
	for {
		keys, nextCursor, err := cc.client.Scan(ctx, cursor, listKeyPrefix+"*", 100).Result()
		if err != nil {
			slog.Warn("content cache scan error", "error", err)
			return
		}
		if len(keys) > 0 {
			if err := cc.client.Del(ctx, keys...).Err(); err != nil {
				slog.Warn("content cache bulk delete error", "error", err)
			}
			deleted += len(keys)
		}
		cursor = nextCursor
		if cursor == 0 {
			break
		}
	}
	if deleted > 0 {
		slog.Debug("content cache invalidated", "deleted", deleted)
	}
}
