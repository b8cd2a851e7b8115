// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// export.go provides a Valkey-backed cache for rendered certificate
// exports. Rasterizing a layout and wrapping it in a PDF is the most
// expensive request the public site serves, so finished exports are
// kept in Valkey keyed by certificate hash and format.
package cache

import (
	"context"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	// exportKeyPrefix is the Valkey key prefix for cached exports.
	exportKeyPrefix = "export:"

	// DefaultExportTTL is how long a rendered export stays cached.
	DefaultExportTTL = 1 * time.Hour
)

// ExportCache manages rendered certificate caching in Valkey.
type ExportCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewExportCache creates an export cache backed by the given Valkey client.
func NewExportCache(client *redis.Client, ttl time.Duration) *ExportCache {
	if ttl == 0 {
		ttl = DefaultExportTTL
	}
	return &ExportCache{client: client, ttl: ttl}
}

// ExportKey returns the cache key for one certificate export.
func ExportKey(hash, format string) string {
	return hash + ":" + format
}

// Get retrieves a cached export. Returns false on miss; cache errors
// degrade to a miss so a Valkey outage never blocks downloads.
func (ec *ExportCache) Get(ctx context.Context, key string) ([]byte, bool) {
	val, err := ec.client.Get(ctx, exportKeyPrefix+key).Bytes()
	if err == redis.Nil {
		return nil, false
	}
	if err != nil {
		slog.Warn("export cache get error", "key", key, "error", err)
		return nil, false
	}
	slog.Debug("export cache hit", "key", key)
	return val, true
}

// Set stores a rendered export with the configured TTL.
func (ec *ExportCache) Set(ctx context.Context, key string, data []byte) {
	if err := ec.client.Set(ctx, exportKeyPrefix+key, data, ec.ttl).Err(); err != nil {
		slog.Warn("export cache set error", "key", key, "error", err)
	}
}

// InvalidateCertificate removes every cached format for one certificate.
// Called when the underlying student record changes.
func (ec *ExportCache) InvalidateCertificate(ctx context.Context, hash string) {
	ec.deleteByPattern(ctx, exportKeyPrefix+hash+":*")
}

// InvalidateAll removes all cached exports. Used when a template is
// saved, since any certificate rendered from it could be affected.
func (ec *ExportCache) InvalidateAll(ctx context.Context) {
	ec.deleteByPattern(ctx, exportKeyPrefix+"*")
}

func (ec *ExportCache) deleteByPattern(ctx context.Context, pattern string) {
	var cursor uint64
	var deleted int
	for {
		keys, nextCursor, err := ec.client.Scan(ctx, cursor, pattern, 100).Result()
		if err != nil {
			slog.Warn("export cache scan error", "error", err)
			return
		}
		if len(keys) > 0 {
			if err := ec.client.Del(ctx, keys...).Err(); err != nil {
				slog.Warn("export cache bulk delete error", "error", err)
			}
			deleted += len(keys)
		}
		cursor = nextCursor
		if cursor == 0 {
			break
		}
	}
	if deleted > 0 {
		slog.Info("export cache cleared", "pattern", pattern, "deleted", deleted)
	}
}
