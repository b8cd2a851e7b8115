// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package cache

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
)

// testValkeyClient returns a Redis client for tests.
// Skips if Valkey is unavailable.
func testValkeyClient(t *testing.T) *redis.Client {
	t.Helper()

	host := envOr("VALKEY_HOST", "localhost")
	port := envOr("VALKEY_PORT", "6379")
	password := os.Getenv("VALKEY_PASSWORD")

	client := redis.NewClient(&redis.Options{
		Addr:     host + ":" + port,
		Password: password,
		DB:       15, // Use DB 15 for tests.
	})

	ctx := context.Background()
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		t.Skipf("skipping integration test: Valkey not reachable: %v", err)
	}

	t.Cleanup(func() {
		keys, _ := client.Keys(ctx, "export:*").Result()
		if len(keys) > 0 {
			client.Del(ctx, keys...)
		}
		client.Close()
	})

	return client
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func TestExportCacheSetGet(t *testing.T) {
	client := testValkeyClient(t)
	ec := NewExportCache(client, time.Minute)
	ctx := context.Background()

	key := ExportKey("abc123", "pdf")
	if _, ok := ec.Get(ctx, key); ok {
		t.Fatal("unexpected hit on empty cache")
	}

	ec.Set(ctx, key, []byte("%PDF-1.4 test"))
	data, ok := ec.Get(ctx, key)
	if !ok {
		t.Fatal("miss after set")
	}
	if string(data) != "%PDF-1.4 test" {
		t.Errorf("cached data = %q", data)
	}
}

func TestExportCacheInvalidateCertificate(t *testing.T) {
	client := testValkeyClient(t)
	ec := NewExportCache(client, time.Minute)
	ctx := context.Background()

	ec.Set(ctx, ExportKey("hash-a", "pdf"), []byte("a-pdf"))
	ec.Set(ctx, ExportKey("hash-a", "png"), []byte("a-png"))
	ec.Set(ctx, ExportKey("hash-b", "pdf"), []byte("b-pdf"))

	ec.InvalidateCertificate(ctx, "hash-a")

	if _, ok := ec.Get(ctx, ExportKey("hash-a", "pdf")); ok {
		t.Error("hash-a pdf survived invalidation")
	}
	if _, ok := ec.Get(ctx, ExportKey("hash-a", "png")); ok {
		t.Error("hash-a png survived invalidation")
	}
	if _, ok := ec.Get(ctx, ExportKey("hash-b", "pdf")); !ok {
		t.Error("hash-b pdf invalidated by mistake")
	}
}

func TestExportCacheInvalidateAll(t *testing.T) {
	client := testValkeyClient(t)
	ec := NewExportCache(client, time.Minute)
	ctx := context.Background()

	ec.Set(ctx, ExportKey("hash-c", "pdf"), []byte("c"))
	ec.Set(ctx, ExportKey("hash-d", "png"), []byte("d"))

	ec.InvalidateAll(ctx)

	if _, ok := ec.Get(ctx, ExportKey("hash-c", "pdf")); ok {
		t.Error("export survived full invalidation")
	}
	if _, ok := ec.Get(ctx, ExportKey("hash-d", "png")); ok {
		t.Error("export survived full invalidation")
	}
}
