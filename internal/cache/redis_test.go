package cache

import (
	"context"
	"os"
	"testing"
	"time"
)

// skipIfNoRedis skips the test if Redis is not configured.
func skipIfNoRedis(t *testing.T) string {
	url := os.Getenv("COMMIT_TEST_REDIS_URL")
	if url == "" {
		t.Skip("Skipping Redis tests: COMMIT_TEST_REDIS_URL not set")
	}
	return url
}

func TestRedisCache_Ping(t *testing.T) {
	url := skipIfNoRedis(t)

	opts := DefaultRedisCacheOptions()
	opts.URL = url
	cache, err := NewRedisCache(opts)
	if err != nil {
		t.Fatalf("failed to create Redis cache: %v", err)
	}

	ctx := context.Background()
	if err := cache.Ping(ctx); err != nil {
		t.Errorf("Ping = %v", err)
	}
	_ = cache.Close()
	if err := cache.Ping(ctx); err != ErrCacheClosed {
		t.Errorf("Ping after Close = %v, want ErrCacheClosed", err)
	}
}

func TestRedisCache_Incr(t *testing.T) {
	url := skipIfNoRedis(t)

	opts := DefaultRedisCacheOptions()
	opts.URL = url
	opts.Prefix = "commit-test:"
	cache, err := NewRedisCache(opts)
	if err != nil {
		t.Fatalf("failed to create Redis cache: %v", err)
	}
	defer func() { _ = cache.Close() }()

	ctx := context.Background()
	_ = cache.client.Del(ctx, "commit-test:counter").Err()

	for want := int64(1); want <= 3; want++ {
		got, err := cache.Incr(ctx, "counter", time.Minute)
		if err != nil {
			t.Fatalf("Incr: %v", err)
		}
		if got != want {
			t.Errorf("Incr = %d, want %d", got, want)
		}
	}

	ttl, err := cache.client.TTL(ctx, "commit-test:counter").Result()
	if err != nil || ttl <= 0 {
		t.Errorf("TTL = %v, %v; want positive", ttl, err)
	}
}
