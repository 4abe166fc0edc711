package cache

import (
	"context"
	"sync"
	"testing"
	"time"
)

func newTestMemoryCache(t *testing.T) *MemoryCache {
	t.Helper()
	c := NewMemoryCache(MemoryCacheOptions{DefaultTTL: time.Hour})
	t.Cleanup(func() { _ = c.Close() })
	return c
}

func (c *MemoryCache) rawValue(key string) (string, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	entry, ok := c.data[key]
	if !ok {
		return "", false
	}
	return string(entry.value), true
}

func TestMemoryCache_Incr(t *testing.T) {
	cache := newTestMemoryCache(t)
	ctx := context.Background()

	now := time.Now()
	cache.now = func() time.Time { return now }

	for want := int64(1); want <= 3; want++ {
		got, err := cache.Incr(ctx, "hits", time.Minute)
		if err != nil {
			t.Fatalf("Incr: %v", err)
		}
		if got != want {
			t.Errorf("Incr = %d, want %d", got, want)
		}
	}

	// The window does not slide with later increments.
	now = now.Add(61 * time.Second)
	got, _ := cache.Incr(ctx, "hits", time.Minute)
	if got != 1 {
		t.Errorf("Incr after window = %d, want 1", got)
	}

	cache.data["text"] = &memoryCacheEntry{value: []byte("abc"), expiresAt: now.Add(time.Hour)}
	if _, err := cache.Incr(ctx, "text", 0); err == nil {
		t.Error("Incr on non-integer value should fail")
	}
}

func TestMemoryCache_IncrDefaultTTL(t *testing.T) {
	cache := newTestMemoryCache(t)
	ctx := context.Background()

	now := time.Now()
	cache.now = func() time.Time { return now }

	_, _ = cache.Incr(ctx, "k", 0)
	now = now.Add(59 * time.Minute)
	if got, _ := cache.Incr(ctx, "k", 0); got != 2 {
		t.Errorf("Incr within default TTL = %d, want 2", got)
	}
}

func TestMemoryCache_IncrConcurrent(t *testing.T) {
	cache := newTestMemoryCache(t)
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _ = cache.Incr(ctx, "n", time.Minute)
		}()
	}
	wg.Wait()

	if v, _ := cache.rawValue("n"); v != "50" {
		t.Errorf("counter = %s, want 50", v)
	}
}

func TestMemoryCache_RemoveExpired(t *testing.T) {
	cache := newTestMemoryCache(t)
	ctx := context.Background()

	now := time.Now()
	cache.now = func() time.Time { return now }
	_, _ = cache.Incr(ctx, "short", time.Second)
	_, _ = cache.Incr(ctx, "long", time.Hour)

	now = now.Add(time.Minute)
	cache.removeExpired()

	if _, ok := cache.rawValue("short"); ok {
		t.Error("expired counter not removed")
	}
	if _, ok := cache.rawValue("long"); !ok {
		t.Error("live counter removed")
	}
}

func TestMemoryCache_Closed(t *testing.T) {
	cache := NewMemoryCache(MemoryCacheOptions{})
	ctx := context.Background()

	if err := cache.Ping(ctx); err != nil {
		t.Errorf("Ping on open cache = %v", err)
	}

	_ = cache.Close()
	_ = cache.Close()

	if err := cache.Ping(ctx); err != ErrCacheClosed {
		t.Errorf("Ping after Close = %v, want ErrCacheClosed", err)
	}
	if _, err := cache.Incr(ctx, "k", 0); err != ErrCacheClosed {
		t.Errorf("Incr after Close = %v, want ErrCacheClosed", err)
	}
}

func TestNew_FallsBackToMemory(t *testing.T) {
	c := New(Config{RedisURL: "redis://127.0.0.1:1/0"})
	defer func() { _ = c.Close() }()

	if _, ok := c.(*MemoryCache); !ok {
		t.Errorf("New with unreachable redis = %T, want *MemoryCache", c)
	}
}
