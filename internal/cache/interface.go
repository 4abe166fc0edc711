// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package cache provides expiring counters with an in-memory backend for
// single instances and a Redis backend for shared state.
package cache

import (
	"context"
	"time"
)

// Cache defines the interface for cache implementations.
// All implementations must be thread-safe.
type Cache interface {
	// Incr atomically increments the counter at key and returns the new
	// value. The TTL is applied when the counter is created, so the counter
	// resets once the window has passed.
	Incr(ctx context.Context, key string, ttl time.Duration) (int64, error)

	// Ping reports whether the backend is reachable.
	Ping(ctx context.Context) error

	// Close releases any resources held by the cache.
	Close() error
}

// Error represents an error type for cache operations.
type Error string

func (e Error) Error() string {
	return string(e)
}

// ErrCacheClosed indicates the cache has been closed.
const ErrCacheClosed Error = "cache closed"
