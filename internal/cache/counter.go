// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package cache

import (
	"context"
	"strconv"
	"time"
)

// Counter tracks windowed event counts on top of a Cacher, so a Redis
// deployment shares counts across workers while a single binary gets the
// in-memory backend for free.
type Counter struct {
	cache Cacher
}

// NewCounter returns a Counter on the given backend.
func NewCounter(c Cacher) *Counter {
	return &Counter{cache: c}
}

// Incr adds one to the counter at key and returns the new value. The
// window starts at the first increment; increments are read-modify-write,
// so concurrent callers may undercount slightly, which is acceptable for
// throttling decisions.
func (c *Counter) Incr(ctx context.Context, key string, window time.Duration) (int64, error) {
	n, err := c.Get(ctx, key)
	if err != nil {
		return 0, err
	}
	n++
	if err := c.cache.Set(ctx, key, []byte(strconv.FormatInt(n, 10)), window); err != nil {
		return 0, err
	}
	return n, nil
}

// Get returns the current count at key, 0 when absent.
func (c *Counter) Get(ctx context.Context, key string) (int64, error) {
	data, err := c.cache.Get(ctx, key)
	if err == ErrCacheMiss {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	n, err := strconv.ParseInt(string(data), 10, 64)
	if err != nil {
		return 0, nil
	}
	return n, nil
}

// Reset clears the counter at key.
func (c *Counter) Reset(ctx context.Context, key string) error {
	return c.cache.Delete(ctx, key)
}
