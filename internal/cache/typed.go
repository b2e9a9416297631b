// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"
)

// TypedCache wraps a Cacher with JSON encoding for one value type.
type TypedCache[T any] struct {
	cache Cacher
	ttl   time.Duration
}

// NewTypedCache returns a TypedCache writing entries with the given
// default ttl.
func NewTypedCache[T any](c Cacher, ttl time.Duration) *TypedCache[T] {
	return &TypedCache[T]{cache: c, ttl: ttl}
}

// Get returns the decoded value for key or ErrCacheMiss.
func (t *TypedCache[T]) Get(ctx context.Context, key string) (T, error) {
	var zero T
	data, err := t.cache.Get(ctx, key)
	if err != nil {
		return zero, err
	}
	var value T
	if err := json.Unmarshal(data, &value); err != nil {
		// A decode failure means the stored shape changed; treat as miss.
		_ = t.cache.Delete(ctx, key)
		return zero, ErrCacheMiss
	}
	return value, nil
}

// Set encodes and stores value under key with the default ttl.
func (t *TypedCache[T]) Set(ctx context.Context, key string, value T) error {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("encoding cache value: %w", err)
	}
	return t.cache.Set(ctx, key, data, t.ttl)
}

// Delete removes key.
func (t *TypedCache[T]) Delete(ctx context.Context, key string) error {
	return t.cache.Delete(ctx, key)
}

// GetOrSet returns the cached value for key, computing and storing it on
// a miss. Concurrent callers may compute independently; the last write
// wins, which is fine for idempotent loads.
func (t *TypedCache[T]) GetOrSet(ctx context.Context, key string, load func(ctx context.Context) (T, error)) (T, error) {
	value, err := t.Get(ctx, key)
	if err == nil {
		return value, nil
	}
	if err != ErrCacheMiss {
		var zero T
		return zero, err
	}
	value, err = load(ctx)
	if err != nil {
		var zero T
		return zero, err
	}
	if err := t.Set(ctx, key, value); err != nil {
		// Caching is best-effort; serve the loaded value regardless.
		return value, nil
	}
	return value, nil
}
