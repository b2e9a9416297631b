// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package cache provides a byte-oriented cache abstraction with in-memory
// and Redis backends, a typed generic wrapper, and a manager that owns the
// application's named caches.
package cache

import (
	"context"
	"errors"
	"time"
)

// Cache errors.
var (
	// ErrCacheMiss is returned when a key is not present or expired.
	ErrCacheMiss = errors.New("cache: miss")

	// ErrCacheClosed is returned after Close has been called.
	ErrCacheClosed = errors.New("cache: closed")
)

// Cacher stores opaque byte values with per-entry TTLs. Implementations
// must be safe for concurrent use.
type Cacher interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
	Clear(ctx context.Context) error
	Has(ctx context.Context, key string) bool
	Stats() Stats
	Close() error
}

// Stats reports cache effectiveness counters.
type Stats struct {
	Hits    int64 `json:"hits"`
	Misses  int64 `json:"misses"`
	Sets    int64 `json:"sets"`
	Deletes int64 `json:"deletes"`
	Entries int64 `json:"entries"`
}

// HitRate returns hits/(hits+misses), 0 when empty.
func (s Stats) HitRate() float64 {
	total := s.Hits + s.Misses
	if total == 0 {
		return 0
	}
	return float64(s.Hits) / float64(total)
}
