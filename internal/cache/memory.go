// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package cache

import (
	"context"
	"sync"
	"sync/atomic"
	"time"
)

type memoryEntry struct {
	value     []byte
	expiresAt time.Time
}

func (e *memoryEntry) expired(now time.Time) bool {
	return !e.expiresAt.IsZero() && now.After(e.expiresAt)
}

// MemoryCache is an in-process Cacher backed by a sync.Map with a
// background sweep of expired entries.
type MemoryCache struct {
	entries  sync.Map
	maxSize  int64
	count    int64
	hits     int64
	misses   int64
	sets     int64
	deletes  int64
	closed   atomic.Bool
	stopOnce sync.Once
	stop     chan struct{}
}

// NewMemoryCache returns a MemoryCache holding at most maxSize entries
// (0 means unbounded) and starts the cleanup goroutine.
func NewMemoryCache(maxSize int, cleanupInterval time.Duration) *MemoryCache {
	c := &MemoryCache{
		maxSize: int64(maxSize),
		stop:    make(chan struct{}),
	}
	if cleanupInterval <= 0 {
		cleanupInterval = time.Minute
	}
	go c.cleanupLoop(cleanupInterval)
	return c
}

// Get returns the value for key or ErrCacheMiss.
func (c *MemoryCache) Get(_ context.Context, key string) ([]byte, error) {
	if c.closed.Load() {
		return nil, ErrCacheClosed
	}
	v, ok := c.entries.Load(key)
	if !ok {
		atomic.AddInt64(&c.misses, 1)
		return nil, ErrCacheMiss
	}
	entry := v.(*memoryEntry)
	if entry.expired(time.Now()) {
		c.entries.Delete(key)
		atomic.AddInt64(&c.count, -1)
		atomic.AddInt64(&c.misses, 1)
		return nil, ErrCacheMiss
	}
	atomic.AddInt64(&c.hits, 1)
	return entry.value, nil
}

// Set stores value under key. A ttl of zero means no expiry.
func (c *MemoryCache) Set(_ context.Context, key string, value []byte, ttl time.Duration) error {
	if c.closed.Load() {
		return ErrCacheClosed
	}
	if c.maxSize > 0 && atomic.LoadInt64(&c.count) >= c.maxSize {
		if _, exists := c.entries.Load(key); !exists {
			c.evictExpired()
			if atomic.LoadInt64(&c.count) >= c.maxSize {
				// Full of live entries; drop the write rather than grow.
				return nil
			}
		}
	}
	entry := &memoryEntry{value: value}
	if ttl > 0 {
		entry.expiresAt = time.Now().Add(ttl)
	}
	if _, loaded := c.entries.Swap(key, entry); !loaded {
		atomic.AddInt64(&c.count, 1)
	}
	atomic.AddInt64(&c.sets, 1)
	return nil
}

// Delete removes key if present.
func (c *MemoryCache) Delete(_ context.Context, key string) error {
	if c.closed.Load() {
		return ErrCacheClosed
	}
	if _, loaded := c.entries.LoadAndDelete(key); loaded {
		atomic.AddInt64(&c.count, -1)
		atomic.AddInt64(&c.deletes, 1)
	}
	return nil
}

// Clear removes every entry.
func (c *MemoryCache) Clear(_ context.Context) error {
	if c.closed.Load() {
		return ErrCacheClosed
	}
	c.entries.Range(func(key, _ any) bool {
		c.entries.Delete(key)
		return true
	})
	atomic.StoreInt64(&c.count, 0)
	return nil
}

// Has reports whether key is present and not expired.
func (c *MemoryCache) Has(_ context.Context, key string) bool {
	if c.closed.Load() {
		return false
	}
	v, ok := c.entries.Load(key)
	if !ok {
		return false
	}
	return !v.(*memoryEntry).expired(time.Now())
}

// Stats returns current counters.
func (c *MemoryCache) Stats() Stats {
	return Stats{
		Hits:    atomic.LoadInt64(&c.hits),
		Misses:  atomic.LoadInt64(&c.misses),
		Sets:    atomic.LoadInt64(&c.sets),
		Deletes: atomic.LoadInt64(&c.deletes),
		Entries: atomic.LoadInt64(&c.count),
	}
}

// Close stops the cleanup goroutine and rejects further operations.
func (c *MemoryCache) Close() error {
	c.closed.Store(true)
	c.stopOnce.Do(func() { close(c.stop) })
	return nil
}

func (c *MemoryCache) cleanupLoop(interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			c.evictExpired()
		case <-c.stop:
			return
		}
	}
}

func (c *MemoryCache) evictExpired() {
	now := time.Now()
	c.entries.Range(func(key, v any) bool {
		if v.(*memoryEntry).expired(now) {
			if _, loaded := c.entries.LoadAndDelete(key); loaded {
				atomic.AddInt64(&c.count, -1)
			}
		}
		return true
	})
}
