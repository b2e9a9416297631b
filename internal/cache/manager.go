// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package cache

import (
	"context"
	"fmt"
	"log/slog"
	"time"
)

// MenuTTL bounds how stale a cached public menu response may be.
const MenuTTL = 5 * time.Minute

// Options selects and sizes the cache backend.
type Options struct {
	RedisURL string // empty selects the in-memory backend
	Prefix   string
	MaxSize  int
}

// Manager owns the application's named caches on one shared backend.
type Manager struct {
	backend Cacher
}

// NewManager builds the backend from opts. Redis failures are not fatal;
// the manager falls back to memory and logs the reason.
func NewManager(ctx context.Context, opts Options) *Manager {
	if opts.RedisURL != "" {
		backend, err := NewRedisCache(ctx, opts.RedisURL, opts.Prefix)
		if err == nil {
			slog.Info("cache backend ready", "backend", "redis", "prefix", opts.Prefix)
			return &Manager{backend: backend}
		}
		slog.Warn("redis cache unavailable, falling back to memory", "error", err)
	}
	return &Manager{backend: NewMemoryCache(opts.MaxSize, time.Minute)}
}

// Backend exposes the raw Cacher for counters and typed wrappers.
func (m *Manager) Backend() Cacher {
	return m.backend
}

// MenuKey builds the public menu response cache key from the served
// language and the request filters.
func MenuKey(lang string, menuTypeID int64, category string) string {
	return fmt.Sprintf("menu:%s:%d:%s", lang, menuTypeID, category)
}

// InvalidateMenu drops every cached menu response. Called after any menu
// or language mutation; invalidation failures are logged, not returned,
// since stale entries expire within MenuTTL anyway.
func (m *Manager) InvalidateMenu(ctx context.Context) {
	if err := m.backend.Clear(ctx); err != nil && err != ErrCacheClosed {
		slog.Warn("menu cache invalidation failed", "error", err)
	}
}

// Stats returns backend counters.
func (m *Manager) Stats() Stats {
	return m.backend.Stats()
}

// Close releases the backend.
func (m *Manager) Close() error {
	return m.backend.Close()
}
