package cache

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"
)

func TestMemoryCacheSetGet(t *testing.T) {
	c := NewMemoryCache(100, time.Minute)
	defer c.Close()

	ctx := context.Background()

	if err := c.Set(ctx, "key", []byte("value"), time.Minute); err != nil {
		t.Fatalf("Set: %v", err)
	}

	got, err := c.Get(ctx, "key")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if string(got) != "value" {
		t.Errorf("Get = %q, want %q", got, "value")
	}

	_, err = c.Get(ctx, "missing")
	if !errors.Is(err, ErrCacheMiss) {
		t.Errorf("Get(missing) err = %v, want ErrCacheMiss", err)
	}
}

func TestMemoryCacheExpiry(t *testing.T) {
	c := NewMemoryCache(100, time.Minute)
	defer c.Close()

	ctx := context.Background()

	if err := c.Set(ctx, "short", []byte("x"), 10*time.Millisecond); err != nil {
		t.Fatalf("Set: %v", err)
	}
	time.Sleep(30 * time.Millisecond)

	_, err := c.Get(ctx, "short")
	if !errors.Is(err, ErrCacheMiss) {
		t.Errorf("expired Get err = %v, want ErrCacheMiss", err)
	}
	if c.Has(ctx, "short") {
		t.Error("Has should be false after expiry")
	}
}

func TestMemoryCacheClear(t *testing.T) {
	c := NewMemoryCache(100, time.Minute)
	defer c.Close()

	ctx := context.Background()
	for i := 0; i < 5; i++ {
		key := fmt.Sprintf("key-%d", i)
		if err := c.Set(ctx, key, []byte("v"), time.Minute); err != nil {
			t.Fatalf("Set: %v", err)
		}
	}

	if err := c.Clear(ctx); err != nil {
		t.Fatalf("Clear: %v", err)
	}
	if stats := c.Stats(); stats.Entries != 0 {
		t.Errorf("Entries = %d, want 0", stats.Entries)
	}
}

func TestMemoryCacheStats(t *testing.T) {
	c := NewMemoryCache(100, time.Minute)
	defer c.Close()

	ctx := context.Background()
	_ = c.Set(ctx, "a", []byte("1"), time.Minute)
	_, _ = c.Get(ctx, "a")
	_, _ = c.Get(ctx, "b")

	stats := c.Stats()
	if stats.Hits != 1 {
		t.Errorf("Hits = %d, want 1", stats.Hits)
	}
	if stats.Misses != 1 {
		t.Errorf("Misses = %d, want 1", stats.Misses)
	}
	if rate := stats.HitRate(); rate != 0.5 {
		t.Errorf("HitRate = %f, want 0.5", rate)
	}
}

func TestTypedCacheRoundTrip(t *testing.T) {
	backend := NewMemoryCache(100, time.Minute)
	defer backend.Close()

	type payload struct {
		Name  string `json:"name"`
		Count int    `json:"count"`
	}

	tc := NewTypedCache[payload](backend, time.Minute)
	ctx := context.Background()

	if err := tc.Set(ctx, "p", payload{Name: "menu", Count: 3}); err != nil {
		t.Fatalf("Set: %v", err)
	}

	got, err := tc.Get(ctx, "p")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got.Name != "menu" || got.Count != 3 {
		t.Errorf("Get = %+v", got)
	}
}

func TestTypedCacheGetOrSet(t *testing.T) {
	backend := NewMemoryCache(100, time.Minute)
	defer backend.Close()

	tc := NewTypedCache[int](backend, time.Minute)
	ctx := context.Background()

	loads := 0
	load := func(ctx context.Context) (int, error) {
		loads++
		return 42, nil
	}

	for i := 0; i < 3; i++ {
		got, err := tc.GetOrSet(ctx, "answer", load)
		if err != nil {
			t.Fatalf("GetOrSet: %v", err)
		}
		if got != 42 {
			t.Errorf("GetOrSet = %d, want 42", got)
		}
	}
	if loads != 1 {
		t.Errorf("loader ran %d times, want 1", loads)
	}

	// A load failure is not cached.
	wantErr := errors.New("boom")
	_, err := tc.GetOrSet(ctx, "failing", func(ctx context.Context) (int, error) {
		return 0, wantErr
	})
	if !errors.Is(err, wantErr) {
		t.Errorf("err = %v, want %v", err, wantErr)
	}
	if backend.Has(ctx, "failing") {
		t.Error("failed load should not be cached")
	}
}

func TestCounter(t *testing.T) {
	backend := NewMemoryCache(100, time.Minute)
	defer backend.Close()

	counter := NewCounter(backend)
	ctx := context.Background()

	for i := int64(1); i <= 3; i++ {
		n, err := counter.Incr(ctx, "hits", time.Minute)
		if err != nil {
			t.Fatalf("Incr: %v", err)
		}
		if n != i {
			t.Errorf("Incr = %d, want %d", n, i)
		}
	}

	n, err := counter.Get(ctx, "hits")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if n != 3 {
		t.Errorf("Get = %d, want 3", n)
	}

	if err := counter.Reset(ctx, "hits"); err != nil {
		t.Fatalf("Reset: %v", err)
	}
	n, err = counter.Get(ctx, "hits")
	if err != nil {
		t.Fatalf("Get after reset: %v", err)
	}
	if n != 0 {
		t.Errorf("Get after reset = %d, want 0", n)
	}
}

func TestManagerMemoryFallback(t *testing.T) {
	ctx := context.Background()

	// No Redis URL selects the in-memory backend.
	m := NewManager(ctx, Options{MaxSize: 10})
	defer m.Close()

	if err := m.Backend().Set(ctx, "k", []byte("v"), time.Minute); err != nil {
		t.Fatalf("Set: %v", err)
	}
	m.InvalidateMenu(ctx)
	if m.Backend().Has(ctx, "k") {
		t.Error("InvalidateMenu should clear the backend")
	}
}

func TestMenuKey(t *testing.T) {
	a := MenuKey("en", 0, "")
	b := MenuKey("ar", 0, "")
	c := MenuKey("en", 2, "Kebab")
	if a == b || a == c || b == c {
		t.Errorf("keys must differ: %q %q %q", a, b, c)
	}
}
