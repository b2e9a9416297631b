package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"sofra/internal/cache"
)

func newTestProtection(t *testing.T, cfg LoginProtectionConfig) *LoginProtection {
	t.Helper()
	backend := cache.NewMemoryCache(100, time.Minute)
	t.Cleanup(func() { _ = backend.Close() })
	return NewLoginProtection(cfg, backend)
}

func TestLoginProtection_LockAfterMaxFailures(t *testing.T) {
	lp := newTestProtection(t, LoginProtectionConfig{
		MaxFailedAttempts: 3,
		LockoutDuration:   time.Minute,
		AttemptWindow:     time.Minute,
	})
	ctx := context.Background()
	email := "admin@example.com"

	if locked, _ := lp.IsAccountLocked(ctx, email); locked {
		t.Fatal("fresh account should not be locked")
	}
	if remaining := lp.GetRemainingAttempts(ctx, email); remaining != 3 {
		t.Errorf("remaining = %d, want 3", remaining)
	}

	locked, _ := lp.RecordFailedAttempt(ctx, email)
	if locked {
		t.Error("first failure should not lock")
	}
	locked, _ = lp.RecordFailedAttempt(ctx, email)
	if locked {
		t.Error("second failure should not lock")
	}

	locked, dur := lp.RecordFailedAttempt(ctx, email)
	if !locked {
		t.Fatal("third failure should lock")
	}
	if dur != time.Minute {
		t.Errorf("lock duration = %v, want 1m", dur)
	}

	if locked, remaining := lp.IsAccountLocked(ctx, email); !locked || remaining <= 0 {
		t.Errorf("IsAccountLocked = (%v, %v), want locked with time remaining", locked, remaining)
	}
}

func TestLoginProtection_SuccessClearsAttempts(t *testing.T) {
	lp := newTestProtection(t, LoginProtectionConfig{
		MaxFailedAttempts: 3,
		LockoutDuration:   time.Minute,
		AttemptWindow:     time.Minute,
	})
	ctx := context.Background()
	email := "admin@example.com"

	lp.RecordFailedAttempt(ctx, email)
	lp.RecordFailedAttempt(ctx, email)
	if remaining := lp.GetRemainingAttempts(ctx, email); remaining != 1 {
		t.Errorf("remaining = %d, want 1", remaining)
	}

	lp.RecordSuccessfulLogin(ctx, email)
	if remaining := lp.GetRemainingAttempts(ctx, email); remaining != 3 {
		t.Errorf("remaining after success = %d, want 3", remaining)
	}
	if locked, _ := lp.IsAccountLocked(ctx, email); locked {
		t.Error("account should not be locked after success")
	}
}

func TestLoginProtection_ExponentialBackoff(t *testing.T) {
	lp := newTestProtection(t, LoginProtectionConfig{
		MaxFailedAttempts: 2,
		LockoutDuration:   time.Minute,
		AttemptWindow:     time.Minute,
	})
	ctx := context.Background()
	email := "admin@example.com"

	lp.RecordFailedAttempt(ctx, email)
	_, first := lp.RecordFailedAttempt(ctx, email)
	if first != time.Minute {
		t.Errorf("first lockout = %v, want 1m", first)
	}

	// Accounts keep their lockout history; the second lockout doubles.
	lp.RecordFailedAttempt(ctx, email)
	_, second := lp.RecordFailedAttempt(ctx, email)
	if second != 2*time.Minute {
		t.Errorf("second lockout = %v, want 2m", second)
	}
}

func TestLoginProtection_MiddlewareLimitsPosts(t *testing.T) {
	lp := newTestProtection(t, LoginProtectionConfig{
		IPRateLimit: 1,
		IPBurst:     2,
	})

	handler := lp.Middleware()(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	post := func() int {
		req := httptest.NewRequest(http.MethodPost, "/login", nil)
		req.RemoteAddr = "203.0.113.7:1234"
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		return rec.Code
	}

	if code := post(); code != http.StatusOK {
		t.Errorf("first POST = %d, want 200", code)
	}
	if code := post(); code != http.StatusOK {
		t.Errorf("second POST = %d, want 200", code)
	}
	if code := post(); code != http.StatusTooManyRequests {
		t.Errorf("burst-exceeding POST = %d, want 429", code)
	}

	// GETs pass through untouched.
	req := httptest.NewRequest(http.MethodGet, "/login", nil)
	req.RemoteAddr = "203.0.113.7:1234"
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Errorf("GET = %d, want 200", rec.Code)
	}
}

func TestClientIP(t *testing.T) {
	tests := []struct {
		name       string
		remoteAddr string
		headers    map[string]string
		want       string
	}{
		{"remote addr only", "192.0.2.1:5000", nil, "192.0.2.1"},
		{"x-real-ip wins", "192.0.2.1:5000", map[string]string{"X-Real-IP": "198.51.100.9"}, "198.51.100.9"},
		{"x-forwarded-for first hop", "192.0.2.1:5000", map[string]string{"X-Forwarded-For": "203.0.113.5, 198.51.100.9"}, "203.0.113.5"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			req.RemoteAddr = tt.remoteAddr
			for k, v := range tt.headers {
				req.Header.Set(k, v)
			}
			if got := ClientIP(req); got != tt.want {
				t.Errorf("ClientIP = %q, want %q", got, tt.want)
			}
		})
	}
}
