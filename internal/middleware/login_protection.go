// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package middleware

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"sofra/internal/cache"
)

// LoginProtection combines per-IP rate limiting with per-account lockout.
// IP limiters are in-process; account lockout state lives on the cache
// backend, so a Redis deployment shares lockouts across workers.
type LoginProtection struct {
	ipLimiters *limiterCache[string]
	attempts   *cache.TypedCache[loginAttempt]

	maxFailedAttempts int
	lockoutDuration   time.Duration
	attemptWindow     time.Duration
}

// loginAttempt tracks failed login attempts for one account.
type loginAttempt struct {
	Count       int       `json:"count"`
	FirstFailed time.Time `json:"first_failed"`
	LockedUntil time.Time `json:"locked_until"`
	Lockouts    int       `json:"lockouts"`
}

// LoginProtectionConfig holds configuration for login protection.
type LoginProtectionConfig struct {
	// IPRateLimit is requests per second per IP (default: 0.5).
	IPRateLimit float64
	// IPBurst is the maximum burst size per IP (default: 5).
	IPBurst int
	// MaxFailedAttempts before account lockout (default: 5).
	MaxFailedAttempts int
	// LockoutDuration is the base lockout, doubling with each lockout
	// (default: 15 minutes).
	LockoutDuration time.Duration
	// AttemptWindow is the window for counting failures (default: 15 minutes).
	AttemptWindow time.Duration
}

// DefaultLoginProtectionConfig returns sensible defaults.
func DefaultLoginProtectionConfig() LoginProtectionConfig {
	return LoginProtectionConfig{
		IPRateLimit:       0.5,
		IPBurst:           5,
		MaxFailedAttempts: 5,
		LockoutDuration:   15 * time.Minute,
		AttemptWindow:     15 * time.Minute,
	}
}

// NewLoginProtection creates a login protection instance on the given
// cache backend.
func NewLoginProtection(cfg LoginProtectionConfig, backend cache.Cacher) *LoginProtection {
	if cfg.IPRateLimit <= 0 {
		cfg.IPRateLimit = 0.5
	}
	if cfg.IPBurst <= 0 {
		cfg.IPBurst = 5
	}
	if cfg.MaxFailedAttempts <= 0 {
		cfg.MaxFailedAttempts = 5
	}
	if cfg.LockoutDuration <= 0 {
		cfg.LockoutDuration = 15 * time.Minute
	}
	if cfg.AttemptWindow <= 0 {
		cfg.AttemptWindow = 15 * time.Minute
	}

	return &LoginProtection{
		ipLimiters:        newLimiterCache[string](cfg.IPRateLimit, cfg.IPBurst),
		attempts:          cache.NewTypedCache[loginAttempt](backend, 24*time.Hour),
		maxFailedAttempts: cfg.MaxFailedAttempts,
		lockoutDuration:   cfg.LockoutDuration,
		attemptWindow:     cfg.AttemptWindow,
	}
}

func attemptKey(email string) string {
	return "login:attempts:" + email
}

// IsAccountLocked checks if an account is currently locked.
// Returns (locked, remainingTime).
func (lp *LoginProtection) IsAccountLocked(ctx context.Context, email string) (bool, time.Duration) {
	attempt, err := lp.attempts.Get(ctx, attemptKey(email))
	if err != nil {
		return false, 0
	}
	if time.Now().Before(attempt.LockedUntil) {
		return true, time.Until(attempt.LockedUntil)
	}
	return false, 0
}

// RecordFailedAttempt records a failed login attempt.
// Returns (locked, lockDuration) if the account is now locked.
func (lp *LoginProtection) RecordFailedAttempt(ctx context.Context, email string) (bool, time.Duration) {
	now := time.Now()
	key := attemptKey(email)

	attempt, err := lp.attempts.Get(ctx, key)
	if err != nil || now.Sub(attempt.FirstFailed) > lp.attemptWindow {
		attempt = loginAttempt{Count: 1, FirstFailed: now, Lockouts: attempt.Lockouts}
		_ = lp.attempts.Set(ctx, key, attempt)
		return false, 0
	}

	attempt.Count++

	if attempt.Count >= lp.maxFailedAttempts {
		// Exponential backoff, capped at 24 hours.
		lockDuration := lp.lockoutDuration
		for i := 0; i < attempt.Lockouts; i++ {
			lockDuration *= 2
			if lockDuration > 24*time.Hour {
				lockDuration = 24 * time.Hour
				break
			}
		}

		attempt.LockedUntil = now.Add(lockDuration)
		attempt.Lockouts++
		attempt.Count = 0
		_ = lp.attempts.Set(ctx, key, attempt)

		slog.Warn("account locked due to failed attempts",
			"email", email,
			"lockouts", attempt.Lockouts,
			"duration", lockDuration,
		)
		return true, lockDuration
	}

	_ = lp.attempts.Set(ctx, key, attempt)
	return false, 0
}

// GetRemainingAttempts returns how many failures remain before lockout.
func (lp *LoginProtection) GetRemainingAttempts(ctx context.Context, email string) int {
	attempt, err := lp.attempts.Get(ctx, attemptKey(email))
	if err != nil || time.Since(attempt.FirstFailed) > lp.attemptWindow {
		return lp.maxFailedAttempts
	}
	remaining := lp.maxFailedAttempts - attempt.Count
	if remaining < 0 {
		return 0
	}
	return remaining
}

// RecordSuccessfulLogin clears failed attempt tracking for an account.
func (lp *LoginProtection) RecordSuccessfulLogin(ctx context.Context, email string) {
	_ = lp.attempts.Delete(ctx, attemptKey(email))
}

// Middleware applies the per-IP limit to login POSTs.
func (lp *LoginProtection) Middleware() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Method != http.MethodPost {
				next.ServeHTTP(w, r)
				return
			}

			ip := ClientIP(r)
			if !lp.ipLimiters.get(ip).Allow() {
				slog.Warn("login rate limit exceeded", "ip", ip)
				http.Error(w, "Too many login attempts. Please wait and try again.", http.StatusTooManyRequests)
				return
			}
			if lp.ipLimiters.clearIfExceeds(10000) {
				slog.Info("cleared IP rate limiters due to size")
			}

			next.ServeHTTP(w, r)
		})
	}
}
