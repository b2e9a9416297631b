// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package session configures the server-side session manager.
package session

import (
	"database/sql"
	"net/http"
	"time"

	"github.com/alexedwards/scs/sqlite3store"
	"github.com/alexedwards/scs/v2"
)

// New returns a session manager backed by the sessions table. Cookies are
// HttpOnly and SameSite=Lax; Secure is disabled only in development.
func New(db *sql.DB, isDev bool) *scs.SessionManager {
	manager := scs.New()
	manager.Store = sqlite3store.New(db)
	manager.Lifetime = 24 * time.Hour
	manager.Cookie.HttpOnly = true
	manager.Cookie.SameSite = http.SameSiteLaxMode
	manager.Cookie.Secure = !isDev
	return manager
}
