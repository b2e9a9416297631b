// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package middleware

import (
	"context"
	"database/sql"
	"net/http"
	"time"

	"sofra/internal/i18n"
	"sofra/internal/model"
	"sofra/internal/store"
)

// LanguageCookie stores a visitor's language choice.
const LanguageCookie = "lang"

// LanguageInfo carries the resolved language for a public request.
// Requested keeps the raw request value even when it was not servable.
type LanguageInfo struct {
	Code      string
	Direction string
	IsDefault bool
	Requested string
}

// IsRTL reports whether the resolved language is right-to-left.
func (l LanguageInfo) IsRTL() bool {
	return l.Direction == model.DirectionRTL
}

// Language resolves the visitor's language for public routes: the ?lang
// query parameter wins, then the language cookie, then Accept-Language,
// then the catalog default. Unknown or inactive codes fall back to the
// default while the requested value is preserved in context.
func Language(db *sql.DB) func(http.Handler) http.Handler {
	queries := store.New(db)

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			requested := model.NormalizeLanguageCode(r.URL.Query().Get("lang"))
			explicit := requested != ""
			if requested == "" {
				if cookie, err := r.Cookie(LanguageCookie); err == nil {
					requested = model.NormalizeLanguageCode(cookie.Value)
				}
			}
			if requested == "" {
				if acceptLang := r.Header.Get("Accept-Language"); acceptLang != "" {
					requested = i18n.MatchLanguage(acceptLang)
				}
			}

			info := resolveLanguage(r.Context(), queries, requested)
			if explicit {
				SetLanguageCookie(w, info.Code)
			}

			ctx := context.WithValue(r.Context(), ContextKeyLanguage, info)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// resolveLanguage maps a requested code onto a servable language,
// falling back to the catalog default.
func resolveLanguage(ctx context.Context, queries *store.Queries, requested string) LanguageInfo {
	info := LanguageInfo{Requested: requested}

	if requested != "" && model.ValidLanguageCode(requested) {
		lang, err := queries.GetLanguageByCode(ctx, requested)
		if err == nil && lang.IsActive {
			info.Code = lang.Code
			info.Direction = lang.Direction
			info.IsDefault = lang.IsDefault
			return info
		}
	}

	def, err := queries.GetDefaultLanguage(ctx)
	if err != nil {
		// No catalog at all; serve English so the page still renders.
		info.Code = "en"
		info.Direction = model.DirectionLTR
		info.IsDefault = true
		return info
	}
	info.Code = def.Code
	info.Direction = def.Direction
	info.IsDefault = true
	return info
}

// GetLanguage returns the resolved language from the request context.
func GetLanguage(r *http.Request) LanguageInfo {
	info, ok := r.Context().Value(ContextKeyLanguage).(LanguageInfo)
	if !ok {
		return LanguageInfo{Code: "en", Direction: model.DirectionLTR, IsDefault: true}
	}
	return info
}

// SetLanguageCookie persists a language choice for a year.
func SetLanguageCookie(w http.ResponseWriter, code string) {
	http.SetCookie(w, &http.Cookie{
		Name:     LanguageCookie,
		Value:    code,
		Path:     "/",
		MaxAge:   int((365 * 24 * time.Hour).Seconds()),
		HttpOnly: false, // client-side switchers read it
		SameSite: http.SameSiteLaxMode,
	})
}
