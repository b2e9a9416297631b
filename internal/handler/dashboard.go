// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"database/sql"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/alexedwards/scs/v2"

	"sofra/internal/cache"
	"sofra/internal/middleware"
	"sofra/internal/model"
	"sofra/internal/render"
	"sofra/internal/service"
	"sofra/internal/store"
)

// DashboardHandler serves the admin landing page and maintenance actions.
type DashboardHandler struct {
	queries        *store.Queries
	renderer       *render.Renderer
	sessionManager *scs.SessionManager
	menuService    *service.MenuService
	eventService   *service.EventService
	cacheManager   *cache.Manager
}

// NewDashboardHandler creates a new DashboardHandler.
func NewDashboardHandler(db *sql.DB, renderer *render.Renderer, sm *scs.SessionManager, ms *service.MenuService, cm *cache.Manager) *DashboardHandler {
	return &DashboardHandler{
		queries:        store.New(db),
		renderer:       renderer,
		sessionManager: sm,
		menuService:    ms,
		eventService:   service.NewEventService(db),
		cacheManager:   cm,
	}
}

// DashboardData holds data for the dashboard template.
type DashboardData struct {
	MenuTypes    int64
	Categories   int64
	Items        int64
	Orders       int64
	Ratings      int64
	Languages    int64
	CacheStats   cache.Stats
	RecentEvents []model.Event
}

// Show renders the dashboard with catalog counts, cache statistics and
// the latest audit entries.
func (h *DashboardHandler) Show(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	data := DashboardData{}

	counts := []struct {
		dst *int64
		fn  func() (int64, error)
	}{
		{&data.MenuTypes, func() (int64, error) { return h.queries.CountMenuTypes(ctx) }},
		{&data.Categories, func() (int64, error) { return h.queries.CountCategories(ctx) }},
		{&data.Items, func() (int64, error) { return h.queries.CountMenuItems(ctx) }},
		{&data.Orders, func() (int64, error) { return h.queries.CountOrders(ctx) }},
		{&data.Ratings, func() (int64, error) { return h.queries.CountRatings(ctx) }},
		{&data.Languages, func() (int64, error) { return h.queries.CountLanguages(ctx) }},
	}
	for _, c := range counts {
		n, err := c.fn()
		if err != nil {
			logAndInternalError(w, "failed to load dashboard counts", "error", err)
			return
		}
		*c.dst = n
	}

	if h.cacheManager != nil {
		data.CacheStats = h.cacheManager.Stats()
	}

	events, _, err := h.eventService.ListEvents(ctx, 10, 0)
	if err != nil {
		slog.Error("failed to load recent events", "error", err)
	} else {
		data.RecentEvents = events
	}

	if err := h.renderer.Render(w, r, "admin/dashboard", render.TemplateData{
		Title: "Dashboard",
		User:  middleware.GetUser(r),
		Data:  data,
	}); err != nil {
		logAndInternalError(w, "render error", "error", err)
	}
}

// CleanupImages handles the maintenance action that nulls image references
// whose files disappeared from disk.
func (h *DashboardHandler) CleanupImages(w http.ResponseWriter, r *http.Request) {
	healed, err := h.menuService.CleanupMissingImages(r.Context())
	if err != nil {
		slog.Error("image cleanup failed", "error", err)
		flashError(w, r, h.renderer, redirectAdmin, "Image cleanup failed")
		return
	}

	userID := middleware.GetUserID(r)
	_ = h.eventService.LogEvent(r.Context(), model.EventLevelInfo, model.EventCategorySystem, "Missing image cleanup run", &userID, middleware.ClientIP(r), map[string]any{"healed": healed})
	flashSuccess(w, r, h.renderer, redirectAdmin, fmt.Sprintf("Cleanup complete: %d dangling image references cleared", healed))
}

// FlushCache handles the maintenance action that drops all cached menu
// responses immediately.
func (h *DashboardHandler) FlushCache(w http.ResponseWriter, r *http.Request) {
	h.menuService.Invalidate(r.Context())

	userID := middleware.GetUserID(r)
	_ = h.eventService.LogEvent(r.Context(), model.EventLevelInfo, model.EventCategoryCache, "Menu cache flushed", &userID, middleware.ClientIP(r), nil)
	flashSuccess(w, r, h.renderer, redirectAdmin, "Menu cache flushed")
}
