// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"log/slog"
	"net/http"
	"strconv"

	"sofra/internal/middleware"
	"sofra/internal/model"
	"sofra/internal/service"
	"sofra/internal/store"
)

// MenuAPIHandler serves the public menu read endpoint.
type MenuAPIHandler struct {
	menuService *service.MenuService
}

// NewMenuAPIHandler creates a new MenuAPIHandler.
func NewMenuAPIHandler(ms *service.MenuService) *MenuAPIHandler {
	return &MenuAPIHandler{menuService: ms}
}

// Get serves GET /menu-api. Malformed filters are rejected before any
// database work; storage failures surface as a generic 503 so internals
// never leak into the public payload.
func (h *MenuAPIHandler) Get(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()

	if raw := query.Get("lang"); raw != "" {
		if code := model.NormalizeLanguageCode(raw); !model.ValidLanguageCode(code) {
			writeJSONError(w, http.StatusBadRequest, "Invalid language code", "bad_language")
			return
		}
	}

	var filter store.ItemFilter
	if raw := query.Get("menu_type"); raw != "" {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || !model.ValidEntityID(id) {
			writeJSONError(w, http.StatusBadRequest, "Invalid menu_type filter", "bad_menu_type")
			return
		}
		filter.MenuTypeID = id
	}
	if raw := query.Get("category"); raw != "" {
		category := model.SanitizeText(raw)
		if category == "" || len(category) > model.MaxNameLen {
			writeJSONError(w, http.StatusBadRequest, "Invalid category filter", "bad_category")
			return
		}
		filter.CategoryName = category
	}

	lang := middleware.GetLanguage(r)
	resp, err := h.menuService.BuildMenu(r.Context(), service.MenuRequest{
		Language:  lang.Code,
		Requested: lang.Requested,
		RTL:       lang.IsRTL(),
		Filter:    filter,
	})
	if err != nil {
		slog.Error("menu api build failed", "error", err, "lang", lang.Code)
		writeJSONError(w, http.StatusServiceUnavailable, "Service temporarily unavailable", "storage_error")
		return
	}

	writeJSON(w, http.StatusOK, resp)
}
