// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"database/sql"
	"net/http"

	"github.com/alexedwards/scs/v2"

	"sofra/internal/middleware"
	"sofra/internal/model"
	"sofra/internal/render"
	"sofra/internal/service"
)

// EventsHandler displays the admin audit log.
type EventsHandler struct {
	renderer       *render.Renderer
	sessionManager *scs.SessionManager
	eventService   *service.EventService
}

// NewEventsHandler creates a new EventsHandler.
func NewEventsHandler(db *sql.DB, renderer *render.Renderer, sm *scs.SessionManager) *EventsHandler {
	return &EventsHandler{
		renderer:       renderer,
		sessionManager: sm,
		eventService:   service.NewEventService(db),
	}
}

// EventsListData holds data for the events template.
type EventsListData struct {
	Events     []model.Event
	Pagination AdminPagination
}

// List displays the audit log, newest first.
func (h *EventsHandler) List(w http.ResponseWriter, r *http.Request) {
	page := parsePage(r)
	events, total, err := h.eventService.ListEvents(r.Context(), int64(defaultPerPage), pageOffset(page, defaultPerPage))
	if err != nil {
		logAndInternalError(w, "failed to list events", "error", err)
		return
	}

	if err := h.renderer.Render(w, r, "admin/events_list", render.TemplateData{
		Title: "Event log",
		User:  middleware.GetUser(r),
		Data: EventsListData{
			Events:     events,
			Pagination: BuildAdminPagination(page, total, defaultPerPage, "/admin/events"),
		},
	}); err != nil {
		logAndInternalError(w, "render error", "error", err)
	}
}
