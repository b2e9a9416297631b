// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"database/sql"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/alexedwards/scs/v2"

	"sofra/internal/middleware"
	"sofra/internal/render"
	"sofra/internal/service"
)

// maxRatingBodySize bounds the public rating submission payload.
const maxRatingBodySize = 16 * 1024

// RatingsHandler handles public rating submission and the admin view.
type RatingsHandler struct {
	renderer       *render.Renderer
	sessionManager *scs.SessionManager
	ratingService  *service.RatingService
}

// NewRatingsHandler creates a new RatingsHandler.
func NewRatingsHandler(db *sql.DB, renderer *render.Renderer, sm *scs.SessionManager) *RatingsHandler {
	return &RatingsHandler{
		renderer:       renderer,
		sessionManager: sm,
		ratingService:  service.NewRatingService(db),
	}
}

// ratingRequest is the public JSON rating submission body.
type ratingRequest struct {
	Name    string `json:"name"`
	Phone   string `json:"phone"`
	Stars   int    `json:"stars"`
	Comment string `json:"comment"`
}

// Submit handles POST /rate.
func (h *RatingsHandler) Submit(w http.ResponseWriter, r *http.Request) {
	var req ratingRequest
	r.Body = http.MaxBytesReader(w, r.Body, maxRatingBodySize)
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSONError(w, http.StatusBadRequest, "Invalid request body", "bad_request")
		return
	}

	rating, err := h.ratingService.Submit(r.Context(), service.SubmitRatingParams{
		Name:      req.Name,
		Phone:     req.Phone,
		Stars:     req.Stars,
		Comment:   req.Comment,
		UserAgent: r.UserAgent(),
	})
	if err != nil {
		if errors.Is(err, service.ErrBadStars) {
			writeJSONError(w, http.StatusBadRequest, err.Error(), "bad_stars")
			return
		}
		slog.Error("rating submission failed", "error", err)
		writeJSONError(w, http.StatusServiceUnavailable, "Service temporarily unavailable", "storage_error")
		return
	}

	writeJSONSuccess(w, map[string]any{
		"id":    rating.ID,
		"stars": rating.Stars,
	})
}

// RatingsListData holds data for the admin ratings template.
type RatingsListData struct {
	Ratings    []RatingRow
	Summary    service.RatingSummary
	Pagination AdminPagination
}

// RatingRow is one rating in the admin list.
type RatingRow struct {
	ID        int64
	Name      string
	Phone     string
	Stars     int
	Comment   string
	UserAgent string
	CreatedAt string
}

// List displays ratings for admins with the overall average.
func (h *RatingsHandler) List(w http.ResponseWriter, r *http.Request) {
	page := parsePage(r)
	ratings, summary, err := h.ratingService.ListRatings(r.Context(), int64(defaultPerPage), pageOffset(page, defaultPerPage))
	if err != nil {
		logAndInternalError(w, "failed to list ratings", "error", err)
		return
	}

	rows := make([]RatingRow, 0, len(ratings))
	for _, rt := range ratings {
		rows = append(rows, RatingRow{
			ID:        rt.ID,
			Name:      rt.Name,
			Phone:     rt.Phone,
			Stars:     rt.Stars,
			Comment:   rt.Comment,
			UserAgent: rt.UserAgent,
			CreatedAt: rt.CreatedAt.Format("Jan 2, 2006 3:04 PM"),
		})
	}

	if err := h.renderer.Render(w, r, "admin/ratings_list", render.TemplateData{
		Title: "Ratings",
		User:  middleware.GetUser(r),
		Data: RatingsListData{
			Ratings:    rows,
			Summary:    summary,
			Pagination: BuildAdminPagination(page, summary.Count, defaultPerPage, "/admin/ratings"),
		},
	}); err != nil {
		logAndInternalError(w, "render error", "error", err)
	}
}
