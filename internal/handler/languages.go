// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"database/sql"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/alexedwards/scs/v2"

	"sofra/internal/middleware"
	"sofra/internal/model"
	"sofra/internal/render"
	"sofra/internal/service"
	"sofra/internal/store"
)

// LanguagesHandler handles language management in admin.
type LanguagesHandler struct {
	db             *sql.DB
	queries        *store.Queries
	renderer       *render.Renderer
	sessionManager *scs.SessionManager
	eventService   *service.EventService
	menuService    *service.MenuService
}

// NewLanguagesHandler creates a new LanguagesHandler.
func NewLanguagesHandler(db *sql.DB, renderer *render.Renderer, sm *scs.SessionManager, ms *service.MenuService) *LanguagesHandler {
	return &LanguagesHandler{
		db:             db,
		queries:        store.New(db),
		renderer:       renderer,
		sessionManager: sm,
		eventService:   service.NewEventService(db),
		menuService:    ms,
	}
}

// LanguagesListData holds data for the languages list template.
type LanguagesListData struct {
	Languages      []model.Language
	TotalLanguages int64
}

// LanguageFormData holds data for the language form template.
type LanguageFormData struct {
	Language        *model.Language
	CommonLanguages []model.CommonLanguage
	Errors          map[string]string
	FormValues      map[string]string
	IsEdit          bool
}

// List displays all languages.
func (h *LanguagesHandler) List(w http.ResponseWriter, r *http.Request) {
	user := middleware.GetUser(r)

	languages, err := h.queries.ListLanguages(r.Context())
	if err != nil {
		logAndInternalError(w, "failed to list languages", "error", err)
		return
	}
	total, err := h.queries.CountLanguages(r.Context())
	if err != nil {
		logAndInternalError(w, "failed to count languages", "error", err)
		return
	}

	if err := h.renderer.Render(w, r, "admin/languages_list", render.TemplateData{
		Title: "Languages",
		User:  user,
		Data: LanguagesListData{
			Languages:      languages,
			TotalLanguages: total,
		},
	}); err != nil {
		logAndInternalError(w, "render error", "error", err)
	}
}

// NewForm displays the form to create a new language.
func (h *LanguagesHandler) NewForm(w http.ResponseWriter, r *http.Request) {
	h.renderForm(w, r, LanguageFormData{
		CommonLanguages: model.CommonLanguages,
		Errors:          make(map[string]string),
		FormValues:      make(map[string]string),
	}, "New language")
}

// Create handles creating a new language.
func (h *LanguagesHandler) Create(w http.ResponseWriter, r *http.Request) {
	if !parseFormOrRedirect(w, r, h.renderer, redirectLanguages+RouteSuffixNew) {
		return
	}

	form, errs := h.parseLanguageForm(r, 0)
	if len(errs) > 0 {
		h.renderForm(w, r, LanguageFormData{
			CommonLanguages: model.CommonLanguages,
			Errors:          errs,
			FormValues:      form.values(),
		}, "New language")
		return
	}

	now := time.Now()
	lang, err := h.queries.CreateLanguage(r.Context(), store.CreateLanguageParams{
		Code:       form.code,
		Name:       form.name,
		NativeName: form.nativeName,
		IsDefault:  false,
		IsActive:   form.isActive,
		Direction:  form.direction,
		Position:   form.position,
		CreatedAt:  now,
		UpdatedAt:  now,
	})
	if err != nil {
		slog.Error("failed to create language", "error", err)
		flashError(w, r, h.renderer, redirectLanguages+RouteSuffixNew, "Error creating language")
		return
	}

	slog.Info("language created", "language_id", lang.ID, "code", lang.Code)
	userID := middleware.GetUserID(r)
	_ = h.eventService.LogMenuEvent(r.Context(), model.EventLevelInfo, "Language created", &userID, middleware.ClientIP(r), map[string]any{"code": lang.Code})
	h.menuService.Invalidate(r.Context())
	flashSuccess(w, r, h.renderer, redirectLanguages, "Language created successfully")
}

// EditForm displays the form to edit an existing language.
func (h *LanguagesHandler) EditForm(w http.ResponseWriter, r *http.Request) {
	id, ok := parseIDParam(r)
	if !ok {
		http.Error(w, "Invalid ID", http.StatusBadRequest)
		return
	}

	lang, ok := requireEntityWithRedirect(w, r, h.renderer, redirectLanguages, "language", id,
		func(id int64) (model.Language, error) { return h.queries.GetLanguageByID(r.Context(), id) })
	if !ok {
		return
	}

	values := map[string]string{
		"code":        lang.Code,
		"name":        lang.Name,
		"native_name": lang.NativeName,
		"direction":   lang.Direction,
		"position":    strconv.Itoa(lang.Position),
	}
	if lang.IsActive {
		values["is_active"] = "1"
	}

	h.renderForm(w, r, LanguageFormData{
		Language:        &lang,
		CommonLanguages: model.CommonLanguages,
		Errors:          make(map[string]string),
		FormValues:      values,
		IsEdit:          true,
	}, "Edit language")
}

// Update handles updating an existing language.
func (h *LanguagesHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := parseIDParam(r)
	if !ok {
		http.Error(w, "Invalid ID", http.StatusBadRequest)
		return
	}
	if !parseFormOrRedirect(w, r, h.renderer, redirectLanguages) {
		return
	}

	lang, ok := requireEntityWithRedirect(w, r, h.renderer, redirectLanguages, "language", id,
		func(id int64) (model.Language, error) { return h.queries.GetLanguageByID(r.Context(), id) })
	if !ok {
		return
	}

	form, errs := h.parseLanguageForm(r, id)
	if len(errs) > 0 {
		h.renderForm(w, r, LanguageFormData{
			Language:        &lang,
			CommonLanguages: model.CommonLanguages,
			Errors:          errs,
			FormValues:      form.values(),
			IsEdit:          true,
		}, "Edit language")
		return
	}

	// The default language cannot be deactivated; the resolver depends on it.
	isActive := form.isActive
	if lang.IsDefault {
		isActive = true
	}

	err := h.queries.UpdateLanguage(r.Context(), store.UpdateLanguageParams{
		ID:         id,
		Code:       form.code,
		Name:       form.name,
		NativeName: form.nativeName,
		IsActive:   isActive,
		Direction:  form.direction,
		Position:   form.position,
		UpdatedAt:  time.Now(),
	})
	if err != nil {
		slog.Error("failed to update language", "error", err, "language_id", id)
		flashError(w, r, h.renderer, redirectLanguages, "Error updating language")
		return
	}

	slog.Info("language updated", "language_id", id, "code", form.code)
	h.menuService.Invalidate(r.Context())
	flashSuccess(w, r, h.renderer, redirectLanguages, "Language updated successfully")
}

// SetDefault marks a language as the catalog default.
func (h *LanguagesHandler) SetDefault(w http.ResponseWriter, r *http.Request) {
	id, ok := parseIDParam(r)
	if !ok {
		http.Error(w, "Invalid ID", http.StatusBadRequest)
		return
	}

	lang, err := store.SetDefaultLanguageTx(r.Context(), h.db, id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			flashError(w, r, h.renderer, redirectLanguages, "Language not found")
			return
		}
		slog.Error("failed to set default language", "error", err, "language_id", id)
		flashError(w, r, h.renderer, redirectLanguages, "Error setting default language")
		return
	}

	slog.Info("default language changed", "language_id", id, "code", lang.Code)
	userID := middleware.GetUserID(r)
	_ = h.eventService.LogMenuEvent(r.Context(), model.EventLevelInfo, "Default language changed", &userID, middleware.ClientIP(r), map[string]any{"code": lang.Code})
	h.menuService.Invalidate(r.Context())
	flashSuccess(w, r, h.renderer, redirectLanguages, "Default language updated")
}

// Delete removes a language. The default language and languages still
// referenced by translations are refused.
func (h *LanguagesHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := parseIDParam(r)
	if !ok {
		http.Error(w, "Invalid ID", http.StatusBadRequest)
		return
	}

	lang, err := store.DeleteLanguageTx(r.Context(), h.db, id)
	switch {
	case errors.Is(err, store.ErrNotFound):
		flashError(w, r, h.renderer, redirectLanguages, "Language not found")
		return
	case errors.Is(err, store.ErrDefaultLanguage):
		flashError(w, r, h.renderer, redirectLanguages, "The default language cannot be deleted")
		return
	case errors.Is(err, store.ErrLanguageInUse):
		flashError(w, r, h.renderer, redirectLanguages, "Language is still used by menu translations")
		return
	case err != nil:
		slog.Error("failed to delete language", "error", err, "language_id", id)
		flashError(w, r, h.renderer, redirectLanguages, "Error deleting language")
		return
	}

	slog.Info("language deleted", "language_id", id, "code", lang.Code)
	userID := middleware.GetUserID(r)
	_ = h.eventService.LogMenuEvent(r.Context(), model.EventLevelInfo, "Language deleted", &userID, middleware.ClientIP(r), map[string]any{"code": lang.Code})
	h.menuService.Invalidate(r.Context())
	flashSuccess(w, r, h.renderer, redirectLanguages, "Language deleted successfully")
}

// languageForm is the parsed and validated language form.
type languageForm struct {
	code       string
	name       string
	nativeName string
	direction  string
	position   int
	isActive   bool
}

func (f languageForm) values() map[string]string {
	values := map[string]string{
		"code":        f.code,
		"name":        f.name,
		"native_name": f.nativeName,
		"direction":   f.direction,
		"position":    strconv.Itoa(f.position),
	}
	if f.isActive {
		values["is_active"] = "1"
	}
	return values
}

// parseLanguageForm validates the language form. excludeID skips the
// code-uniqueness check against the row being edited.
func (h *LanguagesHandler) parseLanguageForm(r *http.Request, excludeID int64) (languageForm, map[string]string) {
	form := languageForm{
		code:       model.NormalizeLanguageCode(r.FormValue("code")),
		name:       strings.TrimSpace(r.FormValue("name")),
		nativeName: strings.TrimSpace(r.FormValue("native_name")),
		direction:  strings.TrimSpace(r.FormValue("direction")),
	}
	isActiveStr := r.FormValue("is_active")
	form.isActive = isActiveStr == "1" || isActiveStr == "on" || isActiveStr == "true"

	if positionStr := strings.TrimSpace(r.FormValue("position")); positionStr != "" {
		if p, err := strconv.Atoi(positionStr); err == nil {
			form.position = p
		}
	} else {
		if maxPos, err := h.queries.GetMaxLanguagePosition(r.Context()); err == nil {
			form.position = maxPos + 1
		}
	}

	if form.direction == "" {
		form.direction = model.DirectionLTR
	}

	errs := make(map[string]string)

	if form.code == "" {
		errs["code"] = "Language code is required"
	} else if !model.ValidLanguageCode(form.code) {
		errs["code"] = "Language code must be 2-5 lowercase letters"
	} else {
		var exists bool
		var err error
		if excludeID > 0 {
			exists, err = h.queries.LanguageCodeExistsExcluding(r.Context(), form.code, excludeID)
		} else {
			exists, err = h.queries.LanguageCodeExists(r.Context(), form.code)
		}
		if err != nil {
			slog.Error("database error checking language code", "error", err)
		} else if exists {
			errs["code"] = "Language code already exists"
		}
	}

	if form.name == "" {
		errs["name"] = "Name is required"
	}
	if form.nativeName == "" {
		errs["native_name"] = "Native name is required"
	}
	if form.direction != model.DirectionLTR && form.direction != model.DirectionRTL {
		errs["direction"] = "Direction must be ltr or rtl"
	}

	return form, errs
}

func (h *LanguagesHandler) renderForm(w http.ResponseWriter, r *http.Request, data LanguageFormData, title string) {
	if err := h.renderer.Render(w, r, "admin/languages_form", render.TemplateData{
		Title: title,
		User:  middleware.GetUser(r),
		Data:  data,
	}); err != nil {
		logAndInternalError(w, "render error", "error", err)
	}
}
