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

	"github.com/alexedwards/scs/v2"

	"sofra/internal/middleware"
	"sofra/internal/model"
	"sofra/internal/render"
	"sofra/internal/service"
	"sofra/internal/store"
)

// MenuTypesHandler handles menu type management in admin.
type MenuTypesHandler struct {
	db             *sql.DB
	queries        *store.Queries
	renderer       *render.Renderer
	sessionManager *scs.SessionManager
	eventService   *service.EventService
	menuService    *service.MenuService
}

// NewMenuTypesHandler creates a new MenuTypesHandler.
func NewMenuTypesHandler(db *sql.DB, renderer *render.Renderer, sm *scs.SessionManager, ms *service.MenuService) *MenuTypesHandler {
	return &MenuTypesHandler{
		db:             db,
		queries:        store.New(db),
		renderer:       renderer,
		sessionManager: sm,
		eventService:   service.NewEventService(db),
		menuService:    ms,
	}
}

// MenuTypesListData holds data for the menu types list template.
type MenuTypesListData struct {
	MenuTypes []store.LocalizedRow
	Total     int64
}

// TranslationFormRow pairs a catalog language with its current values and
// validation errors for the per-language form sections.
type TranslationFormRow struct {
	Language    model.Language
	Name        string
	Description string
	Errors      map[string]string
}

// EntityFormData holds data for the shared translated-entity form templates.
type EntityFormData struct {
	ID           int64
	Position     int
	Translations []TranslationFormRow
	IsEdit       bool
}

// List displays all menu types with names resolved in the default language.
func (h *MenuTypesHandler) List(w http.ResponseWriter, r *http.Request) {
	defaultLang, err := h.queries.GetDefaultLanguage(r.Context())
	if err != nil {
		logAndInternalError(w, "failed to get default language", "error", err)
		return
	}
	rows, err := h.queries.ListLocalized(r.Context(), store.EntityMenuType, defaultLang.Code, defaultLang.Code)
	if err != nil {
		logAndInternalError(w, "failed to list menu types", "error", err)
		return
	}
	total, err := h.queries.CountMenuTypes(r.Context())
	if err != nil {
		logAndInternalError(w, "failed to count menu types", "error", err)
		return
	}

	if err := h.renderer.Render(w, r, "admin/menu_types_list", render.TemplateData{
		Title: "Menu types",
		User:  middleware.GetUser(r),
		Data:  MenuTypesListData{MenuTypes: rows, Total: total},
	}); err != nil {
		logAndInternalError(w, "render error", "error", err)
	}
}

// NewForm displays the form to create a new menu type.
func (h *MenuTypesHandler) NewForm(w http.ResponseWriter, r *http.Request) {
	rows, ok := h.translationRows(w, r, store.EntityMenuType, 0)
	if !ok {
		return
	}
	h.renderForm(w, r, EntityFormData{Translations: rows}, "New menu type")
}

// Create handles creating a new menu type with its translations.
func (h *MenuTypesHandler) Create(w http.ResponseWriter, r *http.Request) {
	if !parseFormOrRedirect(w, r, h.renderer, redirectMenuTypes+RouteSuffixNew) {
		return
	}

	langs, err := h.queries.ListLanguages(r.Context())
	if err != nil {
		logAndInternalError(w, "failed to list languages", "error", err)
		return
	}
	inputs := collectTranslationInputs(r, langs)
	position := parsePosition(r)

	menuType, fieldErrs, err := store.CreateMenuTypeTx(r.Context(), h.db, position, inputs)
	if err != nil {
		if errors.Is(err, store.ErrNoTranslations) {
			h.renderForm(w, r, EntityFormData{
				Position:     position,
				Translations: mergeFormRows(langs, inputs, fieldErrs),
			}, "New menu type")
			return
		}
		slog.Error("failed to create menu type", "error", err)
		flashError(w, r, h.renderer, redirectMenuTypes+RouteSuffixNew, "Error creating menu type")
		return
	}

	slog.Info("menu type created", "menu_type_id", menuType.ID)
	userID := middleware.GetUserID(r)
	_ = h.eventService.LogMenuEvent(r.Context(), model.EventLevelInfo, "Menu type created", &userID, middleware.ClientIP(r), map[string]any{"menu_type_id": menuType.ID})
	h.menuService.Invalidate(r.Context())
	flashSuccess(w, r, h.renderer, redirectMenuTypes, skippedSuffix("Menu type created", fieldErrs))
}

// EditForm displays the form to edit an existing menu type.
func (h *MenuTypesHandler) EditForm(w http.ResponseWriter, r *http.Request) {
	id, ok := parseIDParam(r)
	if !ok {
		http.Error(w, "Invalid ID", http.StatusBadRequest)
		return
	}
	menuType, ok := requireEntityWithRedirect(w, r, h.renderer, redirectMenuTypes, "menu type", id,
		func(id int64) (model.MenuType, error) { return h.queries.GetMenuType(r.Context(), id) })
	if !ok {
		return
	}
	rows, ok := h.translationRows(w, r, store.EntityMenuType, id)
	if !ok {
		return
	}
	h.renderForm(w, r, EntityFormData{
		ID:           menuType.ID,
		Position:     menuType.Position,
		Translations: rows,
		IsEdit:       true,
	}, "Edit menu type")
}

// Update handles updating a menu type and upserting its translations.
func (h *MenuTypesHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := parseIDParam(r)
	if !ok {
		http.Error(w, "Invalid ID", http.StatusBadRequest)
		return
	}
	if !parseFormOrRedirect(w, r, h.renderer, redirectMenuTypes) {
		return
	}

	langs, err := h.queries.ListLanguages(r.Context())
	if err != nil {
		logAndInternalError(w, "failed to list languages", "error", err)
		return
	}
	inputs := collectTranslationInputs(r, langs)
	position := parsePosition(r)

	fieldErrs, err := store.UpdateMenuTypeTx(r.Context(), h.db, id, position, inputs)
	if err != nil {
		switch {
		case errors.Is(err, store.ErrNotFound):
			flashError(w, r, h.renderer, redirectMenuTypes, "Menu type not found")
		case errors.Is(err, store.ErrNoTranslations):
			flashError(w, r, h.renderer, redirectMenuTypes, "At least one valid translation is required")
		default:
			slog.Error("failed to update menu type", "error", err, "menu_type_id", id)
			flashError(w, r, h.renderer, redirectMenuTypes, "Error updating menu type")
		}
		return
	}

	slog.Info("menu type updated", "menu_type_id", id)
	h.menuService.Invalidate(r.Context())
	flashSuccess(w, r, h.renderer, redirectMenuTypes, skippedSuffix("Menu type updated", fieldErrs))
}

// Delete removes a menu type with everything beneath it: categories,
// items, translations and image files.
func (h *MenuTypesHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := parseIDParam(r)
	if !ok {
		http.Error(w, "Invalid ID", http.StatusBadRequest)
		return
	}

	result, err := store.DeleteMenuTypeTx(r.Context(), h.db, id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			flashError(w, r, h.renderer, redirectMenuTypes, "Menu type not found")
			return
		}
		slog.Error("failed to delete menu type", "error", err, "menu_type_id", id)
		flashError(w, r, h.renderer, redirectMenuTypes, "Error deleting menu type")
		return
	}

	h.menuService.DeleteImages(result.Images)

	userID := middleware.GetUserID(r)
	_ = h.eventService.LogMenuEvent(r.Context(), model.EventLevelInfo, "Menu type deleted", &userID, middleware.ClientIP(r), map[string]any{
		"menu_type_id": id,
		"names":        joinNames(result.Names, 5),
		"categories":   result.Categories,
		"items":        result.Items,
		"translations": result.Translations,
		"images":       len(result.Images),
	})
	h.menuService.Invalidate(r.Context())
	flashSuccess(w, r, h.renderer, redirectMenuTypes, "Menu type deleted with "+
		strconv.FormatInt(result.Categories, 10)+" categories and "+
		strconv.FormatInt(result.Items, 10)+" items")
}

// translationRows loads the language catalog and the entity's current
// translations for the per-language form sections.
func (h *MenuTypesHandler) translationRows(w http.ResponseWriter, r *http.Request, e store.Entity, entityID int64) ([]TranslationFormRow, bool) {
	langs, err := h.queries.ListLanguages(r.Context())
	if err != nil {
		logAndInternalError(w, "failed to list languages", "error", err)
		return nil, false
	}

	existing := map[string]model.Translation{}
	if entityID > 0 {
		translations, err := h.queries.ListTranslations(r.Context(), e, entityID)
		if err != nil {
			logAndInternalError(w, "failed to list translations", "error", err)
			return nil, false
		}
		for _, tr := range translations {
			existing[tr.LanguageCode] = tr
		}
	}

	rows := make([]TranslationFormRow, 0, len(langs))
	for _, lang := range langs {
		row := TranslationFormRow{Language: lang}
		if tr, ok := existing[lang.Code]; ok {
			row.Name = tr.Name
			row.Description = tr.Description
		}
		rows = append(rows, row)
	}
	return rows, true
}

func (h *MenuTypesHandler) renderForm(w http.ResponseWriter, r *http.Request, data EntityFormData, title string) {
	if err := h.renderer.Render(w, r, "admin/menu_types_form", render.TemplateData{
		Title: title,
		User:  middleware.GetUser(r),
		Data:  data,
	}); err != nil {
		logAndInternalError(w, "render error", "error", err)
	}
}

// parsePosition reads the optional position form field.
func parsePosition(r *http.Request) int {
	if p, err := strconv.Atoi(strings.TrimSpace(r.FormValue("position"))); err == nil && p >= 0 {
		return p
	}
	return 0
}

// mergeFormRows rebuilds the per-language form rows from submitted inputs
// and their validation errors so the admin can fix and resubmit.
func mergeFormRows(langs []model.Language, inputs []model.TranslationInput, fieldErrs store.FieldErrors) []TranslationFormRow {
	byCode := map[string]model.TranslationInput{}
	for _, in := range inputs {
		byCode[in.LanguageCode] = in
	}
	rows := make([]TranslationFormRow, 0, len(langs))
	for _, lang := range langs {
		row := TranslationFormRow{Language: lang}
		if in, ok := byCode[lang.Code]; ok {
			row.Name = in.Name
			row.Description = in.Description
		}
		if fieldErrs != nil {
			row.Errors = fieldErrs[lang.Code]
		}
		rows = append(rows, row)
	}
	return rows
}

// skippedSuffix appends a note when some translations were rejected while
// the operation itself succeeded.
func skippedSuffix(message string, fieldErrs store.FieldErrors) string {
	if len(fieldErrs) == 0 {
		return message
	}
	codes := make([]string, 0, len(fieldErrs))
	for code := range fieldErrs {
		codes = append(codes, code)
	}
	return message + " (skipped invalid translations: " + joinNames(codes, 5) + ")"
}
