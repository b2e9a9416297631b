// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"database/sql"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/alexedwards/scs/v2"

	"sofra/internal/middleware"
	"sofra/internal/model"
	"sofra/internal/render"
	"sofra/internal/service"
	"sofra/internal/store"
)

// CategoriesHandler handles category management in admin.
type CategoriesHandler struct {
	db             *sql.DB
	queries        *store.Queries
	renderer       *render.Renderer
	sessionManager *scs.SessionManager
	eventService   *service.EventService
	menuService    *service.MenuService
}

// NewCategoriesHandler creates a new CategoriesHandler.
func NewCategoriesHandler(db *sql.DB, renderer *render.Renderer, sm *scs.SessionManager, ms *service.MenuService) *CategoriesHandler {
	return &CategoriesHandler{
		db:             db,
		queries:        store.New(db),
		renderer:       renderer,
		sessionManager: sm,
		eventService:   service.NewEventService(db),
		menuService:    ms,
	}
}

// CategoryRow is one category in the admin list with its parent resolved.
type CategoryRow struct {
	ID           int64
	Name         string
	Description  string
	MenuTypeName string
}

// CategoriesListData holds data for the categories list template.
type CategoriesListData struct {
	Categories []CategoryRow
	Total      int64
}

// CategoryFormData holds data for the category form template.
type CategoryFormData struct {
	EntityFormData
	MenuTypeID int64
	MenuTypes  []store.LocalizedRow
}

// List displays all categories with their menu type names resolved in the
// default language.
func (h *CategoriesHandler) List(w http.ResponseWriter, r *http.Request) {
	defaultLang, err := h.queries.GetDefaultLanguage(r.Context())
	if err != nil {
		logAndInternalError(w, "failed to get default language", "error", err)
		return
	}

	categories, err := h.queries.ListCategories(r.Context())
	if err != nil {
		logAndInternalError(w, "failed to list categories", "error", err)
		return
	}
	localized, err := h.queries.ListCategoriesLocalized(r.Context(), defaultLang.Code, defaultLang.Code, 0)
	if err != nil {
		logAndInternalError(w, "failed to resolve category names", "error", err)
		return
	}
	menuTypes, err := h.queries.ListLocalized(r.Context(), store.EntityMenuType, defaultLang.Code, defaultLang.Code)
	if err != nil {
		logAndInternalError(w, "failed to list menu types", "error", err)
		return
	}

	nameByID := make(map[int64]store.LocalizedRow, len(localized))
	for _, row := range localized {
		nameByID[row.ID] = row
	}
	typeNameByID := make(map[int64]string, len(menuTypes))
	for _, row := range menuTypes {
		typeNameByID[row.ID] = row.Name
	}

	rows := make([]CategoryRow, 0, len(categories))
	for _, c := range categories {
		resolved := nameByID[c.ID]
		rows = append(rows, CategoryRow{
			ID:           c.ID,
			Name:         resolved.Name,
			Description:  resolved.Description,
			MenuTypeName: typeNameByID[c.MenuTypeID],
		})
	}

	if err := h.renderer.Render(w, r, "admin/categories_list", render.TemplateData{
		Title: "Categories",
		User:  middleware.GetUser(r),
		Data:  CategoriesListData{Categories: rows, Total: int64(len(rows))},
	}); err != nil {
		logAndInternalError(w, "render error", "error", err)
	}
}

// NewForm displays the form to create a new category.
func (h *CategoriesHandler) NewForm(w http.ResponseWriter, r *http.Request) {
	data, ok := h.formData(w, r, 0)
	if !ok {
		return
	}
	h.renderForm(w, r, data, "New category")
}

// Create handles creating a new category with its translations.
func (h *CategoriesHandler) Create(w http.ResponseWriter, r *http.Request) {
	if !parseFormOrRedirect(w, r, h.renderer, redirectCategories+RouteSuffixNew) {
		return
	}

	menuTypeID, err := strconv.ParseInt(r.FormValue("menu_type_id"), 10, 64)
	if err != nil || !model.ValidEntityID(menuTypeID) {
		flashError(w, r, h.renderer, redirectCategories+RouteSuffixNew, "A menu type is required")
		return
	}

	langs, err := h.queries.ListLanguages(r.Context())
	if err != nil {
		logAndInternalError(w, "failed to list languages", "error", err)
		return
	}
	inputs := collectTranslationInputs(r, langs)
	position := parsePosition(r)

	category, fieldErrs, err := store.CreateCategoryTx(r.Context(), h.db, menuTypeID, position, inputs)
	if err != nil {
		switch {
		case errors.Is(err, store.ErrNotFound):
			flashError(w, r, h.renderer, redirectCategories+RouteSuffixNew, "Menu type not found")
		case errors.Is(err, store.ErrNoTranslations):
			flashError(w, r, h.renderer, redirectCategories+RouteSuffixNew, "At least one valid translation is required")
		default:
			slog.Error("failed to create category", "error", err)
			flashError(w, r, h.renderer, redirectCategories+RouteSuffixNew, "Error creating category")
		}
		return
	}

	slog.Info("category created", "category_id", category.ID, "menu_type_id", menuTypeID)
	userID := middleware.GetUserID(r)
	_ = h.eventService.LogMenuEvent(r.Context(), model.EventLevelInfo, "Category created", &userID, middleware.ClientIP(r), map[string]any{"category_id": category.ID, "menu_type_id": menuTypeID})
	h.menuService.Invalidate(r.Context())
	flashSuccess(w, r, h.renderer, redirectCategories, skippedSuffix("Category created", fieldErrs))
}

// EditForm displays the form to edit an existing category.
func (h *CategoriesHandler) EditForm(w http.ResponseWriter, r *http.Request) {
	id, ok := parseIDParam(r)
	if !ok {
		http.Error(w, "Invalid ID", http.StatusBadRequest)
		return
	}
	category, ok := requireEntityWithRedirect(w, r, h.renderer, redirectCategories, "category", id,
		func(id int64) (model.Category, error) { return h.queries.GetCategory(r.Context(), id) })
	if !ok {
		return
	}

	data, ok := h.formData(w, r, id)
	if !ok {
		return
	}
	data.ID = category.ID
	data.Position = category.Position
	data.MenuTypeID = category.MenuTypeID
	data.IsEdit = true
	h.renderForm(w, r, data, "Edit category")
}

// Update handles updating a category and upserting its translations.
func (h *CategoriesHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := parseIDParam(r)
	if !ok {
		http.Error(w, "Invalid ID", http.StatusBadRequest)
		return
	}
	if !parseFormOrRedirect(w, r, h.renderer, redirectCategories) {
		return
	}

	menuTypeID, err := strconv.ParseInt(r.FormValue("menu_type_id"), 10, 64)
	if err != nil || !model.ValidEntityID(menuTypeID) {
		flashError(w, r, h.renderer, redirectCategories, "A menu type is required")
		return
	}

	langs, err := h.queries.ListLanguages(r.Context())
	if err != nil {
		logAndInternalError(w, "failed to list languages", "error", err)
		return
	}
	inputs := collectTranslationInputs(r, langs)
	position := parsePosition(r)

	fieldErrs, err := store.UpdateCategoryTx(r.Context(), h.db, id, menuTypeID, position, inputs)
	if err != nil {
		switch {
		case errors.Is(err, store.ErrNotFound):
			flashError(w, r, h.renderer, redirectCategories, "Category or menu type not found")
		case errors.Is(err, store.ErrNoTranslations):
			flashError(w, r, h.renderer, redirectCategories, "At least one valid translation is required")
		default:
			slog.Error("failed to update category", "error", err, "category_id", id)
			flashError(w, r, h.renderer, redirectCategories, "Error updating category")
		}
		return
	}

	slog.Info("category updated", "category_id", id)
	h.menuService.Invalidate(r.Context())
	flashSuccess(w, r, h.renderer, redirectCategories, skippedSuffix("Category updated", fieldErrs))
}

// Delete removes a category, its items, their translations and image files.
func (h *CategoriesHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := parseIDParam(r)
	if !ok {
		http.Error(w, "Invalid ID", http.StatusBadRequest)
		return
	}

	result, err := store.DeleteCategoryTx(r.Context(), h.db, id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			flashError(w, r, h.renderer, redirectCategories, "Category not found")
			return
		}
		slog.Error("failed to delete category", "error", err, "category_id", id)
		flashError(w, r, h.renderer, redirectCategories, "Error deleting category")
		return
	}

	h.menuService.DeleteImages(result.Images)

	userID := middleware.GetUserID(r)
	_ = h.eventService.LogMenuEvent(r.Context(), model.EventLevelInfo, "Category deleted", &userID, middleware.ClientIP(r), map[string]any{
		"category_id":  id,
		"names":        joinNames(result.Names, 5),
		"items":        result.Items,
		"translations": result.Translations,
		"images":       len(result.Images),
	})
	h.menuService.Invalidate(r.Context())
	flashSuccess(w, r, h.renderer, redirectCategories, "Category deleted with "+
		strconv.FormatInt(result.Items, 10)+" items")
}

// formData assembles the category form with the menu type options and
// existing translations.
func (h *CategoriesHandler) formData(w http.ResponseWriter, r *http.Request, categoryID int64) (CategoryFormData, bool) {
	defaultLang, err := h.queries.GetDefaultLanguage(r.Context())
	if err != nil {
		logAndInternalError(w, "failed to get default language", "error", err)
		return CategoryFormData{}, false
	}
	menuTypes, err := h.queries.ListLocalized(r.Context(), store.EntityMenuType, defaultLang.Code, defaultLang.Code)
	if err != nil {
		logAndInternalError(w, "failed to list menu types", "error", err)
		return CategoryFormData{}, false
	}

	langs, err := h.queries.ListLanguages(r.Context())
	if err != nil {
		logAndInternalError(w, "failed to list languages", "error", err)
		return CategoryFormData{}, false
	}

	existing := map[string]model.Translation{}
	if categoryID > 0 {
		translations, err := h.queries.ListTranslations(r.Context(), store.EntityCategory, categoryID)
		if err != nil {
			logAndInternalError(w, "failed to list translations", "error", err)
			return CategoryFormData{}, false
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

	return CategoryFormData{
		EntityFormData: EntityFormData{Translations: rows},
		MenuTypes:      menuTypes,
	}, true
}

func (h *CategoriesHandler) renderForm(w http.ResponseWriter, r *http.Request, data CategoryFormData, title string) {
	if err := h.renderer.Render(w, r, "admin/categories_form", render.TemplateData{
		Title: title,
		User:  middleware.GetUser(r),
		Data:  data,
	}); err != nil {
		logAndInternalError(w, "render error", "error", err)
	}
}
