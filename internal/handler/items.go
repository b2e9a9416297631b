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

	"sofra/internal/imaging"
	"sofra/internal/middleware"
	"sofra/internal/model"
	"sofra/internal/render"
	"sofra/internal/service"
	"sofra/internal/store"
)

// ItemsHandler handles menu item management in admin.
type ItemsHandler struct {
	db             *sql.DB
	queries        *store.Queries
	renderer       *render.Renderer
	sessionManager *scs.SessionManager
	eventService   *service.EventService
	menuService    *service.MenuService
	images         *imaging.Processor
	maxUploadSize  int64
}

// NewItemsHandler creates a new ItemsHandler.
func NewItemsHandler(db *sql.DB, renderer *render.Renderer, sm *scs.SessionManager, ms *service.MenuService, images *imaging.Processor, maxUploadSize int64) *ItemsHandler {
	return &ItemsHandler{
		db:             db,
		queries:        store.New(db),
		renderer:       renderer,
		sessionManager: sm,
		eventService:   service.NewEventService(db),
		menuService:    ms,
		images:         images,
		maxUploadSize:  maxUploadSize,
	}
}

// ItemRow is one menu item in the admin list.
type ItemRow struct {
	ID           int64
	Name         string
	CategoryName string
	Price        string
	Image        string
	ImageMissing bool
}

// ItemsListData holds data for the items list template.
type ItemsListData struct {
	Items []ItemRow
	Total int64
}

// ItemFormData holds data for the item form template.
type ItemFormData struct {
	EntityFormData
	CategoryID int64
	Price      float64
	Image      string
	Categories []store.LocalizedRow
}

// List displays all menu items with names, categories and prices resolved
// in the default language.
func (h *ItemsHandler) List(w http.ResponseWriter, r *http.Request) {
	defaultLang, err := h.queries.GetDefaultLanguage(r.Context())
	if err != nil {
		logAndInternalError(w, "failed to get default language", "error", err)
		return
	}
	rows, err := h.queries.ListMenuItemsLocalized(r.Context(), defaultLang.Code, defaultLang.Code, store.ItemFilter{})
	if err != nil {
		logAndInternalError(w, "failed to list items", "error", err)
		return
	}

	items := make([]ItemRow, 0, len(rows))
	for _, row := range rows {
		item := ItemRow{
			ID:           row.ID,
			Name:         row.Name,
			CategoryName: row.CategoryName,
			Price:        service.FormatPrice(row.Price),
			Image:        row.Image,
		}
		if row.Image != "" && !h.images.Exists(row.Image) {
			item.ImageMissing = true
		}
		items = append(items, item)
	}

	if err := h.renderer.Render(w, r, "admin/items_list", render.TemplateData{
		Title: "Menu items",
		User:  middleware.GetUser(r),
		Data:  ItemsListData{Items: items, Total: int64(len(items))},
	}); err != nil {
		logAndInternalError(w, "render error", "error", err)
	}
}

// NewForm displays the form to create a new menu item.
func (h *ItemsHandler) NewForm(w http.ResponseWriter, r *http.Request) {
	data, ok := h.formData(w, r, 0)
	if !ok {
		return
	}
	h.renderForm(w, r, data, "New menu item")
}

// Create handles creating a new menu item, optionally with an image.
func (h *ItemsHandler) Create(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(h.maxUploadSize); err != nil {
		slog.Error("failed to parse multipart form", "error", err)
		flashError(w, r, h.renderer, redirectItems+RouteSuffixNew, "Upload too large or invalid form")
		return
	}

	categoryID, err := strconv.ParseInt(r.FormValue("category_id"), 10, 64)
	if err != nil || !model.ValidEntityID(categoryID) {
		flashError(w, r, h.renderer, redirectItems+RouteSuffixNew, "A category is required")
		return
	}
	price, ok := parsePrice(r)
	if !ok {
		flashError(w, r, h.renderer, redirectItems+RouteSuffixNew, "Price must be between 0 and 999999.99")
		return
	}

	langs, err := h.queries.ListLanguages(r.Context())
	if err != nil {
		logAndInternalError(w, "failed to list languages", "error", err)
		return
	}
	inputs := collectTranslationInputs(r, langs)

	image, ok := h.processUpload(w, r, redirectItems+RouteSuffixNew)
	if !ok {
		return
	}

	item, fieldErrs, err := store.CreateMenuItemTx(r.Context(), h.db, store.MenuItemTxParams{
		CategoryID:   categoryID,
		Price:        price,
		Image:        image,
		Translations: inputs,
	})
	if err != nil {
		// The row never landed; don't leave the file orphaned.
		if image != "" {
			h.menuService.DeleteImages([]string{image})
		}
		switch {
		case errors.Is(err, store.ErrNotFound):
			flashError(w, r, h.renderer, redirectItems+RouteSuffixNew, "Category not found")
		case errors.Is(err, store.ErrNoTranslations):
			flashError(w, r, h.renderer, redirectItems+RouteSuffixNew, "At least one valid translation is required")
		default:
			slog.Error("failed to create menu item", "error", err)
			flashError(w, r, h.renderer, redirectItems+RouteSuffixNew, "Error creating menu item")
		}
		return
	}

	slog.Info("menu item created", "item_id", item.ID, "category_id", categoryID)
	userID := middleware.GetUserID(r)
	_ = h.eventService.LogMenuEvent(r.Context(), model.EventLevelInfo, "Menu item created", &userID, middleware.ClientIP(r), map[string]any{"item_id": item.ID, "category_id": categoryID, "price": price})
	h.menuService.Invalidate(r.Context())
	flashSuccess(w, r, h.renderer, redirectItems, skippedSuffix("Menu item created", fieldErrs))
}

// EditForm displays the form to edit an existing menu item.
func (h *ItemsHandler) EditForm(w http.ResponseWriter, r *http.Request) {
	id, ok := parseIDParam(r)
	if !ok {
		http.Error(w, "Invalid ID", http.StatusBadRequest)
		return
	}
	item, ok := requireEntityWithRedirect(w, r, h.renderer, redirectItems, "menu item", id,
		func(id int64) (model.MenuItem, error) { return h.queries.GetMenuItem(r.Context(), id) })
	if !ok {
		return
	}

	data, ok := h.formData(w, r, id)
	if !ok {
		return
	}
	data.ID = item.ID
	data.CategoryID = item.CategoryID
	data.Price = item.Price
	data.Image = item.Image
	data.IsEdit = true
	h.renderForm(w, r, data, "Edit menu item")
}

// Update handles updating a menu item, optionally replacing or removing
// its image.
func (h *ItemsHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := parseIDParam(r)
	if !ok {
		http.Error(w, "Invalid ID", http.StatusBadRequest)
		return
	}
	if err := r.ParseMultipartForm(h.maxUploadSize); err != nil {
		slog.Error("failed to parse multipart form", "error", err)
		flashError(w, r, h.renderer, redirectItems, "Upload too large or invalid form")
		return
	}

	item, ok := requireEntityWithRedirect(w, r, h.renderer, redirectItems, "menu item", id,
		func(id int64) (model.MenuItem, error) { return h.queries.GetMenuItem(r.Context(), id) })
	if !ok {
		return
	}

	categoryID, err := strconv.ParseInt(r.FormValue("category_id"), 10, 64)
	if err != nil || !model.ValidEntityID(categoryID) {
		flashError(w, r, h.renderer, redirectItems, "A category is required")
		return
	}
	price, ok := parsePrice(r)
	if !ok {
		flashError(w, r, h.renderer, redirectItems, "Price must be between 0 and 999999.99")
		return
	}

	langs, err := h.queries.ListLanguages(r.Context())
	if err != nil {
		logAndInternalError(w, "failed to list languages", "error", err)
		return
	}
	inputs := collectTranslationInputs(r, langs)

	newImage, ok := h.processUpload(w, r, redirectItems)
	if !ok {
		return
	}

	image := item.Image
	removeOld := false
	switch {
	case newImage != "":
		image = newImage
		removeOld = item.Image != ""
	case r.FormValue("remove_image") == "1":
		image = ""
		removeOld = item.Image != ""
	}

	fieldErrs, err := store.UpdateMenuItemTx(r.Context(), h.db, store.MenuItemTxParams{
		ID:           id,
		CategoryID:   categoryID,
		Price:        price,
		Image:        image,
		Translations: inputs,
	})
	if err != nil {
		if newImage != "" {
			h.menuService.DeleteImages([]string{newImage})
		}
		switch {
		case errors.Is(err, store.ErrNotFound):
			flashError(w, r, h.renderer, redirectItems, "Menu item or category not found")
		case errors.Is(err, store.ErrNoTranslations):
			flashError(w, r, h.renderer, redirectItems, "At least one valid translation is required")
		default:
			slog.Error("failed to update menu item", "error", err, "item_id", id)
			flashError(w, r, h.renderer, redirectItems, "Error updating menu item")
		}
		return
	}

	// Old file goes only after the new reference is committed.
	if removeOld {
		h.menuService.DeleteImages([]string{item.Image})
	}

	slog.Info("menu item updated", "item_id", id)
	h.menuService.Invalidate(r.Context())
	flashSuccess(w, r, h.renderer, redirectItems, skippedSuffix("Menu item updated", fieldErrs))
}

// Delete removes a menu item, its translations and its image file.
func (h *ItemsHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := parseIDParam(r)
	if !ok {
		http.Error(w, "Invalid ID", http.StatusBadRequest)
		return
	}

	result, err := store.DeleteMenuItemTx(r.Context(), h.db, id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			flashError(w, r, h.renderer, redirectItems, "Menu item not found")
			return
		}
		slog.Error("failed to delete menu item", "error", err, "item_id", id)
		flashError(w, r, h.renderer, redirectItems, "Error deleting menu item")
		return
	}

	h.menuService.DeleteImages(result.Images)

	userID := middleware.GetUserID(r)
	_ = h.eventService.LogMenuEvent(r.Context(), model.EventLevelInfo, "Menu item deleted", &userID, middleware.ClientIP(r), map[string]any{
		"item_id":      id,
		"names":        joinNames(result.Names, 5),
		"translations": result.Translations,
		"images":       len(result.Images),
	})
	h.menuService.Invalidate(r.Context())
	flashSuccess(w, r, h.renderer, redirectItems, "Menu item deleted")
}

// processUpload reads the optional image field and stores the processed
// file. Returns the stored filename, or "" when no file was submitted.
func (h *ItemsHandler) processUpload(w http.ResponseWriter, r *http.Request, redirectURL string) (string, bool) {
	file, header, err := r.FormFile("image")
	if err != nil {
		if errors.Is(err, http.ErrMissingFile) {
			return "", true
		}
		slog.Error("failed to read image upload", "error", err)
		flashError(w, r, h.renderer, redirectURL, "Error reading uploaded image")
		return "", false
	}
	defer file.Close()

	filename, err := h.images.Process(file, header.Filename)
	if err != nil {
		slog.Warn("image processing failed", "file", header.Filename, "error", err)
		flashError(w, r, h.renderer, redirectURL, "Unsupported or corrupt image file")
		return "", false
	}
	return filename, true
}

// parsePrice reads and validates the price form field.
func parsePrice(r *http.Request) (float64, bool) {
	price, err := strconv.ParseFloat(strings.TrimSpace(r.FormValue("price")), 64)
	if err != nil || !model.ValidPrice(price) {
		return 0, false
	}
	return price, true
}

// formData assembles the item form with category options and existing
// translations.
func (h *ItemsHandler) formData(w http.ResponseWriter, r *http.Request, itemID int64) (ItemFormData, bool) {
	defaultLang, err := h.queries.GetDefaultLanguage(r.Context())
	if err != nil {
		logAndInternalError(w, "failed to get default language", "error", err)
		return ItemFormData{}, false
	}
	categories, err := h.queries.ListCategoriesLocalized(r.Context(), defaultLang.Code, defaultLang.Code, 0)
	if err != nil {
		logAndInternalError(w, "failed to list categories", "error", err)
		return ItemFormData{}, false
	}
	langs, err := h.queries.ListLanguages(r.Context())
	if err != nil {
		logAndInternalError(w, "failed to list languages", "error", err)
		return ItemFormData{}, false
	}

	existing := map[string]model.Translation{}
	if itemID > 0 {
		translations, err := h.queries.ListTranslations(r.Context(), store.EntityMenuItem, itemID)
		if err != nil {
			logAndInternalError(w, "failed to list translations", "error", err)
			return ItemFormData{}, false
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

	return ItemFormData{
		EntityFormData: EntityFormData{Translations: rows},
		Categories:     categories,
	}, true
}

func (h *ItemsHandler) renderForm(w http.ResponseWriter, r *http.Request, data ItemFormData, title string) {
	if err := h.renderer.Render(w, r, "admin/items_form", render.TemplateData{
		Title: title,
		User:  middleware.GetUser(r),
		Data:  data,
	}); err != nil {
		logAndInternalError(w, "render error", "error", err)
	}
}
