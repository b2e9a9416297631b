// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package service

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"sofra/internal/cache"
	"sofra/internal/i18n"
	"sofra/internal/imaging"
	"sofra/internal/model"
	"sofra/internal/store"
)

// LanguageOption describes one selectable language in the public response.
type LanguageOption struct {
	Code       string `json:"code"`
	Name       string `json:"name"`
	NativeName string `json:"native_name"`
	Direction  string `json:"direction"`
	IsDefault  bool   `json:"is_default"`
}

// LanguageMeta reports which language was served versus requested.
type LanguageMeta struct {
	Current   string           `json:"current"`
	Requested string           `json:"requested"`
	RTL       bool             `json:"rtl"`
	Available []LanguageOption `json:"available"`
}

// MenuFilters echoes the filters applied to the listing.
type MenuFilters struct {
	MenuType int64  `json:"menu_type"`
	Category string `json:"category"`
}

// MenuStats carries catalog counts for the public response.
type MenuStats struct {
	MenuTypes     int64 `json:"menu_types"`
	Categories    int64 `json:"categories"`
	Items         int64 `json:"items"`
	MissingImages int64 `json:"missing_images"`
}

// MenuEntry is one menu item as served by the public API. Image stays in
// the payload even when its file is gone so the listing never shrinks
// behind the customer's back; ImageMissing flags it for the frontend.
type MenuEntry struct {
	ID           int64     `json:"id"`
	Name         string    `json:"name"`
	Description  string    `json:"description"`
	Category     string    `json:"category"`
	MenuType     string    `json:"menu_type"`
	Price        string    `json:"price"`
	Image        *string   `json:"image"`
	ImageMissing bool      `json:"image_missing"`
	CreatedAt    time.Time `json:"created_at"`
}

// MenuResponse is the full public menu payload.
type MenuResponse struct {
	Success     bool              `json:"success"`
	Language    LanguageMeta      `json:"language"`
	UILabels    map[string]string `json:"ui_labels"`
	Filters     MenuFilters       `json:"filters"`
	Stats       MenuStats         `json:"stats"`
	Categories  []string          `json:"categories"`
	Data        []MenuEntry       `json:"data"`
	GeneratedAt time.Time         `json:"generated_at"`
}

// MenuRequest carries the resolved language and listing filters.
type MenuRequest struct {
	Language  string // active language the response is rendered in
	Requested string // language the client asked for, may differ on fallback
	RTL       bool
	Filter    store.ItemFilter
}

// MenuService assembles the public menu response with translation
// fallback, price formatting and response caching.
type MenuService struct {
	db      *sql.DB
	queries *store.Queries
	images  *imaging.Processor
	manager *cache.Manager
	cached  *cache.TypedCache[MenuResponse]
}

// NewMenuService creates a new MenuService. If manager is nil the service
// rebuilds every response from the database.
func NewMenuService(db *sql.DB, images *imaging.Processor, manager *cache.Manager) *MenuService {
	s := &MenuService{
		db:      db,
		queries: store.New(db),
		images:  images,
		manager: manager,
	}
	if manager != nil {
		s.cached = cache.NewTypedCache[MenuResponse](manager.Backend(), cache.MenuTTL)
	}
	return s
}

// FormatPrice renders a price for display. Zero is served as "Free"; a
// price outside the accepted range means bad data and is masked rather
// than shown.
func FormatPrice(price float64) string {
	if !model.ValidPrice(price) {
		return "Price not available"
	}
	if price == 0 {
		return "Free"
	}
	return fmt.Sprintf("IQD %.2f", price)
}

// BuildMenu returns the public menu response for req, serving from cache
// when a fresh entry exists. The cache key ignores Requested because the
// served content depends only on the active language and the filters.
func (s *MenuService) BuildMenu(ctx context.Context, req MenuRequest) (MenuResponse, error) {
	load := func(ctx context.Context) (MenuResponse, error) {
		return s.buildMenu(ctx, req)
	}

	var resp MenuResponse
	var err error
	if s.cached != nil {
		key := cache.MenuKey(req.Language, req.Filter.MenuTypeID, req.Filter.CategoryName)
		resp, err = s.cached.GetOrSet(ctx, key, load)
	} else {
		resp, err = load(ctx)
	}
	if err != nil {
		return MenuResponse{}, err
	}
	resp.Language.Requested = req.Requested
	return resp, nil
}

func (s *MenuService) buildMenu(ctx context.Context, req MenuRequest) (MenuResponse, error) {
	defaultLang, err := s.queries.GetDefaultLanguage(ctx)
	if err != nil {
		return MenuResponse{}, fmt.Errorf("default language: %w", err)
	}

	langs, err := s.queries.ListActiveLanguages(ctx)
	if err != nil {
		return MenuResponse{}, fmt.Errorf("list languages: %w", err)
	}
	available := make([]LanguageOption, 0, len(langs))
	for _, l := range langs {
		available = append(available, LanguageOption{
			Code:       l.Code,
			Name:       l.Name,
			NativeName: l.NativeName,
			Direction:  l.Direction,
			IsDefault:  l.IsDefault,
		})
	}

	menuTypeNames, err := s.queries.ListLocalized(ctx, store.EntityMenuType, req.Language, defaultLang.Code)
	if err != nil {
		return MenuResponse{}, fmt.Errorf("list menu types: %w", err)
	}
	typeNameByID := make(map[int64]string, len(menuTypeNames))
	for _, t := range menuTypeNames {
		typeNameByID[t.ID] = t.Name
	}

	categories, err := s.queries.ListCategoriesLocalized(ctx, req.Language, defaultLang.Code, req.Filter.MenuTypeID)
	if err != nil {
		return MenuResponse{}, fmt.Errorf("list categories: %w", err)
	}
	categoryNames := make([]string, 0, len(categories))
	for _, c := range categories {
		categoryNames = append(categoryNames, c.Name)
	}

	items, err := s.queries.ListMenuItemsLocalized(ctx, req.Language, defaultLang.Code, req.Filter)
	if err != nil {
		return MenuResponse{}, fmt.Errorf("list items: %w", err)
	}

	stats, err := s.countStats(ctx)
	if err != nil {
		return MenuResponse{}, err
	}

	data := make([]MenuEntry, 0, len(items))
	for _, it := range items {
		entry := MenuEntry{
			ID:          it.ID,
			Name:        it.Name,
			Description: it.Description,
			Category:    it.CategoryName,
			MenuType:    typeNameByID[it.MenuTypeID],
			Price:       FormatPrice(it.Price),
			CreatedAt:   it.CreatedAt,
		}
		if it.Image != "" {
			img := it.Image
			entry.Image = &img
			if s.images != nil && !s.images.Exists(it.Image) {
				entry.ImageMissing = true
				stats.MissingImages++
			}
		}
		data = append(data, entry)
	}

	return MenuResponse{
		Success: true,
		Language: LanguageMeta{
			Current:   req.Language,
			Requested: req.Requested,
			RTL:       req.RTL,
			Available: available,
		},
		UILabels:    i18n.Labels(req.Language),
		Filters:     MenuFilters{MenuType: req.Filter.MenuTypeID, Category: req.Filter.CategoryName},
		Stats:       stats,
		Categories:  categoryNames,
		Data:        data,
		GeneratedAt: time.Now().UTC(),
	}, nil
}

func (s *MenuService) countStats(ctx context.Context) (MenuStats, error) {
	menuTypes, err := s.queries.CountMenuTypes(ctx)
	if err != nil {
		return MenuStats{}, fmt.Errorf("count menu types: %w", err)
	}
	categories, err := s.queries.CountCategories(ctx)
	if err != nil {
		return MenuStats{}, fmt.Errorf("count categories: %w", err)
	}
	items, err := s.queries.CountMenuItems(ctx)
	if err != nil {
		return MenuStats{}, fmt.Errorf("count items: %w", err)
	}
	return MenuStats{MenuTypes: menuTypes, Categories: categories, Items: items}, nil
}

// Invalidate drops every cached menu response. Call after any mutation
// that changes what the public API serves.
func (s *MenuService) Invalidate(ctx context.Context) {
	if s.manager != nil {
		s.manager.InvalidateMenu(ctx)
	}
}

// DeleteImages removes image files left behind by a cascade delete.
// Failures are logged, never fatal; a later cleanup pass catches strays.
func (s *MenuService) DeleteImages(filenames []string) {
	if s.images == nil {
		return
	}
	for _, name := range filenames {
		if err := s.images.Delete(name); err != nil {
			slog.Warn("failed to delete image file", "file", name, "error", err)
		}
	}
}

// CleanupMissingImages nulls the image field of every item whose file no
// longer exists on disk and returns how many rows were healed.
func (s *MenuService) CleanupMissingImages(ctx context.Context) (int, error) {
	if s.images == nil {
		return 0, nil
	}
	rows, err := s.queries.ListMenuItemImages(ctx)
	if err != nil {
		return 0, fmt.Errorf("list item images: %w", err)
	}
	healed := 0
	now := time.Now()
	for _, row := range rows {
		if s.images.Exists(row.Image) {
			continue
		}
		if err := s.queries.ClearMenuItemImage(ctx, row.ID, now); err != nil {
			return healed, fmt.Errorf("clear image for item %d: %w", row.ID, err)
		}
		healed++
	}
	if healed > 0 {
		s.Invalidate(ctx)
	}
	return healed, nil
}
