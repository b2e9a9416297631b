// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package model

import "time"

// MenuType is the top level of the menu hierarchy (e.g. food, drinks).
type MenuType struct {
	ID        int64     `json:"id"`
	Position  int       `json:"position"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Category groups menu items under a menu type.
type Category struct {
	ID         int64     `json:"id"`
	MenuTypeID int64     `json:"menu_type_id"`
	Position   int       `json:"position"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// MenuItem is a sellable dish or drink within a category.
type MenuItem struct {
	ID         int64     `json:"id"`
	CategoryID int64     `json:"category_id"`
	Price      float64   `json:"price"`
	Image      string    `json:"image"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// Translation is one localized name/description pair for a menu entity.
// The same shape backs menu type, category and item translation tables.
type Translation struct {
	ID           int64     `json:"id"`
	EntityID     int64     `json:"entity_id"`
	LanguageCode string    `json:"language_code"`
	Name         string    `json:"name"`
	Description  string    `json:"description"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// Placeholder names served when neither the requested nor the default
// language has a translation for an entity.
const (
	PlaceholderMenuType = "Untitled menu"
	PlaceholderCategory = "Untitled category"
	PlaceholderItem     = "Untitled item"
)

// Price bounds for menu items. Values outside the range are stored as-is
// but rendered as "Price not available".
const (
	PriceMin = 0.0
	PriceMax = 999999.99
)
