// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package model

import "time"

// Language represents a menu language in the catalog.
type Language struct {
	ID         int64     `json:"id"`
	Code       string    `json:"code"`
	Name       string    `json:"name"`
	NativeName string    `json:"native_name"`
	IsDefault  bool      `json:"is_default"`
	IsActive   bool      `json:"is_active"`
	Direction  string    `json:"direction"`
	Position   int       `json:"position"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// Text direction constants.
const (
	DirectionLTR = "ltr"
	DirectionRTL = "rtl"
)

// IsRTL reports whether the language is written right-to-left.
func (l *Language) IsRTL() bool {
	return l.Direction == DirectionRTL
}

// CommonLanguage is a preset offered in the admin language form.
type CommonLanguage struct {
	Code       string
	Name       string
	NativeName string
	Direction  string
}

// CommonLanguages lists languages offered as presets in the admin UI.
var CommonLanguages = []CommonLanguage{
	{"en", "English", "English", DirectionLTR},
	{"ar", "Arabic", "العربية", DirectionRTL},
	{"ku", "Kurdish", "کوردی", DirectionRTL},
	{"tr", "Turkish", "Türkçe", DirectionLTR},
	{"fa", "Persian", "فارسی", DirectionRTL},
	{"de", "German", "Deutsch", DirectionLTR},
	{"fr", "French", "Français", DirectionLTR},
	{"es", "Spanish", "Español", DirectionLTR},
	{"ru", "Russian", "Русский", DirectionLTR},
	{"zh", "Chinese", "中文", DirectionLTR},
}
