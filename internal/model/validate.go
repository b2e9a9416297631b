// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package model

import (
	"math"
	"regexp"
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

// Field length limits for translations.
const (
	MaxNameLen        = 255
	MaxDescriptionLen = 1000
)

// MaxEntityID bounds numeric ids accepted from the outside.
const MaxEntityID = math.MaxInt32

var langCodeRe = regexp.MustCompile(`^[a-z]{2,5}$`)

// stripPolicy removes every HTML element and attribute. Output escaping
// still happens at the encoder; stored text is plain either way.
var stripPolicy = bluemonday.StrictPolicy()

// NormalizeLanguageCode lowercases and trims a language code.
func NormalizeLanguageCode(code string) string {
	return strings.ToLower(strings.TrimSpace(code))
}

// ValidLanguageCode reports whether code matches the catalog format
// (2 to 5 lowercase letters).
func ValidLanguageCode(code string) bool {
	return langCodeRe.MatchString(code)
}

// ValidEntityID reports whether id is usable as a row reference.
func ValidEntityID(id int64) bool {
	return id >= 1 && id <= MaxEntityID
}

// ValidPrice reports whether p is a storable, displayable price.
func ValidPrice(p float64) bool {
	if math.IsNaN(p) || math.IsInf(p, 0) {
		return false
	}
	return p >= PriceMin && p <= PriceMax
}

// SanitizeText strips embedded markup and trims whitespace.
func SanitizeText(s string) string {
	return strings.TrimSpace(stripPolicy.Sanitize(s))
}

// TranslationInput is one per-language form row before validation.
type TranslationInput struct {
	LanguageCode string
	Name         string
	Description  string
}

// Validate sanitizes the input in place and returns field errors keyed by
// field name. An input with errors is skipped by the caller, not fatal.
func (in *TranslationInput) Validate() map[string]string {
	errs := make(map[string]string)

	in.LanguageCode = NormalizeLanguageCode(in.LanguageCode)
	if !ValidLanguageCode(in.LanguageCode) {
		errs["language_code"] = "Language code must be 2-5 lowercase letters"
	}

	in.Name = SanitizeText(in.Name)
	if in.Name == "" {
		errs["name"] = "Name is required"
	} else if len(in.Name) > MaxNameLen {
		errs["name"] = "Name is too long"
	}

	in.Description = SanitizeText(in.Description)
	if len(in.Description) > MaxDescriptionLen {
		errs["description"] = "Description is too long"
	}

	return errs
}
