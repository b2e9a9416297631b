// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"sofra/internal/model"
)

// parseIDParam extracts and validates the {id} route parameter.
func parseIDParam(r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || !model.ValidEntityID(id) {
		return 0, false
	}
	return id, true
}

// parsePage extracts the page query parameter, defaulting to 1.
func parsePage(r *http.Request) int {
	page, err := strconv.Atoi(r.URL.Query().Get("page"))
	if err != nil || page < 1 {
		return 1
	}
	return page
}

// pageOffset converts a 1-based page into a row offset.
func pageOffset(page, perPage int) int64 {
	return int64(page-1) * int64(perPage)
}

// collectTranslationInputs reads the per-language translation form fields
// (name_{code}, description_{code}) for every language in the catalog.
// Languages with an empty name are skipped entirely so a partially filled
// form saves only the rows the admin actually typed.
func collectTranslationInputs(r *http.Request, langs []model.Language) []model.TranslationInput {
	var inputs []model.TranslationInput
	for _, lang := range langs {
		name := strings.TrimSpace(r.FormValue("name_" + lang.Code))
		description := strings.TrimSpace(r.FormValue("description_" + lang.Code))
		if name == "" && description == "" {
			continue
		}
		inputs = append(inputs, model.TranslationInput{
			LanguageCode: lang.Code,
			Name:         name,
			Description:  description,
		})
	}
	return inputs
}

// joinNames renders a short, comma-separated preview of entity names for
// flash messages and audit entries.
func joinNames(names []string, max int) string {
	if len(names) == 0 {
		return ""
	}
	if len(names) > max {
		return strings.Join(names[:max], ", ") + ", ..."
	}
	return strings.Join(names, ", ")
}
