// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import "fmt"

// AdminPagination holds pagination data for admin list templates.
type AdminPagination struct {
	CurrentPage int
	TotalPages  int
	TotalItems  int64
	PerPage     int
	HasPrev     bool
	HasNext     bool
	PrevURL     string
	NextURL     string
}

// BuildAdminPagination creates pagination data for admin templates.
// baseURL is the path without query string (e.g., "/admin/orders").
func BuildAdminPagination(currentPage int, totalItems int64, perPage int, baseURL string) AdminPagination {
	totalPages := int((totalItems + int64(perPage) - 1) / int64(perPage))
	if totalPages < 1 {
		totalPages = 1
	}
	if currentPage > totalPages {
		currentPage = totalPages
	}

	p := AdminPagination{
		CurrentPage: currentPage,
		TotalPages:  totalPages,
		TotalItems:  totalItems,
		PerPage:     perPage,
		HasPrev:     currentPage > 1,
		HasNext:     currentPage < totalPages,
	}
	if p.HasPrev {
		p.PrevURL = fmt.Sprintf("%s?page=%d", baseURL, currentPage-1)
	}
	if p.HasNext {
		p.NextURL = fmt.Sprintf("%s?page=%d", baseURL, currentPage+1)
	}
	return p
}
