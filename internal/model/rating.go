// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package model

import "time"

// Rating is a customer review submitted from the public site.
type Rating struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	Phone     string    `json:"phone"`
	Stars     int       `json:"stars"`
	Comment   string    `json:"comment"`
	UserAgent string    `json:"-"`
	CreatedAt time.Time `json:"created_at"`
}

// Star bounds.
const (
	MinStars = 1
	MaxStars = 5
)

// ValidStars reports whether n is within the rating scale.
func ValidStars(n int) bool {
	return n >= MinStars && n <= MaxStars
}
