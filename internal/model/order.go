// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package model

import "time"

// Order is a submitted cart.
type Order struct {
	ID           int64     `json:"id"`
	OrderNo      string    `json:"order_no"`
	CustomerName string    `json:"customer_name"`
	Phone        string    `json:"phone"`
	Note         string    `json:"note"`
	Total        float64   `json:"total"`
	Status       string    `json:"status"`
	UserAgent    string    `json:"-"`
	CreatedAt    time.Time `json:"created_at"`
}

// OrderItem is one cart line, priced server-side at submission time.
type OrderItem struct {
	ID         int64   `json:"id"`
	OrderID    int64   `json:"order_id"`
	MenuItemID int64   `json:"menu_item_id"`
	Name       string  `json:"name"`
	Quantity   int     `json:"quantity"`
	Price      float64 `json:"price"`
}

// Order statuses.
const (
	OrderStatusNew       = "new"
	OrderStatusConfirmed = "confirmed"
	OrderStatusDone      = "done"
	OrderStatusCancelled = "cancelled"
)

// ValidOrderStatus reports whether s is a known status.
func ValidOrderStatus(s string) bool {
	switch s {
	case OrderStatusNew, OrderStatusConfirmed, OrderStatusDone, OrderStatusCancelled:
		return true
	}
	return false
}

// Cart limits.
const (
	MaxOrderItems   = 50
	MaxItemQuantity = 99
)
