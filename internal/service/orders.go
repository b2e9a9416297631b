// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/mileusna/useragent"

	"sofra/internal/model"
	"sofra/internal/store"
)

// Cart validation errors, surfaced to the customer as-is.
var (
	ErrEmptyCart    = errors.New("cart is empty")
	ErrCartTooLarge = errors.New("cart has too many items")
	ErrBadQuantity  = errors.New("invalid item quantity")
	ErrUnknownItem  = errors.New("unknown menu item")
)

// CartLine is one requested item in a submitted cart. Prices are never
// accepted from the client; they are re-read from the database.
type CartLine struct {
	MenuItemID int64 `json:"id"`
	Quantity   int   `json:"quantity"`
}

// PlaceOrderParams is a customer's order submission.
type PlaceOrderParams struct {
	CustomerName string
	Phone        string
	Note         string
	Lines        []CartLine
	UserAgent    string
}

// OrderWithItems bundles an order header with its lines for admin views.
type OrderWithItems struct {
	Order model.Order
	Items []model.OrderItem
}

// OrderService handles order submission and the admin order views.
type OrderService struct {
	db      *sql.DB
	queries *store.Queries
}

// NewOrderService creates a new OrderService.
func NewOrderService(db *sql.DB) *OrderService {
	return &OrderService{
		db:      db,
		queries: store.New(db),
	}
}

// PlaceOrder validates the cart, re-prices every line from the database
// and stores the order with its items in one transaction. Duplicate item
// lines are merged before pricing.
func (s *OrderService) PlaceOrder(ctx context.Context, p PlaceOrderParams) (model.Order, error) {
	name := model.SanitizeText(p.CustomerName)
	if name == "" {
		return model.Order{}, errors.New("customer name is required")
	}
	if len(name) > model.MaxNameLen {
		return model.Order{}, errors.New("customer name is too long")
	}
	phone := model.SanitizeText(p.Phone)
	if len(phone) > model.MaxNameLen {
		return model.Order{}, errors.New("phone number is too long")
	}
	note := model.SanitizeText(p.Note)
	if len(note) > model.MaxDescriptionLen {
		return model.Order{}, errors.New("note is too long")
	}

	lines, err := mergeCartLines(p.Lines)
	if err != nil {
		return model.Order{}, err
	}

	defaultLang, err := s.queries.GetDefaultLanguage(ctx)
	if err != nil {
		return model.Order{}, fmt.Errorf("default language: %w", err)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return model.Order{}, fmt.Errorf("begin order tx: %w", err)
	}
	defer tx.Rollback()
	qtx := s.queries.WithTx(tx)

	type pricedLine struct {
		itemID   int64
		name     string
		quantity int
		price    float64
	}
	priced := make([]pricedLine, 0, len(lines))
	total := 0.0
	for _, line := range lines {
		item, err := qtx.GetMenuItem(ctx, line.MenuItemID)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return model.Order{}, ErrUnknownItem
			}
			return model.Order{}, fmt.Errorf("load item %d: %w", line.MenuItemID, err)
		}
		resolved, err := qtx.GetLocalized(ctx, store.EntityMenuItem, item.ID, defaultLang.Code, defaultLang.Code)
		if err != nil {
			return model.Order{}, fmt.Errorf("resolve item %d: %w", item.ID, err)
		}
		priced = append(priced, pricedLine{
			itemID:   item.ID,
			name:     resolved.Name,
			quantity: line.Quantity,
			price:    item.Price,
		})
		total += item.Price * float64(line.Quantity)
	}

	order, err := qtx.CreateOrder(ctx, store.CreateOrderParams{
		OrderNo:      uuid.New().String(),
		CustomerName: name,
		Phone:        phone,
		Note:         note,
		Total:        total,
		Status:       model.OrderStatusNew,
		UserAgent:    SummarizeUserAgent(p.UserAgent),
		CreatedAt:    time.Now(),
	})
	if err != nil {
		return model.Order{}, fmt.Errorf("create order: %w", err)
	}

	for _, line := range priced {
		err := qtx.CreateOrderItem(ctx, store.CreateOrderItemParams{
			OrderID:    order.ID,
			MenuItemID: line.itemID,
			Name:       line.name,
			Quantity:   line.quantity,
			Price:      line.price,
		})
		if err != nil {
			return model.Order{}, fmt.Errorf("create order item: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return model.Order{}, fmt.Errorf("commit order: %w", err)
	}
	return order, nil
}

// mergeCartLines validates quantities and merges duplicate item ids.
func mergeCartLines(lines []CartLine) ([]CartLine, error) {
	if len(lines) == 0 {
		return nil, ErrEmptyCart
	}
	if len(lines) > model.MaxOrderItems {
		return nil, ErrCartTooLarge
	}
	merged := make([]CartLine, 0, len(lines))
	index := make(map[int64]int, len(lines))
	for _, line := range lines {
		if !model.ValidEntityID(line.MenuItemID) {
			return nil, ErrUnknownItem
		}
		if line.Quantity < 1 || line.Quantity > model.MaxItemQuantity {
			return nil, ErrBadQuantity
		}
		if i, ok := index[line.MenuItemID]; ok {
			merged[i].Quantity += line.Quantity
			if merged[i].Quantity > model.MaxItemQuantity {
				return nil, ErrBadQuantity
			}
			continue
		}
		index[line.MenuItemID] = len(merged)
		merged = append(merged, line)
	}
	if len(merged) > model.MaxOrderItems {
		return nil, ErrCartTooLarge
	}
	return merged, nil
}

// ListOrders returns a page of orders with their lines, newest first.
func (s *OrderService) ListOrders(ctx context.Context, limit, offset int64) ([]OrderWithItems, int64, error) {
	orders, err := s.queries.ListOrders(ctx, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("list orders: %w", err)
	}
	result := make([]OrderWithItems, 0, len(orders))
	for _, o := range orders {
		items, err := s.queries.ListOrderItems(ctx, o.ID)
		if err != nil {
			return nil, 0, fmt.Errorf("list order %d items: %w", o.ID, err)
		}
		result = append(result, OrderWithItems{Order: o, Items: items})
	}
	total, err := s.queries.CountOrders(ctx)
	if err != nil {
		return nil, 0, fmt.Errorf("count orders: %w", err)
	}
	return result, total, nil
}

// UpdateStatus moves an order through its lifecycle.
func (s *OrderService) UpdateStatus(ctx context.Context, id int64, status string) error {
	if !model.ValidOrderStatus(status) {
		return fmt.Errorf("invalid order status %q", status)
	}
	if _, err := s.queries.GetOrder(ctx, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return store.ErrNotFound
		}
		return fmt.Errorf("load order %d: %w", id, err)
	}
	if err := s.queries.UpdateOrderStatus(ctx, id, status); err != nil {
		return fmt.Errorf("update order %d: %w", id, err)
	}
	return nil
}

// SummarizeUserAgent reduces a raw User-Agent header to a short
// browser/OS/device summary for storage.
func SummarizeUserAgent(uaString string) string {
	if uaString == "" {
		return ""
	}
	ua := useragent.Parse(uaString)
	browser := ua.Name
	if browser == "" {
		browser = "Unknown"
	}
	os := ua.OS
	if os == "" {
		os = "Unknown"
	}
	device := "desktop"
	switch {
	case ua.Mobile:
		device = "mobile"
	case ua.Tablet:
		device = "tablet"
	case ua.Bot:
		device = "bot"
	}
	return fmt.Sprintf("%s / %s / %s", browser, os, device)
}
