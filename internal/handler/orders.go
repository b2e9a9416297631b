// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"database/sql"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/alexedwards/scs/v2"

	"sofra/internal/middleware"
	"sofra/internal/model"
	"sofra/internal/render"
	"sofra/internal/service"
	"sofra/internal/store"
)

// maxOrderBodySize bounds the public order submission payload.
const maxOrderBodySize = 64 * 1024

// OrdersHandler handles public order submission and the admin order views.
type OrdersHandler struct {
	renderer       *render.Renderer
	sessionManager *scs.SessionManager
	orderService   *service.OrderService
	eventService   *service.EventService
}

// NewOrdersHandler creates a new OrdersHandler.
func NewOrdersHandler(db *sql.DB, renderer *render.Renderer, sm *scs.SessionManager) *OrdersHandler {
	return &OrdersHandler{
		renderer:       renderer,
		sessionManager: sm,
		orderService:   service.NewOrderService(db),
		eventService:   service.NewEventService(db),
	}
}

// orderRequest is the public JSON order submission body.
type orderRequest struct {
	CustomerName string             `json:"customer_name"`
	Phone        string             `json:"phone"`
	Note         string             `json:"note"`
	Items        []service.CartLine `json:"items"`
}

// Submit handles POST /order. Prices come from the database, never from
// the client.
func (h *OrdersHandler) Submit(w http.ResponseWriter, r *http.Request) {
	var req orderRequest
	r.Body = http.MaxBytesReader(w, r.Body, maxOrderBodySize)
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSONError(w, http.StatusBadRequest, "Invalid request body", "bad_request")
		return
	}

	order, err := h.orderService.PlaceOrder(r.Context(), service.PlaceOrderParams{
		CustomerName: req.CustomerName,
		Phone:        req.Phone,
		Note:         req.Note,
		Lines:        req.Items,
		UserAgent:    r.UserAgent(),
	})
	if err != nil {
		switch {
		case errors.Is(err, service.ErrEmptyCart),
			errors.Is(err, service.ErrCartTooLarge),
			errors.Is(err, service.ErrBadQuantity),
			errors.Is(err, service.ErrUnknownItem):
			writeJSONError(w, http.StatusBadRequest, err.Error(), "bad_cart")
		default:
			slog.Error("order submission failed", "error", err)
			writeJSONError(w, http.StatusServiceUnavailable, "Service temporarily unavailable", "storage_error")
		}
		return
	}

	_ = h.eventService.LogOrderEvent(r.Context(), model.EventLevelInfo, "Order placed", nil, middleware.ClientIP(r), map[string]any{
		"order_no": order.OrderNo,
		"total":    order.Total,
	})

	writeJSONSuccess(w, map[string]any{
		"order_no": order.OrderNo,
		"total":    order.Total,
		"status":   order.Status,
	})
}

// OrdersListData holds data for the admin orders template.
type OrdersListData struct {
	Orders     []service.OrderWithItems
	Statuses   []string
	Pagination AdminPagination
}

// List displays orders for admins, newest first.
func (h *OrdersHandler) List(w http.ResponseWriter, r *http.Request) {
	page := parsePage(r)
	orders, total, err := h.orderService.ListOrders(r.Context(), int64(defaultPerPage), pageOffset(page, defaultPerPage))
	if err != nil {
		logAndInternalError(w, "failed to list orders", "error", err)
		return
	}

	if err := h.renderer.Render(w, r, "admin/orders_list", render.TemplateData{
		Title: "Orders",
		User:  middleware.GetUser(r),
		Data: OrdersListData{
			Orders: orders,
			Statuses: []string{
				model.OrderStatusNew, model.OrderStatusConfirmed,
				model.OrderStatusDone, model.OrderStatusCancelled,
			},
			Pagination: BuildAdminPagination(page, total, defaultPerPage, redirectOrders),
		},
	}); err != nil {
		logAndInternalError(w, "render error", "error", err)
	}
}

// UpdateStatus handles the admin status change form post.
func (h *OrdersHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	id, ok := parseIDParam(r)
	if !ok {
		http.Error(w, "Invalid ID", http.StatusBadRequest)
		return
	}
	if !parseFormOrRedirect(w, r, h.renderer, redirectOrders) {
		return
	}

	status := r.FormValue("status")
	if err := h.orderService.UpdateStatus(r.Context(), id, status); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			flashError(w, r, h.renderer, redirectOrders, "Order not found")
			return
		}
		slog.Error("failed to update order status", "error", err, "order_id", id)
		flashError(w, r, h.renderer, redirectOrders, "Error updating order status")
		return
	}

	userID := middleware.GetUserID(r)
	_ = h.eventService.LogOrderEvent(r.Context(), model.EventLevelInfo, "Order status changed", &userID, middleware.ClientIP(r), map[string]any{
		"order_id": id,
		"status":   status,
	})
	flashSuccess(w, r, h.renderer, redirectOrders, "Order status updated")
}
