package store

import (
	"context"
	"time"

	"sofra/internal/model"
)

// CreateOrderParams holds the fields for CreateOrder.
type CreateOrderParams struct {
	OrderNo      string
	CustomerName string
	Phone        string
	Note         string
	Total        float64
	Status       string
	UserAgent    string
	CreatedAt    time.Time
}

const createOrder = `
INSERT INTO orders (order_no, customer_name, phone, note, total, status, user_agent, created_at)
VALUES (?, ?, ?, ?, ?, ?, ?, ?)
RETURNING id, order_no, customer_name, phone, note, total, status, user_agent, created_at
`

// CreateOrder inserts an order header.
func (q *Queries) CreateOrder(ctx context.Context, arg CreateOrderParams) (model.Order, error) {
	row := q.db.QueryRowContext(ctx, createOrder,
		arg.OrderNo, arg.CustomerName, arg.Phone, arg.Note, arg.Total,
		arg.Status, arg.UserAgent, arg.CreatedAt)
	var o model.Order
	err := row.Scan(&o.ID, &o.OrderNo, &o.CustomerName, &o.Phone, &o.Note,
		&o.Total, &o.Status, &o.UserAgent, &o.CreatedAt)
	return o, err
}

// CreateOrderItemParams holds the fields for CreateOrderItem.
type CreateOrderItemParams struct {
	OrderID    int64
	MenuItemID int64
	Name       string
	Quantity   int
	Price      float64
}

const createOrderItem = `
INSERT INTO order_items (order_id, menu_item_id, name, quantity, price)
VALUES (?, ?, ?, ?, ?)
`

// CreateOrderItem inserts one cart line.
func (q *Queries) CreateOrderItem(ctx context.Context, arg CreateOrderItemParams) error {
	_, err := q.db.ExecContext(ctx, createOrderItem,
		arg.OrderID, arg.MenuItemID, arg.Name, arg.Quantity, arg.Price)
	return err
}

const getOrder = `
SELECT id, order_no, customer_name, phone, note, total, status, user_agent, created_at
FROM orders WHERE id = ?
`

// GetOrder returns an order header by primary key.
func (q *Queries) GetOrder(ctx context.Context, id int64) (model.Order, error) {
	row := q.db.QueryRowContext(ctx, getOrder, id)
	var o model.Order
	err := row.Scan(&o.ID, &o.OrderNo, &o.CustomerName, &o.Phone, &o.Note,
		&o.Total, &o.Status, &o.UserAgent, &o.CreatedAt)
	return o, err
}

const listOrders = `
SELECT id, order_no, customer_name, phone, note, total, status, user_agent, created_at
FROM orders ORDER BY created_at DESC, id DESC LIMIT ? OFFSET ?
`

// ListOrders returns orders newest first.
func (q *Queries) ListOrders(ctx context.Context, limit, offset int64) ([]model.Order, error) {
	rows, err := q.db.QueryContext(ctx, listOrders, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []model.Order
	for rows.Next() {
		var o model.Order
		if err := rows.Scan(&o.ID, &o.OrderNo, &o.CustomerName, &o.Phone, &o.Note,
			&o.Total, &o.Status, &o.UserAgent, &o.CreatedAt); err != nil {
			return nil, err
		}
		items = append(items, o)
	}
	return items, rows.Err()
}

const listOrderItems = `
SELECT id, order_id, menu_item_id, name, quantity, price
FROM order_items WHERE order_id = ? ORDER BY id
`

// ListOrderItems returns the lines of one order.
func (q *Queries) ListOrderItems(ctx context.Context, orderID int64) ([]model.OrderItem, error) {
	rows, err := q.db.QueryContext(ctx, listOrderItems, orderID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []model.OrderItem
	for rows.Next() {
		var it model.OrderItem
		if err := rows.Scan(&it.ID, &it.OrderID, &it.MenuItemID, &it.Name,
			&it.Quantity, &it.Price); err != nil {
			return nil, err
		}
		items = append(items, it)
	}
	return items, rows.Err()
}

const updateOrderStatus = `UPDATE orders SET status = ? WHERE id = ?`

// UpdateOrderStatus moves an order to a new status.
func (q *Queries) UpdateOrderStatus(ctx context.Context, id int64, status string) error {
	_, err := q.db.ExecContext(ctx, updateOrderStatus, status, id)
	return err
}

const countOrders = `SELECT COUNT(*) FROM orders`

// CountOrders returns the total number of orders.
func (q *Queries) CountOrders(ctx context.Context) (int64, error) {
	var n int64
	err := q.db.QueryRowContext(ctx, countOrders).Scan(&n)
	return n, err
}
