package store

import (
	"context"
	"time"

	"sofra/internal/model"
)

const createMenuType = `
INSERT INTO menu_types (position, created_at, updated_at)
VALUES (?, ?, ?)
RETURNING id, position, created_at, updated_at
`

// CreateMenuType inserts a menu type row.
func (q *Queries) CreateMenuType(ctx context.Context, position int, now time.Time) (model.MenuType, error) {
	row := q.db.QueryRowContext(ctx, createMenuType, position, now, now)
	var m model.MenuType
	err := row.Scan(&m.ID, &m.Position, &m.CreatedAt, &m.UpdatedAt)
	return m, err
}

const getMenuType = `SELECT id, position, created_at, updated_at FROM menu_types WHERE id = ?`

// GetMenuType returns a menu type by primary key.
func (q *Queries) GetMenuType(ctx context.Context, id int64) (model.MenuType, error) {
	var m model.MenuType
	err := q.db.QueryRowContext(ctx, getMenuType, id).
		Scan(&m.ID, &m.Position, &m.CreatedAt, &m.UpdatedAt)
	return m, err
}

const listMenuTypes = `SELECT id, position, created_at, updated_at FROM menu_types ORDER BY position, id`

// ListMenuTypes returns every menu type ordered by position.
func (q *Queries) ListMenuTypes(ctx context.Context) ([]model.MenuType, error) {
	rows, err := q.db.QueryContext(ctx, listMenuTypes)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []model.MenuType
	for rows.Next() {
		var m model.MenuType
		if err := rows.Scan(&m.ID, &m.Position, &m.CreatedAt, &m.UpdatedAt); err != nil {
			return nil, err
		}
		items = append(items, m)
	}
	return items, rows.Err()
}

const touchMenuType = `UPDATE menu_types SET position = ?, updated_at = ? WHERE id = ?`

// UpdateMenuType updates a menu type's own columns.
func (q *Queries) UpdateMenuType(ctx context.Context, id int64, position int, now time.Time) error {
	_, err := q.db.ExecContext(ctx, touchMenuType, position, now, id)
	return err
}

const createCategory = `
INSERT INTO categories (menu_type_id, position, created_at, updated_at)
VALUES (?, ?, ?, ?)
RETURNING id, menu_type_id, position, created_at, updated_at
`

// CreateCategory inserts a category under a menu type.
func (q *Queries) CreateCategory(ctx context.Context, menuTypeID int64, position int, now time.Time) (model.Category, error) {
	row := q.db.QueryRowContext(ctx, createCategory, menuTypeID, position, now, now)
	var c model.Category
	err := row.Scan(&c.ID, &c.MenuTypeID, &c.Position, &c.CreatedAt, &c.UpdatedAt)
	return c, err
}

const getCategory = `SELECT id, menu_type_id, position, created_at, updated_at FROM categories WHERE id = ?`

// GetCategory returns a category by primary key.
func (q *Queries) GetCategory(ctx context.Context, id int64) (model.Category, error) {
	var c model.Category
	err := q.db.QueryRowContext(ctx, getCategory, id).
		Scan(&c.ID, &c.MenuTypeID, &c.Position, &c.CreatedAt, &c.UpdatedAt)
	return c, err
}

const listCategories = `SELECT id, menu_type_id, position, created_at, updated_at FROM categories ORDER BY position, id`

// ListCategories returns every category ordered by position.
func (q *Queries) ListCategories(ctx context.Context) ([]model.Category, error) {
	rows, err := q.db.QueryContext(ctx, listCategories)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []model.Category
	for rows.Next() {
		var c model.Category
		if err := rows.Scan(&c.ID, &c.MenuTypeID, &c.Position, &c.CreatedAt, &c.UpdatedAt); err != nil {
			return nil, err
		}
		items = append(items, c)
	}
	return items, rows.Err()
}

const listCategoriesByMenuType = `
SELECT id, menu_type_id, position, created_at, updated_at
FROM categories WHERE menu_type_id = ? ORDER BY position, id
`

// ListCategoriesByMenuType returns the categories of one menu type.
func (q *Queries) ListCategoriesByMenuType(ctx context.Context, menuTypeID int64) ([]model.Category, error) {
	rows, err := q.db.QueryContext(ctx, listCategoriesByMenuType, menuTypeID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []model.Category
	for rows.Next() {
		var c model.Category
		if err := rows.Scan(&c.ID, &c.MenuTypeID, &c.Position, &c.CreatedAt, &c.UpdatedAt); err != nil {
			return nil, err
		}
		items = append(items, c)
	}
	return items, rows.Err()
}

const updateCategory = `UPDATE categories SET menu_type_id = ?, position = ?, updated_at = ? WHERE id = ?`

// UpdateCategory updates a category's own columns.
func (q *Queries) UpdateCategory(ctx context.Context, id, menuTypeID int64, position int, now time.Time) error {
	_, err := q.db.ExecContext(ctx, updateCategory, menuTypeID, position, now, id)
	return err
}

// CreateMenuItemParams holds the fields for CreateMenuItem.
type CreateMenuItemParams struct {
	CategoryID int64
	Price      float64
	Image      string
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

const createMenuItem = `
INSERT INTO menu_items (category_id, price, image, created_at, updated_at)
VALUES (?, ?, ?, ?, ?)
RETURNING id, category_id, price, image, created_at, updated_at
`

// CreateMenuItem inserts a menu item row.
func (q *Queries) CreateMenuItem(ctx context.Context, arg CreateMenuItemParams) (model.MenuItem, error) {
	row := q.db.QueryRowContext(ctx, createMenuItem,
		arg.CategoryID, arg.Price, arg.Image, arg.CreatedAt, arg.UpdatedAt)
	var m model.MenuItem
	err := row.Scan(&m.ID, &m.CategoryID, &m.Price, &m.Image, &m.CreatedAt, &m.UpdatedAt)
	return m, err
}

const getMenuItem = `SELECT id, category_id, price, image, created_at, updated_at FROM menu_items WHERE id = ?`

// GetMenuItem returns a menu item by primary key.
func (q *Queries) GetMenuItem(ctx context.Context, id int64) (model.MenuItem, error) {
	var m model.MenuItem
	err := q.db.QueryRowContext(ctx, getMenuItem, id).
		Scan(&m.ID, &m.CategoryID, &m.Price, &m.Image, &m.CreatedAt, &m.UpdatedAt)
	return m, err
}

// UpdateMenuItemParams holds the fields for UpdateMenuItem.
type UpdateMenuItemParams struct {
	ID         int64
	CategoryID int64
	Price      float64
	Image      string
	UpdatedAt  time.Time
}

const updateMenuItem = `
UPDATE menu_items SET category_id = ?, price = ?, image = ?, updated_at = ? WHERE id = ?
`

// UpdateMenuItem updates a menu item's own columns.
func (q *Queries) UpdateMenuItem(ctx context.Context, arg UpdateMenuItemParams) error {
	_, err := q.db.ExecContext(ctx, updateMenuItem,
		arg.CategoryID, arg.Price, arg.Image, arg.UpdatedAt, arg.ID)
	return err
}

const listMenuItemImages = `SELECT id, image FROM menu_items WHERE image != ''`

// MenuItemImage pairs an item id with its stored image filename.
type MenuItemImage struct {
	ID    int64
	Image string
}

// ListMenuItemImages returns every item that references an image file.
func (q *Queries) ListMenuItemImages(ctx context.Context) ([]MenuItemImage, error) {
	rows, err := q.db.QueryContext(ctx, listMenuItemImages)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []MenuItemImage
	for rows.Next() {
		var m MenuItemImage
		if err := rows.Scan(&m.ID, &m.Image); err != nil {
			return nil, err
		}
		items = append(items, m)
	}
	return items, rows.Err()
}

const clearMenuItemImage = `UPDATE menu_items SET image = '', updated_at = ? WHERE id = ?`

// ClearMenuItemImage drops a dangling image reference.
func (q *Queries) ClearMenuItemImage(ctx context.Context, id int64, now time.Time) error {
	_, err := q.db.ExecContext(ctx, clearMenuItemImage, now, id)
	return err
}

// Stats counters used by the public API response.

const countMenuTypes = `SELECT COUNT(*) FROM menu_types`

// CountMenuTypes returns the number of menu types.
func (q *Queries) CountMenuTypes(ctx context.Context) (int64, error) {
	var n int64
	err := q.db.QueryRowContext(ctx, countMenuTypes).Scan(&n)
	return n, err
}

const countCategories = `SELECT COUNT(*) FROM categories`

// CountCategories returns the number of categories.
func (q *Queries) CountCategories(ctx context.Context) (int64, error) {
	var n int64
	err := q.db.QueryRowContext(ctx, countCategories).Scan(&n)
	return n, err
}

const countMenuItems = `SELECT COUNT(*) FROM menu_items`

// CountMenuItems returns the number of menu items.
func (q *Queries) CountMenuItems(ctx context.Context) (int64, error) {
	var n int64
	err := q.db.QueryRowContext(ctx, countMenuItems).Scan(&n)
	return n, err
}
