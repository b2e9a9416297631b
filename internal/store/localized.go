package store

import (
	"context"
	"fmt"
	"time"

	"sofra/internal/model"
)

// Translation fallback is resolved in SQL: the requested language joins
// first, the default language second, and COALESCE picks the first hit or
// a per-entity placeholder. One query per listing, never per row.

// LocalizedRow is an entity with its resolved name and description.
type LocalizedRow struct {
	ID          int64
	Name        string
	Description string
}

// LocalizedItemRow is a menu item with resolved item and category names.
type LocalizedItemRow struct {
	ID           int64
	CategoryID   int64
	CategoryName string
	MenuTypeID   int64
	Price        float64
	Image        string
	Name         string
	Description  string
	CreatedAt    time.Time
}

const localizedSelect = `
SELECT e.id,
       COALESCE(req.name, def.name, ?) AS resolved_name,
       COALESCE(req.description, def.description, '') AS resolved_description
FROM %s e
LEFT JOIN %s req ON req.%s = e.id AND req.language_code = ?
LEFT JOIN %s def ON def.%s = e.id AND def.language_code = ?
`

const localizedOrder = ` ORDER BY resolved_name ASC, e.id DESC`

// ListLocalized returns every row of an entity table with names resolved
// for lang, falling back to defaultLang, then to the placeholder. Results
// are ordered by resolved name (case-sensitive) and id descending.
func (q *Queries) ListLocalized(ctx context.Context, e Entity, lang, defaultLang string) ([]LocalizedRow, error) {
	s := e.spec()
	query := fmt.Sprintf(localizedSelect, s.table, s.trTable, s.fkColumn, s.trTable, s.fkColumn) + localizedOrder
	return q.queryLocalized(ctx, query, s.placeholder, lang, defaultLang)
}

// GetLocalized resolves a single entity's name and description.
func (q *Queries) GetLocalized(ctx context.Context, e Entity, id int64, lang, defaultLang string) (LocalizedRow, error) {
	s := e.spec()
	query := fmt.Sprintf(localizedSelect, s.table, s.trTable, s.fkColumn, s.trTable, s.fkColumn) + ` WHERE e.id = ?`
	row := q.db.QueryRowContext(ctx, query, s.placeholder, lang, defaultLang, id)
	var r LocalizedRow
	err := row.Scan(&r.ID, &r.Name, &r.Description)
	return r, err
}

// ListCategoriesLocalized resolves category names, optionally restricted to
// one menu type.
func (q *Queries) ListCategoriesLocalized(ctx context.Context, lang, defaultLang string, menuTypeID int64) ([]LocalizedRow, error) {
	s := EntityCategory.spec()
	query := fmt.Sprintf(localizedSelect, s.table, s.trTable, s.fkColumn, s.trTable, s.fkColumn)
	args := []interface{}{s.placeholder, lang, defaultLang}
	if menuTypeID > 0 {
		query += ` WHERE e.menu_type_id = ?`
		args = append(args, menuTypeID)
	}
	query += localizedOrder
	return q.queryLocalized(ctx, query, args...)
}

func (q *Queries) queryLocalized(ctx context.Context, query string, args ...interface{}) ([]LocalizedRow, error) {
	rows, err := q.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []LocalizedRow
	for rows.Next() {
		var r LocalizedRow
		if err := rows.Scan(&r.ID, &r.Name, &r.Description); err != nil {
			return nil, err
		}
		items = append(items, r)
	}
	return items, rows.Err()
}

// ItemFilter narrows the localized item listing. Zero values mean no filter.
type ItemFilter struct {
	MenuTypeID   int64
	CategoryName string // exact match against the resolved category name
}

const localizedItems = `
SELECT i.id, i.category_id, c.menu_type_id, i.price, i.image, i.created_at,
       COALESCE(req.name, def.name, ?) AS resolved_name,
       COALESCE(req.description, def.description, '') AS resolved_description,
       COALESCE(creq.name, cdef.name, ?) AS category_name
FROM menu_items i
JOIN categories c ON c.id = i.category_id
LEFT JOIN menu_item_translations req ON req.menu_item_id = i.id AND req.language_code = ?
LEFT JOIN menu_item_translations def ON def.menu_item_id = i.id AND def.language_code = ?
LEFT JOIN category_translations creq ON creq.category_id = c.id AND creq.language_code = ?
LEFT JOIN category_translations cdef ON cdef.category_id = c.id AND cdef.language_code = ?
`

// ListMenuItemsLocalized resolves item and category names in one query,
// applying the menu type and category filters in SQL.
func (q *Queries) ListMenuItemsLocalized(ctx context.Context, lang, defaultLang string, filter ItemFilter) ([]LocalizedItemRow, error) {
	query := localizedItems
	args := []interface{}{
		model.PlaceholderItem, model.PlaceholderCategory,
		lang, defaultLang, lang, defaultLang,
	}
	where := ""
	if filter.MenuTypeID > 0 {
		where += ` AND c.menu_type_id = ?`
		args = append(args, filter.MenuTypeID)
	}
	if filter.CategoryName != "" {
		where += ` AND COALESCE(creq.name, cdef.name, ?) = ?`
		args = append(args, model.PlaceholderCategory, filter.CategoryName)
	}
	if where != "" {
		query += ` WHERE` + where[4:]
	}
	query += ` ORDER BY resolved_name ASC, i.id DESC`

	rows, err := q.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []LocalizedItemRow
	for rows.Next() {
		var r LocalizedItemRow
		if err := rows.Scan(&r.ID, &r.CategoryID, &r.MenuTypeID, &r.Price, &r.Image,
			&r.CreatedAt, &r.Name, &r.Description, &r.CategoryName); err != nil {
			return nil, err
		}
		items = append(items, r)
	}
	return items, rows.Err()
}
