package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"sofra/internal/model"
)

const getLanguageByID = `
SELECT id, code, name, native_name, is_default, is_active, direction, position, created_at, updated_at
FROM languages WHERE id = ?
`

// GetLanguageByID returns a language by primary key.
func (q *Queries) GetLanguageByID(ctx context.Context, id int64) (model.Language, error) {
	row := q.db.QueryRowContext(ctx, getLanguageByID, id)
	var l model.Language
	err := row.Scan(&l.ID, &l.Code, &l.Name, &l.NativeName, &l.IsDefault, &l.IsActive,
		&l.Direction, &l.Position, &l.CreatedAt, &l.UpdatedAt)
	return l, err
}

const getLanguageByCode = `
SELECT id, code, name, native_name, is_default, is_active, direction, position, created_at, updated_at
FROM languages WHERE code = ?
`

// GetLanguageByCode returns a language by its code.
func (q *Queries) GetLanguageByCode(ctx context.Context, code string) (model.Language, error) {
	row := q.db.QueryRowContext(ctx, getLanguageByCode, code)
	var l model.Language
	err := row.Scan(&l.ID, &l.Code, &l.Name, &l.NativeName, &l.IsDefault, &l.IsActive,
		&l.Direction, &l.Position, &l.CreatedAt, &l.UpdatedAt)
	return l, err
}

const getDefaultLanguage = `
SELECT id, code, name, native_name, is_default, is_active, direction, position, created_at, updated_at
FROM languages WHERE is_default = 1 LIMIT 1
`

// GetDefaultLanguage returns the catalog default language.
func (q *Queries) GetDefaultLanguage(ctx context.Context) (model.Language, error) {
	row := q.db.QueryRowContext(ctx, getDefaultLanguage)
	var l model.Language
	err := row.Scan(&l.ID, &l.Code, &l.Name, &l.NativeName, &l.IsDefault, &l.IsActive,
		&l.Direction, &l.Position, &l.CreatedAt, &l.UpdatedAt)
	return l, err
}

const listLanguages = `
SELECT id, code, name, native_name, is_default, is_active, direction, position, created_at, updated_at
FROM languages ORDER BY position, id
`

// ListLanguages returns every language ordered by position.
func (q *Queries) ListLanguages(ctx context.Context) ([]model.Language, error) {
	rows, err := q.db.QueryContext(ctx, listLanguages)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []model.Language
	for rows.Next() {
		var l model.Language
		if err := rows.Scan(&l.ID, &l.Code, &l.Name, &l.NativeName, &l.IsDefault, &l.IsActive,
			&l.Direction, &l.Position, &l.CreatedAt, &l.UpdatedAt); err != nil {
			return nil, err
		}
		items = append(items, l)
	}
	return items, rows.Err()
}

const listActiveLanguages = `
SELECT id, code, name, native_name, is_default, is_active, direction, position, created_at, updated_at
FROM languages WHERE is_active = 1 ORDER BY position, id
`

// ListActiveLanguages returns only active languages ordered by position.
func (q *Queries) ListActiveLanguages(ctx context.Context) ([]model.Language, error) {
	rows, err := q.db.QueryContext(ctx, listActiveLanguages)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []model.Language
	for rows.Next() {
		var l model.Language
		if err := rows.Scan(&l.ID, &l.Code, &l.Name, &l.NativeName, &l.IsDefault, &l.IsActive,
			&l.Direction, &l.Position, &l.CreatedAt, &l.UpdatedAt); err != nil {
			return nil, err
		}
		items = append(items, l)
	}
	return items, rows.Err()
}

// CreateLanguageParams holds the fields for CreateLanguage.
type CreateLanguageParams struct {
	Code       string
	Name       string
	NativeName string
	IsDefault  bool
	IsActive   bool
	Direction  string
	Position   int
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

const createLanguage = `
INSERT INTO languages (code, name, native_name, is_default, is_active, direction, position, created_at, updated_at)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
RETURNING id, code, name, native_name, is_default, is_active, direction, position, created_at, updated_at
`

// CreateLanguage inserts a language and returns the created row.
func (q *Queries) CreateLanguage(ctx context.Context, arg CreateLanguageParams) (model.Language, error) {
	row := q.db.QueryRowContext(ctx, createLanguage,
		arg.Code, arg.Name, arg.NativeName, arg.IsDefault, arg.IsActive,
		arg.Direction, arg.Position, arg.CreatedAt, arg.UpdatedAt)
	var l model.Language
	err := row.Scan(&l.ID, &l.Code, &l.Name, &l.NativeName, &l.IsDefault, &l.IsActive,
		&l.Direction, &l.Position, &l.CreatedAt, &l.UpdatedAt)
	return l, err
}

// UpdateLanguageParams holds the fields for UpdateLanguage.
type UpdateLanguageParams struct {
	ID         int64
	Code       string
	Name       string
	NativeName string
	IsActive   bool
	Direction  string
	Position   int
	UpdatedAt  time.Time
}

const updateLanguage = `
UPDATE languages
SET code = ?, name = ?, native_name = ?, is_active = ?, direction = ?, position = ?, updated_at = ?
WHERE id = ?
`

// UpdateLanguage updates a language. The default flag is managed separately
// through SetDefaultLanguage.
func (q *Queries) UpdateLanguage(ctx context.Context, arg UpdateLanguageParams) error {
	_, err := q.db.ExecContext(ctx, updateLanguage,
		arg.Code, arg.Name, arg.NativeName, arg.IsActive, arg.Direction,
		arg.Position, arg.UpdatedAt, arg.ID)
	return err
}

const deleteLanguage = `DELETE FROM languages WHERE id = ?`

// DeleteLanguage removes a language row.
func (q *Queries) DeleteLanguage(ctx context.Context, id int64) error {
	_, err := q.db.ExecContext(ctx, deleteLanguage, id)
	return err
}

const clearDefaultLanguage = `UPDATE languages SET is_default = 0 WHERE is_default = 1`

// ClearDefaultLanguage unsets the current default flag.
func (q *Queries) ClearDefaultLanguage(ctx context.Context) error {
	_, err := q.db.ExecContext(ctx, clearDefaultLanguage)
	return err
}

const setDefaultLanguage = `UPDATE languages SET is_default = 1, is_active = 1 WHERE id = ?`

// SetDefaultLanguage marks a language as the default. The default is always
// active.
func (q *Queries) SetDefaultLanguage(ctx context.Context, id int64) error {
	_, err := q.db.ExecContext(ctx, setDefaultLanguage, id)
	return err
}

const languageCodeExists = `SELECT COUNT(*) FROM languages WHERE code = ?`

// LanguageCodeExists reports whether a language with the code exists.
func (q *Queries) LanguageCodeExists(ctx context.Context, code string) (bool, error) {
	var n int64
	err := q.db.QueryRowContext(ctx, languageCodeExists, code).Scan(&n)
	return n > 0, err
}

const languageCodeExistsExcluding = `SELECT COUNT(*) FROM languages WHERE code = ? AND id != ?`

// LanguageCodeExistsExcluding reports whether another language uses the code.
func (q *Queries) LanguageCodeExistsExcluding(ctx context.Context, code string, id int64) (bool, error) {
	var n int64
	err := q.db.QueryRowContext(ctx, languageCodeExistsExcluding, code, id).Scan(&n)
	return n > 0, err
}

const countLanguages = `SELECT COUNT(*) FROM languages`

// CountLanguages returns the number of languages in the catalog.
func (q *Queries) CountLanguages(ctx context.Context) (int64, error) {
	var n int64
	err := q.db.QueryRowContext(ctx, countLanguages).Scan(&n)
	return n, err
}

const countLanguageUsage = `
SELECT
    (SELECT COUNT(*) FROM menu_type_translations WHERE language_code = ?) +
    (SELECT COUNT(*) FROM category_translations WHERE language_code = ?) +
    (SELECT COUNT(*) FROM menu_item_translations WHERE language_code = ?)
`

// CountLanguageUsage returns how many translation rows reference the code.
func (q *Queries) CountLanguageUsage(ctx context.Context, code string) (int64, error) {
	var n int64
	err := q.db.QueryRowContext(ctx, countLanguageUsage, code, code, code).Scan(&n)
	return n, err
}

// SetDefaultLanguageTx makes the language the catalog default, clearing the
// previous default in the same transaction so exactly one default exists at
// all times.
func SetDefaultLanguageTx(ctx context.Context, db *sql.DB, id int64) (model.Language, error) {
	var lang model.Language
	err := inTx(ctx, db, func(qtx *Queries) error {
		var err error
		lang, err = qtx.GetLanguageByID(ctx, id)
		if err != nil {
			return notFoundOr(err, "loading language")
		}
		if err := qtx.ClearDefaultLanguage(ctx); err != nil {
			return fmt.Errorf("clearing previous default: %w", err)
		}
		return qtx.SetDefaultLanguage(ctx, id)
	})
	return lang, err
}

// DeleteLanguageTx removes a language. The default language returns
// ErrDefaultLanguage; a language still referenced by translation rows
// returns ErrLanguageInUse.
func DeleteLanguageTx(ctx context.Context, db *sql.DB, id int64) (model.Language, error) {
	var lang model.Language
	err := inTx(ctx, db, func(qtx *Queries) error {
		var err error
		lang, err = qtx.GetLanguageByID(ctx, id)
		if err != nil {
			return notFoundOr(err, "loading language")
		}
		if lang.IsDefault {
			return ErrDefaultLanguage
		}
		usage, err := qtx.CountLanguageUsage(ctx, lang.Code)
		if err != nil {
			return fmt.Errorf("counting language usage: %w", err)
		}
		if usage > 0 {
			return fmt.Errorf("%w (%d rows)", ErrLanguageInUse, usage)
		}
		return qtx.DeleteLanguage(ctx, id)
	})
	return lang, err
}

const getMaxLanguagePosition = `SELECT COALESCE(MAX(position), 0) FROM languages`

// GetMaxLanguagePosition returns the highest position in the catalog.
func (q *Queries) GetMaxLanguagePosition(ctx context.Context) (int, error) {
	var n int
	err := q.db.QueryRowContext(ctx, getMaxLanguagePosition).Scan(&n)
	return n, err
}
