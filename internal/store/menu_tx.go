package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"sofra/internal/model"
)

// FieldErrors collects per-language validation failures, keyed by language
// code then field name. Inputs with errors are skipped, not fatal, unless
// nothing valid remains.
type FieldErrors map[string]map[string]string

// applyTranslations validates and upserts the given inputs inside tx.
// Returns the number of accepted translations; rejected inputs are
// reported in FieldErrors.
func applyTranslations(ctx context.Context, qtx *Queries, e Entity, entityID int64, inputs []model.TranslationInput, now time.Time) (int, FieldErrors, error) {
	known := make(map[string]bool)
	langs, err := qtx.ListLanguages(ctx)
	if err != nil {
		return 0, nil, fmt.Errorf("loading languages: %w", err)
	}
	for _, l := range langs {
		known[l.Code] = true
	}

	accepted := 0
	fieldErrs := make(FieldErrors)
	for _, in := range inputs {
		if errs := in.Validate(); len(errs) > 0 {
			fieldErrs[in.LanguageCode] = errs
			continue
		}
		if !known[in.LanguageCode] {
			fieldErrs[in.LanguageCode] = map[string]string{"language_code": "Unknown language"}
			continue
		}
		err := qtx.UpsertTranslation(ctx, e, UpsertTranslationParams{
			EntityID:     entityID,
			LanguageCode: in.LanguageCode,
			Name:         in.Name,
			Description:  in.Description,
			Now:          now,
		})
		if err != nil {
			return 0, nil, fmt.Errorf("upserting %s translation %q: %w", e, in.LanguageCode, err)
		}
		accepted++
	}
	return accepted, fieldErrs, nil
}

// CreateMenuTypeTx creates a menu type with its translations in one
// transaction. With zero valid translations nothing persists and
// ErrNoTranslations is returned alongside the field errors.
func CreateMenuTypeTx(ctx context.Context, db *sql.DB, position int, inputs []model.TranslationInput) (model.MenuType, FieldErrors, error) {
	var mt model.MenuType
	var fieldErrs FieldErrors
	err := inTx(ctx, db, func(qtx *Queries) error {
		now := time.Now()
		var err error
		mt, err = qtx.CreateMenuType(ctx, position, now)
		if err != nil {
			return fmt.Errorf("creating menu type: %w", err)
		}
		accepted := 0
		accepted, fieldErrs, err = applyTranslations(ctx, qtx, EntityMenuType, mt.ID, inputs, now)
		if err != nil {
			return err
		}
		if accepted == 0 {
			return ErrNoTranslations
		}
		return nil
	})
	return mt, fieldErrs, err
}

// UpdateMenuTypeTx updates a menu type and upserts its translations.
func UpdateMenuTypeTx(ctx context.Context, db *sql.DB, id int64, position int, inputs []model.TranslationInput) (FieldErrors, error) {
	var fieldErrs FieldErrors
	err := inTx(ctx, db, func(qtx *Queries) error {
		if _, err := qtx.GetMenuType(ctx, id); err != nil {
			return notFoundOr(err, "loading menu type")
		}
		now := time.Now()
		if err := qtx.UpdateMenuType(ctx, id, position, now); err != nil {
			return fmt.Errorf("updating menu type: %w", err)
		}
		accepted, errs, err := applyTranslations(ctx, qtx, EntityMenuType, id, inputs, now)
		fieldErrs = errs
		if err != nil {
			return err
		}
		total, err := qtx.CountTranslations(ctx, EntityMenuType, id)
		if err != nil {
			return fmt.Errorf("counting translations: %w", err)
		}
		if accepted == 0 && total == 0 {
			return ErrNoTranslations
		}
		return nil
	})
	return fieldErrs, err
}

// CreateCategoryTx creates a category under an existing menu type.
func CreateCategoryTx(ctx context.Context, db *sql.DB, menuTypeID int64, position int, inputs []model.TranslationInput) (model.Category, FieldErrors, error) {
	var cat model.Category
	var fieldErrs FieldErrors
	err := inTx(ctx, db, func(qtx *Queries) error {
		if _, err := qtx.GetMenuType(ctx, menuTypeID); err != nil {
			return notFoundOr(err, "loading menu type")
		}
		now := time.Now()
		var err error
		cat, err = qtx.CreateCategory(ctx, menuTypeID, position, now)
		if err != nil {
			return fmt.Errorf("creating category: %w", err)
		}
		accepted := 0
		accepted, fieldErrs, err = applyTranslations(ctx, qtx, EntityCategory, cat.ID, inputs, now)
		if err != nil {
			return err
		}
		if accepted == 0 {
			return ErrNoTranslations
		}
		return nil
	})
	return cat, fieldErrs, err
}

// UpdateCategoryTx updates a category, optionally moving it to another
// menu type, and upserts its translations.
func UpdateCategoryTx(ctx context.Context, db *sql.DB, id, menuTypeID int64, position int, inputs []model.TranslationInput) (FieldErrors, error) {
	var fieldErrs FieldErrors
	err := inTx(ctx, db, func(qtx *Queries) error {
		if _, err := qtx.GetCategory(ctx, id); err != nil {
			return notFoundOr(err, "loading category")
		}
		if _, err := qtx.GetMenuType(ctx, menuTypeID); err != nil {
			return notFoundOr(err, "loading menu type")
		}
		now := time.Now()
		if err := qtx.UpdateCategory(ctx, id, menuTypeID, position, now); err != nil {
			return fmt.Errorf("updating category: %w", err)
		}
		accepted, errs, err := applyTranslations(ctx, qtx, EntityCategory, id, inputs, now)
		fieldErrs = errs
		if err != nil {
			return err
		}
		total, err := qtx.CountTranslations(ctx, EntityCategory, id)
		if err != nil {
			return fmt.Errorf("counting translations: %w", err)
		}
		if accepted == 0 && total == 0 {
			return ErrNoTranslations
		}
		return nil
	})
	return fieldErrs, err
}

// MenuItemTxParams holds the fields for CreateMenuItemTx and UpdateMenuItemTx.
type MenuItemTxParams struct {
	ID           int64 // update only
	CategoryID   int64
	Price        float64
	Image        string
	Translations []model.TranslationInput
}

// CreateMenuItemTx creates a menu item under an existing category.
func CreateMenuItemTx(ctx context.Context, db *sql.DB, arg MenuItemTxParams) (model.MenuItem, FieldErrors, error) {
	var item model.MenuItem
	var fieldErrs FieldErrors
	err := inTx(ctx, db, func(qtx *Queries) error {
		if _, err := qtx.GetCategory(ctx, arg.CategoryID); err != nil {
			return notFoundOr(err, "loading category")
		}
		now := time.Now()
		var err error
		item, err = qtx.CreateMenuItem(ctx, CreateMenuItemParams{
			CategoryID: arg.CategoryID,
			Price:      arg.Price,
			Image:      arg.Image,
			CreatedAt:  now,
			UpdatedAt:  now,
		})
		if err != nil {
			return fmt.Errorf("creating menu item: %w", err)
		}
		accepted := 0
		accepted, fieldErrs, err = applyTranslations(ctx, qtx, EntityMenuItem, item.ID, arg.Translations, now)
		if err != nil {
			return err
		}
		if accepted == 0 {
			return ErrNoTranslations
		}
		return nil
	})
	return item, fieldErrs, err
}

// UpdateMenuItemTx updates a menu item and upserts its translations.
func UpdateMenuItemTx(ctx context.Context, db *sql.DB, arg MenuItemTxParams) (FieldErrors, error) {
	var fieldErrs FieldErrors
	err := inTx(ctx, db, func(qtx *Queries) error {
		if _, err := qtx.GetMenuItem(ctx, arg.ID); err != nil {
			return notFoundOr(err, "loading menu item")
		}
		if _, err := qtx.GetCategory(ctx, arg.CategoryID); err != nil {
			return notFoundOr(err, "loading category")
		}
		now := time.Now()
		err := qtx.UpdateMenuItem(ctx, UpdateMenuItemParams{
			ID:         arg.ID,
			CategoryID: arg.CategoryID,
			Price:      arg.Price,
			Image:      arg.Image,
			UpdatedAt:  now,
		})
		if err != nil {
			return fmt.Errorf("updating menu item: %w", err)
		}
		accepted, errs, err := applyTranslations(ctx, qtx, EntityMenuItem, arg.ID, arg.Translations, now)
		fieldErrs = errs
		if err != nil {
			return err
		}
		total, err := qtx.CountTranslations(ctx, EntityMenuItem, arg.ID)
		if err != nil {
			return fmt.Errorf("counting translations: %w", err)
		}
		if accepted == 0 && total == 0 {
			return ErrNoTranslations
		}
		return nil
	})
	return fieldErrs, err
}

// CascadeResult reports what a cascade delete removed. Images are deleted
// from disk by the caller after the transaction commits.
type CascadeResult struct {
	Names        []string
	Translations int64
	Items        int64
	Categories   int64
	Images       []string
}

// DeleteMenuItemTx removes one item and its translations.
func DeleteMenuItemTx(ctx context.Context, db *sql.DB, id int64) (CascadeResult, error) {
	var res CascadeResult
	err := inTx(ctx, db, func(qtx *Queries) error {
		item, err := qtx.GetMenuItem(ctx, id)
		if err != nil {
			return notFoundOr(err, "loading menu item")
		}
		res.Names, err = qtx.ListTranslationNames(ctx, EntityMenuItem, id)
		if err != nil {
			return err
		}
		if item.Image != "" {
			res.Images = append(res.Images, item.Image)
		}
		n, err := execCount(ctx, qtx, `DELETE FROM menu_item_translations WHERE menu_item_id = ?`, id)
		if err != nil {
			return err
		}
		res.Translations += n
		n, err = execCount(ctx, qtx, `DELETE FROM menu_items WHERE id = ?`, id)
		if err != nil {
			return err
		}
		res.Items += n
		return nil
	})
	return res, err
}

// DeleteCategoryTx removes a category, its items and all their translations
// in dependency order.
func DeleteCategoryTx(ctx context.Context, db *sql.DB, id int64) (CascadeResult, error) {
	var res CascadeResult
	err := inTx(ctx, db, func(qtx *Queries) error {
		if _, err := qtx.GetCategory(ctx, id); err != nil {
			return notFoundOr(err, "loading category")
		}
		var err error
		res.Names, err = qtx.ListTranslationNames(ctx, EntityCategory, id)
		if err != nil {
			return err
		}
		return deleteCategoryContents(ctx, qtx, &res, `id = ?`, id)
	})
	return res, err
}

// DeleteMenuTypeTx removes a menu type and everything beneath it in
// dependency order.
func DeleteMenuTypeTx(ctx context.Context, db *sql.DB, id int64) (CascadeResult, error) {
	var res CascadeResult
	err := inTx(ctx, db, func(qtx *Queries) error {
		if _, err := qtx.GetMenuType(ctx, id); err != nil {
			return notFoundOr(err, "loading menu type")
		}
		var err error
		res.Names, err = qtx.ListTranslationNames(ctx, EntityMenuType, id)
		if err != nil {
			return err
		}
		if err := deleteCategoryContents(ctx, qtx, &res, `menu_type_id = ?`, id); err != nil {
			return err
		}
		n, err := execCount(ctx, qtx, `DELETE FROM menu_type_translations WHERE menu_type_id = ?`, id)
		if err != nil {
			return err
		}
		res.Translations += n
		if _, err := execCount(ctx, qtx, `DELETE FROM menu_types WHERE id = ?`, id); err != nil {
			return err
		}
		return nil
	})
	return res, err
}

// deleteCategoryContents removes item translations, items, category
// translations and categories whose category row matches catPred, in
// dependency order. catPred is a predicate over the categories table.
func deleteCategoryContents(ctx context.Context, qtx *Queries, res *CascadeResult, catPred string, args ...interface{}) error {
	catSelect := `SELECT id FROM categories WHERE ` + catPred
	itemPred := `category_id IN (` + catSelect + `)`

	imgQuery := `SELECT image FROM menu_items WHERE image != '' AND ` + itemPred
	rows, err := qtx.db.QueryContext(ctx, imgQuery, args...)
	if err != nil {
		return err
	}
	for rows.Next() {
		var img string
		if err := rows.Scan(&img); err != nil {
			rows.Close()
			return err
		}
		res.Images = append(res.Images, img)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return err
	}

	n, err := execCount(ctx, qtx,
		`DELETE FROM menu_item_translations WHERE menu_item_id IN (SELECT id FROM menu_items WHERE `+itemPred+`)`, args...)
	if err != nil {
		return err
	}
	res.Translations += n
	n, err = execCount(ctx, qtx, `DELETE FROM menu_items WHERE `+itemPred, args...)
	if err != nil {
		return err
	}
	res.Items += n

	n, err = execCount(ctx, qtx,
		`DELETE FROM category_translations WHERE category_id IN (`+catSelect+`)`, args...)
	if err != nil {
		return err
	}
	res.Translations += n
	n, err = execCount(ctx, qtx, `DELETE FROM categories WHERE `+catPred, args...)
	if err != nil {
		return err
	}
	res.Categories += n
	return nil
}

func execCount(ctx context.Context, qtx *Queries, query string, args ...interface{}) (int64, error) {
	result, err := qtx.db.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}

func inTx(ctx context.Context, db *sql.DB, fn func(qtx *Queries) error) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	if err := fn(New(db).WithTx(tx)); err != nil {
		_ = tx.Rollback()
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing transaction: %w", err)
	}
	return nil
}

func notFoundOr(err error, op string) error {
	if errors.Is(err, sql.ErrNoRows) {
		return ErrNotFound
	}
	return fmt.Errorf("%s: %w", op, err)
}
