package store

import (
	"context"
	"fmt"
	"time"

	"sofra/internal/model"
)

// UpsertTranslationParams holds the fields for UpsertTranslation.
type UpsertTranslationParams struct {
	EntityID     int64
	LanguageCode string
	Name         string
	Description  string
	Now          time.Time
}

// UpsertTranslation writes one (entity, language) translation pair.
// An existing pair is overwritten; the operation is idempotent and
// last-writer-wins under concurrency.
func (q *Queries) UpsertTranslation(ctx context.Context, e Entity, arg UpsertTranslationParams) error {
	s := e.spec()
	query := fmt.Sprintf(`
INSERT INTO %s (%s, language_code, name, description, created_at, updated_at)
VALUES (?, ?, ?, ?, ?, ?)
ON CONFLICT (%s, language_code)
DO UPDATE SET name = excluded.name, description = excluded.description, updated_at = excluded.updated_at
`, s.trTable, s.fkColumn, s.fkColumn)
	_, err := q.db.ExecContext(ctx, query,
		arg.EntityID, arg.LanguageCode, arg.Name, arg.Description, arg.Now, arg.Now)
	return err
}

// ListTranslations returns every translation of one entity ordered by
// language code.
func (q *Queries) ListTranslations(ctx context.Context, e Entity, entityID int64) ([]model.Translation, error) {
	s := e.spec()
	query := fmt.Sprintf(`
SELECT id, %s, language_code, name, description, created_at, updated_at
FROM %s WHERE %s = ? ORDER BY language_code
`, s.fkColumn, s.trTable, s.fkColumn)
	rows, err := q.db.QueryContext(ctx, query, entityID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []model.Translation
	for rows.Next() {
		var t model.Translation
		if err := rows.Scan(&t.ID, &t.EntityID, &t.LanguageCode, &t.Name, &t.Description,
			&t.CreatedAt, &t.UpdatedAt); err != nil {
			return nil, err
		}
		items = append(items, t)
	}
	return items, rows.Err()
}

// CountTranslations returns the number of translations of one entity.
func (q *Queries) CountTranslations(ctx context.Context, e Entity, entityID int64) (int64, error) {
	s := e.spec()
	query := fmt.Sprintf(`SELECT COUNT(*) FROM %s WHERE %s = ?`, s.trTable, s.fkColumn)
	var n int64
	err := q.db.QueryRowContext(ctx, query, entityID).Scan(&n)
	return n, err
}

// DeleteTranslation removes one (entity, language) pair.
func (q *Queries) DeleteTranslation(ctx context.Context, e Entity, entityID int64, langCode string) error {
	s := e.spec()
	query := fmt.Sprintf(`DELETE FROM %s WHERE %s = ? AND language_code = ?`, s.trTable, s.fkColumn)
	_, err := q.db.ExecContext(ctx, query, entityID, langCode)
	return err
}

// ListTranslationNames returns every translated name of one entity, used
// when logging destructive operations.
func (q *Queries) ListTranslationNames(ctx context.Context, e Entity, entityID int64) ([]string, error) {
	s := e.spec()
	query := fmt.Sprintf(`SELECT name FROM %s WHERE %s = ? ORDER BY language_code`, s.trTable, s.fkColumn)
	rows, err := q.db.QueryContext(ctx, query, entityID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, err
		}
		names = append(names, name)
	}
	return names, rows.Err()
}
