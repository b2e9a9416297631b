package store

import (
	"context"
	"time"

	"sofra/internal/model"
)

// CreateRatingParams holds the fields for CreateRating.
type CreateRatingParams struct {
	Name      string
	Phone     string
	Stars     int
	Comment   string
	UserAgent string
	CreatedAt time.Time
}

const createRating = `
INSERT INTO ratings (name, phone, stars, comment, user_agent, created_at)
VALUES (?, ?, ?, ?, ?, ?)
RETURNING id, name, phone, stars, comment, user_agent, created_at
`

// CreateRating inserts a customer rating.
func (q *Queries) CreateRating(ctx context.Context, arg CreateRatingParams) (model.Rating, error) {
	row := q.db.QueryRowContext(ctx, createRating,
		arg.Name, arg.Phone, arg.Stars, arg.Comment, arg.UserAgent, arg.CreatedAt)
	var r model.Rating
	err := row.Scan(&r.ID, &r.Name, &r.Phone, &r.Stars, &r.Comment, &r.UserAgent, &r.CreatedAt)
	return r, err
}

const listRatings = `
SELECT id, name, phone, stars, comment, user_agent, created_at
FROM ratings ORDER BY created_at DESC, id DESC LIMIT ? OFFSET ?
`

// ListRatings returns ratings newest first.
func (q *Queries) ListRatings(ctx context.Context, limit, offset int64) ([]model.Rating, error) {
	rows, err := q.db.QueryContext(ctx, listRatings, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []model.Rating
	for rows.Next() {
		var r model.Rating
		if err := rows.Scan(&r.ID, &r.Name, &r.Phone, &r.Stars, &r.Comment,
			&r.UserAgent, &r.CreatedAt); err != nil {
			return nil, err
		}
		items = append(items, r)
	}
	return items, rows.Err()
}

const countRatings = `SELECT COUNT(*) FROM ratings`

// CountRatings returns the total number of ratings.
func (q *Queries) CountRatings(ctx context.Context) (int64, error) {
	var n int64
	err := q.db.QueryRowContext(ctx, countRatings).Scan(&n)
	return n, err
}

const averageRating = `SELECT COALESCE(AVG(stars), 0) FROM ratings`

// AverageRating returns the mean star rating, 0 when empty.
func (q *Queries) AverageRating(ctx context.Context) (float64, error) {
	var avg float64
	err := q.db.QueryRowContext(ctx, averageRating).Scan(&avg)
	return avg, err
}
