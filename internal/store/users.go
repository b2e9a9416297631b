package store

import (
	"context"
	"database/sql"
	"time"

	"sofra/internal/model"
)

// CreateUserParams holds the fields for CreateUser.
type CreateUserParams struct {
	Email        string
	Name         string
	PasswordHash string
	Role         string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

const createUser = `
INSERT INTO users (email, name, password_hash, role, created_at, updated_at)
VALUES (?, ?, ?, ?, ?, ?)
RETURNING id, email, name, password_hash, role, created_at, updated_at, last_login_at
`

// CreateUser inserts a back-office account.
func (q *Queries) CreateUser(ctx context.Context, arg CreateUserParams) (model.User, error) {
	row := q.db.QueryRowContext(ctx, createUser,
		arg.Email, arg.Name, arg.PasswordHash, arg.Role, arg.CreatedAt, arg.UpdatedAt)
	return scanUser(row)
}

const getUserByEmail = `
SELECT id, email, name, password_hash, role, created_at, updated_at, last_login_at
FROM users WHERE email = ?
`

// GetUserByEmail returns a user by email.
func (q *Queries) GetUserByEmail(ctx context.Context, email string) (model.User, error) {
	return scanUser(q.db.QueryRowContext(ctx, getUserByEmail, email))
}

const getUserByID = `
SELECT id, email, name, password_hash, role, created_at, updated_at, last_login_at
FROM users WHERE id = ?
`

// GetUserByID returns a user by primary key.
func (q *Queries) GetUserByID(ctx context.Context, id int64) (model.User, error) {
	return scanUser(q.db.QueryRowContext(ctx, getUserByID, id))
}

const updateUserPassword = `UPDATE users SET password_hash = ?, updated_at = ? WHERE id = ?`

// UpdateUserPassword replaces a user's password hash.
func (q *Queries) UpdateUserPassword(ctx context.Context, id int64, hash string) error {
	_, err := q.db.ExecContext(ctx, updateUserPassword, hash, time.Now(), id)
	return err
}

const updateUserLastLogin = `UPDATE users SET last_login_at = ? WHERE id = ?`

// UpdateUserLastLogin records a successful login time.
func (q *Queries) UpdateUserLastLogin(ctx context.Context, id int64, at time.Time) error {
	_, err := q.db.ExecContext(ctx, updateUserLastLogin, at, id)
	return err
}

const countUsers = `SELECT COUNT(*) FROM users`

// CountUsers returns the number of accounts.
func (q *Queries) CountUsers(ctx context.Context) (int64, error) {
	var n int64
	err := q.db.QueryRowContext(ctx, countUsers).Scan(&n)
	return n, err
}

func scanUser(row *sql.Row) (model.User, error) {
	var u model.User
	var last sql.NullTime
	err := row.Scan(&u.ID, &u.Email, &u.Name, &u.PasswordHash, &u.Role,
		&u.CreatedAt, &u.UpdatedAt, &last)
	if last.Valid {
		u.LastLoginAt = &last.Time
	}
	return u, err
}
