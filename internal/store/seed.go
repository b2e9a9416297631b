package store

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"sofra/internal/auth"
	"sofra/internal/model"
)

// seedLanguages is the initial language catalog. English is the default;
// Arabic and Kurdish (Sorani) are right-to-left.
var seedLanguages = []CreateLanguageParams{
	{Code: "en", Name: "English", NativeName: "English", IsDefault: true, IsActive: true, Direction: model.DirectionLTR, Position: 1},
	{Code: "ar", Name: "Arabic", NativeName: "العربية", IsActive: true, Direction: model.DirectionRTL, Position: 2},
	{Code: "ku", Name: "Kurdish", NativeName: "کوردی", IsActive: true, Direction: model.DirectionRTL, Position: 3},
}

// Seed creates initial data in the database: the language catalog and,
// when a password is configured, an admin account. Both steps are
// idempotent.
func Seed(ctx context.Context, db *sql.DB, adminEmail, adminPassword string) error {
	queries := New(db)

	count, err := queries.CountLanguages(ctx)
	if err != nil {
		return fmt.Errorf("counting languages: %w", err)
	}
	if count == 0 {
		now := time.Now()
		for _, lang := range seedLanguages {
			lang.CreatedAt = now
			lang.UpdatedAt = now
			if _, err := queries.CreateLanguage(ctx, lang); err != nil {
				return fmt.Errorf("seeding language %q: %w", lang.Code, err)
			}
		}
		slog.Info("seeded language catalog", "count", len(seedLanguages))
	}

	if adminPassword == "" {
		slog.Info("no admin password configured, skipping admin seed")
		return nil
	}

	_, err = queries.GetUserByEmail(ctx, adminEmail)
	if err == nil {
		return nil
	}
	if err != sql.ErrNoRows {
		return fmt.Errorf("checking for admin user: %w", err)
	}

	passwordHash, err := auth.HashPassword(adminPassword)
	if err != nil {
		return fmt.Errorf("hashing password: %w", err)
	}

	now := time.Now()
	user, err := queries.CreateUser(ctx, CreateUserParams{
		Email:        adminEmail,
		Name:         "Administrator",
		PasswordHash: passwordHash,
		Role:         model.RoleAdmin,
		CreatedAt:    now,
		UpdatedAt:    now,
	})
	if err != nil {
		return fmt.Errorf("creating admin user: %w", err)
	}

	slog.Info("created default admin user", "id", user.ID, "email", user.Email)
	return nil
}
