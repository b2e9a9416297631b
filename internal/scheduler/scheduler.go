// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package scheduler runs periodic maintenance jobs.
package scheduler

import (
	"context"
	"database/sql"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"

	"sofra/internal/model"
	"sofra/internal/service"
	"sofra/internal/store"
)

// Scheduler handles scheduled maintenance like image reference cleanup.
type Scheduler struct {
	db          *sql.DB
	cron        *cron.Cron
	menuService *service.MenuService
	logger      *slog.Logger
}

// New creates a new scheduler instance.
func New(db *sql.DB, ms *service.MenuService, logger *slog.Logger) *Scheduler {
	return &Scheduler{
		db:          db,
		cron:        cron.New(),
		menuService: ms,
		logger:      logger,
	}
}

// Start begins the scheduler with an hourly pass over dangling image
// references.
func (s *Scheduler) Start() error {
	_, err := s.cron.AddFunc("@hourly", func() {
		if err := s.cleanupImages(); err != nil {
			s.logger.Error("scheduled image cleanup failed", "error", err)
		}
	})
	if err != nil {
		return err
	}

	s.cron.Start()
	s.logger.Info("scheduler started", "jobs", len(s.cron.Entries()))
	return nil
}

// Stop gracefully stops the scheduler.
func (s *Scheduler) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
	s.logger.Info("scheduler stopped")
}

// cleanupImages nulls item image references whose files are gone and logs
// the pass when it healed anything.
func (s *Scheduler) cleanupImages() error {
	ctx := context.Background()

	healed, err := s.menuService.CleanupMissingImages(ctx)
	if err != nil {
		return err
	}
	if healed == 0 {
		return nil
	}

	s.logger.Info("scheduled image cleanup healed items", "count", healed)

	metadataJSON, _ := json.Marshal(map[string]any{"healed": healed})
	queries := store.New(s.db)
	err = queries.CreateEvent(ctx, store.CreateEventParams{
		Level:     model.EventLevelInfo,
		Category:  model.EventCategorySystem,
		Message:   "Missing image cleanup run by scheduler",
		UserID:    sql.NullInt64{}, // System action, no user
		Metadata:  string(metadataJSON),
		CreatedAt: time.Now(),
	})
	if err != nil {
		s.logger.Warn("failed to log scheduled cleanup event", "error", err)
	}
	return nil
}
