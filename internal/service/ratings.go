// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"sofra/internal/model"
	"sofra/internal/store"
)

// ErrBadStars rejects a rating outside the 1..5 scale.
var ErrBadStars = errors.New("stars must be between 1 and 5")

// SubmitRatingParams is a customer's review submission.
type SubmitRatingParams struct {
	Name      string
	Phone     string
	Stars     int
	Comment   string
	UserAgent string
}

// RatingSummary is the admin view aggregate.
type RatingSummary struct {
	Count   int64
	Average float64
}

// RatingService handles customer review submission and the admin view.
type RatingService struct {
	queries *store.Queries
}

// NewRatingService creates a new RatingService.
func NewRatingService(db *sql.DB) *RatingService {
	return &RatingService{
		queries: store.New(db),
	}
}

// Submit validates and stores a customer rating.
func (s *RatingService) Submit(ctx context.Context, p SubmitRatingParams) (model.Rating, error) {
	if !model.ValidStars(p.Stars) {
		return model.Rating{}, ErrBadStars
	}
	name := model.SanitizeText(p.Name)
	if name == "" {
		name = "Anonymous"
	}
	if len(name) > model.MaxNameLen {
		return model.Rating{}, errors.New("name is too long")
	}
	phone := model.SanitizeText(p.Phone)
	if len(phone) > model.MaxNameLen {
		return model.Rating{}, errors.New("phone number is too long")
	}
	comment := model.SanitizeText(p.Comment)
	if len(comment) > model.MaxDescriptionLen {
		return model.Rating{}, errors.New("comment is too long")
	}

	rating, err := s.queries.CreateRating(ctx, store.CreateRatingParams{
		Name:      name,
		Phone:     phone,
		Stars:     p.Stars,
		Comment:   comment,
		UserAgent: SummarizeUserAgent(p.UserAgent),
		CreatedAt: time.Now(),
	})
	if err != nil {
		return model.Rating{}, fmt.Errorf("create rating: %w", err)
	}
	return rating, nil
}

// ListRatings returns a page of ratings with the overall aggregate.
func (s *RatingService) ListRatings(ctx context.Context, limit, offset int64) ([]model.Rating, RatingSummary, error) {
	ratings, err := s.queries.ListRatings(ctx, limit, offset)
	if err != nil {
		return nil, RatingSummary{}, fmt.Errorf("list ratings: %w", err)
	}
	count, err := s.queries.CountRatings(ctx)
	if err != nil {
		return nil, RatingSummary{}, fmt.Errorf("count ratings: %w", err)
	}
	avg, err := s.queries.AverageRating(ctx)
	if err != nil {
		return nil, RatingSummary{}, fmt.Errorf("average rating: %w", err)
	}
	return ratings, RatingSummary{Count: count, Average: avg}, nil
}
