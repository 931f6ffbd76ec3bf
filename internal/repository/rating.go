package repository

import (
	"context"

	"movie-catalog/internal/domain"
)

// RatingRepository defines persistence operations for Rating entities.
type RatingRepository interface {
	Init(ctx context.Context) error
	// Upsert atomically inserts the rating or updates the existing row for
	// the same (movie, customer) pair. The returned flag reports whether a
	// new row was created.
	Upsert(ctx context.Context, rating *domain.Rating) (created bool, err error)
	Get(ctx context.Context, movieID, customerID int64) (*domain.Rating, error)
	ListByCustomer(ctx context.Context, customerID int64) ([]domain.Rating, error)
}
