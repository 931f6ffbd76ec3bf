package repository

import (
	"context"

	"movie-catalog/internal/domain"
)

// UserRepository defines persistence operations for User entities.
type UserRepository interface {
	Init(ctx context.Context) error
	Create(ctx context.Context, user *domain.User) (int64, error)
	GetByID(ctx context.Context, id int64) (*domain.User, error)
	// GetByUsernameOrEmail matches a single identifier against both the
	// username and email columns.
	GetByUsernameOrEmail(ctx context.Context, identifier string) (*domain.User, error)
}
