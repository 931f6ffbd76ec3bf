package repository

import (
	"context"

	"movie-catalog/internal/domain"
)

// MovieRepository defines read access to the catalog. List and Get carry the
// average-rating aggregate (0 when a movie has no ratings). Create exists for
// the seed loader; the service itself never writes movies.
type MovieRepository interface {
	Init(ctx context.Context) error
	Create(ctx context.Context, movie *domain.Movie) (int64, error)
	List(ctx context.Context) ([]domain.Movie, error)
	Get(ctx context.Context, id int64) (*domain.Movie, error)
	Count(ctx context.Context) (int64, error)
}
