package service

import (
	"context"
	"errors"

	"movie-catalog/internal/domain"
	"movie-catalog/internal/repository"
)

// MovieService exposes read-only catalog queries.
type MovieService interface {
	ListMovies(ctx context.Context) ([]domain.Movie, error)
	GetMovie(ctx context.Context, id int64) (*domain.Movie, error)
}

type movieService struct {
	movies repository.MovieRepository
}

func NewMovieService(movies repository.MovieRepository) MovieService {
	return &movieService{movies: movies}
}

func (s *movieService) ListMovies(ctx context.Context) ([]domain.Movie, error) {
	return s.movies.List(ctx)
}

func (s *movieService) GetMovie(ctx context.Context, id int64) (*domain.Movie, error) {
	movie, err := s.movies.Get(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrMovieNotFound
		}
		return nil, err
	}
	return movie, nil
}
