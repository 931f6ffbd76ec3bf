package service

import (
	"context"
	"errors"
	"fmt"

	"movie-catalog/internal/domain"
	"movie-catalog/internal/repository"
)

// ErrInvalidRating indicates a rating value outside the accepted range.
var ErrInvalidRating = fmt.Errorf("rating must be an integer between %d and %d", domain.MinRating, domain.MaxRating)

// ErrMovieNotFound indicates the referenced movie does not exist.
var ErrMovieNotFound = errors.New("movie not found")

// RatingService coordinates rating submissions and lookups.
type RatingService interface {
	// SubmitRating validates and idempotently upserts one customer's rating
	// for one movie. The returned flag reports whether the rating was newly
	// created rather than updated in place.
	SubmitRating(ctx context.Context, customerID, movieID int64, value int) (*domain.Rating, bool, error)
	// ListByCustomer returns the customer's ratings keyed by movie id.
	ListByCustomer(ctx context.Context, customerID int64) (map[int64]int, error)
}

type ratingService struct {
	ratings repository.RatingRepository
	movies  repository.MovieRepository
}

func NewRatingService(ratings repository.RatingRepository, movies repository.MovieRepository) RatingService {
	return &ratingService{
		ratings: ratings,
		movies:  movies,
	}
}

func (s *ratingService) SubmitRating(ctx context.Context, customerID, movieID int64, value int) (*domain.Rating, bool, error) {
	if !domain.ValidRatingValue(value) {
		return nil, false, ErrInvalidRating
	}

	if _, err := s.movies.Get(ctx, movieID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, false, ErrMovieNotFound
		}
		return nil, false, err
	}

	rating := &domain.Rating{
		MovieID:    movieID,
		CustomerID: customerID,
		Value:      value,
	}

	created, err := s.ratings.Upsert(ctx, rating)
	if err != nil {
		return nil, false, err
	}
	return rating, created, nil
}

func (s *ratingService) ListByCustomer(ctx context.Context, customerID int64) (map[int64]int, error) {
	ratings, err := s.ratings.ListByCustomer(ctx, customerID)
	if err != nil {
		return nil, err
	}

	byMovie := make(map[int64]int, len(ratings))
	for _, rating := range ratings {
		byMovie[rating.MovieID] = rating.Value
	}
	return byMovie, nil
}
