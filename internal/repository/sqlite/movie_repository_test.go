package sqlite

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"movie-catalog/internal/domain"
	"movie-catalog/internal/repository"
)

func TestMovieListUnratedAverageIsZero(t *testing.T) {
	_, movies, _ := openTestDB(t)
	ctx := context.Background()
	addMovie(t, movies, "Stalker")

	listed, err := movies.List(ctx)
	require.NoError(t, err)
	require.Len(t, listed, 1)
	assert.Equal(t, "Stalker", listed[0].Title)
	assert.Equal(t, float64(0), listed[0].AverageRating)
}

func TestMovieAverageAggregatesRatings(t *testing.T) {
	ratings, movies, _ := openTestDB(t)
	ctx := context.Background()
	movieID := addMovie(t, movies, "Seven Samurai")
	addMovie(t, movies, "Unrated Filler")

	for customer, value := range map[int64]int{1: 5, 2: 4, 3: 4} {
		_, err := ratings.Upsert(ctx, &domain.Rating{MovieID: movieID, CustomerID: customer, Value: value})
		require.NoError(t, err)
	}

	movie, err := movies.Get(ctx, movieID)
	require.NoError(t, err)
	assert.InDelta(t, 4.33, movie.AverageRating, 0.001)

	listed, err := movies.List(ctx)
	require.NoError(t, err)
	require.Len(t, listed, 2)
	for _, m := range listed {
		if m.ID != movieID {
			assert.Equal(t, float64(0), m.AverageRating)
		}
	}
}

func TestMovieGetMissing(t *testing.T) {
	_, movies, _ := openTestDB(t)

	_, err := movies.Get(context.Background(), 9999)
	assert.ErrorIs(t, err, repository.ErrNotFound)
}
