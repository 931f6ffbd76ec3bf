package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"movie-catalog/internal/domain"
	"movie-catalog/internal/repository"
)

const createRatingsTable = `
CREATE TABLE IF NOT EXISTS movie_ratings (
	movie_id INTEGER NOT NULL REFERENCES movies(id),
	customer_id INTEGER NOT NULL,
	rating INTEGER NOT NULL,
	created_at DATETIME NOT NULL,
	updated_at DATETIME NOT NULL,
	PRIMARY KEY (movie_id, customer_id)
);
`

type RatingRepository struct {
	db *sql.DB
}

func NewRatingRepository(db *sql.DB) repository.RatingRepository {
	return &RatingRepository{db: db}
}

func (r *RatingRepository) Init(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, createRatingsTable); err != nil {
		return fmt.Errorf("create movie_ratings table: %w", err)
	}
	return nil
}

// Upsert writes the rating for (movie, customer) as one transaction: an
// existence probe for the created/updated report, then an insert that falls
// back to an in-place update on the composite key conflict. The unique
// primary key backstops concurrent submissions for the same pair.
func (r *RatingRepository) Upsert(ctx context.Context, rating *domain.Rating) (bool, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return false, fmt.Errorf("begin rating upsert: %w", err)
	}
	defer tx.Rollback()

	var exists int
	err = tx.QueryRowContext(ctx, `
SELECT 1 FROM movie_ratings WHERE movie_id = ? AND customer_id = ?`,
		rating.MovieID,
		rating.CustomerID,
	).Scan(&exists)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return false, fmt.Errorf("probe rating: %w", err)
	}
	created := errors.Is(err, sql.ErrNoRows)

	now := time.Now().UTC()
	_, err = tx.ExecContext(ctx, `
INSERT INTO movie_ratings (movie_id, customer_id, rating, created_at, updated_at)
VALUES (?, ?, ?, ?, ?)
ON CONFLICT(movie_id, customer_id) DO UPDATE SET
	rating = excluded.rating,
	updated_at = excluded.updated_at`,
		rating.MovieID,
		rating.CustomerID,
		rating.Value,
		now,
		now,
	)
	if err != nil {
		return false, fmt.Errorf("upsert rating: %w", err)
	}

	row := tx.QueryRowContext(ctx, `
SELECT movie_id, customer_id, rating, created_at, updated_at
FROM movie_ratings
WHERE movie_id = ? AND customer_id = ?`,
		rating.MovieID,
		rating.CustomerID,
	)
	if err := scanRating(row, rating); err != nil {
		return false, err
	}

	if err := tx.Commit(); err != nil {
		return false, fmt.Errorf("commit rating upsert: %w", err)
	}
	return created, nil
}

func (r *RatingRepository) Get(ctx context.Context, movieID, customerID int64) (*domain.Rating, error) {
	row := r.db.QueryRowContext(ctx, `
SELECT movie_id, customer_id, rating, created_at, updated_at
FROM movie_ratings
WHERE movie_id = ? AND customer_id = ?`,
		movieID,
		customerID,
	)

	var rating domain.Rating
	if err := scanRating(row, &rating); err != nil {
		return nil, err
	}
	return &rating, nil
}

func (r *RatingRepository) ListByCustomer(ctx context.Context, customerID int64) ([]domain.Rating, error) {
	rows, err := r.db.QueryContext(ctx, `
SELECT movie_id, customer_id, rating, created_at, updated_at
FROM movie_ratings
WHERE customer_id = ?`,
		customerID,
	)
	if err != nil {
		return nil, fmt.Errorf("list ratings: %w", err)
	}
	defer rows.Close()

	var ratings []domain.Rating
	for rows.Next() {
		var rating domain.Rating
		if err := scanRating(rows, &rating); err != nil {
			return nil, err
		}
		ratings = append(ratings, rating)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate ratings: %w", err)
	}
	return ratings, nil
}

func scanRating(row interface {
	Scan(dest ...any) error
}, rating *domain.Rating) error {
	if err := row.Scan(
		&rating.MovieID,
		&rating.CustomerID,
		&rating.Value,
		&rating.CreatedAt,
		&rating.UpdatedAt,
	); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return fmt.Errorf("rating: %w", repository.ErrNotFound)
		}
		return fmt.Errorf("scan rating: %w", err)
	}
	return nil
}
