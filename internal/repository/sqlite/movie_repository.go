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

const createMoviesTable = `
CREATE TABLE IF NOT EXISTS movies (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	title TEXT NOT NULL,
	genre TEXT NOT NULL DEFAULT '',
	release_year INTEGER NOT NULL DEFAULT 0,
	created_at DATETIME NOT NULL
);
`

// selectMoviesWithRating joins each movie with the average of its ratings,
// reporting 0 for movies nobody has rated yet.
const selectMoviesWithRating = `
SELECT m.id, m.title, m.genre, m.release_year, m.created_at,
	ROUND(COALESCE(AVG(r.rating), 0), 2) AS rating
FROM movies m
LEFT JOIN movie_ratings r ON m.id = r.movie_id
`

type MovieRepository struct {
	db *sql.DB
}

func NewMovieRepository(db *sql.DB) repository.MovieRepository {
	return &MovieRepository{db: db}
}

func (r *MovieRepository) Init(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, createMoviesTable); err != nil {
		return fmt.Errorf("create movies table: %w", err)
	}
	return nil
}

func (r *MovieRepository) Create(ctx context.Context, movie *domain.Movie) (int64, error) {
	movie.CreatedAt = time.Now().UTC()

	res, err := r.db.ExecContext(ctx, `
INSERT INTO movies (title, genre, release_year, created_at)
VALUES (?, ?, ?, ?)`,
		movie.Title,
		movie.Genre,
		movie.ReleaseYear,
		movie.CreatedAt,
	)
	if err != nil {
		return 0, fmt.Errorf("insert movie: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("movie last insert id: %w", err)
	}
	movie.ID = id
	return id, nil
}

func (r *MovieRepository) List(ctx context.Context) ([]domain.Movie, error) {
	rows, err := r.db.QueryContext(ctx, selectMoviesWithRating+`GROUP BY m.id`)
	if err != nil {
		return nil, fmt.Errorf("list movies: %w", err)
	}
	defer rows.Close()

	var movies []domain.Movie
	for rows.Next() {
		var movie domain.Movie
		if err := scanMovie(rows, &movie); err != nil {
			return nil, err
		}
		movies = append(movies, movie)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate movies: %w", err)
	}
	return movies, nil
}

func (r *MovieRepository) Get(ctx context.Context, id int64) (*domain.Movie, error) {
	row := r.db.QueryRowContext(ctx, selectMoviesWithRating+`WHERE m.id = ? GROUP BY m.id`, id)

	var movie domain.Movie
	if err := scanMovie(row, &movie); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("movie %d: %w", id, repository.ErrNotFound)
		}
		return nil, err
	}
	return &movie, nil
}

func (r *MovieRepository) Count(ctx context.Context) (int64, error) {
	var n int64
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM movies`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count movies: %w", err)
	}
	return n, nil
}

func scanMovie(row interface {
	Scan(dest ...any) error
}, movie *domain.Movie) error {
	if err := row.Scan(
		&movie.ID,
		&movie.Title,
		&movie.Genre,
		&movie.ReleaseYear,
		&movie.CreatedAt,
		&movie.AverageRating,
	); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return err
		}
		return fmt.Errorf("scan movie: %w", err)
	}
	return nil
}
