package domain

import "time"

// Movie is a catalog entry. Rows are loaded by an external process; this
// service only reads them.
type Movie struct {
	ID          int64
	Title       string
	Genre       string
	ReleaseYear int
	CreatedAt   time.Time

	// AverageRating is the read-side aggregate over all submitted ratings,
	// 0 when the movie has none.
	AverageRating float64
}
