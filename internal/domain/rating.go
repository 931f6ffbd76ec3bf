package domain

import "time"

// Rating bounds accepted from customers.
const (
	MinRating = 1
	MaxRating = 5
)

// Rating is one customer's rating for one movie. At most one row exists per
// (MovieID, CustomerID) pair; resubmission updates the row in place.
type Rating struct {
	MovieID    int64
	CustomerID int64
	Value      int
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// ValidRatingValue reports whether v is an accepted rating.
func ValidRatingValue(v int) bool {
	return v >= MinRating && v <= MaxRating
}
