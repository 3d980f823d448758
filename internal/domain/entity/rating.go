package entity

import (
	"time"

	"github.com/google/uuid"
)

const (
	// MinRatingScore is the lowest accepted score.
	MinRatingScore = 1
	// MaxRatingScore is the highest accepted score.
	MaxRatingScore = 5
)

// IsValidRatingScore reports whether score is within [MinRatingScore, MaxRatingScore].
func IsValidRatingScore(score int) bool {
	return score >= MinRatingScore && score <= MaxRatingScore
}

// Rating is a client's score for one staff member on one order.
// It is unique per (OrderID, StaffID, ClientID); resubmissions update it in place.
type Rating struct {
	ID        uuid.UUID `json:"id"`
	OrderID   uuid.UUID `json:"order_id"`
	StaffID   uuid.UUID `json:"user_id"`
	ClientID  uuid.UUID `json:"client_id"`
	UserType  StaffRole `json:"user_type"`
	Score     int       `json:"rating"`
	Comment   string    `json:"comment"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// OrderRating is a rating joined with the rated staff member's name.
type OrderRating struct {
	Rating
	StaffName string `json:"staff_name"`
}

// RatingResult is returned after a rating submission.
type RatingResult struct {
	Rating      *Rating   `json:"rating"`
	Updated     bool      `json:"updated"`
	StaffID     uuid.UUID `json:"staff_id"`
	StaffName   string    `json:"staff_name"`
	RatingCount int64     `json:"rating_count"`
	RatingTotal int64     `json:"rating_total"`
	Average     float64   `json:"average"`
}
