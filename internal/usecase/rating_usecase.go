package usecase

import (
	"context"

	"loyalty/internal/domain/entity"

	"github.com/google/uuid"
)

// SubmitRatingInput is a client's score for the staff member holding a role on an order.
type SubmitRatingInput struct {
	OrderID  uuid.UUID
	ClientID uuid.UUID
	UserType string
	Rating   int
	Comment  string
}

// RatingUsecase defines the staff rating use cases.
type RatingUsecase interface {
	// SubmitRating creates or updates the client's rating and refreshes the staff average
	SubmitRating(ctx context.Context, input *SubmitRatingInput) (*entity.RatingResult, error)

	// GetOrdersNeedingRating lists completed orders that still miss an order-scoped rating
	GetOrdersNeedingRating(ctx context.Context, clientID uuid.UUID) ([]*entity.PendingRatingOrder, error)

	// GetOrderRatings lists the ratings the client gave on one of their orders
	GetOrderRatings(ctx context.Context, orderID, clientID uuid.UUID) ([]*entity.OrderRating, error)
}
