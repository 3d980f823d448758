package repository

import (
	"context"

	"loyalty/internal/domain/entity"
	"loyalty/internal/errors"

	"github.com/google/uuid"
)

// Domain-specific errors for rating persistence.
var (
	// ErrRatingNotFound is returned when no rating exists for (order, staff, client).
	ErrRatingNotFound = errors.New("rating not found")
	// ErrDuplicateRating is returned when inserting a second rating for (order, staff, client).
	ErrDuplicateRating = errors.New("rating already exists")
)

// RatingRepository defines the interface for staff ratings.
type RatingRepository interface {
	// FindRating retrieves the rating a client gave a staff member on an order.
	FindRating(ctx context.Context, orderID, staffID, clientID uuid.UUID) (*entity.Rating, error)

	// CreateRating persists a new rating.
	CreateRating(ctx context.Context, rating *entity.Rating) error

	// UpdateRating overwrites score and comment of an existing rating; its role is kept.
	UpdateRating(ctx context.Context, rating *entity.Rating) error

	// FindRatingsByOrder lists the ratings a client gave on an order, with staff names.
	FindRatingsByOrder(ctx context.Context, orderID, clientID uuid.UUID) ([]*entity.OrderRating, error)

	// FindRatedRoles returns, per order, the distinct roles among the given ones the client has rated.
	FindRatedRoles(ctx context.Context, clientID uuid.UUID, orderIDs []uuid.UUID, roles []entity.StaffRole) (map[uuid.UUID][]entity.StaffRole, error)
}
