package repository

import (
	"context"

	"loyalty/internal/domain/entity"
	"loyalty/internal/errors"

	"github.com/google/uuid"
)

// Domain-specific errors for order persistence.
var (
	// ErrOrderNotFound is returned when an order does not exist or belongs to another client.
	ErrOrderNotFound = errors.New("order not found")
	// ErrStaffNotAssigned is returned when no item of the order carries the requested role.
	ErrStaffNotAssigned = errors.New("staff not assigned to order")
)

// OrderRepository is a read-only view on orders owned by the order service.
type OrderRepository interface {
	// FindOrderForClient retrieves an order, including items, only if it belongs to the client.
	FindOrderForClient(ctx context.Context, orderID, clientID uuid.UUID) (*entity.Order, error)

	// FindAssignedStaffID returns the first non-null assignment for an order-scoped role among the order's items.
	FindAssignedStaffID(ctx context.Context, orderID uuid.UUID, role entity.StaffRole) (uuid.UUID, error)

	// FindOrdersByClientAndStatus lists a client's orders in the given status, newest first.
	FindOrdersByClientAndStatus(ctx context.Context, clientID uuid.UUID, status string) ([]*entity.Order, error)
}
