package repository

import (
	"context"

	"loyalty/internal/domain/entity"
	"loyalty/internal/errors"

	"github.com/google/uuid"
)

// ErrStaffNotFound is returned when a staff member is not found.
var ErrStaffNotFound = errors.New("staff not found")

// StaffRepository defines the interface for staff records and their rating aggregates.
type StaffRepository interface {
	// FindStaffByID retrieves a staff member by ID.
	FindStaffByID(ctx context.Context, id uuid.UUID) (*entity.Staff, error)

	// FindStaffByIDForUpdate retrieves a staff member and locks the row until the transaction ends.
	FindStaffByIDForUpdate(ctx context.Context, id uuid.UUID) (*entity.Staff, error)

	// FindStaffByRole returns one holder of a shop-wide role.
	FindStaffByRole(ctx context.Context, role entity.StaffRole) (*entity.Staff, error)

	// UpdateStaffRating persists the rating aggregate.
	UpdateStaffRating(ctx context.Context, id uuid.UUID, count, total int64, average float64) error
}
