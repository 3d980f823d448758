package impl

import (
	"context"

	"loyalty/internal/domain/entity"
	domainerrors "loyalty/internal/domain/errors"
	"loyalty/internal/domain/repository"

	"github.com/google/uuid"
	"github.com/pkg/errors"
)

// staffResolver finds the staff member a client rates for a role on an order.
type staffResolver func(ctx context.Context, repos repository.RepositoryFactory, orderID uuid.UUID, role entity.StaffRole) (*entity.Staff, error)

// staffResolvers holds one resolver per role. Roles assigned per order item resolve through
// the order; shop-wide roles resolve to whoever holds the role.
var staffResolvers = map[entity.StaffRole]staffResolver{
	entity.StaffRoleAdmin:     resolveAssignedStaff,
	entity.StaffRoleDesainer:  resolveAssignedStaff,
	entity.StaffRoleOperator:  resolveAssignedStaff,
	entity.StaffRoleOwner:     resolveStaffByRole,
	entity.StaffRoleMarketing: resolveStaffByRole,
	entity.StaffRoleKasir:     resolveStaffByRole,
}

func resolveAssignedStaff(ctx context.Context, repos repository.RepositoryFactory, orderID uuid.UUID, role entity.StaffRole) (*entity.Staff, error) {
	staffID, err := repos.NewOrderRepository().FindAssignedStaffID(ctx, orderID, role)
	if errors.Is(err, repository.ErrStaffNotAssigned) {
		return nil, domainerrors.ErrNotAssigned.WithPayload(map[string]any{"user_type": role})
	}
	if err != nil {
		return nil, errors.Wrap(err, "failed to find assigned staff")
	}

	staff, err := repos.NewStaffRepository().FindStaffByIDForUpdate(ctx, staffID)
	if errors.Is(err, repository.ErrStaffNotFound) {
		return nil, domainerrors.ErrStaffNotFound
	}
	if err != nil {
		return nil, errors.Wrap(err, "failed to lock staff")
	}
	// An item pointing at staff of another role is not an assignment for this role.
	if staff.Role != role {
		return nil, domainerrors.ErrNotAssigned.WithPayload(map[string]any{"user_type": role})
	}

	return staff, nil
}

func resolveStaffByRole(ctx context.Context, repos repository.RepositoryFactory, _ uuid.UUID, role entity.StaffRole) (*entity.Staff, error) {
	staffRepo := repos.NewStaffRepository()

	staff, err := staffRepo.FindStaffByRole(ctx, role)
	if errors.Is(err, repository.ErrStaffNotFound) {
		return nil, domainerrors.ErrStaffNotFound.WithPayload(map[string]any{"user_type": role})
	}
	if err != nil {
		return nil, errors.Wrap(err, "failed to find staff by role")
	}

	locked, err := staffRepo.FindStaffByIDForUpdate(ctx, staff.ID)
	if err != nil {
		return nil, errors.Wrap(err, "failed to lock staff")
	}

	return locked, nil
}
