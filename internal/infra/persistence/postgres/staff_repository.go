package postgres

import (
	"context"

	"loyalty/internal/domain/entity"
	"loyalty/internal/domain/repository"
	"loyalty/internal/infra/persistence/model"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// staffRepository implements the repository.StaffRepository interface.
type staffRepository struct {
	db *gorm.DB
}

// NewStaffRepository is the constructor for staffRepository.
func NewStaffRepository(db *gorm.DB) repository.StaffRepository {
	return &staffRepository{
		db: db,
	}
}

// FindStaffByID retrieves a staff member by ID.
func (repo *staffRepository) FindStaffByID(ctx context.Context, id uuid.UUID) (*entity.Staff, error) {
	return repo.findStaff(repo.db.WithContext(ctx).Where("id = ?", id))
}

// FindStaffByIDForUpdate retrieves a staff member and locks the row, serializing aggregate updates.
func (repo *staffRepository) FindStaffByIDForUpdate(ctx context.Context, id uuid.UUID) (*entity.Staff, error) {
	return repo.findStaff(repo.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("id = ?", id))
}

// FindStaffByRole returns the longest-standing holder of a role.
func (repo *staffRepository) FindStaffByRole(ctx context.Context, role entity.StaffRole) (*entity.Staff, error) {
	return repo.findStaff(repo.db.WithContext(ctx).
		Where("role = ?", role.String()).
		Order("id ASC"))
}

func (repo *staffRepository) findStaff(db *gorm.DB) (*entity.Staff, error) {
	var staffM model.StaffModel

	if err := db.First(&staffM).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, repository.ErrStaffNotFound
		}

		return nil, errors.Wrap(err, "failed to find staff")
	}

	return &entity.Staff{
		ID:          staffM.ID,
		FullName:    staffM.FullName,
		Role:        entity.StaffRole(staffM.Role),
		RatingCount: staffM.RatingCount,
		RatingTotal: staffM.RatingTotal,
		Rating:      staffM.Rating,
		UpdatedAt:   staffM.UpdatedAt,
	}, nil
}

// UpdateStaffRating persists the rating aggregate.
func (repo *staffRepository) UpdateStaffRating(ctx context.Context, id uuid.UUID, count, total int64, average float64) error {
	result := repo.db.WithContext(ctx).
		Model(&model.StaffModel{}).
		Where("id = ?", id).
		Updates(map[string]any{
			"rating_count": count,
			"rating_total": total,
			"rating":       average,
		})

	if result.Error != nil {
		return errors.Wrap(result.Error, "failed to update staff rating")
	}

	if result.RowsAffected == 0 {
		return repository.ErrStaffNotFound
	}

	return nil
}
