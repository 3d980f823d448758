package postgres

import (
	"context"

	"loyalty/internal/domain/entity"
	domainerrors "loyalty/internal/domain/errors"
	"loyalty/internal/domain/repository"
	"loyalty/internal/infra/persistence/model"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"gorm.io/gorm"
)

// ratingRepository implements the repository.RatingRepository interface.
type ratingRepository struct {
	db *gorm.DB
}

// NewRatingRepository is the constructor for ratingRepository.
func NewRatingRepository(db *gorm.DB) repository.RatingRepository {
	return &ratingRepository{
		db: db,
	}
}

// FindRating retrieves the rating for (order, staff, client).
func (repo *ratingRepository) FindRating(ctx context.Context, orderID, staffID, clientID uuid.UUID) (*entity.Rating, error) {
	var ratingM model.RatingModel

	if err := repo.db.WithContext(ctx).
		Where("order_id = ? AND user_id = ? AND client_id = ?", orderID, staffID, clientID).
		First(&ratingM).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, repository.ErrRatingNotFound
		}

		return nil, errors.Wrap(err, "failed to find rating")
	}

	return toRatingDomain(&ratingM), nil
}

// CreateRating persists a new rating.
func (repo *ratingRepository) CreateRating(ctx context.Context, rating *entity.Rating) error {
	ratingM := fromRatingDomain(rating)

	if err := repo.db.WithContext(ctx).Create(ratingM).Error; err != nil {
		if isUniqueConstraintViolation(err) {
			return repository.ErrDuplicateRating
		}
		if isTransactionConflict(err) {
			return errors.WithStack(err)
		}

		return domainerrors.NewDatabaseExecuteError(err, "failed to create rating")
	}

	rating.ID = ratingM.ID
	rating.CreatedAt = ratingM.CreatedAt
	rating.UpdatedAt = ratingM.UpdatedAt

	return nil
}

// UpdateRating overwrites the score and comment of an existing rating. The role it was
// first given is kept.
func (repo *ratingRepository) UpdateRating(ctx context.Context, rating *entity.Rating) error {
	result := repo.db.WithContext(ctx).
		Model(&model.RatingModel{}).
		Where("id = ?", rating.ID).
		Updates(map[string]any{
			"rating":     rating.Score,
			"comment":    rating.Comment,
			"updated_at": rating.UpdatedAt,
		})

	if result.Error != nil {
		return errors.Wrap(result.Error, "failed to update rating")
	}

	if result.RowsAffected == 0 {
		return repository.ErrRatingNotFound
	}

	return nil
}

type orderRatingRow struct {
	model.RatingModel
	StaffName string
}

// FindRatingsByOrder lists a client's ratings on an order with staff names.
func (repo *ratingRepository) FindRatingsByOrder(ctx context.Context, orderID, clientID uuid.UUID) ([]*entity.OrderRating, error) {
	var rows []*orderRatingRow

	if err := repo.db.WithContext(ctx).
		Model(&model.RatingModel{}).
		Select("ratings.*, staffs.full_name AS staff_name").
		Joins("JOIN staffs ON staffs.id = ratings.user_id").
		Where("ratings.order_id = ? AND ratings.client_id = ?", orderID, clientID).
		Order("ratings.created_at ASC").
		Scan(&rows).Error; err != nil {
		return nil, errors.Wrap(err, "failed to find ratings by order")
	}

	ratings := make([]*entity.OrderRating, 0, len(rows))
	for _, row := range rows {
		ratings = append(ratings, &entity.OrderRating{
			Rating:    *toRatingDomain(&row.RatingModel),
			StaffName: row.StaffName,
		})
	}

	return ratings, nil
}

type ratedRoleRow struct {
	OrderID  uuid.UUID
	UserType string
}

// FindRatedRoles returns the distinct rated roles per order.
func (repo *ratingRepository) FindRatedRoles(ctx context.Context, clientID uuid.UUID, orderIDs []uuid.UUID, roles []entity.StaffRole) (map[uuid.UUID][]entity.StaffRole, error) {
	rated := make(map[uuid.UUID][]entity.StaffRole, len(orderIDs))
	if len(orderIDs) == 0 || len(roles) == 0 {
		return rated, nil
	}

	roleNames := make([]string, 0, len(roles))
	for _, role := range roles {
		roleNames = append(roleNames, role.String())
	}

	var rows []ratedRoleRow
	if err := repo.db.WithContext(ctx).
		Model(&model.RatingModel{}).
		Distinct("order_id", "user_type").
		Where("client_id = ? AND order_id IN ? AND user_type IN ?", clientID, orderIDs, roleNames).
		Scan(&rows).Error; err != nil {
		return nil, errors.Wrap(err, "failed to find rated roles")
	}

	for _, row := range rows {
		rated[row.OrderID] = append(rated[row.OrderID], entity.StaffRole(row.UserType))
	}

	return rated, nil
}

// toRatingDomain converts a GORM RatingModel to a domain Rating entity.
func toRatingDomain(data *model.RatingModel) *entity.Rating {
	if data == nil {
		return nil
	}

	return &entity.Rating{
		ID:        data.ID,
		OrderID:   data.OrderID,
		StaffID:   data.UserID,
		ClientID:  data.ClientID,
		UserType:  entity.StaffRole(data.UserType),
		Score:     data.Rating,
		Comment:   data.Comment,
		CreatedAt: data.CreatedAt,
		UpdatedAt: data.UpdatedAt,
	}
}

// fromRatingDomain converts a domain Rating entity to a GORM RatingModel.
func fromRatingDomain(data *entity.Rating) *model.RatingModel {
	if data == nil {
		return nil
	}

	return &model.RatingModel{
		ID:        data.ID,
		OrderID:   data.OrderID,
		UserID:    data.StaffID,
		ClientID:  data.ClientID,
		UserType:  data.UserType.String(),
		Rating:    data.Score,
		Comment:   data.Comment,
		CreatedAt: data.CreatedAt,
		UpdatedAt: data.UpdatedAt,
	}
}
