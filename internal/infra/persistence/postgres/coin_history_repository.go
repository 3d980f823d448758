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

// coinHistoryRepository implements the repository.CoinHistoryRepository interface.
type coinHistoryRepository struct {
	db *gorm.DB
}

// NewCoinHistoryRepository is the constructor for coinHistoryRepository.
func NewCoinHistoryRepository(db *gorm.DB) repository.CoinHistoryRepository {
	return &coinHistoryRepository{
		db: db,
	}
}

// CreateCoinHistory appends a ledger movement.
func (repo *coinHistoryRepository) CreateCoinHistory(ctx context.Context, history *entity.CoinHistory) error {
	historyM := &model.CoinHistoryModel{
		ID:           history.ID,
		ClientID:     history.ClientID,
		OrderID:      history.OrderID,
		Amount:       history.Amount,
		BalanceAfter: history.BalanceAfter,
		Kind:         string(history.Kind),
		Note:         history.Note,
		CreatedAt:    history.CreatedAt,
	}

	if err := repo.db.WithContext(ctx).Create(historyM).Error; err != nil {
		return domainerrors.NewDatabaseExecuteError(err, "failed to create coin history")
	}

	history.ID = historyM.ID
	history.CreatedAt = historyM.CreatedAt

	return nil
}

// FindCoinHistoryByClient returns one page of movements and the total count.
func (repo *coinHistoryRepository) FindCoinHistoryByClient(ctx context.Context, clientID uuid.UUID, limit, offset int) ([]*entity.CoinHistory, int64, error) {
	var total int64
	if err := repo.db.WithContext(ctx).
		Model(&model.CoinHistoryModel{}).
		Where("client_id = ?", clientID).
		Count(&total).Error; err != nil {
		return nil, 0, errors.Wrap(err, "failed to count coin history")
	}

	var historyModels []*model.CoinHistoryModel
	if err := repo.db.WithContext(ctx).
		Where("client_id = ?", clientID).
		Order("created_at DESC").
		Limit(limit).
		Offset(offset).
		Find(&historyModels).Error; err != nil {
		return nil, 0, errors.Wrap(err, "failed to find coin history")
	}

	histories := make([]*entity.CoinHistory, 0, len(historyModels))
	for _, historyM := range historyModels {
		histories = append(histories, &entity.CoinHistory{
			ID:           historyM.ID,
			ClientID:     historyM.ClientID,
			OrderID:      historyM.OrderID,
			Amount:       historyM.Amount,
			BalanceAfter: historyM.BalanceAfter,
			Kind:         entity.CoinHistoryKind(historyM.Kind),
			Note:         historyM.Note,
			CreatedAt:    historyM.CreatedAt,
		})
	}

	return histories, total, nil
}
