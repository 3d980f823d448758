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
	"gorm.io/gorm/clause"
	"gorm.io/plugin/dbresolver"
)

// clientRepository implements the repository.ClientRepository interface.
type clientRepository struct {
	db *gorm.DB
}

// NewClientRepository is the constructor for clientRepository.
func NewClientRepository(db *gorm.DB) repository.ClientRepository {
	return &clientRepository{
		db: db,
	}
}

// FindClientByID retrieves a client by ID. Balances are read from the primary so a quote
// never lags behind a debit the same client just made.
func (repo *clientRepository) FindClientByID(ctx context.Context, id uuid.UUID) (*entity.Client, error) {
	var clientM model.ClientModel

	if err := repo.db.WithContext(ctx).
		Clauses(dbresolver.Write).
		Where("id = ?", id).
		First(&clientM).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, repository.ErrClientNotFound
		}

		return nil, errors.Wrap(err, "failed to find client by ID")
	}

	return toClientDomain(&clientM), nil
}

// FindClientByIDForUpdate retrieves a client and locks the row.
func (repo *clientRepository) FindClientByIDForUpdate(ctx context.Context, id uuid.UUID) (*entity.Client, error) {
	var clientM model.ClientModel

	if err := repo.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("id = ?", id).
		First(&clientM).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, repository.ErrClientNotFound
		}

		return nil, errors.Wrap(err, "failed to lock client")
	}

	return toClientDomain(&clientM), nil
}

// AdjustCoinBalance applies delta with a conditional update so the balance never goes negative.
func (repo *clientRepository) AdjustCoinBalance(ctx context.Context, id uuid.UUID, delta int64) (int64, error) {
	var clientM model.ClientModel

	result := repo.db.WithContext(ctx).
		Model(&clientM).
		Clauses(clause.Returning{Columns: []clause.Column{{Name: "coin_balance"}}}).
		Where("id = ? AND coin_balance + ? >= 0", id, delta).
		Update("coin_balance", gorm.Expr("coin_balance + ?", delta))
	if result.Error != nil {
		if isCheckConstraintViolation(result.Error) {
			return 0, repository.ErrInsufficientCoins
		}

		return 0, domainerrors.NewDatabaseExecuteError(result.Error, "failed to adjust coin balance")
	}

	if result.RowsAffected == 0 {
		// Either the client is gone or the debit would overdraw the balance.
		var count int64
		if err := repo.db.WithContext(ctx).Model(&model.ClientModel{}).Where("id = ?", id).Count(&count).Error; err != nil {
			return 0, errors.Wrap(err, "failed to check client existence")
		}
		if count == 0 {
			return 0, repository.ErrClientNotFound
		}

		return 0, repository.ErrInsufficientCoins
	}

	return clientM.CoinBalance, nil
}

// toClientDomain converts a GORM ClientModel to a domain Client entity.
func toClientDomain(data *model.ClientModel) *entity.Client {
	if data == nil {
		return nil
	}

	return &entity.Client{
		ID:          data.ID,
		FullName:    data.FullName,
		Level:       data.Level,
		CoinBalance: data.CoinBalance,
		CreatedAt:   data.CreatedAt,
		UpdatedAt:   data.UpdatedAt,
	}
}
