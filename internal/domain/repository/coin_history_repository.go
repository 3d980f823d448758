package repository

import (
	"context"

	"loyalty/internal/domain/entity"

	"github.com/google/uuid"
)

// CoinHistoryRepository defines the interface for the coin ledger journal.
type CoinHistoryRepository interface {
	// CreateCoinHistory appends a ledger movement.
	CreateCoinHistory(ctx context.Context, history *entity.CoinHistory) error

	// FindCoinHistoryByClient returns one page of a client's movements, newest first, and the total count.
	FindCoinHistoryByClient(ctx context.Context, clientID uuid.UUID, limit, offset int) ([]*entity.CoinHistory, int64, error)
}
