package usecase

import (
	"context"

	"loyalty/internal/domain/entity"

	"github.com/google/uuid"
)

// CoinHistoryPage is one page of a client's coin ledger, newest first.
type CoinHistoryPage struct {
	Items  []*entity.CoinHistory `json:"items"`
	Total  int64                 `json:"total"`
	Limit  int                   `json:"limit"`
	Offset int                   `json:"offset"`
}

// CoinUsecase defines the read side of the coin ledger.
type CoinUsecase interface {
	// GetBalance returns the client's balance and its rupiah value under the current coin rule
	GetBalance(ctx context.Context, clientID uuid.UUID) (*entity.CoinBalance, error)

	// PreviewDiscount quotes spending coins on an order without changing any state
	PreviewDiscount(ctx context.Context, clientID uuid.UUID, coinsToUse, orderTotal int64) (*entity.CoinDiscountQuote, error)

	// GetHistory lists the client's coin movements
	GetHistory(ctx context.Context, clientID uuid.UUID, limit, offset int) (*CoinHistoryPage, error)
}
