package usecase

import (
	"context"

	"loyalty/internal/domain/entity"

	"github.com/google/uuid"
)

// RedeemReservationInput identifies a reservation either by token or by the payload of its QR code.
type RedeemReservationInput struct {
	ClientID uuid.UUID
	Token    uuid.UUID
	QRData   string
	OrderID  uuid.UUID
}

// CommitCoinInput describes coins being spent on a placed order.
type CommitCoinInput struct {
	ClientID   uuid.UUID
	CoinsToUse int64
	OrderTotal int64
	OrderID    uuid.UUID
}

// CoinCommitResult is the applied quote and the ledger row it produced.
type CoinCommitResult struct {
	Quote   *entity.CoinDiscountQuote `json:"quote"`
	History *entity.CoinHistory       `json:"history"`
}

// RedemptionUsecase groups every loyalty mutation. Each call is one transaction:
// a rejection at any step leaves no trace.
type RedemptionUsecase interface {
	// ClaimVoucher adds a voucher to the client's wallet
	ClaimVoucher(ctx context.Context, clientID uuid.UUID, code string) (*entity.ClientVoucher, error)

	// ReserveVoucher validates a held voucher for an order and holds the result under a short-lived token
	ReserveVoucher(ctx context.Context, input *VoucherOrderInput) (*entity.VoucherValidation, error)

	// RedeemReservation consumes a reservation exactly once and records the voucher usage
	RedeemReservation(ctx context.Context, input *RedeemReservationInput) (*entity.VoucherHistory, error)

	// GenerateReservationQR renders a pending reservation as a PNG QR code
	GenerateReservationQR(ctx context.Context, clientID, token uuid.UUID) ([]byte, error)

	// CommitCoinDiscount debits coins for an order after re-checking the coin rule
	CommitCoinDiscount(ctx context.Context, input *CommitCoinInput) (*CoinCommitResult, error)
}
