package usecase

import (
	"context"

	"loyalty/internal/domain/entity"

	"github.com/google/uuid"
)

// VoucherOrderInput describes the order a voucher is checked against.
type VoucherOrderInput struct {
	ClientID      uuid.UUID
	Code          string
	OrderTotal    int64
	PaymentMethod string
}

// VoucherUsecase defines the read side of the voucher engine.
type VoucherUsecase interface {
	// ValidateForOrder previews the discount a held voucher gives on an order
	ValidateForOrder(ctx context.Context, input *VoucherOrderInput) (*entity.VoucherValidation, error)

	// GetMyVouchers lists the client's unused vouchers that can be used right now
	GetMyVouchers(ctx context.Context, clientID uuid.UUID) ([]*entity.OwnedVoucher, error)

	// GetAvailableVouchers lists the vouchers open for claiming, flagging the ones already claimed
	GetAvailableVouchers(ctx context.Context, clientID uuid.UUID) ([]*entity.AvailableVoucher, error)
}
