package repository

import (
	"context"
	"time"

	"loyalty/internal/domain/entity"
	"loyalty/internal/errors"

	"github.com/google/uuid"
)

// Domain-specific errors for voucher persistence.
var (
	// ErrClientVoucherNotFound is returned when the client does not hold the voucher.
	ErrClientVoucherNotFound = errors.New("client voucher not found")
	// ErrDuplicateClientVoucher is returned when the client already holds the voucher.
	ErrDuplicateClientVoucher = errors.New("client voucher already exists")
	// ErrReservationNotFound is returned when a reservation token is unknown.
	ErrReservationNotFound = errors.New("voucher reservation not found")
)

// ClientVoucherRepository defines the interface for vouchers held by clients.
type ClientVoucherRepository interface {
	// CreateClientVoucher persists a claim. It returns ErrDuplicateClientVoucher when
	// (client_id, voucher_code) already exists.
	CreateClientVoucher(ctx context.Context, cv *entity.ClientVoucher) error

	// FindClientVoucher retrieves the claim of a code by a client, used or not.
	FindClientVoucher(ctx context.Context, clientID uuid.UUID, code string) (*entity.ClientVoucher, error)

	// FindClientVoucherForUpdate retrieves the claim and locks it until the transaction ends.
	FindClientVoucherForUpdate(ctx context.Context, clientID uuid.UUID, code string) (*entity.ClientVoucher, error)

	// FindUnusedClientVouchers lists a client's unused claims, newest first.
	FindUnusedClientVouchers(ctx context.Context, clientID uuid.UUID) ([]*entity.ClientVoucher, error)

	// FindClaimedCodes returns the set of codes the client has ever claimed.
	FindClaimedCodes(ctx context.Context, clientID uuid.UUID) (map[string]bool, error)

	// CountClaimants counts distinct clients holding the code.
	CountClaimants(ctx context.Context, code string) (int64, error)

	// MarkClientVoucherUsed flags a claim as used at the given time.
	MarkClientVoucherUsed(ctx context.Context, id uuid.UUID, usedAt time.Time) error
}

// VoucherUsageRepository defines the interface for voucher usage records and reservations.
type VoucherUsageRepository interface {
	// CreateVoucherHistory records the application of a voucher to an order.
	CreateVoucherHistory(ctx context.Context, history *entity.VoucherHistory) error

	// CountVoucherUsage counts how many times a client applied a code.
	CountVoucherUsage(ctx context.Context, clientID uuid.UUID, code string) (int64, error)

	// CreateReservation persists a validated reservation.
	CreateReservation(ctx context.Context, reservation *entity.VoucherReservation) error

	// FindReservation retrieves a reservation by token without locking it.
	FindReservation(ctx context.Context, token uuid.UUID) (*entity.VoucherReservation, error)

	// FindReservationForUpdate retrieves a reservation by token and locks it.
	FindReservationForUpdate(ctx context.Context, token uuid.UUID) (*entity.VoucherReservation, error)

	// MarkReservationConsumed binds a reservation to the order that consumed it.
	MarkReservationConsumed(ctx context.Context, token uuid.UUID, orderID uuid.UUID, consumedAt time.Time) error
}
