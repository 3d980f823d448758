package impl

import (
	"context"
	"testing"
	"time"

	"loyalty/internal/domain/entity"
	domainerrors "loyalty/internal/domain/errors"
	"loyalty/internal/usecase"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validateInput(clientID uuid.UUID, code string, total int64, method string) *usecase.VoucherOrderInput {
	return &usecase.VoucherOrderInput{ClientID: clientID, Code: code, OrderTotal: total, PaymentMethod: method}
}

func TestVoucherService_ValidateForOrder_PercentCap(t *testing.T) {
	fx := createTestLoyalty(t)
	client := fx.seedClient(0)
	fx.seedPercentVoucher("HEMAT20", 20, 10000)
	_, err := fx.redemption.ClaimVoucher(context.Background(), client.ID, "HEMAT20")
	require.NoError(t, err)

	result, err := fx.voucher.ValidateForOrder(context.Background(), validateInput(client.ID, " HEMAT20 ", 100000, "qris"))
	require.NoError(t, err)
	assert.Equal(t, &entity.VoucherValidation{
		Code:           "HEMAT20",
		Description:    "Diskon persen",
		DiscountLabel:  "20%",
		OrderTotal:     100000,
		DiscountAmount: 10000,
		FinalTotal:     90000,
		PaymentMethod:  "qris",
	}, result)

	// Validation is a preview: the voucher stays unused and nothing is recorded.
	claims := fx.store.ClientVouchers()
	require.Len(t, claims, 1)
	assert.False(t, claims[0].IsUsed)
	assert.Empty(t, fx.store.VoucherHistories())
}

func TestVoucherService_ValidateForOrder_AmountLargerThanTotal(t *testing.T) {
	fx := createTestLoyalty(t)
	client := fx.seedClient(0)
	fx.seedAmountVoucher("POTONG50K", 50000)
	_, err := fx.redemption.ClaimVoucher(context.Background(), client.ID, "POTONG50K")
	require.NoError(t, err)

	result, err := fx.voucher.ValidateForOrder(context.Background(), validateInput(client.ID, "POTONG50K", 30000, "cash"))
	require.NoError(t, err)
	assert.Equal(t, int64(50000), result.DiscountAmount)
	assert.Equal(t, int64(0), result.FinalTotal)
	assert.Equal(t, "Rp 50000", result.DiscountLabel)
}

func TestVoucherService_ValidateForOrder_Rejections(t *testing.T) {
	tests := []struct {
		name        string
		rule        func(r *entity.VoucherRule)
		input       func(clientID uuid.UUID) *usecase.VoucherOrderInput
		prepare     func(t *testing.T, fx *loyaltyFixtures, clientID uuid.UUID)
		wantErr     error
		wantPayload map[string]any
	}{
		{
			name:        "below minimum transaction",
			rule:        func(r *entity.VoucherRule) { r.MinTransaction = 50000 },
			input:       func(id uuid.UUID) *usecase.VoucherOrderInput { return validateInput(id, "PROMO", 40000, "cash") },
			wantErr:     domainerrors.ErrBelowMinimum,
			wantPayload: map[string]any{"minimum": int64(50000)},
		},
		{
			name:        "payment method not allowed",
			rule:        func(r *entity.VoucherRule) { r.AllowedPaymentMethods = []string{"qris", "transfer"} },
			input:       func(id uuid.UUID) *usecase.VoucherOrderInput { return validateInput(id, "PROMO", 40000, "cash") },
			wantErr:     domainerrors.ErrPaymentNotAllowed,
			wantPayload: map[string]any{"allowed_payment_methods": []string{"qris", "transfer"}},
		},
		{
			name:    "not yet active",
			rule:    func(r *entity.VoucherRule) { r.StartDate = ptr(time.Date(2026, 4, 1, 0, 0, 0, 0, time.UTC)) },
			input:   func(id uuid.UUID) *usecase.VoucherOrderInput { return validateInput(id, "PROMO", 40000, "cash") },
			wantErr: domainerrors.ErrVoucherNotYetActive,
		},
		{
			name:    "expired",
			rule:    func(r *entity.VoucherRule) { r.EndDate = ptr(time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)) },
			input:   func(id uuid.UUID) *usecase.VoucherOrderInput { return validateInput(id, "PROMO", 40000, "cash") },
			wantErr: domainerrors.ErrVoucherExpired,
		},
		{
			name:    "inactive",
			rule:    func(r *entity.VoucherRule) { r.IsActive = false },
			input:   func(id uuid.UUID) *usecase.VoucherOrderInput { return validateInput(id, "PROMO", 40000, "cash") },
			wantErr: domainerrors.ErrVoucherNotFound,
		},
		{
			name: "both discount modes set",
			rule: func(r *entity.VoucherRule) {
				pct := decimal.NewFromInt(10)
				r.DiscountPercent = &pct
			},
			input:   func(id uuid.UUID) *usecase.VoucherOrderInput { return validateInput(id, "PROMO", 40000, "cash") },
			wantErr: domainerrors.ErrMisconfiguredRule,
		},
		{
			name:    "not owned",
			input:   func(id uuid.UUID) *usecase.VoucherOrderInput { return validateInput(id, "OTHER", 40000, "cash") },
			wantErr: domainerrors.ErrVoucherNotOwned,
		},
		{
			name:    "invalid total",
			input:   func(id uuid.UUID) *usecase.VoucherOrderInput { return validateInput(id, "PROMO", 0, "cash") },
			wantErr: domainerrors.ErrValidationFailed,
		},
		{
			name: "usage limit reached",
			rule: func(r *entity.VoucherRule) { r.MaxUsagePerClient = 0 },
			input: func(id uuid.UUID) *usecase.VoucherOrderInput {
				return validateInput(id, "PROMO", 40000, "cash")
			},
			wantErr:     domainerrors.ErrUsageLimitReached,
			wantPayload: map[string]any{"max_usage_per_client": int64(0)},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fx := createTestLoyalty(t)
			client := fx.seedClient(0)

			amount := int64(5000)
			rule := entity.VoucherRule{
				Code:              "PROMO",
				DiscountAmount:    &amount,
				IsActive:          true,
				MaxUsagePerClient: 1,
			}
			fx.store.SeedVoucherRule(rule)
			_, err := fx.redemption.ClaimVoucher(context.Background(), client.ID, "PROMO")
			require.NoError(t, err)

			// Rules change after the claim, so the claim itself is never rejected.
			if tt.rule != nil {
				tt.rule(&rule)
				fx.store.SeedVoucherRule(rule)
			}

			_, err = fx.voucher.ValidateForOrder(context.Background(), tt.input(client.ID))
			require.ErrorIs(t, err, tt.wantErr)
			if tt.wantPayload != nil {
				requirePayload(t, err, tt.wantPayload)
			}
		})
	}
}

func TestVoucherService_ValidateForOrder_UsedVoucherIsNotOwned(t *testing.T) {
	fx := createTestLoyalty(t)
	client := fx.seedClient(0)
	fx.seedAmountVoucher("POTONG5K", 5000)
	_, err := fx.redemption.ClaimVoucher(context.Background(), client.ID, "POTONG5K")
	require.NoError(t, err)

	reserved, err := fx.redemption.ReserveVoucher(context.Background(), validateInput(client.ID, "POTONG5K", 40000, "cash"))
	require.NoError(t, err)
	_, err = fx.redemption.RedeemReservation(context.Background(), &usecase.RedeemReservationInput{
		ClientID: client.ID,
		Token:    *reserved.ReservationID,
		OrderID:  uuid.New(),
	})
	require.NoError(t, err)

	_, err = fx.voucher.ValidateForOrder(context.Background(), validateInput(client.ID, "POTONG5K", 40000, "cash"))
	assert.ErrorIs(t, err, domainerrors.ErrVoucherNotOwned)
}

func TestVoucherService_GetMyVouchers(t *testing.T) {
	fx := createTestLoyalty(t)
	client := fx.seedClient(0)
	fx.seedAmountVoucher("AKTIF", 5000)
	ending := fx.seedAmountVoucher("SEGERA", 5000)
	for _, code := range []string{"AKTIF", "SEGERA"} {
		_, err := fx.redemption.ClaimVoucher(context.Background(), client.ID, code)
		require.NoError(t, err)
	}

	ending.EndDate = ptr(fx.clock().Add(-time.Minute))
	fx.store.SeedVoucherRule(ending)

	owned, err := fx.voucher.GetMyVouchers(context.Background(), client.ID)
	require.NoError(t, err)
	require.Len(t, owned, 1)
	assert.Equal(t, "AKTIF", owned[0].VoucherCode)
	assert.Equal(t, "AKTIF", owned[0].Rule.Code)
}

func TestVoucherService_GetAvailableVouchers(t *testing.T) {
	fx := createTestLoyalty(t)
	client := fx.seedClient(0)
	fx.seedPercentVoucher("HEMAT20", 20, 10000)
	fx.seedAmountVoucher("POTONG5K", 5000)
	fx.store.SeedVoucherRule(entity.VoucherRule{Code: "MATI", IsActive: false, DiscountAmount: ptr(int64(1000))})
	_, err := fx.redemption.ClaimVoucher(context.Background(), client.ID, "HEMAT20")
	require.NoError(t, err)

	available, err := fx.voucher.GetAvailableVouchers(context.Background(), client.ID)
	require.NoError(t, err)
	require.Len(t, available, 2)

	byCode := map[string]*entity.AvailableVoucher{}
	for _, v := range available {
		byCode[v.Rule.Code] = v
	}
	assert.True(t, byCode["HEMAT20"].AlreadyClaimed)
	assert.Equal(t, "20%", byCode["HEMAT20"].DiscountLabel)
	assert.False(t, byCode["POTONG5K"].AlreadyClaimed)
	assert.NotContains(t, byCode, "MATI")
}
