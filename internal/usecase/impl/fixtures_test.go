package impl

import (
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"loyalty/config"
	"loyalty/internal/domain/entity"
	domainerrors "loyalty/internal/domain/errors"
	"loyalty/internal/infra/persistence/memory"
	"loyalty/internal/infra/qrcode"
	mockService "loyalty/internal/mocks/service"
	"loyalty/internal/usecase"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// loyaltyFixtures wires every use case to one in-memory store and a controllable clock.
type loyaltyFixtures struct {
	store      *memory.Store
	publisher  *mockService.MockEventPublisher
	coin       usecase.CoinUsecase
	voucher    usecase.VoucherUsecase
	redemption usecase.RedemptionUsecase
	rating     usecase.RatingUsecase

	clockMu sync.Mutex
	now     time.Time
}

func testConfig() *config.Config {
	return &config.Config{
		Loyalty: &config.LoyaltyConfig{
			DefaultCoinValue: 800,
			TxTimeout:        time.Second,
			TxMaxRetries:     2,
			RetryBackoff:     time.Millisecond,
			ReservationTTL:   15 * time.Minute,
			HistoryPageLimit: 20,
		},
	}
}

func createTestLoyalty(t *testing.T) *loyaltyFixtures {
	t.Helper()

	publisher := mockService.NewMockEventPublisher(t)
	publisher.EXPECT().PublishLoyaltyEvent(mock.Anything, mock.Anything).Return(nil).Maybe()

	return createTestLoyaltyWithPublisher(t, publisher)
}

func createTestLoyaltyWithPublisher(t *testing.T, publisher *mockService.MockEventPublisher) *loyaltyFixtures {
	t.Helper()

	fx := &loyaltyFixtures{
		store:     memory.NewStore(memory.WithTxTimeout(time.Second)),
		publisher: publisher,
		now:       time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC),
	}
	cfg := testConfig()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	repos := fx.store.Repositories()

	fx.coin = NewCoinService(CoinServiceParams{
		ClientRepo:  repos.NewClientRepository(),
		RuleRepo:    repos.NewRuleRepository(),
		HistoryRepo: repos.NewCoinHistoryRepository(),
		Config:      cfg,
		Logger:      logger,
	})
	fx.voucher = NewVoucherService(VoucherServiceParams{
		TxManager:         fx.store,
		RuleRepo:          repos.NewRuleRepository(),
		ClientVoucherRepo: repos.NewClientVoucherRepository(),
		Logger:            logger,
		Clock:             fx.clock,
	})
	fx.redemption = NewRedemptionService(RedemptionServiceParams{
		TxManager: fx.store,
		QRService: qrcode.NewQRCodeService(128, "L"),
		Publisher: publisher,
		Config:    cfg,
		Logger:    logger,
		Clock:     fx.clock,
	})
	fx.rating = NewRatingService(RatingServiceParams{
		TxManager:  fx.store,
		OrderRepo:  repos.NewOrderRepository(),
		RatingRepo: repos.NewRatingRepository(),
		Publisher:  publisher,
		Config:     cfg,
		Logger:     logger,
		Clock:      fx.clock,
	})

	return fx
}

func (fx *loyaltyFixtures) clock() time.Time {
	fx.clockMu.Lock()
	defer fx.clockMu.Unlock()

	return fx.now
}

func (fx *loyaltyFixtures) advance(d time.Duration) {
	fx.clockMu.Lock()
	defer fx.clockMu.Unlock()

	fx.now = fx.now.Add(d)
}

func (fx *loyaltyFixtures) seedClient(balance int64) entity.Client {
	return fx.store.SeedClient(entity.Client{FullName: "Budi Santoso", Level: "Gold", CoinBalance: balance})
}

// seedTieredCoinRule stores coin_value 800, minimum 20 000, high tier from 100 000, caps 20 and 50.
func (fx *loyaltyFixtures) seedTieredCoinRule() {
	fx.store.SeedCoinRule(entity.CoinRule{
		CoinValue:            800,
		MinTransactionForUse: 20000,
		MinTransactionHigh:   100000,
		MaxCoinMid:           20,
		MaxCoinHigh:          50,
	})
}

func (fx *loyaltyFixtures) seedPercentVoucher(code string, percent int64, maxDiscount int64) entity.VoucherRule {
	pct := decimal.NewFromInt(percent)

	return fx.store.SeedVoucherRule(entity.VoucherRule{
		Code:              code,
		Description:       "Diskon persen",
		DiscountPercent:   &pct,
		MaxDiscount:       &maxDiscount,
		IsActive:          true,
		MaxUsagePerClient: 1,
	})
}

func (fx *loyaltyFixtures) seedAmountVoucher(code string, amount int64) entity.VoucherRule {
	return fx.store.SeedVoucherRule(entity.VoucherRule{
		Code:              code,
		Description:       "Potongan langsung",
		DiscountAmount:    &amount,
		IsActive:          true,
		MaxUsagePerClient: 1,
	})
}

func requirePayload(t *testing.T, err error, want map[string]any) {
	t.Helper()

	var appErr *domainerrors.BaseError
	require.ErrorAs(t, err, &appErr)
	require.Equal(t, want, appErr.Payload())
}

func ptr[T any](v T) *T {
	return &v
}
