package impl

import (
	"context"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"loyalty/config"
	deliverycontext "loyalty/internal/delivery/context"
	"loyalty/internal/domain/entity"
	domainerrors "loyalty/internal/domain/errors"
	"loyalty/internal/domain/repository"
	"loyalty/internal/domain/service"
	"loyalty/internal/usecase"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"go.uber.org/fx"
)

// redemptionService runs every loyalty mutation as begin, validate, mutate, commit.
type redemptionService struct {
	tx               *txRunner
	qrService        service.QRCodeService
	events           *eventEmitter
	reservationTTL   time.Duration
	defaultCoinValue int64
	logger           *slog.Logger
	now              func() time.Time
}

// RedemptionServiceParams holds dependencies for RedemptionService, injected by Fx.
type RedemptionServiceParams struct {
	fx.In

	TxManager repository.TransactionManager
	QRService service.QRCodeService
	Publisher service.EventPublisher `optional:"true"`
	Config    *config.Config
	Logger    *slog.Logger
	Clock     func() time.Time `optional:"true"`
}

// NewRedemptionService creates the redemption orchestrator.
func NewRedemptionService(params RedemptionServiceParams) usecase.RedemptionUsecase {
	loyaltyCfg := config.DefaultLoyaltyConfig()
	if params.Config != nil && params.Config.Loyalty != nil {
		loyaltyCfg = params.Config.Loyalty
	}
	now := clockOrDefault(params.Clock)

	return &redemptionService{
		tx:               newTxRunner(params.TxManager, params.Config),
		qrService:        params.QRService,
		events:           &eventEmitter{publisher: params.Publisher, now: now},
		reservationTTL:   loyaltyCfg.ReservationTTL,
		defaultCoinValue: loyaltyCfg.DefaultCoinValue,
		logger:           params.Logger,
		now:              now,
	}
}

func (srv *redemptionService) log(ctx context.Context) *slog.Logger {
	return deliverycontext.GetLoggerOrDefault(ctx, srv.logger)
}

// ClaimVoucher adds a voucher to the client's wallet. The rule row is locked for the whole
// transaction, so concurrent claims on one code queue up and re-read the claimant count.
func (srv *redemptionService) ClaimVoucher(ctx context.Context, clientID uuid.UUID, code string) (*entity.ClientVoucher, error) {
	code = strings.TrimSpace(code)
	if code == "" {
		return nil, domainerrors.ErrValidationFailed.WithDetails("code wajib diisi")
	}

	var claimed *entity.ClientVoucher
	err := srv.tx.run(ctx, srv.log(ctx), "claim_voucher", func(repos repository.RepositoryFactory) error {
		if err := ensureClient(ctx, repos.NewClientRepository(), clientID); err != nil {
			return err
		}

		rule, err := findVoucherRule(ctx, repos.NewRuleRepository(), code, true)
		if err != nil {
			return err
		}
		if err := checkVoucherWindow(rule, srv.now()); err != nil {
			return err
		}

		cvRepo := repos.NewClientVoucherRepository()
		_, err = cvRepo.FindClientVoucher(ctx, clientID, code)
		if err == nil {
			return domainerrors.ErrAlreadyClaimed
		}
		if !errors.Is(err, repository.ErrClientVoucherNotFound) {
			return errors.Wrap(err, "failed to find client voucher")
		}

		if rule.MaxUsageTotal != nil {
			claimants, err := cvRepo.CountClaimants(ctx, code)
			if err != nil {
				return errors.Wrap(err, "failed to count voucher claimants")
			}
			if claimants >= *rule.MaxUsageTotal {
				return domainerrors.ErrQuotaExhausted.WithPayload(map[string]any{"max_usage_total": *rule.MaxUsageTotal})
			}
		}

		cv := &entity.ClientVoucher{
			ClientID:     clientID,
			VoucherCode:  rule.Code,
			ObtainedFrom: entity.VoucherObtainedFromClaim,
			ObtainedAt:   srv.now(),
		}
		if err := cvRepo.CreateClientVoucher(ctx, cv); err != nil {
			if errors.Is(err, repository.ErrDuplicateClientVoucher) {
				return domainerrors.ErrAlreadyClaimed
			}

			return errors.Wrap(err, "failed to create client voucher")
		}
		claimed = cv

		return nil
	})
	if err != nil {
		return nil, err
	}

	srv.log(ctx).Info("Voucher claimed",
		slog.String("clientID", clientID.String()),
		slog.String("code", claimed.VoucherCode),
	)
	srv.events.emit(ctx, srv.log(ctx), service.EventVoucherClaimed, clientID, map[string]string{
		"voucher_code": claimed.VoucherCode,
	})

	return claimed, nil
}

// ReserveVoucher validates a held voucher and stores the quote under a token that expires
// after the configured TTL.
func (srv *redemptionService) ReserveVoucher(ctx context.Context, input *usecase.VoucherOrderInput) (*entity.VoucherValidation, error) {
	in := *input
	in.Code = strings.TrimSpace(in.Code)

	var result *entity.VoucherValidation
	err := srv.tx.run(ctx, srv.log(ctx), "reserve_voucher", func(repos repository.RepositoryFactory) error {
		now := srv.now()
		check, err := checkVoucherForOrder(ctx, repos, &in, now, true)
		if err != nil {
			return err
		}

		reservation := &entity.VoucherReservation{
			Token:          uuid.New(),
			ClientID:       in.ClientID,
			VoucherCode:    check.rule.Code,
			OrderTotal:     in.OrderTotal,
			PaymentMethod:  strings.TrimSpace(in.PaymentMethod),
			DiscountAmount: check.discount,
			FinalTotal:     check.finalTotal,
			ExpiresAt:      now.Add(srv.reservationTTL),
			CreatedAt:      now,
		}
		if err := repos.NewVoucherUsageRepository().CreateReservation(ctx, reservation); err != nil {
			return errors.Wrap(err, "failed to create voucher reservation")
		}

		result = check.validation(&in)
		result.ReservationID = &reservation.Token
		result.ExpiresAt = &reservation.ExpiresAt

		return nil
	})
	if err != nil {
		return nil, err
	}

	srv.log(ctx).Info("Voucher reserved",
		slog.String("clientID", in.ClientID.String()),
		slog.String("code", result.Code),
		slog.String("token", result.ReservationID.String()),
	)
	srv.events.emit(ctx, srv.log(ctx), service.EventVoucherReserved, in.ClientID, map[string]string{
		"voucher_code":      result.Code,
		"reservation_token": result.ReservationID.String(),
		"discount_amount":   strconv.FormatInt(result.DiscountAmount, 10),
	})

	return result, nil
}

// RedeemReservation consumes a reservation for an order. The rule is checked again, then
// the usage row, the used flag and the consumption are written together.
func (srv *redemptionService) RedeemReservation(ctx context.Context, input *usecase.RedeemReservationInput) (*entity.VoucherHistory, error) {
	token := input.Token
	if strings.TrimSpace(input.QRData) != "" {
		parsed, err := srv.qrService.ParseReservationQR(input.QRData)
		if err != nil {
			return nil, domainerrors.ErrValidationFailed.WithDetails(err.Error())
		}
		token = parsed
	}
	if token == uuid.Nil {
		return nil, domainerrors.ErrValidationFailed.WithDetails("token reservasi wajib diisi")
	}
	if input.OrderID == uuid.Nil {
		return nil, domainerrors.ErrValidationFailed.WithDetails("order_id wajib diisi")
	}

	var history *entity.VoucherHistory
	err := srv.tx.run(ctx, srv.log(ctx), "redeem_reservation", func(repos repository.RepositoryFactory) error {
		now := srv.now()
		usageRepo := repos.NewVoucherUsageRepository()

		reservation, err := usageRepo.FindReservationForUpdate(ctx, token)
		if errors.Is(err, repository.ErrReservationNotFound) {
			return domainerrors.ErrReservationNotFound
		}
		if err != nil {
			return errors.Wrap(err, "failed to find voucher reservation")
		}
		if reservation.ClientID != input.ClientID {
			return domainerrors.ErrReservationNotFound
		}
		if reservation.IsConsumed() {
			return domainerrors.ErrReservationConsumed
		}
		if reservation.IsExpiredAt(now) {
			return domainerrors.ErrReservationExpired.WithPayload(map[string]any{"expires_at": reservation.ExpiresAt})
		}

		check, err := checkVoucherForOrder(ctx, repos, &usecase.VoucherOrderInput{
			ClientID:      reservation.ClientID,
			Code:          reservation.VoucherCode,
			OrderTotal:    reservation.OrderTotal,
			PaymentMethod: reservation.PaymentMethod,
		}, now, true)
		if err != nil {
			return err
		}

		vh := &entity.VoucherHistory{
			ClientID:       reservation.ClientID,
			VoucherCode:    reservation.VoucherCode,
			OrderID:        input.OrderID,
			DiscountAmount: reservation.DiscountAmount,
			UsedAt:         now,
		}
		if err := usageRepo.CreateVoucherHistory(ctx, vh); err != nil {
			return errors.Wrap(err, "failed to create voucher history")
		}
		if err := repos.NewClientVoucherRepository().MarkClientVoucherUsed(ctx, check.clientVoucher.ID, now); err != nil {
			return errors.Wrap(err, "failed to mark client voucher used")
		}
		if err := usageRepo.MarkReservationConsumed(ctx, token, input.OrderID, now); err != nil {
			if errors.Is(err, repository.ErrReservationNotFound) {
				return domainerrors.ErrReservationConsumed
			}

			return errors.Wrap(err, "failed to consume voucher reservation")
		}
		history = vh

		return nil
	})
	if err != nil {
		return nil, err
	}

	srv.log(ctx).Info("Voucher redeemed",
		slog.String("clientID", input.ClientID.String()),
		slog.String("code", history.VoucherCode),
		slog.String("orderID", history.OrderID.String()),
		slog.Int64("discount", history.DiscountAmount),
	)
	srv.events.emit(ctx, srv.log(ctx), service.EventVoucherRedeemed, input.ClientID, map[string]string{
		"voucher_code":    history.VoucherCode,
		"order_id":        history.OrderID.String(),
		"discount_amount": strconv.FormatInt(history.DiscountAmount, 10),
	})

	return history, nil
}

// GenerateReservationQR renders a pending reservation owned by the client.
func (srv *redemptionService) GenerateReservationQR(ctx context.Context, clientID, token uuid.UUID) ([]byte, error) {
	var reservation *entity.VoucherReservation
	err := srv.tx.txManager.Execute(ctx, func(repos repository.RepositoryFactory) error {
		found, err := repos.NewVoucherUsageRepository().FindReservation(ctx, token)
		if errors.Is(err, repository.ErrReservationNotFound) {
			return domainerrors.ErrReservationNotFound
		}
		if err != nil {
			return errors.Wrap(err, "failed to find voucher reservation")
		}
		reservation = found

		return nil
	})
	if err != nil {
		return nil, err
	}

	if reservation.ClientID != clientID {
		return nil, domainerrors.ErrReservationNotFound
	}
	if reservation.IsConsumed() {
		return nil, domainerrors.ErrReservationConsumed
	}
	if reservation.IsExpiredAt(srv.now()) {
		return nil, domainerrors.ErrReservationExpired
	}

	png, err := srv.qrService.GenerateReservationQR(reservation.Token)
	if err != nil {
		return nil, errors.Wrap(err, "failed to generate reservation QR code")
	}

	return png, nil
}

// CommitCoinDiscount debits coins for an order. The client row is locked so the balance the
// rules are checked against is the balance that gets debited.
func (srv *redemptionService) CommitCoinDiscount(ctx context.Context, input *usecase.CommitCoinInput) (*usecase.CoinCommitResult, error) {
	if input.OrderID == uuid.Nil {
		return nil, domainerrors.ErrValidationFailed.WithDetails("order_id wajib diisi")
	}

	var result *usecase.CoinCommitResult
	err := srv.tx.run(ctx, srv.log(ctx), "commit_coin_discount", func(repos repository.RepositoryFactory) error {
		clientRepo := repos.NewClientRepository()

		client, err := clientRepo.FindClientByIDForUpdate(ctx, input.ClientID)
		if errors.Is(err, repository.ErrClientNotFound) {
			return domainerrors.ErrClientNotFound
		}
		if err != nil {
			return errors.Wrap(err, "failed to lock client")
		}

		rule, err := loadCoinRule(ctx, repos.NewRuleRepository(), srv.defaultCoinValue)
		if err != nil {
			return err
		}

		quote, err := quoteCoinDiscount(rule, client.CoinBalance, input.CoinsToUse, input.OrderTotal)
		if err != nil {
			return err
		}

		balance, err := clientRepo.AdjustCoinBalance(ctx, client.ID, -quote.CoinsUsed)
		if errors.Is(err, repository.ErrInsufficientCoins) {
			return domainerrors.ErrInsufficientBalance.WithPayload(map[string]any{"balance": client.CoinBalance})
		}
		if err != nil {
			return errors.Wrap(err, "failed to debit coins")
		}

		orderID := input.OrderID
		history := &entity.CoinHistory{
			ClientID:     client.ID,
			OrderID:      &orderID,
			Amount:       -quote.CoinsUsed,
			BalanceAfter: balance,
			Kind:         entity.CoinHistoryUse,
			Note:         "Diskon coin untuk order",
			CreatedAt:    srv.now(),
		}
		if err := repos.NewCoinHistoryRepository().CreateCoinHistory(ctx, history); err != nil {
			return errors.Wrap(err, "failed to create coin history")
		}

		quote.RemainingBalance = balance
		result = &usecase.CoinCommitResult{Quote: quote, History: history}

		return nil
	})
	if err != nil {
		return nil, err
	}

	srv.log(ctx).Info("Coins debited",
		slog.String("clientID", input.ClientID.String()),
		slog.String("orderID", input.OrderID.String()),
		slog.Int64("coins", result.Quote.CoinsUsed),
		slog.Int64("discount", result.Quote.Discount),
	)
	srv.events.emit(ctx, srv.log(ctx), service.EventCoinDebited, input.ClientID, map[string]string{
		"order_id": input.OrderID.String(),
		"coins":    strconv.FormatInt(result.Quote.CoinsUsed, 10),
		"discount": strconv.FormatInt(result.Quote.Discount, 10),
	})

	return result, nil
}

func ensureClient(ctx context.Context, clientRepo repository.ClientRepository, clientID uuid.UUID) error {
	_, err := clientRepo.FindClientByID(ctx, clientID)
	if errors.Is(err, repository.ErrClientNotFound) {
		return domainerrors.ErrClientNotFound
	}
	if err != nil {
		return errors.Wrap(err, "failed to find client")
	}

	return nil
}
