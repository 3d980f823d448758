package impl

import (
	"context"
	"log/slog"
	"strings"
	"time"

	deliverycontext "loyalty/internal/delivery/context"
	"loyalty/internal/domain/entity"
	"loyalty/internal/domain/repository"
	"loyalty/internal/usecase"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"go.uber.org/fx"
)

type voucherService struct {
	txManager         repository.TransactionManager
	ruleRepo          repository.RuleRepository
	clientVoucherRepo repository.ClientVoucherRepository
	logger            *slog.Logger
	now               func() time.Time
}

// VoucherServiceParams holds dependencies for VoucherService, injected by Fx.
type VoucherServiceParams struct {
	fx.In

	TxManager         repository.TransactionManager
	RuleRepo          repository.RuleRepository
	ClientVoucherRepo repository.ClientVoucherRepository
	Logger            *slog.Logger
	Clock             func() time.Time `optional:"true"`
}

// NewVoucherService creates the read side of the voucher engine.
func NewVoucherService(params VoucherServiceParams) usecase.VoucherUsecase {
	return &voucherService{
		txManager:         params.TxManager,
		ruleRepo:          params.RuleRepo,
		clientVoucherRepo: params.ClientVoucherRepo,
		logger:            params.Logger,
		now:               clockOrDefault(params.Clock),
	}
}

func (srv *voucherService) log(ctx context.Context) *slog.Logger {
	return deliverycontext.GetLoggerOrDefault(ctx, srv.logger)
}

// ValidateForOrder checks a held voucher against an order. The checks run in one read
// transaction so they see a single snapshot; no rows are locked.
func (srv *voucherService) ValidateForOrder(ctx context.Context, input *usecase.VoucherOrderInput) (*entity.VoucherValidation, error) {
	in := *input
	in.Code = strings.TrimSpace(in.Code)

	var result *entity.VoucherValidation
	err := srv.txManager.Execute(ctx, func(repos repository.RepositoryFactory) error {
		check, err := checkVoucherForOrder(ctx, repos, &in, srv.now(), false)
		if err != nil {
			return err
		}
		result = check.validation(&in)

		return nil
	})
	if err != nil {
		srv.log(ctx).Debug("Voucher validation rejected",
			slog.String("clientID", in.ClientID.String()),
			slog.String("code", in.Code),
			slog.Any("error", err),
		)

		return nil, err
	}

	return result, nil
}

// GetMyVouchers lists unused claims whose rule is still active and inside its window.
func (srv *voucherService) GetMyVouchers(ctx context.Context, clientID uuid.UUID) ([]*entity.OwnedVoucher, error) {
	claims, err := srv.clientVoucherRepo.FindUnusedClientVouchers(ctx, clientID)
	if err != nil {
		return nil, errors.Wrap(err, "failed to find client vouchers")
	}

	now := srv.now()
	owned := make([]*entity.OwnedVoucher, 0, len(claims))
	for _, claim := range claims {
		rule, err := srv.ruleRepo.FindVoucherRule(ctx, claim.VoucherCode)
		if errors.Is(err, repository.ErrVoucherRuleNotFound) {
			continue
		}
		if err != nil {
			return nil, errors.Wrap(err, "failed to find voucher rule")
		}
		if !rule.IsUsableAt(now) {
			continue
		}
		owned = append(owned, &entity.OwnedVoucher{ClientVoucher: *claim, Rule: rule})
	}

	return owned, nil
}

// GetAvailableVouchers lists the rules a client may claim now, newest first.
func (srv *voucherService) GetAvailableVouchers(ctx context.Context, clientID uuid.UUID) ([]*entity.AvailableVoucher, error) {
	rules, err := srv.ruleRepo.FindActiveVoucherRules(ctx, srv.now())
	if err != nil {
		return nil, errors.Wrap(err, "failed to find active voucher rules")
	}

	claimed, err := srv.clientVoucherRepo.FindClaimedCodes(ctx, clientID)
	if err != nil {
		return nil, errors.Wrap(err, "failed to find claimed voucher codes")
	}

	available := make([]*entity.AvailableVoucher, 0, len(rules))
	for _, rule := range rules {
		available = append(available, &entity.AvailableVoucher{
			Rule:           rule,
			DiscountLabel:  rule.DiscountLabel(),
			AlreadyClaimed: claimed[rule.Code],
		})
	}

	return available, nil
}

func clockOrDefault(clock func() time.Time) func() time.Time {
	if clock == nil {
		return time.Now
	}

	return clock
}
