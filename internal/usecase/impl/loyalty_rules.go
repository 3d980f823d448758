package impl

import (
	"context"
	"time"

	"loyalty/internal/domain/entity"
	domainerrors "loyalty/internal/domain/errors"
	"loyalty/internal/domain/repository"
	"loyalty/internal/usecase"

	"github.com/pkg/errors"
)

// loadCoinRule returns the persisted coin rule, or the default rule when the table is empty.
func loadCoinRule(ctx context.Context, ruleRepo repository.RuleRepository, defaultCoinValue int64) (*entity.CoinRule, error) {
	rule, err := ruleRepo.FindCoinRule(ctx)
	if errors.Is(err, repository.ErrCoinRuleNotFound) {
		return entity.DefaultCoinRule(defaultCoinValue), nil
	}
	if err != nil {
		return nil, errors.Wrap(err, "failed to find coin rule")
	}

	return rule, nil
}

// quoteCoinDiscount applies the coin rule to a requested spend. It never touches storage,
// so the preview and the commit share the exact same checks.
func quoteCoinDiscount(rule *entity.CoinRule, balance, coinsToUse, orderTotal int64) (*entity.CoinDiscountQuote, error) {
	if coinsToUse <= 0 {
		return nil, domainerrors.ErrValidationFailed.WithDetails("coins_to_use harus lebih dari 0")
	}
	if orderTotal <= 0 {
		return nil, domainerrors.ErrValidationFailed.WithDetails("order_total harus lebih dari 0")
	}
	if coinsToUse > balance {
		return nil, domainerrors.ErrInsufficientBalance.WithPayload(map[string]any{"balance": balance})
	}
	if orderTotal < rule.MinTransactionForUse {
		return nil, domainerrors.ErrBelowMinimum.WithPayload(map[string]any{"minimum": rule.MinTransactionForUse})
	}

	maxCoin := rule.MaxCoinFor(orderTotal)
	if coinsToUse > maxCoin {
		return nil, domainerrors.ErrExceedsCap.WithPayload(map[string]any{"max_coin": maxCoin})
	}

	discount := rule.CurrencyValue(coinsToUse)

	return &entity.CoinDiscountQuote{
		CoinsUsed:        coinsToUse,
		CoinValue:        rule.CoinValue,
		OrderTotal:       orderTotal,
		Discount:         discount,
		FinalTotal:       entity.FinalTotal(orderTotal, discount),
		MaxCoin:          maxCoin,
		RemainingBalance: balance - coinsToUse,
	}, nil
}

// checkVoucherWindow rejects inactive rules and instants outside the validity window.
func checkVoucherWindow(rule *entity.VoucherRule, now time.Time) error {
	if !rule.IsActive {
		return domainerrors.ErrVoucherNotFound
	}

	switch rule.WindowAt(now) {
	case entity.VoucherWindowNotStarted:
		return domainerrors.ErrVoucherNotYetActive.WithPayload(map[string]any{"start_date": rule.StartDate})
	case entity.VoucherWindowEnded:
		return domainerrors.ErrVoucherExpired.WithPayload(map[string]any{"end_date": rule.EndDate})
	default:
		return nil
	}
}

// findVoucherRule loads a rule, mapping a missing row to the domain error.
func findVoucherRule(ctx context.Context, ruleRepo repository.RuleRepository, code string, forUpdate bool) (*entity.VoucherRule, error) {
	find := ruleRepo.FindVoucherRule
	if forUpdate {
		find = ruleRepo.FindVoucherRuleForUpdate
	}

	rule, err := find(ctx, code)
	if errors.Is(err, repository.ErrVoucherRuleNotFound) {
		return nil, domainerrors.ErrVoucherNotFound
	}
	if err != nil {
		return nil, errors.Wrap(err, "failed to find voucher rule")
	}

	return rule, nil
}

// voucherCheck is a voucher that passed every order check.
type voucherCheck struct {
	rule          *entity.VoucherRule
	clientVoucher *entity.ClientVoucher
	discount      int64
	finalTotal    int64
}

func (c *voucherCheck) validation(input *usecase.VoucherOrderInput) *entity.VoucherValidation {
	return &entity.VoucherValidation{
		Code:           c.rule.Code,
		Description:    c.rule.Description,
		DiscountLabel:  c.rule.DiscountLabel(),
		OrderTotal:     input.OrderTotal,
		DiscountAmount: c.discount,
		FinalTotal:     c.finalTotal,
		PaymentMethod:  input.PaymentMethod,
	}
}

// checkVoucherForOrder runs the ordered voucher checks against an order. With forUpdate the
// client voucher and rule rows stay locked until the surrounding transaction ends.
func checkVoucherForOrder(
	ctx context.Context,
	repos repository.RepositoryFactory,
	input *usecase.VoucherOrderInput,
	now time.Time,
	forUpdate bool,
) (*voucherCheck, error) {
	if input.OrderTotal <= 0 {
		return nil, domainerrors.ErrValidationFailed.WithDetails("order_total harus lebih dari 0")
	}

	cvRepo := repos.NewClientVoucherRepository()
	findClientVoucher := cvRepo.FindClientVoucher
	if forUpdate {
		findClientVoucher = cvRepo.FindClientVoucherForUpdate
	}
	clientVoucher, err := findClientVoucher(ctx, input.ClientID, input.Code)
	if errors.Is(err, repository.ErrClientVoucherNotFound) {
		return nil, domainerrors.ErrVoucherNotOwned
	}
	if err != nil {
		return nil, errors.Wrap(err, "failed to find client voucher")
	}
	if clientVoucher.IsUsed {
		return nil, domainerrors.ErrVoucherNotOwned
	}

	rule, err := findVoucherRule(ctx, repos.NewRuleRepository(), input.Code, forUpdate)
	if err != nil {
		return nil, err
	}
	if err := checkVoucherWindow(rule, now); err != nil {
		return nil, err
	}

	if input.OrderTotal < rule.MinTransaction {
		return nil, domainerrors.ErrBelowMinimum.WithPayload(map[string]any{"minimum": rule.MinTransaction})
	}
	if !rule.AllowsPaymentMethod(input.PaymentMethod) {
		return nil, domainerrors.ErrPaymentNotAllowed.WithPayload(map[string]any{"allowed_payment_methods": rule.AllowedPaymentMethods})
	}

	used, err := repos.NewVoucherUsageRepository().CountVoucherUsage(ctx, input.ClientID, input.Code)
	if err != nil {
		return nil, errors.Wrap(err, "failed to count voucher usage")
	}
	if used >= rule.MaxUsagePerClient {
		return nil, domainerrors.ErrUsageLimitReached.WithPayload(map[string]any{"max_usage_per_client": rule.MaxUsagePerClient})
	}

	if !rule.HasValidDiscount() {
		return nil, domainerrors.ErrMisconfiguredRule.WithDetails("voucher " + rule.Code + " must set exactly one of discount_amount and discount_percent")
	}
	discount := rule.DiscountFor(input.OrderTotal)

	return &voucherCheck{
		rule:          rule,
		clientVoucher: clientVoucher,
		discount:      discount,
		finalTotal:    entity.FinalTotal(input.OrderTotal, discount),
	}, nil
}
