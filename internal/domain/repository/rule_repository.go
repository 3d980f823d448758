package repository

import (
	"context"
	"time"

	"loyalty/internal/domain/entity"
	"loyalty/internal/errors"
)

// Domain-specific errors for loyalty rule persistence.
var (
	// ErrCoinRuleNotFound is returned when the coin rule table is empty.
	ErrCoinRuleNotFound = errors.New("coin rule not found")
	// ErrVoucherRuleNotFound is returned when no voucher has the requested code.
	ErrVoucherRuleNotFound = errors.New("voucher rule not found")
)

// RuleRepository is the read-only accessor for coin and voucher rules.
type RuleRepository interface {
	// FindCoinRule retrieves the singleton coin conversion rule.
	FindCoinRule(ctx context.Context) (*entity.CoinRule, error)

	// FindVoucherRule retrieves a voucher rule by code.
	FindVoucherRule(ctx context.Context, code string) (*entity.VoucherRule, error)

	// FindVoucherRuleForUpdate retrieves a voucher rule and locks it, serializing claims of the same code.
	FindVoucherRuleForUpdate(ctx context.Context, code string) (*entity.VoucherRule, error)

	// FindActiveVoucherRules lists active rules whose window contains now, newest first.
	FindActiveVoucherRules(ctx context.Context, now time.Time) ([]*entity.VoucherRule, error)
}
