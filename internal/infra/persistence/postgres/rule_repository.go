package postgres

import (
	"context"
	"time"

	"loyalty/internal/domain/entity"
	"loyalty/internal/domain/repository"
	"loyalty/internal/infra/persistence/model"

	"github.com/pkg/errors"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ruleRepository implements the repository.RuleRepository interface.
type ruleRepository struct {
	db *gorm.DB
}

// NewRuleRepository is the constructor for ruleRepository.
func NewRuleRepository(db *gorm.DB) repository.RuleRepository {
	return &ruleRepository{
		db: db,
	}
}

// FindCoinRule retrieves the singleton coin rule.
func (repo *ruleRepository) FindCoinRule(ctx context.Context) (*entity.CoinRule, error) {
	var ruleM model.CoinRuleModel

	if err := repo.db.WithContext(ctx).
		Order("id ASC").
		First(&ruleM).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, repository.ErrCoinRuleNotFound
		}

		return nil, errors.Wrap(err, "failed to find coin rule")
	}

	return toCoinRuleDomain(&ruleM), nil
}

// FindVoucherRule retrieves a voucher rule by code.
func (repo *ruleRepository) FindVoucherRule(ctx context.Context, code string) (*entity.VoucherRule, error) {
	return repo.findVoucherRule(repo.db.WithContext(ctx), code)
}

// FindVoucherRuleForUpdate retrieves a voucher rule and locks it.
func (repo *ruleRepository) FindVoucherRuleForUpdate(ctx context.Context, code string) (*entity.VoucherRule, error) {
	return repo.findVoucherRule(repo.db.WithContext(ctx).Clauses(clause.Locking{Strength: "UPDATE"}), code)
}

func (repo *ruleRepository) findVoucherRule(db *gorm.DB, code string) (*entity.VoucherRule, error) {
	var ruleM model.VoucherRuleModel

	if err := db.Where("code = ?", code).First(&ruleM).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, repository.ErrVoucherRuleNotFound
		}

		return nil, errors.Wrap(err, "failed to find voucher rule")
	}

	return toVoucherRuleDomain(&ruleM), nil
}

// FindActiveVoucherRules lists active rules whose window contains now.
func (repo *ruleRepository) FindActiveVoucherRules(ctx context.Context, now time.Time) ([]*entity.VoucherRule, error) {
	var ruleModels []*model.VoucherRuleModel

	if err := repo.db.WithContext(ctx).
		Where("is_active = ?", true).
		Where("start_date IS NULL OR start_date <= ?", now).
		Where("end_date IS NULL OR end_date >= ?", now).
		Order("created_at DESC").
		Find(&ruleModels).Error; err != nil {
		return nil, errors.Wrap(err, "failed to find active voucher rules")
	}

	rules := make([]*entity.VoucherRule, 0, len(ruleModels))
	for _, ruleM := range ruleModels {
		rules = append(rules, toVoucherRuleDomain(ruleM))
	}

	return rules, nil
}

// toCoinRuleDomain converts a GORM CoinRuleModel to a domain CoinRule entity.
func toCoinRuleDomain(data *model.CoinRuleModel) *entity.CoinRule {
	if data == nil {
		return nil
	}

	return &entity.CoinRule{
		CoinValue:            data.CoinValue,
		MinTransactionForUse: data.MinTransactionForUse,
		MinTransactionHigh:   data.MinTransactionHigh,
		MaxCoinMid:           data.MaxCoinMid,
		MaxCoinHigh:          data.MaxCoinHigh,
	}
}

// toVoucherRuleDomain converts a GORM VoucherRuleModel to a domain VoucherRule entity.
func toVoucherRuleDomain(data *model.VoucherRuleModel) *entity.VoucherRule {
	if data == nil {
		return nil
	}

	rule := &entity.VoucherRule{
		Code:                  data.Code,
		Description:           data.Description,
		DiscountAmount:        data.DiscountAmount,
		MaxDiscount:           data.MaxDiscount,
		MinTransaction:        data.MinTransaction,
		StartDate:             data.StartDate,
		EndDate:               data.EndDate,
		IsActive:              data.IsActive,
		MaxUsageTotal:         data.MaxUsageTotal,
		MaxUsagePerClient:     data.MaxUsagePerClient,
		AllowedPaymentMethods: []string(data.AllowedPaymentMethods),
		CreatedAt:             data.CreatedAt,
		UpdatedAt:             data.UpdatedAt,
	}
	if data.DiscountPercent.Valid {
		percent := data.DiscountPercent.Decimal
		rule.DiscountPercent = &percent
	}

	return rule
}
