package model

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
)

// CoinRuleModel is the GORM-specific struct for the single-row 'coin_rules' table.
type CoinRuleModel struct {
	ID                   int   `gorm:"primary_key"`
	CoinValue            int64 `gorm:"not null"`
	MinTransactionForUse int64 `gorm:"not null;default:0"`
	MinTransactionHigh   int64 `gorm:"not null;default:0"`
	MaxCoinMid           int64 `gorm:"not null;default:0"`
	MaxCoinHigh          int64 `gorm:"not null;default:0"`
	UpdatedAt            time.Time
}

// TableName explicitly sets the table name for GORM.
func (CoinRuleModel) TableName() string {
	return "coin_rules"
}

// VoucherRuleModel is the GORM-specific struct for the 'voucher_rules' table.
// A check constraint keeps discount_amount and discount_percent mutually exclusive.
type VoucherRuleModel struct {
	Code                  string                      `gorm:"type:varchar(64);primary_key"`
	Description           string                      `gorm:"type:text;not null;default:''"`
	DiscountAmount        *int64
	DiscountPercent       decimal.NullDecimal         `gorm:"type:numeric(5,2)"`
	MaxDiscount           *int64
	MinTransaction        int64                       `gorm:"not null;default:0"`
	StartDate             *time.Time
	EndDate               *time.Time
	IsActive              bool                        `gorm:"not null;default:true;index"`
	MaxUsageTotal         *int64
	MaxUsagePerClient     int64                       `gorm:"not null;default:1"`
	AllowedPaymentMethods datatypes.JSONSlice[string] `gorm:"type:jsonb;not null;default:'[]'"`
	CreatedAt             time.Time
	UpdatedAt             time.Time
}

// TableName explicitly sets the table name for GORM.
func (VoucherRuleModel) TableName() string {
	return "voucher_rules"
}
