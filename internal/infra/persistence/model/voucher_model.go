package model

import (
	"time"

	"github.com/google/uuid"
)

// ClientVoucherModel is the GORM-specific struct for the 'client_vouchers' table.
// The (client_id, voucher_code) unique index enforces one claim per client and code.
type ClientVoucherModel struct {
	ID           uuid.UUID  `gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	ClientID     uuid.UUID  `gorm:"type:uuid;not null;uniqueIndex:uq_client_vouchers_client_code,priority:1"`
	VoucherCode  string     `gorm:"type:varchar(64);not null;uniqueIndex:uq_client_vouchers_client_code,priority:2;index"`
	ObtainedFrom string     `gorm:"type:varchar(32);not null"`
	ObtainedAt   time.Time  `gorm:"not null"`
	IsUsed       bool       `gorm:"not null;default:false"`
	UsedAt       *time.Time
}

// TableName explicitly sets the table name for GORM.
func (ClientVoucherModel) TableName() string {
	return "client_vouchers"
}

// VoucherHistoryModel is the GORM-specific struct for the 'voucher_histories' table.
type VoucherHistoryModel struct {
	ID             uuid.UUID `gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	ClientID       uuid.UUID `gorm:"type:uuid;not null;index:idx_voucher_histories_client_code,priority:1"`
	VoucherCode    string    `gorm:"type:varchar(64);not null;index:idx_voucher_histories_client_code,priority:2"`
	OrderID        uuid.UUID `gorm:"type:uuid;not null;uniqueIndex"`
	DiscountAmount int64     `gorm:"not null"`
	UsedAt         time.Time `gorm:"not null"`
}

// TableName explicitly sets the table name for GORM.
func (VoucherHistoryModel) TableName() string {
	return "voucher_histories"
}

// VoucherReservationModel is the GORM-specific struct for the 'voucher_reservations' table.
type VoucherReservationModel struct {
	Token          uuid.UUID  `gorm:"type:uuid;primary_key"`
	ClientID       uuid.UUID  `gorm:"type:uuid;not null;index"`
	VoucherCode    string     `gorm:"type:varchar(64);not null"`
	OrderTotal     int64      `gorm:"not null"`
	PaymentMethod  string     `gorm:"type:varchar(32);not null;default:''"`
	DiscountAmount int64      `gorm:"not null"`
	FinalTotal     int64      `gorm:"not null"`
	ExpiresAt      time.Time  `gorm:"not null"`
	ConsumedAt     *time.Time
	OrderID        *uuid.UUID `gorm:"type:uuid"`
	CreatedAt      time.Time
}

// TableName explicitly sets the table name for GORM.
func (VoucherReservationModel) TableName() string {
	return "voucher_reservations"
}
