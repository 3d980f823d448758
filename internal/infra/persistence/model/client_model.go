package model

import (
	"time"

	"github.com/google/uuid"
)

// ClientModel is the GORM-specific struct for the 'clients' table.
// Only the loyalty-relevant columns are mapped; the profile service owns the rest.
type ClientModel struct {
	ID          uuid.UUID `gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	FullName    string    `gorm:"type:varchar(255);not null"`
	Level       string    `gorm:"type:varchar(50);not null;default:''"`
	CoinBalance int64     `gorm:"not null;default:0;check:coin_balance >= 0"`
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// TableName explicitly sets the table name for GORM.
func (ClientModel) TableName() string {
	return "clients"
}

// CoinHistoryModel is the GORM-specific struct for the 'coin_histories' table.
type CoinHistoryModel struct {
	ID           uuid.UUID  `gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	ClientID     uuid.UUID  `gorm:"type:uuid;not null;index:idx_coin_histories_client_created,priority:1"`
	OrderID      *uuid.UUID `gorm:"type:uuid"`
	Amount       int64      `gorm:"not null"`
	BalanceAfter int64      `gorm:"not null"`
	Kind         string     `gorm:"type:varchar(20);not null"`
	Note         string     `gorm:"type:text;not null;default:''"`
	CreatedAt    time.Time  `gorm:"index:idx_coin_histories_client_created,priority:2,sort:desc"`
}

// TableName explicitly sets the table name for GORM.
func (CoinHistoryModel) TableName() string {
	return "coin_histories"
}
