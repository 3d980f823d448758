package model

import (
	"time"

	"github.com/google/uuid"
)

// OrderModel is the GORM-specific struct for the 'orders' table owned by the order service.
type OrderModel struct {
	ID        uuid.UUID         `gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	ClientID  uuid.UUID         `gorm:"type:uuid;not null;index:idx_orders_client_status,priority:1"`
	OrderCode string            `gorm:"type:varchar(64);not null;uniqueIndex"`
	Total     int64             `gorm:"not null"`
	Status    string            `gorm:"type:varchar(64);not null;index:idx_orders_client_status,priority:2"`
	Items     []*OrderItemModel `gorm:"foreignKey:OrderID"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

// TableName explicitly sets the table name for GORM.
func (OrderModel) TableName() string {
	return "orders"
}

// OrderItemModel is the GORM-specific struct for the 'order_items' table.
type OrderItemModel struct {
	ID          uuid.UUID  `gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	OrderID     uuid.UUID  `gorm:"type:uuid;not null;index"`
	Position    int64      `gorm:"->;column:position"`
	ProductName string     `gorm:"type:varchar(255);not null;default:''"`
	AdminID     *uuid.UUID `gorm:"type:uuid"`
	DesainerID  *uuid.UUID `gorm:"type:uuid"`
	OperatorID  *uuid.UUID `gorm:"type:uuid"`
}

// TableName explicitly sets the table name for GORM.
func (OrderItemModel) TableName() string {
	return "order_items"
}
