package model

import (
	"time"

	"github.com/google/uuid"
)

// StaffModel is the GORM-specific struct for the 'staffs' table.
type StaffModel struct {
	ID          uuid.UUID `gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	FullName    string    `gorm:"type:varchar(255);not null"`
	Role        string    `gorm:"type:varchar(32);not null;index"`
	RatingCount int64     `gorm:"not null;default:0"`
	RatingTotal int64     `gorm:"not null;default:0"`
	Rating      float64   `gorm:"type:double precision;not null;default:0"`
	UpdatedAt   time.Time
}

// TableName explicitly sets the table name for GORM.
func (StaffModel) TableName() string {
	return "staffs"
}

// RatingModel is the GORM-specific struct for the 'ratings' table.
// The (order_id, user_id, client_id) unique index makes a resubmission an update.
type RatingModel struct {
	ID        uuid.UUID `gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	OrderID   uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:uq_ratings_order_user_client,priority:1"`
	UserID    uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:uq_ratings_order_user_client,priority:2"`
	ClientID  uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:uq_ratings_order_user_client,priority:3;index"`
	UserType  string    `gorm:"type:varchar(32);not null"`
	Rating    int       `gorm:"not null;check:rating BETWEEN 1 AND 5"`
	Comment   string    `gorm:"type:text;not null;default:''"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

// TableName explicitly sets the table name for GORM.
func (RatingModel) TableName() string {
	return "ratings"
}
