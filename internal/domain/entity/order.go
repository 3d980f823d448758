package entity

import (
	"time"

	"github.com/google/uuid"
)

// OrderStatusCompleted is the status of an order the client has picked up.
const OrderStatusCompleted = "Sudah Diambil"

// Order is a print job placed by a client. The loyalty core only reads orders.
type Order struct {
	ID        uuid.UUID    `json:"id"`
	ClientID  uuid.UUID    `json:"client_id"`
	OrderCode string       `json:"order_code"`
	Total     int64        `json:"total"`
	Status    string       `json:"status"`
	Items     []*OrderItem `json:"items,omitempty"`
	CreatedAt time.Time    `json:"created_at"`
	UpdatedAt time.Time    `json:"updated_at"`
}

// IsCompleted reports whether the order has been handed over to the client.
func (o *Order) IsCompleted() bool {
	return o.Status == OrderStatusCompleted
}

// OrderItem is a line of an order with the staff assigned to produce it.
type OrderItem struct {
	ID          uuid.UUID  `json:"id"`
	OrderID     uuid.UUID  `json:"order_id"`
	ProductName string     `json:"product_name"`
	AdminID     *uuid.UUID `json:"admin_id,omitempty"`
	DesainerID  *uuid.UUID `json:"desainer_id,omitempty"`
	OperatorID  *uuid.UUID `json:"operator_id,omitempty"`
}

// AssigneeFor returns the staff assigned to the item for an order-scoped role, or nil.
func (i *OrderItem) AssigneeFor(role StaffRole) *uuid.UUID {
	switch role {
	case StaffRoleAdmin:
		return i.AdminID
	case StaffRoleDesainer:
		return i.DesainerID
	case StaffRoleOperator:
		return i.OperatorID
	default:
		return nil
	}
}

// PendingRatingOrder is a completed order that still lacks ratings for some order-scoped roles.
type PendingRatingOrder struct {
	Order       *Order      `json:"order"`
	RatedRoles  int         `json:"rated_roles"`
	RolesNeeded []StaffRole `json:"roles_needed"`
}
