package entity

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// VoucherObtainedFromClaim marks a ClientVoucher acquired through a self-service claim.
const VoucherObtainedFromClaim = "claim"

var hundred = decimal.NewFromInt(100)

// VoucherRule is a discount definition identified by a unique code.
// Exactly one of DiscountAmount and DiscountPercent is set on a well-formed rule.
type VoucherRule struct {
	Code                  string           `json:"code"`
	Description           string           `json:"description"`
	DiscountAmount        *int64           `json:"discount_amount,omitempty"`
	DiscountPercent       *decimal.Decimal `json:"discount_percent,omitempty"`
	MaxDiscount           *int64           `json:"max_discount,omitempty"`
	MinTransaction        int64            `json:"min_transaction"`
	StartDate             *time.Time       `json:"start_date,omitempty"`
	EndDate               *time.Time       `json:"end_date,omitempty"`
	IsActive              bool             `json:"is_active"`
	MaxUsageTotal         *int64           `json:"max_usage_total,omitempty"`
	MaxUsagePerClient     int64            `json:"max_usage_per_client"`
	AllowedPaymentMethods []string         `json:"allowed_payment_methods,omitempty"`
	CreatedAt             time.Time        `json:"created_at"`
	UpdatedAt             time.Time        `json:"updated_at"`
}

// VoucherWindow is the position of an instant relative to a voucher's validity window.
type VoucherWindow int

const (
	// VoucherWindowOpen means the voucher may be used at that instant.
	VoucherWindowOpen VoucherWindow = iota
	// VoucherWindowNotStarted means the start date is still in the future.
	VoucherWindowNotStarted
	// VoucherWindowEnded means the end date has passed.
	VoucherWindowEnded
)

// WindowAt places now relative to [StartDate, EndDate]. A nil bound is unbounded and the
// end date itself is still valid.
func (v *VoucherRule) WindowAt(now time.Time) VoucherWindow {
	if v.StartDate != nil && now.Before(*v.StartDate) {
		return VoucherWindowNotStarted
	}
	if v.EndDate != nil && now.After(*v.EndDate) {
		return VoucherWindowEnded
	}

	return VoucherWindowOpen
}

// IsUsableAt reports whether the rule is active and inside its window.
func (v *VoucherRule) IsUsableAt(now time.Time) bool {
	return v.IsActive && v.WindowAt(now) == VoucherWindowOpen
}

// HasValidDiscount reports whether exactly one discount mode is configured.
func (v *VoucherRule) HasValidDiscount() bool {
	return (v.DiscountAmount != nil) != (v.DiscountPercent != nil)
}

// IsPercent reports whether the rule discounts a percentage of the order total.
func (v *VoucherRule) IsPercent() bool {
	return v.DiscountPercent != nil
}

// DiscountFor computes the rupiah discount for an order total. Percent discounts are
// rounded down and capped by MaxDiscount when one is set. Callers must check
// HasValidDiscount first.
func (v *VoucherRule) DiscountFor(orderTotal int64) int64 {
	if v.DiscountPercent != nil {
		discount := decimal.NewFromInt(orderTotal).Mul(*v.DiscountPercent).Div(hundred).Floor().IntPart()
		if v.MaxDiscount != nil && discount > *v.MaxDiscount {
			discount = *v.MaxDiscount
		}
		if discount < 0 {
			return 0
		}

		return discount
	}
	if v.DiscountAmount != nil && *v.DiscountAmount > 0 {
		return *v.DiscountAmount
	}

	return 0
}

// DiscountLabel renders the discount for display, e.g. "20%" or "Rp 15000".
func (v *VoucherRule) DiscountLabel() string {
	if v.DiscountPercent != nil {
		return v.DiscountPercent.String() + "%"
	}
	if v.DiscountAmount != nil {
		return "Rp " + decimal.NewFromInt(*v.DiscountAmount).String()
	}

	return ""
}

// AllowsPaymentMethod reports whether method is accepted. An empty allow-list accepts any
// method; comparison ignores case and surrounding spaces.
func (v *VoucherRule) AllowsPaymentMethod(method string) bool {
	if len(v.AllowedPaymentMethods) == 0 {
		return true
	}
	method = strings.TrimSpace(method)
	for _, allowed := range v.AllowedPaymentMethods {
		if strings.EqualFold(strings.TrimSpace(allowed), method) {
			return true
		}
	}

	return false
}

// FinalTotal applies a discount without going below zero.
func FinalTotal(orderTotal, discount int64) int64 {
	if discount >= orderTotal {
		return 0
	}

	return orderTotal - discount
}

// ClientVoucher records that a client holds a voucher. A client holds a code at most once.
type ClientVoucher struct {
	ID           uuid.UUID  `json:"id"`
	ClientID     uuid.UUID  `json:"client_id"`
	VoucherCode  string     `json:"voucher_code"`
	ObtainedFrom string     `json:"obtained_from"`
	ObtainedAt   time.Time  `json:"obtained_at"`
	IsUsed       bool       `json:"is_used"`
	UsedAt       *time.Time `json:"used_at,omitempty"`
}

// VoucherHistory records one application of a voucher to an order.
type VoucherHistory struct {
	ID             uuid.UUID `json:"id"`
	ClientID       uuid.UUID `json:"client_id"`
	VoucherCode    string    `json:"voucher_code"`
	OrderID        uuid.UUID `json:"order_id"`
	DiscountAmount int64     `json:"discount_amount"`
	UsedAt         time.Time `json:"used_at"`
}

// VoucherReservation holds a validated discount until it is consumed by exactly one order.
type VoucherReservation struct {
	Token          uuid.UUID  `json:"token"`
	ClientID       uuid.UUID  `json:"client_id"`
	VoucherCode    string     `json:"voucher_code"`
	OrderTotal     int64      `json:"order_total"`
	PaymentMethod  string     `json:"payment_method"`
	DiscountAmount int64      `json:"discount_amount"`
	FinalTotal     int64      `json:"final_total"`
	ExpiresAt      time.Time  `json:"expires_at"`
	ConsumedAt     *time.Time `json:"consumed_at,omitempty"`
	OrderID        *uuid.UUID `json:"order_id,omitempty"`
	CreatedAt      time.Time  `json:"created_at"`
}

// IsConsumed reports whether the reservation already paid for an order.
func (r *VoucherReservation) IsConsumed() bool {
	return r.ConsumedAt != nil
}

// IsExpiredAt reports whether the reservation can no longer be redeemed.
func (r *VoucherReservation) IsExpiredAt(now time.Time) bool {
	return !now.Before(r.ExpiresAt)
}

// VoucherValidation is the result of checking a voucher against an order.
type VoucherValidation struct {
	Code           string     `json:"code"`
	Description    string     `json:"description"`
	DiscountLabel  string     `json:"discount_label"`
	OrderTotal     int64      `json:"order_total"`
	DiscountAmount int64      `json:"discount_amount"`
	FinalTotal     int64      `json:"final_total"`
	PaymentMethod  string     `json:"payment_method,omitempty"`
	ReservationID  *uuid.UUID `json:"reservation_token,omitempty"`
	ExpiresAt      *time.Time `json:"expires_at,omitempty"`
}

// OwnedVoucher is an unused voucher held by a client together with its rule.
type OwnedVoucher struct {
	ClientVoucher
	Rule *VoucherRule `json:"rule"`
}

// AvailableVoucher is a claimable voucher rule annotated for a specific client.
type AvailableVoucher struct {
	Rule           *VoucherRule `json:"rule"`
	DiscountLabel  string       `json:"discount_label"`
	AlreadyClaimed bool         `json:"already_claimed"`
}
