package service

import (
	"context"
	"time"
)

// Loyalty event types published after a successful commit.
const (
	EventVoucherClaimed  = "voucher.claimed"
	EventVoucherReserved = "voucher.reserved"
	EventVoucherRedeemed = "voucher.redeemed"
	EventCoinDebited     = "coin.debited"
	EventRatingSubmitted = "rating.submitted"
)

// LoyaltyEvent is a fact about the loyalty ledger that downstream consumers (order settlement,
// analytics) subscribe to.
type LoyaltyEvent struct {
	RequestID  string            `json:"request_id,omitempty"` // For distributed tracing
	EventID    string            `json:"event_id"`
	Type       string            `json:"type"`
	ClientID   string            `json:"client_id"`
	OccurredAt time.Time         `json:"occurred_at"`
	Attributes map[string]string `json:"attributes,omitempty"`
}

// EventPublisher defines the interface for publishing events to a message queue
type EventPublisher interface {
	// PublishLoyaltyEvent publishes a loyalty event for async processing
	PublishLoyaltyEvent(ctx context.Context, event *LoyaltyEvent) error

	// Close releases any resources held by the publisher
	Close() error
}
