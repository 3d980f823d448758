package impl

import (
	"context"
	"log/slog"
	"time"

	deliverycontext "loyalty/internal/delivery/context"
	"loyalty/internal/domain/service"

	"github.com/google/uuid"
)

// eventEmitter publishes loyalty events after the transaction that produced them has
// committed. Publishing is best effort: a failure is logged and never undoes the commit.
type eventEmitter struct {
	publisher service.EventPublisher
	now       func() time.Time
}

func (e *eventEmitter) emit(ctx context.Context, logger *slog.Logger, eventType string, clientID uuid.UUID, attrs map[string]string) {
	if e == nil || e.publisher == nil {
		return
	}

	event := &service.LoyaltyEvent{
		RequestID:  deliverycontext.GetRequestIDFromContext(ctx),
		EventID:    uuid.NewString(),
		Type:       eventType,
		ClientID:   clientID.String(),
		OccurredAt: e.now().UTC(),
		Attributes: attrs,
	}

	if err := e.publisher.PublishLoyaltyEvent(ctx, event); err != nil {
		logger.Warn("Failed to publish loyalty event",
			slog.String("eventType", eventType),
			slog.String("eventID", event.EventID),
			slog.Any("error", err),
		)
	}
}
