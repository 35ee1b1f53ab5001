package channel

import (
	"context"

	"github.com/google/uuid"

	"github.com/quizlive/engine/internal/events"
)

// Channel is the per-session publish/subscribe scope connecting host and
// participants. Delivery is at-most-once and unacknowledged: a subscriber that
// joins after a message was sent never sees it, and order is preserved per
// sender but not across senders. Callers must tolerate silent loss and rely on
// the host's periodic full-state rebroadcast for recovery.
type Channel interface {
	Publish(ctx context.Context, sessionID uuid.UUID, eventType events.EventType, payload any) error
	Subscribe(ctx context.Context, sessionID uuid.UUID) (Subscription, error)
}

// Subscription is one subscriber's view of a session topic.
type Subscription interface {
	// Events yields received messages in per-sender publish order. The channel
	// is closed on Unsubscribe or when the transport drops the subscriber.
	Events() <-chan events.Event
	Unsubscribe() error
}
