package conversations

import (
	"context"
	"log/slog"

	"github.com/nfrund/neuralfeed/internal/domain"
	"github.com/nfrund/neuralfeed/internal/events"
	"github.com/nfrund/neuralfeed/internal/pubsub"
)

// ActivityTracker keeps each conversation's LastMessageAt current by
// listening for message.created.
type ActivityTracker struct {
	conversations domain.ConversationRepository
	logger        *slog.Logger
}

// NewActivityTracker creates an ActivityTracker.
func NewActivityTracker(conversations domain.ConversationRepository, logger *slog.Logger) *ActivityTracker {
	return &ActivityTracker{conversations: conversations, logger: logger}
}

// Start subscribes to message.created until ctx is canceled.
func (t *ActivityTracker) Start(ctx context.Context, sub pubsub.Subscriber) error {
	return pubsub.Subscribe(ctx, sub, events.MessageCreatedEvent, t.handle)
}

func (t *ActivityTracker) handle(ctx context.Context, ev events.MessageCreated) error {
	if err := t.conversations.Touch(ctx, ev.ConversationID, ev.CreatedAt); err != nil {
		t.logger.ErrorContext(ctx, "failed to record conversation activity",
			"conversation_id", ev.ConversationID, "error", err)
		return err
	}
	return nil
}
