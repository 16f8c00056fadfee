// Package events declares the domain events exchanged over the pub/sub bus.
package events

import (
	"time"

	"github.com/nfrund/neuralfeed/internal/pubsub"
)

// UserRegistered is published after an account is created, either from the
// credentials form or on first federated sign-in.
type UserRegistered struct {
	UserID   string `json:"userId"`
	Name     string `json:"name"`
	Email    string `json:"email"`
	Provider string `json:"provider"`
}

// MessageCreated is published after a message is stored.
type MessageCreated struct {
	MessageID      string    `json:"messageId"`
	ConversationID string    `json:"conversationId"`
	SenderID       string    `json:"senderId"`
	CreatedAt      time.Time `json:"createdAt"`
}

var (
	UserRegisteredEvent = pubsub.NewEvent[UserRegistered]("user.registered")
	MessageCreatedEvent = pubsub.NewEvent[MessageCreated]("message.created")
)
