package domain

import (
	"context"
	"slices"
	"time"
)

// Conversation is a thread between two or more users.
type Conversation struct {
	ID            string    `json:"id"`
	Name          string    `json:"name,omitempty"`
	IsGroup       bool      `json:"isGroup"`
	UserIDs       []string  `json:"userIds"`
	CreatedAt     time.Time `json:"createdAt"`
	LastMessageAt time.Time `json:"lastMessageAt"`
}

// HasMember reports whether userID takes part in the conversation.
func (c *Conversation) HasMember(userID string) bool {
	return slices.Contains(c.UserIDs, userID)
}

// Message is a single chat message posted to a conversation.
type Message struct {
	ID             string    `json:"id"`
	Body           string    `json:"body"`
	Image          string    `json:"image,omitempty"`
	ConversationID string    `json:"conversationId"`
	SenderID       string    `json:"senderId"`
	CreatedAt      time.Time `json:"createdAt"`
}

// ConversationRepository persists conversations.
type ConversationRepository interface {
	Create(ctx context.Context, conv *Conversation) (*Conversation, error)
	FindByID(ctx context.Context, id string) (*Conversation, error)
	// FindDirect returns the non-group conversation between exactly a and b.
	FindDirect(ctx context.Context, a, b string) (*Conversation, error)
	// ListForUser returns the user's conversations, most recent activity first.
	ListForUser(ctx context.Context, userID string) ([]*Conversation, error)
	// Touch sets the conversation's LastMessageAt.
	Touch(ctx context.Context, id string, at time.Time) error
}

// MessageRepository persists messages.
type MessageRepository interface {
	Create(ctx context.Context, msg *Message) (*Message, error)
	// ListByConversation returns messages oldest first.
	ListByConversation(ctx context.Context, conversationID string) ([]*Message, error)
}
