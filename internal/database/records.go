package database

import (
	"fmt"
	"time"

	surrealmodels "github.com/surrealdb/surrealdb.go/pkg/models"

	"github.com/nfrund/neuralfeed/internal/domain"
)

const (
	tableUser         = "user"
	tableConversation = "conversation"
	tableMessage      = "message"
)

// recordKey extracts the key part of a record id ("user:abc" -> "abc").
func recordKey(id *surrealmodels.RecordID) string {
	if id == nil {
		return ""
	}
	return fmt.Sprint(id.ID)
}

func dateTime(t time.Time) *surrealmodels.CustomDateTime {
	return &surrealmodels.CustomDateTime{Time: t.UTC()}
}

func timeOf(dt *surrealmodels.CustomDateTime) time.Time {
	if dt == nil {
		return time.Time{}
	}
	return dt.Time
}

type userRecord struct {
	ID             *surrealmodels.RecordID       `json:"id,omitempty"`
	Name           string                        `json:"name"`
	Email          string                        `json:"email"`
	Image          string                        `json:"image,omitempty"`
	HashedPassword string                        `json:"hashedPassword,omitempty"`
	CreatedAt      *surrealmodels.CustomDateTime `json:"createdAt,omitempty"`
}

func newUserRecord(u *domain.User) userRecord {
	return userRecord{
		Name:           u.Name,
		Email:          u.Email,
		Image:          u.Image,
		HashedPassword: u.HashedPassword,
		CreatedAt:      dateTime(u.CreatedAt),
	}
}

func (r *userRecord) toDomain() *domain.User {
	return &domain.User{
		ID:             recordKey(r.ID),
		Name:           r.Name,
		Email:          r.Email,
		Image:          r.Image,
		HashedPassword: r.HashedPassword,
		CreatedAt:      timeOf(r.CreatedAt),
	}
}

type conversationRecord struct {
	ID            *surrealmodels.RecordID       `json:"id,omitempty"`
	Name          string                        `json:"name,omitempty"`
	IsGroup       bool                          `json:"isGroup"`
	UserIDs       []string                      `json:"userIds"`
	CreatedAt     *surrealmodels.CustomDateTime `json:"createdAt,omitempty"`
	LastMessageAt *surrealmodels.CustomDateTime `json:"lastMessageAt,omitempty"`
}

func newConversationRecord(c *domain.Conversation) conversationRecord {
	return conversationRecord{
		Name:          c.Name,
		IsGroup:       c.IsGroup,
		UserIDs:       c.UserIDs,
		CreatedAt:     dateTime(c.CreatedAt),
		LastMessageAt: dateTime(c.LastMessageAt),
	}
}

func (r *conversationRecord) toDomain() *domain.Conversation {
	return &domain.Conversation{
		ID:            recordKey(r.ID),
		Name:          r.Name,
		IsGroup:       r.IsGroup,
		UserIDs:       r.UserIDs,
		CreatedAt:     timeOf(r.CreatedAt),
		LastMessageAt: timeOf(r.LastMessageAt),
	}
}

type messageRecord struct {
	ID             *surrealmodels.RecordID       `json:"id,omitempty"`
	Body           string                        `json:"body"`
	Image          string                        `json:"image,omitempty"`
	ConversationID string                        `json:"conversationId"`
	SenderID       string                        `json:"senderId"`
	CreatedAt      *surrealmodels.CustomDateTime `json:"createdAt,omitempty"`
}

func newMessageRecord(m *domain.Message) messageRecord {
	return messageRecord{
		Body:           m.Body,
		Image:          m.Image,
		ConversationID: m.ConversationID,
		SenderID:       m.SenderID,
		CreatedAt:      dateTime(m.CreatedAt),
	}
}

func (r *messageRecord) toDomain() *domain.Message {
	return &domain.Message{
		ID:             recordKey(r.ID),
		Body:           r.Body,
		Image:          r.Image,
		ConversationID: r.ConversationID,
		SenderID:       r.SenderID,
		CreatedAt:      timeOf(r.CreatedAt),
	}
}
