package database

import (
	"context"
	"time"

	"github.com/google/uuid"
	surrealmodels "github.com/surrealdb/surrealdb.go/pkg/models"

	"github.com/nfrund/neuralfeed/internal/domain"
)

// ConversationStore implements domain.ConversationRepository on SurrealDB.
type ConversationStore struct {
	client *Client[conversationRecord]
}

func NewConversationStore(client *Client[conversationRecord]) *ConversationStore {
	return &ConversationStore{client: client}
}

func (s *ConversationStore) Create(ctx context.Context, conv *domain.Conversation) (*domain.Conversation, error) {
	now := time.Now().UTC()
	if conv.CreatedAt.IsZero() {
		conv.CreatedAt = now
	}
	if conv.LastMessageAt.IsZero() {
		conv.LastMessageAt = conv.CreatedAt
	}
	rec, err := s.client.Write(ctx, "CREATE $id CONTENT $data", map[string]any{
		"id":   surrealmodels.NewRecordID(tableConversation, uuid.NewString()),
		"data": newConversationRecord(conv),
	})
	if err != nil {
		return nil, WrapError(err, "failed to create conversation")
	}
	if rec == nil {
		return nil, NewDBError(ErrQueryFailed, "create returned no conversation")
	}
	return rec.toDomain(), nil
}

func (s *ConversationStore) FindByID(ctx context.Context, id string) (*domain.Conversation, error) {
	if id == "" {
		return nil, domain.ErrNotFound
	}
	rec, err := s.client.QueryOne(ctx, "SELECT * FROM $id", map[string]any{
		"id": surrealmodels.NewRecordID(tableConversation, id),
	})
	if err != nil {
		return nil, WrapError(err, "failed to find conversation")
	}
	if rec == nil {
		return nil, domain.ErrNotFound
	}
	return rec.toDomain(), nil
}

func (s *ConversationStore) FindDirect(ctx context.Context, a, b string) (*domain.Conversation, error) {
	query := `SELECT * FROM conversation
		WHERE isGroup = false AND userIds CONTAINSALL [$a, $b] AND array::len(userIds) = 2`
	rec, err := s.client.QueryOne(ctx, query, map[string]any{"a": a, "b": b})
	if err != nil {
		return nil, WrapError(err, "failed to find direct conversation")
	}
	if rec == nil {
		return nil, domain.ErrNotFound
	}
	return rec.toDomain(), nil
}

func (s *ConversationStore) ListForUser(ctx context.Context, userID string) ([]*domain.Conversation, error) {
	recs, err := s.client.Query(ctx,
		"SELECT * FROM conversation WHERE userIds CONTAINS $user ORDER BY lastMessageAt DESC",
		map[string]any{"user": userID})
	if err != nil {
		return nil, WrapError(err, "failed to list conversations")
	}
	convs := make([]*domain.Conversation, 0, len(recs))
	for i := range recs {
		convs = append(convs, recs[i].toDomain())
	}
	return convs, nil
}

func (s *ConversationStore) Touch(ctx context.Context, id string, at time.Time) error {
	rec, err := s.client.Write(ctx, "UPDATE $id SET lastMessageAt = $at RETURN AFTER", map[string]any{
		"id": surrealmodels.NewRecordID(tableConversation, id),
		"at": dateTime(at),
	})
	if err != nil {
		return WrapError(err, "failed to touch conversation")
	}
	if rec == nil {
		return domain.ErrNotFound
	}
	return nil
}
