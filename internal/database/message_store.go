package database

import (
	"context"
	"time"

	"github.com/google/uuid"
	surrealmodels "github.com/surrealdb/surrealdb.go/pkg/models"

	"github.com/nfrund/neuralfeed/internal/domain"
)

// MessageStore implements domain.MessageRepository on SurrealDB.
type MessageStore struct {
	client *Client[messageRecord]
}

func NewMessageStore(client *Client[messageRecord]) *MessageStore {
	return &MessageStore{client: client}
}

func (s *MessageStore) Create(ctx context.Context, msg *domain.Message) (*domain.Message, error) {
	if msg.CreatedAt.IsZero() {
		msg.CreatedAt = time.Now().UTC()
	}
	rec, err := s.client.Write(ctx, "CREATE $id CONTENT $data", map[string]any{
		"id":   surrealmodels.NewRecordID(tableMessage, uuid.NewString()),
		"data": newMessageRecord(msg),
	})
	if err != nil {
		return nil, WrapError(err, "failed to create message")
	}
	if rec == nil {
		return nil, NewDBError(ErrQueryFailed, "create returned no message")
	}
	return rec.toDomain(), nil
}

func (s *MessageStore) ListByConversation(ctx context.Context, conversationID string) ([]*domain.Message, error) {
	recs, err := s.client.Query(ctx,
		"SELECT * FROM message WHERE conversationId = $conversation ORDER BY createdAt ASC",
		map[string]any{"conversation": conversationID})
	if err != nil {
		return nil, WrapError(err, "failed to list messages")
	}
	msgs := make([]*domain.Message, 0, len(recs))
	for i := range recs {
		msgs = append(msgs, recs[i].toDomain())
	}
	return msgs, nil
}
