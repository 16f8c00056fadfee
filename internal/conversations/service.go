package conversations

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/nfrund/neuralfeed/internal/domain"
	"github.com/nfrund/neuralfeed/internal/events"
	"github.com/nfrund/neuralfeed/internal/pubsub"
)

// ErrSelfConversation is returned when a user tries to open a conversation
// with themselves.
var ErrSelfConversation = errors.New("cannot start a conversation with yourself")

// Summary is a conversation with the title shown to one viewer.
type Summary struct {
	*domain.Conversation
	Title string `json:"title"`
}

// Service implements conversations and messages for the signed-in user.
type Service struct {
	users         domain.UserRepository
	conversations domain.ConversationRepository
	messages      domain.MessageRepository
	publisher     pubsub.Publisher
	logger        *slog.Logger
	now           func() time.Time
}

// NewService creates a conversations service.
func NewService(
	users domain.UserRepository,
	conversations domain.ConversationRepository,
	messages domain.MessageRepository,
	publisher pubsub.Publisher,
	logger *slog.Logger,
) *Service {
	return &Service{
		users:         users,
		conversations: conversations,
		messages:      messages,
		publisher:     publisher,
		logger:        logger,
		now:           time.Now,
	}
}

// Users lists everyone except the viewer.
func (s *Service) Users(ctx context.Context, viewerID string) ([]*domain.User, error) {
	return s.users.ListExcept(ctx, viewerID)
}

// List returns the viewer's conversations, most recent activity first.
func (s *Service) List(ctx context.Context, viewerID string) ([]Summary, error) {
	convs, err := s.conversations.ListForUser(ctx, viewerID)
	if err != nil {
		return nil, fmt.Errorf("failed to list conversations: %w", err)
	}

	out := make([]Summary, 0, len(convs))
	for _, c := range convs {
		out = append(out, Summary{Conversation: c, Title: s.title(ctx, c, viewerID)})
	}
	return out, nil
}

// StartDirect returns the one-to-one conversation between the viewer and
// otherID, creating it on first use.
func (s *Service) StartDirect(ctx context.Context, viewerID, otherID string) (*domain.Conversation, error) {
	otherID = strings.TrimSpace(otherID)
	if otherID == "" {
		return nil, domain.ErrMissingFields
	}
	if otherID == viewerID {
		return nil, ErrSelfConversation
	}
	if _, err := s.users.FindByID(ctx, otherID); err != nil {
		return nil, err
	}

	existing, err := s.conversations.FindDirect(ctx, viewerID, otherID)
	if err == nil {
		return existing, nil
	}
	if !errors.Is(err, domain.ErrNotFound) {
		return nil, fmt.Errorf("failed to look up conversation: %w", err)
	}

	now := s.now().UTC()
	return s.conversations.Create(ctx, &domain.Conversation{
		UserIDs:       []string{viewerID, otherID},
		CreatedAt:     now,
		LastMessageAt: now,
	})
}

// Get returns a conversation the viewer belongs to.
func (s *Service) Get(ctx context.Context, viewerID, conversationID string) (Summary, error) {
	c, err := s.member(ctx, viewerID, conversationID)
	if err != nil {
		return Summary{}, err
	}
	return Summary{Conversation: c, Title: s.title(ctx, c, viewerID)}, nil
}

// Messages returns a conversation's messages, oldest first.
func (s *Service) Messages(ctx context.Context, viewerID, conversationID string) ([]*domain.Message, error) {
	if _, err := s.member(ctx, viewerID, conversationID); err != nil {
		return nil, err
	}
	return s.messages.ListByConversation(ctx, conversationID)
}

// Send posts body to a conversation and publishes message.created.
func (s *Service) Send(ctx context.Context, senderID, conversationID, body string) (*domain.Message, error) {
	body = strings.TrimSpace(body)
	if body == "" {
		return nil, domain.ErrEmptyMessage
	}
	if _, err := s.member(ctx, senderID, conversationID); err != nil {
		return nil, err
	}

	msg, err := s.messages.Create(ctx, &domain.Message{
		Body:           body,
		ConversationID: conversationID,
		SenderID:       senderID,
		CreatedAt:      s.now().UTC(),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to save message: %w", err)
	}

	err = pubsub.Publish(ctx, s.publisher, events.MessageCreatedEvent, senderID, events.MessageCreated{
		MessageID:      msg.ID,
		ConversationID: msg.ConversationID,
		SenderID:       msg.SenderID,
		CreatedAt:      msg.CreatedAt,
	})
	if err != nil {
		s.logger.ErrorContext(ctx, "failed to publish message created event", "message_id", msg.ID, "error", err)
	}
	return msg, nil
}

// SenderNames resolves display names for the senders of msgs.
func (s *Service) SenderNames(ctx context.Context, msgs []*domain.Message) map[string]string {
	names := make(map[string]string)
	for _, m := range msgs {
		if _, ok := names[m.SenderID]; ok {
			continue
		}
		names[m.SenderID] = s.displayName(ctx, m.SenderID)
	}
	return names
}

func (s *Service) member(ctx context.Context, viewerID, conversationID string) (*domain.Conversation, error) {
	c, err := s.conversations.FindByID(ctx, conversationID)
	if err != nil {
		return nil, err
	}
	if !c.HasMember(viewerID) {
		return nil, domain.ErrNotMember
	}
	return c, nil
}

// title is the group name, or the other participant's name for a direct
// conversation.
func (s *Service) title(ctx context.Context, c *domain.Conversation, viewerID string) string {
	if c.IsGroup && c.Name != "" {
		return c.Name
	}
	var names []string
	for _, id := range c.UserIDs {
		if id != viewerID {
			names = append(names, s.displayName(ctx, id))
		}
	}
	if len(names) == 0 {
		return "Conversation"
	}
	return strings.Join(names, ", ")
}

func (s *Service) displayName(ctx context.Context, userID string) string {
	u, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return "Unknown user"
	}
	if u.Name != "" {
		return u.Name
	}
	return u.Email
}
