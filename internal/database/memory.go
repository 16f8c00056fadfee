package database

import (
	"context"
	"slices"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/nfrund/neuralfeed/internal/domain"
)

// MemoryUserStore is an in-process domain.UserRepository used for local
// development and tests. Records are copied in and out.
type MemoryUserStore struct {
	mu      sync.RWMutex
	users   map[string]domain.User
	byEmail map[string]string
}

func NewMemoryUserStore() *MemoryUserStore {
	return &MemoryUserStore{
		users:   make(map[string]domain.User),
		byEmail: make(map[string]string),
	}
}

func (s *MemoryUserStore) Create(ctx context.Context, user *domain.User) (*domain.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := strings.ToLower(user.Email)
	if _, exists := s.byEmail[key]; exists {
		return nil, domain.ErrUserAlreadyExists
	}

	u := *user
	u.ID = uuid.NewString()
	if u.CreatedAt.IsZero() {
		u.CreatedAt = time.Now().UTC()
	}
	s.users[u.ID] = u
	s.byEmail[key] = u.ID
	return &u, nil
}

func (s *MemoryUserStore) FindByEmail(ctx context.Context, email string) (*domain.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	id, ok := s.byEmail[strings.ToLower(email)]
	if !ok {
		return nil, domain.ErrNotFound
	}
	u := s.users[id]
	return &u, nil
}

func (s *MemoryUserStore) FindByID(ctx context.Context, id string) (*domain.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	u, ok := s.users[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &u, nil
}

func (s *MemoryUserStore) ListExcept(ctx context.Context, id string) ([]*domain.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	users := make([]*domain.User, 0, len(s.users))
	for _, u := range s.users {
		if u.ID == id {
			continue
		}
		u := u
		users = append(users, &u)
	}
	sort.Slice(users, func(i, j int) bool {
		return users[i].CreatedAt.After(users[j].CreatedAt)
	})
	return users, nil
}

// MemoryConversationStore is an in-process domain.ConversationRepository.
type MemoryConversationStore struct {
	mu    sync.RWMutex
	convs map[string]domain.Conversation
}

func NewMemoryConversationStore() *MemoryConversationStore {
	return &MemoryConversationStore{convs: make(map[string]domain.Conversation)}
}

func cloneConversation(c domain.Conversation) *domain.Conversation {
	c.UserIDs = slices.Clone(c.UserIDs)
	return &c
}

func (s *MemoryConversationStore) Create(ctx context.Context, conv *domain.Conversation) (*domain.Conversation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	c := *cloneConversation(*conv)
	c.ID = uuid.NewString()
	if c.CreatedAt.IsZero() {
		c.CreatedAt = time.Now().UTC()
	}
	if c.LastMessageAt.IsZero() {
		c.LastMessageAt = c.CreatedAt
	}
	s.convs[c.ID] = c
	return cloneConversation(c), nil
}

func (s *MemoryConversationStore) FindByID(ctx context.Context, id string) (*domain.Conversation, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	c, ok := s.convs[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return cloneConversation(c), nil
}

func (s *MemoryConversationStore) FindDirect(ctx context.Context, a, b string) (*domain.Conversation, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, c := range s.convs {
		if !c.IsGroup && len(c.UserIDs) == 2 && c.HasMember(a) && c.HasMember(b) {
			return cloneConversation(c), nil
		}
	}
	return nil, domain.ErrNotFound
}

func (s *MemoryConversationStore) ListForUser(ctx context.Context, userID string) ([]*domain.Conversation, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var convs []*domain.Conversation
	for _, c := range s.convs {
		if c.HasMember(userID) {
			convs = append(convs, cloneConversation(c))
		}
	}
	sort.Slice(convs, func(i, j int) bool {
		return convs[i].LastMessageAt.After(convs[j].LastMessageAt)
	})
	return convs, nil
}

func (s *MemoryConversationStore) Touch(ctx context.Context, id string, at time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	c, ok := s.convs[id]
	if !ok {
		return domain.ErrNotFound
	}
	c.LastMessageAt = at
	s.convs[id] = c
	return nil
}

// MemoryMessageStore is an in-process domain.MessageRepository.
type MemoryMessageStore struct {
	mu   sync.RWMutex
	msgs []domain.Message
}

func NewMemoryMessageStore() *MemoryMessageStore {
	return &MemoryMessageStore{}
}

func (s *MemoryMessageStore) Create(ctx context.Context, msg *domain.Message) (*domain.Message, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	m := *msg
	m.ID = uuid.NewString()
	if m.CreatedAt.IsZero() {
		m.CreatedAt = time.Now().UTC()
	}
	s.msgs = append(s.msgs, m)
	return &m, nil
}

func (s *MemoryMessageStore) ListByConversation(ctx context.Context, conversationID string) ([]*domain.Message, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var msgs []*domain.Message
	for _, m := range s.msgs {
		if m.ConversationID == conversationID {
			m := m
			msgs = append(msgs, &m)
		}
	}
	sort.SliceStable(msgs, func(i, j int) bool {
		return msgs[i].CreatedAt.Before(msgs[j].CreatedAt)
	})
	return msgs, nil
}
