package database

import (
	"context"
	"fmt"

	"github.com/nfrund/neuralfeed/internal/config"
	"github.com/nfrund/neuralfeed/internal/domain"
)

// Stores groups the repositories the application needs.
type Stores struct {
	Users         domain.UserRepository
	Conversations domain.ConversationRepository
	Messages      domain.MessageRepository

	// conn is nil for the memory driver.
	conn *Connection
}

// NewMemoryStores returns stores that keep everything in process memory.
func NewMemoryStores() *Stores {
	return &Stores{
		Users:         NewMemoryUserStore(),
		Conversations: NewMemoryConversationStore(),
		Messages:      NewMemoryMessageStore(),
	}
}

// NewSurrealStores returns stores backed by an established connection.
func NewSurrealStores(conn *Connection, cfg config.Provider) (*Stores, error) {
	users, err := NewClient[userRecord](conn, cfg)
	if err != nil {
		return nil, err
	}
	convs, err := NewClient[conversationRecord](conn, cfg)
	if err != nil {
		return nil, err
	}
	msgs, err := NewClient[messageRecord](conn, cfg)
	if err != nil {
		return nil, err
	}
	return &Stores{
		Users:         NewUserStore(users),
		Conversations: NewConversationStore(convs),
		Messages:      NewMessageStore(msgs),
		conn:          conn,
	}, nil
}

// Open selects the storage driver named by DB_DRIVER. For SurrealDB it
// connects, applies the schema and starts health monitoring.
func Open(ctx context.Context, cfg config.Provider) (*Stores, error) {
	switch cfg.GetDBDriver() {
	case "memory":
		return NewMemoryStores(), nil
	case "surreal":
		conn := NewConnection(cfg)
		if err := conn.Connect(ctx); err != nil {
			return nil, err
		}
		conn.StartMonitoring()
		stores, err := NewSurrealStores(conn, cfg)
		if err != nil {
			_ = conn.Close(ctx)
			return nil, err
		}
		return stores, nil
	default:
		return nil, fmt.Errorf("unknown DB_DRIVER %q", cfg.GetDBDriver())
	}
}

// Healthy reports whether the backing database is reachable.
func (s *Stores) Healthy() bool {
	return s.conn == nil || s.conn.IsHealthy()
}

// Close releases the database connection, if any.
func (s *Stores) Close(ctx context.Context) error {
	if s.conn == nil {
		return nil
	}
	return s.conn.Close(ctx)
}
