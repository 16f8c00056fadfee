package database

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/joho/godotenv"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/surrealdb/surrealdb.go"

	"github.com/nfrund/neuralfeed/internal/config"
	"github.com/nfrund/neuralfeed/internal/domain"
)

// setupSurrealStores connects to the database named by .env.test or the
// environment and removes test records afterwards.
func setupSurrealStores(t *testing.T) *Stores {
	t.Helper()
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	_ = godotenv.Load("../../.env.test")
	if os.Getenv("SURREAL_URL") == "" {
		t.Skip("SURREAL_URL not set")
	}
	t.Setenv("DB_DRIVER", "surreal")

	cfg, err := config.Load()
	require.NoError(t, err)

	ctx := context.Background()
	stores, err := Open(ctx, cfg)
	require.NoError(t, err, "failed to connect to test database")

	t.Cleanup(func() {
		for _, table := range []string{tableMessage, tableConversation, tableUser} {
			_ = stores.conn.WithConnection(ctx, func(db *surrealdb.DB) error {
				return Execute(ctx, db, "DELETE type::table($t)", map[string]any{"t": table})
			})
		}
		_ = stores.Close(ctx)
	})
	return stores
}

func TestSurrealStores(t *testing.T) {
	stores := setupSurrealStores(t)
	ctx := context.Background()

	ada, err := stores.Users.Create(ctx, &domain.User{Name: "Ada", Email: "ada@example.com", HashedPassword: "hash"})
	require.NoError(t, err)
	require.NotEmpty(t, ada.ID)

	_, err = stores.Users.Create(ctx, &domain.User{Name: "Ada 2", Email: "ada@example.com"})
	assert.ErrorIs(t, err, domain.ErrUserAlreadyExists)

	found, err := stores.Users.FindByEmail(ctx, "ada@example.com")
	require.NoError(t, err)
	assert.Equal(t, ada.ID, found.ID)
	assert.Equal(t, "hash", found.HashedPassword)

	grace, err := stores.Users.Create(ctx, &domain.User{Name: "Grace", Email: "grace@example.com"})
	require.NoError(t, err)

	others, err := stores.Users.ListExcept(ctx, ada.ID)
	require.NoError(t, err)
	require.Len(t, others, 1)
	assert.Equal(t, grace.ID, others[0].ID)

	conv, err := stores.Conversations.Create(ctx, &domain.Conversation{UserIDs: []string{ada.ID, grace.ID}})
	require.NoError(t, err)

	direct, err := stores.Conversations.FindDirect(ctx, grace.ID, ada.ID)
	require.NoError(t, err)
	assert.Equal(t, conv.ID, direct.ID)

	_, err = stores.Messages.Create(ctx, &domain.Message{Body: "hello", ConversationID: conv.ID, SenderID: ada.ID})
	require.NoError(t, err)
	require.NoError(t, stores.Conversations.Touch(ctx, conv.ID, time.Now()))

	msgs, err := stores.Messages.ListByConversation(ctx, conv.ID)
	require.NoError(t, err)
	require.Len(t, msgs, 1)
	assert.Equal(t, "hello", msgs[0].Body)
}
