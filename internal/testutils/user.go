package testutils

import (
	"context"
	"testing"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/nfrund/neuralfeed/internal/auth"
	"github.com/nfrund/neuralfeed/internal/database"
	"github.com/nfrund/neuralfeed/internal/domain"
	"github.com/nfrund/neuralfeed/internal/pubsub"
)

// TestSecret signs tokens issued in tests.
const TestSecret = "test-secret"

// AuthHarness is an auth service over in-memory stores.
type AuthHarness struct {
	Service *auth.Service
	Stores  *database.Stores
	Bus     *pubsub.WatermillBridge
	Tokens  *auth.TokenManager
}

// NewAuthHarness builds an auth service with the fastest bcrypt cost. The
// bus is closed when the test ends.
func NewAuthHarness(t *testing.T, providers map[string]*auth.Provider) *AuthHarness {
	t.Helper()

	stores := database.NewMemoryStores()
	bus := pubsub.NewWatermillBridge(DiscardLogger)
	t.Cleanup(func() { _ = bus.Close() })

	tokens := auth.NewTokenManager(TestSecret, time.Hour)
	svc := auth.NewService(stores.Users, auth.NewPasswordHasher(bcrypt.MinCost), tokens, providers, bus, DiscardLogger)

	return &AuthHarness{Service: svc, Stores: stores, Bus: bus, Tokens: tokens}
}

// CreateUser registers a user and fails the test on error.
func (h *AuthHarness) CreateUser(t *testing.T, name, email, password string) *domain.User {
	t.Helper()
	user, err := h.Service.Register(context.Background(), auth.RegisterInput{Name: name, Email: email, Password: password})
	if err != nil {
		t.Fatalf("failed to create test user %s: %v", email, err)
	}
	return user
}

// SessionToken signs in and returns the session token.
func (h *AuthHarness) SessionToken(t *testing.T, email, password string) string {
	t.Helper()
	session, err := h.Service.SignIn(context.Background(), email, password)
	if err != nil {
		t.Fatalf("failed to sign in %s: %v", email, err)
	}
	return session.Token
}
