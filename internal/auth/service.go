package auth

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

// SessionCookieName is the cookie carrying the session token.
const SessionCookieName = "session_token"

// CredentialsProvider names the email/password sign-in method.
const CredentialsProvider = "credentials"

// RegisterInput is the payload accepted by Register.
type RegisterInput struct {
	Name     string `json:"name" form:"name"`
	Email    string `json:"email" form:"email"`
	Password string `json:"password" form:"password"`
}

// Session is an issued session token and the user it belongs to.
type Session struct {
	Token     string
	ExpiresAt time.Time
	User      *domain.User
}

// Service implements registration and every sign-in method.
type Service struct {
	users     domain.UserRepository
	hasher    *PasswordHasher
	tokens    *TokenManager
	providers map[string]*Provider
	publisher pubsub.Publisher
	logger    *slog.Logger
}

// NewService wires the auth service.
func NewService(
	users domain.UserRepository,
	hasher *PasswordHasher,
	tokens *TokenManager,
	providers map[string]*Provider,
	publisher pubsub.Publisher,
	logger *slog.Logger,
) *Service {
	if providers == nil {
		providers = map[string]*Provider{}
	}
	return &Service{
		users:     users,
		hasher:    hasher,
		tokens:    tokens,
		providers: providers,
		publisher: publisher,
		logger:    logger,
	}
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// Register creates an account. Every field must be non-empty
// (domain.ErrMissingFields), the password at most domain.MaxPasswordBytes
// (domain.ErrPasswordTooLong); a taken address yields
// domain.ErrUserAlreadyExists. The password is stored only as a bcrypt hash.
func (s *Service) Register(ctx context.Context, in RegisterInput) (*domain.User, error) {
	name := strings.TrimSpace(in.Name)
	email := normalizeEmail(in.Email)
	if name == "" || email == "" || in.Password == "" {
		return nil, domain.ErrMissingFields
	}
	if len(in.Password) > domain.MaxPasswordBytes {
		return nil, domain.ErrPasswordTooLong
	}

	hash, err := s.hasher.Hash(in.Password)
	if err != nil {
		return nil, err
	}

	user, err := s.users.Create(ctx, &domain.User{
		Name:           name,
		Email:          email,
		HashedPassword: hash,
	})
	if err != nil {
		return nil, err
	}

	s.publishRegistered(ctx, user, CredentialsProvider)
	return user, nil
}

// SignIn checks email and password and issues a session. Unknown accounts,
// accounts without a password and wrong passwords all yield
// domain.ErrInvalidCredentials.
func (s *Service) SignIn(ctx context.Context, email, password string) (*Session, error) {
	email = normalizeEmail(email)
	if email == "" || password == "" {
		return nil, domain.ErrInvalidCredentials
	}

	user, err := s.users.FindByEmail(ctx, email)
	if errors.Is(err, domain.ErrNotFound) {
		return nil, domain.ErrInvalidCredentials
	}
	if err != nil {
		return nil, fmt.Errorf("failed to look up user: %w", err)
	}
	if user.HashedPassword == "" {
		return nil, domain.ErrInvalidCredentials
	}

	ok, err := s.hasher.Compare(user.HashedPassword, password)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, domain.ErrInvalidCredentials
	}
	return s.issue(user)
}

// Providers lists the configured federated providers, sorted by name.
func (s *Service) Providers() []ProviderInfo {
	return sortedInfo(s.providers)
}

// BeginFederated returns the provider URL the user must visit.
func (s *Service) BeginFederated(provider string) (string, error) {
	p, ok := s.providers[provider]
	if !ok {
		return "", domain.ErrUnknownProvider
	}
	state, err := s.tokens.IssueState(provider)
	if err != nil {
		return "", err
	}
	return p.AuthCodeURL(state), nil
}

// CompleteFederated finishes a provider round trip: it verifies state,
// exchanges code for the profile and signs in the user with that e-mail,
// creating the account on first use.
func (s *Service) CompleteFederated(ctx context.Context, provider, state, code string) (*Session, error) {
	p, ok := s.providers[provider]
	if !ok {
		return nil, domain.ErrUnknownProvider
	}
	if err := s.tokens.VerifyState(state, provider); err != nil {
		return nil, err
	}
	if code == "" {
		return nil, fmt.Errorf("%w: missing authorization code", domain.ErrInvalidCredentials)
	}

	profile, err := p.Exchange(ctx, code)
	if err != nil {
		return nil, err
	}

	user, err := s.users.FindByEmail(ctx, profile.Email)
	switch {
	case err == nil:
	case errors.Is(err, domain.ErrNotFound):
		user, err = s.users.Create(ctx, &domain.User{
			Name:  firstNonEmpty(profile.Name, strings.Split(profile.Email, "@")[0]),
			Email: profile.Email,
			Image: profile.Image,
		})
		if errors.Is(err, domain.ErrUserAlreadyExists) {
			// Lost a race with a concurrent first sign-in.
			user, err = s.users.FindByEmail(ctx, profile.Email)
		}
		if err != nil {
			return nil, fmt.Errorf("failed to create federated user: %w", err)
		}
		s.publishRegistered(ctx, user, provider)
	default:
		return nil, fmt.Errorf("failed to look up federated user: %w", err)
	}

	return s.issue(user)
}

// Authenticate resolves a session token to its user.
func (s *Service) Authenticate(ctx context.Context, token string) (*domain.User, error) {
	userID, err := s.tokens.ParseSession(token)
	if err != nil {
		return nil, domain.ErrInvalidCredentials
	}
	user, err := s.users.FindByID(ctx, userID)
	if errors.Is(err, domain.ErrNotFound) {
		return nil, domain.ErrInvalidCredentials
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load session user: %w", err)
	}
	return user, nil
}

func (s *Service) issue(user *domain.User) (*Session, error) {
	token, expiresAt, err := s.tokens.IssueSession(user.ID)
	if err != nil {
		return nil, err
	}
	return &Session{Token: token, ExpiresAt: expiresAt, User: user}, nil
}

// publishRegistered is best effort: a failed publish never undoes the
// registration.
func (s *Service) publishRegistered(ctx context.Context, user *domain.User, provider string) {
	err := pubsub.Publish(ctx, s.publisher, events.UserRegisteredEvent, user.ID, events.UserRegistered{
		UserID:   user.ID,
		Name:     user.Name,
		Email:    user.Email,
		Provider: provider,
	})
	if err != nil {
		s.logger.ErrorContext(ctx, "failed to publish user registered event", "user_id", user.ID, "error", err)
	}
}
