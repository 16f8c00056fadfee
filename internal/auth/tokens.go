package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const (
	tokenIssuer   = "neuralfeed"
	audSession    = "session"
	audOAuthState = "oauth-state"

	stateTTL = 10 * time.Minute
)

// ErrInvalidToken is returned for any token that fails verification.
var ErrInvalidToken = errors.New("invalid token")

type stateClaims struct {
	Provider string `json:"provider"`
	jwt.RegisteredClaims
}

// TokenManager issues and verifies HS256 tokens for sessions and for the
// OAuth state parameter.
type TokenManager struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

// NewTokenManager creates a manager signing with secret. Sessions last ttl.
func NewTokenManager(secret string, ttl time.Duration) *TokenManager {
	return &TokenManager{secret: []byte(secret), ttl: ttl, now: time.Now}
}

// SessionTTL returns how long issued sessions stay valid.
func (m *TokenManager) SessionTTL() time.Duration {
	return m.ttl
}

// IssueSession returns a signed session token for userID and its expiry.
func (m *TokenManager) IssueSession(userID string) (string, time.Time, error) {
	now := m.now()
	expiresAt := now.Add(m.ttl)
	claims := jwt.RegisteredClaims{
		ID:        uuid.NewString(),
		Issuer:    tokenIssuer,
		Subject:   userID,
		Audience:  jwt.ClaimStrings{audSession},
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(expiresAt),
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(m.secret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("failed to sign session token: %w", err)
	}
	return signed, expiresAt, nil
}

// ParseSession verifies a session token and returns the user id it names.
func (m *TokenManager) ParseSession(token string) (string, error) {
	var claims jwt.RegisteredClaims
	if err := m.parse(token, &claims, audSession); err != nil {
		return "", err
	}
	if claims.Subject == "" {
		return "", ErrInvalidToken
	}
	return claims.Subject, nil
}

// IssueState returns a short-lived token naming provider, used as the OAuth
// state parameter so the callback needs no server-side storage.
func (m *TokenManager) IssueState(provider string) (string, error) {
	now := m.now()
	claims := stateClaims{
		Provider: provider,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Issuer:    tokenIssuer,
			Audience:  jwt.ClaimStrings{audOAuthState},
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(stateTTL)),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(m.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign state token: %w", err)
	}
	return signed, nil
}

// VerifyState checks that token is a valid state issued for provider.
func (m *TokenManager) VerifyState(token, provider string) error {
	var claims stateClaims
	if err := m.parse(token, &claims, audOAuthState); err != nil {
		return err
	}
	if claims.Provider != provider {
		return ErrInvalidToken
	}
	return nil
}

func (m *TokenManager) parse(token string, claims jwt.Claims, audience string) error {
	_, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (any, error) {
		return m.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(tokenIssuer),
		jwt.WithAudience(audience),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(m.now),
	)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	return nil
}
