package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/nfrund/neuralfeed/internal/auth"
	"github.com/nfrund/neuralfeed/internal/domain"
	"github.com/nfrund/neuralfeed/internal/middleware"
)

// AuthService is the part of auth.Service the handlers use.
type AuthService interface {
	Register(ctx context.Context, in auth.RegisterInput) (*domain.User, error)
	SignIn(ctx context.Context, email, password string) (*auth.Session, error)
	Providers() []auth.ProviderInfo
	BeginFederated(provider string) (string, error)
	CompleteFederated(ctx context.Context, provider, state, code string) (*auth.Session, error)
	Authenticate(ctx context.Context, token string) (*domain.User, error)
}

// afterSignIn is where a signed-in browser is sent.
const afterSignIn = "/conversations"

// setSessionCookie stores the session token in an HttpOnly cookie.
func setSessionCookie(c echo.Context, s *auth.Session) {
	c.SetCookie(&http.Cookie{
		Name:     middleware.SessionCookie,
		Value:    s.Token,
		Path:     "/",
		Expires:  s.ExpiresAt,
		HttpOnly: true,
		// Secure only when served over TLS so local development works.
		Secure:   c.Request().TLS != nil,
		SameSite: http.SameSiteLaxMode,
	})
}

// registrationError maps a Register failure to the status and text the
// registration endpoint answers with.
func registrationError(err error) (int, string) {
	switch {
	case errors.Is(err, domain.ErrMissingFields):
		return http.StatusBadRequest, "Missing fields"
	case errors.Is(err, domain.ErrPasswordTooLong):
		return http.StatusBadRequest, "Password is too long"
	case errors.Is(err, domain.ErrUserAlreadyExists):
		return http.StatusConflict, "Email already in use"
	default:
		return http.StatusInternalServerError, "Internal server error"
	}
}
