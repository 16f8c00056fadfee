package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/nfrund/neuralfeed/internal/auth"
	"github.com/nfrund/neuralfeed/internal/domain"
)

const UserContextKey = "user"

// SessionCookie is the cookie the session token travels in.
const SessionCookie = auth.SessionCookieName

// Authenticator resolves a session token to its user.
type Authenticator interface {
	Authenticate(ctx context.Context, token string) (*domain.User, error)
}

// Auth protects page routes. Requests without a valid session are sent back
// to the sign-in form at "/".
func Auth(authn Authenticator) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			user, err := authenticate(c, authn)
			if err != nil || user == nil {
				// Clear a stale cookie so the form does not loop.
				ClearSessionCookie(c)
				return c.Redirect(http.StatusSeeOther, "/")
			}
			c.Set(UserContextKey, user)
			return next(c)
		}
	}
}

// APIAuth protects JSON routes and answers 401 instead of redirecting.
// The token is read from the session cookie or an "Authorization: Bearer"
// header.
func APIAuth(authn Authenticator) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			user, err := authenticate(c, authn)
			if err != nil || user == nil {
				return c.JSON(http.StatusUnauthorized, map[string]string{"error": "Unauthorized"})
			}
			c.Set(UserContextKey, user)
			return next(c)
		}
	}
}

// UserFromContext returns the user placed in the context by Auth or APIAuth.
func UserFromContext(c echo.Context) (*domain.User, bool) {
	user, ok := c.Get(UserContextKey).(*domain.User)
	return user, ok && user != nil
}

// TokenFromRequest returns the session token from the cookie, falling back
// to a bearer header.
func TokenFromRequest(c echo.Context) string {
	if cookie, err := c.Cookie(SessionCookie); err == nil && cookie.Value != "" {
		return cookie.Value
	}
	header := c.Request().Header.Get(echo.HeaderAuthorization)
	if token, ok := strings.CutPrefix(header, "Bearer "); ok {
		return strings.TrimSpace(token)
	}
	return ""
}

// ClearSessionCookie expires the session cookie on the client.
func ClearSessionCookie(c echo.Context) {
	c.SetCookie(&http.Cookie{
		Name:     SessionCookie,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
	})
}

func authenticate(c echo.Context, authn Authenticator) (*domain.User, error) {
	token := TokenFromRequest(c)
	if token == "" {
		return nil, echo.ErrUnauthorized
	}
	return authn.Authenticate(c.Request().Context(), token)
}
