package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/nfrund/neuralfeed/internal/domain"
	"github.com/stretchr/testify/assert"
)

type stubAuthenticator map[string]*domain.User

func (s stubAuthenticator) Authenticate(ctx context.Context, token string) (*domain.User, error) {
	if u, ok := s[token]; ok {
		return u, nil
	}
	return nil, errors.New("invalid token")
}

func TestAuthMiddleware(t *testing.T) {
	authn := stubAuthenticator{"good": {ID: "u1", Email: "ada@example.com"}}

	e := echo.New()
	whoami := func(c echo.Context) error {
		user, ok := UserFromContext(c)
		if !ok {
			return c.String(http.StatusInternalServerError, "no user")
		}
		return c.String(http.StatusOK, "Welcome "+user.Email)
	}
	e.GET("/conversations", whoami, Auth(authn))
	e.GET("/api/me", whoami, APIAuth(authn))

	t.Run("unauthenticated user is redirected to the form", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/conversations", nil)
		rec := httptest.NewRecorder()
		e.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusSeeOther, rec.Code)
		assert.Equal(t, "/", rec.Header().Get("Location"))
	})

	t.Run("invalid cookie is cleared", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/conversations", nil)
		req.AddCookie(&http.Cookie{Name: SessionCookie, Value: "forged"})
		rec := httptest.NewRecorder()
		e.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusSeeOther, rec.Code)
		cookies := rec.Result().Cookies()
		if assert.Len(t, cookies, 1) {
			assert.Equal(t, SessionCookie, cookies[0].Name)
			assert.Negative(t, cookies[0].MaxAge)
		}
	})

	t.Run("valid cookie reaches the handler", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/conversations", nil)
		req.AddCookie(&http.Cookie{Name: SessionCookie, Value: "good"})
		rec := httptest.NewRecorder()
		e.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "Welcome ada@example.com", rec.Body.String())
	})

	t.Run("api answers 401 without a token", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/me", nil)
		rec := httptest.NewRecorder()
		e.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusUnauthorized, rec.Code)
		assert.JSONEq(t, `{"error":"Unauthorized"}`, rec.Body.String())
	})

	t.Run("api accepts a bearer token", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/me", nil)
		req.Header.Set(echo.HeaderAuthorization, "Bearer good")
		rec := httptest.NewRecorder()
		e.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusOK, rec.Code)
	})
}

func TestLoggerMiddleware(t *testing.T) {
	e := echo.New()
	c := e.NewContext(httptest.NewRequest(http.MethodGet, "/", nil), httptest.NewRecorder())
	c.Response().Header().Set(echo.HeaderXRequestID, "req-1")

	var got bool
	h := Logger(nil)(func(c echo.Context) error {
		got = FromContext(c.Request().Context()) != nil
		return nil
	})
	assert.NoError(t, h(c))
	assert.True(t, got)
	assert.NotNil(t, FromContext(context.Background()))
}
