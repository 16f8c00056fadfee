package handlers

import (
	"encoding/json"
	"net/http"
	"net/url"
	"strings"
	"testing"

	"github.com/gorilla/sessions"
	"github.com/labstack/echo-contrib/session"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nfrund/neuralfeed/internal/auth"
	"github.com/nfrund/neuralfeed/internal/authflow"
	"github.com/nfrund/neuralfeed/internal/config"
	"github.com/nfrund/neuralfeed/internal/middleware"
	"github.com/nfrund/neuralfeed/internal/rendering"
	"github.com/nfrund/neuralfeed/internal/testutils"
)

const baseURL = "http://chat.test"

func newTestServer(t *testing.T) (*testutils.AuthHarness, *testutils.Browser) {
	t.Helper()

	providers, err := auth.NewProviders([]config.OAuthProvider{{
		Name:         "google",
		ClientID:     "google-id",
		ClientSecret: "google-secret",
		RedirectURL:  baseURL + "/api/auth/callback/google",
		Scopes:       []string{"openid", "email", "profile"},
	}})
	require.NoError(t, err)
	h := testutils.NewAuthHarness(t, providers)

	e := echo.New()
	e.Validator = NewValidator()
	e.Use(session.Middleware(sessions.NewCookieStore([]byte("a-very-secret-key-for-testing-!"))))

	api := NewAuthAPIHandler(h.Service, baseURL)
	e.POST("/api/register", api.Register)
	e.POST("/api/auth/callback/credentials", api.CredentialsCallback)
	e.POST("/api/auth/signin/:provider", api.FederatedSignIn)
	e.GET("/api/auth/callback/:provider", api.FederatedCallback)
	e.GET("/api/auth/session", api.Session, middleware.APIAuth(h.Service))
	e.POST("/api/auth/signout", api.SignOut)

	web := NewAuthHandler(h.Service, rendering.NewUniversalRenderer())
	e.GET("/", web.Form)
	e.POST("/auth/login", web.LoginPost)
	e.POST("/auth/register", web.RegisterPost)
	e.GET("/auth/social/:provider", web.Social)
	e.GET("/auth/logout", web.Logout)

	return h, testutils.NewBrowser(e)
}

func decodeResult(t *testing.T, body string) authflow.SignInResult {
	t.Helper()
	var res authflow.SignInResult
	require.NoError(t, json.Unmarshal([]byte(body), &res))
	return res
}

func TestRegisterAPI(t *testing.T) {
	t.Run("creates the account", func(t *testing.T) {
		h, b := newTestServer(t)

		rec := b.PostJSON("/api/register", `{"name":"Ada","email":"ada@example.com","password":"secret"}`)
		require.Equal(t, http.StatusOK, rec.Code)

		var body map[string]any
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
		assert.Equal(t, "Ada", body["name"])
		assert.Equal(t, "ada@example.com", body["email"])
		assert.NotEmpty(t, body["id"])
		assert.NotContains(t, rec.Body.String(), "ashed")

		stored, err := h.Stores.Users.FindByEmail(t.Context(), "ada@example.com")
		require.NoError(t, err)
		assert.NotEqual(t, "secret", stored.HashedPassword)
	})

	tests := []struct {
		name   string
		body   string
		status int
		text   string
	}{
		{"missing name", `{"email":"ada@example.com","password":"secret"}`, http.StatusBadRequest, "Missing fields"},
		{"missing password", `{"name":"Ada","email":"ada@example.com"}`, http.StatusBadRequest, "Missing fields"},
		{"empty body", `{}`, http.StatusBadRequest, "Missing fields"},
		{"malformed body", `{"name":`, http.StatusInternalServerError, "Internal server error"},
		{"password over 72 bytes", `{"name":"Ada","email":"ada@example.com","password":"` + strings.Repeat("p", 80) + `"}`, http.StatusBadRequest, "Password is too long"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, b := newTestServer(t)
			rec := b.PostJSON("/api/register", tt.body)
			assert.Equal(t, tt.status, rec.Code)
			assert.Equal(t, tt.text, rec.Body.String())
		})
	}

	t.Run("duplicate email", func(t *testing.T) {
		h, b := newTestServer(t)
		h.CreateUser(t, "Ada", "ada@example.com", "secret")

		rec := b.PostJSON("/api/register", `{"name":"Other","email":"ADA@example.com","password":"x"}`)
		assert.Equal(t, http.StatusConflict, rec.Code)
		assert.Equal(t, "Email already in use", rec.Body.String())
	})
}

func TestCredentialsCallback(t *testing.T) {
	t.Run("success sets the session cookie", func(t *testing.T) {
		h, b := newTestServer(t)
		h.CreateUser(t, "Ada", "ada@example.com", "secret")

		rec := b.PostJSON("/api/auth/callback/credentials", `{"email":"ada@example.com","password":"secret","redirect":false}`)
		require.Equal(t, http.StatusOK, rec.Code)

		res := decodeResult(t, rec.Body.String())
		assert.True(t, res.OK)
		assert.Empty(t, res.Error)
		assert.Equal(t, baseURL+"/conversations", res.URL)

		_, ok := b.Cookie(middleware.SessionCookie)
		assert.True(t, ok)

		rec = b.Get("/api/auth/session")
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Body.String(), `"email":"ada@example.com"`)
	})

	t.Run("wrong password", func(t *testing.T) {
		h, b := newTestServer(t)
		h.CreateUser(t, "Ada", "ada@example.com", "secret")

		rec := b.PostJSON("/api/auth/callback/credentials", `{"email":"ada@example.com","password":"nope"}`)
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
		assert.JSONEq(t, `{"ok":false,"error":"CredentialsSignin","status":401}`, rec.Body.String())
		_, ok := b.Cookie(middleware.SessionCookie)
		assert.False(t, ok)
	})

	t.Run("sign out ends the session", func(t *testing.T) {
		h, b := newTestServer(t)
		h.CreateUser(t, "Ada", "ada@example.com", "secret")
		b.PostJSON("/api/auth/callback/credentials", `{"email":"ada@example.com","password":"secret"}`)

		rec := b.PostJSON("/api/auth/signout", "")
		assert.Equal(t, http.StatusOK, rec.Code)

		rec = b.Get("/api/auth/session")
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})
}

func TestFederatedSignIn(t *testing.T) {
	t.Run("returns the provider url", func(t *testing.T) {
		_, b := newTestServer(t)

		rec := b.PostJSON("/api/auth/signin/google", `{"redirect":false}`)
		require.Equal(t, http.StatusOK, rec.Code)

		res := decodeResult(t, rec.Body.String())
		assert.True(t, res.OK)
		u, err := url.Parse(res.URL)
		require.NoError(t, err)
		assert.Equal(t, "accounts.google.com", u.Host)
		assert.NotEmpty(t, u.Query().Get("state"))
		assert.Equal(t, baseURL+"/api/auth/callback/google", u.Query().Get("redirect_uri"))
	})

	t.Run("unknown provider", func(t *testing.T) {
		_, b := newTestServer(t)

		rec := b.PostJSON("/api/auth/signin/myspace", `{"redirect":false}`)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.JSONEq(t, `{"ok":false,"error":"OAuthSignin","status":400}`, rec.Body.String())
	})

	t.Run("empty body returns the provider url", func(t *testing.T) {
		_, b := newTestServer(t)

		rec := b.PostJSON("/api/auth/signin/google", "")
		require.Equal(t, http.StatusOK, rec.Code)
		assert.True(t, decodeResult(t, rec.Body.String()).OK)
	})

	t.Run("malformed body", func(t *testing.T) {
		_, b := newTestServer(t)

		rec := b.PostJSON("/api/auth/signin/google", `{"redirect":`)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.JSONEq(t, `{"ok":false,"error":"OAuthSignin","status":400}`, rec.Body.String())
	})

	t.Run("callback with a bad state is rejected", func(t *testing.T) {
		_, b := newTestServer(t)

		rec := b.Get("/api/auth/callback/google?state=forged&code=abc")
		assert.Equal(t, http.StatusSeeOther, rec.Code)
		assert.Equal(t, "/?error=OAuthCallback", rec.Header().Get("Location"))

		rec = b.Get("/")
		assert.Contains(t, rec.Body.String(), "Something went wrong with your social login")
	})
}

func TestAuthForm(t *testing.T) {
	t.Run("renders the login variant by default", func(t *testing.T) {
		_, b := newTestServer(t)

		rec := b.Get("/")
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Body.String(), `action="/auth/login"`)
		assert.Contains(t, rec.Body.String(), `href="/auth/social/google"`)
	})

	t.Run("variant query selects register", func(t *testing.T) {
		_, b := newTestServer(t)

		rec := b.Get("/?variant=register")
		assert.Contains(t, rec.Body.String(), `action="/auth/register"`)
	})

	t.Run("failed login keeps the email and shows the error", func(t *testing.T) {
		h, b := newTestServer(t)
		h.CreateUser(t, "Ada", "ada@example.com", "secret")

		rec := b.PostForm("/auth/login", url.Values{"email": {"ada@example.com"}, "password": {"wrong"}})
		assert.Equal(t, http.StatusSeeOther, rec.Code)
		assert.Equal(t, "/", rec.Header().Get("Location"))

		page := b.Get("/").Body.String()
		assert.Contains(t, page, authflow.MsgInvalidCredentials)
		assert.Contains(t, page, `value="ada@example.com"`)

		page = b.Get("/").Body.String()
		assert.NotContains(t, page, authflow.MsgInvalidCredentials, "flash is shown once")
	})

	t.Run("successful login redirects to conversations", func(t *testing.T) {
		h, b := newTestServer(t)
		h.CreateUser(t, "Ada", "ada@example.com", "secret")

		rec := b.PostForm("/auth/login", url.Values{"email": {"ada@example.com"}, "password": {"secret"}})
		assert.Equal(t, http.StatusSeeOther, rec.Code)
		assert.Equal(t, "/conversations", rec.Header().Get("Location"))
		_, ok := b.Cookie(middleware.SessionCookie)
		assert.True(t, ok)

		rec = b.Get("/")
		assert.Equal(t, http.StatusSeeOther, rec.Code, "signed-in users skip the form")
	})

	t.Run("registration", func(t *testing.T) {
		_, b := newTestServer(t)

		rec := b.PostForm("/auth/register", url.Values{"name": {"Ada"}, "email": {"ada@example.com"}, "password": {"secret"}})
		assert.Equal(t, http.StatusSeeOther, rec.Code)
		assert.Equal(t, "/", rec.Header().Get("Location"))

		page := b.Get("/").Body.String()
		assert.Contains(t, page, authflow.MsgAccountCreated)
		assert.Contains(t, page, `value="ada@example.com"`)
	})

	t.Run("registration with a taken email shows the server message", func(t *testing.T) {
		h, b := newTestServer(t)
		h.CreateUser(t, "Ada", "ada@example.com", "secret")

		rec := b.PostForm("/auth/register", url.Values{"name": {"Ada"}, "email": {"ada@example.com"}, "password": {"x"}})
		assert.Equal(t, "/?variant=register", rec.Header().Get("Location"))
		assert.Contains(t, b.Get("/?variant=register").Body.String(), "Email already in use")
	})

	t.Run("registration with an overlong password", func(t *testing.T) {
		_, b := newTestServer(t)

		rec := b.PostForm("/auth/register", url.Values{"name": {"Ada"}, "email": {"ada@example.com"}, "password": {strings.Repeat("p", 80)}})
		assert.Equal(t, http.StatusSeeOther, rec.Code)
		assert.Equal(t, "/?variant=register", rec.Header().Get("Location"))
		assert.Contains(t, b.Get("/?variant=register").Body.String(), "Password is too long")
	})

	t.Run("registration without a name", func(t *testing.T) {
		_, b := newTestServer(t)

		b.PostForm("/auth/register", url.Values{"email": {"ada@example.com"}, "password": {"x"}})
		assert.Contains(t, b.Get("/?variant=register").Body.String(), "Missing fields")
	})

	t.Run("social sign-in redirects to the provider", func(t *testing.T) {
		_, b := newTestServer(t)

		rec := b.Get("/auth/social/google")
		assert.Equal(t, http.StatusFound, rec.Code)
		assert.True(t, strings.HasPrefix(rec.Header().Get("Location"), "https://accounts.google.com/"))
	})

	t.Run("social sign-in with an unknown provider", func(t *testing.T) {
		_, b := newTestServer(t)

		rec := b.Get("/auth/social/myspace")
		assert.Equal(t, "/", rec.Header().Get("Location"))
		assert.Contains(t, b.Get("/").Body.String(), authflow.MsgSocialFailure)
	})

	t.Run("logout", func(t *testing.T) {
		h, b := newTestServer(t)
		h.CreateUser(t, "Ada", "ada@example.com", "secret")
		b.PostForm("/auth/login", url.Values{"email": {"ada@example.com"}, "password": {"secret"}})

		rec := b.Get("/auth/logout")
		assert.Equal(t, "/", rec.Header().Get("Location"))
		_, ok := b.Cookie(middleware.SessionCookie)
		assert.False(t, ok)
	})
}
