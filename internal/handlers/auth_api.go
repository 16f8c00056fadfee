package handlers

import (
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/nfrund/neuralfeed/internal/auth"
	"github.com/nfrund/neuralfeed/internal/domain"
	"github.com/nfrund/neuralfeed/internal/middleware"
	"github.com/nfrund/neuralfeed/internal/view"
)

// AuthAPIHandler serves the JSON sign-in and registration endpoints.
type AuthAPIHandler struct {
	auth    AuthService
	baseURL string
}

// NewAuthAPIHandler creates a new AuthAPIHandler.
func NewAuthAPIHandler(svc AuthService, baseURL string) *AuthAPIHandler {
	return &AuthAPIHandler{auth: svc, baseURL: strings.TrimRight(baseURL, "/")}
}

// Register handles POST /api/register. Errors are answered in plain text.
func (h *AuthAPIHandler) Register(c echo.Context) error {
	ctx := c.Request().Context()
	logger := middleware.FromContext(ctx)

	var in auth.RegisterInput
	if err := c.Bind(&in); err != nil {
		logger.Error("Failed to read registration body", "error", err)
		return c.String(http.StatusInternalServerError, "Internal server error")
	}

	user, err := h.auth.Register(ctx, in)
	if err != nil {
		status, msg := registrationError(err)
		if status == http.StatusInternalServerError {
			logger.Error("Registration failed", "error", err)
		}
		return c.String(status, msg)
	}

	logger.Info("User registered", "user_id", user.ID)
	return c.JSON(http.StatusOK, NewUserResponse(user))
}

// CredentialsCallback handles POST /api/auth/callback/credentials.
func (h *AuthAPIHandler) CredentialsCallback(c echo.Context) error {
	ctx := c.Request().Context()

	var req CredentialsRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, signInFailure(http.StatusBadRequest, codeCredentialsSignin))
	}

	session, err := h.auth.SignIn(ctx, req.Email, req.Password)
	if errors.Is(err, domain.ErrInvalidCredentials) {
		middleware.FromContext(ctx).Warn("Failed login attempt", "email", req.Email)
		return c.JSON(http.StatusUnauthorized, signInFailure(http.StatusUnauthorized, codeCredentialsSignin))
	}
	if err != nil {
		middleware.FromContext(ctx).Error("Credential sign-in failed", "error", err)
		return c.JSON(http.StatusInternalServerError, signInFailure(http.StatusInternalServerError, codeCallbackError))
	}

	setSessionCookie(c, session)
	if req.Redirect {
		return c.Redirect(http.StatusSeeOther, afterSignIn)
	}
	return c.JSON(http.StatusOK, signInSuccess(h.baseURL+afterSignIn))
}

// FederatedSignIn handles POST /api/auth/signin/:provider and returns the
// provider URL instead of redirecting unless the body asks for it.
func (h *AuthAPIHandler) FederatedSignIn(c echo.Context) error {
	var req SignInRequest
	// An empty body means {redirect:false}.
	if err := c.Bind(&req); err != nil && !errors.Is(err, io.EOF) {
		middleware.FromContext(c.Request().Context()).Warn("Malformed sign-in body", "provider", c.Param("provider"), "error", err)
		return c.JSON(http.StatusBadRequest, signInFailure(http.StatusBadRequest, codeOAuthSignin))
	}

	url, err := h.auth.BeginFederated(c.Param("provider"))
	if errors.Is(err, domain.ErrUnknownProvider) {
		return c.JSON(http.StatusBadRequest, signInFailure(http.StatusBadRequest, codeOAuthSignin))
	}
	if err != nil {
		middleware.FromContext(c.Request().Context()).Error("Federated sign-in failed", "provider", c.Param("provider"), "error", err)
		return c.JSON(http.StatusInternalServerError, signInFailure(http.StatusInternalServerError, codeOAuthSignin))
	}

	if req.Redirect {
		return c.Redirect(http.StatusFound, url)
	}
	return c.JSON(http.StatusOK, signInSuccess(url))
}

// FederatedCallback handles GET /api/auth/callback/:provider, the target
// the provider sends the browser back to.
func (h *AuthAPIHandler) FederatedCallback(c echo.Context) error {
	ctx := c.Request().Context()
	provider := c.Param("provider")
	logger := middleware.FromContext(ctx).With("provider", provider)

	if providerErr := c.QueryParam("error"); providerErr != "" {
		logger.Warn("Provider returned an error", "error", providerErr)
		return h.callbackFailed(c)
	}

	session, err := h.auth.CompleteFederated(ctx, provider, c.QueryParam("state"), c.QueryParam("code"))
	if err != nil {
		logger.Error("Federated callback failed", "error", err)
		return h.callbackFailed(c)
	}

	setSessionCookie(c, session)
	return c.Redirect(http.StatusSeeOther, afterSignIn)
}

func (h *AuthAPIHandler) callbackFailed(c echo.Context) error {
	view.SetFlashError(c, "Something went wrong with your social login")
	return c.Redirect(http.StatusSeeOther, "/?error="+codeOAuthCallback)
}

// Session handles GET /api/auth/session. It runs behind APIAuth.
func (h *AuthAPIHandler) Session(c echo.Context) error {
	user, ok := middleware.UserFromContext(c)
	if !ok {
		return echo.NewHTTPError(http.StatusUnauthorized)
	}
	return c.JSON(http.StatusOK, SessionResponse{User: NewUserResponse(user)})
}

// SignOut handles POST /api/auth/signout.
func (h *AuthAPIHandler) SignOut(c echo.Context) error {
	middleware.ClearSessionCookie(c)
	return c.JSON(http.StatusOK, map[string]bool{"ok": true})
}
