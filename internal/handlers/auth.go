package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/nfrund/neuralfeed/internal/auth"
	"github.com/nfrund/neuralfeed/internal/authflow"
	"github.com/nfrund/neuralfeed/internal/domain"
	"github.com/nfrund/neuralfeed/internal/middleware"
	"github.com/nfrund/neuralfeed/internal/rendering"
	"github.com/nfrund/neuralfeed/internal/view"
	"github.com/nfrund/neuralfeed/internal/view/pages"
)

// AuthHandler serves the browser sign-in form. Each submission runs
// through an authflow.Flow whose notifications become flash messages.
type AuthHandler struct {
	auth     AuthService
	renderer rendering.Renderer
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(svc AuthService, renderer rendering.Renderer) *AuthHandler {
	return &AuthHandler{auth: svc, renderer: renderer}
}

// Form renders the login or register form (GET /). Signed-in users go
// straight to their conversations.
func (h *AuthHandler) Form(c echo.Context) error {
	if token := middleware.TokenFromRequest(c); token != "" {
		if _, err := h.auth.Authenticate(c.Request().Context(), token); err == nil {
			return c.Redirect(http.StatusSeeOther, afterSignIn)
		}
	}

	data := pages.AuthFormData{
		Variant: authflow.ParseVariant(c.QueryParam("variant")),
		Email:   view.PopFormEmail(c),
	}
	for _, p := range h.auth.Providers() {
		data.Providers = append(data.Providers, pages.ProviderLink{Name: p.Name, DisplayName: p.DisplayName})
	}

	page := pages.Page("Sign in", view.GetFlashData(c), pages.AuthForm(data))
	return h.renderer.RenderPage(c, http.StatusOK, view.AdaptGomponentToTempl(page))
}

// LoginPost handles POST /auth/login.
func (h *AuthHandler) LoginPost(c echo.Context) error {
	return h.submit(c, authflow.Login)
}

// RegisterPost handles POST /auth/register.
func (h *AuthHandler) RegisterPost(c echo.Context) error {
	return h.submit(c, authflow.Register)
}

func (h *AuthHandler) submit(c echo.Context, variant authflow.Variant) error {
	ctx := c.Request().Context()
	creds := authflow.Credentials{
		Name:     c.FormValue("name"),
		Email:    c.FormValue("email"),
		Password: c.FormValue("password"),
	}

	bridge := &serviceBridge{auth: h.auth}
	flow := authflow.New(bridge, bridge, flashNotifier(c),
		authflow.WithVariant(variant),
		authflow.WithLogger(middleware.FromContext(ctx)),
	)

	if err := flow.Submit(ctx, creds); err != nil {
		view.SetFormEmail(c, creds.Email)
		return c.Redirect(http.StatusSeeOther, formURL(variant))
	}

	if variant == authflow.Register {
		// New accounts sign in from the login form with the address filled in.
		view.SetFormEmail(c, creds.Email)
		return c.Redirect(http.StatusSeeOther, formURL(authflow.Login))
	}

	setSessionCookie(c, bridge.session)
	return c.Redirect(http.StatusSeeOther, afterSignIn)
}

// Social handles GET /auth/social/:provider by sending the browser to the
// provider.
func (h *AuthHandler) Social(c echo.Context) error {
	ctx := c.Request().Context()
	bridge := &serviceBridge{auth: h.auth}
	flow := authflow.New(bridge, bridge, authflow.NotifierFuncs{
		// Success is only known once the provider calls back.
		OnError: func(msg string) { view.SetFlashError(c, msg) },
	}, authflow.WithLogger(middleware.FromContext(ctx)))

	res, err := flow.SocialAction(ctx, c.Param("provider"))
	if err != nil {
		return c.Redirect(http.StatusSeeOther, "/")
	}
	return c.Redirect(http.StatusFound, res.URL)
}

// Logout clears the session cookie (GET /auth/logout).
func (h *AuthHandler) Logout(c echo.Context) error {
	middleware.ClearSessionCookie(c)
	view.SetFlashSuccess(c, "You have been logged out.")
	return c.Redirect(http.StatusSeeOther, "/")
}

func formURL(v authflow.Variant) string {
	if v == authflow.Register {
		return "/?variant=register"
	}
	return "/"
}

func flashNotifier(c echo.Context) authflow.Notifier {
	return authflow.NotifierFuncs{
		OnSuccess: func(msg string) { view.SetFlashSuccess(c, msg) },
		OnError:   func(msg string) { view.SetFlashError(c, msg) },
	}
}

// serviceBridge adapts AuthService to the authflow collaborators and keeps
// the session issued by a successful sign-in.
type serviceBridge struct {
	auth    AuthService
	session *auth.Session
}

func (b *serviceBridge) SignInCredentials(ctx context.Context, email, password string) (authflow.SignInResult, error) {
	session, err := b.auth.SignIn(ctx, email, password)
	if errors.Is(err, domain.ErrInvalidCredentials) {
		return signInFailure(http.StatusUnauthorized, codeCredentialsSignin), nil
	}
	if err != nil {
		return authflow.SignInResult{}, err
	}
	b.session = session
	return signInSuccess(afterSignIn), nil
}

func (b *serviceBridge) SignInFederated(ctx context.Context, provider string) (authflow.SignInResult, error) {
	url, err := b.auth.BeginFederated(provider)
	if errors.Is(err, domain.ErrUnknownProvider) {
		return signInFailure(http.StatusBadRequest, codeOAuthSignin), nil
	}
	if err != nil {
		return authflow.SignInResult{}, err
	}
	return signInSuccess(url), nil
}

func (b *serviceBridge) CreateAccount(ctx context.Context, creds authflow.Credentials) (*authflow.Account, error) {
	user, err := b.auth.Register(ctx, auth.RegisterInput{
		Name:     creds.Name,
		Email:    creds.Email,
		Password: creds.Password,
	})
	if err != nil {
		status, msg := registrationError(err)
		if status == http.StatusInternalServerError {
			// Unexpected failures keep their cause; the flow shows the
			// generic text for them.
			return nil, err
		}
		return nil, &authflow.ServerError{StatusCode: status, Message: msg}
	}
	return &authflow.Account{ID: user.ID, Name: user.Name, Email: user.Email, Image: user.Image}, nil
}
