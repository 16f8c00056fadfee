package server

import (
	"context"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/nfrund/neuralfeed/internal/middleware"
	"github.com/nfrund/neuralfeed/internal/module"
	"github.com/nfrund/neuralfeed/internal/pubsub"
	"github.com/nfrund/neuralfeed/web"
)

// RegisterRoutes mounts the auth routes, the health check and every
// module. Module subscribers run until ctx is canceled.
func (s *Server) RegisterRoutes(ctx context.Context, sub pubsub.Subscriber) error {
	e := s.E
	rateLimiter := middleware.RateLimiter()
	apiAuth := middleware.APIAuth(s.deps.Auth)

	// Browser form.
	e.GET("/", s.authWeb.Form)
	e.POST("/auth/login", s.authWeb.LoginPost, rateLimiter)
	e.POST("/auth/register", s.authWeb.RegisterPost, rateLimiter)
	e.GET("/auth/social/:provider", s.authWeb.Social, rateLimiter)
	e.GET("/auth/logout", s.authWeb.Logout)

	// JSON endpoints used by the form's clients.
	e.POST("/api/register", s.authAPI.Register, rateLimiter)
	e.POST("/api/auth/callback/credentials", s.authAPI.CredentialsCallback, rateLimiter)
	e.POST("/api/auth/signin/:provider", s.authAPI.FederatedSignIn, rateLimiter)
	e.GET("/api/auth/callback/:provider", s.authAPI.FederatedCallback)
	e.GET("/api/auth/session", s.authAPI.Session, apiAuth)
	e.POST("/api/auth/signout", s.authAPI.SignOut)

	e.GET("/health", s.health)
	e.StaticFS("/static", echo.MustSubFS(web.FS, "static"))

	routes := module.Routes{
		Pages: module.NewGuarded(e.Group(""), middleware.Auth(s.deps.Auth)),
		API:   module.NewGuarded(e.Group("/api"), apiAuth),
	}
	for _, m := range s.deps.Modules {
		if err := m.Boot(ctx, routes, sub); err != nil {
			return fmt.Errorf("failed to boot module %s: %w", m.Name(), err)
		}
		s.logger.Info("Module booted", "module", m.Name())
	}
	return nil
}

func (s *Server) health(c echo.Context) error {
	if s.deps.Healthy != nil && !s.deps.Healthy() {
		return c.String(http.StatusServiceUnavailable, "database unavailable")
	}
	return c.String(http.StatusOK, "OK")
}
