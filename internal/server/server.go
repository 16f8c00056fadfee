package server

import (
	"log/slog"
	"net/http"

	"github.com/gorilla/sessions"
	"github.com/labstack/echo-contrib/session"
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"

	"github.com/nfrund/neuralfeed/internal/config"
	"github.com/nfrund/neuralfeed/internal/handlers"
	"github.com/nfrund/neuralfeed/internal/middleware"
	"github.com/nfrund/neuralfeed/internal/module"
	"github.com/nfrund/neuralfeed/internal/rendering"
)

// Deps are the collaborators the server routes to.
type Deps struct {
	Auth     handlers.AuthService
	Renderer rendering.Renderer
	Modules  []module.Module
	// Healthy reports storage health for /health. Nil means always healthy.
	Healthy func() bool
}

// Server holds the dependencies for the HTTP server.
type Server struct {
	E       *echo.Echo
	cfg     config.Provider
	logger  *slog.Logger
	deps    Deps
	authAPI *handlers.AuthAPIHandler
	authWeb *handlers.AuthHandler
}

// New creates the echo instance with the global middleware stack.
func New(cfg config.Provider, logger *slog.Logger, deps Deps) *Server {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Validator = handlers.NewValidator()
	e.Renderer = rendering.NewUniversalRenderer()

	e.Use(echomw.Recover())
	e.Use(echomw.RequestID())
	e.Use(middleware.Logger(logger))
	e.Use(echomw.RequestLoggerWithConfig(requestLoggerConfig(logger)))

	store := sessions.NewCookieStore([]byte(cfg.GetSessionSecret()))
	store.Options = &sessions.Options{
		Path:     "/",
		MaxAge:   86400 * 7, // 7 days
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	}
	e.Use(session.Middleware(store))

	setupErrorHandling(e)

	return &Server{
		E:       e,
		cfg:     cfg,
		logger:  logger,
		deps:    deps,
		authAPI: handlers.NewAuthAPIHandler(deps.Auth, cfg.GetAppBaseURL()),
		authWeb: handlers.NewAuthHandler(deps.Auth, deps.Renderer),
	}
}

func requestLoggerConfig(logger *slog.Logger) echomw.RequestLoggerConfig {
	return echomw.RequestLoggerConfig{
		LogStatus:    true,
		LogURI:       true,
		LogMethod:    true,
		LogLatency:   true,
		LogRequestID: true,
		LogValuesFunc: func(c echo.Context, v echomw.RequestLoggerValues) error {
			logger.LogAttrs(c.Request().Context(), slog.LevelInfo, "request",
				slog.String("method", v.Method),
				slog.String("uri", v.URI),
				slog.Int("status", v.Status),
				slog.Duration("latency", v.Latency),
				slog.String("request_id", v.RequestID),
			)
			return nil
		},
	}
}
