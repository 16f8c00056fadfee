package app

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/samber/do/v2"
	"go.opentelemetry.io/otel/trace"

	"github.com/nfrund/neuralfeed/internal/auth"
	"github.com/nfrund/neuralfeed/internal/config"
	"github.com/nfrund/neuralfeed/internal/conversations"
	"github.com/nfrund/neuralfeed/internal/database"
	"github.com/nfrund/neuralfeed/internal/domain"
	"github.com/nfrund/neuralfeed/internal/email"
	"github.com/nfrund/neuralfeed/internal/module"
	"github.com/nfrund/neuralfeed/internal/pubsub"
	"github.com/nfrund/neuralfeed/internal/rendering"
	"github.com/nfrund/neuralfeed/internal/server"
)

// tracing is the tracer plus the func that flushes it.
type tracing struct {
	tracer   trace.Tracer
	shutdown func(context.Context) error
}

// NewInjector registers every service provider. Nothing is built until it
// is first invoked.
func NewInjector(ctx context.Context, cfg config.Provider, logger *slog.Logger) do.Injector {
	i := do.New()

	do.ProvideValue(i, cfg)
	do.ProvideValue(i, logger)

	do.Provide(i, func(i do.Injector) (*tracing, error) {
		tracer, shutdown, err := pubsub.SetupTracing(ctx, cfg.GetTracing())
		if err != nil {
			return nil, err
		}
		return &tracing{tracer: tracer, shutdown: shutdown}, nil
	})

	do.Provide(i, func(i do.Injector) (*database.Stores, error) {
		return database.Open(ctx, cfg)
	})

	do.Provide(i, func(i do.Injector) (*pubsub.WatermillBridge, error) {
		tr := do.MustInvoke[*tracing](i)
		return pubsub.NewWatermillBridge(logger, pubsub.WithTracer(tr.tracer)), nil
	})

	do.Provide(i, func(i do.Injector) (domain.EmailSender, error) {
		return email.NewEmailService(cfg, logger)
	})

	do.Provide(i, func(i do.Injector) (*auth.Service, error) {
		providers, err := auth.NewProviders(cfg.GetOAuthProviders())
		if err != nil {
			return nil, err
		}
		stores := do.MustInvoke[*database.Stores](i)
		bus := do.MustInvoke[*pubsub.WatermillBridge](i)
		return auth.NewService(
			stores.Users,
			auth.NewPasswordHasher(cfg.GetBcryptCost()),
			auth.NewTokenManager(cfg.GetTokenSecret(), cfg.GetTokenTTL()),
			providers,
			bus,
			logger,
		), nil
	})

	do.Provide(i, func(i do.Injector) (*rendering.UniversalRenderer, error) {
		return rendering.NewUniversalRenderer(), nil
	})

	do.Provide(i, func(i do.Injector) ([]module.Module, error) {
		stores := do.MustInvoke[*database.Stores](i)
		bus := do.MustInvoke[*pubsub.WatermillBridge](i)
		renderer := do.MustInvoke[*rendering.UniversalRenderer](i)
		sender := do.MustInvoke[domain.EmailSender](i)

		convSvc := conversations.NewService(stores.Users, stores.Conversations, stores.Messages, bus, logger)
		return []module.Module{
			conversations.NewModule(
				conversations.NewHandler(convSvc, renderer),
				conversations.NewActivityTracker(stores.Conversations, logger),
			),
			email.NewModule(email.NewWelcomeSubscriber(sender, cfg.GetAppBaseURL(), logger)),
		}, nil
	})

	do.Provide(i, func(i do.Injector) (*server.Server, error) {
		stores := do.MustInvoke[*database.Stores](i)
		return server.New(cfg, logger, server.Deps{
			Auth:     do.MustInvoke[*auth.Service](i),
			Renderer: do.MustInvoke[*rendering.UniversalRenderer](i),
			Modules:  do.MustInvoke[[]module.Module](i),
			Healthy:  stores.Healthy,
		}), nil
	})

	return i
}

// Run builds the application, serves until ctx is canceled and releases
// every resource on the way out.
func Run(ctx context.Context, cfg config.Provider, logger *slog.Logger) error {
	i := NewInjector(ctx, cfg, logger)

	srv, err := do.Invoke[*server.Server](i)
	if err != nil {
		return fmt.Errorf("failed to build server: %w", err)
	}
	bus := do.MustInvoke[*pubsub.WatermillBridge](i)
	stores := do.MustInvoke[*database.Stores](i)
	tr := do.MustInvoke[*tracing](i)

	defer func() {
		closeCtx := context.Background()
		if err := bus.Close(); err != nil {
			logger.Error("Failed to close event bus", "error", err)
		}
		if err := stores.Close(closeCtx); err != nil {
			logger.Error("Failed to close database", "error", err)
		}
		if err := tr.shutdown(closeCtx); err != nil {
			logger.Error("Failed to flush traces", "error", err)
		}
	}()

	// Subscribers live as long as the server.
	subCtx, cancel := context.WithCancel(ctx)
	defer cancel()
	if err := srv.RegisterRoutes(subCtx, bus); err != nil {
		return err
	}

	return srv.Start(ctx)
}
