package module

import (
	"context"

	"github.com/labstack/echo/v4"
	"github.com/nfrund/neuralfeed/internal/pubsub"
)

// Routes are the route groups a module mounts on. Pages and API already
// carry their auth middleware.
type Routes struct {
	// Pages serves HTML to signed-in browsers.
	Pages *Guarded
	// API serves JSON under /api to signed-in clients.
	API *Guarded
}

// Guarded mounts routes on a group with auth applied per route. Group-level
// middleware in echo also runs for unmatched paths, which would answer
// unknown URLs with a redirect or a 401 instead of a 404.
type Guarded struct {
	group *echo.Group
	auth  echo.MiddlewareFunc
}

// NewGuarded returns a Guarded over g that runs auth before every route.
func NewGuarded(g *echo.Group, auth echo.MiddlewareFunc) *Guarded {
	return &Guarded{group: g, auth: auth}
}

// GET registers a guarded GET route.
func (g *Guarded) GET(path string, h echo.HandlerFunc, m ...echo.MiddlewareFunc) *echo.Route {
	return g.group.GET(path, h, g.chain(m)...)
}

// POST registers a guarded POST route.
func (g *Guarded) POST(path string, h echo.HandlerFunc, m ...echo.MiddlewareFunc) *echo.Route {
	return g.group.POST(path, h, g.chain(m)...)
}

func (g *Guarded) chain(m []echo.MiddlewareFunc) []echo.MiddlewareFunc {
	return append([]echo.MiddlewareFunc{g.auth}, m...)
}

// Module defines the contract for a self-contained application feature.
type Module interface {
	// Name returns a unique identifier for the module.
	Name() string

	// Boot sets up routes and starts background subscribers. Subscribers
	// stop when ctx is canceled.
	Boot(ctx context.Context, routes Routes, sub pubsub.Subscriber) error

	// Shutdown is called during graceful application shutdown.
	Shutdown(ctx context.Context) error
}

// BaseModule provides default no-op implementations for Module methods.
// Modules can embed this to avoid implementing methods they don't need.
type BaseModule struct{}

func (m *BaseModule) Boot(ctx context.Context, routes Routes, sub pubsub.Subscriber) error {
	return nil
}

func (m *BaseModule) Shutdown(ctx context.Context) error {
	return nil
}
