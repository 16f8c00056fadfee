package email

import (
	"context"

	"github.com/nfrund/neuralfeed/internal/module"
	"github.com/nfrund/neuralfeed/internal/pubsub"
)

// Module runs the welcome e-mail subscriber. It mounts no routes.
type Module struct {
	module.BaseModule
	welcome *WelcomeSubscriber
}

// NewModule creates the e-mail module.
func NewModule(welcome *WelcomeSubscriber) *Module {
	return &Module{welcome: welcome}
}

func (m *Module) Name() string {
	return "email"
}

func (m *Module) Boot(ctx context.Context, _ module.Routes, sub pubsub.Subscriber) error {
	return m.welcome.Start(ctx, sub)
}
