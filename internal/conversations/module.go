package conversations

import (
	"context"
	"fmt"

	"github.com/nfrund/neuralfeed/internal/module"
	"github.com/nfrund/neuralfeed/internal/pubsub"
)

// Module mounts the conversation routes and the activity tracker.
type Module struct {
	module.BaseModule
	handler *Handler
	tracker *ActivityTracker
}

// NewModule creates the conversations module.
func NewModule(handler *Handler, tracker *ActivityTracker) *Module {
	return &Module{handler: handler, tracker: tracker}
}

func (m *Module) Name() string {
	return "conversations"
}

func (m *Module) Boot(ctx context.Context, routes module.Routes, sub pubsub.Subscriber) error {
	h := m.handler

	routes.API.GET("/users", h.ListUsers)
	routes.API.GET("/conversations", h.ListConversations)
	routes.API.POST("/conversations", h.CreateConversation)
	routes.API.GET("/conversations/:id/messages", h.ListMessages)
	routes.API.POST("/messages", h.CreateMessage)

	routes.Pages.GET("/conversations", h.Index)
	routes.Pages.POST("/conversations", h.StartPost)
	routes.Pages.GET("/conversations/:id", h.Show)
	routes.Pages.POST("/conversations/:id/messages", h.MessagePost)

	if err := m.tracker.Start(ctx, sub); err != nil {
		return fmt.Errorf("failed to start conversation activity tracker: %w", err)
	}
	return nil
}
