package email

import (
	"context"
	"fmt"
	"html"
	"log/slog"

	"github.com/nfrund/neuralfeed/internal/domain"
	"github.com/nfrund/neuralfeed/internal/events"
	"github.com/nfrund/neuralfeed/internal/pubsub"
)

// WelcomeSubscriber sends a welcome e-mail to every newly registered user.
type WelcomeSubscriber struct {
	sender  domain.EmailSender
	baseURL string
	logger  *slog.Logger
}

// NewWelcomeSubscriber creates a subscriber that mails through sender.
func NewWelcomeSubscriber(sender domain.EmailSender, baseURL string, logger *slog.Logger) *WelcomeSubscriber {
	return &WelcomeSubscriber{sender: sender, baseURL: baseURL, logger: logger}
}

// Start subscribes to user.registered until ctx is canceled.
func (w *WelcomeSubscriber) Start(ctx context.Context, sub pubsub.Subscriber) error {
	return pubsub.Subscribe(ctx, sub, events.UserRegisteredEvent, w.handle)
}

func (w *WelcomeSubscriber) handle(ctx context.Context, evt events.UserRegistered) error {
	if evt.Email == "" {
		w.logger.WarnContext(ctx, "skipping welcome email without address", "user_id", evt.UserID)
		return nil
	}

	mail := WelcomeEmail(evt.Name, evt.Email, w.baseURL)
	if err := w.sender.Send(ctx, mail); err != nil {
		return fmt.Errorf("failed to send welcome email to user %s: %w", evt.UserID, err)
	}
	return nil
}

// WelcomeEmail builds the message sent after registration.
func WelcomeEmail(name, to, baseURL string) domain.Email {
	greeting := "Welcome to Neural Feed!"
	if name != "" {
		greeting = fmt.Sprintf("Welcome to Neural Feed, %s!", html.EscapeString(name))
	}
	return domain.Email{
		To:      to,
		Subject: "Welcome to Neural Feed",
		HTML: fmt.Sprintf(`<h1>%s</h1><p>Your account is ready. <a href="%s/conversations">Start a conversation</a>.</p>`,
			greeting, html.EscapeString(baseURL)),
	}
}
