package email

import (
	"fmt"
	"log/slog"

	"github.com/nfrund/neuralfeed/internal/config"
	"github.com/nfrund/neuralfeed/internal/domain"
)

const resendEndpoint = "https://api.resend.com/emails"

// NewEmailService creates and returns an email sender based on the configuration.
func NewEmailService(cfg config.Provider, logger *slog.Logger) (domain.EmailSender, error) {
	switch cfg.GetEmailProvider() {
	case "log":
		return &LogSender{senderAddress: cfg.GetEmailSender(), logger: logger}, nil
	case "resend":
		if cfg.GetEmailAPIKey() == "" {
			return nil, fmt.Errorf("email provider is 'resend' but EMAIL_API_KEY is not set")
		}
		return newResendSender(cfg.GetEmailAPIKey(), cfg.GetEmailSender(), resendEndpoint, logger), nil
	default:
		return nil, fmt.Errorf("unknown email provider: %s", cfg.GetEmailProvider())
	}
}
