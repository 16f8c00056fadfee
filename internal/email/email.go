package email

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/nfrund/neuralfeed/internal/domain"
)

const defaultSender = "Neural Feed <onboarding@resend.dev>"

// LogSender writes e-mails to the log instead of sending them.
type LogSender struct {
	senderAddress string
	logger        *slog.Logger
}

// Send logs the e-mail.
func (s *LogSender) Send(ctx context.Context, mail domain.Email) error {
	s.logger.InfoContext(ctx, "email sent (logged)",
		"from", s.senderAddress,
		"to", mail.To,
		"subject", mail.Subject,
		"body", mail.HTML,
	)
	return nil
}

// ResendSender sends e-mails using the Resend API.
type ResendSender struct {
	apiKey        string
	senderAddress string
	endpoint      string
	httpClient    *http.Client
	logger        *slog.Logger
}

type resendPayload struct {
	From    string `json:"from"`
	To      string `json:"to"`
	Subject string `json:"subject"`
	HTML    string `json:"html"`
}

// Send dispatches an e-mail through the Resend API.
func (s *ResendSender) Send(ctx context.Context, mail domain.Email) error {
	sender := s.senderAddress
	if sender == "" {
		sender = defaultSender
	}

	body, err := json.Marshal(resendPayload{
		From:    sender,
		To:      mail.To,
		Subject: mail.Subject,
		HTML:    mail.HTML,
	})
	if err != nil {
		return fmt.Errorf("failed to marshal resend payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.endpoint, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to create resend request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+s.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to send request to resend: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return fmt.Errorf("resend API returned an error: status %d", resp.StatusCode)
	}

	s.logger.InfoContext(ctx, "sent email via resend", "to", mail.To, "subject", mail.Subject)
	return nil
}

func newResendSender(apiKey, sender, endpoint string, logger *slog.Logger) *ResendSender {
	return &ResendSender{
		apiKey:        apiKey,
		senderAddress: sender,
		endpoint:      endpoint,
		httpClient:    &http.Client{Timeout: 10 * time.Second},
		logger:        logger,
	}
}
