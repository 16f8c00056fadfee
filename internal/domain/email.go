package domain

import "context"

// Email is an outgoing message addressed to a single recipient.
type Email struct {
	To      string
	Subject string
	HTML    string
}

// EmailSender delivers e-mail. Implementations exist for logging during
// development and for the Resend API.
type EmailSender interface {
	Send(ctx context.Context, mail Email) error
}
