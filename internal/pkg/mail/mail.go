// Package mail abstracts an email provider behind a minimal Send contract.
package mail

import (
	"context"
	"io"
)

// Message represents a provider-agnostic email payload.
type Message struct {
	// From is an optional explicit sender; falls back to the configured default.
	From string
	// ReplyTo is an optional reply-to address.
	ReplyTo string
	// To lists required recipients.
	To []string
	// Subject is the email subject line.
	Subject string
	// TextBody is the plain-text body, preferred when HTMLBody is empty.
	TextBody string
	// HTMLBody is the optional HTML body.
	HTMLBody string
}

// Mail abstracts an email provider (SMTP, third-party API, etc).
type Mail interface {
	io.Closer
	// Send dispatches the given message using the underlying provider.
	Send(ctx context.Context, msg Message) error
}
