// Package smsgw provides a client for an HTTP SMS delivery provider.
package smsgw

import (
	"context"
	"io"
)

// Sender sends SMS messages through a provider.
type Sender interface {
	io.Closer

	// Send submits a single SMS and returns the provider message id.
	Send(ctx context.Context, msg Message) (string, error)
}

// Message is a single SMS submission.
type Message struct {
	// To is the destination phone number in E.164 format.
	To string
	// Body is the message text.
	Body string
	// Sender overrides the configured default sender id when set.
	Sender string
}
