// Package pushgw provides a client for an HTTP mobile push provider.
package pushgw

import (
	"context"
	"io"
)

// Sender sends push notifications to device tokens.
type Sender interface {
	io.Closer

	// Send submits a batch for the given tokens and returns one result
	// per token, in no particular order.
	Send(ctx context.Context, batch Batch) ([]Result, error)
}

// Batch is a push submission fanned out to multiple device tokens.
type Batch struct {
	// Tokens are the destination device tokens.
	Tokens []string
	// Title is the notification title.
	Title string
	// Body is the notification body.
	Body string
	// Data is an optional key-value payload attached to the push.
	Data map[string]string
}

// Result is the per-token outcome of a batch submission.
type Result struct {
	// Token is the device token this result belongs to.
	Token string
	// Accepted reports whether the provider accepted the push.
	Accepted bool
	// MessageID is the provider message id when accepted.
	MessageID string
	// Reason describes the failure when not accepted.
	Reason string
	// Unregistered reports that the provider no longer knows the token
	// and it should be dropped from the device registry.
	Unregistered bool
}
