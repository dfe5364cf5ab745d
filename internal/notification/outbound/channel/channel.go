// Package channel implements the per-channel delivery capability. Each
// dispatcher exposes the same Deliver contract; callers select one from
// the Registry by channel tag and never learn which gateway sits behind it.
package channel

import (
	"context"

	"github.com/tradekart/notifier/internal/notification/entity"
)

// Content is the concrete, already-rendered content for one channel.
type Content struct {
	// Subject is used by email.
	Subject string
	// Title is used by push.
	Title string
	// Body is the main text for every channel.
	Body string
	// Action is an optional in-app action reference.
	Action string
	// Sound and Priority are push hints.
	Sound    string
	Priority string
	// From and ReplyTo override the configured email sender when set,
	// typically from the template's channel settings.
	From    string
	ReplyTo string
	// Sender overrides the SMS sender id when set.
	Sender string
}

// Outcome is the result of one delivery attempt for one recipient.
type Outcome struct {
	// Success reports that the gateway accepted the message for at
	// least one endpoint.
	Success bool
	// Delivered reports that the gateway confirmed delivery, not just
	// acceptance. Channels without receipts leave it false.
	Delivered bool
	// Error describes the failure when Success is false.
	Error string
	// TokenResults maps push token to acceptance, set by push only.
	TokenResults map[string]bool
	// InvalidTokens lists push tokens the gateway no longer knows;
	// the caller prunes them from the endpoint registry.
	InvalidTokens []string
}

// Dispatcher delivers content to one recipient over one channel.
type Dispatcher interface {
	// Channel identifies which channel this dispatcher serves.
	Channel() entity.Channel
	// Deliver attempts delivery. Gateway failures are reported inside
	// the Outcome; the error return is reserved for unusable input
	// such as a recipient without an endpoint.
	Deliver(ctx context.Context, notificationID int64, rcpt entity.Recipient, content Content) (Outcome, error)
}

// Registry is the dispatcher lookup table keyed on channel tag.
type Registry struct {
	dispatchers map[entity.Channel]Dispatcher
}

// NewRegistry builds a registry from the given dispatchers.
func NewRegistry(dispatchers ...Dispatcher) *Registry {
	m := make(map[entity.Channel]Dispatcher, len(dispatchers))
	for _, d := range dispatchers {
		m[d.Channel()] = d
	}
	return &Registry{dispatchers: m}
}

// Get returns the dispatcher for ch, nil when none is registered.
func (r *Registry) Get(ch entity.Channel) Dispatcher {
	return r.dispatchers[ch]
}
