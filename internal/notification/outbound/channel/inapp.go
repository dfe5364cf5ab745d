package channel

import (
	"context"

	"github.com/tradekart/notifier/internal/notification/entity"
	"github.com/tradekart/notifier/internal/pkg/instrument"
)

// InboxWriter persists an in-app message for a recipient.
type InboxWriter interface {
	CreateInboxMessage(ctx context.Context, notificationID, userID int64, title, body, action string) error
}

// InApp delivers by writing into the recipient's inbox. There is no
// external gateway, so a successful write is a delivery.
type InApp struct {
	inbox InboxWriter
	ins   instrument.Instrumentation
}

func NewInApp(inbox InboxWriter, ins instrument.Instrumentation) *InApp {
	return &InApp{inbox: inbox, ins: ins}
}

func (a *InApp) Channel() entity.Channel { return entity.ChannelInApp }

func (a *InApp) Deliver(ctx context.Context, notificationID int64, rcpt entity.Recipient, content Content) (Outcome, error) {
	ctx, span := a.ins.Tracer("notification.outbound.channel").Start(ctx, "InApp.Deliver")
	defer span.End()

	title := content.Title
	if title == "" {
		title = content.Subject
	}

	err := a.inbox.CreateInboxMessage(ctx, notificationID, rcpt.UserID, title, content.Body, content.Action)
	if err != nil {
		return Outcome{Error: err.Error()}, nil
	}

	return Outcome{Success: true, Delivered: true}, nil
}
