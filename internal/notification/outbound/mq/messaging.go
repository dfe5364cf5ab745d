package mq

import (
	"context"
	"encoding/json"

	"github.com/tradekart/notifier/internal/notification/usecase"
	"github.com/tradekart/notifier/internal/pkg/instrument"
	"github.com/tradekart/notifier/internal/pkg/messaging"
	"github.com/tradekart/notifier/internal/shared/event"
	"go.opentelemetry.io/otel/codes"
)

const keyOfCorrelationID string = "cID"

type Messaging struct {
	client messaging.Messaging
	ins    instrument.Instrumentation
}

func NewMessaging(client messaging.Messaging, ins instrument.Instrumentation) *Messaging {
	return &Messaging{client: client, ins: ins}
}

func (m *Messaging) PublishEngagement(ctx context.Context, msg usecase.EngagementPublishedEvent) error {
	ctx, span := m.ins.Tracer("notification.outbound.mq").Start(ctx, "PublishEngagement")
	defer span.End()

	body, err := json.Marshal(event.NotificationEngagementMessage{
		NotificationID: msg.NotificationID,
		UserID:         msg.UserID,
		Event:          msg.Event,
		Channel:        msg.Channel,
		OccurredAt:     msg.OccurredAt.Unix(),
	})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return err
	}

	cID := instrument.GetCorrelationID(ctx)
	if _, err := m.client.Publish(ctx, event.NotificationEngagementDestination, messaging.OutgoingMessage{
		Body:    body,
		Headers: []messaging.Header{{Key: keyOfCorrelationID, Value: []byte(cID)}},
	}); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return err
	}

	return nil
}
