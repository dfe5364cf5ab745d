package inbound

import (
	"context"
	"log/slog"
	"slices"

	"github.com/tradekart/notifier/internal/pkg/config"
	"github.com/tradekart/notifier/internal/pkg/goroutine"
	"github.com/tradekart/notifier/internal/pkg/instrument"
	"github.com/tradekart/notifier/internal/pkg/messaging"
	"github.com/tradekart/notifier/internal/pkg/uid"
	"github.com/tradekart/notifier/internal/shared/event"
)

func RegisterMQConsumer(
	ctx context.Context,
	cfg config.Config,
	routine *goroutine.Manager,
	messenger messaging.Messaging,
	uuid uid.StringID,
	uc uc,
	ins instrument.Instrumentation,
) {
	mqHandler := &MQHandler{uc: uc, uuid: uuid, ins: ins}

	enabledConsumerNames := cfg.GetArray("modules.notification.consumer_names")

	var consumers = []struct {
		name    string
		topic   string // destination where the publisher sent the message
		handler messaging.Handler
	}{
		{
			name:    event.OrderStatusChangedConsumerNotification,
			topic:   event.OrderStatusChangedDestination,
			handler: mqHandler.OrderStatusChangedNotification,
		},
		{
			name:    event.RFQResponseCreatedConsumerNotification,
			topic:   event.RFQResponseCreatedDestination,
			handler: mqHandler.RFQResponseCreatedNotification,
		},
		{
			name:    event.DeliveryReceiptConsumerNotification,
			topic:   event.DeliveryReceiptDestination,
			handler: mqHandler.DeliveryReceiptNotification,
		},
	}

	for _, consumer := range consumers {
		if len(enabledConsumerNames) > 0 && slices.Contains(enabledConsumerNames, consumer.name) {
			routine.Go(ctx, func(pCtx context.Context) error {
				slog.InfoContext(ctx, "Running job for handling consumer", "consumer", consumer.name)
				return messenger.Consume(pCtx,
					consumer.topic,
					consumer.handler,
					messaging.WithChannel(consumer.name),
					messaging.WithQueueGroup(consumer.name),
					messaging.WithGroup(consumer.name),
					messaging.WithAutoAck(true),
					messaging.WithConcurrency(10),
					messaging.WithMaxInFlight(10),
				)
			})
		}
	}
}
