package inbound

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/tradekart/notifier/internal/notification/usecase"
	"github.com/tradekart/notifier/internal/pkg/instrument"
	"github.com/tradekart/notifier/internal/pkg/messaging"
	"github.com/tradekart/notifier/internal/pkg/uid"
	"github.com/tradekart/notifier/internal/shared/event"
)

const keyOfCorrelationID string = "cID"

type MQHandler struct {
	uc   uc
	uuid uid.StringID
	ins  instrument.Instrumentation
}

func (h *MQHandler) ensureCorrelationID(ctx context.Context, headers []messaging.Header) context.Context {
	for i := range headers {
		if headers[i].Key == keyOfCorrelationID {
			return instrument.SetCorrelationID(ctx, string(headers[i].Value))
		}
	}
	return instrument.SetCorrelationID(ctx, h.uuid.Generate())
}

func (h *MQHandler) OrderStatusChangedNotification(ctx context.Context, msg messaging.Message) error {
	ctx = h.ensureCorrelationID(ctx, msg.Headers())

	ctx, span := h.ins.Tracer("notification.inbound.mq").Start(ctx, "OrderStatusChangedNotification")
	defer span.End()

	body := msg.Body()
	slog.InfoContext(ctx, "consume: order status changed", "msg_body", string(body))

	var payload event.OrderStatusChangedMessage
	if err := json.Unmarshal(body, &payload); err != nil {
		slog.ErrorContext(ctx, "failed to parse message body of order status changed", "msg_body", string(body), "error", err)
		return nil
	}

	if err := h.uc.NotifyOrderStatusChanged(ctx, usecase.OrderStatusChangedInput{
		OrderID:    payload.OrderID,
		BuyerID:    payload.BuyerID,
		SupplierID: payload.SupplierID,
		OrderRef:   payload.OrderRef,
		NewStatus:  payload.NewStatus,
	}); err != nil {
		slog.ErrorContext(ctx, "failed to consume order status changed", "msg_body", string(body), "error", err)
		return err
	}

	return nil
}

func (h *MQHandler) RFQResponseCreatedNotification(ctx context.Context, msg messaging.Message) error {
	ctx = h.ensureCorrelationID(ctx, msg.Headers())

	ctx, span := h.ins.Tracer("notification.inbound.mq").Start(ctx, "RFQResponseCreatedNotification")
	defer span.End()

	body := msg.Body()
	slog.InfoContext(ctx, "consume: rfq response created", "msg_body", string(body))

	var payload event.RFQResponseCreatedMessage
	if err := json.Unmarshal(body, &payload); err != nil {
		slog.ErrorContext(ctx, "failed to parse message body of rfq response created", "msg_body", string(body), "error", err)
		return nil
	}

	if err := h.uc.NotifyRFQResponseCreated(ctx, usecase.RFQResponseCreatedInput{
		RFQID:        payload.RFQID,
		ResponseID:   payload.ResponseID,
		RequesterID:  payload.RequesterID,
		SupplierName: payload.SupplierName,
		ProductName:  payload.ProductName,
	}); err != nil {
		slog.ErrorContext(ctx, "failed to consume rfq response created", "msg_body", string(body), "error", err)
		return err
	}

	return nil
}

func (h *MQHandler) DeliveryReceiptNotification(ctx context.Context, msg messaging.Message) error {
	ctx = h.ensureCorrelationID(ctx, msg.Headers())

	ctx, span := h.ins.Tracer("notification.inbound.mq").Start(ctx, "DeliveryReceiptNotification")
	defer span.End()

	body := msg.Body()

	var payload event.DeliveryReceiptMessage
	if err := json.Unmarshal(body, &payload); err != nil {
		slog.ErrorContext(ctx, "failed to parse message body of delivery receipt", "msg_body", string(body), "error", err)
		return nil
	}

	if err := h.uc.ApplyDeliveryReceipt(ctx, usecase.DeliveryReceiptInput{
		NotificationID: payload.NotificationID,
		Channel:        payload.Channel,
		Delivered:      payload.Delivered,
		Reason:         payload.Reason,
		OccurredAt:     time.Unix(payload.OccurredAt, 0),
	}); err != nil {
		slog.ErrorContext(ctx, "failed to consume delivery receipt", "msg_body", string(body), "error", err)
		return err
	}

	return nil
}
