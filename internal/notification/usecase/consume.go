package usecase

import (
	"context"
	"log/slog"
	"time"

	"github.com/tradekart/notifier/internal/notification/entity"
	"github.com/tradekart/notifier/internal/pkg/goerror"
)

type OrderStatusChangedInput struct {
	OrderID    int64  `validate:"required,gt=0"`
	BuyerID    int64  `validate:"required,gt=0"`
	SupplierID int64  `validate:"omitempty,gt=0"`
	OrderRef   string `validate:"required,max=100"`
	NewStatus  string `validate:"required,max=50"`
}

// NotifyOrderStatusChanged turns an order event into a notification for
// the buyer, using the order_status_changed template when one exists.
func (s *Usecase) NotifyOrderStatusChanged(ctx context.Context, in OrderStatusChangedInput) error {
	ctx, span := s.startSpan(ctx, "NotifyOrderStatusChanged")
	defer span.End()

	if err := s.validator.Validate(in); err != nil {
		return goerror.NewInvalidInput(err)
	}

	_, err := s.Create(ctx, CreateInput{
		Title:         "Order " + in.OrderRef + " " + in.NewStatus,
		Body:          "Your order " + in.OrderRef + " is now " + in.NewStatus + ".",
		Type:          entity.TypeOrderStatus.String(),
		Channels:      s.eventChannels("order_status_changed"),
		TemplateName:  "order_status_changed",
		TargetUserIDs: []int64{in.BuyerID},
		TemplateVariables: map[string]string{
			"order_ref": in.OrderRef,
			"status":    in.NewStatus,
		},
	})
	if err != nil {
		slog.ErrorContext(ctx, "failed to create order status notification",
			"order_id", in.OrderID, "buyer_id", in.BuyerID, "error", err)
		return err
	}

	return nil
}

type RFQResponseCreatedInput struct {
	RFQID        int64  `validate:"required,gt=0"`
	ResponseID   int64  `validate:"required,gt=0"`
	RequesterID  int64  `validate:"required,gt=0"`
	SupplierName string `validate:"required,max=200"`
	ProductName  string `validate:"max=200"`
}

// NotifyRFQResponseCreated notifies a requester that a supplier answered
// their request for quotation.
func (s *Usecase) NotifyRFQResponseCreated(ctx context.Context, in RFQResponseCreatedInput) error {
	ctx, span := s.startSpan(ctx, "NotifyRFQResponseCreated")
	defer span.End()

	if err := s.validator.Validate(in); err != nil {
		return goerror.NewInvalidInput(err)
	}

	_, err := s.Create(ctx, CreateInput{
		Title:         "New quote from " + in.SupplierName,
		Body:          in.SupplierName + " responded to your request for " + in.ProductName + ".",
		Type:          entity.TypeRFQResponse.String(),
		Channels:      s.eventChannels("rfq_response_created"),
		TemplateName:  "rfq_response_created",
		TargetUserIDs: []int64{in.RequesterID},
		TemplateVariables: map[string]string{
			"supplier_name": in.SupplierName,
			"product_name":  in.ProductName,
		},
	})
	if err != nil {
		slog.ErrorContext(ctx, "failed to create rfq response notification",
			"rfq_id", in.RFQID, "requester_id", in.RequesterID, "error", err)
		return err
	}

	return nil
}

type DeliveryReceiptInput struct {
	NotificationID int64  `validate:"required,gt=0"`
	Channel        string `validate:"required,oneof=email sms push in_app"`
	Delivered      bool
	Reason         string `validate:"max=500"`
	OccurredAt     time.Time
}

// ApplyDeliveryReceipt folds a gateway receipt into the channel state.
// Confirmations promote sent to delivered; rejections after acceptance
// mark the channel failed. Receipts for already promoted states are
// ignored.
func (s *Usecase) ApplyDeliveryReceipt(ctx context.Context, in DeliveryReceiptInput) error {
	ctx, span := s.startSpan(ctx, "ApplyDeliveryReceipt")
	defer span.End()

	if err := s.validator.Validate(in); err != nil {
		return goerror.NewInvalidInput(err)
	}

	ch := entity.ChannelFromString(in.Channel)

	if in.Delivered {
		ok, err := s.repoDB.PromoteDeliveryState(ctx, in.NotificationID, ch,
			entity.DeliveryStateDelivered, entity.DeliveryStateSent)
		if err != nil {
			slog.ErrorContext(ctx, "failed to repo promote delivery state",
				"id", in.NotificationID, "channel", in.Channel, "error", err)
			return goerror.NewServer(err)
		}
		if ok {
			s.recomputeStatus(ctx, in.NotificationID)
		}
		return nil
	}

	n, err := s.repoDB.GetNotification(ctx, in.NotificationID)
	if err != nil {
		slog.ErrorContext(ctx, "failed to repo get notification", "id", in.NotificationID, "error", err)
		return goerror.NewServer(err)
	}

	fb := s.recordFailure(ctx, n, ch, "gateway receipt: "+in.Reason)
	if fb != entity.ChannelUnknown {
		slog.InfoContext(ctx, "escalating to fallback channel after receipt failure",
			"id", in.NotificationID, "channel", fb.String())
		ids := []int64{s.uid.Generate()}
		if err := s.repoDB.EnsureDeliveries(ctx, in.NotificationID, []entity.Channel{fb}, ids, s.clock.Now()); err != nil {
			slog.ErrorContext(ctx, "failed to repo ensure fallback delivery",
				"id", in.NotificationID, "channel", fb.String(), "error", err)
		} else if err := s.redispatchChannel(ctx, in.NotificationID, fb); err != nil {
			slog.ErrorContext(ctx, "failed to dispatch fallback channel",
				"id", in.NotificationID, "channel", fb.String(), "error", err)
		}
	}
	s.recomputeStatus(ctx, in.NotificationID)

	return nil
}

// eventChannels returns the configured channel set for an event-driven
// notification, defaulting to push plus in-app.
func (s *Usecase) eventChannels(eventName string) []string {
	if chs := s.cfg.GetArray("modules.notification.event_channels." + eventName); len(chs) > 0 {
		return chs
	}
	return []string{"push", "in_app"}
}
