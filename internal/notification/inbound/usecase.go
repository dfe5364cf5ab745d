package inbound

import (
	"context"

	"github.com/tradekart/notifier/internal/notification/entity"
	"github.com/tradekart/notifier/internal/notification/usecase"
)

type ucConsumer interface {
	NotifyOrderStatusChanged(ctx context.Context, in usecase.OrderStatusChangedInput) error
	NotifyRFQResponseCreated(ctx context.Context, in usecase.RFQResponseCreatedInput) error
	ApplyDeliveryReceipt(ctx context.Context, in usecase.DeliveryReceiptInput) error
}

type ucAdmin interface {
	Stats(ctx context.Context, in usecase.StatsInput) (*entity.Stats, error)
	RunSweeps(ctx context.Context) (*usecase.SweepReport, error)
	CleanupEndpoints(ctx context.Context, in usecase.CleanupEndpointsInput) (int64, error)
	Archive(ctx context.Context, in usecase.ArchiveInput) error
}

type uc interface {
	ucConsumer
	ucAdmin

	Create(ctx context.Context, in usecase.CreateInput) (*usecase.CreateOutput, error)
	Send(ctx context.Context, in usecase.SendInput) (*entity.Notification, error)
	Get(ctx context.Context, in usecase.GetInput) (*entity.Notification, error)
	List(ctx context.Context, in usecase.ListInput) ([]entity.Notification, error)
	Cancel(ctx context.Context, in usecase.CancelInput) error
	RecordEngagement(ctx context.Context, in usecase.EngagementInput) error
	RegisterDevice(ctx context.Context, in usecase.RegisterDeviceInput) error
	UnregisterDevice(ctx context.Context, in usecase.UnregisterDeviceInput) error
	ListInbox(ctx context.Context, in usecase.ListInboxInput) ([]entity.InboxMessage, error)
	MarkInboxRead(ctx context.Context, in usecase.MarkInboxReadInput) error
}
