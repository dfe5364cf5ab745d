package usecase

import (
	"context"
	"time"

	dirent "github.com/tradekart/notifier/internal/directory/entity"
	"github.com/tradekart/notifier/internal/notification/entity"
	"github.com/tradekart/notifier/internal/notification/outbound/channel"
	"github.com/tradekart/notifier/internal/notification/outbound/db"
	"github.com/tradekart/notifier/internal/pkg/clock"
	"github.com/tradekart/notifier/internal/pkg/config"
	"github.com/tradekart/notifier/internal/pkg/instrument"
	"github.com/tradekart/notifier/internal/pkg/uid"
	"github.com/tradekart/notifier/internal/pkg/validator"
	"github.com/tradekart/notifier/internal/pkg/valueobject"
	"go.opentelemetry.io/otel/trace"
)

type repoDB interface {
	CreateNotification(ctx context.Context, n entity.Notification) error
	GetNotification(ctx context.Context, id int64) (*entity.Notification, error)
	SetStatus(ctx context.Context, id int64, to entity.Status) error
	SetStatusIf(ctx context.Context, id int64, to entity.Status, from ...entity.Status) (bool, error)
	ListNotifications(ctx context.Context, f entity.ListFilter) ([]entity.Notification, error)
	SetArchived(ctx context.Context, id int64, archived bool) error

	EnsureDeliveries(ctx context.Context, notificationID int64, channels []entity.Channel, ids []int64, now time.Time) error
	ListDeliveries(ctx context.Context, notificationID int64) ([]entity.ChannelDelivery, error)
	RecordDeliverySuccess(ctx context.Context, notificationID int64, ch entity.Channel, state entity.DeliveryState, at time.Time) error
	RecordDeliveryFailure(ctx context.Context, notificationID int64, ch entity.Channel, errMsg string, at time.Time, nextAttempt *time.Time) (int32, error)
	PromoteDeliveryState(ctx context.Context, notificationID int64, ch entity.Channel, to entity.DeliveryState, from ...entity.DeliveryState) (bool, error)
	ListDueRetries(ctx context.Context, now time.Time, ceiling int32, limit int32) ([]db.DueRetry, error)

	ClaimDueScheduled(ctx context.Context, now time.Time, limit int32) ([]int64, error)
	ReadmitStuckProcessing(ctx context.Context, cutoff time.Time) (int64, error)
	ExpireOldNotifications(ctx context.Context, cutoff time.Time) (int64, error)

	GetTemplate(ctx context.Context, id int64) (*entity.Template, error)
	GetTemplateByName(ctx context.Context, name string) (*entity.Template, error)
	BumpTemplateUsage(ctx context.Context, id int64, at time.Time) error

	RegisterEndpoint(ctx context.Context, e entity.Endpoint) error
	UnregisterEndpoint(ctx context.Context, userID int64, token string) error
	UnregisterAllEndpoints(ctx context.Context, userID int64) error
	InvalidateEndpoints(ctx context.Context, tokens []string) (int64, error)
	ListEndpointsByUsers(ctx context.Context, userIDs []int64) (map[int64][]string, error)
	DeleteStaleEndpoints(ctx context.Context, cutoff time.Time) (int64, error)

	RecordEngagementOpened(ctx context.Context, id int64, at time.Time, suspect bool) error
	RecordEngagementClicked(ctx context.Context, id int64, at time.Time, suspect bool) error
	RecordEngagementAction(ctx context.Context, id int64, action string, at time.Time, suspect bool) error
	RecordReadDuration(ctx context.Context, id int64, seconds int32, at time.Time) error
	ListInbox(ctx context.Context, userID int64, limit, offset int32) ([]entity.InboxMessage, error)
	MarkInboxRead(ctx context.Context, userID, messageID int64, at time.Time) (bool, error)

	GetStats(ctx context.Context, from, to time.Time) (*entity.Stats, error)
}

type repoDirectory interface {
	ByIDs(ctx context.Context, ids []int64) ([]dirent.User, error)
	ByRole(ctx context.Context, role string) ([]dirent.User, error)
	ByCriteria(ctx context.Context, criteria valueobject.JSONMap) ([]dirent.User, error)
}

// EngagementPublishedEvent mirrors an engagement write onto the event
// stream for downstream analytics.
type EngagementPublishedEvent struct {
	NotificationID int64
	UserID         int64
	Event          string
	Channel        string
	OccurredAt     time.Time
}

type repoMQ interface {
	PublishEngagement(ctx context.Context, msg EngagementPublishedEvent) error
}

type Usecase struct {
	repoDB      repoDB
	directory   repoDirectory
	dispatchers *channel.Registry
	repoMQ      repoMQ
	cfg         config.Config
	uid         uid.NumberID
	clock       clock.Clocker
	validator   validator.Validator
	ins         instrument.Instrumentation
}

type Dependency struct {
	RepoDB      repoDB
	Directory   repoDirectory
	Dispatchers *channel.Registry
	RepoMQ      repoMQ
	Config      config.Config
	UID         uid.NumberID
	Clock       clock.Clocker
	Validator   validator.Validator
	Instrument  instrument.Instrumentation
}

func NewNotifier(dep Dependency) *Usecase {
	return &Usecase{
		repoDB:      dep.RepoDB,
		directory:   dep.Directory,
		dispatchers: dep.Dispatchers,
		repoMQ:      dep.RepoMQ,
		cfg:         dep.Config,
		uid:         dep.UID,
		clock:       dep.Clock,
		validator:   dep.Validator,
		ins:         dep.Instrument,
	}
}

func (s *Usecase) startSpan(ctx context.Context, name string) (context.Context, trace.Span) {
	return s.ins.Tracer("notification.usecase").Start(ctx, name)
}

func (s *Usecase) retryCeiling() int32 {
	if v := s.cfg.GetInt32("modules.notification.retry_ceiling"); v > 0 {
		return v
	}
	return 5
}

func (s *Usecase) sweepBatch() int32 {
	if v := s.cfg.GetInt32("modules.notification.sweep_batch"); v > 0 {
		return v
	}
	return 100
}

// backoffDelay returns the wait before attempt retryCount+1. Exponential
// from a 30s base, capped at one hour.
func (s *Usecase) backoffDelay(retryCount int32) time.Duration {
	base := s.cfg.GetSecond("modules.notification.retry_base_seconds")
	if base <= 0 {
		base = 30 * time.Second
	}
	ceil := s.cfg.GetMinute("modules.notification.retry_cap_minutes")
	if ceil <= 0 {
		ceil = time.Hour
	}

	delay := base
	for i := int32(1); i < retryCount; i++ {
		delay *= 2
		if delay >= ceil {
			return ceil
		}
	}
	if delay > ceil {
		return ceil
	}
	return delay
}
