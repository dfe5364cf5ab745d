package notification

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	dirent "github.com/tradekart/notifier/internal/directory/entity"
	"github.com/tradekart/notifier/internal/notification/inbound"
	"github.com/tradekart/notifier/internal/notification/outbound/channel"
	"github.com/tradekart/notifier/internal/notification/outbound/db"
	"github.com/tradekart/notifier/internal/notification/outbound/mq"
	"github.com/tradekart/notifier/internal/notification/scheduler"
	"github.com/tradekart/notifier/internal/notification/usecase"
	"github.com/tradekart/notifier/internal/pkg/clock"
	"github.com/tradekart/notifier/internal/pkg/config"
	"github.com/tradekart/notifier/internal/pkg/goroutine"
	"github.com/tradekart/notifier/internal/pkg/idempotency"
	"github.com/tradekart/notifier/internal/pkg/instrument"
	"github.com/tradekart/notifier/internal/pkg/jwt"
	"github.com/tradekart/notifier/internal/pkg/mail"
	"github.com/tradekart/notifier/internal/pkg/messaging"
	"github.com/tradekart/notifier/internal/pkg/pushgw"
	"github.com/tradekart/notifier/internal/pkg/router"
	"github.com/tradekart/notifier/internal/pkg/smsgw"
	"github.com/tradekart/notifier/internal/pkg/uid"
	"github.com/tradekart/notifier/internal/pkg/validator"
	"github.com/tradekart/notifier/internal/pkg/valueobject"
)

// Directory is the user lookup surface this module consumes from the
// directory module.
type Directory interface {
	ByIDs(ctx context.Context, ids []int64) ([]dirent.User, error)
	ByRole(ctx context.Context, role string) ([]dirent.User, error)
	ByCriteria(ctx context.Context, criteria valueobject.JSONMap) ([]dirent.User, error)
}

type Dependency struct {
	Ctx        context.Context
	DBConn     *pgxpool.Pool
	Redis      *redis.Client
	Messaging  messaging.Messaging
	Config     config.Config
	Instrument instrument.Instrumentation
	UID        uid.NumberID
	UUID       uid.StringID
	Clock      clock.Clocker
	Goroutine  *goroutine.Manager
	Validator  validator.Validator
	Router     *router.Router
	JWT        jwt.JWT
	Mail       mail.Mail
	SMS        smsgw.Sender
	Push       pushgw.Sender
	Directory  Directory
}

func New(dep Dependency) error {
	dbStore := db.NewDB(dep.DBConn, dep.Instrument)

	dispatchers := channel.NewRegistry(
		channel.NewEmail(dep.Mail, channel.EmailConfig{
			From:    dep.Config.GetString("modules.notification.email_from"),
			ReplyTo: dep.Config.GetString("modules.notification.email_reply_to"),
		}, dep.Instrument),
		channel.NewSMS(dep.SMS, dep.Instrument),
		channel.NewPush(dep.Push, dep.Instrument),
		channel.NewInApp(dbStore, dep.Instrument),
	)

	uc := usecase.NewNotifier(usecase.Dependency{
		RepoDB:      dbStore,
		Directory:   dep.Directory,
		Dispatchers: dispatchers,
		RepoMQ:      mq.NewMessaging(dep.Messaging, dep.Instrument),
		Config:      dep.Config,
		UID:         dep.UID,
		Clock:       dep.Clock,
		Validator:   dep.Validator,
		Instrument:  dep.Instrument,
	})

	inbound.RegisterHTTPEndpoint(dep.Router, uc)

	if dep.Ctx != nil {
		inbound.RegisterMQConsumer(dep.Ctx, dep.Config, dep.Goroutine, dep.Messaging, dep.UUID, uc, dep.Instrument)

		sched := scheduler.New(scheduler.Dependency{
			Usecase:     uc,
			Config:      dep.Config,
			Idempotency: idempotency.New(dep.Redis),
		})
		sched.Start(dep.Ctx, dep.Goroutine)
	}

	return nil
}
