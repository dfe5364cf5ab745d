package app

import (
	"context"
	"net/http"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/tradekart/notifier/internal/pkg/clock"
	"github.com/tradekart/notifier/internal/pkg/config"
	"github.com/tradekart/notifier/internal/pkg/goroutine"
	"github.com/tradekart/notifier/internal/pkg/instrument"
	"github.com/tradekart/notifier/internal/pkg/jwt"
	"github.com/tradekart/notifier/internal/pkg/mail"
	"github.com/tradekart/notifier/internal/pkg/messaging"
	"github.com/tradekart/notifier/internal/pkg/pushgw"
	"github.com/tradekart/notifier/internal/pkg/router"
	"github.com/tradekart/notifier/internal/pkg/smsgw"
	"github.com/tradekart/notifier/internal/pkg/uid"
	"github.com/tradekart/notifier/internal/pkg/validator"
)

// App wires dependencies and manages service lifecycle.
type App struct {
	ctx    context.Context
	cancel context.CancelFunc

	// configuration
	config config.Config
	ins    instrument.Instrumentation

	// libraries
	goroutine *goroutine.Manager
	validator validator.Validator
	clock     clock.Clocker
	uid       uid.NumberID
	uuid      uid.StringID
	jwt       jwt.JWT

	// resources
	dbConn    *pgxpool.Pool
	cacheConn *redis.Client
	mail      mail.Mail
	messaging messaging.Messaging
	smsGW     smsgw.Sender
	pushGW    pushgw.Sender

	// server
	router     *router.Router
	httpServer *http.Server

	//
	closers []struct {
		name string
		fn   func(context.Context) error
	}
}

// New initializes the application with default wiring and returns an App instance.
func New() *App {
	ctx, cancel := context.WithCancel(context.Background())
	app := &App{
		ctx:    ctx,
		cancel: cancel,
	}

	app.initConfig()
	app.initInstrument()
	app.initLibraries()
	app.initJWT()
	app.initDatabase()
	app.initCache()
	app.initMail()
	app.initGateways()
	app.initMessaging()
	app.initHTTPServer()
	app.initModules()
	app.initClosers()

	return app
}
