package app

import (
	"log/slog"
	"os"

	"github.com/tradekart/notifier/internal/directory"
	"github.com/tradekart/notifier/internal/notification"
)

func (a *App) initModules() {
	lookup := directory.New(directory.Dependency{
		DBConn:     a.dbConn,
		Instrument: a.ins,
	})

	if a.config.GetBool("modules.notification.enabled") {
		if err := notification.New(notification.Dependency{
			Ctx:        a.ctx,
			DBConn:     a.dbConn,
			Redis:      a.cacheConn,
			Messaging:  a.messaging,
			Config:     a.config,
			Instrument: a.ins,
			UID:        a.uid,
			UUID:       a.uuid,
			Clock:      a.clock,
			Goroutine:  a.goroutine,
			Validator:  a.validator,
			Router:     a.router,
			JWT:        a.jwt,
			Mail:       a.mail,
			SMS:        a.smsGW,
			Push:       a.pushGW,
			Directory:  lookup,
		}); err != nil {
			slog.Error("failed to init module notification", "error", err)
			os.Exit(1)
		}
	}
}
