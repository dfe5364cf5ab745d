// Package directory exposes the platform user directory at the boundary
// the notifier consumes: lookup by ids, role, or attribute criteria.
package directory

import (
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/tradekart/notifier/internal/directory/outbound/db"
	"github.com/tradekart/notifier/internal/directory/usecase"
	"github.com/tradekart/notifier/internal/pkg/instrument"
)

type Dependency struct {
	DBConn     *pgxpool.Pool
	Instrument instrument.Instrumentation
}

func New(dep Dependency) *usecase.Lookup {
	return usecase.NewLookup(usecase.Dependency{
		RepoDB:     db.NewDB(dep.DBConn, dep.Instrument),
		Instrument: dep.Instrument,
	})
}
