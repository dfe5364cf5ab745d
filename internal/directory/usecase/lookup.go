package usecase

import (
	"context"

	"github.com/samber/lo"
	"github.com/tradekart/notifier/internal/directory/entity"
	"github.com/tradekart/notifier/internal/pkg/instrument"
	"github.com/tradekart/notifier/internal/pkg/valueobject"
	"go.opentelemetry.io/otel/trace"
)

// Role tags understood by role lookups. "all" is the union of the three.
const (
	RoleCustomer = "customer"
	RoleSupplier = "supplier"
	RoleAdmin    = "admin"
	RoleAll      = "all"
)

type repoDB interface {
	FindUsersByIDs(ctx context.Context, ids []int64) ([]entity.User, error)
	FindUsersByRole(ctx context.Context, role string) ([]entity.User, error)
	FindUsersByCriteria(ctx context.Context, criteria valueobject.JSONMap) ([]entity.User, error)
}

// Lookup answers "who is this" questions for the rest of the platform.
type Lookup struct {
	repoDB repoDB
	ins    instrument.Instrumentation
}

type Dependency struct {
	RepoDB     repoDB
	Instrument instrument.Instrumentation
}

func NewLookup(dep Dependency) *Lookup {
	return &Lookup{
		repoDB: dep.RepoDB,
		ins:    dep.Instrument,
	}
}

func (s *Lookup) startSpan(ctx context.Context, name string) (context.Context, trace.Span) {
	return s.ins.Tracer("directory.usecase").Start(ctx, name)
}

// ByIDs returns the active users among ids. Unknown ids are simply
// absent from the result.
func (s *Lookup) ByIDs(ctx context.Context, ids []int64) (_ []entity.User, err error) {
	ctx, span := s.startSpan(ctx, "ByIDs")
	defer span.End()

	return s.repoDB.FindUsersByIDs(ctx, lo.Uniq(ids))
}

// ByRole returns every active user holding the role. RoleAll is the
// union of customer, supplier, and admin, deduplicated by user id.
func (s *Lookup) ByRole(ctx context.Context, role string) (_ []entity.User, err error) {
	ctx, span := s.startSpan(ctx, "ByRole")
	defer span.End()

	if role != RoleAll {
		return s.repoDB.FindUsersByRole(ctx, role)
	}

	var all []entity.User
	for _, r := range []string{RoleCustomer, RoleSupplier, RoleAdmin} {
		users, err := s.repoDB.FindUsersByRole(ctx, r)
		if err != nil {
			return nil, err
		}
		all = append(all, users...)
	}

	return lo.UniqBy(all, func(u entity.User) int64 { return u.ID }), nil
}

// ByCriteria returns active users whose attributes satisfy the filter.
func (s *Lookup) ByCriteria(ctx context.Context, criteria valueobject.JSONMap) (_ []entity.User, err error) {
	ctx, span := s.startSpan(ctx, "ByCriteria")
	defer span.End()

	return s.repoDB.FindUsersByCriteria(ctx, criteria)
}
