package db

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/tradekart/notifier/internal/directory/entity"
	"github.com/tradekart/notifier/internal/pkg/goerror"
	"github.com/tradekart/notifier/internal/pkg/instrument"
	"github.com/tradekart/notifier/internal/pkg/valueobject"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

type DB struct {
	conn *pgxpool.Pool
	ins  instrument.Instrumentation
}

func NewDB(conn *pgxpool.Pool, ins instrument.Instrumentation) *DB {
	return &DB{
		conn: conn,
		ins:  ins,
	}
}

func (s *DB) mapError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, pgx.ErrNoRows) {
		return goerror.ErrNotFound
	}
	return err
}

func (s *DB) startSpan(ctx context.Context, name string) (context.Context, trace.Span) {
	return s.ins.Tracer("directory.outbound.db").Start(ctx, name)
}

func (s *DB) endSpan(span trace.Span, err error) {
	if err != nil && !errors.Is(err, goerror.ErrNotFound) {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	span.End()
}

const userColumns = `id, full_name, email, phone, roles`

func (s *DB) FindUsersByIDs(ctx context.Context, ids []int64) (_ []entity.User, err error) {
	ctx, span := s.startSpan(ctx, "FindUsersByIDs")
	defer func() { s.endSpan(span, err) }()

	if len(ids) == 0 {
		return nil, nil
	}

	rows, err := s.conn.Query(ctx,
		`SELECT `+userColumns+` FROM users WHERE id = ANY($1) AND active`,
		ids,
	)
	if err != nil {
		return nil, s.mapError(err)
	}
	defer rows.Close()

	return s.collectUsers(rows)
}

func (s *DB) FindUsersByRole(ctx context.Context, role string) (_ []entity.User, err error) {
	ctx, span := s.startSpan(ctx, "FindUsersByRole")
	defer func() { s.endSpan(span, err) }()

	rows, err := s.conn.Query(ctx,
		`SELECT `+userColumns+` FROM users WHERE $1 = ANY(roles) AND active`,
		role,
	)
	if err != nil {
		return nil, s.mapError(err)
	}
	defer rows.Close()

	return s.collectUsers(rows)
}

// FindUsersByCriteria matches users whose attributes contain every
// key/value pair of the criteria (jsonb containment).
func (s *DB) FindUsersByCriteria(ctx context.Context, criteria valueobject.JSONMap) (_ []entity.User, err error) {
	ctx, span := s.startSpan(ctx, "FindUsersByCriteria")
	defer func() { s.endSpan(span, err) }()

	rows, err := s.conn.Query(ctx,
		`SELECT `+userColumns+` FROM users WHERE attributes @> $1 AND active`,
		criteria,
	)
	if err != nil {
		return nil, s.mapError(err)
	}
	defer rows.Close()

	return s.collectUsers(rows)
}

func (s *DB) collectUsers(rows pgx.Rows) ([]entity.User, error) {
	var users []entity.User
	for rows.Next() {
		var (
			u     entity.User
			email *string
			phone *string
		)
		if err := rows.Scan(&u.ID, &u.FullName, &email, &phone, &u.Roles); err != nil {
			return nil, s.mapError(err)
		}
		if email != nil {
			u.Email = *email
		}
		if phone != nil {
			u.Phone = *phone
		}
		users = append(users, u)
	}

	return users, s.mapError(rows.Err())
}
