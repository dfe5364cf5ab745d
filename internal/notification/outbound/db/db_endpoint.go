package db

import (
	"context"
	"time"

	"github.com/tradekart/notifier/internal/notification/entity"
)

// RegisterEndpoint adds a push endpoint for a user. Re-registering the
// same token refreshes its metadata instead of duplicating it.
func (s *DB) RegisterEndpoint(ctx context.Context, e entity.Endpoint) (err error) {
	ctx, span := s.startSpan(ctx, "RegisterEndpoint")
	defer func() { s.endSpan(span, err) }()

	_, err = s.conn.Exec(ctx, `
		INSERT INTO notification_endpoints (id, user_id, token, platform, device_id, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (user_id, token)
		DO UPDATE SET platform = EXCLUDED.platform, device_id = EXCLUDED.device_id, updated_at = EXCLUDED.updated_at`,
		e.ID, e.UserID, e.Token, e.Platform, e.DeviceID, e.UpdatedAt,
	)
	return s.mapError(err)
}

// UnregisterEndpoint removes one endpoint. Removing an absent endpoint
// is not an error.
func (s *DB) UnregisterEndpoint(ctx context.Context, userID int64, token string) (err error) {
	ctx, span := s.startSpan(ctx, "UnregisterEndpoint")
	defer func() { s.endSpan(span, err) }()

	_, err = s.conn.Exec(ctx,
		`DELETE FROM notification_endpoints WHERE user_id = $1 AND token = $2`,
		userID, token,
	)
	return s.mapError(err)
}

// UnregisterAllEndpoints removes every endpoint of a user.
func (s *DB) UnregisterAllEndpoints(ctx context.Context, userID int64) (err error) {
	ctx, span := s.startSpan(ctx, "UnregisterAllEndpoints")
	defer func() { s.endSpan(span, err) }()

	_, err = s.conn.Exec(ctx, `DELETE FROM notification_endpoints WHERE user_id = $1`, userID)
	return s.mapError(err)
}

// InvalidateEndpoints bulk-removes tokens a gateway reported dead,
// leaving every other endpoint untouched.
func (s *DB) InvalidateEndpoints(ctx context.Context, tokens []string) (_ int64, err error) {
	ctx, span := s.startSpan(ctx, "InvalidateEndpoints")
	defer func() { s.endSpan(span, err) }()

	if len(tokens) == 0 {
		return 0, nil
	}

	return s.execRowCount(ctx,
		`DELETE FROM notification_endpoints WHERE token = ANY($1)`,
		tokens,
	)
}

// ListEndpointsByUsers returns push tokens grouped by user id.
func (s *DB) ListEndpointsByUsers(ctx context.Context, userIDs []int64) (_ map[int64][]string, err error) {
	ctx, span := s.startSpan(ctx, "ListEndpointsByUsers")
	defer func() { s.endSpan(span, err) }()

	if len(userIDs) == 0 {
		return map[int64][]string{}, nil
	}

	rows, err := s.conn.Query(ctx, `
		SELECT user_id, token
		FROM notification_endpoints
		WHERE user_id = ANY($1)
		ORDER BY user_id, updated_at`,
		userIDs,
	)
	if err != nil {
		return nil, s.mapError(err)
	}
	defer rows.Close()

	out := make(map[int64][]string)
	for rows.Next() {
		var (
			userID int64
			token  string
		)
		if err = rows.Scan(&userID, &token); err != nil {
			return nil, s.mapError(err)
		}
		out[userID] = append(out[userID], token)
	}

	return out, s.mapError(rows.Err())
}

// DeleteStaleEndpoints drops endpoints that have not been refreshed
// since the cutoff, used by the on-demand cleanup.
func (s *DB) DeleteStaleEndpoints(ctx context.Context, cutoff time.Time) (_ int64, err error) {
	ctx, span := s.startSpan(ctx, "DeleteStaleEndpoints")
	defer func() { s.endSpan(span, err) }()

	return s.execRowCount(ctx,
		`DELETE FROM notification_endpoints WHERE updated_at < $1`,
		cutoff,
	)
}
