package db

import (
	"context"
	"time"

	"github.com/tradekart/notifier/internal/notification/entity"
)

// ClaimDueScheduled atomically claims scheduled notifications whose time
// has arrived, transitioning them to processing. SKIP LOCKED keeps
// concurrent sweepers from claiming the same rows; a claimed id is
// dispatched by exactly one sweeper.
func (s *DB) ClaimDueScheduled(ctx context.Context, now time.Time, limit int32) (_ []int64, err error) {
	ctx, span := s.startSpan(ctx, "ClaimDueScheduled")
	defer func() { s.endSpan(span, err) }()

	rows, err := s.conn.Query(ctx, `
		UPDATE notifications
		SET status = $1, updated_at = $2
		WHERE id IN (
			SELECT id FROM notifications
			WHERE status = $3 AND scheduled_time IS NOT NULL AND scheduled_time <= $2
			ORDER BY scheduled_time
			LIMIT $4
			FOR UPDATE SKIP LOCKED
		)
		RETURNING id`,
		int16(entity.StatusProcessing), now, int16(entity.StatusScheduled), limit,
	)
	if err != nil {
		return nil, s.mapError(err)
	}
	defer rows.Close()

	var ids []int64
	for rows.Next() {
		var id int64
		if err = rows.Scan(&id); err != nil {
			return nil, s.mapError(err)
		}
		ids = append(ids, id)
	}

	return ids, s.mapError(rows.Err())
}

// ReadmitStuckProcessing returns to scheduled any job that has sat in
// processing past the cutoff, usually after a crash mid-dispatch. The
// next scheduled sweep picks it up again (at-least-once semantics).
func (s *DB) ReadmitStuckProcessing(ctx context.Context, cutoff time.Time) (_ int64, err error) {
	ctx, span := s.startSpan(ctx, "ReadmitStuckProcessing")
	defer func() { s.endSpan(span, err) }()

	return s.execRowCount(ctx, `
		UPDATE notifications
		SET status = $1, scheduled_time = COALESCE(scheduled_time, updated_at), updated_at = now()
		WHERE status = $2 AND updated_at < $3`,
		int16(entity.StatusScheduled), int16(entity.StatusProcessing), cutoff,
	)
}

// ExpireOldNotifications marks terminal records older than the cutoff
// expired for the retention sweep.
func (s *DB) ExpireOldNotifications(ctx context.Context, cutoff time.Time) (_ int64, err error) {
	ctx, span := s.startSpan(ctx, "ExpireOldNotifications")
	defer func() { s.endSpan(span, err) }()

	terminal := []int16{
		int16(entity.StatusSent), int16(entity.StatusPartiallySent),
		int16(entity.StatusFailed), int16(entity.StatusDelivered),
		int16(entity.StatusCancelled),
	}

	return s.execRowCount(ctx, `
		UPDATE notifications
		SET status = $1, updated_at = now()
		WHERE status = ANY($2) AND updated_at < $3`,
		int16(entity.StatusExpired), terminal, cutoff,
	)
}
