package db

import (
	"context"
	"time"

	"github.com/tradekart/notifier/internal/notification/entity"
)

// EnsureDeliveries inserts a pending state row for every channel that
// does not have one yet. ids supplies one pre-generated id per channel;
// existing rows keep their state untouched.
func (s *DB) EnsureDeliveries(ctx context.Context, notificationID int64, channels []entity.Channel, ids []int64, now time.Time) (err error) {
	ctx, span := s.startSpan(ctx, "EnsureDeliveries")
	defer func() { s.endSpan(span, err) }()

	for i, ch := range channels {
		_, err = s.conn.Exec(ctx, `
			INSERT INTO notification_deliveries (id, notification_id, channel, state, retry_count, updated_at)
			VALUES ($1, $2, $3, $4, 0, $5)
			ON CONFLICT (notification_id, channel) DO NOTHING`,
			ids[i], notificationID, int16(ch), int16(entity.DeliveryStatePending), now,
		)
		if err != nil {
			return s.mapError(err)
		}
	}

	return nil
}

func (s *DB) ListDeliveries(ctx context.Context, notificationID int64) (_ []entity.ChannelDelivery, err error) {
	ctx, span := s.startSpan(ctx, "ListDeliveries")
	defer func() { s.endSpan(span, err) }()

	rows, err := s.conn.Query(ctx, `
		SELECT id, notification_id, channel, state, error, retry_count, last_attempt, next_attempt, updated_at
		FROM notification_deliveries
		WHERE notification_id = $1
		ORDER BY channel`,
		notificationID,
	)
	if err != nil {
		return nil, s.mapError(err)
	}
	defer rows.Close()

	var items []entity.ChannelDelivery
	for rows.Next() {
		var (
			d       entity.ChannelDelivery
			channel int16
			state   int16
			errMsg  *string
		)
		if err = rows.Scan(&d.ID, &d.NotificationID, &channel, &state, &errMsg, &d.RetryCount, &d.LastAttempt, &d.NextAttempt, &d.UpdatedAt); err != nil {
			return nil, s.mapError(err)
		}
		d.Channel = entity.Channel(channel)
		d.State = entity.DeliveryState(state)
		if errMsg != nil {
			d.Error = *errMsg
		}
		items = append(items, d)
	}

	return items, s.mapError(rows.Err())
}

// RecordDeliverySuccess moves one channel row to sent or delivered.
// The update touches only this channel's row, so concurrent completions
// of other channels cannot clobber it.
func (s *DB) RecordDeliverySuccess(ctx context.Context, notificationID int64, ch entity.Channel, state entity.DeliveryState, at time.Time) (err error) {
	ctx, span := s.startSpan(ctx, "RecordDeliverySuccess")
	defer func() { s.endSpan(span, err) }()

	_, err = s.conn.Exec(ctx, `
		UPDATE notification_deliveries
		SET state = $3, error = NULL, last_attempt = $4, next_attempt = NULL, updated_at = $4
		WHERE notification_id = $1 AND channel = $2`,
		notificationID, int16(ch), int16(state), at,
	)
	return s.mapError(err)
}

// RecordDeliveryFailure marks one channel row failed, increments its
// retry counter in place and schedules the next attempt. retry_count is
// bumped server-side so it never decreases under concurrency.
func (s *DB) RecordDeliveryFailure(ctx context.Context, notificationID int64, ch entity.Channel, errMsg string, at time.Time, nextAttempt *time.Time) (_ int32, err error) {
	ctx, span := s.startSpan(ctx, "RecordDeliveryFailure")
	defer func() { s.endSpan(span, err) }()

	var retryCount int32
	err = s.conn.QueryRow(ctx, `
		UPDATE notification_deliveries
		SET state = $3, error = $4, retry_count = retry_count + 1, last_attempt = $5, next_attempt = $6, updated_at = $5
		WHERE notification_id = $1 AND channel = $2
		RETURNING retry_count`,
		notificationID, int16(ch), int16(entity.DeliveryStateFailed), errMsg, at, nextAttempt,
	).Scan(&retryCount)
	if err != nil {
		return 0, s.mapError(err)
	}

	return retryCount, nil
}

// PromoteDeliveryState advances a channel row to a later state only when
// it currently sits in one of the from states; out-of-order receipts and
// engagement events are reported as not promoted.
func (s *DB) PromoteDeliveryState(ctx context.Context, notificationID int64, ch entity.Channel, to entity.DeliveryState, from ...entity.DeliveryState) (_ bool, err error) {
	ctx, span := s.startSpan(ctx, "PromoteDeliveryState")
	defer func() { s.endSpan(span, err) }()

	allowed := make([]int16, 0, len(from))
	for _, f := range from {
		allowed = append(allowed, int16(f))
	}

	tag, err := s.conn.Exec(ctx, `
		UPDATE notification_deliveries
		SET state = $3, updated_at = now()
		WHERE notification_id = $1 AND channel = $2 AND state = ANY($4)`,
		notificationID, int16(ch), int16(to), allowed,
	)
	if err != nil {
		return false, s.mapError(err)
	}

	return tag.RowsAffected() > 0, nil
}

// DueRetry is one failed channel whose next attempt has come due.
type DueRetry struct {
	NotificationID int64
	Channel        entity.Channel
	RetryCount     int32
}

// ListDueRetries returns failed channel rows with next_attempt due and
// retries left under the ceiling.
func (s *DB) ListDueRetries(ctx context.Context, now time.Time, ceiling int32, limit int32) (_ []DueRetry, err error) {
	ctx, span := s.startSpan(ctx, "ListDueRetries")
	defer func() { s.endSpan(span, err) }()

	rows, err := s.conn.Query(ctx, `
		SELECT notification_id, channel, retry_count
		FROM notification_deliveries
		WHERE state = $1 AND next_attempt IS NOT NULL AND next_attempt <= $2 AND retry_count < $3
		ORDER BY next_attempt
		LIMIT $4`,
		int16(entity.DeliveryStateFailed), now, ceiling, limit,
	)
	if err != nil {
		return nil, s.mapError(err)
	}
	defer rows.Close()

	var items []DueRetry
	for rows.Next() {
		var (
			item    DueRetry
			channel int16
		)
		if err = rows.Scan(&item.NotificationID, &channel, &item.RetryCount); err != nil {
			return nil, s.mapError(err)
		}
		item.Channel = entity.Channel(channel)
		items = append(items, item)
	}

	return items, s.mapError(rows.Err())
}
