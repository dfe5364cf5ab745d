package db

import (
	"context"
	"time"

	"github.com/tradekart/notifier/internal/notification/entity"
)

// RecordEngagementOpened sets the opened flag once; later calls keep the
// first timestamp.
func (s *DB) RecordEngagementOpened(ctx context.Context, id int64, at time.Time, suspect bool) (err error) {
	ctx, span := s.startSpan(ctx, "RecordEngagementOpened")
	defer func() { s.endSpan(span, err) }()

	_, err = s.conn.Exec(ctx, `
		UPDATE notifications
		SET opened = TRUE,
			opened_at = COALESCE(opened_at, $2),
			suspect = suspect OR $3,
			updated_at = $2
		WHERE id = $1`,
		id, at, suspect,
	)
	return s.mapError(err)
}

func (s *DB) RecordEngagementClicked(ctx context.Context, id int64, at time.Time, suspect bool) (err error) {
	ctx, span := s.startSpan(ctx, "RecordEngagementClicked")
	defer func() { s.endSpan(span, err) }()

	_, err = s.conn.Exec(ctx, `
		UPDATE notifications
		SET clicked = TRUE,
			clicked_at = COALESCE(clicked_at, $2),
			suspect = suspect OR $3,
			updated_at = $2
		WHERE id = $1`,
		id, at, suspect,
	)
	return s.mapError(err)
}

func (s *DB) RecordEngagementAction(ctx context.Context, id int64, action string, at time.Time, suspect bool) (err error) {
	ctx, span := s.startSpan(ctx, "RecordEngagementAction")
	defer func() { s.endSpan(span, err) }()

	_, err = s.conn.Exec(ctx, `
		UPDATE notifications
		SET action_taken = $2,
			action_at = $3,
			suspect = suspect OR $4,
			updated_at = $3
		WHERE id = $1`,
		id, action, at, suspect,
	)
	return s.mapError(err)
}

// RecordReadDuration stores how long the recipient kept the
// notification open, in seconds.
func (s *DB) RecordReadDuration(ctx context.Context, id int64, seconds int32, at time.Time) (err error) {
	ctx, span := s.startSpan(ctx, "RecordReadDuration")
	defer func() { s.endSpan(span, err) }()

	_, err = s.conn.Exec(ctx, `
		UPDATE notifications SET read_seconds = $2, updated_at = $3 WHERE id = $1`,
		id, seconds, at,
	)
	return s.mapError(err)
}

// CreateInboxMessage writes one in-app message row; this is the in-app
// channel's delivery target.
func (s *DB) CreateInboxMessage(ctx context.Context, notificationID, userID int64, title, body, action string) (err error) {
	ctx, span := s.startSpan(ctx, "CreateInboxMessage")
	defer func() { s.endSpan(span, err) }()

	_, err = s.conn.Exec(ctx, `
		INSERT INTO notification_inbox (notification_id, user_id, title, body, action, created_at)
		VALUES ($1, $2, $3, $4, $5, now())`,
		notificationID, userID, title, body, action,
	)
	return s.mapError(err)
}

// ListInbox returns a user's in-app messages, newest first.
func (s *DB) ListInbox(ctx context.Context, userID int64, limit, offset int32) (_ []entity.InboxMessage, err error) {
	ctx, span := s.startSpan(ctx, "ListInbox")
	defer func() { s.endSpan(span, err) }()

	if limit <= 0 || limit > 100 {
		limit = 20
	}

	rows, err := s.conn.Query(ctx, `
		SELECT id, notification_id, user_id, title, body, action, read_at, created_at
		FROM notification_inbox
		WHERE user_id = $1
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3`,
		userID, limit, max(offset, 0),
	)
	if err != nil {
		return nil, s.mapError(err)
	}
	defer rows.Close()

	var items []entity.InboxMessage
	for rows.Next() {
		var m entity.InboxMessage
		if err = rows.Scan(&m.ID, &m.NotificationID, &m.UserID, &m.Title, &m.Body, &m.Action, &m.ReadAt, &m.CreatedAt); err != nil {
			return nil, s.mapError(err)
		}
		items = append(items, m)
	}

	return items, s.mapError(rows.Err())
}

// MarkInboxRead stamps a message read and reports whether it matched.
func (s *DB) MarkInboxRead(ctx context.Context, userID, messageID int64, at time.Time) (_ bool, err error) {
	ctx, span := s.startSpan(ctx, "MarkInboxRead")
	defer func() { s.endSpan(span, err) }()

	tag, err := s.conn.Exec(ctx, `
		UPDATE notification_inbox SET read_at = $3
		WHERE id = $1 AND user_id = $2 AND read_at IS NULL`,
		messageID, userID, at,
	)
	if err != nil {
		return false, s.mapError(err)
	}

	return tag.RowsAffected() > 0, nil
}
