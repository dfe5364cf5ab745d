package db

import (
	"context"
	"encoding/json"
	"time"

	"github.com/tradekart/notifier/internal/notification/entity"
)

func (s *DB) GetTemplate(ctx context.Context, id int64) (_ *entity.Template, err error) {
	ctx, span := s.startSpan(ctx, "GetTemplate")
	defer func() { s.endSpan(span, err) }()

	return s.scanTemplate(s.conn.QueryRow(ctx, `
		SELECT id, name, category, channel, subject, content, variables, defaults, version,
			usage_count, last_used_at, email_from, email_reply_to, sms_sender_id,
			push_sound, push_priority, created_at, updated_at
		FROM notification_templates WHERE id = $1`, id))
}

func (s *DB) GetTemplateByName(ctx context.Context, name string) (_ *entity.Template, err error) {
	ctx, span := s.startSpan(ctx, "GetTemplateByName")
	defer func() { s.endSpan(span, err) }()

	return s.scanTemplate(s.conn.QueryRow(ctx, `
		SELECT id, name, category, channel, subject, content, variables, defaults, version,
			usage_count, last_used_at, email_from, email_reply_to, sms_sender_id,
			push_sound, push_priority, created_at, updated_at
		FROM notification_templates WHERE name = $1`, name))
}

// BumpTemplateUsage increments the usage counter and stamps last use.
// This is the only template mutation rendering causes.
func (s *DB) BumpTemplateUsage(ctx context.Context, id int64, at time.Time) (err error) {
	ctx, span := s.startSpan(ctx, "BumpTemplateUsage")
	defer func() { s.endSpan(span, err) }()

	_, err = s.conn.Exec(ctx, `
		UPDATE notification_templates
		SET usage_count = usage_count + 1, last_used_at = $2, updated_at = $2
		WHERE id = $1`,
		id, at,
	)
	return s.mapError(err)
}

func (s *DB) scanTemplate(row rowScanner) (*entity.Template, error) {
	var (
		t        entity.Template
		channel  int16
		defaults []byte
	)

	err := row.Scan(
		&t.ID, &t.Name, &t.Category, &channel, &t.Subject, &t.Content, &t.Variables,
		&defaults, &t.Version, &t.UsageCount, &t.LastUsedAt, &t.EmailFrom, &t.EmailReplyTo,
		&t.SMSSenderID, &t.PushSound, &t.PushPriority, &t.CreatedAt, &t.UpdatedAt,
	)
	if err != nil {
		return nil, s.mapError(err)
	}

	t.Channel = entity.Channel(channel)
	if len(defaults) > 0 {
		if err := json.Unmarshal(defaults, &t.Defaults); err != nil {
			return nil, err
		}
	}

	return &t, nil
}
