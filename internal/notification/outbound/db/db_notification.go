package db

import (
	"context"
	"fmt"
	"strings"

	"github.com/tradekart/notifier/internal/notification/entity"
	"github.com/tradekart/notifier/internal/pkg/valueobject"
)

const notificationColumns = `id, title, body, type, channels, template_id, template_variables,
	overrides, target_user_ids, target_role, target_criteria, scheduled_time, time_zone,
	delivery_window, priority, routing_rules, fallback_channels, require_confirmation, status,
	opened, opened_at, clicked, clicked_at, action_taken, action_at, read_seconds, suspect,
	created_by, sender_id, archived, tags, notes, created_at, updated_at`

func (s *DB) CreateNotification(ctx context.Context, n entity.Notification) (err error) {
	ctx, span := s.startSpan(ctx, "CreateNotification")
	defer func() { s.endSpan(span, err) }()

	_, err = s.conn.Exec(ctx, `
		INSERT INTO notifications (
			id, title, body, type, channels, template_id, template_variables, overrides,
			target_user_ids, target_role, target_criteria, scheduled_time, time_zone,
			delivery_window, priority, routing_rules, fallback_channels, require_confirmation,
			status, created_by, sender_id, archived, tags, notes, created_at, updated_at
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7, $8,
			$9, $10, $11, $12, $13,
			$14, $15, $16, $17, $18,
			$19, $20, $21, $22, $23, $24, $25, $25
		)`,
		n.ID, n.Title, n.Body, int16(n.Type), channelsToInt16(n.Channels), n.TemplateID,
		n.TemplateVariables, overridesToJSON(n.Overrides), n.TargetUserIDs, int16(n.TargetRole),
		n.TargetCriteria, n.ScheduledTime, n.TimeZone, n.DeliveryWindow, int16(n.Priority),
		n.RoutingRules, channelsToInt16(n.FallbackChannels), n.RequireConfirmation,
		int16(n.Status), n.CreatedBy, n.SenderID, n.Archived, n.Tags, n.Notes, n.CreatedAt,
	)
	return s.mapError(err)
}

func (s *DB) GetNotification(ctx context.Context, id int64) (_ *entity.Notification, err error) {
	ctx, span := s.startSpan(ctx, "GetNotification")
	defer func() { s.endSpan(span, err) }()

	row := s.conn.QueryRow(ctx, `SELECT `+notificationColumns+` FROM notifications WHERE id = $1`, id)
	n, err := scanNotification(row)
	if err != nil {
		return nil, s.mapError(err)
	}

	deliveries, err := s.ListDeliveries(ctx, id)
	if err != nil {
		return nil, err
	}
	n.Deliveries = deliveries

	return n, nil
}

// SetStatusIf transitions the overall status only when the current
// status is one of from, reporting whether the transition happened. This
// is the atomic claim used for dispatch and cancellation.
func (s *DB) SetStatusIf(ctx context.Context, id int64, to entity.Status, from ...entity.Status) (_ bool, err error) {
	ctx, span := s.startSpan(ctx, "SetStatusIf")
	defer func() { s.endSpan(span, err) }()

	allowed := make([]int16, 0, len(from))
	for _, f := range from {
		allowed = append(allowed, int16(f))
	}

	tag, err := s.conn.Exec(ctx, `
		UPDATE notifications SET status = $2, updated_at = now()
		WHERE id = $1 AND status = ANY($3)`,
		id, int16(to), allowed,
	)
	if err != nil {
		return false, s.mapError(err)
	}

	return tag.RowsAffected() > 0, nil
}

func (s *DB) SetStatus(ctx context.Context, id int64, to entity.Status) (err error) {
	ctx, span := s.startSpan(ctx, "SetStatus")
	defer func() { s.endSpan(span, err) }()

	_, err = s.conn.Exec(ctx,
		`UPDATE notifications SET status = $2, updated_at = now() WHERE id = $1`,
		id, int16(to),
	)
	return s.mapError(err)
}

func (s *DB) ListNotifications(ctx context.Context, f entity.ListFilter) (_ []entity.Notification, err error) {
	ctx, span := s.startSpan(ctx, "ListNotifications")
	defer func() { s.endSpan(span, err) }()

	var (
		where []string
		args  []any
	)
	arg := func(v any) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}

	if f.Status != entity.StatusUnknown {
		where = append(where, "status = "+arg(int16(f.Status)))
	}
	if f.Type != entity.TypeUnknown {
		where = append(where, "type = "+arg(int16(f.Type)))
	}
	if f.Channel != entity.ChannelUnknown {
		where = append(where, arg(int16(f.Channel))+" = ANY(channels)")
	}
	if f.Priority != entity.PriorityUnknown {
		where = append(where, "priority = "+arg(int16(f.Priority)))
	}
	if f.From != nil {
		where = append(where, "created_at >= "+arg(*f.From))
	}
	if f.To != nil {
		where = append(where, "created_at <= "+arg(*f.To))
	}
	if f.Search != "" {
		p := arg("%" + f.Search + "%")
		where = append(where, "(title ILIKE "+p+" OR body ILIKE "+p+")")
	}
	if f.Archived != nil {
		where = append(where, "archived = "+arg(*f.Archived))
	}

	query := `SELECT ` + notificationColumns + ` FROM notifications`
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += " ORDER BY created_at DESC"

	limit := f.Limit
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	query += " LIMIT " + arg(limit) + " OFFSET " + arg(max(f.Offset, 0))

	rows, err := s.conn.Query(ctx, query, args...)
	if err != nil {
		return nil, s.mapError(err)
	}
	defer rows.Close()

	var items []entity.Notification
	for rows.Next() {
		n, sErr := scanNotification(rows)
		if sErr != nil {
			return nil, s.mapError(sErr)
		}
		items = append(items, *n)
	}

	return items, s.mapError(rows.Err())
}

func (s *DB) SetArchived(ctx context.Context, id int64, archived bool) (err error) {
	ctx, span := s.startSpan(ctx, "SetArchived")
	defer func() { s.endSpan(span, err) }()

	_, err = s.conn.Exec(ctx,
		`UPDATE notifications SET archived = $2, updated_at = now() WHERE id = $1`,
		id, archived,
	)
	return s.mapError(err)
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanNotification(row rowScanner) (*entity.Notification, error) {
	var (
		n           entity.Notification
		typ         int16
		channels    []int16
		overrides   valueobject.JSONMap
		targetRole  int16
		priority    int16
		fallback    []int16
		status      int16
		actionTaken *string
		notes       *string
		timeZone    *string
		window      *string
	)

	err := row.Scan(
		&n.ID, &n.Title, &n.Body, &typ, &channels, &n.TemplateID, &n.TemplateVariables,
		&overrides, &n.TargetUserIDs, &targetRole, &n.TargetCriteria, &n.ScheduledTime,
		&timeZone, &window, &priority, &n.RoutingRules, &fallback, &n.RequireConfirmation,
		&status, &n.Engagement.Opened, &n.Engagement.OpenedAt, &n.Engagement.Clicked,
		&n.Engagement.ClickedAt, &actionTaken, &n.Engagement.ActionAt,
		&n.Engagement.ReadSeconds, &n.Engagement.Suspect,
		&n.CreatedBy, &n.SenderID, &n.Archived, &n.Tags, &notes, &n.CreatedAt, &n.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	n.Type = entity.Type(typ)
	n.Channels = channelsFromInt16(channels)
	n.Overrides = overridesFromJSON(overrides)
	n.TargetRole = entity.TargetRole(targetRole)
	n.Priority = entity.Priority(priority)
	n.FallbackChannels = channelsFromInt16(fallback)
	n.Status = entity.Status(status)
	if actionTaken != nil {
		n.Engagement.ActionTaken = *actionTaken
	}
	if notes != nil {
		n.Notes = *notes
	}
	if timeZone != nil {
		n.TimeZone = *timeZone
	}
	if window != nil {
		n.DeliveryWindow = *window
	}

	return &n, nil
}

func overridesToJSON(o entity.ContentOverrides) valueobject.JSONMap {
	m := valueobject.JSONMap{}
	set := func(key, val string) {
		if val != "" {
			m[key] = val
		}
	}
	set("email_subject", o.EmailSubject)
	set("email_body", o.EmailBody)
	set("sms_message", o.SMSMessage)
	set("push_title", o.PushTitle)
	set("push_body", o.PushBody)
	set("push_sound", o.PushSound)
	set("push_priority", o.PushPriority)
	set("in_app_message", o.InAppMessage)
	set("in_app_action", o.InAppAction)
	return m
}

func overridesFromJSON(m valueobject.JSONMap) entity.ContentOverrides {
	return entity.ContentOverrides{
		EmailSubject: m.GetString("email_subject"),
		EmailBody:    m.GetString("email_body"),
		SMSMessage:   m.GetString("sms_message"),
		PushTitle:    m.GetString("push_title"),
		PushBody:     m.GetString("push_body"),
		PushSound:    m.GetString("push_sound"),
		PushPriority: m.GetString("push_priority"),
		InAppMessage: m.GetString("in_app_message"),
		InAppAction:  m.GetString("in_app_action"),
	}
}

func (s *DB) execRowCount(ctx context.Context, query string, args ...any) (int64, error) {
	tag, err := s.conn.Exec(ctx, query, args...)
	if err != nil {
		return 0, s.mapError(err)
	}
	return tag.RowsAffected(), nil
}
