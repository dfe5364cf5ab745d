package db

import (
	"context"
	"time"

	"github.com/tradekart/notifier/internal/notification/entity"
)

// GetStats aggregates delivery and engagement figures for notifications
// created inside [from, to].
func (s *DB) GetStats(ctx context.Context, from, to time.Time) (_ *entity.Stats, err error) {
	ctx, span := s.startSpan(ctx, "GetStats")
	defer func() { s.endSpan(span, err) }()

	stats := &entity.Stats{
		ByStatus:  map[string]int64{},
		ByType:    map[string]int64{},
		ByChannel: map[string]int64{},
	}

	rows, err := s.conn.Query(ctx, `
		SELECT status, type, count(*),
			count(*) FILTER (WHERE opened), count(*) FILTER (WHERE clicked)
		FROM notifications
		WHERE created_at >= $1 AND created_at <= $2
		GROUP BY status, type`,
		from, to,
	)
	if err != nil {
		return nil, s.mapError(err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			status, typ     int16
			count           int64
			opened, clicked int64
		)
		if err = rows.Scan(&status, &typ, &count, &opened, &clicked); err != nil {
			return nil, s.mapError(err)
		}

		st := entity.Status(status)
		stats.Total += count
		stats.ByStatus[st.String()] += count
		stats.ByType[entity.Type(typ).String()] += count
		stats.Opened += opened
		stats.Clicked += clicked

		switch st {
		case entity.StatusDelivered:
			stats.Delivered += count
		case entity.StatusFailed:
			stats.Failed += count
		}
	}
	if err = rows.Err(); err != nil {
		return nil, s.mapError(err)
	}

	chRows, err := s.conn.Query(ctx, `
		SELECT d.channel, count(*)
		FROM notification_deliveries d
		JOIN notifications n ON n.id = d.notification_id
		WHERE n.created_at >= $1 AND n.created_at <= $2
		GROUP BY d.channel`,
		from, to,
	)
	if err != nil {
		return nil, s.mapError(err)
	}
	defer chRows.Close()

	for chRows.Next() {
		var (
			channel int16
			count   int64
		)
		if err = chRows.Scan(&channel, &count); err != nil {
			return nil, s.mapError(err)
		}
		stats.ByChannel[entity.Channel(channel).String()] += count
	}
	if err = chRows.Err(); err != nil {
		return nil, s.mapError(err)
	}

	if stats.Total > 0 {
		stats.DeliveryRate = float64(stats.Delivered) / float64(stats.Total)
		stats.OpenRate = float64(stats.Opened) / float64(stats.Total)
		stats.ClickRate = float64(stats.Clicked) / float64(stats.Total)
	}

	return stats, nil
}
