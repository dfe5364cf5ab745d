package usecase

import (
	"context"
	"log/slog"
	"time"

	"github.com/tradekart/notifier/internal/notification/entity"
)

// SweepScheduled claims due scheduled notifications and dispatches them.
// The claim uses row locks, so concurrent sweepers never double-send.
func (s *Usecase) SweepScheduled(ctx context.Context) (int, error) {
	ctx, span := s.startSpan(ctx, "SweepScheduled")
	defer span.End()

	ids, err := s.repoDB.ClaimDueScheduled(ctx, s.clock.Now(), s.sweepBatch())
	if err != nil {
		slog.ErrorContext(ctx, "failed to repo claim due scheduled", "error", err)
		return 0, err
	}

	for _, id := range ids {
		if err := s.dispatch(ctx, id); err != nil {
			slog.ErrorContext(ctx, "failed to dispatch scheduled notification", "id", id, "error", err)
			// Leave it in processing; the stuck sweep readmits it.
		}
	}

	return len(ids), nil
}

// SweepRetries redispatches failed channel deliveries whose backoff has
// elapsed and whose retry budget is not spent.
func (s *Usecase) SweepRetries(ctx context.Context) (int, error) {
	ctx, span := s.startSpan(ctx, "SweepRetries")
	defer span.End()

	due, err := s.repoDB.ListDueRetries(ctx, s.clock.Now(), s.retryCeiling(), s.sweepBatch())
	if err != nil {
		slog.ErrorContext(ctx, "failed to repo list due retries", "error", err)
		return 0, err
	}

	for _, d := range due {
		if err := s.redispatchChannel(ctx, d.NotificationID, d.Channel); err != nil {
			slog.ErrorContext(ctx, "failed to redispatch channel",
				"notification_id", d.NotificationID, "channel", d.Channel.String(), "error", err)
		}
	}

	return len(due), nil
}

// redispatchChannel retries a single failed channel of one notification
// and re-derives the overall status afterwards.
func (s *Usecase) redispatchChannel(ctx context.Context, id int64, ch entity.Channel) error {
	n, err := s.repoDB.GetNotification(ctx, id)
	if err != nil {
		return err
	}

	recipients, err := s.resolveRecipients(ctx, n)
	if err != nil {
		return err
	}

	rendered, tpl := s.renderContent(ctx, n)

	attempt := []entity.Channel{ch}
	for len(attempt) > 0 {
		results := s.fanOut(ctx, n, attempt, recipients, rendered, tpl)
		attempt = s.settleResults(ctx, n, results)
	}

	s.recomputeStatus(ctx, id)

	return nil
}

// SweepStuck readmits notifications abandoned in processing, typically
// after a crash mid-dispatch.
func (s *Usecase) SweepStuck(ctx context.Context) (int64, error) {
	ctx, span := s.startSpan(ctx, "SweepStuck")
	defer span.End()

	stuckAfter := s.cfg.GetMinute("modules.notification.stuck_minutes")
	if stuckAfter <= 0 {
		stuckAfter = 15 * time.Minute
	}

	count, err := s.repoDB.ReadmitStuckProcessing(ctx, s.clock.Now().Add(-stuckAfter))
	if err != nil {
		slog.ErrorContext(ctx, "failed to repo readmit stuck processing", "error", err)
		return 0, err
	}
	if count > 0 {
		slog.WarnContext(ctx, "readmitted stuck notifications", "count", count)
	}

	return count, nil
}

// SweepRetention expires terminal notifications older than the retention
// window so list views and stats stay bounded.
func (s *Usecase) SweepRetention(ctx context.Context) (int64, error) {
	ctx, span := s.startSpan(ctx, "SweepRetention")
	defer span.End()

	retention := s.cfg.GetDay("modules.notification.retention_days")
	if retention <= 0 {
		retention = 90 * 24 * time.Hour
	}

	count, err := s.repoDB.ExpireOldNotifications(ctx, s.clock.Now().Add(-retention))
	if err != nil {
		slog.ErrorContext(ctx, "failed to repo expire old notifications", "error", err)
		return 0, err
	}

	return count, nil
}
