package usecase

import (
	"context"
	"log/slog"
	"time"

	"github.com/tradekart/notifier/internal/notification/entity"
	"github.com/tradekart/notifier/internal/pkg/goerror"
)

type StatsInput struct {
	From *time.Time
	To   *time.Time
}

// Stats aggregates delivery and engagement figures over a timeframe,
// defaulting to the trailing 30 days.
func (s *Usecase) Stats(ctx context.Context, in StatsInput) (*entity.Stats, error) {
	ctx, span := s.startSpan(ctx, "Stats")
	defer span.End()

	now := s.clock.Now()
	to := now
	if in.To != nil {
		to = *in.To
	}
	from := to.Add(-30 * 24 * time.Hour)
	if in.From != nil {
		from = *in.From
	}
	if !from.Before(to) {
		return nil, goerror.NewInvalidFormat("from must be before to")
	}

	stats, err := s.repoDB.GetStats(ctx, from, to)
	if err != nil {
		slog.ErrorContext(ctx, "failed to repo get stats", "error", err)
		return nil, goerror.NewServer(err)
	}

	return stats, nil
}

// SweepReport summarizes one on-demand maintenance run.
type SweepReport struct {
	Scheduled int
	Retries   int
	Stuck     int64
	Expired   int64
}

// RunSweeps runs every maintenance sweep once. The scheduler runs the
// same sweeps on timers; this is the operator's manual trigger.
func (s *Usecase) RunSweeps(ctx context.Context) (*SweepReport, error) {
	ctx, span := s.startSpan(ctx, "RunSweeps")
	defer span.End()

	report := &SweepReport{}
	var firstErr error

	keep := func(err error) {
		if err != nil && firstErr == nil {
			firstErr = err
		}
	}

	var err error
	report.Scheduled, err = s.SweepScheduled(ctx)
	keep(err)
	report.Retries, err = s.SweepRetries(ctx)
	keep(err)
	report.Stuck, err = s.SweepStuck(ctx)
	keep(err)
	report.Expired, err = s.SweepRetention(ctx)
	keep(err)

	if firstErr != nil {
		return report, goerror.NewServer(firstErr)
	}

	return report, nil
}

type ArchiveInput struct {
	ID       int64 `validate:"required,gt=0"`
	Archived bool
}

// Archive hides a notification from default list views without deleting
// its delivery history.
func (s *Usecase) Archive(ctx context.Context, in ArchiveInput) error {
	ctx, span := s.startSpan(ctx, "Archive")
	defer span.End()

	if err := s.validator.Validate(in); err != nil {
		return goerror.NewInvalidInput(err)
	}

	if err := s.repoDB.SetArchived(ctx, in.ID, in.Archived); err != nil {
		slog.ErrorContext(ctx, "failed to repo set archived", "id", in.ID, "error", err)
		return goerror.NewServer(err)
	}

	return nil
}

type CleanupEndpointsInput struct {
	StaleDays int32 `validate:"omitempty,gte=1,lte=3650"`
}

// CleanupEndpoints deletes push endpoints not refreshed within the stale
// window and returns how many were removed.
func (s *Usecase) CleanupEndpoints(ctx context.Context, in CleanupEndpointsInput) (int64, error) {
	ctx, span := s.startSpan(ctx, "CleanupEndpoints")
	defer span.End()

	if err := s.validator.Validate(in); err != nil {
		return 0, goerror.NewInvalidInput(err)
	}

	stale := time.Duration(in.StaleDays) * 24 * time.Hour
	if stale <= 0 {
		stale = s.cfg.GetDay("modules.notification.endpoint_stale_days")
	}
	if stale <= 0 {
		stale = 180 * 24 * time.Hour
	}

	count, err := s.repoDB.DeleteStaleEndpoints(ctx, s.clock.Now().Add(-stale))
	if err != nil {
		slog.ErrorContext(ctx, "failed to repo delete stale endpoints", "error", err)
		return 0, goerror.NewServer(err)
	}

	return count, nil
}
