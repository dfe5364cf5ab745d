// Package scheduler runs the periodic maintenance sweeps: dispatching
// due scheduled notifications, retrying failed channels, readmitting
// stuck jobs, and expiring old records. Each tick is guarded by a redis
// lock so only one instance sweeps at a time.
package scheduler

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/tradekart/notifier/internal/pkg/config"
	"github.com/tradekart/notifier/internal/pkg/goroutine"
	"github.com/tradekart/notifier/internal/pkg/idempotency"
)

type sweeper interface {
	SweepScheduled(ctx context.Context) (int, error)
	SweepRetries(ctx context.Context) (int, error)
	SweepStuck(ctx context.Context) (int64, error)
	SweepRetention(ctx context.Context) (int64, error)
}

type Scheduler struct {
	uc     sweeper
	cfg    config.Config
	idem   idempotency.Idempotency
	ticker func(d time.Duration) *time.Ticker
}

type Dependency struct {
	Usecase     sweeper
	Config      config.Config
	Idempotency idempotency.Idempotency
}

func New(dep Dependency) *Scheduler {
	return &Scheduler{
		uc:     dep.Usecase,
		cfg:    dep.Config,
		idem:   dep.Idempotency,
		ticker: time.NewTicker,
	}
}

// Start launches one goroutine per sweep loop. The loops stop when the
// parent context is cancelled.
func (s *Scheduler) Start(ctx context.Context, routine *goroutine.Manager) {
	loops := []struct {
		name     string
		key      string
		interval time.Duration
		fallback time.Duration
		run      func(ctx context.Context) error
	}{
		{
			name:     "scheduled",
			key:      "sweep:scheduled",
			interval: s.cfg.GetSecond("modules.notification.sweep_scheduled_seconds"),
			fallback: 15 * time.Second,
			run: func(ctx context.Context) error {
				count, err := s.uc.SweepScheduled(ctx)
				if count > 0 {
					slog.InfoContext(ctx, "dispatched scheduled notifications", "count", count)
				}
				return err
			},
		},
		{
			name:     "retries",
			key:      "sweep:retries",
			interval: s.cfg.GetSecond("modules.notification.sweep_retries_seconds"),
			fallback: 30 * time.Second,
			run: func(ctx context.Context) error {
				count, err := s.uc.SweepRetries(ctx)
				if count > 0 {
					slog.InfoContext(ctx, "retried failed channel deliveries", "count", count)
				}
				return err
			},
		},
		{
			name:     "stuck",
			key:      "sweep:stuck",
			interval: s.cfg.GetMinute("modules.notification.sweep_stuck_minutes"),
			fallback: 5 * time.Minute,
			run: func(ctx context.Context) error {
				_, err := s.uc.SweepStuck(ctx)
				return err
			},
		},
		{
			name:     "retention",
			key:      "sweep:retention",
			interval: s.cfg.GetHour("modules.notification.sweep_retention_hours"),
			fallback: 12 * time.Hour,
			run: func(ctx context.Context) error {
				count, err := s.uc.SweepRetention(ctx)
				if count > 0 {
					slog.InfoContext(ctx, "expired old notifications", "count", count)
				}
				return err
			},
		},
	}

	for _, loop := range loops {
		interval := loop.interval
		if interval <= 0 {
			interval = loop.fallback
		}

		routine.Go(ctx, func(pCtx context.Context) error {
			slog.InfoContext(pCtx, "Running job for sweep loop", "sweep", loop.name, "interval", interval.String())
			s.runLoop(pCtx, loop.name, loop.key, interval, loop.run)
			return nil
		})
	}
}

func (s *Scheduler) runLoop(ctx context.Context, name, key string, interval time.Duration, run func(ctx context.Context) error) {
	ticker := s.ticker(interval)
	defer ticker.Stop()

	window := int64(interval.Seconds())
	if window <= 0 {
		window = 1
	}

	for {
		select {
		case <-ctx.Done():
			return
		case tick := <-ticker.C:
			s.runOnce(ctx, name, fmt.Sprintf("%s:%d", key, tick.Unix()/window), interval, run)
		}
	}
}

// runOnce executes one guarded sweep. The lock key embeds the tick
// window, so a crashed holder only blocks until the next window.
func (s *Scheduler) runOnce(ctx context.Context, name, key string, interval time.Duration, run func(ctx context.Context) error) {
	err := s.idem.Exec(ctx, key, run,
		idempotency.WithLockDuration(interval),
		idempotency.WithStateTTL(2*interval),
	)
	switch {
	case err == nil:
	case errors.Is(err, idempotency.ErrAlreadyInProgress),
		errors.Is(err, idempotency.ErrAlreadyCompleted):
		// Another instance owns this window.
	default:
		slog.ErrorContext(ctx, "sweep run failed", "sweep", name, "error", err)
	}
}
