package usecase

import (
	"context"
	"errors"
	"log/slog"

	"github.com/tradekart/notifier/internal/notification/entity"
	"github.com/tradekart/notifier/internal/pkg/goerror"
)

type SendInput struct {
	ID int64 `validate:"required,gt=0"`
}

// Send triggers delivery of a draft, scheduled, pending, or previously
// failed notification. The processing claim is atomic, so concurrent
// triggers dispatch exactly once.
func (s *Usecase) Send(ctx context.Context, in SendInput) (*entity.Notification, error) {
	ctx, span := s.startSpan(ctx, "Send")
	defer span.End()

	if err := s.validator.Validate(in); err != nil {
		return nil, goerror.NewInvalidInput(err)
	}

	ok, err := s.repoDB.SetStatusIf(ctx, in.ID, entity.StatusProcessing,
		entity.StatusDraft, entity.StatusScheduled, entity.StatusPending, entity.StatusFailed)
	if err != nil {
		slog.ErrorContext(ctx, "failed to repo claim notification for send", "id", in.ID, "error", err)
		return nil, goerror.NewServer(err)
	}
	if !ok {
		n, err := s.repoDB.GetNotification(ctx, in.ID)
		if errors.Is(err, goerror.ErrNotFound) {
			return nil, goerror.NewNotFound("Notification not found")
		}
		if err != nil {
			slog.ErrorContext(ctx, "failed to repo get notification", "id", in.ID, "error", err)
			return nil, goerror.NewServer(err)
		}
		return nil, goerror.NewBusiness("Notification is not sendable in status "+n.Status.String(), goerror.CodeConflict)
	}

	if err := s.dispatch(ctx, in.ID); err != nil {
		slog.ErrorContext(ctx, "failed to dispatch notification", "id", in.ID, "error", err)
		return nil, goerror.NewServer(err)
	}

	n, err := s.repoDB.GetNotification(ctx, in.ID)
	if err != nil {
		slog.ErrorContext(ctx, "failed to repo get notification after send", "id", in.ID, "error", err)
		return nil, goerror.NewServer(err)
	}

	return n, nil
}
