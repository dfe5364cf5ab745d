package usecase

import (
	"context"
	"errors"
	"log/slog"

	"github.com/tradekart/notifier/internal/notification/entity"
	"github.com/tradekart/notifier/internal/pkg/goerror"
)

type CancelInput struct {
	ID int64 `validate:"required,gt=0"`
}

// Cancel stops a notification that has not started delivering. Once a
// job reaches processing its gateway calls may already be in flight, so
// only draft and scheduled jobs are cancellable.
func (s *Usecase) Cancel(ctx context.Context, in CancelInput) error {
	ctx, span := s.startSpan(ctx, "Cancel")
	defer span.End()

	if err := s.validator.Validate(in); err != nil {
		return goerror.NewInvalidInput(err)
	}

	ok, err := s.repoDB.SetStatusIf(ctx, in.ID, entity.StatusCancelled,
		entity.StatusDraft, entity.StatusScheduled)
	if err != nil {
		slog.ErrorContext(ctx, "failed to repo cancel notification", "id", in.ID, "error", err)
		return goerror.NewServer(err)
	}
	if ok {
		return nil
	}

	n, err := s.repoDB.GetNotification(ctx, in.ID)
	if errors.Is(err, goerror.ErrNotFound) {
		return goerror.NewNotFound("Notification not found")
	}
	if err != nil {
		slog.ErrorContext(ctx, "failed to repo get notification", "id", in.ID, "error", err)
		return goerror.NewServer(err)
	}

	return goerror.NewBusiness("Notification in status "+n.Status.String()+" cannot be cancelled", goerror.CodeConflict)
}
