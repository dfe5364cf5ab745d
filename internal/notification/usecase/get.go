package usecase

import (
	"context"
	"errors"
	"log/slog"

	"github.com/tradekart/notifier/internal/notification/entity"
	"github.com/tradekart/notifier/internal/pkg/goerror"
)

type GetInput struct {
	ID int64 `validate:"required,gt=0"`
}

func (s *Usecase) Get(ctx context.Context, in GetInput) (*entity.Notification, error) {
	ctx, span := s.startSpan(ctx, "Get")
	defer span.End()

	if err := s.validator.Validate(in); err != nil {
		return nil, goerror.NewInvalidInput(err)
	}

	n, err := s.repoDB.GetNotification(ctx, in.ID)
	if errors.Is(err, goerror.ErrNotFound) {
		return nil, goerror.NewNotFound("Notification not found")
	}
	if err != nil {
		slog.ErrorContext(ctx, "failed to repo get notification", "id", in.ID, "error", err)
		return nil, goerror.NewServer(err)
	}

	return n, nil
}
