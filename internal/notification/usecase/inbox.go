package usecase

import (
	"context"
	"log/slog"

	"github.com/tradekart/notifier/internal/notification/entity"
	"github.com/tradekart/notifier/internal/pkg/goerror"
	"github.com/tradekart/notifier/internal/pkg/jwt"
)

type ListInboxInput struct {
	Limit  int32 `validate:"omitempty,gte=1,lte=100"`
	Offset int32 `validate:"omitempty,gte=0"`
}

// ListInbox returns the authenticated user's in-app messages, newest
// first.
func (s *Usecase) ListInbox(ctx context.Context, in ListInboxInput) ([]entity.InboxMessage, error) {
	ctx, span := s.startSpan(ctx, "ListInbox")
	defer span.End()

	if err := s.validator.Validate(in); err != nil {
		return nil, goerror.NewInvalidInput(err)
	}

	clm := jwt.GetAuth(ctx)
	if clm == nil {
		return nil, goerror.NewBusiness("Unauthenticated", goerror.CodeUnauthorized)
	}

	items, err := s.repoDB.ListInbox(ctx, clm.UserID, in.Limit, in.Offset)
	if err != nil {
		slog.ErrorContext(ctx, "failed to repo list inbox", "user_id", clm.UserID, "error", err)
		return nil, goerror.NewServer(err)
	}

	return items, nil
}

type MarkInboxReadInput struct {
	MessageID int64 `validate:"required,gt=0"`
}

// MarkInboxRead marks one inbox message read. Re-reading is a no-op.
func (s *Usecase) MarkInboxRead(ctx context.Context, in MarkInboxReadInput) error {
	ctx, span := s.startSpan(ctx, "MarkInboxRead")
	defer span.End()

	if err := s.validator.Validate(in); err != nil {
		return goerror.NewInvalidInput(err)
	}

	clm := jwt.GetAuth(ctx)
	if clm == nil {
		return goerror.NewBusiness("Unauthenticated", goerror.CodeUnauthorized)
	}

	if _, err := s.repoDB.MarkInboxRead(ctx, clm.UserID, in.MessageID, s.clock.Now()); err != nil {
		slog.ErrorContext(ctx, "failed to repo mark inbox read",
			"user_id", clm.UserID, "message_id", in.MessageID, "error", err)
		return goerror.NewServer(err)
	}

	return nil
}
