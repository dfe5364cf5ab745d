package usecase

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/tradekart/notifier/internal/notification/entity"
	"github.com/tradekart/notifier/internal/pkg/goerror"
)

type ListInput struct {
	Status   string `validate:"omitempty,oneof=draft scheduled processing pending sent partially_sent failed delivered expired cancelled"`
	Type     string
	Channel  string `validate:"omitempty,oneof=email sms push in_app"`
	Priority string `validate:"omitempty,oneof=low medium high critical"`
	From     *time.Time
	To       *time.Time
	Search   string `validate:"max=200"`
	Archived *bool
	Limit    int32 `validate:"omitempty,gte=1,lte=100"`
	Offset   int32 `validate:"omitempty,gte=0"`
}

func (s *Usecase) List(ctx context.Context, in ListInput) ([]entity.Notification, error) {
	ctx, span := s.startSpan(ctx, "List")
	defer span.End()

	in.Search = strings.TrimSpace(in.Search)
	if err := s.validator.Validate(in); err != nil {
		return nil, goerror.NewInvalidInput(err)
	}
	if in.Type != "" && entity.TypeFromString(in.Type) == entity.TypeUnknown {
		return nil, goerror.NewInvalidFormat("unknown notification type")
	}

	items, err := s.repoDB.ListNotifications(ctx, entity.ListFilter{
		Status:   entity.StatusFromString(in.Status),
		Type:     entity.TypeFromString(in.Type),
		Channel:  entity.ChannelFromString(in.Channel),
		Priority: entity.PriorityFromString(in.Priority),
		From:     in.From,
		To:       in.To,
		Search:   in.Search,
		Archived: in.Archived,
		Limit:    in.Limit,
		Offset:   in.Offset,
	})
	if err != nil {
		slog.ErrorContext(ctx, "failed to repo list notifications", "error", err)
		return nil, goerror.NewServer(err)
	}

	return items, nil
}
