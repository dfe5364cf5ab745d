package usecase

import (
	"context"
	"errors"
	"log/slog"

	"github.com/tradekart/notifier/internal/notification/entity"
	"github.com/tradekart/notifier/internal/pkg/goerror"
	"github.com/tradekart/notifier/internal/pkg/jwt"
)

type EngagementInput struct {
	NotificationID int64  `validate:"required,gt=0"`
	Event          string `validate:"required,oneof=opened clicked action_taken"`
	Channel        string `validate:"omitempty,oneof=email sms push in_app"`
	Action         string `validate:"max=200"`
	ReadSeconds    int32  `validate:"omitempty,gte=0"`
}

// RecordEngagement stores an interaction signal and promotes the channel
// delivery state when the transition is legal. Signals arriving before
// the channel reached a delivered state are kept but flagged suspect.
func (s *Usecase) RecordEngagement(ctx context.Context, in EngagementInput) error {
	ctx, span := s.startSpan(ctx, "RecordEngagement")
	defer span.End()

	if err := s.validator.Validate(in); err != nil {
		return goerror.NewInvalidInput(err)
	}

	n, err := s.repoDB.GetNotification(ctx, in.NotificationID)
	if errors.Is(err, goerror.ErrNotFound) {
		return goerror.NewNotFound("Notification not found")
	}
	if err != nil {
		slog.ErrorContext(ctx, "failed to repo get notification", "id", in.NotificationID, "error", err)
		return goerror.NewServer(err)
	}

	event := entity.EngagementEventFromString(in.Event)
	promoted := s.promoteEngagement(ctx, n, event, entity.ChannelFromString(in.Channel))

	now := s.clock.Now()
	suspect := !promoted

	switch event {
	case entity.EngagementOpened:
		err = s.repoDB.RecordEngagementOpened(ctx, n.ID, now, suspect)
	case entity.EngagementClicked:
		err = s.repoDB.RecordEngagementClicked(ctx, n.ID, now, suspect)
	case entity.EngagementActionTaken:
		if in.Action == "" {
			return goerror.NewInvalidFormat("action is required for action_taken")
		}
		err = s.repoDB.RecordEngagementAction(ctx, n.ID, in.Action, now, suspect)
	}
	if err != nil {
		slog.ErrorContext(ctx, "failed to repo record engagement",
			"id", n.ID, "event", in.Event, "error", err)
		return goerror.NewServer(err)
	}

	if in.ReadSeconds > 0 {
		if err := s.repoDB.RecordReadDuration(ctx, n.ID, in.ReadSeconds, now); err != nil {
			slog.ErrorContext(ctx, "failed to repo record read duration", "id", n.ID, "error", err)
		}
	}

	s.recomputeStatus(ctx, n.ID)

	var userID int64
	if clm := jwt.GetAuth(ctx); clm != nil {
		userID = clm.UserID
	}
	if err := s.repoMQ.PublishEngagement(ctx, EngagementPublishedEvent{
		NotificationID: n.ID,
		UserID:         userID,
		Event:          in.Event,
		Channel:        in.Channel,
		OccurredAt:     now,
	}); err != nil {
		slog.ErrorContext(ctx, "failed to publish engagement event", "id", n.ID, "error", err)
	}

	return nil
}

// promoteEngagement walks the candidate channels and promotes the first
// delivery row where the transition is legal. Opened promotes sent or
// delivered to read; clicked also promotes read to clicked.
func (s *Usecase) promoteEngagement(ctx context.Context, n *entity.Notification, event entity.EngagementEvent, ch entity.Channel) bool {
	var to entity.DeliveryState
	var from []entity.DeliveryState

	switch event {
	case entity.EngagementOpened:
		to = entity.DeliveryStateRead
		from = []entity.DeliveryState{entity.DeliveryStateSent, entity.DeliveryStateDelivered}
	case entity.EngagementClicked:
		to = entity.DeliveryStateClicked
		from = []entity.DeliveryState{entity.DeliveryStateSent, entity.DeliveryStateDelivered, entity.DeliveryStateRead}
	default:
		return true
	}

	candidates := []entity.Channel{ch}
	if ch == entity.ChannelUnknown {
		candidates = candidates[:0]
		for _, d := range n.Deliveries {
			candidates = append(candidates, d.Channel)
		}
	}

	for _, c := range candidates {
		ok, err := s.repoDB.PromoteDeliveryState(ctx, n.ID, c, to, from...)
		if err != nil {
			slog.ErrorContext(ctx, "failed to repo promote delivery state",
				"id", n.ID, "channel", c.String(), "to", to.String(), "error", err)
			continue
		}
		if ok {
			return true
		}
	}

	return false
}

// recomputeStatus re-derives the overall status from the current channel
// states. Failures here are logged only; the engagement write stands.
func (s *Usecase) recomputeStatus(ctx context.Context, id int64) {
	deliveries, err := s.repoDB.ListDeliveries(ctx, id)
	if err != nil {
		slog.ErrorContext(ctx, "failed to repo list deliveries", "id", id, "error", err)
		return
	}
	if len(deliveries) == 0 {
		return
	}

	states := make([]entity.DeliveryState, 0, len(deliveries))
	for _, d := range deliveries {
		states = append(states, d.State)
	}
	if err := s.repoDB.SetStatus(ctx, id, entity.DeriveStatus(states)); err != nil {
		slog.ErrorContext(ctx, "failed to repo set derived status", "id", id, "error", err)
	}
}
