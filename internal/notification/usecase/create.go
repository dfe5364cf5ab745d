package usecase

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/tradekart/notifier/internal/notification/entity"
	"github.com/tradekart/notifier/internal/pkg/goerror"
	"github.com/tradekart/notifier/internal/pkg/jwt"
	"github.com/tradekart/notifier/internal/pkg/valueobject"
)

type CreateInput struct {
	Title string `validate:"required,max=200"`
	Body  string `validate:"required,max=5000"`
	Type  string `validate:"required"`

	Channels []string `validate:"required,min=1,dive,oneof=email sms push in_app"`

	TemplateID        *int64
	TemplateName      string
	TemplateVariables map[string]string

	Overrides entity.ContentOverrides

	TargetUserIDs  []int64
	TargetRole     string
	TargetCriteria valueobject.JSONMap

	ScheduledTime  *time.Time
	TimeZone       string
	DeliveryWindow string

	Priority string `validate:"omitempty,oneof=low medium high critical"`

	RoutingRules        valueobject.JSONMap
	FallbackChannels    []string `validate:"omitempty,dive,oneof=email sms push in_app"`
	RequireConfirmation bool

	Tags  []string
	Notes string
	Draft bool
}

type CreateOutput struct {
	ID     int64
	Status entity.Status
}

func (s *Usecase) Create(ctx context.Context, in CreateInput) (*CreateOutput, error) {
	ctx, span := s.startSpan(ctx, "Create")
	defer span.End()

	in.Title = strings.TrimSpace(in.Title)
	if err := s.validator.Validate(in); err != nil {
		return nil, goerror.NewInvalidInput(err)
	}

	typ := entity.TypeFromString(in.Type)
	if typ == entity.TypeUnknown {
		return nil, goerror.NewInvalidFormat("unknown notification type")
	}

	if err := validateTargets(in); err != nil {
		return nil, err
	}

	tplID := in.TemplateID
	if tplID != nil {
		if _, err := s.repoDB.GetTemplate(ctx, *tplID); err != nil {
			slog.ErrorContext(ctx, "failed to repo get template", "template_id", *tplID, "error", err)
			return nil, goerror.NewNotFound("Template not found")
		}
	}
	if tplID == nil && in.TemplateName != "" {
		tpl, err := s.repoDB.GetTemplateByName(ctx, in.TemplateName)
		if err != nil {
			slog.ErrorContext(ctx, "failed to repo get template by name", "name", in.TemplateName, "error", err)
			return nil, goerror.NewNotFound("Template not found")
		}
		tplID = &tpl.ID
	}

	now := s.clock.Now()
	status := entity.StatusPending
	if in.Draft {
		status = entity.StatusDraft
	} else if in.ScheduledTime != nil && in.ScheduledTime.After(now) {
		status = entity.StatusScheduled
	}

	var callerID int64
	if clm := jwt.GetAuth(ctx); clm != nil {
		callerID = clm.UserID
	}

	vars := valueobject.JSONMap{}
	for k, v := range in.TemplateVariables {
		vars[k] = v
	}

	n := entity.Notification{
		ID:                  s.uid.Generate(),
		Title:               in.Title,
		Body:                in.Body,
		Type:                typ,
		Channels:            entity.ChannelsFromStrings(in.Channels),
		TemplateID:          tplID,
		TemplateVariables:   vars,
		Overrides:           in.Overrides,
		TargetUserIDs:       in.TargetUserIDs,
		TargetRole:          entity.TargetRoleFromString(in.TargetRole),
		TargetCriteria:      in.TargetCriteria,
		ScheduledTime:       in.ScheduledTime,
		TimeZone:            in.TimeZone,
		DeliveryWindow:      in.DeliveryWindow,
		Priority:            priorityOrDefault(in.Priority),
		RoutingRules:        in.RoutingRules,
		FallbackChannels:    entity.ChannelsFromStrings(in.FallbackChannels),
		RequireConfirmation: in.RequireConfirmation,
		Status:              status,
		CreatedBy:           callerID,
		SenderID:            callerID,
		Tags:                in.Tags,
		Notes:               in.Notes,
		CreatedAt:           now,
		UpdatedAt:           now,
	}

	if err := s.repoDB.CreateNotification(ctx, n); err != nil {
		slog.ErrorContext(ctx, "failed to repo create notification", "title", in.Title, "error", err)
		return nil, goerror.NewServer(err)
	}

	if status == entity.StatusPending {
		if ok, err := s.repoDB.SetStatusIf(ctx, n.ID, entity.StatusProcessing, entity.StatusPending); err != nil {
			slog.ErrorContext(ctx, "failed to repo claim notification for dispatch", "id", n.ID, "error", err)
			return nil, goerror.NewServer(err)
		} else if ok {
			if err := s.dispatch(ctx, n.ID); err != nil {
				slog.ErrorContext(ctx, "failed to dispatch notification", "id", n.ID, "error", err)
				return nil, goerror.NewServer(err)
			}
		}

		got, err := s.repoDB.GetNotification(ctx, n.ID)
		if err != nil {
			slog.ErrorContext(ctx, "failed to repo get notification after dispatch", "id", n.ID, "error", err)
			return nil, goerror.NewServer(err)
		}
		return &CreateOutput{ID: got.ID, Status: got.Status}, nil
	}

	return &CreateOutput{ID: n.ID, Status: status}, nil
}

// validateTargets enforces that exactly one targeting mode is set. An
// empty resolved audience is fine later; an ambiguous request is not.
func validateTargets(in CreateInput) error {
	modes := 0
	if len(in.TargetUserIDs) > 0 {
		modes++
	}
	if in.TargetRole != "" {
		modes++
	}
	if len(in.TargetCriteria) > 0 {
		modes++
	}
	if modes != 1 {
		return goerror.NewInvalidFormat("exactly one of target_user_ids, target_role, target_criteria must be set")
	}
	if in.TargetRole != "" && entity.TargetRoleFromString(in.TargetRole) == entity.TargetRoleUnknown {
		return goerror.NewInvalidFormat("unknown target role")
	}
	return nil
}

func priorityOrDefault(raw string) entity.Priority {
	if p := entity.PriorityFromString(raw); p != entity.PriorityUnknown {
		return p
	}
	return entity.PriorityMedium
}
