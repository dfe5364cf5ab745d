package usecase

import (
	"context"
	"log/slog"
	"strings"

	"github.com/tradekart/notifier/internal/notification/entity"
	"github.com/tradekart/notifier/internal/pkg/goerror"
	"github.com/tradekart/notifier/internal/pkg/jwt"
)

type RegisterDeviceInput struct {
	Token    string `validate:"required,max=500"`
	Platform string `validate:"required,oneof=ios android web"`
	DeviceID string `validate:"max=200"`
}

// RegisterDevice records a push endpoint for the authenticated user.
// Re-registering the same token refreshes its metadata.
func (s *Usecase) RegisterDevice(ctx context.Context, in RegisterDeviceInput) error {
	ctx, span := s.startSpan(ctx, "RegisterDevice")
	defer span.End()

	in.Token = strings.TrimSpace(in.Token)
	if err := s.validator.Validate(in); err != nil {
		return goerror.NewInvalidInput(err)
	}

	clm := jwt.GetAuth(ctx)
	if clm == nil {
		return goerror.NewBusiness("Unauthenticated", goerror.CodeUnauthorized)
	}

	err := s.repoDB.RegisterEndpoint(ctx, entity.Endpoint{
		ID:        s.uid.Generate(),
		UserID:    clm.UserID,
		Token:     in.Token,
		Platform:  in.Platform,
		DeviceID:  in.DeviceID,
		UpdatedAt: s.clock.Now(),
	})
	if err != nil {
		slog.ErrorContext(ctx, "failed to repo register endpoint", "user_id", clm.UserID, "error", err)
		return goerror.NewServer(err)
	}

	return nil
}

type UnregisterDeviceInput struct {
	Token string `validate:"max=500"`
	All   bool
}

// UnregisterDevice removes one push endpoint, or every endpoint of the
// authenticated user when All is set. Unknown tokens are not an error.
func (s *Usecase) UnregisterDevice(ctx context.Context, in UnregisterDeviceInput) error {
	ctx, span := s.startSpan(ctx, "UnregisterDevice")
	defer span.End()

	in.Token = strings.TrimSpace(in.Token)
	if err := s.validator.Validate(in); err != nil {
		return goerror.NewInvalidInput(err)
	}
	if !in.All && in.Token == "" {
		return goerror.NewInvalidFormat("token is required unless all is set")
	}

	clm := jwt.GetAuth(ctx)
	if clm == nil {
		return goerror.NewBusiness("Unauthenticated", goerror.CodeUnauthorized)
	}

	var err error
	if in.All {
		err = s.repoDB.UnregisterAllEndpoints(ctx, clm.UserID)
	} else {
		err = s.repoDB.UnregisterEndpoint(ctx, clm.UserID, in.Token)
	}
	if err != nil {
		slog.ErrorContext(ctx, "failed to repo unregister endpoint", "user_id", clm.UserID, "error", err)
		return goerror.NewServer(err)
	}

	return nil
}
