package inbound

import (
	"time"

	"github.com/tradekart/notifier/internal/notification/usecase"
	"github.com/tradekart/notifier/internal/pkg/router"
)

type HTTPEndpoint struct {
	uc uc
}

// CreateNotification creates and optionally dispatches a notification.
// @Summary Create notification
// @Description Creates a notification. Immediate notifications dispatch synchronously; scheduled and draft ones are parked.
// @Tags Notification
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param request body CreateNotificationRequest true "Notification payload"
// @Success 200 {object} router.successResponse{data=CreateNotificationResponse} "Created notification"
// @Failure 400 {object} router.errorResponse "Invalid request body"
// @Failure 401 {object} router.errorResponse "Unauthorized"
// @Failure 422 {object} router.errorResponse "Validation error"
// @Failure 500 {object} router.errorResponse "Internal server error"
// @Router /api/v1/notifications [post]
func (h *HTTPEndpoint) CreateNotification(r *router.Request) (any, error) {
	var req CreateNotificationRequest
	if err := r.DecodeBody(&req); err != nil {
		return nil, err
	}

	out, err := h.uc.Create(r.Context(), usecase.CreateInput{
		Title:               req.Title,
		Body:                req.Body,
		Type:                req.Type,
		Channels:            req.Channels,
		TemplateID:          req.TemplateID,
		TemplateName:        req.TemplateName,
		TemplateVariables:   req.TemplateVariables,
		Overrides:           req.Overrides.toEntity(),
		TargetUserIDs:       req.TargetUserIDs,
		TargetRole:          req.TargetRole,
		TargetCriteria:      req.TargetCriteria,
		ScheduledTime:       req.ScheduledTime,
		TimeZone:            req.TimeZone,
		DeliveryWindow:      req.DeliveryWindow,
		Priority:            req.Priority,
		RoutingRules:        req.RoutingRules,
		FallbackChannels:    req.FallbackChannels,
		RequireConfirmation: req.RequireConfirmation,
		Tags:                req.Tags,
		Notes:               req.Notes,
		Draft:               req.Draft,
	})
	if err != nil {
		return nil, err
	}

	return CreateNotificationResponse{ID: out.ID, Status: out.Status.String()}, nil
}

// SendNotification triggers delivery of an existing notification.
// @Summary Send notification
// @Description Dispatches a draft, scheduled, pending, or failed notification now.
// @Tags Notification
// @Security BearerAuth
// @Produce json
// @Param id path string true "Notification ID"
// @Success 200 {object} router.successResponse{data=NotificationResponse} "Dispatched notification"
// @Failure 401 {object} router.errorResponse "Unauthorized"
// @Failure 404 {object} router.errorResponse "Not found"
// @Failure 409 {object} router.errorResponse "Not sendable"
// @Failure 500 {object} router.errorResponse "Internal server error"
// @Router /api/v1/notifications/{id}/send [post]
func (h *HTTPEndpoint) SendNotification(r *router.Request) (any, error) {
	id, err := r.GetParamInt64("id")
	if err != nil {
		return nil, err
	}

	n, err := h.uc.Send(r.Context(), usecase.SendInput{ID: id})
	if err != nil {
		return nil, err
	}

	return newNotificationResponse(n), nil
}

// GetNotification returns one notification with its delivery states.
// @Summary Get notification
// @Tags Notification
// @Security BearerAuth
// @Produce json
// @Param id path string true "Notification ID"
// @Success 200 {object} router.successResponse{data=NotificationResponse} "Notification detail"
// @Failure 401 {object} router.errorResponse "Unauthorized"
// @Failure 404 {object} router.errorResponse "Not found"
// @Failure 500 {object} router.errorResponse "Internal server error"
// @Router /api/v1/notifications/{id} [get]
func (h *HTTPEndpoint) GetNotification(r *router.Request) (any, error) {
	id, err := r.GetParamInt64("id")
	if err != nil {
		return nil, err
	}

	n, err := h.uc.Get(r.Context(), usecase.GetInput{ID: id})
	if err != nil {
		return nil, err
	}

	return newNotificationResponse(n), nil
}

// ListNotifications searches notifications with filters.
// @Summary List notifications
// @Tags Notification
// @Security BearerAuth
// @Produce json
// @Param status query string false "Filter by status"
// @Param type query string false "Filter by type"
// @Param channel query string false "Filter by channel"
// @Param priority query string false "Filter by priority"
// @Param search query string false "Search in title and body"
// @Param limit query int false "Page size"
// @Param offset query int false "Page offset"
// @Success 200 {object} router.successResponse{data=NotificationsResponse} "Notification list"
// @Failure 401 {object} router.errorResponse "Unauthorized"
// @Failure 500 {object} router.errorResponse "Internal server error"
// @Router /api/v1/notifications [get]
func (h *HTTPEndpoint) ListNotifications(r *router.Request) (any, error) {
	limit, err := r.GetQueryInt32("limit")
	if err != nil {
		return nil, err
	}
	offset, err := r.GetQueryInt32("offset")
	if err != nil {
		return nil, err
	}

	in := usecase.ListInput{
		Status:   r.GetQuery("status"),
		Type:     r.GetQuery("type"),
		Channel:  r.GetQuery("channel"),
		Priority: r.GetQuery("priority"),
		Search:   r.GetQuery("search"),
		Limit:    limit,
		Offset:   offset,
	}

	if raw := r.GetQuery("from"); raw != "" {
		from, err := r.GetQueryTime("from", time.RFC3339)
		if err != nil {
			return nil, err
		}
		in.From = &from
	}
	if raw := r.GetQuery("to"); raw != "" {
		to, err := r.GetQueryTime("to", time.RFC3339)
		if err != nil {
			return nil, err
		}
		in.To = &to
	}
	if raw := r.GetQuery("archived"); raw != "" {
		archived := raw == "true"
		in.Archived = &archived
	}

	items, err := h.uc.List(r.Context(), in)
	if err != nil {
		return nil, err
	}

	resp := NotificationsResponse{Notifications: make([]NotificationResponse, 0, len(items))}
	for i := range items {
		resp.Notifications = append(resp.Notifications, newNotificationResponse(&items[i]))
	}

	return resp, nil
}

// CancelNotification cancels a draft or scheduled notification.
// @Summary Cancel notification
// @Tags Notification
// @Security BearerAuth
// @Param id path string true "Notification ID"
// @Success 204 "No Content"
// @Failure 401 {object} router.errorResponse "Unauthorized"
// @Failure 404 {object} router.errorResponse "Not found"
// @Failure 409 {object} router.errorResponse "Not cancellable"
// @Failure 500 {object} router.errorResponse "Internal server error"
// @Router /api/v1/notifications/{id} [delete]
func (h *HTTPEndpoint) CancelNotification(r *router.Request) (any, error) {
	id, err := r.GetParamInt64("id")
	if err != nil {
		return nil, err
	}

	return nil, h.uc.Cancel(r.Context(), usecase.CancelInput{ID: id})
}

// ArchiveNotification hides or restores a notification in list views.
// @Summary Archive notification
// @Tags Notification
// @Security BearerAuth
// @Accept json
// @Param id path string true "Notification ID"
// @Param request body ArchiveRequest true "Archive flag"
// @Success 204 "No Content"
// @Failure 401 {object} router.errorResponse "Unauthorized"
// @Failure 500 {object} router.errorResponse "Internal server error"
// @Router /api/v1/notifications/{id}/archive [patch]
func (h *HTTPEndpoint) ArchiveNotification(r *router.Request) (any, error) {
	id, err := r.GetParamInt64("id")
	if err != nil {
		return nil, err
	}

	var req ArchiveRequest
	if err := r.DecodeBody(&req); err != nil {
		return nil, err
	}

	return nil, h.uc.Archive(r.Context(), usecase.ArchiveInput{ID: id, Archived: req.Archived})
}

// RecordEngagement stores an engagement signal for a notification.
// @Summary Record engagement
// @Tags Notification
// @Security BearerAuth
// @Accept json
// @Param id path string true "Notification ID"
// @Param request body EngagementRequest true "Engagement payload"
// @Success 204 "No Content"
// @Failure 400 {object} router.errorResponse "Invalid request body"
// @Failure 401 {object} router.errorResponse "Unauthorized"
// @Failure 404 {object} router.errorResponse "Not found"
// @Failure 422 {object} router.errorResponse "Validation error"
// @Failure 500 {object} router.errorResponse "Internal server error"
// @Router /api/v1/notifications/{id}/engagement [post]
func (h *HTTPEndpoint) RecordEngagement(r *router.Request) (any, error) {
	id, err := r.GetParamInt64("id")
	if err != nil {
		return nil, err
	}

	var req EngagementRequest
	if err := r.DecodeBody(&req); err != nil {
		return nil, err
	}

	return nil, h.uc.RecordEngagement(r.Context(), usecase.EngagementInput{
		NotificationID: id,
		Event:          req.Event,
		Channel:        req.Channel,
		Action:         req.Action,
		ReadSeconds:    req.ReadSeconds,
	})
}

// DeviceRegister registers a push endpoint for the authenticated user.
// @Summary Register device
// @Tags Notification
// @Security BearerAuth
// @Accept json
// @Param request body RegisterDeviceRequest true "Device payload"
// @Success 204 "No Content"
// @Failure 400 {object} router.errorResponse "Invalid request body"
// @Failure 401 {object} router.errorResponse "Unauthorized"
// @Failure 422 {object} router.errorResponse "Validation error"
// @Failure 500 {object} router.errorResponse "Internal server error"
// @Router /api/v1/notification/device [post]
func (h *HTTPEndpoint) DeviceRegister(r *router.Request) (any, error) {
	var req RegisterDeviceRequest
	if err := r.DecodeBody(&req); err != nil {
		return nil, err
	}

	return nil, h.uc.RegisterDevice(r.Context(), usecase.RegisterDeviceInput{
		Token:    req.Token,
		Platform: req.Platform,
		DeviceID: req.DeviceID,
	})
}

// DeviceUnregister removes one or all push endpoints of the user.
// @Summary Unregister device
// @Tags Notification
// @Security BearerAuth
// @Accept json
// @Param request body UnregisterDeviceRequest true "Device payload"
// @Success 204 "No Content"
// @Failure 400 {object} router.errorResponse "Invalid request body"
// @Failure 401 {object} router.errorResponse "Unauthorized"
// @Failure 500 {object} router.errorResponse "Internal server error"
// @Router /api/v1/notification/device [delete]
func (h *HTTPEndpoint) DeviceUnregister(r *router.Request) (any, error) {
	var req UnregisterDeviceRequest
	if err := r.DecodeBody(&req); err != nil {
		return nil, err
	}

	return nil, h.uc.UnregisterDevice(r.Context(), usecase.UnregisterDeviceInput{
		Token: req.Token,
		All:   req.All,
	})
}

// ListInbox returns the authenticated user's in-app messages.
// @Summary List inbox
// @Tags Notification
// @Security BearerAuth
// @Produce json
// @Param limit query int false "Page size"
// @Param offset query int false "Page offset"
// @Success 200 {object} router.successResponse{data=InboxResponse} "Inbox messages"
// @Failure 401 {object} router.errorResponse "Unauthorized"
// @Failure 500 {object} router.errorResponse "Internal server error"
// @Router /api/v1/notification/inbox [get]
func (h *HTTPEndpoint) ListInbox(r *router.Request) (any, error) {
	limit, err := r.GetQueryInt32("limit")
	if err != nil {
		return nil, err
	}
	offset, err := r.GetQueryInt32("offset")
	if err != nil {
		return nil, err
	}

	items, err := h.uc.ListInbox(r.Context(), usecase.ListInboxInput{Limit: limit, Offset: offset})
	if err != nil {
		return nil, err
	}

	resp := InboxResponse{Messages: make([]InboxMessageResponse, 0, len(items))}
	for _, msg := range items {
		resp.Messages = append(resp.Messages, InboxMessageResponse{
			ID:             msg.ID,
			NotificationID: msg.NotificationID,
			Title:          msg.Title,
			Body:           msg.Body,
			Action:         msg.Action,
			ReadAt:         msg.ReadAt,
			CreatedAt:      msg.CreatedAt,
		})
	}

	return resp, nil
}

// MarkInboxRead marks one inbox message as read.
// @Summary Mark inbox message read
// @Tags Notification
// @Security BearerAuth
// @Param id path string true "Inbox message ID"
// @Success 204 "No Content"
// @Failure 401 {object} router.errorResponse "Unauthorized"
// @Failure 500 {object} router.errorResponse "Internal server error"
// @Router /api/v1/notification/inbox/{id}/read [patch]
func (h *HTTPEndpoint) MarkInboxRead(r *router.Request) (any, error) {
	id, err := r.GetParamInt64("id")
	if err != nil {
		return nil, err
	}

	return nil, h.uc.MarkInboxRead(r.Context(), usecase.MarkInboxReadInput{MessageID: id})
}

// AdminStats aggregates delivery and engagement statistics.
// @Summary Notification statistics
// @Tags Notification Admin
// @Security BearerAuth
// @Produce json
// @Param from query string false "Timeframe start (RFC3339)"
// @Param to query string false "Timeframe end (RFC3339)"
// @Success 200 {object} router.successResponse{data=StatsResponse} "Statistics"
// @Failure 401 {object} router.errorResponse "Unauthorized"
// @Failure 403 {object} router.errorResponse "Forbidden"
// @Failure 500 {object} router.errorResponse "Internal server error"
// @Router /api/v1/admin/notifications/stats [get]
func (h *HTTPEndpoint) AdminStats(r *router.Request) (any, error) {
	in := usecase.StatsInput{}
	if raw := r.GetQuery("from"); raw != "" {
		from, err := r.GetQueryTime("from", time.RFC3339)
		if err != nil {
			return nil, err
		}
		in.From = &from
	}
	if raw := r.GetQuery("to"); raw != "" {
		to, err := r.GetQueryTime("to", time.RFC3339)
		if err != nil {
			return nil, err
		}
		in.To = &to
	}

	stats, err := h.uc.Stats(r.Context(), in)
	if err != nil {
		return nil, err
	}

	return StatsResponse{
		Total:        stats.Total,
		ByStatus:     stats.ByStatus,
		ByType:       stats.ByType,
		ByChannel:    stats.ByChannel,
		Delivered:    stats.Delivered,
		Failed:       stats.Failed,
		Opened:       stats.Opened,
		Clicked:      stats.Clicked,
		DeliveryRate: stats.DeliveryRate,
		OpenRate:     stats.OpenRate,
		ClickRate:    stats.ClickRate,
	}, nil
}

// AdminSweep runs every maintenance sweep once.
// @Summary Run maintenance sweeps
// @Tags Notification Admin
// @Security BearerAuth
// @Produce json
// @Success 200 {object} router.successResponse{data=SweepResponse} "Sweep report"
// @Failure 401 {object} router.errorResponse "Unauthorized"
// @Failure 403 {object} router.errorResponse "Forbidden"
// @Failure 500 {object} router.errorResponse "Internal server error"
// @Router /api/v1/admin/notifications/sweep [post]
func (h *HTTPEndpoint) AdminSweep(r *router.Request) (any, error) {
	report, err := h.uc.RunSweeps(r.Context())
	if err != nil {
		return nil, err
	}

	return SweepResponse{
		Scheduled: report.Scheduled,
		Retries:   report.Retries,
		Stuck:     report.Stuck,
		Expired:   report.Expired,
	}, nil
}

// AdminCleanupEndpoints deletes stale push endpoints.
// @Summary Cleanup stale endpoints
// @Tags Notification Admin
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param request body CleanupEndpointsRequest false "Cleanup options"
// @Success 200 {object} router.successResponse{data=CleanupEndpointsResponse} "Removed count"
// @Failure 401 {object} router.errorResponse "Unauthorized"
// @Failure 403 {object} router.errorResponse "Forbidden"
// @Failure 500 {object} router.errorResponse "Internal server error"
// @Router /api/v1/admin/notifications/cleanup-endpoints [post]
func (h *HTTPEndpoint) AdminCleanupEndpoints(r *router.Request) (any, error) {
	var req CleanupEndpointsRequest
	if err := r.DecodeBody(&req); err != nil {
		return nil, err
	}

	removed, err := h.uc.CleanupEndpoints(r.Context(), usecase.CleanupEndpointsInput{StaleDays: req.StaleDays})
	if err != nil {
		return nil, err
	}

	return CleanupEndpointsResponse{Removed: removed}, nil
}
