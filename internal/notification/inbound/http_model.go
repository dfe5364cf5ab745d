package inbound

import (
	"time"

	"github.com/tradekart/notifier/internal/notification/entity"
	"github.com/tradekart/notifier/internal/pkg/valueobject"
)

type CreateNotificationRequest struct {
	Title string `json:"title"`
	Body  string `json:"body"`
	Type  string `json:"type"`

	Channels []string `json:"channels"`

	TemplateID        *int64            `json:"template_id,omitempty"`
	TemplateName      string            `json:"template_name,omitempty"`
	TemplateVariables map[string]string `json:"template_variables,omitempty"`

	Overrides ContentOverridesModel `json:"overrides"`

	TargetUserIDs  []int64             `json:"target_user_ids,omitempty"`
	TargetRole     string              `json:"target_role,omitempty"`
	TargetCriteria valueobject.JSONMap `json:"target_criteria,omitempty" swaggertype:"object"`

	ScheduledTime  *time.Time `json:"scheduled_time,omitempty"`
	TimeZone       string     `json:"time_zone,omitempty"`
	DeliveryWindow string     `json:"delivery_window,omitempty"`

	Priority string `json:"priority,omitempty"`

	RoutingRules        valueobject.JSONMap `json:"routing_rules,omitempty" swaggertype:"object"`
	FallbackChannels    []string            `json:"fallback_channels,omitempty"`
	RequireConfirmation bool                `json:"require_confirmation,omitempty"`

	Tags  []string `json:"tags,omitempty"`
	Notes string   `json:"notes,omitempty"`
	Draft bool     `json:"draft,omitempty"`
}

type ContentOverridesModel struct {
	EmailSubject string `json:"email_subject,omitempty"`
	EmailBody    string `json:"email_body,omitempty"`
	SMSMessage   string `json:"sms_message,omitempty"`
	PushTitle    string `json:"push_title,omitempty"`
	PushBody     string `json:"push_body,omitempty"`
	PushSound    string `json:"push_sound,omitempty"`
	PushPriority string `json:"push_priority,omitempty"`
	InAppMessage string `json:"in_app_message,omitempty"`
	InAppAction  string `json:"in_app_action,omitempty"`
}

func (m ContentOverridesModel) toEntity() entity.ContentOverrides {
	return entity.ContentOverrides{
		EmailSubject: m.EmailSubject,
		EmailBody:    m.EmailBody,
		SMSMessage:   m.SMSMessage,
		PushTitle:    m.PushTitle,
		PushBody:     m.PushBody,
		PushSound:    m.PushSound,
		PushPriority: m.PushPriority,
		InAppMessage: m.InAppMessage,
		InAppAction:  m.InAppAction,
	}
}

type CreateNotificationResponse struct {
	ID     int64  `json:"id,string"`
	Status string `json:"status"`
}

type ChannelDeliveryResponse struct {
	Channel     string     `json:"channel"`
	State       string     `json:"state"`
	Error       string     `json:"error,omitempty"`
	RetryCount  int32      `json:"retry_count"`
	LastAttempt *time.Time `json:"last_attempt,omitempty"`
	NextAttempt *time.Time `json:"next_attempt,omitempty"`
}

type EngagementResponse struct {
	Opened      bool       `json:"opened"`
	OpenedAt    *time.Time `json:"opened_at,omitempty"`
	Clicked     bool       `json:"clicked"`
	ClickedAt   *time.Time `json:"clicked_at,omitempty"`
	ActionTaken string     `json:"action_taken,omitempty"`
	ActionAt    *time.Time `json:"action_at,omitempty"`
	ReadSeconds int32      `json:"read_seconds,omitempty"`
	Suspect     bool       `json:"suspect,omitempty"`
}

type NotificationResponse struct {
	ID             int64                     `json:"id,string"`
	Title          string                    `json:"title"`
	Body           string                    `json:"body"`
	Type           string                    `json:"type"`
	Channels       []string                  `json:"channels"`
	Priority       string                    `json:"priority"`
	Status         string                    `json:"status"`
	ScheduledTime  *time.Time                `json:"scheduled_time,omitempty"`
	Deliveries     []ChannelDeliveryResponse `json:"deliveries,omitempty"`
	Engagement     EngagementResponse        `json:"engagement"`
	Archived       bool                      `json:"archived,omitempty"`
	Tags           []string                  `json:"tags,omitempty"`
	CreatedAt      time.Time                 `json:"created_at"`
	UpdatedAt      time.Time                 `json:"updated_at"`
}

func newNotificationResponse(n *entity.Notification) NotificationResponse {
	channels := make([]string, 0, len(n.Channels))
	for _, ch := range n.Channels {
		channels = append(channels, ch.String())
	}

	deliveries := make([]ChannelDeliveryResponse, 0, len(n.Deliveries))
	for _, d := range n.Deliveries {
		deliveries = append(deliveries, ChannelDeliveryResponse{
			Channel:     d.Channel.String(),
			State:       d.State.String(),
			Error:       d.Error,
			RetryCount:  d.RetryCount,
			LastAttempt: d.LastAttempt,
			NextAttempt: d.NextAttempt,
		})
	}

	return NotificationResponse{
		ID:            n.ID,
		Title:         n.Title,
		Body:          n.Body,
		Type:          n.Type.String(),
		Channels:      channels,
		Priority:      n.Priority.String(),
		Status:        n.Status.String(),
		ScheduledTime: n.ScheduledTime,
		Deliveries:    deliveries,
		Engagement: EngagementResponse{
			Opened:      n.Engagement.Opened,
			OpenedAt:    n.Engagement.OpenedAt,
			Clicked:     n.Engagement.Clicked,
			ClickedAt:   n.Engagement.ClickedAt,
			ActionTaken: n.Engagement.ActionTaken,
			ActionAt:    n.Engagement.ActionAt,
			ReadSeconds: n.Engagement.ReadSeconds,
			Suspect:     n.Engagement.Suspect,
		},
		Archived:  n.Archived,
		Tags:      n.Tags,
		CreatedAt: n.CreatedAt,
		UpdatedAt: n.UpdatedAt,
	}
}

type NotificationsResponse struct {
	Notifications []NotificationResponse `json:"notifications"`
}

type EngagementRequest struct {
	Event       string `json:"event"`
	Channel     string `json:"channel,omitempty"`
	Action      string `json:"action,omitempty"`
	ReadSeconds int32  `json:"read_seconds,omitempty"`
}

type RegisterDeviceRequest struct {
	Token    string `json:"token"`
	Platform string `json:"platform"`
	DeviceID string `json:"device_id,omitempty"`
}

type UnregisterDeviceRequest struct {
	Token string `json:"token,omitempty"`
	All   bool   `json:"all,omitempty"`
}

type InboxMessageResponse struct {
	ID             int64      `json:"id,string"`
	NotificationID int64      `json:"notification_id,string"`
	Title          string     `json:"title"`
	Body           string     `json:"body"`
	Action         string     `json:"action,omitempty"`
	ReadAt         *time.Time `json:"read_at,omitempty"`
	CreatedAt      time.Time  `json:"created_at"`
}

type InboxResponse struct {
	Messages []InboxMessageResponse `json:"messages"`
}

type StatsResponse struct {
	Total        int64            `json:"total"`
	ByStatus     map[string]int64 `json:"by_status"`
	ByType       map[string]int64 `json:"by_type"`
	ByChannel    map[string]int64 `json:"by_channel"`
	Delivered    int64            `json:"delivered"`
	Failed       int64            `json:"failed"`
	Opened       int64            `json:"opened"`
	Clicked      int64            `json:"clicked"`
	DeliveryRate float64          `json:"delivery_rate"`
	OpenRate     float64          `json:"open_rate"`
	ClickRate    float64          `json:"click_rate"`
}

type SweepResponse struct {
	Scheduled int   `json:"scheduled"`
	Retries   int   `json:"retries"`
	Stuck     int64 `json:"stuck"`
	Expired   int64 `json:"expired"`
}

type CleanupEndpointsRequest struct {
	StaleDays int32 `json:"stale_days,omitempty"`
}

type CleanupEndpointsResponse struct {
	Removed int64 `json:"removed"`
}

type ArchiveRequest struct {
	Archived bool `json:"archived"`
}
