package entity

import (
	"time"

	"github.com/tradekart/notifier/internal/pkg/valueobject"
)

// Notification is one delivery job across one or more channels.
type Notification struct {
	ID    int64
	Title string
	Body  string
	Type  Type

	Channels []Channel

	TemplateID        *int64
	TemplateVariables valueobject.JSONMap

	Overrides ContentOverrides

	// Exactly one of the three target fields is authoritative.
	TargetUserIDs  []int64
	TargetRole     TargetRole
	TargetCriteria valueobject.JSONMap

	ScheduledTime  *time.Time
	TimeZone       string
	DeliveryWindow string

	Priority Priority

	RoutingRules        valueobject.JSONMap
	FallbackChannels    []Channel
	RequireConfirmation bool

	Status     Status
	Deliveries []ChannelDelivery
	Engagement EngagementMetrics

	CreatedBy int64
	SenderID  int64
	Archived  bool
	Tags      []string
	Notes     string

	CreatedAt time.Time
	UpdatedAt time.Time
}

// Delivery returns the delivery state for a channel, nil when the
// channel has never been attempted.
func (n *Notification) Delivery(ch Channel) *ChannelDelivery {
	for i := range n.Deliveries {
		if n.Deliveries[i].Channel == ch {
			return &n.Deliveries[i]
		}
	}
	return nil
}

// HasChannel reports whether ch is in the requested channel set.
func (n *Notification) HasChannel(ch Channel) bool {
	for _, c := range n.Channels {
		if c == ch {
			return true
		}
	}
	return false
}

// NextFallback returns the first fallback channel that is neither in the
// requested set nor already attempted, ChannelUnknown when exhausted.
func (n *Notification) NextFallback() Channel {
	for _, fb := range n.FallbackChannels {
		if n.HasChannel(fb) {
			continue
		}
		if n.Delivery(fb) != nil {
			continue
		}
		return fb
	}
	return ChannelUnknown
}

// ChannelDelivery is the per-channel state machine of one notification.
// Each channel owns exactly one row; rows are updated independently so
// concurrent channel completions never clobber each other.
type ChannelDelivery struct {
	ID             int64
	NotificationID int64
	Channel        Channel
	State          DeliveryState
	Error          string
	RetryCount     int32
	LastAttempt    *time.Time
	NextAttempt    *time.Time
	UpdatedAt      time.Time
}

// ContentOverrides are explicit per-channel content fields that win over
// rendered template output.
type ContentOverrides struct {
	EmailSubject string
	EmailBody    string
	SMSMessage   string
	PushTitle    string
	PushBody     string
	PushSound    string
	PushPriority string
	InAppMessage string
	InAppAction  string
}

// EngagementMetrics record post-delivery interaction signals.
type EngagementMetrics struct {
	Opened      bool
	OpenedAt    *time.Time
	Clicked     bool
	ClickedAt   *time.Time
	ActionTaken string
	ActionAt    *time.Time
	ReadSeconds int32
	// Suspect marks engagement recorded while the channel had not
	// reached a delivered state; analytics should treat it as noise.
	Suspect bool
}

// EngagementEvent is one interaction signal against a channel.
type EngagementEvent int16

const (
	EngagementUnknown     EngagementEvent = 0
	EngagementOpened      EngagementEvent = 1
	EngagementClicked     EngagementEvent = 2
	EngagementActionTaken EngagementEvent = 3
)

func EngagementEventFromString(raw string) EngagementEvent {
	switch raw {
	case "opened":
		return EngagementOpened
	case "clicked":
		return EngagementClicked
	case "action_taken":
		return EngagementActionTaken
	default:
		return EngagementUnknown
	}
}

func (e EngagementEvent) String() string {
	switch e {
	case EngagementOpened:
		return "opened"
	case EngagementClicked:
		return "clicked"
	case EngagementActionTaken:
		return "action_taken"
	default:
		return "unknown"
	}
}

// Template is reusable content with {{variable}} placeholders. It is
// immutable at render time; only usage counters change as a side effect.
type Template struct {
	ID            int64
	Name          string
	Category      string
	Channel       Channel
	Subject       string
	Content       string
	Variables     []string
	Defaults      map[string]string
	Version       int32
	UsageCount    int64
	LastUsedAt    *time.Time
	EmailFrom     string
	EmailReplyTo  string
	SMSSenderID   string
	PushSound     string
	PushPriority  string
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// Endpoint is one registered push token for a user. A user may hold
// several concurrent endpoints (multi-device).
type Endpoint struct {
	ID        int64
	UserID    int64
	Token     string
	Platform  string
	DeviceID  string
	UpdatedAt time.Time
}

// Recipient is one resolved delivery target with its usable endpoints.
type Recipient struct {
	UserID     int64
	Email      string
	Phone      string
	PushTokens []string
}

// ListFilter narrows a notification search. Zero values mean "no filter".
type ListFilter struct {
	Status   Status
	Type     Type
	Channel  Channel
	Priority Priority
	From     *time.Time
	To       *time.Time
	Search   string
	Archived *bool
	Limit    int32
	Offset   int32
}

// Stats aggregates delivery and engagement figures over a timeframe.
type Stats struct {
	Total        int64
	ByStatus     map[string]int64
	ByType       map[string]int64
	ByChannel    map[string]int64
	Delivered    int64
	Failed       int64
	Opened       int64
	Clicked      int64
	DeliveryRate float64
	OpenRate     float64
	ClickRate    float64
}

// InboxMessage is an in-app notification as shown to its recipient.
type InboxMessage struct {
	ID             int64
	NotificationID int64
	UserID         int64
	Title          string
	Body           string
	Action         string
	ReadAt         *time.Time
	CreatedAt      time.Time
}
