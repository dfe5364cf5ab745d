package event

const NotificationEngagementDestination string = "notification_engagement"

// NotificationEngagementMessage is published after an engagement write so
// downstream analytics can tail the stream without polling the store.
type NotificationEngagementMessage struct {
	NotificationID int64  `json:"notification_id"`
	UserID         int64  `json:"user_id"`
	Event          string `json:"event"`
	Channel        string `json:"channel,omitempty"`
	OccurredAt     int64  `json:"occurred_at"`
}
