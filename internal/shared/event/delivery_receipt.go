package event

const DeliveryReceiptDestination string = "notification_delivery_receipt"
const DeliveryReceiptConsumerNotification string = "notification_delivery_receipt_notification"

// DeliveryReceiptMessage is published by gateway webhook bridges when a
// provider confirms or rejects a message after the initial handoff.
type DeliveryReceiptMessage struct {
	NotificationID int64  `json:"notification_id"`
	Channel        string `json:"channel"`
	Delivered      bool   `json:"delivered"`
	Reason         string `json:"reason,omitempty"`
	OccurredAt     int64  `json:"occurred_at"`
}
