package entity

import "strings"

// Status is the overall lifecycle status of a notification job.
type Status int16

const (
	StatusUnknown    Status = 0
	StatusDraft      Status = 1
	StatusScheduled  Status = 2
	StatusProcessing Status = 3
	StatusPending    Status = 4
	StatusSent       Status = 5
	// StatusPartiallySent exists for stored records written by older
	// tooling; DeriveStatus never produces it.
	StatusPartiallySent Status = 6
	StatusFailed        Status = 7
	StatusDelivered     Status = 8
	StatusExpired       Status = 9
	StatusCancelled     Status = 10
)

func StatusFromString(raw string) Status {
	switch strings.TrimSpace(raw) {
	case "draft":
		return StatusDraft
	case "scheduled":
		return StatusScheduled
	case "processing":
		return StatusProcessing
	case "pending":
		return StatusPending
	case "sent":
		return StatusSent
	case "partially_sent":
		return StatusPartiallySent
	case "failed":
		return StatusFailed
	case "delivered":
		return StatusDelivered
	case "expired":
		return StatusExpired
	case "cancelled":
		return StatusCancelled
	default:
		return StatusUnknown
	}
}

func (s Status) String() string {
	switch s {
	case StatusDraft:
		return "draft"
	case StatusScheduled:
		return "scheduled"
	case StatusProcessing:
		return "processing"
	case StatusPending:
		return "pending"
	case StatusSent:
		return "sent"
	case StatusPartiallySent:
		return "partially_sent"
	case StatusFailed:
		return "failed"
	case StatusDelivered:
		return "delivered"
	case StatusExpired:
		return "expired"
	case StatusCancelled:
		return "cancelled"
	default:
		return "unknown"
	}
}

// Cancellable reports whether the job may still be cancelled. Once
// processing has begun, in-flight attempts run to completion.
func (s Status) Cancellable() bool {
	return s == StatusDraft || s == StatusScheduled
}

// Terminal reports whether the job has reached a final status and is
// eligible for the retention sweep.
func (s Status) Terminal() bool {
	switch s {
	case StatusSent, StatusPartiallySent, StatusFailed, StatusDelivered, StatusCancelled:
		return true
	default:
		return false
	}
}

// DeliveryState is the per-channel delivery status.
type DeliveryState int16

const (
	DeliveryStateUnknown   DeliveryState = 0
	DeliveryStatePending   DeliveryState = 1
	DeliveryStateSent      DeliveryState = 2
	DeliveryStateDelivered DeliveryState = 3
	DeliveryStateFailed    DeliveryState = 4
	DeliveryStateRead      DeliveryState = 5
	DeliveryStateClicked   DeliveryState = 6
)

func DeliveryStateFromString(raw string) DeliveryState {
	switch strings.TrimSpace(raw) {
	case "pending":
		return DeliveryStatePending
	case "sent":
		return DeliveryStateSent
	case "delivered":
		return DeliveryStateDelivered
	case "failed":
		return DeliveryStateFailed
	case "read":
		return DeliveryStateRead
	case "clicked":
		return DeliveryStateClicked
	default:
		return DeliveryStateUnknown
	}
}

func (s DeliveryState) String() string {
	switch s {
	case DeliveryStatePending:
		return "pending"
	case DeliveryStateSent:
		return "sent"
	case DeliveryStateDelivered:
		return "delivered"
	case DeliveryStateFailed:
		return "failed"
	case DeliveryStateRead:
		return "read"
	case DeliveryStateClicked:
		return "clicked"
	default:
		return "unknown"
	}
}

// DeriveStatus folds per-channel states into the overall status using
// the fixed precedence failed > delivered > sent > pending. The order is
// load-bearing: a single failed channel wins over any delivered one, and
// downstream consumers depend on that exact precedence. Read and clicked
// count as delivered since engagement implies the channel got through.
func DeriveStatus(states []DeliveryState) Status {
	anyDelivered := false
	anySent := false

	for _, st := range states {
		switch st {
		case DeliveryStateFailed:
			return StatusFailed
		case DeliveryStateDelivered, DeliveryStateRead, DeliveryStateClicked:
			anyDelivered = true
		case DeliveryStateSent:
			anySent = true
		}
	}

	if anyDelivered {
		return StatusDelivered
	}
	if anySent {
		return StatusSent
	}
	return StatusPending
}
