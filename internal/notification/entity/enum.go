package entity

import "strings"

type Channel int16

const (
	ChannelUnknown Channel = 0
	ChannelEmail   Channel = 1
	ChannelSMS     Channel = 2
	ChannelPush    Channel = 3
	ChannelInApp   Channel = 4
)

func ChannelFromString(raw string) Channel {
	switch strings.TrimSpace(raw) {
	case "email":
		return ChannelEmail
	case "sms":
		return ChannelSMS
	case "push":
		return ChannelPush
	case "in_app":
		return ChannelInApp
	default:
		return ChannelUnknown
	}
}

func (c Channel) String() string {
	switch c {
	case ChannelEmail:
		return "email"
	case ChannelSMS:
		return "sms"
	case ChannelPush:
		return "push"
	case ChannelInApp:
		return "in_app"
	default:
		return "unknown"
	}
}

func ChannelsFromStrings(raw []string) []Channel {
	out := make([]Channel, 0, len(raw))
	for _, r := range raw {
		if ch := ChannelFromString(r); ch != ChannelUnknown {
			out = append(out, ch)
		}
	}
	return out
}

type Type int16

const (
	TypeUnknown          Type = 0
	TypeSystem           Type = 1
	TypeOrderStatus      Type = 2
	TypeNewMessage       Type = 3
	TypeProductAvailable Type = 4
	TypeRFQResponse      Type = 5
	TypePromotion        Type = 6
	TypeMaintenance      Type = 7
	TypeAlert            Type = 8
	TypeSecurity         Type = 9
)

func TypeFromString(raw string) Type {
	switch strings.TrimSpace(raw) {
	case "system":
		return TypeSystem
	case "order_status":
		return TypeOrderStatus
	case "new_message":
		return TypeNewMessage
	case "product_available":
		return TypeProductAvailable
	case "rfq_response":
		return TypeRFQResponse
	case "promotion":
		return TypePromotion
	case "maintenance":
		return TypeMaintenance
	case "alert":
		return TypeAlert
	case "security":
		return TypeSecurity
	default:
		return TypeUnknown
	}
}

func (t Type) String() string {
	switch t {
	case TypeSystem:
		return "system"
	case TypeOrderStatus:
		return "order_status"
	case TypeNewMessage:
		return "new_message"
	case TypeProductAvailable:
		return "product_available"
	case TypeRFQResponse:
		return "rfq_response"
	case TypePromotion:
		return "promotion"
	case TypeMaintenance:
		return "maintenance"
	case TypeAlert:
		return "alert"
	case TypeSecurity:
		return "security"
	default:
		return "unknown"
	}
}

type Priority int16

const (
	PriorityUnknown  Priority = 0
	PriorityLow      Priority = 1
	PriorityMedium   Priority = 2
	PriorityHigh     Priority = 3
	PriorityCritical Priority = 4
)

func PriorityFromString(raw string) Priority {
	switch strings.TrimSpace(raw) {
	case "low":
		return PriorityLow
	case "medium":
		return PriorityMedium
	case "high":
		return PriorityHigh
	case "critical":
		return PriorityCritical
	default:
		return PriorityUnknown
	}
}

func (p Priority) String() string {
	switch p {
	case PriorityLow:
		return "low"
	case PriorityMedium:
		return "medium"
	case PriorityHigh:
		return "high"
	case PriorityCritical:
		return "critical"
	default:
		return "unknown"
	}
}

type TargetRole int16

const (
	TargetRoleUnknown  TargetRole = 0
	TargetRoleCustomer TargetRole = 1
	TargetRoleSupplier TargetRole = 2
	TargetRoleAdmin    TargetRole = 3
	TargetRoleAll      TargetRole = 4
)

func TargetRoleFromString(raw string) TargetRole {
	switch strings.TrimSpace(raw) {
	case "customer":
		return TargetRoleCustomer
	case "supplier":
		return TargetRoleSupplier
	case "admin":
		return TargetRoleAdmin
	case "all":
		return TargetRoleAll
	default:
		return TargetRoleUnknown
	}
}

func (r TargetRole) String() string {
	switch r {
	case TargetRoleCustomer:
		return "customer"
	case TargetRoleSupplier:
		return "supplier"
	case TargetRoleAdmin:
		return "admin"
	case TargetRoleAll:
		return "all"
	default:
		return "unknown"
	}
}
