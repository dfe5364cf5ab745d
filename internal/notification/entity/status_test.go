package entity

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDeriveStatus(t *testing.T) {
	tests := []struct {
		name   string
		states []DeliveryState
		want   Status
	}{
		{
			name:   "empty set is pending",
			states: nil,
			want:   StatusPending,
		},
		{
			name:   "all pending",
			states: []DeliveryState{DeliveryStatePending, DeliveryStatePending},
			want:   StatusPending,
		},
		{
			name:   "sent beats pending",
			states: []DeliveryState{DeliveryStatePending, DeliveryStateSent},
			want:   StatusSent,
		},
		{
			name:   "delivered beats sent",
			states: []DeliveryState{DeliveryStateSent, DeliveryStateDelivered},
			want:   StatusDelivered,
		},
		{
			name:   "failed beats delivered",
			states: []DeliveryState{DeliveryStateDelivered, DeliveryStateFailed},
			want:   StatusFailed,
		},
		{
			name:   "one failed one sent",
			states: []DeliveryState{DeliveryStateSent, DeliveryStateFailed},
			want:   StatusFailed,
		},
		{
			name:   "read counts as delivered",
			states: []DeliveryState{DeliveryStateRead, DeliveryStateSent},
			want:   StatusDelivered,
		},
		{
			name:   "clicked counts as delivered",
			states: []DeliveryState{DeliveryStateClicked},
			want:   StatusDelivered,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, DeriveStatus(tt.states))
		})
	}
}

func TestDeriveStatusNeverProducesPartiallySent(t *testing.T) {
	all := []DeliveryState{
		DeliveryStatePending, DeliveryStateSent, DeliveryStateDelivered,
		DeliveryStateFailed, DeliveryStateRead, DeliveryStateClicked,
	}

	for _, a := range all {
		for _, b := range all {
			assert.NotEqual(t, StatusPartiallySent, DeriveStatus([]DeliveryState{a, b}))
		}
	}
}

func TestStatusCancellable(t *testing.T) {
	assert.True(t, StatusDraft.Cancellable())
	assert.True(t, StatusScheduled.Cancellable())
	assert.False(t, StatusProcessing.Cancellable())
	assert.False(t, StatusSent.Cancellable())
	assert.False(t, StatusFailed.Cancellable())
}

func TestNextFallback(t *testing.T) {
	n := &Notification{
		Channels:         []Channel{ChannelPush},
		FallbackChannels: []Channel{ChannelPush, ChannelEmail, ChannelSMS},
		Deliveries: []ChannelDelivery{
			{Channel: ChannelPush, State: DeliveryStateFailed},
		},
	}

	// Push is a requested channel, so email is the first usable fallback.
	assert.Equal(t, ChannelEmail, n.NextFallback())

	n.Deliveries = append(n.Deliveries, ChannelDelivery{Channel: ChannelEmail, State: DeliveryStateFailed})
	assert.Equal(t, ChannelSMS, n.NextFallback())

	n.Deliveries = append(n.Deliveries, ChannelDelivery{Channel: ChannelSMS, State: DeliveryStateFailed})
	assert.Equal(t, ChannelUnknown, n.NextFallback())
}

func TestEnumRoundTrips(t *testing.T) {
	for _, ch := range []Channel{ChannelEmail, ChannelSMS, ChannelPush, ChannelInApp} {
		assert.Equal(t, ch, ChannelFromString(ch.String()))
	}

	for _, st := range []Status{
		StatusDraft, StatusScheduled, StatusProcessing, StatusPending, StatusSent,
		StatusPartiallySent, StatusFailed, StatusDelivered, StatusExpired, StatusCancelled,
	} {
		assert.Equal(t, st, StatusFromString(st.String()))
	}

	for _, ds := range []DeliveryState{
		DeliveryStatePending, DeliveryStateSent, DeliveryStateDelivered,
		DeliveryStateFailed, DeliveryStateRead, DeliveryStateClicked,
	} {
		assert.Equal(t, ds, DeliveryStateFromString(ds.String()))
	}
}
