package usecase

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tradekart/notifier/internal/notification/entity"
)

func seedDelivery(store *memStore, id int64, ch entity.Channel, state entity.DeliveryState) {
	rows := store.deliveries[id]
	if rows == nil {
		rows = map[entity.Channel]*entity.ChannelDelivery{}
		store.deliveries[id] = rows
	}
	rows[ch] = &entity.ChannelDelivery{ID: id*100 + int64(ch), NotificationID: id, Channel: ch, State: state}
}

func TestRecordEngagementOpenedPromotesToRead(t *testing.T) {
	store := newMemStore()
	seedNotification(store, 1, entity.StatusSent, entity.ChannelPush)
	seedDelivery(store, 1, entity.ChannelPush, entity.DeliveryStateSent)
	mq := &fakeMQ{}

	uc := newTestUsecase(t, store, &fakeDirectory{}, mq)

	err := uc.RecordEngagement(context.Background(), EngagementInput{
		NotificationID: 1, Event: "opened", Channel: "push", ReadSeconds: 12,
	})
	require.NoError(t, err)

	assert.Equal(t, entity.DeliveryStateRead, store.delivery(1, entity.ChannelPush).State)

	n := store.notifications[1]
	assert.True(t, n.Engagement.Opened)
	assert.False(t, n.Engagement.Suspect)
	assert.Equal(t, int32(12), n.Engagement.ReadSeconds)
	assert.Equal(t, entity.StatusDelivered, n.Status)

	require.Len(t, mq.events, 1)
	assert.Equal(t, "opened", mq.events[0].Event)
}

func TestRecordEngagementBeforeDeliveryIsSuspect(t *testing.T) {
	store := newMemStore()
	seedNotification(store, 1, entity.StatusProcessing, entity.ChannelPush)
	seedDelivery(store, 1, entity.ChannelPush, entity.DeliveryStatePending)

	uc := newTestUsecase(t, store, &fakeDirectory{}, &fakeMQ{})

	err := uc.RecordEngagement(context.Background(), EngagementInput{
		NotificationID: 1, Event: "opened", Channel: "push",
	})
	require.NoError(t, err)

	assert.Equal(t, entity.DeliveryStatePending, store.delivery(1, entity.ChannelPush).State)
	assert.True(t, store.notifications[1].Engagement.Opened)
	assert.True(t, store.notifications[1].Engagement.Suspect)
}

func TestRecordEngagementClickedPromotesRead(t *testing.T) {
	store := newMemStore()
	seedNotification(store, 1, entity.StatusDelivered, entity.ChannelInApp)
	seedDelivery(store, 1, entity.ChannelInApp, entity.DeliveryStateRead)

	uc := newTestUsecase(t, store, &fakeDirectory{}, &fakeMQ{})

	err := uc.RecordEngagement(context.Background(), EngagementInput{
		NotificationID: 1, Event: "clicked",
	})
	require.NoError(t, err)

	assert.Equal(t, entity.DeliveryStateClicked, store.delivery(1, entity.ChannelInApp).State)
	assert.True(t, store.notifications[1].Engagement.Clicked)
	assert.False(t, store.notifications[1].Engagement.Suspect)
}

func TestRecordEngagementActionRequiresAction(t *testing.T) {
	store := newMemStore()
	seedNotification(store, 1, entity.StatusDelivered, entity.ChannelInApp)
	seedDelivery(store, 1, entity.ChannelInApp, entity.DeliveryStateDelivered)

	uc := newTestUsecase(t, store, &fakeDirectory{}, &fakeMQ{})

	err := uc.RecordEngagement(context.Background(), EngagementInput{
		NotificationID: 1, Event: "action_taken",
	})
	require.Error(t, err)

	err = uc.RecordEngagement(context.Background(), EngagementInput{
		NotificationID: 1, Event: "action_taken", Action: "reorder",
	})
	require.NoError(t, err)
	assert.Equal(t, "reorder", store.notifications[1].Engagement.ActionTaken)
}

func TestRecordEngagementUnknownNotification(t *testing.T) {
	uc := newTestUsecase(t, newMemStore(), &fakeDirectory{}, &fakeMQ{})

	err := uc.RecordEngagement(context.Background(), EngagementInput{
		NotificationID: 42, Event: "opened",
	})
	require.Error(t, err)
	assert.ErrorContains(t, err, "not found")
}

func TestApplyDeliveryReceiptPromotesDelivered(t *testing.T) {
	store := newMemStore()
	seedNotification(store, 1, entity.StatusSent, entity.ChannelEmail)
	seedDelivery(store, 1, entity.ChannelEmail, entity.DeliveryStateSent)

	uc := newTestUsecase(t, store, &fakeDirectory{}, &fakeMQ{})

	err := uc.ApplyDeliveryReceipt(context.Background(), DeliveryReceiptInput{
		NotificationID: 1, Channel: "email", Delivered: true,
	})
	require.NoError(t, err)

	assert.Equal(t, entity.DeliveryStateDelivered, store.delivery(1, entity.ChannelEmail).State)
	assert.Equal(t, entity.StatusDelivered, store.notifications[1].Status)
}

func TestApplyDeliveryReceiptIgnoresLateConfirmation(t *testing.T) {
	store := newMemStore()
	seedNotification(store, 1, entity.StatusDelivered, entity.ChannelEmail)
	seedDelivery(store, 1, entity.ChannelEmail, entity.DeliveryStateClicked)

	uc := newTestUsecase(t, store, &fakeDirectory{}, &fakeMQ{})

	err := uc.ApplyDeliveryReceipt(context.Background(), DeliveryReceiptInput{
		NotificationID: 1, Channel: "email", Delivered: true,
	})
	require.NoError(t, err)

	assert.Equal(t, entity.DeliveryStateClicked, store.delivery(1, entity.ChannelEmail).State)
}

func TestApplyDeliveryReceiptRejectionFailsChannel(t *testing.T) {
	store := newMemStore()
	seedNotification(store, 1, entity.StatusSent, entity.ChannelEmail)
	seedDelivery(store, 1, entity.ChannelEmail, entity.DeliveryStateSent)

	uc := newTestUsecase(t, store, &fakeDirectory{}, &fakeMQ{})

	err := uc.ApplyDeliveryReceipt(context.Background(), DeliveryReceiptInput{
		NotificationID: 1, Channel: "email", Delivered: false, Reason: "mailbox full",
	})
	require.NoError(t, err)

	d := store.delivery(1, entity.ChannelEmail)
	assert.Equal(t, entity.DeliveryStateFailed, d.State)
	assert.Contains(t, d.Error, "mailbox full")
	assert.Equal(t, entity.StatusFailed, store.notifications[1].Status)
}
