package usecase

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	dirent "github.com/tradekart/notifier/internal/directory/entity"
	"github.com/tradekart/notifier/internal/notification/entity"
)

func TestSweepScheduledDispatchesDue(t *testing.T) {
	store := newMemStore()

	due := seedNotification(store, 1, entity.StatusScheduled, entity.ChannelEmail)
	at := testNow.Add(-time.Minute)
	due.ScheduledTime = &at

	future := seedNotification(store, 2, entity.StatusScheduled, entity.ChannelEmail)
	later := testNow.Add(time.Hour)
	future.ScheduledTime = &later

	dir := &fakeDirectory{users: []dirent.User{{ID: 7, Email: "ana@example.com"}}}
	email := &fakeDispatcher{ch: entity.ChannelEmail}
	uc := newTestUsecase(t, store, dir, &fakeMQ{}, email)

	count, err := uc.SweepScheduled(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 1, count)
	assert.Equal(t, entity.StatusSent, store.notifications[1].Status)
	assert.Equal(t, entity.StatusScheduled, store.notifications[2].Status)
	assert.Equal(t, 1, email.callCount())
}

func TestSweepRetriesRedispatchesFailedChannel(t *testing.T) {
	store := newMemStore()
	seedNotification(store, 1, entity.StatusFailed, entity.ChannelEmail)
	past := testNow.Add(-time.Minute)
	store.deliveries[1] = map[entity.Channel]*entity.ChannelDelivery{
		entity.ChannelEmail: {
			ID: 50, NotificationID: 1, Channel: entity.ChannelEmail,
			State: entity.DeliveryStateFailed, RetryCount: 2, NextAttempt: &past,
		},
	}

	dir := &fakeDirectory{users: []dirent.User{{ID: 7, Email: "ana@example.com"}}}
	email := &fakeDispatcher{ch: entity.ChannelEmail}
	uc := newTestUsecase(t, store, dir, &fakeMQ{}, email)

	count, err := uc.SweepRetries(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 1, count)
	assert.Equal(t, entity.DeliveryStateSent, store.delivery(1, entity.ChannelEmail).State)
	assert.Equal(t, entity.StatusSent, store.notifications[1].Status)
}

func TestSweepRetriesSkipsExhaustedAndUndue(t *testing.T) {
	store := newMemStore()
	seedNotification(store, 1, entity.StatusFailed, entity.ChannelEmail)
	past := testNow.Add(-time.Minute)
	later := testNow.Add(time.Hour)
	store.deliveries[1] = map[entity.Channel]*entity.ChannelDelivery{
		entity.ChannelEmail: {
			ID: 50, NotificationID: 1, Channel: entity.ChannelEmail,
			State: entity.DeliveryStateFailed, RetryCount: 5, NextAttempt: &past,
		},
	}
	seedNotification(store, 2, entity.StatusFailed, entity.ChannelSMS)
	store.deliveries[2] = map[entity.Channel]*entity.ChannelDelivery{
		entity.ChannelSMS: {
			ID: 51, NotificationID: 2, Channel: entity.ChannelSMS,
			State: entity.DeliveryStateFailed, RetryCount: 1, NextAttempt: &later,
		},
	}

	uc := newTestUsecase(t, store, &fakeDirectory{}, &fakeMQ{})

	count, err := uc.SweepRetries(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 0, count)
}

func TestSweepStuckReadmitsAbandoned(t *testing.T) {
	store := newMemStore()
	stuck := seedNotification(store, 1, entity.StatusProcessing, entity.ChannelEmail)
	stuck.UpdatedAt = testNow.Add(-time.Hour)

	fresh := seedNotification(store, 2, entity.StatusProcessing, entity.ChannelEmail)
	fresh.UpdatedAt = testNow.Add(-time.Minute)

	uc := newTestUsecase(t, store, &fakeDirectory{}, &fakeMQ{})

	count, err := uc.SweepStuck(context.Background())
	require.NoError(t, err)

	assert.Equal(t, int64(1), count)
	assert.Equal(t, entity.StatusScheduled, store.notifications[1].Status)
	assert.Equal(t, entity.StatusProcessing, store.notifications[2].Status)
}

func TestSweepRetentionExpiresTerminal(t *testing.T) {
	store := newMemStore()
	old := seedNotification(store, 1, entity.StatusDelivered, entity.ChannelEmail)
	old.UpdatedAt = testNow.Add(-120 * 24 * time.Hour)

	recent := seedNotification(store, 2, entity.StatusDelivered, entity.ChannelEmail)
	recent.UpdatedAt = testNow.Add(-24 * time.Hour)

	active := seedNotification(store, 3, entity.StatusProcessing, entity.ChannelEmail)
	active.UpdatedAt = testNow.Add(-120 * 24 * time.Hour)

	uc := newTestUsecase(t, store, &fakeDirectory{}, &fakeMQ{})

	count, err := uc.SweepRetention(context.Background())
	require.NoError(t, err)

	assert.Equal(t, int64(1), count)
	assert.Equal(t, entity.StatusExpired, store.notifications[1].Status)
	assert.Equal(t, entity.StatusDelivered, store.notifications[2].Status)
	assert.Equal(t, entity.StatusProcessing, store.notifications[3].Status)
}

func TestRunSweepsAggregatesReport(t *testing.T) {
	store := newMemStore()
	due := seedNotification(store, 1, entity.StatusScheduled, entity.ChannelEmail)
	at := testNow.Add(-time.Minute)
	due.ScheduledTime = &at

	dir := &fakeDirectory{users: []dirent.User{{ID: 7, Email: "ana@example.com"}}}
	uc := newTestUsecase(t, store, dir, &fakeMQ{}, &fakeDispatcher{ch: entity.ChannelEmail})

	report, err := uc.RunSweeps(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, report.Scheduled)
	assert.Equal(t, 0, report.Retries)
}
