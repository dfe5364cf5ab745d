package usecase

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	dirent "github.com/tradekart/notifier/internal/directory/entity"
	"github.com/tradekart/notifier/internal/notification/entity"
	"github.com/tradekart/notifier/internal/notification/outbound/channel"
)

func TestSendDeliversAllChannels(t *testing.T) {
	store := newMemStore()
	seedNotification(store, 1, entity.StatusPending, entity.ChannelEmail, entity.ChannelInApp)
	dir := &fakeDirectory{users: []dirent.User{{ID: 7, Email: "ana@example.com"}}}

	email := &fakeDispatcher{ch: entity.ChannelEmail}
	inapp := &fakeDispatcher{ch: entity.ChannelInApp, deliver: func(entity.Recipient, channel.Content) (channel.Outcome, error) {
		return channel.Outcome{Success: true, Delivered: true}, nil
	}}

	uc := newTestUsecase(t, store, dir, &fakeMQ{}, email, inapp)

	n, err := uc.Send(context.Background(), SendInput{ID: 1})
	require.NoError(t, err)

	assert.Equal(t, entity.StatusDelivered, n.Status)
	assert.Equal(t, entity.DeliveryStateSent, store.delivery(1, entity.ChannelEmail).State)
	assert.Equal(t, entity.DeliveryStateDelivered, store.delivery(1, entity.ChannelInApp).State)
	assert.Equal(t, 1, email.callCount())
}

func TestSendFailedChannelWinsOverall(t *testing.T) {
	store := newMemStore()
	seedNotification(store, 1, entity.StatusPending, entity.ChannelPush, entity.ChannelEmail)
	store.endpoints[7] = []string{"tok-1"}
	dir := &fakeDirectory{users: []dirent.User{{ID: 7, Email: "ana@example.com"}}}

	push := &fakeDispatcher{ch: entity.ChannelPush, deliver: func(entity.Recipient, channel.Content) (channel.Outcome, error) {
		return channel.Outcome{Success: true, Delivered: true, TokenResults: map[string]bool{"tok-1": true}}, nil
	}}
	email := &fakeDispatcher{ch: entity.ChannelEmail, deliver: func(entity.Recipient, channel.Content) (channel.Outcome, error) {
		return channel.Outcome{Error: "smtp connect refused"}, nil
	}}

	uc := newTestUsecase(t, store, dir, &fakeMQ{}, push, email)

	n, err := uc.Send(context.Background(), SendInput{ID: 1})
	require.NoError(t, err)

	assert.Equal(t, entity.StatusFailed, n.Status)

	d := store.delivery(1, entity.ChannelEmail)
	assert.Equal(t, entity.DeliveryStateFailed, d.State)
	assert.Equal(t, "smtp connect refused", d.Error)
	assert.Equal(t, int32(1), d.RetryCount)
	require.NotNil(t, d.NextAttempt)
	assert.Equal(t, testNow.Add(30*time.Second), *d.NextAttempt)

	assert.Equal(t, entity.DeliveryStateDelivered, store.delivery(1, entity.ChannelPush).State)
}

func TestSendEscalatesToFallbackAfterExhaustion(t *testing.T) {
	store := newMemStore()
	n := seedNotification(store, 1, entity.StatusFailed, entity.ChannelEmail)
	n.FallbackChannels = []entity.Channel{entity.ChannelSMS}
	store.deliveries[1] = map[entity.Channel]*entity.ChannelDelivery{
		entity.ChannelEmail: {
			ID: 50, NotificationID: 1, Channel: entity.ChannelEmail,
			State: entity.DeliveryStateFailed, RetryCount: 4,
		},
	}
	dir := &fakeDirectory{users: []dirent.User{{ID: 7, Email: "ana@example.com", Phone: "+6281111"}}}

	email := &fakeDispatcher{ch: entity.ChannelEmail, deliver: func(entity.Recipient, channel.Content) (channel.Outcome, error) {
		return channel.Outcome{Error: "smtp connect refused"}, nil
	}}
	sms := &fakeDispatcher{ch: entity.ChannelSMS}

	uc := newTestUsecase(t, store, dir, &fakeMQ{}, email, sms)

	_, err := uc.Send(context.Background(), SendInput{ID: 1})
	require.NoError(t, err)

	d := store.delivery(1, entity.ChannelEmail)
	assert.Equal(t, int32(5), d.RetryCount)
	assert.Nil(t, d.NextAttempt)

	require.NotNil(t, store.delivery(1, entity.ChannelSMS))
	assert.Equal(t, entity.DeliveryStateSent, store.delivery(1, entity.ChannelSMS).State)
	assert.Equal(t, 1, sms.callCount())
}

func TestSendEmptyAudienceCompletes(t *testing.T) {
	store := newMemStore()
	seedNotification(store, 1, entity.StatusPending, entity.ChannelEmail)
	dir := &fakeDirectory{}

	email := &fakeDispatcher{ch: entity.ChannelEmail}
	uc := newTestUsecase(t, store, dir, &fakeMQ{}, email)

	n, err := uc.Send(context.Background(), SendInput{ID: 1})
	require.NoError(t, err)

	assert.Equal(t, entity.StatusSent, n.Status)
	assert.Equal(t, 0, email.callCount())
}

func TestSendPrunesInvalidPushTokens(t *testing.T) {
	store := newMemStore()
	seedNotification(store, 1, entity.StatusPending, entity.ChannelPush)
	store.endpoints[7] = []string{"tok-live", "tok-dead"}
	dir := &fakeDirectory{users: []dirent.User{{ID: 7}}}

	push := &fakeDispatcher{ch: entity.ChannelPush, deliver: func(entity.Recipient, channel.Content) (channel.Outcome, error) {
		return channel.Outcome{
			Success:       true,
			Delivered:     true,
			TokenResults:  map[string]bool{"tok-live": true, "tok-dead": false},
			InvalidTokens: []string{"tok-dead"},
		}, nil
	}}

	uc := newTestUsecase(t, store, dir, &fakeMQ{}, push)

	_, err := uc.Send(context.Background(), SendInput{ID: 1})
	require.NoError(t, err)

	assert.Equal(t, []string{"tok-dead"}, store.invalidated)
	assert.Equal(t, []string{"tok-live"}, store.endpoints[7])
}

func TestSendSkippedRecipientIsNotFailure(t *testing.T) {
	store := newMemStore()
	seedNotification(store, 1, entity.StatusPending, entity.ChannelEmail)
	dir := &fakeDirectory{users: []dirent.User{
		{ID: 7, Email: "ana@example.com"},
		{ID: 8},
	}}

	email := &fakeDispatcher{ch: entity.ChannelEmail, deliver: func(rcpt entity.Recipient, _ channel.Content) (channel.Outcome, error) {
		if rcpt.Email == "" {
			return channel.Outcome{}, channel.ErrNoEndpoint
		}
		return channel.Outcome{Success: true}, nil
	}}

	uc := newTestUsecase(t, store, dir, &fakeMQ{}, email)

	n, err := uc.Send(context.Background(), SendInput{ID: 1})
	require.NoError(t, err)

	assert.Equal(t, entity.StatusSent, n.Status)
	assert.Equal(t, entity.DeliveryStateSent, store.delivery(1, entity.ChannelEmail).State)
}

func TestSendRejectsUnsendableStatus(t *testing.T) {
	store := newMemStore()
	seedNotification(store, 1, entity.StatusDelivered, entity.ChannelEmail)

	uc := newTestUsecase(t, store, &fakeDirectory{}, &fakeMQ{})

	_, err := uc.Send(context.Background(), SendInput{ID: 1})
	require.Error(t, err)
	assert.ErrorContains(t, err, "not sendable")
}

func TestSendNotFound(t *testing.T) {
	uc := newTestUsecase(t, newMemStore(), &fakeDirectory{}, &fakeMQ{})

	_, err := uc.Send(context.Background(), SendInput{ID: 99})
	require.Error(t, err)
	assert.ErrorContains(t, err, "not found")
}

func TestSendRendersTemplateWithOverrides(t *testing.T) {
	store := newMemStore()
	n := seedNotification(store, 1, entity.StatusPending, entity.ChannelEmail, entity.ChannelSMS)
	tplID := int64(9)
	n.TemplateID = &tplID
	n.TemplateVariables = map[string]any{"name": "Ana"}
	n.Overrides.SMSMessage = "Short form for SMS"
	store.templates[9] = &entity.Template{
		ID:           9,
		Name:         "order_shipped",
		Subject:      "Hi {{name}}",
		Content:      "Hello {{name}}, your order shipped",
		Variables:    []string{"name"},
		EmailFrom:    "orders@tradekart.io",
		EmailReplyTo: "orders-replies@tradekart.io",
		SMSSenderID:  "TRADEKART",
	}
	dir := &fakeDirectory{users: []dirent.User{{ID: 7, Email: "ana@example.com", Phone: "+62812"}}}

	var emailContent, smsContent channel.Content
	email := &fakeDispatcher{ch: entity.ChannelEmail, deliver: func(_ entity.Recipient, c channel.Content) (channel.Outcome, error) {
		emailContent = c
		return channel.Outcome{Success: true}, nil
	}}
	sms := &fakeDispatcher{ch: entity.ChannelSMS, deliver: func(_ entity.Recipient, c channel.Content) (channel.Outcome, error) {
		smsContent = c
		return channel.Outcome{Success: true}, nil
	}}

	uc := newTestUsecase(t, store, dir, &fakeMQ{}, email, sms)

	_, err := uc.Send(context.Background(), SendInput{ID: 1})
	require.NoError(t, err)

	assert.Equal(t, "Hi Ana", emailContent.Subject)
	assert.Equal(t, "Hello Ana, your order shipped", emailContent.Body)
	assert.Equal(t, "orders@tradekart.io", emailContent.From)
	assert.Equal(t, "orders-replies@tradekart.io", emailContent.ReplyTo)
	assert.Equal(t, "Short form for SMS", smsContent.Body)
	assert.Equal(t, "TRADEKART", smsContent.Sender)
	assert.Equal(t, 1, store.usageBumps[9])
}

func TestSendDirectoryErrorSurfaces(t *testing.T) {
	store := newMemStore()
	seedNotification(store, 1, entity.StatusPending, entity.ChannelEmail)
	dir := &fakeDirectory{err: errors.New("directory down")}

	uc := newTestUsecase(t, store, dir, &fakeMQ{}, &fakeDispatcher{ch: entity.ChannelEmail})

	_, err := uc.Send(context.Background(), SendInput{ID: 1})
	require.Error(t, err)
}
