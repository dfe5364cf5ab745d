package channel

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tradekart/notifier/internal/notification/entity"
	"github.com/tradekart/notifier/internal/pkg/instrument"
	"github.com/tradekart/notifier/internal/pkg/mail"
	"github.com/tradekart/notifier/internal/pkg/pushgw"
	"github.com/tradekart/notifier/internal/pkg/smsgw"
)

type fakeMail struct {
	sent []mail.Message
	err  error
}

func (f *fakeMail) Send(_ context.Context, msg mail.Message) error {
	if f.err != nil {
		return f.err
	}
	f.sent = append(f.sent, msg)
	return nil
}

func (f *fakeMail) Close() error { return nil }

type fakePushGW struct {
	results []pushgw.Result
	err     error
}

func (f *fakePushGW) Send(context.Context, pushgw.Batch) ([]pushgw.Result, error) {
	return f.results, f.err
}

func (f *fakePushGW) Close() error { return nil }

type fakeSMSGW struct {
	sent []smsgw.Message
	err  error
}

func (f *fakeSMSGW) Send(_ context.Context, msg smsgw.Message) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	f.sent = append(f.sent, msg)
	return "sms-1", nil
}

func (f *fakeSMSGW) Close() error { return nil }

type fakeInbox struct {
	rows int
	err  error
}

func (f *fakeInbox) CreateInboxMessage(context.Context, int64, int64, string, string, string) error {
	if f.err != nil {
		return f.err
	}
	f.rows++
	return nil
}

func TestEmailDeliver(t *testing.T) {
	fm := &fakeMail{}
	d := NewEmail(fm, EmailConfig{From: "noreply@tradekart.io"}, instrument.NewNoop())

	out, err := d.Deliver(context.Background(), 1, entity.Recipient{Email: "ana@example.com"}, Content{
		Subject: "Order shipped",
		Body:    "Your order shipped",
	})
	require.NoError(t, err)
	assert.True(t, out.Success)
	assert.False(t, out.Delivered)
	require.Len(t, fm.sent, 1)
	assert.Equal(t, []string{"ana@example.com"}, fm.sent[0].To)
	assert.Equal(t, "Order shipped", fm.sent[0].Subject)
	assert.Equal(t, "noreply@tradekart.io", fm.sent[0].From)
}

func TestEmailDeliverTemplateSenderWins(t *testing.T) {
	fm := &fakeMail{}
	d := NewEmail(fm, EmailConfig{From: "noreply@tradekart.io", ReplyTo: "support@tradekart.io"}, instrument.NewNoop())

	_, err := d.Deliver(context.Background(), 1, entity.Recipient{Email: "ana@example.com"}, Content{
		Subject: "Order shipped",
		Body:    "Your order shipped",
		From:    "orders@tradekart.io",
		ReplyTo: "orders-replies@tradekart.io",
	})
	require.NoError(t, err)
	require.Len(t, fm.sent, 1)
	assert.Equal(t, "orders@tradekart.io", fm.sent[0].From)
	assert.Equal(t, "orders-replies@tradekart.io", fm.sent[0].ReplyTo)
}

func TestEmailDeliverNoEndpoint(t *testing.T) {
	d := NewEmail(&fakeMail{}, EmailConfig{}, instrument.NewNoop())

	_, err := d.Deliver(context.Background(), 1, entity.Recipient{}, Content{})
	assert.ErrorIs(t, err, ErrNoEndpoint)
}

func TestEmailDeliverGatewayFailureIsOutcome(t *testing.T) {
	d := NewEmail(&fakeMail{err: errors.New("smtp down")}, EmailConfig{}, instrument.NewNoop())

	out, err := d.Deliver(context.Background(), 1, entity.Recipient{Email: "a@b.c"}, Content{})
	require.NoError(t, err)
	assert.False(t, out.Success)
	assert.Contains(t, out.Error, "smtp down")
}

func TestSMSDeliver(t *testing.T) {
	gw := &fakeSMSGW{}
	d := NewSMS(gw, instrument.NewNoop())

	out, err := d.Deliver(context.Background(), 1, entity.Recipient{Phone: "+628111"}, Content{Body: "hi", Sender: "TRADEKART"})
	require.NoError(t, err)
	assert.True(t, out.Success)
	require.Len(t, gw.sent, 1)
	assert.Equal(t, "+628111", gw.sent[0].To)
	assert.Equal(t, "TRADEKART", gw.sent[0].Sender)

	_, err = d.Deliver(context.Background(), 1, entity.Recipient{}, Content{})
	assert.ErrorIs(t, err, ErrNoEndpoint)
}

func TestPushDeliverPerTokenResults(t *testing.T) {
	gw := &fakePushGW{results: []pushgw.Result{
		{Token: "tok-a", Accepted: false, Reason: "unregistered", Unregistered: true},
		{Token: "tok-b", Accepted: true, MessageID: "m-1"},
	}}
	d := NewPush(gw, instrument.NewNoop())

	out, err := d.Deliver(context.Background(), 7, entity.Recipient{PushTokens: []string{"tok-a", "tok-b"}}, Content{
		Title: "t", Body: "b",
	})
	require.NoError(t, err)

	assert.True(t, out.Success)
	assert.True(t, out.Delivered)
	assert.Equal(t, map[string]bool{"tok-a": false, "tok-b": true}, out.TokenResults)
	assert.Equal(t, []string{"tok-a"}, out.InvalidTokens)
}

func TestPushDeliverAllRejected(t *testing.T) {
	gw := &fakePushGW{results: []pushgw.Result{
		{Token: "tok-a", Accepted: false, Reason: "quota"},
	}}
	d := NewPush(gw, instrument.NewNoop())

	out, err := d.Deliver(context.Background(), 7, entity.Recipient{PushTokens: []string{"tok-a"}}, Content{})
	require.NoError(t, err)
	assert.False(t, out.Success)
	assert.Equal(t, "quota", out.Error)
}

func TestInAppDeliver(t *testing.T) {
	inbox := &fakeInbox{}
	d := NewInApp(inbox, instrument.NewNoop())

	out, err := d.Deliver(context.Background(), 3, entity.Recipient{UserID: 9}, Content{Subject: "s", Body: "b"})
	require.NoError(t, err)
	assert.True(t, out.Success)
	assert.True(t, out.Delivered)
	assert.Equal(t, 1, inbox.rows)
}

func TestRegistryLookup(t *testing.T) {
	email := NewEmail(&fakeMail{}, EmailConfig{}, instrument.NewNoop())
	push := NewPush(&fakePushGW{}, instrument.NewNoop())
	reg := NewRegistry(email, push)

	assert.Same(t, email, reg.Get(entity.ChannelEmail).(*Email))
	assert.Same(t, push, reg.Get(entity.ChannelPush).(*Push))
	assert.Nil(t, reg.Get(entity.ChannelSMS))
}
