package channel

import (
	"context"
	"errors"

	"github.com/sony/gobreaker"
	"github.com/tradekart/notifier/internal/notification/entity"
	"github.com/tradekart/notifier/internal/pkg/breaker"
	"github.com/tradekart/notifier/internal/pkg/instrument"
	"github.com/tradekart/notifier/internal/pkg/mail"
)

// ErrNoEndpoint is returned when a recipient has no usable endpoint for
// the channel; the caller skips that recipient instead of failing.
var ErrNoEndpoint = errors.New("channel: recipient has no usable endpoint")

// Email delivers over SMTP through the shared mail client.
type Email struct {
	mailer  mail.Mail
	from    string
	replyTo string
	cb      *gobreaker.CircuitBreaker
	ins     instrument.Instrumentation
}

// EmailConfig configures the email dispatcher.
type EmailConfig struct {
	From    string
	ReplyTo string
}

func NewEmail(mailer mail.Mail, cfg EmailConfig, ins instrument.Instrumentation) *Email {
	return &Email{
		mailer:  mailer,
		from:    cfg.From,
		replyTo: cfg.ReplyTo,
		cb:      breaker.New("gateway.email"),
		ins:     ins,
	}
}

func (e *Email) Channel() entity.Channel { return entity.ChannelEmail }

func (e *Email) Deliver(ctx context.Context, notificationID int64, rcpt entity.Recipient, content Content) (Outcome, error) {
	ctx, span := e.ins.Tracer("notification.outbound.channel").Start(ctx, "Email.Deliver")
	defer span.End()

	if rcpt.Email == "" {
		return Outcome{}, ErrNoEndpoint
	}

	from := e.from
	if content.From != "" {
		from = content.From
	}
	replyTo := e.replyTo
	if content.ReplyTo != "" {
		replyTo = content.ReplyTo
	}

	_, err := e.cb.Execute(func() (any, error) {
		return nil, e.mailer.Send(ctx, mail.Message{
			From:     from,
			ReplyTo:  replyTo,
			To:       []string{rcpt.Email},
			Subject:  content.Subject,
			TextBody: content.Body,
		})
	})
	if err != nil {
		return Outcome{Error: err.Error()}, nil
	}

	// SMTP gives acceptance only; delivery receipts come in later
	// through the receipt consumer.
	return Outcome{Success: true}, nil
}
