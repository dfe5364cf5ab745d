package channel

import (
	"context"

	"github.com/sony/gobreaker"
	"github.com/tradekart/notifier/internal/notification/entity"
	"github.com/tradekart/notifier/internal/pkg/breaker"
	"github.com/tradekart/notifier/internal/pkg/instrument"
	"github.com/tradekart/notifier/internal/pkg/smsgw"
)

// SMS delivers over the HTTP SMS gateway.
type SMS struct {
	gw  smsgw.Sender
	cb  *gobreaker.CircuitBreaker
	ins instrument.Instrumentation
}

func NewSMS(gw smsgw.Sender, ins instrument.Instrumentation) *SMS {
	return &SMS{
		gw:  gw,
		cb:  breaker.New("gateway.sms"),
		ins: ins,
	}
}

func (s *SMS) Channel() entity.Channel { return entity.ChannelSMS }

func (s *SMS) Deliver(ctx context.Context, notificationID int64, rcpt entity.Recipient, content Content) (Outcome, error) {
	ctx, span := s.ins.Tracer("notification.outbound.channel").Start(ctx, "SMS.Deliver")
	defer span.End()

	if rcpt.Phone == "" {
		return Outcome{}, ErrNoEndpoint
	}

	_, err := s.cb.Execute(func() (any, error) {
		return s.gw.Send(ctx, smsgw.Message{
			To:     rcpt.Phone,
			Body:   content.Body,
			Sender: content.Sender,
		})
	})
	if err != nil {
		return Outcome{Error: err.Error()}, nil
	}

	return Outcome{Success: true}, nil
}
