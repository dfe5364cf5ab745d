package channel

import (
	"context"
	"strconv"

	"github.com/sony/gobreaker"
	"github.com/tradekart/notifier/internal/notification/entity"
	"github.com/tradekart/notifier/internal/pkg/breaker"
	"github.com/tradekart/notifier/internal/pkg/instrument"
	"github.com/tradekart/notifier/internal/pkg/pushgw"
)

// Push delivers to all of a recipient's device tokens in one batched
// gateway call and reports the per-token outcome.
type Push struct {
	gw  pushgw.Sender
	cb  *gobreaker.CircuitBreaker
	ins instrument.Instrumentation
}

func NewPush(gw pushgw.Sender, ins instrument.Instrumentation) *Push {
	return &Push{
		gw:  gw,
		cb:  breaker.New("gateway.push"),
		ins: ins,
	}
}

func (p *Push) Channel() entity.Channel { return entity.ChannelPush }

func (p *Push) Deliver(ctx context.Context, notificationID int64, rcpt entity.Recipient, content Content) (Outcome, error) {
	ctx, span := p.ins.Tracer("notification.outbound.channel").Start(ctx, "Push.Deliver")
	defer span.End()

	if len(rcpt.PushTokens) == 0 {
		return Outcome{}, ErrNoEndpoint
	}

	data := map[string]string{
		"notification_id": strconv.FormatInt(notificationID, 10),
	}
	if content.Action != "" {
		data["action"] = content.Action
	}
	if content.Sound != "" {
		data["sound"] = content.Sound
	}
	if content.Priority != "" {
		data["priority"] = content.Priority
	}

	res, err := p.cb.Execute(func() (any, error) {
		return p.gw.Send(ctx, pushgw.Batch{
			Tokens: rcpt.PushTokens,
			Title:  content.Title,
			Body:   content.Body,
			Data:   data,
		})
	})
	if err != nil {
		return Outcome{Error: err.Error()}, nil
	}

	results, _ := res.([]pushgw.Result)

	out := Outcome{TokenResults: make(map[string]bool, len(results))}
	var firstReason string
	for _, r := range results {
		out.TokenResults[r.Token] = r.Accepted
		if r.Accepted {
			out.Success = true
			out.Delivered = true
		} else if firstReason == "" {
			firstReason = r.Reason
		}
		if r.Unregistered {
			out.InvalidTokens = append(out.InvalidTokens, r.Token)
		}
	}
	if !out.Success {
		out.Error = firstReason
		if out.Error == "" {
			out.Error = "all push tokens rejected"
		}
	}

	return out, nil
}
