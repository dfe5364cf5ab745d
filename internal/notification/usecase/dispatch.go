package usecase

import (
	"context"
	"log/slog"
	"sync"
	"time"

	dirent "github.com/tradekart/notifier/internal/directory/entity"
	"github.com/tradekart/notifier/internal/notification/entity"
	"github.com/tradekart/notifier/internal/notification/outbound/channel"
	"github.com/tradekart/notifier/internal/notification/render"
)

// channelResult is the aggregated outcome of one channel fanned out over
// every recipient.
type channelResult struct {
	channel       entity.Channel
	attempted     bool
	success       bool
	delivered     bool
	errMsg        string
	invalidTokens []string
}

// dispatch runs the full delivery pipeline for one notification that has
// already been moved to processing. Channel failures are recorded as
// delivery state, never returned; the error return is reserved for
// pipeline-level faults such as a vanished record.
func (s *Usecase) dispatch(ctx context.Context, id int64) error {
	ctx, span := s.startSpan(ctx, "dispatch")
	defer span.End()

	n, err := s.repoDB.GetNotification(ctx, id)
	if err != nil {
		return err
	}

	recipients, err := s.resolveRecipients(ctx, n)
	if err != nil {
		return err
	}

	rendered, tpl := s.renderContent(ctx, n)

	now := s.clock.Now()
	ids := make([]int64, len(n.Channels))
	for i := range ids {
		ids[i] = s.uid.Generate()
	}
	if err := s.repoDB.EnsureDeliveries(ctx, id, n.Channels, ids, now); err != nil {
		return err
	}

	attempt := n.Channels
	for len(attempt) > 0 {
		results := s.fanOut(ctx, n, attempt, recipients, rendered, tpl)
		attempt = s.settleResults(ctx, n, results)
	}

	deliveries, err := s.repoDB.ListDeliveries(ctx, id)
	if err != nil {
		return err
	}
	states := make([]entity.DeliveryState, 0, len(deliveries))
	for _, d := range deliveries {
		states = append(states, d.State)
	}
	if err := s.repoDB.SetStatus(ctx, id, entity.DeriveStatus(states)); err != nil {
		return err
	}

	if tpl != nil {
		if err := s.repoDB.BumpTemplateUsage(ctx, tpl.ID, s.clock.Now()); err != nil {
			slog.ErrorContext(ctx, "failed to repo bump template usage", "template_id", tpl.ID, "error", err)
		}
	}

	return nil
}

// fanOut delivers the given channels in parallel. Channels are
// independent; one blocking gateway never stalls the others.
func (s *Usecase) fanOut(
	ctx context.Context,
	n *entity.Notification,
	channels []entity.Channel,
	recipients []entity.Recipient,
	rendered render.Rendered,
	tpl *entity.Template,
) []channelResult {
	results := make([]channelResult, len(channels))

	var wg sync.WaitGroup
	for i, ch := range channels {
		wg.Add(1)
		go func(i int, ch entity.Channel) {
			defer wg.Done()
			results[i] = s.deliverChannel(ctx, n, ch, recipients, s.contentFor(ch, n, rendered, tpl))
		}(i, ch)
	}
	wg.Wait()

	return results
}

// deliverChannel sends to every recipient over one channel and folds the
// per-recipient outcomes into one channel verdict.
func (s *Usecase) deliverChannel(
	ctx context.Context,
	n *entity.Notification,
	ch entity.Channel,
	recipients []entity.Recipient,
	content channel.Content,
) channelResult {
	res := channelResult{channel: ch}

	d := s.dispatchers.Get(ch)
	if d == nil {
		res.attempted = true
		res.errMsg = "no dispatcher registered for channel " + ch.String()
		return res
	}

	allDelivered := true
	anyFailed := false
	for _, rcpt := range recipients {
		out, err := d.Deliver(ctx, n.ID, rcpt, content)
		if err != nil {
			// Unusable recipient for this channel, for example no push
			// endpoint. Skipped, not failed.
			slog.WarnContext(ctx, "recipient skipped for channel",
				"notification_id", n.ID, "channel", ch.String(), "user_id", rcpt.UserID, "reason", err)
			continue
		}

		res.attempted = true
		res.invalidTokens = append(res.invalidTokens, out.InvalidTokens...)

		if out.Success {
			res.success = true
			if !out.Delivered {
				allDelivered = false
			}
			continue
		}

		anyFailed = true
		if res.errMsg == "" {
			res.errMsg = out.Error
		}
	}

	res.delivered = res.success && allDelivered && !anyFailed
	if !res.success && res.errMsg == "" && res.attempted {
		res.errMsg = "delivery failed for all recipients"
	}

	return res
}

// settleResults persists each channel verdict and returns the fallback
// channels to attempt next. A channel escalates only once its retry
// budget is spent.
func (s *Usecase) settleResults(ctx context.Context, n *entity.Notification, results []channelResult) []entity.Channel {
	now := s.clock.Now()
	var escalations []entity.Channel

	for _, res := range results {
		if len(res.invalidTokens) > 0 {
			if _, err := s.repoDB.InvalidateEndpoints(ctx, res.invalidTokens); err != nil {
				slog.ErrorContext(ctx, "failed to repo invalidate endpoints",
					"notification_id", n.ID, "count", len(res.invalidTokens), "error", err)
			}
		}

		if !res.attempted {
			// Nobody reachable on this channel. Nothing sent, nothing
			// failed; close the row out so the job can finish.
			if err := s.repoDB.RecordDeliverySuccess(ctx, n.ID, res.channel, entity.DeliveryStateSent, now); err != nil {
				slog.ErrorContext(ctx, "failed to repo record empty-audience delivery",
					"notification_id", n.ID, "channel", res.channel.String(), "error", err)
			}
			continue
		}

		if res.success {
			state := entity.DeliveryStateSent
			if res.delivered {
				state = entity.DeliveryStateDelivered
			}
			if err := s.repoDB.RecordDeliverySuccess(ctx, n.ID, res.channel, state, now); err != nil {
				slog.ErrorContext(ctx, "failed to repo record delivery success",
					"notification_id", n.ID, "channel", res.channel.String(), "error", err)
			}
			continue
		}

		fb := s.recordFailure(ctx, n, res.channel, res.errMsg)
		if fb != entity.ChannelUnknown {
			escalations = append(escalations, fb)
		}
	}

	if len(escalations) == 0 {
		return nil
	}

	ids := make([]int64, len(escalations))
	for i := range ids {
		ids[i] = s.uid.Generate()
	}
	if err := s.repoDB.EnsureDeliveries(ctx, n.ID, escalations, ids, now); err != nil {
		slog.ErrorContext(ctx, "failed to repo ensure fallback deliveries", "notification_id", n.ID, "error", err)
		return nil
	}

	// Track attempted channels so NextFallback does not hand out the
	// same escalation twice.
	for _, fb := range escalations {
		n.Deliveries = append(n.Deliveries, entity.ChannelDelivery{NotificationID: n.ID, Channel: fb})
	}

	return escalations
}

// recordFailure writes the failure with its backoff schedule and returns
// the fallback channel to escalate to, ChannelUnknown when the channel
// still has retries left or no fallback remains.
func (s *Usecase) recordFailure(ctx context.Context, n *entity.Notification, ch entity.Channel, errMsg string) entity.Channel {
	now := s.clock.Now()

	attempt := int32(1)
	if d := n.Delivery(ch); d != nil {
		attempt = d.RetryCount + 1
	}

	var next *time.Time
	if attempt < s.retryCeiling() {
		t := now.Add(s.backoffDelay(attempt))
		next = &t
	}

	retryCount, err := s.repoDB.RecordDeliveryFailure(ctx, n.ID, ch, errMsg, now, next)
	if err != nil {
		slog.ErrorContext(ctx, "failed to repo record delivery failure",
			"notification_id", n.ID, "channel", ch.String(), "error", err)
		return entity.ChannelUnknown
	}

	if retryCount < s.retryCeiling() {
		return entity.ChannelUnknown
	}

	slog.WarnContext(ctx, "channel retries exhausted",
		"notification_id", n.ID, "channel", ch.String(), "retry_count", retryCount)

	return n.NextFallback()
}

// resolveRecipients expands the targeting mode into concrete recipients
// with their push endpoints attached. An empty audience is a valid
// resolution, not an error.
func (s *Usecase) resolveRecipients(ctx context.Context, n *entity.Notification) ([]entity.Recipient, error) {
	var (
		users []dirent.User
		err   error
	)

	switch {
	case len(n.TargetUserIDs) > 0:
		users, err = s.directory.ByIDs(ctx, n.TargetUserIDs)
	case n.TargetRole != entity.TargetRoleUnknown:
		users, err = s.directory.ByRole(ctx, n.TargetRole.String())
	case len(n.TargetCriteria) > 0:
		users, err = s.directory.ByCriteria(ctx, n.TargetCriteria)
	}
	if err != nil {
		return nil, err
	}
	if len(users) == 0 {
		return nil, nil
	}

	var tokens map[int64][]string
	if s.needsPush(n) {
		ids := make([]int64, 0, len(users))
		for _, u := range users {
			ids = append(ids, u.ID)
		}
		tokens, err = s.repoDB.ListEndpointsByUsers(ctx, ids)
		if err != nil {
			return nil, err
		}
	}

	recipients := make([]entity.Recipient, 0, len(users))
	for _, u := range users {
		recipients = append(recipients, entity.Recipient{
			UserID:     u.ID,
			Email:      u.Email,
			Phone:      u.Phone,
			PushTokens: tokens[u.ID],
		})
	}

	return recipients, nil
}

func (s *Usecase) needsPush(n *entity.Notification) bool {
	if n.HasChannel(entity.ChannelPush) {
		return true
	}
	for _, fb := range n.FallbackChannels {
		if fb == entity.ChannelPush {
			return true
		}
	}
	return false
}

// renderContent loads and renders the referenced template. A missing or
// broken template degrades to the notification's own title and body.
func (s *Usecase) renderContent(ctx context.Context, n *entity.Notification) (render.Rendered, *entity.Template) {
	if n.TemplateID == nil {
		return render.Rendered{Subject: n.Title, Body: n.Body}, nil
	}

	tpl, err := s.repoDB.GetTemplate(ctx, *n.TemplateID)
	if err != nil {
		slog.WarnContext(ctx, "template unavailable, using notification content",
			"notification_id", n.ID, "template_id", *n.TemplateID, "error", err)
		return render.Rendered{Subject: n.Title, Body: n.Body}, nil
	}

	vars := make(map[string]string, len(n.TemplateVariables))
	for k, v := range n.TemplateVariables {
		if str, ok := v.(string); ok {
			vars[k] = str
		}
	}

	out := render.Render(tpl, vars)
	if out.Subject == "" {
		out.Subject = n.Title
	}
	if out.Body == "" {
		out.Body = n.Body
	}

	return out, tpl
}

// contentFor assembles the concrete content for one channel. Explicit
// per-channel overrides always win over rendered template output.
func (s *Usecase) contentFor(ch entity.Channel, n *entity.Notification, rendered render.Rendered, tpl *entity.Template) channel.Content {
	c := channel.Content{
		Subject: rendered.Subject,
		Title:   rendered.Subject,
		Body:    rendered.Body,
	}
	if tpl != nil {
		c.Sound = tpl.PushSound
		c.Priority = tpl.PushPriority
		c.From = tpl.EmailFrom
		c.ReplyTo = tpl.EmailReplyTo
		c.Sender = tpl.SMSSenderID
	}

	ov := n.Overrides
	switch ch {
	case entity.ChannelEmail:
		if ov.EmailSubject != "" {
			c.Subject = ov.EmailSubject
		}
		if ov.EmailBody != "" {
			c.Body = ov.EmailBody
		}
	case entity.ChannelSMS:
		if ov.SMSMessage != "" {
			c.Body = ov.SMSMessage
		}
	case entity.ChannelPush:
		if ov.PushTitle != "" {
			c.Title = ov.PushTitle
		}
		if ov.PushBody != "" {
			c.Body = ov.PushBody
		}
		if ov.PushSound != "" {
			c.Sound = ov.PushSound
		}
		if ov.PushPriority != "" {
			c.Priority = ov.PushPriority
		}
	case entity.ChannelInApp:
		if ov.InAppMessage != "" {
			c.Body = ov.InAppMessage
		}
		if ov.InAppAction != "" {
			c.Action = ov.InAppAction
		}
	}

	return c
}
