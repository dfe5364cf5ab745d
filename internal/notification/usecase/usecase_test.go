package usecase

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	dirent "github.com/tradekart/notifier/internal/directory/entity"
	"github.com/tradekart/notifier/internal/notification/entity"
	"github.com/tradekart/notifier/internal/notification/outbound/channel"
	"github.com/tradekart/notifier/internal/notification/outbound/db"
	"github.com/tradekart/notifier/internal/pkg/clock"
	"github.com/tradekart/notifier/internal/pkg/config"
	"github.com/tradekart/notifier/internal/pkg/goerror"
	"github.com/tradekart/notifier/internal/pkg/instrument"
	"github.com/tradekart/notifier/internal/pkg/validator"
	"github.com/tradekart/notifier/internal/pkg/valueobject"
)

// memStore is an in-memory repoDB with the same update semantics as the
// postgres implementation.
type memStore struct {
	mu sync.Mutex

	notifications   map[int64]*entity.Notification
	deliveries      map[int64]map[entity.Channel]*entity.ChannelDelivery
	templates       map[int64]*entity.Template
	templatesByName map[string]*entity.Template
	endpoints       map[int64][]string
	invalidated     []string
	inbox           []entity.InboxMessage
	usageBumps      map[int64]int
	stats           *entity.Stats
	staleDeleted    int64
}

func newMemStore() *memStore {
	return &memStore{
		notifications:   map[int64]*entity.Notification{},
		deliveries:      map[int64]map[entity.Channel]*entity.ChannelDelivery{},
		templates:       map[int64]*entity.Template{},
		templatesByName: map[string]*entity.Template{},
		endpoints:       map[int64][]string{},
		usageBumps:      map[int64]int{},
	}
}

func (m *memStore) CreateNotification(_ context.Context, n entity.Notification) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := n
	m.notifications[n.ID] = &cp
	return nil
}

func (m *memStore) GetNotification(_ context.Context, id int64) (*entity.Notification, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	n, ok := m.notifications[id]
	if !ok {
		return nil, goerror.ErrNotFound
	}
	cp := *n
	cp.Deliveries = nil
	for _, d := range m.deliveries[id] {
		cp.Deliveries = append(cp.Deliveries, *d)
	}
	return &cp, nil
}

func (m *memStore) SetStatus(_ context.Context, id int64, to entity.Status) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if n, ok := m.notifications[id]; ok {
		n.Status = to
	}
	return nil
}

func (m *memStore) SetStatusIf(_ context.Context, id int64, to entity.Status, from ...entity.Status) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	n, ok := m.notifications[id]
	if !ok {
		return false, nil
	}
	for _, f := range from {
		if n.Status == f {
			n.Status = to
			return true, nil
		}
	}
	return false, nil
}

func (m *memStore) ListNotifications(_ context.Context, f entity.ListFilter) ([]entity.Notification, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []entity.Notification
	for _, n := range m.notifications {
		if f.Status != entity.StatusUnknown && n.Status != f.Status {
			continue
		}
		out = append(out, *n)
	}
	return out, nil
}

func (m *memStore) SetArchived(_ context.Context, id int64, archived bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if n, ok := m.notifications[id]; ok {
		n.Archived = archived
	}
	return nil
}

func (m *memStore) EnsureDeliveries(_ context.Context, id int64, channels []entity.Channel, ids []int64, now time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	rows := m.deliveries[id]
	if rows == nil {
		rows = map[entity.Channel]*entity.ChannelDelivery{}
		m.deliveries[id] = rows
	}
	for i, ch := range channels {
		if _, ok := rows[ch]; ok {
			continue
		}
		rows[ch] = &entity.ChannelDelivery{
			ID:             ids[i],
			NotificationID: id,
			Channel:        ch,
			State:          entity.DeliveryStatePending,
			UpdatedAt:      now,
		}
	}
	return nil
}

func (m *memStore) ListDeliveries(_ context.Context, id int64) ([]entity.ChannelDelivery, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []entity.ChannelDelivery
	for _, d := range m.deliveries[id] {
		out = append(out, *d)
	}
	return out, nil
}

func (m *memStore) RecordDeliverySuccess(_ context.Context, id int64, ch entity.Channel, state entity.DeliveryState, at time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if d, ok := m.deliveries[id][ch]; ok {
		d.State = state
		d.Error = ""
		d.LastAttempt = &at
		d.NextAttempt = nil
		d.UpdatedAt = at
	}
	return nil
}

func (m *memStore) RecordDeliveryFailure(_ context.Context, id int64, ch entity.Channel, errMsg string, at time.Time, next *time.Time) (int32, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	d, ok := m.deliveries[id][ch]
	if !ok {
		return 0, goerror.ErrNotFound
	}
	d.State = entity.DeliveryStateFailed
	d.Error = errMsg
	d.RetryCount++
	d.LastAttempt = &at
	d.NextAttempt = next
	d.UpdatedAt = at
	return d.RetryCount, nil
}

func (m *memStore) PromoteDeliveryState(_ context.Context, id int64, ch entity.Channel, to entity.DeliveryState, from ...entity.DeliveryState) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	d, ok := m.deliveries[id][ch]
	if !ok {
		return false, nil
	}
	for _, f := range from {
		if d.State == f {
			d.State = to
			return true, nil
		}
	}
	return false, nil
}

func (m *memStore) ListDueRetries(_ context.Context, now time.Time, ceiling int32, limit int32) ([]db.DueRetry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []db.DueRetry
	for id, rows := range m.deliveries {
		for ch, d := range rows {
			if d.State != entity.DeliveryStateFailed || d.NextAttempt == nil {
				continue
			}
			if d.NextAttempt.After(now) || d.RetryCount >= ceiling {
				continue
			}
			out = append(out, db.DueRetry{NotificationID: id, Channel: ch, RetryCount: d.RetryCount})
		}
	}
	return out, nil
}

func (m *memStore) ClaimDueScheduled(_ context.Context, now time.Time, limit int32) ([]int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []int64
	for id, n := range m.notifications {
		if n.Status != entity.StatusScheduled || n.ScheduledTime == nil || n.ScheduledTime.After(now) {
			continue
		}
		n.Status = entity.StatusProcessing
		out = append(out, id)
	}
	return out, nil
}

func (m *memStore) ReadmitStuckProcessing(_ context.Context, cutoff time.Time) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var count int64
	for _, n := range m.notifications {
		if n.Status == entity.StatusProcessing && n.UpdatedAt.Before(cutoff) {
			n.Status = entity.StatusScheduled
			count++
		}
	}
	return count, nil
}

func (m *memStore) ExpireOldNotifications(_ context.Context, cutoff time.Time) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var count int64
	for _, n := range m.notifications {
		if n.Status.Terminal() && n.UpdatedAt.Before(cutoff) {
			n.Status = entity.StatusExpired
			count++
		}
	}
	return count, nil
}

func (m *memStore) GetTemplate(_ context.Context, id int64) (*entity.Template, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if t, ok := m.templates[id]; ok {
		cp := *t
		return &cp, nil
	}
	return nil, goerror.ErrNotFound
}

func (m *memStore) GetTemplateByName(_ context.Context, name string) (*entity.Template, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if t, ok := m.templatesByName[name]; ok {
		cp := *t
		return &cp, nil
	}
	return nil, goerror.ErrNotFound
}

func (m *memStore) BumpTemplateUsage(_ context.Context, id int64, _ time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.usageBumps[id]++
	return nil
}

func (m *memStore) RegisterEndpoint(_ context.Context, e entity.Endpoint) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, t := range m.endpoints[e.UserID] {
		if t == e.Token {
			return nil
		}
	}
	m.endpoints[e.UserID] = append(m.endpoints[e.UserID], e.Token)
	return nil
}

func (m *memStore) UnregisterEndpoint(_ context.Context, userID int64, token string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	tokens := m.endpoints[userID][:0]
	for _, t := range m.endpoints[userID] {
		if t != token {
			tokens = append(tokens, t)
		}
	}
	m.endpoints[userID] = tokens
	return nil
}

func (m *memStore) UnregisterAllEndpoints(_ context.Context, userID int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.endpoints, userID)
	return nil
}

func (m *memStore) InvalidateEndpoints(_ context.Context, tokens []string) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.invalidated = append(m.invalidated, tokens...)
	for uid, ts := range m.endpoints {
		kept := ts[:0]
		for _, t := range ts {
			dead := false
			for _, bad := range tokens {
				if t == bad {
					dead = true
					break
				}
			}
			if !dead {
				kept = append(kept, t)
			}
		}
		m.endpoints[uid] = kept
	}
	return int64(len(tokens)), nil
}

func (m *memStore) ListEndpointsByUsers(_ context.Context, userIDs []int64) (map[int64][]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := map[int64][]string{}
	for _, id := range userIDs {
		if ts := m.endpoints[id]; len(ts) > 0 {
			out[id] = append([]string(nil), ts...)
		}
	}
	return out, nil
}

func (m *memStore) DeleteStaleEndpoints(_ context.Context, _ time.Time) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.staleDeleted, nil
}

func (m *memStore) RecordEngagementOpened(_ context.Context, id int64, at time.Time, suspect bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if n, ok := m.notifications[id]; ok {
		n.Engagement.Opened = true
		if n.Engagement.OpenedAt == nil {
			n.Engagement.OpenedAt = &at
		}
		n.Engagement.Suspect = n.Engagement.Suspect || suspect
	}
	return nil
}

func (m *memStore) RecordEngagementClicked(_ context.Context, id int64, at time.Time, suspect bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if n, ok := m.notifications[id]; ok {
		n.Engagement.Clicked = true
		if n.Engagement.ClickedAt == nil {
			n.Engagement.ClickedAt = &at
		}
		n.Engagement.Suspect = n.Engagement.Suspect || suspect
	}
	return nil
}

func (m *memStore) RecordEngagementAction(_ context.Context, id int64, action string, at time.Time, suspect bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if n, ok := m.notifications[id]; ok {
		n.Engagement.ActionTaken = action
		n.Engagement.ActionAt = &at
		n.Engagement.Suspect = n.Engagement.Suspect || suspect
	}
	return nil
}

func (m *memStore) RecordReadDuration(_ context.Context, id int64, seconds int32, _ time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if n, ok := m.notifications[id]; ok {
		n.Engagement.ReadSeconds = seconds
	}
	return nil
}

func (m *memStore) ListInbox(_ context.Context, userID int64, _, _ int32) ([]entity.InboxMessage, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []entity.InboxMessage
	for _, msg := range m.inbox {
		if msg.UserID == userID {
			out = append(out, msg)
		}
	}
	return out, nil
}

func (m *memStore) MarkInboxRead(_ context.Context, userID, messageID int64, at time.Time) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range m.inbox {
		if m.inbox[i].ID == messageID && m.inbox[i].UserID == userID && m.inbox[i].ReadAt == nil {
			m.inbox[i].ReadAt = &at
			return true, nil
		}
	}
	return false, nil
}

func (m *memStore) GetStats(_ context.Context, _, _ time.Time) (*entity.Stats, error) {
	if m.stats != nil {
		return m.stats, nil
	}
	return &entity.Stats{}, nil
}

func (m *memStore) delivery(id int64, ch entity.Channel) *entity.ChannelDelivery {
	m.mu.Lock()
	defer m.mu.Unlock()
	if d, ok := m.deliveries[id][ch]; ok {
		cp := *d
		return &cp
	}
	return nil
}

type fakeDirectory struct {
	users []dirent.User
	err   error
}

func (f *fakeDirectory) ByIDs(_ context.Context, ids []int64) ([]dirent.User, error) {
	if f.err != nil {
		return nil, f.err
	}
	var out []dirent.User
	for _, u := range f.users {
		for _, id := range ids {
			if u.ID == id {
				out = append(out, u)
			}
		}
	}
	return out, nil
}

func (f *fakeDirectory) ByRole(_ context.Context, _ string) ([]dirent.User, error) {
	return f.users, f.err
}

func (f *fakeDirectory) ByCriteria(_ context.Context, _ valueobject.JSONMap) ([]dirent.User, error) {
	return f.users, f.err
}

type fakeDispatcher struct {
	ch      entity.Channel
	deliver func(rcpt entity.Recipient, content channel.Content) (channel.Outcome, error)
	mu      sync.Mutex
	calls   int
}

func (f *fakeDispatcher) Channel() entity.Channel { return f.ch }

func (f *fakeDispatcher) Deliver(_ context.Context, _ int64, rcpt entity.Recipient, content channel.Content) (channel.Outcome, error) {
	f.mu.Lock()
	f.calls++
	f.mu.Unlock()
	if f.deliver == nil {
		return channel.Outcome{Success: true}, nil
	}
	return f.deliver(rcpt, content)
}

func (f *fakeDispatcher) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

type fakeMQ struct {
	mu     sync.Mutex
	events []EngagementPublishedEvent
}

func (f *fakeMQ) PublishEngagement(_ context.Context, msg EngagementPublishedEvent) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.events = append(f.events, msg)
	return nil
}

type seqID struct {
	mu   sync.Mutex
	next int64
}

func (s *seqID) Generate() int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.next++
	return s.next
}

var testNow = time.Date(2026, 3, 14, 9, 30, 0, 0, time.UTC)

func newTestUsecase(t *testing.T, store *memStore, dir *fakeDirectory, mq *fakeMQ, dispatchers ...channel.Dispatcher) *Usecase {
	t.Helper()

	v, err := validator.NewV10()
	require.NoError(t, err)

	cfg, err := config.NewViperFromBytes("yaml", []byte("modules:\n  notification: {}\n"))
	require.NoError(t, err)

	return NewNotifier(Dependency{
		RepoDB:      store,
		Directory:   dir,
		Dispatchers: channel.NewRegistry(dispatchers...),
		RepoMQ:      mq,
		Config:      cfg,
		UID:         &seqID{next: 1000},
		Clock:       &clock.FixedClocker{Time: testNow},
		Validator:   v,
		Instrument:  instrument.NewNoop(),
	})
}

func seedNotification(store *memStore, id int64, status entity.Status, channels ...entity.Channel) *entity.Notification {
	n := &entity.Notification{
		ID:            id,
		Title:         "Order shipped",
		Body:          "Your order is on the way",
		Type:          entity.TypeOrderStatus,
		Channels:      channels,
		TargetUserIDs: []int64{7},
		Priority:      entity.PriorityMedium,
		Status:        status,
		CreatedAt:     testNow.Add(-time.Hour),
		UpdatedAt:     testNow.Add(-time.Hour),
	}
	store.notifications[id] = n
	return n
}
