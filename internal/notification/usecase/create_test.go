package usecase

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	dirent "github.com/tradekart/notifier/internal/directory/entity"
	"github.com/tradekart/notifier/internal/notification/entity"
	"github.com/tradekart/notifier/internal/pkg/jwt"
)

func authCtx(userID int64, roles ...string) context.Context {
	return jwt.SetAuth(context.Background(), jwt.Claims{UserID: userID, Roles: roles})
}

func TestCreateDraftIsNotDispatched(t *testing.T) {
	store := newMemStore()
	email := &fakeDispatcher{ch: entity.ChannelEmail}
	uc := newTestUsecase(t, store, &fakeDirectory{}, &fakeMQ{}, email)

	out, err := uc.Create(authCtx(3), CreateInput{
		Title:         "Maintenance window",
		Body:          "We will be down for an hour.",
		Type:          "maintenance",
		Channels:      []string{"email"},
		TargetUserIDs: []int64{7},
		Draft:         true,
	})
	require.NoError(t, err)

	assert.Equal(t, entity.StatusDraft, out.Status)
	assert.Equal(t, 0, email.callCount())
	assert.Equal(t, int64(3), store.notifications[out.ID].CreatedBy)
}

func TestCreateFutureScheduleParks(t *testing.T) {
	store := newMemStore()
	email := &fakeDispatcher{ch: entity.ChannelEmail}
	uc := newTestUsecase(t, store, &fakeDirectory{}, &fakeMQ{}, email)

	at := testNow.Add(2 * time.Hour)
	out, err := uc.Create(authCtx(3), CreateInput{
		Title:         "Flash sale",
		Body:          "Everything half off at noon.",
		Type:          "promotion",
		Channels:      []string{"email"},
		TargetUserIDs: []int64{7},
		ScheduledTime: &at,
	})
	require.NoError(t, err)

	assert.Equal(t, entity.StatusScheduled, out.Status)
	assert.Equal(t, 0, email.callCount())
}

func TestCreateImmediateDispatches(t *testing.T) {
	store := newMemStore()
	dir := &fakeDirectory{users: []dirent.User{{ID: 7, Email: "ana@example.com"}}}
	email := &fakeDispatcher{ch: entity.ChannelEmail}
	uc := newTestUsecase(t, store, dir, &fakeMQ{}, email)

	out, err := uc.Create(authCtx(3), CreateInput{
		Title:         "Order confirmed",
		Body:          "Your order is on its way.",
		Type:          "order_status",
		Channels:      []string{"email"},
		TargetUserIDs: []int64{7},
	})
	require.NoError(t, err)

	assert.Equal(t, entity.StatusSent, out.Status)
	assert.Equal(t, 1, email.callCount())
}

func TestCreateRejectsAmbiguousTargets(t *testing.T) {
	uc := newTestUsecase(t, newMemStore(), &fakeDirectory{}, &fakeMQ{})

	cases := []CreateInput{
		{Title: "x", Body: "y", Type: "system", Channels: []string{"email"}},
		{Title: "x", Body: "y", Type: "system", Channels: []string{"email"}, TargetUserIDs: []int64{1}, TargetRole: "customer"},
		{Title: "x", Body: "y", Type: "system", Channels: []string{"email"}, TargetRole: "nobody"},
	}
	for _, in := range cases {
		_, err := uc.Create(context.Background(), in)
		require.Error(t, err)
	}
}

func TestCreateRejectsUnknownType(t *testing.T) {
	uc := newTestUsecase(t, newMemStore(), &fakeDirectory{}, &fakeMQ{})

	_, err := uc.Create(context.Background(), CreateInput{
		Title:         "x",
		Body:          "y",
		Type:          "carrier_pigeon",
		Channels:      []string{"email"},
		TargetUserIDs: []int64{1},
	})
	require.Error(t, err)
}

func TestCreateResolvesTemplateByName(t *testing.T) {
	store := newMemStore()
	store.templatesByName["welcome"] = &entity.Template{ID: 42, Name: "welcome"}
	store.templates[42] = store.templatesByName["welcome"]
	uc := newTestUsecase(t, store, &fakeDirectory{}, &fakeMQ{})

	out, err := uc.Create(authCtx(3), CreateInput{
		Title:         "Welcome",
		Body:          "Glad to have you here.",
		Type:          "system",
		Channels:      []string{"email"},
		TargetUserIDs: []int64{7},
		TemplateName:  "welcome",
		Draft:         true,
	})
	require.NoError(t, err)

	require.NotNil(t, store.notifications[out.ID].TemplateID)
	assert.Equal(t, int64(42), *store.notifications[out.ID].TemplateID)
}

func TestCancelOnlyDraftAndScheduled(t *testing.T) {
	store := newMemStore()
	seedNotification(store, 1, entity.StatusScheduled, entity.ChannelEmail)
	seedNotification(store, 2, entity.StatusProcessing, entity.ChannelEmail)

	uc := newTestUsecase(t, store, &fakeDirectory{}, &fakeMQ{})

	require.NoError(t, uc.Cancel(context.Background(), CancelInput{ID: 1}))
	assert.Equal(t, entity.StatusCancelled, store.notifications[1].Status)

	err := uc.Cancel(context.Background(), CancelInput{ID: 2})
	require.Error(t, err)
	assert.Equal(t, entity.StatusProcessing, store.notifications[2].Status)
}

func TestCreateRequiresBody(t *testing.T) {
	store := newMemStore()
	uc := newTestUsecase(t, store, &fakeDirectory{}, &fakeMQ{})

	_, err := uc.Create(authCtx(3), CreateInput{
		Title:         "No content",
		Type:          "system",
		Channels:      []string{"email"},
		TargetUserIDs: []int64{7},
	})
	require.Error(t, err)
	assert.Empty(t, store.notifications)
}

func TestCreateRejectsUnknownTemplateID(t *testing.T) {
	store := newMemStore()
	uc := newTestUsecase(t, store, &fakeDirectory{}, &fakeMQ{})

	missing := int64(9999)
	_, err := uc.Create(authCtx(3), CreateInput{
		Title:         "Welcome",
		Body:          "Glad to have you here.",
		Type:          "system",
		Channels:      []string{"email"},
		TargetUserIDs: []int64{7},
		TemplateID:    &missing,
		Draft:         true,
	})
	require.Error(t, err)
	assert.Empty(t, store.notifications)
}
