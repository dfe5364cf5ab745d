package idempotency

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestTracker(t *testing.T) (*StateTracker, *miniredis.Miniredis) {
	t.Helper()

	srv := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: srv.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	return New(client), srv
}

func TestExecRunsOnceAndRemembersCompletion(t *testing.T) {
	tracker, _ := newTestTracker(t)
	ctx := context.Background()

	runs := 0
	fn := func(context.Context) error {
		runs++
		return nil
	}

	require.NoError(t, tracker.Exec(ctx, "job:1", fn))
	assert.Equal(t, 1, runs)

	err := tracker.Exec(ctx, "job:1", fn)
	assert.ErrorIs(t, err, ErrAlreadyCompleted)
	assert.Equal(t, 1, runs)
}

func TestExecRemembersFailure(t *testing.T) {
	tracker, _ := newTestTracker(t)
	ctx := context.Background()

	boom := errors.New("boom")
	err := tracker.Exec(ctx, "job:2", func(context.Context) error { return boom })
	require.ErrorIs(t, err, boom)

	err = tracker.Exec(ctx, "job:2", func(context.Context) error { return nil })
	assert.ErrorIs(t, err, ErrAlreadyFailed)
}

func TestExecRejectsConcurrentHolder(t *testing.T) {
	tracker, _ := newTestTracker(t)
	ctx := context.Background()

	state, err := tracker.Acquire(ctx, "job:3", time.Minute)
	require.NoError(t, err)
	require.Equal(t, StateNone, state)

	err = tracker.Exec(ctx, "job:3", func(context.Context) error {
		t.Fatal("must not run while the lock is held")
		return nil
	})
	assert.ErrorIs(t, err, ErrAlreadyInProgress)
}

func TestExecRunsAgainAfterStateExpiry(t *testing.T) {
	tracker, srv := newTestTracker(t)
	ctx := context.Background()

	runs := 0
	fn := func(context.Context) error {
		runs++
		return nil
	}

	require.NoError(t, tracker.Exec(ctx, "job:4", fn, WithStateTTL(time.Second)))
	srv.FastForward(2 * time.Second)

	require.NoError(t, tracker.Exec(ctx, "job:4", fn, WithStateTTL(time.Second)))
	assert.Equal(t, 2, runs)
}

func TestAcquireReportsHeldStates(t *testing.T) {
	tracker, _ := newTestTracker(t)
	ctx := context.Background()

	state, err := tracker.Acquire(ctx, "job:5", time.Minute)
	require.NoError(t, err)
	assert.Equal(t, StateNone, state)

	state, err = tracker.Acquire(ctx, "job:5", time.Minute)
	require.NoError(t, err)
	assert.Equal(t, StateInProgress, state)

	require.NoError(t, tracker.MarkCompleted(ctx, "job:5", time.Minute))

	state, err = tracker.Acquire(ctx, "job:5", time.Minute)
	require.NoError(t, err)
	assert.Equal(t, StateCompleted, state)
}
