package usecase

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegisterDeviceIsIdempotent(t *testing.T) {
	store := newMemStore()
	uc := newTestUsecase(t, store, &fakeDirectory{}, &fakeMQ{})

	in := RegisterDeviceInput{Token: "tok-1", Platform: "ios", DeviceID: "iphone-15"}
	require.NoError(t, uc.RegisterDevice(authCtx(7), in))
	require.NoError(t, uc.RegisterDevice(authCtx(7), in))

	assert.Equal(t, []string{"tok-1"}, store.endpoints[7])
}

func TestRegisterDeviceRequiresAuth(t *testing.T) {
	uc := newTestUsecase(t, newMemStore(), &fakeDirectory{}, &fakeMQ{})

	err := uc.RegisterDevice(context.Background(), RegisterDeviceInput{Token: "tok-1", Platform: "ios"})
	require.Error(t, err)
}

func TestUnregisterDeviceUnknownTokenIsNoop(t *testing.T) {
	store := newMemStore()
	store.endpoints[7] = []string{"tok-1"}
	uc := newTestUsecase(t, store, &fakeDirectory{}, &fakeMQ{})

	require.NoError(t, uc.UnregisterDevice(authCtx(7), UnregisterDeviceInput{Token: "tok-unknown"}))
	assert.Equal(t, []string{"tok-1"}, store.endpoints[7])
}

func TestUnregisterDeviceAll(t *testing.T) {
	store := newMemStore()
	store.endpoints[7] = []string{"tok-1", "tok-2"}
	uc := newTestUsecase(t, store, &fakeDirectory{}, &fakeMQ{})

	require.NoError(t, uc.UnregisterDevice(authCtx(7), UnregisterDeviceInput{All: true}))
	assert.Empty(t, store.endpoints[7])
}

func TestUnregisterDeviceNeedsTokenOrAll(t *testing.T) {
	uc := newTestUsecase(t, newMemStore(), &fakeDirectory{}, &fakeMQ{})

	err := uc.UnregisterDevice(authCtx(7), UnregisterDeviceInput{})
	require.Error(t, err)
}
