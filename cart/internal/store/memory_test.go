package store

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Alturino/storefront/cart/pkg/request"
	commonErrors "github.com/Alturino/storefront/internal/common/errors"
)

func TestMemoryStoreDispatch(t *testing.T) {
	c := context.Background()
	s := NewMemoryStore("session")
	id := uuid.New()

	require.NoError(t, s.Dispatch(c, SetAccessToken("token")))
	require.NoError(t, s.Dispatch(c, AddItem(cartItem(id, 2))))
	require.NoError(t, s.Dispatch(c, AddItem(cartItem(id, 1))))

	items, err := s.Items(c)
	require.NoError(t, err)
	assert.Equal(t, []request.CartItem{cartItem(id, 3)}, items)

	token, err := s.AccessToken(c)
	require.NoError(t, err)
	assert.Equal(t, "token", token)

	require.NoError(t, s.Dispatch(c, ClearCart()))
	items, err = s.Items(c)
	require.NoError(t, err)
	assert.Empty(t, items)
}

func TestMemoryStoreRejectedActionKeepsItems(t *testing.T) {
	c := context.Background()
	s := NewMemoryStore("session")
	id := uuid.New()
	require.NoError(t, s.Dispatch(c, AddItem(cartItem(id, 1))))

	err := s.Dispatch(c, RemoveItem(uuid.New()))

	assert.Error(t, err)
	items, _ := s.Items(c)
	assert.Equal(t, []request.CartItem{cartItem(id, 1)}, items)
}

func TestMemoryStoreSubscribe(t *testing.T) {
	c := context.Background()
	s := NewMemoryStore("session")

	events, unsubscribe, err := s.Subscribe(c)
	require.NoError(t, err)

	require.NoError(t, s.Dispatch(c, AddItem(cartItem(uuid.New(), 1))))
	require.NoError(t, s.Dispatch(c, ClearCart()))

	assert.Equal(t, Event{Session: "session", Action: ActionAddItem}, <-events)
	assert.Equal(t, Event{Session: "session", Action: ActionClearCart}, <-events)

	unsubscribe()
	unsubscribe()
	_, ok := <-events
	assert.False(t, ok)
	assert.NoError(t, s.Dispatch(c, ClearCart()))
}

func TestMemoryStoreSubscribeStopsOnContextDone(t *testing.T) {
	c, cancel := context.WithCancel(context.Background())
	s := NewMemoryStore("session")

	events, unsubscribe, err := s.Subscribe(c)
	require.NoError(t, err)
	defer unsubscribe()

	cancel()

	assert.Eventually(t, func() bool {
		select {
		case _, ok := <-events:
			return !ok
		default:
			return false
		}
	}, time.Second, 10*time.Millisecond)
}

func TestMemoryStoresForSession(t *testing.T) {
	stores := NewMemoryStores()

	assert.Same(t, stores.ForSession("a"), stores.ForSession("a"))
	assert.NotSame(t, stores.ForSession("a"), stores.ForSession("b"))
}

func TestMemoryStoreMissingAccessToken(t *testing.T) {
	s := NewMemoryStore("session")

	token, err := s.AccessToken(context.Background())

	assert.ErrorIs(t, err, commonErrors.ErrEmptyAccessToken)
	assert.Empty(t, token)
}
