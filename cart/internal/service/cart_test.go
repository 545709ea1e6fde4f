package service

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Alturino/storefront/cart/internal/store"
	"github.com/Alturino/storefront/cart/internal/view"
	"github.com/Alturino/storefront/cart/pkg/request"
	commonErrors "github.com/Alturino/storefront/internal/common/errors"
	orderRequest "github.com/Alturino/storefront/order/pkg/request"
)

type noopOrders struct{}

func (noopOrders) CreateOrder(context.Context, string, orderRequest.CreateOrder) error {
	return nil
}

type recordingOrders struct {
	tokens []string
}

func (o *recordingOrders) CreateOrder(_ context.Context, token string, _ orderRequest.CreateOrder) error {
	o.tokens = append(o.tokens, token)
	return nil
}

func newService() *CartService {
	return NewCartService(store.NewMemoryStores(), noopOrders{}, decimal.NewFromInt(15))
}

func TestOpenReplacesMountedView(t *testing.T) {
	c := context.Background()
	svc := newService()

	first, err := svc.Open(c, "session", "token")
	require.NoError(t, err)
	second, err := svc.Open(c, "session", "token-2")
	require.NoError(t, err)

	assert.True(t, first.Closed())
	assert.False(t, second.Closed())

	mounted, err := svc.View(c, "session", "token-2")
	require.NoError(t, err)
	assert.Same(t, second, mounted)

	accessToken, err := svc.stores.ForSession("session").AccessToken(c)
	require.NoError(t, err)
	assert.Equal(t, "token-2", accessToken)
}

func TestViewRefreshesAccessToken(t *testing.T) {
	c := context.Background()
	orders := &recordingOrders{}
	svc := NewCartService(store.NewMemoryStores(), orders, decimal.NewFromInt(15))
	require.NoError(t, svc.AddItem(c, "session", request.CartItem{
		ID: uuid.New(), Name: "coffee", Price: decimal.NewFromInt(20), Amount: 1,
	}))
	opened, err := svc.Open(c, "session", "old-expired-token")
	require.NoError(t, err)

	v, err := svc.View(c, "session", "fresh-token")
	require.NoError(t, err)
	assert.Same(t, opened, v)
	require.NoError(t, v.RequestOrder(c))
	require.NoError(t, v.SubmitOrder(c, request.OrderData{
		Name: "Jane", Phone: "+3712000000", Address: "Main street 1",
	}))

	assert.Equal(t, []string{"fresh-token"}, orders.tokens)
}

func TestViewKeepsAccessTokenWhenRequestHasNone(t *testing.T) {
	c := context.Background()
	svc := newService()
	_, err := svc.Open(c, "session", "token")
	require.NoError(t, err)

	_, err = svc.View(c, "session", "")
	require.NoError(t, err)

	accessToken, err := svc.stores.ForSession("session").AccessToken(c)
	require.NoError(t, err)
	assert.Equal(t, "token", accessToken)
}

func TestOpenStartsFromIdle(t *testing.T) {
	c := context.Background()
	svc := newService()
	require.NoError(t, svc.AddItem(c, "session", request.CartItem{
		ID: uuid.New(), Name: "coffee", Price: decimal.NewFromInt(20), Amount: 1,
	}))
	v, err := svc.Open(c, "session", "token")
	require.NoError(t, err)
	require.NoError(t, v.RequestOrder(c))

	reopened, err := svc.Open(c, "session", "token")
	require.NoError(t, err)

	assert.Equal(t, view.State{Phase: view.Idle}, reopened.State())
	screen, err := svc.Screen(c, "session", "token")
	require.NoError(t, err)
	assert.Equal(t, "$20.00", screen.Total)
}

func TestClose(t *testing.T) {
	c := context.Background()
	svc := newService()
	v, err := svc.Open(c, "a", "token")
	require.NoError(t, err)
	other, err := svc.Open(c, "b", "token")
	require.NoError(t, err)

	svc.Close(c, "a")
	assert.True(t, v.Closed())
	assert.False(t, other.Closed())

	svc.CloseAll(c)
	assert.True(t, other.Closed())
}

func TestRemoveMissingItem(t *testing.T) {
	err := newService().RemoveItem(context.Background(), "session", uuid.New())

	assert.ErrorIs(t, err, commonErrors.ErrCartItemNotFound)
}

func TestSubscribe(t *testing.T) {
	c := context.Background()
	svc := newService()
	events, unsubscribe, err := svc.Subscribe(c, "session")
	require.NoError(t, err)
	defer unsubscribe()

	require.NoError(t, svc.AddItem(c, "session", request.CartItem{
		ID: uuid.New(), Name: "coffee", Price: decimal.NewFromInt(1), Amount: 1,
	}))

	assert.Equal(t, store.Event{Session: "session", Action: store.ActionAddItem}, <-events)
}
