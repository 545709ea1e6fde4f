package service

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	cartRequest "github.com/Alturino/storefront/cart/pkg/request"
	commonErrors "github.com/Alturino/storefront/internal/common/errors"
	internalRequest "github.com/Alturino/storefront/order/internal/request"
	"github.com/Alturino/storefront/order/pkg/request"
	"github.com/Alturino/storefront/order/pkg/response"
)

type fakeRepository struct {
	inserted []response.Order
	err      error
}

func (f *fakeRepository) InsertOrder(c context.Context, order response.Order) (response.Order, error) {
	if f.err != nil {
		return response.Order{}, f.err
	}
	f.inserted = append(f.inserted, order)
	return order, nil
}

func (f *fakeRepository) FindOrderById(c context.Context, userId uuid.UUID, orderId uuid.UUID) (response.Order, error) {
	for _, order := range f.inserted {
		if order.ID == orderId && order.UserId == userId {
			return order, nil
		}
	}
	return response.Order{}, commonErrors.ErrOrderNotFound
}

func createOrder(items ...cartRequest.CartItem) request.CreateOrder {
	return request.CreateOrder{Name: "Jane", Phone: "+3712000000", Address: "Main street 1", Items: items}
}

func TestCreateOrder(t *testing.T) {
	coffee, tea := uuid.New(), uuid.New()

	tests := []struct {
		name          string
		input         request.CreateOrder
		expectedTotal decimal.Decimal
		expectedItems map[uuid.UUID]int32
		expectedErr   error
	}{
		{
			name: "given total above minimum should create order",
			input: createOrder(
				cartRequest.CartItem{ID: coffee, Name: "coffee", Price: decimal.NewFromInt(10), Amount: 2},
			),
			expectedTotal: decimal.NewFromInt(20),
			expectedItems: map[uuid.UUID]int32{coffee: 2},
		},
		{
			name: "given duplicated item should merge amount",
			input: createOrder(
				cartRequest.CartItem{ID: coffee, Name: "coffee", Price: decimal.NewFromInt(5), Amount: 2},
				cartRequest.CartItem{ID: tea, Name: "tea", Price: decimal.RequireFromString("2.5"), Amount: 1},
				cartRequest.CartItem{ID: coffee, Name: "coffee", Price: decimal.NewFromInt(5), Amount: 1},
			),
			expectedTotal: decimal.RequireFromString("17.5"),
			expectedItems: map[uuid.UUID]int32{coffee: 3, tea: 1},
		},
		{
			name: "given total below minimum should return error below minimum order",
			input: createOrder(
				cartRequest.CartItem{ID: coffee, Name: "coffee", Price: decimal.NewFromInt(5), Amount: 1},
			),
			expectedErr: commonErrors.ErrBelowMinimumOrder,
		},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			repository := &fakeRepository{}
			svc := NewOrderService(repository, decimal.NewFromInt(15))
			userId := uuid.New()

			order, err := svc.CreateOrder(context.Background(), userId, test.input)

			if test.expectedErr != nil {
				assert.ErrorIs(t, err, test.expectedErr)
				assert.Empty(t, repository.inserted)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, userId, order.UserId)
			assert.Equal(t, StatusCreated, order.Status)
			assert.True(t, test.expectedTotal.Equal(order.Total), "total=%s", order.Total)

			actualItems := map[uuid.UUID]int32{}
			for _, item := range order.OrderItems {
				assert.Equal(t, order.ID, item.OrderId)
				actualItems[item.ProductId] = item.Amount
			}
			assert.Equal(t, test.expectedItems, actualItems)
		})
	}
}

func TestCreateOrderRepositoryError(t *testing.T) {
	repositoryErr := errors.New("connection reset")
	svc := NewOrderService(&fakeRepository{err: repositoryErr}, decimal.NewFromInt(15))

	_, err := svc.CreateOrder(context.Background(), uuid.New(), createOrder(
		cartRequest.CartItem{ID: uuid.New(), Name: "coffee", Price: decimal.NewFromInt(20), Amount: 1},
	))

	assert.ErrorIs(t, err, repositoryErr)
}

func TestFindOrderById(t *testing.T) {
	c := context.Background()
	svc := NewOrderService(&fakeRepository{}, decimal.NewFromInt(15))
	userId := uuid.New()
	order, err := svc.CreateOrder(c, userId, createOrder(
		cartRequest.CartItem{ID: uuid.New(), Name: "coffee", Price: decimal.NewFromInt(20), Amount: 1},
	))
	require.NoError(t, err)

	found, err := svc.FindOrderById(c, internalRequest.FindOrderById{UserId: userId, OrderId: order.ID})
	require.NoError(t, err)
	assert.Equal(t, order.ID, found.ID)

	_, err = svc.FindOrderById(c, internalRequest.FindOrderById{UserId: uuid.New(), OrderId: order.ID})
	assert.ErrorIs(t, err, commonErrors.ErrOrderNotFound)
}
