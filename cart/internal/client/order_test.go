package client

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	cartRequest "github.com/Alturino/storefront/cart/pkg/request"
	commonErrors "github.com/Alturino/storefront/internal/common/errors"
	"github.com/Alturino/storefront/internal/log"
	"github.com/Alturino/storefront/order/pkg/request"
)

func order() request.CreateOrder {
	return request.NewCreateOrder(
		cartRequest.OrderData{Name: "Jane", Phone: "+3712000000", Address: "Main street 1"},
		[]cartRequest.CartItem{
			{ID: uuid.New(), Name: "coffee", Price: decimal.RequireFromString("10.5"), Amount: 2},
		},
	)
}

func TestCreateOrder(t *testing.T) {
	expected := order()
	var (
		method  string
		path    string
		headers http.Header
		actual  request.CreateOrder
	)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		method = r.Method
		path = r.URL.Path
		headers = r.Header.Clone()
		if err := json.NewDecoder(r.Body).Decode(&actual); err != nil {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		w.WriteHeader(http.StatusCreated)
	}))
	defer server.Close()

	c := log.AttachRequestIDToContext(context.Background(), "request-id")
	err := NewOrderClient(server.URL+"/", server.Client()).CreateOrder(c, "token", expected)

	require.NoError(t, err)
	assert.Equal(t, http.MethodPost, method)
	assert.Equal(t, "/api/orders/create/", path)
	assert.Equal(t, "application/json", headers.Get("Content-Type"))
	assert.Equal(t, "application/json", headers.Get("Accept"))
	assert.Equal(t, "Bearer token", headers.Get("Authorization"))
	assert.Equal(t, "request-id", headers.Get("X-Request-Id"))
	assert.Equal(t, expected.Name, actual.Name)
	assert.Equal(t, expected.Phone, actual.Phone)
	assert.Equal(t, expected.Address, actual.Address)
	require.Len(t, actual.Items, 1)
	assert.Equal(t, expected.Items[0].ID, actual.Items[0].ID)
	assert.True(t, expected.Items[0].Price.Equal(actual.Items[0].Price))
}

func TestCreateOrderRejected(t *testing.T) {
	tests := []struct {
		name       string
		statusCode int
	}{
		{name: "given internal server error should return error order rejected", statusCode: http.StatusInternalServerError},
		{name: "given unprocessable entity should return error order rejected", statusCode: http.StatusUnprocessableEntity},
		{name: "given unauthorized should return error order rejected", statusCode: http.StatusUnauthorized},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(test.statusCode)
			}))
			defer server.Close()

			err := NewOrderClient(server.URL, server.Client()).CreateOrder(context.Background(), "token", order())

			assert.ErrorIs(t, err, commonErrors.ErrOrderRejected)
		})
	}
}

func TestCreateOrderUnreachable(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := server.URL
	server.Close()

	err := NewOrderClient(url, nil).CreateOrder(context.Background(), "token", order())

	assert.ErrorIs(t, err, commonErrors.ErrOrderRejected)
}
