package request

import (
	cartRequest "github.com/Alturino/storefront/cart/pkg/request"
)

// CreateOrder is the body of POST /api/orders/create/. Items is the cart
// item list exactly as the cart holds it.
type CreateOrder struct {
	Name    string                 `validate:"required,max=255"   json:"name"`
	Phone   string                 `validate:"required,max=32"    json:"phone"`
	Address string                 `validate:"required,max=512"   json:"address"`
	Items   []cartRequest.CartItem `validate:"required,gt=0,dive" json:"items"`
}

func NewCreateOrder(data cartRequest.OrderData, items []cartRequest.CartItem) CreateOrder {
	return CreateOrder{
		Name:    data.Name,
		Phone:   data.Phone,
		Address: data.Address,
		Items:   items,
	}
}
