package request

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type CartItem struct {
	ID     uuid.UUID       `validate:"required"       json:"id"`
	Name   string          `validate:"required"       json:"name"`
	Price  decimal.Decimal `validate:"required,price" json:"price"`
	Amount int             `validate:"required,gte=1" json:"amount"`
}

type AddCartItem struct {
	ID     uuid.UUID       `validate:"required"       json:"id"`
	Name   string          `validate:"required"       json:"name"`
	Price  decimal.Decimal `validate:"required,price" json:"price"`
	Amount int             `validate:"required,gte=1" json:"amount"`
}

func (a AddCartItem) CartItem() CartItem {
	return CartItem{ID: a.ID, Name: a.Name, Price: a.Price, Amount: a.Amount}
}

// OrderData is what the order-detail form collects before submission.
type OrderData struct {
	Name    string `validate:"required,max=255" json:"name"`
	Phone   string `validate:"required,max=32"  json:"phone"`
	Address string `validate:"required,max=512" json:"address"`
}
