package response

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type Order struct {
	CreatedAt  time.Time       `json:"created_at"`
	UpdatedAt  time.Time       `json:"updated_at"`
	OrderItems []OrderItem     `json:"order_items"`
	Name       string          `json:"name"`
	Phone      string          `json:"phone"`
	Address    string          `json:"address"`
	Status     string          `json:"status"`
	Total      decimal.Decimal `json:"total"`
	ID         uuid.UUID       `json:"id"`
	UserId     uuid.UUID       `json:"user_id"`
}

type OrderItem struct {
	ID        uuid.UUID       `json:"id"`
	OrderId   uuid.UUID       `json:"order_id"`
	ProductId uuid.UUID       `json:"product_id"`
	Name      string          `json:"name"`
	Price     decimal.Decimal `json:"price"`
	Amount    int32           `json:"amount"`
}
