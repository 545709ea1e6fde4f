package response

import (
	"github.com/google/uuid"
)

const (
	ActionClose     = "close"
	ActionMakeOrder = "make_order"
	ActionSubmit    = "submit"
	ActionCancel    = "cancel"
)

type CartLine struct {
	ID     uuid.UUID `json:"id"`
	Name   string    `json:"name"`
	Price  string    `json:"price"`
	Amount int       `json:"amount"`
}

// Screen is the render model of the cart view. Only the fields of the
// current phase are populated.
type Screen struct {
	Phase     string     `json:"phase"`
	Items     []CartLine `json:"items,omitempty"`
	Total     string     `json:"total,omitempty"`
	Error     string     `json:"error,omitempty"`
	Message   string     `json:"message,omitempty"`
	Actions   []string   `json:"actions"`
	OrderForm bool       `json:"order_form"`
}
