package view

import (
	"github.com/shopspring/decimal"

	"github.com/Alturino/storefront/cart/pkg/request"
	"github.com/Alturino/storefront/cart/pkg/response"
)

func Total(items []request.CartItem) decimal.Decimal {
	total := decimal.Zero
	for _, item := range items {
		total = total.Add(item.Price.Mul(decimal.NewFromInt(int64(item.Amount))))
	}
	return total
}

func FormatTotal(total decimal.Decimal) string {
	return "$" + total.Abs().StringFixed(2)
}

// Render maps a state and the current cart to a Screen. It has no side
// effects.
func Render(state State, items []request.CartItem) response.Screen {
	screen := response.Screen{Phase: state.Phase.String(), Actions: []string{}}

	switch state.Phase {
	case Submitting:
		screen.Message = MessageSending
		return screen
	case Succeeded:
		screen.Message = MessageSucceeded
		screen.Actions = []string{response.ActionClose}
		return screen
	}

	screen.Items = make([]response.CartLine, 0, len(items))
	for _, item := range items {
		screen.Items = append(screen.Items, response.CartLine{
			ID:     item.ID,
			Name:   item.Name,
			Price:  FormatTotal(item.Price),
			Amount: item.Amount,
		})
	}
	screen.Total = FormatTotal(Total(items))
	screen.Error = state.Err

	if state.Phase == Collecting {
		screen.OrderForm = true
		screen.Actions = []string{response.ActionSubmit, response.ActionCancel}
		return screen
	}

	screen.Actions = append(screen.Actions, response.ActionClose)
	if len(items) > 0 {
		screen.Actions = append(screen.Actions, response.ActionMakeOrder)
	}
	return screen
}
