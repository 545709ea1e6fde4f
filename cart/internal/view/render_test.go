package view

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"github.com/Alturino/storefront/cart/pkg/request"
	"github.com/Alturino/storefront/cart/pkg/response"
)

func TestFormatTotal(t *testing.T) {
	tests := []struct {
		name     string
		total    decimal.Decimal
		expected string
	}{
		{name: "given whole number should pad decimals", total: decimal.NewFromInt(20), expected: "$20.00"},
		{name: "given zero should format zero", total: decimal.Zero, expected: "$0.00"},
		{name: "given one decimal should pad to two", total: decimal.RequireFromString("7.5"), expected: "$7.50"},
		{name: "given three decimals should round to two", total: decimal.RequireFromString("1.005"), expected: "$1.01"},
		{name: "given negative should format absolute value", total: decimal.RequireFromString("-3.2"), expected: "$3.20"},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			assert.Equal(t, test.expected, FormatTotal(test.total))
		})
	}
}

func TestTotal(t *testing.T) {
	items := []request.CartItem{item("10", 2), item("0.1", 3)}

	assert.True(t, decimal.RequireFromString("20.3").Equal(Total(items)))
	assert.True(t, decimal.Zero.Equal(Total(nil)))
}

func TestRender(t *testing.T) {
	items := []request.CartItem{item("10", 2)}

	tests := []struct {
		name     string
		state    State
		items    []request.CartItem
		expected response.Screen
	}{
		{
			name:  "given idle empty cart should only offer close",
			state: State{Phase: Idle},
			expected: response.Screen{
				Phase:   "idle",
				Items:   []response.CartLine{},
				Total:   "$0.00",
				Actions: []string{response.ActionClose},
			},
		},
		{
			name:  "given idle cart with items should offer make order",
			state: State{Phase: Idle},
			items: items,
			expected: response.Screen{
				Phase: "idle",
				Items: []response.CartLine{
					{ID: items[0].ID, Name: items[0].Name, Price: "$10.00", Amount: 2},
				},
				Total:   "$20.00",
				Actions: []string{response.ActionClose, response.ActionMakeOrder},
			},
		},
		{
			name:  "given idle with error should show error",
			state: State{Phase: Idle, Err: "Total amount has to be at least 15 eur"},
			expected: response.Screen{
				Phase:   "idle",
				Items:   []response.CartLine{},
				Total:   "$0.00",
				Error:   "Total amount has to be at least 15 eur",
				Actions: []string{response.ActionClose},
			},
		},
		{
			name:  "given collecting should show form",
			state: State{Phase: Collecting, Err: MessageSubmitFailed},
			items: items,
			expected: response.Screen{
				Phase: "collecting",
				Items: []response.CartLine{
					{ID: items[0].ID, Name: items[0].Name, Price: "$10.00", Amount: 2},
				},
				Total:     "$20.00",
				Error:     MessageSubmitFailed,
				OrderForm: true,
				Actions:   []string{response.ActionSubmit, response.ActionCancel},
			},
		},
		{
			name:  "given submitting should only show sending message",
			state: State{Phase: Submitting},
			items: items,
			expected: response.Screen{
				Phase:   "submitting",
				Message: MessageSending,
				Actions: []string{},
			},
		},
		{
			name:  "given succeeded should show success message",
			state: State{Phase: Succeeded},
			expected: response.Screen{
				Phase:   "succeeded",
				Message: MessageSucceeded,
				Actions: []string{response.ActionClose},
			},
		},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			assert.Equal(t, test.expected, Render(test.state, test.items))
		})
	}
}
