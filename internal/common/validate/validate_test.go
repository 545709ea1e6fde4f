package validate

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

type priced struct {
	Price decimal.Decimal `validate:"required,price"`
}

func TestPrice(t *testing.T) {
	tests := []struct {
		name     string
		price    decimal.Decimal
		expected bool
	}{
		{name: "given positive price should be valid", price: decimal.RequireFromString("0.01"), expected: true},
		{name: "given whole price should be valid", price: decimal.NewFromInt(15), expected: true},
		{name: "given zero price should be invalid", price: decimal.Zero, expected: false},
		{name: "given negative price should be invalid", price: decimal.NewFromInt(-1), expected: false},
		{name: "given price with trailing zero should be valid", price: decimal.RequireFromString("10.50"), expected: true},
		{name: "given price with more than two decimals should be invalid", price: decimal.RequireFromString("10.005"), expected: false},
		{name: "given sub cent price should be invalid", price: decimal.RequireFromString("0.001"), expected: false},
	}

	v := New()
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			err := v.Struct(priced{Price: test.price})

			assert.Equal(t, test.expected, err == nil, "err=%v", err)
		})
	}
}
