package validate

import (
	"reflect"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
)

const TagPrice = "price"

// New returns a validator that understands decimal prices: the "price" tag
// accepts a strictly positive decimal.Decimal with at most two decimal places,
// which is what the NUMERIC(12,2) price column stores without rounding.
func New() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterCustomTypeFunc(PriceValue, decimal.Decimal{})
	_ = v.RegisterValidation(TagPrice, ValidatePrice)
	return v
}

func ValidatePrice(fl validator.FieldLevel) bool {
	value, ok := fl.Field().Interface().(string)
	if !ok {
		return false
	}
	d, err := decimal.NewFromString(value)
	if err != nil {
		return false
	}
	return d.IsPositive() && d.Equal(d.Truncate(2))
}

// PriceValue exposes a decimal.Decimal to the validator as its string form so
// "required" and "price" can be evaluated on it.
func PriceValue(v reflect.Value) interface{} {
	n, ok := v.Interface().(decimal.Decimal)
	if !ok {
		return nil
	}
	if n.IsZero() {
		return ""
	}
	return n.String()
}
