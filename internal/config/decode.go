package config

import (
	"reflect"

	"github.com/mitchellh/mapstructure"
	"github.com/shopspring/decimal"
)

func decimalHook() mapstructure.DecodeHookFunc {
	return mapstructure.ComposeDecodeHookFunc(
		mapstructure.StringToTimeDurationHookFunc(),
		func(from reflect.Type, to reflect.Type, data interface{}) (interface{}, error) {
			if to != reflect.TypeOf(decimal.Decimal{}) {
				return data, nil
			}
			switch v := data.(type) {
			case string:
				return decimal.NewFromString(v)
			case int:
				return decimal.NewFromInt(int64(v)), nil
			case int64:
				return decimal.NewFromInt(v), nil
			case float64:
				return decimal.NewFromFloat(v), nil
			}
			return data, nil
		},
	)
}
