package dto

import (
	"reflect"

	"github.com/SscSPs/mobile_money_core/internal/core/domain"
	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
)

// NewValidator returns a validator that reads the same `binding` tags gin uses,
// with Money and decimal fields compared numerically.
func NewValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.SetTagName("binding")
	RegisterCustomTypes(v)
	return v
}

// RegisterCustomTypes teaches v how to compare Money and decimal values.
// Also applied to gin's validator engine at startup.
func RegisterCustomTypes(v *validator.Validate) {
	v.RegisterCustomTypeFunc(func(field reflect.Value) any {
		if m, ok := field.Interface().(domain.Money); ok {
			return m.Decimal().InexactFloat64()
		}
		return nil
	}, domain.Money{})
	v.RegisterCustomTypeFunc(func(field reflect.Value) any {
		if d, ok := field.Interface().(decimal.Decimal); ok {
			return d.InexactFloat64()
		}
		return nil
	}, decimal.Decimal{})
}
