package cart

import (
	"reflect"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
)

// LineItem is one course entry in the cart. Identity is the course id;
// the cart holds at most one line per id.
type LineItem struct {
	ID         string          `json:"_id" validate:"required,hexadecimal,len=24"`
	Title      string          `json:"title"`
	Price      decimal.Decimal `json:"price" validate:"gt=0"`
	Quantity   int             `json:"quantity" validate:"gte=1"`
	Instructor string          `json:"instructor"`
	Image      string          `json:"image"`
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterCustomTypeFunc(func(field reflect.Value) interface{} {
		if d, ok := field.Interface().(decimal.Decimal); ok {
			f, _ := d.Float64()
			return f
		}
		return nil
	}, decimal.Decimal{})
	return v
}

// Valid reports whether the line item satisfies the sync invariants:
// canonical 24-hex identifier, positive price, positive quantity.
func (i LineItem) Valid() bool {
	return validate.Struct(i) == nil
}

// Subtotal is price times quantity.
func (i LineItem) Subtotal() decimal.Decimal {
	return i.Price.Mul(decimal.NewFromInt(int64(i.Quantity)))
}
