package gateway

import "context"

// Order configures the payment widget for one gateway order.
type Order struct {
	Key      string
	OrderID  string
	Amount   int64
	Currency string

	Name        string
	Description string
	ThemeColor  string
	Prefill     Prefill
}

// Prefill seeds the widget's contact form.
type Prefill struct {
	Name    string
	Email   string
	Contact string
}

// Confirmation carries the signed fields the gateway hands back after a
// successful payment.
type Confirmation struct {
	OrderID   string `json:"razorpay_order_id"`
	PaymentID string `json:"razorpay_payment_id"`
	Signature string `json:"razorpay_signature"`
}

// Failure describes a failed or abandoned payment.
type Failure struct {
	Description string `json:"description"`
}

// Widget is the opaque external payment actor. Open presents the widget
// for the given order and invokes exactly one of the two callbacks: the
// success handler with the gateway's signed confirmation, or the failure
// handler when the gateway reports failure or the user dismisses the
// widget. Open blocks until one callback has run or ctx is done.
type Widget interface {
	Open(ctx context.Context, order Order, onSuccess func(context.Context, Confirmation), onFailure func(context.Context, Failure)) error
}
