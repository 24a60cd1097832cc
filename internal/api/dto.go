package api

import "github.com/shopspring/decimal"

func init() {
	// The backend speaks bare JSON numbers for money fields.
	decimal.MarshalJSONWithoutQuotes = true
}

// CartEntry is the wire shape of one persisted cart line.
type CartEntry struct {
	CourseID string `json:"courseId"`
	Quantity int    `json:"quantity"`
}

type cartEnvelope struct {
	Courses []CartEntry `json:"courses"`
}

type fetchCartResponse struct {
	Cart cartEnvelope `json:"cart"`
}

type replaceCartRequest struct {
	Cart []CartEntry `json:"cart"`
}

type replaceWishlistRequest struct {
	Wishlist []string `json:"wishlist"`
}

// PaymentItem is one normalized line sent when initiating a payment.
type PaymentItem struct {
	ID       string          `json:"id"`
	Price    decimal.Decimal `json:"price"`
	Quantity int             `json:"quantity"`
}

// PendingPaymentOrder is the gateway order minted by the backend. It is
// consumed exactly once by the payment widget handshake.
type PendingPaymentOrder struct {
	GatewayOrderID string `json:"orderId"`
	// Amount is in the currency's minor unit (paise for INR).
	Amount       int64  `json:"amount"`
	Currency     string `json:"currency"`
	LocalOrderID string `json:"dbOrderId"`
}

// PaymentConfirmation carries the gateway's signed fields back for
// server-side signature verification.
type PaymentConfirmation struct {
	RazorpayOrderID   string `json:"razorpayOrderId"`
	RazorpayPaymentID string `json:"razorpayPaymentId"`
	RazorpaySignature string `json:"razorpaySignature"`
	LocalOrderID      string `json:"dbOrderId"`
}

type verifyPaymentResponse struct {
	Order *VerifiedOrder `json:"order"`
}

// OrderCourse is one course line inside a finalized order.
type OrderCourse struct {
	CourseID string          `json:"courseId"`
	Title    string          `json:"title"`
	Price    decimal.Decimal `json:"price"`
	Quantity int             `json:"quantity"`
}

// VerifiedOrder is a backend-finalized order; read-only on the client.
type VerifiedOrder struct {
	ID        string          `json:"_id"`
	Status    string          `json:"status"`
	CreatedAt string          `json:"createdAt"`
	Courses   []OrderCourse   `json:"courses"`
	Total     decimal.Decimal `json:"total"`
	Username  string          `json:"username"`
}

// Course is the catalog shape used when adding items to the cart.
type Course struct {
	ID         string          `json:"_id"`
	Title      string          `json:"title"`
	Price      decimal.Decimal `json:"price"`
	Instructor string          `json:"instructor"`
	Image      string          `json:"image"`
}

type credentialsRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// AuthResult is the payload of a successful login or signup.
type AuthResult struct {
	Token    string `json:"token"`
	Username string `json:"username"`
	Role     string `json:"role"`
	Github   string `json:"github"`
	Linkedin string `json:"linkedin"`
	Avatar   string `json:"avatar"`
}

type messageResponse struct {
	Message string `json:"message"`
}
