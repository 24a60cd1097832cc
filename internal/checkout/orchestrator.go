package checkout

import (
	"context"
	"fmt"
	"sync"

	"github.com/skillhublearning/skillhub-client/internal/api"
	"github.com/skillhublearning/skillhub-client/internal/cart"
	"github.com/skillhublearning/skillhub-client/internal/gateway"
	"github.com/skillhublearning/skillhub-client/internal/notify"
	"github.com/skillhublearning/skillhub-client/internal/session"
	"github.com/skillhublearning/skillhub-client/pkg/config"
	pkgerrors "github.com/skillhublearning/skillhub-client/pkg/errors"
	"github.com/skillhublearning/skillhub-client/pkg/logger"
)

// State tracks a checkout attempt through its lifecycle. Succeeded and
// Failed are terminal; a fresh attempt needs a fresh Orchestrator.
type State string

const (
	StateIdle                 State = "idle"
	StateValidating           State = "validating"
	StateAwaitingGatewayOrder State = "awaiting_gateway_order"
	StateAwaitingUserPayment  State = "awaiting_user_payment"
	StateVerifying            State = "verifying"
	StateSucceeded            State = "succeeded"
	StateFailed               State = "failed"
)

type paymentAPI interface {
	InitiatePayment(ctx context.Context, items []api.PaymentItem) (*api.PendingPaymentOrder, error)
	VerifyPayment(ctx context.Context, confirmation api.PaymentConfirmation) (*api.VerifiedOrder, error)
}

// Navigator receives the orchestrator's navigation events.
type Navigator interface {
	// ToTracking is emitted exactly once, after a successful verification,
	// carrying the freshly verified order.
	ToTracking(ctx context.Context, order *api.VerifiedOrder)
	// ToAuth is emitted when an auth-invalidating error is hit mid-flow.
	ToAuth(ctx context.Context)
}

// Orchestrator drives one checkout attempt: validate the cart, obtain a
// gateway order, hand control to the payment widget, verify the signed
// confirmation, then clear the cart and navigate to tracking. Each network
// step completes before the next state is entered; no two payment calls
// are ever in flight together for one attempt.
type Orchestrator struct {
	api      paymentAPI
	cart     *cart.Manager
	store    session.Store
	widget   gateway.Widget
	nav      Navigator
	notifier notify.Notifier
	log      *logger.Logger
	razorpay config.RazorpayConfig

	mu      sync.Mutex
	state   State
	loading bool
	failure error
}

// Params groups the orchestrator's dependencies.
type Params struct {
	API      paymentAPI
	Cart     *cart.Manager
	Store    session.Store
	Widget   gateway.Widget
	Nav      Navigator
	Notifier notify.Notifier
	Log      *logger.Logger
	Razorpay config.RazorpayConfig
}

func New(params Params) (*Orchestrator, error) {
	if params.API == nil {
		return nil, fmt.Errorf("payment api is required")
	}
	if params.Cart == nil {
		return nil, fmt.Errorf("cart manager is required")
	}
	if params.Store == nil {
		return nil, fmt.Errorf("session store is required")
	}
	if params.Widget == nil {
		return nil, fmt.Errorf("payment widget is required")
	}
	if params.Nav == nil {
		return nil, fmt.Errorf("navigator is required")
	}
	if params.Notifier == nil {
		return nil, fmt.Errorf("notifier is required")
	}
	if params.Log == nil {
		return nil, fmt.Errorf("logger is required")
	}
	return &Orchestrator{
		api:      params.API,
		cart:     params.Cart,
		store:    params.Store,
		widget:   params.Widget,
		nav:      params.Nav,
		notifier: params.Notifier,
		log:      params.Log,
		razorpay: params.Razorpay,
		state:    StateIdle,
	}, nil
}

// State returns the attempt's current state.
func (o *Orchestrator) State() State {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.state
}

// Loading reports whether the attempt is still in flight.
func (o *Orchestrator) Loading() bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.loading
}

// Failure returns the error that moved the attempt to Failed, if any.
func (o *Orchestrator) Failure() error {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.failure
}

// Run executes the attempt to a terminal state. It returns an error only
// when the attempt cannot start; flow failures land in Failed and are
// surfaced through the notifier, matching the non-blocking UI contract.
func (o *Orchestrator) Run(ctx context.Context) error {
	o.mu.Lock()
	if o.state != StateIdle {
		o.mu.Unlock()
		return fmt.Errorf("checkout attempt already ran (state %s)", o.state)
	}
	o.state = StateValidating
	o.loading = true
	o.mu.Unlock()

	defer func() {
		o.mu.Lock()
		o.loading = false
		o.mu.Unlock()
	}()

	items := o.cart.Items()
	if err := validateCart(items); err != nil {
		o.notifier.Warning(ctx, pkgerrors.As(err).Display())
		o.fail(ctx, err)
		return nil
	}

	o.setState(StateAwaitingGatewayOrder)
	pending, err := o.api.InitiatePayment(ctx, paymentItems(items))
	if err != nil {
		o.notifier.Error(ctx, pkgerrors.DisplayMessage(err, "Payment initiation failed"))
		o.fail(ctx, err)
		return nil
	}
	ctx = o.log.WithOrderID(ctx, pending.LocalOrderID)

	o.setState(StateAwaitingUserPayment)
	order := gateway.Order{
		Key:         o.razorpay.Key,
		OrderID:     pending.GatewayOrderID,
		Amount:      pending.Amount,
		Currency:    pending.Currency,
		Name:        o.razorpay.MerchantName,
		Description: o.razorpay.Description,
		ThemeColor:  o.razorpay.ThemeColor,
		Prefill: gateway.Prefill{
			Name:    o.razorpay.PrefillName,
			Email:   o.razorpay.PrefillEmail,
			Contact: o.razorpay.PrefillContact,
		},
	}
	if err := o.widget.Open(ctx, order,
		func(cbCtx context.Context, confirmation gateway.Confirmation) {
			o.verify(cbCtx, pending, confirmation)
		},
		func(cbCtx context.Context, failure gateway.Failure) {
			o.paymentFailed(cbCtx, failure)
		},
	); err != nil {
		o.notifier.Error(ctx, pkgerrors.DisplayMessage(err, "Payment initiation failed"))
		o.fail(ctx, err)
	}
	return nil
}

// verify is the widget's success handler: forward the signed confirmation
// to the backend and finalize. The cart is cleared only on a verified
// order; a rejected verification leaves it intact because money may
// already have moved.
func (o *Orchestrator) verify(ctx context.Context, pending *api.PendingPaymentOrder, confirmation gateway.Confirmation) {
	o.setState(StateVerifying)

	order, err := o.api.VerifyPayment(ctx, api.PaymentConfirmation{
		RazorpayOrderID:   confirmation.OrderID,
		RazorpayPaymentID: confirmation.PaymentID,
		RazorpaySignature: confirmation.Signature,
		LocalOrderID:      pending.LocalOrderID,
	})
	if err != nil {
		o.notifier.Error(ctx, pkgerrors.DisplayMessage(err, "Payment verification failed"))
		o.fail(ctx, err)
		return
	}

	o.mu.Lock()
	o.state = StateSucceeded
	o.mu.Unlock()

	o.cart.Clear()
	o.notifier.Success(ctx, "Payment successful!")
	o.log.Info(o.log.WithOrderID(ctx, order.ID), "checkout succeeded")
	o.nav.ToTracking(ctx, order)
}

// paymentFailed is the widget's failure handler: the user canceled or the
// gateway declined. The cart is preserved for a retry.
func (o *Orchestrator) paymentFailed(ctx context.Context, failure gateway.Failure) {
	reason := failure.Description
	if reason == "" {
		reason = pkgerrors.MetadataFor(pkgerrors.CodePayment).PublicMessage
	}
	o.notifier.Error(ctx, "Payment failed: "+reason)
	o.fail(ctx, pkgerrors.New(pkgerrors.CodePayment, reason))
}

// fail moves the attempt to Failed and applies the auth-loss guard: an
// invalid or missing token anywhere in the flow clears the session and
// redirects to authentication.
func (o *Orchestrator) fail(ctx context.Context, err error) {
	o.mu.Lock()
	o.state = StateFailed
	o.failure = err
	o.mu.Unlock()

	if pkgerrors.SessionInvalidating(err) {
		o.log.Warn(ctx, "session invalidated during checkout")
		if clearErr := o.store.Clear(ctx); clearErr != nil {
			o.log.Error(ctx, "clearing session", clearErr)
		}
		o.nav.ToAuth(ctx)
	}
}

func (o *Orchestrator) setState(next State) {
	o.mu.Lock()
	o.state = next
	o.mu.Unlock()
}

// validateCart fails closed before any network call: an empty cart or any
// line with a non-positive price or quantity aborts the attempt.
func validateCart(items []cart.LineItem) error {
	if len(items) == 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, "Cart is empty")
	}
	for _, item := range items {
		if item.Price.Sign() <= 0 || item.Quantity <= 0 {
			return pkgerrors.New(pkgerrors.CodeValidation, "Cart contains items with invalid price or quantity")
		}
	}
	return nil
}

func paymentItems(items []cart.LineItem) []api.PaymentItem {
	out := make([]api.PaymentItem, 0, len(items))
	for _, item := range items {
		out = append(out, api.PaymentItem{
			ID:       item.ID,
			Price:    item.Price,
			Quantity: item.Quantity,
		})
	}
	return out
}

