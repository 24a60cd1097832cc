package gateway

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"html/template"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/skillhublearning/skillhub-client/pkg/config"
	pkgerrors "github.com/skillhublearning/skillhub-client/pkg/errors"
	"github.com/skillhublearning/skillhub-client/pkg/logger"
)

var errLoggerRequired = errors.New("gateway logger is required")

// BrowserWidget bridges the hosted Razorpay checkout into the client: it
// serves the checkout page on a loopback address, the user completes the
// payment in their browser, and the page reports the outcome back through
// a local callback route.
type BrowserWidget struct {
	cfg config.GatewayConfig
	log *logger.Logger

	// OnReady, when set, receives the checkout url once the bridge is
	// listening. The CLI uses it to surface the url to the user.
	OnReady func(url string)
}

func NewBrowserWidget(cfg config.GatewayConfig, log *logger.Logger) (*BrowserWidget, error) {
	if log == nil {
		return nil, errLoggerRequired
	}
	if cfg.ListenAddr == "" {
		cfg.ListenAddr = "127.0.0.1:0"
	}
	if cfg.OpenDeadline <= 0 {
		cfg.OpenDeadline = 15 * time.Minute
	}
	return &BrowserWidget{cfg: cfg, log: log}, nil
}

type outcome struct {
	confirmation *Confirmation
	failure      *Failure
}

// Open serves the widget and blocks until the user finishes, the gateway
// reports failure, or the deadline passes. The deadline counts as a
// dismissal, not a network error, because the widget's own lifetime
// governs this step.
func (w *BrowserWidget) Open(ctx context.Context, order Order, onSuccess func(context.Context, Confirmation), onFailure func(context.Context, Failure)) error {
	listener, err := net.Listen("tcp", w.cfg.ListenAddr)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "starting checkout bridge")
	}

	results := make(chan outcome, 1)
	router := chi.NewRouter()
	router.Get("/", w.renderCheckout(order))
	router.Post("/callback/success", w.handleSuccess(results))
	router.Post("/callback/failure", w.handleFailure(results))

	server := &http.Server{Handler: router}
	go func() {
		if serveErr := server.Serve(listener); serveErr != nil && serveErr != http.ErrServerClosed {
			w.log.Error(ctx, "checkout bridge stopped unexpectedly", serveErr)
		}
	}()
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = server.Shutdown(shutdownCtx)
	}()

	url := fmt.Sprintf("http://%s/", listener.Addr().String())
	w.log.Info(w.log.WithFields(ctx, map[string]any{
		"checkout_url": url,
		"order_id":     order.OrderID,
		"amount":       order.Amount,
		"currency":     order.Currency,
	}), "payment widget ready, open the checkout url to pay")
	if w.OnReady != nil {
		w.OnReady(url)
	}

	deadline := time.NewTimer(w.cfg.OpenDeadline)
	defer deadline.Stop()

	select {
	case result := <-results:
		if result.confirmation != nil {
			onSuccess(ctx, *result.confirmation)
		} else if result.failure != nil {
			onFailure(ctx, *result.failure)
		}
		return nil
	case <-deadline.C:
		onFailure(ctx, Failure{Description: "payment window expired"})
		return nil
	case <-ctx.Done():
		onFailure(ctx, Failure{Description: "checkout canceled"})
		return nil
	}
}

func (w *BrowserWidget) renderCheckout(order Order) http.HandlerFunc {
	return func(rw http.ResponseWriter, r *http.Request) {
		rw.Header().Set("Content-Type", "text/html; charset=utf-8")
		if err := checkoutPage.Execute(rw, order); err != nil {
			w.log.Error(r.Context(), "rendering checkout page", err)
		}
	}
}

func (w *BrowserWidget) handleSuccess(results chan<- outcome) http.HandlerFunc {
	return func(rw http.ResponseWriter, r *http.Request) {
		var confirmation Confirmation
		if err := json.NewDecoder(r.Body).Decode(&confirmation); err != nil {
			http.Error(rw, "malformed confirmation", http.StatusBadRequest)
			return
		}
		w.log.Info(w.log.WithFields(r.Context(), map[string]any{
			"order_id":   confirmation.OrderID,
			"payment_id": redact(confirmation.PaymentID),
		}), "payment confirmed by gateway")
		select {
		case results <- outcome{confirmation: &confirmation}:
		default:
		}
		rw.WriteHeader(http.StatusOK)
	}
}

func (w *BrowserWidget) handleFailure(results chan<- outcome) http.HandlerFunc {
	return func(rw http.ResponseWriter, r *http.Request) {
		var payload struct {
			Error Failure `json:"error"`
		}
		if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
			http.Error(rw, "malformed failure report", http.StatusBadRequest)
			return
		}
		select {
		case results <- outcome{failure: &payload.Error}:
		default:
		}
		rw.WriteHeader(http.StatusOK)
	}
}

func redact(value string) string {
	if len(value) <= 4 {
		return "[REDACTED]"
	}
	return strings.Repeat("*", len(value)-4) + value[len(value)-4:]
}

var checkoutPage = template.Must(template.New("checkout").Parse(`<!doctype html>
<html>
<head><title>{{.Name}} Checkout</title></head>
<body>
<script src="https://checkout.razorpay.com/v1/checkout.js"></script>
<script>
var options = {
  key: {{.Key}},
  amount: {{.Amount}},
  currency: {{.Currency}},
  order_id: {{.OrderID}},
  name: {{.Name}},
  description: {{.Description}},
  handler: function (response) {
    fetch('/callback/success', {
      method: 'POST',
      headers: {'Content-Type': 'application/json'},
      body: JSON.stringify(response)
    }).then(function () { document.body.innerText = 'Payment recorded, you can close this tab.'; });
  },
  prefill: {
    name: {{.Prefill.Name}},
    email: {{.Prefill.Email}},
    contact: {{.Prefill.Contact}}
  },
  theme: { color: {{.ThemeColor}} }
};
var rzp = new Razorpay(options);
rzp.on('payment.failed', function (response) {
  fetch('/callback/failure', {
    method: 'POST',
    headers: {'Content-Type': 'application/json'},
    body: JSON.stringify(response)
  }).then(function () { document.body.innerText = 'Payment failed, you can close this tab.'; });
});
rzp.open();
</script>
</body>
</html>`))
