package orders

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/skillhublearning/skillhub-client/internal/api"
	"github.com/skillhublearning/skillhub-client/internal/notify"
	"github.com/skillhublearning/skillhub-client/internal/session"
	pkgerrors "github.com/skillhublearning/skillhub-client/pkg/errors"
	"github.com/skillhublearning/skillhub-client/pkg/logger"
)

type trackingAPI interface {
	OrderStatus(ctx context.Context) ([]api.VerifiedOrder, error)
}

type authRedirector interface {
	ToAuth(ctx context.Context)
}

// Badge classifies an order status for presentation.
type Badge string

const (
	BadgeSuccess Badge = "success"
	BadgeWarning Badge = "warning"
	BadgeDefault Badge = "default"
)

// StatusBadge maps an order status onto a display badge. Matching is
// case-insensitive so "Completed", "completed" and "COMPLETED" agree.
func StatusBadge(status string) Badge {
	switch strings.ToLower(status) {
	case "completed":
		return BadgeSuccess
	case "pending":
		return BadgeWarning
	default:
		return BadgeDefault
	}
}

// Tracker is the order-tracking view model: the authenticated user's
// order history, freshened from the backend and optionally seeded with
// the order a checkout just produced.
type Tracker struct {
	api      trackingAPI
	store    session.Store
	nav      authRedirector
	notifier notify.Notifier
	log      *logger.Logger

	mu     sync.RWMutex
	orders []api.VerifiedOrder
	loaded bool
}

func NewTracker(client trackingAPI, store session.Store, nav authRedirector, notifier notify.Notifier, log *logger.Logger) (*Tracker, error) {
	if client == nil {
		return nil, fmt.Errorf("tracking api is required")
	}
	if store == nil {
		return nil, fmt.Errorf("session store is required")
	}
	if nav == nil {
		return nil, fmt.Errorf("navigator is required")
	}
	if notifier == nil {
		return nil, fmt.Errorf("notifier is required")
	}
	if log == nil {
		return nil, fmt.Errorf("logger is required")
	}
	return &Tracker{
		api:      client,
		store:    store,
		nav:      nav,
		notifier: notifier,
		log:      log,
	}, nil
}

// Load fetches the order history and merges in pending, the order handed
// over by a just-finished checkout. The merge dedupes by order id: when
// the backend already lists the order, the fetched copy wins and no
// duplicate is shown; a genuinely new order is prepended so it appears
// first.
func (t *Tracker) Load(ctx context.Context, pending *api.VerifiedOrder) error {
	fetched, err := t.api.OrderStatus(ctx)
	if err != nil {
		if pkgerrors.SessionInvalidating(err) {
			t.log.Warn(ctx, "session invalidated while loading orders")
			if clearErr := t.store.Clear(ctx); clearErr != nil {
				t.log.Error(ctx, "clearing session", clearErr)
			}
			t.nav.ToAuth(ctx)
			return err
		}
		t.notifier.Error(ctx, pkgerrors.DisplayMessage(err, "Failed to load orders"))
		return err
	}

	merged := fetched
	if pending != nil && !containsOrder(fetched, pending.ID) {
		merged = append([]api.VerifiedOrder{*pending}, fetched...)
		t.notifier.Success(ctx, "New order added to tracking")
	}

	t.mu.Lock()
	t.orders = merged
	t.loaded = true
	t.mu.Unlock()
	return nil
}

// Orders returns a snapshot of the merged order list, newest first.
func (t *Tracker) Orders() []api.VerifiedOrder {
	t.mu.RLock()
	defer t.mu.RUnlock()
	out := make([]api.VerifiedOrder, len(t.orders))
	copy(out, t.orders)
	return out
}

// Empty reports whether a completed load produced no orders. It stays
// false until Load succeeds so the empty-state is never shown while the
// first fetch is still in flight.
func (t *Tracker) Empty() bool {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.loaded && len(t.orders) == 0
}

func containsOrder(orders []api.VerifiedOrder, id string) bool {
	for _, order := range orders {
		if order.ID == id {
			return true
		}
	}
	return false
}

