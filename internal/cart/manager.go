package cart

import (
	"strings"
	"sync"

	"github.com/shopspring/decimal"

	pkgerrors "github.com/skillhublearning/skillhub-client/pkg/errors"
)

// Manager holds the in-memory cart: an ordered collection of line items,
// the single shared mutable resource of the client. Mutations apply
// synchronously (optimistic update) and notify subscribers asynchronously;
// a failed sync never rolls a mutation back.
type Manager struct {
	mu          sync.Mutex
	items       []LineItem
	subscribers []func([]LineItem)
	inFlight    sync.WaitGroup
}

func NewManager() *Manager {
	return &Manager{}
}

// Subscribe registers a listener invoked on every mutation with a snapshot
// of the new state. Listeners run on their own goroutine.
func (m *Manager) Subscribe(fn func([]LineItem)) {
	if fn == nil {
		return
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.subscribers = append(m.subscribers, fn)
}

// AddItem appends the course with quantity 1, or increments the quantity
// of an existing line with the same id. Items without an identifier are
// rejected.
func (m *Manager) AddItem(item LineItem) error {
	if strings.TrimSpace(item.ID) == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "course is missing an identifier")
	}

	m.mu.Lock()
	merged := false
	for i := range m.items {
		if m.items[i].ID == item.ID {
			if m.items[i].Quantity < 1 {
				m.items[i].Quantity = 1
			}
			m.items[i].Quantity++
			merged = true
			break
		}
	}
	if !merged {
		if item.Quantity < 1 {
			item.Quantity = 1
		}
		m.items = append(m.items, item)
	}
	snapshot := m.snapshotLocked()
	m.mu.Unlock()

	m.notify(snapshot)
	return nil
}

// SetQuantity applies a delta to the line's quantity, clamped to a minimum
// of 1. Reaching zero never removes the line; removal is only explicit.
func (m *Manager) SetQuantity(id string, delta int) {
	m.mu.Lock()
	changed := false
	for i := range m.items {
		if m.items[i].ID == id {
			next := m.items[i].Quantity + delta
			if next < 1 {
				next = 1
			}
			m.items[i].Quantity = next
			changed = true
			break
		}
	}
	snapshot := m.snapshotLocked()
	m.mu.Unlock()

	if changed {
		m.notify(snapshot)
	}
}

// RemoveItem deletes the line; absent ids are a no-op.
func (m *Manager) RemoveItem(id string) {
	m.mu.Lock()
	removed := false
	for i := range m.items {
		if m.items[i].ID == id {
			m.items = append(m.items[:i], m.items[i+1:]...)
			removed = true
			break
		}
	}
	snapshot := m.snapshotLocked()
	m.mu.Unlock()

	if removed {
		m.notify(snapshot)
	}
}

// Clear empties the cart; used after a successful checkout and on logout.
func (m *Manager) Clear() {
	m.mu.Lock()
	m.items = nil
	m.mu.Unlock()

	m.notify(nil)
}

// Replace swaps the whole collection without notifying subscribers. It
// exists for the sync engine's initial pull, where the server cart is
// authoritative and must not trigger a push back.
func (m *Manager) Replace(items []LineItem) {
	m.mu.Lock()
	m.items = make([]LineItem, len(items))
	copy(m.items, items)
	m.mu.Unlock()
}

// Items returns a snapshot of the current lines in order.
func (m *Manager) Items() []LineItem {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.snapshotLocked()
}

// Len reports the number of lines.
func (m *Manager) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.items)
}

// Total sums price times quantity across the cart.
func (m *Manager) Total() decimal.Decimal {
	m.mu.Lock()
	defer m.mu.Unlock()
	total := decimal.Zero
	for _, item := range m.items {
		total = total.Add(item.Subtotal())
	}
	return total
}

func (m *Manager) snapshotLocked() []LineItem {
	out := make([]LineItem, len(m.items))
	copy(out, m.items)
	return out
}

func (m *Manager) notify(snapshot []LineItem) {
	m.mu.Lock()
	subscribers := make([]func([]LineItem), len(m.subscribers))
	copy(subscribers, m.subscribers)
	m.mu.Unlock()

	for _, fn := range subscribers {
		m.inFlight.Add(1)
		go func(deliver func([]LineItem)) {
			defer m.inFlight.Done()
			deliver(snapshot)
		}(fn)
	}
}

// Wait blocks until every subscriber notification dispatched so far has
// run. Short-lived callers flush pending syncs through it before exiting;
// without it a mutation's server push could still be in flight when the
// process ends.
func (m *Manager) Wait() {
	m.inFlight.Wait()
}
