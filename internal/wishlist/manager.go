package wishlist

import (
	"sync"

	"github.com/skillhublearning/skillhub-client/internal/cart"
	pkgerrors "github.com/skillhublearning/skillhub-client/pkg/errors"
)

// Manager holds the saved-for-later list. Entries are unique by course
// id; saving a course twice is a no-op rather than an error so repeated
// clicks stay quiet.
type Manager struct {
	mu          sync.Mutex
	items       []cart.LineItem
	subscribers []func([]cart.LineItem)
	inFlight    sync.WaitGroup
}

func NewManager() *Manager {
	return &Manager{}
}

// Subscribe registers fn to receive a snapshot after every mutation.
// Notifications run on their own goroutine.
func (m *Manager) Subscribe(fn func([]cart.LineItem)) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.subscribers = append(m.subscribers, fn)
}

// Add saves a course. Duplicates are dropped silently.
func (m *Manager) Add(item cart.LineItem) error {
	if item.ID == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "Course id is required")
	}

	m.mu.Lock()
	for _, existing := range m.items {
		if existing.ID == item.ID {
			m.mu.Unlock()
			return nil
		}
	}
	if item.Quantity < 1 {
		item.Quantity = 1
	}
	m.items = append(m.items, item)
	snapshot := m.snapshotLocked()
	m.mu.Unlock()

	m.notify(snapshot)
	return nil
}

// Remove drops a course from the list. Unknown ids are a no-op.
func (m *Manager) Remove(id string) {
	m.mu.Lock()
	kept := m.items[:0]
	removed := false
	for _, item := range m.items {
		if item.ID == id {
			removed = true
			continue
		}
		kept = append(kept, item)
	}
	m.items = kept
	snapshot := m.snapshotLocked()
	m.mu.Unlock()

	if removed {
		m.notify(snapshot)
	}
}

// MoveToCart transfers a saved course into the cart and removes it from
// the list. The wishlist entry survives when the cart rejects the item.
func (m *Manager) MoveToCart(id string, target *cart.Manager) error {
	m.mu.Lock()
	var found *cart.LineItem
	for i := range m.items {
		if m.items[i].ID == id {
			found = &m.items[i]
			break
		}
	}
	if found == nil {
		m.mu.Unlock()
		return pkgerrors.New(pkgerrors.CodeValidation, "Course is not in the wishlist")
	}
	item := *found
	m.mu.Unlock()

	if err := target.AddItem(item); err != nil {
		return err
	}
	m.Remove(id)
	return nil
}

// Clear empties the list.
func (m *Manager) Clear() {
	m.mu.Lock()
	m.items = nil
	m.mu.Unlock()

	m.notify(nil)
}

// Replace swaps in a server snapshot without notifying subscribers, so a
// pull never triggers a push of the same data.
func (m *Manager) Replace(items []cart.LineItem) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.items = nil
	seen := map[string]bool{}
	for _, item := range items {
		if item.ID == "" || seen[item.ID] {
			continue
		}
		seen[item.ID] = true
		m.items = append(m.items, item)
	}
}

// Items returns a snapshot of the list.
func (m *Manager) Items() []cart.LineItem {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.snapshotLocked()
}

// Contains reports whether the course is saved.
func (m *Manager) Contains(id string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, item := range m.items {
		if item.ID == id {
			return true
		}
	}
	return false
}

func (m *Manager) snapshotLocked() []cart.LineItem {
	out := make([]cart.LineItem, len(m.items))
	copy(out, m.items)
	return out
}

func (m *Manager) notify(snapshot []cart.LineItem) {
	m.mu.Lock()
	subscribers := make([]func([]cart.LineItem), len(m.subscribers))
	copy(subscribers, m.subscribers)
	m.mu.Unlock()

	for _, fn := range subscribers {
		m.inFlight.Add(1)
		go func(deliver func([]cart.LineItem)) {
			defer m.inFlight.Done()
			deliver(snapshot)
		}(fn)
	}
}

// Wait blocks until every subscriber notification dispatched so far has
// run, so short-lived callers can flush pending syncs before exiting.
func (m *Manager) Wait() {
	m.inFlight.Wait()
}
