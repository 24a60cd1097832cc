package notify

import (
	"context"
	"sync"
)

// Capture records notifications for assertions in tests.
type Capture struct {
	mu      sync.Mutex
	entries []Entry
}

type Entry struct {
	Level   string
	Message string
}

func NewCapture() *Capture {
	return &Capture{}
}

func (c *Capture) Success(_ context.Context, msg string) { c.record("success", msg) }
func (c *Capture) Info(_ context.Context, msg string)    { c.record("info", msg) }
func (c *Capture) Warning(_ context.Context, msg string) { c.record("warning", msg) }
func (c *Capture) Error(_ context.Context, msg string)   { c.record("error", msg) }

func (c *Capture) record(level, msg string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = append(c.entries, Entry{Level: level, Message: msg})
}

// Entries returns a copy of everything recorded so far.
func (c *Capture) Entries() []Entry {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]Entry, len(c.entries))
	copy(out, c.entries)
	return out
}

// ByLevel returns the messages recorded at the given level.
func (c *Capture) ByLevel(level string) []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	var out []string
	for _, e := range c.entries {
		if e.Level == level {
			out = append(out, e.Message)
		}
	}
	return out
}
