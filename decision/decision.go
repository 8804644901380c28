package decision

import (
	"fmt"
	"sync"
	"time"

	"github.com/opd-ai/sonicloop/state"
)

// Decision is a proposed change to one musical parameter.
type Decision struct {
	Parameter  state.Parameter `json:"parameter"`
	Value      state.Value     `json:"value"`
	Reason     string          `json:"reason"`
	Confidence float64         `json:"confidence"`
	Timestamp  time.Time       `json:"timestamp"`
}

// String formats the decision for logs.
func (d Decision) String() string {
	return fmt.Sprintf("%s=%s (%.2f: %s)", d.Parameter, d.Value, d.Confidence, d.Reason)
}

// DefaultHistorySize is the number of decisions kept for introspection.
const DefaultHistorySize = 50

// History is a bounded ring of attempted decisions, oldest evicted first.
// It has no influence on future decisions.
type History struct {
	mu      sync.RWMutex
	entries []Decision
	next    int
	size    int
}

// NewHistory creates a history of at most capacity decisions.
// A non-positive capacity is treated as 1.
func NewHistory(capacity int) *History {
	if capacity < 1 {
		capacity = 1
	}
	return &History{entries: make([]Decision, capacity)}
}

// Append records d.
func (h *History) Append(d Decision) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.entries[h.next] = d
	h.next = (h.next + 1) % len(h.entries)
	if h.size < len(h.entries) {
		h.size++
	}
}

// Recent returns up to n of the newest decisions, oldest first. n <= 0
// returns everything retained.
func (h *History) Recent(n int) []Decision {
	h.mu.RLock()
	defer h.mu.RUnlock()

	if n <= 0 || n > h.size {
		n = h.size
	}
	out := make([]Decision, 0, n)
	start := (h.next - n + len(h.entries)) % len(h.entries)
	for i := 0; i < n; i++ {
		out = append(out, h.entries[(start+i)%len(h.entries)])
	}
	return out
}

// Len returns the number of retained decisions.
func (h *History) Len() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.size
}
