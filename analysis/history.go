package analysis

import "sync"

// History is a bounded, append-only ring of recent analyses. When full the
// oldest entry is evicted. It serves introspection only.
type History struct {
	mu      sync.RWMutex
	entries []SpectralAnalysis
	next    int
	size    int
}

// NewHistory creates a history holding at most capacity entries.
// A non-positive capacity is treated as 1.
func NewHistory(capacity int) *History {
	if capacity < 1 {
		capacity = 1
	}
	return &History{entries: make([]SpectralAnalysis, capacity)}
}

// Append records a, evicting the oldest entry when full.
func (h *History) Append(a SpectralAnalysis) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.entries[h.next] = a
	h.next = (h.next + 1) % len(h.entries)
	if h.size < len(h.entries) {
		h.size++
	}
}

// Latest returns the most recent analysis, if any.
func (h *History) Latest() (SpectralAnalysis, bool) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	if h.size == 0 {
		return SpectralAnalysis{}, false
	}
	idx := (h.next - 1 + len(h.entries)) % len(h.entries)
	return h.entries[idx], true
}

// All returns a copy of the retained analyses, oldest first.
func (h *History) All() []SpectralAnalysis {
	h.mu.RLock()
	defer h.mu.RUnlock()

	out := make([]SpectralAnalysis, 0, h.size)
	start := (h.next - h.size + len(h.entries)) % len(h.entries)
	for i := 0; i < h.size; i++ {
		out = append(out, h.entries[(start+i)%len(h.entries)])
	}
	return out
}

// Len returns the number of retained analyses.
func (h *History) Len() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.size
}

// Cap returns the maximum number of retained analyses.
func (h *History) Cap() int {
	return len(h.entries)
}
