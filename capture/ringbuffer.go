package capture

import (
	"sync"
	"time"
)

// Block is one buffer delivered by a capture driver.
type Block struct {
	Samples   []float32
	Timestamp time.Time
}

type slot struct {
	samples []float32
	n       int
	ts      time.Time
}

// RingBuffer is a fixed-capacity buffer of the most recent capture blocks.
//
// Push never blocks on readers beyond the copy itself: when the ring is full
// the oldest block is overwritten and counted as dropped. Slots are
// preallocated, so pushes of at most slotSize samples do not allocate.
type RingBuffer struct {
	mu      sync.Mutex
	slots   []slot
	head    int // index of the oldest retained block
	size    int
	dropped uint64
	pushed  uint64
}

// NewRingBuffer creates a ring of capacity blocks with slotSize samples
// preallocated per block. A non-positive capacity is treated as 1.
func NewRingBuffer(capacity, slotSize int) *RingBuffer {
	if capacity < 1 {
		capacity = 1
	}
	if slotSize < 0 {
		slotSize = 0
	}
	slots := make([]slot, capacity)
	for i := range slots {
		slots[i].samples = make([]float32, slotSize)
	}
	return &RingBuffer{slots: slots}
}

// Push copies samples into the ring as the newest block. It reports whether
// the oldest block had to be evicted to make room.
func (r *RingBuffer) Push(samples []float32, ts time.Time) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	evicted := false
	idx := (r.head + r.size) % len(r.slots)
	if r.size == len(r.slots) {
		idx = r.head
		r.head = (r.head + 1) % len(r.slots)
		r.dropped++
		evicted = true
	} else {
		r.size++
	}

	s := &r.slots[idx]
	if cap(s.samples) < len(samples) {
		s.samples = make([]float32, len(samples))
	}
	s.samples = s.samples[:cap(s.samples)]
	s.n = copy(s.samples, samples)
	s.ts = ts
	r.pushed++
	return evicted
}

// Drain removes every retained block and returns copies of the newest max of
// them, oldest first. Older drained blocks are discarded. A non-positive max
// returns all retained blocks.
func (r *RingBuffer) Drain(max int) []Block {
	r.mu.Lock()
	defer r.mu.Unlock()

	blocks := r.copyNewest(max)
	r.head = 0
	r.size = 0
	return blocks
}

// Snapshot returns copies of the retained blocks, oldest first, without
// consuming them.
func (r *RingBuffer) Snapshot() []Block {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.copyNewest(0)
}

func (r *RingBuffer) copyNewest(max int) []Block {
	count := r.size
	if max > 0 && max < count {
		count = max
	}
	out := make([]Block, 0, count)
	start := r.size - count
	for i := start; i < r.size; i++ {
		s := r.slots[(r.head+i)%len(r.slots)]
		samples := make([]float32, s.n)
		copy(samples, s.samples[:s.n])
		out = append(out, Block{Samples: samples, Timestamp: s.ts})
	}
	return out
}

// Len returns the number of retained blocks.
func (r *RingBuffer) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.size
}

// Cap returns the maximum number of retained blocks.
func (r *RingBuffer) Cap() int {
	return len(r.slots)
}

// Dropped returns how many blocks were evicted before being consumed.
func (r *RingBuffer) Dropped() uint64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.dropped
}

// Pushed returns how many blocks were written in total.
func (r *RingBuffer) Pushed() uint64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.pushed
}
