package usecase

import (
	"sync"
	"time"
)

// Clock abstracts wall time and one-shot timers so highlight expiry can be
// driven by tests.
type Clock interface {
	Now() time.Time
	AfterFunc(d time.Duration, f func()) Timer
}

type Timer interface {
	Stop() bool
}

type systemClock struct{}

// SystemClock returns the real clock.
func SystemClock() Clock { return systemClock{} }

func (systemClock) Now() time.Time { return time.Now() }

func (systemClock) AfterFunc(d time.Duration, f func()) Timer {
	return time.AfterFunc(d, f)
}

type HighlightKind string

const (
	HighlightIncrease HighlightKind = "increase"
	HighlightDecrease HighlightKind = "decrease"
)

// Highlight marks a team whose total just moved.
type Highlight struct {
	Kind      HighlightKind
	ExpiresAt time.Time
}

type highlightEntry struct {
	highlight Highlight
	timer     Timer
	gen       uint64
}

// HighlightScheduler keeps at most one pending highlight per team. A new
// highlight for the same team replaces the pending one and restarts its timer.
type HighlightScheduler struct {
	clock    Clock
	duration time.Duration
	onExpire func(storeID string)

	mu      sync.Mutex
	entries map[string]*highlightEntry
	gen     uint64
	closed  bool
}

func NewHighlightScheduler(clock Clock, duration time.Duration, onExpire func(storeID string)) *HighlightScheduler {
	if clock == nil {
		clock = SystemClock()
	}
	if duration <= 0 {
		duration = time.Second
	}
	return &HighlightScheduler{
		clock:    clock,
		duration: duration,
		onExpire: onExpire,
		entries:  make(map[string]*highlightEntry),
	}
}

// Schedule returns the highlight now pending for storeID.
func (h *HighlightScheduler) Schedule(storeID string, kind HighlightKind) Highlight {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.closed {
		return Highlight{}
	}
	if prev, ok := h.entries[storeID]; ok {
		prev.timer.Stop()
	}

	h.gen++
	gen := h.gen
	entry := &highlightEntry{
		highlight: Highlight{Kind: kind, ExpiresAt: h.clock.Now().Add(h.duration)},
		gen:       gen,
	}
	entry.timer = h.clock.AfterFunc(h.duration, func() {
		h.expire(storeID, gen)
	})
	h.entries[storeID] = entry
	return entry.highlight
}

// expire drops the entry only if it still belongs to the timer that fired.
// The callback runs after the lock is released.
func (h *HighlightScheduler) expire(storeID string, gen uint64) {
	h.mu.Lock()
	entry, ok := h.entries[storeID]
	if !ok || entry.gen != gen || h.closed {
		h.mu.Unlock()
		return
	}
	delete(h.entries, storeID)
	h.mu.Unlock()

	if h.onExpire != nil {
		h.onExpire(storeID)
	}
}

func (h *HighlightScheduler) Cancel(storeID string) bool {
	h.mu.Lock()
	defer h.mu.Unlock()

	entry, ok := h.entries[storeID]
	if !ok {
		return false
	}
	entry.timer.Stop()
	delete(h.entries, storeID)
	return true
}

// Active returns a copy of the pending highlights keyed by team store id.
func (h *HighlightScheduler) Active() map[string]Highlight {
	h.mu.Lock()
	defer h.mu.Unlock()

	out := make(map[string]Highlight, len(h.entries))
	for id, entry := range h.entries {
		out[id] = entry.highlight
	}
	return out
}

func (h *HighlightScheduler) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.closed = true
	for id, entry := range h.entries {
		entry.timer.Stop()
		delete(h.entries, id)
	}
}
