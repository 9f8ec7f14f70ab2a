package monitor

import (
	"sync"
	"time"
)

// Alert is one emitted misbehavior alert. Alerts are immutable once created.
type Alert struct {
	ID        uint64    `json:"id"`
	Timestamp time.Time `json:"timestamp"`
	Rule      string    `json:"rule"`
	Severity  Severity  `json:"severity"`
	System    bool      `json:"system"`
	PID       int32     `json:"pid,omitempty"`
	StartTime int64     `json:"start_time,omitempty"`
	Target    string    `json:"target"`
	Message   string    `json:"message"`
}

// AlertHistory is a bounded FIFO log of alerts. Once at capacity, appending
// evicts the oldest entry. Safe for concurrent readers alongside the single
// writing tick loop.
type AlertHistory struct {
	mu     sync.RWMutex
	buf    []Alert
	head   int
	count  int
	nextID uint64
}

// NewAlertHistory creates a history bounded to the given capacity
func NewAlertHistory(capacity int) *AlertHistory {
	if capacity <= 0 {
		capacity = 100
	}
	return &AlertHistory{
		buf:    make([]Alert, capacity),
		nextID: 1,
	}
}

// Append assigns the next id to the alert, stores it and returns the stored
// value. Eviction of the oldest entry happens in place, O(1).
func (h *AlertHistory) Append(a Alert) Alert {
	h.mu.Lock()
	defer h.mu.Unlock()

	a.ID = h.nextID
	h.nextID++

	if h.count < len(h.buf) {
		h.buf[(h.head+h.count)%len(h.buf)] = a
		h.count++
	} else {
		h.buf[h.head] = a
		h.head = (h.head + 1) % len(h.buf)
	}

	return a
}

// All returns a copy of the history in emission order, oldest first
func (h *AlertHistory) All() []Alert {
	h.mu.RLock()
	defer h.mu.RUnlock()

	out := make([]Alert, h.count)
	for i := 0; i < h.count; i++ {
		out[i] = h.buf[(h.head+i)%len(h.buf)]
	}
	return out
}

// Len returns the number of retained alerts
func (h *AlertHistory) Len() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.count
}
