package progress

import (
	"sync"
)

const (
	subscriberBuffer   = 64
	defaultHistorySize = 100
)

// Hub broadcasts events to subscribed channels and keeps a short history
// for late joiners. Slow subscribers miss events rather than blocking the
// reporter.
type Hub struct {
	mu          sync.RWMutex
	subscribers map[chan Event]struct{}
	history     []Event
	historySize int
}

// NewHub creates a hub that retains the last historySize events.
func NewHub(historySize int) *Hub {
	if historySize <= 0 {
		historySize = defaultHistorySize
	}
	return &Hub{
		subscribers: make(map[chan Event]struct{}),
		historySize: historySize,
	}
}

// Report records the event and delivers it to every subscriber.
func (h *Hub) Report(level Level, msg string) {
	h.Publish(NewEvent(level, msg))
}

// Publish records and delivers an already stamped event.
func (h *Hub) Publish(ev Event) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.history = append(h.history, ev)
	if len(h.history) > h.historySize {
		h.history = h.history[len(h.history)-h.historySize:]
	}

	for ch := range h.subscribers {
		select {
		case ch <- ev:
		default:
			// Subscriber buffer full, drop
		}
	}
}

// Subscribe returns a channel that receives future events.
func (h *Hub) Subscribe() chan Event {
	ch := make(chan Event, subscriberBuffer)
	h.mu.Lock()
	h.subscribers[ch] = struct{}{}
	h.mu.Unlock()
	return ch
}

// SubscribeWithHistory returns up to the last n events together with a
// channel for every event published after them. Each event lands in exactly
// one of the two.
func (h *Hub) SubscribeWithHistory(n int) ([]Event, chan Event) {
	ch := make(chan Event, subscriberBuffer)
	h.mu.Lock()
	defer h.mu.Unlock()
	h.subscribers[ch] = struct{}{}
	return h.recentLocked(n), ch
}

// Unsubscribe removes and closes a subscription.
func (h *Hub) Unsubscribe(ch chan Event) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.subscribers[ch]; ok {
		delete(h.subscribers, ch)
		close(ch)
	}
}

// Recent returns up to the last n events, oldest first.
func (h *Hub) Recent(n int) []Event {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.recentLocked(n)
}

func (h *Hub) recentLocked(n int) []Event {
	if n <= 0 || n > len(h.history) {
		n = len(h.history)
	}
	out := make([]Event, n)
	copy(out, h.history[len(h.history)-n:])
	return out
}
