// Package broadcast fans service events out to every connected observer.
//
// Delivery is best effort: each subscriber owns a bounded queue, and an event
// that does not fit is dropped for that subscriber only. Publishing never
// blocks and never fails, so a slow dashboard cannot stall the tracker.
package broadcast

import (
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/lucsky/cuid"
)

type Event struct {
	ID      string    `json:"id"`
	Kind    string    `json:"kind"`
	Payload any       `json:"payload"`
	At      time.Time `json:"at"`
}

// Publisher is the producer side of the hub.
type Publisher interface {
	Publish(kind string, payload any)
}

type Subscription struct {
	name    string
	events  chan Event
	hub     *Hub
	dropped atomic.Int64
}

// Events is closed once the subscription is removed from the hub.
func (s *Subscription) Events() <-chan Event { return s.events }

func (s *Subscription) Name() string { return s.name }

// Dropped reports how many events were discarded because the queue was full.
func (s *Subscription) Dropped() int64 { return s.dropped.Load() }

func (s *Subscription) Close() { s.hub.Unsubscribe(s) }

type Hub struct {
	mu     sync.RWMutex
	subs   map[*Subscription]struct{}
	logger *slog.Logger
}

func NewHub(logger *slog.Logger) *Hub {
	if logger == nil {
		logger = slog.Default()
	}
	return &Hub{
		subs:   make(map[*Subscription]struct{}),
		logger: logger,
	}
}

func (h *Hub) Subscribe(name string, buffer int) *Subscription {
	if buffer < 1 {
		buffer = 1
	}
	sub := &Subscription{name: name, events: make(chan Event, buffer), hub: h}

	h.mu.Lock()
	h.subs[sub] = struct{}{}
	h.mu.Unlock()

	h.logger.Debug("observer subscribed", "observer", name)
	return sub
}

// Unsubscribe removes sub and closes its channel. Calling it twice is a no-op.
func (h *Hub) Unsubscribe(sub *Subscription) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if _, ok := h.subs[sub]; !ok {
		return
	}
	delete(h.subs, sub)
	close(sub.events)
	h.logger.Debug("observer unsubscribed", "observer", sub.name, "dropped", sub.Dropped())
}

// Publish enqueues the event on every current subscriber without blocking.
func (h *Hub) Publish(kind string, payload any) {
	event := Event{
		ID:      cuid.New(),
		Kind:    kind,
		Payload: payload,
		At:      time.Now().UTC(),
	}

	// sends happen under the read lock so Unsubscribe cannot close a channel mid-send
	h.mu.RLock()
	defer h.mu.RUnlock()

	for sub := range h.subs {
		select {
		case sub.events <- event:
		default:
			sub.dropped.Add(1)
			h.logger.Warn("observer queue full, dropping event", "observer", sub.name, "kind", kind)
		}
	}
}

func (h *Hub) Len() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subs)
}

// Close unsubscribes everyone.
func (h *Hub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()

	for sub := range h.subs {
		delete(h.subs, sub)
		close(sub.events)
	}
}
