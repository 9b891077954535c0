package lifecycle

import (
	"sync"
	"time"

	"github.com/docforge/docforge/internal/models"
)

// Event describes one project transition.
type Event struct {
	ProjectID string
	From      models.Status
	To        models.Status
	Timestamp time.Time
}

// Notifier receives one event per transition.
type Notifier interface {
	Notify(event Event)
}

// NotifierFunc adapts a function to the Notifier interface.
type NotifierFunc func(event Event)

func (f NotifierFunc) Notify(event Event) { f(event) }

// nopNotifier discards events.
type nopNotifier struct{}

func (nopNotifier) Notify(Event) {}

// Hub fans transitions out to any number of subscribers. Slow consumers
// lose events rather than blocking a transition.
type Hub struct {
	mu   sync.Mutex
	subs map[int]chan Event
	next int
}

// NewHub creates an empty hub.
func NewHub() *Hub {
	return &Hub{subs: make(map[int]chan Event)}
}

// Subscribe registers a consumer. The returned cancel func removes the
// subscription and closes its channel.
func (h *Hub) Subscribe() (<-chan Event, func()) {
	h.mu.Lock()
	defer h.mu.Unlock()

	id := h.next
	h.next++
	ch := make(chan Event, 16)
	h.subs[id] = ch

	cancel := func() {
		h.mu.Lock()
		defer h.mu.Unlock()
		if sub, exists := h.subs[id]; exists {
			delete(h.subs, id)
			close(sub)
		}
	}
	return ch, cancel
}

// Notify delivers the event to every subscriber.
func (h *Hub) Notify(event Event) {
	h.mu.Lock()
	defer h.mu.Unlock()

	for _, sub := range h.subs {
		select {
		case sub <- event:
		default:
		}
	}
}
