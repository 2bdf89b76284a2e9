package state

import (
	"sync"

	"github.com/google/uuid"

	"cortlandcast/logger"
	"cortlandcast/metrics"
	"cortlandcast/model"
)

// sendBuffer is the per-subscriber queue depth. A subscriber that
// falls this far behind is dropped rather than allowed to block the
// broadcast.
const sendBuffer = 64

// Subscriber is one live event consumer. It owns nothing but its
// outbound queue; the transport layer drains Send until it is closed.
type Subscriber struct {
	ID   string
	Send chan *model.Event
}

// Hub delivers every broadcast event to all current subscribers.
// Broadcasts come from the single poller goroutine; subscribe and
// unsubscribe run on arbitrary request goroutines.
type Hub struct {
	mu          sync.RWMutex
	subscribers map[string]*Subscriber

	// Last now_playing event, replayed to new subscribers so they do
	// not have to wait for the next track change.
	lastNowPlaying *model.Event
}

// NewHub creates an empty hub.
func NewHub() *Hub {
	return &Hub{subscribers: make(map[string]*Subscriber)}
}

// Subscribe registers a new subscriber and returns it. If a track is
// already known, the subscriber immediately receives a now_playing
// event.
func (h *Hub) Subscribe() *Subscriber {
	sub := &Subscriber{
		ID:   uuid.NewString(),
		Send: make(chan *model.Event, sendBuffer),
	}

	h.mu.Lock()
	h.subscribers[sub.ID] = sub
	if h.lastNowPlaying != nil {
		sub.Send <- h.lastNowPlaying
	}
	h.mu.Unlock()

	metrics.Subscribers.Inc()
	logger.Debug("subscriber registered", logger.String("id", sub.ID))
	return sub
}

// Unsubscribe removes a subscriber and closes its queue. Safe to call
// more than once for the same subscriber.
func (h *Hub) Unsubscribe(sub *Subscriber) {
	h.mu.Lock()
	_, ok := h.subscribers[sub.ID]
	if ok {
		delete(h.subscribers, sub.ID)
		close(sub.Send)
	}
	h.mu.Unlock()

	if ok {
		metrics.Subscribers.Dec()
		logger.Debug("subscriber unregistered", logger.String("id", sub.ID))
	}
}

// Broadcast delivers the event to every subscriber. Sends never block:
// a subscriber with a full queue is dropped so the rest keep receiving
// in production order.
func (h *Hub) Broadcast(ev *model.Event) {
	h.mu.Lock()
	if ev.Type == model.KeyNowPlaying {
		h.lastNowPlaying = ev
	}

	var stalled []*Subscriber
	for _, sub := range h.subscribers {
		select {
		case sub.Send <- ev:
		default:
			stalled = append(stalled, sub)
		}
	}
	h.mu.Unlock()

	for _, sub := range stalled {
		logger.Warn("dropping slow subscriber", logger.String("id", sub.ID))
		h.Unsubscribe(sub)
	}
}

// Count returns the number of live subscribers.
func (h *Hub) Count() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subscribers)
}
