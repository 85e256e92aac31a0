package notify

import (
	"context"
	"sync"

	"github.com/SscSPs/vault_ledger/internal/core/domain"
	portssvc "github.com/SscSPs/vault_ledger/internal/core/ports/services"
)

const defaultSubscriberBuffer = 32

type subscriber struct {
	ch       chan domain.Event
	channels []string
}

// Hub fans events out to in-process subscribers such as SSE streams.
// A subscriber that falls behind misses events instead of stalling the publisher.
type Hub struct {
	mu     sync.RWMutex
	subs   map[string]map[*subscriber]struct{}
	buffer int
}

var (
	_ portssvc.EventStreamSvc = (*Hub)(nil)
	_ Sink                    = (*Hub)(nil)
)

// NewHub creates a hub whose subscriptions buffer up to buffer events.
func NewHub(buffer int) *Hub {
	if buffer <= 0 {
		buffer = defaultSubscriberBuffer
	}
	return &Hub{subs: make(map[string]map[*subscriber]struct{}), buffer: buffer}
}

// Subscribe registers for the given channels. The returned cancel func is idempotent and
// closes the event channel.
func (h *Hub) Subscribe(channels ...domain.Channel) (<-chan domain.Event, func()) {
	sub := &subscriber{ch: make(chan domain.Event, h.buffer)}

	h.mu.Lock()
	for _, c := range channels {
		key := c.String()
		set, ok := h.subs[key]
		if !ok {
			set = make(map[*subscriber]struct{})
			h.subs[key] = set
		}
		if _, dup := set[sub]; dup {
			continue
		}
		set[sub] = struct{}{}
		sub.channels = append(sub.channels, key)
	}
	h.mu.Unlock()

	var once sync.Once
	cancel := func() {
		once.Do(func() {
			h.mu.Lock()
			defer h.mu.Unlock()
			for _, key := range sub.channels {
				delete(h.subs[key], sub)
				if len(h.subs[key]) == 0 {
					delete(h.subs, key)
				}
			}
			close(sub.ch)
		})
	}
	return sub.ch, cancel
}

// Publish delivers evt to every subscriber of its channel.
func (h *Hub) Publish(_ context.Context, evt domain.Event) error {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for sub := range h.subs[evt.Channel.String()] {
		select {
		case sub.ch <- evt:
		default:
		}
	}
	return nil
}

// Subscribers returns the number of subscriptions on a channel.
func (h *Hub) Subscribers(c domain.Channel) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subs[c.String()])
}
