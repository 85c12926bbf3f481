package app

import (
	"sync"

	"github.com/ayusman/handrps/internal/game"
)

// subscriberBuffer is how many outputs a slow subscriber may lag behind
// before frames are dropped for it.
const subscriberBuffer = 8

// Hub fans per-frame outputs out to viewers.
type Hub struct {
	mu   sync.Mutex
	subs map[chan game.Output]struct{}
}

// NewHub creates an empty Hub.
func NewHub() *Hub {
	return &Hub{subs: make(map[chan game.Output]struct{})}
}

// Subscribe registers a new listener. The returned cancel func removes it
// and closes the channel.
func (h *Hub) Subscribe() (<-chan game.Output, func()) {
	ch := make(chan game.Output, subscriberBuffer)

	h.mu.Lock()
	h.subs[ch] = struct{}{}
	h.mu.Unlock()

	var once sync.Once
	cancel := func() {
		once.Do(func() {
			h.mu.Lock()
			delete(h.subs, ch)
			h.mu.Unlock()
			close(ch)
		})
	}
	return ch, cancel
}

// Publish delivers out to every subscriber without blocking; subscribers
// whose buffer is full miss this output.
func (h *Hub) Publish(out game.Output) {
	h.mu.Lock()
	defer h.mu.Unlock()

	for ch := range h.subs {
		select {
		case ch <- out:
		default:
		}
	}
}

// Len returns the number of subscribers.
func (h *Hub) Len() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.subs)
}
