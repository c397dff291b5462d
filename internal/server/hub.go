package server

import (
	"sync"
)

// hub fans scan events out to websocket subscribers. Slow subscribers lose
// events rather than stalling scans.
type hub struct {
	mu      sync.Mutex
	clients map[chan any]struct{}
}

func newHub() *hub {
	return &hub{clients: make(map[chan any]struct{})}
}

func (h *hub) subscribe() chan any {
	ch := make(chan any, 16)
	h.mu.Lock()
	h.clients[ch] = struct{}{}
	h.mu.Unlock()
	return ch
}

func (h *hub) unsubscribe(ch chan any) {
	h.mu.Lock()
	if _, ok := h.clients[ch]; ok {
		delete(h.clients, ch)
		close(ch)
	}
	h.mu.Unlock()
}

func (h *hub) broadcast(v any) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for ch := range h.clients {
		select {
		case ch <- v:
		default:
		}
	}
}

func (h *hub) count() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients)
}

func (h *hub) closeAll() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for ch := range h.clients {
		delete(h.clients, ch)
		close(ch)
	}
}
