package server

import (
	"context"
	"sync"

	"github.com/rs/zerolog"
)

// Hub tracks connected clients and fans frames out to all of them.
type Hub struct {
	mu      sync.RWMutex
	clients map[*Client]struct{}

	broadcast chan Frame
	log       zerolog.Logger
}

// NewHub creates a hub. Run must be called to deliver broadcasts.
func NewHub(log zerolog.Logger) *Hub {
	return &Hub{
		clients:   make(map[*Client]struct{}),
		broadcast: make(chan Frame, 256),
		log:       log,
	}
}

// Run delivers broadcasts until ctx is cancelled, then disconnects every
// client.
func (h *Hub) Run(ctx context.Context) {
	h.log.Debug().Msg("websocket hub started")
	defer h.log.Debug().Msg("websocket hub stopped")

	for {
		select {
		case <-ctx.Done():
			h.closeAll()
			return
		case frame := <-h.broadcast:
			h.deliver(frame)
		}
	}
}

func (h *Hub) deliver(frame Frame) {
	h.mu.Lock()
	defer h.mu.Unlock()

	for c := range h.clients {
		select {
		case c.send <- frame:
		default:
			h.log.Warn().Str("client_id", c.id).Msg("client too slow, disconnecting")
			delete(h.clients, c)
			close(c.send)
		}
	}
}

func (h *Hub) closeAll() {
	h.mu.Lock()
	defer h.mu.Unlock()

	for c := range h.clients {
		delete(h.clients, c)
		close(c.send)
	}
}

// Register adds a client.
func (h *Hub) Register(c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.clients[c] = struct{}{}
	h.log.Debug().Str("client_id", c.id).Msg("client registered")
}

// Unregister removes a client and closes its send queue. It is safe to call
// more than once.
func (h *Hub) Unregister(c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.clients[c]; ok {
		delete(h.clients, c)
		close(c.send)
		h.log.Debug().Str("client_id", c.id).Msg("client unregistered")
	}
}

// Broadcast queues frame for every client. Frames are dropped when the queue
// is full.
func (h *Hub) Broadcast(frame Frame) {
	select {
	case h.broadcast <- frame:
	default:
		h.log.Warn().Str("type", string(frame.Type)).Msg("broadcast queue full, dropping frame")
	}
}

// ClientCount returns the number of connected clients.
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// SendTo queues frame for a single client. It reports false if the client is
// gone or its queue is full.
func (h *Hub) SendTo(c *Client, frame Frame) bool {
	h.mu.RLock()
	defer h.mu.RUnlock()

	if _, ok := h.clients[c]; !ok {
		return false
	}
	select {
	case c.send <- frame:
		return true
	default:
		return false
	}
}
