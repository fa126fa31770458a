// Package realtime fans events out to every connected websocket client.
package realtime

import (
	"encoding/json"
	"log/slog"
	"sync/atomic"
)

// Event is the envelope pushed to clients. The only event type today is
// "notification" with the created record as payload.
type Event struct {
	Event string `json:"event"`
	Data  any    `json:"data"`
}

// Hub keeps the registry of connected clients and broadcasts events to all
// of them. Delivery is fire-and-forget, at-most-once: a client whose send
// queue is full is dropped, and missed events are recoverable only through
// the notification list endpoint.
type Hub struct {
	logger *slog.Logger

	clients    map[*Client]bool
	connected  atomic.Int64
	register   chan *Client
	unregister chan *Client
	broadcast  chan []byte
	done       chan struct{}
}

func NewHub(logger *slog.Logger) *Hub {
	if logger == nil {
		logger = slog.Default()
	}
	return &Hub{
		logger:     logger.With("component", "realtime.Hub"),
		clients:    make(map[*Client]bool),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		broadcast:  make(chan []byte, 64),
		done:       make(chan struct{}),
	}
}

// Run owns the client registry; call it in its own goroutine.
func (h *Hub) Run() {
	for {
		select {
		case client := <-h.register:
			h.clients[client] = true
			h.connected.Store(int64(len(h.clients)))
			h.logger.Info("client connected", "clientID", client.id, "connected", len(h.clients))
		case client := <-h.unregister:
			if _, ok := h.clients[client]; ok {
				delete(h.clients, client)
				close(client.send)
				h.connected.Store(int64(len(h.clients)))
				h.logger.Info("client disconnected", "clientID", client.id, "connected", len(h.clients))
			}
		case message := <-h.broadcast:
			for client := range h.clients {
				select {
				case client.send <- message:
				default:
					// Slow consumer, drop it rather than block everyone.
					delete(h.clients, client)
					close(client.send)
					h.logger.Warn("dropping slow client", "clientID", client.id)
				}
			}
			h.connected.Store(int64(len(h.clients)))
		case <-h.done:
			for client := range h.clients {
				delete(h.clients, client)
				close(client.send)
			}
			h.connected.Store(0)
			return
		}
	}
}

// Connected returns the current number of attached clients.
func (h *Hub) Connected() int {
	return int(h.connected.Load())
}

// Stop disconnects all clients and terminates Run.
func (h *Hub) Stop() {
	close(h.done)
}

// Broadcast pushes an event to every connected client. It never blocks the
// caller beyond the hub's buffered queue and never reports per-client
// failures — there is no acknowledgement or retry.
func (h *Hub) Broadcast(event Event) {
	payload, err := json.Marshal(event)
	if err != nil {
		h.logger.Error("failed to marshal event", "event", event.Event, "error", err)
		return
	}
	select {
	case h.broadcast <- payload:
	case <-h.done:
	}
}
