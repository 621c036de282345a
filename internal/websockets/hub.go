package websockets

import (
	"encoding/json"

	"go.uber.org/zap"
)

// Hub fans order events out to connected staff dashboards. Customers and
// guests poll the notification endpoints instead; only staff-facing clients
// connect here.
type Hub struct {
	clients map[*Client]bool

	register chan *Client

	unregister chan *Client

	broadcast chan []byte

	log *zap.Logger
}

// NewHub creates a hub; call Run in its own goroutine
func NewHub(log *zap.Logger) *Hub {
	return &Hub{
		broadcast:  make(chan []byte),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		clients:    make(map[*Client]bool),
		log:        log,
	}
}

// BroadcastOrderEvent pushes an order event to every connected client.
// Marshal failures are logged and dropped; the feed is advisory.
func (h *Hub) BroadcastOrderEvent(eventType string, payload interface{}) {
	data, err := json.Marshal(payload)
	if err != nil {
		h.log.Warn("failed to marshal order event", zap.Error(err))
		return
	}

	message, err := json.Marshal(Message{Type: MessageType(eventType), Data: data})
	if err != nil {
		h.log.Warn("failed to marshal order event envelope", zap.Error(err))
		return
	}

	h.broadcast <- message
}

// Run processes registration and broadcast until the process exits
func (h *Hub) Run() {
	for {
		select {
		case client := <-h.register:
			h.clients[client] = true
		case client := <-h.unregister:
			if _, ok := h.clients[client]; ok {
				delete(h.clients, client)
				close(client.send)
			}
		case message := <-h.broadcast:
			for client := range h.clients {
				select {
				case client.send <- message:
				default:
					close(client.send)
					delete(h.clients, client)
				}
			}
		}
	}
}
