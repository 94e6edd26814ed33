package realtime

import (
	"encoding/json"
	"log/slog"
)

// Broadcast event names, mirrored 1:1 with the mutating call events. These
// are fire-and-forget fan-outs to every connected client so open task lists
// can refresh; they are not scoped to the task's owner.
const (
	EventTaskCreated       = "tasks:created"
	EventTaskUpdated       = "tasks:updated"
	EventTaskDeleted       = "tasks:deleted"
	EventAttachmentDeleted = "attachments:deleted"
)

type broadcastFrame struct {
	Event string `json:"event"`
	Data  any    `json:"data,omitempty"`
}

// Hub owns the connection registry. All registry mutations go through its
// run loop, so no lock is needed.
type Hub struct {
	clients    map[*Client]bool
	register   chan *Client
	unregister chan *Client
	broadcast  chan []byte
	done       chan struct{}
}

func NewHub() *Hub {
	return &Hub{
		clients:    make(map[*Client]bool),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		broadcast:  make(chan []byte, 64),
		done:       make(chan struct{}),
	}
}

// Run processes registry events until Close is called.
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
					// Slow consumer, drop it rather than block the hub.
					delete(h.clients, client)
					close(client.send)
				}
			}
		case <-h.done:
			for client := range h.clients {
				delete(h.clients, client)
				close(client.send)
			}
			return
		}
	}
}

// Broadcast sends an event to every connected client.
func (h *Hub) Broadcast(event string, data any) {
	message, err := json.Marshal(broadcastFrame{Event: event, Data: data})
	if err != nil {
		slog.Error("failed to marshal broadcast", "event", event, "error", err)
		return
	}

	select {
	case h.broadcast <- message:
	case <-h.done:
	}
}

// Close shuts the hub down and disconnects all clients.
func (h *Hub) Close() {
	close(h.done)
}
