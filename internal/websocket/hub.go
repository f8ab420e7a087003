package websocket

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"

	"github.com/hearth-app/hearth/internal/live"
)

// Message is one change notification pushed to connected clients.
type Message struct {
	Type       string `json:"type"`
	Entity     string `json:"entity"`
	Action     string `json:"action"`
	ID         int64  `json:"id,omitempty"`
	CategoryID int64  `json:"category_id,omitempty"`
}

// NewMessage creates a Message with the Type field derived from entity and action.
func NewMessage(entity, action string, id, categoryID int64) Message {
	return Message{
		Type:       fmt.Sprintf("%s_%s", entity, action),
		Entity:     entity,
		Action:     action,
		ID:         id,
		CategoryID: categoryID,
	}
}

// Hub maintains the set of active WebSocket clients and broadcasts
// messages to the clients of one household at a time.
type Hub struct {
	mu      sync.RWMutex
	clients map[*Client]struct{}
	logger  *slog.Logger
}

// NewHub creates a new Hub.
func NewHub(logger *slog.Logger) *Hub {
	return &Hub{
		clients: make(map[*Client]struct{}),
		logger:  logger,
	}
}

// Register adds a client to the hub.
func (h *Hub) Register(c *Client) {
	h.mu.Lock()
	h.clients[c] = struct{}{}
	h.mu.Unlock()
}

// Unregister removes a client from the hub and closes its send channel.
func (h *Hub) Unregister(c *Client) {
	h.mu.Lock()
	if _, ok := h.clients[c]; ok {
		delete(h.clients, c)
		c.closeSend()
	}
	h.mu.Unlock()
}

// Broadcast sends a message to every client of the given household.
func (h *Hub) Broadcast(householdID int64, msg Message) {
	data, err := json.Marshal(msg)
	if err != nil {
		h.logger.Error("marshal broadcast", "error", err)
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()

	for c := range h.clients {
		if c.householdID != householdID {
			continue
		}
		c.Send(data)
	}
}

// ClientCount returns the number of connected clients.
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// Relay forwards bus events to the hub until the subscription is
// cancelled. Run it in a goroutine; the returned cancel stops it.
func Relay(bus *live.Bus, hub *Hub) func() {
	events, cancel := bus.Subscribe(64)
	go func() {
		for ev := range events {
			hub.Broadcast(ev.HouseholdID, NewMessage(ev.Collection, ev.Action, ev.ID, ev.CategoryID))
		}
	}()
	return cancel
}
