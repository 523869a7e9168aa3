package stream

import "sync"

// Hub fans live session snapshots out to websocket subscribers, keyed
// by user. A user can have several subscribers (phone plus web view).
type Hub struct {
	clients map[string]map[*Client]struct{}
	mu      sync.RWMutex
}

// Client is one subscriber. Send is closed on Unregister; a slow
// subscriber drops snapshots rather than blocking the tracker.
type Client struct {
	UserID string
	Send   chan []byte
}

func NewHub() *Hub {
	return &Hub{clients: map[string]map[*Client]struct{}{}}
}

func (h *Hub) Register(userID string) *Client {
	client := &Client{
		UserID: userID,
		Send:   make(chan []byte, 64),
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	if h.clients[userID] == nil {
		h.clients[userID] = map[*Client]struct{}{}
	}
	h.clients[userID][client] = struct{}{}
	return client
}

func (h *Hub) Unregister(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if userClients, ok := h.clients[client.UserID]; ok {
		delete(userClients, client)
		if len(userClients) == 0 {
			delete(h.clients, client.UserID)
		}
	}
	close(client.Send)
}

// Broadcast delivers payload to every subscriber of userID. The read
// lock is held across the send loop: sends are non-blocking, and the
// lock keeps Unregister from closing a Send channel mid-delivery.
func (h *Hub) Broadcast(userID string, payload []byte) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	for client := range h.clients[userID] {
		select {
		case client.Send <- payload:
		default:
		}
	}
}
