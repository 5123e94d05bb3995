package websocket

import (
	"log/slog"
	"sync"
)

// Broadcaster interface for broadcasting events to WebSocket clients.
// This interface enables future Redis adapter implementation for horizontal scaling.
type Broadcaster interface {
	Broadcast(userID, graphID, compileID string, event *WSEvent)
}

// broadcastMsg represents a message to be broadcast to clients
type broadcastMsg struct {
	userID    string
	graphID   string
	compileID string
	event     *WSEvent
}

// Hub manages WebSocket connections and broadcasting compile progress to
// clients watching a graph or a specific compile run.
// It implements the Broadcaster interface.
type Hub struct {
	// Registered clients
	clients map[*Client]bool

	// Channel for registering clients
	register chan *Client

	// Channel for unregistering clients
	unregister chan *Client

	// Channel for broadcasting events
	broadcast chan *broadcastMsg

	// Subscriptions indexes for fast lookup
	byUserID    map[string]map[*Client]bool
	byGraphID   map[string]map[*Client]bool
	byCompileID map[string]map[*Client]bool

	logger *slog.Logger
	mu     sync.RWMutex
}

// NewHub creates a new Hub instance
func NewHub(logger *slog.Logger) *Hub {
	return &Hub{
		clients:     make(map[*Client]bool),
		register:    make(chan *Client),
		unregister:  make(chan *Client),
		broadcast:   make(chan *broadcastMsg, 256),
		byUserID:    make(map[string]map[*Client]bool),
		byGraphID:   make(map[string]map[*Client]bool),
		byCompileID: make(map[string]map[*Client]bool),
		logger:      logger,
	}
}

// Run starts the hub's main event loop.
// This should be called in a goroutine.
func (h *Hub) Run() {
	for {
		select {
		case client := <-h.register:
			h.registerClient(client)

		case client := <-h.unregister:
			h.unregisterClient(client)

		case msg := <-h.broadcast:
			h.broadcastEvent(msg)
		}
	}
}

// registerClient adds a client to the hub
func (h *Hub) registerClient(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.clients[client] = true

	// Index by user ID
	if client.userID != "" {
		if h.byUserID[client.userID] == nil {
			h.byUserID[client.userID] = make(map[*Client]bool)
		}
		h.byUserID[client.userID][client] = true
	}

	h.logger.Debug("client registered",
		"client_id", client.id,
		"user_id", client.userID,
		"total_clients", len(h.clients))
}

// unregisterClient removes a client from the hub
func (h *Hub) unregisterClient(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if _, ok := h.clients[client]; !ok {
		return
	}

	delete(h.clients, client)
	close(client.send)

	// Remove from user index
	if client.userID != "" {
		if clients, ok := h.byUserID[client.userID]; ok {
			delete(clients, client)
			if len(clients) == 0 {
				delete(h.byUserID, client.userID)
			}
		}
	}

	// Remove from subscription indexes
	client.subs.mu.RLock()
	for graphID := range client.subs.graphs {
		if clients, ok := h.byGraphID[graphID]; ok {
			delete(clients, client)
			if len(clients) == 0 {
				delete(h.byGraphID, graphID)
			}
		}
	}
	for compileID := range client.subs.compiles {
		if clients, ok := h.byCompileID[compileID]; ok {
			delete(clients, client)
			if len(clients) == 0 {
				delete(h.byCompileID, compileID)
			}
		}
	}
	client.subs.mu.RUnlock()

	h.logger.Debug("client unregistered",
		"client_id", client.id,
		"user_id", client.userID,
		"total_clients", len(h.clients))
}

// Broadcast sends an event to relevant clients.
// Implements the Broadcaster interface.
func (h *Hub) Broadcast(userID, graphID, compileID string, event *WSEvent) {
	h.broadcast <- &broadcastMsg{
		userID:    userID,
		graphID:   graphID,
		compileID: compileID,
		event:     event,
	}
}

// broadcastEvent sends an event to all matching clients
func (h *Hub) broadcastEvent(msg *broadcastMsg) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	// Collect target clients
	targets := make(map[*Client]bool)

	// If userID is specified, only send to that user's clients
	if msg.userID != "" {
		if clients, ok := h.byUserID[msg.userID]; ok {
			for client := range clients {
				if client.shouldReceive(msg.graphID, msg.compileID) {
					targets[client] = true
				}
			}
		}
	} else {
		// Send to all clients that match the subscription
		// First check compile subscriptions (most specific)
		if msg.compileID != "" {
			if clients, ok := h.byCompileID[msg.compileID]; ok {
				for client := range clients {
					targets[client] = true
				}
			}
		}

		// Then check graph subscriptions
		if msg.graphID != "" {
			if clients, ok := h.byGraphID[msg.graphID]; ok {
				for client := range clients {
					targets[client] = true
				}
			}
		}
	}

	// Send to all target clients
	for client := range targets {
		select {
		case client.send <- msg.event:
		default:
			// Client send buffer full, skip this message
			h.logger.Warn("client buffer full, dropping message",
				"client_id", client.id,
				"event_type", msg.event.Type)
		}
	}
}

// Subscribe adds a subscription for a client
func (h *Hub) Subscribe(client *Client, graphID, compileID string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	client.subs.mu.Lock()
	defer client.subs.mu.Unlock()

	if graphID != "" {
		client.subs.graphs[graphID] = true
		if h.byGraphID[graphID] == nil {
			h.byGraphID[graphID] = make(map[*Client]bool)
		}
		h.byGraphID[graphID][client] = true

		h.logger.Debug("client subscribed to graph",
			"client_id", client.id,
			"graph_id", graphID)
	}

	if compileID != "" {
		client.subs.compiles[compileID] = true
		if h.byCompileID[compileID] == nil {
			h.byCompileID[compileID] = make(map[*Client]bool)
		}
		h.byCompileID[compileID][client] = true

		h.logger.Debug("client subscribed to compile",
			"client_id", client.id,
			"compile_id", compileID)
	}
}

// Unsubscribe removes a subscription for a client
func (h *Hub) Unsubscribe(client *Client, graphID, compileID string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	client.subs.mu.Lock()
	defer client.subs.mu.Unlock()

	if graphID != "" {
		delete(client.subs.graphs, graphID)
		if clients, ok := h.byGraphID[graphID]; ok {
			delete(clients, client)
			if len(clients) == 0 {
				delete(h.byGraphID, graphID)
			}
		}

		h.logger.Debug("client unsubscribed from graph",
			"client_id", client.id,
			"graph_id", graphID)
	}

	if compileID != "" {
		delete(client.subs.compiles, compileID)
		if clients, ok := h.byCompileID[compileID]; ok {
			delete(clients, client)
			if len(clients) == 0 {
				delete(h.byCompileID, compileID)
			}
		}

		h.logger.Debug("client unsubscribed from compile",
			"client_id", client.id,
			"compile_id", compileID)
	}
}

// ClientCount returns the number of connected clients
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}
