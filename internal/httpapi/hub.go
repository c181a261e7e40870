package httpapi

import (
	"log/slog"
	"sync"

	"github.com/termify/floatspace/internal/metrics"
)

// Hub maintains the set of active clients and broadcasts messages
type Hub struct {
	clients    map[*Client]bool
	broadcast  chan []byte
	register   chan *Client
	unregister chan *Client
	mu         sync.RWMutex
	quit       chan struct{}
	stopOnce   sync.Once
	logger     *slog.Logger
	metrics    *metrics.Metrics
}

// NewHub creates a new hub
func NewHub(logger *slog.Logger, m *metrics.Metrics) *Hub {
	if logger == nil {
		logger = slog.Default()
	}
	return &Hub{
		clients:    make(map[*Client]bool),
		broadcast:  make(chan []byte, 256),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		quit:       make(chan struct{}),
		logger:     logger,
		metrics:    m,
	}
}

// Run starts the hub
func (h *Hub) Run() {
	h.logger.Info("websocket hub started")
	defer h.logger.Info("websocket hub stopped")

	for {
		select {
		case client := <-h.register:
			h.mu.Lock()
			h.clients[client] = true
			h.mu.Unlock()
			h.metrics.ClientConnected(1)
			h.logger.Debug("client registered", "client", client.ID)

		case client := <-h.unregister:
			h.mu.Lock()
			if _, ok := h.clients[client]; ok {
				delete(h.clients, client)
				client.closeSend()
				h.metrics.ClientConnected(-1)
			}
			h.mu.Unlock()
			h.logger.Debug("client unregistered", "client", client.ID)

		case message := <-h.broadcast:
			h.mu.Lock()
			for client := range h.clients {
				if !client.enqueue(message) {
					// Slow client, drop it.
					delete(h.clients, client)
					client.closeSend()
					h.metrics.ClientConnected(-1)
				}
			}
			h.mu.Unlock()

		case <-h.quit:
			h.mu.Lock()
			for client := range h.clients {
				delete(h.clients, client)
				client.closeSend()
				h.metrics.ClientConnected(-1)
			}
			h.mu.Unlock()
			return
		}
	}
}

// Stop stops the hub and disconnects every client
func (h *Hub) Stop() {
	h.stopOnce.Do(func() { close(h.quit) })
}

// Register registers a new client
func (h *Hub) Register(client *Client) {
	select {
	case h.register <- client:
	case <-h.quit:
		client.closeSend()
	}
}

// Unregister unregisters a client
func (h *Hub) Unregister(client *Client) {
	select {
	case h.unregister <- client:
	case <-h.quit:
	}
}

// Broadcast sends an encoded message to all clients
func (h *Hub) Broadcast(message []byte) {
	select {
	case h.broadcast <- message:
	default:
		h.logger.Warn("broadcast channel full, dropping message")
	}
}

// ClientCount returns the number of connected clients
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}
