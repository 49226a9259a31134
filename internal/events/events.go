// Package events pushes cache invalidations to the browser tabs of a session
// over a websocket so they can refresh stale views. Delivery is best effort.
package events

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/JaimeStill/agent-meet/internal/session"
	"github.com/JaimeStill/agent-meet/pkg/cache"
	"github.com/JaimeStill/agent-meet/pkg/handlers"
	"github.com/JaimeStill/agent-meet/pkg/lifecycle"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 4 * 1024
	sendBuffer     = 32
)

// Event is the message written for one invalidation.
type Event struct {
	Type      string            `json:"type"`
	Entity    string            `json:"entity"`
	Operation string            `json:"operation,omitempty"`
	Params    map[string]string `json:"params,omitempty"`
	Count     int               `json:"count"`
}

// Hub fans invalidation events out to the clients of each cache scope.
type Hub struct {
	sessions session.System
	logger   *slog.Logger
	upgrader websocket.Upgrader

	mu      sync.RWMutex
	clients map[string]map[*client]struct{}
	closed  bool
}

func NewHub(sessions session.System, logger *slog.Logger) *Hub {
	return &Hub{
		sessions: sessions,
		logger:   logger.With("system", "events"),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
		},
		clients: make(map[string]map[*client]struct{}),
	}
}

// Publish matches cache.InvalidateFunc. Invalidations that touched no entries
// are not sent.
func (h *Hub) Publish(scope string, filter cache.Key, count int) {
	if count == 0 {
		return
	}

	data, err := json.Marshal(Event{
		Type:      "invalidate",
		Entity:    filter.Entity,
		Operation: filter.Operation,
		Params:    filter.Params,
		Count:     count,
	})
	if err != nil {
		h.logger.Error("encode event failed", "error", err)
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()

	for c := range h.clients[scope] {
		select {
		case c.send <- data:
		default:
			h.logger.Warn("event dropped", "scope_clients", len(h.clients[scope]))
		}
	}
}

// Clients counts connected clients for scope.
func (h *Hub) Clients(scope string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients[scope])
}

// ServeHTTP upgrades a signed-in request to a websocket subscribed to the
// session's invalidations.
func (h *Hub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s, err := h.sessions.GetSession(r.Context(), r.Header)
	if err != nil {
		handlers.RespondError(w, h.logger, http.StatusInternalServerError, err)
		return
	}
	if s == nil {
		handlers.RespondError(w, h.logger, http.StatusUnauthorized, session.ErrUnauthorized)
		return
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Warn("websocket upgrade failed", "error", err)
		return
	}

	c := &client{
		hub:   h,
		conn:  conn,
		scope: s.Token,
		send:  make(chan []byte, sendBuffer),
	}
	if !h.register(c) {
		conn.Close()
		return
	}

	go c.writePump()
	go c.readPump()
}

// Start closes every client on shutdown.
func (h *Hub) Start(lc *lifecycle.Coordinator) {
	lc.OnShutdown(func() {
		<-lc.Context().Done()

		h.mu.Lock()
		defer h.mu.Unlock()

		h.closed = true
		for scope, clients := range h.clients {
			for c := range clients {
				close(c.send)
			}
			delete(h.clients, scope)
		}
		h.logger.Info("event hub closed")
	})
}

func (h *Hub) register(c *client) bool {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.closed {
		return false
	}
	if h.clients[c.scope] == nil {
		h.clients[c.scope] = make(map[*client]struct{})
	}
	h.clients[c.scope][c] = struct{}{}
	return true
}

func (h *Hub) unregister(c *client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	clients, ok := h.clients[c.scope]
	if !ok {
		return
	}
	if _, ok := clients[c]; !ok {
		return
	}
	delete(clients, c)
	close(c.send)
	if len(clients) == 0 {
		delete(h.clients, c.scope)
	}
}
