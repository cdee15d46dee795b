// Package realtime pushes committed notifications to the recipient's open
// websocket connections.
package realtime

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/iwaqasmaqbool/gms-sub002/internal/domain/notification"
	"github.com/iwaqasmaqbool/gms-sub002/internal/domain/shared"
	"go.uber.org/zap"
)

const (
	writeWait  = 5 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = 30 * time.Second
)

// Message is the frame written to the browser
type Message struct {
	Type         string                     `json:"type"`
	Notification *notification.Notification `json:"notification,omitempty"`
	UnreadDelta  int                        `json:"unread_delta"`
}

// client is one websocket connection. Writes are serialized by mu.
type client struct {
	userID uuid.UUID
	conn   *websocket.Conn
	mu     sync.Mutex
}

func (c *client) write(data []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
	return c.conn.WriteMessage(websocket.TextMessage, data)
}

func (c *client) ping() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(writeWait))
}

// Hub tracks connections per user
type Hub struct {
	mu       sync.RWMutex
	clients  map[uuid.UUID]map[*client]struct{}
	upgrader websocket.Upgrader
	logger   *zap.Logger
}

// Option configures the hub
type Option func(*Hub)

// WithCheckOrigin replaces the same-origin check of the upgrader
func WithCheckOrigin(fn func(r *http.Request) bool) Option {
	return func(h *Hub) {
		h.upgrader.CheckOrigin = fn
	}
}

// NewHub creates an empty hub
func NewHub(logger *zap.Logger, opts ...Option) *Hub {
	h := &Hub{
		clients: make(map[uuid.UUID]map[*client]struct{}),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
		},
		logger: logger,
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// EventTypes returns the events the hub forwards
func (h *Hub) EventTypes() []string {
	return []string{notification.EventTypeCreated}
}

// Handle forwards a created notification to its recipient
func (h *Hub) Handle(_ context.Context, e shared.DomainEvent) error {
	evt, ok := e.(*notification.CreatedEvent)
	if !ok {
		return nil
	}
	n := evt.Notification
	h.SendToUser(n.UserID, Message{Type: "notification", Notification: &n, UnreadDelta: 1})
	return nil
}

// SendToUser writes msg to every connection of the user. Connections that
// fail the write are dropped.
func (h *Hub) SendToUser(userID uuid.UUID, msg Message) int {
	data, err := json.Marshal(msg)
	if err != nil {
		h.logger.Error("Failed to encode realtime message", zap.Error(err))
		return 0
	}

	h.mu.RLock()
	targets := make([]*client, 0, len(h.clients[userID]))
	for c := range h.clients[userID] {
		targets = append(targets, c)
	}
	h.mu.RUnlock()

	sent := 0
	for _, c := range targets {
		if err := c.write(data); err != nil {
			h.logger.Debug("Dropping websocket client", zap.String("user_id", userID.String()), zap.Error(err))
			h.unregister(c)
			continue
		}
		sent++
	}
	return sent
}

// Connections returns the number of open connections for the user
func (h *Hub) Connections(userID uuid.UUID) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients[userID])
}

// ServeWS upgrades the request and keeps the connection open until the
// browser goes away. Inbound frames are discarded.
func (h *Hub) ServeWS(w http.ResponseWriter, r *http.Request, userID uuid.UUID) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Warn("Websocket upgrade failed", zap.Error(err))
		return
	}
	c := &client{userID: userID, conn: conn}
	h.register(c)
	defer h.unregister(c)

	conn.SetReadLimit(512)
	_ = conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	done := make(chan struct{})
	defer close(done)
	go func() {
		ticker := time.NewTicker(pingPeriod)
		defer ticker.Stop()
		for {
			select {
			case <-done:
				return
			case <-ticker.C:
				if err := c.ping(); err != nil {
					return
				}
			}
		}
	}()

	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			return
		}
	}
}

// Close disconnects every client
func (h *Hub) Close() {
	h.mu.Lock()
	all := h.clients
	h.clients = make(map[uuid.UUID]map[*client]struct{})
	h.mu.Unlock()
	for _, set := range all {
		for c := range set {
			_ = c.conn.Close()
		}
	}
}

func (h *Hub) register(c *client) {
	h.mu.Lock()
	set, ok := h.clients[c.userID]
	if !ok {
		set = make(map[*client]struct{})
		h.clients[c.userID] = set
	}
	set[c] = struct{}{}
	count := len(set)
	h.mu.Unlock()
	h.logger.Debug("Websocket client connected", zap.String("user_id", c.userID.String()), zap.Int("connections", count))
}

func (h *Hub) unregister(c *client) {
	h.mu.Lock()
	if set, ok := h.clients[c.userID]; ok {
		delete(set, c)
		if len(set) == 0 {
			delete(h.clients, c.userID)
		}
	}
	h.mu.Unlock()
	_ = c.conn.Close()
}
