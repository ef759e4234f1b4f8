// Package realtime provides presence tracking and message relay over
// WebSockets. Each authenticated user holds at most one live connection;
// registering a new connection for the same user replaces the previous one.
package realtime

import (
	"encoding/json"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// Envelope is the wire format for every event sent to or received from a
// WebSocket client.
type Envelope struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data,omitempty"`
}

// Conn abstracts a WebSocket connection for testability.
type Conn interface {
	ReadMessage() (messageType int, p []byte, err error)
	WriteMessage(messageType int, data []byte) error
	Close() error
}

// Client represents a single authenticated WebSocket connection.
type Client struct {
	UserID uuid.UUID
	Role   string
	Send   chan []byte
	conn   Conn
}

// NewClient creates a client for the given user over the given connection.
func NewClient(userID uuid.UUID, role string, conn Conn) *Client {
	return &Client{
		UserID: userID,
		Role:   role,
		Send:   make(chan []byte, 256),
		conn:   conn,
	}
}

// Hub tracks which users are online. All operations are thread-safe via
// sync.RWMutex.
type Hub struct {
	mu      sync.RWMutex
	clients map[uuid.UUID]*Client
	logger  zerolog.Logger
}

func NewHub(logger zerolog.Logger) *Hub {
	return &Hub{
		clients: make(map[uuid.UUID]*Client),
		logger:  logger,
	}
}

// Register adds a client to the hub and announces the user as online. If the
// user already has a live connection it is displaced without an offline
// announcement, since the user never left.
func (h *Hub) Register(client *Client) {
	h.mu.Lock()
	prev, replaced := h.clients[client.UserID]
	h.clients[client.UserID] = client
	if replaced {
		// Closed under the lock so concurrent senders, which hold the
		// read lock across their channel send, never race the close.
		close(prev.Send)
	}
	h.mu.Unlock()

	if replaced {
		h.logger.Debug().
			Str("user_id", client.UserID.String()).
			Msg("replaced existing connection")
		return
	}

	h.broadcastExcept(client.UserID, "user:online", map[string]string{
		"userId": client.UserID.String(),
	})
}

// Unregister removes a client and announces the user as offline. A client
// that was already displaced by a newer connection is ignored.
func (h *Hub) Unregister(client *Client) {
	h.mu.Lock()
	current, ok := h.clients[client.UserID]
	if !ok || current != client {
		h.mu.Unlock()
		return
	}
	delete(h.clients, client.UserID)
	close(client.Send)
	h.mu.Unlock()

	h.broadcastExcept(client.UserID, "user:offline", map[string]string{
		"userId": client.UserID.String(),
	})
}

// SendToUser delivers an event to a single user. It reports whether the user
// had a live connection; undeliverable events are dropped.
func (h *Hub) SendToUser(userID uuid.UUID, event string, data any) bool {
	payload, err := marshalEnvelope(event, data)
	if err != nil {
		h.logger.Error().Err(err).Str("event", event).Msg("marshaling event")
		return false
	}

	h.mu.RLock()
	defer h.mu.RUnlock()
	client, ok := h.clients[userID]
	if !ok {
		return false
	}

	select {
	case client.Send <- payload:
		return true
	default:
		// Client buffer full; skip to avoid blocking.
		return false
	}
}

// Broadcast sends an event to every connected client.
func (h *Hub) Broadcast(event string, data any) {
	h.broadcastExcept(uuid.Nil, event, data)
}

func (h *Hub) broadcastExcept(skip uuid.UUID, event string, data any) {
	payload, err := marshalEnvelope(event, data)
	if err != nil {
		h.logger.Error().Err(err).Str("event", event).Msg("marshaling event")
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()
	for userID, client := range h.clients {
		if userID == skip {
			continue
		}
		select {
		case client.Send <- payload:
		default:
			// Client buffer full; skip to avoid blocking.
		}
	}
}

// IsOnline reports whether the given user has a live connection.
func (h *Hub) IsOnline(userID uuid.UUID) bool {
	h.mu.RLock()
	defer h.mu.RUnlock()
	_, ok := h.clients[userID]
	return ok
}

// OnlineUsers returns the IDs of all connected users.
func (h *Hub) OnlineUsers() []uuid.UUID {
	h.mu.RLock()
	defer h.mu.RUnlock()
	ids := make([]uuid.UUID, 0, len(h.clients))
	for id := range h.clients {
		ids = append(ids, id)
	}
	return ids
}

// ClientCount returns the number of connected users.
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

func marshalEnvelope(event string, data any) ([]byte, error) {
	raw, err := json.Marshal(data)
	if err != nil {
		return nil, err
	}
	return json.Marshal(Envelope{Event: event, Data: raw})
}

func nowTimestamp() string {
	return time.Now().UTC().Format(time.RFC3339)
}
