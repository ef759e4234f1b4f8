package realtime

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/google/uuid"
	gorillawebsocket "github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/medease/medease/internal/platform/auth"
)

var upgrader = gorillawebsocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true // Allow all origins; tighten in production.
	},
}

// Handler upgrades HTTP connections to WebSockets and routes chat events
// between connected users.
type Handler struct {
	hub    *Hub
	issuer *auth.TokenIssuer
	logger zerolog.Logger
}

func NewHandler(hub *Hub, issuer *auth.TokenIssuer, logger zerolog.Logger) *Handler {
	return &Handler{hub: hub, issuer: issuer, logger: logger}
}

// RegisterRoutes registers the WebSocket endpoint on the echo instance.
func (h *Handler) RegisterRoutes(e *echo.Echo) {
	e.GET("/ws", h.HandleConnect)
}

// HandleConnect authenticates the handshake, upgrades the connection, and
// starts the read/write pumps. Authentication failures are rejected before
// the upgrade so the client receives a plain 401.
func (h *Handler) HandleConnect(c echo.Context) error {
	token := c.QueryParam("token")
	if token == "" {
		authHeader := c.Request().Header.Get("Authorization")
		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) == 2 && strings.EqualFold(parts[0], "bearer") {
			token = parts[1]
		}
	}
	if token == "" {
		return echo.NewHTTPError(http.StatusUnauthorized, "missing token")
	}

	claims, err := h.issuer.Verify(token)
	if err != nil {
		return echo.NewHTTPError(http.StatusUnauthorized, "invalid token")
	}
	userID, err := uuid.Parse(claims.Subject)
	if err != nil {
		return echo.NewHTTPError(http.StatusUnauthorized, "invalid token subject")
	}

	ws, err := upgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		return err
	}

	client := NewClient(userID, claims.Role, &gorillaConnAdapter{ws})
	h.hub.Register(client)

	h.logger.Info().
		Str("user_id", userID.String()).
		Str("role", claims.Role).
		Msg("websocket connected")

	go h.writePump(client)
	go h.readPump(client)

	return nil
}

func (h *Handler) readPump(client *Client) {
	defer func() {
		h.hub.Unregister(client)
		client.conn.Close()
	}()

	for {
		_, message, err := client.conn.ReadMessage()
		if err != nil {
			break
		}

		var env Envelope
		if err := json.Unmarshal(message, &env); err != nil {
			continue // Ignore malformed messages.
		}

		h.Dispatch(client, env)
	}
}

func (h *Handler) writePump(client *Client) {
	defer client.conn.Close()

	for message := range client.Send {
		if err := client.conn.WriteMessage(gorillawebsocket.TextMessage, message); err != nil {
			break
		}
	}
}

type sendPayload struct {
	ReceiverID uuid.UUID `json:"receiverId"`
	Message    string    `json:"message"`
	Timestamp  string    `json:"timestamp"`
	ID         string    `json:"id"`
}

type typingPayload struct {
	ReceiverID uuid.UUID `json:"receiverId"`
}

type readPayload struct {
	MessageIDs []string `json:"messageIds"`
}

// Dispatch routes a single inbound event from a connected client. Events
// addressed to offline users are dropped silently.
func (h *Handler) Dispatch(client *Client, env Envelope) {
	switch env.Event {
	case "message:send":
		var p sendPayload
		if err := json.Unmarshal(env.Data, &p); err != nil || p.ReceiverID == uuid.Nil {
			return
		}
		if p.Timestamp == "" {
			p.Timestamp = nowTimestamp()
		}
		if p.ID == "" {
			p.ID = uuid.NewString()
		}
		h.hub.SendToUser(p.ReceiverID, "message:receive", map[string]string{
			"id":        p.ID,
			"senderId":  client.UserID.String(),
			"message":   p.Message,
			"timestamp": p.Timestamp,
		})

	case "typing:start", "typing:stop":
		var p typingPayload
		if err := json.Unmarshal(env.Data, &p); err != nil || p.ReceiverID == uuid.Nil {
			return
		}
		h.hub.SendToUser(p.ReceiverID, env.Event, map[string]string{
			"userId": client.UserID.String(),
		})

	case "message:read":
		var p readPayload
		if err := json.Unmarshal(env.Data, &p); err != nil {
			return
		}
		// Acknowledged back to the reader so the client can settle its
		// local read state.
		h.hub.SendToUser(client.UserID, "message:read:confirmed", map[string]any{
			"messageIds": p.MessageIDs,
		})
	}
}

// gorillaConnAdapter wraps a gorilla/websocket.Conn to satisfy the Conn interface.
type gorillaConnAdapter struct {
	conn *gorillawebsocket.Conn
}

func (a *gorillaConnAdapter) ReadMessage() (int, []byte, error) {
	return a.conn.ReadMessage()
}

func (a *gorillaConnAdapter) WriteMessage(messageType int, data []byte) error {
	return a.conn.WriteMessage(messageType, data)
}

func (a *gorillaConnAdapter) Close() error {
	return a.conn.Close()
}
