package realtime

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/medease/medease/internal/platform/auth"
)

func mustRaw(t *testing.T, v any) json.RawMessage {
	t.Helper()
	data, err := json.Marshal(v)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	return data
}

func newTestHandler() (*Handler, *Hub) {
	hub := NewHub(zerolog.Nop())
	issuer := auth.NewTokenIssuer("test-secret", time.Hour)
	return NewHandler(hub, issuer, zerolog.Nop()), hub
}

func TestHandleConnect_MissingToken(t *testing.T) {
	h, _ := newTestHandler()
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/ws", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	err := h.HandleConnect(c)
	he, ok := err.(*echo.HTTPError)
	if !ok || he.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %v", err)
	}
}

func TestHandleConnect_BadToken(t *testing.T) {
	h, _ := newTestHandler()
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/ws?token=garbage", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	err := h.HandleConnect(c)
	he, ok := err.(*echo.HTTPError)
	if !ok || he.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %v", err)
	}
}

func TestDispatch_MessageSend(t *testing.T) {
	h, hub := newTestHandler()
	sender := newTestClient(uuid.New(), "PATIENT")
	receiver := newTestClient(uuid.New(), "DOCTOR")
	hub.Register(sender)
	hub.Register(receiver)
	recvEnvelope(t, sender) // user:online for receiver

	h.Dispatch(sender, Envelope{
		Event: "message:send",
		Data: mustRaw(t, map[string]string{
			"receiverId": receiver.UserID.String(),
			"message":    "hello doctor",
		}),
	})

	env := recvEnvelope(t, receiver)
	if env.Event != "message:receive" {
		t.Fatalf("expected message:receive, got %s", env.Event)
	}
	var data map[string]string
	if err := json.Unmarshal(env.Data, &data); err != nil {
		t.Fatalf("unmarshal data: %v", err)
	}
	if data["senderId"] != sender.UserID.String() {
		t.Errorf("expected senderId %s, got %s", sender.UserID, data["senderId"])
	}
	if data["message"] != "hello doctor" {
		t.Errorf("unexpected message %q", data["message"])
	}
	if data["id"] == "" {
		t.Error("expected a generated message id")
	}
	if data["timestamp"] == "" {
		t.Error("expected a default timestamp")
	}
	if _, err := time.Parse(time.RFC3339, data["timestamp"]); err != nil {
		t.Errorf("timestamp not RFC3339: %q", data["timestamp"])
	}
}

func TestDispatch_MessageSendPreservesSuppliedFields(t *testing.T) {
	h, hub := newTestHandler()
	sender := newTestClient(uuid.New(), "PATIENT")
	receiver := newTestClient(uuid.New(), "DOCTOR")
	hub.Register(sender)
	hub.Register(receiver)
	recvEnvelope(t, sender)

	h.Dispatch(sender, Envelope{
		Event: "message:send",
		Data: mustRaw(t, map[string]string{
			"receiverId": receiver.UserID.String(),
			"message":    "hi",
			"id":         "client-id-1",
			"timestamp":  "2026-01-15T10:00:00Z",
		}),
	})

	env := recvEnvelope(t, receiver)
	var data map[string]string
	if err := json.Unmarshal(env.Data, &data); err != nil {
		t.Fatalf("unmarshal data: %v", err)
	}
	if data["id"] != "client-id-1" {
		t.Errorf("expected supplied id preserved, got %q", data["id"])
	}
	if data["timestamp"] != "2026-01-15T10:00:00Z" {
		t.Errorf("expected supplied timestamp preserved, got %q", data["timestamp"])
	}
}

func TestDispatch_MessageSendToOfflineUserDropped(t *testing.T) {
	h, hub := newTestHandler()
	sender := newTestClient(uuid.New(), "PATIENT")
	hub.Register(sender)

	// Must not panic or block.
	h.Dispatch(sender, Envelope{
		Event: "message:send",
		Data: mustRaw(t, map[string]string{
			"receiverId": uuid.NewString(),
			"message":    "anyone there?",
		}),
	})
}

func TestDispatch_Typing(t *testing.T) {
	h, hub := newTestHandler()
	sender := newTestClient(uuid.New(), "PATIENT")
	receiver := newTestClient(uuid.New(), "DOCTOR")
	hub.Register(sender)
	hub.Register(receiver)
	recvEnvelope(t, sender)

	for _, event := range []string{"typing:start", "typing:stop"} {
		h.Dispatch(sender, Envelope{
			Event: event,
			Data:  mustRaw(t, map[string]string{"receiverId": receiver.UserID.String()}),
		})

		env := recvEnvelope(t, receiver)
		if env.Event != event {
			t.Fatalf("expected %s, got %s", event, env.Event)
		}
		var data map[string]string
		if err := json.Unmarshal(env.Data, &data); err != nil {
			t.Fatalf("unmarshal data: %v", err)
		}
		if data["userId"] != sender.UserID.String() {
			t.Errorf("expected userId %s, got %s", sender.UserID, data["userId"])
		}
	}
}

func TestDispatch_MessageReadEchoesToReader(t *testing.T) {
	h, hub := newTestHandler()
	reader := newTestClient(uuid.New(), "PATIENT")
	counterpart := newTestClient(uuid.New(), "DOCTOR")
	hub.Register(reader)
	hub.Register(counterpart)
	recvEnvelope(t, reader) // user:online for counterpart

	h.Dispatch(reader, Envelope{
		Event: "message:read",
		Data: mustRaw(t, map[string]any{
			"messageIds": []string{"m1", "m2"},
		}),
	})

	env := recvEnvelope(t, reader)
	if env.Event != "message:read:confirmed" {
		t.Fatalf("expected message:read:confirmed, got %s", env.Event)
	}
	var data struct {
		MessageIDs []string `json:"messageIds"`
	}
	if err := json.Unmarshal(env.Data, &data); err != nil {
		t.Fatalf("unmarshal data: %v", err)
	}
	if len(data.MessageIDs) != 2 {
		t.Errorf("expected 2 message ids, got %v", data.MessageIDs)
	}

	expectNoEvent(t, counterpart)
}

func TestDispatch_MalformedPayloadIgnored(t *testing.T) {
	h, hub := newTestHandler()
	sender := newTestClient(uuid.New(), "PATIENT")
	hub.Register(sender)

	h.Dispatch(sender, Envelope{Event: "message:send", Data: json.RawMessage(`"not an object"`)})
	h.Dispatch(sender, Envelope{Event: "typing:start", Data: json.RawMessage(`{}`)})
	h.Dispatch(sender, Envelope{Event: "unknown:event", Data: json.RawMessage(`{}`)})
}
