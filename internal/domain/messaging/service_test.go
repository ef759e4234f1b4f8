package messaging

import (
	"context"
	"errors"
	"sort"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/medease/medease/internal/httpapi"
)

type mockRepo struct {
	messages []*Message
	clock    time.Time
}

func newMockRepo() *mockRepo {
	return &mockRepo{clock: time.Date(2025, time.March, 12, 9, 0, 0, 0, time.UTC)}
}

func (m *mockRepo) Create(_ context.Context, msg *Message) error {
	msg.ID = uuid.New()
	m.clock = m.clock.Add(time.Minute)
	msg.CreatedAt = m.clock
	stored := *msg
	m.messages = append(m.messages, &stored)
	return nil
}

func (m *mockRepo) between(a, b uuid.UUID) []*Message {
	var out []*Message
	for _, msg := range m.messages {
		if (msg.SenderID == a && msg.ReceiverID == b) || (msg.SenderID == b && msg.ReceiverID == a) {
			copied := *msg
			out = append(out, &copied)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out
}

func (m *mockRepo) ListBetween(_ context.Context, a, b uuid.UUID) ([]*Message, error) {
	return m.between(a, b), nil
}

func (m *mockRepo) LastBetween(_ context.Context, a, b uuid.UUID) (*Message, error) {
	msgs := m.between(a, b)
	if len(msgs) == 0 {
		return nil, nil
	}
	return msgs[len(msgs)-1], nil
}

func (m *mockRepo) Counterparts(_ context.Context, userID uuid.UUID) ([]uuid.UUID, error) {
	seen := make(map[uuid.UUID]bool)
	var ids []uuid.UUID
	for _, msg := range m.messages {
		var other uuid.UUID
		switch userID {
		case msg.SenderID:
			other = msg.ReceiverID
		case msg.ReceiverID:
			other = msg.SenderID
		default:
			continue
		}
		if !seen[other] {
			seen[other] = true
			ids = append(ids, other)
		}
	}
	return ids, nil
}

func (m *mockRepo) UnreadFrom(_ context.Context, senderID, receiverID uuid.UUID) (int, error) {
	n := 0
	for _, msg := range m.messages {
		if msg.SenderID == senderID && msg.ReceiverID == receiverID && !msg.Read {
			n++
		}
	}
	return n, nil
}

func (m *mockRepo) UnreadTotal(_ context.Context, receiverID uuid.UUID) (int, error) {
	n := 0
	for _, msg := range m.messages {
		if msg.ReceiverID == receiverID && !msg.Read {
			n++
		}
	}
	return n, nil
}

func (m *mockRepo) MarkRead(_ context.Context, senderID, receiverID uuid.UUID) error {
	for _, msg := range m.messages {
		if msg.SenderID == senderID && msg.ReceiverID == receiverID {
			msg.Read = true
		}
	}
	return nil
}

type mockDirectory struct {
	profiles map[uuid.UUID]*Profile
}

func (m *mockDirectory) GetProfile(_ context.Context, id uuid.UUID) (*Profile, error) {
	p, ok := m.profiles[id]
	if !ok {
		return nil, ErrUserNotFound
	}
	return p, nil
}

func newTestService(users ...*Profile) (*Service, *mockRepo) {
	repo := newMockRepo()
	dir := &mockDirectory{profiles: make(map[uuid.UUID]*Profile)}
	for _, u := range users {
		dir.profiles[u.ID] = u
	}
	return NewService(repo, dir), repo
}

func profile(name, role string) *Profile {
	return &Profile{ID: uuid.New(), Name: name, Role: role}
}

func TestSend(t *testing.T) {
	alice := profile("Alice", "PATIENT")
	bob := profile("Bob", "DOCTOR")
	svc, repo := newTestService(alice, bob)

	msg, err := svc.Send(context.Background(), alice.ID, SendMessageRequest{
		ReceiverID: bob.ID.String(),
		Message:    "hello doctor",
	})
	if err != nil {
		t.Fatalf("send: %v", err)
	}
	if msg.SenderID != alice.ID || msg.ReceiverID != bob.ID || msg.Content != "hello doctor" {
		t.Errorf("unexpected message %+v", msg)
	}
	if msg.Read {
		t.Error("new messages start unread")
	}
	if len(repo.messages) != 1 {
		t.Errorf("expected 1 stored message, got %d", len(repo.messages))
	}
}

func TestSend_UnknownReceiver(t *testing.T) {
	alice := profile("Alice", "PATIENT")
	svc, _ := newTestService(alice)

	_, err := svc.Send(context.Background(), alice.ID, SendMessageRequest{
		ReceiverID: uuid.NewString(),
		Message:    "anyone there",
	})
	var appErr *httpapi.Error
	if !errors.As(err, &appErr) || appErr.Kind != httpapi.KindNotFound {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestConversation_OrderedOldestFirst(t *testing.T) {
	alice := profile("Alice", "PATIENT")
	bob := profile("Bob", "DOCTOR")
	svc, _ := newTestService(alice, bob)

	for _, m := range []struct {
		from, to uuid.UUID
		text     string
	}{
		{alice.ID, bob.ID, "first"},
		{bob.ID, alice.ID, "second"},
		{alice.ID, bob.ID, "third"},
	} {
		if _, err := svc.Send(context.Background(), m.from, SendMessageRequest{ReceiverID: m.to.String(), Message: m.text}); err != nil {
			t.Fatalf("send: %v", err)
		}
	}

	msgs, err := svc.Conversation(context.Background(), bob.ID, alice.ID)
	if err != nil {
		t.Fatalf("conversation: %v", err)
	}
	if len(msgs) != 3 {
		t.Fatalf("expected 3 messages, got %d", len(msgs))
	}
	for i, want := range []string{"first", "second", "third"} {
		if msgs[i].Content != want {
			t.Errorf("position %d: expected %q, got %q", i, want, msgs[i].Content)
		}
	}
}

func TestConversation_EmptyIsNotNil(t *testing.T) {
	alice := profile("Alice", "PATIENT")
	bob := profile("Bob", "DOCTOR")
	svc, _ := newTestService(alice, bob)

	msgs, err := svc.Conversation(context.Background(), alice.ID, bob.ID)
	if err != nil {
		t.Fatalf("conversation: %v", err)
	}
	if msgs == nil {
		t.Error("expected empty slice, got nil")
	}
}

func TestConversations_AggregatesCounterparts(t *testing.T) {
	alice := profile("Alice", "PATIENT")
	bob := profile("Bob", "DOCTOR")
	carol := profile("Carol", "DOCTOR")
	svc, _ := newTestService(alice, bob, carol)

	send := func(from, to uuid.UUID, text string) {
		t.Helper()
		if _, err := svc.Send(context.Background(), from, SendMessageRequest{ReceiverID: to.String(), Message: text}); err != nil {
			t.Fatalf("send: %v", err)
		}
	}
	send(alice.ID, bob.ID, "hi bob")
	send(bob.ID, alice.ID, "hi alice")
	send(carol.ID, alice.ID, "reminder")
	send(carol.ID, alice.ID, "second reminder")

	conversations, err := svc.Conversations(context.Background(), alice.ID)
	if err != nil {
		t.Fatalf("conversations: %v", err)
	}
	if len(conversations) != 2 {
		t.Fatalf("expected 2 conversations, got %d", len(conversations))
	}

	// Newest activity first: carol's second reminder beats bob's reply.
	if conversations[0].User == nil || conversations[0].User.Name != "Carol" {
		t.Errorf("expected Carol first, got %+v", conversations[0].User)
	}
	if conversations[0].UnreadCount != 2 {
		t.Errorf("expected 2 unread from Carol, got %d", conversations[0].UnreadCount)
	}
	if conversations[0].LastMessage == nil || conversations[0].LastMessage.Content != "second reminder" {
		t.Errorf("unexpected last message %+v", conversations[0].LastMessage)
	}
	if conversations[1].User.Name != "Bob" || conversations[1].UnreadCount != 1 {
		t.Errorf("unexpected bob conversation %+v", conversations[1])
	}
}

func TestMarkRead_ScopedToSender(t *testing.T) {
	alice := profile("Alice", "PATIENT")
	bob := profile("Bob", "DOCTOR")
	carol := profile("Carol", "DOCTOR")
	svc, _ := newTestService(alice, bob, carol)

	for _, from := range []uuid.UUID{bob.ID, carol.ID} {
		if _, err := svc.Send(context.Background(), from, SendMessageRequest{ReceiverID: alice.ID.String(), Message: "ping"}); err != nil {
			t.Fatalf("send: %v", err)
		}
	}

	if err := svc.MarkRead(context.Background(), alice.ID, MarkReadRequest{SenderID: bob.ID.String()}); err != nil {
		t.Fatalf("mark read: %v", err)
	}
	count, err := svc.UnreadCount(context.Background(), alice.ID)
	if err != nil {
		t.Fatalf("unread count: %v", err)
	}
	if count != 1 {
		t.Errorf("expected 1 unread left (carol's), got %d", count)
	}

	// Idempotent.
	if err := svc.MarkRead(context.Background(), alice.ID, MarkReadRequest{SenderID: bob.ID.String()}); err != nil {
		t.Fatalf("second mark read: %v", err)
	}
	if count, _ = svc.UnreadCount(context.Background(), alice.ID); count != 1 {
		t.Errorf("expected count unchanged, got %d", count)
	}
}
