package messaging

import (
	"context"
	"sort"

	"github.com/google/uuid"

	"github.com/medease/medease/internal/httpapi"
)

// Service implements direct messaging between patients and doctors.
type Service struct {
	messages Repository
	users    UserDirectory
}

func NewService(messages Repository, users UserDirectory) *Service {
	return &Service{messages: messages, users: users}
}

type SendMessageRequest struct {
	ReceiverID string `json:"receiver_id" validate:"required,uuid"`
	Message    string `json:"message" validate:"required"`
}

type MarkReadRequest struct {
	SenderID string `json:"sender_id" validate:"required,uuid"`
}

// Send stores a message for the receiver. The receiver must be a registered
// user; delivery over the live socket is the realtime layer's concern.
func (s *Service) Send(ctx context.Context, senderID uuid.UUID, req SendMessageRequest) (*Message, error) {
	receiverID, err := uuid.Parse(req.ReceiverID)
	if err != nil {
		return nil, httpapi.Invalid("receiver_id must be a valid id")
	}
	if _, err := s.users.GetProfile(ctx, receiverID); err != nil {
		return nil, err
	}
	msg := &Message{SenderID: senderID, ReceiverID: receiverID, Content: req.Message}
	if err := s.messages.Create(ctx, msg); err != nil {
		return nil, err
	}
	return msg, nil
}

// Conversation returns the full exchange between the caller and one other
// user, oldest first.
func (s *Service) Conversation(ctx context.Context, userID, otherID uuid.UUID) ([]*Message, error) {
	messages, err := s.messages.ListBetween(ctx, userID, otherID)
	if err != nil {
		return nil, err
	}
	if messages == nil {
		messages = []*Message{}
	}
	return messages, nil
}

// Conversations lists every counterpart the caller has exchanged messages
// with, newest activity first, each with its unread count and last message.
func (s *Service) Conversations(ctx context.Context, userID uuid.UUID) ([]Conversation, error) {
	counterparts, err := s.messages.Counterparts(ctx, userID)
	if err != nil {
		return nil, err
	}

	conversations := make([]Conversation, 0, len(counterparts))
	for _, otherID := range counterparts {
		profile, err := s.users.GetProfile(ctx, otherID)
		if err != nil {
			// A deleted counterpart still has history; show it without a profile.
			profile = nil
		}
		unread, err := s.messages.UnreadFrom(ctx, otherID, userID)
		if err != nil {
			return nil, err
		}
		last, err := s.messages.LastBetween(ctx, userID, otherID)
		if err != nil {
			return nil, err
		}
		conversations = append(conversations, Conversation{
			User:        profile,
			UnreadCount: unread,
			LastMessage: last,
		})
	}

	sort.Slice(conversations, func(i, j int) bool {
		li, lj := conversations[i].LastMessage, conversations[j].LastMessage
		if li == nil || lj == nil {
			return lj == nil && li != nil
		}
		return li.CreatedAt.After(lj.CreatedAt)
	})
	return conversations, nil
}

// MarkRead flags every unread message from the sender to the caller as
// read. Re-running it is a no-op.
func (s *Service) MarkRead(ctx context.Context, readerID uuid.UUID, req MarkReadRequest) error {
	senderID, err := uuid.Parse(req.SenderID)
	if err != nil {
		return httpapi.Invalid("sender_id must be a valid id")
	}
	return s.messages.MarkRead(ctx, senderID, readerID)
}

// UnreadCount totals the caller's unread messages across all senders.
func (s *Service) UnreadCount(ctx context.Context, userID uuid.UUID) (int, error) {
	return s.messages.UnreadTotal(ctx, userID)
}
