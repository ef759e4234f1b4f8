package messaging

import (
	"context"

	"github.com/google/uuid"
)

// Repository persists direct messages between two users.
type Repository interface {
	Create(ctx context.Context, m *Message) error
	ListBetween(ctx context.Context, a, b uuid.UUID) ([]*Message, error)
	LastBetween(ctx context.Context, a, b uuid.UUID) (*Message, error)
	Counterparts(ctx context.Context, userID uuid.UUID) ([]uuid.UUID, error)
	UnreadFrom(ctx context.Context, senderID, receiverID uuid.UUID) (int, error)
	UnreadTotal(ctx context.Context, receiverID uuid.UUID) (int, error)
	MarkRead(ctx context.Context, senderID, receiverID uuid.UUID) error
}
