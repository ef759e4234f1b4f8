package messaging

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/medease/medease/internal/httpapi"
)

var ErrUserNotFound = httpapi.NotFound("user not found")

// Participant is the sender/receiver view attached to messages.
type Participant struct {
	ID   uuid.UUID `json:"id"`
	Name string    `json:"name"`
	Role string    `json:"role"`
}

// Profile is the counterpart view on a conversation listing.
type Profile struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	Role      string    `json:"role"`
	Specialty *string   `json:"specialty,omitempty"`
	Gender    *string   `json:"gender,omitempty"`
}

// Message maps to the messages table.
type Message struct {
	ID         uuid.UUID `db:"id" json:"id"`
	SenderID   uuid.UUID `db:"sender_id" json:"sender_id"`
	ReceiverID uuid.UUID `db:"receiver_id" json:"receiver_id"`
	Content    string    `db:"message" json:"message"`
	Read       bool      `db:"is_read" json:"is_read"`
	CreatedAt  time.Time `db:"created_at" json:"created_at"`

	Sender   *Participant `db:"-" json:"sender,omitempty"`
	Receiver *Participant `db:"-" json:"receiver,omitempty"`
}

// Conversation summarizes one counterpart on the inbox screen.
type Conversation struct {
	User        *Profile `json:"user"`
	UnreadCount int      `json:"unread_count"`
	LastMessage *Message `json:"last_message"`
}

// UserDirectory resolves counterpart profiles from the user store.
type UserDirectory interface {
	GetProfile(ctx context.Context, id uuid.UUID) (*Profile, error)
}
