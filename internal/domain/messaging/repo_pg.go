package messaging

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type repoPG struct{ pool *pgxpool.Pool }

func NewRepoPG(pool *pgxpool.Pool) Repository { return &repoPG{pool: pool} }

const messageCols = `m.id, m.sender_id, m.receiver_id, m.message, m.is_read, m.created_at,
	s.id, s.name, s.role,
	r.id, r.name, r.role`

const messageFrom = ` FROM messages m
	JOIN users s ON s.id = m.sender_id
	JOIN users r ON r.id = m.receiver_id`

func scanMessage(row pgx.Row) (*Message, error) {
	var msg Message
	var sender, receiver Participant
	err := row.Scan(&msg.ID, &msg.SenderID, &msg.ReceiverID, &msg.Content, &msg.Read, &msg.CreatedAt,
		&sender.ID, &sender.Name, &sender.Role,
		&receiver.ID, &receiver.Name, &receiver.Role)
	if err != nil {
		return nil, err
	}
	msg.Sender = &sender
	msg.Receiver = &receiver
	return &msg, nil
}

func (r *repoPG) Create(ctx context.Context, m *Message) error {
	m.ID = uuid.New()
	err := r.pool.QueryRow(ctx, `
		INSERT INTO messages (id, sender_id, receiver_id, message)
		VALUES ($1,$2,$3,$4)
		RETURNING created_at, is_read`,
		m.ID, m.SenderID, m.ReceiverID, m.Content).Scan(&m.CreatedAt, &m.Read)
	if err != nil {
		return fmt.Errorf("inserting message: %w", err)
	}
	return nil
}

func (r *repoPG) ListBetween(ctx context.Context, a, b uuid.UUID) ([]*Message, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+messageCols+messageFrom+`
		WHERE (m.sender_id = $1 AND m.receiver_id = $2) OR (m.sender_id = $2 AND m.receiver_id = $1)
		ORDER BY m.created_at ASC`, a, b)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var messages []*Message
	for rows.Next() {
		m, err := scanMessage(rows)
		if err != nil {
			return nil, err
		}
		messages = append(messages, m)
	}
	return messages, rows.Err()
}

func (r *repoPG) LastBetween(ctx context.Context, a, b uuid.UUID) (*Message, error) {
	m, err := scanMessage(r.pool.QueryRow(ctx, `
		SELECT `+messageCols+messageFrom+`
		WHERE (m.sender_id = $1 AND m.receiver_id = $2) OR (m.sender_id = $2 AND m.receiver_id = $1)
		ORDER BY m.created_at DESC
		LIMIT 1`, a, b))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	return m, err
}

func (r *repoPG) Counterparts(ctx context.Context, userID uuid.UUID) ([]uuid.UUID, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT DISTINCT other FROM (
			SELECT receiver_id AS other FROM messages WHERE sender_id = $1
			UNION
			SELECT sender_id AS other FROM messages WHERE receiver_id = $1
		) counterparts`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ids []uuid.UUID
	for rows.Next() {
		var id uuid.UUID
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

func (r *repoPG) UnreadFrom(ctx context.Context, senderID, receiverID uuid.UUID) (int, error) {
	var n int
	err := r.pool.QueryRow(ctx, `
		SELECT COUNT(*) FROM messages
		WHERE sender_id = $1 AND receiver_id = $2 AND NOT is_read`,
		senderID, receiverID).Scan(&n)
	return n, err
}

func (r *repoPG) UnreadTotal(ctx context.Context, receiverID uuid.UUID) (int, error) {
	var n int
	err := r.pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM messages WHERE receiver_id = $1 AND NOT is_read`, receiverID).Scan(&n)
	return n, err
}

func (r *repoPG) MarkRead(ctx context.Context, senderID, receiverID uuid.UUID) error {
	_, err := r.pool.Exec(ctx, `
		UPDATE messages SET is_read = TRUE
		WHERE sender_id = $1 AND receiver_id = $2 AND NOT is_read`,
		senderID, receiverID)
	return err
}
