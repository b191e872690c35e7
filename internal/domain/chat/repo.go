package chat

import (
	"context"

	"github.com/google/uuid"
)

type ChatRepository interface {
	Create(ctx context.Context, c *Chat) error
	GetByID(ctx context.Context, id uuid.UUID) (*Chat, error)
	GetByParticipants(ctx context.Context, patientID, doctorID uuid.UUID) (*Chat, error)
	ListByUser(ctx context.Context, userID uuid.UUID, limit, offset int) ([]*ChatSummary, int, error)
	SetLastMessage(ctx context.Context, chatID, messageID uuid.UUID) error
}

type MessageRepository interface {
	Create(ctx context.Context, m *Message) error
	ListByChat(ctx context.Context, chatID uuid.UUID, limit, offset int) ([]*Message, int, error)
	// MarkRead flips the read flag on every message in the chat that was not
	// sent by readerID.
	MarkRead(ctx context.Context, chatID, readerID uuid.UUID) error
}
