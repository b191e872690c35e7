package chat

import (
	"time"

	"github.com/google/uuid"
)

// Chat represents a conversation between exactly one patient and one doctor.
// Chats are created lazily on first contact and never deleted.
type Chat struct {
	ID            uuid.UUID  `db:"id" json:"id"`
	PatientID     uuid.UUID  `db:"patient_id" json:"patient_id"`
	DoctorID      uuid.UUID  `db:"doctor_id" json:"doctor_id"`
	LastMessageID *uuid.UUID `db:"last_message_id" json:"last_message_id,omitempty"`
	CreatedAt     time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt     time.Time  `db:"updated_at" json:"updated_at"`
}

// IsParticipant reports whether the given user is one of the chat's two
// participants.
func (c *Chat) IsParticipant(userID uuid.UUID) bool {
	return c.PatientID == userID || c.DoctorID == userID
}

// Other returns the counterpart of the given participant.
func (c *Chat) Other(userID uuid.UUID) uuid.UUID {
	if c.PatientID == userID {
		return c.DoctorID
	}
	return c.PatientID
}

// Message is one append-only entry in a chat. Either Content or FileURL is
// set. The read flag flips when the recipient fetches the conversation.
type Message struct {
	ID        uuid.UUID `db:"id" json:"id"`
	ChatID    uuid.UUID `db:"chat_id" json:"chat_id"`
	SenderID  uuid.UUID `db:"sender_id" json:"sender_id"`
	Content   *string   `db:"content" json:"content,omitempty"`
	FileURL   *string   `db:"file_url" json:"file_url,omitempty"`
	Read      bool      `db:"read" json:"read"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

// ChatSummary is a chat joined with its most recent message, as returned by
// the chat listing endpoint.
type ChatSummary struct {
	Chat
	LastMessage *Message `json:"last_message,omitempty"`
}
