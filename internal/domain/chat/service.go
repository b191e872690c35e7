package chat

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
)

// ErrForbidden is returned when a user acts on a chat they are not a
// participant of.
var ErrForbidden = errors.New("not a participant of this chat")

type Service struct {
	chats    ChatRepository
	messages MessageRepository
}

func NewService(chats ChatRepository, messages MessageRepository) *Service {
	return &Service{chats: chats, messages: messages}
}

// GetOrCreateChat returns the chat between the patient and doctor, creating
// it on first contact. Chats are keyed by the participant pair, so repeated
// calls return the same conversation.
func (s *Service) GetOrCreateChat(ctx context.Context, patientID, doctorID uuid.UUID) (*Chat, error) {
	if patientID == doctorID {
		return nil, fmt.Errorf("a chat requires two distinct participants")
	}

	existing, err := s.chats.GetByParticipants(ctx, patientID, doctorID)
	if err == nil {
		return existing, nil
	}
	if !errors.Is(err, ErrNotFound) {
		return nil, err
	}

	c := &Chat{PatientID: patientID, DoctorID: doctorID}
	if err := s.chats.Create(ctx, c); err != nil {
		return nil, err
	}
	return c, nil
}

// ListChats returns the user's conversations, most recently active first,
// each with its last message.
func (s *Service) ListChats(ctx context.Context, userID uuid.UUID, limit, offset int) ([]*ChatSummary, int, error) {
	return s.chats.ListByUser(ctx, userID, limit, offset)
}

// SendMessage appends a message to the chat and advances the chat's
// last-message pointer. The sender must be a participant and the message must
// carry content or a file reference.
func (s *Service) SendMessage(ctx context.Context, chatID, senderID uuid.UUID, content, fileURL *string) (*Message, error) {
	hasContent := content != nil && *content != ""
	hasFile := fileURL != nil && *fileURL != ""
	if !hasContent && !hasFile {
		return nil, fmt.Errorf("message requires content or a file reference")
	}

	c, err := s.chats.GetByID(ctx, chatID)
	if err != nil {
		return nil, err
	}
	if !c.IsParticipant(senderID) {
		return nil, ErrForbidden
	}

	m := &Message{ChatID: chatID, SenderID: senderID, Content: content, FileURL: fileURL}
	if err := s.messages.Create(ctx, m); err != nil {
		return nil, err
	}
	if err := s.chats.SetLastMessage(ctx, chatID, m.ID); err != nil {
		return nil, err
	}
	return m, nil
}

// GetMessages returns the chat history in insertion order and marks the
// counterpart's messages as read for the requesting participant.
func (s *Service) GetMessages(ctx context.Context, chatID, requesterID uuid.UUID, limit, offset int) ([]*Message, int, error) {
	c, err := s.chats.GetByID(ctx, chatID)
	if err != nil {
		return nil, 0, err
	}
	if !c.IsParticipant(requesterID) {
		return nil, 0, ErrForbidden
	}

	if err := s.messages.MarkRead(ctx, chatID, requesterID); err != nil {
		return nil, 0, err
	}
	return s.messages.ListByChat(ctx, chatID, limit, offset)
}
