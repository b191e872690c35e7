package chat

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
)

// In-memory repositories for service tests.

type fakeChatRepo struct {
	chats map[uuid.UUID]*Chat
}

func newFakeChatRepo() *fakeChatRepo {
	return &fakeChatRepo{chats: make(map[uuid.UUID]*Chat)}
}

func (r *fakeChatRepo) Create(_ context.Context, c *Chat) error {
	c.ID = uuid.New()
	c.CreatedAt = time.Now()
	c.UpdatedAt = c.CreatedAt
	r.chats[c.ID] = c
	return nil
}

func (r *fakeChatRepo) GetByID(_ context.Context, id uuid.UUID) (*Chat, error) {
	c, ok := r.chats[id]
	if !ok {
		return nil, ErrNotFound
	}
	return c, nil
}

func (r *fakeChatRepo) GetByParticipants(_ context.Context, patientID, doctorID uuid.UUID) (*Chat, error) {
	for _, c := range r.chats {
		if c.PatientID == patientID && c.DoctorID == doctorID {
			return c, nil
		}
	}
	return nil, ErrNotFound
}

func (r *fakeChatRepo) ListByUser(_ context.Context, userID uuid.UUID, limit, offset int) ([]*ChatSummary, int, error) {
	var items []*ChatSummary
	for _, c := range r.chats {
		if c.IsParticipant(userID) {
			items = append(items, &ChatSummary{Chat: *c})
		}
	}
	return items, len(items), nil
}

func (r *fakeChatRepo) SetLastMessage(_ context.Context, chatID, messageID uuid.UUID) error {
	c, ok := r.chats[chatID]
	if !ok {
		return ErrNotFound
	}
	id := messageID
	c.LastMessageID = &id
	c.UpdatedAt = time.Now()
	return nil
}

type fakeMessageRepo struct {
	messages []*Message
}

func (r *fakeMessageRepo) Create(_ context.Context, m *Message) error {
	m.ID = uuid.New()
	m.CreatedAt = time.Now()
	r.messages = append(r.messages, m)
	return nil
}

func (r *fakeMessageRepo) ListByChat(_ context.Context, chatID uuid.UUID, limit, offset int) ([]*Message, int, error) {
	var items []*Message
	for _, m := range r.messages {
		if m.ChatID == chatID {
			items = append(items, m)
		}
	}
	return items, len(items), nil
}

func (r *fakeMessageRepo) MarkRead(_ context.Context, chatID, readerID uuid.UUID) error {
	for _, m := range r.messages {
		if m.ChatID == chatID && m.SenderID != readerID {
			m.Read = true
		}
	}
	return nil
}

func newTestService() (*Service, *fakeChatRepo, *fakeMessageRepo) {
	chats := newFakeChatRepo()
	messages := &fakeMessageRepo{}
	return NewService(chats, messages), chats, messages
}

func strptr(s string) *string { return &s }

func TestGetOrCreateChat_CreatesOnFirstContact(t *testing.T) {
	svc, _, _ := newTestService()
	patient, doctor := uuid.New(), uuid.New()

	first, err := svc.GetOrCreateChat(context.Background(), patient, doctor)
	if err != nil {
		t.Fatalf("GetOrCreateChat: %v", err)
	}

	second, err := svc.GetOrCreateChat(context.Background(), patient, doctor)
	if err != nil {
		t.Fatalf("GetOrCreateChat (second): %v", err)
	}
	if first.ID != second.ID {
		t.Fatal("expected repeated calls to return the same chat")
	}
}

func TestGetOrCreateChat_RejectsSelfChat(t *testing.T) {
	svc, _, _ := newTestService()
	u := uuid.New()

	if _, err := svc.GetOrCreateChat(context.Background(), u, u); err == nil {
		t.Fatal("expected error for chat with a single participant")
	}
}

func TestSendMessage_AdvancesLastMessagePointer(t *testing.T) {
	svc, chats, _ := newTestService()
	patient, doctor := uuid.New(), uuid.New()
	c, _ := svc.GetOrCreateChat(context.Background(), patient, doctor)

	m, err := svc.SendMessage(context.Background(), c.ID, patient, strptr("hello"), nil)
	if err != nil {
		t.Fatalf("SendMessage: %v", err)
	}

	stored := chats.chats[c.ID]
	if stored.LastMessageID == nil || *stored.LastMessageID != m.ID {
		t.Fatal("expected chat's last-message pointer to advance")
	}
}

func TestSendMessage_RequiresContentOrFile(t *testing.T) {
	svc, _, _ := newTestService()
	patient, doctor := uuid.New(), uuid.New()
	c, _ := svc.GetOrCreateChat(context.Background(), patient, doctor)

	if _, err := svc.SendMessage(context.Background(), c.ID, patient, nil, nil); err == nil {
		t.Fatal("expected error for empty message")
	}
	if _, err := svc.SendMessage(context.Background(), c.ID, patient, nil, strptr("/files/scan.pdf")); err != nil {
		t.Fatalf("file-only message should be accepted: %v", err)
	}
}

func TestSendMessage_RejectsNonParticipant(t *testing.T) {
	svc, _, _ := newTestService()
	patient, doctor := uuid.New(), uuid.New()
	c, _ := svc.GetOrCreateChat(context.Background(), patient, doctor)

	_, err := svc.SendMessage(context.Background(), c.ID, uuid.New(), strptr("hi"), nil)
	if !errors.Is(err, ErrForbidden) {
		t.Fatalf("expected ErrForbidden, got %v", err)
	}
}

func TestGetMessages_MarksCounterpartMessagesRead(t *testing.T) {
	svc, _, messages := newTestService()
	patient, doctor := uuid.New(), uuid.New()
	c, _ := svc.GetOrCreateChat(context.Background(), patient, doctor)

	svc.SendMessage(context.Background(), c.ID, patient, strptr("hello"), nil)
	svc.SendMessage(context.Background(), c.ID, doctor, strptr("hi there"), nil)

	if _, _, err := svc.GetMessages(context.Background(), c.ID, doctor, 20, 0); err != nil {
		t.Fatalf("GetMessages: %v", err)
	}

	for _, m := range messages.messages {
		if m.SenderID == patient && !m.Read {
			t.Fatal("expected patient's message to be marked read after doctor's fetch")
		}
		if m.SenderID == doctor && m.Read {
			t.Fatal("doctor's own message must not be marked read by their fetch")
		}
	}
}

func TestGetMessages_RejectsNonParticipant(t *testing.T) {
	svc, _, _ := newTestService()
	patient, doctor := uuid.New(), uuid.New()
	c, _ := svc.GetOrCreateChat(context.Background(), patient, doctor)

	_, _, err := svc.GetMessages(context.Background(), c.ID, uuid.New(), 20, 0)
	if !errors.Is(err, ErrForbidden) {
		t.Fatalf("expected ErrForbidden, got %v", err)
	}
}
