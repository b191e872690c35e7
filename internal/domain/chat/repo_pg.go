package chat

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ErrNotFound is returned when a chat does not exist.
var ErrNotFound = errors.New("chat not found")

type chatRepoPG struct{ pool *pgxpool.Pool }

func NewChatRepoPG(pool *pgxpool.Pool) ChatRepository {
	return &chatRepoPG{pool: pool}
}

const chatCols = `id, patient_id, doctor_id, last_message_id, created_at, updated_at`

func scanChat(row pgx.Row) (*Chat, error) {
	var c Chat
	err := row.Scan(&c.ID, &c.PatientID, &c.DoctorID, &c.LastMessageID, &c.CreatedAt, &c.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	return &c, err
}

func (r *chatRepoPG) Create(ctx context.Context, c *Chat) error {
	c.ID = uuid.New()
	return r.pool.QueryRow(ctx, `
		INSERT INTO chat (id, patient_id, doctor_id)
		VALUES ($1,$2,$3)
		RETURNING created_at, updated_at`,
		c.ID, c.PatientID, c.DoctorID).Scan(&c.CreatedAt, &c.UpdatedAt)
}

func (r *chatRepoPG) GetByID(ctx context.Context, id uuid.UUID) (*Chat, error) {
	return scanChat(r.pool.QueryRow(ctx, `SELECT `+chatCols+` FROM chat WHERE id = $1`, id))
}

func (r *chatRepoPG) GetByParticipants(ctx context.Context, patientID, doctorID uuid.UUID) (*Chat, error) {
	return scanChat(r.pool.QueryRow(ctx,
		`SELECT `+chatCols+` FROM chat WHERE patient_id = $1 AND doctor_id = $2`,
		patientID, doctorID))
}

func (r *chatRepoPG) ListByUser(ctx context.Context, userID uuid.UUID, limit, offset int) ([]*ChatSummary, int, error) {
	var total int
	if err := r.pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM chat WHERE patient_id = $1 OR doctor_id = $1`, userID).Scan(&total); err != nil {
		return nil, 0, err
	}

	rows, err := r.pool.Query(ctx, `
		SELECT c.id, c.patient_id, c.doctor_id, c.last_message_id, c.created_at, c.updated_at,
			m.id, m.chat_id, m.sender_id, m.content, m.file_url, m.read, m.created_at
		FROM chat c
		LEFT JOIN message m ON m.id = c.last_message_id
		WHERE c.patient_id = $1 OR c.doctor_id = $1
		ORDER BY c.updated_at DESC
		LIMIT $2 OFFSET $3`, userID, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var items []*ChatSummary
	for rows.Next() {
		var s ChatSummary
		// Joined message columns are nullable; assemble only when present.
		var mID, mChatID, mSenderID *uuid.UUID
		var mContent, mFileURL *string
		var mRead *bool
		var mCreatedAt *time.Time
		err := rows.Scan(&s.ID, &s.PatientID, &s.DoctorID, &s.LastMessageID, &s.CreatedAt, &s.UpdatedAt,
			&mID, &mChatID, &mSenderID, &mContent, &mFileURL, &mRead, &mCreatedAt)
		if err != nil {
			return nil, 0, err
		}
		if mID != nil {
			s.LastMessage = &Message{
				ID:        *mID,
				ChatID:    *mChatID,
				SenderID:  *mSenderID,
				Content:   mContent,
				FileURL:   mFileURL,
				Read:      *mRead,
				CreatedAt: *mCreatedAt,
			}
		}
		items = append(items, &s)
	}
	return items, total, rows.Err()
}

func (r *chatRepoPG) SetLastMessage(ctx context.Context, chatID, messageID uuid.UUID) error {
	_, err := r.pool.Exec(ctx,
		`UPDATE chat SET last_message_id = $2, updated_at = NOW() WHERE id = $1`,
		chatID, messageID)
	return err
}

type messageRepoPG struct{ pool *pgxpool.Pool }

func NewMessageRepoPG(pool *pgxpool.Pool) MessageRepository {
	return &messageRepoPG{pool: pool}
}

func (r *messageRepoPG) Create(ctx context.Context, m *Message) error {
	m.ID = uuid.New()
	return r.pool.QueryRow(ctx, `
		INSERT INTO message (id, chat_id, sender_id, content, file_url)
		VALUES ($1,$2,$3,$4,$5)
		RETURNING created_at`,
		m.ID, m.ChatID, m.SenderID, m.Content, m.FileURL).Scan(&m.CreatedAt)
}

func (r *messageRepoPG) ListByChat(ctx context.Context, chatID uuid.UUID, limit, offset int) ([]*Message, int, error) {
	var total int
	if err := r.pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM message WHERE chat_id = $1`, chatID).Scan(&total); err != nil {
		return nil, 0, err
	}

	rows, err := r.pool.Query(ctx, `
		SELECT id, chat_id, sender_id, content, file_url, read, created_at
		FROM message
		WHERE chat_id = $1
		ORDER BY created_at ASC
		LIMIT $2 OFFSET $3`, chatID, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var items []*Message
	for rows.Next() {
		var m Message
		if err := rows.Scan(&m.ID, &m.ChatID, &m.SenderID, &m.Content, &m.FileURL, &m.Read, &m.CreatedAt); err != nil {
			return nil, 0, err
		}
		items = append(items, &m)
	}
	return items, total, rows.Err()
}

func (r *messageRepoPG) MarkRead(ctx context.Context, chatID, readerID uuid.UUID) error {
	_, err := r.pool.Exec(ctx,
		`UPDATE message SET read = TRUE WHERE chat_id = $1 AND sender_id <> $2 AND read = FALSE`,
		chatID, readerID)
	return err
}
