package notification

import (
	"time"

	"github.com/google/uuid"
)

// Notification types mirror the REST-side mutations that produce them.
const (
	TypeInvoice      = "invoice"
	TypePayment      = "payment"
	TypePrescription = "prescription"
	TypeReport       = "report"
	TypeSystem       = "system"
)

// Notification is a store-backed notification for one recipient. It is
// written durably first and then, when the recipient is connected, pushed
// over the realtime gateway; offline recipients discover it via the listing
// endpoint.
type Notification struct {
	ID        uuid.UUID `db:"id" json:"id"`
	UserID    uuid.UUID `db:"user_id" json:"user_id"`
	Title     string    `db:"title" json:"title"`
	Message   string    `db:"message" json:"message"`
	Type      string    `db:"type" json:"type"`
	Link      *string   `db:"link" json:"link,omitempty"`
	Read      bool      `db:"read" json:"read"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}
