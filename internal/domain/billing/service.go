package billing

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/telecare/telecare/internal/domain/notification"
)

// ErrForbidden is returned when a patient acts on another patient's invoice.
var ErrForbidden = errors.New("invoice belongs to a different patient")

type Service struct {
	invoices InvoiceRepository
	notifier *notification.Service
}

func NewService(invoices InvoiceRepository, notifier *notification.Service) *Service {
	return &Service{invoices: invoices, notifier: notifier}
}

// CreateInvoice records a new pending invoice and notifies the patient. The
// notification is written to the store first and then pushed in real time to
// the patient's personal channel if they are connected.
func (s *Service) CreateInvoice(ctx context.Context, inv *Invoice) error {
	if inv.PatientID == uuid.Nil {
		return fmt.Errorf("patient_id is required")
	}
	if inv.AmountCents <= 0 {
		return fmt.Errorf("amount_cents must be positive")
	}
	if inv.Description == "" {
		return fmt.Errorf("description is required")
	}

	if err := s.invoices.Create(ctx, inv); err != nil {
		return err
	}

	link := "/invoices/" + inv.ID.String()
	return s.notifier.Notify(ctx, &notification.Notification{
		UserID:  inv.PatientID,
		Title:   "New invoice",
		Message: fmt.Sprintf("A new invoice of %d.%02d is due: %s", inv.AmountCents/100, inv.AmountCents%100, inv.Description),
		Type:    notification.TypeInvoice,
		Link:    &link,
	})
}

// PayInvoice marks a pending invoice paid on behalf of its patient and sends
// a payment confirmation notification.
func (s *Service) PayInvoice(ctx context.Context, id, patientID uuid.UUID) (*Invoice, error) {
	inv, err := s.invoices.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if inv.PatientID != patientID {
		return nil, ErrForbidden
	}
	if inv.Status == StatusPaid {
		return nil, fmt.Errorf("invoice is already paid")
	}

	paid, err := s.invoices.MarkPaid(ctx, id)
	if err != nil {
		return nil, err
	}

	link := "/invoices/" + paid.ID.String()
	if err := s.notifier.Notify(ctx, &notification.Notification{
		UserID:  paid.PatientID,
		Title:   "Payment confirmed",
		Message: fmt.Sprintf("Your payment for %q was received", paid.Description),
		Type:    notification.TypePayment,
		Link:    &link,
	}); err != nil {
		return nil, err
	}
	return paid, nil
}

// GetInvoice returns one invoice.
func (s *Service) GetInvoice(ctx context.Context, id uuid.UUID) (*Invoice, error) {
	return s.invoices.GetByID(ctx, id)
}

// ListInvoices returns every invoice, newest first. Admin use.
func (s *Service) ListInvoices(ctx context.Context, limit, offset int) ([]*Invoice, int, error) {
	return s.invoices.List(ctx, limit, offset)
}

// ListPatientInvoices returns one patient's invoices, newest first.
func (s *Service) ListPatientInvoices(ctx context.Context, patientID uuid.UUID, limit, offset int) ([]*Invoice, int, error) {
	return s.invoices.ListByPatient(ctx, patientID, limit, offset)
}
