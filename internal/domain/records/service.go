package records

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/telecare/telecare/internal/domain/notification"
)

// ErrForbidden is returned when a patient requests another patient's records.
var ErrForbidden = errors.New("records belong to a different patient")

type Service struct {
	prescriptions PrescriptionRepository
	reports       ReportRepository
	notifier      *notification.Service
}

func NewService(prescriptions PrescriptionRepository, reports ReportRepository, notifier *notification.Service) *Service {
	return &Service{prescriptions: prescriptions, reports: reports, notifier: notifier}
}

// IssuePrescription records a prescription written by doctorID and notifies
// the patient.
func (s *Service) IssuePrescription(ctx context.Context, doctorID uuid.UUID, p *Prescription) error {
	if p.PatientID == uuid.Nil {
		return fmt.Errorf("patient_id is required")
	}
	if p.Medication == "" {
		return fmt.Errorf("medication is required")
	}
	if p.Dosage == "" {
		return fmt.Errorf("dosage is required")
	}
	p.DoctorID = doctorID

	if err := s.prescriptions.Create(ctx, p); err != nil {
		return err
	}

	link := "/prescriptions/" + p.ID.String()
	return s.notifier.Notify(ctx, &notification.Notification{
		UserID:  p.PatientID,
		Title:   "New prescription",
		Message: fmt.Sprintf("You have been prescribed %s (%s)", p.Medication, p.Dosage),
		Type:    notification.TypePrescription,
		Link:    &link,
	})
}

// UploadReport stores a report entry for a patient and notifies them. The
// file itself is uploaded out of band; FileURL points at the stored object.
func (s *Service) UploadReport(ctx context.Context, rep *Report) error {
	if rep.PatientID == uuid.Nil {
		return fmt.Errorf("patient_id is required")
	}
	if rep.Title == "" {
		return fmt.Errorf("title is required")
	}
	if rep.FileURL == "" {
		return fmt.Errorf("file_url is required")
	}

	if err := s.reports.Create(ctx, rep); err != nil {
		return err
	}

	link := "/reports/" + rep.ID.String()
	return s.notifier.Notify(ctx, &notification.Notification{
		UserID:  rep.PatientID,
		Title:   "New report",
		Message: fmt.Sprintf("A new report is available: %s", rep.Title),
		Type:    notification.TypeReport,
		Link:    &link,
	})
}

// ListPrescriptions returns a patient's prescriptions, newest first.
// Patients may only list their own; doctors and admins may list any.
func (s *Service) ListPrescriptions(ctx context.Context, caller Caller, patientID uuid.UUID, limit, offset int) ([]*Prescription, int, error) {
	if err := caller.canAccess(patientID); err != nil {
		return nil, 0, err
	}
	return s.prescriptions.ListByPatient(ctx, patientID, limit, offset)
}

// ListReports returns a patient's reports, newest first, with the same
// access rule as ListPrescriptions.
func (s *Service) ListReports(ctx context.Context, caller Caller, patientID uuid.UUID, limit, offset int) ([]*Report, int, error) {
	if err := caller.canAccess(patientID); err != nil {
		return nil, 0, err
	}
	return s.reports.ListByPatient(ctx, patientID, limit, offset)
}

// Caller identifies who is asking for records.
type Caller struct {
	UserID uuid.UUID
	Role   string
}

func (c Caller) canAccess(patientID uuid.UUID) error {
	if c.Role == "patient" && c.UserID != patientID {
		return ErrForbidden
	}
	return nil
}
