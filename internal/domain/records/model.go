package records

import (
	"time"

	"github.com/google/uuid"
)

// Prescription is a medication order issued by a doctor for a patient.
type Prescription struct {
	ID           uuid.UUID `db:"id" json:"id"`
	PatientID    uuid.UUID `db:"patient_id" json:"patient_id"`
	DoctorID     uuid.UUID `db:"doctor_id" json:"doctor_id"`
	Medication   string    `db:"medication" json:"medication"`
	Dosage       string    `db:"dosage" json:"dosage"`
	Instructions *string   `db:"instructions" json:"instructions,omitempty"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
}

// Report is a medical document (lab result, imaging, referral letter)
// uploaded for a patient. DoctorID is nil for documents uploaded by staff.
type Report struct {
	ID        uuid.UUID  `db:"id" json:"id"`
	PatientID uuid.UUID  `db:"patient_id" json:"patient_id"`
	DoctorID  *uuid.UUID `db:"doctor_id" json:"doctor_id,omitempty"`
	Title     string     `db:"title" json:"title"`
	FileURL   string     `db:"file_url" json:"file_url"`
	CreatedAt time.Time  `db:"created_at" json:"created_at"`
}
