package model

import "time"

// MedicalRecord is created exactly once per completed consultation.
// TotalPrice accumulates test and prescription prices; BillingID is
// back-filled once the bill is created.
type MedicalRecord struct {
	ID                  int64      `db:"id" json:"id"`
	AppointmentID       int64      `db:"appointment_id" json:"appointment_id"`
	DoctorID            int64      `db:"doctor_id" json:"doctor_id"`
	PatientID           int64      `db:"patient_id" json:"patient_id"`
	Symptoms            string     `db:"symptoms" json:"symptoms"`
	PhysicalExamination string     `db:"physical_examination" json:"physical_examination"`
	TreatmentPlan       string     `db:"treatment_plan" json:"treatment_plan"`
	FollowUpDate        *time.Time `db:"follow_up_date" json:"follow_up_date,omitempty"`
	TotalPrice          float64    `db:"total_price" json:"total_price"`
	BillingID           *int64     `db:"billing_id" json:"billing_id,omitempty"`
	CreatedAt           time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt           time.Time  `db:"updated_at" json:"updated_at"`
}

// MedicalRecordTest joins a record to a catalog test ordered during
// the consultation.
type MedicalRecordTest struct {
	RecordID int64 `db:"record_id" json:"record_id"`
	TestID   int64 `db:"test_id" json:"test_id"`
}

// Prescription snapshots the medication name and unit price at the
// time of the consultation.
type Prescription struct {
	ID             int64   `db:"id" json:"id"`
	RecordID       int64   `db:"record_id" json:"record_id"`
	MedicationID   int64   `db:"medication_id" json:"medication_id"`
	MedicationName string  `db:"medication_name" json:"medication_name"`
	Dosage         string  `db:"dosage" json:"dosage"`
	DurationDays   int     `db:"duration_days" json:"duration_days"`
	Quantity       int     `db:"quantity" json:"quantity"`
	TotalPrice     float64 `db:"total_price" json:"total_price"`
	BillingID      *int64  `db:"billing_id" json:"billing_id,omitempty"`
}

type PrescriptionInput struct {
	MedicationID int64  `json:"medication_id" binding:"required"`
	Dosage       string `json:"dosage" binding:"required"`
	DurationDays int    `json:"duration_days" binding:"required,gt=0"`
	Quantity     int    `json:"quantity" binding:"required,gt=0"`
}

// ConductConsultationRequest carries the clinical findings that close
// out a scheduled appointment.
type ConductConsultationRequest struct {
	Symptoms            string              `json:"symptoms" binding:"required"`
	PhysicalExamination string              `json:"physical_examination" binding:"required"`
	TreatmentPlan       string              `json:"treatment_plan" binding:"required"`
	FollowUpDate        *time.Time          `json:"follow_up_date"`
	TestIDs             []int64             `json:"test_ids"`
	Prescriptions       []PrescriptionInput `json:"prescriptions"`
	ConsultationFee     float64             `json:"consultation_fee" binding:"gte=0"`
}

type UpdateMedicalRecordRequest struct {
	Symptoms            *string    `json:"symptoms"`
	PhysicalExamination *string    `json:"physical_examination"`
	TreatmentPlan       *string    `json:"treatment_plan"`
	FollowUpDate        *time.Time `json:"follow_up_date"`
}

// Consultation is the aggregate written when a doctor finalizes a
// scheduled appointment: the clinical record, its ordered tests and
// prescriptions, and the bill. It is persisted in a single transaction
// that also flips the appointment to Completed.
type Consultation struct {
	Record        *MedicalRecord
	TestIDs       []int64
	Prescriptions []*Prescription
	Billing       *Billing
}

// PatientTestDetail is the patient-facing view of a test ordered in a
// past consultation.
type PatientTestDetail struct {
	RecordID  int64   `db:"record_id" json:"record_id"`
	TestName  string  `db:"test_name" json:"test_name"`
	TestPrice float64 `db:"test_price" json:"test_price"`
}

// PatientMedicalRecord is the aggregated history view: one consultation
// with its tests, prescriptions and bill.
type PatientMedicalRecord struct {
	MedicalRecord
	DoctorName    string         `json:"doctor_name"`
	Tests         []Test         `json:"tests"`
	Prescriptions []Prescription `json:"prescriptions"`
	Billing       *Billing       `json:"billing,omitempty"`
}
