package model

import "time"

type BillingStatus string

const (
	BillingStatusPending BillingStatus = "pending"
	BillingStatusPaid    BillingStatus = "paid"
)

var billingTransitions = map[BillingStatus][]BillingStatus{
	BillingStatusPending: {BillingStatusPaid},
}

func (s BillingStatus) CanTransitionTo(next BillingStatus) bool {
	for _, allowed := range billingTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// Billing is created once per consultation. GrandTotal is fixed at
// creation as fee + tests + medications and never recomputed.
type Billing struct {
	ID                    int64         `db:"id" json:"id"`
	PatientID             int64         `db:"patient_id" json:"patient_id"`
	DoctorID              int64         `db:"doctor_id" json:"doctor_id"`
	MedicalRecordID       int64         `db:"medical_record_id" json:"medical_record_id"`
	ConsultationFee       float64       `db:"consultation_fee" json:"consultation_fee"`
	TotalTestsPrice       float64       `db:"total_tests_price" json:"total_tests_price"`
	TotalMedicationsPrice float64       `db:"total_medications_price" json:"total_medications_price"`
	GrandTotal            float64       `db:"grand_total" json:"grand_total"`
	Status                BillingStatus `db:"status" json:"status"`
	CreatedAt             time.Time     `db:"created_at" json:"created_at"`
	UpdatedAt             time.Time     `db:"updated_at" json:"updated_at"`
}

// BillingWithNames is the listing row joined with patient and doctor
// names for the admin and role-scoped billing views.
type BillingWithNames struct {
	Billing
	PatientName string `db:"patient_name" json:"patient_name"`
	DoctorName  string `db:"doctor_name" json:"doctor_name"`
}
