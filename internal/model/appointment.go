package model

import "time"

type AppointmentStatus string

const (
	AppointmentStatusRequested AppointmentStatus = "requested"
	AppointmentStatusScheduled AppointmentStatus = "scheduled"
	AppointmentStatusCompleted AppointmentStatus = "completed"
	AppointmentStatusCanceled  AppointmentStatus = "canceled"
)

// appointmentTransitions is the complete edge set; anything absent is
// an illegal transition. Completed and Canceled are terminal.
var appointmentTransitions = map[AppointmentStatus][]AppointmentStatus{
	AppointmentStatusRequested: {AppointmentStatusScheduled, AppointmentStatusCanceled},
	AppointmentStatusScheduled: {AppointmentStatusCompleted, AppointmentStatusCanceled, AppointmentStatusRequested},
}

// CanTransitionTo reports whether the status change is legal. The
// Scheduled→Requested edge exists only for patient-initiated
// reschedules, which demote the appointment back to needing approval.
func (s AppointmentStatus) CanTransitionTo(next AppointmentStatus) bool {
	for _, allowed := range appointmentTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// Terminal reports whether no further transition is permitted.
func (s AppointmentStatus) Terminal() bool {
	return len(appointmentTransitions[s]) == 0
}

type Appointment struct {
	ID              int64             `db:"id" json:"id"`
	PatientID       int64             `db:"patient_id" json:"patient_id"`
	DoctorID        int64             `db:"doctor_id" json:"doctor_id"`
	AppointmentDate time.Time         `db:"appointment_date" json:"appointment_date"`
	Symptoms        string            `db:"symptoms" json:"symptoms"`
	Status          AppointmentStatus `db:"status" json:"status"`
	CreatedAt       time.Time         `db:"created_at" json:"created_at"`
	UpdatedAt       time.Time         `db:"updated_at" json:"updated_at"`
}

type BookAppointmentRequest struct {
	DoctorID        int64     `json:"doctor_id" binding:"required"`
	AppointmentDate time.Time `json:"appointment_date" binding:"required"`
	Symptoms        string    `json:"symptoms" binding:"max=2000"`
}

type RescheduleAppointmentRequest struct {
	NewAppointmentDate time.Time `json:"new_appointment_date" binding:"required"`
}

// AppointmentWithPatient is the doctor-facing listing row.
type AppointmentWithPatient struct {
	Appointment
	PatientName string `db:"patient_name" json:"patient_name"`
}

// AppointmentWithDoctor is the patient-facing listing row.
type AppointmentWithDoctor struct {
	Appointment
	DoctorName string `db:"doctor_name" json:"doctor_name"`
}
