package model

import "time"

// Patient is the role profile for a user with RolePatient. UserID goes
// nil when an admin deactivates the account; the clinical history stays.
type Patient struct {
	ID             int64     `db:"id" json:"id"`
	UserID         *int64    `db:"user_id" json:"user_id,omitempty"`
	FullName       string    `db:"full_name" json:"full_name"`
	Email          string    `db:"email" json:"email"`
	DateOfBirth    time.Time `db:"date_of_birth" json:"date_of_birth"`
	Gender         string    `db:"gender" json:"gender"`
	ContactNumber  string    `db:"contact_number" json:"contact_number"`
	Address        string    `db:"address" json:"address"`
	MedicalHistory string    `db:"medical_history" json:"medical_history"`
	CreatedAt      time.Time `db:"created_at" json:"created_at"`
	UpdatedAt      time.Time `db:"updated_at" json:"updated_at"`
}

type RegisterPatientRequest struct {
	Username       string    `json:"username" binding:"required,min=3,max=50"`
	Password       string    `json:"password" binding:"required,min=8"`
	FullName       string    `json:"full_name" binding:"required"`
	Email          string    `json:"email" binding:"required,email"`
	DateOfBirth    time.Time `json:"date_of_birth" binding:"required"`
	Gender         string    `json:"gender" binding:"required,oneof=male female other"`
	ContactNumber  string    `json:"contact_number" binding:"required"`
	Address        string    `json:"address"`
	MedicalHistory string    `json:"medical_history"`
}

// UpdatePersonalInfoRequest is the patient self-service profile update.
// A username change re-runs the availability gate; a non-empty
// NewPassword is re-hashed.
type UpdatePersonalInfoRequest struct {
	Username       string    `json:"username" binding:"required,min=3,max=50"`
	NewPassword    string    `json:"new_password" binding:"omitempty,min=8"`
	FullName       string    `json:"full_name" binding:"required"`
	Email          string    `json:"email" binding:"required,email"`
	DateOfBirth    time.Time `json:"date_of_birth" binding:"required"`
	Gender         string    `json:"gender" binding:"required,oneof=male female other"`
	ContactNumber  string    `json:"contact_number" binding:"required"`
	Address        string    `json:"address"`
	MedicalHistory string    `json:"medical_history"`
}

type UpdatePatientRequest struct {
	FullName       *string    `json:"full_name"`
	Email          *string    `json:"email" binding:"omitempty,email"`
	DateOfBirth    *time.Time `json:"date_of_birth"`
	ContactNumber  *string    `json:"contact_number"`
	Address        *string    `json:"address"`
	MedicalHistory *string    `json:"medical_history"`
}

type PatientPersonalInfo struct {
	UserID         int64     `json:"user_id"`
	Username       string    `json:"username"`
	FullName       string    `json:"full_name"`
	Email          string    `json:"email"`
	DateOfBirth    time.Time `json:"date_of_birth"`
	Gender         string    `json:"gender"`
	ContactNumber  string    `json:"contact_number"`
	Address        string    `json:"address"`
	MedicalHistory string    `json:"medical_history"`
}
