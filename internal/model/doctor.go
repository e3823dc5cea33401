package model

import "time"

// Doctor is the role profile for a user with RoleDoctor.
type Doctor struct {
	ID              int64     `db:"id" json:"id"`
	UserID          *int64    `db:"user_id" json:"user_id,omitempty"`
	FullName        string    `db:"full_name" json:"full_name"`
	Email           string    `db:"email" json:"email"`
	ExperienceYears int       `db:"experience_years" json:"experience_years"`
	Qualification   string    `db:"qualification" json:"qualification"`
	Designation     string    `db:"designation" json:"designation"`
	CreatedAt       time.Time `db:"created_at" json:"created_at"`
	UpdatedAt       time.Time `db:"updated_at" json:"updated_at"`
}

// Specialization is an admin-managed catalog entity.
type Specialization struct {
	ID   int64  `db:"id" json:"id"`
	Name string `db:"name" json:"name"`
}

// DoctorSummary is the patient-facing search result row.
type DoctorSummary struct {
	ID              int64  `db:"id" json:"id"`
	FullName        string `db:"full_name" json:"full_name"`
	ExperienceYears int    `db:"experience_years" json:"experience_years"`
	Qualification   string `db:"qualification" json:"qualification"`
	Designation     string `db:"designation" json:"designation"`
	Specializations string `db:"specializations" json:"specializations"`
}

type RegisterDoctorRequest struct {
	Username          string  `json:"username" binding:"required,min=3,max=50"`
	Password          string  `json:"password" binding:"required,min=8"`
	FullName          string  `json:"full_name" binding:"required"`
	Email             string  `json:"email" binding:"required,email"`
	ExperienceYears   int     `json:"experience_years" binding:"gte=0"`
	Qualification     string  `json:"qualification" binding:"required"`
	Designation       string  `json:"designation" binding:"required"`
	SpecializationIDs []int64 `json:"specialization_ids"`
}

type UpdateDoctorRequest struct {
	FullName          *string `json:"full_name"`
	Email             *string `json:"email" binding:"omitempty,email"`
	ExperienceYears   *int    `json:"experience_years" binding:"omitempty,gte=0"`
	Qualification     *string `json:"qualification"`
	Designation       *string `json:"designation"`
	SpecializationIDs []int64 `json:"specialization_ids"`
}

type RegisterAdminRequest struct {
	Username string `json:"username" binding:"required,min=3,max=50"`
	Password string `json:"password" binding:"required,min=8"`
	FullName string `json:"full_name" binding:"required"`
	Email    string `json:"email" binding:"required,email"`
}

// Administrator is the role profile for a user with RoleAdmin.
type Administrator struct {
	ID       int64  `db:"id" json:"id"`
	UserID   *int64 `db:"user_id" json:"user_id,omitempty"`
	FullName string `db:"full_name" json:"full_name"`
	Email    string `db:"email" json:"email"`
}
