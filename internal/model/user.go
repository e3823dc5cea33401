package model

import "time"

// Role identifies the profile type attached to a user account. It is
// resolved once at the authorization boundary; nothing downstream
// compares raw role numbers.
type Role string

const (
	RolePatient Role = "patient"
	RoleDoctor  Role = "doctor"
	RoleAdmin   Role = "admin"
)

func (r Role) Valid() bool {
	switch r {
	case RolePatient, RoleDoctor, RoleAdmin:
		return true
	}
	return false
}

// User represents a login account. Role-specific data lives in the
// Patient, Doctor and Administrator profile rows.
type User struct {
	ID           int64     `db:"id" json:"id"`
	Username     string    `db:"username" json:"username"`
	PasswordHash string    `db:"password_hash" json:"-"`
	Role         Role      `db:"role" json:"role"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time `db:"updated_at" json:"updated_at"`
}

// TokenClaims carries the identity extracted from a validated token.
type TokenClaims struct {
	UserID    int64
	Username  string
	Role      Role
	TokenID   string
	ExpiresAt time.Time
}

type TokenResponse struct {
	AccessToken string `json:"access_token"`
}

type LoginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required,min=8"`
}

type UsernameAvailability struct {
	Username    string `json:"username"`
	IsAvailable bool   `json:"is_available"`
	Message     string `json:"message"`
}
