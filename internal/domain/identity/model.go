// Package identity manages hospital staff accounts: credentials, profiles,
// sign-up and password reset. It backs the session controller's credential
// check and profile fetch.
package identity

import (
	"time"

	"github.com/google/uuid"

	"github.com/hms/hms/internal/platform/session"
)

// User maps to the users table.
type User struct {
	ID           uuid.UUID  `db:"id" json:"id"`
	Email        string     `db:"email" json:"email"`
	Name         string     `db:"name" json:"name"`
	Role         string     `db:"role" json:"role"`
	HospitalID   *uuid.UUID `db:"hospital_id" json:"hospital_id,omitempty"`
	IsActive     bool       `db:"is_active" json:"is_active"`
	PasswordHash string     `db:"password_hash" json:"-"`
	LastLogin    *time.Time `db:"last_login" json:"last_login,omitempty"`
	CreatedAt    time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time  `db:"updated_at" json:"updated_at"`
}

// Roles recognized by the route guard. Admin passes every role gate.
const (
	RoleAdmin        = "admin"
	RoleDoctor       = "doctor"
	RoleNurse        = "nurse"
	RoleReceptionist = "receptionist"
)

// ValidRole reports whether role is one of the recognized roles.
func ValidRole(role string) bool {
	switch role {
	case RoleAdmin, RoleDoctor, RoleNurse, RoleReceptionist:
		return true
	}
	return false
}

// Profile converts the user row into the session layer's profile shape.
func (u *User) Profile() *session.UserProfile {
	p := &session.UserProfile{
		ID:       u.ID,
		Email:    u.Email,
		Name:     u.Name,
		Role:     u.Role,
		IsActive: u.IsActive,
	}
	if u.HospitalID != nil {
		p.HospitalID = *u.HospitalID
	}
	if u.LastLogin != nil {
		p.LastLogin = *u.LastLogin
	}
	return p
}

// Hospital maps to the hospitals table.
type Hospital struct {
	ID        uuid.UUID `db:"id" json:"id"`
	Name      string    `db:"name" json:"name"`
	Address   *string   `db:"address" json:"address,omitempty"`
	Phone     *string   `db:"phone" json:"phone,omitempty"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}
