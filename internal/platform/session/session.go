// Package session owns the authentication session lifecycle: the session
// store, token issuance and verification, the sign-in/sign-out/refresh
// controller, and the auth event stream that other components subscribe to.
package session

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Session is the authenticated state for one signed-in user. It is created on
// sign-in or on token recovery at startup, mutated on token refresh or profile
// update, and destroyed on sign-out.
type Session struct {
	UserID     uuid.UUID `json:"user_id"`
	Token      string    `json:"token"`
	Expiry     time.Time `json:"expiry"`
	HospitalID uuid.UUID `json:"hospital_id"`
	Role       string    `json:"role"`
	IsActive   bool      `json:"is_active"`

	// Profile is the fetched user profile. A session without a profile is
	// not authenticated even when the token is still valid.
	Profile *UserProfile `json:"profile,omitempty"`
}

// UserProfile is the subset of the identity record the session layer needs.
// The identity domain fills it in after a successful credential check.
type UserProfile struct {
	ID         uuid.UUID `json:"id"`
	Email      string    `json:"email"`
	Name       string    `json:"name"`
	Role       string    `json:"role"`
	HospitalID uuid.UUID `json:"hospital_id"`
	IsActive   bool      `json:"is_active"`
	LastLogin  time.Time `json:"last_login"`
}

// IsAuthenticated reports whether the session holds both a non-expired token
// and a fetched user profile.
func (s *Session) IsAuthenticated() bool {
	if s == nil {
		return false
	}
	return s.Profile != nil && s.Token != "" && time.Now().Before(s.Expiry)
}

// HasHospital reports whether the session is associated with a hospital.
func (s *Session) HasHospital() bool {
	return s != nil && s.HospitalID != uuid.Nil
}

// Remaining returns the time left until the session token expires.
func (s *Session) Remaining() time.Duration {
	return time.Until(s.Expiry)
}

// Store persists session snapshots so sessions survive process restarts.
type Store interface {
	Save(ctx context.Context, s *Session) error
	GetByToken(ctx context.Context, token string) (*Session, error)
	Delete(ctx context.Context, token string) error
	DeleteByUser(ctx context.Context, userID uuid.UUID) error
	DeleteExpired(ctx context.Context) error
}
