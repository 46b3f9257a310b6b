package session

import (
	"context"

	"github.com/google/uuid"
)

type contextKey string

const (
	UserIDKey     contextKey = "user_id"
	RoleKey       contextKey = "user_role"
	HospitalIDKey contextKey = "hospital_id"
	SessionKey    contextKey = "session"
)

// NewContext returns a context carrying the session and its identity values.
func NewContext(ctx context.Context, s *Session) context.Context {
	ctx = context.WithValue(ctx, SessionKey, s)
	ctx = context.WithValue(ctx, UserIDKey, s.UserID)
	ctx = context.WithValue(ctx, RoleKey, s.Role)
	ctx = context.WithValue(ctx, HospitalIDKey, s.HospitalID)
	return ctx
}

// FromContext retrieves the session from context, or nil.
func FromContext(ctx context.Context) *Session {
	s, _ := ctx.Value(SessionKey).(*Session)
	return s
}

func UserIDFromContext(ctx context.Context) uuid.UUID {
	uid, _ := ctx.Value(UserIDKey).(uuid.UUID)
	return uid
}

func RoleFromContext(ctx context.Context) string {
	role, _ := ctx.Value(RoleKey).(string)
	return role
}

func HospitalIDFromContext(ctx context.Context) uuid.UUID {
	hid, _ := ctx.Value(HospitalIDKey).(uuid.UUID)
	return hid
}
