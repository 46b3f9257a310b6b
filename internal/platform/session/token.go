package session

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// Claims is the JWT payload carried by every session token.
type Claims struct {
	jwt.RegisteredClaims
	HospitalID string `json:"hospital_id,omitempty"`
	Role       string `json:"role"`
	IsActive   bool   `json:"is_active"`
}

// TokenIssuer signs and verifies session tokens with an HMAC key.
type TokenIssuer struct {
	signingKey []byte
	lifetime   time.Duration
}

func NewTokenIssuer(signingKey []byte, lifetime time.Duration) *TokenIssuer {
	return &TokenIssuer{signingKey: signingKey, lifetime: lifetime}
}

// Lifetime returns the validity window of issued tokens.
func (t *TokenIssuer) Lifetime() time.Duration { return t.lifetime }

// Issue creates a signed token for the given profile and returns the token
// string together with its expiry.
func (t *TokenIssuer) Issue(profile *UserProfile) (string, time.Time, error) {
	now := time.Now()
	expiry := now.Add(t.lifetime)

	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   profile.ID.String(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiry),
			ID:        uuid.NewString(),
		},
		Role:     profile.Role,
		IsActive: profile.IsActive,
	}
	if profile.HospitalID != uuid.Nil {
		claims.HospitalID = profile.HospitalID.String()
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(t.signingKey)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("sign token: %w", err)
	}
	return signed, expiry, nil
}

// Verify parses and validates a token string and returns its claims.
func (t *TokenIssuer) Verify(tokenStr string) (*Claims, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenStr, claims, func(tok *jwt.Token) (interface{}, error) {
		return t.signingKey, nil
	}, jwt.WithValidMethods([]string{"HS256"}))
	if err != nil {
		return nil, err
	}
	if !token.Valid {
		return nil, fmt.Errorf("invalid token")
	}
	return claims, nil
}

// SessionFromClaims rebuilds a Session skeleton from verified token claims.
// The profile is not part of the token and must be fetched separately.
func SessionFromClaims(claims *Claims, token string) (*Session, error) {
	uid, err := uuid.Parse(claims.Subject)
	if err != nil {
		return nil, fmt.Errorf("parse subject: %w", err)
	}

	s := &Session{
		UserID:   uid,
		Token:    token,
		Role:     claims.Role,
		IsActive: claims.IsActive,
	}
	if claims.ExpiresAt != nil {
		s.Expiry = claims.ExpiresAt.Time
	}
	if claims.HospitalID != "" {
		hid, err := uuid.Parse(claims.HospitalID)
		if err != nil {
			return nil, fmt.Errorf("parse hospital_id: %w", err)
		}
		s.HospitalID = hid
	}
	return s, nil
}
