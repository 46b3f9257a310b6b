package session

import (
	"testing"
	"time"

	"github.com/google/uuid"
)

func testProfile() *UserProfile {
	return &UserProfile{
		ID:         uuid.New(),
		Email:      "nurse@hospital.test",
		Name:       "Sam Lee",
		Role:       "nurse",
		HospitalID: uuid.New(),
		IsActive:   true,
	}
}

func TestTokenRoundTrip(t *testing.T) {
	issuer := NewTokenIssuer([]byte("0123456789abcdef0123456789abcdef"), time.Hour)
	profile := testProfile()

	token, expiry, err := issuer.Issue(profile)
	if err != nil {
		t.Fatalf("Issue() error: %v", err)
	}
	if time.Until(expiry) < 59*time.Minute {
		t.Errorf("expiry too close: %s", time.Until(expiry))
	}

	claims, err := issuer.Verify(token)
	if err != nil {
		t.Fatalf("Verify() error: %v", err)
	}
	if claims.Subject != profile.ID.String() {
		t.Errorf("subject = %q, want %q", claims.Subject, profile.ID)
	}
	if claims.Role != "nurse" {
		t.Errorf("role = %q, want nurse", claims.Role)
	}
	if !claims.IsActive {
		t.Error("expected is_active claim")
	}

	s, err := SessionFromClaims(claims, token)
	if err != nil {
		t.Fatalf("SessionFromClaims() error: %v", err)
	}
	if s.UserID != profile.ID {
		t.Errorf("user id = %v, want %v", s.UserID, profile.ID)
	}
	if s.HospitalID != profile.HospitalID {
		t.Errorf("hospital id = %v, want %v", s.HospitalID, profile.HospitalID)
	}
}

func TestVerify_RejectsExpiredToken(t *testing.T) {
	issuer := NewTokenIssuer([]byte("0123456789abcdef0123456789abcdef"), -time.Minute)
	token, _, err := issuer.Issue(testProfile())
	if err != nil {
		t.Fatalf("Issue() error: %v", err)
	}

	if _, err := issuer.Verify(token); err == nil {
		t.Error("expected error for expired token")
	}
}

func TestVerify_RejectsWrongKey(t *testing.T) {
	issuer := NewTokenIssuer([]byte("0123456789abcdef0123456789abcdef"), time.Hour)
	other := NewTokenIssuer([]byte("ffffffffffffffffffffffffffffffff"), time.Hour)

	token, _, err := issuer.Issue(testProfile())
	if err != nil {
		t.Fatalf("Issue() error: %v", err)
	}

	if _, err := other.Verify(token); err == nil {
		t.Error("expected error for token signed with a different key")
	}
}

func TestIssue_NoHospitalAssociation(t *testing.T) {
	issuer := NewTokenIssuer([]byte("0123456789abcdef0123456789abcdef"), time.Hour)
	profile := testProfile()
	profile.HospitalID = uuid.Nil

	token, _, err := issuer.Issue(profile)
	if err != nil {
		t.Fatalf("Issue() error: %v", err)
	}

	claims, err := issuer.Verify(token)
	if err != nil {
		t.Fatalf("Verify() error: %v", err)
	}
	if claims.HospitalID != "" {
		t.Errorf("expected empty hospital_id claim, got %q", claims.HospitalID)
	}

	s, err := SessionFromClaims(claims, token)
	if err != nil {
		t.Fatalf("SessionFromClaims() error: %v", err)
	}
	if s.HasHospital() {
		t.Error("expected no hospital association")
	}
}
