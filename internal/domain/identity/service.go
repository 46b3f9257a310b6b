package identity

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"github.com/hms/hms/internal/platform/session"
)

var (
	ErrUserNotFound     = errors.New("user not found")
	ErrHospitalNotFound = errors.New("hospital not found")
	ErrEmailTaken       = errors.New("email already registered")
)

const minPasswordLength = 8

type Service struct {
	users     UserRepository
	hospitals HospitalRepository
	logger    zerolog.Logger
}

func NewService(users UserRepository, hospitals HospitalRepository, logger zerolog.Logger) *Service {
	return &Service{users: users, hospitals: hospitals, logger: logger}
}

// CheckCredentials verifies an email/password pair. It satisfies the session
// controller's CredentialChecker. Unknown emails and wrong passwords both
// report invalid credentials so the response does not leak which one failed.
func (s *Service) CheckCredentials(ctx context.Context, email, password string) (uuid.UUID, error) {
	user, err := s.users.GetByEmail(ctx, email)
	if errors.Is(err, ErrUserNotFound) {
		return uuid.Nil, session.ErrInvalidCredentials
	}
	if err != nil {
		return uuid.Nil, err
	}
	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)) != nil {
		return uuid.Nil, session.ErrInvalidCredentials
	}
	return user.ID, nil
}

// FetchProfile loads the profile for an authenticated user id. It satisfies
// the session controller's ProfileDirectory.
func (s *Service) FetchProfile(ctx context.Context, userID uuid.UUID) (*session.UserProfile, error) {
	user, err := s.users.GetByID(ctx, userID)
	if errors.Is(err, ErrUserNotFound) {
		return nil, session.ErrProfileNotFound
	}
	if err != nil {
		return nil, err
	}
	return user.Profile(), nil
}

// RecordLogin stamps the user's last-login time with the moment the session
// controller observed the sign-in.
func (s *Service) RecordLogin(ctx context.Context, userID uuid.UUID, at time.Time) error {
	return s.users.UpdateLastLogin(ctx, userID, at.UTC())
}

// SignUpInput carries the fields for account creation.
type SignUpInput struct {
	Email      string     `json:"email"`
	Password   string     `json:"password"`
	Name       string     `json:"name"`
	Role       string     `json:"role"`
	HospitalID *uuid.UUID `json:"hospital_id,omitempty"`
}

// SignUp creates a staff account. New accounts start active; hospital
// association may be assigned later by an admin.
func (s *Service) SignUp(ctx context.Context, in SignUpInput) (*User, error) {
	in.Email = strings.TrimSpace(strings.ToLower(in.Email))
	if in.Email == "" || !strings.Contains(in.Email, "@") {
		return nil, fmt.Errorf("valid email is required")
	}
	if len(in.Password) < minPasswordLength {
		return nil, fmt.Errorf("password must be at least %d characters", minPasswordLength)
	}
	if in.Name == "" {
		return nil, fmt.Errorf("name is required")
	}
	if in.Role == "" {
		in.Role = RoleReceptionist
	}
	if !ValidRole(in.Role) {
		return nil, fmt.Errorf("unknown role %q", in.Role)
	}

	if _, err := s.users.GetByEmail(ctx, in.Email); err == nil {
		return nil, ErrEmailTaken
	} else if !errors.Is(err, ErrUserNotFound) {
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	user := &User{
		Email:        in.Email,
		Name:         in.Name,
		Role:         in.Role,
		HospitalID:   in.HospitalID,
		IsActive:     true,
		PasswordHash: string(hash),
	}
	if err := s.users.Create(ctx, user); err != nil {
		return nil, err
	}

	s.logger.Info().Str("user_id", user.ID.String()).Str("role", user.Role).Msg("account created")
	return user, nil
}

// ResetPassword issues a reset token for the account. There is no mailer; the
// token is logged for out-of-band delivery. Unknown emails are silently
// accepted so the endpoint cannot be used to enumerate accounts.
func (s *Service) ResetPassword(ctx context.Context, email string) error {
	user, err := s.users.GetByEmail(ctx, email)
	if errors.Is(err, ErrUserNotFound) {
		return nil
	}
	if err != nil {
		return err
	}

	token := uuid.NewString()
	s.logger.Info().
		Str("user_id", user.ID.String()).
		Str("reset_token", token).
		Msg("password reset token issued")
	return nil
}

// Deactivate marks an account inactive. Live sessions fail the guard's
// account gate on their next profile refresh.
func (s *Service) Deactivate(ctx context.Context, userID uuid.UUID) error {
	return s.users.SetActive(ctx, userID, false)
}

// Activate re-enables a deactivated account.
func (s *Service) Activate(ctx context.Context, userID uuid.UUID) error {
	return s.users.SetActive(ctx, userID, true)
}

// ListStaff returns the hospital's staff accounts.
func (s *Service) ListStaff(ctx context.Context, hospitalID uuid.UUID, limit, offset int) ([]*User, int, error) {
	return s.users.ListByHospital(ctx, hospitalID, limit, offset)
}

// CreateHospital registers a hospital.
func (s *Service) CreateHospital(ctx context.Context, h *Hospital) error {
	if h.Name == "" {
		return fmt.Errorf("hospital name is required")
	}
	return s.hospitals.Create(ctx, h)
}

// GetHospital fetches a hospital by id.
func (s *Service) GetHospital(ctx context.Context, id uuid.UUID) (*Hospital, error) {
	return s.hospitals.GetByID(ctx, id)
}

// ListHospitals lists registered hospitals.
func (s *Service) ListHospitals(ctx context.Context, limit, offset int) ([]*Hospital, int, error) {
	return s.hospitals.List(ctx, limit, offset)
}
