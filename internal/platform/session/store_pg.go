package session

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

type storePG struct{ pool *pgxpool.Pool }

// NewStorePG returns a Store backed by the sessions table.
func NewStorePG(pool *pgxpool.Pool) Store { return &storePG{pool: pool} }

func (r *storePG) Save(ctx context.Context, s *Session) error {
	var hospitalID *uuid.UUID
	if s.HospitalID != uuid.Nil {
		hospitalID = &s.HospitalID
	}
	_, err := r.pool.Exec(ctx, `
		INSERT INTO sessions (token, user_id, hospital_id, role, is_active, expiry)
		VALUES ($1,$2,$3,$4,$5,$6)
		ON CONFLICT (token) DO UPDATE SET expiry = EXCLUDED.expiry, is_active = EXCLUDED.is_active`,
		s.Token, s.UserID, hospitalID, s.Role, s.IsActive, s.Expiry)
	return err
}

func (r *storePG) GetByToken(ctx context.Context, token string) (*Session, error) {
	var s Session
	var hospitalID *uuid.UUID
	err := r.pool.QueryRow(ctx, `
		SELECT token, user_id, hospital_id, role, is_active, expiry
		FROM sessions WHERE token = $1`, token).
		Scan(&s.Token, &s.UserID, &hospitalID, &s.Role, &s.IsActive, &s.Expiry)
	if err != nil {
		return nil, err
	}
	if hospitalID != nil {
		s.HospitalID = *hospitalID
	}
	return &s, nil
}

func (r *storePG) Delete(ctx context.Context, token string) error {
	_, err := r.pool.Exec(ctx, `DELETE FROM sessions WHERE token = $1`, token)
	return err
}

func (r *storePG) DeleteByUser(ctx context.Context, userID uuid.UUID) error {
	_, err := r.pool.Exec(ctx, `DELETE FROM sessions WHERE user_id = $1`, userID)
	return err
}

func (r *storePG) DeleteExpired(ctx context.Context) error {
	_, err := r.pool.Exec(ctx, `DELETE FROM sessions WHERE expiry < NOW()`)
	return err
}
