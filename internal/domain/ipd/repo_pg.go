package ipd

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const bedColumns = `id, hospital_id, ward, number, status, created_at, updated_at`
const admissionColumns = `id, hospital_id, patient_id, bed_id, doctor_id, reason, admitted_at, discharged_at`

type bedRepoPG struct {
	pool *pgxpool.Pool
}

func NewBedRepo(pool *pgxpool.Pool) BedRepository {
	return &bedRepoPG{pool: pool}
}

func (r *bedRepoPG) Create(ctx context.Context, b *Bed) error {
	if b.ID == uuid.Nil {
		b.ID = uuid.New()
	}
	_, err := r.pool.Exec(ctx, `
		INSERT INTO beds (id, hospital_id, ward, number, status)
		VALUES ($1, $2, $3, $4, $5)`,
		b.ID, b.HospitalID, b.Ward, b.Number, b.Status,
	)
	return err
}

func (r *bedRepoPG) GetByID(ctx context.Context, hospitalID, id uuid.UUID) (*Bed, error) {
	var b Bed
	err := r.pool.QueryRow(ctx,
		`SELECT `+bedColumns+` FROM beds WHERE hospital_id = $1 AND id = $2`,
		hospitalID, id,
	).Scan(&b.ID, &b.HospitalID, &b.Ward, &b.Number, &b.Status, &b.CreatedAt, &b.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrBedNotFound
	}
	if err != nil {
		return nil, err
	}
	return &b, nil
}

func (r *bedRepoPG) UpdateStatus(ctx context.Context, hospitalID, id uuid.UUID, status string) error {
	tag, err := r.pool.Exec(ctx, `
		UPDATE beds SET status = $3, updated_at = NOW()
		WHERE hospital_id = $1 AND id = $2`,
		hospitalID, id, status,
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrBedNotFound
	}
	return nil
}

func (r *bedRepoPG) List(ctx context.Context, hospitalID uuid.UUID) ([]*Bed, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+bedColumns+` FROM beds WHERE hospital_id = $1 ORDER BY ward, number`,
		hospitalID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var beds []*Bed
	for rows.Next() {
		var b Bed
		if err := rows.Scan(&b.ID, &b.HospitalID, &b.Ward, &b.Number, &b.Status, &b.CreatedAt, &b.UpdatedAt); err != nil {
			return nil, err
		}
		beds = append(beds, &b)
	}
	return beds, rows.Err()
}

func (r *bedRepoPG) Delete(ctx context.Context, hospitalID, id uuid.UUID) error {
	tag, err := r.pool.Exec(ctx,
		`DELETE FROM beds WHERE hospital_id = $1 AND id = $2`, hospitalID, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrBedNotFound
	}
	return nil
}

type admissionRepoPG struct {
	pool *pgxpool.Pool
}

func NewAdmissionRepo(pool *pgxpool.Pool) AdmissionRepository {
	return &admissionRepoPG{pool: pool}
}

func (r *admissionRepoPG) Create(ctx context.Context, a *Admission) error {
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	_, err := r.pool.Exec(ctx, `
		INSERT INTO admissions (id, hospital_id, patient_id, bed_id, doctor_id, reason, admitted_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		a.ID, a.HospitalID, a.PatientID, a.BedID, a.DoctorID, a.Reason, a.AdmittedAt,
	)
	return err
}

func (r *admissionRepoPG) GetByID(ctx context.Context, hospitalID, id uuid.UUID) (*Admission, error) {
	return r.scan(r.pool.QueryRow(ctx,
		`SELECT `+admissionColumns+` FROM admissions WHERE hospital_id = $1 AND id = $2`,
		hospitalID, id))
}

func (r *admissionRepoPG) GetActiveByBed(ctx context.Context, hospitalID, bedID uuid.UUID) (*Admission, error) {
	return r.scan(r.pool.QueryRow(ctx, `
		SELECT `+admissionColumns+` FROM admissions
		WHERE hospital_id = $1 AND bed_id = $2 AND discharged_at IS NULL`,
		hospitalID, bedID))
}

func (r *admissionRepoPG) Discharge(ctx context.Context, hospitalID, id uuid.UUID) error {
	tag, err := r.pool.Exec(ctx, `
		UPDATE admissions SET discharged_at = NOW()
		WHERE hospital_id = $1 AND id = $2 AND discharged_at IS NULL`,
		hospitalID, id,
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrAdmissionNotFound
	}
	return nil
}

func (r *admissionRepoPG) List(ctx context.Context, hospitalID uuid.UUID, activeOnly bool, limit, offset int) ([]*Admission, int, error) {
	where := `WHERE hospital_id = $1`
	if activeOnly {
		where += ` AND discharged_at IS NULL`
	}

	var total int
	if err := r.pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM admissions `+where, hospitalID).Scan(&total); err != nil {
		return nil, 0, err
	}

	rows, err := r.pool.Query(ctx,
		`SELECT `+admissionColumns+` FROM admissions `+where+
			` ORDER BY admitted_at DESC LIMIT $2 OFFSET $3`,
		hospitalID, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var admissions []*Admission
	for rows.Next() {
		a, err := scanAdmission(rows.Scan)
		if err != nil {
			return nil, 0, err
		}
		admissions = append(admissions, a)
	}
	return admissions, total, rows.Err()
}

func (r *admissionRepoPG) scan(row pgx.Row) (*Admission, error) {
	a, err := scanAdmission(row.Scan)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrAdmissionNotFound
	}
	return a, err
}

func scanAdmission(scan func(dest ...any) error) (*Admission, error) {
	var a Admission
	err := scan(
		&a.ID, &a.HospitalID, &a.PatientID, &a.BedID, &a.DoctorID,
		&a.Reason, &a.AdmittedAt, &a.DischargedAt,
	)
	if err != nil {
		return nil, err
	}
	return &a, nil
}
