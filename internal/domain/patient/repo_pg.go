package patient

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const patientColumns = `id, hospital_id, uhid, first_name, last_name, date_of_birth, gender,
	phone, email, address_line1, city, state, postal_code,
	blood_group, allergies, chronic_conditions, created_at, updated_at`

type repoPG struct {
	pool *pgxpool.Pool
}

func NewRepo(pool *pgxpool.Pool) Repository {
	return &repoPG{pool: pool}
}

func (r *repoPG) Create(ctx context.Context, p *Patient) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	_, err := r.pool.Exec(ctx, `
		INSERT INTO patients (
			id, hospital_id, uhid, first_name, last_name, date_of_birth, gender,
			phone, email, address_line1, city, state, postal_code,
			blood_group, allergies, chronic_conditions
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7,
			$8, $9, $10, $11, $12, $13,
			$14, $15, $16
		)`,
		p.ID, p.HospitalID, p.UHID, p.FirstName, p.LastName, p.DateOfBirth, p.Gender,
		p.Contact.Phone, p.Contact.Email, p.Contact.AddressLine1, p.Contact.City, p.Contact.State, p.Contact.PostalCode,
		p.Medical.BloodGroup, p.Medical.Allergies, p.Medical.ChronicConditions,
	)
	return err
}

func (r *repoPG) GetByID(ctx context.Context, hospitalID, id uuid.UUID) (*Patient, error) {
	return r.scan(r.pool.QueryRow(ctx,
		`SELECT `+patientColumns+` FROM patients WHERE hospital_id = $1 AND id = $2`, hospitalID, id))
}

func (r *repoPG) GetByUHID(ctx context.Context, hospitalID uuid.UUID, uhid string) (*Patient, error) {
	return r.scan(r.pool.QueryRow(ctx,
		`SELECT `+patientColumns+` FROM patients WHERE hospital_id = $1 AND uhid = $2`, hospitalID, uhid))
}

func (r *repoPG) Update(ctx context.Context, p *Patient) error {
	tag, err := r.pool.Exec(ctx, `
		UPDATE patients SET
			first_name = $3, last_name = $4, date_of_birth = $5, gender = $6,
			phone = $7, email = $8, address_line1 = $9, city = $10, state = $11, postal_code = $12,
			blood_group = $13, allergies = $14, chronic_conditions = $15, updated_at = NOW()
		WHERE hospital_id = $1 AND id = $2`,
		p.HospitalID, p.ID,
		p.FirstName, p.LastName, p.DateOfBirth, p.Gender,
		p.Contact.Phone, p.Contact.Email, p.Contact.AddressLine1, p.Contact.City, p.Contact.State, p.Contact.PostalCode,
		p.Medical.BloodGroup, p.Medical.Allergies, p.Medical.ChronicConditions,
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *repoPG) Delete(ctx context.Context, hospitalID, id uuid.UUID) error {
	tag, err := r.pool.Exec(ctx,
		`DELETE FROM patients WHERE hospital_id = $1 AND id = $2`, hospitalID, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *repoPG) List(ctx context.Context, hospitalID uuid.UUID, limit, offset int) ([]*Patient, int, error) {
	var total int
	if err := r.pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM patients WHERE hospital_id = $1`, hospitalID).Scan(&total); err != nil {
		return nil, 0, err
	}

	rows, err := r.pool.Query(ctx,
		`SELECT `+patientColumns+` FROM patients
		 WHERE hospital_id = $1 ORDER BY created_at DESC LIMIT $2 OFFSET $3`,
		hospitalID, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()
	return r.collect(rows, total)
}

func (r *repoPG) Search(ctx context.Context, hospitalID uuid.UUID, query string, limit, offset int) ([]*Patient, int, error) {
	pattern := "%" + query + "%"

	var total int
	if err := r.pool.QueryRow(ctx, `
		SELECT COUNT(*) FROM patients
		WHERE hospital_id = $1
		  AND (first_name ILIKE $2 OR last_name ILIKE $2 OR uhid ILIKE $2 OR phone ILIKE $2)`,
		hospitalID, pattern).Scan(&total); err != nil {
		return nil, 0, err
	}

	rows, err := r.pool.Query(ctx, `
		SELECT `+patientColumns+` FROM patients
		WHERE hospital_id = $1
		  AND (first_name ILIKE $2 OR last_name ILIKE $2 OR uhid ILIKE $2 OR phone ILIKE $2)
		ORDER BY first_name, last_name LIMIT $3 OFFSET $4`,
		hospitalID, pattern, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()
	return r.collect(rows, total)
}

func (r *repoPG) collect(rows pgx.Rows, total int) ([]*Patient, int, error) {
	var patients []*Patient
	for rows.Next() {
		p, err := r.scanRow(rows)
		if err != nil {
			return nil, 0, err
		}
		patients = append(patients, p)
	}
	return patients, total, rows.Err()
}

func (r *repoPG) scan(row pgx.Row) (*Patient, error) {
	p, err := scanPatient(row.Scan)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	return p, err
}

func (r *repoPG) scanRow(rows pgx.Rows) (*Patient, error) {
	return scanPatient(rows.Scan)
}

func scanPatient(scan func(dest ...any) error) (*Patient, error) {
	var p Patient
	err := scan(
		&p.ID, &p.HospitalID, &p.UHID, &p.FirstName, &p.LastName, &p.DateOfBirth, &p.Gender,
		&p.Contact.Phone, &p.Contact.Email, &p.Contact.AddressLine1, &p.Contact.City, &p.Contact.State, &p.Contact.PostalCode,
		&p.Medical.BloodGroup, &p.Medical.Allergies, &p.Medical.ChronicConditions,
		&p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &p, nil
}
