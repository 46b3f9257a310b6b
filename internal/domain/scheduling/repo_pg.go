package scheduling

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const appointmentColumns = `id, hospital_id, patient_id, doctor_id, date, time, reason, status,
	vital_signs, symptoms, diagnosis, prescription, follow_up_date, notes, created_at, updated_at`

type repoPG struct {
	pool *pgxpool.Pool
}

func NewRepo(pool *pgxpool.Pool) Repository {
	return &repoPG{pool: pool}
}

func (r *repoPG) Create(ctx context.Context, a *Appointment) error {
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	_, err := r.pool.Exec(ctx, `
		INSERT INTO appointments (id, hospital_id, patient_id, doctor_id, date, time, reason, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		a.ID, a.HospitalID, a.PatientID, a.DoctorID, a.Date, a.Time, a.Reason, a.Status,
	)
	return err
}

func (r *repoPG) GetByID(ctx context.Context, hospitalID, id uuid.UUID) (*Appointment, error) {
	return r.scan(r.pool.QueryRow(ctx,
		`SELECT `+appointmentColumns+` FROM appointments WHERE hospital_id = $1 AND id = $2`,
		hospitalID, id))
}

func (r *repoPG) Update(ctx context.Context, a *Appointment) error {
	tag, err := r.pool.Exec(ctx, `
		UPDATE appointments SET
			patient_id = $3, doctor_id = $4, date = $5, time = $6, reason = $7, updated_at = NOW()
		WHERE hospital_id = $1 AND id = $2`,
		a.HospitalID, a.ID, a.PatientID, a.DoctorID, a.Date, a.Time, a.Reason,
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *repoPG) UpdateStatus(ctx context.Context, hospitalID, id uuid.UUID, status string) error {
	tag, err := r.pool.Exec(ctx, `
		UPDATE appointments SET status = $3, updated_at = NOW()
		WHERE hospital_id = $1 AND id = $2`,
		hospitalID, id, status,
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *repoPG) ApplyConsultation(ctx context.Context, hospitalID, id uuid.UUID, patch ConsultationPatch) error {
	tag, err := r.pool.Exec(ctx, `
		UPDATE appointments SET
			status = $3, vital_signs = $4, symptoms = $5, diagnosis = $6,
			prescription = $7, follow_up_date = $8, notes = $9, updated_at = NOW()
		WHERE hospital_id = $1 AND id = $2`,
		hospitalID, id, StatusCompleted,
		patch.VitalSigns, patch.Symptoms, patch.Diagnosis,
		patch.Prescription, patch.FollowUpDate, patch.Notes,
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
		`DELETE FROM appointments WHERE hospital_id = $1 AND id = $2`, hospitalID, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *repoPG) List(ctx context.Context, hospitalID uuid.UUID, filter ListFilter, limit, offset int) ([]*Appointment, int, error) {
	where := `WHERE hospital_id = $1`
	args := []any{hospitalID}

	if filter.DoctorID != uuid.Nil {
		args = append(args, filter.DoctorID)
		where += fmt.Sprintf(` AND doctor_id = $%d`, len(args))
	}
	if filter.PatientID != uuid.Nil {
		args = append(args, filter.PatientID)
		where += fmt.Sprintf(` AND patient_id = $%d`, len(args))
	}
	if filter.Date != nil {
		args = append(args, *filter.Date)
		where += fmt.Sprintf(` AND date = $%d`, len(args))
	}
	if filter.Status != "" {
		args = append(args, filter.Status)
		where += fmt.Sprintf(` AND status = $%d`, len(args))
	}

	var total int
	if err := r.pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM appointments `+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	args = append(args, limit, offset)
	rows, err := r.pool.Query(ctx,
		`SELECT `+appointmentColumns+` FROM appointments `+where+
			fmt.Sprintf(` ORDER BY date, time LIMIT $%d OFFSET $%d`, len(args)-1, len(args)),
		args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var appointments []*Appointment
	for rows.Next() {
		a, err := scanAppointment(rows.Scan)
		if err != nil {
			return nil, 0, err
		}
		appointments = append(appointments, a)
	}
	return appointments, total, rows.Err()
}

func (r *repoPG) scan(row pgx.Row) (*Appointment, error) {
	a, err := scanAppointment(row.Scan)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	return a, err
}

func scanAppointment(scan func(dest ...any) error) (*Appointment, error) {
	var a Appointment
	err := scan(
		&a.ID, &a.HospitalID, &a.PatientID, &a.DoctorID, &a.Date, &a.Time, &a.Reason, &a.Status,
		&a.VitalSigns, &a.Symptoms, &a.Diagnosis, &a.Prescription, &a.FollowUpDate, &a.Notes,
		&a.CreatedAt, &a.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &a, nil
}
