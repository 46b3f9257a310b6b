package dashboard

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

type repoPG struct {
	pool *pgxpool.Pool
}

func NewRepo(pool *pgxpool.Pool) Repository {
	return &repoPG{pool: pool}
}

func (r *repoPG) Counts(ctx context.Context, hospitalID uuid.UUID, day time.Time) (*Counts, error) {
	var c Counts
	err := r.pool.QueryRow(ctx, `
		SELECT
			(SELECT COUNT(*) FROM patients WHERE hospital_id = $1),
			(SELECT COUNT(*) FROM appointments WHERE hospital_id = $1 AND date = $2),
			(SELECT COUNT(*) FROM beds WHERE hospital_id = $1 AND status = 'occupied'),
			(SELECT COUNT(*) FROM admissions WHERE hospital_id = $1 AND discharged_at IS NULL),
			(SELECT COUNT(*) FROM invoices WHERE hospital_id = $1 AND status = 'pending')`,
		hospitalID, day.Format("2006-01-02"),
	).Scan(&c.Patients, &c.TodaysAppointments, &c.OccupiedBeds, &c.ActiveAdmissions, &c.PendingInvoices)
	if err != nil {
		return nil, err
	}
	return &c, nil
}
