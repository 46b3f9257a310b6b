package billing

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const invoiceColumns = `id, hospital_id, patient_id, items, total, status, paid_at, created_at, updated_at`

type repoPG struct {
	pool *pgxpool.Pool
}

func NewRepo(pool *pgxpool.Pool) Repository {
	return &repoPG{pool: pool}
}

func (r *repoPG) Create(ctx context.Context, inv *Invoice) error {
	if inv.ID == uuid.Nil {
		inv.ID = uuid.New()
	}
	items, err := json.Marshal(inv.Items)
	if err != nil {
		return fmt.Errorf("encode items: %w", err)
	}
	_, err = r.pool.Exec(ctx, `
		INSERT INTO invoices (id, hospital_id, patient_id, items, total, status)
		VALUES ($1, $2, $3, $4, $5, $6)`,
		inv.ID, inv.HospitalID, inv.PatientID, items, inv.Total, inv.Status,
	)
	return err
}

func (r *repoPG) GetByID(ctx context.Context, hospitalID, id uuid.UUID) (*Invoice, error) {
	return r.scan(r.pool.QueryRow(ctx,
		`SELECT `+invoiceColumns+` FROM invoices WHERE hospital_id = $1 AND id = $2`,
		hospitalID, id))
}

func (r *repoPG) Update(ctx context.Context, inv *Invoice) error {
	items, err := json.Marshal(inv.Items)
	if err != nil {
		return fmt.Errorf("encode items: %w", err)
	}
	tag, err := r.pool.Exec(ctx, `
		UPDATE invoices SET patient_id = $3, items = $4, total = $5, updated_at = NOW()
		WHERE hospital_id = $1 AND id = $2`,
		inv.HospitalID, inv.ID, inv.PatientID, items, inv.Total,
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *repoPG) UpdateStatus(ctx context.Context, hospitalID, id uuid.UUID, status string, paidAt *time.Time) error {
	tag, err := r.pool.Exec(ctx, `
		UPDATE invoices SET status = $3, paid_at = $4, updated_at = NOW()
		WHERE hospital_id = $1 AND id = $2`,
		hospitalID, id, status, paidAt,
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *repoPG) List(ctx context.Context, hospitalID uuid.UUID, filter ListFilter, limit, offset int) ([]*Invoice, int, error) {
	where := `WHERE hospital_id = $1`
	args := []any{hospitalID}

	if filter.PatientID != uuid.Nil {
		args = append(args, filter.PatientID)
		where += fmt.Sprintf(` AND patient_id = $%d`, len(args))
	}
	if filter.Status != "" {
		args = append(args, filter.Status)
		where += fmt.Sprintf(` AND status = $%d`, len(args))
	}

	var total int
	if err := r.pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM invoices `+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	args = append(args, limit, offset)
	rows, err := r.pool.Query(ctx,
		`SELECT `+invoiceColumns+` FROM invoices `+where+
			fmt.Sprintf(` ORDER BY created_at DESC LIMIT $%d OFFSET $%d`, len(args)-1, len(args)),
		args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var invoices []*Invoice
	for rows.Next() {
		inv, err := scanInvoice(rows.Scan)
		if err != nil {
			return nil, 0, err
		}
		invoices = append(invoices, inv)
	}
	return invoices, total, rows.Err()
}

func (r *repoPG) scan(row pgx.Row) (*Invoice, error) {
	inv, err := scanInvoice(row.Scan)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	return inv, err
}

func scanInvoice(scan func(dest ...any) error) (*Invoice, error) {
	var inv Invoice
	var items []byte
	err := scan(
		&inv.ID, &inv.HospitalID, &inv.PatientID, &items, &inv.Total, &inv.Status,
		&inv.PaidAt, &inv.CreatedAt, &inv.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal(items, &inv.Items); err != nil {
		return nil, fmt.Errorf("decode items: %w", err)
	}
	return &inv, nil
}
