// Package billing manages patient invoices. Line amounts and the invoice
// total are always computed server-side from quantity and unit price.
package billing

import (
	"time"

	"github.com/google/uuid"
)

const (
	StatusPending   = "pending"
	StatusPaid      = "paid"
	StatusCancelled = "cancelled"
)

func ValidStatus(s string) bool {
	switch s {
	case StatusPending, StatusPaid, StatusCancelled:
		return true
	}
	return false
}

type LineItem struct {
	Description string  `json:"description"`
	Quantity    int     `json:"quantity"`
	UnitPrice   float64 `json:"unit_price"`
	Amount      float64 `json:"amount"`
}

type Invoice struct {
	ID         uuid.UUID  `db:"id" json:"id"`
	HospitalID uuid.UUID  `db:"hospital_id" json:"hospital_id"`
	PatientID  uuid.UUID  `db:"patient_id" json:"patient_id"`
	Items      []LineItem `db:"items" json:"items"`
	Total      float64    `db:"total" json:"total"`
	Status     string     `db:"status" json:"status"`
	PaidAt     *time.Time `db:"paid_at" json:"paid_at,omitempty"`
	CreatedAt  time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt  time.Time  `db:"updated_at" json:"updated_at"`
}

// Price recomputes every line amount and the total, overwriting whatever the
// client sent.
func (inv *Invoice) Price() {
	var total float64
	for i := range inv.Items {
		inv.Items[i].Amount = float64(inv.Items[i].Quantity) * inv.Items[i].UnitPrice
		total += inv.Items[i].Amount
	}
	inv.Total = total
}
