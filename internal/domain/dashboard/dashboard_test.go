package dashboard

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/hms/hms/internal/platform/session"
)

type mockRepo struct {
	byHospital map[uuid.UUID]*Counts
	calls      int
}

func (m *mockRepo) Counts(ctx context.Context, hospitalID uuid.UUID, day time.Time) (*Counts, error) {
	m.calls++
	if c, ok := m.byHospital[hospitalID]; ok {
		cp := *c
		return &cp, nil
	}
	return &Counts{}, nil
}

func TestSnapshot_RecomputesEveryCall(t *testing.T) {
	hospitalID := uuid.New()
	repo := &mockRepo{byHospital: map[uuid.UUID]*Counts{
		hospitalID: {Patients: 42, TodaysAppointments: 7, OccupiedBeds: 5, ActiveAdmissions: 5, PendingInvoices: 3},
	}}
	svc := NewService(repo, zerolog.Nop())

	for i := 0; i < 3; i++ {
		c, err := svc.Snapshot(context.Background(), hospitalID)
		if err != nil {
			t.Fatalf("Snapshot() error: %v", err)
		}
		if c.Patients != 42 || c.TodaysAppointments != 7 {
			t.Errorf("unexpected counts: %+v", c)
		}
	}
	if repo.calls != 3 {
		t.Errorf("expected a fresh query per call, got %d", repo.calls)
	}
}

func TestSnapshot_ScopedToHospital(t *testing.T) {
	hospitalID := uuid.New()
	repo := &mockRepo{byHospital: map[uuid.UUID]*Counts{
		hospitalID: {Patients: 42},
	}}
	svc := NewService(repo, zerolog.Nop())

	c, err := svc.Snapshot(context.Background(), uuid.New())
	if err != nil {
		t.Fatalf("Snapshot() error: %v", err)
	}
	if c.Patients != 0 {
		t.Errorf("other hospital's counts leaked: %+v", c)
	}
}

func TestSnapshotHandler(t *testing.T) {
	hospitalID := uuid.New()
	repo := &mockRepo{byHospital: map[uuid.UUID]*Counts{
		hospitalID: {Patients: 10, PendingInvoices: 2},
	}}
	h := NewHandler(NewService(repo, zerolog.Nop()))

	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/api/dashboard", nil)
	s := &session.Session{UserID: uuid.New(), HospitalID: hospitalID, Role: "doctor", IsActive: true}
	req = req.WithContext(session.NewContext(context.Background(), s))
	rec := httptest.NewRecorder()

	if err := h.Snapshot(e.NewContext(req, rec)); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}

	var c Counts
	if err := json.Unmarshal(rec.Body.Bytes(), &c); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if c.Patients != 10 || c.PendingInvoices != 2 {
		t.Errorf("unexpected counts: %+v", c)
	}
}
