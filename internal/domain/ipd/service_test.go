package ipd

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/hms/hms/internal/platform/realtime"
)

type mockBedRepo struct {
	beds map[uuid.UUID]*Bed
}

func newMockBedRepo() *mockBedRepo {
	return &mockBedRepo{beds: make(map[uuid.UUID]*Bed)}
}

func (m *mockBedRepo) Create(ctx context.Context, b *Bed) error {
	if b.ID == uuid.Nil {
		b.ID = uuid.New()
	}
	cp := *b
	m.beds[b.ID] = &cp
	return nil
}

func (m *mockBedRepo) GetByID(ctx context.Context, hospitalID, id uuid.UUID) (*Bed, error) {
	b, ok := m.beds[id]
	if !ok || b.HospitalID != hospitalID {
		return nil, ErrBedNotFound
	}
	cp := *b
	return &cp, nil
}

func (m *mockBedRepo) UpdateStatus(ctx context.Context, hospitalID, id uuid.UUID, status string) error {
	b, ok := m.beds[id]
	if !ok || b.HospitalID != hospitalID {
		return ErrBedNotFound
	}
	b.Status = status
	return nil
}

func (m *mockBedRepo) List(ctx context.Context, hospitalID uuid.UUID) ([]*Bed, error) {
	var out []*Bed
	for _, b := range m.beds {
		if b.HospitalID == hospitalID {
			cp := *b
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (m *mockBedRepo) Delete(ctx context.Context, hospitalID, id uuid.UUID) error {
	b, ok := m.beds[id]
	if !ok || b.HospitalID != hospitalID {
		return ErrBedNotFound
	}
	delete(m.beds, id)
	return nil
}

type mockAdmissionRepo struct {
	admissions map[uuid.UUID]*Admission
}

func newMockAdmissionRepo() *mockAdmissionRepo {
	return &mockAdmissionRepo{admissions: make(map[uuid.UUID]*Admission)}
}

func (m *mockAdmissionRepo) Create(ctx context.Context, a *Admission) error {
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	cp := *a
	m.admissions[a.ID] = &cp
	return nil
}

func (m *mockAdmissionRepo) GetByID(ctx context.Context, hospitalID, id uuid.UUID) (*Admission, error) {
	a, ok := m.admissions[id]
	if !ok || a.HospitalID != hospitalID {
		return nil, ErrAdmissionNotFound
	}
	cp := *a
	return &cp, nil
}

func (m *mockAdmissionRepo) GetActiveByBed(ctx context.Context, hospitalID, bedID uuid.UUID) (*Admission, error) {
	for _, a := range m.admissions {
		if a.HospitalID == hospitalID && a.BedID == bedID && a.Active() {
			cp := *a
			return &cp, nil
		}
	}
	return nil, ErrAdmissionNotFound
}

func (m *mockAdmissionRepo) Discharge(ctx context.Context, hospitalID, id uuid.UUID) error {
	a, ok := m.admissions[id]
	if !ok || a.HospitalID != hospitalID || !a.Active() {
		return ErrAdmissionNotFound
	}
	now := time.Now().UTC()
	a.DischargedAt = &now
	return nil
}

func (m *mockAdmissionRepo) List(ctx context.Context, hospitalID uuid.UUID, activeOnly bool, limit, offset int) ([]*Admission, int, error) {
	var out []*Admission
	for _, a := range m.admissions {
		if a.HospitalID != hospitalID {
			continue
		}
		if activeOnly && !a.Active() {
			continue
		}
		cp := *a
		out = append(out, &cp)
	}
	return out, len(out), nil
}

type capturePublisher struct {
	events []realtime.Event
}

func (c *capturePublisher) Publish(ctx context.Context, e realtime.Event) error {
	c.events = append(c.events, e)
	return nil
}

func newTestService() (*Service, *mockBedRepo, *mockAdmissionRepo, *capturePublisher) {
	beds := newMockBedRepo()
	admissions := newMockAdmissionRepo()
	pub := &capturePublisher{}
	return NewService(beds, admissions, pub, zerolog.Nop()), beds, admissions, pub
}

func addBed(t *testing.T, svc *Service, hospitalID uuid.UUID, ward, number string) *Bed {
	t.Helper()
	b := &Bed{HospitalID: hospitalID, Ward: ward, Number: number}
	if err := svc.AddBed(context.Background(), b); err != nil {
		t.Fatalf("AddBed(%s/%s): %v", ward, number, err)
	}
	return b
}

func TestAddBed_DefaultsAvailable(t *testing.T) {
	svc, _, _, pub := newTestService()
	hospitalID := uuid.New()

	b := addBed(t, svc, hospitalID, "General", "G-101")
	if b.Status != BedAvailable {
		t.Errorf("status = %q, want available", b.Status)
	}
	if len(pub.events) != 1 || pub.events[0].Topic != realtime.Topic("beds", hospitalID) {
		t.Errorf("unexpected events: %+v", pub.events)
	}
}

func TestAdmit_OccupiesBed(t *testing.T) {
	svc, beds, admissions, pub := newTestService()
	hospitalID := uuid.New()

	b := addBed(t, svc, hospitalID, "General", "G-101")
	a := &Admission{HospitalID: hospitalID, PatientID: uuid.New(), BedID: b.ID, DoctorID: uuid.New()}
	if err := svc.Admit(context.Background(), a); err != nil {
		t.Fatalf("Admit() error: %v", err)
	}

	if beds.beds[b.ID].Status != BedOccupied {
		t.Errorf("bed status = %q, want occupied", beds.beds[b.ID].Status)
	}
	if a.AdmittedAt.IsZero() {
		t.Error("admitted_at not stamped")
	}
	if _, ok := admissions.admissions[a.ID]; !ok {
		t.Error("admission not persisted")
	}

	last := pub.events[len(pub.events)-1]
	if last.Table != "admissions" || last.Type != "created" {
		t.Errorf("unexpected event: %+v", last)
	}
}

func TestAdmit_RejectsUnavailableBed(t *testing.T) {
	svc, beds, _, _ := newTestService()
	hospitalID := uuid.New()

	b := addBed(t, svc, hospitalID, "General", "G-101")

	for _, status := range []string{BedOccupied, BedMaintenance} {
		beds.beds[b.ID].Status = status
		a := &Admission{HospitalID: hospitalID, PatientID: uuid.New(), BedID: b.ID, DoctorID: uuid.New()}
		if err := svc.Admit(context.Background(), a); !errors.Is(err, ErrBedUnavailable) {
			t.Errorf("status %s: err = %v, want ErrBedUnavailable", status, err)
		}
	}
}

func TestAdmit_Validation(t *testing.T) {
	svc, _, _, _ := newTestService()
	hospitalID := uuid.New()

	tests := []struct {
		name string
		a    *Admission
	}{
		{"missing hospital", &Admission{PatientID: uuid.New(), BedID: uuid.New(), DoctorID: uuid.New()}},
		{"missing patient", &Admission{HospitalID: hospitalID, BedID: uuid.New(), DoctorID: uuid.New()}},
		{"missing bed", &Admission{HospitalID: hospitalID, PatientID: uuid.New(), DoctorID: uuid.New()}},
		{"missing doctor", &Admission{HospitalID: hospitalID, PatientID: uuid.New(), BedID: uuid.New()}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := svc.Admit(context.Background(), tt.a); err == nil {
				t.Error("expected validation error")
			}
		})
	}
}

func TestDischarge_FreesBed(t *testing.T) {
	svc, beds, _, _ := newTestService()
	hospitalID := uuid.New()

	b := addBed(t, svc, hospitalID, "General", "G-101")
	a := &Admission{HospitalID: hospitalID, PatientID: uuid.New(), BedID: b.ID, DoctorID: uuid.New()}
	if err := svc.Admit(context.Background(), a); err != nil {
		t.Fatalf("Admit() error: %v", err)
	}

	discharged, err := svc.Discharge(context.Background(), hospitalID, a.ID)
	if err != nil {
		t.Fatalf("Discharge() error: %v", err)
	}
	if discharged.DischargedAt == nil {
		t.Error("discharged_at not set")
	}
	if beds.beds[b.ID].Status != BedAvailable {
		t.Errorf("bed status = %q, want available", beds.beds[b.ID].Status)
	}

	// A closed admission cannot be discharged again.
	if _, err := svc.Discharge(context.Background(), hospitalID, a.ID); err == nil {
		t.Error("expected error on double discharge")
	}
}

func TestSetBedStatus(t *testing.T) {
	svc, beds, _, _ := newTestService()
	hospitalID := uuid.New()

	b := addBed(t, svc, hospitalID, "General", "G-101")

	updated, err := svc.SetBedStatus(context.Background(), hospitalID, b.ID, BedMaintenance)
	if err != nil {
		t.Fatalf("SetBedStatus() error: %v", err)
	}
	if updated.Status != BedMaintenance {
		t.Errorf("status = %q, want maintenance", updated.Status)
	}

	// Occupied may not be set directly.
	if _, err := svc.SetBedStatus(context.Background(), hospitalID, b.ID, BedOccupied); err == nil {
		t.Error("expected error setting occupied directly")
	}

	// An occupied bed cannot be moved to maintenance.
	beds.beds[b.ID].Status = BedOccupied
	if _, err := svc.SetBedStatus(context.Background(), hospitalID, b.ID, BedMaintenance); !errors.Is(err, ErrBedUnavailable) {
		t.Errorf("err = %v, want ErrBedUnavailable", err)
	}
}

func TestRemoveBed_OccupiedRejected(t *testing.T) {
	svc, beds, _, _ := newTestService()
	hospitalID := uuid.New()

	b := addBed(t, svc, hospitalID, "General", "G-101")
	beds.beds[b.ID].Status = BedOccupied

	if err := svc.RemoveBed(context.Background(), hospitalID, b.ID); !errors.Is(err, ErrBedUnavailable) {
		t.Fatalf("err = %v, want ErrBedUnavailable", err)
	}
}

func TestBedBoard(t *testing.T) {
	svc, beds, _, _ := newTestService()
	hospitalID := uuid.New()

	g1 := addBed(t, svc, hospitalID, "General", "G-101")
	addBed(t, svc, hospitalID, "General", "G-102")
	addBed(t, svc, hospitalID, "ICU", "I-01")
	beds.beds[g1.ID].Status = BedOccupied

	board, err := svc.BedBoard(context.Background(), hospitalID)
	if err != nil {
		t.Fatalf("BedBoard() error: %v", err)
	}
	if len(board) != 2 {
		t.Fatalf("expected 2 wards, got %d", len(board))
	}
	// Wards sort alphabetically.
	if board[0].Ward != "General" || board[1].Ward != "ICU" {
		t.Errorf("ward order: %s, %s", board[0].Ward, board[1].Ward)
	}
	if board[0].Total != 2 || board[0].Occupied != 1 || board[0].Available != 1 {
		t.Errorf("General summary: %+v", board[0])
	}
	if board[1].Total != 1 || board[1].Available != 1 {
		t.Errorf("ICU summary: %+v", board[1])
	}
}

func TestListAdmissions_ActiveFilter(t *testing.T) {
	svc, _, _, _ := newTestService()
	hospitalID := uuid.New()

	b1 := addBed(t, svc, hospitalID, "General", "G-101")
	b2 := addBed(t, svc, hospitalID, "General", "G-102")

	a1 := &Admission{HospitalID: hospitalID, PatientID: uuid.New(), BedID: b1.ID, DoctorID: uuid.New()}
	a2 := &Admission{HospitalID: hospitalID, PatientID: uuid.New(), BedID: b2.ID, DoctorID: uuid.New()}
	for _, a := range []*Admission{a1, a2} {
		if err := svc.Admit(context.Background(), a); err != nil {
			t.Fatalf("Admit() error: %v", err)
		}
	}
	if _, err := svc.Discharge(context.Background(), hospitalID, a1.ID); err != nil {
		t.Fatalf("Discharge() error: %v", err)
	}

	active, total, err := svc.ListAdmissions(context.Background(), hospitalID, true, 20, 0)
	if err != nil {
		t.Fatalf("ListAdmissions() error: %v", err)
	}
	if total != 1 || active[0].ID != a2.ID {
		t.Errorf("expected only the active admission, got %d", total)
	}

	_, total, err = svc.ListAdmissions(context.Background(), hospitalID, false, 20, 0)
	if err != nil {
		t.Fatalf("ListAdmissions() error: %v", err)
	}
	if total != 2 {
		t.Errorf("expected both admissions, got %d", total)
	}
}
