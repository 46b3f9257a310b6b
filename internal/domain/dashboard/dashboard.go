// Package dashboard serves the landing-page counters. Counts are recomputed
// wholesale on every request; nothing is cached or incremented.
package dashboard

import (
	"context"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/hms/hms/internal/platform/session"
)

// Counts is one hospital's snapshot.
type Counts struct {
	Patients           int `json:"patients"`
	TodaysAppointments int `json:"todays_appointments"`
	OccupiedBeds       int `json:"occupied_beds"`
	ActiveAdmissions   int `json:"active_admissions"`
	PendingInvoices    int `json:"pending_invoices"`
}

// Repository computes the counts for a hospital as of a given day.
type Repository interface {
	Counts(ctx context.Context, hospitalID uuid.UUID, day time.Time) (*Counts, error)
}

type Service struct {
	repo   Repository
	logger zerolog.Logger
}

func NewService(repo Repository, logger zerolog.Logger) *Service {
	return &Service{repo: repo, logger: logger}
}

// Snapshot returns the hospital's counters for today.
func (s *Service) Snapshot(ctx context.Context, hospitalID uuid.UUID) (*Counts, error) {
	return s.repo.Counts(ctx, hospitalID, time.Now().UTC())
}

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) RegisterRoutes(api *echo.Group) {
	api.GET("/dashboard", h.Snapshot)
}

func (h *Handler) Snapshot(c echo.Context) error {
	hospitalID := session.HospitalIDFromContext(c.Request().Context())

	counts, err := h.svc.Snapshot(c.Request().Context(), hospitalID)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, counts)
}
