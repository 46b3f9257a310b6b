package consultation

import (
	"errors"
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/hms/hms/internal/domain/scheduling"
	"github.com/hms/hms/internal/platform/session"
)

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) RegisterRoutes(api *echo.Group) {
	api.GET("/appointments/:id/consultation", h.Load)
	api.POST("/appointments/:id/consultation", h.Submit)

	g := api.Group("/consultation")
	g.GET("/catalog/:kind", h.Catalog)
	g.GET("/follow-up-options", h.FollowUpOptions)
}

// Load returns the draft hydrated from the appointment record.
func (h *Handler) Load(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}

	d, err := h.svc.Load(c.Request().Context(), session.HospitalIDFromContext(c.Request().Context()), id)
	if err != nil {
		if errors.Is(err, scheduling.ErrNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "appointment not found")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, d)
}

// Submit accepts the finished draft and runs the save pipeline.
func (h *Handler) Submit(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}

	var d Draft
	if err := c.Bind(&d); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	d.AppointmentID = id
	d.HospitalID = session.HospitalIDFromContext(c.Request().Context())

	a, err := h.svc.Submit(c.Request().Context(), &d)
	if err != nil {
		var saveErr *SaveError
		if errors.As(err, &saveErr) {
			switch saveErr.Kind {
			case ValidationFailed:
				return c.JSON(http.StatusUnprocessableEntity, saveErr)
			case BackendRejected:
				if errors.Is(err, scheduling.ErrNotFound) {
					return echo.NewHTTPError(http.StatusNotFound, "appointment not found")
				}
				return c.JSON(http.StatusConflict, saveErr)
			}
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, a)
}

// Catalog serves the pick lists backing the form, filtered by the q query
// param.
func (h *Handler) Catalog(c echo.Context) error {
	entries, err := SearchCatalog(c.Param("kind"), c.QueryParam("q"))
	if err != nil {
		return echo.NewHTTPError(http.StatusNotFound, err.Error())
	}
	if entries == nil {
		entries = []string{}
	}
	return c.JSON(http.StatusOK, map[string]any{"entries": entries})
}

// FollowUpOptions lists the quick-pick labels in display order.
func (h *Handler) FollowUpOptions(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]any{"options": FollowUpQuickPicks})
}
