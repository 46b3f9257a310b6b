package ipd

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/hms/hms/internal/platform/session"
	"github.com/hms/hms/pkg/pagination"
)

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) RegisterRoutes(api *echo.Group) {
	beds := api.Group("/beds")
	beds.POST("", h.AddBed)
	beds.GET("", h.BedBoard)
	beds.PATCH("/:id/status", h.SetBedStatus)
	beds.DELETE("/:id", h.RemoveBed)

	adm := api.Group("/admissions")
	adm.POST("", h.Admit)
	adm.GET("", h.ListAdmissions)
	adm.GET("/:id", h.GetAdmission)
	adm.POST("/:id/discharge", h.Discharge)
}

func (h *Handler) AddBed(c echo.Context) error {
	var b Bed
	if err := c.Bind(&b); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	b.HospitalID = session.HospitalIDFromContext(c.Request().Context())

	if err := h.svc.AddBed(c.Request().Context(), &b); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return c.JSON(http.StatusCreated, b)
}

func (h *Handler) BedBoard(c echo.Context) error {
	hospitalID := session.HospitalIDFromContext(c.Request().Context())

	board, err := h.svc.BedBoard(c.Request().Context(), hospitalID)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	if board == nil {
		board = []*WardSummary{}
	}
	return c.JSON(http.StatusOK, map[string]any{"wards": board})
}

func (h *Handler) SetBedStatus(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}

	var body struct {
		Status string `json:"status"`
	}
	if err := c.Bind(&body); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	hospitalID := session.HospitalIDFromContext(c.Request().Context())

	b, err := h.svc.SetBedStatus(c.Request().Context(), hospitalID, id, body.Status)
	switch {
	case errors.Is(err, ErrBedNotFound):
		return echo.NewHTTPError(http.StatusNotFound, "bed not found")
	case errors.Is(err, ErrBedUnavailable):
		return echo.NewHTTPError(http.StatusConflict, err.Error())
	case err != nil:
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return c.JSON(http.StatusOK, b)
}

func (h *Handler) RemoveBed(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	hospitalID := session.HospitalIDFromContext(c.Request().Context())

	err = h.svc.RemoveBed(c.Request().Context(), hospitalID, id)
	switch {
	case errors.Is(err, ErrBedNotFound):
		return echo.NewHTTPError(http.StatusNotFound, "bed not found")
	case errors.Is(err, ErrBedUnavailable):
		return echo.NewHTTPError(http.StatusConflict, err.Error())
	case err != nil:
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *Handler) Admit(c echo.Context) error {
	var a Admission
	if err := c.Bind(&a); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	a.HospitalID = session.HospitalIDFromContext(c.Request().Context())

	err := h.svc.Admit(c.Request().Context(), &a)
	switch {
	case errors.Is(err, ErrBedNotFound):
		return echo.NewHTTPError(http.StatusNotFound, "bed not found")
	case errors.Is(err, ErrBedUnavailable):
		return echo.NewHTTPError(http.StatusConflict, err.Error())
	case err != nil:
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return c.JSON(http.StatusCreated, a)
}

func (h *Handler) GetAdmission(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	hospitalID := session.HospitalIDFromContext(c.Request().Context())

	a, err := h.svc.GetAdmission(c.Request().Context(), hospitalID, id)
	if errors.Is(err, ErrAdmissionNotFound) {
		return echo.NewHTTPError(http.StatusNotFound, "admission not found")
	}
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, a)
}

func (h *Handler) Discharge(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	hospitalID := session.HospitalIDFromContext(c.Request().Context())

	a, err := h.svc.Discharge(c.Request().Context(), hospitalID, id)
	if errors.Is(err, ErrAdmissionNotFound) {
		return echo.NewHTTPError(http.StatusNotFound, "admission not found")
	}
	if err != nil {
		return echo.NewHTTPError(http.StatusConflict, err.Error())
	}
	return c.JSON(http.StatusOK, a)
}

func (h *Handler) ListAdmissions(c echo.Context) error {
	hospitalID := session.HospitalIDFromContext(c.Request().Context())
	p := pagination.FromContext(c)

	activeOnly, _ := strconv.ParseBool(c.QueryParam("active"))
	admissions, total, err := h.svc.ListAdmissions(c.Request().Context(), hospitalID, activeOnly, p.Limit, p.Offset)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, pagination.NewResponse(admissions, total, p.Limit, p.Offset))
}
