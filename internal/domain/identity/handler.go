package identity

import (
	"errors"
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/hms/hms/internal/platform/guard"
	"github.com/hms/hms/internal/platform/session"
	"github.com/hms/hms/pkg/pagination"
)

type Handler struct {
	svc      *Service
	sessions *session.Controller
}

func NewHandler(svc *Service, sessions *session.Controller) *Handler {
	return &Handler{svc: svc, sessions: sessions}
}

func (h *Handler) RegisterRoutes(api *echo.Group) {
	auth := api.Group("/auth")
	auth.POST("/signin", h.SignIn)
	auth.POST("/signup", h.SignUp)
	auth.POST("/reset-password", h.ResetPassword)
	auth.POST("/signout", h.SignOut)
	auth.POST("/refresh", h.Refresh)
	auth.GET("/me", h.Me)

	// Staff administration is admin-only.
	staff := api.Group("/doctors", guard.Require("admin"))
	staff.GET("", h.ListStaff)
	staff.POST("/:id/deactivate", h.Deactivate)
	staff.POST("/:id/activate", h.Activate)
}

type signInRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type signInResponse struct {
	Token     string               `json:"token"`
	ExpiresAt string               `json:"expires_at"`
	User      *session.UserProfile `json:"user"`
}

func (h *Handler) SignIn(c echo.Context) error {
	var req signInRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if req.Email == "" || req.Password == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "email and password are required")
	}

	s, err := h.sessions.SignIn(c.Request().Context(), req.Email, req.Password)
	switch {
	case errors.Is(err, session.ErrInvalidCredentials):
		return echo.NewHTTPError(http.StatusUnauthorized, "invalid email or password")
	case errors.Is(err, session.ErrProfileNotFound):
		return echo.NewHTTPError(http.StatusUnauthorized, "no profile for this account")
	case err != nil:
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	return c.JSON(http.StatusOK, signInResponse{
		Token:     s.Token,
		ExpiresAt: s.Expiry.UTC().Format("2006-01-02T15:04:05Z07:00"),
		User:      s.Profile,
	})
}

func (h *Handler) SignUp(c echo.Context) error {
	var in SignUpInput
	if err := c.Bind(&in); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	user, err := h.svc.SignUp(c.Request().Context(), in)
	if errors.Is(err, ErrEmailTaken) {
		return echo.NewHTTPError(http.StatusConflict, "email already registered")
	}
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return c.JSON(http.StatusCreated, user)
}

type resetPasswordRequest struct {
	Email string `json:"email"`
}

func (h *Handler) ResetPassword(c echo.Context) error {
	var req resetPasswordRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if req.Email == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "email is required")
	}
	if err := h.svc.ResetPassword(c.Request().Context(), req.Email); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.NoContent(http.StatusAccepted)
}

// SignOut tears down the caller's own session. The middleware has already
// resolved the bearer token to a session, so other users stay signed in.
func (h *Handler) SignOut(c echo.Context) error {
	h.sessions.SignOut(c.Request().Context(), session.FromContext(c.Request().Context()))
	return c.NoContent(http.StatusNoContent)
}

// Refresh exchanges the caller's token for a fresh one when it is close to
// expiry. Outside the refresh window the current token is returned unchanged.
func (h *Handler) Refresh(c echo.Context) error {
	s := session.FromContext(c.Request().Context())
	if s == nil {
		return echo.NewHTTPError(http.StatusUnauthorized, "no active session")
	}

	refreshed, err := h.sessions.RefreshSession(c.Request().Context(), s)
	if err != nil {
		// The controller already forced the sign-out; the client must
		// authenticate again.
		return echo.NewHTTPError(http.StatusUnauthorized, "session refresh failed, sign in again")
	}

	return c.JSON(http.StatusOK, signInResponse{
		Token:     refreshed.Token,
		ExpiresAt: refreshed.Expiry.UTC().Format("2006-01-02T15:04:05Z07:00"),
		User:      refreshed.Profile,
	})
}

func (h *Handler) Me(c echo.Context) error {
	s := session.FromContext(c.Request().Context())
	if s == nil {
		return echo.NewHTTPError(http.StatusUnauthorized, "no active session")
	}
	profile, err := h.svc.FetchProfile(c.Request().Context(), s.UserID)
	if errors.Is(err, session.ErrProfileNotFound) {
		return echo.NewHTTPError(http.StatusNotFound, "profile not found")
	}
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, profile)
}

func (h *Handler) ListStaff(c echo.Context) error {
	hospitalID := session.HospitalIDFromContext(c.Request().Context())
	p := pagination.FromContext(c)

	users, total, err := h.svc.ListStaff(c.Request().Context(), hospitalID, p.Limit, p.Offset)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, pagination.NewResponse(users, total, p.Limit, p.Offset))
}

func (h *Handler) Deactivate(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}
	if err := h.svc.Deactivate(c.Request().Context(), id); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.NoContent(http.StatusNoContent)
}

func parseID(c echo.Context) (uuid.UUID, error) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return uuid.Nil, echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	return id, nil
}

func (h *Handler) Activate(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}
	if err := h.svc.Activate(c.Request().Context(), id); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.NoContent(http.StatusNoContent)
}
