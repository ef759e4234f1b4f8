package availability

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/medease/medease/internal/httpapi"
	"github.com/medease/medease/internal/platform/auth"
)

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

// RegisterRoutes mounts the availability endpoints. The doctor-scoped
// endpoints require the DOCTOR role; the per-doctor lookup is open to any
// authenticated user.
func (h *Handler) RegisterRoutes(g *echo.Group) {
	doctorOnly := auth.RequireRole(auth.RoleDoctor)
	g.GET("/doctor/my-availability", h.MyAvailability, doctorOnly)
	g.POST("/doctor/set-availability", h.SetAvailability, doctorOnly)
	g.DELETE("/doctor/clear-availability", h.ClearAvailability, doctorOnly)
	g.GET("/doctor/:doctorId", h.DoctorAvailability)
}

func (h *Handler) MyAvailability(c echo.Context) error {
	doctorID := auth.UserIDFromContext(c.Request().Context())
	pattern, err := h.svc.MyPattern(c.Request().Context(), doctorID)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, pattern)
}

func (h *Handler) SetAvailability(c echo.Context) error {
	var req SetAvailabilityRequest
	if err := c.Bind(&req); err != nil {
		return httpapi.Invalid("invalid request body")
	}
	if err := c.Validate(req); err != nil {
		return err
	}
	doctorID := auth.UserIDFromContext(c.Request().Context())
	result, err := h.svc.Set(c.Request().Context(), doctorID, req)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, result)
}

func (h *Handler) ClearAvailability(c echo.Context) error {
	doctorID := auth.UserIDFromContext(c.Request().Context())
	if err := h.svc.Clear(c.Request().Context(), doctorID); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, map[string]string{"message": "availability cleared successfully"})
}

func (h *Handler) DoctorAvailability(c echo.Context) error {
	doctorID, err := uuid.Parse(c.Param("doctorId"))
	if err != nil {
		return httpapi.Invalid("invalid doctor id")
	}
	pattern, err := h.svc.DoctorPattern(c.Request().Context(), doctorID)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, pattern)
}
