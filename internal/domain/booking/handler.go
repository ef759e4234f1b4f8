package booking

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

// RegisterRoutes mounts the appointment endpoints. Slot lookup stays public
// so patients can check availability before registering. Fixed paths are
// mounted before the /:id routes so echo does not swallow them as ids.
func (h *Handler) RegisterRoutes(public *echo.Group, g *echo.Group) {
	patientOnly := auth.RequireRole(auth.RolePatient)
	doctorOnly := auth.RequireRole(auth.RoleDoctor)

	public.GET("/appointments/available-slots/:doctorId", h.AvailableSlots)

	g.POST("", h.Create, patientOnly)
	g.GET("/patient/my-appointments", h.PatientAppointments, patientOnly)
	g.GET("/patient/stats", h.PatientStats, patientOnly)
	g.GET("/patient/upcoming", h.PatientUpcoming, patientOnly)
	g.GET("/doctor/my-appointments", h.DoctorAppointments, doctorOnly)
	g.GET("/doctor/stats", h.DoctorStats, doctorOnly)
	g.GET("/doctor/weekly-schedule", h.WeeklySchedule, doctorOnly)
	g.GET("/:id", h.Get)
	g.PATCH("/:id/status", h.UpdateStatus)
	g.DELETE("/:id", h.Cancel)
}

func (h *Handler) Create(c echo.Context) error {
	var req CreateAppointmentRequest
	if err := c.Bind(&req); err != nil {
		return httpapi.Invalid("invalid request body")
	}
	if err := c.Validate(req); err != nil {
		return err
	}
	patientID := auth.UserIDFromContext(c.Request().Context())
	appt, err := h.svc.Create(c.Request().Context(), patientID, req)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, appt)
}

func (h *Handler) Get(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return httpapi.Invalid("invalid appointment id")
	}
	ctx := c.Request().Context()
	appt, err := h.svc.Get(ctx, auth.UserIDFromContext(ctx), auth.RoleFromContext(ctx), id)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, appt)
}

func (h *Handler) UpdateStatus(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return httpapi.Invalid("invalid appointment id")
	}
	var req UpdateStatusRequest
	if err := c.Bind(&req); err != nil {
		return httpapi.Invalid("invalid request body")
	}
	if err := c.Validate(req); err != nil {
		return err
	}
	ctx := c.Request().Context()
	appt, err := h.svc.UpdateStatus(ctx, auth.UserIDFromContext(ctx), auth.RoleFromContext(ctx), id, req.Status)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, appt)
}

func (h *Handler) Cancel(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return httpapi.Invalid("invalid appointment id")
	}
	ctx := c.Request().Context()
	result, err := h.svc.Cancel(ctx, auth.UserIDFromContext(ctx), auth.RoleFromContext(ctx), id)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, result)
}

func (h *Handler) PatientAppointments(c echo.Context) error {
	ctx := c.Request().Context()
	appts, err := h.svc.PatientAppointments(ctx, auth.UserIDFromContext(ctx))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, appts)
}

func (h *Handler) DoctorAppointments(c echo.Context) error {
	ctx := c.Request().Context()
	appts, err := h.svc.DoctorAppointments(ctx, auth.UserIDFromContext(ctx))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, appts)
}

func (h *Handler) AvailableSlots(c echo.Context) error {
	doctorID, err := uuid.Parse(c.Param("doctorId"))
	if err != nil {
		return httpapi.Invalid("invalid doctor id")
	}
	slots, err := h.svc.AvailableSlots(c.Request().Context(), doctorID, c.QueryParam("date"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, slots)
}

func (h *Handler) PatientStats(c echo.Context) error {
	ctx := c.Request().Context()
	stats, err := h.svc.PatientStats(ctx, auth.UserIDFromContext(ctx))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, stats)
}

func (h *Handler) PatientUpcoming(c echo.Context) error {
	ctx := c.Request().Context()
	upcoming, err := h.svc.PatientUpcoming(ctx, auth.UserIDFromContext(ctx))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, upcoming)
}

func (h *Handler) DoctorStats(c echo.Context) error {
	ctx := c.Request().Context()
	stats, err := h.svc.DoctorStats(ctx, auth.UserIDFromContext(ctx))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, stats)
}

func (h *Handler) WeeklySchedule(c echo.Context) error {
	ctx := c.Request().Context()
	schedule, err := h.svc.WeeklySchedule(ctx, auth.UserIDFromContext(ctx), c.QueryParam("start_date"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, schedule)
}
