package identity

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/medease/medease/internal/httpapi"
	"github.com/medease/medease/internal/platform/auth"
	"github.com/medease/medease/pkg/pagination"
)

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

// RegisterRoutes mounts the public auth and doctor-browsing endpoints and the
// authenticated user endpoints on their respective groups. Doctor listing and
// detail stay public so patients can browse before registering.
func (h *Handler) RegisterRoutes(public *echo.Group, users *echo.Group) {
	public.POST("/auth/register/patient", h.RegisterPatient)
	public.POST("/auth/register/doctor", h.RegisterDoctor)
	public.POST("/auth/login", h.Login)
	public.GET("/users/doctors", h.ListDoctors)
	public.GET("/users/doctors/:id", h.GetDoctor)

	users.GET("/me", h.Me)
	users.PATCH("/patient/update-profile", h.UpdatePatientProfile, auth.RequireRole(RolePatient))
	users.PATCH("/doctor/update-profile", h.UpdateDoctorProfile, auth.RequireRole(RoleDoctor))
	users.PATCH("/doctor/complete-profile", h.CompleteDoctorProfile, auth.RequireRole(RoleDoctor))
}

func (h *Handler) RegisterPatient(c echo.Context) error {
	var req RegisterPatientRequest
	if err := c.Bind(&req); err != nil {
		return httpapi.Invalid("invalid request body")
	}
	if err := c.Validate(req); err != nil {
		return err
	}
	result, err := h.svc.RegisterPatient(c.Request().Context(), req)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, result)
}

func (h *Handler) RegisterDoctor(c echo.Context) error {
	var req RegisterDoctorRequest
	if err := c.Bind(&req); err != nil {
		return httpapi.Invalid("invalid request body")
	}
	if err := c.Validate(req); err != nil {
		return err
	}
	result, err := h.svc.RegisterDoctor(c.Request().Context(), req)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, result)
}

func (h *Handler) Login(c echo.Context) error {
	var req LoginRequest
	if err := c.Bind(&req); err != nil {
		return httpapi.Invalid("invalid request body")
	}
	if err := c.Validate(req); err != nil {
		return err
	}
	result, err := h.svc.Login(c.Request().Context(), req)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, result)
}

func (h *Handler) Me(c echo.Context) error {
	userID := auth.UserIDFromContext(c.Request().Context())
	u, err := h.svc.Me(c.Request().Context(), userID)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, u)
}

func (h *Handler) ListDoctors(c echo.Context) error {
	doctors, err := h.svc.ListDoctors(c.Request().Context(), c.QueryParam("specialty"), pagination.FromContext(c))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, doctors)
}

func (h *Handler) GetDoctor(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return httpapi.Invalid("invalid id")
	}
	doctor, err := h.svc.GetDoctor(c.Request().Context(), id)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, doctor)
}

func (h *Handler) UpdatePatientProfile(c echo.Context) error {
	var req UpdatePatientProfileRequest
	if err := c.Bind(&req); err != nil {
		return httpapi.Invalid("invalid request body")
	}
	if err := c.Validate(req); err != nil {
		return err
	}
	userID := auth.UserIDFromContext(c.Request().Context())
	u, err := h.svc.UpdatePatientProfile(c.Request().Context(), userID, req)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, u)
}

func (h *Handler) UpdateDoctorProfile(c echo.Context) error {
	var req UpdateDoctorProfileRequest
	if err := c.Bind(&req); err != nil {
		return httpapi.Invalid("invalid request body")
	}
	if err := c.Validate(req); err != nil {
		return err
	}
	userID := auth.UserIDFromContext(c.Request().Context())
	u, err := h.svc.UpdateDoctorProfile(c.Request().Context(), userID, req)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, u)
}

func (h *Handler) CompleteDoctorProfile(c echo.Context) error {
	var req CompleteDoctorProfileRequest
	if err := c.Bind(&req); err != nil {
		return httpapi.Invalid("invalid request body")
	}
	if err := c.Validate(req); err != nil {
		return err
	}
	userID := auth.UserIDFromContext(c.Request().Context())
	u, err := h.svc.CompleteDoctorProfile(c.Request().Context(), userID, req)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, u)
}
