package catalog

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/medease/medease/internal/httpapi"
	"github.com/medease/medease/internal/platform/auth"
)

type Handler struct {
	mgr *Manager
}

func NewHandler(mgr *Manager) *Handler {
	return &Handler{mgr: mgr}
}

// RegisterRoutes mounts public reads and admin-only writes.
func (h *Handler) RegisterRoutes(public *echo.Group, admin *echo.Group) {
	public.GET("/services", h.List)
	public.GET("/services/:id", h.Get)

	writes := admin.Group("/services", auth.RequireRole(auth.RoleAdmin))
	writes.POST("", h.Create)
	writes.PUT("/:id", h.Update)
	writes.DELETE("/:id", h.Delete)
}

func (h *Handler) List(c echo.Context) error {
	services, err := h.mgr.ListActive(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, services)
}

func (h *Handler) Get(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return httpapi.Invalid("invalid id")
	}
	s, err := h.mgr.Get(c.Request().Context(), id)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, s)
}

func (h *Handler) Create(c echo.Context) error {
	var req CreateServiceRequest
	if err := c.Bind(&req); err != nil {
		return httpapi.Invalid("invalid request body")
	}
	if err := c.Validate(req); err != nil {
		return err
	}
	s, err := h.mgr.Create(c.Request().Context(), req)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, s)
}

func (h *Handler) Update(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return httpapi.Invalid("invalid id")
	}
	var req UpdateServiceRequest
	if err := c.Bind(&req); err != nil {
		return httpapi.Invalid("invalid request body")
	}
	if err := c.Validate(req); err != nil {
		return err
	}
	s, err := h.mgr.Update(c.Request().Context(), id, req)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, s)
}

func (h *Handler) Delete(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return httpapi.Invalid("invalid id")
	}
	if err := h.mgr.Delete(c.Request().Context(), id); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}
