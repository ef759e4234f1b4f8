package messaging

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

// RegisterRoutes mounts the messaging endpoints. All of them act as the
// authenticated caller.
func (h *Handler) RegisterRoutes(g *echo.Group) {
	g.POST("", h.Send)
	g.GET("/conversations", h.Conversations)
	g.GET("/conversation/:otherUserId", h.Conversation)
	g.PATCH("/mark-read", h.MarkRead)
	g.GET("/unread-count", h.UnreadCount)
}

func (h *Handler) Send(c echo.Context) error {
	var req SendMessageRequest
	if err := c.Bind(&req); err != nil {
		return httpapi.Invalid("invalid request body")
	}
	if err := c.Validate(req); err != nil {
		return err
	}
	ctx := c.Request().Context()
	msg, err := h.svc.Send(ctx, auth.UserIDFromContext(ctx), req)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, msg)
}

func (h *Handler) Conversation(c echo.Context) error {
	otherID, err := uuid.Parse(c.Param("otherUserId"))
	if err != nil {
		return httpapi.Invalid("invalid user id")
	}
	ctx := c.Request().Context()
	messages, err := h.svc.Conversation(ctx, auth.UserIDFromContext(ctx), otherID)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, messages)
}

func (h *Handler) Conversations(c echo.Context) error {
	ctx := c.Request().Context()
	conversations, err := h.svc.Conversations(ctx, auth.UserIDFromContext(ctx))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, conversations)
}

func (h *Handler) MarkRead(c echo.Context) error {
	var req MarkReadRequest
	if err := c.Bind(&req); err != nil {
		return httpapi.Invalid("invalid request body")
	}
	if err := c.Validate(req); err != nil {
		return err
	}
	ctx := c.Request().Context()
	if err := h.svc.MarkRead(ctx, auth.UserIDFromContext(ctx), req); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, map[string]bool{"success": true})
}

func (h *Handler) UnreadCount(c echo.Context) error {
	ctx := c.Request().Context()
	count, err := h.svc.UnreadCount(ctx, auth.UserIDFromContext(ctx))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, map[string]int{"count": count})
}
