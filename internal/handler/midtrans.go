package handler

import (
	"fmt"
	"io"
	"net/http"

	"agency-backend/internal/service"

	"github.com/labstack/echo/v4"
)

type MidtransHandler struct {
	midtransService service.MidtransService
}

func NewMidtransHandler(midtransService service.MidtransService) *MidtransHandler {
	return &MidtransHandler{
		midtransService: midtransService,
	}
}

func (h *MidtransHandler) Notification(c echo.Context) error {
	ctx := c.Request().Context()

	body, err := io.ReadAll(c.Request().Body)
	if err != nil {
		return c.NoContent(http.StatusBadRequest)
	}

	if err := h.midtransService.HandleNotification(ctx, body); err != nil {
		return fmt.Errorf("handle notification: %w", err)
	}

	return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
}
