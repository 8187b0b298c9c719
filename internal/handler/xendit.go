package handler

import (
	"errors"
	"io"
	"net/http"

	"agency-backend/internal/client"
	"agency-backend/internal/service"

	"github.com/labstack/echo/v4"
)

type XenditHandler struct {
	xenditService service.XenditService
}

func NewXenditHandler(xenditService service.XenditService) *XenditHandler {
	return &XenditHandler{
		xenditService: xenditService,
	}
}

func (h *XenditHandler) Callback(c echo.Context) error {
	ctx := c.Request().Context()

	body, err := io.ReadAll(c.Request().Body)
	if err != nil {
		return c.NoContent(http.StatusBadRequest)
	}

	if err := h.xenditService.HandleCallback(ctx, c.Request().Header, body); err != nil {
		if errors.Is(err, client.ErrInvalidCallbackToken) {
			return echo.NewHTTPError(http.StatusUnauthorized, "invalid callback token")
		}
		return err
	}

	return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
}
