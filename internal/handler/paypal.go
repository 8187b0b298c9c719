package handler

import (
	"fmt"
	"io"
	"net/http"

	"agency-backend/internal/model"
	"agency-backend/internal/service"

	"github.com/labstack/echo/v4"
)

type PaypalHandler struct {
	paypalService service.PaypalService
	siteURL       string
}

func NewPaypalHandler(paypalService service.PaypalService, siteURL string) *PaypalHandler {
	return &PaypalHandler{
		paypalService: paypalService,
		siteURL:       siteURL,
	}
}

// HandleReturn is where PayPal redirects the buyer after approval; the
// order is captured synchronously and the buyer sent back to the site.
func (h *PaypalHandler) HandleReturn(c echo.Context) error {
	ctx := c.Request().Context()

	paypalOrderID := c.QueryParam("token")
	if paypalOrderID == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "missing order token")
	}

	order, err := h.paypalService.Capture(ctx, paypalOrderID)
	if err != nil {
		return c.Redirect(http.StatusFound,
			fmt.Sprintf("%s/checkout/failed", h.siteURL))
	}

	target := fmt.Sprintf("%s/checkout/success?order_id=%s", h.siteURL, order.OrderID)
	if order.Status != model.OrderPaid {
		target = fmt.Sprintf("%s/checkout/pending?order_id=%s", h.siteURL, order.OrderID)
	}
	return c.Redirect(http.StatusFound, target)
}

func (h *PaypalHandler) Webhook(c echo.Context) error {
	ctx := c.Request().Context()

	body, err := io.ReadAll(c.Request().Body)
	if err != nil {
		return c.NoContent(http.StatusBadRequest)
	}

	if err := h.paypalService.HandleWebhook(ctx, c.Request().Header, body); err != nil {
		return fmt.Errorf("handle webhook: %w", err)
	}

	return c.NoContent(http.StatusOK)
}
