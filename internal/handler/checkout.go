package handler

import (
	"errors"
	"net/http"

	"agency-backend/internal/dto"
	"agency-backend/internal/repository"
	"agency-backend/internal/service"

	"github.com/labstack/echo/v4"
	"gorm.io/gorm"
)

type CheckoutHandler struct {
	checkoutService service.CheckoutService
}

func NewCheckoutHandler(checkoutService service.CheckoutService) *CheckoutHandler {
	return &CheckoutHandler{
		checkoutService: checkoutService,
	}
}

func (h *CheckoutHandler) SaveDraft(c echo.Context) error {
	ctx := c.Request().Context()

	var req dto.DraftRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid req body")
	}

	resp, err := h.checkoutService.SaveDraft(ctx, &req)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, resp)
}

func (h *CheckoutHandler) GetDraft(c echo.Context) error {
	ctx := c.Request().Context()

	draftID := c.Param("id")
	draft, err := h.checkoutService.GetDraft(ctx, draftID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "draft not found")
		}
		return err
	}

	return c.JSON(http.StatusOK, draft)
}

func (h *CheckoutHandler) Quote(c echo.Context) error {
	ctx := c.Request().Context()

	draftID := c.Param("id")
	quote, err := h.checkoutService.Quote(ctx, draftID)
	if err != nil {
		switch {
		case errors.Is(err, gorm.ErrRecordNotFound):
			return echo.NewHTTPError(http.StatusNotFound, "draft not found")
		case errors.Is(err, repository.ErrPromoNotFound):
			return echo.NewHTTPError(http.StatusBadRequest, "promo code not valid")
		case errors.Is(err, service.ErrDraftIncomplete):
			return echo.NewHTTPError(http.StatusBadRequest, err.Error())
		}
		return err
	}

	return c.JSON(http.StatusOK, quote)
}

func (h *CheckoutHandler) Submit(c echo.Context) error {
	ctx := c.Request().Context()

	var req dto.CheckoutRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid req body")
	}

	resp, err := h.checkoutService.Submit(ctx, &req)
	if err != nil {
		switch {
		case errors.Is(err, gorm.ErrRecordNotFound):
			return echo.NewHTTPError(http.StatusNotFound, "draft not found")
		case errors.Is(err, service.ErrBadProvider),
			errors.Is(err, service.ErrDraftIncomplete),
			errors.Is(err, repository.ErrPromoNotFound):
			return echo.NewHTTPError(http.StatusBadRequest, err.Error())
		case errors.Is(err, service.ErrProviderDisabled):
			return echo.NewHTTPError(http.StatusConflict, err.Error())
		}
		// vendor errors surface close to verbatim for the checkout UI
		return echo.NewHTTPError(http.StatusBadGateway, err.Error())
	}

	return c.JSON(http.StatusOK, resp)
}

func (h *CheckoutHandler) OrderStatus(c echo.Context) error {
	ctx := c.Request().Context()

	orderID := c.Param("id")
	status, err := h.checkoutService.OrderStatus(ctx, orderID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "order not found")
		}
		return err
	}

	return c.JSON(http.StatusOK, status)
}
