package handler

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"agency-backend/internal/dto"
	"agency-backend/internal/middleware"
	"agency-backend/internal/model"
	"agency-backend/internal/repository"
	"agency-backend/internal/service"

	"github.com/labstack/echo/v4"
)

type AdminHandler struct {
	settingsService service.SettingsService
	orderRepo       repository.OrderRepository
	catalogRepo     repository.CatalogRepository
	auditRepo       repository.AuditRepository
}

func NewAdminHandler(
	settingsService service.SettingsService,
	orderRepo repository.OrderRepository,
	catalogRepo repository.CatalogRepository,
	auditRepo repository.AuditRepository,
) *AdminHandler {
	return &AdminHandler{
		settingsService: settingsService,
		orderRepo:       orderRepo,
		catalogRepo:     catalogRepo,
		auditRepo:       auditRepo,
	}
}

// SettingsAction is the single POST JSON endpoint the admin panels talk to:
// {"action": "get"|"set"|"clear"|"set_enabled", ...}.
func (h *AdminHandler) SettingsAction(c echo.Context) error {
	ctx := c.Request().Context()

	actor, ok := middleware.ActorFrom(c)
	if !ok {
		return echo.NewHTTPError(http.StatusUnauthorized, "no authenticated actor")
	}

	var req dto.SettingsActionRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid req body")
	}

	resp, err := h.settingsService.HandleAction(ctx, actor, &req)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrForbidden):
			return echo.NewHTTPError(http.StatusForbidden, err.Error())
		case errors.Is(err, service.ErrBadAction),
			errors.Is(err, service.ErrBadProvider),
			errors.Is(err, service.ErrBadEnvironment):
			return echo.NewHTTPError(http.StatusBadRequest, err.Error())
		}
		return err
	}

	return c.JSON(http.StatusOK, resp)
}

// UpsertPackage creates or updates a catalog package and its duration rows.
func (h *AdminHandler) UpsertPackage(c echo.Context) error {
	ctx := c.Request().Context()

	actor, ok := middleware.ActorFrom(c)
	if !ok {
		return echo.NewHTTPError(http.StatusUnauthorized, "no authenticated actor")
	}

	var req dto.PackageUpsertRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid req body")
	}
	if req.Slug == "" || req.Name == "" || req.Currency == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "slug, name and currency are required")
	}

	err := h.catalogRepo.UpsertPackage(ctx, &model.Package{
		Slug:          req.Slug,
		Name:          req.Name,
		Description:   req.Description,
		MonthlyPrice:  req.MonthlyPrice,
		AnnualPrice:   req.AnnualPrice,
		OverridePrice: req.OverridePrice,
		Currency:      req.Currency,
		Active:        req.Active,
		SortOrder:     req.SortOrder,
	})
	if err != nil {
		return fmt.Errorf("upsert package: %w", err)
	}

	for _, d := range req.Durations {
		err := h.catalogRepo.UpsertDuration(ctx, &model.PackageDuration{
			PackageSlug:     req.Slug,
			Months:          d.Months,
			DiscountPercent: d.DiscountPercent,
			Active:          d.Active,
			SortOrder:       d.SortOrder,
		})
		if err != nil {
			return fmt.Errorf("upsert duration: %w", err)
		}
	}

	// audit failure never blocks the admin action itself
	_ = h.auditRepo.Append(ctx, &model.AuditLog{
		ActorID: actor.UserID,
		Action:  "catalog.upsert_package",
		Target:  req.Slug,
	})

	return c.JSON(http.StatusOK, map[string]string{"slug": req.Slug})
}

func (h *AdminHandler) ListOrders(c echo.Context) error {
	ctx := c.Request().Context()

	limit, _ := strconv.Atoi(c.QueryParam("limit"))
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	offset, _ := strconv.Atoi(c.QueryParam("offset"))
	if offset < 0 {
		offset = 0
	}

	orders, err := h.orderRepo.List(ctx, limit, offset)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, orders)
}
