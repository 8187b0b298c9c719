package handler

import (
	"errors"
	"net/http"

	"agency-backend/internal/repository"
	"agency-backend/internal/service"

	"github.com/labstack/echo/v4"
)

// PublicHandler serves the unauthenticated endpoints: the catalog readers
// for the checkout steps and the SEO/content endpoints.
type PublicHandler struct {
	catalogService  service.CatalogService
	settingsService service.SettingsService
	seoService      service.SEOService
}

func NewPublicHandler(
	catalogService service.CatalogService,
	settingsService service.SettingsService,
	seoService service.SEOService,
) *PublicHandler {
	return &PublicHandler{
		catalogService:  catalogService,
		settingsService: settingsService,
		seoService:      seoService,
	}
}

func (h *PublicHandler) Packages(c echo.Context) error {
	views, err := h.catalogService.Packages(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, views)
}

func (h *PublicHandler) Addons(c echo.Context) error {
	views, err := h.catalogService.Addons(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, views)
}

func (h *PublicHandler) Templates(c echo.Context) error {
	views, err := h.catalogService.Templates(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, views)
}

func (h *PublicHandler) Providers(c echo.Context) error {
	views, err := h.settingsService.ProviderStates(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, views)
}

func (h *PublicHandler) Settings(c echo.Context) error {
	settings, err := h.settingsService.PublicSettings(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, settings)
}

func (h *PublicHandler) Robots(c echo.Context) error {
	body, err := h.seoService.Robots(c.Request().Context())
	if err != nil {
		return err
	}
	return c.String(http.StatusOK, body)
}

func (h *PublicHandler) Sitemap(c echo.Context) error {
	body, err := h.seoService.Sitemap(c.Request().Context())
	if err != nil {
		return err
	}
	return c.Blob(http.StatusOK, "application/xml", []byte(body))
}

func (h *PublicHandler) JSONLD(c echo.Context) error {
	ld, err := h.seoService.JSONLD(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, ld)
}

func (h *PublicHandler) GSCVerification(c echo.Context) error {
	body, err := h.seoService.GSCVerification(c.Request().Context())
	if err != nil {
		if errors.Is(err, repository.ErrSettingNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "verification not configured")
		}
		return err
	}
	return c.String(http.StatusOK, body)
}
