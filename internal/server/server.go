package server

import (
	"agency-backend/internal/handler"
	"agency-backend/internal/middleware"
	"agency-backend/internal/repository"
	"agency-backend/internal/service"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
)

type Server struct {
	echo            *echo.Echo
	checkoutHandler *handler.CheckoutHandler
	paypalHandler   *handler.PaypalHandler
	midtransHandler *handler.MidtransHandler
	xenditHandler   *handler.XenditHandler
	publicHandler   *handler.PublicHandler
	adminHandler    *handler.AdminHandler
	adminAuth       echo.MiddlewareFunc
}

type Deps struct {
	CheckoutService service.CheckoutService
	PaypalService   service.PaypalService
	MidtransService service.MidtransService
	XenditService   service.XenditService
	CatalogService  service.CatalogService
	SettingsService service.SettingsService
	SEOService      service.SEOService
	OrderRepo       repository.OrderRepository
	CatalogRepo     repository.CatalogRepository
	AuditRepo       repository.AuditRepository
	UserRoleRepo    repository.UserRoleRepository
	JWTSecret       string
	SiteURL         string
}

func NewServer(deps Deps) *Server {
	e := echo.New()

	e.Use(echomw.RequestLogger())
	e.Use(echomw.Recover())
	e.Use(echomw.CORS())

	s := &Server{
		echo:            e,
		checkoutHandler: handler.NewCheckoutHandler(deps.CheckoutService),
		paypalHandler:   handler.NewPaypalHandler(deps.PaypalService, deps.SiteURL),
		midtransHandler: handler.NewMidtransHandler(deps.MidtransService),
		xenditHandler:   handler.NewXenditHandler(deps.XenditService),
		publicHandler:   handler.NewPublicHandler(deps.CatalogService, deps.SettingsService, deps.SEOService),
		adminHandler:    handler.NewAdminHandler(deps.SettingsService, deps.OrderRepo, deps.CatalogRepo, deps.AuditRepo),
		adminAuth:       middleware.AdminAuth(deps.JWTSecret, deps.UserRoleRepo),
	}

	s.setupRoutes()
	return s
}

func (s *Server) setupRoutes() {
	// -------- public content --------
	s.echo.GET("/robots.txt", s.publicHandler.Robots)
	s.echo.GET("/sitemap.xml", s.publicHandler.Sitemap)
	s.echo.GET("/jsonld.json", s.publicHandler.JSONLD)
	s.echo.GET("/google-site-verification.txt", s.publicHandler.GSCVerification)

	api := s.echo.Group("/api")

	api.GET("/health", func(c echo.Context) error {
		return c.JSON(200, map[string]string{"status": "ok"})
	})

	// -------- public settings readers --------
	api.GET("/packages", s.publicHandler.Packages)
	api.GET("/addons", s.publicHandler.Addons)
	api.GET("/templates", s.publicHandler.Templates)
	api.GET("/providers", s.publicHandler.Providers)
	api.GET("/settings", s.publicHandler.Settings)

	// -------- checkout --------
	checkout := api.Group("/checkout")
	checkout.POST("/drafts", s.checkoutHandler.SaveDraft)
	checkout.GET("/drafts/:id", s.checkoutHandler.GetDraft)
	checkout.GET("/drafts/:id/quote", s.checkoutHandler.Quote)
	checkout.POST("/submit", s.checkoutHandler.Submit)
	checkout.GET("/orders/:id", s.checkoutHandler.OrderStatus)

	// -------- payment webhooks / callbacks --------
	payments := api.Group("/payments")
	payments.GET("/paypal/return", s.paypalHandler.HandleReturn)
	payments.POST("/paypal/webhook", s.paypalHandler.Webhook)
	payments.POST("/midtrans/notification", s.midtransHandler.Notification)
	payments.POST("/xendit/callback", s.xenditHandler.Callback)

	// -------- admin --------
	admin := api.Group("/admin", s.adminAuth)
	admin.POST("/settings", s.adminHandler.SettingsAction)
	admin.POST("/packages", s.adminHandler.UpsertPackage)
	admin.GET("/orders", s.adminHandler.ListOrders)
}

func (s *Server) Start(address string) error {
	return s.echo.Start(address)
}

func (s *Server) Shutdown() error {
	return s.echo.Close()
}
