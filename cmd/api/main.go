package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"agency-backend/internal/client"
	"agency-backend/internal/config"
	"agency-backend/internal/model"
	"agency-backend/internal/repository"
	"agency-backend/internal/server"
	"agency-backend/internal/service"

	"github.com/caarlos0/env/v10"
	"github.com/joho/godotenv"
)

func main() {
	// load .env into os.Environ
	if err := godotenv.Load(); err != nil {
		fmt.Println("No .env file found (ok in prod)")
	}

	cfg := &config.Config{}
	if err := env.Parse(cfg); err != nil {
		fmt.Printf("Failed to parse config: %v\n", err)
		os.Exit(1)
	}

	db, err := client.InitDB(cfg.Database)
	if err != nil {
		log.Fatal("init database: ", err)
	}

	orderRepo := repository.NewOrderRepository(db)
	draftRepo := repository.NewDraftRepository(db)
	catalogRepo := repository.NewCatalogRepository(db)
	promoRepo := repository.NewPromoRepository(db)
	settingsRepo := repository.NewSettingsRepository(db)
	webhookEventRepo := repository.NewWebhookEventRepository(db)
	auditRepo := repository.NewAuditRepository(db)
	userRoleRepo := repository.NewUserRoleRepository(db)

	if err := catalogRepo.Seed(context.Background()); err != nil {
		log.Fatal("seed catalog: ", err)
	}

	settingsService := service.NewSettingsService(cfg, settingsRepo, auditRepo)

	paypalService := service.NewPaypalService(
		db, settingsService,
		orderRepo, webhookEventRepo,
		cfg.BaseURL, cfg.SiteURL,
	)
	midtransService := service.NewMidtransService(
		db, settingsService,
		orderRepo, webhookEventRepo,
	)
	xenditService := service.NewXenditService(
		db, settingsService,
		orderRepo, webhookEventRepo,
		cfg.SiteURL,
	)

	checkoutService := service.NewCheckoutService(
		db,
		draftRepo, orderRepo, catalogRepo, promoRepo,
		settingsService,
		map[model.PaymentProvider]service.PaymentInitiator{
			model.ProviderMidtrans: midtransService,
			model.ProviderPaypal:   paypalService,
			model.ProviderXendit:   xenditService,
		},
	)
	catalogService := service.NewCatalogService(catalogRepo)
	seoService := service.NewSEOService(settingsRepo, catalogRepo, cfg.SiteURL)

	serverAddr := cfg.HTTP.Host + ":" + cfg.HTTP.Port

	// Init HTTP server
	srv := server.NewServer(server.Deps{
		CheckoutService: checkoutService,
		PaypalService:   paypalService,
		MidtransService: midtransService,
		XenditService:   xenditService,
		CatalogService:  catalogService,
		SettingsService: settingsService,
		SEOService:      seoService,
		OrderRepo:       orderRepo,
		CatalogRepo:     catalogRepo,
		AuditRepo:       auditRepo,
		UserRoleRepo:    userRoleRepo,
		JWTSecret:       cfg.JWTSecret,
		SiteURL:         cfg.SiteURL,
	})

	log.Println("Starting HTTP server on", serverAddr)
	go func() {
		if err := srv.Start(serverAddr); err != nil && err != http.ErrServerClosed {
			log.Fatal("HTTP server error")
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGTERM, syscall.SIGINT)

	<-sigChan
	log.Println("Signal received, starting graceful shutdown...")

	_, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(); err != nil {
		log.Fatal("HTTP server shutdown error")
	}
}
