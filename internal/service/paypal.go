package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"agency-backend/internal/client"
	"agency-backend/internal/dto"
	"agency-backend/internal/model"
	"agency-backend/internal/pricing"
	"agency-backend/internal/repository"

	"gorm.io/gorm"
)

// PaymentInitiator starts a vendor checkout for a freshly created pending
// order and records the vendor identifiers on the row.
type PaymentInitiator interface {
	Initiate(ctx context.Context, order *model.Order) (*dto.CheckoutResponse, error)
}

type PaypalService interface {
	PaymentInitiator
	Capture(ctx context.Context, paypalOrderID string) (*model.Order, error)
	HandleWebhook(ctx context.Context, headers http.Header, body []byte) error
}

type paypalServiceImpl struct {
	db               *gorm.DB
	settings         SettingsService
	orderRepo        repository.OrderRepository
	webhookEventRepo repository.WebhookEventRepository
	serviceBaseURL   string
	siteURL          string
	newClient        func(client.PaypalCredentials) client.PaypalClient
}

func NewPaypalService(
	db *gorm.DB,
	settings SettingsService,
	orderRepo repository.OrderRepository,
	webhookEventRepo repository.WebhookEventRepository,
	serviceBaseURL string,
	siteURL string,
) PaypalService {
	return &paypalServiceImpl{
		db:               db,
		settings:         settings,
		orderRepo:        orderRepo,
		webhookEventRepo: webhookEventRepo,
		serviceBaseURL:   serviceBaseURL,
		siteURL:          siteURL,
		newClient:        client.NewPaypalClient,
	}
}

func (s *paypalServiceImpl) Initiate(ctx context.Context, order *model.Order) (*dto.CheckoutResponse, error) {
	creds, _, err := s.settings.PaypalCredentials(ctx)
	if err != nil {
		return nil, fmt.Errorf("resolve paypal credentials: %w", err)
	}
	paypalClient := s.newClient(creds)

	resp, err := paypalClient.CreateOrder(ctx, &client.PaypalOrderRequest{
		ReferenceID: order.OrderID,
		Amount:      pricing.FormatAmount(order.TotalAmount, order.Currency),
		Currency:    order.Currency,
		Description: fmt.Sprintf("Package %s, %d month(s)", order.PackageSlug, order.DurationMonths),
		ReturnURL:   fmt.Sprintf("%s/api/payments/paypal/return", s.serviceBaseURL),
		CancelURL:   fmt.Sprintf("%s/checkout", s.siteURL),
	})
	if err != nil {
		return nil, fmt.Errorf("paypal api create order: %w", err)
	}

	if err := s.orderRepo.SetProviderResult(ctx, order.OrderID, resp.PaypalOrderID, resp.ApproveURL); err != nil {
		return nil, fmt.Errorf("store paypal order id: %w", err)
	}

	return &dto.CheckoutResponse{
		OrderID:     order.OrderID,
		Provider:    string(model.ProviderPaypal),
		Status:      string(model.OrderPending),
		RedirectURL: resp.ApproveURL,
	}, nil
}

// Capture is the synchronous confirmation path: the buyer approved on
// PayPal and was redirected back with the vendor order id.
func (s *paypalServiceImpl) Capture(ctx context.Context, paypalOrderID string) (*model.Order, error) {
	order, err := s.orderRepo.FindByProviderRef(ctx, model.ProviderPaypal, paypalOrderID)
	if err != nil {
		return nil, fmt.Errorf("find order for paypal id %s: %w", paypalOrderID, err)
	}

	creds, _, err := s.settings.PaypalCredentials(ctx)
	if err != nil {
		return nil, fmt.Errorf("resolve paypal credentials: %w", err)
	}

	resp, err := s.newClient(creds).CaptureOrder(ctx, paypalOrderID)
	if err != nil {
		captureErr := err
		// a redundant capture errors at PayPal when the webhook already
		// settled the order; hand the buyer their paid order instead
		paid, err := s.orderRepo.IsPaid(ctx, order.OrderID)
		if err != nil {
			return nil, fmt.Errorf("check order status: %w", err)
		}
		if paid {
			return s.orderRepo.FindByOrderID(ctx, order.OrderID)
		}
		err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			return s.orderRepo.MarkFailed(ctx, tx, order.OrderID, captureErr.Error(), nil)
		})
		if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("mark order failed: %w", err)
		}
		return nil, fmt.Errorf("paypal api capture order: %w", captureErr)
	}

	if resp.Status != "COMPLETED" {
		return nil, fmt.Errorf("paypal capture not completed: %s", resp.Status)
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		updated, err := s.orderRepo.MarkPaid(ctx, tx, order.OrderID, resp.PayerID, nil)
		if err != nil {
			return err
		}
		order = updated
		return nil
	})
	if err != nil {
		// the webhook may have settled the order first; that is fine
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return s.orderRepo.FindByOrderID(ctx, order.OrderID)
		}
		return nil, fmt.Errorf("mark order paid: %w", err)
	}

	return order, nil
}

func (s *paypalServiceImpl) HandleWebhook(ctx context.Context, headers http.Header, body []byte) error {
	creds, _, err := s.settings.PaypalCredentials(ctx)
	if err != nil {
		return fmt.Errorf("resolve paypal credentials: %w", err)
	}

	if err := s.newClient(creds).VerifyWebhookSignature(ctx, headers, body); err != nil {
		return fmt.Errorf("verify webhook signature: %w", err)
	}

	var event model.PayPalWebhookEvent
	if err := json.Unmarshal(body, &event); err != nil {
		return fmt.Errorf("decode webhook payload: %w", err)
	}

	seen, err := s.webhookEventRepo.Exists(ctx, event.ID)
	if err != nil {
		return fmt.Errorf("check webhook event: %w", err)
	}
	if seen {
		return nil
	}

	switch event.EventType {
	case "PAYMENT.CAPTURE.COMPLETED":
		if err := s.handleCaptureCompleted(ctx, &event, body); err != nil {
			return err
		}
	case "PAYMENT.CAPTURE.DENIED", "PAYMENT.CAPTURE.DECLINED":
		if err := s.handleCaptureFailed(ctx, &event, body); err != nil {
			return err
		}
	}

	return s.webhookEventRepo.MarkProcessed(ctx, model.ProviderPaypal, event.ID, event.EventType)
}

func (s *paypalServiceImpl) handleCaptureCompleted(ctx context.Context, event *model.PayPalWebhookEvent, body []byte) error {
	paypalOrderID := event.Resource.SupplementaryData.RelatedIDs.OrderID
	if paypalOrderID == "" {
		return fmt.Errorf("could not find order_id in webhook payload")
	}

	order, err := s.orderRepo.FindByProviderRef(ctx, model.ProviderPaypal, paypalOrderID)
	if err != nil {
		return fmt.Errorf("find order for paypal id %s: %w", paypalOrderID, err)
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		_, err := s.orderRepo.MarkPaid(ctx, tx, order.OrderID, event.Resource.Payer.PayerID, body)
		return err
	})
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return fmt.Errorf("mark order paid: %w", err)
	}
	return nil
}

func (s *paypalServiceImpl) handleCaptureFailed(ctx context.Context, event *model.PayPalWebhookEvent, body []byte) error {
	paypalOrderID := event.Resource.SupplementaryData.RelatedIDs.OrderID
	if paypalOrderID == "" {
		return fmt.Errorf("could not find order_id in webhook payload")
	}

	order, err := s.orderRepo.FindByProviderRef(ctx, model.ProviderPaypal, paypalOrderID)
	if err != nil {
		return fmt.Errorf("find order for paypal id %s: %w", paypalOrderID, err)
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return s.orderRepo.MarkFailed(ctx, tx, order.OrderID, "paypal capture "+event.EventType, body)
	})
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return fmt.Errorf("mark order failed: %w", err)
	}
	return nil
}
