package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"

	"agency-backend/internal/client"
	"agency-backend/internal/dto"
	"agency-backend/internal/model"
	"agency-backend/internal/repository"

	"gorm.io/gorm"
)

type XenditService interface {
	PaymentInitiator
	HandleCallback(ctx context.Context, headers http.Header, body []byte) error
}

type xenditServiceImpl struct {
	db               *gorm.DB
	settings         SettingsService
	orderRepo        repository.OrderRepository
	webhookEventRepo repository.WebhookEventRepository
	siteURL          string
	newClient        func(client.XenditCredentials) client.XenditClient
}

func NewXenditService(
	db *gorm.DB,
	settings SettingsService,
	orderRepo repository.OrderRepository,
	webhookEventRepo repository.WebhookEventRepository,
	siteURL string,
) XenditService {
	return &xenditServiceImpl{
		db:               db,
		settings:         settings,
		orderRepo:        orderRepo,
		webhookEventRepo: webhookEventRepo,
		siteURL:          siteURL,
		newClient:        client.NewXenditClient,
	}
}

func (s *xenditServiceImpl) Initiate(ctx context.Context, order *model.Order) (*dto.CheckoutResponse, error) {
	creds, _, err := s.settings.XenditCredentials(ctx)
	if err != nil {
		return nil, fmt.Errorf("resolve xendit credentials: %w", err)
	}

	xc := s.newClient(creds)
	resp, err := xc.CreateInvoice(ctx, &client.XenditInvoiceRequest{
		ExternalID:         order.OrderID,
		Amount:             order.TotalAmount,
		Currency:           order.Currency,
		Description:        fmt.Sprintf("Package %s, %d month(s)", order.PackageSlug, order.DurationMonths),
		PayerEmail:         order.CustomerEmail,
		SuccessRedirectURL: fmt.Sprintf("%s/checkout/success?order_id=%s", s.siteURL, order.OrderID),
		FailureRedirectURL: fmt.Sprintf("%s/checkout/failed?order_id=%s", s.siteURL, order.OrderID),
	})
	if err != nil {
		return nil, fmt.Errorf("xendit api create invoice: %w", err)
	}

	if err := s.orderRepo.SetProviderResult(ctx, order.OrderID, resp.InvoiceID, resp.InvoiceURL); err != nil {
		// the invoice is live at Xendit but unreachable from any order row;
		// expire it so the buyer cannot pay an orphan
		if expErr := xc.ExpireInvoice(ctx, resp.InvoiceID); expErr != nil {
			log.Printf("expire orphaned xendit invoice %s: %v", resp.InvoiceID, expErr)
		}
		return nil, fmt.Errorf("store invoice id: %w", err)
	}

	return &dto.CheckoutResponse{
		OrderID:     order.OrderID,
		Provider:    string(model.ProviderXendit),
		Status:      string(model.OrderPending),
		RedirectURL: resp.InvoiceURL,
	}, nil
}

func (s *xenditServiceImpl) HandleCallback(ctx context.Context, headers http.Header, body []byte) error {
	creds, _, err := s.settings.XenditCredentials(ctx)
	if err != nil {
		return fmt.Errorf("resolve xendit credentials: %w", err)
	}

	if err := s.newClient(creds).VerifyCallbackToken(headers); err != nil {
		return fmt.Errorf("verify callback token: %w", err)
	}

	var callback model.XenditInvoiceCallback
	if err := json.Unmarshal(body, &callback); err != nil {
		return fmt.Errorf("decode callback payload: %w", err)
	}
	if callback.ExternalID == "" {
		return fmt.Errorf("missing external_id in xendit callback")
	}

	eventID := fmt.Sprintf("xendit:%s:%s", callback.ID, callback.Status)
	seen, err := s.webhookEventRepo.Exists(ctx, eventID)
	if err != nil {
		return fmt.Errorf("check webhook event: %w", err)
	}
	if seen {
		return nil
	}

	switch callback.Status {
	case "PAID", "SETTLED":
		err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			_, err := s.orderRepo.MarkPaid(ctx, tx, callback.ExternalID, callback.PaymentChannel, body)
			return err
		})
		if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("mark order paid: %w", err)
		}

	case "EXPIRED":
		err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			return s.orderRepo.MarkFailed(ctx, tx, callback.ExternalID, "xendit invoice expired", body)
		})
		if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("mark order failed: %w", err)
		}
	}

	return s.webhookEventRepo.MarkProcessed(ctx, model.ProviderXendit, eventID, callback.Status)
}
