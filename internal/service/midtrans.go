package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"agency-backend/internal/client"
	"agency-backend/internal/dto"
	"agency-backend/internal/model"
	"agency-backend/internal/repository"

	"gorm.io/gorm"
)

type MidtransService interface {
	PaymentInitiator
	HandleNotification(ctx context.Context, body []byte) error
}

type midtransServiceImpl struct {
	db               *gorm.DB
	settings         SettingsService
	orderRepo        repository.OrderRepository
	webhookEventRepo repository.WebhookEventRepository
	newClient        func(client.MidtransCredentials) client.MidtransClient
}

func NewMidtransService(
	db *gorm.DB,
	settings SettingsService,
	orderRepo repository.OrderRepository,
	webhookEventRepo repository.WebhookEventRepository,
) MidtransService {
	return &midtransServiceImpl{
		db:               db,
		settings:         settings,
		orderRepo:        orderRepo,
		webhookEventRepo: webhookEventRepo,
		newClient:        client.NewMidtransClient,
	}
}

func (s *midtransServiceImpl) Initiate(ctx context.Context, order *model.Order) (*dto.CheckoutResponse, error) {
	creds, _, err := s.settings.MidtransCredentials(ctx)
	if err != nil {
		return nil, fmt.Errorf("resolve midtrans credentials: %w", err)
	}

	resp, err := s.newClient(creds).CreateSnapTransaction(&client.MidtransSnapRequest{
		OrderID:       order.OrderID,
		GrossAmount:   order.TotalAmount,
		CustomerName:  order.CustomerName,
		CustomerEmail: order.CustomerEmail,
		ItemName:      fmt.Sprintf("Package %s, %d month(s)", order.PackageSlug, order.DurationMonths),
	})
	if err != nil {
		return nil, fmt.Errorf("midtrans create snap transaction: %w", err)
	}

	if err := s.orderRepo.SetProviderResult(ctx, order.OrderID, resp.Token, resp.RedirectURL); err != nil {
		return nil, fmt.Errorf("store snap token: %w", err)
	}

	return &dto.CheckoutResponse{
		OrderID:     order.OrderID,
		Provider:    string(model.ProviderMidtrans),
		Status:      string(model.OrderPending),
		RedirectURL: resp.RedirectURL,
		SnapToken:   resp.Token,
	}, nil
}

// midtransNotification is the subset of the notification body needed to
// identify the transaction. The status used for the order is never taken
// from here; it comes from re-checking the transaction with the Core API.
type midtransNotification struct {
	OrderID           string `json:"order_id"`
	TransactionID     string `json:"transaction_id"`
	TransactionStatus string `json:"transaction_status"`
}

func (s *midtransServiceImpl) HandleNotification(ctx context.Context, body []byte) error {
	var notif midtransNotification
	if err := json.Unmarshal(body, &notif); err != nil {
		return fmt.Errorf("decode midtrans notification: %w", err)
	}
	if notif.OrderID == "" {
		return fmt.Errorf("missing order_id in midtrans notification")
	}

	// Midtrans has no event id; the transaction id plus reported status is
	// stable across redeliveries of the same transition
	eventID := fmt.Sprintf("midtrans:%s:%s", notif.TransactionID, notif.TransactionStatus)
	seen, err := s.webhookEventRepo.Exists(ctx, eventID)
	if err != nil {
		return fmt.Errorf("check webhook event: %w", err)
	}
	if seen {
		return nil
	}

	creds, _, err := s.settings.MidtransCredentials(ctx)
	if err != nil {
		return fmt.Errorf("resolve midtrans credentials: %w", err)
	}

	apiResp, err := s.newClient(creds).CheckTransaction(notif.OrderID)
	if err != nil {
		return fmt.Errorf("verify transaction with midtrans: %w", err)
	}

	switch apiResp.TransactionStatus {
	case "settlement", "capture":
		if apiResp.FraudStatus == "deny" {
			break
		}
		err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			_, err := s.orderRepo.MarkPaid(ctx, tx, apiResp.OrderID, apiResp.TransactionID, body)
			return err
		})
		if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("mark order paid: %w", err)
		}

	case "deny", "cancel", "expire", "failure":
		err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			return s.orderRepo.MarkFailed(ctx, tx, apiResp.OrderID, "midtrans status "+apiResp.TransactionStatus, body)
		})
		if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("mark order failed: %w", err)
		}
	}
	// pending and authorize are not terminal, nothing to record on the order

	return s.webhookEventRepo.MarkProcessed(ctx, model.ProviderMidtrans, eventID, apiResp.TransactionStatus)
}
