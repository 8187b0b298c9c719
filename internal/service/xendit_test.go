package service

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"testing"

	"agency-backend/internal/client"
	"agency-backend/internal/model"
	"agency-backend/internal/repository"
	"agency-backend/internal/testutil"

	"gorm.io/gorm"
)

type fakeXenditClient struct {
	invoiceResp *client.XenditInvoiceResponse
	invoiceErr  error
	token       string

	invoiceReq *client.XenditInvoiceRequest
	expired    []string
}

func (f *fakeXenditClient) CreateInvoice(ctx context.Context, req *client.XenditInvoiceRequest) (*client.XenditInvoiceResponse, error) {
	f.invoiceReq = req
	return f.invoiceResp, f.invoiceErr
}

func (f *fakeXenditClient) ExpireInvoice(ctx context.Context, invoiceID string) error {
	f.expired = append(f.expired, invoiceID)
	return nil
}

func (f *fakeXenditClient) VerifyCallbackToken(headers http.Header) error {
	if headers.Get("X-Callback-Token") != f.token {
		return client.ErrInvalidCallbackToken
	}
	return nil
}

type xenditFixture struct {
	db        *gorm.DB
	svc       XenditService
	orderRepo repository.OrderRepository
	vendor    *fakeXenditClient
}

func newXenditFixture(t *testing.T) *xenditFixture {
	t.Helper()

	db := testutil.NewDB(t)
	settings := NewSettingsService(testConfig(), repository.NewSettingsRepository(db), repository.NewAuditRepository(db))
	orderRepo := repository.NewOrderRepository(db)

	vendor := &fakeXenditClient{token: "cb-token"}
	svc := NewXenditService(db, settings, orderRepo, repository.NewWebhookEventRepository(db), "https://acme.example").(*xenditServiceImpl)
	svc.newClient = func(client.XenditCredentials) client.XenditClient { return vendor }

	return &xenditFixture{db: db, svc: svc, orderRepo: orderRepo, vendor: vendor}
}

func callbackHeaders(token string) http.Header {
	h := http.Header{}
	h.Set("X-Callback-Token", token)
	return h
}

func TestXenditInitiate(t *testing.T) {
	t.Parallel()

	f := newXenditFixture(t)
	ctx := context.Background()

	order := seedPendingOrder(t, f.db, f.orderRepo, "ord-x1", model.ProviderXendit)
	f.vendor.invoiceResp = &client.XenditInvoiceResponse{
		InvoiceID:  "inv-1",
		InvoiceURL: "https://checkout.xendit.co/web/inv-1",
		Status:     "PENDING",
	}

	resp, err := f.svc.Initiate(ctx, order)
	if err != nil {
		t.Fatalf("initiate: %v", err)
	}
	if resp.RedirectURL != "https://checkout.xendit.co/web/inv-1" {
		t.Errorf("redirect url = %q", resp.RedirectURL)
	}

	if f.vendor.invoiceReq.ExternalID != "ord-x1" {
		t.Errorf("external id = %q, want ord-x1", f.vendor.invoiceReq.ExternalID)
	}
	if f.vendor.invoiceReq.Amount != 4050000 {
		t.Errorf("amount = %d, want 4050000", f.vendor.invoiceReq.Amount)
	}
	if !strings.Contains(f.vendor.invoiceReq.SuccessRedirectURL, "order_id=ord-x1") {
		t.Errorf("success redirect = %q", f.vendor.invoiceReq.SuccessRedirectURL)
	}

	stored, err := f.orderRepo.FindByProviderRef(ctx, model.ProviderXendit, "inv-1")
	if err != nil {
		t.Fatalf("find by provider ref: %v", err)
	}
	if stored.OrderID != "ord-x1" {
		t.Errorf("order id = %s", stored.OrderID)
	}
}

func TestXenditInitiateExpiresOrphanedInvoice(t *testing.T) {
	t.Parallel()

	f := newXenditFixture(t)

	f.vendor.invoiceResp = &client.XenditInvoiceResponse{
		InvoiceID:  "inv-orphan",
		InvoiceURL: "https://checkout.xendit.co/web/inv-orphan",
		Status:     "PENDING",
	}

	// the order row was never persisted, so storing the invoice id fails
	// and the freshly created invoice must be expired at the vendor
	order := &model.Order{OrderID: "ord-missing", TotalAmount: 100000, Currency: "IDR", Provider: model.ProviderXendit}
	if _, err := f.svc.Initiate(context.Background(), order); err == nil {
		t.Fatal("initiate succeeded for an unknown order")
	}

	if len(f.vendor.expired) != 1 || f.vendor.expired[0] != "inv-orphan" {
		t.Errorf("expired invoices = %v, want [inv-orphan]", f.vendor.expired)
	}
}

func TestXenditCallbackPaid(t *testing.T) {
	t.Parallel()

	f := newXenditFixture(t)
	ctx := context.Background()

	seedPendingOrder(t, f.db, f.orderRepo, "ord-x2", model.ProviderXendit)

	body := []byte(`{"id":"inv-2","external_id":"ord-x2","status":"PAID","payment_channel":"QRIS"}`)
	if err := f.svc.HandleCallback(ctx, callbackHeaders("cb-token"), body); err != nil {
		t.Fatalf("handle callback: %v", err)
	}

	order, err := f.orderRepo.FindByOrderID(ctx, "ord-x2")
	if err != nil {
		t.Fatalf("find order: %v", err)
	}
	if order.Status != model.OrderPaid {
		t.Errorf("status = %s, want paid", order.Status)
	}
	if order.PayerRef != "QRIS" {
		t.Errorf("payer ref = %q, want QRIS", order.PayerRef)
	}

	// redelivery is a no-op
	if err := f.svc.HandleCallback(ctx, callbackHeaders("cb-token"), body); err != nil {
		t.Fatalf("redelivered callback: %v", err)
	}

	// a later EXPIRED callback must not downgrade the paid order
	expired := []byte(`{"id":"inv-2","external_id":"ord-x2","status":"EXPIRED"}`)
	if err := f.svc.HandleCallback(ctx, callbackHeaders("cb-token"), expired); err != nil {
		t.Fatalf("expired callback: %v", err)
	}
	order, err = f.orderRepo.FindByOrderID(ctx, "ord-x2")
	if err != nil {
		t.Fatalf("find order: %v", err)
	}
	if order.Status != model.OrderPaid {
		t.Errorf("status = %s after late expiry, want paid", order.Status)
	}
}

func TestXenditCallbackExpired(t *testing.T) {
	t.Parallel()

	f := newXenditFixture(t)
	ctx := context.Background()

	seedPendingOrder(t, f.db, f.orderRepo, "ord-x3", model.ProviderXendit)

	body := []byte(`{"id":"inv-3","external_id":"ord-x3","status":"EXPIRED"}`)
	if err := f.svc.HandleCallback(ctx, callbackHeaders("cb-token"), body); err != nil {
		t.Fatalf("handle callback: %v", err)
	}

	order, err := f.orderRepo.FindByOrderID(ctx, "ord-x3")
	if err != nil {
		t.Fatalf("find order: %v", err)
	}
	if order.Status != model.OrderFailed {
		t.Errorf("status = %s, want failed", order.Status)
	}
}

func TestXenditCallbackRejectsBadToken(t *testing.T) {
	t.Parallel()

	f := newXenditFixture(t)
	ctx := context.Background()

	seedPendingOrder(t, f.db, f.orderRepo, "ord-x4", model.ProviderXendit)

	body := []byte(`{"id":"inv-4","external_id":"ord-x4","status":"PAID"}`)
	err := f.svc.HandleCallback(ctx, callbackHeaders("wrong"), body)
	if !errors.Is(err, client.ErrInvalidCallbackToken) {
		t.Fatalf("callback err = %v, want ErrInvalidCallbackToken", err)
	}

	order, err := f.orderRepo.FindByOrderID(ctx, "ord-x4")
	if err != nil {
		t.Fatalf("find order: %v", err)
	}
	if order.Status != model.OrderPending {
		t.Errorf("status = %s, want pending", order.Status)
	}
}

func TestXenditCallbackRejectsMissingExternalID(t *testing.T) {
	t.Parallel()

	f := newXenditFixture(t)

	body := []byte(`{"id":"inv-5","status":"PAID"}`)
	if err := f.svc.HandleCallback(context.Background(), callbackHeaders("cb-token"), body); err == nil {
		t.Fatal("callback without external_id accepted")
	}
}
