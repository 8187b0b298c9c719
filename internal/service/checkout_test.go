package service

import (
	"context"
	"errors"
	"testing"

	"agency-backend/internal/config"
	"agency-backend/internal/dto"
	"agency-backend/internal/model"
	"agency-backend/internal/repository"
	"agency-backend/internal/testutil"

	"gorm.io/gorm"
)

// fakeInitiator stands in for a payment vendor during checkout tests.
type fakeInitiator struct {
	err  error
	last *model.Order
}

func (f *fakeInitiator) Initiate(ctx context.Context, order *model.Order) (*dto.CheckoutResponse, error) {
	f.last = order
	if f.err != nil {
		return nil, f.err
	}
	return &dto.CheckoutResponse{
		OrderID:     order.OrderID,
		Provider:    string(order.Provider),
		Status:      string(model.OrderPending),
		RedirectURL: "https://pay.test/redirect",
	}, nil
}

func testConfig() *config.Config {
	return &config.Config{
		Midtrans: config.Midtrans{Environment: "sandbox", ServerKey: "SB-server-key", Enabled: true},
		Paypal:   config.Paypal{Environment: "sandbox", BaseApiURL: "https://api-m.sandbox.paypal.com", ClientID: "pp-id", ClientSecret: "pp-secret", Enabled: true},
		Xendit:   config.Xendit{Environment: "sandbox", BaseApiURL: "https://api.xendit.co", SecretKey: "xnd-dev", CallbackToken: "cb-token", Enabled: true},
	}
}

type checkoutFixture struct {
	db           *gorm.DB
	svc          CheckoutService
	settings     SettingsService
	settingsRepo repository.SettingsRepository
	orderRepo    repository.OrderRepository
	promoRepo    repository.PromoRepository
	initiator    *fakeInitiator
}

func newCheckoutFixture(t *testing.T) *checkoutFixture {
	t.Helper()

	db := testutil.NewDB(t)
	ctx := context.Background()

	catalogRepo := repository.NewCatalogRepository(db)
	if err := catalogRepo.Seed(ctx); err != nil {
		t.Fatalf("seed catalog: %v", err)
	}

	settingsRepo := repository.NewSettingsRepository(db)
	settings := NewSettingsService(testConfig(), settingsRepo, repository.NewAuditRepository(db))

	orderRepo := repository.NewOrderRepository(db)
	promoRepo := repository.NewPromoRepository(db)
	initiator := &fakeInitiator{}

	svc := NewCheckoutService(
		db,
		repository.NewDraftRepository(db),
		orderRepo, catalogRepo, promoRepo,
		settings,
		map[model.PaymentProvider]PaymentInitiator{
			model.ProviderMidtrans: initiator,
		},
	)

	return &checkoutFixture{
		db:           db,
		svc:          svc,
		settings:     settings,
		settingsRepo: settingsRepo,
		orderRepo:    orderRepo,
		promoRepo:    promoRepo,
		initiator:    initiator,
	}
}

func (f *checkoutFixture) saveDraft(t *testing.T, draft *dto.DraftRequest) string {
	t.Helper()
	resp, err := f.svc.SaveDraft(context.Background(), draft)
	if err != nil {
		t.Fatalf("save draft: %v", err)
	}
	return resp.DraftID
}

func TestSaveDraftRoundTrip(t *testing.T) {
	t.Parallel()

	f := newCheckoutFixture(t)
	ctx := context.Background()

	draftID := f.saveDraft(t, &dto.DraftRequest{
		Domain:          "acme.example",
		PackageSlug:     "starter",
		DurationMonths:  6,
		AddonQuantities: map[string]int64{"extra-page": 2},
		AddonToggles:    map[string]bool{"priority-support": true},
		CustomerName:    "Ana",
		CustomerEmail:   "ana@acme.example",
	})
	if draftID == "" {
		t.Fatal("no draft id generated")
	}

	got, err := f.svc.GetDraft(ctx, draftID)
	if err != nil {
		t.Fatalf("get draft: %v", err)
	}
	if got.PackageSlug != "starter" || got.DurationMonths != 6 {
		t.Errorf("draft = %+v", got)
	}
	if got.AddonQuantities["extra-page"] != 2 {
		t.Errorf("addon quantities = %v", got.AddonQuantities)
	}
	if !got.AddonToggles["priority-support"] {
		t.Errorf("addon toggles = %v", got.AddonToggles)
	}

	// patching keeps the same id and overwrites the fields
	f.saveDraft(t, &dto.DraftRequest{
		DraftID:        draftID,
		Domain:         "acme.example",
		PackageSlug:    "growth",
		DurationMonths: 12,
	})
	got, err = f.svc.GetDraft(ctx, draftID)
	if err != nil {
		t.Fatalf("get patched draft: %v", err)
	}
	if got.PackageSlug != "growth" || got.DurationMonths != 12 {
		t.Errorf("patched draft = %+v", got)
	}
}

func TestQuote(t *testing.T) {
	t.Parallel()

	f := newCheckoutFixture(t)
	ctx := context.Background()

	err := f.promoRepo.Upsert(ctx, &model.PromoCode{
		Code: "LAUNCH10", Kind: model.PromoPercent, Value: 10, Active: true,
	})
	if err != nil {
		t.Fatalf("upsert promo: %v", err)
	}

	// starter 12 months: annual 7,500,000 with 20% off = 6,000,000
	// addons: 2 extra pages 300,000 + priority support 500,000
	// promo: 10% off 6,800,000 = 680,000
	draftID := f.saveDraft(t, &dto.DraftRequest{
		PackageSlug:     "starter",
		DurationMonths:  12,
		AddonQuantities: map[string]int64{"extra-page": 2},
		AddonToggles:    map[string]bool{"priority-support": true},
		PromoCode:       "LAUNCH10",
	})

	quote, err := f.svc.Quote(ctx, draftID)
	if err != nil {
		t.Fatalf("quote: %v", err)
	}
	if quote.PackageTotal != 6000000 {
		t.Errorf("package total = %d, want 6000000", quote.PackageTotal)
	}
	if quote.AddonTotal != 800000 {
		t.Errorf("addon total = %d, want 800000", quote.AddonTotal)
	}
	if quote.PromoDiscount != 680000 {
		t.Errorf("promo discount = %d, want 680000", quote.PromoDiscount)
	}
	if quote.Total != 6120000 {
		t.Errorf("total = %d, want 6120000", quote.Total)
	}
	if quote.Display != "6120000" {
		t.Errorf("display = %q, want 6120000", quote.Display)
	}
}

func TestQuoteAddonInBothMaps(t *testing.T) {
	t.Parallel()

	f := newCheckoutFixture(t)

	// the same addon selected as a quantity and as a toggle prices once
	draftID := f.saveDraft(t, &dto.DraftRequest{
		PackageSlug:     "starter",
		DurationMonths:  6,
		AddonQuantities: map[string]int64{"extra-page": 2},
		AddonToggles:    map[string]bool{"extra-page": true},
	})

	quote, err := f.svc.Quote(context.Background(), draftID)
	if err != nil {
		t.Fatalf("quote: %v", err)
	}
	// starter, 6 months: 750,000 x 6 with 10% off = 4,050,000
	if quote.PackageTotal != 4050000 {
		t.Errorf("package total = %d, want 4050000", quote.PackageTotal)
	}
	// quantity wins: 2 extra pages at 150,000
	if quote.AddonTotal != 300000 {
		t.Errorf("addon total = %d, want 300000", quote.AddonTotal)
	}
	if quote.Total != 4350000 {
		t.Errorf("total = %d, want 4350000", quote.Total)
	}
}

func TestQuoteInactivePackage(t *testing.T) {
	t.Parallel()

	f := newCheckoutFixture(t)
	ctx := context.Background()

	err := f.db.Model(&model.Package{}).Where("slug = ?", "starter").Update("active", false).Error
	if err != nil {
		t.Fatalf("deactivate package: %v", err)
	}

	draftID := f.saveDraft(t, &dto.DraftRequest{PackageSlug: "starter", DurationMonths: 6})

	if _, err := f.svc.Quote(ctx, draftID); !errors.Is(err, gorm.ErrRecordNotFound) {
		t.Fatalf("quote err = %v, want ErrRecordNotFound", err)
	}
	if _, err := f.svc.Submit(ctx, &dto.CheckoutRequest{DraftID: draftID, Provider: "midtrans"}); !errors.Is(err, gorm.ErrRecordNotFound) {
		t.Fatalf("submit err = %v, want ErrRecordNotFound", err)
	}
}

func TestQuoteUnsellableDurationShowsDash(t *testing.T) {
	t.Parallel()

	f := newCheckoutFixture(t)

	draftID := f.saveDraft(t, &dto.DraftRequest{
		PackageSlug:    "starter",
		DurationMonths: 2, // no duration row seeded for 2 months
	})

	quote, err := f.svc.Quote(context.Background(), draftID)
	if err != nil {
		t.Fatalf("quote: %v", err)
	}
	if quote.Display != "—" {
		t.Errorf("display = %q, want dash", quote.Display)
	}
	if quote.Total != 0 {
		t.Errorf("total = %d, want 0", quote.Total)
	}
}

func TestQuoteUnknownPromo(t *testing.T) {
	t.Parallel()

	f := newCheckoutFixture(t)

	draftID := f.saveDraft(t, &dto.DraftRequest{
		PackageSlug:    "starter",
		DurationMonths: 6,
		PromoCode:      "NOPE",
	})

	if _, err := f.svc.Quote(context.Background(), draftID); !errors.Is(err, repository.ErrPromoNotFound) {
		t.Fatalf("quote err = %v, want ErrPromoNotFound", err)
	}
}

func TestSubmit(t *testing.T) {
	t.Parallel()

	f := newCheckoutFixture(t)
	ctx := context.Background()

	draftID := f.saveDraft(t, &dto.DraftRequest{
		Domain:         "acme.example",
		TemplateSlug:   "corporate",
		PackageSlug:    "starter",
		DurationMonths: 6,
		CustomerName:   "Ana",
		CustomerEmail:  "ana@acme.example",
	})

	resp, err := f.svc.Submit(ctx, &dto.CheckoutRequest{DraftID: draftID, Provider: "midtrans"})
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	if resp.RedirectURL != "https://pay.test/redirect" {
		t.Errorf("redirect url = %q", resp.RedirectURL)
	}

	if f.initiator.last == nil {
		t.Fatal("initiator was not called")
	}
	// starter, 6 months: 750,000 x 6 with 10% off = 4,050,000
	if f.initiator.last.TotalAmount != 4050000 {
		t.Errorf("order total = %d, want 4050000", f.initiator.last.TotalAmount)
	}
	if f.initiator.last.Environment != model.EnvSandbox {
		t.Errorf("order environment = %s, want sandbox", f.initiator.last.Environment)
	}

	status, err := f.svc.OrderStatus(ctx, resp.OrderID)
	if err != nil {
		t.Fatalf("order status: %v", err)
	}
	if status.Status != string(model.OrderPending) {
		t.Errorf("status = %s, want pending", status.Status)
	}
	if status.Provider != "midtrans" {
		t.Errorf("provider = %s", status.Provider)
	}
}

func TestSubmitRejectsDisabledProvider(t *testing.T) {
	t.Parallel()

	f := newCheckoutFixture(t)
	ctx := context.Background()

	if err := f.settingsRepo.Set(ctx, "midtrans_enabled", "false", "admin-1"); err != nil {
		t.Fatalf("disable provider: %v", err)
	}

	draftID := f.saveDraft(t, &dto.DraftRequest{PackageSlug: "starter", DurationMonths: 6})

	_, err := f.svc.Submit(ctx, &dto.CheckoutRequest{DraftID: draftID, Provider: "midtrans"})
	if !errors.Is(err, ErrProviderDisabled) {
		t.Fatalf("submit err = %v, want ErrProviderDisabled", err)
	}
}

func TestSubmitRejectsUnknownProvider(t *testing.T) {
	t.Parallel()

	f := newCheckoutFixture(t)

	draftID := f.saveDraft(t, &dto.DraftRequest{PackageSlug: "starter", DurationMonths: 6})

	_, err := f.svc.Submit(context.Background(), &dto.CheckoutRequest{DraftID: draftID, Provider: "stripe"})
	if !errors.Is(err, ErrBadProvider) {
		t.Fatalf("submit err = %v, want ErrBadProvider", err)
	}
}

func TestSubmitRejectsIncompleteDraft(t *testing.T) {
	t.Parallel()

	f := newCheckoutFixture(t)

	draftID := f.saveDraft(t, &dto.DraftRequest{PackageSlug: "starter"}) // no duration picked

	_, err := f.svc.Submit(context.Background(), &dto.CheckoutRequest{DraftID: draftID, Provider: "midtrans"})
	if !errors.Is(err, ErrDraftIncomplete) {
		t.Fatalf("submit err = %v, want ErrDraftIncomplete", err)
	}
}

func TestSubmitVendorFailureMarksOrderFailed(t *testing.T) {
	t.Parallel()

	f := newCheckoutFixture(t)
	ctx := context.Background()

	f.initiator.err = errors.New("midtrans rejected the transaction")

	draftID := f.saveDraft(t, &dto.DraftRequest{PackageSlug: "starter", DurationMonths: 6})

	_, err := f.svc.Submit(ctx, &dto.CheckoutRequest{DraftID: draftID, Provider: "midtrans"})
	if err == nil {
		t.Fatal("submit succeeded despite vendor failure")
	}

	if f.initiator.last == nil {
		t.Fatal("initiator was not called")
	}
	order, err := f.orderRepo.FindByOrderID(ctx, f.initiator.last.OrderID)
	if err != nil {
		t.Fatalf("find order: %v", err)
	}
	if order.Status != model.OrderFailed {
		t.Errorf("status = %s, want failed", order.Status)
	}
	if order.FailureReason != "midtrans rejected the transaction" {
		t.Errorf("failure reason = %q", order.FailureReason)
	}
}
