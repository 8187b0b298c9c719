package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"agency-backend/internal/dto"
	"agency-backend/internal/model"
	"agency-backend/internal/pricing"
	"agency-backend/internal/repository"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

var (
	ErrProviderDisabled = errors.New("payment provider is disabled")
	ErrDraftIncomplete  = errors.New("draft is missing package or duration")
)

type CheckoutService interface {
	SaveDraft(ctx context.Context, req *dto.DraftRequest) (*dto.DraftResponse, error)
	GetDraft(ctx context.Context, draftID string) (*dto.DraftRequest, error)
	Quote(ctx context.Context, draftID string) (*dto.QuoteResponse, error)
	Submit(ctx context.Context, req *dto.CheckoutRequest) (*dto.CheckoutResponse, error)
	OrderStatus(ctx context.Context, orderID string) (*dto.OrderStatusResponse, error)
}

type checkoutServiceImpl struct {
	db          *gorm.DB
	draftRepo   repository.DraftRepository
	orderRepo   repository.OrderRepository
	catalogRepo repository.CatalogRepository
	promoRepo   repository.PromoRepository
	settings    SettingsService
	initiators  map[model.PaymentProvider]PaymentInitiator
}

func NewCheckoutService(
	db *gorm.DB,
	draftRepo repository.DraftRepository,
	orderRepo repository.OrderRepository,
	catalogRepo repository.CatalogRepository,
	promoRepo repository.PromoRepository,
	settings SettingsService,
	initiators map[model.PaymentProvider]PaymentInitiator,
) CheckoutService {
	return &checkoutServiceImpl{
		db:          db,
		draftRepo:   draftRepo,
		orderRepo:   orderRepo,
		catalogRepo: catalogRepo,
		promoRepo:   promoRepo,
		settings:    settings,
		initiators:  initiators,
	}
}

func (s *checkoutServiceImpl) SaveDraft(ctx context.Context, req *dto.DraftRequest) (*dto.DraftResponse, error) {
	draftID := req.DraftID
	if draftID == "" {
		draftID = uuid.NewString()
	}

	quantities, err := json.Marshal(req.AddonQuantities)
	if err != nil {
		return nil, fmt.Errorf("marshal addon quantities: %w", err)
	}
	toggles, err := json.Marshal(req.AddonToggles)
	if err != nil {
		return nil, fmt.Errorf("marshal addon toggles: %w", err)
	}

	err = s.draftRepo.Upsert(ctx, &model.CheckoutDraft{
		DraftID:         draftID,
		Domain:          req.Domain,
		TemplateSlug:    req.TemplateSlug,
		PackageSlug:     req.PackageSlug,
		DurationMonths:  req.DurationMonths,
		AddonQuantities: datatypes.JSON(quantities),
		AddonToggles:    datatypes.JSON(toggles),
		CustomerName:    req.CustomerName,
		CustomerEmail:   req.CustomerEmail,
		CustomerPhone:   req.CustomerPhone,
		PromoCode:       req.PromoCode,
	})
	if err != nil {
		return nil, fmt.Errorf("save draft: %w", err)
	}

	return &dto.DraftResponse{DraftID: draftID}, nil
}

func (s *checkoutServiceImpl) GetDraft(ctx context.Context, draftID string) (*dto.DraftRequest, error) {
	draft, err := s.draftRepo.Get(ctx, draftID)
	if err != nil {
		return nil, fmt.Errorf("get draft: %w", err)
	}

	req := &dto.DraftRequest{
		DraftID:        draft.DraftID,
		Domain:         draft.Domain,
		TemplateSlug:   draft.TemplateSlug,
		PackageSlug:    draft.PackageSlug,
		DurationMonths: draft.DurationMonths,
		CustomerName:   draft.CustomerName,
		CustomerEmail:  draft.CustomerEmail,
		CustomerPhone:  draft.CustomerPhone,
		PromoCode:      draft.PromoCode,
	}
	if len(draft.AddonQuantities) > 0 {
		if err := json.Unmarshal(draft.AddonQuantities, &req.AddonQuantities); err != nil {
			return nil, fmt.Errorf("unmarshal addon quantities: %w", err)
		}
	}
	if len(draft.AddonToggles) > 0 {
		if err := json.Unmarshal(draft.AddonToggles, &req.AddonToggles); err != nil {
			return nil, fmt.Errorf("unmarshal addon toggles: %w", err)
		}
	}

	return req, nil
}

func (s *checkoutServiceImpl) Quote(ctx context.Context, draftID string) (*dto.QuoteResponse, error) {
	draft, err := s.GetDraft(ctx, draftID)
	if err != nil {
		return nil, err
	}

	quote, currency, err := s.buildQuote(ctx, draft)
	if errors.Is(err, pricing.ErrNoDuration) {
		// no price for the selected duration; the wizard renders a dash
		return &dto.QuoteResponse{Currency: currency, Display: "—"}, nil
	}
	if err != nil {
		return nil, err
	}

	return &dto.QuoteResponse{
		PackageTotal:  quote.PackageTotal,
		AddonTotal:    quote.AddonTotal,
		Subtotal:      quote.Subtotal,
		PromoDiscount: quote.PromoDiscount,
		Total:         quote.Total,
		Currency:      quote.Currency,
		Display:       pricing.FormatAmount(quote.Total, quote.Currency),
	}, nil
}

func (s *checkoutServiceImpl) buildQuote(ctx context.Context, draft *dto.DraftRequest) (pricing.Quote, string, error) {
	if draft.PackageSlug == "" {
		return pricing.Quote{}, "", ErrDraftIncomplete
	}

	pkg, err := s.catalogRepo.FindPackage(ctx, draft.PackageSlug)
	if err != nil {
		return pricing.Quote{}, "", fmt.Errorf("find package: %w", err)
	}

	durations, err := s.catalogRepo.DurationsFor(ctx, pkg.Slug)
	if err != nil {
		return pricing.Quote{}, "", fmt.Errorf("get durations: %w", err)
	}
	discounts := make(map[int]int, len(durations))
	for _, d := range durations {
		discounts[d.Months] = d.DiscountPercent
	}

	addonLines, err := s.addonLines(ctx, draft)
	if err != nil {
		return pricing.Quote{}, pkg.Currency, err
	}

	var promo *pricing.Promo
	if draft.PromoCode != "" {
		p, err := s.promoRepo.FindActive(ctx, draft.PromoCode, time.Now())
		if err != nil {
			return pricing.Quote{}, pkg.Currency, err
		}
		promo = &pricing.Promo{Kind: pricing.PromoKind(p.Kind), Value: p.Value}
	}

	quote, err := pricing.Compute(pricing.QuoteInput{
		Package: pricing.PackagePricing{
			MonthlyPrice:  pkg.MonthlyPrice,
			AnnualPrice:   pkg.AnnualPrice,
			OverridePrice: pkg.OverridePrice,
			Currency:      pkg.Currency,
		},
		Months:    draft.DurationMonths,
		Discounts: discounts,
		Addons:    addonLines,
		Promo:     promo,
	})
	return quote, pkg.Currency, err
}

func (s *checkoutServiceImpl) addonLines(ctx context.Context, draft *dto.DraftRequest) ([]pricing.AddonLine, error) {
	// a slug may show up in both maps; it prices as a single line
	selected := make(map[string]bool, len(draft.AddonQuantities)+len(draft.AddonToggles))
	slugs := make([]string, 0, len(draft.AddonQuantities)+len(draft.AddonToggles))
	for slug, qty := range draft.AddonQuantities {
		if qty > 0 && !selected[slug] {
			selected[slug] = true
			slugs = append(slugs, slug)
		}
	}
	for slug, on := range draft.AddonToggles {
		if on && !selected[slug] {
			selected[slug] = true
			slugs = append(slugs, slug)
		}
	}
	if len(slugs) == 0 {
		return nil, nil
	}

	addons, err := s.catalogRepo.FindAddons(ctx, slugs)
	if err != nil {
		return nil, fmt.Errorf("find addons: %w", err)
	}
	if len(addons) != len(slugs) {
		return nil, fmt.Errorf("some addons not found")
	}

	lines := make([]pricing.AddonLine, 0, len(addons))
	for _, addon := range addons {
		if !addon.Active {
			return nil, fmt.Errorf("addon %s is not available", addon.Slug)
		}
		qty := int64(1)
		if addon.Kind == model.AddonQuantity {
			qty = draft.AddonQuantities[addon.Slug]
		}
		lines = append(lines, pricing.AddonLine{
			Slug:      addon.Slug,
			UnitPrice: addon.UnitPrice,
			Quantity:  qty,
		})
	}
	return lines, nil
}

func (s *checkoutServiceImpl) Submit(ctx context.Context, req *dto.CheckoutRequest) (*dto.CheckoutResponse, error) {
	provider, err := parseProvider(req.Provider)
	if err != nil {
		return nil, err
	}

	initiator, ok := s.initiators[provider]
	if !ok {
		return nil, ErrBadProvider
	}

	enabled, err := s.settings.ProviderEnabled(ctx, provider)
	if err != nil {
		return nil, fmt.Errorf("check provider state: %w", err)
	}
	if !enabled {
		return nil, ErrProviderDisabled
	}

	env, err := s.settings.ProviderEnvironment(ctx, provider)
	if err != nil {
		return nil, fmt.Errorf("resolve provider environment: %w", err)
	}

	draft, err := s.GetDraft(ctx, req.DraftID)
	if err != nil {
		return nil, err
	}
	if draft.PackageSlug == "" || draft.DurationMonths <= 0 {
		return nil, ErrDraftIncomplete
	}
	if draft.TemplateSlug != "" {
		if _, err := s.catalogRepo.FindTemplate(ctx, draft.TemplateSlug); err != nil {
			return nil, fmt.Errorf("find template: %w", err)
		}
	}

	quote, _, err := s.buildQuote(ctx, draft)
	if err != nil {
		return nil, err
	}

	quantities, _ := json.Marshal(draft.AddonQuantities)
	toggles, _ := json.Marshal(draft.AddonToggles)

	order := &model.Order{
		OrderID:         uuid.NewString(),
		DraftID:         draft.DraftID,
		Domain:          draft.Domain,
		TemplateSlug:    draft.TemplateSlug,
		PackageSlug:     draft.PackageSlug,
		DurationMonths:  draft.DurationMonths,
		AddonQuantities: datatypes.JSON(quantities),
		AddonToggles:    datatypes.JSON(toggles),
		CustomerName:    draft.CustomerName,
		CustomerEmail:   draft.CustomerEmail,
		CustomerPhone:   draft.CustomerPhone,
		PromoCode:       draft.PromoCode,
		DiscountAmount:  quote.PromoDiscount,
		TotalAmount:     quote.Total,
		Currency:        quote.Currency,
		Provider:        provider,
		Environment:     env,
		Status:          model.OrderPending,
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return s.orderRepo.Create(ctx, tx, order)
	})
	if err != nil {
		return nil, fmt.Errorf("store order in db: %w", err)
	}

	resp, err := initiator.Initiate(ctx, order)
	if err != nil {
		// vendor rejected the order; surface their message on the row
		markErr := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			return s.orderRepo.MarkFailed(ctx, tx, order.OrderID, err.Error(), nil)
		})
		if markErr != nil && !errors.Is(markErr, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("mark order failed: %w", markErr)
		}
		return nil, err
	}

	return resp, nil
}

func (s *checkoutServiceImpl) OrderStatus(ctx context.Context, orderID string) (*dto.OrderStatusResponse, error) {
	order, err := s.orderRepo.FindByOrderID(ctx, orderID)
	if err != nil {
		return nil, fmt.Errorf("find order: %w", err)
	}

	return &dto.OrderStatusResponse{
		OrderID:       order.OrderID,
		Status:        string(order.Status),
		Provider:      string(order.Provider),
		RedirectURL:   order.RedirectURL,
		FailureReason: order.FailureReason,
	}, nil
}
