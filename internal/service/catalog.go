package service

import (
	"context"
	"errors"
	"fmt"

	"agency-backend/internal/dto"
	"agency-backend/internal/pricing"
	"agency-backend/internal/repository"
)

// CatalogService backs the public settings readers the checkout steps
// render from: packages with per-duration totals, add-ons and templates.
type CatalogService interface {
	Packages(ctx context.Context) ([]dto.PackageView, error)
	Addons(ctx context.Context) ([]dto.AddonView, error)
	Templates(ctx context.Context) ([]dto.TemplateView, error)
}

type catalogServiceImpl struct {
	catalogRepo repository.CatalogRepository
}

func NewCatalogService(catalogRepo repository.CatalogRepository) CatalogService {
	return &catalogServiceImpl{
		catalogRepo: catalogRepo,
	}
}

func (s *catalogServiceImpl) Packages(ctx context.Context) ([]dto.PackageView, error) {
	packages, err := s.catalogRepo.ActivePackages(ctx)
	if err != nil {
		return nil, fmt.Errorf("get packages: %w", err)
	}

	views := make([]dto.PackageView, 0, len(packages))
	for _, pkg := range packages {
		durations, err := s.catalogRepo.DurationsFor(ctx, pkg.Slug)
		if err != nil {
			return nil, fmt.Errorf("get durations for %s: %w", pkg.Slug, err)
		}

		discounts := make(map[int]int, len(durations))
		for _, d := range durations {
			discounts[d.Months] = d.DiscountPercent
		}

		p := pricing.PackagePricing{
			MonthlyPrice:  pkg.MonthlyPrice,
			AnnualPrice:   pkg.AnnualPrice,
			OverridePrice: pkg.OverridePrice,
			Currency:      pkg.Currency,
		}

		durationViews := make([]dto.DurationView, 0, len(durations))
		for _, d := range durations {
			view := dto.DurationView{
				Months:          d.Months,
				DiscountPercent: d.DiscountPercent,
			}
			total, err := pricing.PackageTotal(p, d.Months, discounts)
			if errors.Is(err, pricing.ErrNoDuration) {
				view.Display = "—"
			} else if err != nil {
				return nil, err
			} else {
				view.Total = total
				view.Display = pricing.FormatAmount(total, pkg.Currency)
			}
			durationViews = append(durationViews, view)
		}

		views = append(views, dto.PackageView{
			Slug:         pkg.Slug,
			Name:         pkg.Name,
			Description:  pkg.Description,
			MonthlyPrice: pkg.MonthlyPrice,
			AnnualPrice:  pkg.AnnualPrice,
			Currency:     pkg.Currency,
			Durations:    durationViews,
		})
	}

	return views, nil
}

func (s *catalogServiceImpl) Addons(ctx context.Context) ([]dto.AddonView, error) {
	addons, err := s.catalogRepo.ActiveAddons(ctx)
	if err != nil {
		return nil, fmt.Errorf("get addons: %w", err)
	}

	views := make([]dto.AddonView, 0, len(addons))
	for _, a := range addons {
		views = append(views, dto.AddonView{
			Slug:      a.Slug,
			Name:      a.Name,
			Kind:      string(a.Kind),
			UnitPrice: a.UnitPrice,
			Currency:  a.Currency,
		})
	}
	return views, nil
}

func (s *catalogServiceImpl) Templates(ctx context.Context) ([]dto.TemplateView, error) {
	templates, err := s.catalogRepo.ActiveTemplates(ctx)
	if err != nil {
		return nil, fmt.Errorf("get templates: %w", err)
	}

	views := make([]dto.TemplateView, 0, len(templates))
	for _, t := range templates {
		views = append(views, dto.TemplateView{
			Slug:       t.Slug,
			Name:       t.Name,
			PreviewURL: t.PreviewURL,
		})
	}
	return views, nil
}
