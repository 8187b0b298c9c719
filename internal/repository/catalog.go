package repository

import (
	"context"

	"agency-backend/internal/model"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type CatalogRepository interface {
	Seed(ctx context.Context) error

	ActivePackages(ctx context.Context) ([]*model.Package, error)
	FindPackage(ctx context.Context, slug string) (*model.Package, error)
	UpsertPackage(ctx context.Context, pkg *model.Package) error

	DurationsFor(ctx context.Context, packageSlug string) ([]*model.PackageDuration, error)
	UpsertDuration(ctx context.Context, d *model.PackageDuration) error

	ActiveAddons(ctx context.Context) ([]*model.Addon, error)
	FindAddons(ctx context.Context, slugs []string) ([]*model.Addon, error)

	ActiveTemplates(ctx context.Context) ([]*model.Template, error)
	FindTemplate(ctx context.Context, slug string) (*model.Template, error)
}

type catalogRepoImpl struct {
	db *gorm.DB
}

func NewCatalogRepository(db *gorm.DB) CatalogRepository {
	return &catalogRepoImpl{
		db: db,
	}
}

// Seed inserts a starter catalog so a fresh database renders a working
// checkout. Existing rows are never touched.
func (r *catalogRepoImpl) Seed(ctx context.Context) error {
	packages := []model.Package{
		{Slug: "starter", Name: "Starter", Description: "Landing page and basic SEO", MonthlyPrice: 750000, AnnualPrice: 7500000, Currency: "IDR", Active: true, SortOrder: 1},
		{Slug: "growth", Name: "Growth", Description: "Full site, content and campaign management", MonthlyPrice: 2500000, AnnualPrice: 25000000, Currency: "IDR", Active: true, SortOrder: 2},
		{Slug: "enterprise", Name: "Enterprise", Description: "Dedicated team and custom integrations", MonthlyPrice: 7500000, AnnualPrice: 75000000, Currency: "IDR", Active: true, SortOrder: 3},
	}
	if err := r.db.WithContext(ctx).Clauses(clause.OnConflict{DoNothing: true}).Create(&packages).Error; err != nil {
		return err
	}

	var durations []model.PackageDuration
	for _, pkg := range packages {
		durations = append(durations,
			model.PackageDuration{PackageSlug: pkg.Slug, Months: 1, DiscountPercent: 0, Active: true, SortOrder: 1},
			model.PackageDuration{PackageSlug: pkg.Slug, Months: 3, DiscountPercent: 5, Active: true, SortOrder: 2},
			model.PackageDuration{PackageSlug: pkg.Slug, Months: 6, DiscountPercent: 10, Active: true, SortOrder: 3},
			model.PackageDuration{PackageSlug: pkg.Slug, Months: 12, DiscountPercent: 20, Active: true, SortOrder: 4},
		)
	}
	if err := r.db.WithContext(ctx).Clauses(clause.OnConflict{DoNothing: true}).Create(&durations).Error; err != nil {
		return err
	}

	addons := []model.Addon{
		{Slug: "extra-page", Name: "Extra page", Kind: model.AddonQuantity, UnitPrice: 150000, Currency: "IDR", Active: true, SortOrder: 1},
		{Slug: "blog-article", Name: "Blog article", Kind: model.AddonQuantity, UnitPrice: 200000, Currency: "IDR", Active: true, SortOrder: 2},
		{Slug: "priority-support", Name: "Priority support", Kind: model.AddonToggle, UnitPrice: 500000, Currency: "IDR", Active: true, SortOrder: 3},
		{Slug: "google-ads-setup", Name: "Google Ads setup", Kind: model.AddonToggle, UnitPrice: 750000, Currency: "IDR", Active: true, SortOrder: 4},
	}
	if err := r.db.WithContext(ctx).Clauses(clause.OnConflict{DoNothing: true}).Create(&addons).Error; err != nil {
		return err
	}

	templates := []model.Template{
		{Slug: "corporate", Name: "Corporate", Active: true, SortOrder: 1},
		{Slug: "portfolio", Name: "Portfolio", Active: true, SortOrder: 2},
		{Slug: "storefront", Name: "Storefront", Active: true, SortOrder: 3},
	}
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{DoNothing: true}).Create(&templates).Error
}

func (r *catalogRepoImpl) ActivePackages(ctx context.Context) ([]*model.Package, error) {
	var packages []*model.Package
	err := r.db.WithContext(ctx).
		Where("active = ?", true).
		Order("sort_order ASC").
		Find(&packages).Error

	if err != nil {
		return nil, err
	}

	return packages, nil
}

// FindPackage only returns sellable packages; a deactivated package is
// indistinguishable from a missing one.
func (r *catalogRepoImpl) FindPackage(ctx context.Context, slug string) (*model.Package, error) {
	var pkg model.Package
	err := r.db.WithContext(ctx).
		Where("slug = ? AND active = ?", slug, true).
		First(&pkg).Error

	if err != nil {
		return nil, err
	}

	return &pkg, nil
}

func (r *catalogRepoImpl) UpsertPackage(ctx context.Context, pkg *model.Package) error {
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		UpdateAll: true,
	}).Create(pkg).Error
}

func (r *catalogRepoImpl) DurationsFor(ctx context.Context, packageSlug string) ([]*model.PackageDuration, error) {
	var durations []*model.PackageDuration
	err := r.db.WithContext(ctx).
		Where("package_slug = ? AND active = ?", packageSlug, true).
		Order("sort_order ASC").
		Find(&durations).Error

	if err != nil {
		return nil, err
	}

	return durations, nil
}

func (r *catalogRepoImpl) UpsertDuration(ctx context.Context, d *model.PackageDuration) error {
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "package_slug"}, {Name: "months"}},
		DoUpdates: clause.Assignments(map[string]interface{}{
			"discount_percent": d.DiscountPercent,
			"active":           d.Active,
			"sort_order":       d.SortOrder,
		}),
	}).Create(d).Error
}

func (r *catalogRepoImpl) ActiveAddons(ctx context.Context) ([]*model.Addon, error) {
	var addons []*model.Addon
	err := r.db.WithContext(ctx).
		Where("active = ?", true).
		Order("sort_order ASC").
		Find(&addons).Error

	if err != nil {
		return nil, err
	}

	return addons, nil
}

func (r *catalogRepoImpl) FindAddons(ctx context.Context, slugs []string) ([]*model.Addon, error) {
	if len(slugs) == 0 {
		return nil, nil
	}

	var addons []*model.Addon
	err := r.db.WithContext(ctx).
		Where("slug IN ?", slugs).
		Find(&addons).Error

	if err != nil {
		return nil, err
	}

	return addons, nil
}

func (r *catalogRepoImpl) ActiveTemplates(ctx context.Context) ([]*model.Template, error) {
	var templates []*model.Template
	err := r.db.WithContext(ctx).
		Where("active = ?", true).
		Order("sort_order ASC").
		Find(&templates).Error

	if err != nil {
		return nil, err
	}

	return templates, nil
}

func (r *catalogRepoImpl) FindTemplate(ctx context.Context, slug string) (*model.Template, error) {
	var tpl model.Template
	err := r.db.WithContext(ctx).
		Where("slug = ? AND active = ?", slug, true).
		First(&tpl).Error

	if err != nil {
		return nil, err
	}

	return &tpl, nil
}
