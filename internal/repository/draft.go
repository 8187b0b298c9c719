package repository

import (
	"context"
	"time"

	"agency-backend/internal/model"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type DraftRepository interface {
	Upsert(ctx context.Context, draft *model.CheckoutDraft) error
	Get(ctx context.Context, draftID string) (*model.CheckoutDraft, error)
}

type draftRepoImpl struct {
	db *gorm.DB
}

func NewDraftRepository(db *gorm.DB) DraftRepository {
	return &draftRepoImpl{
		db: db,
	}
}

func (r *draftRepoImpl) Upsert(ctx context.Context, draft *model.CheckoutDraft) error {
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "draft_id"}},
		DoUpdates: clause.Assignments(map[string]interface{}{
			"domain":           draft.Domain,
			"template_slug":    draft.TemplateSlug,
			"package_slug":     draft.PackageSlug,
			"duration_months":  draft.DurationMonths,
			"addon_quantities": draft.AddonQuantities,
			"addon_toggles":    draft.AddonToggles,
			"customer_name":    draft.CustomerName,
			"customer_email":   draft.CustomerEmail,
			"customer_phone":   draft.CustomerPhone,
			"promo_code":       draft.PromoCode,
			"updated_at":       time.Now(),
		}),
	}).Create(draft).Error
}

func (r *draftRepoImpl) Get(ctx context.Context, draftID string) (*model.CheckoutDraft, error) {
	var draft model.CheckoutDraft
	err := r.db.WithContext(ctx).
		Where("draft_id = ?", draftID).
		First(&draft).Error

	if err != nil {
		return nil, err
	}

	return &draft, nil
}
