package repository

import (
	"context"
	"errors"
	"time"

	"agency-backend/internal/model"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type PromoRepository interface {
	FindActive(ctx context.Context, code string, at time.Time) (*model.PromoCode, error)
	Upsert(ctx context.Context, promo *model.PromoCode) error
}

var ErrPromoNotFound = errors.New("promo code not found or inactive")

type promoRepoImpl struct {
	db *gorm.DB
}

func NewPromoRepository(db *gorm.DB) PromoRepository {
	return &promoRepoImpl{
		db: db,
	}
}

func (r *promoRepoImpl) FindActive(ctx context.Context, code string, at time.Time) (*model.PromoCode, error) {
	var promo model.PromoCode
	err := r.db.WithContext(ctx).
		Where("code = ? AND active = ?", code, true).
		First(&promo).Error

	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrPromoNotFound
		}
		return nil, err
	}

	if promo.StartsAt != nil && at.Before(*promo.StartsAt) {
		return nil, ErrPromoNotFound
	}
	if promo.ExpiresAt != nil && at.After(*promo.ExpiresAt) {
		return nil, ErrPromoNotFound
	}

	return &promo, nil
}

func (r *promoRepoImpl) Upsert(ctx context.Context, promo *model.PromoCode) error {
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		UpdateAll: true,
	}).Create(promo).Error
}
