package repository

import (
	"context"
	"time"

	"agency-backend/internal/model"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type OrderRepository interface {
	Create(ctx context.Context, tx *gorm.DB, order *model.Order) error
	FindByOrderID(ctx context.Context, orderID string) (*model.Order, error)
	FindByProviderRef(ctx context.Context, provider model.PaymentProvider, ref string) (*model.Order, error)
	SetProviderResult(ctx context.Context, orderID, providerRef, redirectURL string) error
	MarkPaid(ctx context.Context, tx *gorm.DB, orderID, payerRef string, payload []byte) (*model.Order, error)
	MarkFailed(ctx context.Context, tx *gorm.DB, orderID, reason string, payload []byte) error
	IsPaid(ctx context.Context, orderID string) (bool, error)
	List(ctx context.Context, limit, offset int) ([]*model.Order, error)
}

type orderRepoImpl struct {
	db *gorm.DB
}

func NewOrderRepository(db *gorm.DB) OrderRepository {
	return &orderRepoImpl{
		db: db,
	}
}

func (r *orderRepoImpl) Create(ctx context.Context, tx *gorm.DB, order *model.Order) error {
	return tx.WithContext(ctx).Create(order).Error
}

func (r *orderRepoImpl) FindByOrderID(ctx context.Context, orderID string) (*model.Order, error) {
	var order model.Order
	err := r.db.WithContext(ctx).
		Where("order_id = ?", orderID).
		First(&order).Error

	if err != nil {
		return nil, err
	}

	return &order, nil
}

func (r *orderRepoImpl) FindByProviderRef(ctx context.Context, provider model.PaymentProvider, ref string) (*model.Order, error) {
	var order model.Order
	err := r.db.WithContext(ctx).
		Where("provider = ? AND provider_ref = ?", provider, ref).
		First(&order).Error

	if err != nil {
		return nil, err
	}

	return &order, nil
}

func (r *orderRepoImpl) SetProviderResult(ctx context.Context, orderID, providerRef, redirectURL string) error {
	result := r.db.WithContext(ctx).Model(&model.Order{}).
		Where("order_id = ?", orderID).
		Updates(map[string]interface{}{
			"provider_ref": providerRef,
			"redirect_url": redirectURL,
			"updated_at":   time.Now(),
		})

	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// MarkPaid transitions a pending order to paid. Terminal states are sticky:
// a row already paid or failed is left untouched and the guarded update
// affects zero rows, which callers treat as "already settled".
func (r *orderRepoImpl) MarkPaid(ctx context.Context, tx *gorm.DB, orderID, payerRef string, payload []byte) (*model.Order, error) {
	var order model.Order
	err := tx.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		now := time.Now()
		updates := map[string]interface{}{
			"status":     model.OrderPaid,
			"payer_ref":  payerRef,
			"paid_at":    now,
			"updated_at": now,
		}
		if len(payload) > 0 {
			updates["provider_payload"] = datatypes.JSON(payload)
		}

		result := tx.Model(&order).
			Where("order_id = ? AND status = ?", orderID, model.OrderPending).
			Updates(updates)

		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}

		return tx.Where("order_id = ?", orderID).First(&order).Error
	})

	return &order, err
}

func (r *orderRepoImpl) MarkFailed(ctx context.Context, tx *gorm.DB, orderID, reason string, payload []byte) error {
	updates := map[string]interface{}{
		"status":         model.OrderFailed,
		"failure_reason": reason,
		"updated_at":     time.Now(),
	}
	if len(payload) > 0 {
		updates["provider_payload"] = datatypes.JSON(payload)
	}

	result := tx.WithContext(ctx).Model(&model.Order{}).
		Where("order_id = ? AND status = ?", orderID, model.OrderPending).
		Updates(updates)

	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *orderRepoImpl) IsPaid(ctx context.Context, orderID string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&model.Order{}).
		Where("order_id = ?", orderID).
		Where("status = ?", model.OrderPaid).
		Count(&count).Error

	return count > 0, err
}

func (r *orderRepoImpl) List(ctx context.Context, limit, offset int) ([]*model.Order, error) {
	var orders []*model.Order
	err := r.db.WithContext(ctx).
		Order("created_at DESC").
		Limit(limit).
		Offset(offset).
		Find(&orders).Error

	if err != nil {
		return nil, err
	}

	return orders, nil
}
