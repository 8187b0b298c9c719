package repository

import (
	"context"
	"errors"
	"time"

	"agency-backend/internal/model"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type SettingsRepository interface {
	Get(ctx context.Context, key string) (string, error)
	GetMany(ctx context.Context, keys []string) (map[string]string, error)
	Set(ctx context.Context, key, value, actorID string) error
	Clear(ctx context.Context, key string) error

	UpsertSecret(ctx context.Context, secret *model.IntegrationSecret) error
	GetSecret(ctx context.Context, provider model.PaymentProvider, env model.ProviderEnvironment, name string) (string, error)
	ClearSecrets(ctx context.Context, provider model.PaymentProvider, env model.ProviderEnvironment) error
}

// ErrSettingNotFound is returned for keys with no stored value; callers fall
// back to the bootstrap config.
var ErrSettingNotFound = errors.New("setting not found")

type settingsRepoImpl struct {
	db *gorm.DB
}

func NewSettingsRepository(db *gorm.DB) SettingsRepository {
	return &settingsRepoImpl{
		db: db,
	}
}

func (r *settingsRepoImpl) Get(ctx context.Context, key string) (string, error) {
	var setting model.WebsiteSetting
	err := r.db.WithContext(ctx).
		Where("`key` = ?", key).
		First(&setting).Error

	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", ErrSettingNotFound
		}
		return "", err
	}

	return setting.Value, nil
}

func (r *settingsRepoImpl) GetMany(ctx context.Context, keys []string) (map[string]string, error) {
	var settings []model.WebsiteSetting
	err := r.db.WithContext(ctx).
		Where("`key` IN ?", keys).
		Find(&settings).Error

	if err != nil {
		return nil, err
	}

	out := make(map[string]string, len(settings))
	for _, s := range settings {
		out[s.Key] = s.Value
	}
	return out, nil
}

func (r *settingsRepoImpl) Set(ctx context.Context, key, value, actorID string) error {
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "key"}},
		DoUpdates: clause.Assignments(map[string]interface{}{
			"value":      value,
			"updated_by": actorID,
			"updated_at": time.Now(),
		}),
	}).Create(&model.WebsiteSetting{
		Key:       key,
		Value:     value,
		UpdatedBy: actorID,
	}).Error
}

func (r *settingsRepoImpl) Clear(ctx context.Context, key string) error {
	return r.db.WithContext(ctx).
		Where("`key` = ?", key).
		Delete(&model.WebsiteSetting{}).Error
}

func (r *settingsRepoImpl) UpsertSecret(ctx context.Context, secret *model.IntegrationSecret) error {
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "provider"}, {Name: "environment"}, {Name: "name"}},
		DoUpdates: clause.Assignments(map[string]interface{}{
			"value":      secret.Value,
			"plaintext":  secret.Plaintext,
			"updated_by": secret.UpdatedBy,
			"updated_at": time.Now(),
		}),
	}).Create(secret).Error
}

func (r *settingsRepoImpl) GetSecret(ctx context.Context, provider model.PaymentProvider, env model.ProviderEnvironment, name string) (string, error) {
	var secret model.IntegrationSecret
	err := r.db.WithContext(ctx).
		Where("provider = ? AND environment = ? AND name = ?", provider, env, name).
		First(&secret).Error

	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", ErrSettingNotFound
		}
		return "", err
	}

	return secret.Value, nil
}

func (r *settingsRepoImpl) ClearSecrets(ctx context.Context, provider model.PaymentProvider, env model.ProviderEnvironment) error {
	return r.db.WithContext(ctx).
		Where("provider = ? AND environment = ?", provider, env).
		Delete(&model.IntegrationSecret{}).Error
}
