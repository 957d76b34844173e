package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/niagahub/niaga-rate-service/internal/domain"
	"github.com/niagahub/niaga-rate-service/internal/infrastructure/postgres/models"
	"gorm.io/gorm"
)

type DefaultRateSettingsRepository struct {
	DB *gorm.DB
}

func NewDefaultRateSettingsRepository(db *gorm.DB) *DefaultRateSettingsRepository {
	return &DefaultRateSettingsRepository{DB: db}
}

func (r *DefaultRateSettingsRepository) GetForTenant(ctx context.Context, tenantID string) (*domain.RateSettings, error) {
	var model models.RateSettingModel
	if err := r.DB.WithContext(ctx).Where("tenant_id = ?", tenantID).First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return toDomainSettings(&model), nil
}

func (r *DefaultRateSettingsRepository) Save(ctx context.Context, settings *domain.RateSettings) error {
	model := models.RateSettingModel{
		TenantID:          settings.TenantID,
		Mode:              string(settings.Mode),
		ManualRate:        settings.ManualRate,
		ActiveProviderID:  settings.ActiveProviderID,
		CurrentRate:       settings.CurrentRate,
		AutoUpdateEnabled: settings.AutoUpdateEnabled,
		AutoUpdateTime:    settings.AutoUpdateTime,
	}
	return r.DB.WithContext(ctx).Save(&model).Error
}

func (r *DefaultRateSettingsRepository) UpdateCurrentRate(ctx context.Context, tenantID string, rate float64) error {
	return r.DB.WithContext(ctx).Model(&models.RateSettingModel{}).
		Where("tenant_id = ?", tenantID).
		Updates(map[string]interface{}{
			"current_rate": rate,
			"updated_at":   time.Now(),
		}).Error
}

func (r *DefaultRateSettingsRepository) UpdateManualRate(ctx context.Context, tenantID string, rate float64) error {
	return r.DB.WithContext(ctx).Model(&models.RateSettingModel{}).
		Where("tenant_id = ?", tenantID).
		Updates(map[string]interface{}{
			"manual_rate": rate,
			"updated_at":  time.Now(),
		}).Error
}

func (r *DefaultRateSettingsRepository) UpdateActiveProvider(ctx context.Context, tenantID, providerID string) error {
	return r.DB.WithContext(ctx).Model(&models.RateSettingModel{}).
		Where("tenant_id = ?", tenantID).
		Updates(map[string]interface{}{
			"active_provider_id": providerID,
			"updated_at":         time.Now(),
		}).Error
}

func (r *DefaultRateSettingsRepository) ListAutoUpdateTenants(ctx context.Context) ([]string, error) {
	var tenantIDs []string
	err := r.DB.WithContext(ctx).Model(&models.RateSettingModel{}).
		Where("auto_update_enabled = ? AND mode = ?", true, string(domain.ModeAuto)).
		Order("tenant_id ASC").
		Pluck("tenant_id", &tenantIDs).Error
	if err != nil {
		return nil, err
	}
	return tenantIDs, nil
}

func (r *DefaultRateSettingsRepository) ListAutoUpdateTenantsDueAt(ctx context.Context, hour int) ([]string, error) {
	var tenantIDs []string
	err := r.DB.WithContext(ctx).Model(&models.RateSettingModel{}).
		Where("auto_update_enabled = ? AND mode = ? AND auto_update_time LIKE ?",
			true, string(domain.ModeAuto), fmt.Sprintf("%02d:%%", hour)).
		Order("tenant_id ASC").
		Pluck("tenant_id", &tenantIDs).Error
	if err != nil {
		return nil, err
	}
	return tenantIDs, nil
}

func toDomainSettings(model *models.RateSettingModel) *domain.RateSettings {
	return &domain.RateSettings{
		TenantID:          model.TenantID,
		Mode:              domain.RateMode(model.Mode),
		ManualRate:        model.ManualRate,
		ActiveProviderID:  model.ActiveProviderID,
		CurrentRate:       model.CurrentRate,
		AutoUpdateEnabled: model.AutoUpdateEnabled,
		AutoUpdateTime:    model.AutoUpdateTime,
		UpdatedAt:         model.UpdatedAt,
	}
}
