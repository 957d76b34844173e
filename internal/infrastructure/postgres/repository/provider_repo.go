package repository

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/niagahub/niaga-rate-service/internal/domain"
	"github.com/niagahub/niaga-rate-service/internal/infrastructure/postgres/models"
	"gorm.io/gorm"
)

type DefaultProviderRepository struct {
	DB *gorm.DB
}

func NewDefaultProviderRepository(db *gorm.DB) *DefaultProviderRepository {
	return &DefaultProviderRepository{DB: db}
}

func (r *DefaultProviderRepository) CreateProvider(ctx context.Context, provider *domain.Provider) error {
	model := toProviderModel(provider)
	if model.ID == "" {
		model.ID = uuid.New().String()
	}

	if err := r.DB.WithContext(ctx).Create(&model).Error; err != nil {
		return err
	}

	provider.ID = model.ID
	return nil
}

func (r *DefaultProviderRepository) UpdateProvider(ctx context.Context, provider *domain.Provider) error {
	updateData := map[string]interface{}{
		"name":               provider.Name,
		"code":               provider.Code,
		"api_url":            provider.APIURL,
		"api_key":            provider.APIKey,
		"requires_api_key":   provider.RequiresAPIKey,
		"is_unlimited":       provider.IsUnlimited,
		"monthly_quota":      provider.MonthlyQuota,
		"priority":           provider.Priority,
		"enabled":            provider.Enabled,
		"warning_threshold":  provider.WarningThreshold,
		"critical_threshold": provider.CriticalThreshold,
	}

	return r.DB.WithContext(ctx).Model(&models.ProviderModel{}).
		Where("id = ?", provider.ID).
		Updates(updateData).Error
}

func (r *DefaultProviderRepository) DeleteProvider(ctx context.Context, providerID string) error {
	return r.DB.WithContext(ctx).Delete(&models.ProviderModel{ID: providerID}).Error
}

func (r *DefaultProviderRepository) GetProviderByID(ctx context.Context, providerID string) (*domain.Provider, error) {
	var model models.ProviderModel
	if err := r.DB.WithContext(ctx).Where("id = ?", providerID).First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return toDomainProvider(&model), nil
}

func (r *DefaultProviderRepository) GetProviderByName(ctx context.Context, tenantID, name string) (*domain.Provider, error) {
	var model models.ProviderModel
	if err := r.DB.WithContext(ctx).Where("tenant_id = ? AND name = ?", tenantID, name).First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return toDomainProvider(&model), nil
}

func (r *DefaultProviderRepository) GetEnabledOrdered(ctx context.Context, tenantID string) ([]*domain.Provider, error) {
	var providerModels []models.ProviderModel
	err := r.DB.WithContext(ctx).
		Where("tenant_id = ? AND enabled = ?", tenantID, true).
		Order("priority ASC, id ASC").
		Find(&providerModels).Error
	if err != nil {
		return nil, err
	}
	return toDomainProviders(providerModels), nil
}

func (r *DefaultProviderRepository) GetProviders(ctx context.Context, tenantID string) ([]*domain.Provider, error) {
	var providerModels []models.ProviderModel
	err := r.DB.WithContext(ctx).
		Where("tenant_id = ?", tenantID).
		Order("priority ASC, id ASC").
		Find(&providerModels).Error
	if err != nil {
		return nil, err
	}
	return toDomainProviders(providerModels), nil
}

func (r *DefaultProviderRepository) GetAllProviders(ctx context.Context) ([]*domain.Provider, error) {
	var providerModels []models.ProviderModel
	if err := r.DB.WithContext(ctx).Find(&providerModels).Error; err != nil {
		return nil, err
	}
	return toDomainProviders(providerModels), nil
}

func toProviderModel(provider *domain.Provider) models.ProviderModel {
	return models.ProviderModel{
		ID:                provider.ID,
		TenantID:          provider.TenantID,
		Name:              provider.Name,
		Code:              provider.Code,
		APIURL:            provider.APIURL,
		APIKey:            provider.APIKey,
		RequiresAPIKey:    provider.RequiresAPIKey,
		IsUnlimited:       provider.IsUnlimited,
		MonthlyQuota:      provider.MonthlyQuota,
		Priority:          provider.Priority,
		Enabled:           provider.Enabled,
		WarningThreshold:  provider.WarningThreshold,
		CriticalThreshold: provider.CriticalThreshold,
	}
}

func toDomainProvider(model *models.ProviderModel) *domain.Provider {
	return &domain.Provider{
		ID:                model.ID,
		TenantID:          model.TenantID,
		Name:              model.Name,
		Code:              model.Code,
		APIURL:            model.APIURL,
		APIKey:            model.APIKey,
		RequiresAPIKey:    model.RequiresAPIKey,
		IsUnlimited:       model.IsUnlimited,
		MonthlyQuota:      model.MonthlyQuota,
		Priority:          model.Priority,
		Enabled:           model.Enabled,
		WarningThreshold:  model.WarningThreshold,
		CriticalThreshold: model.CriticalThreshold,
	}
}

func toDomainProviders(providerModels []models.ProviderModel) []*domain.Provider {
	providers := make([]*domain.Provider, len(providerModels))
	for i := range providerModels {
		providers[i] = toDomainProvider(&providerModels[i])
	}
	return providers
}
