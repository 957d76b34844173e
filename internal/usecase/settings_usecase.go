package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/niagahub/niaga-rate-service/internal/domain"
)

type SettingsUsecase interface {
	GetSettings(ctx context.Context, tenantID string) (*domain.RateSettings, error)
	SetMode(ctx context.Context, tenantID string, mode domain.RateMode) error
	SetAutoUpdate(ctx context.Context, tenantID string, enabled bool, updateTime string) error
	SetActiveProvider(ctx context.Context, tenantID, providerID string) error
}

type DefaultSettingsUsecase struct {
	SettingsRepo domain.RateSettingsRepository
	ProviderRepo domain.ProviderRepository

	// DefaultUpdateTime seeds AutoUpdateTime for tenants without a settings
	// row yet; main overrides it from the scheduler config.
	DefaultUpdateTime string
}

func NewDefaultSettingsUsecase(settingsRepo domain.RateSettingsRepository, providerRepo domain.ProviderRepository) *DefaultSettingsUsecase {
	return &DefaultSettingsUsecase{
		SettingsRepo:      settingsRepo,
		ProviderRepo:      providerRepo,
		DefaultUpdateTime: "06:00",
	}
}

func (uc *DefaultSettingsUsecase) GetSettings(ctx context.Context, tenantID string) (*domain.RateSettings, error) {
	return uc.SettingsRepo.GetForTenant(ctx, tenantID)
}

func (uc *DefaultSettingsUsecase) SetMode(ctx context.Context, tenantID string, mode domain.RateMode) error {
	if mode != domain.ModeManual && mode != domain.ModeAuto {
		return fmt.Errorf("%w: unknown rate mode %q", domain.ErrInvalidArgument, mode)
	}

	settings, err := uc.loadOrInit(ctx, tenantID)
	if err != nil {
		return err
	}
	settings.Mode = mode
	return uc.SettingsRepo.Save(ctx, settings)
}

func (uc *DefaultSettingsUsecase) SetAutoUpdate(ctx context.Context, tenantID string, enabled bool, updateTime string) error {
	if updateTime != "" {
		if _, err := time.Parse("15:04", updateTime); err != nil {
			return fmt.Errorf("%w: auto update time must be HH:MM, got %q", domain.ErrInvalidArgument, updateTime)
		}
	}

	settings, err := uc.loadOrInit(ctx, tenantID)
	if err != nil {
		return err
	}
	settings.AutoUpdateEnabled = enabled
	if updateTime != "" {
		settings.AutoUpdateTime = updateTime
	}
	return uc.SettingsRepo.Save(ctx, settings)
}

func (uc *DefaultSettingsUsecase) SetActiveProvider(ctx context.Context, tenantID, providerID string) error {
	provider, err := uc.ProviderRepo.GetProviderByID(ctx, providerID)
	if err != nil {
		return err
	}
	if provider == nil || provider.TenantID != tenantID {
		return fmt.Errorf("%w: provider %s not found for tenant", domain.ErrInvalidArgument, providerID)
	}
	if !provider.Enabled {
		return fmt.Errorf("%w: provider %s is disabled", domain.ErrInvalidArgument, provider.Name)
	}
	return uc.SettingsRepo.UpdateActiveProvider(ctx, tenantID, providerID)
}

func (uc *DefaultSettingsUsecase) loadOrInit(ctx context.Context, tenantID string) (*domain.RateSettings, error) {
	settings, err := uc.SettingsRepo.GetForTenant(ctx, tenantID)
	if err != nil {
		return nil, err
	}
	if settings == nil {
		settings = &domain.RateSettings{
			TenantID:       tenantID,
			Mode:           domain.ModeManual,
			AutoUpdateTime: uc.DefaultUpdateTime,
		}
	}
	return settings, nil
}
