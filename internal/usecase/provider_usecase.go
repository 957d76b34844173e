package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/niagahub/niaga-rate-service/internal/domain"
	providerdto "github.com/niagahub/niaga-rate-service/internal/usecase/dto/provider"
)

type ProviderUsecase interface {
	ListProviders(ctx context.Context, tenantID string) ([]*providerdto.ProviderOutput, error)
	CreateProvider(ctx context.Context, input *providerdto.CreateProviderInput) (*providerdto.ProviderOutput, error)
	UpdateProvider(ctx context.Context, input *providerdto.UpdateProviderInput) error
	SetProviderEnabled(ctx context.Context, providerID string, enabled bool) error
	DeleteProvider(ctx context.Context, providerID string) error
}

type DefaultProviderUsecase struct {
	ProviderRepo domain.ProviderRepository
	QuotaRepo    domain.QuotaRepository
	Factory      domain.ClientFactory
}

func NewDefaultProviderUsecase(providerRepo domain.ProviderRepository, quotaRepo domain.QuotaRepository, factory domain.ClientFactory) *DefaultProviderUsecase {
	return &DefaultProviderUsecase{ProviderRepo: providerRepo, QuotaRepo: quotaRepo, Factory: factory}
}

func (uc *DefaultProviderUsecase) ListProviders(ctx context.Context, tenantID string) ([]*providerdto.ProviderOutput, error) {
	providers, err := uc.ProviderRepo.GetProviders(ctx, tenantID)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	outputs := make([]*providerdto.ProviderOutput, len(providers))
	for i, p := range providers {
		remaining := p.MonthlyQuota
		if !p.IsUnlimited {
			if tracker, err := uc.QuotaRepo.GetForProvider(ctx, p.ID, now.Year(), now.Month()); err == nil && tracker != nil {
				remaining = tracker.RemainingQuota()
			}
		}
		outputs[i] = toProviderOutput(p, remaining)
	}
	return outputs, nil
}

func (uc *DefaultProviderUsecase) CreateProvider(ctx context.Context, input *providerdto.CreateProviderInput) (*providerdto.ProviderOutput, error) {
	existing, err := uc.ProviderRepo.GetProviderByName(ctx, input.TenantID, input.Name)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, fmt.Errorf("%w: provider named %q already exists for tenant", domain.ErrInvalidArgument, input.Name)
	}

	provider := &domain.Provider{
		TenantID:          input.TenantID,
		Name:              input.Name,
		Code:              input.Code,
		APIURL:            input.APIURL,
		APIKey:            input.APIKey,
		RequiresAPIKey:    input.RequiresAPIKey,
		IsUnlimited:       input.IsUnlimited,
		MonthlyQuota:      input.MonthlyQuota,
		Priority:          input.Priority,
		Enabled:           input.Enabled,
		WarningThreshold:  input.WarningThreshold,
		CriticalThreshold: input.CriticalThreshold,
	}

	// Construct a client up front so unknown codes and missing keys are
	// rejected at configuration time, not at acquisition time.
	if _, err := uc.Factory.Create(provider); err != nil {
		return nil, err
	}

	if err := uc.ProviderRepo.CreateProvider(ctx, provider); err != nil {
		return nil, err
	}
	return toProviderOutput(provider, provider.MonthlyQuota), nil
}

func (uc *DefaultProviderUsecase) UpdateProvider(ctx context.Context, input *providerdto.UpdateProviderInput) error {
	provider, err := uc.ProviderRepo.GetProviderByID(ctx, input.ProviderID)
	if err != nil {
		return err
	}
	if provider == nil {
		return fmt.Errorf("%w: provider %s not found", domain.ErrInvalidArgument, input.ProviderID)
	}

	if input.Name != nil {
		provider.Name = *input.Name
	}
	if input.APIURL != nil {
		provider.APIURL = *input.APIURL
	}
	if input.APIKey != nil {
		provider.APIKey = *input.APIKey
	}
	if input.MonthlyQuota != nil {
		provider.MonthlyQuota = *input.MonthlyQuota
	}
	if input.Priority != nil {
		provider.Priority = *input.Priority
	}
	if input.Enabled != nil {
		provider.Enabled = *input.Enabled
	}
	if input.WarningThreshold != nil {
		provider.WarningThreshold = *input.WarningThreshold
	}
	if input.CriticalThreshold != nil {
		provider.CriticalThreshold = *input.CriticalThreshold
	}

	if _, err := uc.Factory.Create(provider); err != nil {
		return err
	}
	return uc.ProviderRepo.UpdateProvider(ctx, provider)
}

func (uc *DefaultProviderUsecase) SetProviderEnabled(ctx context.Context, providerID string, enabled bool) error {
	provider, err := uc.ProviderRepo.GetProviderByID(ctx, providerID)
	if err != nil {
		return err
	}
	if provider == nil {
		return fmt.Errorf("%w: provider %s not found", domain.ErrInvalidArgument, providerID)
	}
	provider.Enabled = enabled
	return uc.ProviderRepo.UpdateProvider(ctx, provider)
}

func (uc *DefaultProviderUsecase) DeleteProvider(ctx context.Context, providerID string) error {
	return uc.ProviderRepo.DeleteProvider(ctx, providerID)
}

func toProviderOutput(p *domain.Provider, remaining int) *providerdto.ProviderOutput {
	return &providerdto.ProviderOutput{
		ID:                p.ID,
		TenantID:          p.TenantID,
		Name:              p.Name,
		Code:              p.Code,
		APIURL:            p.APIURL,
		RequiresAPIKey:    p.RequiresAPIKey,
		HasAPIKey:         p.APIKey != "",
		IsUnlimited:       p.IsUnlimited,
		MonthlyQuota:      p.MonthlyQuota,
		Priority:          p.Priority,
		Enabled:           p.Enabled,
		WarningThreshold:  p.WarningThreshold,
		CriticalThreshold: p.CriticalThreshold,
		RemainingQuota:    remaining,
	}
}
