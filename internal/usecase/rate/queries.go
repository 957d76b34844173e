package rate

import (
	"context"

	"github.com/niagahub/niaga-rate-service/internal/domain"
)

// GetCurrentRate returns the published rate without acquiring a fresh one.
// This is the read path downstream pricing code uses.
func (uc *DefaultRateUsecase) GetCurrentRate(ctx context.Context, tenantID string) (*domain.RateQuote, error) {
	settings, err := uc.SettingsRepo.GetForTenant(ctx, tenantID)
	if err != nil {
		return nil, err
	}

	if settings != nil && settings.CurrentRate != nil {
		source := domain.SourceAPI
		if settings.Mode == domain.ModeManual {
			source = domain.SourceManual
		}
		quote := &domain.RateQuote{
			Rate:       *settings.CurrentRate,
			ObservedAt: settings.UpdatedAt,
			Source:     source,
		}
		if observation, err := uc.HistoryRepo.GetLatest(ctx, tenantID); err == nil && observation != nil {
			quote.ObservedAt = observation.ObservedAt
			quote.ProviderName = observation.Metadata["provider"]
		}
		return quote, nil
	}

	// No published value yet; the history cache is the only candidate.
	observation, err := uc.HistoryRepo.GetLatest(ctx, tenantID)
	if err != nil {
		return nil, err
	}
	if observation == nil {
		return nil, &domain.NoRateAvailableError{Reason: domain.NoRateNoCachedRate}
	}
	return &domain.RateQuote{
		Rate:         observation.Rate,
		ObservedAt:   observation.ObservedAt,
		Source:       domain.SourceCached,
		ProviderName: observation.Metadata["provider"],
	}, nil
}
