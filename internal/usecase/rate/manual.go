package rate

import (
	"context"
	"log/slog"

	"github.com/niagahub/niaga-rate-service/internal/domain"
)

// publishManualRate re-validates and republishes the configured manual rate.
// Manual mode never touches providers, quota or the fallback chain.
func (uc *DefaultRateUsecase) publishManualRate(ctx context.Context, settings *domain.RateSettings) (*domain.RateQuote, error) {
	tenantID := settings.TenantID

	if err := uc.Policy.ValidateManualRate(settings.ManualRate, true); err != nil {
		slog.Error("invalid manual rate configured",
			"tenant_id", tenantID,
			"error", err)
		return nil, err
	}

	now := uc.now()
	rate := *settings.ManualRate

	observation := &domain.RateObservation{
		TenantID:   tenantID,
		Rate:       rate,
		Source:     domain.SourceManual,
		EventType:  domain.EventManualUpdate,
		ObservedAt: now,
	}
	if err := uc.appendObservation(ctx, observation); err != nil {
		return nil, err
	}

	if err := uc.SettingsRepo.UpdateCurrentRate(ctx, tenantID, rate); err != nil {
		return nil, err
	}

	if err := uc.Publisher.PublishRateUpdated(domain.RateUpdatedEvent{
		TenantID:   tenantID,
		Rate:       rate,
		Source:     domain.SourceManual,
		EventType:  domain.EventManualUpdate,
		ObservedAt: now,
	}); err != nil {
		slog.Warn("failed to publish rate update event", "tenant_id", tenantID, "error", err)
	}
	uc.countUpdate(tenantID, domain.SourceManual)

	return &domain.RateQuote{
		Rate:         rate,
		ObservedAt:   now,
		Source:       domain.SourceManual,
		ProviderName: string(domain.SourceManual),
	}, nil
}

// SetManualRate validates and stores a tenant-supplied rate. Validation
// failures reject the write outright; nothing is clamped or auto-corrected.
func (uc *DefaultRateUsecase) SetManualRate(ctx context.Context, tenantID string, rate float64) error {
	r := rate
	if err := uc.Policy.ValidateManualRate(&r, true); err != nil {
		return err
	}

	if err := uc.SettingsRepo.UpdateManualRate(ctx, tenantID, rate); err != nil {
		return err
	}

	now := uc.now()
	observation := &domain.RateObservation{
		TenantID:   tenantID,
		Rate:       rate,
		Source:     domain.SourceManual,
		EventType:  domain.EventManualUpdate,
		ObservedAt: now,
	}
	if err := uc.appendObservation(ctx, observation); err != nil {
		return err
	}

	if err := uc.SettingsRepo.UpdateCurrentRate(ctx, tenantID, rate); err != nil {
		return err
	}

	if err := uc.Publisher.PublishRateUpdated(domain.RateUpdatedEvent{
		TenantID:   tenantID,
		Rate:       rate,
		Source:     domain.SourceManual,
		EventType:  domain.EventManualUpdate,
		ObservedAt: now,
	}); err != nil {
		slog.Warn("failed to publish rate update event", "tenant_id", tenantID, "error", err)
	}
	uc.countUpdate(tenantID, domain.SourceManual)

	return nil
}
