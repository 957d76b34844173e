package rate

import (
	"context"
	"log/slog"

	"github.com/niagahub/niaga-rate-service/internal/domain"
)

// fallbackToCache serves the most recent observation when every provider is
// exhausted or failing. A stale cached rate is still served with a warning;
// only a missing or too-old cache is terminal.
func (uc *DefaultRateUsecase) fallbackToCache(ctx context.Context, tenantID string, cause error) (*domain.RateQuote, error) {
	observation, err := uc.HistoryRepo.GetLatest(ctx, tenantID)
	if err != nil {
		return nil, err
	}
	if observation == nil {
		uc.countAcquisitionError(tenantID, domain.NoRateNoCachedRate)
		return nil, &domain.NoRateAvailableError{Reason: domain.NoRateNoCachedRate, Cause: cause}
	}

	if err := uc.Policy.ValidateRateAvailability(&observation.Rate, &observation.ObservedAt, domain.SourceCached); err != nil {
		uc.countAcquisitionError(tenantID, domain.NoRateNoCachedRate)
		return nil, err
	}

	stale := uc.Policy.ShouldWarnAboutStaleness(observation.ObservedAt, 0)
	slog.Warn("serving cached rate after provider chain exhausted",
		"tenant_id", tenantID,
		"rate", observation.Rate,
		"observed_at", observation.ObservedAt,
		"stale", stale,
		"cause", cause)

	uc.Notifier.SendFallbackNotification(observation.Rate, observation.ObservedAt, stale)
	uc.countFallback(tenantID)

	providerName := observation.Metadata["provider"]
	if providerName == "" {
		providerName = string(domain.SourceCached)
	}

	return &domain.RateQuote{
		Rate:         observation.Rate,
		ObservedAt:   observation.ObservedAt,
		Source:       domain.SourceCached,
		ProviderName: providerName,
	}, nil
}
