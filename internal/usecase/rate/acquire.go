package rate

import (
	"context"
	"log/slog"
	"time"

	"github.com/niagahub/niaga-rate-service/internal/domain"
)

// fetchFromProviders walks the tenant's fallback chain: active provider
// first, then the remaining enabled providers in priority order. Each
// provider gets at most one attempt per acquisition; retries happen by
// rescheduling, never inside this loop.
func (uc *DefaultRateUsecase) fetchFromProviders(ctx context.Context, settings *domain.RateSettings) (*domain.RateQuote, error) {
	tenantID := settings.TenantID
	start := uc.now()

	providers, err := uc.ProviderRepo.GetEnabledOrdered(ctx, tenantID)
	if err != nil {
		return nil, err
	}
	if len(providers) == 0 {
		return uc.fallbackToCache(ctx, tenantID, &domain.NoRateAvailableError{Reason: domain.NoRateNoProviders})
	}

	active := findProvider(providers, settings.ActiveProviderID)
	candidates := orderFromActive(providers, settings.ActiveProviderID)
	now := uc.now()

	var lastErr error
	activeSkippedForQuota := false

	for _, candidate := range candidates {
		tracker, err := uc.loadTracker(ctx, candidate, now)
		if err != nil {
			return nil, err
		}

		if tracker != nil {
			uc.checkQuotaLevels(ctx, tenantID, candidate, *tracker, providers, now)

			if tracker.IsExhausted() {
				slog.Warn("provider quota exhausted, advancing",
					"tenant_id", tenantID,
					"provider", candidate.Name,
					"requests_made", tracker.RequestsMade,
					"quota_limit", tracker.QuotaLimit)
				if active != nil && candidate.ID == active.ID {
					activeSkippedForQuota = true
				}
				lastErr = &domain.NoRateAvailableError{Reason: domain.NoRateAllExhausted}
				continue
			}
		}

		client, err := uc.Factory.Create(candidate)
		if err != nil {
			slog.Error("failed to construct provider client",
				"tenant_id", tenantID,
				"provider", candidate.Name,
				"error", err)
			lastErr = err
			continue
		}

		callCtx, cancel := context.WithTimeout(ctx, uc.ProviderTimeout)
		quote, err := client.FetchRate(callCtx)
		cancel()
		if err != nil {
			// A timed-out or failed call does not count against quota.
			slog.Warn("provider fetch failed, advancing",
				"tenant_id", tenantID,
				"provider", candidate.Name,
				"error", err)
			uc.countFetchFailure(candidate.Name)
			lastErr = err
			continue
		}

		if err := uc.Policy.ValidateAPIRate(quote.Rate, candidate.Name); err != nil {
			slog.Warn("provider returned unusable rate, advancing",
				"tenant_id", tenantID,
				"provider", candidate.Name,
				"rate", quote.Rate)
			uc.countFetchFailure(candidate.Name)
			lastErr = err
			continue
		}

		if tracker != nil {
			// The reservation is a conditional update: it fails when a
			// concurrent acquisition claimed the remaining budget after the
			// tracker was read above.
			reserved, err := uc.QuotaRepo.IncrementUsage(ctx, candidate.ID, tracker.Year, tracker.Month, 1)
			if err != nil {
				return nil, err
			}
			if !reserved {
				slog.Warn("provider quota claimed concurrently, advancing",
					"tenant_id", tenantID,
					"provider", candidate.Name,
					"quota_limit", tracker.QuotaLimit)
				if active != nil && candidate.ID == active.ID {
					activeSkippedForQuota = true
				}
				lastErr = &domain.NoRateAvailableError{Reason: domain.NoRateAllExhausted}
				continue
			}
			uc.setQuotaRemaining(candidate.Name, tracker.RemainingQuota()-1)
		}

		result, err := uc.storeRateResult(ctx, settings, active, candidate, tracker, quote, activeSkippedForQuota)
		if err != nil {
			return nil, err
		}
		uc.observeDuration(domain.SourceAPI, start)
		return result, nil
	}

	return uc.fallbackToCache(ctx, tenantID, lastErr)
}

// loadTracker returns the candidate's quota tracker for the current period,
// creating or resetting it as needed. Unlimited providers carry no tracker.
func (uc *DefaultRateUsecase) loadTracker(ctx context.Context, provider *domain.Provider, now time.Time) (*domain.QuotaTracker, error) {
	if provider.IsUnlimited {
		return nil, nil
	}

	tracker, err := uc.QuotaRepo.GetForProvider(ctx, provider.ID, now.Year(), now.Month())
	if err != nil {
		return nil, err
	}
	if tracker == nil {
		fresh := domain.FreshQuotaTracker(provider.ID, provider.MonthlyQuota, now)
		if err := uc.QuotaRepo.Save(ctx, fresh); err != nil {
			return nil, err
		}
		return &fresh, nil
	}
	if tracker.ShouldReset(now) {
		reset := tracker.Reset(now)
		if err := uc.QuotaRepo.Save(ctx, reset); err != nil {
			return nil, err
		}
		return &reset, nil
	}
	return tracker, nil
}

func (uc *DefaultRateUsecase) checkQuotaLevels(ctx context.Context, tenantID string, provider *domain.Provider, tracker domain.QuotaTracker, ordered []*domain.Provider, now time.Time) {
	remaining := tracker.RemainingQuota()
	uc.setQuotaRemaining(provider.Name, remaining)

	if remaining <= 0 {
		return
	}

	if remaining <= provider.CriticalThreshold {
		next := nextEnabledAfter(ordered, provider.ID)
		if next == nil {
			return
		}
		nextRemaining := next.MonthlyQuota
		if !next.IsUnlimited {
			if nextTracker, err := uc.QuotaRepo.GetForProvider(ctx, next.ID, now.Year(), now.Month()); err == nil && nextTracker != nil && !nextTracker.ShouldReset(now) {
				nextRemaining = nextTracker.RemainingQuota()
			}
		}
		uc.Notifier.SendCriticalQuotaWarning(provider.Name, remaining, next.Name, nextRemaining)
	} else if remaining <= provider.WarningThreshold {
		uc.Notifier.SendQuotaWarning(provider.Name, remaining)
	}
}

// storeRateResult commits a successful, quota-reserved fetch: history
// entry, settings update and the single switch event when the active
// provider changed.
func (uc *DefaultRateUsecase) storeRateResult(
	ctx context.Context,
	settings *domain.RateSettings,
	active, candidate *domain.Provider,
	tracker *domain.QuotaTracker,
	quote *domain.RateQuote,
	activeSkippedForQuota bool) (*domain.RateQuote, error) {

	tenantID := settings.TenantID
	now := uc.now()

	switched := settings.ActiveProviderID == nil || *settings.ActiveProviderID != candidate.ID

	eventType := domain.EventScheduledUpdate
	if switched && active != nil {
		eventType = domain.EventFallback
	}

	providerID := candidate.ID
	observation := &domain.RateObservation{
		TenantID:   tenantID,
		Rate:       quote.Rate,
		ProviderID: &providerID,
		Source:     domain.SourceAPI,
		EventType:  eventType,
		Metadata:   map[string]string{"provider": candidate.Name},
		ObservedAt: quote.ObservedAt,
	}
	if err := uc.appendObservation(ctx, observation); err != nil {
		return nil, err
	}

	if err := uc.SettingsRepo.UpdateCurrentRate(ctx, tenantID, quote.Rate); err != nil {
		return nil, err
	}

	if switched {
		if err := uc.SettingsRepo.UpdateActiveProvider(ctx, tenantID, candidate.ID); err != nil {
			return nil, err
		}

		reason := domain.ReasonFailover
		if activeSkippedForQuota {
			reason = domain.ReasonQuotaExhausted
		} else if active != nil {
			reason = domain.ReasonProviderFailed
		}

		var oldName string
		if active != nil {
			oldName = active.Name
		}
		event := &domain.ProviderSwitchEvent{
			TenantID:        tenantID,
			OldProviderID:   settings.ActiveProviderID,
			NewProviderID:   candidate.ID,
			OldProviderName: oldName,
			NewProviderName: candidate.Name,
			Reason:          reason,
			OccurredAt:      now,
		}
		if err := uc.appendSwitchEvent(ctx, event); err != nil {
			return nil, err
		}
		uc.countSwitch(reason)

		if err := uc.Publisher.PublishProviderSwitched(domain.ProviderSwitchedEvent{
			TenantID:        tenantID,
			OldProviderName: oldName,
			NewProviderName: candidate.Name,
			Reason:          reason,
			OccurredAt:      now,
		}); err != nil {
			slog.Warn("failed to publish provider switch event", "tenant_id", tenantID, "error", err)
		}

		remaining := candidate.MonthlyQuota
		if tracker != nil {
			remaining = tracker.RemainingQuota() - 1
		}
		uc.Notifier.SendProviderSwitched(candidate.Name, remaining)

		slog.Info("switched active rate provider",
			"tenant_id", tenantID,
			"old_provider", oldName,
			"new_provider", candidate.Name,
			"reason", reason)
	}

	if err := uc.Publisher.PublishRateUpdated(domain.RateUpdatedEvent{
		TenantID:     tenantID,
		Rate:         quote.Rate,
		Source:       domain.SourceAPI,
		ProviderName: candidate.Name,
		EventType:    eventType,
		ObservedAt:   quote.ObservedAt,
	}); err != nil {
		slog.Warn("failed to publish rate update event", "tenant_id", tenantID, "error", err)
	}
	uc.countUpdate(tenantID, domain.SourceAPI)

	return quote, nil
}

func findProvider(providers []*domain.Provider, providerID *string) *domain.Provider {
	if providerID == nil {
		return nil
	}
	for _, p := range providers {
		if p.ID == *providerID {
			return p
		}
	}
	return nil
}

// orderFromActive puts the active provider first and keeps the rest in
// priority order. An unknown or unset active id leaves the order untouched.
func orderFromActive(providers []*domain.Provider, activeID *string) []*domain.Provider {
	active := findProvider(providers, activeID)
	if active == nil {
		return providers
	}
	ordered := make([]*domain.Provider, 0, len(providers))
	ordered = append(ordered, active)
	for _, p := range providers {
		if p.ID != active.ID {
			ordered = append(ordered, p)
		}
	}
	return ordered
}

func nextEnabledAfter(ordered []*domain.Provider, providerID string) *domain.Provider {
	for i, p := range ordered {
		if p.ID == providerID && i+1 < len(ordered) {
			return ordered[i+1]
		}
	}
	return nil
}
