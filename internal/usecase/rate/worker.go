package rate

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

// RunScheduledUpdates acquires a rate for every tenant with the daily
// update enabled, regardless of their preferred time.
func (uc *DefaultRateUsecase) RunScheduledUpdates(ctx context.Context) error {
	tenants, err := uc.SettingsRepo.ListAutoUpdateTenants(ctx)
	if err != nil {
		return err
	}
	return uc.runTenantBatch(ctx, tenants)
}

// RunDueUpdates acquires rates for the tenants whose configured update time
// falls within the given hour of day.
func (uc *DefaultRateUsecase) RunDueUpdates(ctx context.Context, hour int) error {
	tenants, err := uc.SettingsRepo.ListAutoUpdateTenantsDueAt(ctx, hour)
	if err != nil {
		return err
	}
	return uc.runTenantBatch(ctx, tenants)
}

// runTenantBatch processes tenants with a bounded worker pool; one tenant's
// failure never aborts the batch.
func (uc *DefaultRateUsecase) runTenantBatch(ctx context.Context, tenants []string) error {
	if len(tenants) == 0 {
		return ctx.Err()
	}

	workers := uc.Workers
	if workers <= 0 {
		workers = 4
	}
	tenantTimeout := uc.TenantTimeout
	if tenantTimeout <= 0 {
		tenantTimeout = 30 * time.Second
	}

	sem := make(chan struct{}, workers)
	var wg sync.WaitGroup

	for _, tenantID := range tenants {
		if ctx.Err() != nil {
			break
		}

		wg.Add(1)
		sem <- struct{}{}
		go func(tenantID string) {
			defer wg.Done()
			defer func() { <-sem }()

			tenantCtx, cancel := context.WithTimeout(ctx, tenantTimeout)
			defer cancel()

			quote, err := uc.UpdateRate(tenantCtx, tenantID)
			if err != nil {
				slog.Error("scheduled rate update failed",
					"tenant_id", tenantID,
					"error", err)
				return
			}
			slog.Info("scheduled rate update completed",
				"tenant_id", tenantID,
				"rate", quote.Rate,
				"source", quote.Source,
				"provider", quote.ProviderName)
		}(tenantID)
	}

	wg.Wait()
	return ctx.Err()
}

// StartDailyWorker ticks on BatchInterval and updates the tenants whose
// preferred time falls in the hour containing the tick, so each tenant runs
// once per day at its configured hour. With RunOnStart the full batch also
// runs once at startup, preferred times ignored. Started from main as a
// goroutine; returns when the context is cancelled.
func (uc *DefaultRateUsecase) StartDailyWorker(ctx context.Context) {
	interval := uc.BatchInterval
	if interval <= 0 {
		interval = time.Hour
	}

	if uc.RunOnStart {
		if err := uc.RunScheduledUpdates(ctx); err != nil {
			slog.Error("startup rate update batch failed", "error", err)
		}
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}

		if err := uc.RunDueUpdates(ctx, uc.now().Hour()); err != nil {
			slog.Error("scheduled rate update batch failed", "error", err)
		}
	}
}
