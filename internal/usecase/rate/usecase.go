package rate

import (
	"context"
	"time"

	"github.com/jaevor/go-nanoid"
	"github.com/niagahub/niaga-rate-service/internal/domain"
	"github.com/niagahub/niaga-rate-service/internal/infrastructure/metrics"
	"github.com/niagahub/niaga-rate-service/internal/usecase"
)

type RateUsecase interface {
	// UpdateRate answers "what is the current rate for this tenant",
	// acquiring a fresh one according to the tenant's mode.
	UpdateRate(ctx context.Context, tenantID string) (*domain.RateQuote, error)
	SetManualRate(ctx context.Context, tenantID string, rate float64) error
	GetCurrentRate(ctx context.Context, tenantID string) (*domain.RateQuote, error)
	RunScheduledUpdates(ctx context.Context) error
}

type DefaultRateUsecase struct {
	SettingsRepo domain.RateSettingsRepository
	ProviderRepo domain.ProviderRepository
	QuotaRepo    domain.QuotaRepository
	HistoryRepo  domain.RateHistoryRepository
	SwitchRepo   domain.ProviderSwitchRepository
	Factory      domain.ClientFactory
	Policy       *usecase.RateValidationPolicy
	Publisher    domain.EventPublisher
	Notifier     domain.QuotaNotifier
	Metrics      *metrics.RateMetrics

	Workers         int
	ProviderTimeout time.Duration
	TenantTimeout   time.Duration
	BatchInterval   time.Duration
	RunOnStart      bool

	now func() time.Time
}

func NewDefaultRateUsecase(
	settingsRepo domain.RateSettingsRepository,
	providerRepo domain.ProviderRepository,
	quotaRepo domain.QuotaRepository,
	historyRepo domain.RateHistoryRepository,
	switchRepo domain.ProviderSwitchRepository,
	factory domain.ClientFactory,
	policy *usecase.RateValidationPolicy,
	publisher domain.EventPublisher,
	notifier domain.QuotaNotifier,
	rateMetrics *metrics.RateMetrics) *DefaultRateUsecase {

	return &DefaultRateUsecase{
		SettingsRepo:    settingsRepo,
		ProviderRepo:    providerRepo,
		QuotaRepo:       quotaRepo,
		HistoryRepo:     historyRepo,
		SwitchRepo:      switchRepo,
		Factory:         factory,
		Policy:          policy,
		Publisher:       publisher,
		Notifier:        notifier,
		Metrics:         rateMetrics,
		Workers:         4,
		ProviderTimeout: 10 * time.Second,
		TenantTimeout:   30 * time.Second,
		BatchInterval:   time.Hour,
		RunOnStart:      true,
		now:             time.Now,
	}
}

func (uc *DefaultRateUsecase) UpdateRate(ctx context.Context, tenantID string) (*domain.RateQuote, error) {
	settings, err := uc.SettingsRepo.GetForTenant(ctx, tenantID)
	if err != nil {
		return nil, err
	}
	if settings == nil {
		return nil, &domain.NoRateAvailableError{Reason: domain.NoRateNoProviders, Cause: domain.ErrSettingsNotFound}
	}

	if settings.Mode == domain.ModeManual {
		return uc.publishManualRate(ctx, settings)
	}
	return uc.fetchFromProviders(ctx, settings)
}

func (uc *DefaultRateUsecase) appendObservation(ctx context.Context, observation *domain.RateObservation) error {
	idGenerator, err := nanoid.Standard(15)
	if err != nil {
		return err
	}
	observation.ID = idGenerator()
	return uc.HistoryRepo.Append(ctx, observation)
}

func (uc *DefaultRateUsecase) appendSwitchEvent(ctx context.Context, event *domain.ProviderSwitchEvent) error {
	idGenerator, err := nanoid.Standard(15)
	if err != nil {
		return err
	}
	event.ID = idGenerator()
	return uc.SwitchRepo.Append(ctx, event)
}

// Metrics are optional so tests can wire the usecase without touching the
// global prometheus registry.

func (uc *DefaultRateUsecase) countUpdate(tenantID string, source domain.RateSource) {
	if uc.Metrics != nil {
		uc.Metrics.RateUpdatesTotal.WithLabelValues(tenantID, string(source)).Inc()
	}
}

func (uc *DefaultRateUsecase) countAcquisitionError(tenantID string, reason domain.NoRateReason) {
	if uc.Metrics != nil {
		uc.Metrics.AcquisitionErrors.WithLabelValues(tenantID, string(reason)).Inc()
	}
}

func (uc *DefaultRateUsecase) countFetchFailure(providerName string) {
	if uc.Metrics != nil {
		uc.Metrics.ProviderFetchFailures.WithLabelValues(providerName).Inc()
	}
}

func (uc *DefaultRateUsecase) countSwitch(reason domain.SwitchReason) {
	if uc.Metrics != nil {
		uc.Metrics.ProviderSwitchesTotal.WithLabelValues(string(reason)).Inc()
	}
}

func (uc *DefaultRateUsecase) countFallback(tenantID string) {
	if uc.Metrics != nil {
		uc.Metrics.CacheFallbacksTotal.WithLabelValues(tenantID).Inc()
	}
}

func (uc *DefaultRateUsecase) setQuotaRemaining(providerName string, remaining int) {
	if uc.Metrics != nil {
		uc.Metrics.QuotaRemaining.WithLabelValues(providerName).Set(float64(remaining))
	}
}

func (uc *DefaultRateUsecase) observeDuration(source domain.RateSource, start time.Time) {
	if uc.Metrics != nil {
		uc.Metrics.AcquisitionDuration.WithLabelValues(string(source)).Observe(uc.now().Sub(start).Seconds())
	}
}
