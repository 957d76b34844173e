package rate

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/niagahub/niaga-rate-service/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func strptr(s string) *string { return &s }

func TestUpdateRate_ManualModeShortCircuits(t *testing.T) {
	env := newTestEnv()
	manual := 16000.0
	env.settings.settings["tenant-1"] = &domain.RateSettings{
		TenantID:   "tenant-1",
		Mode:       domain.ModeManual,
		ManualRate: &manual,
	}
	env.addProvider("prov-a", "primary", 1, 1500)
	client := env.addClient("prov-a", 15000)

	quote, err := env.uc.UpdateRate(context.Background(), "tenant-1")
	require.NoError(t, err)

	assert.Equal(t, 16000.0, quote.Rate)
	assert.Equal(t, domain.SourceManual, quote.Source)
	assert.Zero(t, client.calls, "manual mode must not touch providers")
	assert.Empty(t, env.quota.trackers, "manual mode must not touch quota")

	require.Len(t, env.history.observations, 1)
	assert.Equal(t, domain.EventManualUpdate, env.history.observations[0].EventType)
	assert.Equal(t, 16000.0, env.settings.currentRates["tenant-1"])

	require.Len(t, env.pub.rateEvents, 1)
	assert.Equal(t, domain.SourceManual, env.pub.rateEvents[0].Source)
}

func TestUpdateRate_ManualModeInvalidRate(t *testing.T) {
	env := newTestEnv()
	manual := 9000.0
	env.settings.settings["tenant-1"] = &domain.RateSettings{
		TenantID:   "tenant-1",
		Mode:       domain.ModeManual,
		ManualRate: &manual,
	}

	_, err := env.uc.UpdateRate(context.Background(), "tenant-1")
	var invalid *domain.InvalidManualRateError
	require.ErrorAs(t, err, &invalid)
	assert.Equal(t, domain.ManualRateTooLow, invalid.Reason)
	assert.Empty(t, env.history.observations)
}

func TestUpdateRate_NoSettings(t *testing.T) {
	env := newTestEnv()

	_, err := env.uc.UpdateRate(context.Background(), "unknown-tenant")
	var noRate *domain.NoRateAvailableError
	require.ErrorAs(t, err, &noRate)
	assert.ErrorIs(t, err, domain.ErrSettingsNotFound)
}

func TestUpdateRate_ActiveProviderSucceeds(t *testing.T) {
	env := newTestEnv()
	env.addProvider("prov-a", "primary", 1, 1500)
	env.addProvider("prov-b", "backup", 2, 1000)
	env.setAutoSettings("tenant-1", strptr("prov-a"))
	env.addClient("prov-a", 15432.50)
	backupClient := env.addClient("prov-b", 15000)

	quote, err := env.uc.UpdateRate(context.Background(), "tenant-1")
	require.NoError(t, err)

	assert.Equal(t, 15432.50, quote.Rate)
	assert.Equal(t, domain.SourceAPI, quote.Source)
	assert.Zero(t, backupClient.calls)
	assert.Empty(t, env.switches.events, "no switch when the active provider serves")

	// First call creates the tracker and counts the request.
	tracker := env.quota.trackers[quotaKey("prov-a", 2026, time.August)]
	assert.Equal(t, 1, tracker.RequestsMade)

	require.Len(t, env.history.observations, 1)
	assert.Equal(t, domain.EventScheduledUpdate, env.history.observations[0].EventType)
	assert.Equal(t, "primary", env.history.observations[0].Metadata["provider"])
}

func TestUpdateRate_QuotaExhaustedAdvancesToBackup(t *testing.T) {
	env := newTestEnv()
	env.addProvider("prov-a", "primary", 1, 100)
	env.addProvider("prov-b", "backup", 2, 1000)
	env.addProvider("prov-c", "last", 3, 1000)
	env.setAutoSettings("tenant-1", strptr("prov-a"))
	env.seedQuota("prov-a", 100, 100)

	primaryClient := env.addClient("prov-a", 15100)
	env.addClient("prov-b", 15432.50)
	lastClient := env.addClient("prov-c", 15200)

	quote, err := env.uc.UpdateRate(context.Background(), "tenant-1")
	require.NoError(t, err)

	assert.Equal(t, 15432.50, quote.Rate)
	assert.Zero(t, primaryClient.calls, "exhausted provider must not be called")
	assert.Zero(t, lastClient.calls, "chain stops at the first success")

	// Exhausted primary keeps its count; backup gets exactly one.
	assert.Equal(t, 100, env.quota.trackers[quotaKey("prov-a", 2026, time.August)].RequestsMade)
	assert.Equal(t, 1, env.quota.trackers[quotaKey("prov-b", 2026, time.August)].RequestsMade)

	// Exactly one switch event, attributed to quota exhaustion.
	require.Len(t, env.switches.events, 1)
	event := env.switches.events[0]
	assert.Equal(t, domain.ReasonQuotaExhausted, event.Reason)
	assert.Equal(t, "primary", event.OldProviderName)
	assert.Equal(t, "backup", event.NewProviderName)

	assert.Equal(t, "prov-b", env.settings.activeProviders["tenant-1"])
	require.Len(t, env.pub.switchEvents, 1)
	assert.Equal(t, []string{"backup"}, env.notifier.switches)

	require.Len(t, env.history.observations, 1)
	assert.Equal(t, domain.EventFallback, env.history.observations[0].EventType)
}

func TestUpdateRate_ProviderFailureAdvances(t *testing.T) {
	env := newTestEnv()
	env.addProvider("prov-a", "primary", 1, 1500)
	env.addProvider("prov-b", "backup", 2, 1000)
	env.setAutoSettings("tenant-1", strptr("prov-a"))

	env.addFailingClient("prov-a", errors.New("connection refused"))
	env.addClient("prov-b", 15380)

	quote, err := env.uc.UpdateRate(context.Background(), "tenant-1")
	require.NoError(t, err)
	assert.Equal(t, 15380.0, quote.Rate)

	// Failed call never counts against the primary's quota.
	assert.Equal(t, 0, env.quota.trackers[quotaKey("prov-a", 2026, time.August)].RequestsMade)
	assert.Equal(t, 1, env.quota.trackers[quotaKey("prov-b", 2026, time.August)].RequestsMade)

	require.Len(t, env.switches.events, 1)
	assert.Equal(t, domain.ReasonProviderFailed, env.switches.events[0].Reason)
}

func TestUpdateRate_NoActiveProviderIsFailover(t *testing.T) {
	env := newTestEnv()
	env.addProvider("prov-a", "primary", 1, 1500)
	env.setAutoSettings("tenant-1", nil)
	env.addClient("prov-a", 15300)

	_, err := env.uc.UpdateRate(context.Background(), "tenant-1")
	require.NoError(t, err)

	require.Len(t, env.switches.events, 1)
	event := env.switches.events[0]
	assert.Equal(t, domain.ReasonFailover, event.Reason)
	assert.Empty(t, event.OldProviderName)

	// Adoption of the first provider is not a fallback in history terms.
	require.Len(t, env.history.observations, 1)
	assert.Equal(t, domain.EventScheduledUpdate, env.history.observations[0].EventType)
}

func TestUpdateRate_UnlimitedProviderSkipsQuota(t *testing.T) {
	env := newTestEnv()
	env.addProvider("prov-a", "primary", 1, 0, func(p *domain.Provider) {
		p.IsUnlimited = true
	})
	env.setAutoSettings("tenant-1", strptr("prov-a"))
	env.addClient("prov-a", 15250)

	quote, err := env.uc.UpdateRate(context.Background(), "tenant-1")
	require.NoError(t, err)

	assert.Equal(t, 15250.0, quote.Rate)
	assert.Empty(t, env.quota.trackers, "unlimited providers carry no tracker")
}

func TestUpdateRate_StaleTrackerResetsOnNewMonth(t *testing.T) {
	env := newTestEnv()
	env.addProvider("prov-a", "primary", 1, 1500)
	env.setAutoSettings("tenant-1", strptr("prov-a"))
	env.addClient("prov-a", 15300)

	// Exhausted in July; the August acquisition must reset, not skip.
	julyTracker, err := domain.NewQuotaTracker("prov-a", 1500, 1500, 2026, time.July, nil)
	require.NoError(t, err)
	env.quota.trackers[quotaKey("prov-a", 2026, time.August)] = julyTracker

	quote, err := env.uc.UpdateRate(context.Background(), "tenant-1")
	require.NoError(t, err)
	assert.Equal(t, 15300.0, quote.Rate)

	tracker := env.quota.trackers[quotaKey("prov-a", 2026, time.August)]
	assert.Equal(t, time.August, tracker.Month)
	assert.Equal(t, 1, tracker.RequestsMade)
}

func TestUpdateRate_AllProvidersDownServesCache(t *testing.T) {
	env := newTestEnv()
	env.addProvider("prov-a", "primary", 1, 1500)
	env.setAutoSettings("tenant-1", strptr("prov-a"))
	env.addFailingClient("prov-a", errors.New("timeout"))

	providerID := "prov-a"
	env.history.observations = append(env.history.observations, &domain.RateObservation{
		ID:         "obs-1",
		TenantID:   "tenant-1",
		Rate:       15111,
		ProviderID: &providerID,
		Source:     domain.SourceAPI,
		EventType:  domain.EventScheduledUpdate,
		Metadata:   map[string]string{"provider": "primary"},
		ObservedAt: env.now.AddDate(0, 0, -10),
	})

	quote, err := env.uc.UpdateRate(context.Background(), "tenant-1")
	require.NoError(t, err)

	assert.Equal(t, 15111.0, quote.Rate)
	assert.Equal(t, domain.SourceCached, quote.Source)
	assert.Equal(t, "primary", quote.ProviderName)
	assert.Equal(t, 1, env.notifier.fallbacks)
	assert.Empty(t, env.switches.events, "cache fallback is not a provider switch")
}

func TestUpdateRate_NoProvidersNoCacheIsTerminal(t *testing.T) {
	env := newTestEnv()
	env.setAutoSettings("tenant-1", nil)

	_, err := env.uc.UpdateRate(context.Background(), "tenant-1")
	var noRate *domain.NoRateAvailableError
	require.ErrorAs(t, err, &noRate)
	assert.Equal(t, domain.NoRateNoCachedRate, noRate.Reason)
}

func TestUpdateRate_CacheTooOldIsRefused(t *testing.T) {
	env := newTestEnv()
	env.setAutoSettings("tenant-1", nil)

	env.history.observations = append(env.history.observations, &domain.RateObservation{
		ID:         "obs-1",
		TenantID:   "tenant-1",
		Rate:       15111,
		Source:     domain.SourceAPI,
		EventType:  domain.EventScheduledUpdate,
		ObservedAt: env.now.AddDate(0, 0, -45),
	})

	_, err := env.uc.UpdateRate(context.Background(), "tenant-1")
	var noRate *domain.NoRateAvailableError
	require.ErrorAs(t, err, &noRate)

	var stale *domain.StaleRateError
	assert.True(t, errors.As(noRate.Cause, &stale))
}

func TestUpdateRate_NonPositiveAPIRateAdvances(t *testing.T) {
	env := newTestEnv()
	env.addProvider("prov-a", "primary", 1, 1500)
	env.addProvider("prov-b", "backup", 2, 1000)
	env.setAutoSettings("tenant-1", strptr("prov-a"))

	env.addClient("prov-a", 0)
	env.addClient("prov-b", 15380)

	quote, err := env.uc.UpdateRate(context.Background(), "tenant-1")
	require.NoError(t, err)
	assert.Equal(t, 15380.0, quote.Rate)

	require.Len(t, env.switches.events, 1)
	assert.Equal(t, domain.ReasonProviderFailed, env.switches.events[0].Reason)
}

func TestUpdateRate_CriticalQuotaNotification(t *testing.T) {
	env := newTestEnv()
	env.addProvider("prov-a", "primary", 1, 1500)
	env.addProvider("prov-b", "backup", 2, 1000)
	env.setAutoSettings("tenant-1", strptr("prov-a"))
	env.seedQuota("prov-a", 1490, 1500)
	env.addClient("prov-a", 15300)
	env.addClient("prov-b", 15000)

	_, err := env.uc.UpdateRate(context.Background(), "tenant-1")
	require.NoError(t, err)

	assert.Equal(t, []string{"primary"}, env.notifier.criticals)
	assert.Empty(t, env.notifier.warnings, "critical supersedes warning")
}

func TestSetManualRate(t *testing.T) {
	env := newTestEnv()
	env.settings.settings["tenant-1"] = &domain.RateSettings{TenantID: "tenant-1", Mode: domain.ModeManual}

	require.NoError(t, env.uc.SetManualRate(context.Background(), "tenant-1", 15500))
	assert.Equal(t, 15500.0, env.settings.manualRates["tenant-1"])
	assert.Equal(t, 15500.0, env.settings.currentRates["tenant-1"])
	require.Len(t, env.history.observations, 1)
	assert.Equal(t, domain.SourceManual, env.history.observations[0].Source)

	err := env.uc.SetManualRate(context.Background(), "tenant-1", 9999)
	var invalid *domain.InvalidManualRateError
	require.ErrorAs(t, err, &invalid)
	assert.Equal(t, 15500.0, env.settings.manualRates["tenant-1"], "rejected write must not land")
}

func TestGetCurrentRate(t *testing.T) {
	env := newTestEnv()
	current := 15432.50
	env.settings.settings["tenant-1"] = &domain.RateSettings{
		TenantID:    "tenant-1",
		Mode:        domain.ModeAuto,
		CurrentRate: &current,
		UpdatedAt:   env.now,
	}

	quote, err := env.uc.GetCurrentRate(context.Background(), "tenant-1")
	require.NoError(t, err)
	assert.Equal(t, 15432.50, quote.Rate)
	assert.Equal(t, domain.SourceAPI, quote.Source)
}

func TestGetCurrentRate_FallsBackToHistory(t *testing.T) {
	env := newTestEnv()
	env.settings.settings["tenant-1"] = &domain.RateSettings{TenantID: "tenant-1", Mode: domain.ModeAuto}
	env.history.observations = append(env.history.observations, &domain.RateObservation{
		TenantID:   "tenant-1",
		Rate:       15222,
		Source:     domain.SourceAPI,
		EventType:  domain.EventScheduledUpdate,
		Metadata:   map[string]string{"provider": "primary"},
		ObservedAt: env.now.AddDate(0, 0, -1),
	})

	quote, err := env.uc.GetCurrentRate(context.Background(), "tenant-1")
	require.NoError(t, err)
	assert.Equal(t, 15222.0, quote.Rate)
	assert.Equal(t, domain.SourceCached, quote.Source)
	assert.Equal(t, "primary", quote.ProviderName)
}

func TestGetCurrentRate_NothingKnown(t *testing.T) {
	env := newTestEnv()

	_, err := env.uc.GetCurrentRate(context.Background(), "tenant-1")
	var noRate *domain.NoRateAvailableError
	require.ErrorAs(t, err, &noRate)
	assert.Equal(t, domain.NoRateNoCachedRate, noRate.Reason)
}

func TestTenantIsolation(t *testing.T) {
	env := newTestEnv()
	env.addProvider("prov-a", "primary", 1, 1500)
	env.setAutoSettings("tenant-1", strptr("prov-a"))
	env.addClient("prov-a", 15300)

	manual := 16000.0
	env.settings.settings["tenant-2"] = &domain.RateSettings{
		TenantID:   "tenant-2",
		Mode:       domain.ModeManual,
		ManualRate: &manual,
	}

	_, err := env.uc.UpdateRate(context.Background(), "tenant-1")
	require.NoError(t, err)
	_, err = env.uc.UpdateRate(context.Background(), "tenant-2")
	require.NoError(t, err)

	assert.Equal(t, 15300.0, env.settings.currentRates["tenant-1"])
	assert.Equal(t, 16000.0, env.settings.currentRates["tenant-2"])

	for _, o := range env.history.observations {
		if o.TenantID == "tenant-2" {
			assert.Equal(t, domain.SourceManual, o.Source)
		}
	}
}

// gatedClient holds every FetchRate call until release is closed, so a test
// can line up acquisitions inside the provider call.
type gatedClient struct {
	name    string
	quote   *domain.RateQuote
	entered chan struct{}
	release chan struct{}

	mu    sync.Mutex
	calls int
}

func (c *gatedClient) GetName() string { return c.name }

func (c *gatedClient) FetchRate(context.Context) (*domain.RateQuote, error) {
	c.mu.Lock()
	c.calls++
	c.mu.Unlock()
	c.entered <- struct{}{}
	<-c.release
	copied := *c.quote
	return &copied, nil
}

func TestUpdateRate_ConcurrentAcquisitionsCannotOverrunQuota(t *testing.T) {
	env := newTestEnv()
	env.addProvider("prov-a", "primary", 1, 100)
	env.setAutoSettings("tenant-1", strptr("prov-a"))
	env.seedQuota("prov-a", 99, 100)

	client := &gatedClient{
		name: "primary",
		quote: &domain.RateQuote{
			Rate:       15300,
			ObservedAt: env.now,
			Source:     domain.SourceAPI,
		},
		entered: make(chan struct{}, 2),
		release: make(chan struct{}),
	}
	env.factory.clients["prov-a"] = client

	// Both acquisitions read the tracker at 99/100 and are held inside the
	// provider call before either one records usage.
	results := make(chan error, 2)
	for i := 0; i < 2; i++ {
		go func() {
			_, err := env.uc.UpdateRate(context.Background(), "tenant-1")
			results <- err
		}()
	}
	<-client.entered
	<-client.entered
	close(client.release)
	<-results
	<-results

	tracker, ok := env.quota.trackers[quotaKey("prov-a", env.now.Year(), env.now.Month())]
	require.True(t, ok)
	assert.Equal(t, 100, tracker.RequestsMade, "the last quota unit must be granted exactly once")
	assert.Equal(t, 2, client.calls)

	apiUpdates := 0
	for _, e := range env.pub.rateEvents {
		if e.Source == domain.SourceAPI {
			apiUpdates++
		}
	}
	assert.Equal(t, 1, apiUpdates, "only the acquisition holding the reservation may publish")
}
