package rate

import (
	"context"
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/niagahub/niaga-rate-service/internal/domain"
	"github.com/niagahub/niaga-rate-service/internal/usecase"
)

type fakeSettingsRepo struct {
	mu              sync.Mutex
	settings        map[string]*domain.RateSettings
	autoTenants     []string
	currentRates    map[string]float64
	manualRates     map[string]float64
	activeProviders map[string]string
}

func newFakeSettingsRepo() *fakeSettingsRepo {
	return &fakeSettingsRepo{
		settings:        make(map[string]*domain.RateSettings),
		currentRates:    make(map[string]float64),
		manualRates:     make(map[string]float64),
		activeProviders: make(map[string]string),
	}
}

func (r *fakeSettingsRepo) GetForTenant(_ context.Context, tenantID string) (*domain.RateSettings, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.settings[tenantID]
	if !ok {
		return nil, nil
	}
	copied := *s
	return &copied, nil
}

func (r *fakeSettingsRepo) Save(_ context.Context, settings *domain.RateSettings) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	copied := *settings
	r.settings[settings.TenantID] = &copied
	return nil
}

func (r *fakeSettingsRepo) UpdateCurrentRate(_ context.Context, tenantID string, rate float64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.currentRates[tenantID] = rate
	if s, ok := r.settings[tenantID]; ok {
		s.CurrentRate = &rate
	}
	return nil
}

func (r *fakeSettingsRepo) UpdateManualRate(_ context.Context, tenantID string, rate float64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.manualRates[tenantID] = rate
	if s, ok := r.settings[tenantID]; ok {
		s.ManualRate = &rate
	}
	return nil
}

func (r *fakeSettingsRepo) UpdateActiveProvider(_ context.Context, tenantID, providerID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.activeProviders[tenantID] = providerID
	if s, ok := r.settings[tenantID]; ok {
		s.ActiveProviderID = &providerID
	}
	return nil
}

func (r *fakeSettingsRepo) ListAutoUpdateTenants(_ context.Context) ([]string, error) {
	return r.autoTenants, nil
}

func (r *fakeSettingsRepo) ListAutoUpdateTenantsDueAt(_ context.Context, hour int) ([]string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []string
	for _, tenantID := range r.autoTenants {
		s, ok := r.settings[tenantID]
		if !ok || len(s.AutoUpdateTime) < 2 {
			continue
		}
		h, err := strconv.Atoi(s.AutoUpdateTime[:2])
		if err == nil && h == hour {
			out = append(out, tenantID)
		}
	}
	return out, nil
}

type fakeProviderRepo struct {
	providers []*domain.Provider
}

func (r *fakeProviderRepo) CreateProvider(_ context.Context, p *domain.Provider) error {
	r.providers = append(r.providers, p)
	return nil
}

func (r *fakeProviderRepo) UpdateProvider(context.Context, *domain.Provider) error { return nil }
func (r *fakeProviderRepo) DeleteProvider(context.Context, string) error           { return nil }

func (r *fakeProviderRepo) GetProviderByID(_ context.Context, id string) (*domain.Provider, error) {
	for _, p := range r.providers {
		if p.ID == id {
			return p, nil
		}
	}
	return nil, nil
}

func (r *fakeProviderRepo) GetProviderByName(_ context.Context, tenantID, name string) (*domain.Provider, error) {
	for _, p := range r.providers {
		if p.TenantID == tenantID && p.Name == name {
			return p, nil
		}
	}
	return nil, nil
}

func (r *fakeProviderRepo) GetEnabledOrdered(_ context.Context, tenantID string) ([]*domain.Provider, error) {
	var out []*domain.Provider
	for _, p := range r.providers {
		if p.TenantID == tenantID && p.Enabled {
			out = append(out, p)
		}
	}
	return out, nil
}

func (r *fakeProviderRepo) GetProviders(_ context.Context, tenantID string) ([]*domain.Provider, error) {
	var out []*domain.Provider
	for _, p := range r.providers {
		if p.TenantID == tenantID {
			out = append(out, p)
		}
	}
	return out, nil
}

func (r *fakeProviderRepo) GetAllProviders(context.Context) ([]*domain.Provider, error) {
	return r.providers, nil
}

type fakeQuotaRepo struct {
	mu       sync.Mutex
	trackers map[string]domain.QuotaTracker
}

func newFakeQuotaRepo() *fakeQuotaRepo {
	return &fakeQuotaRepo{trackers: make(map[string]domain.QuotaTracker)}
}

func quotaKey(providerID string, year int, month time.Month) string {
	return fmt.Sprintf("%s/%d/%d", providerID, year, int(month))
}

func (r *fakeQuotaRepo) GetForProvider(_ context.Context, providerID string, year int, month time.Month) (*domain.QuotaTracker, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	tracker, ok := r.trackers[quotaKey(providerID, year, month)]
	if !ok {
		return nil, nil
	}
	return &tracker, nil
}

func (r *fakeQuotaRepo) Save(_ context.Context, tracker domain.QuotaTracker) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.trackers[quotaKey(tracker.ProviderID, tracker.Year, tracker.Month)] = tracker
	return nil
}

func (r *fakeQuotaRepo) IncrementUsage(_ context.Context, providerID string, year int, month time.Month, count int) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	key := quotaKey(providerID, year, month)
	tracker, ok := r.trackers[key]
	if !ok {
		return false, fmt.Errorf("no tracker for %s", key)
	}
	if tracker.RequestsMade+count > tracker.QuotaLimit {
		return false, nil
	}
	tracker.RequestsMade += count
	r.trackers[key] = tracker
	return true, nil
}

type fakeHistoryRepo struct {
	mu           sync.Mutex
	observations []*domain.RateObservation
}

func (r *fakeHistoryRepo) Append(_ context.Context, observation *domain.RateObservation) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	copied := *observation
	r.observations = append(r.observations, &copied)
	return nil
}

func (r *fakeHistoryRepo) GetLatest(_ context.Context, tenantID string) (*domain.RateObservation, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var latest *domain.RateObservation
	for _, o := range r.observations {
		if o.TenantID != tenantID {
			continue
		}
		if latest == nil || o.ObservedAt.After(latest.ObservedAt) {
			latest = o
		}
	}
	return latest, nil
}

type fakeSwitchRepo struct {
	mu     sync.Mutex
	events []*domain.ProviderSwitchEvent
}

func (r *fakeSwitchRepo) Append(_ context.Context, event *domain.ProviderSwitchEvent) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	copied := *event
	r.events = append(r.events, &copied)
	return nil
}

func (r *fakeSwitchRepo) GetForTenant(_ context.Context, tenantID string, _ int) ([]*domain.ProviderSwitchEvent, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*domain.ProviderSwitchEvent
	for _, e := range r.events {
		if e.TenantID == tenantID {
			out = append(out, e)
		}
	}
	return out, nil
}

type fakeClient struct {
	name  string
	quote *domain.RateQuote
	err   error
	calls int
}

func (c *fakeClient) GetName() string { return c.name }

func (c *fakeClient) FetchRate(context.Context) (*domain.RateQuote, error) {
	c.calls++
	if c.err != nil {
		return nil, c.err
	}
	copied := *c.quote
	return &copied, nil
}

type fakeFactory struct {
	clients map[string]domain.RateClient
	errs    map[string]error
}

func newFakeFactory() *fakeFactory {
	return &fakeFactory{clients: make(map[string]domain.RateClient), errs: make(map[string]error)}
}

func (f *fakeFactory) Create(provider *domain.Provider) (domain.RateClient, error) {
	if err, ok := f.errs[provider.ID]; ok {
		return nil, err
	}
	client, ok := f.clients[provider.ID]
	if !ok {
		return nil, fmt.Errorf("no client configured for %s", provider.ID)
	}
	return client, nil
}

type fakePublisher struct {
	mu           sync.Mutex
	rateEvents   []domain.RateUpdatedEvent
	switchEvents []domain.ProviderSwitchedEvent
}

func (p *fakePublisher) PublishRateUpdated(event domain.RateUpdatedEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.rateEvents = append(p.rateEvents, event)
	return nil
}

func (p *fakePublisher) PublishProviderSwitched(event domain.ProviderSwitchedEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.switchEvents = append(p.switchEvents, event)
	return nil
}

type fakeNotifier struct {
	mu        sync.Mutex
	warnings  []string
	criticals []string
	switches  []string
	fallbacks int
}

func (n *fakeNotifier) SendQuotaWarning(providerName string, _ int) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.warnings = append(n.warnings, providerName)
}

func (n *fakeNotifier) SendCriticalQuotaWarning(providerName string, _ int, _ string, _ int) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.criticals = append(n.criticals, providerName)
}

func (n *fakeNotifier) SendProviderSwitched(newProviderName string, _ int) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.switches = append(n.switches, newProviderName)
}

func (n *fakeNotifier) SendFallbackNotification(_ float64, _ time.Time, _ bool) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.fallbacks++
}

type testEnv struct {
	uc       *DefaultRateUsecase
	settings *fakeSettingsRepo
	provider *fakeProviderRepo
	quota    *fakeQuotaRepo
	history  *fakeHistoryRepo
	switches *fakeSwitchRepo
	factory  *fakeFactory
	pub      *fakePublisher
	notifier *fakeNotifier
	now      time.Time
}

func newTestEnv() *testEnv {
	env := &testEnv{
		settings: newFakeSettingsRepo(),
		provider: &fakeProviderRepo{},
		quota:    newFakeQuotaRepo(),
		history:  &fakeHistoryRepo{},
		switches: &fakeSwitchRepo{},
		factory:  newFakeFactory(),
		pub:      &fakePublisher{},
		notifier: &fakeNotifier{},
		now:      time.Date(2026, time.August, 31, 6, 0, 0, 0, time.UTC),
	}

	policy := usecase.NewRateValidationPolicy(0, 0, 0, 0, 0)
	env.uc = NewDefaultRateUsecase(
		env.settings,
		env.provider,
		env.quota,
		env.history,
		env.switches,
		env.factory,
		policy,
		env.pub,
		env.notifier,
		nil,
	)
	env.uc.now = func() time.Time { return env.now }
	return env
}

func (e *testEnv) addProvider(id, name string, priority, monthlyQuota int, opts ...func(*domain.Provider)) *domain.Provider {
	p := &domain.Provider{
		ID:                id,
		TenantID:          "tenant-1",
		Name:              name,
		Code:              "exchangerate-api",
		APIURL:            "https://example.test",
		MonthlyQuota:      monthlyQuota,
		Priority:          priority,
		Enabled:           true,
		WarningThreshold:  100,
		CriticalThreshold: 20,
	}
	for _, opt := range opts {
		opt(p)
	}
	e.provider.providers = append(e.provider.providers, p)
	return p
}

func (e *testEnv) addClient(providerID string, rate float64) *fakeClient {
	client := &fakeClient{
		name: providerID,
		quote: &domain.RateQuote{
			Rate:       rate,
			ObservedAt: e.now,
			Source:     domain.SourceAPI,
		},
	}
	e.factory.clients[providerID] = client
	return client
}

func (e *testEnv) addFailingClient(providerID string, err error) *fakeClient {
	client := &fakeClient{name: providerID, err: err}
	e.factory.clients[providerID] = client
	return client
}

func (e *testEnv) setAutoSettings(tenantID string, activeProviderID *string) {
	e.settings.settings[tenantID] = &domain.RateSettings{
		TenantID:          tenantID,
		Mode:              domain.ModeAuto,
		ActiveProviderID:  activeProviderID,
		AutoUpdateEnabled: true,
		AutoUpdateTime:    "06:00",
	}
}

func (e *testEnv) seedQuota(providerID string, used, limit int) {
	tracker, err := domain.NewQuotaTracker(providerID, used, limit, e.now.Year(), e.now.Month(), nil)
	if err != nil {
		panic(err)
	}
	e.quota.trackers[quotaKey(providerID, e.now.Year(), e.now.Month())] = tracker
}
