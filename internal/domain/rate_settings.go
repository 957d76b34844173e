package domain

import (
	"context"
	"time"
)

type RateMode string

const (
	ModeManual RateMode = "manual"
	ModeAuto   RateMode = "auto"
)

// RateSettings is the single row per tenant that owns the published rate.
// CurrentRate is the only value downstream pricing code reads; it is mutated
// by the acquisition usecase and by explicit tenant configuration edits.
type RateSettings struct {
	TenantID          string
	Mode              RateMode
	ManualRate        *float64
	ActiveProviderID  *string
	CurrentRate       *float64
	AutoUpdateEnabled bool
	AutoUpdateTime    string
	UpdatedAt         time.Time
}

type RateSettingsRepository interface {
	// GetForTenant returns nil without error when the tenant has no
	// settings row yet.
	GetForTenant(ctx context.Context, tenantID string) (*RateSettings, error)
	Save(ctx context.Context, settings *RateSettings) error
	UpdateCurrentRate(ctx context.Context, tenantID string, rate float64) error
	UpdateManualRate(ctx context.Context, tenantID string, rate float64) error
	UpdateActiveProvider(ctx context.Context, tenantID, providerID string) error
	// ListAutoUpdateTenants returns ids of tenants in auto mode with the
	// daily update enabled.
	ListAutoUpdateTenants(ctx context.Context) ([]string, error)
	// ListAutoUpdateTenantsDueAt narrows ListAutoUpdateTenants to tenants
	// whose AutoUpdateTime falls within the given hour of day [0,23].
	ListAutoUpdateTenantsDueAt(ctx context.Context, hour int) ([]string, error)
}
