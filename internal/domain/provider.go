package domain

import "context"

// Provider is a tenant-visible external rate source. Code identifies the
// wire integration (closed set, validated by the client factory); Priority
// orders the fallback chain, lower first.
type Provider struct {
	ID                string
	TenantID          string
	Name              string
	Code              string
	APIURL            string
	APIKey            string
	RequiresAPIKey    bool
	IsUnlimited       bool
	MonthlyQuota      int
	Priority          int
	Enabled           bool
	WarningThreshold  int
	CriticalThreshold int
}

type ProviderRepository interface {
	CreateProvider(ctx context.Context, provider *Provider) error
	UpdateProvider(ctx context.Context, provider *Provider) error
	DeleteProvider(ctx context.Context, providerID string) error
	GetProviderByID(ctx context.Context, providerID string) (*Provider, error)
	GetProviderByName(ctx context.Context, tenantID, name string) (*Provider, error)
	// GetEnabledOrdered returns the tenant's enabled providers ordered by
	// priority ascending, ties broken by id ascending.
	GetEnabledOrdered(ctx context.Context, tenantID string) ([]*Provider, error)
	GetProviders(ctx context.Context, tenantID string) ([]*Provider, error)
	GetAllProviders(ctx context.Context) ([]*Provider, error)
}
