package domain

import (
	"context"
	"time"
)

type SwitchReason string

const (
	ReasonQuotaExhausted SwitchReason = "quota_exhausted"
	ReasonProviderFailed SwitchReason = "provider_failed"
	ReasonFailover       SwitchReason = "failover"
)

// ProviderSwitchEvent records one provider-to-provider failover for audit.
type ProviderSwitchEvent struct {
	ID              string
	TenantID        string
	OldProviderID   *string
	NewProviderID   string
	OldProviderName string
	NewProviderName string
	Reason          SwitchReason
	OccurredAt      time.Time
}

type ProviderSwitchRepository interface {
	Append(ctx context.Context, event *ProviderSwitchEvent) error
	GetForTenant(ctx context.Context, tenantID string, limit int) ([]*ProviderSwitchEvent, error)
}
