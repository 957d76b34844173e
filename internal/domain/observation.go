package domain

import (
	"context"
	"time"
)

type RateSource string

const (
	SourceManual RateSource = "manual"
	SourceAPI    RateSource = "api"
	SourceCached RateSource = "cached"
)

type RateEventType string

const (
	EventScheduledUpdate RateEventType = "scheduled_update"
	EventManualUpdate    RateEventType = "manual_update"
	EventFallback        RateEventType = "fallback"
)

// RateObservation is one append-only history entry. The most recent row per
// tenant doubles as the cache of last-known-good rate.
type RateObservation struct {
	ID         string
	TenantID   string
	Rate       float64
	ProviderID *string
	Source     RateSource
	EventType  RateEventType
	Metadata   map[string]string
	ObservedAt time.Time
}

type RateHistoryRepository interface {
	Append(ctx context.Context, observation *RateObservation) error
	// GetLatest returns the most recent observation for the tenant, or nil
	// when no rate has ever been recorded.
	GetLatest(ctx context.Context, tenantID string) (*RateObservation, error)
}
