package domain

import "time"

type RateUpdatedEvent struct {
	TenantID     string        `json:"tenant_id"`
	Rate         float64       `json:"rate"`
	Source       RateSource    `json:"source"`
	ProviderName string        `json:"provider_name,omitempty"`
	EventType    RateEventType `json:"event_type"`
	ObservedAt   time.Time     `json:"observed_at"`
}

type ProviderSwitchedEvent struct {
	TenantID        string       `json:"tenant_id"`
	OldProviderName string       `json:"old_provider_name,omitempty"`
	NewProviderName string       `json:"new_provider_name"`
	Reason          SwitchReason `json:"reason"`
	OccurredAt      time.Time    `json:"occurred_at"`
}

type EventPublisher interface {
	PublishRateUpdated(event RateUpdatedEvent) error
	PublishProviderSwitched(event ProviderSwitchedEvent) error
}
