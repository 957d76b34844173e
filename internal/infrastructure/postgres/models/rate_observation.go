package models

import "time"

type RateObservationModel struct {
	ID         string  `gorm:"primaryKey"`
	TenantID   string  `gorm:"type:uuid;not null;index:idx_observation_tenant_observed"`
	Rate       float64 `gorm:"type:numeric(20,8);not null"`
	ProviderID *string `gorm:"type:uuid"`
	Source     string  `gorm:"not null"`
	EventType  string  `gorm:"not null"`
	Metadata   string  `gorm:"type:jsonb"`
	ObservedAt time.Time `gorm:"not null;index:idx_observation_tenant_observed,sort:desc"`
	CreatedAt  time.Time
}

func (RateObservationModel) TableName() string {
	return "exchange_rate_history"
}
