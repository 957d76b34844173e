package models

import "time"

type SwitchEventModel struct {
	ID              string  `gorm:"primaryKey"`
	TenantID        string  `gorm:"type:uuid;not null;index:idx_switch_tenant_occurred"`
	OldProviderID   *string `gorm:"type:uuid"`
	NewProviderID   string  `gorm:"type:uuid;not null"`
	OldProviderName string
	NewProviderName string    `gorm:"not null"`
	Reason          string    `gorm:"not null"`
	OccurredAt      time.Time `gorm:"not null;index:idx_switch_tenant_occurred,sort:desc"`
	CreatedAt       time.Time
}

func (SwitchEventModel) TableName() string {
	return "provider_switch_events"
}
