package models

import "time"

type QuotaModel struct {
	ProviderID   string `gorm:"primaryKey;type:uuid"`
	Year         int    `gorm:"primaryKey"`
	Month        int    `gorm:"primaryKey"`
	RequestsMade int    `gorm:"not null;default:0"`
	QuotaLimit   int    `gorm:"not null"`
	LastResetAt  *time.Time
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

func (QuotaModel) TableName() string {
	return "api_quota_tracking"
}
