package models

import "time"

type RateSettingModel struct {
	TenantID          string   `gorm:"primaryKey;type:uuid"`
	Mode              string   `gorm:"not null;default:manual"`
	ManualRate        *float64 `gorm:"type:numeric(20,8)"`
	ActiveProviderID  *string  `gorm:"type:uuid"`
	CurrentRate       *float64 `gorm:"type:numeric(20,8)"`
	AutoUpdateEnabled bool     `gorm:"not null;default:false"`
	AutoUpdateTime    string   `gorm:"not null;default:'06:00'"`
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

func (RateSettingModel) TableName() string {
	return "exchange_rate_settings"
}
