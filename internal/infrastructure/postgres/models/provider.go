package models

import "time"

type ProviderModel struct {
	ID                string `gorm:"primaryKey;type:uuid"`
	TenantID          string `gorm:"type:uuid;not null;uniqueIndex:idx_tenant_provider_name;index:idx_provider_tenant"`
	Name              string `gorm:"not null;uniqueIndex:idx_tenant_provider_name"`
	Code              string `gorm:"not null"`
	APIURL            string `gorm:"not null"`
	APIKey            string
	RequiresAPIKey    bool `gorm:"not null;default:false"`
	IsUnlimited       bool `gorm:"not null;default:false"`
	MonthlyQuota      int  `gorm:"not null;default:0"`
	Priority          int  `gorm:"not null;default:0"`
	Enabled           bool `gorm:"not null;default:true"`
	WarningThreshold  int  `gorm:"not null;default:0"`
	CriticalThreshold int  `gorm:"not null;default:0"`
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

func (ProviderModel) TableName() string {
	return "exchange_rate_providers"
}
