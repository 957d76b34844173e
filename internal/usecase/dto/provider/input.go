package provider

type CreateProviderInput struct {
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

type UpdateProviderInput struct {
	ProviderID        string
	Name              *string
	APIURL            *string
	APIKey            *string
	MonthlyQuota      *int
	Priority          *int
	Enabled           *bool
	WarningThreshold  *int
	CriticalThreshold *int
}
