package provider

type ProviderOutput struct {
	ID                string `json:"id"`
	TenantID          string `json:"tenant_id"`
	Name              string `json:"name"`
	Code              string `json:"code"`
	APIURL            string `json:"api_url"`
	RequiresAPIKey    bool   `json:"requires_api_key"`
	HasAPIKey         bool   `json:"has_api_key"`
	IsUnlimited       bool   `json:"is_unlimited"`
	MonthlyQuota      int    `json:"monthly_quota"`
	Priority          int    `json:"priority"`
	Enabled           bool   `json:"enabled"`
	WarningThreshold  int    `json:"warning_threshold"`
	CriticalThreshold int    `json:"critical_threshold"`
	RemainingQuota    int    `json:"remaining_quota"`
}
