package notifier

import "time"

type AlertLevel string

const (
	LevelWarning  AlertLevel = "warning"
	LevelCritical AlertLevel = "critical"
	LevelInfo     AlertLevel = "info"
)

type QuotaAlertPayload struct {
	Event            string     `json:"event"`
	Level            AlertLevel `json:"level"`
	ProviderName     string     `json:"provider_name"`
	Remaining        int        `json:"remaining"`
	NextProviderName string     `json:"next_provider_name,omitempty"`
	NextRemaining    int        `json:"next_remaining,omitempty"`
	SentAt           time.Time  `json:"sent_at"`
}

type FallbackAlertPayload struct {
	Event      string     `json:"event"`
	Level      AlertLevel `json:"level"`
	Rate       float64    `json:"rate"`
	ObservedAt time.Time  `json:"observed_at"`
	Stale      bool       `json:"stale"`
	SentAt     time.Time  `json:"sent_at"`
}
