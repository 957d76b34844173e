package domain

import "time"

// QuotaNotifier fans quota and fallback warnings out to operators.
// Implementations must not block the acquisition path.
type QuotaNotifier interface {
	SendQuotaWarning(providerName string, remaining int)
	SendCriticalQuotaWarning(providerName string, remaining int, nextProviderName string, nextRemaining int)
	SendProviderSwitched(newProviderName string, remaining int)
	SendFallbackNotification(rate float64, observedAt time.Time, stale bool)
}
