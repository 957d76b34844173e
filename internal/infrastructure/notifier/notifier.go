package notifier

import (
	"bytes"
	"encoding/json"
	"log"
	"net/http"
	"time"
)

// CallbackNotifier posts alerts to an operator webhook. Sends run in
// their own goroutine so the acquisition path never waits on the hook.
type CallbackNotifier struct {
	callbackURL string
	client      *http.Client
}

func NewCallbackNotifier(callbackURL string, timeout time.Duration) *CallbackNotifier {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &CallbackNotifier{
		callbackURL: callbackURL,
		client:      &http.Client{Timeout: timeout},
	}
}

func (n *CallbackNotifier) SendQuotaWarning(providerName string, remaining int) {
	n.send(QuotaAlertPayload{
		Event:        "quota_warning",
		Level:        LevelWarning,
		ProviderName: providerName,
		Remaining:    remaining,
		SentAt:       time.Now(),
	})
}

func (n *CallbackNotifier) SendCriticalQuotaWarning(providerName string, remaining int, nextProviderName string, nextRemaining int) {
	n.send(QuotaAlertPayload{
		Event:            "quota_critical",
		Level:            LevelCritical,
		ProviderName:     providerName,
		Remaining:        remaining,
		NextProviderName: nextProviderName,
		NextRemaining:    nextRemaining,
		SentAt:           time.Now(),
	})
}

func (n *CallbackNotifier) SendProviderSwitched(newProviderName string, remaining int) {
	n.send(QuotaAlertPayload{
		Event:        "provider_switched",
		Level:        LevelInfo,
		ProviderName: newProviderName,
		Remaining:    remaining,
		SentAt:       time.Now(),
	})
}

func (n *CallbackNotifier) SendFallbackNotification(rate float64, observedAt time.Time, stale bool) {
	level := LevelWarning
	if stale {
		level = LevelCritical
	}
	n.send(FallbackAlertPayload{
		Event:      "cache_fallback",
		Level:      level,
		Rate:       rate,
		ObservedAt: observedAt,
		Stale:      stale,
		SentAt:     time.Now(),
	})
}

func (n *CallbackNotifier) send(payload any) {
	if n.callbackURL == "" {
		return
	}

	go func() {
		body, err := json.Marshal(payload)
		if err != nil {
			log.Printf("Failed to marshal alert: %v\n", err)
			return
		}

		req, err := http.NewRequest("POST", n.callbackURL, bytes.NewBuffer(body))
		if err != nil {
			log.Printf("Failed to create alert request: %v\n", err)
			return
		}

		req.Header.Set("Content-Type", "application/json")

		resp, err := n.client.Do(req)
		if err != nil {
			log.Printf("Alert callback failed: %v\n", err)
			return
		}
		defer resp.Body.Close()

		if resp.StatusCode < 200 || resp.StatusCode >= 300 {
			log.Printf("Alert callback returned status %d", resp.StatusCode)
		}
	}()
}
