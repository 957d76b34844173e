package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// RateMetrics holds all acquisition engine metrics.
type RateMetrics struct {
	// Acquisition outcomes
	RateUpdatesTotal     prometheus.CounterVec
	AcquisitionErrors    prometheus.CounterVec
	AcquisitionDuration  prometheus.HistogramVec

	// Provider behaviour
	ProviderFetchFailures prometheus.CounterVec
	ProviderSwitchesTotal prometheus.CounterVec
	QuotaRemaining        prometheus.GaugeVec

	// Degradation
	CacheFallbacksTotal prometheus.CounterVec
}

func NewRateMetrics() *RateMetrics {
	return &RateMetrics{
		RateUpdatesTotal: *promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "rate_updates_total",
				Help: "Published rate updates by source",
			},
			[]string{"tenant_id", "source"},
		),

		AcquisitionErrors: *promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "rate_acquisition_errors_total",
				Help: "Terminal acquisition failures by reason",
			},
			[]string{"tenant_id", "reason"},
		),

		AcquisitionDuration: *promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "rate_acquisition_duration_seconds",
				Help:    "Time spent acquiring a rate per tenant",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"source"},
		),

		ProviderFetchFailures: *promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "rate_provider_fetch_failures_total",
				Help: "Provider client call failures",
			},
			[]string{"provider"},
		),

		ProviderSwitchesTotal: *promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "rate_provider_switches_total",
				Help: "Provider failover events by reason",
			},
			[]string{"reason"},
		),

		QuotaRemaining: *promauto.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "rate_provider_quota_remaining",
				Help: "Remaining monthly quota per provider",
			},
			[]string{"provider"},
		),

		CacheFallbacksTotal: *promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "rate_cache_fallbacks_total",
				Help: "Acquisitions served from the cached last-known-good rate",
			},
			[]string{"tenant_id"},
		),
	}
}
