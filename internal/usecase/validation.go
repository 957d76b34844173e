package usecase

import (
	"log/slog"
	"time"

	"github.com/niagahub/niaga-rate-service/internal/domain"
)

const (
	DefaultMinRate         = 10000.0
	DefaultMaxRate         = 25000.0
	DefaultMaxAgeDays      = 7
	DefaultWarnAgeDays     = 3
	DefaultMaxCacheAgeDays = 30

	// API rates may legitimately diverge from the configured convenience
	// band, so sanity checks use a 20% margin and only warn.
	apiBandMargin = 0.20
)

// RateValidationPolicy holds the pure validation rules for manual rates,
// staleness and API sanity bounds. Zero fields fall back to the defaults.
type RateValidationPolicy struct {
	MinRate         float64
	MaxRate         float64
	MaxAgeDays      int
	WarnAgeDays     int
	MaxCacheAgeDays int

	now func() time.Time
}

func NewRateValidationPolicy(minRate, maxRate float64, maxAgeDays, warnAgeDays, maxCacheAgeDays int) *RateValidationPolicy {
	p := &RateValidationPolicy{
		MinRate:         minRate,
		MaxRate:         maxRate,
		MaxAgeDays:      maxAgeDays,
		WarnAgeDays:     warnAgeDays,
		MaxCacheAgeDays: maxCacheAgeDays,
		now:             time.Now,
	}
	if p.MinRate <= 0 {
		p.MinRate = DefaultMinRate
	}
	if p.MaxRate <= 0 {
		p.MaxRate = DefaultMaxRate
	}
	if p.MaxAgeDays <= 0 {
		p.MaxAgeDays = DefaultMaxAgeDays
	}
	if p.WarnAgeDays <= 0 {
		p.WarnAgeDays = DefaultWarnAgeDays
	}
	if p.MaxCacheAgeDays <= 0 {
		p.MaxCacheAgeDays = DefaultMaxCacheAgeDays
	}
	return p
}

// ValidateManualRate is a hard gate: rates outside the configured band are
// rejected outright, never clamped.
func (p *RateValidationPolicy) ValidateManualRate(rate *float64, required bool) error {
	if rate == nil {
		if required {
			return &domain.InvalidManualRateError{Reason: domain.ManualRateRequired, Min: p.MinRate, Max: p.MaxRate}
		}
		return nil
	}
	if *rate <= 0 {
		return &domain.InvalidManualRateError{Reason: domain.ManualRateNotPositive, Rate: *rate, Min: p.MinRate, Max: p.MaxRate}
	}
	if *rate < p.MinRate {
		return &domain.InvalidManualRateError{Reason: domain.ManualRateTooLow, Rate: *rate, Min: p.MinRate, Max: p.MaxRate}
	}
	if *rate > p.MaxRate {
		return &domain.InvalidManualRateError{Reason: domain.ManualRateTooHigh, Rate: *rate, Min: p.MinRate, Max: p.MaxRate}
	}
	return nil
}

// ValidateRateAge rejects authoritative rates older than maxAgeDays.
// Pass 0 to use the configured default.
func (p *RateValidationPolicy) ValidateRateAge(observedAt time.Time, maxAgeDays int) error {
	if maxAgeDays <= 0 {
		maxAgeDays = p.MaxAgeDays
	}
	daysOld := p.daysOld(observedAt)
	if daysOld > maxAgeDays {
		return &domain.StaleRateError{ObservedAt: observedAt, DaysOld: daysOld, MaxAgeDays: maxAgeDays}
	}
	return nil
}

// ValidateRateAvailability checks that a usable rate value exists. Staleness
// of cached rates is logged, not rejected, until the hard cache ceiling;
// non-cached sources are held to the strict age limit.
func (p *RateValidationPolicy) ValidateRateAvailability(rate *float64, observedAt *time.Time, source domain.RateSource) error {
	if rate == nil || observedAt == nil {
		return &domain.NoRateAvailableError{Reason: domain.NoRateNoCachedRate}
	}
	if source == domain.SourceCached {
		daysOld := p.daysOld(*observedAt)
		if daysOld > p.MaxCacheAgeDays {
			return &domain.NoRateAvailableError{
				Reason: domain.NoRateNoCachedRate,
				Cause:  &domain.StaleRateError{ObservedAt: *observedAt, DaysOld: daysOld, MaxAgeDays: p.MaxCacheAgeDays},
			}
		}
		if daysOld > p.MaxAgeDays {
			slog.Warn("serving stale cached rate",
				"rate", *rate,
				"observed_at", observedAt.Format(time.RFC3339),
				"days_old", daysOld)
		}
		return nil
	}
	return p.ValidateRateAge(*observedAt, 0)
}

// ValidateAPIRate fails only on non-positive values. Values outside the
// loosened band are logged as warnings and accepted.
func (p *RateValidationPolicy) ValidateAPIRate(rate float64, providerName string) error {
	if rate <= 0 {
		return &domain.NoRateAvailableError{
			Reason: domain.NoRateAPIFailure,
			Cause:  &domain.InvalidManualRateError{Reason: domain.ManualRateNotPositive, Rate: rate},
		}
	}
	low := p.MinRate * (1 - apiBandMargin)
	high := p.MaxRate * (1 + apiBandMargin)
	if rate < low || rate > high {
		slog.Warn("provider rate outside expected band",
			"provider", providerName,
			"rate", rate,
			"band_low", low,
			"band_high", high)
	}
	return nil
}

// ShouldWarnAboutStaleness reports whether the observation is old enough to
// surface a warning. Pass 0 to use the configured threshold.
func (p *RateValidationPolicy) ShouldWarnAboutStaleness(observedAt time.Time, thresholdDays int) bool {
	if thresholdDays <= 0 {
		thresholdDays = p.WarnAgeDays
	}
	return p.daysOld(observedAt) > thresholdDays
}

func (p *RateValidationPolicy) daysOld(observedAt time.Time) int {
	return int(p.now().Sub(observedAt).Hours() / 24)
}
