package domain

import (
	"errors"
	"fmt"
	"time"
)

var (
	ErrInvalidArgument  = errors.New("invalid argument")
	ErrUnknownProvider  = errors.New("unknown rate provider")
	ErrSettingsNotFound = errors.New("rate settings not found for tenant")
)

type ManualRateReason string

const (
	ManualRateRequired    ManualRateReason = "required"
	ManualRateNotPositive ManualRateReason = "not_positive"
	ManualRateTooLow      ManualRateReason = "too_low"
	ManualRateTooHigh     ManualRateReason = "too_high"
)

// InvalidManualRateError rejects a manual rate write. The rate is never
// clamped or corrected; the caller sees which bound was violated.
type InvalidManualRateError struct {
	Reason ManualRateReason
	Rate   float64
	Min    float64
	Max    float64
}

func (e *InvalidManualRateError) Error() string {
	switch e.Reason {
	case ManualRateRequired:
		return "manual rate is required in manual mode"
	case ManualRateNotPositive:
		return fmt.Sprintf("manual rate must be positive, got %.4f", e.Rate)
	case ManualRateTooLow:
		return fmt.Sprintf("manual rate %.4f is below the minimum of %.4f", e.Rate, e.Min)
	case ManualRateTooHigh:
		return fmt.Sprintf("manual rate %.4f is above the maximum of %.4f", e.Rate, e.Max)
	}
	return fmt.Sprintf("invalid manual rate %.4f", e.Rate)
}

type NoRateReason string

const (
	NoRateNoProviders  NoRateReason = "no_providers"
	NoRateAllExhausted NoRateReason = "all_providers_exhausted"
	NoRateNoCachedRate NoRateReason = "no_cached_rate"
	NoRateAPIFailure   NoRateReason = "api_failure"
)

// NoRateAvailableError is terminal: it is returned only when no usable rate
// exists by any means, including the cache of last resort.
type NoRateAvailableError struct {
	Reason NoRateReason
	Cause  error
}

func (e *NoRateAvailableError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("no rate available (%s): %v", e.Reason, e.Cause)
	}
	return fmt.Sprintf("no rate available (%s)", e.Reason)
}

func (e *NoRateAvailableError) Unwrap() error {
	return e.Cause
}

// StaleRateError marks an authoritative rate older than the allowed age.
// Cached rates past the warning threshold are logged instead of rejected.
type StaleRateError struct {
	ObservedAt time.Time
	DaysOld    int
	MaxAgeDays int
}

func (e *StaleRateError) Error() string {
	return fmt.Sprintf("rate observed at %s is %d days old, exceeds %d day limit",
		e.ObservedAt.Format(time.RFC3339), e.DaysOld, e.MaxAgeDays)
}
