package domain

import (
	"context"
	"fmt"
	"time"
)

const (
	minQuotaYear = 2020
	maxQuotaYear = 2100
)

// QuotaTracker counts API requests made against one provider within one
// calendar month. It is a value object: IncrementUsage and Reset return a
// new tracker instead of mutating the receiver.
type QuotaTracker struct {
	ProviderID   string
	RequestsMade int
	QuotaLimit   int
	Year         int
	Month        time.Month
	LastResetAt  *time.Time
}

func NewQuotaTracker(providerID string, requestsMade, quotaLimit, year int, month time.Month, lastResetAt *time.Time) (QuotaTracker, error) {
	if requestsMade < 0 {
		return QuotaTracker{}, fmt.Errorf("%w: requests made must be non-negative, got %d", ErrInvalidArgument, requestsMade)
	}
	if quotaLimit <= 0 {
		return QuotaTracker{}, fmt.Errorf("%w: quota limit must be positive, got %d", ErrInvalidArgument, quotaLimit)
	}
	if year < minQuotaYear || year > maxQuotaYear {
		return QuotaTracker{}, fmt.Errorf("%w: year %d outside [%d, %d]", ErrInvalidArgument, year, minQuotaYear, maxQuotaYear)
	}
	if month < time.January || month > time.December {
		return QuotaTracker{}, fmt.Errorf("%w: month %d outside [1, 12]", ErrInvalidArgument, int(month))
	}
	return QuotaTracker{
		ProviderID:   providerID,
		RequestsMade: requestsMade,
		QuotaLimit:   quotaLimit,
		Year:         year,
		Month:        month,
		LastResetAt:  lastResetAt,
	}, nil
}

// FreshQuotaTracker returns a tracker for the period containing now with no
// usage recorded yet.
func FreshQuotaTracker(providerID string, quotaLimit int, now time.Time) QuotaTracker {
	resetAt := now
	return QuotaTracker{
		ProviderID:   providerID,
		RequestsMade: 0,
		QuotaLimit:   quotaLimit,
		Year:         now.Year(),
		Month:        now.Month(),
		LastResetAt:  &resetAt,
	}
}

// IncrementUsage returns a copy of the tracker with count more requests
// recorded for the same period. Negative counts are rejected.
func (t QuotaTracker) IncrementUsage(count int) (QuotaTracker, error) {
	if count < 0 {
		return QuotaTracker{}, fmt.Errorf("%w: increment count must be non-negative, got %d", ErrInvalidArgument, count)
	}
	t.RequestsMade += count
	return t, nil
}

// Reset returns a tracker for the period containing now with zero usage and
// a fresh LastResetAt. The quota limit carries over unchanged.
func (t QuotaTracker) Reset(now time.Time) QuotaTracker {
	resetAt := now
	t.RequestsMade = 0
	t.Year = now.Year()
	t.Month = now.Month()
	t.LastResetAt = &resetAt
	return t
}

// ShouldReset reports whether the tracker belongs to a calendar month other
// than the one containing now. Callers must Reset such a tracker before use.
func (t QuotaTracker) ShouldReset(now time.Time) bool {
	return t.Year != now.Year() || t.Month != now.Month()
}

func (t QuotaTracker) RemainingQuota() int {
	remaining := t.QuotaLimit - t.RequestsMade
	if remaining < 0 {
		return 0
	}
	return remaining
}

func (t QuotaTracker) IsExhausted() bool {
	return t.RemainingQuota() <= 0
}

func (t QuotaTracker) CanMakeRequest() bool {
	return !t.IsExhausted()
}

// QuotaRepository persists quota trackers keyed by (provider, year, month).
type QuotaRepository interface {
	// GetForProvider returns the tracker for the given period, or nil when
	// no usage has been recorded yet.
	GetForProvider(ctx context.Context, providerID string, year int, month time.Month) (*QuotaTracker, error)
	Save(ctx context.Context, tracker QuotaTracker) error
	// IncrementUsage records count requests in one conditional atomic
	// update. False means the period's budget could not absorb the count
	// because a concurrent acquisition exhausted it after the tracker was
	// last read; callers must treat the provider as exhausted.
	IncrementUsage(ctx context.Context, providerID string, year int, month time.Month, count int) (bool, error)
}
