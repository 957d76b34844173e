package domain

import (
	"context"
	"time"
)

// RateQuote is one acquired rate with its provenance.
type RateQuote struct {
	Rate         float64
	ObservedAt   time.Time
	Source       RateSource
	ProviderName string
}

// RateClient is the uniform contract for one external provider integration.
// FetchRate returns a generic error on any transport, auth or parse failure;
// callers never inspect provider-specific error shapes.
type RateClient interface {
	GetName() string
	FetchRate(ctx context.Context) (*RateQuote, error)
}

// ClientFactory resolves a provider row to its wire client. Construction
// fails fast on unknown codes and on missing required API keys.
type ClientFactory interface {
	Create(provider *Provider) (RateClient, error)
}
