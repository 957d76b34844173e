package rateapi

import (
	"fmt"
	"time"

	"github.com/niagahub/niaga-rate-service/internal/domain"
)

const (
	CodeExchangeRateAPI = "exchangerate-api"
	CodeFrankfurter     = "frankfurter"
	CodeOpenERAPI       = "open-er-api"

	defaultClientTimeout = 10 * time.Second
)

// ProviderClientFactory maps provider codes to wire clients. It holds no
// state and no cache; clients are constructed on demand.
type ProviderClientFactory struct {
	timeout time.Duration
}

func NewProviderClientFactory(timeout time.Duration) *ProviderClientFactory {
	if timeout <= 0 {
		timeout = defaultClientTimeout
	}
	return &ProviderClientFactory{timeout: timeout}
}

func (f *ProviderClientFactory) Create(provider *domain.Provider) (domain.RateClient, error) {
	if provider.RequiresAPIKey && provider.APIKey == "" {
		return nil, fmt.Errorf("%w: provider %q requires an api key and none is configured", domain.ErrInvalidArgument, provider.Name)
	}

	switch provider.Code {
	case CodeExchangeRateAPI:
		return NewExchangeRateAPIClient(provider.APIURL, provider.APIKey, f.timeout), nil
	case CodeFrankfurter:
		return NewFrankfurterClient(provider.APIURL, f.timeout), nil
	case CodeOpenERAPI:
		return NewOpenERAPIClient(provider.APIURL, f.timeout), nil
	default:
		return nil, fmt.Errorf("%w: %q", domain.ErrUnknownProvider, provider.Code)
	}
}

// KnownCodes lists the closed set of supported integrations.
func KnownCodes() []string {
	return []string{CodeExchangeRateAPI, CodeFrankfurter, CodeOpenERAPI}
}

// ValidateCatalog constructs a client for every provider so misconfigured
// rows fail at startup instead of at acquisition time.
func (f *ProviderClientFactory) ValidateCatalog(providers []*domain.Provider) error {
	for _, provider := range providers {
		if _, err := f.Create(provider); err != nil {
			return fmt.Errorf("provider %s (tenant %s): %w", provider.Name, provider.TenantID, err)
		}
	}
	return nil
}
