package rateapi

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/niagahub/niaga-rate-service/internal/domain"
)

const (
	baseCurrency  = "USD"
	quoteCurrency = "IDR"
)

// ExchangeRateAPIClient talks to v6.exchangerate-api.com. The API key is
// part of the URL path, per their wire protocol.
type ExchangeRateAPIClient struct {
	client *http.Client
	apiURL string
	apiKey string
}

type exchangeRateAPIResponse struct {
	Result             string  `json:"result"`
	ErrorType          string  `json:"error-type"`
	ConversionRate     float64 `json:"conversion_rate"`
	TimeLastUpdateUnix int64   `json:"time_last_update_unix"`
}

func NewExchangeRateAPIClient(apiURL, apiKey string, timeout time.Duration) *ExchangeRateAPIClient {
	return &ExchangeRateAPIClient{
		client: &http.Client{Timeout: timeout},
		apiURL: apiURL,
		apiKey: apiKey,
	}
}

func (c *ExchangeRateAPIClient) GetName() string {
	return "exchangerate-api"
}

func (c *ExchangeRateAPIClient) FetchRate(ctx context.Context) (*domain.RateQuote, error) {
	url := fmt.Sprintf("%s/%s/pair/%s/%s", c.apiURL, c.apiKey, baseCurrency, quoteCurrency)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to get rate from exchangerate-api: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("exchangerate-api returned status: %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	var parsed exchangeRateAPIResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, fmt.Errorf("failed to parse exchangerate-api response: %w", err)
	}

	if parsed.Result != "success" {
		return nil, fmt.Errorf("exchangerate-api returned error: %s", parsed.ErrorType)
	}
	if parsed.ConversionRate <= 0 {
		return nil, fmt.Errorf("exchangerate-api returned non-positive rate: %f", parsed.ConversionRate)
	}

	observedAt := time.Now()
	if parsed.TimeLastUpdateUnix > 0 {
		observedAt = time.Unix(parsed.TimeLastUpdateUnix, 0)
	}

	return &domain.RateQuote{
		Rate:         parsed.ConversionRate,
		ObservedAt:   observedAt,
		Source:       domain.SourceAPI,
		ProviderName: c.GetName(),
	}, nil
}
