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

// FrankfurterClient talks to the keyless api.frankfurter.app ECB feed.
type FrankfurterClient struct {
	client *http.Client
	apiURL string
}

type frankfurterResponse struct {
	Base  string             `json:"base"`
	Date  string             `json:"date"`
	Rates map[string]float64 `json:"rates"`
}

func NewFrankfurterClient(apiURL string, timeout time.Duration) *FrankfurterClient {
	return &FrankfurterClient{
		client: &http.Client{Timeout: timeout},
		apiURL: apiURL,
	}
}

func (c *FrankfurterClient) GetName() string {
	return "frankfurter"
}

func (c *FrankfurterClient) FetchRate(ctx context.Context) (*domain.RateQuote, error) {
	url := fmt.Sprintf("%s/latest?from=%s&to=%s", c.apiURL, baseCurrency, quoteCurrency)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to get rate from frankfurter: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("frankfurter returned status: %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	var parsed frankfurterResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, fmt.Errorf("failed to parse frankfurter response: %w", err)
	}

	rate, ok := parsed.Rates[quoteCurrency]
	if !ok {
		return nil, fmt.Errorf("frankfurter response missing %s rate", quoteCurrency)
	}
	if rate <= 0 {
		return nil, fmt.Errorf("frankfurter returned non-positive rate: %f", rate)
	}

	// The feed publishes a date, not a timestamp. Parse it when present so
	// weekend quotes carry their real observation day.
	observedAt := time.Now()
	if parsed.Date != "" {
		if parsedDate, err := time.Parse("2006-01-02", parsed.Date); err == nil {
			observedAt = parsedDate
		}
	}

	return &domain.RateQuote{
		Rate:         rate,
		ObservedAt:   observedAt,
		Source:       domain.SourceAPI,
		ProviderName: c.GetName(),
	}, nil
}
