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

// OpenERAPIClient talks to the keyless open.er-api.com endpoint.
type OpenERAPIClient struct {
	client *http.Client
	apiURL string
}

type openERAPIResponse struct {
	Result             string             `json:"result"`
	TimeLastUpdateUnix int64              `json:"time_last_update_unix"`
	Rates              map[string]float64 `json:"rates"`
}

func NewOpenERAPIClient(apiURL string, timeout time.Duration) *OpenERAPIClient {
	return &OpenERAPIClient{
		client: &http.Client{Timeout: timeout},
		apiURL: apiURL,
	}
}

func (c *OpenERAPIClient) GetName() string {
	return "open-er-api"
}

func (c *OpenERAPIClient) FetchRate(ctx context.Context) (*domain.RateQuote, error) {
	url := fmt.Sprintf("%s/latest/%s", c.apiURL, baseCurrency)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to get rate from open-er-api: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("open-er-api returned status: %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	var parsed openERAPIResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, fmt.Errorf("failed to parse open-er-api response: %w", err)
	}

	if parsed.Result != "success" {
		return nil, fmt.Errorf("open-er-api returned result: %s", parsed.Result)
	}

	rate, ok := parsed.Rates[quoteCurrency]
	if !ok {
		return nil, fmt.Errorf("open-er-api response missing %s rate", quoteCurrency)
	}
	if rate <= 0 {
		return nil, fmt.Errorf("open-er-api returned non-positive rate: %f", rate)
	}

	observedAt := time.Now()
	if parsed.TimeLastUpdateUnix > 0 {
		observedAt = time.Unix(parsed.TimeLastUpdateUnix, 0)
	}

	return &domain.RateQuote{
		Rate:         rate,
		ObservedAt:   observedAt,
		Source:       domain.SourceAPI,
		ProviderName: c.GetName(),
	}, nil
}
