package pricesource

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"net/http"
	"strings"
	"time"

	"fuelmeter/internal/domain"
)

// HTTPDoer defines the http.Client interface subset the client needs.
type HTTPDoer interface {
	Do(*http.Request) (*http.Response, error)
}

// Client fetches prices from the HTTP price source.
type Client struct {
	baseURL string
	client  HTTPDoer
}

// NewClient builds a price source client for the given base URL.
// A nil doer falls back to an http.Client with the given timeout.
func NewClient(baseURL string, timeout time.Duration, doer HTTPDoer) *Client {
	if doer == nil {
		doer = &http.Client{Timeout: timeout}
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  doer,
	}
}

// priceResponse is the wire format of the price source.
type priceResponse struct {
	Success     bool                          `json:"success"`
	Data        map[string]map[string]float64 `json:"data"`
	LastUpdated string                        `json:"last_updated"`
}

// FetchPrices performs the "fetch current prices" operation and normalizes
// the payload into a snapshot. Any transport, decode or shape problem is an
// error; recovery is the caller's business.
func (c *Client) FetchPrices(ctx context.Context) (*domain.PriceSnapshot, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/v1/prices", nil)
	if err != nil {
		return nil, fmt.Errorf("build price request: %w", err)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch prices: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("price source returned status %d", resp.StatusCode)
	}

	var payload priceResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("decode price payload: %w", err)
	}

	return normalize(payload)
}

// normalize converts the wire payload into a domain snapshot. Unknown fuel
// keys are dropped; malformed prices fail the whole payload.
func normalize(payload priceResponse) (*domain.PriceSnapshot, error) {
	if !payload.Success {
		return nil, fmt.Errorf("price source reported failure")
	}
	if len(payload.Data) == 0 {
		return nil, fmt.Errorf("price payload has no supplier data")
	}

	table := make(domain.PriceTable, len(payload.Data))
	for supplier, fuels := range payload.Data {
		prices := make(map[domain.FuelType]float64, len(fuels))
		for rawFuel, price := range fuels {
			fuel, ok := domain.ParseFuelType(rawFuel)
			if !ok {
				continue
			}
			if price <= 0 || math.IsNaN(price) || math.IsInf(price, 0) {
				return nil, fmt.Errorf("malformed price %v for %s/%s", price, supplier, rawFuel)
			}
			prices[fuel] = price
		}
		if len(prices) > 0 {
			table[supplier] = prices
		}
	}
	if len(table) == 0 {
		return nil, fmt.Errorf("price payload has no recognizable fuel entries")
	}

	// A missing or unparsable timestamp is tolerated; the cache stamps the
	// snapshot with its own clock.
	updatedAt, err := time.Parse(time.RFC3339, payload.LastUpdated)
	if err != nil {
		updatedAt = time.Time{}
	}

	return &domain.PriceSnapshot{
		Prices:     table,
		UpdatedAt:  updatedAt,
		Provenance: domain.ProvenanceFetched,
	}, nil
}
