package providers

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/juanicaii/investment-tracker/internal/config"
	"go.uber.org/zap"
)

const simplePricePath = "/api/v3/simple/price"

// CoingeckoClient fetches USD prices for crypto assets. All ids go
// out in a single batched request.
type CoingeckoClient struct {
	client *resty.Client
	logger *zap.Logger
}

// ensure CoingeckoClient implements the interface
var _ CryptoClientInterface = (*CoingeckoClient)(nil)

// NewCoingeckoClient creates a new crypto quote client.
func NewCoingeckoClient(cfg *config.Coingecko, logger *zap.Logger) *CoingeckoClient {
	client := resty.New().
		SetBaseURL(cfg.BaseURL).
		SetTimeout(time.Duration(cfg.TimeoutSeconds) * time.Second)

	return &CoingeckoClient{client: client, logger: logger}
}

// FetchPrices returns a map of provider id to USD price. Ids the
// provider does not know are absent from the result. An empty input
// returns an empty map without touching the network.
func (c *CoingeckoClient) FetchPrices(ctx context.Context, ids []string) (map[string]float64, error) {
	if len(ids) == 0 {
		return map[string]float64{}, nil
	}

	var result map[string]map[string]float64
	resp, err := c.client.R().
		SetContext(ctx).
		SetResult(&result).
		SetQueryParam("ids", strings.Join(ids, ",")).
		SetQueryParam("vs_currencies", "usd").
		Get(simplePricePath)

	if err != nil {
		return nil, fmt.Errorf("failed to fetch crypto prices: %w", err)
	}
	if resp.IsError() {
		return nil, fmt.Errorf("crypto price request failed with status %s", resp.Status())
	}

	prices := make(map[string]float64, len(result))
	for id, quote := range result {
		usd, ok := quote["usd"]
		if !ok {
			c.logger.Warn("No USD price in response for id", zap.String("id", id))
			continue
		}
		prices[id] = usd
	}

	return prices, nil
}
