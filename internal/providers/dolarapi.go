package providers

import (
	"context"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/juanicaii/investment-tracker/internal/config"
	"github.com/juanicaii/investment-tracker/internal/models"
	"go.uber.org/zap"
)

// DolarAPIClient fetches USD/ARS rates from a DolarAPI-style primary
// endpoint, falling back to a Bluelytics-style endpoint when the
// primary fails for any reason. Consumers never learn which upstream
// supplied the data.
type DolarAPIClient struct {
	client      *resty.Client
	logger      *zap.Logger
	primaryURL  string
	fallbackURL string
}

// ensure DolarAPIClient implements the interface
var _ FXClientInterface = (*DolarAPIClient)(nil)

// NewDolarAPIClient creates a new FX rate client.
func NewDolarAPIClient(cfg *config.FX, logger *zap.Logger) *DolarAPIClient {
	client := resty.New().
		SetTimeout(time.Duration(cfg.TimeoutSeconds) * time.Second)

	return &DolarAPIClient{
		client:      client,
		logger:      logger,
		primaryURL:  cfg.PrimaryURL,
		fallbackURL: cfg.FallbackURL,
	}
}

// dolarAPIRate is one entry of the primary provider's response array.
type dolarAPIRate struct {
	Casa   string  `json:"casa"`
	Compra float64 `json:"compra"`
	Venta  float64 `json:"venta"`
}

// bluelyticsResponse is the fallback provider's response shape.
type bluelyticsResponse struct {
	Oficial bluelyticsRate `json:"oficial"`
	Blue    bluelyticsRate `json:"blue"`
}

type bluelyticsRate struct {
	ValueBuy  float64 `json:"value_buy"`
	ValueSell float64 `json:"value_sell"`
}

// FetchRates returns the current rate per type. If both providers
// fail, the combined error is returned and the caller decides how to
// report it; no further retries happen here.
func (c *DolarAPIClient) FetchRates(ctx context.Context) ([]RateQuote, error) {
	rates, primaryErr := c.fetchPrimary(ctx)
	if primaryErr == nil {
		return rates, nil
	}

	c.logger.Warn("Primary FX provider failed, trying fallback", zap.Error(primaryErr))

	rates, fallbackErr := c.fetchFallback(ctx)
	if fallbackErr == nil {
		return rates, nil
	}

	return nil, fmt.Errorf("both FX providers failed: primary: %v; fallback: %w", primaryErr, fallbackErr)
}

func (c *DolarAPIClient) fetchPrimary(ctx context.Context) ([]RateQuote, error) {
	var result []dolarAPIRate
	resp, err := c.client.R().
		SetContext(ctx).
		SetResult(&result).
		Get(c.primaryURL)

	if err != nil {
		return nil, fmt.Errorf("primary FX request failed: %w", err)
	}
	if resp.IsError() {
		return nil, fmt.Errorf("primary FX request failed with status %s", resp.Status())
	}
	if len(result) == 0 {
		return nil, fmt.Errorf("primary FX response contained no rates")
	}

	rates := make([]RateQuote, 0, len(result))
	for _, r := range result {
		rates = append(rates, RateQuote{Type: r.Casa, Buy: r.Compra, Sell: r.Venta})
	}
	return rates, nil
}

func (c *DolarAPIClient) fetchFallback(ctx context.Context) ([]RateQuote, error) {
	var result bluelyticsResponse
	resp, err := c.client.R().
		SetContext(ctx).
		SetResult(&result).
		Get(c.fallbackURL)

	if err != nil {
		return nil, fmt.Errorf("fallback FX request failed: %w", err)
	}
	if resp.IsError() {
		return nil, fmt.Errorf("fallback FX request failed with status %s", resp.Status())
	}
	if result.Oficial.ValueSell == 0 && result.Blue.ValueSell == 0 {
		return nil, fmt.Errorf("fallback FX response contained no rates")
	}

	// Normalize to the primary provider's shape.
	return []RateQuote{
		{Type: models.RateOficial, Buy: result.Oficial.ValueBuy, Sell: result.Oficial.ValueSell},
		{Type: models.RateBlue, Buy: result.Blue.ValueBuy, Sell: result.Blue.ValueSell},
	}, nil
}
