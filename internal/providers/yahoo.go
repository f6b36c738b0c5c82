package providers

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/juanicaii/investment-tracker/internal/config"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

const chartPath = "/v8/finance/chart/%s"

// YahooClient fetches daily equity quotes from a Yahoo-style chart
// endpoint. The endpoint rate-limits hard, so symbols are fetched
// strictly one at a time behind a client-side limiter, and a
// rate-limited or timed-out request is retried with an escalating
// backoff before the symbol is given up on. One bad symbol never
// aborts the batch.
type YahooClient struct {
	client     *resty.Client
	logger     *zap.Logger
	limiter    *rate.Limiter
	maxRetries int
	backoff    time.Duration
	sleep      func(ctx context.Context, d time.Duration) error
}

// ensure YahooClient implements the interface
var _ EquityClientInterface = (*YahooClient)(nil)

// NewYahooClient creates a new equity quote client.
func NewYahooClient(cfg *config.Yahoo, logger *zap.Logger) *YahooClient {
	client := resty.New().
		SetBaseURL(cfg.BaseURL).
		SetTimeout(time.Duration(cfg.TimeoutSeconds)*time.Second).
		SetHeader("User-Agent", "investment-tracker/1.0")

	// rate.Limit is requests per second.
	limiter := rate.NewLimiter(rate.Limit(cfg.RateLimit), cfg.RateLimitBurst)

	return &YahooClient{
		client:     client,
		logger:     logger,
		limiter:    limiter,
		maxRetries: cfg.MaxRetries,
		backoff:    time.Duration(cfg.BackoffSeconds) * time.Second,
		sleep:      sleepContext,
	}
}

func sleepContext(ctx context.Context, d time.Duration) error {
	select {
	case <-time.After(d):
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// chartResponse is the subset of the chart endpoint payload we read.
type chartResponse struct {
	Chart struct {
		Result []struct {
			Meta struct {
				Currency           string  `json:"currency"`
				RegularMarketPrice float64 `json:"regularMarketPrice"`
				ChartPreviousClose float64 `json:"chartPreviousClose"`
				PreviousClose      float64 `json:"previousClose"`
			} `json:"meta"`
		} `json:"result"`
		Error any `json:"error"`
	} `json:"chart"`
}

// FetchPrices fetches the latest price for each symbol, sequentially.
// Symbols that fail after all retries are simply absent from the
// returned map; the detail slice records every symbol's outcome.
func (c *YahooClient) FetchPrices(ctx context.Context, symbols []string) (map[string]float64, []FetchDetail) {
	prices := make(map[string]float64, len(symbols))
	details := make([]FetchDetail, 0, len(symbols))

	for _, symbol := range symbols {
		price, attempts, err := c.fetchOne(ctx, symbol)
		detail := FetchDetail{Symbol: symbol, Attempts: attempts}
		if err != nil {
			detail.Error = err.Error()
			c.logger.Warn("Giving up on symbol",
				zap.String("symbol", symbol),
				zap.Int("attempts", attempts),
				zap.Error(err),
			)
		} else {
			detail.Price = price
			prices[symbol] = price
		}
		details = append(details, detail)
	}

	return prices, details
}

// fetchOne fetches a single symbol with the retry policy: attempt n
// waits n times the base backoff before retrying, up to maxRetries
// retries.
func (c *YahooClient) fetchOne(ctx context.Context, symbol string) (float64, int, error) {
	var lastErr error

	for attempt := 1; attempt <= c.maxRetries+1; attempt++ {
		// Wait for the rate limiter before every request, retries
		// included.
		if err := c.limiter.Wait(ctx); err != nil {
			return 0, attempt, fmt.Errorf("rate limiter wait failed: %w", err)
		}

		price, retryable, err := c.doFetch(ctx, symbol)
		if err == nil {
			return price, attempt, nil
		}
		lastErr = err
		if !retryable {
			return 0, attempt, err
		}

		if attempt <= c.maxRetries {
			wait := time.Duration(attempt) * c.backoff
			c.logger.Warn("Request failed, retrying...",
				zap.String("symbol", symbol),
				zap.Int("attempt", attempt),
				zap.Duration("retry_after", wait),
				zap.Error(err),
			)
			if err := c.sleep(ctx, wait); err != nil {
				return 0, attempt, err
			}
		}
	}

	return 0, c.maxRetries + 1, fmt.Errorf("request failed after %d attempts: %w", c.maxRetries+1, lastErr)
}

// doFetch performs one request. The second return value says whether
// the failure is worth retrying: rate limits, timeouts, network
// errors and server errors are; a well-formed response with no price
// is not.
func (c *YahooClient) doFetch(ctx context.Context, symbol string) (float64, bool, error) {
	var result chartResponse
	resp, err := c.client.R().
		SetContext(ctx).
		SetResult(&result).
		SetQueryParam("interval", "1d").
		SetQueryParam("range", "1d").
		Get(fmt.Sprintf(chartPath, symbol))

	if err != nil {
		// Timeouts and connection errors land here.
		return 0, true, fmt.Errorf("request failed: %w", err)
	}

	if resp.StatusCode() == http.StatusTooManyRequests || strings.Contains(resp.String(), "Too Many Requests") {
		return 0, true, fmt.Errorf("rate limited (status %d)", resp.StatusCode())
	}
	if resp.IsError() {
		return 0, resp.StatusCode() >= 500, fmt.Errorf("request failed with status %s", resp.Status())
	}

	if len(result.Chart.Result) == 0 {
		return 0, false, fmt.Errorf("no chart result for symbol %s", symbol)
	}

	meta := result.Chart.Result[0].Meta
	price := meta.RegularMarketPrice
	if price <= 0 {
		price = meta.ChartPreviousClose
	}
	if price <= 0 {
		price = meta.PreviousClose
	}
	if price <= 0 {
		// Missing price is "no data", never zero.
		return 0, false, fmt.Errorf("no price in response for symbol %s", symbol)
	}

	return price, false, nil
}
