package providers

import "context"

// EquityClientInterface defines the contract for the equity quote
// provider. The returned map only contains symbols that produced a
// usable price; failed symbols are absent, never zero.
type EquityClientInterface interface {
	FetchPrices(ctx context.Context, symbols []string) (map[string]float64, []FetchDetail)
}

// CryptoClientInterface defines the contract for the crypto quote
// provider. Prices are in USD.
type CryptoClientInterface interface {
	FetchPrices(ctx context.Context, ids []string) (map[string]float64, error)
}

// FXClientInterface defines the contract for the USD/ARS rate
// provider. Implementations may consult more than one upstream, but
// callers always see the same normalized shape.
type FXClientInterface interface {
	FetchRates(ctx context.Context) ([]RateQuote, error)
}

// RateQuote is one FX rate type with its buy/sell pair, normalized
// across providers.
type RateQuote struct {
	Type string  `json:"type"`
	Buy  float64 `json:"buy"`
	Sell float64 `json:"sell"`
}

// FetchDetail records the outcome of one equity symbol's fetch,
// including how many attempts it took. Kept for observability in the
// sync report.
type FetchDetail struct {
	Symbol   string  `json:"symbol"`
	Attempts int     `json:"attempts"`
	Price    float64 `json:"price,omitempty"`
	Error    string  `json:"error,omitempty"`
}
