package models

import "gorm.io/gorm"

// Asset type constants. CEDEARs and Argentine stocks quote in ARS,
// everything else in USD.
const (
	AssetTypeCedear     = "cedear"
	AssetTypeArgStock   = "arg_stock"
	AssetTypeStock      = "stock"
	AssetTypeCrypto     = "crypto"
	AssetTypeStablecoin = "stablecoin"
)

// Currency codes used across the application.
const (
	CurrencyARS = "ARS"
	CurrencyUSD = "USD"
)

// Asset represents a trackable instrument. The same ticker may exist
// under more than one type (e.g. AAPL as both a CEDEAR and the US
// stock), so uniqueness is on the (ticker, type) pair.
type Asset struct {
	gorm.Model
	Ticker   string `gorm:"uniqueIndex:idx_ticker_type;not null" json:"ticker"`
	Type     string `gorm:"uniqueIndex:idx_ticker_type;not null" json:"type"`
	Name     string `json:"name"`
	Currency string `gorm:"not null" json:"currency"`

	// External provider keys. Empty means the asset is skipped by the
	// corresponding quote source.
	YahooSymbol string `json:"yahoo_symbol,omitempty"`
	CoingeckoID string `json:"coingecko_id,omitempty"`

	// CEDEAR metadata.
	UnderlyingTicker string  `json:"underlying_ticker,omitempty"`
	CedearRatio      float64 `json:"cedear_ratio,omitempty"`
}

// EquityTypes are the asset types quoted through the equity provider.
func EquityTypes() []string {
	return []string{AssetTypeCedear, AssetTypeArgStock, AssetTypeStock}
}

// CryptoTypes are the asset types quoted through the crypto provider.
func CryptoTypes() []string {
	return []string{AssetTypeCrypto, AssetTypeStablecoin}
}
