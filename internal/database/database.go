package database

import (
	"fmt"

	"github.com/juanicaii/investment-tracker/internal/config"
	"github.com/juanicaii/investment-tracker/internal/models"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// NewDatabase creates a new database connection and performs auto-migration.
func NewDatabase(cfg *config.Config) (*gorm.DB, error) {
	db, err := gorm.Open(sqlite.Open(cfg.Database.DSN), &gorm.Config{})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if err := Migrate(db); err != nil {
		return nil, err
	}

	return db, nil
}

// Migrate creates or updates the schema and seeds the shared asset
// catalog. Existing rows are never dropped: quotes and transactions
// must survive restarts.
func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(
		&models.Asset{},
		&models.Transaction{},
		&models.Quote{},
		&models.DollarRate{},
	); err != nil {
		return fmt.Errorf("failed to auto-migrate database: %w", err)
	}

	for _, seed := range seedAssets() {
		asset := seed
		key := models.Asset{Ticker: seed.Ticker, Type: seed.Type}
		if err := db.FirstOrCreate(&asset, key).Error; err != nil {
			return fmt.Errorf("failed to seed asset '%s': %w", seed.Ticker, err)
		}
	}

	return nil
}

// seedAssets returns the default asset catalog so a fresh database is
// immediately usable. Users can add or edit assets afterwards.
func seedAssets() []models.Asset {
	return []models.Asset{
		{Ticker: "AAPL", Type: models.AssetTypeCedear, Name: "Apple CEDEAR", Currency: models.CurrencyARS, YahooSymbol: "AAPL.BA", UnderlyingTicker: "AAPL", CedearRatio: 20},
		{Ticker: "MELI", Type: models.AssetTypeCedear, Name: "MercadoLibre CEDEAR", Currency: models.CurrencyARS, YahooSymbol: "MELI.BA", UnderlyingTicker: "MELI", CedearRatio: 60},
		{Ticker: "GGAL", Type: models.AssetTypeArgStock, Name: "Grupo Galicia", Currency: models.CurrencyARS, YahooSymbol: "GGAL.BA"},
		{Ticker: "YPFD", Type: models.AssetTypeArgStock, Name: "YPF", Currency: models.CurrencyARS, YahooSymbol: "YPFD.BA"},
		{Ticker: "AAPL", Type: models.AssetTypeStock, Name: "Apple", Currency: models.CurrencyUSD, YahooSymbol: "AAPL"},
		{Ticker: "VOO", Type: models.AssetTypeStock, Name: "Vanguard S&P 500 ETF", Currency: models.CurrencyUSD, YahooSymbol: "VOO"},
		{Ticker: "BTC", Type: models.AssetTypeCrypto, Name: "Bitcoin", Currency: models.CurrencyUSD, CoingeckoID: "bitcoin"},
		{Ticker: "ETH", Type: models.AssetTypeCrypto, Name: "Ethereum", Currency: models.CurrencyUSD, CoingeckoID: "ethereum"},
		{Ticker: "USDT", Type: models.AssetTypeStablecoin, Name: "Tether", Currency: models.CurrencyUSD, CoingeckoID: "tether"},
		{Ticker: "USDC", Type: models.AssetTypeStablecoin, Name: "USD Coin", Currency: models.CurrencyUSD, CoingeckoID: "usd-coin"},
	}
}
