package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/juanicaii/investment-tracker/internal/models"
	"github.com/juanicaii/investment-tracker/internal/portfolio"
	"github.com/juanicaii/investment-tracker/internal/providers"
	"github.com/juanicaii/investment-tracker/internal/quotesync"
	"github.com/juanicaii/investment-tracker/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// The fake clients below honor context cancellation the way the real
// resty-based clients do: a dead context fails every fetch before any
// work happens.

type ctxEquityClient struct{}

func (ctxEquityClient) FetchPrices(ctx context.Context, symbols []string) (map[string]float64, []providers.FetchDetail) {
	prices := make(map[string]float64, len(symbols))
	details := make([]providers.FetchDetail, 0, len(symbols))
	for _, symbol := range symbols {
		if err := ctx.Err(); err != nil {
			details = append(details, providers.FetchDetail{
				Symbol:   symbol,
				Attempts: 1,
				Error:    fmt.Sprintf("rate limiter wait failed: %v", err),
			})
			continue
		}
		prices[symbol] = 4500
		details = append(details, providers.FetchDetail{Symbol: symbol, Attempts: 1, Price: 4500})
	}
	return prices, details
}

type ctxCryptoClient struct{}

func (ctxCryptoClient) FetchPrices(ctx context.Context, ids []string) (map[string]float64, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	prices := make(map[string]float64, len(ids))
	for _, id := range ids {
		prices[id] = 64000
	}
	return prices, nil
}

type ctxFXClient struct{}

func (ctxFXClient) FetchRates(ctx context.Context) ([]providers.RateQuote, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return []providers.RateQuote{{Type: models.RateOficial, Buy: 950, Sell: 990}}, nil
}

func setupHandlerTest(t *testing.T) (*gorm.DB, *APIHandler) {
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.Asset{}, &models.Transaction{}, &models.Quote{}, &models.DollarRate{}))

	db.Create(&models.Asset{Ticker: "GGAL", Type: models.AssetTypeArgStock, Currency: models.CurrencyARS, YahooSymbol: "GGAL.BA"})
	db.Create(&models.Asset{Ticker: "BTC", Type: models.AssetTypeCrypto, Currency: models.CurrencyUSD, CoingeckoID: "bitcoin"})

	st := store.New(db)
	syncer := quotesync.NewSyncer(zap.NewNop(), st, ctxEquityClient{}, ctxCryptoClient{}, ctxFXClient{})
	svc := portfolio.NewService(zap.NewNop(), st)
	return db, NewAPIHandler(zap.NewNop(), st, syncer, svc)
}

func TestSyncHandler_ClientAbortDoesNotCancelSync(t *testing.T) {
	db, handler := setupHandlerTest(t)

	// Simulate a client that already went away: the request context
	// is canceled before the handler even starts.
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	req := httptest.NewRequest(http.MethodPost, "/api/sync", nil).WithContext(ctx)
	req.Header.Set(userHeader, "u1")
	rec := httptest.NewRecorder()

	handler.SyncHandler(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var report quotesync.Report
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &report))

	// The sync ran to completion server-side: one rate, one crypto
	// quote and one equity quote landed despite the abort.
	assert.Equal(t, 3, report.Updated)
	assert.Empty(t, report.Errors)
	assert.Equal(t, quotesync.StatusOK, report.Sources[quotesync.SourceFX])
	assert.Equal(t, quotesync.StatusOK, report.Sources[quotesync.SourceCrypto])
	assert.Equal(t, quotesync.StatusOK, report.Sources[quotesync.SourceEquity])

	var quoteCount, rateCount int64
	db.Model(&models.Quote{}).Count(&quoteCount)
	db.Model(&models.DollarRate{}).Count(&rateCount)
	assert.Equal(t, int64(2), quoteCount)
	assert.Equal(t, int64(1), rateCount)
}
