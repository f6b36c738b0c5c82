package portfolio

import (
	"fmt"
	"strings"
	"testing"

	"github.com/juanicaii/investment-tracker/internal/models"
	"github.com/juanicaii/investment-tracker/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func setupServiceTest(t *testing.T) (*gorm.DB, *Service) {
	// A named shared-cache database so every pooled connection sees
	// the same data while the service reads concurrently.
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)

	err = db.AutoMigrate(&models.Asset{}, &models.Transaction{}, &models.Quote{}, &models.DollarRate{})
	require.NoError(t, err)

	return db, NewService(zap.NewNop(), store.New(db))
}

func TestServiceSummary_MixedCurrencies(t *testing.T) {
	db, svc := setupServiceTest(t)

	ggal := models.Asset{Ticker: "GGAL", Type: models.AssetTypeArgStock, Currency: models.CurrencyARS, YahooSymbol: "GGAL.BA"}
	voo := models.Asset{Ticker: "VOO", Type: models.AssetTypeStock, Currency: models.CurrencyUSD, YahooSymbol: "VOO"}
	db.Create(&ggal)
	db.Create(&voo)

	db.Create(&models.Transaction{UserID: "u1", AssetID: ggal.ID, Date: "2024-05-01", Type: models.TransactionBuy, Quantity: 10, UnitPrice: 1000})
	db.Create(&models.Transaction{UserID: "u1", AssetID: voo.ID, Date: "2024-05-02", Type: models.TransactionBuy, Quantity: 2, UnitPrice: 400})
	// Another user's ledger must not leak in.
	db.Create(&models.Transaction{UserID: "u2", AssetID: voo.ID, Date: "2024-05-02", Type: models.TransactionBuy, Quantity: 100, UnitPrice: 400})

	db.Create(&models.Quote{AssetID: ggal.ID, Day: "2024-06-03", Price: 1200})
	db.Create(&models.Quote{AssetID: voo.ID, Day: "2024-06-03", Price: 450})
	db.Create(&models.DollarRate{Day: "2024-06-03", Type: models.RateOficial, Buy: 950, Sell: 1000})

	summary, err := svc.Summary("u1")
	require.NoError(t, err)

	require.Len(t, summary.Holdings, 2)
	// VOO is worth 900 USD, GGAL only 12 USD; largest first.
	assert.Equal(t, "VOO", summary.Holdings[0].Ticker)
	assert.Equal(t, "GGAL", summary.Holdings[1].Ticker)
	assert.InDelta(t, 12.0, summary.Holdings[1].ValueUsd, 1e-9)
	assert.InDelta(t, 912.0, summary.TotalValueUsd, 1e-9)
	assert.InDelta(t, 810.0, summary.TotalCostUsd, 1e-9)
	assert.Equal(t, 1000.0, summary.DollarRates.Oficial)
	assert.InDelta(t, summary.TotalValueUsd*1000, summary.TotalValueArs, 1e-6)
}

func TestServiceSummary_FullySoldLedgerGivesZeroSummary(t *testing.T) {
	db, svc := setupServiceTest(t)

	voo := models.Asset{Ticker: "VOO", Type: models.AssetTypeStock, Currency: models.CurrencyUSD}
	db.Create(&voo)
	db.Create(&models.Transaction{UserID: "u1", AssetID: voo.ID, Date: "2024-05-01", Type: models.TransactionBuy, Quantity: 3, UnitPrice: 400})
	db.Create(&models.Transaction{UserID: "u1", AssetID: voo.ID, Date: "2024-05-10", Type: models.TransactionSell, Quantity: 3, UnitPrice: 450})

	summary, err := svc.Summary("u1")
	require.NoError(t, err)

	assert.Equal(t, 0.0, summary.TotalValueUsd)
	assert.Empty(t, summary.Holdings)
	assert.Equal(t, Rates{Oficial: 1.0, Mep: 1.0, Blue: 1.0}, summary.DollarRates)
}

func TestServiceSummary_UserWithNoTransactions(t *testing.T) {
	_, svc := setupServiceTest(t)

	summary, err := svc.Summary("nobody")
	require.NoError(t, err)

	assert.Equal(t, 0.0, summary.TotalValueUsd)
	assert.Empty(t, summary.Holdings)
}
