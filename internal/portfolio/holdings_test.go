package portfolio

import (
	"testing"

	"github.com/juanicaii/investment-tracker/internal/models"
	"github.com/stretchr/testify/assert"
)

func noQuotes(assetID uint) (float64, bool) { return 0, false }

func buildTx(assetID uint, txType string, quantity, price float64) models.Transaction {
	tx := models.Transaction{
		AssetID:   assetID,
		Type:      txType,
		Quantity:  quantity,
		UnitPrice: price,
		Date:      "2024-01-15",
		Asset: models.Asset{
			Ticker:   "X",
			Type:     models.AssetTypeStock,
			Currency: models.CurrencyUSD,
		},
	}
	tx.Asset.ID = assetID
	return tx
}

func TestComputeHoldings_AverageCost(t *testing.T) {
	txs := []models.Transaction{
		buildTx(1, models.TransactionBuy, 10, 100),
		buildTx(1, models.TransactionBuy, 10, 200),
	}

	quote := func(assetID uint) (float64, bool) { return 180, true }

	holdings := ComputeHoldings(txs, quote)

	assert.Len(t, holdings, 1)
	h := holdings[0]
	assert.Equal(t, 20.0, h.Quantity)
	assert.Equal(t, 150.0, h.AvgPrice)
	assert.Equal(t, 180.0, h.CurrentPrice)
	assert.InDelta(t, 20.0, h.ReturnPct, 1e-9)
	assert.InDelta(t, 600.0, h.ReturnAbs, 1e-9)
	assert.InDelta(t, 3600.0, h.CurrentValue, 1e-9)
	assert.InDelta(t, 3000.0, h.CostBasis, 1e-9)
}

func TestComputeHoldings_FullySoldExcluded(t *testing.T) {
	// A profitable round trip still nets to zero and must disappear.
	txs := []models.Transaction{
		buildTx(1, models.TransactionBuy, 10, 100),
		buildTx(1, models.TransactionSell, 10, 150),
	}

	holdings := ComputeHoldings(txs, noQuotes)

	assert.Empty(t, holdings)
}

func TestComputeHoldings_OversoldExcluded(t *testing.T) {
	txs := []models.Transaction{
		buildTx(1, models.TransactionBuy, 5, 100),
		buildTx(1, models.TransactionSell, 8, 100),
	}

	holdings := ComputeHoldings(txs, noQuotes)

	assert.Empty(t, holdings)
}

func TestComputeHoldings_SellsDoNotShiftAverage(t *testing.T) {
	// Average cost comes from the full buy history, independent of
	// sell timing. No lot matching.
	txs := []models.Transaction{
		buildTx(1, models.TransactionBuy, 10, 100),
		buildTx(1, models.TransactionSell, 5, 300),
		buildTx(1, models.TransactionBuy, 10, 200),
	}

	holdings := ComputeHoldings(txs, noQuotes)

	assert.Len(t, holdings, 1)
	assert.Equal(t, 15.0, holdings[0].Quantity)
	assert.Equal(t, 150.0, holdings[0].AvgPrice)
}

func TestComputeHoldings_NoQuoteFallsBackToAvgPrice(t *testing.T) {
	txs := []models.Transaction{
		buildTx(1, models.TransactionBuy, 4, 250),
	}

	holdings := ComputeHoldings(txs, noQuotes)

	assert.Len(t, holdings, 1)
	h := holdings[0]
	assert.Equal(t, 250.0, h.CurrentPrice)
	assert.Equal(t, 0.0, h.ReturnPct)
	assert.Equal(t, 0.0, h.ReturnAbs)
}

func TestComputeHoldings_AvgPriceIdentity(t *testing.T) {
	txs := []models.Transaction{
		buildTx(1, models.TransactionBuy, 3, 33.33),
		buildTx(1, models.TransactionBuy, 7.5, 21.7),
		buildTx(1, models.TransactionBuy, 0.25, 1999.99),
	}

	holdings := ComputeHoldings(txs, noQuotes)

	assert.Len(t, holdings, 1)
	totalBought := 3 + 7.5 + 0.25
	costOfBuys := 3*33.33 + 7.5*21.7 + 0.25*1999.99
	assert.InDelta(t, costOfBuys, holdings[0].AvgPrice*totalBought, 1e-9)
}

func TestComputeHoldings_EmptyLedger(t *testing.T) {
	holdings := ComputeHoldings(nil, noQuotes)
	assert.Empty(t, holdings)
}

func TestComputeHoldings_MultipleAssetsKeepLedgerOrder(t *testing.T) {
	txA := buildTx(1, models.TransactionBuy, 1, 10)
	txB := buildTx(2, models.TransactionBuy, 1, 10)
	txB.Asset.Ticker = "Y"

	holdings := ComputeHoldings([]models.Transaction{txA, txB}, noQuotes)

	assert.Len(t, holdings, 2)
	assert.Equal(t, "X", holdings[0].Ticker)
	assert.Equal(t, "Y", holdings[1].Ticker)
}
