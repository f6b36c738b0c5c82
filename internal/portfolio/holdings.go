package portfolio

import "github.com/juanicaii/investment-tracker/internal/models"

// Holding is one net-positive aggregated position, derived from the
// transaction ledger on every read. It is never stored.
type Holding struct {
	Ticker       string  `json:"ticker"`
	Name         string  `json:"name"`
	Type         string  `json:"type"`
	Currency     string  `json:"currency"`
	Quantity     float64 `json:"quantity"`
	AvgPrice     float64 `json:"avgPrice"`
	CurrentPrice float64 `json:"currentPrice"`
	CurrentValue float64 `json:"currentValue"`
	CostBasis    float64 `json:"costBasis"`
	ValueUsd     float64 `json:"valueUsd"`
	CostUsd      float64 `json:"-"`
	ReturnPct    float64 `json:"returnPct"`
	ReturnAbs    float64 `json:"returnAbs"`
}

// QuoteLookup resolves the latest known price for an asset. ok is
// false when no quote has ever been synced for it.
type QuoteLookup func(assetID uint) (price float64, ok bool)

// position accumulates one asset's ledger while grouping.
type position struct {
	asset       models.Asset
	netQuantity float64
	totalBought float64
	costOfBuys  float64
}

// ComputeHoldings folds a user's full transaction history into
// current positions. Average cost is re-derived from the complete buy
// history every time; sells are not matched lot-by-lot (no FIFO or
// LIFO), so selling never changes the average price of what remains.
// Assets whose net quantity is not positive are excluded entirely.
func ComputeHoldings(txs []models.Transaction, latest QuoteLookup) []Holding {
	positions := make(map[uint]*position)
	var order []uint

	for _, tx := range txs {
		pos, ok := positions[tx.AssetID]
		if !ok {
			pos = &position{asset: tx.Asset}
			positions[tx.AssetID] = pos
			order = append(order, tx.AssetID)
		}
		switch tx.Type {
		case models.TransactionBuy:
			pos.netQuantity += tx.Quantity
			pos.totalBought += tx.Quantity
			pos.costOfBuys += tx.Quantity * tx.UnitPrice
		case models.TransactionSell:
			pos.netQuantity -= tx.Quantity
		}
	}

	holdings := make([]Holding, 0, len(order))
	for _, assetID := range order {
		pos := positions[assetID]
		if pos.netQuantity <= 0 {
			continue
		}

		avgPrice := 0.0
		if pos.totalBought > 0 {
			avgPrice = pos.costOfBuys / pos.totalBought
		}

		// Without a cached quote the position is valued at cost, so
		// its return reads as zero rather than undefined.
		currentPrice := avgPrice
		if price, ok := latest(assetID); ok {
			currentPrice = price
		}

		returnPct := 0.0
		if avgPrice > 0 {
			returnPct = (currentPrice - avgPrice) / avgPrice * 100
		}

		holdings = append(holdings, Holding{
			Ticker:       pos.asset.Ticker,
			Name:         pos.asset.Name,
			Type:         pos.asset.Type,
			Currency:     pos.asset.Currency,
			Quantity:     pos.netQuantity,
			AvgPrice:     avgPrice,
			CurrentPrice: currentPrice,
			CurrentValue: pos.netQuantity * currentPrice,
			CostBasis:    pos.netQuantity * avgPrice,
			ReturnPct:    returnPct,
			ReturnAbs:    (currentPrice - avgPrice) * pos.netQuantity,
		})
	}

	return holdings
}
