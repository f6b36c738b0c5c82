package portfolio

import (
	"sort"
	"time"

	"github.com/juanicaii/investment-tracker/internal/models"
)

// Rates holds the resolved sell price per USD/ARS rate regime.
type Rates struct {
	Oficial float64 `json:"oficial"`
	Mep     float64 `json:"mep"`
	Blue    float64 `json:"blue"`
}

// Summary is the portfolio valuation in both reporting currencies.
type Summary struct {
	TotalValueUsd     float64   `json:"totalValueUsd"`
	TotalCostUsd      float64   `json:"totalCostUsd"`
	TotalReturnAbs    float64   `json:"totalReturnAbs"`
	TotalReturnPct    float64   `json:"totalReturnPct"`
	TotalValueArs     float64   `json:"totalValueArs"`
	TotalCostArs      float64   `json:"totalCostArs"`
	TotalReturnAbsArs float64   `json:"totalReturnAbsArs"`
	DollarRates       Rates     `json:"dollarRates"`
	Holdings          []Holding `json:"holdings"`
	UpdatedAt         time.Time `json:"updatedAt"`
}

// ResolveRates picks the most recent sell price per rate type from
// rows ordered newest first. Oficial falls back to mep when it was
// never synced; every type independently defaults to 1.0.
func ResolveRates(rows []models.DollarRate) Rates {
	latest := make(map[string]float64)
	for _, row := range rows {
		if _, ok := latest[row.Type]; !ok {
			latest[row.Type] = row.Sell
		}
	}

	rates := Rates{Oficial: 1.0, Mep: 1.0, Blue: 1.0}
	if mep, ok := latest[models.RateMep]; ok && mep > 0 {
		rates.Mep = mep
		rates.Oficial = mep
	}
	if oficial, ok := latest[models.RateOficial]; ok && oficial > 0 {
		rates.Oficial = oficial
	}
	if blue, ok := latest[models.RateBlue]; ok && blue > 0 {
		rates.Blue = blue
	}
	return rates
}

// Valuate converts holdings into USD with the oficial rate, sorts
// them largest first and rolls up the totals. The ARS totals are
// reconstructed from the USD totals rather than summed from the
// ARS-denominated holdings directly; a deliberate approximation kept
// as is.
func Valuate(holdings []Holding, rates Rates) *Summary {
	if len(holdings) == 0 {
		return &Summary{
			DollarRates: Rates{Oficial: 1.0, Mep: 1.0, Blue: 1.0},
			Holdings:    []Holding{},
			UpdatedAt:   time.Now(),
		}
	}

	converted := make([]Holding, len(holdings))
	copy(converted, holdings)

	var totalValueUsd, totalCostUsd float64
	for i := range converted {
		h := &converted[i]
		if h.Currency == models.CurrencyARS {
			h.ValueUsd = h.CurrentValue / rates.Oficial
			h.CostUsd = h.CostBasis / rates.Oficial
		} else {
			h.ValueUsd = h.CurrentValue
			h.CostUsd = h.CostBasis
		}
		totalValueUsd += h.ValueUsd
		totalCostUsd += h.CostUsd
	}

	// Stable sort keeps ledger insertion order on equal values.
	sort.SliceStable(converted, func(i, j int) bool {
		return converted[i].ValueUsd > converted[j].ValueUsd
	})

	totalReturnAbs := totalValueUsd - totalCostUsd
	totalReturnPct := 0.0
	if totalCostUsd > 0 {
		totalReturnPct = totalReturnAbs / totalCostUsd * 100
	}

	return &Summary{
		TotalValueUsd:     totalValueUsd,
		TotalCostUsd:      totalCostUsd,
		TotalReturnAbs:    totalReturnAbs,
		TotalReturnPct:    totalReturnPct,
		TotalValueArs:     totalValueUsd * rates.Oficial,
		TotalCostArs:      totalCostUsd * rates.Oficial,
		TotalReturnAbsArs: totalReturnAbs * rates.Oficial,
		DollarRates:       rates,
		Holdings:          converted,
		UpdatedAt:         time.Now(),
	}
}
