package models

import (
	"time"

	"gorm.io/gorm"
)

// Transaction direction constants.
const (
	TransactionBuy  = "buy"
	TransactionSell = "sell"
)

// DayFormat is the calendar-day layout used for transaction dates,
// quote days and FX rate days. Lexicographic order equals date order.
const DayFormat = "2006-01-02"

// Today returns the caller's local calendar day.
func Today() string {
	return time.Now().Format(DayFormat)
}

// Transaction is a single buy or sell of an asset by a user. The unit
// price is in the asset's home currency. The fee is informational only
// and excluded from cost-basis math.
type Transaction struct {
	gorm.Model
	UserID    string  `gorm:"index;not null" json:"user_id"`
	AssetID   uint    `gorm:"index;not null" json:"asset_id"`
	Asset     Asset   `gorm:"constraint:OnDelete:RESTRICT" json:"asset"`
	Date      string  `gorm:"size:10;not null" json:"date"`
	Type      string  `gorm:"not null" json:"type"` // "buy" or "sell"
	Quantity  float64 `gorm:"not null" json:"quantity"`
	UnitPrice float64 `gorm:"not null" json:"unit_price"`
	Fee       float64 `json:"fee"`
	Note      string  `json:"note,omitempty"`
}
