package models

import "gorm.io/gorm"

// DollarRate type constants for the USD/ARS rate regimes quoted in the
// Argentine market.
const (
	RateOficial = "oficial"
	RateMep     = "mep"
	RateBlue    = "blue"
)

// DollarRate is one buy/sell price pair for one FX rate type on one
// calendar day. At most one row exists per (type, day).
type DollarRate struct {
	gorm.Model
	Day  string  `gorm:"uniqueIndex:idx_rate_type_day;size:10;not null" json:"day"`
	Type string  `gorm:"uniqueIndex:idx_rate_type_day;not null" json:"type"`
	Buy  float64 `gorm:"not null" json:"buy"`
	Sell float64 `gorm:"not null" json:"sell"`
}
