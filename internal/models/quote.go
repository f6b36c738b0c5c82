package models

import "gorm.io/gorm"

// Quote is one closing price for one asset on one calendar day. At
// most one row exists per (asset, day); a same-day re-sync overwrites
// the price instead of inserting a duplicate.
type Quote struct {
	gorm.Model
	AssetID uint    `gorm:"uniqueIndex:idx_asset_day;not null" json:"asset_id"`
	Asset   Asset   `gorm:"constraint:OnDelete:CASCADE" json:"-"`
	Day     string  `gorm:"uniqueIndex:idx_asset_day;size:10;not null" json:"day"`
	Price   float64 `gorm:"not null" json:"price"`
}
