package store

import (
	"errors"
	"fmt"

	"github.com/juanicaii/investment-tracker/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Sentinel errors callers branch on. Handlers map these to HTTP
// conflict/forbidden responses.
var (
	// ErrAssetInUse is returned when deleting an asset that still has
	// transactions referencing it.
	ErrAssetInUse = errors.New("asset is referenced by existing transactions")

	// ErrNotOwner is returned when a user mutates a transaction that
	// belongs to someone else.
	ErrNotOwner = errors.New("transaction does not belong to user")

	// ErrInvalidAsset is returned when an asset carries an unknown
	// type or currency.
	ErrInvalidAsset = errors.New("invalid asset")
)

// Store wraps the gorm connection with the queries the sync pipeline
// and the portfolio endpoints need. Assets, quotes and rates are
// shared process-wide reference data; transactions are per-user.
type Store struct {
	db *gorm.DB
}

// New creates a Store on top of an open gorm connection.
func New(db *gorm.DB) *Store {
	return &Store{db: db}
}

// UpsertQuote writes the price for one asset on one calendar day.
// Re-running a sync for the same day overwrites the existing row, so
// the operation is idempotent on (asset, day).
func (s *Store) UpsertQuote(assetID uint, day string, price float64) error {
	quote := models.Quote{AssetID: assetID, Day: day, Price: price}
	err := s.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "asset_id"}, {Name: "day"}},
		DoUpdates: clause.AssignmentColumns([]string{"price", "updated_at"}),
	}).Create(&quote).Error
	if err != nil {
		return fmt.Errorf("failed to upsert quote for asset %d: %w", assetID, err)
	}
	return nil
}

// UpsertDollarRate writes the buy/sell pair for one rate type on one
// calendar day, idempotent on (type, day).
func (s *Store) UpsertDollarRate(day, rateType string, buy, sell float64) error {
	rate := models.DollarRate{Day: day, Type: rateType, Buy: buy, Sell: sell}
	err := s.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "day"}, {Name: "type"}},
		DoUpdates: clause.AssignmentColumns([]string{"buy", "sell", "updated_at"}),
	}).Create(&rate).Error
	if err != nil {
		return fmt.Errorf("failed to upsert %s rate: %w", rateType, err)
	}
	return nil
}

// LatestQuote returns the most recent quote for an asset, or nil if
// none has ever been synced.
func (s *Store) LatestQuote(assetID uint) (*models.Quote, error) {
	var quote models.Quote
	err := s.db.Where("asset_id = ?", assetID).Order("day desc").First(&quote).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query latest quote for asset %d: %w", assetID, err)
	}
	return &quote, nil
}

// LatestDollarRates returns the most recent FX rate rows, newest
// first, capped at limit.
func (s *Store) LatestDollarRates(limit int) ([]models.DollarRate, error) {
	var rates []models.DollarRate
	err := s.db.Order("day desc").Limit(limit).Find(&rates).Error
	if err != nil {
		return nil, fmt.Errorf("failed to query latest dollar rates: %w", err)
	}
	return rates, nil
}

// AssetsByType returns all assets of the given types.
func (s *Store) AssetsByType(types ...string) ([]models.Asset, error) {
	var assets []models.Asset
	err := s.db.Where("type IN ?", types).Order("ticker asc").Find(&assets).Error
	if err != nil {
		return nil, fmt.Errorf("failed to query assets by type: %w", err)
	}
	return assets, nil
}

// AllAssets returns the full asset catalog.
func (s *Store) AllAssets() ([]models.Asset, error) {
	var assets []models.Asset
	err := s.db.Order("ticker asc").Find(&assets).Error
	if err != nil {
		return nil, fmt.Errorf("failed to query assets: %w", err)
	}
	return assets, nil
}

// CreateAsset adds an asset to the shared catalog. The (ticker, type)
// unique index rejects duplicates.
func (s *Store) CreateAsset(asset *models.Asset) error {
	if err := validateAsset(asset); err != nil {
		return err
	}
	if err := s.db.Create(asset).Error; err != nil {
		return fmt.Errorf("failed to create asset '%s': %w", asset.Ticker, err)
	}
	return nil
}

// UpdateAsset saves edits to an existing asset. Editing an asset that
// does not exist is an error, not an insert.
func (s *Store) UpdateAsset(asset *models.Asset) error {
	if err := validateAsset(asset); err != nil {
		return err
	}
	var existing models.Asset
	if err := s.db.First(&existing, asset.ID).Error; err != nil {
		return fmt.Errorf("failed to load asset %d: %w", asset.ID, err)
	}
	asset.CreatedAt = existing.CreatedAt
	if err := s.db.Save(asset).Error; err != nil {
		return fmt.Errorf("failed to update asset %d: %w", asset.ID, err)
	}
	return nil
}

// DeleteAsset removes an asset and its cached quotes. Deletion is
// blocked while any transaction references the asset.
func (s *Store) DeleteAsset(id uint) error {
	var count int64
	if err := s.db.Model(&models.Transaction{}).Where("asset_id = ?", id).Count(&count).Error; err != nil {
		return fmt.Errorf("failed to count transactions for asset %d: %w", id, err)
	}
	if count > 0 {
		return ErrAssetInUse
	}
	return s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("asset_id = ?", id).Unscoped().Delete(&models.Quote{}).Error; err != nil {
			return fmt.Errorf("failed to delete quotes for asset %d: %w", id, err)
		}
		if err := tx.Unscoped().Delete(&models.Asset{}, id).Error; err != nil {
			return fmt.Errorf("failed to delete asset %d: %w", id, err)
		}
		return nil
	})
}

// TransactionsByUser returns the user's full ledger, oldest first,
// with the asset preloaded.
func (s *Store) TransactionsByUser(userID string) ([]models.Transaction, error) {
	var txs []models.Transaction
	err := s.db.Preload("Asset").Where("user_id = ?", userID).
		Order("date asc, id asc").Find(&txs).Error
	if err != nil {
		return nil, fmt.Errorf("failed to query transactions for user %s: %w", userID, err)
	}
	return txs, nil
}

// CreateTransaction records a buy or sell for the given user.
func (s *Store) CreateTransaction(tx *models.Transaction) error {
	if err := validateTransaction(tx); err != nil {
		return err
	}
	if err := s.db.Create(tx).Error; err != nil {
		return fmt.Errorf("failed to create transaction: %w", err)
	}
	return nil
}

// UpdateTransaction saves edits to a transaction after checking it
// belongs to the given user.
func (s *Store) UpdateTransaction(userID string, tx *models.Transaction) error {
	if err := validateTransaction(tx); err != nil {
		return err
	}
	var existing models.Transaction
	if err := s.db.First(&existing, tx.ID).Error; err != nil {
		return fmt.Errorf("failed to load transaction %d: %w", tx.ID, err)
	}
	if existing.UserID != userID {
		return ErrNotOwner
	}
	tx.UserID = existing.UserID
	tx.CreatedAt = existing.CreatedAt
	if err := s.db.Save(tx).Error; err != nil {
		return fmt.Errorf("failed to update transaction %d: %w", tx.ID, err)
	}
	return nil
}

// DeleteTransaction removes a transaction after checking ownership.
func (s *Store) DeleteTransaction(userID string, id uint) error {
	var existing models.Transaction
	if err := s.db.First(&existing, id).Error; err != nil {
		return fmt.Errorf("failed to load transaction %d: %w", id, err)
	}
	if existing.UserID != userID {
		return ErrNotOwner
	}
	if err := s.db.Unscoped().Delete(&models.Transaction{}, id).Error; err != nil {
		return fmt.Errorf("failed to delete transaction %d: %w", id, err)
	}
	return nil
}

func validateAsset(asset *models.Asset) error {
	if asset.Ticker == "" {
		return fmt.Errorf("%w: ticker is required", ErrInvalidAsset)
	}
	switch asset.Type {
	case models.AssetTypeCedear, models.AssetTypeArgStock, models.AssetTypeStock,
		models.AssetTypeCrypto, models.AssetTypeStablecoin:
	default:
		return fmt.Errorf("%w: unknown type '%s'", ErrInvalidAsset, asset.Type)
	}
	switch asset.Currency {
	case models.CurrencyARS, models.CurrencyUSD:
	default:
		return fmt.Errorf("%w: unknown currency '%s'", ErrInvalidAsset, asset.Currency)
	}
	return nil
}

func validateTransaction(tx *models.Transaction) error {
	if tx.Type != models.TransactionBuy && tx.Type != models.TransactionSell {
		return fmt.Errorf("invalid transaction type '%s'", tx.Type)
	}
	if tx.Quantity <= 0 {
		return fmt.Errorf("quantity must be positive, got %f", tx.Quantity)
	}
	if tx.UnitPrice <= 0 {
		return fmt.Errorf("unit price must be positive, got %f", tx.UnitPrice)
	}
	if tx.Fee < 0 {
		return fmt.Errorf("fee must not be negative, got %f", tx.Fee)
	}
	return nil
}
