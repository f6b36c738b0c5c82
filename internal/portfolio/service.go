package portfolio

import (
	"fmt"
	"sync"

	"github.com/juanicaii/investment-tracker/internal/models"
	"github.com/juanicaii/investment-tracker/internal/store"
	"go.uber.org/zap"
)

// Enough rows to find the latest entry of each rate type even if some
// types lag a few days behind.
const rateRowsLimit = 30

// Service produces portfolio summaries from the store.
type Service struct {
	logger *zap.Logger
	store  *store.Store
}

// NewService creates a new portfolio service.
func NewService(logger *zap.Logger, st *store.Store) *Service {
	return &Service{logger: logger, store: st}
}

// Summary computes the current valuation for one user. The ledger and
// the FX rates live in disjoint tables, so both reads are issued
// concurrently.
func (s *Service) Summary(userID string) (*Summary, error) {
	var wg sync.WaitGroup

	var txs []models.Transaction
	var txErr error
	var rateRows []models.DollarRate
	var rateErr error

	wg.Add(2)
	go func() {
		defer wg.Done()
		txs, txErr = s.store.TransactionsByUser(userID)
	}()
	go func() {
		defer wg.Done()
		rateRows, rateErr = s.store.LatestDollarRates(rateRowsLimit)
	}()
	wg.Wait()

	if txErr != nil {
		return nil, fmt.Errorf("could not load transactions: %w", txErr)
	}
	if rateErr != nil {
		// Degrade to default rates rather than failing the whole
		// valuation over an FX read.
		s.logger.Warn("Failed to load dollar rates, using defaults", zap.Error(rateErr))
		rateRows = nil
	}

	holdings := ComputeHoldings(txs, func(assetID uint) (float64, bool) {
		quote, err := s.store.LatestQuote(assetID)
		if err != nil {
			s.logger.Warn("Failed to load latest quote", zap.Uint("asset_id", assetID), zap.Error(err))
			return 0, false
		}
		if quote == nil {
			return 0, false
		}
		return quote.Price, true
	})

	return Valuate(holdings, ResolveRates(rateRows)), nil
}
