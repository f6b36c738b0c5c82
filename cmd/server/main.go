package main

import (
	"fmt"
	"net/http"
	"os"

	"github.com/juanicaii/investment-tracker/internal/config"
	"github.com/juanicaii/investment-tracker/internal/database"
	"github.com/juanicaii/investment-tracker/internal/logger"
	"github.com/juanicaii/investment-tracker/internal/portfolio"
	"github.com/juanicaii/investment-tracker/internal/providers"
	"github.com/juanicaii/investment-tracker/internal/quotesync"
	"github.com/juanicaii/investment-tracker/internal/store"
	"go.uber.org/zap"
)

func main() {
	// Load configuration
	cfg, err := config.LoadConfig("./configs")
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	// Initialize logger
	log, err := logger.NewLogger(cfg.Logger.Level, cfg.Logger.Format)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	// Connect to the database
	db, err := database.NewDatabase(&cfg)
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}

	st := store.New(db)

	// Quote providers and the sync orchestrator
	equity := providers.NewYahooClient(&cfg.Providers.Yahoo, log.Named("yahoo"))
	crypto := providers.NewCoingeckoClient(&cfg.Providers.Coingecko, log.Named("coingecko"))
	fx := providers.NewDolarAPIClient(&cfg.Providers.FX, log.Named("dolarapi"))
	syncer := quotesync.NewSyncer(log.Named("sync"), st, equity, crypto, fx)

	portfolioSvc := portfolio.NewService(log.Named("portfolio"), st)

	// Setup HTTP server
	mux := http.NewServeMux()

	apiHandler := NewAPIHandler(log, st, syncer, portfolioSvc)

	mux.HandleFunc("GET /api/portfolio", apiHandler.PortfolioHandler)
	mux.HandleFunc("POST /api/sync", apiHandler.SyncHandler)
	mux.HandleFunc("GET /api/assets", apiHandler.ListAssetsHandler)
	mux.HandleFunc("POST /api/assets", apiHandler.CreateAssetHandler)
	mux.HandleFunc("PUT /api/assets/{id}", apiHandler.UpdateAssetHandler)
	mux.HandleFunc("DELETE /api/assets/{id}", apiHandler.DeleteAssetHandler)
	mux.HandleFunc("GET /api/transactions", apiHandler.ListTransactionsHandler)
	mux.HandleFunc("POST /api/transactions", apiHandler.CreateTransactionHandler)
	mux.HandleFunc("PUT /api/transactions/{id}", apiHandler.UpdateTransactionHandler)
	mux.HandleFunc("DELETE /api/transactions/{id}", apiHandler.DeleteTransactionHandler)
	mux.HandleFunc("GET /health", apiHandler.HealthHandler)

	addr := fmt.Sprintf(":%d", cfg.Server.Port)
	log.Info("Starting web server", zap.String("address", addr))

	if err := http.ListenAndServe(addr, mux); err != nil {
		log.Fatal("Web server failed", zap.Error(err))
	}
}
