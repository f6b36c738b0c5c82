package main

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/juanicaii/investment-tracker/internal/models"
	"github.com/juanicaii/investment-tracker/internal/portfolio"
	"github.com/juanicaii/investment-tracker/internal/quotesync"
	"github.com/juanicaii/investment-tracker/internal/store"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// userHeader carries the opaque authenticated-user identifier. Session
// handling itself lives outside this service.
const userHeader = "X-User-ID"

// APIHandler holds dependencies for the API endpoints.
type APIHandler struct {
	log       *zap.Logger
	store     *store.Store
	syncer    *quotesync.Syncer
	portfolio *portfolio.Service
}

// NewAPIHandler creates a new APIHandler.
func NewAPIHandler(log *zap.Logger, st *store.Store, syncer *quotesync.Syncer, svc *portfolio.Service) *APIHandler {
	return &APIHandler{log: log, store: st, syncer: syncer, portfolio: svc}
}

func (h *APIHandler) userID(w http.ResponseWriter, r *http.Request) (string, bool) {
	id := r.Header.Get(userHeader)
	if id == "" {
		http.Error(w, "missing user identifier", http.StatusUnauthorized)
		return "", false
	}
	return id, true
}

func (h *APIHandler) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		h.log.Error("Failed to encode response", zap.Error(err))
	}
}

// PortfolioHandler returns the caller's current portfolio valuation.
func (h *APIHandler) PortfolioHandler(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.userID(w, r)
	if !ok {
		return
	}

	summary, err := h.portfolio.Summary(userID)
	if err != nil {
		h.log.Error("Failed to compute portfolio summary", zap.String("user", userID), zap.Error(err))
		http.Error(w, "Failed to compute portfolio", http.StatusInternalServerError)
		return
	}

	h.writeJSON(w, http.StatusOK, summary)
}

// SyncHandler runs a quote sync for today and returns the report. The
// sync is best-effort: the response is always 200 with a per-source
// status, even when some sources failed.
func (h *APIHandler) SyncHandler(w http.ResponseWriter, r *http.Request) {
	if _, ok := h.userID(w, r); !ok {
		return
	}

	// A client that aborts the request stops consuming the response,
	// nothing more: the sync already dispatched keeps running to
	// completion server-side.
	report := h.syncer.Run(context.WithoutCancel(r.Context()), models.Today())
	h.writeJSON(w, http.StatusOK, report)
}

// ListAssetsHandler returns the shared asset catalog.
func (h *APIHandler) ListAssetsHandler(w http.ResponseWriter, r *http.Request) {
	assets, err := h.store.AllAssets()
	if err != nil {
		h.log.Error("Failed to list assets", zap.Error(err))
		http.Error(w, "Failed to list assets", http.StatusInternalServerError)
		return
	}
	h.writeJSON(w, http.StatusOK, assets)
}

// CreateAssetHandler adds an asset to the catalog.
func (h *APIHandler) CreateAssetHandler(w http.ResponseWriter, r *http.Request) {
	if _, ok := h.userID(w, r); !ok {
		return
	}

	var asset models.Asset
	if err := json.NewDecoder(r.Body).Decode(&asset); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}

	switch err := h.store.CreateAsset(&asset); {
	case errors.Is(err, store.ErrInvalidAsset):
		http.Error(w, err.Error(), http.StatusBadRequest)
	case err != nil:
		h.log.Warn("Failed to create asset", zap.String("ticker", asset.Ticker), zap.Error(err))
		http.Error(w, "Failed to create asset", http.StatusConflict)
	default:
		h.writeJSON(w, http.StatusCreated, asset)
	}
}

// UpdateAssetHandler saves edits to an asset.
func (h *APIHandler) UpdateAssetHandler(w http.ResponseWriter, r *http.Request) {
	if _, ok := h.userID(w, r); !ok {
		return
	}

	id, err := strconv.ParseUint(r.PathValue("id"), 10, 32)
	if err != nil {
		http.Error(w, "invalid asset id", http.StatusBadRequest)
		return
	}

	var asset models.Asset
	if err := json.NewDecoder(r.Body).Decode(&asset); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}
	asset.ID = uint(id)

	switch err := h.store.UpdateAsset(&asset); {
	case errors.Is(err, store.ErrInvalidAsset):
		http.Error(w, err.Error(), http.StatusBadRequest)
	case errors.Is(err, gorm.ErrRecordNotFound):
		http.Error(w, "asset not found", http.StatusNotFound)
	case err != nil:
		h.log.Warn("Failed to update asset", zap.Uint64("id", id), zap.Error(err))
		http.Error(w, "Failed to update asset", http.StatusInternalServerError)
	default:
		h.writeJSON(w, http.StatusOK, asset)
	}
}

// DeleteAssetHandler removes an asset. Deletion is refused with a
// conflict while transactions still reference it.
func (h *APIHandler) DeleteAssetHandler(w http.ResponseWriter, r *http.Request) {
	if _, ok := h.userID(w, r); !ok {
		return
	}

	id, err := strconv.ParseUint(r.PathValue("id"), 10, 32)
	if err != nil {
		http.Error(w, "invalid asset id", http.StatusBadRequest)
		return
	}

	switch err := h.store.DeleteAsset(uint(id)); {
	case errors.Is(err, store.ErrAssetInUse):
		http.Error(w, err.Error(), http.StatusConflict)
	case err != nil:
		h.log.Warn("Failed to delete asset", zap.Uint64("id", id), zap.Error(err))
		http.Error(w, "Failed to delete asset", http.StatusInternalServerError)
	default:
		w.WriteHeader(http.StatusNoContent)
	}
}

// ListTransactionsHandler returns the caller's ledger.
func (h *APIHandler) ListTransactionsHandler(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.userID(w, r)
	if !ok {
		return
	}

	txs, err := h.store.TransactionsByUser(userID)
	if err != nil {
		h.log.Error("Failed to list transactions", zap.String("user", userID), zap.Error(err))
		http.Error(w, "Failed to list transactions", http.StatusInternalServerError)
		return
	}
	h.writeJSON(w, http.StatusOK, txs)
}

// CreateTransactionHandler records a buy or sell for the caller.
func (h *APIHandler) CreateTransactionHandler(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.userID(w, r)
	if !ok {
		return
	}

	var tx models.Transaction
	if err := json.NewDecoder(r.Body).Decode(&tx); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}
	tx.UserID = userID

	if err := h.store.CreateTransaction(&tx); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	h.writeJSON(w, http.StatusCreated, tx)
}

// UpdateTransactionHandler saves edits to one of the caller's
// transactions.
func (h *APIHandler) UpdateTransactionHandler(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.userID(w, r)
	if !ok {
		return
	}

	id, err := strconv.ParseUint(r.PathValue("id"), 10, 32)
	if err != nil {
		http.Error(w, "invalid transaction id", http.StatusBadRequest)
		return
	}

	var tx models.Transaction
	if err := json.NewDecoder(r.Body).Decode(&tx); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}
	tx.ID = uint(id)

	switch err := h.store.UpdateTransaction(userID, &tx); {
	case errors.Is(err, store.ErrNotOwner):
		http.Error(w, err.Error(), http.StatusForbidden)
	case errors.Is(err, gorm.ErrRecordNotFound):
		http.Error(w, "transaction not found", http.StatusNotFound)
	case err != nil:
		http.Error(w, err.Error(), http.StatusBadRequest)
	default:
		h.writeJSON(w, http.StatusOK, tx)
	}
}

// DeleteTransactionHandler removes one of the caller's transactions.
func (h *APIHandler) DeleteTransactionHandler(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.userID(w, r)
	if !ok {
		return
	}

	id, err := strconv.ParseUint(r.PathValue("id"), 10, 32)
	if err != nil {
		http.Error(w, "invalid transaction id", http.StatusBadRequest)
		return
	}

	switch err := h.store.DeleteTransaction(userID, uint(id)); {
	case errors.Is(err, store.ErrNotOwner):
		http.Error(w, err.Error(), http.StatusForbidden)
	case errors.Is(err, gorm.ErrRecordNotFound):
		http.Error(w, "transaction not found", http.StatusNotFound)
	case err != nil:
		h.log.Warn("Failed to delete transaction", zap.Uint64("id", id), zap.Error(err))
		http.Error(w, "Failed to delete transaction", http.StatusInternalServerError)
	default:
		w.WriteHeader(http.StatusNoContent)
	}
}

// HealthHandler reports liveness.
func (h *APIHandler) HealthHandler(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("OK"))
}
