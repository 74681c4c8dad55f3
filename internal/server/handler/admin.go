package handler

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum/common"
)

// AdminService defines the privileged writes the admin handler requires. Each
// call blocks until the transaction is mined and returns its hash.
type AdminService interface {
	CreateMarket(ctx context.Context, question, imageURL, category string, duration time.Duration) (common.Hash, error)
	ResolveMarket(ctx context.Context, marketID uint64, outcome bool) (common.Hash, error)
	CancelMarket(ctx context.Context, marketID uint64) (common.Hash, error)
	Pause(ctx context.Context) (common.Hash, error)
	Unpause(ctx context.Context) (common.Hash, error)
	WithdrawFees(ctx context.Context) (common.Hash, error)
}

// AdminHandler serves the privileged market-management endpoints. Routes
// using it must sit behind the auth middleware.
type AdminHandler struct {
	admin  AdminService
	logger *slog.Logger
}

// NewAdminHandler creates an AdminHandler.
func NewAdminHandler(admin AdminService, logger *slog.Logger) *AdminHandler {
	return &AdminHandler{
		admin:  admin,
		logger: logger,
	}
}

// txResponse reports the hash of a confirmed transaction.
type txResponse struct {
	TxHash string `json:"txHash"`
}

// createMarketRequest is the body for POST /api/admin/markets.
type createMarketRequest struct {
	Question        string `json:"question"`
	ImageURL        string `json:"imageUrl"`
	Category        string `json:"category"`
	DurationSeconds int64  `json:"durationSeconds"`
}

// CreateMarket creates a new market.
// POST /api/admin/markets
func (h *AdminHandler) CreateMarket(w http.ResponseWriter, r *http.Request) {
	var req createMarketRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	req.Question = strings.TrimSpace(req.Question)
	if req.Question == "" {
		writeError(w, http.StatusBadRequest, "question is required")
		return
	}
	if req.DurationSeconds <= 0 {
		writeError(w, http.StatusBadRequest, "durationSeconds must be positive")
		return
	}

	hash, err := h.admin.CreateMarket(r.Context(), req.Question, req.ImageURL,
		req.Category, time.Duration(req.DurationSeconds)*time.Second)
	if err != nil {
		writeServiceError(w, r, h.logger, err, "failed to create market")
		return
	}

	writeJSON(w, http.StatusCreated, txResponse{TxHash: hash.Hex()})
}

// resolveMarketRequest is the body for POST /api/admin/markets/{id}/resolve.
type resolveMarketRequest struct {
	Outcome *bool `json:"outcome"`
}

// ResolveMarket resolves a market to a yes/no outcome.
// POST /api/admin/markets/{id}/resolve
func (h *AdminHandler) ResolveMarket(w http.ResponseWriter, r *http.Request) {
	id, err := marketIDParam(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	var req resolveMarketRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Outcome == nil {
		writeError(w, http.StatusBadRequest, "outcome is required")
		return
	}

	hash, err := h.admin.ResolveMarket(r.Context(), id, *req.Outcome)
	if err != nil {
		writeServiceError(w, r, h.logger, err, "failed to resolve market")
		return
	}

	writeJSON(w, http.StatusOK, txResponse{TxHash: hash.Hex()})
}

// CancelMarket cancels a market, opening refunds.
// POST /api/admin/markets/{id}/cancel
func (h *AdminHandler) CancelMarket(w http.ResponseWriter, r *http.Request) {
	id, err := marketIDParam(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	hash, err := h.admin.CancelMarket(r.Context(), id)
	if err != nil {
		writeServiceError(w, r, h.logger, err, "failed to cancel market")
		return
	}

	writeJSON(w, http.StatusOK, txResponse{TxHash: hash.Hex()})
}

// Pause halts new bets platform-wide.
// POST /api/admin/pause
func (h *AdminHandler) Pause(w http.ResponseWriter, r *http.Request) {
	hash, err := h.admin.Pause(r.Context())
	if err != nil {
		writeServiceError(w, r, h.logger, err, "failed to pause platform")
		return
	}

	writeJSON(w, http.StatusOK, txResponse{TxHash: hash.Hex()})
}

// Unpause lifts a platform-wide pause.
// POST /api/admin/unpause
func (h *AdminHandler) Unpause(w http.ResponseWriter, r *http.Request) {
	hash, err := h.admin.Unpause(r.Context())
	if err != nil {
		writeServiceError(w, r, h.logger, err, "failed to unpause platform")
		return
	}

	writeJSON(w, http.StatusOK, txResponse{TxHash: hash.Hex()})
}

// WithdrawFees transfers accumulated platform fees to the admin wallet.
// POST /api/admin/withdraw-fees
func (h *AdminHandler) WithdrawFees(w http.ResponseWriter, r *http.Request) {
	hash, err := h.admin.WithdrawFees(r.Context())
	if err != nil {
		writeServiceError(w, r, h.logger, err, "failed to withdraw fees")
		return
	}

	writeJSON(w, http.StatusOK, txResponse{TxHash: hash.Hex()})
}
