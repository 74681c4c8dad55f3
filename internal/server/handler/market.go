package handler

import (
	"context"
	"log/slog"
	"math/big"
	"net/http"

	"github.com/Akanimoh12/iPredict/internal/domain"
)

// MarketService defines the methods the market handler requires from the
// service layer. It is declared locally so the handler package does not depend
// on the concrete service implementation.
type MarketService interface {
	GetMarket(ctx context.Context, id uint64) (domain.MarketWithOdds, error)
	ListMarkets(ctx context.Context, opts domain.ListOpts, status domain.MarketStatus, category string) ([]domain.MarketWithOdds, error)
	Odds(ctx context.Context, id uint64) (yesPercent, noPercent int, err error)
	PotentialReturn(ctx context.Context, id uint64, stake *big.Int, isYes bool) (*big.Int, error)
}

// MarketHandler serves market-related HTTP endpoints.
type MarketHandler struct {
	markets MarketService
	logger  *slog.Logger
}

// NewMarketHandler creates a MarketHandler with the given service and logger.
func NewMarketHandler(markets MarketService, logger *slog.Logger) *MarketHandler {
	return &MarketHandler{
		markets: markets,
		logger:  logger,
	}
}

// listMarketsResponse wraps the list endpoint output with its pagination
// window so clients can page without a separate count call.
type listMarketsResponse struct {
	Markets []domain.MarketWithOdds `json:"markets"`
	Limit   int                     `json:"limit"`
	Offset  int                     `json:"offset"`
}

// ListMarkets returns one page of markets with odds and status attached,
// optionally filtered by status and category.
// GET /api/markets?limit=50&offset=0&status=live&category=crypto
func (h *MarketHandler) ListMarkets(w http.ResponseWriter, r *http.Request) {
	opts := parseListOpts(r)
	q := r.URL.Query()

	status := domain.MarketStatus(q.Get("status"))
	switch status {
	case "", domain.StatusLive, domain.StatusEndingSoon, domain.StatusEnded,
		domain.StatusResolvedYes, domain.StatusResolvedNo, domain.StatusCancelled:
	default:
		writeError(w, http.StatusBadRequest, "invalid status filter")
		return
	}

	markets, err := h.markets.ListMarkets(r.Context(), opts, status, q.Get("category"))
	if err != nil {
		writeServiceError(w, r, h.logger, err, "failed to list markets")
		return
	}

	writeJSON(w, http.StatusOK, listMarketsResponse{
		Markets: markets,
		Limit:   opts.Limit,
		Offset:  opts.Offset,
	})
}

// GetMarket returns a single market by its on-chain ID.
// GET /api/markets/{id}
func (h *MarketHandler) GetMarket(w http.ResponseWriter, r *http.Request) {
	id, err := marketIDParam(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	market, err := h.markets.GetMarket(r.Context(), id)
	if err != nil {
		writeServiceError(w, r, h.logger, err, "failed to get market")
		return
	}

	writeJSON(w, http.StatusOK, market)
}

// GetOdds returns just the yes/no percentages for one market.
// GET /api/markets/{id}/odds
func (h *MarketHandler) GetOdds(w http.ResponseWriter, r *http.Request) {
	id, err := marketIDParam(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	yes, no, err := h.markets.Odds(r.Context(), id)
	if err != nil {
		writeServiceError(w, r, h.logger, err, "failed to get odds")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"marketId":   id,
		"yesPercent": yes,
		"noPercent":  no,
	})
}

// GetPotentialReturn estimates the payout for a hypothetical stake.
// GET /api/markets/{id}/return?amount=<wei>&side=yes|no
func (h *MarketHandler) GetPotentialReturn(w http.ResponseWriter, r *http.Request) {
	id, err := marketIDParam(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	q := r.URL.Query()
	stake, err := parseWei(q.Get("amount"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid amount")
		return
	}

	var isYes bool
	switch q.Get("side") {
	case "yes":
		isYes = true
	case "no":
		isYes = false
	default:
		writeError(w, http.StatusBadRequest, "side must be yes or no")
		return
	}

	payout, err := h.markets.PotentialReturn(r.Context(), id, stake, isYes)
	if err != nil {
		writeServiceError(w, r, h.logger, err, "failed to estimate return")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"marketId": id,
		"amount":   stake.String(),
		"side":     q.Get("side"),
		"payout":   payout.String(),
	})
}
