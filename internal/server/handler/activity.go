package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/ethereum/go-ethereum/common"

	"github.com/Akanimoh12/iPredict/internal/domain"
)

// ActivityService defines the methods the activity handler requires.
type ActivityService interface {
	Recent(ctx context.Context, opts domain.ListOpts) ([]domain.Activity, error)
	ByMarket(ctx context.Context, marketID uint64, opts domain.ListOpts) ([]domain.Activity, error)
	ByUser(ctx context.Context, user common.Address, opts domain.ListOpts) ([]domain.Activity, error)
}

// ActivityHandler serves the indexed activity feed.
type ActivityHandler struct {
	activity ActivityService
	logger   *slog.Logger
}

// NewActivityHandler creates an ActivityHandler.
func NewActivityHandler(activity ActivityService, logger *slog.Logger) *ActivityHandler {
	return &ActivityHandler{
		activity: activity,
		logger:   logger,
	}
}

// ListRecent returns the newest activity across all markets.
// GET /api/activity?limit=50
func (h *ActivityHandler) ListRecent(w http.ResponseWriter, r *http.Request) {
	opts := parseListOpts(r)

	items, err := h.activity.Recent(r.Context(), opts)
	if err != nil {
		writeServiceError(w, r, h.logger, err, "failed to list activity")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"activity": items,
		"limit":    opts.Limit,
	})
}

// ListByMarket returns the newest activity for one market.
// GET /api/markets/{id}/activity?limit=50
func (h *ActivityHandler) ListByMarket(w http.ResponseWriter, r *http.Request) {
	id, err := marketIDParam(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	opts := parseListOpts(r)

	items, err := h.activity.ByMarket(r.Context(), id, opts)
	if err != nil {
		writeServiceError(w, r, h.logger, err, "failed to list market activity")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"marketId": id,
		"activity": items,
		"limit":    opts.Limit,
	})
}

// ListByUser returns the newest activity involving one address.
// GET /api/users/{address}/activity?limit=50
func (h *ActivityHandler) ListByUser(w http.ResponseWriter, r *http.Request) {
	addr, err := addressParam(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	opts := parseListOpts(r)

	items, err := h.activity.ByUser(r.Context(), addr, opts)
	if err != nil {
		writeServiceError(w, r, h.logger, err, "failed to list user activity")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"address":  addr.Hex(),
		"activity": items,
		"limit":    opts.Limit,
	})
}
