package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/ethereum/go-ethereum/common"

	"github.com/Akanimoh12/iPredict/internal/domain"
)

// LeaderboardService defines the methods the leaderboard handler requires.
type LeaderboardService interface {
	List(ctx context.Context, opts domain.ListOpts) ([]domain.LeaderboardEntry, error)
	Rank(ctx context.Context, user common.Address) (domain.LeaderboardEntry, error)
	Count(ctx context.Context) (int64, error)
}

// LeaderboardHandler serves the points leaderboard endpoints.
type LeaderboardHandler struct {
	board  LeaderboardService
	logger *slog.Logger
}

// NewLeaderboardHandler creates a LeaderboardHandler.
func NewLeaderboardHandler(board LeaderboardService, logger *slog.Logger) *LeaderboardHandler {
	return &LeaderboardHandler{
		board:  board,
		logger: logger,
	}
}

// listLeaderboardResponse wraps one page of ranked entries with the total
// number of ranked users.
type listLeaderboardResponse struct {
	Entries []domain.LeaderboardEntry `json:"entries"`
	Total   int64                     `json:"total"`
	Limit   int                       `json:"limit"`
	Offset  int                       `json:"offset"`
}

// List returns one page of the leaderboard, ranked by points with winnings
// as tiebreak.
// GET /api/leaderboard?limit=50&offset=0
func (h *LeaderboardHandler) List(w http.ResponseWriter, r *http.Request) {
	opts := parseListOpts(r)

	entries, err := h.board.List(r.Context(), opts)
	if err != nil {
		writeServiceError(w, r, h.logger, err, "failed to list leaderboard")
		return
	}

	total, err := h.board.Count(r.Context())
	if err != nil {
		writeServiceError(w, r, h.logger, err, "failed to count leaderboard")
		return
	}

	writeJSON(w, http.StatusOK, listLeaderboardResponse{
		Entries: entries,
		Total:   total,
		Limit:   opts.Limit,
		Offset:  opts.Offset,
	})
}

// GetRank returns one user's leaderboard entry including their overall rank.
// GET /api/leaderboard/{address}
func (h *LeaderboardHandler) GetRank(w http.ResponseWriter, r *http.Request) {
	addr, err := addressParam(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	entry, err := h.board.Rank(r.Context(), addr)
	if err != nil {
		writeServiceError(w, r, h.logger, err, "failed to get rank")
		return
	}

	writeJSON(w, http.StatusOK, entry)
}
