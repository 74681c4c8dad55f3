package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/ethereum/go-ethereum/common"

	"github.com/Akanimoh12/iPredict/internal/domain"
	"github.com/Akanimoh12/iPredict/internal/service"
)

// UserService defines the methods the user handler requires from the service
// layer.
type UserService interface {
	Profile(ctx context.Context, user common.Address) (service.UserProfile, error)
	Bet(ctx context.Context, marketID uint64, user common.Address) (domain.Bet, error)
	Markets(ctx context.Context, user common.Address) ([]domain.MarketWithOdds, error)
	Claimables(ctx context.Context, user common.Address) ([]service.Claimable, error)
}

// UserHandler serves account-level HTTP endpoints.
type UserHandler struct {
	users  UserService
	logger *slog.Logger
}

// NewUserHandler creates a UserHandler with the given service and logger.
func NewUserHandler(users UserService, logger *slog.Logger) *UserHandler {
	return &UserHandler{
		users:  users,
		logger: logger,
	}
}

// GetProfile returns a user's cumulative stats and win rate.
// GET /api/users/{address}
func (h *UserHandler) GetProfile(w http.ResponseWriter, r *http.Request) {
	addr, err := addressParam(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	profile, err := h.users.Profile(r.Context(), addr)
	if err != nil {
		writeServiceError(w, r, h.logger, err, "failed to get profile")
		return
	}

	writeJSON(w, http.StatusOK, profile)
}

// GetBet returns the user's position on one market. Users who never bet get
// a zero-amount position with hasBet=false rather than a 404.
// GET /api/users/{address}/bets/{id}
func (h *UserHandler) GetBet(w http.ResponseWriter, r *http.Request) {
	addr, err := addressParam(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	id, err := marketIDParam(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	bet, err := h.users.Bet(r.Context(), id, addr)
	if err != nil {
		writeServiceError(w, r, h.logger, err, "failed to get bet")
		return
	}

	writeJSON(w, http.StatusOK, bet)
}

// GetMarkets returns every market the user has bet on.
// GET /api/users/{address}/markets
func (h *UserHandler) GetMarkets(w http.ResponseWriter, r *http.Request) {
	addr, err := addressParam(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	markets, err := h.users.Markets(r.Context(), addr)
	if err != nil {
		writeServiceError(w, r, h.logger, err, "failed to get user markets")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"address": addr,
		"markets": markets,
	})
}

// GetClaimable returns the markets where the user has unclaimed winnings or
// refunds, with the estimated amount for each.
// GET /api/users/{address}/claimable
func (h *UserHandler) GetClaimable(w http.ResponseWriter, r *http.Request) {
	addr, err := addressParam(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	claimables, err := h.users.Claimables(r.Context(), addr)
	if err != nil {
		writeServiceError(w, r, h.logger, err, "failed to get claimables")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"address":   addr,
		"claimable": claimables,
	})
}
